// internal/application/service_test.go
package application

import (
	"context"
	"testing"
	"time"

	"loanflow/internal/common/logger"
	"loanflow/internal/models"
	"loanflow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestService(t *testing.T) (*Service, storage.Store) {
	store := storage.NewMemoryStore(logger.NewTestLogger(t))
	svc := NewService(store, logger.NewTestLogger(t))
	return svc, store
}

func seedUser(t *testing.T, store storage.Store, id string) {
	t.Helper()
	err := store.SaveUser(context.Background(), &models.UserProfile{
		ID:    id,
		Email: id + "@example.com",
	})
	require.NoError(t, err)
}

// ==========================
// Create Tests
// ==========================

func TestService_Create_Defaults(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 6000)
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "user-001", app.UserID)
	assert.Equal(t, models.StatusInProgress, app.Status)
	assert.Equal(t, models.StepEstimate, app.CurrentStep)
	assert.Empty(t, app.CompletedSteps)
	assert.Equal(t, 6000, app.LoanAmount)
	assert.NotNil(t, app.PersonalInfo)
	assert.NotNil(t, app.IncomeInfo)
	assert.NotNil(t, app.VehicleInfo)
	assert.Empty(t, app.SubmittedAt)

	_, err = time.Parse(time.RFC3339, app.CreatedAt)
	assert.NoError(t, err)
	assert.Equal(t, app.CreatedAt, app.UpdatedAt)
}

func TestService_Create_ZeroAmountFallsBackToDefault(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "user-001")

	app, err := svc.Create(context.Background(), "user-001", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLoanAmount, app.LoanAmount)
}

func TestService_Create_FlipsUserPointerAtomically(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	user, err := store.GetUser(ctx, "user-001")
	require.NoError(t, err)
	assert.True(t, user.HasActiveApplication)
	assert.Equal(t, app.ID, user.ApplicationID)

	stored, err := store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

// ==========================
// UpdateStep Tests
// ==========================

func TestService_UpdateStep_MergesIntoSubRecord(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	updated, err := svc.UpdateStep(ctx, app.ID, models.StepPersonal, map[string]interface{}{
		"firstName": "Sarah",
		"lastName":  "Connor",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StepPersonal, updated.CurrentStep)
	assert.Equal(t, []models.Step{models.StepPersonal}, updated.CompletedSteps)
	assert.Equal(t, "Sarah", updated.PersonalInfo["firstName"])
}

func TestService_UpdateStep_MergeKeepsEarlierFields(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	_, err = svc.UpdateStep(ctx, app.ID, models.StepPersonal, map[string]interface{}{
		"firstName": "Sarah",
		"city":      "Phoenix",
	})
	require.NoError(t, err)

	// A resubmission with different keys merges, it does not replace.
	updated, err := svc.UpdateStep(ctx, app.ID, models.StepPersonal, map[string]interface{}{
		"firstName": "Sara",
		"state":     "AZ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sara", updated.PersonalInfo["firstName"])
	assert.Equal(t, "Phoenix", updated.PersonalInfo["city"])
	assert.Equal(t, "AZ", updated.PersonalInfo["state"])
}

func TestService_UpdateStep_CompletedStepsDeduplicated(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.UpdateStep(ctx, app.ID, models.StepPersonal, nil)
		require.NoError(t, err)
	}
	updated, err := svc.UpdateStep(ctx, app.ID, models.StepIncome, nil)
	require.NoError(t, err)

	assert.Equal(t, []models.Step{models.StepPersonal, models.StepIncome}, updated.CompletedSteps)
}

func TestService_UpdateStep_EstimateUpdatesLoanAmount(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	updated, err := svc.UpdateStep(ctx, app.ID, models.StepEstimate, map[string]interface{}{
		"loanAmount": float64(7500), // JSON numbers decode as float64
	})
	require.NoError(t, err)
	assert.Equal(t, 7500, updated.LoanAmount)
}

func TestService_UpdateStep_BookkeepingOnlySteps(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	updated, err := svc.UpdateStep(ctx, app.ID, models.StepVerification, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StepVerification, updated.CurrentStep)
	assert.Contains(t, updated.CompletedSteps, models.StepVerification)
	assert.Empty(t, updated.PersonalInfo)
	assert.Empty(t, updated.IncomeInfo)
	assert.Empty(t, updated.VehicleInfo)
}

func TestService_UpdateStep_MissingApplication(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateStep(context.Background(), "no-such-app", models.StepPersonal, nil)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

// ==========================
// Complete Tests
// ==========================

func TestService_Complete_SetsStatusAndTimestamps(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return fixed })

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	done, err := svc.Complete(ctx, app.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, "2026-08-28T12:00:00Z", done.SubmittedAt)
	assert.Equal(t, done.SubmittedAt, done.UpdatedAt)
	assert.True(t, done.IsCompleted())
}

func TestService_Complete_Idempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedUser(t, store, "user-001")

	app, err := svc.Create(ctx, "user-001", 5000)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, app.ID)
	require.NoError(t, err)

	again, err := svc.Complete(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, again.Status)
}

func TestService_Complete_MissingApplication(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Complete(context.Background(), "no-such-app")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

// ==========================
// Property Tests
// ==========================

func TestService_UpdateStep_CompletedStepsProperty(t *testing.T) {
	steps := []models.Step{
		models.StepEstimate,
		models.StepProgress,
		models.StepVerification,
		models.StepPersonal,
		models.StepIncome,
		models.StepVehicle,
		models.StepDocuments,
	}

	rapid.Check(t, func(rt *rapid.T) {
		svc, store := newTestService(t)
		ctx := context.Background()
		seedUser(t, store, "user-001")

		app, err := svc.Create(ctx, "user-001", 5000)
		if err != nil {
			rt.Fatal(err)
		}

		sequence := rapid.SliceOfN(rapid.SampledFrom(steps), 0, 25).Draw(rt, "sequence")
		for _, step := range sequence {
			if _, err := svc.UpdateStep(ctx, app.ID, step, nil); err != nil {
				rt.Fatal(err)
			}
		}

		final, err := svc.Get(ctx, app.ID)
		if err != nil {
			rt.Fatal(err)
		}

		// No duplicates, and every completed step appeared in the sequence.
		seen := map[models.Step]bool{}
		for _, step := range final.CompletedSteps {
			if seen[step] {
				rt.Fatalf("step %q recorded twice", step)
			}
			seen[step] = true
		}
		for _, step := range sequence {
			if !seen[step] {
				rt.Fatalf("step %q submitted but not recorded", step)
			}
		}
		if len(sequence) > 0 {
			last := sequence[len(sequence)-1]
			if final.CurrentStep != last {
				rt.Fatalf("currentStep = %q, want %q", final.CurrentStep, last)
			}
		}
	})
}
