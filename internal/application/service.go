// internal/application/service.go

// Package application owns every legal mutation of an Application record so
// the flow controller never hand-edits one.
package application

import (
	"context"
	"errors"
	"time"

	"loanflow/internal/common/logger"
	"loanflow/internal/models"
	"loanflow/internal/storage"

	"github.com/google/uuid"
)

// DefaultLoanAmount is used when the caller supplies no slider value.
const DefaultLoanAmount = 4500

// ErrApplicationNotFound is returned by mutations targeting a missing id, so
// callers can tell "no-op because missing" from "succeeded".
var ErrApplicationNotFound = errors.New("APPLICATION_NOT_FOUND")

// Service encapsulates the application record lifecycle over an injected
// store.
type Service struct {
	store  storage.Store
	logger logger.Logger
	now    func() time.Time
}

func NewService(store storage.Store, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "application"}),
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Create builds a fresh in-progress application for userID and flips the
// owning user's active-application pointer. Both records land in one store
// write so the pair can never be observed half-applied.
func (s *Service) Create(ctx context.Context, userID string, loanAmount int) (*models.Application, error) {
	if loanAmount == 0 {
		loanAmount = DefaultLoanAmount
	}

	now := s.timestamp()
	app := &models.Application{
		ID:             uuid.New().String(),
		UserID:         userID,
		Status:         models.StatusInProgress,
		CurrentStep:    models.StepEstimate,
		CompletedSteps: []models.Step{},
		PersonalInfo:   map[string]interface{}{},
		IncomeInfo:     map[string]interface{}{},
		VehicleInfo:    map[string]interface{}{},
		LoanAmount:     loanAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.Mutate(ctx, func(state *storage.State) error {
		state.Applications[app.ID] = app
		if user, ok := state.Users[userID]; ok {
			user.HasActiveApplication = true
			user.ApplicationID = app.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("application created", map[string]interface{}{
		"applicationId": app.ID,
		"userId":        userID,
		"loanAmount":    loanAmount,
	})

	return app, nil
}

// UpdateStep advances the record to step and merges partial data into the
// sub-record the step maps to. Steps outside the mapping only do the
// bookkeeping (currentStep, completedSteps, updatedAt). The step is appended
// to completedSteps at most once no matter how often it is resubmitted.
func (s *Service) UpdateStep(ctx context.Context, applicationID string, step models.Step, partial map[string]interface{}) (*models.Application, error) {
	var updated *models.Application

	err := s.store.Mutate(ctx, func(state *storage.State) error {
		app, ok := state.Applications[applicationID]
		if !ok {
			return ErrApplicationNotFound
		}

		app.CurrentStep = step
		if !app.HasCompletedStep(step) {
			app.CompletedSteps = append(app.CompletedSteps, step)
		}

		switch step {
		case models.StepPersonal:
			mergeInto(app.PersonalInfo, partial)
		case models.StepIncome:
			mergeInto(app.IncomeInfo, partial)
		case models.StepVehicle:
			mergeInto(app.VehicleInfo, partial)
		case models.StepEstimate:
			if amount, ok := toInt(partial["loanAmount"]); ok {
				app.LoanAmount = amount
			}
		}

		app.UpdatedAt = s.timestamp()
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("application step updated", map[string]interface{}{
		"applicationId": applicationID,
		"step":          string(step),
	})

	return updated, nil
}

// Complete marks the record submitted. Calling it again re-stamps the
// timestamps but the status stays completed.
func (s *Service) Complete(ctx context.Context, applicationID string) (*models.Application, error) {
	var updated *models.Application

	err := s.store.Mutate(ctx, func(state *storage.State) error {
		app, ok := state.Applications[applicationID]
		if !ok {
			return ErrApplicationNotFound
		}

		now := s.timestamp()
		app.Status = models.StatusCompleted
		app.SubmittedAt = now
		app.UpdatedAt = now
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("application completed", map[string]interface{}{
		"applicationId": applicationID,
		"userId":        updated.UserID,
	})

	return updated, nil
}

// Get returns the application by id, nil when absent.
func (s *Service) Get(ctx context.Context, applicationID string) (*models.Application, error) {
	return s.store.GetApplication(ctx, applicationID)
}

// GetForUser returns the user's application, nil when absent.
func (s *Service) GetForUser(ctx context.Context, userID string) (*models.Application, error) {
	return s.store.GetUserApplication(ctx, userID)
}

// mergeInto overwrites matching keys in dst and keeps everything else.
func mergeInto(dst, partial map[string]interface{}) {
	for k, v := range partial {
		dst[k] = v
	}
}

// toInt accepts the numeric types a JSON-ish payload can carry.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
