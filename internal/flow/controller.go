// internal/flow/controller.go

// Package flow implements the wizard state machine: the ordered step
// regimes, the transition guards, and the resume behavior for returning
// users. Step forms hand it validated partial records; it merges them
// through the application lifecycle and decides which screen comes next.
package flow

import (
	"context"
	"time"

	"loanflow/internal/application"
	"loanflow/internal/common/config"
	flowerrors "loanflow/internal/common/errors"
	"loanflow/internal/common/logger"
	"loanflow/internal/common/observability"
	"loanflow/internal/documents"
	"loanflow/internal/models"
	"loanflow/internal/notification"
	"loanflow/internal/search"
	"loanflow/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Session is one user's trip through the wizard. It is single-threaded by
// design; the surrounding host delivers one event at a time.
type Session struct {
	Screen      Screen
	User        *models.UserProfile
	Application *models.Application
	Checklist   *documents.Checklist

	// Notice carries the user-facing message from the last blocked
	// transition. It is cleared by the next accepted event.
	Notice string

	// pendingIncome parks a validated income payload while the co-applicant
	// prompt is on screen.
	pendingIncome map[string]interface{}
}

// SignupForm is the data the signup step collects.
type SignupForm struct {
	FirstName   string
	LastName    string
	Email       string
	ZipCode     string
	LoanType    string
	PhoneNumber string
}

// DashboardSummary is what the post-submission dashboard renders.
type DashboardSummary struct {
	ApplicantName  string
	Email          string
	LoanType       string
	Status         models.Status
	LoanAmount     int
	SubmittedAt    string
	CompletedSteps []models.Step
}

// Controller drives sessions against the injected store and services. The
// only external dependency is navigateHome, called when the user exits the
// wizard (back at login, leave on the resume prompt, or logout).
type Controller struct {
	store        storage.Store
	apps         *application.Service
	notifier     *notification.Notifier
	indexer      *search.Indexer
	obs          *observability.Observability
	loan         config.LoanConfig
	navigateHome func()
	logger       logger.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

func NewController(store storage.Store, apps *application.Service, loan config.LoanConfig, navigateHome func(), log logger.Logger) *Controller {
	if navigateHome == nil {
		navigateHome = func() {}
	}
	return &Controller{
		store:        store,
		apps:         apps,
		obs:          &observability.Observability{},
		loan:         loan,
		navigateHome: navigateHome,
		logger:       log.WithFields(map[string]interface{}{"component": "flow"}),
		tracer:       otel.Tracer("loanflow/internal/flow"),
		now:          time.Now,
	}
}

// WithNotifier enables the SMS/email side channel.
func (c *Controller) WithNotifier(n *notification.Notifier) *Controller {
	c.notifier = n
	return c
}

// WithIndexer enables completed-application indexing.
func (c *Controller) WithIndexer(ix *search.Indexer) *Controller {
	c.indexer = ix
	return c
}

// WithObservability enables transition metrics.
func (c *Controller) WithObservability(obs *observability.Observability) *Controller {
	c.obs = obs
	return c
}

// NewSession starts a fresh wizard session on the login screen.
func (c *Controller) NewSession() *Session {
	return &Session{Screen: ScreenLogin}
}

// ShowSignup switches from the login screen to signup.
func (c *Controller) ShowSignup(sess *Session) {
	sess.Notice = ""
	sess.Screen = ScreenSignup
}

// Login resolves the submitted email against the user store. A miss keeps
// the session on login with a notice. A hit routes by the state of the
// user's active application: completed goes straight to the dashboard, any
// other active application raises the resume prompt, no application starts
// the estimate.
func (c *Controller) Login(ctx context.Context, sess *Session, email string) error {
	sess.Notice = ""

	user, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		c.obs.RecordTransition(ctx, string(models.StepLogin), "blocked")
		fe := flowerrors.NewUserNotFoundError(email)
		sess.Notice = fe.Message
		return fe
	}

	sess.User = user

	if user.HasActiveApplication && user.ApplicationID != "" {
		app, err := c.apps.Get(ctx, user.ApplicationID)
		if err != nil {
			return err
		}
		if app != nil {
			sess.Application = app
			if app.IsCompleted() {
				sess.Screen = ScreenDashboard
				c.obs.RecordTransition(ctx, string(models.StepLogin), "advanced")
				return nil
			}
			sess.Screen = ScreenResumePrompt
			c.obs.RecordTransition(ctx, string(models.StepLogin), "advanced")
			return nil
		}
	}

	sess.Screen = ScreenEstimate
	c.obs.RecordTransition(ctx, string(models.StepLogin), "advanced")
	return nil
}

// Signup creates the user profile and moves on to the estimate. There is no
// guard: the form's required fields are its own concern.
func (c *Controller) Signup(ctx context.Context, sess *Session, form SignupForm) error {
	sess.Notice = ""

	user := &models.UserProfile{
		ID:            uuid.New().String(),
		Email:         form.Email,
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		PhoneNumber:   form.PhoneNumber,
		ZipCode:       form.ZipCode,
		LoanType:      form.LoanType,
		AccountStatus: models.AccountActive,
		CreatedAt:     c.now().UTC().Format(time.RFC3339),
	}

	if err := c.store.SaveUser(ctx, user); err != nil {
		return err
	}

	c.logger.Info("user signed up", map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	})

	sess.User = user
	sess.Screen = ScreenEstimate
	c.obs.RecordTransition(ctx, string(models.StepSignup), "advanced")
	return nil
}

// Advance is the single entry point step forms call: a step identifier plus
// the partial record that step collected. Guard failures return a FlowError,
// set the session notice, and leave the screen unchanged.
func (c *Controller) Advance(ctx context.Context, sess *Session, step models.Step, payload map[string]interface{}) error {
	ctx, span := c.tracer.Start(ctx, "flow.Advance",
		trace.WithAttributes(attribute.String("step", string(step))))
	defer span.End()

	started := c.now()
	defer func() {
		c.obs.RecordStepDuration(ctx, string(step), c.now().Sub(started))
	}()

	sess.Notice = ""

	if sess.User == nil {
		return c.block(ctx, sess, step, flowerrors.NewGuardNotSatisfiedError(
			"Please log in or sign up first.", "no user in session"))
	}

	switch step {
	case models.StepEstimate:
		return c.advanceEstimate(ctx, sess, payload)
	case models.StepProgress:
		return c.advanceProgress(ctx, sess, payload)
	case models.StepVerification:
		return c.advanceVerification(ctx, sess)
	case models.StepPersonal:
		return c.advanceForm(ctx, sess, models.StepPersonal, payload, ScreenIncome)
	case models.StepIncome:
		return c.advanceIncome(ctx, sess, payload)
	case models.StepVehicle:
		return c.advanceVehicle(ctx, sess, payload)
	case models.StepDocuments:
		return c.advanceDocuments(ctx, sess)
	default:
		return c.block(ctx, sess, step, flowerrors.NewGuardNotSatisfiedError(
			"Unknown step.", "step: "+string(step)))
	}
}

// advanceEstimate creates the application with the slider amount clamped to
// the configured bounds.
func (c *Controller) advanceEstimate(ctx context.Context, sess *Session, payload map[string]interface{}) error {
	amount := c.loan.DefaultAmount
	if v, ok := payload["loanAmount"]; ok {
		if n, ok := toInt(v); ok {
			amount = c.loan.Clamp(n)
		}
	}

	app, err := c.apps.Create(ctx, sess.User.ID, amount)
	if err != nil {
		return err
	}

	// Keep the session's view of the owner pointer in step with the store.
	sess.User.HasActiveApplication = true
	sess.User.ApplicationID = app.ID

	sess.Application = app
	sess.Screen = ScreenProgress
	c.obs.RecordTransition(ctx, string(models.StepEstimate), "advanced")
	return nil
}

// advanceProgress records the transition and fires the verification SMS.
// The password and phone fields the form collects are not validated or
// persisted here.
func (c *Controller) advanceProgress(ctx context.Context, sess *Session, payload map[string]interface{}) error {
	if sess.Application == nil {
		return c.block(ctx, sess, models.StepProgress, flowerrors.NewGuardNotSatisfiedError(
			"Start with your loan estimate first.", "no application in session"))
	}

	app, err := c.apps.UpdateStep(ctx, sess.Application.ID, models.StepProgress, nil)
	if err != nil {
		return err
	}
	sess.Application = app

	if c.notifier != nil {
		phone := sess.User.PhoneNumber
		if v, ok := payload["phoneNumber"].(string); ok && v != "" {
			phone = v
		}
		if _, err := c.notifier.SendVerificationCode(ctx, phone); err != nil {
			// Delivery is best effort; the flow moves on regardless.
			c.logger.Warn("verification sms failed", map[string]interface{}{
				"error":  err.Error(),
				"userId": sess.User.ID,
			})
		}
	}

	sess.Screen = ScreenVerification
	c.obs.RecordTransition(ctx, string(models.StepProgress), "advanced")
	return nil
}

// advanceVerification accepts any filled-in code; nothing checks it.
func (c *Controller) advanceVerification(ctx context.Context, sess *Session) error {
	if sess.Application == nil {
		return c.block(ctx, sess, models.StepVerification, flowerrors.NewGuardNotSatisfiedError(
			"Start with your loan estimate first.", "no application in session"))
	}

	app, err := c.apps.UpdateStep(ctx, sess.Application.ID, models.StepVerification, nil)
	if err != nil {
		return err
	}
	sess.Application = app

	sess.Screen = ScreenPersonal
	c.obs.RecordTransition(ctx, string(models.StepVerification), "advanced")
	return nil
}

// advanceForm is the shared path for schema-validated data steps that move
// straight to the next screen.
func (c *Controller) advanceForm(ctx context.Context, sess *Session, step models.Step, payload map[string]interface{}, next Screen) error {
	if sess.Application == nil {
		return c.block(ctx, sess, step, flowerrors.NewGuardNotSatisfiedError(
			"Start with your loan estimate first.", "no application in session"))
	}

	if err := validateStepPayload(step, payload); err != nil {
		fe, _ := err.(*flowerrors.FlowError)
		if fe != nil {
			return c.block(ctx, sess, step, fe)
		}
		return err
	}

	app, err := c.apps.UpdateStep(ctx, sess.Application.ID, step, payload)
	if err != nil {
		return err
	}
	sess.Application = app

	sess.Screen = next
	c.obs.RecordTransition(ctx, string(step), "advanced")
	return nil
}

// advanceIncome validates the payload, then parks it behind the co-applicant
// prompt; nothing is persisted until the choice is made.
func (c *Controller) advanceIncome(ctx context.Context, sess *Session, payload map[string]interface{}) error {
	if sess.Application == nil {
		return c.block(ctx, sess, models.StepIncome, flowerrors.NewGuardNotSatisfiedError(
			"Start with your loan estimate first.", "no application in session"))
	}

	if err := validateStepPayload(models.StepIncome, payload); err != nil {
		fe, _ := err.(*flowerrors.FlowError)
		if fe != nil {
			return c.block(ctx, sess, models.StepIncome, fe)
		}
		return err
	}

	sess.pendingIncome = payload
	sess.Screen = ScreenCoApplicant
	c.obs.RecordTransition(ctx, string(models.StepIncome), "advanced")
	return nil
}

// ChooseCoApplicant resolves the prompt raised by the income submission,
// merges the answer into the parked payload, and persists the income step.
func (c *Controller) ChooseCoApplicant(ctx context.Context, sess *Session, hasCoApplicant bool) error {
	sess.Notice = ""

	if sess.pendingIncome == nil || sess.Application == nil {
		return c.block(ctx, sess, models.StepIncome, flowerrors.NewGuardNotSatisfiedError(
			"Submit your income information first.", "no pending income payload"))
	}

	payload := sess.pendingIncome
	payload["hasCoApplicant"] = hasCoApplicant

	app, err := c.apps.UpdateStep(ctx, sess.Application.ID, models.StepIncome, payload)
	if err != nil {
		return err
	}
	sess.Application = app
	sess.pendingIncome = nil

	sess.Screen = ScreenVehicle
	c.obs.RecordTransition(ctx, string(models.StepIncome), "advanced")
	return nil
}

// advanceVehicle persists the vehicle step and opens the documents screen
// with a fresh checklist.
func (c *Controller) advanceVehicle(ctx context.Context, sess *Session, payload map[string]interface{}) error {
	if err := c.advanceForm(ctx, sess, models.StepVehicle, payload, ScreenDocuments); err != nil {
		return err
	}
	if sess.Checklist == nil {
		sess.Checklist = documents.DefaultChecklist()
	}
	return nil
}

// RecordUpload counts one simulated upload against a checklist slot.
func (c *Controller) RecordUpload(sess *Session, slotID string) error {
	if sess.Checklist == nil {
		sess.Checklist = documents.DefaultChecklist()
	}
	return sess.Checklist.Record(slotID)
}

// advanceDocuments is the final submission: every required slot must be
// satisfied, then the record is completed and the session lands on the
// dashboard.
func (c *Controller) advanceDocuments(ctx context.Context, sess *Session) error {
	if sess.Application == nil {
		return c.block(ctx, sess, models.StepDocuments, flowerrors.NewGuardNotSatisfiedError(
			"Start with your loan estimate first.", "no application in session"))
	}

	if sess.Checklist == nil || !sess.Checklist.Complete() {
		var missing []string
		if sess.Checklist != nil {
			missing = sess.Checklist.Missing()
		}
		return c.block(ctx, sess, models.StepDocuments, flowerrors.NewChecklistIncompleteError(missing))
	}

	if _, err := c.apps.UpdateStep(ctx, sess.Application.ID, models.StepDocuments, nil); err != nil {
		return err
	}

	app, err := c.apps.Complete(ctx, sess.Application.ID)
	if err != nil {
		return err
	}
	sess.Application = app

	if c.notifier != nil {
		if err := c.notifier.SendSubmissionConfirmation(ctx, sess.User, app); err != nil {
			c.logger.Warn("submission confirmation failed", map[string]interface{}{
				"error":         err.Error(),
				"applicationId": app.ID,
			})
		}
	}
	if c.indexer != nil {
		if err := c.indexer.IndexApplication(ctx, app, sess.User); err != nil {
			c.logger.Warn("application indexing failed", map[string]interface{}{
				"error":         err.Error(),
				"applicationId": app.ID,
			})
		}
	}

	sess.Screen = ScreenDashboard
	c.obs.RecordTransition(ctx, string(models.StepDocuments), "advanced")
	return nil
}

// Back moves one position backwards in the current regime. At the first
// pre-application screen it exits to the host page instead. The co-applicant
// prompt backs onto the income form, dropping the parked payload.
func (c *Controller) Back(ctx context.Context, sess *Session) {
	sess.Notice = ""

	switch sess.Screen {
	case ScreenCoApplicant:
		sess.pendingIncome = nil
		sess.Screen = ScreenIncome
		return
	case ScreenDashboard, ScreenResumePrompt:
		// No back from the terminal screen or the modal prompt.
		return
	}

	if i := screenIndex(applicationOrder, sess.Screen); i >= 0 {
		if i == 0 {
			sess.Screen = preApplicationOrder[len(preApplicationOrder)-1]
		} else {
			sess.Screen = applicationOrder[i-1]
		}
		c.obs.RecordTransition(ctx, string(sess.Screen), "back")
		return
	}

	if i := screenIndex(preApplicationOrder, sess.Screen); i >= 0 {
		if i == 0 {
			c.navigateHome()
			return
		}
		sess.Screen = preApplicationOrder[i-1]
		c.obs.RecordTransition(ctx, string(sess.Screen), "back")
	}
}

// Resume restores a returning user to the screen their stored currentStep
// maps to. Unmapped steps land on the personal form.
func (c *Controller) Resume(ctx context.Context, sess *Session) error {
	sess.Notice = ""

	if sess.Application == nil {
		return flowerrors.NewGuardNotSatisfiedError(
			"There is no application to resume.", "no application in session")
	}

	screen, ok := resumeScreens[sess.Application.CurrentStep]
	if !ok {
		screen = ScreenPersonal
	}
	sess.Screen = screen

	if screen == ScreenDocuments && sess.Checklist == nil {
		sess.Checklist = documents.DefaultChecklist()
	}

	c.logger.Info("application resumed", map[string]interface{}{
		"applicationId": sess.Application.ID,
		"currentStep":   string(sess.Application.CurrentStep),
		"screen":        string(screen),
	})
	return nil
}

// Leave declines the resume prompt and exits to the host page without
// touching stored state.
func (c *Controller) Leave(sess *Session) {
	c.navigateHome()
}

// Logout exits to the host page and resets the session.
func (c *Controller) Logout(sess *Session) {
	c.navigateHome()
	*sess = Session{Screen: ScreenLogin}
}

// ResumeByEmail is the deep-link entry point (the ?email= convention): if
// the address resolves to a user with an incomplete active application, the
// session opens on the resume prompt. A completed application opens the
// dashboard. Anything else stays on login.
func (c *Controller) ResumeByEmail(ctx context.Context, sess *Session, email string) error {
	user, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.HasActiveApplication || user.ApplicationID == "" {
		return nil
	}

	app, err := c.apps.Get(ctx, user.ApplicationID)
	if err != nil {
		return err
	}
	if app == nil {
		return nil
	}

	sess.User = user
	sess.Application = app
	if app.IsCompleted() {
		sess.Screen = ScreenDashboard
	} else {
		sess.Screen = ScreenResumePrompt
	}
	return nil
}

// Dashboard summarizes the session's application for the terminal screen.
func (c *Controller) Dashboard(sess *Session) *DashboardSummary {
	if sess.Application == nil {
		return nil
	}
	summary := &DashboardSummary{
		Status:         sess.Application.Status,
		LoanAmount:     sess.Application.LoanAmount,
		SubmittedAt:    sess.Application.SubmittedAt,
		CompletedSteps: sess.Application.CompletedSteps,
	}
	if sess.User != nil {
		summary.ApplicantName = sess.User.FullName()
		summary.Email = sess.User.Email
		summary.LoanType = sess.User.LoanType
	}
	return summary
}

// block records a refused transition, surfaces the notice, and leaves the
// screen unchanged.
func (c *Controller) block(ctx context.Context, sess *Session, step models.Step, fe *flowerrors.FlowError) error {
	sess.Notice = fe.Message
	c.obs.RecordTransition(ctx, string(step), "blocked")
	c.logger.Debug("transition blocked", map[string]interface{}{
		"step":   string(step),
		"code":   string(fe.Code),
		"detail": fe.Details,
	})
	return fe
}

// toInt accepts the numeric types a form payload can carry.
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
