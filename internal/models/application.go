// internal/models/application.go
package models

// Status tracks an application from creation through decision. Only the
// in_progress -> completed transition is driven by the wizard; the remaining
// values are set by back-office review outside this service.
type Status string

const (
	StatusNotStarted          Status = "not_started"
	StatusInProgress          Status = "in_progress"
	StatusPendingVerification Status = "pending_verification"
	StatusCompleted           Status = "completed"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
)

// Application is one customer's loan request, tracked through the wizard
// steps. The sub-records hold partial form data and grow by merge as steps
// are submitted; CompletedSteps keeps insertion order and never duplicates.
// Timestamps are RFC3339 UTC strings.
type Application struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	Status         Status                 `json:"status"`
	CurrentStep    Step                   `json:"currentStep"`
	CompletedSteps []Step                 `json:"completedSteps"`
	PersonalInfo   map[string]interface{} `json:"personalInfo"`
	IncomeInfo     map[string]interface{} `json:"incomeInfo"`
	VehicleInfo    map[string]interface{} `json:"vehicleInfo"`
	LoanAmount     int                    `json:"loanAmount"`
	CreatedAt      string                 `json:"createdAt"`
	UpdatedAt      string                 `json:"updatedAt"`
	SubmittedAt    string                 `json:"submittedAt,omitempty"`
}

// HasCompletedStep reports whether step is already recorded.
func (a *Application) HasCompletedStep(step Step) bool {
	for _, s := range a.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the wizard has been finished for this record.
func (a *Application) IsCompleted() bool {
	return a.Status == StatusCompleted
}
