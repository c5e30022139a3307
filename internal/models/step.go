// internal/models/step.go
package models

// Step names a stage of the loan application wizard.
type Step string

const (
	StepLogin        Step = "login"
	StepSignup       Step = "signup"
	StepEstimate     Step = "estimate"
	StepProgress     Step = "progress"
	StepVerification Step = "verification"
	StepPersonal     Step = "personal"
	StepIncome       Step = "income"
	StepVehicle      Step = "vehicle"
	StepDocuments    Step = "documents"
	StepReview       Step = "review"
	StepComplete     Step = "complete"
)

// StepOrder is the canonical forward order of the wizard. Back navigation
// and resume mapping both walk this sequence.
var StepOrder = []Step{
	StepLogin,
	StepSignup,
	StepEstimate,
	StepProgress,
	StepVerification,
	StepPersonal,
	StepIncome,
	StepVehicle,
	StepDocuments,
	StepReview,
	StepComplete,
}

// IsValid reports whether s is one of the known wizard steps.
func (s Step) IsValid() bool {
	for _, known := range StepOrder {
		if s == known {
			return true
		}
	}
	return false
}
