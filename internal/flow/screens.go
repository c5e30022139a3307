// internal/flow/screens.go
package flow

import "loanflow/internal/models"

// Screen names what the host should render next. Screens mostly mirror the
// wizard steps, plus the two prompts that sit between steps and the terminal
// dashboard.
type Screen string

const (
	ScreenLogin        Screen = "login"
	ScreenSignup       Screen = "signup"
	ScreenEstimate     Screen = "estimate"
	ScreenProgress     Screen = "progress"
	ScreenVerification Screen = "verification"
	ScreenPersonal     Screen = "personal"
	ScreenIncome       Screen = "income"
	ScreenCoApplicant  Screen = "co-applicant"
	ScreenVehicle      Screen = "vehicle"
	ScreenDocuments    Screen = "documents"
	ScreenResumePrompt Screen = "resume-prompt"
	ScreenDashboard    Screen = "dashboard"
)

// preApplicationOrder is the linear pre-application regime. Back walks it in
// reverse; back at position 0 exits to the host page.
var preApplicationOrder = []Screen{
	ScreenLogin,
	ScreenSignup,
	ScreenEstimate,
	ScreenProgress,
	ScreenVerification,
}

// applicationOrder is the linear application regime. Back at the first entry
// falls into the pre-application regime's last screen.
var applicationOrder = []Screen{
	ScreenPersonal,
	ScreenIncome,
	ScreenVehicle,
	ScreenDocuments,
}

// resumeScreens maps a stored currentStep back to a screen when a returning
// user resumes. Steps with no mapping (including legacy values) land on the
// personal step.
var resumeScreens = map[models.Step]Screen{
	models.StepEstimate:     ScreenEstimate,
	models.StepProgress:     ScreenProgress,
	models.StepVerification: ScreenVerification,
	models.StepPersonal:     ScreenPersonal,
	models.StepIncome:       ScreenIncome,
	models.StepVehicle:      ScreenVehicle,
	models.StepDocuments:    ScreenDocuments,
}

func screenIndex(order []Screen, screen Screen) int {
	for i, s := range order {
		if s == screen {
			return i
		}
	}
	return -1
}
