// cmd/loanflow/wizard.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"loanflow/internal/common/config"
	"loanflow/internal/flow"
	"loanflow/internal/models"
)

// wizard is the terminal front end for the flow controller: it renders the
// controller's current screen, collects form input line by line, and feeds
// events back in. All sequencing decisions stay in the controller.
type wizard struct {
	controller *flow.Controller
	loan       config.LoanConfig
	in         *bufio.Scanner
	out        io.Writer
}

func newWizard(controller *flow.Controller, loan config.LoanConfig, in io.Reader, out io.Writer) *wizard {
	return &wizard{
		controller: controller,
		loan:       loan,
		in:         bufio.NewScanner(in),
		out:        out,
	}
}

func (w *wizard) printf(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// prompt reads one line; ok is false when input is closed.
func (w *wizard) prompt(label string) (string, bool) {
	w.printf("%s: ", label)
	if !w.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.in.Text()), true
}

// run loops until input closes or the controller exits to the host page.
func (w *wizard) run(ctx context.Context) {
	sess := w.controller.NewSession()

	for {
		if sess.Notice != "" {
			w.printf("\n>> %s\n", sess.Notice)
		}

		var ok bool
		switch sess.Screen {
		case flow.ScreenLogin:
			ok = w.loginScreen(ctx, sess)
		case flow.ScreenSignup:
			ok = w.signupScreen(ctx, sess)
		case flow.ScreenEstimate:
			ok = w.estimateScreen(ctx, sess)
		case flow.ScreenProgress:
			ok = w.progressScreen(ctx, sess)
		case flow.ScreenVerification:
			ok = w.verificationScreen(ctx, sess)
		case flow.ScreenPersonal:
			ok = w.formScreen(ctx, sess, models.StepPersonal, "Personal Information", []field{
				{"firstName", "First name"},
				{"lastName", "Last name"},
				{"phoneNo", "Phone number"},
				{"emailAddress", "Email address"},
				{"dateOfBirth", "Date of birth (MM/DD/YYYY)"},
				{"socialSecurityNo", "Social security number"},
				{"homeStreetAddress", "Home street address"},
				{"city", "City"},
				{"state", "State"},
				{"zipCode", "ZIP code"},
			})
		case flow.ScreenIncome:
			ok = w.formScreen(ctx, sess, models.StepIncome, "Income Information", []field{
				{"incomeSource", "Income source"},
				{"totalGrossMonthlyIncome", "Total gross monthly income"},
				{"paymentFrequency", "Payment frequency"},
			})
		case flow.ScreenCoApplicant:
			ok = w.coApplicantScreen(ctx, sess)
		case flow.ScreenVehicle:
			ok = w.formScreen(ctx, sess, models.StepVehicle, "Vehicle Information", []field{
				{"vin", "VIN"},
				{"make", "Make"},
				{"model", "Model"},
				{"year", "Year"},
				{"mileage", "Mileage"},
			})
		case flow.ScreenDocuments:
			ok = w.documentsScreen(ctx, sess)
		case flow.ScreenResumePrompt:
			ok = w.resumePromptScreen(ctx, sess)
		case flow.ScreenDashboard:
			ok = w.dashboardScreen(sess)
		default:
			w.printf("\nNothing to render for %s, exiting.\n", sess.Screen)
			return
		}
		if !ok {
			return
		}
	}
}

func (w *wizard) loginScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Log In ---\n")
	w.printf("Enter your email, 'signup' to create an account, or 'back' to leave.\n")

	input, ok := w.prompt("Email")
	if !ok {
		return false
	}

	switch input {
	case "back":
		w.controller.Back(ctx, sess)
		return false
	case "signup":
		w.controller.ShowSignup(sess)
		return true
	default:
		w.controller.Login(ctx, sess, input)
		return true
	}
}

func (w *wizard) signupScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Sign Up ---\n")

	form := flow.SignupForm{}
	fields := []struct {
		label string
		dst   *string
	}{
		{"First name", &form.FirstName},
		{"Last name", &form.LastName},
		{"Email", &form.Email},
		{"ZIP code", &form.ZipCode},
		{"Loan type", &form.LoanType},
		{"Phone number", &form.PhoneNumber},
	}
	for _, f := range fields {
		value, ok := w.prompt(f.label)
		if !ok {
			return false
		}
		if value == "back" {
			w.controller.Back(ctx, sess)
			return true
		}
		*f.dst = value
	}

	w.controller.Signup(ctx, sess, form)
	return true
}

func (w *wizard) estimateScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Loan Estimate ---\n")
	w.printf("How much do you need? ($%d to $%d)\n", w.loan.MinAmount, w.loan.MaxAmount)

	input, ok := w.prompt("Amount")
	if !ok {
		return false
	}
	if input == "back" {
		w.controller.Back(ctx, sess)
		return true
	}

	amount, err := strconv.Atoi(input)
	if err != nil {
		w.printf(">> Please enter a whole dollar amount.\n")
		return true
	}

	w.controller.Advance(ctx, sess, models.StepEstimate, map[string]interface{}{
		"loanAmount": amount,
	})
	return true
}

func (w *wizard) progressScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Save Your Progress ---\n")

	password, ok := w.prompt("Choose a password")
	if !ok {
		return false
	}
	if password == "back" {
		w.controller.Back(ctx, sess)
		return true
	}

	phone, ok := w.prompt("Mobile number for verification")
	if !ok {
		return false
	}

	w.controller.Advance(ctx, sess, models.StepProgress, map[string]interface{}{
		"phoneNumber": phone,
	})
	return true
}

func (w *wizard) verificationScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Phone Verification ---\n")

	code, ok := w.prompt("Enter the 6-digit code")
	if !ok {
		return false
	}
	if code == "back" {
		w.controller.Back(ctx, sess)
		return true
	}

	w.controller.Advance(ctx, sess, models.StepVerification, nil)
	return true
}

type field struct {
	key   string
	label string
}

func (w *wizard) formScreen(ctx context.Context, sess *flow.Session, step models.Step, title string, fields []field) bool {
	w.printf("\n--- %s ---\n", title)

	payload := map[string]interface{}{}
	for _, f := range fields {
		value, ok := w.prompt(f.label)
		if !ok {
			return false
		}
		if value == "back" {
			w.controller.Back(ctx, sess)
			return true
		}
		payload[f.key] = value
	}

	w.controller.Advance(ctx, sess, step, payload)
	return true
}

func (w *wizard) coApplicantScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Co-Applicant ---\n")

	input, ok := w.prompt("Will anyone apply with you? (yes/no)")
	if !ok {
		return false
	}
	if input == "back" {
		w.controller.Back(ctx, sess)
		return true
	}

	w.controller.ChooseCoApplicant(ctx, sess, strings.EqualFold(input, "yes"))
	return true
}

func (w *wizard) documentsScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Required Documents ---\n")
	for _, slot := range sess.Checklist.Slots() {
		marker := " "
		if slot.Satisfied() {
			marker = "x"
		}
		required := ""
		if slot.Required {
			required = " (required)"
		}
		w.printf("  [%s] %-16s %s%s\n", marker, slot.ID, slot.Name, required)
	}
	w.printf("Type a slot id to upload, 'submit' to finish, or 'back'.\n")

	input, ok := w.prompt("Document")
	if !ok {
		return false
	}

	switch input {
	case "back":
		w.controller.Back(ctx, sess)
	case "submit":
		w.controller.Advance(ctx, sess, models.StepDocuments, nil)
	default:
		if err := w.controller.RecordUpload(sess, input); err != nil {
			w.printf(">> %v\n", err)
		}
	}
	return true
}

func (w *wizard) resumePromptScreen(ctx context.Context, sess *flow.Session) bool {
	w.printf("\n--- Welcome Back ---\n")
	w.printf("You have an application in progress (step: %s).\n", sess.Application.CurrentStep)

	input, ok := w.prompt("Resume it? (yes/no)")
	if !ok {
		return false
	}

	if strings.EqualFold(input, "yes") {
		w.controller.Resume(ctx, sess)
		return true
	}
	w.controller.Leave(sess)
	return false
}

func (w *wizard) dashboardScreen(sess *flow.Session) bool {
	summary := w.controller.Dashboard(sess)

	w.printf("\n--- Dashboard ---\n")
	if summary != nil {
		w.printf("Applicant:  %s <%s>\n", summary.ApplicantName, summary.Email)
		w.printf("Status:     %s\n", summary.Status)
		w.printf("Amount:     $%d\n", summary.LoanAmount)
		if summary.SubmittedAt != "" {
			w.printf("Submitted:  %s\n", summary.SubmittedAt)
		}
	}

	input, ok := w.prompt("Type 'logout' to exit")
	if !ok {
		return false
	}
	if input == "logout" {
		w.controller.Logout(sess)
		return false
	}
	return true
}
