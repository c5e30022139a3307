// internal/models/user.go
package models

// AccountStatus is the lifecycle status of a user account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountPending   AccountStatus = "pending"
	AccountSuspended AccountStatus = "suspended"
)

// UserProfile is the identity record created at signup. Email doubles as the
// login lookup key. A user owns at most one active application, tracked by
// the HasActiveApplication/ApplicationID pair.
type UserProfile struct {
	ID                   string        `json:"id"`
	Email                string        `json:"email"`
	FirstName            string        `json:"firstName"`
	LastName             string        `json:"lastName"`
	PhoneNumber          string        `json:"phoneNumber"`
	ZipCode              string        `json:"zipCode,omitempty"`
	LoanType             string        `json:"loanType,omitempty"`
	HasActiveApplication bool          `json:"hasActiveApplication"`
	ApplicationID        string        `json:"applicationId,omitempty"`
	AccountStatus        AccountStatus `json:"accountStatus"`
	CreatedAt            string        `json:"createdAt"`
}

// FullName returns the display name used in notifications.
func (u *UserProfile) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
