package models

// ActivationStatus describes how far a new account has progressed through
// registration.
type ActivationStatus string

const (
	ActivationIncomplete     ActivationStatus = "incomplete"
	ActivationParentRequired ActivationStatus = "parent_required"
	ActivationActivated      ActivationStatus = "activated"
)

// LoggedInUser is the single authoritative session record. IsLoggedIn is
// deliberately distinct from the mere presence of a saved row: the row
// survives an ordinary logout so the user can re-login offline with
// remembered credentials. The row is deleted only when a different account
// logs in.
type LoggedInUser struct {
	UserID           string           `json:"userId"`
	Email            string           `json:"email"`
	Nick             string           `json:"nick"`
	MainCategoryID   string           `json:"mainCategory"`
	Token            string           `json:"token"`
	ActivationStatus ActivationStatus `json:"activationStatus"`
	IsLoggedIn       bool             `json:"isLoggedIn"`
}
