package fanclub

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrAlreadyMember is returned when joining a fan club twice.
	ErrAlreadyMember = errors.New("already a member")
	// ErrNotMember is returned when leaving a fan club the user never joined.
	ErrNotMember = errors.New("not a member")
	// ErrOwnerCannotLeave is returned when the owner tries to leave their own fan club.
	ErrOwnerCannotLeave = errors.New("the owner cannot leave the fan club")
	// ErrForbidden is returned when the acting user lacks the needed role.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports rejected input before any persistence call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
