package application

import "errors"

// Sentinel errors returned by the services. Handlers map these to HTTP status
// codes and user-facing messages; anything else is a store failure that gets
// logged and downgraded to a generic message.
var (
	// Credential lifecycle
	ErrInvalidCode        = errors.New("invalid initialization code")
	ErrAlreadyInitialized = errors.New("account already initialized")
	ErrAccountNotFound    = errors.New("account not found or not initialized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrScholarNotFound    = errors.New("scholar not found")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidResetToken  = errors.New("reset token is invalid or has expired")

	// Payroll state machine
	ErrNotStaged        = errors.New("no payroll staged for the current school year")
	ErrAlreadyRequested = errors.New("payroll already requested for this renewal period")
	ErrAlreadyPending   = errors.New("payroll request already pending")

	// Activity records
	ErrEndBeforeStart  = errors.New("end date cannot be before start date")
	ErrNotAnImage      = errors.New("only image files are allowed")
	ErrImageTooLarge   = errors.New("image exceeds the size limit")
	ErrEventNotFound   = errors.New("event not found")
	ErrAlreadyUploaded = errors.New("photo already uploaded for this event")
	ErrInvalidContact  = errors.New("invalid contact number")
)
