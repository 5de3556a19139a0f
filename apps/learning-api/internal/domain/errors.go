package domain

import "errors"

// ErrorKind classifies a domain error for the transport boundary
type ErrorKind string

const (
	KindInvalidInput  ErrorKind = "INVALID_INPUT"
	KindUnauthorized  ErrorKind = "UNAUTHORIZED"
	KindConflict      ErrorKind = "CONFLICT"
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindQuotaExceeded ErrorKind = "QUOTA_EXCEEDED"
	KindUpstream      ErrorKind = "UPSTREAM_ERROR"
	KindInternal      ErrorKind = "INTERNAL_ERROR"
)

// Error is a typed, caller-recoverable failure. Message is safe to show to
// clients; Err carries the underlying cause for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind when the target has no message,
// so errors.Is(err, ErrUpstream) holds for every upstream failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an error of the given kind carrying cause
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of err, KindInternal for untyped errors
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Kind sentinels, matched with errors.Is
var (
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrInternal      = &Error{Kind: KindInternal}
)

// Authentication errors
var (
	ErrInvalidCredentials = NewError(KindUnauthorized, "Invalid credentials")
	ErrMissingToken       = NewError(KindUnauthorized, "Authorization header is required")
	ErrInvalidToken       = NewError(KindUnauthorized, "Invalid or expired token")
	ErrUserRequired       = NewError(KindUnauthorized, "This action requires a user account")
	ErrTutorRequired      = NewError(KindUnauthorized, "This action requires a tutor account")
	ErrInvalidOAuthState  = NewError(KindUnauthorized, "Invalid OAuth state")
	ErrOAuthEmailMissing  = NewError(KindInvalidInput, "Identity provider returned no email address")
)

// Account errors
var (
	ErrIdentityExists = NewError(KindConflict, "Email or username already exists")
	ErrTutorExists    = NewError(KindConflict, "Email already exists")
	ErrUserNotFound   = NewError(KindNotFound, "User not found")
	ErrTutorNotFound  = NewError(KindNotFound, "Authenticated tutor not found")
)

// Plan and quota errors
var (
	ErrInvalidPlan           = NewError(KindInvalidInput, "Invalid plan selected.")
	ErrDailyLimitReached     = NewError(KindQuotaExceeded, "Daily token limit has been reached. Please try again tomorrow or upgrade your plan.")
	ErrQuotaStoreUnavailable = NewError(KindInternal, "Unable to verify usage quota")
)

// Content and upload errors
var (
	ErrContentNotFound   = NewError(KindNotFound, "Content not found")
	ErrDataNotFound      = NewError(KindNotFound, "Data not found")
	ErrNoFileUploaded    = NewError(KindInvalidInput, "No file uploaded")
	ErrFileTooLarge      = NewError(KindInvalidInput, "File exceeds the upload size limit")
	ErrFileTypeRejected  = NewError(KindInvalidInput, "Only PDF, JPEG, PNG, and DOC files are allowed")
	ErrImageTypeRejected = NewError(KindInvalidInput, "Only JPEG and PNG images are allowed")
	ErrNoProfilePicture  = NewError(KindNotFound, "No profile picture to delete")
)
