package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a DomainError by how a caller is expected to react to it.
type Kind int

const (
	// KindUnknown is any error that is not a DomainError.
	KindUnknown Kind = iota
	// KindValidationRejected is user-correctable input rejected by the gateway
	// or by the client before a call is made. The message is shown verbatim.
	KindValidationRejected
	// KindCredentialsRejected is a failed login. The gateway does not say
	// whether the username or the password was wrong, and neither do we.
	KindCredentialsRejected
	// KindTokenInvalid means the gateway no longer accepts the held token.
	KindTokenInvalid
	// KindTransportFailure covers network errors and timeouts.
	KindTransportFailure
	// KindServiceFailure is any other non-2xx answer or an unreadable body.
	KindServiceFailure
	// KindSession covers session state conflicts on the client side.
	KindSession
	// KindNotFound means the requested resource does not exist yet.
	KindNotFound
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidationRejected:
		return "validation_rejected"
	case KindCredentialsRejected:
		return "credentials_rejected"
	case KindTokenInvalid:
		return "token_invalid"
	case KindTransportFailure:
		return "transport_failure"
	case KindServiceFailure:
		return "service_failure"
	case KindSession:
		return "session"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// DomainError is a classified error with a stable code.
type DomainError struct {
	Code    string // e.g. "FP-AUTH-4010"
	Kind    Kind
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError.
func NewDomainError(code string, kind Kind, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Wrap is shorthand for WithCause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// GetErrorCode extracts the code of a DomainError, or "".
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// KindOf classifies err. Errors that are not DomainErrors are KindUnknown.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Authentication errors (AUTH).
var (
	ErrInvalidRegistration = NewDomainError("FP-AUTH-4000", KindValidationRejected,
		"invalid registration data, please check your input")
	ErrMissingCredentials = NewDomainError("FP-AUTH-4001", KindValidationRejected,
		"username and password are required")
	ErrUsernameTaken = NewDomainError("FP-AUTH-4090", KindValidationRejected,
		"username already taken, please choose a different username")
	ErrCredentialsRejected = NewDomainError("FP-AUTH-4010", KindCredentialsRejected,
		"login failed, check your credentials")
	ErrTokenInvalid = NewDomainError("FP-AUTH-4011", KindTokenInvalid,
		"session token is no longer valid")
)

// Transport and service errors (NET, SVC).
var (
	ErrTransportFailure = NewDomainError("FP-NET-5030", KindTransportFailure,
		"could not reach the fitplan service")
	ErrRegistrationFailed = NewDomainError("FP-SVC-5000", KindServiceFailure,
		"registration failed, please try again")
	ErrServiceFailure = NewDomainError("FP-SVC-5001", KindServiceFailure,
		"request failed")
	ErrMalformedResponse = NewDomainError("FP-SVC-5020", KindServiceFailure,
		"unexpected response from the fitplan service")
)

// Session errors (SESS).
var (
	ErrNotAuthenticated = NewDomainError("FP-SESS-4010", KindSession,
		"not logged in")
	ErrSessionSuperseded = NewDomainError("FP-SESS-4090", KindSession,
		"session was logged out while the request was in flight")
	ErrCredentialPersist = NewDomainError("FP-SESS-5000", KindSession,
		"could not persist session credentials")
)

// Resource errors (PLAN, PROF).
var (
	ErrPlanNotFound = NewDomainError("FP-PLAN-4040", KindNotFound,
		"no plan exists for this user")
	ErrProfileNotFound = NewDomainError("FP-PROF-4040", KindNotFound,
		"profile not found")
	ErrProfileRequired = NewDomainError("FP-PROF-4041", KindNotFound,
		"profile not found, please complete your profile first")
	ErrInvalidProfile = NewDomainError("FP-PROF-4000", KindValidationRejected,
		"invalid profile")
)
