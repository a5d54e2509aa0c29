package api

// ErrorDomain is the errdetails.ErrorInfo domain of BlockKeeper failures.
const ErrorDomain = "blockkeeper"

// Stable failure codes carried in errdetails.ErrorInfo.Reason.
const (
	ReasonUnauthorized      = "UNAUTHORIZED"
	ReasonUserExists        = "USER_EXISTS"
	ReasonUserNotFound      = "USER_NOT_FOUND"
	ReasonInvalidCredential = "INVALID_CREDENTIAL"
	ReasonInvalidToken      = "INVALID_TOKEN"
	ReasonNotFound          = "NOT_FOUND"
	ReasonValidation        = "VALIDATION"
	ReasonInternal          = "INTERNAL"
	ReasonLoginFailed       = "LOGIN_FAILED"
)

// RequestIDHeader is echoed back on every call.
const RequestIDHeader = "x-request-id"
