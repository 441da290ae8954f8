package constants

// WebSocket error codes
const (
	ErrorInvalidFormat    = "invalid_format"
	ErrorValidationFailed = "validation_failed"
	ErrorUnauthorized     = "unauthorized"
	ErrorInternalError    = "internal_error"
	ErrorNotAssigned      = "not_assigned"
	ErrorConflict         = "conflict"
)

// ErrorSeverity categorizes how much error detail reaches the client
type ErrorSeverity int

const (
	ErrorSeverityClient ErrorSeverity = iota // validation/input issues, detail shown
	ErrorSeverityServer                      // internal faults, generic message
	ErrorSeveritySecurity                    // auth issues, minimal message
)
