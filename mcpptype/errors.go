package mcpptype

import "fmt"

// ErrorCode is the stable wire error code catalog. Values match the
// JSON-RPC error codes the dispatcher puts on the wire.
type ErrorCode int

const (
	ErrInvalidParams     ErrorCode = -32602
	ErrMethodNotFound    ErrorCode = -32601
	ErrInternal          ErrorCode = -32603
	ErrCacheMiss         ErrorCode = -32001
	ErrReferenceNotFound ErrorCode = -32002
	ErrResolutionFailed  ErrorCode = -32003
	ErrDataNotFound      ErrorCode = -32004
	ErrInsufficientPerms ErrorCode = -32005
	ErrInvalidDataUsage  ErrorCode = -32006
	ErrConsentRequired   ErrorCode = -32007
	ErrConsentDenied     ErrorCode = -32008
	ErrConsentTimeout    ErrorCode = -32009
	ErrInvalidTarget     ErrorCode = -32010
)

var errorCodeNames = map[ErrorCode]string{
	ErrInvalidParams:     "INVALID_PARAMS",
	ErrMethodNotFound:    "METHOD_NOT_FOUND",
	ErrInternal:          "INTERNAL_ERROR",
	ErrCacheMiss:         "CACHE_MISS",
	ErrReferenceNotFound: "REFERENCE_NOT_FOUND",
	ErrResolutionFailed:  "RESOLUTION_FAILED",
	ErrDataNotFound:      "DATA_NOT_FOUND",
	ErrInsufficientPerms: "INSUFFICIENT_PERMISSIONS",
	ErrInvalidDataUsage:  "INVALID_DATA_USAGE",
	ErrConsentRequired:   "CONSENT_REQUIRED",
	ErrConsentDenied:     "CONSENT_DENIED",
	ErrConsentTimeout:    "CONSENT_TIMEOUT",
	ErrInvalidTarget:     "INVALID_TARGET",
}

// Name returns the stable wire name for the error code (e.g. "CACHE_MISS").
func (c ErrorCode) Name() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN_ERROR"
}

// RPCError is the JSON-RPC 2.0 error object the dispatcher puts on the wire.
// It also implements the standard error interface so it can travel through
// ordinary Go error-handling paths inside the core.
type RPCError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code.Name(), e.Code, e.Message)
}

// NewRPCError builds an *RPCError with no extra data payload.
func NewRPCError(code ErrorCode, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}

// WithData returns a copy of the error carrying additional structured data
// (e.g. a ConsentRequest or ValidationDetails block).
func (e *RPCError) WithData(data any) *RPCError {
	cp := *e
	cp.Data = data
	return &cp
}
