package errors

// Error codes for categorizing failures surfaced by the library.
const (
	// CodeValidation indicates malformed input caught before any network call.
	CodeValidation = "VALIDATION_ERROR"

	// CodeTransport indicates a network or RPC failure. Transport errors are
	// always surfaced to the caller and never retried by this layer.
	CodeTransport = "TRANSPORT_ERROR"

	// CodeRemoteRejection indicates the execution environment or a remote
	// service explicitly declined the request (dependency not satisfied,
	// double fulfillment, insufficient funds, unauthorized signer).
	CodeRemoteRejection = "REMOTE_REJECTION"

	// CodeProtocolMismatch indicates a client-computed identifier does not
	// match what the remote side expects. This is a fatal protocol bug, not a
	// recoverable runtime condition.
	CodeProtocolMismatch = "PROTOCOL_MISMATCH"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeAlreadyExists indicates attempting to create a resource that
	// already exists (e.g. reusing an agreement ID).
	CodeAlreadyExists = "ALREADY_EXISTS"

	// CodeUnauthorized indicates the signer lacks the rights for the action.
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeInsufficientFunds indicates a token balance or allowance was too
	// low for the requested transfer.
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"

	// CodeTimeout indicates a caller-imposed deadline elapsed. The library
	// itself imposes no timeouts on event waits.
	CodeTimeout = "TIMEOUT"

	// CodeAborted indicates a condition timed out on chain and was moved to
	// its aborted state before the flow could complete.
	CodeAborted = "ABORTED"

	// CodeInternal indicates an internal error.
	CodeInternal = "INTERNAL"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates the caller supplied something wrong.
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryRemote indicates the remote side declined or failed.
	CategoryRemote ErrorCategory = "REMOTE_ERROR"

	// CategoryTransport indicates a network-level failure.
	CategoryTransport ErrorCategory = "TRANSPORT_ERROR"

	// CategoryFatal indicates a protocol bug that no retry can fix.
	CategoryFatal ErrorCategory = "FATAL_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeValidation, CodeNotFound, CodeAlreadyExists, CodeTimeout:
		return CategoryClient

	case CodeRemoteRejection, CodeUnauthorized, CodeInsufficientFunds, CodeAborted:
		return CategoryRemote

	case CodeTransport:
		return CategoryTransport

	case CodeProtocolMismatch:
		return CategoryFatal

	default:
		return CategoryRemote
	}
}

// IsRetryable returns true if an operation failing with the given code may be
// retried by the caller. Retrying an agreement flow requires a fresh
// agreement ID; the library never retries on its own.
func IsRetryable(code string) bool {
	switch code {
	case CodeTransport, CodeTimeout:
		return true
	default:
		return false
	}
}
