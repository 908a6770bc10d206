package errors

import "errors"

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsRemoteRejection checks if an error is an explicit remote rejection.
func IsRemoteRejection(err error) bool {
	if err == nil {
		return false
	}

	var rejectionErr *RemoteRejectionError
	return errors.As(err, &rejectionErr)
}

// IsProtocolMismatch checks if an error is a protocol mismatch.
func IsProtocolMismatch(err error) bool {
	if err == nil {
		return false
	}

	var mismatchErr *ProtocolMismatchError
	return errors.As(err, &mismatchErr)
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error indicates a resource conflict.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var existsErr *AlreadyExistsError
	return errors.As(err, &existsErr) || errors.Is(err, ErrAlreadyExists)
}

// IsUnauthorized checks if an error indicates a signer lacking rights.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}

	var unauthorizedErr *UnauthorizedError
	return errors.As(err, &unauthorizedErr) || errors.Is(err, ErrUnauthorized)
}

// IsInsufficientFunds checks if an error indicates a balance or allowance
// shortfall.
func IsInsufficientFunds(err error) bool {
	if err == nil {
		return false
	}

	var fundsErr *InsufficientFundsError
	return errors.As(err, &fundsErr)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, ErrTimeout)
}

// IsAborted checks if an error indicates an aborted condition.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}

	var abortedErr *AbortedError
	return errors.As(err, &abortedErr) || errors.Is(err, ErrAborted)
}

// GetCode extracts the error code from an error, or CodeInternal for plain
// errors.
func GetCode(err error) string {
	if err == nil {
		return ""
	}

	var typed Error
	if errors.As(err, &typed) {
		return typed.Code()
	}
	return CodeInternal
}
