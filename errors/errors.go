package errors

import "fmt"

var (
	ErrValidation     = fmt.Errorf("validation error")
	ErrEmptyContent   = fmt.Errorf("%w: message content must not be empty", ErrValidation)
	ErrContentTooLong = fmt.Errorf("%w: message content must not exceed 1000 characters", ErrValidation)
	ErrInvalidRoom    = fmt.Errorf("%w: room name must be between 1 and 50 characters", ErrValidation)
	ErrInvalidLimit   = fmt.Errorf("%w: limit must be between 1 and 100", ErrValidation)
	ErrInvalidOffset  = fmt.Errorf("%w: offset must be greater than or equal to 0", ErrValidation)
	ErrBlankID        = fmt.Errorf("%w: message id must not be blank", ErrValidation)
	ErrBlankQuery     = fmt.Errorf("%w: search query must not be blank", ErrValidation)

	ErrPersistence     = fmt.Errorf("persistence error")
	ErrMessageNotFound = fmt.Errorf("message not found")

	ErrProcessorDisabled = fmt.Errorf("content processor is not configured")

	ErrUnknownConnection = fmt.Errorf("unknown connection")
	ErrConnectionClosed  = fmt.Errorf("connection closed")
	ErrBackpressure      = fmt.Errorf("connection buffer is full")

	ErrSearchDisabled = fmt.Errorf("message search is not enabled")
	ErrUnauthorized   = fmt.Errorf("invalid api key")

	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)
