package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrInvalidTimestamp  = errors.New("invalid submittedAt timestamp")
	ErrSourceUnavailable = errors.New("review source unavailable")
	ErrMalformedPayload  = errors.New("malformed source payload")
)
