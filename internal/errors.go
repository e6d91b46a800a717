package internal

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when no payload source produced a payload.
var ErrMissingInput = errors.New("You need to provide TEXT or PAYLOAD input")

// MissingRequiredInputError reports a required input that was not supplied.
type MissingRequiredInputError struct {
	Name string
}

func (e *MissingRequiredInputError) Error() string {
	return fmt.Sprintf("required input %s is missing", e.Name)
}

// ParseError reports a malformed event-context blob.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse event context: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidPayloadError reports a malformed explicit PAYLOAD input.
type InvalidPayloadError struct {
	Err error
}

func (e *InvalidPayloadError) Error() string { return fmt.Sprintf("parse payload input: %v", e.Err) }

func (e *InvalidPayloadError) Unwrap() error { return e.Err }

// FileAccessError reports a payload file that exists but cannot be read.
// An absent file is not a FileAccessError, it just means there is no
// legacy payload to send.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("read payload file %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// DeliveryError reports a non-200 response from the webhook.
type DeliveryError struct {
	Status string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook responded with %s", e.Status)
}
