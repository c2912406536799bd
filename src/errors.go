package acetape

import (
	"errors"
	"fmt"
)

// ConfigError is returned when a session is opened with settings that can't work.
// It is always reported before any audio is read or written.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// StreamError wraps an I/O failure on the stream owned by a session.
// Whatever was already written stays written.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

var ErrSessionClosed = errors.New("session already closed")

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}
