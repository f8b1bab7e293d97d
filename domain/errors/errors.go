// Package errors provides the error types shared by the plugin and host
// sides. All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorDetail is the structured form of an error, suitable for logs and
// for carrying across the boundary as a message.
type ErrorDetail struct {
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`
	Message string       `json:"message"`
	Type    string       `json:"type"`
	Code    string       `json:"code,omitempty"`
}

// DetailedError is implemented by error types that can describe
// themselves as an ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *ErrorDetail
}

// ToErrorDetail converts a Go error to an ErrorDetail.
func ToErrorDetail(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// JoinError reports that a spawned task failed to produce a value.
type JoinError struct {
	Err  error
	Task string
}

func (e *JoinError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("join %s: %v", e.Task, e.Err)
	}
	return fmt.Sprintf("join: %v", e.Err)
}

func (e *JoinError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *JoinError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "join", Code: e.Task}
}

// ClientError reports a failure returned by the host for a client, group
// or friend operation.
type ClientError struct {
	Operation string
	Message   string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client %s failed: %s", e.Operation, e.Message)
}

// ToErrorDetail implements DetailedError.
func (e *ClientError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "client", Code: e.Operation}
}

// SerializationError reports a failed encode or decode.
type SerializationError struct {
	Err    error
	Format string
}

func (e *SerializationError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("%s serialization failed: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("serialization failed: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SerializationError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "serialization", Code: e.Format}
}

// NotSupportedError reports an operation the receiving side refuses.
type NotSupportedError struct {
	Operation string
	Reason    string
}

func (e *NotSupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not supported: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s not supported", e.Operation)
}

// ToErrorDetail implements DetailedError.
func (e *NotSupportedError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "not_supported", Code: e.Operation}
}

// NotInitializedError reports use of the host function table before the
// host bootstrapped the plugin.
type NotInitializedError struct {
	Operation string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s called before the plugin was initialized", e.Operation)
}

// ToErrorDetail implements DetailedError.
func (e *NotInitializedError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "not_initialized", Code: e.Operation}
}

// LifecycleError reports a plugin lifecycle transition that is not
// allowed from the current state.
type LifecycleError struct {
	Plugin     string
	Transition string
	State      string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("plugin %s: cannot %s while %s", e.Plugin, e.Transition, e.State)
}

// ToErrorDetail implements DetailedError.
func (e *LifecycleError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "lifecycle", Code: e.Transition}
}

// PanicError reports a plugin entry point that panicked.
type PanicError struct {
	Plugin    string
	Operation string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("plugin %s: %s panicked: %v", e.Plugin, e.Operation, e.Value)
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "panic", Code: e.Operation}
}

// LoadError reports a plugin image that could not be loaded.
type LoadError struct {
	Err    error
	Source string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *ErrorDetail {
	detail := &ErrorDetail{Message: e.Error(), Type: "load", Code: e.Source}
	if e.Err != nil {
		detail.Wrapped = ToErrorDetail(e.Err)
	}
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *ErrorDetail {
	return &ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}

// IsNotSupported reports whether err is or wraps a NotSupportedError.
func IsNotSupported(err error) bool {
	var e *NotSupportedError
	return stdErrors.As(err, &e)
}

// IsJoin reports whether err is or wraps a JoinError.
func IsJoin(err error) bool {
	var e *JoinError
	return stdErrors.As(err, &e)
}
