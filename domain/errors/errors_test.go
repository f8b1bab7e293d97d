package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinError(t *testing.T) {
	baseErr := fmt.Errorf("task panicked: boom")
	err := &JoinError{Task: "spawn", Err: baseErr}

	assert.Equal(t, "join spawn: task panicked: boom", err.Error())
	assert.True(t, errors.Is(err, baseErr))
	assert.True(t, IsJoin(fmt.Errorf("wrapped: %w", err)))

	var joinErr *JoinError
	require.True(t, errors.As(err, &joinErr))
	assert.Equal(t, "spawn", joinErr.Task)

	assert.Equal(t, "join: task panicked: boom", (&JoinError{Err: baseErr}).Error())
}

func TestClientError(t *testing.T) {
	err := &ClientError{Operation: "group_send_message", Message: "muted"}
	assert.Equal(t, "client group_send_message failed: muted", err.Error())

	detail := err.ToErrorDetail()
	assert.Equal(t, "client", detail.Type)
	assert.Equal(t, "group_send_message", detail.Code)
}

func TestSerializationError(t *testing.T) {
	baseErr := fmt.Errorf("unexpected end of input")
	err := &SerializationError{Format: "json", Err: baseErr}

	assert.Equal(t, "json serialization failed: unexpected end of input", err.Error())
	assert.True(t, errors.Is(err, baseErr))
	assert.Equal(t, "serialization failed: unexpected end of input", (&SerializationError{Err: baseErr}).Error())
}

func TestNotSupportedError(t *testing.T) {
	err := &NotSupportedError{Operation: "spawn", Reason: "scoped future"}
	assert.Equal(t, "spawn not supported: scoped future", err.Error())
	assert.True(t, IsNotSupported(err))
	assert.False(t, IsNotSupported(fmt.Errorf("other")))
	assert.Equal(t, "spawn not supported", (&NotSupportedError{Operation: "spawn"}).Error())
}

func TestNotInitializedError(t *testing.T) {
	err := &NotInitializedError{Operation: "log"}
	assert.Equal(t, "log called before the plugin was initialized", err.Error())
	assert.Equal(t, "not_initialized", err.ToErrorDetail().Type)
}

func TestLifecycleError(t *testing.T) {
	err := &LifecycleError{Plugin: "echo", Transition: "enable", State: "unloaded"}
	assert.Equal(t, "plugin echo: cannot enable while unloaded", err.Error())
	assert.Equal(t, "enable", err.ToErrorDetail().Code)
}

func TestPanicError(t *testing.T) {
	err := &PanicError{Plugin: "echo", Operation: "enable", Value: "boom"}
	assert.Equal(t, "plugin echo: enable panicked: boom", err.Error())
	assert.Equal(t, "panic", err.ToErrorDetail().Type)
}

func TestLoadError(t *testing.T) {
	baseErr := fmt.Errorf("symbol OnInit not found")
	err := &LoadError{Source: "plugins/echo.so", Err: &ConfigError{Field: "name", Err: baseErr}}

	assert.True(t, errors.Is(err, baseErr))
	detail := err.ToErrorDetail()
	assert.Equal(t, "load", detail.Type)
	require.NotNil(t, detail.Wrapped)
	assert.Equal(t, "config", detail.Wrapped.Type)
}

func TestToErrorDetail(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantType string
		wantCode string
	}{
		{
			name:     "generic error",
			err:      fmt.Errorf("generic error"),
			wantType: "internal",
		},
		{
			name:     "join error",
			err:      &JoinError{Task: "spawn", Err: fmt.Errorf("x")},
			wantType: "join",
			wantCode: "spawn",
		},
		{
			name:     "wrapped not supported",
			err:      fmt.Errorf("outer: %w", &NotSupportedError{Operation: "spawn"}),
			wantType: "not_supported",
			wantCode: "spawn",
		},
		{
			name:     "config error",
			err:      &ConfigError{Field: "workers", Err: fmt.Errorf("must be positive")},
			wantType: "config",
			wantCode: "workers",
		},
		{
			name:     "schema error",
			err:      &SchemaError{Type: "Config", Err: fmt.Errorf("cycle")},
			wantType: "validation",
			wantCode: "schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := ToErrorDetail(tt.err)
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantType, detail.Type)
			assert.Equal(t, tt.wantCode, detail.Code)
		})
	}

	assert.Nil(t, ToErrorDetail(nil))
}
