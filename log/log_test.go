package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrValue(t *testing.T) {
	tests := []struct {
		name    string
		value   slog.Value
		wantVal string
	}{
		{name: "string", value: slog.StringValue("value"), wantVal: "value"},
		{name: "int64", value: slog.Int64Value(123), wantVal: "123"},
		{name: "uint64", value: slog.Uint64Value(7), wantVal: "7"},
		{name: "bool", value: slog.BoolValue(true), wantVal: "true"},
		{name: "float64", value: slog.Float64Value(1.23), wantVal: "1.23"},
		{name: "time", value: slog.TimeValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), wantVal: "2024-01-01T00:00:00Z"},
		{name: "duration", value: slog.DurationValue(time.Hour), wantVal: "1h0m0s"},
		{name: "error", value: slog.AnyValue(errors.New("test error")), wantVal: "test error"},
		{name: "nil", value: slog.AnyValue(nil), wantVal: "<nil>"},
		{name: "json", value: slog.AnyValue(map[string]int{"a": 1}), wantVal: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantVal, attrValue(tt.value))
		})
	}
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestWriteAttr(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{name: "plain", attr: slog.Int("n", 1), want: " n=1"},
		{name: "quoted", attr: slog.String("msg", "two words"), want: ` msg="two words"`},
		{name: "log valuer", attr: slog.Any("v", logValuer{val: "resolved"}), want: " v=resolved"},
		{name: "group", attr: slog.Group("req", slog.String("id", "x"), slog.Int("try", 2)), want: " req.id=x req.try=2"},
		{name: "empty group", attr: slog.Group("none"), want: ""},
		{name: "empty attr", attr: slog.Attr{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			writeAttr(&sb, "", tt.attr)
			assert.Equal(t, tt.want, sb.String())
		})
	}
}

func TestHostLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, HostLevel(slog.LevelDebug-4))
	assert.Equal(t, LevelDebug, HostLevel(slog.LevelDebug))
	assert.Equal(t, LevelInfo, HostLevel(slog.LevelInfo))
	assert.Equal(t, LevelWarn, HostLevel(slog.LevelWarn))
	assert.Equal(t, LevelError, HostLevel(slog.LevelError))
	assert.Equal(t, LevelError, HostLevel(slog.LevelError+4))
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler()
	assert.True(t, h.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func TestNewHandler_Options(t *testing.T) {
	h := NewHandler(WithLevel(slog.LevelDebug), WithSource(true))
	assert.True(t, h.Enabled(context.TODO(), slog.LevelDebug))
	assert.True(t, h.opts.addSource)
}

func TestHandler_FallbackBeforeInit(t *testing.T) {
	loader.Reset()

	var buf bytes.Buffer
	logger := slog.New(NewHandler(WithFallback(&buf)))
	logger.With("plugin", "echo").WithGroup("evt").Info("started", "id", 3)

	assert.Equal(t, "INFO started plugin=echo evt.id=3\n", buf.String())
}

func TestHandler_ForwardsToHost(t *testing.T) {
	loader.Reset()
	t.Cleanup(loader.Reset)

	type entry struct {
		handle uintptr
		level  uint8
		line   string
	}
	var got []entry
	logFn := func(handle uintptr, _ unsafe.Pointer, level uint8, msg ffi.Str) {
		got = append(got, entry{handle: handle, level: level, line: msg.String()})
	}
	loader.Init(ffi.Manager{Handle: 11, GetFun: func(id uint16) unsafe.Pointer {
		if id == loader.IDLog {
			return ffi.FuncPointer(logFn)
		}
		return nil
	}})

	logger := slog.New(NewHandler(WithLevel(slog.LevelDebug)))
	logger.Debug("tick")
	logger.Error("failed", "err", errors.New("boom"))

	require.Len(t, got, 2)
	assert.Equal(t, entry{handle: 11, level: LevelDebug, line: "tick"}, got[0])
	assert.Equal(t, entry{handle: 11, level: LevelError, line: "failed err=boom"}, got[1])
}
