// Package log routes plugin logging (slog) through the host's log slot.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// Host log levels.
const (
	LevelTrace uint8 = 0
	LevelDebug uint8 = 1
	LevelInfo  uint8 = 2
	LevelWarn  uint8 = 3
	LevelError uint8 = 4
)

// HostLevel maps an slog level onto the host's level scale.
func HostLevel(level slog.Level) uint8 {
	switch {
	case level < slog.LevelDebug:
		return LevelTrace
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}

// Handler implements slog.Handler by forwarding each record to the host.
// Before the plugin is bootstrapped records go to the fallback writer.
type Handler struct {
	opts   handlerConfig
	attrs  []slog.Attr
	groups []string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	fallback  io.Writer
	mu        *sync.Mutex
	level     slog.Level
	addSource bool
	binding   Binding
}

// Binding supplies the manager a Handler reports through. It reports
// false until the owning image is bootstrapped.
type Binding interface {
	Bootstrapped() (ffi.Manager, bool)
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:    slog.LevelInfo,
		fallback: os.Stderr,
		mu:       new(sync.Mutex),
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are filtered on the plugin side.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFallback sets the writer used before the host is available.
func WithFallback(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		c.fallback = w
	}
}

// WithBinding attributes records to the image behind b instead of the
// first image bootstrapped in the process.
func WithBinding(b Binding) HandlerOption {
	return func(c *handlerConfig) {
		c.binding = b
	}
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg}
}

// Install makes a Handler built from opts the slog default. The slog
// default is shared by every image in the process.
func Install(opts ...HandlerOption) {
	slog.SetDefault(slog.New(NewHandler(opts...)))
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := h.prefix()
	next := h.clone()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup returns a Handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

// Handle renders the record as one line and sends it to the host.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	line := h.format(record)

	m, ok := h.manager()
	if !ok || loader.Table().Log == nil {
		h.opts.mu.Lock()
		defer h.opts.mu.Unlock()
		_, err := fmt.Fprintf(h.opts.fallback, "%s %s\n", record.Level, line)
		return err
	}

	loader.Table().Log(m.Handle, m.ManagerPtr, HostLevel(record.Level), ffi.StrFrom(line))
	return nil
}

func (h *Handler) manager() (ffi.Manager, bool) {
	if !loader.Initialized() {
		return ffi.Manager{}, false
	}
	if h.opts.binding != nil {
		return h.opts.binding.Bootstrapped()
	}
	return loader.Manager(), true
}

func (h *Handler) format(record slog.Record) string {
	var sb strings.Builder
	sb.WriteString(record.Message)

	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	prefix := h.prefix()
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, prefix, a)
		return true
	})

	if h.opts.addSource && record.PC != 0 {
		src := record.Source()
		fmt.Fprintf(&sb, " source=%s:%d", src.File, src.Line)
	}
	return sb.String()
}

func (h *Handler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *Handler) clone() *Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	next.groups = append([]string(nil), h.groups...)
	return &next
}
