package host

import (
	"slices"

	"go.uber.org/zap/zapcore"

	"github.com/AtriKawaii/atri-go/application/schema"
	"github.com/AtriKawaii/atri-go/application/validation"
	"github.com/AtriKawaii/atri-go/domain/ports"
	"github.com/AtriKawaii/atri-go/infrastructure/parser"
)

// Config is the host configuration file.
type Config struct {
	PluginsDir string        `yaml:"plugins_dir" validate:"required" jsonschema:"description=Directory scanned for plugin images"`
	Workspace  string        `yaml:"workspace" validate:"required" jsonschema:"description=Root of the per-plugin workspace directories"`
	Workers    int           `yaml:"workers" validate:"gte=0,lte=1024" jsonschema:"description=Executor worker goroutines; 0 selects GOMAXPROCS"`
	LogLevel   string        `yaml:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	AutoEnable bool          `yaml:"auto_enable" jsonschema:"description=Enable plugins as soon as they are loaded"`
	Disabled   []string      `yaml:"disabled" validate:"dive,required" jsonschema:"description=Plugin names that are loaded but not enabled"`
	Metrics    MetricsConfig `yaml:"metrics"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// DefaultConfig returns the configuration used for fields a file leaves
// unset.
func DefaultConfig() Config {
	return Config{
		PluginsDir: "plugins",
		Workspace:  "workspaces",
		LogLevel:   "info",
		AutoEnable: true,
		Metrics:    MetricsConfig{Address: "127.0.0.1:9464"},
	}
}

// ConfigOption configures config loading.
type ConfigOption func(*configLoader)

type configLoader struct {
	parser ports.ConfigParser
}

// WithConfigParser sets the parser used by LoadConfig and ParseConfig.
func WithConfigParser(p ports.ConfigParser) ConfigOption {
	return func(l *configLoader) {
		l.parser = p
	}
}

func newConfigLoader(opts []ConfigOption) configLoader {
	l := configLoader{parser: parser.NewYamlConfigParser()}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string, opts ...ConfigOption) (Config, error) {
	cfg := DefaultConfig()
	if err := newConfigLoader(opts).parser.ParseFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfig parses and validates configuration bytes.
func ParseConfig(data []byte, opts ...ConfigOption) (Config, error) {
	cfg := DefaultConfig()
	if err := newConfigLoader(opts).parser.Parse(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.Struct(c)
}

// Level returns the configured log level.
func (c Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// IsDisabled reports whether the named plugin is listed as disabled.
func (c Config) IsDisabled(name string) bool {
	return slices.Contains(c.Disabled, name)
}

// ConfigSchema returns the JSON schema of the configuration file.
func ConfigSchema() ([]byte, error) {
	return schema.GenerateSchema(&Config{},
		schema.WithFieldTag("yaml"),
		schema.WithTitle("atri host configuration"),
	)
}
