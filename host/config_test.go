package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/AtriKawaii/atri-go/domain/errors"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
		check     func(t *testing.T, cfg Config)
	}{
		{
			name:    "empty uses defaults",
			content: "",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "full",
			content: `plugins_dir: /srv/atri/plugins
workspace: /srv/atri/ws
workers: 4
log_level: debug
auto_enable: false
disabled: [echo]
metrics:
  enabled: true
  address: 0.0.0.0:9000
`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "/srv/atri/plugins", cfg.PluginsDir)
				assert.Equal(t, "/srv/atri/ws", cfg.Workspace)
				assert.Equal(t, 4, cfg.Workers)
				assert.False(t, cfg.AutoEnable)
				assert.True(t, cfg.IsDisabled("echo"))
				assert.False(t, cfg.IsDisabled("other"))
				assert.Equal(t, zapcore.DebugLevel, cfg.Level())
				assert.Equal(t, MetricsConfig{Enabled: true, Address: "0.0.0.0:9000"}, cfg.Metrics)
			},
		},
		{
			name:      "bad log level",
			content:   "log_level: verbose\n",
			wantField: "Config.LogLevel",
		},
		{
			name:      "too many workers",
			content:   "workers: 5000\n",
			wantField: "Config.Workers",
		},
		{
			name:      "empty plugins dir",
			content:   "plugins_dir: \"\"\n",
			wantField: "Config.PluginsDir",
		},
		{
			name:      "metrics without address",
			content:   "metrics:\n  enabled: true\n  address: \"\"\n",
			wantField: "Config.Metrics.Address",
		},
		{
			name:      "malformed address",
			content:   "metrics:\n  address: nowhere\n",
			wantField: "Config.Metrics.Address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.content))
			if tt.wantField == "" {
				require.NoError(t, err)
				tt.check(t, cfg)
				return
			}
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParseConfig_UnknownKey(t *testing.T) {
	_, err := ParseConfig([]byte("plugin_dir: typo\n"))

	var serErr *errors.SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "yaml", serErr.Format)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atri.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "plugins", cfg.PluginsDir)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestConfig_LevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, Config{LogLevel: "loud"}.Level())
	assert.Equal(t, zapcore.WarnLevel, Config{LogLevel: "warn"}.Level())
}

func TestConfigSchema(t *testing.T) {
	data, err := ConfigSchema()
	require.NoError(t, err)

	out := string(data)
	for _, key := range []string{"plugins_dir", "workspace", "log_level", "auto_enable", "metrics"} {
		assert.Contains(t, out, `"`+key+`"`)
	}
	assert.Contains(t, out, "atri host configuration")
	assert.NotContains(t, out, `"PluginsDir"`)
}
