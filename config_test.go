package atri

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtriKawaii/atri-go/domain/errors"
)

type replyConfig struct {
	Prefix  string `yaml:"prefix" validate:"required"`
	Repeats int    `yaml:"repeats" validate:"min=1,max=10"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
		want      replyConfig
	}{
		{
			name:    "valid",
			content: "prefix: \"> \"\nrepeats: 2\n",
			want:    replyConfig{Prefix: "> ", Repeats: 2},
		},
		{
			name:      "missing required",
			content:   "repeats: 2\n",
			wantField: "replyConfig.Prefix",
		},
		{
			name:      "out of range",
			content:   "prefix: x\nrepeats: 11\n",
			wantField: "replyConfig.Repeats",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg replyConfig
			err := DecodeConfig(writeFile(t, tt.content), &cfg)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, cfg)
				return
			}
			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestDecodeConfig_UnknownField(t *testing.T) {
	var cfg replyConfig
	err := DecodeConfig(writeFile(t, "prefix: x\nrepeats: 1\nextra: true\n"), &cfg)

	var serErr *errors.SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "yaml", serErr.Format)
}

func TestDecodeConfig_MissingFile(t *testing.T) {
	var cfg replyConfig
	err := DecodeConfig(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
