// Package parser decodes configuration files.
package parser

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	domainerrors "github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/domain/ports"
)

// YamlConfigParser implements ConfigParser for YAML. Unknown keys are
// rejected so that typos in configuration surface as errors.
type YamlConfigParser struct {
	allowUnknown bool
}

// Option configures the parser.
type Option func(*YamlConfigParser)

// WithUnknownFields accepts keys that do not map to a struct field.
func WithUnknownFields() Option {
	return func(p *YamlConfigParser) {
		p.allowUnknown = true
	}
}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser(opts ...Option) ports.ConfigParser {
	p := &YamlConfigParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes into out. Empty input leaves out unchanged.
func (p *YamlConfigParser) Parse(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(!p.allowUnknown)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &domainerrors.SerializationError{Format: "yaml", Err: err}
	}
	return nil
}

// ParseFile reads path and unmarshals it into out.
func (p *YamlConfigParser) ParseFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &domainerrors.ConfigError{Field: path, Err: err}
	}
	return p.Parse(data, out)
}
