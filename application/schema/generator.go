// Package schema publishes JSON schemas for configuration structs.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/AtriKawaii/atri-go/domain/errors"
)

// Option configures schema generation.
type Option func(*generatorConfig)

type generatorConfig struct {
	fieldTag string
	title    string
	id       string
}

// WithFieldTag names properties after the given struct tag instead of
// "json". Configuration loaded from YAML uses "yaml".
func WithFieldTag(tag string) Option {
	return func(c *generatorConfig) {
		c.fieldTag = tag
	}
}

// WithTitle sets the schema title.
func WithTitle(title string) Option {
	return func(c *generatorConfig) {
		c.title = title
	}
}

// WithID sets the schema $id.
func WithID(id string) Option {
	return func(c *generatorConfig) {
		c.id = id
	}
}

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
func GenerateSchema(v any, opts ...Option) ([]byte, error) {
	cfg := generatorConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
		FieldNameTag:   cfg.fieldTag,
	}
	s := reflector.Reflect(v)
	if cfg.title != "" {
		s.Title = cfg.title
	}
	if cfg.id != "" {
		s.ID = jsonschema.ID(cfg.id)
	}

	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Type: fmt.Sprintf("%T", v), Err: err}
	}

	return jsonBytes, nil
}
