package atri

import (
	"path/filepath"

	"github.com/AtriKawaii/atri-go/application/validation"
	"github.com/AtriKawaii/atri-go/infrastructure/parser"
)

// DefaultConfigFile is the file LoadConfig reads from the workspace.
const DefaultConfigFile = "config.yaml"

// LoadConfig reads file from the workspace reported by Workspace into out and validates
// it against out's `validate` tags. An empty file name selects
// DefaultConfigFile.
func LoadConfig(file string, out any) error {
	if file == "" {
		file = DefaultConfigFile
	}
	return DecodeConfig(filepath.Join(Workspace(), file), out)
}

// DecodeConfig reads the YAML file at path into out and validates it.
func DecodeConfig(path string, out any) error {
	if err := parser.NewYamlConfigParser().ParseFile(path, out); err != nil {
		return err
	}
	return validation.Struct(out)
}
