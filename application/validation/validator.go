// Package validation checks configuration structs and plugin descriptors.
package validation

import (
	stdErrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
)

// validate is a package-level singleton; building a validator is
// expensive and it is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxNameLength bounds plugin names.
const MaxNameLength = 128

// Struct validates v against its `validate` tags. The first failing field
// is reported as a *errors.ConfigError.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed on the '%s' rule", fe.Tag()),
		}
	}
	return &errors.ConfigError{Err: err}
}

type descriptor struct {
	Name       string `validate:"required,max=128,printascii,excludesall= /\\"`
	ABIVersion uint8
	New        bool `validate:"eq=true"`
	Enable     bool `validate:"eq=true"`
	Disable    bool `validate:"eq=true"`
	Drop       bool `validate:"eq=true"`
}

// Descriptor checks a descriptor returned by a plugin entry point: the
// name must be a short printable identifier, the ABI version must match
// and every lifecycle operation must be present.
func Descriptor(inst ffi.PluginInstance) error {
	d := descriptor{
		Name:       inst.Name.Into(),
		ABIVersion: inst.ABIVersion,
		New:        inst.VTable.New != nil,
		Enable:     inst.VTable.Enable != nil,
		Disable:    inst.VTable.Disable != nil,
		Drop:       inst.VTable.Drop != nil,
	}
	if err := Struct(d); err != nil {
		return err
	}
	if d.ABIVersion != ffi.ABIVersion {
		return &errors.ConfigError{
			Field: "descriptor.ABIVersion",
			Err:   fmt.Errorf("plugin reports ABI version %d, host expects %d", d.ABIVersion, ffi.ABIVersion),
		}
	}
	if inst.Instance == nil {
		return &errors.ConfigError{Field: "descriptor.Instance", Err: fmt.Errorf("descriptor carries no instance")}
	}
	return nil
}
