package message

import (
	"fmt"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// ToJSON serializes the chain through the host. The host answers "" when
// it cannot encode the chain; EncodeJSON reports that case as an error.
func (c MessageChain) ToJSON() string {
	return loader.Table().MessageChainToJSON(c.Clone().ToFFI()).Into()
}

// EncodeJSON is ToJSON with an encode failure returned as a
// *errors.SerializationError.
func (c MessageChain) EncodeJSON() (string, error) {
	data := c.ToJSON()
	if data == "" {
		return "", &errors.SerializationError{Format: "json", Err: fmt.Errorf("host returned no data")}
	}
	return data, nil
}

// FromJSON parses a chain serialized by ToJSON.
func FromJSON(data string) (MessageChain, error) {
	res := loader.Table().MessageChainFromJSON(ffi.StrFrom(data))
	chain, err := res.Unpack()
	if err != nil {
		return MessageChain{}, &errors.SerializationError{Format: "json", Err: err}
	}
	return FromFFI(chain), nil
}
