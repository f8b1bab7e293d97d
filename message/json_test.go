package message

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// jsonHost serves the encode slot with a fixed answer.
func jsonHost(t *testing.T, answer string) {
	t.Helper()
	toJSON := func(chain ffi.MessageChain) ffi.String {
		c := FromFFI(chain)
		c.Release()
		return ffi.StringFrom(answer)
	}
	table := map[uint16]unsafe.Pointer{loader.IDMessageChainToJSON: ffi.FuncPointer(toJSON)}

	loader.Reset()
	loader.Init(ffi.Manager{GetFun: func(id uint16) unsafe.Pointer { return table[id] }})
	t.Cleanup(loader.Reset)
}

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantErr bool
	}{
		{name: "encoded", answer: `{"elements":[]}`},
		{name: "host failed", answer: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonHost(t, tt.answer)
			chain := FromText("hi")
			defer chain.Release()

			data, err := chain.EncodeJSON()
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.answer, data)
				return
			}
			var serErr *errors.SerializationError
			require.ErrorAs(t, err, &serErr)
			assert.Equal(t, "json", serErr.Format)
			assert.Empty(t, chain.ToJSON())
		})
	}
}
