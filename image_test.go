package atri

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
	"github.com/AtriKawaii/atri-go/log"
)

func TestImage_BeforeInit(t *testing.T) {
	loader.Reset()
	t.Cleanup(loader.Reset)

	var img Image
	_, ok := img.Bootstrapped()
	assert.False(t, ok)
	assert.Panics(t, func() { img.Manager() })

	var buf bytes.Buffer
	img.Logger(log.WithFallback(&buf)).Info("early")
	assert.Contains(t, buf.String(), "early")
}

func TestImage_KeepsItsOwnHandle(t *testing.T) {
	loader.Reset()
	t.Cleanup(loader.Reset)

	var seen []uintptr
	logFn := func(handle uintptr, _ unsafe.Pointer, _ uint8, _ ffi.Str) { seen = append(seen, handle) }
	table := map[uint16]unsafe.Pointer{loader.IDLog: ffi.FuncPointer(logFn)}
	lookup := func(id uint16) unsafe.Pointer { return table[id] }

	var first, second Image
	first.Init(ffi.Manager{Handle: 1, GetFun: lookup})
	second.Init(ffi.Manager{Handle: 2, GetFun: lookup})

	require.Equal(t, uintptr(2), second.Manager().Handle)
	assert.Equal(t, uintptr(1), loader.Manager().Handle)

	second.Logger().Info("second")
	first.Logger().Info("first")
	assert.Equal(t, []uintptr{2, 1}, seen)
}
