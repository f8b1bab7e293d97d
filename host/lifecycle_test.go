package host

import (
	stderrors "errors"
	"testing"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
)

type mockVTable struct {
	mock.Mock
}

func (m *mockVTable) New() unsafe.Pointer {
	return m.Called().Get(0).(unsafe.Pointer)
}

func (m *mockVTable) Enable(p unsafe.Pointer)  { m.Called(p) }
func (m *mockVTable) Disable(p unsafe.Pointer) { m.Called(p) }
func (m *mockVTable) Drop(p unsafe.Pointer)    { m.Called(p) }

func (m *mockVTable) descriptor(inst unsafe.Pointer, shouldDrop bool) ffi.PluginInstance {
	return ffi.PluginInstance{
		Instance:   inst,
		ShouldDrop: shouldDrop,
		VTable: ffi.PluginVTable{
			New:     m.New,
			Enable:  m.Enable,
			Disable: m.Disable,
			Drop:    m.Drop,
		},
		ABIVersion: ffi.ABIVersion,
		Name:       ffi.StringFrom("mock"),
	}
}

func instance() unsafe.Pointer { return unsafe.Pointer(new(int)) }

func TestLifecycle_ShouldDropReconstructs(t *testing.T) {
	vt := &mockVTable{}
	first, second := instance(), instance()

	vt.On("Enable", first).Once()
	vt.On("Disable", first).Once()
	vt.On("Drop", first).Once()
	vt.On("New").Return(second).Once()
	vt.On("Enable", second).Once()
	vt.On("Disable", second).Once()
	vt.On("Drop", second).Once()

	lc := NewLifecycle(vt.descriptor(first, true))
	assert.Equal(t, "mock", lc.Name())
	assert.Equal(t, StateConstructed, lc.State())

	require.NoError(t, lc.Enable())
	assert.Equal(t, StateEnabled, lc.State())

	require.NoError(t, lc.Disable())
	assert.Equal(t, StateDisabled, lc.State())
	assert.False(t, lc.Live())

	require.NoError(t, lc.Enable())
	assert.True(t, lc.Live())

	require.NoError(t, lc.Unload())
	assert.Equal(t, StateUnloaded, lc.State())
	assert.False(t, lc.Live())

	vt.AssertExpectations(t)
}

func TestLifecycle_KeepsInstanceWithoutShouldDrop(t *testing.T) {
	vt := &mockVTable{}
	inst := instance()

	vt.On("Enable", inst).Twice()
	vt.On("Disable", inst).Twice()
	vt.On("Drop", inst).Once()

	lc := NewLifecycle(vt.descriptor(inst, false))
	for range 2 {
		require.NoError(t, lc.Enable())
		require.NoError(t, lc.Disable())
		assert.True(t, lc.Live())
	}
	require.NoError(t, lc.Unload())

	vt.AssertExpectations(t)
	vt.AssertNotCalled(t, "New")
}

func TestLifecycle_UnloadNeverEnabled(t *testing.T) {
	vt := &mockVTable{}
	inst := instance()
	vt.On("Drop", inst).Once()

	lc := NewLifecycle(vt.descriptor(inst, true))
	require.NoError(t, lc.Unload())

	vt.AssertExpectations(t)
	vt.AssertNotCalled(t, "Disable", mock.Anything)
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(lc *Lifecycle)
		call  func(lc *Lifecycle) error
		state string
	}{
		{
			name:  "disable constructed",
			setup: func(*Lifecycle) {},
			call:  (*Lifecycle).Disable,
			state: "constructed",
		},
		{
			name:  "enable enabled",
			setup: func(lc *Lifecycle) { _ = lc.Enable() },
			call:  (*Lifecycle).Enable,
			state: "enabled",
		},
		{
			name:  "enable unloaded",
			setup: func(lc *Lifecycle) { _ = lc.Unload() },
			call:  (*Lifecycle).Enable,
			state: "unloaded",
		},
		{
			name:  "unload twice",
			setup: func(lc *Lifecycle) { _ = lc.Unload() },
			call:  (*Lifecycle).Unload,
			state: "unloaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vt := &mockVTable{}
			vt.On("Enable", mock.Anything).Maybe()
			vt.On("Disable", mock.Anything).Maybe()
			vt.On("Drop", mock.Anything).Maybe()

			lc := NewLifecycle(vt.descriptor(instance(), false))
			tt.setup(lc)

			err := tt.call(lc)
			var lcErr *errors.LifecycleError
			require.True(t, stderrors.As(err, &lcErr))
			assert.Equal(t, "mock", lcErr.Plugin)
			assert.Equal(t, tt.state, lcErr.State)
		})
	}
}

func TestLifecycle_PanicBecomesError(t *testing.T) {
	vt := &mockVTable{}
	inst := instance()
	vt.On("Enable", inst).Panic("enable exploded").Once()
	vt.On("Drop", inst).Once()

	lc := NewLifecycle(vt.descriptor(inst, false))
	err := lc.Enable()

	var pe *errors.PanicError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, "enable", pe.Operation)
	assert.Equal(t, "mock", pe.Plugin)
	assert.Equal(t, StateConstructed, lc.State())

	require.NoError(t, lc.Unload())
	vt.AssertExpectations(t)
}

func TestLifecycle_FailedDisableStillDisables(t *testing.T) {
	vt := &mockVTable{}
	inst := instance()
	vt.On("Enable", inst).Once()
	vt.On("Disable", inst).Panic("disable exploded").Once()
	vt.On("Drop", inst).Once()

	lc := NewLifecycle(vt.descriptor(inst, true))
	require.NoError(t, lc.Enable())

	err := lc.Disable()
	var pe *errors.PanicError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, StateDisabled, lc.State())
	assert.False(t, lc.Live())

	vt.AssertExpectations(t)
}

func TestLifecycle_CountsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	vt := &mockVTable{}
	first, second := instance(), instance()
	vt.On("Enable", mock.Anything)
	vt.On("Disable", mock.Anything)
	vt.On("Drop", mock.Anything)
	vt.On("New").Return(second)

	lc := NewLifecycle(vt.descriptor(first, true), WithLifecycleMetrics(metrics))
	require.NoError(t, lc.Enable())
	require.NoError(t, lc.Disable())
	require.NoError(t, lc.Enable())
	require.NoError(t, lc.Unload())

	count := func(transition string) float64 {
		return counterValue(t, metrics.Transitions.WithLabelValues("mock", transition))
	}
	assert.Equal(t, 2.0, count("enable"))
	assert.Equal(t, 2.0, count("disable"))
	assert.Equal(t, 1.0, count("construct"))
	assert.Equal(t, 2.0, count("destroy"))
	assert.Equal(t, 1.0, count("unload"))
}
