package plugin

import (
	"testing"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/internal/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct {
	mock.Mock
}

func (m *mockPlugin) Enable()  { m.Called() }
func (m *mockPlugin) Disable() { m.Called() }
func (m *mockPlugin) Drop()    { m.Called() }

type Echo struct{}

func (Echo) Enable()  {}
func (Echo) Disable() {}

func TestExport_Descriptor(t *testing.T) {
	inst := Export(func() Plugin { return Echo{} })

	assert.Equal(t, "Echo_plugin", inst.Name.Into())
	assert.True(t, inst.ShouldDrop, "instances are destroyed on disable by default")
	assert.Equal(t, ffi.ABIVersion, inst.ABIVersion)
	require.NotNil(t, inst.Instance)
	require.NotNil(t, inst.VTable.New)
	require.NotNil(t, inst.VTable.Enable)
	require.NotNil(t, inst.VTable.Disable)
	require.NotNil(t, inst.VTable.Drop)

	inst.VTable.Drop(inst.Instance)
}

func TestExport_Options(t *testing.T) {
	inst := Export(func() Plugin { return Echo{} }, WithName("custom"), WithShouldDrop(false))
	assert.Equal(t, "custom", inst.Name.Into())
	assert.False(t, inst.ShouldDrop)
	inst.VTable.Drop(inst.Instance)
}

func TestExport_OperationsReachPlugin(t *testing.T) {
	before, _ := abi.Stats()

	var built []*mockPlugin
	factory := func() Plugin {
		p := new(mockPlugin)
		p.On("Enable").Return()
		p.On("Disable").Return()
		p.On("Drop").Return()
		built = append(built, p)
		return p
	}

	inst := Export(factory)
	require.Len(t, built, 1)

	vt := inst.VTable
	vt.Enable(inst.Instance)
	vt.Disable(inst.Instance)
	vt.Drop(inst.Instance)
	built[0].AssertNumberOfCalls(t, "Enable", 1)
	built[0].AssertNumberOfCalls(t, "Disable", 1)
	built[0].AssertNumberOfCalls(t, "Drop", 1)

	fresh := vt.New()
	require.Len(t, built, 2)
	assert.NotEqual(t, inst.Instance, fresh)
	vt.Enable(fresh)
	vt.Drop(fresh)
	built[1].AssertNumberOfCalls(t, "Enable", 1)
	built[1].AssertNumberOfCalls(t, "Drop", 1)

	after, _ := abi.Stats()
	assert.Equal(t, before, after, "every constructed instance was released")
}

func TestDefaultName(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "value", value: Echo{}, want: "Echo_plugin"},
		{name: "pointer", value: &Echo{}, want: "Echo_plugin"},
		{name: "nil", value: nil, want: "anonymous_plugin"},
		{name: "unnamed", value: struct{}{}, want: "anonymous_plugin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultName(tt.value))
		})
	}
}
