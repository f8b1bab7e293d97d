package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	var tr Tracker

	a := tr.Cloneable("a")
	b := a.Clone()
	m := tr.Managed("m")
	assert.Equal(t, int32(3), tr.Live())
	assert.Equal(t, "a", Label(b))

	a.Drop()
	b.Drop()
	b.Drop()
	m.Drop()

	assert.Equal(t, int32(0), tr.Live())
	assert.Equal(t, int32(3), tr.Created())
	tr.AssertBalanced(t)
}
