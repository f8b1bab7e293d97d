// Package testutil provides test helpers for code that moves owned values
// across the plugin boundary.
package testutil

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AtriKawaii/atri-go/ffi"
)

// Tracker counts the live copies of the values it hands out. Every copy
// made through the clone function is counted, and every destroyed copy
// is subtracted, so a balanced test ends with Live() == 0.
type Tracker struct {
	live    atomic.Int32
	created atomic.Int32
}

type tracked struct {
	t     *Tracker
	Label string
}

func (v tracked) Drop() { v.t.live.Add(-1) }

func (t *Tracker) track(label string) tracked {
	t.live.Add(1)
	t.created.Add(1)
	return tracked{t: t, Label: label}
}

// Cloneable returns a fresh tracked value.
func (t *Tracker) Cloneable(label string) ffi.ManagedCloneable {
	return ffi.CloneableFrom(t.track(label), func(v tracked) tracked {
		return t.track(v.Label)
	})
}

// Managed returns a fresh tracked value that cannot be cloned.
func (t *Tracker) Managed(label string) ffi.Managed {
	return ffi.ManagedFrom(t.track(label))
}

// Label returns the label of a tracked value.
func Label(c ffi.ManagedCloneable) string {
	return (*tracked)(c.Pointer()).Label
}

// Live returns the number of copies not yet destroyed.
func (t *Tracker) Live() int32 { return t.live.Load() }

// Created returns the number of copies ever made.
func (t *Tracker) Created() int32 { return t.created.Load() }

// AssertBalanced fails the test if any copy is still alive.
func (t *Tracker) AssertBalanced(tb testing.TB) bool {
	tb.Helper()
	return assert.Zero(tb, t.Live(), "%d of %d tracked values were never released", t.Live(), t.Created())
}
