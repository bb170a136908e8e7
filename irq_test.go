/*
 * Interrupt aggregator tests
 */

package buri

import (
	"testing"
)

func checkAggregate(t *testing.T, a *IRQAggregator, want bool) {
	t.Helper()
	if a.Asserted() != want {
		t.Errorf("Asserted got: %t, want: %t", a.Asserted(), want)
	}
}

func TestSetSource(t *testing.T) {
	out := &irqRecorder{}
	a := NewIRQAggregator(out.write, "acia", "vdp", "via")

	checkAggregate(t, a, false)

	// Asserting any one source asserts the aggregate
	a.SetSource("vdp", true)
	checkAggregate(t, a, true)
	if !out.level {
		t.Errorf("out got: deasserted, want: asserted")
	}

	// A second source makes no difference to the aggregate
	a.SetSource("acia", true)
	checkAggregate(t, a, true)

	// Deasserting one of two leaves the aggregate asserted
	a.SetSource("vdp", false)
	checkAggregate(t, a, true)

	// Deasserting the last source deasserts the aggregate
	a.SetSource("acia", false)
	checkAggregate(t, a, false)
	if out.level {
		t.Errorf("out got: asserted, want: deasserted")
	}
}

// The consumer must only be notified when the aggregate changes, not
// on every source update
func TestSetSource_notifiesOnChangeOnly(t *testing.T) {
	out := &irqRecorder{}
	a := NewIRQAggregator(out.write, "acia", "vdp", "via")

	a.SetSource("acia", true)
	a.SetSource("vdp", true)
	a.SetSource("via", true)
	a.SetSource("vdp", false)
	a.SetSource("via", false)
	if out.changes != 1 {
		t.Errorf("changes got: %d, want: 1", out.changes)
	}

	a.SetSource("acia", false)
	if out.changes != 2 {
		t.Errorf("changes got: %d, want: 2", out.changes)
	}
}

// Redundant writes of the same source state change nothing
func TestSetSource_idempotent(t *testing.T) {
	out := &irqRecorder{}
	a := NewIRQAggregator(out.write, "acia", "vdp")

	a.SetSource("acia", true)
	a.SetSource("acia", true)
	checkAggregate(t, a, true)
	if out.changes != 1 {
		t.Errorf("changes got: %d, want: 1", out.changes)
	}
}
