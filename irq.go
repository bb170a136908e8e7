/*
 * An interrupt aggregator
 *
 * This will combine the interrupt lines of several devices into the
 * single wired-OR line that drives the CPU interrupt input.  Sources
 * are level based: the aggregate is recomputed eagerly on every
 * source change and the consumer is only notified when the aggregate
 * itself changes.
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package buri

type IRQAggregator struct {
	flags    map[string]bool // Asserted state per named source
	out      bool            // The current aggregate level
	writeOut func(bool)      // Aggregate line callback, may be nil
}

// Returns an aggregator for the named sources, all deasserted.
// writeOut is called whenever the aggregate level changes.
func NewIRQAggregator(writeOut func(bool), sources ...string) *IRQAggregator {
	a := &IRQAggregator{
		flags:    make(map[string]bool, len(sources)),
		writeOut: writeOut,
	}
	for _, s := range sources {
		a.flags[s] = false
	}
	return a
}

// SetSource records the asserted state of the named source and
// recomputes the aggregate.  Sources with an active-low hardware
// line must invert to the logical sense before calling; the
// aggregator only deals in asserted/deasserted.
func (a *IRQAggregator) SetSource(name string, asserted bool) {
	a.flags[name] = asserted

	agg := false
	for _, f := range a.flags {
		if f {
			agg = true
			break
		}
	}
	if agg != a.out {
		a.out = agg
		if a.writeOut != nil {
			a.writeOut(agg)
		}
	}
}

// Asserted returns the current aggregate level
func (a *IRQAggregator) Asserted() bool {
	return a.out
}
