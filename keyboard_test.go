/*
 * SPI keyboard controller tests
 */

package buri

import (
	"testing"
)

// Records the level of the keyboard's data-ready interrupt line
type irqRecorder struct {
	level   bool
	changes int
}

func (r *irqRecorder) write(level bool) {
	r.level = level
	r.changes++
}

func newTestKeyboard() (*Keyboard, *irqRecorder, *Master) {
	irq := &irqRecorder{}
	k := NewKeyboard(nil, irq.write)
	m := NewMaster(SPIMode1, MSBFirst,
		k.WriteSelect, k.WriteClock, k.WriteMosi, k.ReadMiso)
	return k, irq, m
}

func checkTransfer(t *testing.T, m *Master, tx byte, want byte) {
	t.Helper()
	if got := m.Transfer(tx); got != want {
		t.Errorf("Transfer(%02X) got: %02X, want: %02X", tx, got, want)
	}
}

func TestScancode_roundTrip(t *testing.T) {
	k, irq, m := newTestKeyboard()

	k.ScancodeReady(0x1C)
	if !irq.level {
		t.Fatalf("irq got: deasserted, want: asserted")
	}

	m.Select()
	m.Transfer(0x00) // Read command, response undefined
	checkTransfer(t, m, 0x00, 0x1C)
	m.Deselect()

	if irq.level {
		t.Errorf("irq got: asserted, want: deasserted")
	}
	if k.scancodeFull {
		t.Errorf("scancodeFull got: true, want: false")
	}

	// The register was cleared by the read so a further read
	// returns $00 and a peek reports empty
	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0x00)
	m.Deselect()

	m.Select()
	m.Transfer(0x81)
	checkTransfer(t, m, 0x00, 0x00)
	m.Deselect()
}

// Control $01 reports whether a scancode is waiting without
// clearing it
func TestControl_peek(t *testing.T) {
	k, irq, m := newTestKeyboard()

	k.ScancodeReady(0xAA)
	m.Select()
	m.Transfer(0x81)
	checkTransfer(t, m, 0x00, 0xFF)
	m.Deselect()

	if !k.scancodeFull {
		t.Errorf("scancodeFull got: false, want: true")
	}
	if !irq.level {
		t.Errorf("irq got: deasserted, want: asserted")
	}

	// The scancode is still there to read
	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0xAA)
	m.Deselect()
}

// Control $00 resets the controller even with a scancode pending
func TestControl_reset(t *testing.T) {
	k, irq, m := newTestKeyboard()

	k.ScancodeReady(0x2D)
	m.Select()
	m.Transfer(0x80)
	checkTransfer(t, m, 0x00, 0x00)
	m.Deselect()

	if k.scancodeFull {
		t.Errorf("scancodeFull got: true, want: false")
	}
	if irq.level {
		t.Errorf("irq got: asserted, want: deasserted")
	}

	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0x00)
	m.Deselect()
}

// Unknown control codes respond $00 and change nothing
func TestControl_unknown(t *testing.T) {
	k, _, m := newTestKeyboard()

	k.ScancodeReady(0x44)
	m.Select()
	m.Transfer(0xFF) // Control $7F
	checkTransfer(t, m, 0x00, 0x00)
	m.Deselect()

	if !k.scancodeFull {
		t.Errorf("scancodeFull got: false, want: true")
	}

	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0x44)
	m.Deselect()
}

// An unread scancode is silently overwritten, there is no queue
func TestScancodeReady_overwrites(t *testing.T) {
	k, _, m := newTestKeyboard()

	k.ScancodeReady(0x10)
	k.ScancodeReady(0x20)

	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0x20)
	m.Deselect()
}

// Exchanges beyond the two byte transaction are answered with $00
// until deselected
func TestTransaction_extraExchangesIgnored(t *testing.T) {
	k, _, m := newTestKeyboard()

	k.ScancodeReady(0x55)
	m.Select()
	m.Transfer(0x81)
	checkTransfer(t, m, 0x00, 0xFF)
	checkTransfer(t, m, 0x81, 0x00)
	checkTransfer(t, m, 0x00, 0x00)
	checkTransfer(t, m, 0xFF, 0x00)
	m.Deselect()

	// The extra exchanges had no effect, the scancode is still
	// waiting
	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0x55)
	m.Deselect()
}

// Deselecting abandons the transaction; reselecting starts afresh
func TestTransaction_deselectRestarts(t *testing.T) {
	k, _, m := newTestKeyboard()

	k.ScancodeReady(0x3B)
	m.Select()
	m.Transfer(0x81) // Peek command, then abandon
	m.Deselect()

	m.Select()
	m.Transfer(0x00)
	checkTransfer(t, m, 0x00, 0x3B)
	m.Deselect()
}

func TestReset(t *testing.T) {
	k, irq, _ := newTestKeyboard()

	k.ScancodeReady(0x77)
	k.Reset()
	if k.scancodeFull {
		t.Errorf("scancodeFull got: true, want: false")
	}
	if k.lastScancode != 0 {
		t.Errorf("lastScancode got: %02X, want: 00", k.lastScancode)
	}
	if irq.level {
		t.Errorf("irq got: asserted, want: deasserted")
	}
	if k.state != kbdNotSelected {
		t.Errorf("state got: %d, want: %d", k.state, kbdNotSelected)
	}
}
