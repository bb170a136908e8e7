/*
 * An SPI keyboard controller
 *
 * This will emulate the keyboard controller peripheral which
 * presents AT set 1 scancodes from an upstream keyboard over SPI.
 * After selecting the controller the master exchanges exactly two
 * bytes with it; subsequent exchanges in the same selection are
 * answered with $00 and ignored.
 *
 * Read scancode
 *
 *   | MOSI | MISO     |
 *   |======|==========|
 *   | $00  | <X>      |
 *   | <X>  | scancode |
 *
 * After the scancode is read the internal scancode register is reset
 * to $00 and the interrupt line is deasserted.  Subsequent reads will
 * therefore return $00.
 *
 * Write control
 *
 * Writing is indicated by sending a byte with the high bit set.  The
 * low 7 bits are the control code.  The control response is sent in
 * the next byte.
 *
 *   $00 - reset the controller
 *   $01 - responds $FF if the scancode register is full or $00 if empty
 *
 * Unknown control codes respond $00 and have no effect, but this is
 * implementation-defined and shouldn't be relied upon.
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package buri

type kbdState int

const (
	kbdNotSelected kbdState = iota
	kbdNewlySelected
	kbdReadyToRead
	kbdReadyToRespond
	kbdDone
)

type Keyboard struct {
	spi          *SPISlave
	state        kbdState
	lastScancode byte       // A scancode waiting to be read
	scancodeFull bool       // If a scancode is waiting
	writeIRQ     func(bool) // Data-ready interrupt line, may be nil
}

// Returns a keyboard controller.  The hardware talks SPI mode 1,
// MSB first.  writeMiso is called whenever the MISO line is driven
// and writeIRQ whenever the data-ready interrupt line changes.
// Either may be nil.
func NewKeyboard(writeMiso func(bool), writeIRQ func(bool)) *Keyboard {
	k := &Keyboard{writeIRQ: writeIRQ}
	k.spi = NewSPISlave(SPIMode1, MSBFirst, k, writeMiso)
	return k
}

// Resets the controller: the scancode register is emptied, the
// interrupt line deasserted and any partial exchange abandoned
func (k *Keyboard) Reset() {
	k.spi.Reset()
	k.state = kbdNotSelected
	k.lastScancode = 0
	k.scancodeFull = false
	k.setIRQ(false)
}

// ScancodeReady is called by the upstream keyboard whenever it has
// decoded a new scancode.  The scancode register is one byte deep:
// if an unread scancode is already waiting it is silently
// overwritten.  This is the documented at-most-one-pending-byte
// policy of the hardware, not a queue.
func (k *Keyboard) ScancodeReady(scancode byte) {
	k.lastScancode = scancode
	k.scancodeFull = true
	k.setIRQ(true)
}

// The SPI lines, forwarded to the exchange engine

func (k *Keyboard) WriteSelect(level bool) { k.spi.WriteSelect(level) }
func (k *Keyboard) WriteClock(level bool)  { k.spi.WriteClock(level) }
func (k *Keyboard) WriteMosi(level bool)   { k.spi.WriteMosi(level) }
func (k *Keyboard) ReadMiso() bool         { return k.spi.ReadMiso() }

func (k *Keyboard) onSelect() {
	k.state = kbdNewlySelected
}

func (k *Keyboard) onDeselect() {
	k.state = kbdNotSelected
}

func (k *Keyboard) onByteExchanged(recv byte) byte {
	switch k.state {
	case kbdNewlySelected:
		if recv&0x80 != 0 {
			// Control, the value of the response depends
			// on the code
			k.state = kbdReadyToRespond
			return k.control(recv & 0x7F)
		}
		// Read, respond with the scancode register and
		// clear it
		k.state = kbdReadyToRead
		resp := k.lastScancode
		k.lastScancode = 0
		k.scancodeFull = false
		k.setIRQ(false)
		return resp
	case kbdReadyToRead, kbdReadyToRespond:
		k.state = kbdDone
		return 0x00
	default:
		// Transaction over, answer $00 until deselected
		return 0x00
	}
}

// Called when there is a new control code.  Returns the response to
// the control code.
func (k *Keyboard) control(code byte) byte {
	switch code {
	case 0x00:
		k.Reset()
		return 0x00
	case 0x01:
		if k.scancodeFull {
			return 0xFF
		}
		return 0x00
	default:
		return 0x00
	}
}

func (k *Keyboard) setIRQ(level bool) {
	if k.writeIRQ != nil {
		k.writeIRQ(level)
	}
}
