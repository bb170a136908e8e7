/*
 * The Búri board
 *
 * This wires the SPI peripherals and the interrupt sources together
 * the way the hardware does.  The SPI bus is bit-banged through VIA
 * port A:
 *
 *             |     |
 *         PA0 |-->--| CLK
 *   VIA   PA1 |-->--| MOSI   SPI peripheral
 *         PA7 |--<--| MISO
 *             |     |
 *
 * Lines PA2, PA3 and PA4 are connected to a 74138 3-to-8 decoder to
 * provide the chip select lines, so up to 7 SPI peripherals can be
 * attached with device number 7 reserved for "no device".
 *
 * Well known peripherals:
 *
 *   0 - Keyboard
 *
 * The interrupt lines of the devices are OR-combined onto the single
 * CPU interrupt input.
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package buri

import (
	"github.com/pkg/errors"
)

// The named interrupt sources of the board
const (
	IRQSourceACIA     = "acia"
	IRQSourceVDP      = "vdp"
	IRQSourceKeyboard = "keyboard"
)

// Select decoder value meaning no device is selected
const noDevice = 7

type Board struct {
	keyboard *Keyboard
	devices  map[int]spiDevice
	irqs     *IRQAggregator

	selectedDevice int
	portA          byte // Last value written to port A
}

// Returns a board with the keyboard attached as SPI device 0.
// writeCPUIRQ is called whenever the aggregate interrupt level
// changes and may be nil.
func NewBoard(writeCPUIRQ func(bool)) *Board {
	b := &Board{
		devices:        make(map[int]spiDevice),
		selectedDevice: noDevice,
	}
	b.irqs = NewIRQAggregator(writeCPUIRQ,
		IRQSourceACIA, IRQSourceVDP, IRQSourceKeyboard)
	b.keyboard = NewKeyboard(nil, func(level bool) {
		b.irqs.SetSource(IRQSourceKeyboard, level)
	})
	b.devices[0] = b.keyboard
	return b
}

// Keyboard returns the keyboard controller so the upstream keyboard
// emulation can push scancodes into it
func (b *Board) Keyboard() *Keyboard {
	return b.keyboard
}

// AddSPIDevice attaches a device to the given select decoder output.
// Device numbers 0 to 6 are usable, 7 means no device.
func (b *Board) AddSPIDevice(num int, d spiDevice) error {
	if num < 0 || num >= noDevice {
		return errors.Errorf("spi device number out of range: %d", num)
	}
	if _, ok := b.devices[num]; ok {
		return errors.Errorf("spi device number conflict: %d", num)
	}
	b.devices[num] = d
	return nil
}

// WritePortA decodes a write to VIA port A and forwards the decoded
// line levels to the SPI devices.  The select lines settle before
// the clock, so a MOSI change in the same write is seen by the next
// edge, as on the hardware.
func (b *Board) WritePortA(data byte) {
	b.portA = data
	clk := data&0x01 != 0
	mosi := data&0x02 != 0
	b.selectedDevice = int(data>>2) & 0x07

	for num, d := range b.devices {
		d.WriteSelect(num == b.selectedDevice)
		d.WriteClock(clk)
		d.WriteMosi(mosi)
	}
}

// ReadPortA returns the port A pin levels: PA7 carries MISO from the
// selected device, the rest echo the last write.  Deselected devices
// leave MISO alone, as their line drivers are tri-stated.
func (b *Board) ReadPortA() byte {
	pa := b.portA & 0x7F
	if d, ok := b.devices[b.selectedDevice]; ok && d.ReadMiso() {
		pa |= 0x80
	}
	return pa
}

// SelectedDevice returns the device number currently on the select
// decoder, 7 if none
func (b *Board) SelectedDevice() int {
	return b.selectedDevice
}

// SetACIAIRQ sets the asserted state of the ACIA interrupt source
func (b *Board) SetACIAIRQ(asserted bool) {
	b.irqs.SetSource(IRQSourceACIA, asserted)
}

// VDPIRQLine sets the raw level of the VDP /INT line.  The line is
// active low so it is inverted to the logical sense before
// aggregation.
func (b *Board) VDPIRQLine(level bool) {
	b.irqs.SetSource(IRQSourceVDP, !level)
}

// IRQAsserted returns the aggregate CPU interrupt level
func (b *Board) IRQAsserted() bool {
	return b.irqs.Asserted()
}

// Resets every SPI device and deasserts all interrupt sources
func (b *Board) Reset() {
	for _, d := range b.devices {
		d.Reset()
	}
	b.selectedDevice = noDevice
	b.portA = 0
	b.irqs.SetSource(IRQSourceACIA, false)
	b.irqs.SetSource(IRQSourceVDP, false)
	b.irqs.SetSource(IRQSourceKeyboard, false)
}
