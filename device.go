/*
 * Device interfaces
 *
 * These will handle peripherals attached to the SPI bus
 * and raise interrupts
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package buri

// A peripheral layered on the SPI slave exchange engine.  The engine
// notifies it of select line changes and of each completed byte
// exchange.  All notifications are synchronous and arrive on the
// goroutine that wrote the line level.
type spiPeripheral interface {
	// Device was selected & previously wasn't
	onSelect()
	// Device was deselected & previously was
	onDeselect()
	// A byte has been exchanged with the master.  Returns the byte
	// to send to the master on the next exchange.  This is called
	// after the engine has reset the send byte to 0, so the return
	// value takes precedence over the default reset.
	onByteExchanged(recv byte) byte
}

// A device attached to one of the board's SPI select lines
type spiDevice interface {
	WriteSelect(level bool)
	WriteClock(level bool)
	WriteMosi(level bool)
	ReadMiso() bool
	Reset()
}
