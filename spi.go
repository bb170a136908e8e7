/*
 * An SPI slave exchange engine
 *
 * This will emulate the slave end of an SPI bus at the level of
 * individual line transitions.  The master owns the SELECT, CLK and
 * MOSI lines; the only line the slave drives is MISO.  Clock edges
 * are turned into full-duplex byte exchanges according to the SPI
 * mode and bit order, which are fixed at construction.
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package buri

// SPIMode selects the clock polarity (CPOL) and clock phase (CPHA).
// Modes 2 and 3 idle the clock high; modes 1 and 3 sample on the
// second edge of each clock cycle.
type SPIMode int

const (
	SPIMode0 SPIMode = iota // CPOL=0 CPHA=0
	SPIMode1                // CPOL=0 CPHA=1
	SPIMode2                // CPOL=1 CPHA=0
	SPIMode3                // CPOL=1 CPHA=1
)

// BitOrder selects whether bytes are exchanged most or least
// significant bit first
type BitOrder int

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

type SPISlave struct {
	mode  SPIMode  // Fixed at construction
	order BitOrder // Fixed at construction

	selected bool // Level of the SELECT line
	clk      bool // Level of the CLK line
	mosi     bool // Level of the MOSI line, sampled on sample edges
	miso     bool // Level of the MISO line, the only line we drive

	recvByte  byte // Byte being shifted in from the master
	sendByte  byte // Byte being shifted out to the master
	recvCount int  // Bits received so far, 0..8
	sendCount int  // Bits sent so far, 0..8

	peripheral spiPeripheral // Protocol layer, may be nil
	writeMiso  func(bool)    // MISO line callback, may be nil
}

// Returns a slave exchange engine for the given SPI mode and bit
// order.  peripheral receives select/deselect/byte-exchanged
// notifications and writeMiso is called whenever the MISO line is
// driven.  Either may be nil.
func NewSPISlave(
	mode SPIMode,
	order BitOrder,
	peripheral spiPeripheral,
	writeMiso func(bool),
) *SPISlave {
	return &SPISlave{
		mode:       mode,
		order:      order,
		peripheral: peripheral,
		writeMiso:  writeMiso,
	}
}

// Clears any partial exchange.  Line levels are left alone as they
// belong to the master.
func (s *SPISlave) Reset() {
	s.recvCount = 0
	s.sendCount = 0
	s.recvByte = 0
	s.sendByte = 0
}

// WriteSelect sets the level of the SELECT line.  A rising edge
// clears the bit counters and notifies the peripheral that it has
// been selected; a falling edge notifies deselection.  No-op if the
// level is unchanged.
func (s *SPISlave) WriteSelect(level bool) {
	if level == s.selected {
		return
	}
	s.selected = level
	if level {
		// Newly selected, clear recv/send counts
		s.recvCount = 0
		s.sendCount = 0
		if s.peripheral != nil {
			s.peripheral.onSelect()
		}
	} else {
		if s.peripheral != nil {
			s.peripheral.onDeselect()
		}
	}
}

// WriteClock sets the level of the CLK line.  A level change while
// selected is classified as idle-to-active or active-to-idle
// relative to CPOL and dispatched to the edge handler.  No-op if the
// level is unchanged.
func (s *SPISlave) WriteClock(level bool) {
	// Ignore no-change
	if level == s.clk {
		return
	}
	s.clk = level

	// That's it if we're not selected
	if !s.selected {
		return
	}

	// The clock idles at the CPOL level, so any transition away
	// from it is idle-to-active
	s.clkEdge(level != s.cpol())
}

// WriteMosi sets the level of the MOSI line.  Discarded while
// deselected as the value could never be sampled.
func (s *SPISlave) WriteMosi(level bool) {
	if !s.selected {
		return
	}
	s.mosi = level
}

// ReadMiso returns the level currently driven on the MISO line
func (s *SPISlave) ReadMiso() bool {
	return s.miso
}

// SetMisoByte arms the byte to send to the master on the next
// exchange and immediately drives its first bit onto MISO so the
// master can observe it before the next clock edge.  After a byte is
// exchanged the send byte is reset to 0 before the peripheral is
// notified, so a value armed inside the byte-exchanged notification
// overrides the reset.
func (s *SPISlave) SetMisoByte(b byte) {
	s.sendByte = b
	if s.order == MSBFirst {
		s.setMiso(b&0x80 != 0)
	} else {
		s.setMiso(b&0x01 != 0)
	}
}

// Handles a qualifying clock edge.  Whether the edge samples MOSI or
// shifts the next bit onto MISO depends on CPHA: with CPHA=0 data is
// stable on the idle-to-active edge, with CPHA=1 on the
// active-to-idle edge.
func (s *SPISlave) clkEdge(idleToActive bool) {
	dataStable := idleToActive
	if s.cpha() {
		dataStable = !idleToActive
	}

	if dataStable {
		// Data is stable, read MOSI
		if s.order == MSBFirst {
			s.recvByte <<= 1
			if s.mosi {
				s.recvByte |= 0x01
			}
		} else {
			s.recvByte >>= 1
			if s.mosi {
				s.recvByte |= 0x80
			}
		}
		s.recvCount++
	} else {
		// Data lines can be changed.  With CPHA=1 this is the
		// first edge of the cycle so the current bit goes out
		// now; with CPHA=0 the current bit was already out,
		// armed by SetMisoByte or driven by the previous
		// cycle's edge, so the next bit goes out.
		if s.cpha() {
			if s.order == MSBFirst {
				s.setMiso(s.sendByte&0x80 != 0)
				s.sendByte <<= 1
			} else {
				s.setMiso(s.sendByte&0x01 != 0)
				s.sendByte >>= 1
			}
		} else {
			if s.order == MSBFirst {
				s.sendByte <<= 1
				s.setMiso(s.sendByte&0x80 != 0)
			} else {
				s.sendByte >>= 1
				s.setMiso(s.sendByte&0x01 != 0)
			}
		}
		s.sendCount++
	}

	if s.recvCount == 8 && s.sendCount == 8 {
		// Sent and received an entire byte.  Clear the
		// counters ready for the next exchange in this
		// selection, reset the send byte and then let the
		// peripheral arm its response.
		recv := s.recvByte
		s.recvCount = 0
		s.sendCount = 0
		s.recvByte = 0
		s.SetMisoByte(0x00)
		if s.peripheral != nil {
			s.SetMisoByte(s.peripheral.onByteExchanged(recv))
		}
	}
}

func (s *SPISlave) setMiso(level bool) {
	s.miso = level
	if s.writeMiso != nil {
		s.writeMiso(level)
	}
}

// Clock idles high in modes 2 and 3
func (s *SPISlave) cpol() bool {
	return s.mode == SPIMode2 || s.mode == SPIMode3
}

// Sample on the second edge in modes 1 and 3
func (s *SPISlave) cpha() bool {
	return s.mode == SPIMode1 || s.mode == SPIMode3
}
