/*
 * A bit-banged SPI master
 *
 * This will drive the line inputs of a slave the way a bit-banging
 * master does, for any SPI mode and bit order.  It is used for
 * headless operation so the slave devices can be exercised without a
 * CPU and firmware behind the port.
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package buri

type Master struct {
	mode  SPIMode
	order BitOrder

	writeSelect func(bool)
	writeClock  func(bool)
	writeMosi   func(bool)
	readMiso    func() bool
}

// Returns a master wired to a slave's line operations.  The mode and
// bit order must match the slave's for the exchanged bytes to make
// sense, as on real hardware.
func NewMaster(
	mode SPIMode,
	order BitOrder,
	writeSelect func(bool),
	writeClock func(bool),
	writeMosi func(bool),
	readMiso func() bool,
) *Master {
	return &Master{
		mode:        mode,
		order:       order,
		writeSelect: writeSelect,
		writeClock:  writeClock,
		writeMosi:   writeMosi,
		readMiso:    readMiso,
	}
}

// Select parks the clock at its idle level and raises the select
// line
func (m *Master) Select() {
	m.writeClock(m.idle())
	m.writeSelect(true)
}

// Deselect lowers the select line and returns the clock to idle
func (m *Master) Deselect() {
	m.writeSelect(false)
	m.writeClock(m.idle())
}

// Transfer exchanges one byte with the slave while selected.  With
// CPHA=0 the slave samples MOSI on the leading edge of each clock
// cycle and shifts MISO on the trailing edge; with CPHA=1 the roles
// are swapped, so MOSI is changed after the leading edge and MISO
// sampled before the trailing edge.
func (m *Master) Transfer(tx byte) byte {
	var rx byte

	for i := 0; i < 8; i++ {
		var out bool
		if m.order == MSBFirst {
			out = tx&(byte(0x80)>>i) != 0
		} else {
			out = tx&(byte(0x01)<<i) != 0
		}

		var in bool
		if !m.cpha() {
			m.writeMosi(out)
			m.writeClock(!m.idle()) // Slave samples MOSI
			in = m.readMiso()
			m.writeClock(m.idle()) // Slave shifts out next bit
		} else {
			m.writeClock(!m.idle()) // Slave shifts out next bit
			m.writeMosi(out)
			in = m.readMiso()
			m.writeClock(m.idle()) // Slave samples MOSI
		}

		if in {
			if m.order == MSBFirst {
				rx |= byte(0x80) >> i
			} else {
				rx |= byte(0x01) << i
			}
		}
	}
	return rx
}

// Clock idles high in modes 2 and 3
func (m *Master) idle() bool {
	return m.mode == SPIMode2 || m.mode == SPIMode3
}

// Sample on the second edge in modes 1 and 3
func (m *Master) cpha() bool {
	return m.mode == SPIMode1 || m.mode == SPIMode3
}
