/*
 * An exerciser for the Búri SPI keyboard controller
 *
 * Keys pressed on the console are pushed into the keyboard
 * controller as AT set 1 scancodes.  When the board raises its
 * interrupt line the scancode is read back over SPI, bit-banged
 * through VIA port A the way the firmware does it, and printed.
 *
 * Copyright (C) 2024 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lawrencewoodman/go-buri"
)

// The port A pin assignments
const (
	paCLK      = 0x01 // PA0
	paMOSI     = 0x02 // PA1
	paMISO     = 0x80 // PA7
	paNoDevice = 7    // Select decoder value for no device
	paKeyboard = 0    // Select decoder value for the keyboard
)

// Composes the bit patterns a bit-banging firmware would write to
// port A and presents them as the line operations the master wants
type portA struct {
	board  *buri.Board
	clk    bool
	mosi   bool
	device int
}

func newPortA(board *buri.Board) *portA {
	p := &portA{board: board, device: paNoDevice}
	p.write()
	return p
}

func (p *portA) write() {
	var data byte
	if p.clk {
		data |= paCLK
	}
	if p.mosi {
		data |= paMOSI
	}
	data |= byte(p.device) << 2
	p.board.WritePortA(data)
}

func (p *portA) writeSelect(level bool) {
	if level {
		p.device = paKeyboard
	} else {
		p.device = paNoDevice
	}
	p.write()
}

func (p *portA) writeClock(level bool) {
	p.clk = level
	p.write()
}

func (p *portA) writeMosi(level bool) {
	p.mosi = level
	p.write()
}

func (p *portA) readMiso() bool {
	return p.board.ReadPortA()&paMISO != 0
}

func run() error {
	con, err := newRawConsole()
	if err != nil {
		return err
	}
	defer con.close()

	irqRaised := false
	board := buri.NewBoard(func(level bool) {
		irqRaised = level
	})
	port := newPortA(board)

	// The keyboard controller talks SPI mode 1, MSB first
	master := buri.NewMaster(buri.SPIMode1, buri.MSBFirst,
		port.writeSelect, port.writeClock, port.writeMosi,
		port.readMiso)

	// Reads the pending scancode with the two byte read
	// transaction
	readScancode := func() byte {
		master.Select()
		master.Transfer(0x00)
		scancode := master.Transfer(0x00)
		master.Deselect()
		return scancode
	}

	fmt.Printf("goburi - SPI keyboard exerciser\r\n")
	fmt.Printf("Press keys to see their scancodes, CTRL-C to quit\r\n")

	for {
		key, err := con.getKey()
		if err != nil {
			return err
		}
		if key == "" {
			time.Sleep(time.Millisecond)
			continue
		}
		if key == "\x03" { // CTRL-C
			return nil
		}
		makeCode, ok := scancodes[key]
		if !ok {
			continue
		}

		// The scancode register is one byte deep so each code
		// is read back before the next is pushed
		for _, code := range []byte{makeCode, breakCode(makeCode)} {
			board.Keyboard().ScancodeReady(code)
			if irqRaised {
				fmt.Printf("key %q scancode $%02X\r\n",
					key, readScancode())
			}
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "goburi: %s\n", err)
		os.Exit(1)
	}
}
