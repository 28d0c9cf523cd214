// Package timer implements the DIV/TIMA/TMA/TAC divider circuit: falling-
// edge detection on a TAC-selected bit of the internal 16-bit system
// counter, with the documented overflow-to-reload delay.
package timer

import (
	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/kvnbkr/pocketgb/internal/bit"
)

// Timer owns the DIV/TIMA/TMA/TAC registers and drives the Timer
// interrupt through the RequestInterrupt callback, which the bus sets to
// the shared interrupt.Controller's Request method.
type Timer struct {
	systemCounter uint16
	lastBit       bool
	overflowDelay int  // m-cycles remaining before the TMA reload
	reloadPending bool // set on the reload m-cycle; the interrupt fires on the next one

	div  uint8
	tima uint8
	tma  uint8
	tac  uint8

	RequestInterrupt func(addr.Interrupt)
}

// New returns a Timer with the system counter seeded to 0xABCC, matching
// the DMG's documented post-boot-ROM DIV value.
func New() *Timer {
	t := &Timer{systemCounter: 0xABCC}
	t.div = bit.High(t.systemCounter)
	return t
}

// Tick advances the timer by the given number of m-cycles.
func (t *Timer) Tick(mCycles int) {
	for i := 0; i < mCycles; i++ {
		t.tickOne()
	}
}

func (t *Timer) tickOne() {
	if t.reloadPending {
		t.reloadPending = false
		if t.RequestInterrupt != nil {
			t.RequestInterrupt(addr.Timer)
		}
	}

	if t.overflowDelay > 0 {
		t.overflowDelay--
		if t.overflowDelay == 0 {
			t.tima = t.tma
			t.reloadPending = true
		}
	}

	// one m-cycle = 4 dots of the system counter.
	for dot := 0; dot < 4; dot++ {
		t.systemCounter++
		t.div = bit.High(t.systemCounter)

		if t.overflowDelay > 0 {
			continue
		}

		enabled := t.tac&0x04 != 0
		if !enabled {
			t.lastBit = false
			continue
		}

		bitPos := tacBitPosition(t.tac)
		current := bit.IsSet16(bitPos, t.systemCounter)

		if t.lastBit && !current {
			if t.tima == 0xFF {
				t.tima = 0x00
				t.overflowDelay = 4
			} else {
				t.tima++
			}
		}
		t.lastBit = current
	}
}

func tacBitPosition(tac uint8) uint8 {
	switch tac & 0x03 {
	case 0x00:
		return 9
	case 0x01:
		return 3
	case 0x02:
		return 5
	default:
		return 7
	}
}

// Read returns the byte at one of DIV/TIMA/TMA/TAC. Any other address
// returns 0xFF; the bus only routes these four addresses here.
func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

// Write stores a byte to one of DIV/TIMA/TMA/TAC. Writing any value to DIV
// resets the internal divider to zero, per real hardware.
func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		t.systemCounter = 0
		t.div = 0
		t.lastBit = false
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
