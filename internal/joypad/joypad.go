// Package joypad implements the two-row four-column key matrix and its
// JOYP register, polled at 64 Hz for edge-triggered interrupts.
package joypad

import "github.com/kvnbkr/pocketgb/internal/addr"

// Key is one of the eight physical inputs.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// pollPeriod is the number of m-cycles between JOYP re-polls: once every
// 65536 dots (64 Hz), i.e. 65536/4 = 16384 m-cycles at normal speed.
const pollPeriod = 16384

// Pad owns the active-low button/d-pad shadow registers and the JOYP
// selection bits. bit 0 = Right/A, 1 = Left/B, 2 = Up/Select, 3 = Down/Start.
type Pad struct {
	buttons uint8 // active-low: bit set = released
	dpad    uint8

	selectButtons bool // JOYP bit 5 (low = selected)
	selectDpad    bool // JOYP bit 4 (low = selected)

	counter int
	lastLow uint8 // low nibble observed at the previous poll

	RequestInterrupt func(addr.Interrupt)
}

// New returns a Pad with all eight inputs released.
func New() *Pad {
	return &Pad{buttons: 0x0F, dpad: 0x0F, selectButtons: true, selectDpad: true, lastLow: 0x0F}
}

// Press marks a key as held down.
func (p *Pad) Press(k Key) {
	p.setBit(k, false)
}

// Release marks a key as no longer held.
func (p *Pad) Release(k Key) {
	p.setBit(k, true)
}

func (p *Pad) setBit(k Key, released bool) {
	var reg *uint8
	var bitPos uint8
	switch k {
	case Right:
		reg, bitPos = &p.dpad, 0
	case Left:
		reg, bitPos = &p.dpad, 1
	case Up:
		reg, bitPos = &p.dpad, 2
	case Down:
		reg, bitPos = &p.dpad, 3
	case A:
		reg, bitPos = &p.buttons, 0
	case B:
		reg, bitPos = &p.buttons, 1
	case Select:
		reg, bitPos = &p.buttons, 2
	case Start:
		reg, bitPos = &p.buttons, 3
	default:
		return
	}
	if released {
		*reg |= 1 << bitPos
	} else {
		*reg &^= 1 << bitPos
	}
}

// lowNibble computes the currently selected low nibble of JOYP.
func (p *Pad) lowNibble() uint8 {
	switch {
	case p.selectDpad && p.selectButtons:
		return p.dpad & p.buttons & 0x0F
	case p.selectDpad:
		return p.dpad & 0x0F
	case p.selectButtons:
		return p.buttons & 0x0F
	default:
		return 0x0F
	}
}

// Read returns the JOYP register: bits 7-6 always read as 1, bits 5-4
// reflect the last selection write, bits 3-0 the selected key group.
func (p *Pad) Read() uint8 {
	result := uint8(0xC0)
	if !p.selectButtons {
		result |= 0x20
	}
	if !p.selectDpad {
		result |= 0x10
	}
	result |= p.lowNibble()
	return result
}

// Write stores the selection bits (5-4); the rest of JOYP is read-only
// feedback.
func (p *Pad) Write(value uint8) {
	p.selectButtons = value&0x20 == 0
	p.selectDpad = value&0x10 == 0
}

// Tick advances the 64 Hz poll counter. Every pollPeriod m-cycles the low
// nibble is recomputed; any bit that transitions from 1 to 0 requests the
// Joypad interrupt.
func (p *Pad) Tick(mCycles int) {
	p.counter += mCycles
	for p.counter >= pollPeriod {
		p.counter -= pollPeriod
		p.poll()
	}
}

func (p *Pad) poll() {
	current := p.lowNibble()
	fallingEdges := p.lastLow &^ current
	if fallingEdges != 0 && p.RequestInterrupt != nil {
		p.RequestInterrupt(addr.Joypad)
	}
	p.lastLow = current
}
