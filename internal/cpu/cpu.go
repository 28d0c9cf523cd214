// Package cpu implements the Sharp LR35902 instruction set: registers,
// decode, the ALU flag semantics, and interrupt/HALT/STOP handling.
package cpu

import (
	"github.com/kvnbkr/pocketgb/internal/bit"
	"github.com/kvnbkr/pocketgb/internal/interrupt"
)

// Bus is the subset of the memory bus the CPU needs. Every Read/Write is
// exactly one m-cycle; Idle spends one m-cycle with no transfer.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Idle()
}

// meteredBus counts the m-cycles a single instruction actually spent
// talking to the bus, so Step can issue compensating Idle ticks and make
// every instruction cost exactly its documented m-cycle count regardless
// of how many real accesses it performed internally.
type meteredBus struct {
	bus   Bus
	ticks int
}

func (m *meteredBus) Read(address uint16) uint8 {
	m.ticks++
	return m.bus.Read(address)
}

func (m *meteredBus) Write(address uint16, value uint8) {
	m.ticks++
	m.bus.Write(address, value)
}

func (m *meteredBus) Idle() {
	m.ticks++
	m.bus.Idle()
}

// CPU is the Sharp LR35902 core. Registers are flat fields rather than a
// struct-of-structs, matching how the instruction bodies read most
// naturally.
type CPU struct {
	a, f   uint8
	b, c   uint8
	d, e   uint8
	h, l   uint8
	sp, pc uint16

	memory *meteredBus
	irq    *interrupt.Controller

	ime     bool
	eiArmed bool
	halted  bool
	stopped bool
	haltBug bool

	doubleSpeed    bool
	speedSwitchReq bool

	currentOpcode uint8
	cycles        uint64
}

// New returns a CPU wired to bus and irq, in the documented post-boot-ROM
// register state: boot-ROM execution itself is out of scope, so the core
// starts where the boot ROM hands off.
func New(bus Bus, irq *interrupt.Controller) *CPU {
	c := &CPU{
		memory: &meteredBus{bus: bus},
		irq:    irq,
	}
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	return c
}

// Cycles returns the running count of T-states (dots) executed.
func (c *CPU) Cycles() uint64 { return c.cycles }

// PC returns the program counter, for debugger/step-mode frontends.
func (c *CPU) PC() uint16 { return c.pc }

// DoubleSpeed reports whether CGB double-speed mode is active.
func (c *CPU) DoubleSpeed() bool { return c.doubleSpeed }

// ReadKEY1 implements the KEY1 register: bit 7 reflects the active speed,
// bit 0 is the pending-switch request armed by a KEY1 write and consumed
// by STOP.
func (c *CPU) ReadKEY1() uint8 {
	v := uint8(0x7E)
	if c.doubleSpeed {
		v |= 0x80
	}
	if c.speedSwitchReq {
		v |= 0x01
	}
	return v
}

// WriteKEY1 arms a speed switch that takes effect on the next STOP.
func (c *CPU) WriteKEY1(value uint8) {
	c.speedSwitchReq = value&0x01 != 0
}

// Step executes exactly one instruction, or one m-cycle of HALT/STOP
// idling, or one interrupt dispatch, and returns the number of m-cycles
// it consumed. A HALT wake that dispatches an interrupt spends one idle
// m-cycle plus the dispatch, but returns only the dispatch's 5.
func (c *CPU) Step() int {
	if c.stopped {
		c.memory.Idle()
		c.cycles += 4
		if c.irq.HasPending() {
			c.stopped = false
		}
		return 1
	}

	if c.halted {
		c.memory.Idle()
		c.cycles += 4
		if c.irq.HasPending() {
			c.halted = false
			if c.ime {
				return c.dispatchInterrupt()
			}
		}
		return 1
	}

	if c.ime && c.irq.HasPending() {
		return c.dispatchInterrupt()
	}

	// EI takes effect after the instruction that follows it retires, so
	// the commit is deferred until this instruction has executed.
	pendingEI := c.eiArmed

	c.memory.ticks = 0
	opcode := c.fetch()
	total := c.execute(opcode)

	if pendingEI && c.eiArmed {
		c.ime = true
		c.eiArmed = false
	}

	if diff := total - c.memory.ticks; diff > 0 {
		for i := 0; i < diff; i++ {
			c.memory.Idle()
		}
	}

	c.cycles += uint64(total) * 4
	return total
}

// fetch reads the next opcode byte. When the HALT bug is armed, the PC
// is not advanced for this one fetch, so the following instruction
// decodes the same byte a second time.
func (c *CPU) fetch() uint8 {
	opcode := c.memory.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}
	c.currentOpcode = opcode
	return opcode
}

func (c *CPU) fetchImmediate8() uint8 {
	v := c.memory.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetchImmediate16() uint16 {
	low := c.memory.Read(c.pc)
	c.pc++
	high := c.memory.Read(c.pc)
	c.pc++
	return combine(high, low)
}

func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.memory.Write(c.sp, bit.High(v))
	c.sp--
	c.memory.Write(c.sp, bit.Low(v))
}

func (c *CPU) popStack() uint16 {
	low := c.memory.Read(c.sp)
	c.sp++
	high := c.memory.Read(c.sp)
	c.sp++
	return combine(high, low)
}

// dispatchInterrupt runs the fixed 5 m-cycle interrupt acknowledge
// sequence: 2 idle, push PC (2 accesses), then jump to the vector. The
// serviced source is chosen after the high-byte push: IE lives at 0xFFFF,
// so the push itself can overwrite it and cancel the dispatch, in which
// case PC is loaded with 0x0000 and no IF bit is cleared.
func (c *CPU) dispatchInterrupt() int {
	c.ime = false

	c.memory.Idle()
	c.memory.Idle()

	c.sp--
	c.memory.Write(c.sp, bit.High(c.pc))

	source, ok := c.irq.NextSource()

	c.sp--
	c.memory.Write(c.sp, bit.Low(c.pc))
	c.memory.Idle()

	if !ok {
		c.pc = 0x0000
	} else {
		c.irq.Clear(source)
		c.pc = source.Vector()
	}

	c.cycles += 20
	return 5
}

// halt enters Halted, unless an interrupt is already pending with IME
// off: then the halt bug fires instead and the byte after HALT will be
// fetched twice.
func (c *CPU) halt() {
	if !c.ime && c.irq.HasPending() {
		c.haltBug = true
		return
	}
	c.halted = true
}

func (c *CPU) stop() {
	c.pc++ // STOP is followed by a padding byte that is skipped
	if c.speedSwitchReq {
		c.doubleSpeed = !c.doubleSpeed
		c.speedSwitchReq = false
		return
	}
	c.stopped = true
}

func (c *CPU) ei() {
	c.eiArmed = true
}

func (c *CPU) di() {
	c.ime = false
	c.eiArmed = false
}

func (c *CPU) reti() {
	c.pc = c.popStack()
	c.ime = true
}
