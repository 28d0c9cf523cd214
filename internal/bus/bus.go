// Package bus implements the memory-mapped address decode that ties the
// cartridge, VRAM/OAM, WRAM, HRAM and every I/O register together, and
// drives the fixed per-m-cycle component tick order.
package bus

import (
	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/kvnbkr/pocketgb/internal/apu"
	"github.com/kvnbkr/pocketgb/internal/cartridge"
	"github.com/kvnbkr/pocketgb/internal/interrupt"
	"github.com/kvnbkr/pocketgb/internal/joypad"
	"github.com/kvnbkr/pocketgb/internal/serial"
	"github.com/kvnbkr/pocketgb/internal/timer"
	"github.com/kvnbkr/pocketgb/internal/video"
)

// speedSource is implemented by the CPU: the bus needs to know whether
// double-speed mode is active to scale PPU dot advancement, and
// routes KEY1 reads/writes to it.
type speedSource interface {
	DoubleSpeed() bool
	ReadKEY1() uint8
	WriteKEY1(value uint8)
}

// Bus owns every piece of addressable state except the CPU registers
// themselves, and is the only component that ticks the shared clock.
type Bus struct {
	cart *cartridge.Cartridge
	cgb  bool

	bootROM        []byte
	bootROMEnabled bool

	wram [8][0x1000]byte
	svbk uint8

	hram [0x7F]byte

	irq    *interrupt.Controller
	timer  *timer.Timer
	joypad *joypad.Pad
	serial *serial.Port
	apu    *apu.APU
	ppu    *video.PPU

	cpu speedSource

	hdma [5]uint8 // HDMA1-5: memory-mapped but inert, no transfer engine behind them

	dma dmaEngine
}

// New constructs a Bus around the given cartridge. bootROM may be nil;
// if present, it is mapped at reset and permanently unmapped on the
// first write to the BOOT register.
func New(cart *cartridge.Cartridge, cgb bool, bootROM []byte) *Bus {
	irq := interrupt.New()

	b := &Bus{
		cart:           cart,
		cgb:            cgb,
		bootROM:        bootROM,
		bootROMEnabled: len(bootROM) > 0,
		irq:            irq,
		timer:          timer.New(),
		joypad:         joypad.New(),
		serial:         serial.New(),
		apu:            apu.New(),
		ppu:            video.New(irq, cgb),
	}
	b.timer.RequestInterrupt = irq.Request
	b.joypad.RequestInterrupt = irq.Request
	return b
}

// AttachCPU wires the CPU for KEY1 routing and double-speed dot scaling.
// The CPU itself is constructed with this Bus, so attaching happens
// after cpu.New returns.
func (b *Bus) AttachCPU(cpu speedSource) {
	b.cpu = cpu
}

// Interrupts returns the shared interrupt controller, for cpu.New.
func (b *Bus) Interrupts() *interrupt.Controller {
	return b.irq
}

// PPU returns the PPU, for the frame presenter.
func (b *Bus) PPU() *video.PPU {
	return b.ppu
}

// Joypad returns the joypad, for host input handling.
func (b *Bus) Joypad() *joypad.Pad {
	return b.joypad
}

// SaveRAM returns the cartridge's battery-backed RAM, or nil if it has none.
func (b *Bus) SaveRAM() []byte {
	return b.cart.SaveRAM()
}

// tick advances every per-m-cycle component by one m-cycle, in a fixed
// order: OAM DMA, Timer, Joypad, PPU, APU.
func (b *Bus) tick() {
	b.dma.step(b)
	b.timer.Tick(1)
	b.joypad.Tick(1)

	dots := 4
	if b.cpu != nil && b.cpu.DoubleSpeed() {
		dots = 2
	}
	b.ppu.Tick(dots)
	b.apu.Tick(1)
}

// Idle spends one m-cycle with no bus transfer.
func (b *Bus) Idle() {
	b.tick()
}

// Read performs a ticking bus read: the byte at address is resolved, then
// the fixed component order advances by one m-cycle.
func (b *Bus) Read(address uint16) uint8 {
	value := b.RawRead(address)
	b.tick()
	return value
}

// Write performs a ticking bus write.
func (b *Bus) Write(address uint16, value uint8) {
	b.RawWrite(address, value)
	b.tick()
}

// RawRead resolves an address without ticking the clock, for debugger
// memory inspection. OAM DMA reads its source through dmaSourceRead instead,
// since RawRead applies the DMA blocking rule.
func (b *Bus) RawRead(address uint16) uint8 {
	if b.dma.blocking(address) {
		if address >= 0xFF80 && address <= 0xFFFE {
			return b.hram[address-0xFF80]
		}
		return 0xFF
	}

	if v, ok := b.bootROMRead(address); ok {
		return v
	}

	switch {
	case address <= 0x7FFF:
		return b.cart.Read(address)
	case address <= 0x9FFF:
		return b.ppu.ReadVRAM(address)
	case address <= 0xBFFF:
		return b.cart.Read(address)
	case address <= 0xCFFF:
		return b.wram[0][address-0xC000]
	case address <= 0xDFFF:
		return b.wram[b.wramBank()][address-0xD000]
	case address <= 0xFDFF:
		return b.RawRead(address - 0x2000)
	case address <= 0xFE9F:
		return b.ppu.ReadOAM(address)
	case address <= 0xFEFF:
		return b.prohibitedValue()
	case address <= 0xFF7F:
		return b.readRegister(address)
	case address <= 0xFFFE:
		return b.hram[address-0xFF80]
	default:
		return b.irq.ReadIE()
	}
}

// RawWrite resolves a write without ticking the clock.
func (b *Bus) RawWrite(address uint16, value uint8) {
	if b.dma.blocking(address) {
		switch {
		case address >= 0xFF80 && address <= 0xFFFE:
			b.hram[address-0xFF80] = value
		case address == addr.DMA:
			// restarting mid-transfer replaces the in-flight DMA
			b.dma.start(value)
		}
		return
	}

	switch {
	case address <= 0x7FFF:
		b.cart.Write(address, value)
	case address <= 0x9FFF:
		b.ppu.WriteVRAM(address, value)
	case address <= 0xBFFF:
		b.cart.Write(address, value)
	case address <= 0xCFFF:
		b.wram[0][address-0xC000] = value
	case address <= 0xDFFF:
		b.wram[b.wramBank()][address-0xD000] = value
	case address <= 0xFDFF:
		b.RawWrite(address-0x2000, value)
	case address <= 0xFE9F:
		b.ppu.WriteOAM(address, value)
	case address <= 0xFEFF:
		// prohibited region, writes ignored
	case address <= 0xFF7F:
		b.writeRegister(address, value)
	case address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	default:
		b.irq.WriteIE(value)
	}
}

// bootROMRead resolves an address against the boot ROM while the latch is
// enabled: 0x0000-0x00FF, plus 0x0200-0x08FF on CGB. The cartridge header
// window 0x0100-0x01FF always falls through to the cartridge.
func (b *Bus) bootROMRead(address uint16) (uint8, bool) {
	if !b.bootROMEnabled || int(address) >= len(b.bootROM) {
		return 0, false
	}
	if address <= 0x00FF {
		return b.bootROM[address], true
	}
	if b.cgb && address >= 0x0200 && address <= 0x08FF {
		return b.bootROM[address], true
	}
	return 0, false
}

func (b *Bus) wramBank() int {
	if !b.cgb {
		return 1
	}
	bank := int(b.svbk & 0x07)
	if bank == 0 {
		bank = 1
	}
	return bank
}

// prohibitedValue is the documented read value for 0xFEA0-0xFEFF: 0xFF
// on DMG, 0x00 on CGB.
func (b *Bus) prohibitedValue() uint8 {
	if b.cgb {
		return 0x00
	}
	return 0xFF
}

func (b *Bus) readRegister(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return b.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return b.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.irq.ReadIF()
	case apu.InRange(address):
		return b.apu.Read(address)
	case address == addr.DMA:
		return b.dma.readRegister()
	case address >= addr.LCDC && address <= addr.WX:
		return b.ppu.ReadRegister(address)
	case address == addr.KEY1:
		if b.cgb && b.cpu != nil {
			return b.cpu.ReadKEY1()
		}
		return 0xFF
	case address == addr.VBK:
		return b.ppu.ReadRegister(address)
	case address == addr.BOOT:
		if b.bootROMEnabled {
			return 0x00
		}
		return 0x01
	case address >= addr.HDMA1 && address <= addr.HDMA5:
		if !b.cgb {
			return 0xFF
		}
		return b.hdma[address-addr.HDMA1]
	case address >= addr.BCPS && address <= addr.OCPD:
		return b.ppu.ReadRegister(address)
	case address == addr.SVBK:
		if !b.cgb {
			return 0xFF
		}
		return b.svbk | 0xF8
	default:
		return 0xFF
	}
}

func (b *Bus) writeRegister(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		b.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		b.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		b.timer.Write(address, value)
	case address == addr.IF:
		b.irq.WriteIF(value)
	case apu.InRange(address):
		b.apu.Write(address, value)
	case address == addr.DMA:
		b.dma.start(value)
	case address >= addr.LCDC && address <= addr.WX:
		b.ppu.WriteRegister(address, value)
	case address == addr.KEY1:
		if b.cgb && b.cpu != nil {
			b.cpu.WriteKEY1(value)
		}
	case address == addr.VBK:
		b.ppu.WriteRegister(address, value)
	case address == addr.BOOT:
		b.bootROMEnabled = false
	case address >= addr.HDMA1 && address <= addr.HDMA5:
		if b.cgb {
			b.hdma[address-addr.HDMA1] = value
		}
	case address >= addr.BCPS && address <= addr.OCPD:
		b.ppu.WriteRegister(address, value)
	case address == addr.SVBK:
		if b.cgb {
			b.svbk = value & 0x07
		}
	}
}
