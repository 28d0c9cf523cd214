package video

import (
	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/kvnbkr/pocketgb/internal/bit"
	"github.com/kvnbkr/pocketgb/internal/interrupt"
)

// Mode is the PPU's current stage within a scanline. Values match STAT bits 1-0.
type Mode uint8

const (
	Hblank Mode = iota
	Vblank
	OamSearch
	Rendering
)

const (
	oamSearchDots = 80
	renderingDots = 168 // simplified fixed Rendering duration
	lineDots      = 456
)

// PPU owns VRAM, OAM, and all LCD registers, and drives the dot-accurate
// scanline state machine. It holds only a reference to the interrupt
// controller: no bus access occurs from inside Tick.
type PPU struct {
	irq *interrupt.Controller
	cgb bool

	vram [2][0x2000]byte
	oam  [160]byte

	lcdc, statEnable, scy, scx, ly, lyc, wy, wx uint8
	bgp, obp0, obp1                             uint8
	vbk                                         uint8

	bgPalette  cgbPaletteRAM
	objPalette cgbPaletteRAM

	dot      int
	mode     Mode
	statLine bool

	windowTriggered bool
	windowLine      int // -1 until the window first triggers this frame

	tb         *TripleBuffer
	frameCount uint64

	bgColorID      [Width]uint8
	bgTilePriority [Width]bool
}

// New returns a PPU sharing the given interrupt controller, in the
// post-boot-ROM register state (display on, BG enabled, BGP 0xFC: color
// id 0 maps to shade 0, ids 1-3 to shade 3).
func New(irq *interrupt.Controller, cgb bool) *PPU {
	p := &PPU{
		irq:        irq,
		cgb:        cgb,
		mode:       OamSearch,
		windowLine: -1,
		tb:         NewTripleBuffer(),
		lcdc:       0x91,
		bgp:        0xFC,
	}
	return p
}

// TripleBuffer exposes the framebuffer handoff for the host presenter.
func (p *PPU) TripleBuffer() *TripleBuffer { return p.tb }

// ReadVRAM reads a byte from 0x8000-0x9FFF, using the bank selected by VBK on CGB.
func (p *PPU) ReadVRAM(address uint16) uint8 {
	bank := 0
	if p.cgb {
		bank = int(p.vbk & 0x01)
	}
	return p.vram[bank][address-0x8000]
}

// WriteVRAM writes a byte to 0x8000-0x9FFF in the bank selected by VBK.
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	bank := 0
	if p.cgb {
		bank = int(p.vbk & 0x01)
	}
	p.vram[bank][address-0x8000] = value
}

// ReadOAM reads a byte from 0xFE00-0xFE9F.
func (p *PPU) ReadOAM(address uint16) uint8 {
	return p.oam[address-0xFE00]
}

// WriteOAM writes a byte to 0xFE00-0xFE9F.
func (p *PPU) WriteOAM(address uint16, value uint8) {
	p.oam[address-0xFE00] = value
}

// ReadRegister handles the LCDC..WX and CGB palette/bank register window.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.statValue()
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	case addr.VBK:
		if !p.cgb {
			return 0xFF
		}
		return p.vbk | 0xFE
	case addr.BCPS:
		if !p.cgb {
			return 0xFF
		}
		return p.bgPalette.readIndex()
	case addr.BCPD:
		if !p.cgb {
			return 0xFF
		}
		return p.bgPalette.readData()
	case addr.OCPS:
		if !p.cgb {
			return 0xFF
		}
		return p.objPalette.readIndex()
	case addr.OCPD:
		if !p.cgb {
			return 0xFF
		}
		return p.objPalette.readData()
	default:
		return 0xFF
	}
}

// WriteRegister handles writes to the same register window.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		p.writeLCDC(value)
	case addr.STAT:
		p.statEnable = value & 0x78
		p.recomputeSTATEdge()
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only
	case addr.LYC:
		p.lyc = value
		p.recomputeSTATEdge()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	case addr.VBK:
		if p.cgb {
			p.vbk = value & 0x01
		}
	case addr.BCPS:
		if p.cgb {
			p.bgPalette.writeIndex(value)
		}
	case addr.BCPD:
		if p.cgb {
			p.bgPalette.writeData(value)
		}
	case addr.OCPS:
		if p.cgb {
			p.objPalette.writeIndex(value)
		}
	case addr.OCPD:
		if p.cgb {
			p.objPalette.writeData(value)
		}
	}
}

func (p *PPU) writeLCDC(value uint8) {
	wasEnabled := p.lcdc&0x80 != 0
	p.lcdc = value
	nowEnabled := p.lcdc&0x80 != 0

	if wasEnabled && !nowEnabled {
		p.ly = 0
		p.dot = 0
		p.mode = Hblank
		p.recomputeSTATEdge()
	} else if !wasEnabled && nowEnabled {
		p.ly = 0
		p.dot = 0
		p.mode = OamSearch
		p.windowTriggered = false
		p.windowLine = -1
		p.recomputeSTATEdge()
	}
}

func (p *PPU) statValue() uint8 {
	v := uint8(0x80) | p.statEnable | uint8(p.mode)
	if p.ly == p.lyc {
		v |= 0x04
	}
	return v
}

// recomputeSTATEdge implements the rising-edge-only LCDSTAT rule: the
// combined wire is the OR of every enabled source ANDed with its current
// condition; only a 0->1 transition requests the interrupt.
func (p *PPU) recomputeSTATEdge() {
	wire := false
	if p.statEnable&0x08 != 0 && p.mode == Hblank {
		wire = true
	}
	if p.statEnable&0x10 != 0 && p.mode == Vblank {
		wire = true
	}
	if p.statEnable&0x20 != 0 && p.mode == OamSearch {
		wire = true
	}
	if p.statEnable&0x40 != 0 && p.ly == p.lyc {
		wire = true
	}

	if wire && !p.statLine {
		p.irq.Request(addr.LCDSTAT)
	}
	p.statLine = wire
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.recomputeSTATEdge()
}

func (p *PPU) setLY(v uint8) {
	p.ly = v
	p.recomputeSTATEdge()
}

// Tick advances the PPU by the given number of dots (the caller scales
// this per bus m-cycle: 4 at normal speed, 2 in CGB double-speed mode,
// since PPU dot timing runs at the fixed real-time rate regardless of
// CPU speed). It is a pure state transition: VRAM/OAM/registers are
// mutated and the interrupt controller posted to, but nothing reaches
// back into the bus.
func (p *PPU) Tick(dots int) {
	if p.lcdc&0x80 == 0 {
		return
	}
	for i := 0; i < dots; i++ {
		p.tickDot()
	}
}

func (p *PPU) tickDot() {
	p.dot++

	switch p.mode {
	case OamSearch:
		if p.dot == oamSearchDots {
			p.setMode(Rendering)
		}
	case Rendering:
		if p.dot == oamSearchDots+renderingDots {
			p.renderScanline()
			p.setMode(Hblank)
		}
	case Hblank:
		if p.dot == lineDots {
			p.dot = 0
			if p.ly == 143 {
				p.setLY(144)
				p.setMode(Vblank)
				p.irq.Request(addr.VBlank)
				p.publishFrame()
			} else {
				p.setLY(p.ly + 1)
				p.setMode(OamSearch)
			}
		}
	case Vblank:
		if p.ly == 153 && p.dot == 8 {
			p.setLY(0)
		}
		if p.dot == lineDots {
			p.dot = 0
			if p.ly == 0 {
				p.setMode(OamSearch)
				p.windowTriggered = false
				p.windowLine = -1
			} else {
				p.setLY(p.ly + 1)
			}
		}
	}
}

func (p *PPU) publishFrame() {
	p.tb.WriterFinish()
	p.frameCount++
}

// FrameCount returns the number of frames published so far, for the
// console's run-one-frame loop.
func (p *PPU) FrameCount() uint64 { return p.frameCount }

// spriteHeight returns 8 or 16 depending on LCDC bit 2.
func (p *PPU) spriteHeight() int {
	if bit.IsSet(2, p.lcdc) {
		return 16
	}
	return 8
}
