package video

import (
	"testing"

	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/kvnbkr/pocketgb/internal/interrupt"
	"github.com/stretchr/testify/assert"
)

// writeSolidTile fills tile slot 0 (VRAM bank 0, offset 0) with a tile whose
// every pixel has color id 3 (both bit planes all-ones).
func writeSolidTile(p *PPU) {
	for row := 0; row < 8; row++ {
		p.vram[0][row*2] = 0xFF
		p.vram[0][row*2+1] = 0xFF
	}
}

func pixelAt(frame *Frame, x, y int) [4]byte {
	i := (y*Width + x) * 4
	return [4]byte{frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2], frame.Pix[i+3]}
}

func TestRenderBackgroundAppliesBGPPalette(t *testing.T) {
	p := New(interrupt.New(), false)
	p.WriteRegister(addr.LCDC, 0x91) // LCD on, BG on, tile data at 0x8000
	writeSolidTile(p)
	// tile map entry 0 at 0x9800 already defaults to 0 (tile 0)
	p.WriteRegister(addr.BGP, 0xE4) // identity-ish mapping: id3->3 (black)

	p.Tick(oamSearchDots + renderingDots) // run exactly one scanline through renderScanline

	frame := p.tb.WriterFrame()
	assert.Equal(t, dmgShades[3], pixelAt(frame, 0, 0))
}

func TestRenderBackgroundOffShowsWhiteWhenLCDCBit0Clear(t *testing.T) {
	p := New(interrupt.New(), false)
	p.WriteRegister(addr.LCDC, 0x80) // LCD on, BG off (bit 0 clear)
	writeSolidTile(p)

	p.Tick(oamSearchDots + renderingDots)

	frame := p.tb.WriterFrame()
	assert.Equal(t, dmgShades[0], pixelAt(frame, 0, 0))
}

func TestRenderWindowOverridesBackgroundWhenActive(t *testing.T) {
	p := New(interrupt.New(), false)
	p.WriteRegister(addr.LCDC, 0xF1) // LCD, BG and window on, window map at 0x9C00, tile data at 0x8000
	p.WriteRegister(addr.WY, 0)
	p.WriteRegister(addr.WX, 7) // window starts at screen x=0
	writeSolidTile(p)
	p.vram[0][0x1800] = 1 // BG map points at blank tile 1; the window map keeps solid tile 0
	p.WriteRegister(addr.BGP, 0xE4)

	p.Tick(oamSearchDots + renderingDots)

	frame := p.tb.WriterFrame()
	assert.Equal(t, dmgShades[3], pixelAt(frame, 0, 0))
}

func TestSpritesUseUnsignedTileAddressingRegardlessOfLCDCBit4(t *testing.T) {
	p := New(interrupt.New(), false)
	p.WriteRegister(addr.LCDC, 0x82) // LCD + sprites on, BG off, signed BG tile mode
	p.WriteRegister(addr.OBP0, 0xE4)
	writeSolidTile(p) // tile 0 at 0x8000; the signed BG base would read 0x9000 instead

	p.oam[0] = 16 // sprite 0 at screen (0,0), tile 0
	p.oam[1] = 8

	p.Tick(oamSearchDots + renderingDots)

	frame := p.tb.WriterFrame()
	assert.Equal(t, dmgShades[3], pixelAt(frame, 0, 0))
}

func TestTileDataOffsetSignedModeCentersOnBlock2(t *testing.T) {
	p := New(interrupt.New(), false)
	p.WriteRegister(addr.LCDC, 0x80) // tile data bit (4) clear -> signed $8800 mode
	assert.Equal(t, uint16(0x1000), p.tileDataOffset(0))
	assert.Equal(t, uint16(0x0FF0), p.tileDataOffset(0xFF))
}
