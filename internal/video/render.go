package video

import "github.com/kvnbkr/pocketgb/internal/bit"

// renderScanline draws the current LY into the writer's frame: background,
// then window, then sprites, in hardware draw order.
func (p *PPU) renderScanline() {
	ly := int(p.ly)
	frame := p.tb.WriterFrame()

	for x := 0; x < Width; x++ {
		p.bgColorID[x] = 0
		p.bgTilePriority[x] = false
	}

	if p.cgb || bit.IsSet(0, p.lcdc) {
		p.renderBackground(frame, ly)
	} else {
		for x := 0; x < Width; x++ {
			frame.setPixel(x, ly, dmgShades[0])
		}
	}

	if bit.IsSet(5, p.lcdc) {
		p.renderWindow(frame, ly)
	}

	if bit.IsSet(1, p.lcdc) {
		p.renderSprites(frame, ly)
	}
}

// tileDataOffset resolves LCDC bit 4's two addressing modes to a byte
// offset from the start of a VRAM bank (0x8000).
func (p *PPU) tileDataOffset(tileIndex uint8) uint16 {
	if bit.IsSet(4, p.lcdc) {
		return uint16(tileIndex) * 16
	}
	return uint16(0x1000 + int(int8(tileIndex))*16)
}

// tileColorID reads the 2-bit color id for pixel (row, col) of a BG or
// window tile, from the given VRAM bank (always 0 on DMG).
func (p *PPU) tileColorID(bank int, tileIndex uint8, row, col int) uint8 {
	return p.colorIDAt(bank, p.tileDataOffset(tileIndex)+uint16(row*2), col)
}

// spriteColorID reads sprite tile data, which always uses the unsigned
// 0x8000 addressing mode regardless of LCDC bit 4.
func (p *PPU) spriteColorID(bank int, tileIndex uint8, row, col int) uint8 {
	return p.colorIDAt(bank, uint16(tileIndex)*16+uint16(row*2), col)
}

func (p *PPU) colorIDAt(bank int, offset uint16, col int) uint8 {
	lo := p.vram[bank][offset]
	hi := p.vram[bank][offset+1]
	shift := uint(7 - col)
	lsb := (lo >> shift) & 1
	msb := (hi >> shift) & 1
	return (msb << 1) | lsb
}

func (p *PPU) renderBackground(frame *Frame, ly int) {
	mapBase := uint16(0x9800)
	if bit.IsSet(3, p.lcdc) {
		mapBase = 0x9C00
	}

	y := (ly + int(p.scy)) & 0xFF
	tileRow := y / 8
	fineY := y % 8

	for x := 0; x < Width; x++ {
		scx := (x + int(p.scx)) & 0xFF
		tileCol := scx / 8
		fineX := scx % 8

		mapOffset := uint16(tileRow*32+tileCol)
		tileIndex := p.vram[0][mapBase-0x8000+mapOffset]

		var attr uint8
		if p.cgb {
			attr = p.vram[1][mapBase-0x8000+mapOffset]
		}

		row, col := fineY, fineX
		if p.cgb && bit.IsSet(6, attr) {
			row = 7 - row
		}
		if p.cgb && bit.IsSet(5, attr) {
			col = 7 - col
		}
		bank := 0
		if p.cgb {
			bank = int(attr>>3) & 0x01
		}

		colorID := p.tileColorID(bank, tileIndex, row, col)
		p.bgColorID[x] = colorID

		if p.cgb {
			p.bgTilePriority[x] = bit.IsSet(7, attr)
			frame.setPixel(x, ly, p.bgPalette.color(attr&0x07, colorID))
		} else {
			shade := applyMonochromePalette(colorID, p.bgp)
			frame.setPixel(x, ly, dmgShades[shade])
		}
	}
}

// renderWindow draws the window layer over the background for rows where
// it is active. The window has its own internal line counter that only
// advances on scanlines where the window actually paints.
func (p *PPU) renderWindow(frame *Frame, ly int) {
	if ly < int(p.wy) {
		return
	}
	wx := int(p.wx) - 7
	if wx >= Width {
		return
	}

	if !p.windowTriggered {
		p.windowTriggered = true
		p.windowLine = 0
	} else {
		p.windowLine++
	}

	mapBase := uint16(0x9800)
	if bit.IsSet(6, p.lcdc) {
		mapBase = 0x9C00
	}
	tileRow := p.windowLine / 8
	fineY := p.windowLine % 8

	for x := 0; x < Width; x++ {
		wxPixel := x - wx
		if wxPixel < 0 {
			continue
		}
		tileCol := wxPixel / 8
		fineX := wxPixel % 8

		mapOffset := uint16(tileRow*32+tileCol)
		tileIndex := p.vram[0][mapBase-0x8000+mapOffset]

		var attr uint8
		if p.cgb {
			attr = p.vram[1][mapBase-0x8000+mapOffset]
		}

		row, col := fineY, fineX
		if p.cgb && bit.IsSet(6, attr) {
			row = 7 - row
		}
		if p.cgb && bit.IsSet(5, attr) {
			col = 7 - col
		}
		bank := 0
		if p.cgb {
			bank = int(attr>>3) & 0x01
		}

		colorID := p.tileColorID(bank, tileIndex, row, col)
		p.bgColorID[x] = colorID

		if p.cgb {
			p.bgTilePriority[x] = bit.IsSet(7, attr)
			frame.setPixel(x, ly, p.bgPalette.color(attr&0x07, colorID))
		} else {
			shade := applyMonochromePalette(colorID, p.bgp)
			frame.setPixel(x, ly, dmgShades[shade])
		}
	}
}

func (p *PPU) renderSprites(frame *Frame, ly int) {
	height := p.spriteHeight()
	masterPriority := !p.cgb || bit.IsSet(0, p.lcdc)

	for _, s := range p.scanLine(ly) {
		row := ly - s.y
		if s.yFlip() {
			row = height - 1 - row
		}

		tile := s.tile
		if height == 16 {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}

		bank := 0
		if p.cgb {
			bank = s.cgbBank()
		}

		for col := 0; col < 8; col++ {
			screenX := s.x + col
			if screenX < 0 || screenX >= Width {
				continue
			}
			srcCol := col
			if s.xFlip() {
				srcCol = 7 - col
			}

			colorID := p.spriteColorID(bank, tile, row, srcCol)
			if colorID == 0 {
				continue
			}

			if masterPriority {
				if s.bgPriority() && p.bgColorID[screenX] != 0 {
					continue
				}
				if p.cgb && p.bgTilePriority[screenX] && p.bgColorID[screenX] != 0 {
					continue
				}
			}

			var rgba [4]byte
			if p.cgb {
				rgba = p.objPalette.color(s.cgbPalette(), colorID)
			} else {
				pal := p.obp0
				if s.dmgPalette1() {
					pal = p.obp1
				}
				rgba = dmgShades[applyMonochromePalette(colorID, pal)]
			}
			frame.setPixel(screenX, ly, rgba)
		}
	}
}
