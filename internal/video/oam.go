package video

import "github.com/kvnbkr/pocketgb/internal/bit"

// sprite is one OAM entry decoded for the current scanline scan.
type sprite struct {
	oamIndex int
	y        int // top row on screen, oam.Y-16
	x        int // left column on screen, oam.X-8
	tile     uint8
	attrs    uint8
}

func (s sprite) yFlip() bool       { return bit.IsSet(6, s.attrs) }
func (s sprite) xFlip() bool       { return bit.IsSet(5, s.attrs) }
func (s sprite) bgPriority() bool  { return bit.IsSet(7, s.attrs) }
func (s sprite) dmgPalette1() bool { return bit.IsSet(4, s.attrs) }
func (s sprite) cgbBank() int {
	if bit.IsSet(3, s.attrs) {
		return 1
	}
	return 0
}
func (s sprite) cgbPalette() uint8 { return s.attrs & 0x07 }

// scanLine returns up to 10 sprites that intersect scanline ly, in draw
// order (lowest priority first, so the caller can paint over them).
//
// On DMG, overlapping sprites are prioritized by screen X (lower wins),
// ties broken by OAM index; on CGB, priority is OAM index only. Both
// orders are produced by painting from lowest to highest priority, so
// the returned slice is sorted highest-priority LAST.
func (p *PPU) scanLine(ly int) []sprite {
	height := p.spriteHeight()

	var found []sprite
	for i := 0; i < 40 && len(found) < 10; i++ {
		base := i * 4
		oamY := int(p.oam[base])
		oamX := int(p.oam[base+1])
		tile := p.oam[base+2]
		attrs := p.oam[base+3]

		screenY := oamY - 16
		if ly < screenY || ly >= screenY+height {
			continue
		}

		found = append(found, sprite{
			oamIndex: i,
			y:        screenY,
			x:        oamX - 8,
			tile:     tile,
			attrs:    attrs,
		})
	}

	if p.cgb {
		// OAM order only; found is already in ascending OAM index order.
		// Reverse so index 0 (highest priority) paints last.
		reverse(found)
		return found
	}

	// DMG: lower X wins, ties by lower OAM index. Sort descending by
	// that priority so the highest-priority sprite paints last.
	sortDMGPriority(found)
	return found
}

func reverse(s []sprite) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// sortDMGPriority orders sprites so the LOWEST priority (highest X, then
// highest OAM index) comes first and the HIGHEST priority comes last.
func sortDMGPriority(s []sprite) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// less reports whether a has LOWER priority than b (a should be painted
// before b): higher X loses, ties broken by higher OAM index losing.
func less(a, b sprite) bool {
	if a.x != b.x {
		return a.x > b.x
	}
	return a.oamIndex > b.oamIndex
}
