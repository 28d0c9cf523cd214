// Package video implements the PPU scanline state machine, its renderer,
// and the framebuffer handoff to the host presenter.
package video

import "sync/atomic"

const (
	Width  = 160
	Height = 144
	Stride = Width * 4
)

// Frame is a single completed 160x144 RGBA8888 framebuffer, origin
// top-left, row-major with Stride bytes per row.
type Frame struct {
	Pix [Width * Height * 4]byte
}

func newFrame() *Frame { return &Frame{} }

func (f *Frame) setPixel(x, y int, rgba [4]byte) {
	i := (y*Width + x) * 4
	f.Pix[i] = rgba[0]
	f.Pix[i+1] = rgba[1]
	f.Pix[i+2] = rgba[2]
	f.Pix[i+3] = rgba[3]
}

// middleFresh marks the middle slot as holding a frame the reader has not
// seen yet. The low two bits of the packed word carry the slot index.
const middleFresh = 0x04

// TripleBuffer is a wait-free single-writer/single-reader handoff: the
// writer always owns one slot, the reader always owns one slot, and the
// third is the most-recently-published frame. Each side exchanges its
// slot with the middle in a single atomic swap, so neither ever blocks
// on the other.
type TripleBuffer struct {
	slots  [3]*Frame
	writer int // touched only by the emulation goroutine
	reader int // touched only by the presenter goroutine
	middle atomic.Uint32
}

// NewTripleBuffer allocates the three frame slots.
func NewTripleBuffer() *TripleBuffer {
	tb := &TripleBuffer{writer: 0, reader: 2}
	for i := range tb.slots {
		tb.slots[i] = newFrame()
	}
	tb.middle.Store(1)
	return tb
}

// WriterFrame returns the frame currently owned by the writer, to draw into.
func (tb *TripleBuffer) WriterFrame() *Frame {
	return tb.slots[tb.writer]
}

// WriterFinish publishes the writer's completed frame into the middle
// slot and takes the slot the middle previously held.
func (tb *TripleBuffer) WriterFinish() {
	old := tb.middle.Swap(uint32(tb.writer) | middleFresh)
	tb.writer = int(old & 0x03)
}

// ReaderAcquire returns the newest completed frame: the middle slot if
// the writer has published since the last acquire, otherwise the frame
// the reader already holds.
func (tb *TripleBuffer) ReaderAcquire() *Frame {
	if tb.middle.Load()&middleFresh != 0 {
		old := tb.middle.Swap(uint32(tb.reader))
		tb.reader = int(old & 0x03)
	}
	return tb.slots[tb.reader]
}
