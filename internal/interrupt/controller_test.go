package interrupt

import (
	"testing"

	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/stretchr/testify/assert"
)

func TestRequestSetsIFBit(t *testing.T) {
	c := New()
	c.Request(addr.Timer)
	assert.Equal(t, uint8(1<<addr.Timer.Bit()), c.ReadIF())
}

func TestClearResetsIFBit(t *testing.T) {
	c := New()
	c.Request(addr.Timer)
	c.Clear(addr.Timer)
	assert.Equal(t, uint8(0), c.ReadIF())
}

func TestIFAndIEMaskTopThreeBits(t *testing.T) {
	c := New()
	c.WriteIF(0xFF)
	c.WriteIE(0xFF)
	assert.Equal(t, uint8(0x1F), c.ReadIF())
	assert.Equal(t, uint8(0x1F), c.ReadIE())
}

func TestPendingRequiresBothRequestedAndEnabled(t *testing.T) {
	c := New()
	c.Request(addr.VBlank)
	assert.False(t, c.HasPending(), "requested but not enabled")

	c.WriteIE(1 << addr.VBlank.Bit())
	assert.True(t, c.HasPending())
	assert.Equal(t, uint8(1<<addr.VBlank.Bit()), c.Pending())
}

func TestNextSourcePicksLowestBitFirst(t *testing.T) {
	c := New()
	c.WriteIE(0x1F)
	c.Request(addr.Joypad)
	c.Request(addr.VBlank)
	c.Request(addr.Timer)

	source, ok := c.NextSource()
	assert.True(t, ok)
	assert.Equal(t, addr.VBlank, source)
}

func TestNextSourceNoneWhenEmpty(t *testing.T) {
	c := New()
	_, ok := c.NextSource()
	assert.False(t, ok)
}
