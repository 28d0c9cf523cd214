package timer

import (
	"testing"

	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostBootDIV(t *testing.T) {
	tm := New()
	assert.Equal(t, uint8(0xAB), tm.Read(addr.DIV))
}

func TestWriteDIVResetsCounter(t *testing.T) {
	tm := New()
	tm.Write(addr.DIV, 0x42) // any value resets, the written value is ignored
	assert.Equal(t, uint8(0x00), tm.Read(addr.DIV))
}

func TestTIMAIncrementsOnSelectedFallingEdge(t *testing.T) {
	tm := New()
	tm.Write(addr.DIV, 0)
	tm.Write(addr.TAC, 0x06) // enabled, bit 5 (every 16 m-cycles)

	for i := 0; i < 16; i++ {
		tm.Tick(1)
	}

	assert.Equal(t, uint8(1), tm.Read(addr.TIMA))
}

func TestTIMADisabledNeverIncrements(t *testing.T) {
	tm := New()
	tm.Write(addr.DIV, 0)
	tm.Write(addr.TAC, 0x01) // bit selected but timer-enable bit clear

	tm.Tick(1024)

	assert.Equal(t, uint8(0), tm.Read(addr.TIMA))
}

func TestTIMAOverflowReloadsFromTMAAfterDelay(t *testing.T) {
	tm := New()
	tm.Write(addr.DIV, 0)
	tm.Write(addr.TAC, 0x06) // bit 5, every 16 m-cycles
	tm.Write(addr.TMA, 0x7A)
	tm.tima = 0xFF

	var interruptFired bool
	tm.RequestInterrupt = func(i addr.Interrupt) {
		if i == addr.Timer {
			interruptFired = true
		}
	}

	for i := 0; i < 16; i++ {
		tm.Tick(1)
	}
	require.False(t, interruptFired, "interrupt should not fire on the overflow m-cycle itself")
	assert.Equal(t, uint8(0x00), tm.Read(addr.TIMA), "TIMA reads 0 on overflow, before the TMA reload")

	// the reload takes a fixed number of m-cycles before TMA lands in TIMA.
	for i := 0; i < 4; i++ {
		tm.Tick(1)
	}
	assert.Equal(t, uint8(0x7A), tm.Read(addr.TIMA))
	require.False(t, interruptFired, "interrupt fires one m-cycle after the reload, not on it")

	tm.Tick(1)
	assert.True(t, interruptFired)
}

func TestTACOnlyLowThreeBitsStored(t *testing.T) {
	tm := New()
	tm.Write(addr.TAC, 0xFF)
	assert.Equal(t, uint8(0x07), tm.Read(addr.TAC))
}
