package joypad

import (
	"testing"

	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/stretchr/testify/assert"
)

func TestNewAllReleased(t *testing.T) {
	p := New()
	assert.Equal(t, uint8(0xCF), p.Read(), "both groups selected, every key released")
}

func TestSelectDpadReadsPressedDirection(t *testing.T) {
	p := New()
	p.Press(Up)
	p.Write(0x20) // bit 5 set / bit 4 clear selects the d-pad group

	got := p.Read()
	assert.Equal(t, uint8(0x20), got&0x30, "selection bits echo back the write")
	assert.Equal(t, uint8(0x0B), got&0x0F, "Up is bit 2, cleared when pressed")
}

func TestSelectButtonsReadsPressedButton(t *testing.T) {
	p := New()
	p.Press(A)
	p.Write(0x10) // bit 4 set / bit 5 clear selects the button group

	got := p.Read()
	assert.Equal(t, uint8(0x0E), got&0x0F, "A is bit 0, cleared when pressed")
}

func TestReleaseRestoresBit(t *testing.T) {
	p := New()
	p.Press(Start)
	p.Write(0x10)
	assert.Equal(t, uint8(0x07), p.Read()&0x0F)

	p.Release(Start)
	assert.Equal(t, uint8(0x0F), p.Read()&0x0F)
}

func TestNoSelectionReadsAllHigh(t *testing.T) {
	p := New()
	p.Press(A)
	p.Press(Up)
	p.Write(0x30) // neither group selected

	assert.Equal(t, uint8(0x0F), p.Read()&0x0F)
}

func TestPollRequestsInterruptOnFallingEdge(t *testing.T) {
	p := New()
	p.Write(0x10) // select buttons
	var fired bool
	p.RequestInterrupt = func(i addr.Interrupt) {
		if i == addr.Joypad {
			fired = true
		}
	}

	p.Tick(pollPeriod - 1)
	assert.False(t, fired, "no poll has happened yet")

	p.Press(A)
	p.Tick(1)
	assert.True(t, fired, "pressing A produces a falling edge at the next poll")
}

func TestPollNoInterruptWithoutEdge(t *testing.T) {
	p := New()
	p.Write(0x10)
	var fired bool
	p.RequestInterrupt = func(addr.Interrupt) { fired = true }

	p.Tick(pollPeriod)
	assert.False(t, fired)
}
