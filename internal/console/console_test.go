package console

import (
	"testing"

	"github.com/kvnbkr/pocketgb/internal/addr"
	"github.com/kvnbkr/pocketgb/internal/cartridge"
	"github.com/kvnbkr/pocketgb/internal/joypad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConsole builds a Console around an all-NOP ROM (zeroed bytes decode
// to opcode 0x00) with the LCD enabled, so RunOneFrame has dots to advance.
func newTestConsole(t *testing.T) *Console {
	t.Helper()
	rom := make([]byte, 0x8000)
	cart, err := cartridge.New(rom, nil)
	require.NoError(t, err)

	con := New(cart, DMG, nil)
	con.bus.PPU().WriteRegister(addr.LCDC, 0x80)
	return con
}

func TestRunOneFrameAdvancesOneFrame(t *testing.T) {
	con := newTestConsole(t)
	con.RunOneFrame()
	assert.Equal(t, uint64(1), con.FrameCount())
}

func TestPausePreventsExecution(t *testing.T) {
	con := newTestConsole(t)
	con.Pause()
	con.RunOneFrame()
	assert.Equal(t, uint64(0), con.FrameCount())
	assert.Equal(t, uint64(0), con.InstructionCount())
}

func TestResumeAllowsExecutionAgain(t *testing.T) {
	con := newTestConsole(t)
	con.Pause()
	con.RunOneFrame()
	require.Equal(t, uint64(0), con.FrameCount())

	con.Resume()
	con.RunOneFrame()
	assert.Equal(t, uint64(1), con.FrameCount())
}

func TestStepInstructionExecutesExactlyOne(t *testing.T) {
	con := newTestConsole(t)
	startPC := con.CPU().PC()

	con.StepInstruction()
	con.RunOneFrame() // honors the one-shot step request, then re-pauses

	assert.Equal(t, uint64(1), con.InstructionCount())
	assert.Equal(t, startPC+1, con.CPU().PC(), "a NOP advances PC by one")
	assert.Equal(t, DebuggerPaused, con.DebuggerState(), "auto-pauses after the step")

	con.RunOneFrame() // paused, should not execute anything further
	assert.Equal(t, uint64(1), con.InstructionCount())
}

func TestStepFrameRunsExactlyOneFrame(t *testing.T) {
	con := newTestConsole(t)

	con.StepFrame()
	con.RunOneFrame()

	assert.Equal(t, uint64(1), con.FrameCount())
	assert.Equal(t, DebuggerPaused, con.DebuggerState())

	con.RunOneFrame() // paused now, no second frame
	assert.Equal(t, uint64(1), con.FrameCount())
}

func TestPressAndReleaseKeyReachJoypad(t *testing.T) {
	con := newTestConsole(t)
	con.bus.Joypad().Write(0x10) // select buttons

	con.PressKey(joypad.A)
	assert.Equal(t, uint8(0x0E), con.bus.Joypad().Read()&0x0F)

	con.ReleaseKey(joypad.A)
	assert.Equal(t, uint8(0x0F), con.bus.Joypad().Read()&0x0F)
}

func TestSaveRAMDelegatesToCartridge(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x03 // MBC1+RAM+Battery
	rom[0x149] = 0x02 // 8KiB RAM
	cart, err := cartridge.New(rom, nil)
	require.NoError(t, err)

	con := New(cart, DMG, nil)
	assert.Len(t, con.SaveRAM(), 8*1024)
}
