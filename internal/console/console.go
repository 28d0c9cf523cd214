// Package console ties the bus, CPU and cartridge together into the
// single root object a frontend drives: load a ROM, run frames, push
// key events, read back the framebuffer and save-RAM.
package console

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kvnbkr/pocketgb/internal/bus"
	"github.com/kvnbkr/pocketgb/internal/cartridge"
	"github.com/kvnbkr/pocketgb/internal/cpu"
	"github.com/kvnbkr/pocketgb/internal/joypad"
	"github.com/kvnbkr/pocketgb/internal/video"
)

// Model selects which hardware the core emulates.
type Model int

const (
	DMG Model = iota
	CGB
)

// DebuggerState controls single-step / single-frame execution over an
// otherwise free-running core.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStep
	DebuggerStepFrame
)

// Console is the root object wiring cartridge, bus and CPU together.
type Console struct {
	bus *bus.Bus
	cpu *cpu.CPU
	cg  Model

	debuggerMu       sync.RWMutex
	debuggerState    DebuggerState
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

// New builds a Console around cart, running as model. bootROM may be nil.
func New(cart *cartridge.Cartridge, model Model, bootROM []byte) *Console {
	b := bus.New(cart, model == CGB, bootROM)
	c := cpu.New(b, b.Interrupts())
	b.AttachCPU(c)

	return &Console{bus: b, cpu: c, cg: model}
}

// RunOneFrame advances the core until the PPU publishes a new frame,
// honoring the debugger state (paused/step/step-frame/running).
func (con *Console) RunOneFrame() {
	con.debuggerMu.RLock()
	state := con.debuggerState
	con.debuggerMu.RUnlock()

	switch state {
	case DebuggerPaused:
		return
	case DebuggerStep:
		con.debuggerMu.Lock()
		requested := con.stepRequested
		con.stepRequested = false
		con.debuggerMu.Unlock()
		if !requested {
			return
		}
		oldPC := con.cpu.PC()
		con.cpu.Step()
		con.instructionCount++
		slog.Debug("step executed", "pc", fmt.Sprintf("0x%04X", oldPC), "new_pc", fmt.Sprintf("0x%04X", con.cpu.PC()))
		con.SetDebuggerState(DebuggerPaused)
		return
	case DebuggerStepFrame:
		con.debuggerMu.Lock()
		requested := con.frameRequested
		con.frameRequested = false
		con.debuggerMu.Unlock()
		if !requested {
			return
		}
		con.runFrame()
		con.SetDebuggerState(DebuggerPaused)
		return
	default:
		con.runFrame()
	}
}

func (con *Console) runFrame() {
	before := con.bus.PPU().FrameCount()
	startCycles := con.cpu.Cycles()
	for con.bus.PPU().FrameCount() == before {
		con.cpu.Step()
		con.instructionCount++
		if con.cpu.Cycles()-startCycles > 2*70224 {
			// LCD is off: no frame will publish, so stop after two
			// frames' worth of dots to keep the host's pacing alive
			break
		}
	}
	con.frameCount++
	if con.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", con.frameCount, "pc", fmt.Sprintf("0x%04X", con.cpu.PC()))
	}
}

// Frame returns the most recently published framebuffer.
func (con *Console) Frame() *video.Frame {
	return con.bus.PPU().TripleBuffer().ReaderAcquire()
}

// PressKey marks a joypad input as held down.
func (con *Console) PressKey(k joypad.Key) {
	con.bus.Joypad().Press(k)
}

// ReleaseKey marks a joypad input as released.
func (con *Console) ReleaseKey(k joypad.Key) {
	con.bus.Joypad().Release(k)
}

// SaveRAM returns the cartridge's battery-backed RAM, or nil if it has none.
func (con *Console) SaveRAM() []byte {
	return con.bus.SaveRAM()
}

// CPU exposes the CPU for debugger frontends.
func (con *Console) CPU() *cpu.CPU { return con.cpu }

// SetDebuggerState switches the debugger mode.
func (con *Console) SetDebuggerState(state DebuggerState) {
	con.debuggerMu.Lock()
	defer con.debuggerMu.Unlock()
	con.debuggerState = state
	slog.Debug("debugger state changed", "state", state)
}

// DebuggerState returns the current debugger mode.
func (con *Console) DebuggerState() DebuggerState {
	con.debuggerMu.RLock()
	defer con.debuggerMu.RUnlock()
	return con.debuggerState
}

// Pause stops free-running execution.
func (con *Console) Pause() {
	con.SetDebuggerState(DebuggerPaused)
	slog.Info("console paused")
}

// Resume returns to free-running execution.
func (con *Console) Resume() {
	con.SetDebuggerState(DebuggerRunning)
	slog.Info("console resumed")
}

// StepInstruction requests a single instruction be executed on the next
// RunOneFrame call.
func (con *Console) StepInstruction() {
	con.debuggerMu.Lock()
	defer con.debuggerMu.Unlock()
	con.stepRequested = true
	con.debuggerState = DebuggerStep
}

// StepFrame requests a single frame be executed on the next RunOneFrame call.
func (con *Console) StepFrame() {
	con.debuggerMu.Lock()
	defer con.debuggerMu.Unlock()
	con.frameRequested = true
	con.debuggerState = DebuggerStepFrame
}

// InstructionCount returns the running count of instructions executed.
func (con *Console) InstructionCount() uint64 { return con.instructionCount }

// FrameCount returns the running count of frames run, including runs that
// ended after two frames' worth of cycles without a published frame.
func (con *Console) FrameCount() uint64 { return con.frameCount }
