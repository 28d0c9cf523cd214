// Package apu models the audio processing unit as an inert stub. No sound
// is synthesized and no register is stored: every read in the audio
// register range returns 0xFF and every write is dropped.
package apu

import "github.com/kvnbkr/pocketgb/internal/addr"

// APU is the stubbed audio unit.
type APU struct{}

// New returns a stub APU.
func New() *APU { return &APU{} }

// Read always returns 0xFF across the NRxx and wave-RAM range.
func (a *APU) Read(address uint16) uint8 {
	_ = address
	return 0xFF
}

// Write is ignored across the entire audio register range.
func (a *APU) Write(address uint16, value uint8) {}

// Tick is a no-op; reserved so the bus can drive APU on the same schedule
// as Timer/Joypad/PPU once a real implementation lands.
func (a *APU) Tick(mCycles int) {}

// InRange reports whether address falls in the audio register window.
func InRange(address uint16) bool {
	return (address >= addr.AudioStart && address <= addr.AudioEnd) ||
		(address >= addr.WaveStart && address <= addr.WaveEnd)
}
