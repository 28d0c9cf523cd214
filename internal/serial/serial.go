// Package serial models the SB/SC link-cable registers as an inert stub:
// it satisfies the bus's register contract without implementing the
// link protocol, since no peer is ever connected.
package serial

import "github.com/kvnbkr/pocketgb/internal/addr"

// Port stores SB/SC without ever completing a transfer or requesting the
// Serial interrupt. SB reads back the last written byte and SC the last
// written byte with bits 1-6 set, matching the
// passive "no peer connected" behavior real hardware exhibits when SC's
// start bit is never cleared by a transfer.
type Port struct {
	sb uint8
	sc uint8
}

// New returns an idle serial port.
func New() *Port { return &Port{} }

// Read returns SB or SC; any other address is not routed here.
func (p *Port) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc | 0x7E // bits 1-6 always read as 1 on DMG hardware
	default:
		return 0xFF
	}
}

// Write stores SB or SC. No transfer is ever started: the start bit
// written to SC is retained as written, it is simply never cleared.
func (p *Port) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value
	}
}
