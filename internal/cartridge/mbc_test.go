package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoMBCReadsDirectly(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x1234] = 0xAB
	m := newNoMBC(rom)
	assert.Equal(t, uint8(0xAB), m.Read(0x1234))
}

func TestNoMBCIgnoresWrites(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := newNoMBC(rom)
	m.Write(0x2000, 0x7F)
	assert.Equal(t, uint8(0x00), m.Read(0x2000))
}

func TestMBC1BankZeroTranslation(t *testing.T) {
	rom := make([]byte, 0x4000*4) // 4 banks
	for bank := 0; bank < 4; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	m := newMBC1(rom, nil)

	m.Write(0x2000, 0x00) // bank register 0 translates to bank 1
	assert.Equal(t, uint8(1), m.Read(0x4000))

	m.Write(0x2000, 0x03)
	assert.Equal(t, uint8(3), m.Read(0x4000))
}

func TestMBC1RAMEnableGatesAccess(t *testing.T) {
	rom := make([]byte, 0x4000*2)
	ram := make([]byte, 0x2000)
	m := newMBC1(rom, ram)

	m.Write(0xA000, 0x99) // RAM disabled, write ignored
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0xA000, 0x99)
	assert.Equal(t, uint8(0x99), m.Read(0xA000))
}

func TestMBC1UpperBitsExtendROMBank(t *testing.T) {
	rom := make([]byte, 0x4000*64)
	rom[33*0x4000] = 0x77
	m := newMBC1(rom, nil)

	m.Write(0x2000, 0x01) // low 5 bits = 1
	m.Write(0x4000, 0x01) // upper 2 bits = 1 -> bank = 1<<5 | 1 = 33
	assert.Equal(t, uint8(0x77), m.Read(0x4000))
}

func TestMBC1BankAliasesAtMultiplesOf0x20(t *testing.T) {
	rom := make([]byte, 0x4000*64)
	for bank := 0; bank < 64; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	m := newMBC1(rom, nil)

	// writing 0x20/0x40/0x60 zeroes the low 5 bits, which the controller
	// rewrites to 1: the upper bits land via the 0x4000 register instead.
	tests := []struct {
		write    uint8
		upper    uint8
		wantBank uint8
	}{
		{0x00, 0x00, 0x01},
		{0x20, 0x01, 0x21},
		{0x00, 0x01, 0x21},
		{0x00, 0x02, 0x41},
		{0x1F, 0x01, 0x3F},
	}
	for _, tt := range tests {
		m.Write(0x2000, tt.write)
		m.Write(0x4000, tt.upper)
		assert.Equal(t, tt.wantBank, m.Read(0x4000))
	}
}

func TestMBC5FullROMBankRange(t *testing.T) {
	rom := make([]byte, 0x4000*512)
	rom[511*0x4000] = 0x55
	m := newMBC5(rom, nil, false)

	m.Write(0x2000, 0xFF)        // low 8 bits
	m.Write(0x3000, 0x01)        // bit 8
	assert.Equal(t, uint16(0x1FF), m.romBank)
	assert.Equal(t, uint8(0x55), m.Read(0x4000))
}

func TestMBC5RumbleBitMaskedFromRAMBank(t *testing.T) {
	rom := make([]byte, 0x4000*2)
	ram := make([]byte, 0x2000*8)
	m := newMBC5(rom, ram, true)

	m.Write(0x4000, 0x0F) // bit 3 is the rumble motor, not part of the bank
	assert.True(t, m.rumbleOn)
	assert.Equal(t, uint8(0x07), m.ramBank)
}

func TestMBC5RAMEnableRequiresExactByte(t *testing.T) {
	rom := make([]byte, 0x4000*2)
	ram := make([]byte, 0x2000)
	m := newMBC5(rom, ram, false)

	m.Write(0x0000, 0x0F) // not exactly 0x0A
	m.Write(0xA000, 0x11)
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))

	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x11)
	assert.Equal(t, uint8(0x11), m.Read(0xA000))
}
