package cpu

// execute dispatches a fetched opcode using the classic x/y/z/p/q
// bitfield decomposition of the 8-bit opcode space (x = bits 7-6,
// y = bits 5-3, z = bits 2-0, p = y>>1, q = y&1). The LR35902 opcode
// table follows the 8080/Z80 layout minus the Z80-only instructions
// (IX/IY, EX, exotic I/O, DJNZ).
//
// It returns the instruction's documented m-cycle count.
func (c *CPU) execute(opcode uint8) int {
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07
	p := y >> 1
	q := y & 0x01

	switch x {
	case 0:
		return c.executeX0(y, z, p, q)
	case 1:
		return c.executeX1(y, z)
	case 2:
		return c.executeX2(y, z)
	default:
		return c.executeX3(y, z, p, q, opcode)
	}
}

func (c *CPU) executeX0(y, z, p, q uint8) int {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
			return 1
		case 1: // LD (nn),SP
			addr := c.fetchImmediate16()
			c.memory.Write(addr, uint8(c.sp))
			c.memory.Write(addr+1, uint8(c.sp>>8))
			return 5
		case 2: // STOP
			c.stop()
			return 1
		case 3: // JR d
			c.jr(int8(c.fetchImmediate8()))
			return 3
		default: // JR cc,d (y=4..7)
			offset := int8(c.fetchImmediate8())
			if c.condition(y - 4) {
				c.jr(offset)
				return 3
			}
			return 2
		}
	case 1:
		if q == 0 { // LD rp[p],nn
			c.setReg16sp(p, c.fetchImmediate16())
			return 3
		}
		c.addHL(c.reg16sp(p)) // ADD HL,rp[p]
		return 2
	case 2:
		if q == 0 {
			switch p {
			case 0:
				c.memory.Write(c.bc(), c.a)
			case 1:
				c.memory.Write(c.de(), c.a)
			case 2:
				c.memory.Write(c.hl(), c.a)
				c.setHL(c.hl() + 1)
			case 3:
				c.memory.Write(c.hl(), c.a)
				c.setHL(c.hl() - 1)
			}
		} else {
			switch p {
			case 0:
				c.a = c.memory.Read(c.bc())
			case 1:
				c.a = c.memory.Read(c.de())
			case 2:
				c.a = c.memory.Read(c.hl())
				c.setHL(c.hl() + 1)
			case 3:
				c.a = c.memory.Read(c.hl())
				c.setHL(c.hl() - 1)
			}
		}
		return 2
	case 3:
		v := c.reg16sp(p)
		if q == 0 {
			c.setReg16sp(p, v+1)
		} else {
			c.setReg16sp(p, v-1)
		}
		return 2
	case 4: // INC r[y]
		if y == 6 {
			v := c.memory.Read(c.hl())
			c.incReg(&v)
			c.memory.Write(c.hl(), v)
			return 3
		}
		c.incReg(c.reg8(y))
		return 1
	case 5: // DEC r[y]
		if y == 6 {
			v := c.memory.Read(c.hl())
			c.decReg(&v)
			c.memory.Write(c.hl(), v)
			return 3
		}
		c.decReg(c.reg8(y))
		return 1
	case 6: // LD r[y],n
		n := c.fetchImmediate8()
		if y == 6 {
			c.memory.Write(c.hl(), n)
			return 3
		}
		*c.reg8(y) = n
		return 2
	default: // z == 7
		switch y {
		case 0:
			c.a = c.rlc(c.a)
			c.setFlag(flagZ, false)
		case 1:
			c.a = c.rrc(c.a)
			c.setFlag(flagZ, false)
		case 2:
			c.a = c.rl(c.a)
			c.setFlag(flagZ, false)
		case 3:
			c.a = c.rr(c.a)
			c.setFlag(flagZ, false)
		case 4:
			c.daa()
		case 5: // CPL
			c.a = ^c.a
			c.setFlag(flagN, true)
			c.setFlag(flagH, true)
		case 6: // SCF
			c.setFlag(flagN, false)
			c.setFlag(flagH, false)
			c.setFlag(flagC, true)
		case 7: // CCF
			c.setFlag(flagN, false)
			c.setFlag(flagH, false)
			c.setFlag(flagC, !c.flag(flagC))
		}
		return 1
	}
}

func (c *CPU) executeX1(y, z uint8) int {
	if y == 6 && z == 6 {
		c.halt()
		return 1
	}

	if z == 6 {
		*c.reg8(y) = c.memory.Read(c.hl())
		return 2
	}
	if y == 6 {
		c.memory.Write(c.hl(), *c.reg8(z))
		return 2
	}
	*c.reg8(y) = *c.reg8(z)
	return 1
}

func (c *CPU) executeX2(y, z uint8) int {
	value := c.getR(z)
	c.aluOp(y, value)
	if z == 6 {
		return 2
	}
	return 1
}

func (c *CPU) executeX3(y, z, p, q, opcode uint8) int {
	switch z {
	case 0:
		switch y {
		case 0, 1, 2, 3: // RET cc
			if c.condition(y) {
				c.pc = c.popStack()
				return 5
			}
			return 2
		case 4: // LD (0xFF00+n),A
			n := c.fetchImmediate8()
			c.memory.Write(0xFF00+uint16(n), c.a)
			return 3
		case 5: // ADD SP,e8
			e := int8(c.fetchImmediate8())
			c.sp = c.addSPSigned(e)
			return 4
		case 6: // LD A,(0xFF00+n)
			n := c.fetchImmediate8()
			c.a = c.memory.Read(0xFF00 + uint16(n))
			return 3
		default: // LD HL,SP+e8
			e := int8(c.fetchImmediate8())
			c.setHL(c.addSPSigned(e))
			return 3
		}
	case 1:
		if q == 0 { // POP rp2[p]
			c.setReg16af(p, c.popStack())
			return 3
		}
		switch p {
		case 0: // RET
			c.pc = c.popStack()
			return 4
		case 1: // RETI
			c.reti()
			return 4
		case 2: // JP HL
			c.pc = c.hl()
			return 1
		default: // LD SP,HL
			c.sp = c.hl()
			return 2
		}
	case 2:
		switch y {
		case 0, 1, 2, 3: // JP cc,nn
			addr := c.fetchImmediate16()
			if c.condition(y) {
				c.pc = addr
				return 4
			}
			return 3
		case 4: // LD (0xFF00+C),A
			c.memory.Write(0xFF00+uint16(c.c), c.a)
			return 2
		case 5: // LD (nn),A
			addr := c.fetchImmediate16()
			c.memory.Write(addr, c.a)
			return 4
		case 6: // LD A,(0xFF00+C)
			c.a = c.memory.Read(0xFF00 + uint16(c.c))
			return 2
		default: // LD A,(nn)
			addr := c.fetchImmediate16()
			c.a = c.memory.Read(addr)
			return 4
		}
	case 3:
		switch y {
		case 0: // JP nn
			c.pc = c.fetchImmediate16()
			return 4
		case 1: // CB prefix
			return c.executeCB()
		case 6: // DI
			c.di()
			return 1
		case 7: // EI
			c.ei()
			return 1
		default:
			return 1 // illegal opcode on this core, treated as a no-op
		}
	case 4:
		if y > 3 {
			return 1 // illegal
		}
		addr := c.fetchImmediate16()
		if c.condition(y) {
			c.pushStack(c.pc)
			c.pc = addr
			return 6
		}
		return 3
	case 5:
		if q == 0 { // PUSH rp2[p]
			c.pushStack(c.reg16af(p))
			return 4
		}
		if p == 0 { // CALL nn
			addr := c.fetchImmediate16()
			c.pushStack(c.pc)
			c.pc = addr
			return 6
		}
		return 1 // illegal
	case 6: // ALU y,n
		n := c.fetchImmediate8()
		c.aluOp(y, n)
		return 2
	default: // RST y*8
		c.pushStack(c.pc)
		c.pc = uint16(y) * 8
		return 4
	}
}

func (c *CPU) jr(offset int8) {
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) getR(index uint8) uint8 {
	if index == 6 {
		return c.memory.Read(c.hl())
	}
	return *c.reg8(index)
}

func (c *CPU) aluOp(y uint8, value uint8) {
	switch y {
	case 0:
		c.add(value)
	case 1:
		c.adc(value)
	case 2:
		c.sub(value)
	case 3:
		c.sbc(value)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	case 7:
		c.cp(value)
	}
}

// executeCB decodes the second byte of a CB-prefixed instruction. The
// layout is x=bits7-6 (0=rot/shift group, 1=BIT, 2=RES, 3=SET),
// y=bits5-3 (op within the group / bit index), z=bits2-0 (register).
func (c *CPU) executeCB() int {
	opcode := c.fetchImmediate8()
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07

	if x == 0 {
		v := c.getR(z)
		var result uint8
		switch y {
		case 0:
			result = c.rlc(v)
		case 1:
			result = c.rrc(v)
		case 2:
			result = c.rl(v)
		case 3:
			result = c.rr(v)
		case 4:
			result = c.sla(v)
		case 5:
			result = c.sra(v)
		case 6:
			result = c.swap(v)
		default:
			result = c.srl(v)
		}
		c.setR(z, result)
		if z == 6 {
			return 4
		}
		return 2
	}

	if x == 1 { // BIT y,r[z]
		c.bitTest(y, c.getR(z))
		if z == 6 {
			return 3
		}
		return 2
	}

	v := c.getR(z)
	if x == 2 { // RES y,r[z]
		c.setR(z, resetBit(y, v))
	} else { // SET y,r[z]
		c.setR(z, setBit(y, v))
	}
	if z == 6 {
		return 4
	}
	return 2
}

func (c *CPU) setR(index uint8, value uint8) {
	if index == 6 {
		c.memory.Write(c.hl(), value)
		return
	}
	*c.reg8(index) = value
}
