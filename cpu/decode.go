package cpu

// execute fetches and runs exactly one instruction, returning its cycle
// cost. Regular instruction blocks (LD r,r' and the ALU-A,r block) are
// decoded generically from the opcode's bit pattern; everything else goes
// through opcodeTable, a map of small per-opcode handlers. This mirrors the teacher repo's
// jeebie/cpu/mapping.go decode table in spirit (one dispatch point, one
// handler per opcode) while covering the full 256+256 opcode space in far
// less code than 512 named functions would take.
func (c *CPU) execute() int {
	opcode := c.fetch8()

	switch {
	case opcode == 0x76:
		c.halted = true
		return 4
	case opcode >= 0x40 && opcode <= 0x7F:
		dst := (opcode >> 3) & 0x07
		src := opcode & 0x07
		c.setReg8(dst, c.reg8(src))
		if dst == 6 || src == 6 {
			return 8
		}
		return 4
	case opcode >= 0x80 && opcode <= 0xBF:
		src := opcode & 0x07
		v := c.reg8(src)
		switch (opcode >> 3) & 0x07 {
		case 0:
			c.add8(v)
		case 1:
			c.adc8(v)
		case 2:
			c.a = c.sub(v)
		case 3:
			c.sbc8(v)
		case 4:
			c.and8(v)
		case 5:
			c.xor8(v)
		case 6:
			c.or8(v)
		case 7:
			c.cp8(v)
		}
		if src == 6 {
			return 8
		}
		return 4
	}

	if fn, ok := opcodeTable[opcode]; ok {
		return fn(c)
	}

	// Unimplemented/invalid opcode: treated as a no-op, per the documented
	// contract that invalid opcodes never panic the running core.
	return 4
}

func (c *CPU) executeCB() int {
	opcode := c.fetch8()
	reg := opcode & 0x07
	op := (opcode >> 3) & 0x07
	group := (opcode >> 6) & 0x03

	v := c.reg8(reg)
	isMem := reg == 6

	var result uint8
	switch group {
	case 0: // rotate/shift group, op selects which operation
		switch op {
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
		case 7:
			result = c.srl(v)
		}
		c.setReg8(reg, result)
		if isMem {
			return 16
		}
		return 8
	case 1: // BIT b,r
		c.bit(op, v)
		if isMem {
			return 12
		}
		return 8
	case 2: // RES b,r
		c.setReg8(reg, v&^(1<<op))
		if isMem {
			return 16
		}
		return 8
	default: // SET b,r
		c.setReg8(reg, v|(1<<op))
		if isMem {
			return 16
		}
		return 8
	}
}

type opcodeFunc func(c *CPU) int

var opcodeTable map[uint8]opcodeFunc

func init() {
	opcodeTable = map[uint8]opcodeFunc{
		0x00: func(c *CPU) int { return 4 },
		0x01: func(c *CPU) int { c.setBC(c.fetch16()); return 12 },
		0x02: func(c *CPU) int { c.bus.Write(c.bc(), c.a); return 8 },
		0x03: func(c *CPU) int { c.setBC(c.bc() + 1); return 8 },
		0x04: func(c *CPU) int { c.b = c.inc8(c.b); return 4 },
		0x05: func(c *CPU) int { c.b = c.dec8(c.b); return 4 },
		0x06: func(c *CPU) int { c.b = c.fetch8(); return 8 },
		0x07: func(c *CPU) int {
			c.a = c.rlc(c.a)
			c.setFlag(FlagZ, false)
			return 4
		},
		0x08: func(c *CPU) int {
			target := c.fetch16()
			c.bus.Write(target, uint8(c.sp&0xFF))
			c.bus.Write(target+1, uint8(c.sp>>8))
			return 20
		},
		0x09: func(c *CPU) int { c.addHL(c.bc()); return 8 },
		0x0A: func(c *CPU) int { c.a = c.bus.Read(c.bc()); return 8 },
		0x0B: func(c *CPU) int { c.setBC(c.bc() - 1); return 8 },
		0x0C: func(c *CPU) int { c.c = c.inc8(c.c); return 4 },
		0x0D: func(c *CPU) int { c.c = c.dec8(c.c); return 4 },
		0x0E: func(c *CPU) int { c.c = c.fetch8(); return 8 },
		0x0F: func(c *CPU) int {
			c.a = c.rrc(c.a)
			c.setFlag(FlagZ, false)
			return 4
		},

		0x10: func(c *CPU) int { c.fetch8(); c.stopped = true; return 4 },
		0x11: func(c *CPU) int { c.setDE(c.fetch16()); return 12 },
		0x12: func(c *CPU) int { c.bus.Write(c.de(), c.a); return 8 },
		0x13: func(c *CPU) int { c.setDE(c.de() + 1); return 8 },
		0x14: func(c *CPU) int { c.d = c.inc8(c.d); return 4 },
		0x15: func(c *CPU) int { c.d = c.dec8(c.d); return 4 },
		0x16: func(c *CPU) int { c.d = c.fetch8(); return 8 },
		0x17: func(c *CPU) int {
			c.a = c.rl(c.a)
			c.setFlag(FlagZ, false)
			return 4
		},
		0x18: func(c *CPU) int { c.jr(); return 12 },
		0x19: func(c *CPU) int { c.addHL(c.de()); return 8 },
		0x1A: func(c *CPU) int { c.a = c.bus.Read(c.de()); return 8 },
		0x1B: func(c *CPU) int { c.setDE(c.de() - 1); return 8 },
		0x1C: func(c *CPU) int { c.e = c.inc8(c.e); return 4 },
		0x1D: func(c *CPU) int { c.e = c.dec8(c.e); return 4 },
		0x1E: func(c *CPU) int { c.e = c.fetch8(); return 8 },
		0x1F: func(c *CPU) int {
			c.a = c.rr(c.a)
			c.setFlag(FlagZ, false)
			return 4
		},

		0x20: func(c *CPU) int { return c.jrCond(!c.flag(FlagZ)) },
		0x21: func(c *CPU) int { c.setHL(c.fetch16()); return 12 },
		0x22: func(c *CPU) int { c.bus.Write(c.hl(), c.a); c.setHL(c.hl() + 1); return 8 },
		0x23: func(c *CPU) int { c.setHL(c.hl() + 1); return 8 },
		0x24: func(c *CPU) int { c.h = c.inc8(c.h); return 4 },
		0x25: func(c *CPU) int { c.h = c.dec8(c.h); return 4 },
		0x26: func(c *CPU) int { c.h = c.fetch8(); return 8 },
		0x27: func(c *CPU) int { c.daa(); return 4 },
		0x28: func(c *CPU) int { return c.jrCond(c.flag(FlagZ)) },
		0x29: func(c *CPU) int { c.addHL(c.hl()); return 8 },
		0x2A: func(c *CPU) int { c.a = c.bus.Read(c.hl()); c.setHL(c.hl() + 1); return 8 },
		0x2B: func(c *CPU) int { c.setHL(c.hl() - 1); return 8 },
		0x2C: func(c *CPU) int { c.l = c.inc8(c.l); return 4 },
		0x2D: func(c *CPU) int { c.l = c.dec8(c.l); return 4 },
		0x2E: func(c *CPU) int { c.l = c.fetch8(); return 8 },
		0x2F: func(c *CPU) int { c.cpl(); return 4 },

		0x30: func(c *CPU) int { return c.jrCond(!c.flag(FlagC)) },
		0x31: func(c *CPU) int { c.sp = c.fetch16(); return 12 },
		0x32: func(c *CPU) int { c.bus.Write(c.hl(), c.a); c.setHL(c.hl() - 1); return 8 },
		0x33: func(c *CPU) int { c.sp++; return 8 },
		0x34: func(c *CPU) int { c.bus.Write(c.hl(), c.inc8(c.bus.Read(c.hl()))); return 12 },
		0x35: func(c *CPU) int { c.bus.Write(c.hl(), c.dec8(c.bus.Read(c.hl()))); return 12 },
		0x36: func(c *CPU) int { c.bus.Write(c.hl(), c.fetch8()); return 12 },
		0x37: func(c *CPU) int { c.scf(); return 4 },
		0x38: func(c *CPU) int { return c.jrCond(c.flag(FlagC)) },
		0x39: func(c *CPU) int { c.addHL(c.sp); return 8 },
		0x3A: func(c *CPU) int { c.a = c.bus.Read(c.hl()); c.setHL(c.hl() - 1); return 8 },
		0x3B: func(c *CPU) int { c.sp--; return 8 },
		0x3C: func(c *CPU) int { c.a = c.inc8(c.a); return 4 },
		0x3D: func(c *CPU) int { c.a = c.dec8(c.a); return 4 },
		0x3E: func(c *CPU) int { c.a = c.fetch8(); return 8 },
		0x3F: func(c *CPU) int { c.ccf(); return 4 },

		0xC0: func(c *CPU) int { return c.retCond(!c.flag(FlagZ)) },
		0xC1: func(c *CPU) int { c.setBC(c.popStack()); return 12 },
		0xC2: func(c *CPU) int { return c.jpCond(!c.flag(FlagZ)) },
		0xC3: func(c *CPU) int { c.pc = c.fetch16(); return 16 },
		0xC4: func(c *CPU) int { return c.callCond(!c.flag(FlagZ)) },
		0xC5: func(c *CPU) int { c.pushStack(c.bc()); return 16 },
		0xC6: func(c *CPU) int { c.add8(c.fetch8()); return 8 },
		0xC7: func(c *CPU) int { return c.rst(0x00) },
		0xC8: func(c *CPU) int { return c.retCond(c.flag(FlagZ)) },
		0xC9: func(c *CPU) int { c.pc = c.popStack(); return 16 },
		0xCA: func(c *CPU) int { return c.jpCond(c.flag(FlagZ)) },
		0xCB: func(c *CPU) int { return c.executeCB() },
		0xCC: func(c *CPU) int { return c.callCond(c.flag(FlagZ)) },
		0xCD: func(c *CPU) int { addr := c.fetch16(); c.pushStack(c.pc); c.pc = addr; return 24 },
		0xCE: func(c *CPU) int { c.adc8(c.fetch8()); return 8 },
		0xCF: func(c *CPU) int { return c.rst(0x08) },

		0xD0: func(c *CPU) int { return c.retCond(!c.flag(FlagC)) },
		0xD1: func(c *CPU) int { c.setDE(c.popStack()); return 12 },
		0xD2: func(c *CPU) int { return c.jpCond(!c.flag(FlagC)) },
		0xD4: func(c *CPU) int { return c.callCond(!c.flag(FlagC)) },
		0xD5: func(c *CPU) int { c.pushStack(c.de()); return 16 },
		0xD6: func(c *CPU) int { c.a = c.sub(c.fetch8()); return 8 },
		0xD7: func(c *CPU) int { return c.rst(0x10) },
		0xD8: func(c *CPU) int { return c.retCond(c.flag(FlagC)) },
		0xD9: func(c *CPU) int { c.pc = c.popStack(); c.ime = true; return 16 },
		0xDA: func(c *CPU) int { return c.jpCond(c.flag(FlagC)) },
		0xDC: func(c *CPU) int { return c.callCond(c.flag(FlagC)) },
		0xDE: func(c *CPU) int { c.sbc8(c.fetch8()); return 8 },
		0xDF: func(c *CPU) int { return c.rst(0x18) },

		0xE0: func(c *CPU) int { c.bus.Write(0xFF00+uint16(c.fetch8()), c.a); return 12 },
		0xE1: func(c *CPU) int { c.setHL(c.popStack()); return 12 },
		0xE2: func(c *CPU) int { c.bus.Write(0xFF00+uint16(c.c), c.a); return 8 },
		0xE5: func(c *CPU) int { c.pushStack(c.hl()); return 16 },
		0xE6: func(c *CPU) int { c.and8(c.fetch8()); return 8 },
		0xE7: func(c *CPU) int { return c.rst(0x20) },
		0xE8: func(c *CPU) int { c.sp = c.addSPSigned(int8(c.fetch8())); return 16 },
		0xE9: func(c *CPU) int { c.pc = c.hl(); return 4 },
		0xEA: func(c *CPU) int { c.bus.Write(c.fetch16(), c.a); return 16 },
		0xEE: func(c *CPU) int { c.xor8(c.fetch8()); return 8 },
		0xEF: func(c *CPU) int { return c.rst(0x28) },

		0xF0: func(c *CPU) int { c.a = c.bus.Read(0xFF00 + uint16(c.fetch8())); return 12 },
		0xF1: func(c *CPU) int { c.setAF(c.popStack()); return 12 },
		0xF2: func(c *CPU) int { c.a = c.bus.Read(0xFF00 + uint16(c.c)); return 8 },
		0xF3: func(c *CPU) int { c.ime = false; c.eiDelay = 0; return 4 },
		0xF5: func(c *CPU) int { c.pushStack(c.af()); return 16 },
		0xF6: func(c *CPU) int { c.or8(c.fetch8()); return 8 },
		0xF7: func(c *CPU) int { return c.rst(0x30) },
		0xF8: func(c *CPU) int { c.setHL(c.addSPSigned(int8(c.fetch8()))); return 12 },
		0xF9: func(c *CPU) int { c.sp = c.hl(); return 8 },
		0xFA: func(c *CPU) int { c.a = c.bus.Read(c.fetch16()); return 16 },
		0xFB: func(c *CPU) int { c.eiDelay = 2; return 4 },
		0xFE: func(c *CPU) int { c.cp8(c.fetch8()); return 8 },
		0xFF: func(c *CPU) int { return c.rst(0x38) },
	}
}

func (c *CPU) jr() {
	offset := int8(c.fetch8())
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) jrCond(take bool) int {
	offset := int8(c.fetch8())
	if !take {
		return 8
	}
	c.pc = uint16(int32(c.pc) + int32(offset))
	return 12
}

func (c *CPU) jpCond(take bool) int {
	target := c.fetch16()
	if !take {
		return 12
	}
	c.pc = target
	return 16
}

func (c *CPU) callCond(take bool) int {
	target := c.fetch16()
	if !take {
		return 12
	}
	c.pushStack(c.pc)
	c.pc = target
	return 24
}

func (c *CPU) retCond(take bool) int {
	if !take {
		return 8
	}
	c.pc = c.popStack()
	return 20
}

func (c *CPU) rst(target uint16) int {
	c.pushStack(c.pc)
	c.pc = target
	return 16
}
