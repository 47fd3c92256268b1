// Package cpu implements the Sharp LR35902 instruction set: fetch/decode/
// execute, the flag-bearing register file, HALT/STOP, and the
// interrupt-acknowledge sequence. Grounded on the teacher repo's
// jeebie/cpu package (instructions.go's flag arithmetic, mapping.go's
// decode-table shape), generalized to bit-math decoding of the regular
// LD r,r' and ALU A,r blocks and the whole CB-prefixed space, with a table
// of small handlers for the remaining opcodes.
package cpu

import "github.com/haliberd/gbcore/addr"

// Flag bit masks within F, matching the teacher's cpu.go constants.
const (
	FlagZ uint8 = 0x80
	FlagN uint8 = 0x40
	FlagH uint8 = 0x20
	FlagC uint8 = 0x10
)

// Bus is the memory interface the CPU fetches instructions and operands
// through.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptController is the subset of interrupt.Controller the CPU needs
// to poll for and acknowledge pending interrupts.
type InterruptController interface {
	HasPending() bool
	NextPending() (addr.Interrupt, bool)
	Acknowledge(i addr.Interrupt)
}

// CPU holds the full LR35902 register file and control-flow state.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	sp, pc                 uint16

	ime     bool
	eiDelay int
	halted  bool
	stopped bool
	haltBug bool

	bus Bus
	ic  InterruptController
}

// New returns a CPU wired to the given bus and interrupt controller, with
// registers at their post-boot-ROM power-on values.
func New(bus Bus, ic InterruptController) *CPU {
	c := &CPU{bus: bus, ic: ic}
	c.Reset()
	return c
}

// Reset sets every register to its documented post-boot-ROM value.
func (c *CPU) Reset() {
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.eiDelay = 0
	c.halted = false
	c.stopped = false
}

// Step services at most one pending interrupt or executes exactly one
// instruction, and returns the number of cycles consumed (always a
// multiple of 4).
func (c *CPU) Step() int {
	if cycles, serviced := c.serviceInterrupt(); serviced {
		return cycles
	}

	if c.halted {
		if c.ic.HasPending() {
			c.halted = false
		}
		return 4
	}

	cycles := c.execute()

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.ime = true
		}
	}

	return cycles
}

func (c *CPU) serviceInterrupt() (int, bool) {
	if !c.ime {
		return 0, false
	}
	i, ok := c.ic.NextPending()
	if !ok {
		return 0, false
	}

	c.ime = false
	c.ic.Acknowledge(i)
	c.halted = false

	c.pushStack(c.pc)
	c.pc = i.Vector()
	return 20, true
}

// fetch8 reads the byte at PC and advances PC.
func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.pc)
	c.pc++
	return v
}

// fetch16 reads a little-endian word at PC and advances PC by 2.
func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) pushStack(value uint16) {
	c.sp -= 2
	c.bus.Write(c.sp, uint8(value&0xFF))
	c.bus.Write(c.sp+1, uint8(value>>8))
}

func (c *CPU) popStack() uint16 {
	lo := c.bus.Read(c.sp)
	hi := c.bus.Read(c.sp + 1)
	c.sp += 2
	return uint16(hi)<<8 | uint16(lo)
}

// --- register pair helpers ---

func (c *CPU) bc() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) de() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) hl() uint16 { return uint16(c.h)<<8 | uint16(c.l) }
func (c *CPU) af() uint16 { return uint16(c.a)<<8 | uint16(c.f&0xF0) }

func (c *CPU) setBC(v uint16) { c.b, c.c = uint8(v>>8), uint8(v) }
func (c *CPU) setDE(v uint16) { c.d, c.e = uint8(v>>8), uint8(v) }
func (c *CPU) setHL(v uint16) { c.h, c.l = uint8(v>>8), uint8(v) }
func (c *CPU) setAF(v uint16) { c.a, c.f = uint8(v>>8), uint8(v)&0xF0 }

// --- flag helpers ---

func (c *CPU) setFlag(mask uint8, on bool) {
	if on {
		c.f |= mask
	} else {
		c.f &^= mask
	}
	c.f &= 0xF0
}

func (c *CPU) flag(mask uint8) bool { return c.f&mask != 0 }

// --- 8-bit register index access, index order B,C,D,E,H,L,(HL),A ---

func (c *CPU) reg8(index uint8) uint8 {
	switch index & 0x07 {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.hl())
	default:
		return c.a
	}
}

func (c *CPU) setReg8(index uint8, value uint8) {
	switch index & 0x07 {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.bus.Write(c.hl(), value)
	default:
		c.a = value
	}
}

// --- 16-bit register pair index access, index order BC,DE,HL,SP ---

func (c *CPU) regPair(index uint8) uint16 {
	switch index & 0x03 {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.sp
	}
}

func (c *CPU) setRegPair(index uint8, value uint16) {
	switch index & 0x03 {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// --- exported read-only accessors, used by tests, debug tooling and the host ---

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// Registers returns the A,F,B,C,D,E,H,L register values.
func (c *CPU) Registers() (a, f, b, cc, d, e, h, l uint8) {
	return c.a, c.f, c.b, c.c, c.d, c.e, c.h, c.l
}

// IME returns whether interrupts are currently enabled.
func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is currently halted awaiting an interrupt.
func (c *CPU) Halted() bool { return c.halted }
