package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushPop_RoundTrips(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.setBC(0xBEEF)
	bus.mem[0x0100] = 0xC5 // PUSH BC
	bus.mem[0x0101] = 0xD1 // POP DE

	c.Step()
	c.Step()

	assert.Equal(t, uint16(0xBEEF), c.de())
}

func TestCallAndRet(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.mem[0x0100] = 0xCD // CALL 0x2000
	bus.mem[0x0101] = 0x00
	bus.mem[0x0102] = 0x20
	bus.mem[0x2000] = 0xC9 // RET

	cycles := c.Step()
	assert.Equal(t, 24, cycles)
	assert.Equal(t, uint16(0x2000), c.pc)

	cycles = c.Step()
	assert.Equal(t, 16, cycles)
	assert.Equal(t, uint16(0x0103), c.pc)
}

func TestJR_ConditionalCyclesDifferWhenNotTaken(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.setFlag(FlagZ, false)
	bus.mem[0x0100] = 0x28 // JR Z, not taken since Z is clear
	bus.mem[0x0101] = 0x10

	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint16(0x0102), c.pc)
}

func TestCB_RLC_SetsCarryAndRotates(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.b = 0x85
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0x00 // RLC B

	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x0B), c.b)
	assert.True(t, c.flag(FlagC))
}

func TestCB_BIT_OnMemoryOperand(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.setHL(0xC000)
	bus.mem[0xC000] = 0x00
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0x46 // BIT 0,(HL)

	cycles := c.Step()

	assert.Equal(t, 12, cycles)
	assert.True(t, c.flag(FlagZ))
}

func TestCB_SET_RES_RoundTrip(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.l = 0x00
	bus.mem[0x0100] = 0xCB
	bus.mem[0x0101] = 0xED // SET 5,L
	bus.mem[0x0102] = 0xCB
	bus.mem[0x0103] = 0xAD // RES 5,L

	c.Step()
	assert.Equal(t, uint8(0x20), c.l)

	c.Step()
	assert.Equal(t, uint8(0x00), c.l)
}

func TestInvalidOpcode_NoOpChargesFourCycles(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.mem[0x0100] = 0xD3 // unassigned

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0101), c.pc)
}
