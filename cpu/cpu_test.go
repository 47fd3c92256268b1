package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haliberd/gbcore/addr"
)

type fakeBus struct {
	mem [0x10000]uint8
}

func (b *fakeBus) Read(address uint16) uint8  { return b.mem[address] }
func (b *fakeBus) Write(address uint16, v uint8) { b.mem[address] = v }

type fakeIC struct {
	pending []addr.Interrupt
	acked   []addr.Interrupt
}

func (f *fakeIC) HasPending() bool { return len(f.pending) > 0 }
func (f *fakeIC) NextPending() (addr.Interrupt, bool) {
	if len(f.pending) == 0 {
		return 0, false
	}
	return f.pending[0], true
}
func (f *fakeIC) Acknowledge(i addr.Interrupt) {
	f.acked = append(f.acked, i)
	f.pending = f.pending[1:]
}

func newTestCPU() (*CPU, *fakeBus, *fakeIC) {
	bus := &fakeBus{}
	ic := &fakeIC{}
	c := New(bus, ic)
	return c, bus, ic
}

func TestReset_PowerOnValues(t *testing.T) {
	c, _, _ := newTestCPU()

	assert.Equal(t, uint8(0x01), c.a)
	assert.Equal(t, uint8(0xB0), c.f)
	assert.Equal(t, uint16(0xFFFE), c.sp)
	assert.Equal(t, uint16(0x0100), c.pc)
}

func TestFlags_LowNibbleAlwaysZero(t *testing.T) {
	c, _, _ := newTestCPU()
	c.setFlag(FlagZ, true)
	c.setFlag(FlagN, true)
	c.setFlag(FlagH, true)
	c.setFlag(FlagC, true)

	assert.Equal(t, uint8(0), c.f&0x0F)
}

func TestStep_NOP(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.mem[0x0100] = 0x00

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0101), c.pc)
}

func TestStep_LD_B_d8(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.mem[0x0100] = 0x06
	bus.mem[0x0101] = 0x42

	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x42), c.b)
}

func TestStep_LD_rr_blockGeneric(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.b = 0x99
	bus.mem[0x0100] = 0x41 // LD B,C -> opcode 0x40 | dst=B(0) src=C(1)

	c.Step()

	assert.Equal(t, c.c, c.b)
}

func TestInterrupt_PushesPCAndJumpsToVector(t *testing.T) {
	c, bus, ic := newTestCPU()
	c.ime = true
	c.pc = 0x1234
	ic.pending = []addr.Interrupt{addr.VBlank}
	bus.mem[0x1234] = 0x00 // would-be next opcode, unused since interrupt services first

	cycles := c.Step()

	assert.Equal(t, 20, cycles)
	assert.Equal(t, addr.VBlank.Vector(), c.pc)
	assert.False(t, c.ime)
	assert.Equal(t, []addr.Interrupt{addr.VBlank}, ic.acked)

	poppedLo := bus.mem[c.sp]
	poppedHi := bus.mem[c.sp+1]
	assert.Equal(t, uint16(0x1234), uint16(poppedHi)<<8|uint16(poppedLo))
}

func TestHalt_WakesOnPendingInterruptWithoutServicing(t *testing.T) {
	c, bus, ic := newTestCPU()
	bus.mem[0x0100] = 0x76 // HALT
	c.Step()
	assert.True(t, c.halted)

	c.ime = false
	ic.pending = []addr.Interrupt{addr.Timer}

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.False(t, c.halted)
	assert.Empty(t, ic.acked, "HALT with IME=false must resume without servicing the interrupt")
}

func TestEI_TakesEffectAfterFollowingInstruction(t *testing.T) {
	c, bus, ic := newTestCPU()
	bus.mem[0x0100] = 0xFB // EI
	bus.mem[0x0101] = 0x00 // NOP
	bus.mem[0x0102] = 0x00 // NOP
	ic.pending = []addr.Interrupt{addr.VBlank}

	c.Step() // EI
	assert.False(t, c.ime)

	c.Step() // instruction right after EI executes with interrupts still disabled
	assert.Empty(t, ic.acked)

	c.Step() // IME became live at the end of the previous step; this step services it
	assert.NotEmpty(t, ic.acked)
}

func TestDI_CancelsScheduledEI(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.mem[0x0100] = 0xFB // EI
	bus.mem[0x0101] = 0xF3 // DI
	bus.mem[0x0102] = 0x00
	bus.mem[0x0103] = 0x00

	c.Step()
	c.Step()
	c.Step()
	c.Step()

	assert.False(t, c.ime)
}
