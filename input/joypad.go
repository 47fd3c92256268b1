// Package input implements the Game Boy's P1 joypad register: two 4-bit
// button groups multiplexed onto the same four data lines, with a
// 1-to-0 transition on a selected line raising the Joypad interrupt.
package input

import "github.com/haliberd/gbcore/addr"

// Button identifies one of the eight physical inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// InterruptRequester is satisfied by the interrupt controller.
type InterruptRequester interface {
	Request(i addr.Interrupt)
}

// Joypad tracks button state and the P1 register's group-select bits.
// Both nibbles are active-low internally, matching real hardware: a bit
// of 0 means pressed.
type Joypad struct {
	dpad    uint8 // bits: 3=Down 2=Up 1=Left 0=Right
	buttons uint8 // bits: 3=Start 2=Select 1=B 0=A
	select_ uint8 // P1 bits 5:4 as last written

	ic InterruptRequester
}

// New returns a Joypad with no buttons pressed.
func New(ic InterruptRequester) *Joypad {
	return &Joypad{dpad: 0x0F, buttons: 0x0F, ic: ic}
}

func bitFor(b Button) (bit uint8, isDpad bool) {
	switch b {
	case Right:
		return 0, true
	case Left:
		return 1, true
	case Up:
		return 2, true
	case Down:
		return 3, true
	case A:
		return 0, false
	case B:
		return 1, false
	case Select:
		return 2, false
	case Start:
		return 3, false
	}
	return 0, true
}

// Press records that a button went down, raising the Joypad interrupt if
// the currently-selected group is observing that line.
func (j *Joypad) Press(b Button) {
	bit, isDpad := bitFor(b)
	var before uint8
	if isDpad {
		before = j.dpad
		j.dpad &^= 1 << bit
	} else {
		before = j.buttons
		j.buttons &^= 1 << bit
	}

	after := j.dpad
	if !isDpad {
		after = j.buttons
	}
	if before != after && j.groupSelected(isDpad) {
		j.ic.Request(addr.Joypad)
	}
}

// Release records that a button went up.
func (j *Joypad) Release(b Button) {
	bit, isDpad := bitFor(b)
	if isDpad {
		j.dpad |= 1 << bit
	} else {
		j.buttons |= 1 << bit
	}
}

func (j *Joypad) groupSelected(isDpad bool) bool {
	if isDpad {
		return j.select_&0x10 == 0
	}
	return j.select_&0x20 == 0
}

// Read returns the P1 register as the CPU would observe it.
func (j *Joypad) Read() uint8 {
	result := j.select_ | 0xC0 | 0x0F
	if j.select_&0x10 == 0 {
		result &= j.dpad | 0xF0
	}
	if j.select_&0x20 == 0 {
		result &= j.buttons | 0xF0
	}
	return result
}

// Write stores the group-select bits written by the CPU (bits 5:4 of P1).
func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0x30
}
