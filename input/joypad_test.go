package input

import (
	"testing"

	"github.com/haliberd/gbcore/addr"
)

type fakeIC struct {
	requested []addr.Interrupt
}

func (f *fakeIC) Request(i addr.Interrupt) { f.requested = append(f.requested, i) }

func TestJoypad_NoButtonsPressedReadsAllOnes(t *testing.T) {
	ic := &fakeIC{}
	j := New(ic)
	j.Write(0x30) // select neither group

	if got := j.Read(); got&0x0F != 0x0F {
		t.Fatalf("Read() low nibble = 0x%X; want 0xF", got&0x0F)
	}
}

func TestJoypad_DpadSelectReflectsPressedButton(t *testing.T) {
	ic := &fakeIC{}
	j := New(ic)
	j.Press(Down)
	j.Write(0x20) // select dpad (bit 4 = 0)

	got := j.Read()
	if got&0x08 != 0 {
		t.Fatalf("Down bit should read 0 (pressed) in Read() = 0x%02X", got)
	}
	if got&0x04 == 0 {
		t.Fatalf("Up bit should still read 1 (released) in Read() = 0x%02X", got)
	}
}

func TestJoypad_TransitionRaisesInterruptOnlyWhenGroupSelected(t *testing.T) {
	ic := &fakeIC{}
	j := New(ic)
	j.Write(0x10) // select buttons group only

	j.Press(Down) // dpad, not selected: no interrupt
	if len(ic.requested) != 0 {
		t.Fatalf("unselected group transition must not raise an interrupt")
	}

	j.Press(A) // buttons, selected: interrupt
	if len(ic.requested) != 1 {
		t.Fatalf("expected one Joypad interrupt, got %d", len(ic.requested))
	}
}

func TestJoypad_ReleaseClearsPressedBit(t *testing.T) {
	ic := &fakeIC{}
	j := New(ic)
	j.Press(A)
	j.Release(A)
	j.Write(0x10)

	if got := j.Read(); got&0x01 == 0 {
		t.Fatalf("A should read released (1) after Release, got 0x%02X", got)
	}
}
