package memory

import "testing"

func TestMBC3_ROMBankSwitching(t *testing.T) {
	rom := make([]uint8, 8*0x4000)
	for i := range rom {
		rom[i] = uint8(i / 0x4000)
	}
	mbc := NewMBC3(rom, 4, false, false)

	mbc.Write(0x2000, 3)
	if got := mbc.Read(0x4000); got != 3 {
		t.Errorf("Read(0x4000) after selecting bank 3 = %d; want 3", got)
	}

	mbc.Write(0x2000, 0)
	if got := mbc.Read(0x4000); got != 1 {
		t.Errorf("bank 0 must coerce to bank 1, got %d", got)
	}
}

func TestMBC3_RAMBanking(t *testing.T) {
	mbc := NewMBC3(make([]uint8, 0x8000), 4, false, false)

	mbc.Write(0x0000, 0x0A) // enable RAM
	mbc.Write(0x4000, 0x02) // select RAM bank 2
	mbc.Write(0xA000, 0x77)

	if got := mbc.Read(0xA000); got != 0x77 {
		t.Errorf("Read(0xA000) = 0x%02X; want 0x77", got)
	}

	mbc.Write(0x4000, 0x00)
	if got := mbc.Read(0xA000); got == 0x77 {
		t.Errorf("bank 0 must not alias bank 2's value")
	}
}

func TestMBC3_RTCLatchSequence(t *testing.T) {
	mbc := NewMBC3(make([]uint8, 0x8000), 0, true, true)
	mbc.Write(0x0000, 0x0A)

	mbc.rtc.seconds = 42
	mbc.Write(0x6000, 0x00)
	mbc.Write(0x6000, 0x01) // latch

	mbc.Write(0x4000, 0x08) // select seconds register
	if got := mbc.Read(0xA000); got != 42 {
		t.Errorf("latched seconds = %d; want 42", got)
	}

	mbc.rtc.seconds = 99 // live register changes after latch must not be visible
	if got := mbc.Read(0xA000); got != 42 {
		t.Errorf("read after latch should see the snapshot, got %d", got)
	}
}
