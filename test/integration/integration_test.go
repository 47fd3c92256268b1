// Package integration exercises the full Machine wiring end to end with a
// synthetic ROM instead of a real cartridge image, so it runs without any
// external test-rom fixtures. Grounded on the teacher repo's
// test/integration style of booting a real core instance and driving it
// for several frames.
package integration

import (
	"os"
	"testing"

	gbcore "github.com/haliberd/gbcore"
	"github.com/haliberd/gbcore/input"
)

// syntheticROM returns a minimal 32KB ROM-only image with a valid header
// checksum region left at zero (NewCartridge does not validate the
// checksum) and an infinite loop at the entry point so the CPU never runs
// off the end of defined memory.
func syntheticROM() []byte {
	rom := make([]byte, 0x8000)
	// JP 0x0150 at the entry point (0x0100), then an infinite JR -2 loop.
	rom[0x0100] = 0xC3
	rom[0x0101] = 0x50
	rom[0x0102] = 0x01
	rom[0x0150] = 0x18 // JR -2
	rom[0x0151] = 0xFE
	copy(rom[0x0134:0x0144], []byte("INTEGRATION"))
	rom[0x0147] = 0x00 // ROM only
	rom[0x0148] = 0x00 // 32KB
	rom[0x0149] = 0x00 // no RAM
	return rom
}

func writeTempROM(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/synthetic.gb"
	if err := os.WriteFile(path, syntheticROM(), 0o644); err != nil {
		t.Fatalf("writing synthetic ROM: %v", err)
	}
	return path
}

func TestMachine_RunsASyntheticRomForSeveralFrames(t *testing.T) {
	path := writeTempROM(t)

	m, err := gbcore.NewFromFile(path, 0)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	defer m.Close()

	for i := 0; i < 10; i++ {
		m.RunFrame()
	}

	if m.FrameCount() != 10 {
		t.Fatalf("FrameCount() = %d; want 10", m.FrameCount())
	}
	if m.Cartridge().Title() != "INTEGRATION" {
		t.Fatalf("Cartridge().Title() = %q; want %q", m.Cartridge().Title(), "INTEGRATION")
	}
}

func TestMachine_ButtonPressDuringARunningFrameDoesNotPanic(t *testing.T) {
	path := writeTempROM(t)

	m, err := gbcore.NewFromFile(path, 0)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	defer m.Close()

	m.PressButton(input.Start)
	m.RunFrame()
	m.ReleaseButton(input.Start)
	m.RunFrame()
}
