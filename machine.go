// Package gbcore is a Game Boy (DMG) emulator core: CPU, PPU, APU, timer,
// interrupt controller and cartridge MBC wired into a single-threaded
// Machine that runs one frame at a time. Grounded on the teacher repo's
// jeebie/core.go orchestrator loop and jeebie/bus.go wiring.
package gbcore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/haliberd/gbcore/audio"
	"github.com/haliberd/gbcore/cpu"
	"github.com/haliberd/gbcore/input"
	"github.com/haliberd/gbcore/interrupt"
	"github.com/haliberd/gbcore/memory"
	"github.com/haliberd/gbcore/timer"
	"github.com/haliberd/gbcore/video"
)

// CyclesPerFrame is the number of CPU T-cycles in one 59.7Hz video frame
// (154 scanlines x 456 cycles).
const CyclesPerFrame = 70224

// Machine is the full emulator core: one cartridge, one CPU, one PPU, one
// APU, wired through a single MMU.
type Machine struct {
	cpu   *cpu.CPU
	mmu   *memory.MMU
	ppu   *video.PPU
	apu   *audio.APU
	timer *timer.Timer
	ic    *interrupt.Controller
	pad   *input.Joypad

	cart *memory.Cartridge
	mbc  memory.MBC

	romPath     string
	frameCycles int
	frameCount  int
}

// bus adapts *memory.MMU to the cpu.Bus interface; both already have
// matching Read/Write signatures; this exists only to document the seam.
type bus struct{ *memory.MMU }

// New constructs a Machine with no cartridge loaded and a zero-filled
// 32KB ROM-only image in ROM space. Use NewFromFile to build a Machine
// around a real cartridge.
func New(sampleRate int) *Machine {
	m := &Machine{}
	m.ic = interrupt.New()
	m.ppu = video.New(m.ic)
	m.apu = audio.New(sampleRate)
	m.timer = timer.New(m.ic)
	m.pad = input.New(m.ic)
	m.mmu = memory.New(m.ppu, m.apu, m.timer, m.ic, m.pad)
	m.mbc = memory.NewNoMBC(make([]byte, 0x8000))
	m.mmu.Load(m.mbc)
	m.cpu = cpu.New(bus{m.mmu}, m.ic)
	return m
}

// NewFromFile loads a ROM image from disk and constructs a Machine around
// it, loading a battery save from <path without .gb/.gbc>.sav if present.
func NewFromFile(path string, sampleRate int) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	m := New(sampleRate)
	m.romPath = path

	cart, err := memory.NewCartridge(data)
	if err != nil {
		return nil, fmt.Errorf("parsing cartridge header: %w", err)
	}
	m.cart = cart

	saved := m.loadSave()
	m.mbc = cart.NewMBC(saved)
	m.mmu.Load(m.mbc)

	slog.Info("rom loaded", "title", cart.Title(), "mbc", cart.CartridgeType().String(), "rom_banks", cart.ROMBanks())
	return m, nil
}

func (m *Machine) savePath() string {
	switch ext := filepath.Ext(m.romPath); ext {
	case ".gb", ".gbc":
		return strings.TrimSuffix(m.romPath, ext) + ".sav"
	}
	return m.romPath + ".sav"
}

func (m *Machine) loadSave() []byte {
	if m.romPath == "" {
		return nil
	}
	data, err := os.ReadFile(m.savePath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read save file, starting without one", "error", err)
		}
		return nil
	}
	return data
}

// Close flushes battery-backed external RAM to disk, if any.
func (m *Machine) Close() error {
	if m.mbc == nil || m.romPath == "" {
		return nil
	}
	ram := m.mbc.ExternalRAM()
	if ram == nil {
		return nil
	}
	if err := os.WriteFile(m.savePath(), ram, 0o644); err != nil {
		return fmt.Errorf("writing save file: %w", err)
	}
	return nil
}

// RunFrame advances the machine by exactly one video frame (70224 cycles),
// matching the orchestrator loop: step the CPU, tick PPU/timer/APU by the
// instruction's cycle cost, then accumulate until a frame boundary.
func (m *Machine) RunFrame() {
	for m.frameCycles < CyclesPerFrame {
		cycles := m.cpu.Step()
		m.ppu.Tick(cycles)
		m.timer.Tick(cycles)
		m.apu.Tick(cycles)
		m.frameCycles += cycles
	}
	m.frameCycles -= CyclesPerFrame
	m.frameCount++
}

// Framebuffer returns the most recently rendered frame's 2-bit color
// index buffer.
func (m *Machine) Framebuffer() *video.FrameBuffer { return m.ppu.Framebuffer() }

// Samples returns and clears the accumulated stereo PCM audio buffer.
func (m *Machine) Samples() []float32 { return m.apu.GetSamples() }

// PressButton and ReleaseButton forward host input to the joypad.
func (m *Machine) PressButton(b input.Button)   { m.pad.Press(b) }
func (m *Machine) ReleaseButton(b input.Button) { m.pad.Release(b) }

// FrameCount returns the number of frames rendered so far.
func (m *Machine) FrameCount() int { return m.frameCount }

// CPU exposes the CPU for debug tooling and tests.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Cartridge returns the loaded cartridge's header info, or nil if none has
// been loaded via NewFromFile.
func (m *Machine) Cartridge() *memory.Cartridge { return m.cart }
