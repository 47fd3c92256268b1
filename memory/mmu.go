// Package memory implements the Game Boy's 64KB address space: cartridge
// decoding through an MBC, work/high RAM, echo mirroring, and I/O register
// routing to the PPU, APU, timer, interrupt controller and joypad.
// Grounded on the teacher repo's jeebie/memory/mem.go region-dispatch table.
package memory

import (
	"log/slog"

	"github.com/haliberd/gbcore/addr"
	"github.com/haliberd/gbcore/input"
)

// PPU is the subset of video.PPU the MMU needs to route memory accesses.
type PPU interface {
	ReadVRAM(offset uint16) uint8
	WriteVRAM(offset uint16, v uint8)
	ReadOAM(offset uint16) uint8
	WriteOAM(offset uint16, v uint8)
	ReadReg(address uint16) uint8
	WriteReg(address uint16, value uint8)
}

// APU is the subset of audio.APU the MMU needs.
type APU interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// Timer is the subset of timer.Timer the MMU needs.
type Timer interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptController is the subset of interrupt.Controller the MMU needs.
type InterruptController interface {
	ReadIF() uint8
	WriteIF(value uint8)
	ReadIE() uint8
	WriteIE(value uint8)
}

// SerialPort receives bytes shifted out over the (unemulated) link cable;
// this core only ever wires a logging sink to it.
type SerialPort interface {
	Write(b byte)
}

// LogSink is a SerialPort that logs each transferred byte at debug level,
// grounded on jeebie/serial/logsink.go.
type LogSink struct{}

func (LogSink) Write(b byte) {
	slog.Debug("serial byte shifted out", "value", b, "char", string(rune(b)))
}

// MMU implements the full 64KB address space.
type MMU struct {
	mbc MBC

	wram [0x2000]byte
	hram [0x7F]byte

	ppu    PPU
	apu    APU
	timer  Timer
	ic     InterruptController
	joypad *input.Joypad
	serial SerialPort

	sb byte
}

// New returns an MMU with no cartridge loaded; Load must be called before
// the CPU can fetch anything meaningful from ROM space.
func New(ppu PPU, apu APU, tm Timer, ic InterruptController, joypad *input.Joypad) *MMU {
	return &MMU{ppu: ppu, apu: apu, timer: tm, ic: ic, joypad: joypad, serial: LogSink{}}
}

// Load installs a cartridge's MBC as the ROM/external-RAM backing store.
func (m *MMU) Load(mbc MBC) {
	m.mbc = mbc
}

// Read returns the byte at the given absolute address.
func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		return m.mbc.Read(address)
	case address < 0xA000:
		return m.ppu.ReadVRAM(address - 0x8000)
	case address < 0xC000:
		return m.mbc.Read(address)
	case address < 0xE000:
		return m.wram[address-0xC000]
	case address < 0xFE00:
		return m.wram[address-0xE000]
	case address <= addr.OAMEnd:
		return m.ppu.ReadOAM(address - addr.OAMStart)
	case address < 0xFF00:
		return 0xFF
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB:
		return m.sb
	case address == addr.SC:
		return 0x7E
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		return m.ic.ReadIF()
	case address >= addr.NR10 && address <= addr.WaveRAMEnd:
		return m.apu.ReadRegister(address)
	case address >= addr.LCDC && address <= addr.WX:
		return m.ppu.ReadReg(address)
	case address < 0xFF80:
		return 0xFF
	case address < 0xFFFF:
		return m.hram[address-0xFF80]
	case address == addr.IE:
		return m.ic.ReadIE()
	default:
		return 0xFF
	}
}

// Write stores a byte at the given absolute address.
func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		m.mbc.Write(address, value)
	case address < 0xA000:
		m.ppu.WriteVRAM(address-0x8000, value)
	case address < 0xC000:
		m.mbc.Write(address, value)
	case address < 0xE000:
		m.wram[address-0xC000] = value
	case address < 0xFE00:
		m.wram[address-0xE000] = value
	case address <= addr.OAMEnd:
		m.ppu.WriteOAM(address-addr.OAMStart, value)
	case address < 0xFF00:
		// unusable region, writes ignored
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB:
		m.sb = value
	case address == addr.SC:
		if value&0x81 == 0x81 && m.serial != nil {
			m.serial.Write(m.sb)
		}
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.ic.WriteIF(value)
	case address == addr.DMA:
		m.doDMA(value)
	case address >= addr.NR10 && address <= addr.WaveRAMEnd:
		m.apu.WriteRegister(address, value)
	case address >= addr.LCDC && address <= addr.WX:
		m.ppu.WriteReg(address, value)
	case address < 0xFF80:
		// unmapped I/O, writes ignored
	case address < 0xFFFF:
		m.hram[address-0xFF80] = value
	case address == addr.IE:
		m.ic.WriteIE(value)
	}
}

func (m *MMU) doDMA(srcHigh uint8) {
	base := uint16(srcHigh) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.ppu.WriteOAM(i, m.Read(base+i))
	}
}

// Read16 reads a little-endian 16-bit value.
func (m *MMU) Read16(address uint16) uint16 {
	return uint16(m.Read(address)) | uint16(m.Read(address+1))<<8
}

// Write16 writes a little-endian 16-bit value.
func (m *MMU) Write16(address uint16, value uint16) {
	m.Write(address, uint8(value&0xFF))
	m.Write(address+1, uint8(value>>8))
}
