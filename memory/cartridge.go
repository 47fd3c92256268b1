package memory

import (
	"fmt"
	"log/slog"
)

// MBCKind identifies which banking controller family a cartridge uses.
type MBCKind int

const (
	KindNoMBC MBCKind = iota
	KindMBC1
	KindMBC2
	KindMBC3
	KindMBC5
)

func (k MBCKind) String() string {
	switch k {
	case KindNoMBC:
		return "ROM ONLY"
	case KindMBC1:
		return "MBC1"
	case KindMBC2:
		return "MBC2"
	case KindMBC3:
		return "MBC3"
	case KindMBC5:
		return "MBC5"
	default:
		return "UNKNOWN"
	}
}

// Cartridge wraps the raw ROM image and the header fields needed to
// construct the right MBC.
type Cartridge struct {
	data []byte

	title       string
	kind        MBCKind
	hasBattery  bool
	hasRTC      bool
	romBanks    int
	ramBankSize int
	ramBanks    int
}

// NewCartridge parses a raw ROM image's header. Unsupported cartridge type
// bytes degrade to ROM-only with a logged warning rather than failing,
// matching the error-handling contract for "unsupported cartridge type".
func NewCartridge(data []byte) (*Cartridge, error) {
	if len(data) < 0x150 {
		return nil, fmt.Errorf("rom too short: got %d bytes, need at least 0x150", len(data))
	}

	c := &Cartridge{
		data:     data,
		title:    cleanTitle(data[0x134:0x144]),
		romBanks: romBanksFromHeader(data[0x148]),
	}
	c.ramBanks, c.ramBankSize = ramBanksFromHeader(data[0x149])

	typeByte := data[0x147]
	switch typeByte {
	case 0x00:
		c.kind = KindNoMBC
	case 0x01, 0x02:
		c.kind = KindMBC1
	case 0x03:
		c.kind = KindMBC1
		c.hasBattery = true
	case 0x05:
		c.kind = KindMBC2
	case 0x06:
		c.kind = KindMBC2
		c.hasBattery = true
	case 0x0F, 0x10:
		c.kind = KindMBC3
		c.hasBattery = true
		c.hasRTC = true
	case 0x11, 0x12:
		c.kind = KindMBC3
	case 0x13:
		c.kind = KindMBC3
		c.hasBattery = true
	case 0x19, 0x1A, 0x1C, 0x1D:
		c.kind = KindMBC5
	case 0x1B, 0x1E:
		c.kind = KindMBC5
		c.hasBattery = true
	default:
		slog.Warn("unsupported cartridge type, falling back to ROM-only", "type", fmt.Sprintf("0x%02X", typeByte))
		c.kind = KindNoMBC
	}

	if c.kind == KindMBC2 {
		// MBC2 has a fixed 512x4-bit internal RAM, modeled as a single
		// 512 byte bank regardless of the header's RAM-size byte.
		c.ramBanks = 1
		c.ramBankSize = 512
	}

	return c, nil
}

func romBanksFromHeader(b byte) int {
	if b > 0x08 {
		return 2
	}
	return 2 << b
}

func ramBanksFromHeader(b byte) (banks int, bankSize int) {
	switch b {
	case 0x00:
		return 0, 0
	case 0x01:
		return 1, 2 * 1024
	case 0x02:
		return 1, 8 * 1024
	case 0x03:
		return 4, 8 * 1024
	case 0x04:
		return 16, 8 * 1024
	case 0x05:
		return 8, 8 * 1024
	default:
		return 0, 0
	}
}

// Title returns the cleaned-up cartridge title from the ROM header.
func (c *Cartridge) Title() string { return c.title }

// CartridgeType returns the MBC family this cartridge declares.
func (c *Cartridge) CartridgeType() MBCKind { return c.kind }

// ROMBanks returns the number of 16KB ROM banks in the image.
func (c *Cartridge) ROMBanks() int { return c.romBanks }

// RAMSize returns the total external RAM size in bytes.
func (c *Cartridge) RAMSize() int { return c.ramBanks * c.ramBankSize }

// HasBattery reports whether the cartridge's external RAM should be
// persisted across runs.
func (c *Cartridge) HasBattery() bool { return c.hasBattery }

// NewMBC constructs the MBC implementation matching this cartridge's
// header, loading savedRAM (if non-nil and correctly sized) as the
// initial external RAM contents.
func (c *Cartridge) NewMBC(savedRAM []byte) MBC {
	switch c.kind {
	case KindMBC1:
		m := NewMBC1(c.data, c.hasBattery, c.ramBanks)
		m.loadRAM(savedRAM)
		return m
	case KindMBC2:
		m := NewMBC2(c.data, c.hasBattery)
		m.loadRAM(savedRAM)
		return m
	case KindMBC3:
		m := NewMBC3(c.data, c.ramBanks, c.hasBattery, c.hasRTC)
		m.loadRAM(savedRAM)
		return m
	case KindMBC5:
		m := NewMBC5(c.data, c.ramBanks, c.hasBattery)
		m.loadRAM(savedRAM)
		return m
	default:
		return NewNoMBC(c.data)
	}
}
