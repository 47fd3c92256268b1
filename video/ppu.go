// Package video implements the Game Boy's PPU: the scanline mode machine,
// background/window/sprite rendering, and the LCDC/STAT/LY register
// family. Grounded on the teacher repo's jeebie/video/gpu.go.
package video

import "github.com/haliberd/gbcore/addr"

// Mode is the PPU's current scanline phase, matching STAT bits 1:0.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeDraw   Mode = 3
)

const (
	oamCycles  = 80
	drawCycles = 172
	hblankCycles = 204
	lineCycles = oamCycles + drawCycles + hblankCycles // 456
	vblankLines  = 10
	totalLines   = 144 + vblankLines
)

// InterruptRequester is satisfied by the interrupt controller.
type InterruptRequester interface {
	Request(i addr.Interrupt)
}

type spriteAttr struct {
	y, x, tile, flags uint8
}

// PPU holds all rendering state: VRAM, OAM, the register file, and the
// framebuffer produced by the rendering algorithms.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat, scy, scx, ly, lyc, bgp, obp0, obp1, wy, wx uint8

	mode        Mode
	cycles      int
	windowLine  int

	framebuffer  FrameBuffer
	bgColorIndex [Width * Height]uint8
	priority     spritePriority

	ic InterruptRequester
}

// New returns a PPU powered on in the V-blank state at line 144, matching
// the teacher's boot-time GPU state (the boot ROM leaves the LCD already
// mid-V-blank by the time the cartridge's own code takes over).
func New(ic InterruptRequester) *PPU {
	p := &PPU{ic: ic, ly: 144, mode: ModeVBlank}
	return p
}

// ReadVRAM/WriteVRAM are addressed relative to 0x8000.
func (p *PPU) ReadVRAM(offset uint16) uint8  { return p.vram[offset] }
func (p *PPU) WriteVRAM(offset uint16, v uint8) { p.vram[offset] = v }

// ReadOAM/WriteOAM are addressed relative to 0xFE00.
func (p *PPU) ReadOAM(offset uint16) uint8 { return p.oam[offset] }
func (p *PPU) WriteOAM(offset uint16, v uint8) { p.oam[offset] = v }

// ReadReg/WriteReg handle the LCDC..WX register block (addr.LCDC..addr.WX).
func (p *PPU) ReadReg(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteReg(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		wasEnabled := p.lcdc&0x80 != 0
		p.lcdc = value
		if wasEnabled && value&0x80 == 0 {
			p.ly = 0
			p.cycles = 0
			p.mode = ModeHBlank
		}
	case addr.STAT:
		p.stat = (p.stat & 0x07) | (value &^ 0x07)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only on hardware
	case addr.LYC:
		p.lyc = value
		p.compareLYC()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

func (p *PPU) enabled() bool { return p.lcdc&0x80 != 0 }

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.stat = (p.stat &^ 0x03) | uint8(m)

	var statBit uint8
	switch m {
	case ModeHBlank:
		statBit = 0x08
	case ModeVBlank:
		statBit = 0x10
	case ModeOAM:
		statBit = 0x20
	default:
		return
	}
	if p.stat&statBit != 0 {
		p.ic.Request(addr.LCDStat)
	}
}

func (p *PPU) compareLYC() {
	if p.ly == p.lyc {
		p.stat |= 0x04
		if p.stat&0x40 != 0 {
			p.ic.Request(addr.LCDStat)
		}
	} else {
		p.stat &^= 0x04
	}
}

// Tick advances the PPU by the given number of CPU cycles, firing
// interrupts and rendering scanlines as mode/LY boundaries are crossed.
func (p *PPU) Tick(cycles int) {
	if !p.enabled() {
		return
	}

	p.cycles += cycles
	for p.cycles >= lineCycles {
		p.cycles -= lineCycles
		p.advanceLine()
	}

	p.updateModeWithinLine()
}

func (p *PPU) updateModeWithinLine() {
	if p.ly >= 144 {
		if p.mode != ModeVBlank {
			p.setMode(ModeVBlank)
		}
		return
	}

	switch {
	case p.cycles < oamCycles:
		if p.mode != ModeOAM {
			p.setMode(ModeOAM)
		}
	case p.cycles < oamCycles+drawCycles:
		if p.mode != ModeDraw {
			p.mode = ModeDraw
			p.stat = (p.stat &^ 0x03) | uint8(ModeDraw)
			p.drawScanline()
		}
	default:
		if p.mode != ModeHBlank {
			p.setMode(ModeHBlank)
		}
	}
}

func (p *PPU) advanceLine() {
	p.ly++
	if p.ly == 144 {
		p.setMode(ModeVBlank)
		p.ic.Request(addr.VBlank)
		p.windowLine = 0
	}
	if p.ly >= totalLines {
		p.ly = 0
	}
	p.compareLYC()
}

// Framebuffer returns the most recently rendered frame.
func (p *PPU) Framebuffer() *FrameBuffer { return &p.framebuffer }

func (p *PPU) drawScanline() {
	y := int(p.ly)
	p.drawBackground(y)
	if p.lcdc&0x20 != 0 {
		p.drawWindow(y)
	}
	if p.lcdc&0x02 != 0 {
		p.drawSprites(y)
	}
}

func (p *PPU) tileDataBase() (base uint16, signed bool) {
	if p.lcdc&0x10 != 0 {
		return 0x8000, false
	}
	return 0x9000, true
}

func (p *PPU) tilePixel(tileIndex uint8, signed bool, base uint16, px, py int) uint8 {
	var addr16 uint16
	if signed {
		addr16 = uint16(int(base) + int(int8(tileIndex))*16)
	} else {
		addr16 = base + uint16(tileIndex)*16
	}
	addr16 += uint16(py) * 2
	lowByte := p.vram[addr16-0x8000]
	highByte := p.vram[addr16-0x8000+1]
	bit := 7 - px
	low := (lowByte >> bit) & 1
	high := (highByte >> bit) & 1
	return (high << 1) | low
}

func applyPalette(palette uint8, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}

func (p *PPU) drawBackground(y int) {
	if p.lcdc&0x01 == 0 {
		for x := 0; x < Width; x++ {
			p.bgColorIndex[y*Width+x] = 0
			p.framebuffer.SetPixel(x, y, applyPalette(p.bgp, 0))
		}
		return
	}

	mapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}
	tileBase, signed := p.tileDataBase()

	bgY := (y + int(p.scy)) & 0xFF
	tileRow := bgY / 8
	py := bgY % 8

	for x := 0; x < Width; x++ {
		bgX := (x + int(p.scx)) & 0xFF
		tileCol := bgX / 8
		px := bgX % 8

		mapOffset := mapBase - 0x8000 + uint16(tileRow*32+tileCol)
		tileIndex := p.vram[mapOffset]

		colorIndex := p.tilePixel(tileIndex, signed, tileBase, px, py)
		p.bgColorIndex[y*Width+x] = colorIndex
		p.framebuffer.SetPixel(x, y, applyPalette(p.bgp, colorIndex))
	}
}

func (p *PPU) drawWindow(y int) {
	if y < int(p.wy) {
		return
	}
	wx := int(p.wx) - 7
	if wx >= Width {
		return
	}

	mapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		mapBase = 0x9C00
	}
	tileBase, signed := p.tileDataBase()

	tileRow := p.windowLine / 8
	py := p.windowLine % 8
	drew := false

	for x := 0; x < Width; x++ {
		screenX := x
		winX := screenX - wx
		if winX < 0 {
			continue
		}
		drew = true
		tileCol := winX / 8
		px := winX % 8

		mapOffset := mapBase - 0x8000 + uint16(tileRow*32+tileCol)
		tileIndex := p.vram[mapOffset]

		colorIndex := p.tilePixel(tileIndex, signed, tileBase, px, py)
		p.bgColorIndex[y*Width+x] = colorIndex
		p.framebuffer.SetPixel(x, y, applyPalette(p.bgp, colorIndex))
	}

	if drew {
		p.windowLine++
	}
}

func (p *PPU) drawSprites(y int) {
	tall := p.lcdc&0x04 != 0
	height := 8
	if tall {
		height = 16
	}

	p.priority.clear()

	type visible struct {
		attr  spriteAttr
		index int
	}
	var onLine []visible

	for i := 0; i < 40 && len(onLine) < 10; i++ {
		a := spriteAttr{
			y:     p.oam[i*4],
			x:     p.oam[i*4+1],
			tile:  p.oam[i*4+2],
			flags: p.oam[i*4+3],
		}
		spriteY := int(a.y) - 16
		if y >= spriteY && y < spriteY+height {
			onLine = append(onLine, visible{attr: a, index: i})
		}
	}

	for _, v := range onLine {
		a := v.attr
		spriteY := int(a.y) - 16
		spriteX := int(a.x) - 8

		line := y - spriteY
		if a.flags&0x40 != 0 {
			line = height - 1 - line
		}

		tileIndex := a.tile
		if tall {
			tileIndex &^= 0x01
			if line >= 8 {
				tileIndex |= 0x01
				line -= 8
			}
		}

		for px := 0; px < 8; px++ {
			screenX := spriteX + px
			if screenX < 0 || screenX >= Width {
				continue
			}

			col := px
			if a.flags&0x20 != 0 {
				col = 7 - px
			}

			colorIndex := p.tilePixel(tileIndex, false, 0x8000, col, line)
			if colorIndex == 0 {
				continue
			}

			if !p.priority.tryClaim(screenX, spriteX, v.index) {
				continue
			}

			if a.flags&0x80 != 0 && p.bgColorIndex[y*Width+screenX] != 0 {
				continue
			}

			palette := p.obp0
			if a.flags&0x10 != 0 {
				palette = p.obp1
			}
			p.framebuffer.SetPixel(screenX, y, applyPalette(palette, colorIndex))
		}
	}
}
