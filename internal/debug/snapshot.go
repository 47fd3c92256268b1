// Package debug decodes tile data and OAM entries from anything that
// exposes VRAM/OAM reads (such as video.PPU), grounded on the teacher
// repo's jeebie/debug/oam.go and vram.go dumps. No other package in this
// module imports it.
package debug

// VRAMReader is the subset of video.PPU needed to dump tile data.
type VRAMReader interface {
	ReadVRAM(offset uint16) uint8
	ReadOAM(offset uint16) uint8
}

// Tile is an 8x8 tile decoded into 2-bit color indices.
type Tile [8][8]uint8

// DecodeTile reads the tile at the given VRAM tile index (0-383, each
// tile occupies 16 bytes of tile data).
func DecodeTile(v VRAMReader, tileIndex int) Tile {
	var t Tile
	base := uint16(tileIndex * 16)
	for row := 0; row < 8; row++ {
		lo := v.ReadVRAM(base + uint16(row)*2)
		hi := v.ReadVRAM(base + uint16(row)*2 + 1)
		for col := 0; col < 8; col++ {
			bit := 7 - col
			low := (lo >> bit) & 1
			high := (hi >> bit) & 1
			t[row][col] = (high << 1) | low
		}
	}
	return t
}

// Sprite is one decoded OAM entry.
type Sprite struct {
	Y, X, Tile, Flags uint8
	Index             int
}

// DumpOAM decodes all 40 OAM entries.
func DumpOAM(v VRAMReader) [40]Sprite {
	var out [40]Sprite
	for i := 0; i < 40; i++ {
		base := uint16(i * 4)
		out[i] = Sprite{
			Y:     v.ReadOAM(base),
			X:     v.ReadOAM(base + 1),
			Tile:  v.ReadOAM(base + 2),
			Flags: v.ReadOAM(base + 3),
			Index: i,
		}
	}
	return out
}
