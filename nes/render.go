package nes

// Render draws the PPU state into a frame: the 960 background tiles of the
// first nametable, then the 64 sprites in reverse OAM order so lower
// indices overdraw higher ones. It is a pure function of the PPU snapshot
// it is handed; scrolling beyond the first nametable is not rendered.

// Each tile is 16 bytes: an 8-byte upper bit plane followed by an 8-byte
// lower bit plane. Pixel values combine one bit from each plane.
func tilePixel(tile []byte, x, y int) byte {
	upper := tile[y] >> (7 - x) & 1
	lower := tile[y+8] >> (7 - x) & 1
	return lower<<1 | upper
}

// backgroundPalette looks up the 4-color palette for the tile at
// (x, y) from the attribute table at the end of the nametable. Each
// attribute byte covers a 4x4 tile block, two bits per 2x2 quadrant.
func backgroundPalette(p *PPU, x, y int) [4]byte {
	attribute := p.bus.vram.read(uint16(0x3C0 + y/4*8 + x/4))
	var palette byte
	switch [2]int{x % 4 / 2, y % 4 / 2} {
	case [2]int{0, 0}:
		palette = attribute & 0b11
	case [2]int{1, 0}:
		palette = attribute >> 2 & 0b11
	case [2]int{0, 1}:
		palette = attribute >> 4 & 0b11
	case [2]int{1, 1}:
		palette = attribute >> 6 & 0b11
	}
	start := 1 + uint16(palette)*4
	return [4]byte{
		p.paletteRAM.read(0x3F00),
		p.paletteRAM.read(0x3F00 + start),
		p.paletteRAM.read(0x3F00 + start + 1),
		p.paletteRAM.read(0x3F00 + start + 2),
	}
}

// spritePalette looks up the 4-color palette for a sprite attribute.
// Value 0 is transparent, its slot is unused.
func spritePalette(p *PPU, attribute byte) [4]byte {
	start := 0x11 + uint16(attribute&3)*4
	return [4]byte{
		0,
		p.paletteRAM.read(0x3F00 + start),
		p.paletteRAM.read(0x3F00 + start + 1),
		p.paletteRAM.read(0x3F00 + start + 2),
	}
}

func renderBackground(p *PPU, f *Frame) {
	bank := p.ctrl.backgroundTableAddress()
	chr := p.bus.cartridge.chrROM
	for i := 0; i < 0x3C0; i++ {
		index := uint16(p.bus.vram.read(uint16(i)))
		x := i % 32
		y := i / 32
		tile := chr[bank+index*16 : bank+index*16+16]
		palette := backgroundPalette(p, x, y)
		for ty := 0; ty < 8; ty++ {
			for tx := 0; tx < 8; tx++ {
				value := tilePixel(tile, tx, ty)
				f.SetPixel(x*8+tx, y*8+ty, systemPalette[palette[value]])
			}
		}
	}
}

func renderSprites(p *PPU, f *Frame) {
	bank := p.ctrl.spriteTableAddress()
	chr := p.bus.cartridge.chrROM
	for i := len(p.oam) - 4; i >= 0; i -= 4 {
		y := int(p.oam[i])
		index := uint16(p.oam[i+1])
		attribute := p.oam[i+2]
		x := int(p.oam[i+3])
		flipHorizontal := attribute>>6&1 == 1
		flipVertical := attribute>>7&1 == 1
		tile := chr[bank+index*16 : bank+index*16+16]
		palette := spritePalette(p, attribute)
		for ty := 0; ty < 8; ty++ {
			for tx := 0; tx < 8; tx++ {
				value := tilePixel(tile, tx, ty)
				if value == 0 {
					continue // transparent
				}
				px, py := tx, ty
				if flipHorizontal {
					px = 7 - tx
				}
				if flipVertical {
					py = 7 - ty
				}
				f.SetPixel(x+px, y+py, systemPalette[palette[value]])
			}
		}
	}
}

// Render renders one full frame from the PPU state.
func Render(p *PPU, f *Frame) {
	renderBackground(p, f)
	renderSprites(p, f)
}

// RenderTileBank draws a whole pattern table bank as a 32-tile-wide sheet,
// for the tile viewer. Colors are a fixed debug palette.
func RenderTileBank(chr []byte, bank int, f *Frame) {
	debugPalette := [4]byte{0x01, 0x23, 0x27, 0x30}
	base := bank * 0x1000
	for index := 0; index < 256; index++ {
		tile := chr[base+index*16 : base+index*16+16]
		x := index % 32
		y := index / 32
		for ty := 0; ty < 8; ty++ {
			for tx := 0; tx < 8; tx++ {
				value := tilePixel(tile, tx, ty)
				f.SetPixel(x*8+tx, y*8+ty, systemPalette[debugPalette[value]])
			}
		}
	}
}
