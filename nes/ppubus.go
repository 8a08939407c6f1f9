package nes

import "github.com/golang/glog"

// PPUBus decodes the PPU's own 16KiB address space below the palette:
// pattern tables from Character ROM and the 2KiB nametable VRAM with the
// cartridge-controlled mirroring.
type PPUBus struct {
	vram      *RAM
	cartridge *Cartridge
}

// NewPPUBus creates a new Bus for the PPU.
func NewPPUBus(vram *RAM, cartridge *Cartridge) *PPUBus {
	return &PPUBus{vram, cartridge}
}

// mirrorAddress maps a nametable address down to an index into the 2KiB
// VRAM. 0x3000-0x3EFF mirrors 0x2000-0x2EFF first, then the cartridge
// arrangement folds the four logical tables onto the two physical ones.
//
// Horizontal:        Vertical:
//   [ A ] [ a ]        [ A ] [ B ]
//   [ B ] [ b ]        [ a ] [ b ]
func (b *PPUBus) mirrorAddress(address uint16) uint16 {
	index := (address & 0x2FFF) - 0x2000
	nametable := index / 0x400
	switch b.cartridge.mirroring {
	case MirrorVertical:
		if nametable == 2 || nametable == 3 {
			index -= 0x800
		}
	case MirrorHorizontal:
		switch nametable {
		case 1, 2:
			index -= 0x400
		case 3:
			index -= 0x800
		}
	}
	return index
}

// read reads data.
// Address        Size	  Description
// -------------------------------------
// $0000-$0FFF	  $1000	  Pattern table 0
// $1000-$1FFF	  $1000	  Pattern table 1
// $2000-$23FF	  $0400	  Nametable 0
// $2400-$27FF	  $0400	  Nametable 1
// $2800-$2BFF	  $0400	  Nametable 2
// $2C00-$2FFF	  $0400	  Nametable 3
// $3000-$3EFF	  $0F00	  Mirrors of $2000-$2EFF
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
func (b *PPUBus) read(address uint16) byte {
	switch {
	case address < 0x2000:
		return b.cartridge.mapper.ReadFromPPU(address)
	case address < 0x3F00:
		return b.vram.read(b.mirrorAddress(address))
	default:
		glog.Fatalf("Unknown PPU bus read: 0x%04x\n", address)
	}
	return 0
}

// write writes data. The pattern table region is Character ROM, writing
// there is a core bug.
func (b *PPUBus) write(address uint16, data byte) {
	switch {
	case address < 0x2000:
		glog.Fatalf("Writing data to CHR ROM not allowed: address=0x%04x, data=0x%02x\n", address, data)
	case address < 0x3F00:
		b.vram.write(b.mirrorAddress(address), data)
	default:
		glog.Fatalf("Unknown PPU bus write: address=0x%04x, data=0x%02x\n", address, data)
	}
}
