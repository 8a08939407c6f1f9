package nes

type RAM struct {
	data [2048]byte
}

// NewRAM creates a 2KiB RAM unit, shared design for CPU WRAM and PPU VRAM.
func NewRAM() *RAM {
	return &RAM{}
}

// read reads data
func (r *RAM) read(address uint16) byte {
	return r.data[address]
}

// write writes data
func (r *RAM) write(address uint16, x byte) {
	r.data[address] = x
}
