package nes

// Scanline layout for NTSC: 0-239 visible, 240 post-render, 241-260 vblank,
// 261 pre-render. One scanline is 341 PPU cycles (dots), one frame is 262
// scanlines.
const (
	cyclesPerScanline  = 341
	scanlinesPerFrame  = 262
	scanlineVBlank     = 241
	visibleScreenWidth = 256
	visibleScreenHeight = 240
)

// paletteRAM is the PPU-internal 32-byte palette memory. The four sprite
// backdrop slots $3F10/$3F14/$3F18/$3F1C shadow $3F00/$3F04/$3F08/$3F0C on
// both read and write.
// https://www.nesdev.org/wiki/PPU_palettes
type paletteRAM struct {
	ram [32]byte
}

func (r *paletteRAM) mirror(address uint16) uint16 {
	index := (address - 0x3F00) % 0x20
	switch index {
	case 0x10, 0x14, 0x18, 0x1C:
		index -= 0x10
	}
	return index
}

func (r *paletteRAM) read(address uint16) byte {
	return r.ram[r.mirror(address)]
}

func (r *paletteRAM) write(address uint16, data byte) {
	r.ram[r.mirror(address)] = data
}

// PPU stands for Picture Processing Unit. This implementation advances at
// scanline granularity: the CPU hands it a cycle budget after every
// instruction and the PPU only observes the vblank entry at scanline 241 and
// the frame wrap at 262. Sub-scanline effects and odd/even frame timing are
// out of scope.
//
// References:
//   https://www.nesdev.org/wiki/PPU
//   https://www.nesdev.org/wiki/PPU_registers
type PPU struct {
	bus *PPUBus

	// oam
	oamAddress byte
	oam        [256]byte // Object Attribute Memory, 64 sprites x 4 bytes.

	ctrl    controllerRegister // $2000
	mask    maskRegister       // $2001
	status  statusRegister     // $2002
	scroll  *scrollRegister    // $2005
	address *addressRegister   // $2006

	// PPU has an internal RAM for palette data.
	paletteRAM paletteRAM

	// buffer holds the one-byte delay for PPUDATA ($2007) reads below the
	// palette region.
	buffer byte

	// cycle, scanline indicate where the beam is.
	cycle    int
	scanline int

	// nmiPending is the edge signal consumed by the CPU, at most one per
	// vblank entry.
	nmiPending bool
}

// NewPPU creates a PPU.
func NewPPU(bus *PPUBus) *PPU {
	return &PPU{
		bus:     bus,
		scroll:  &scrollRegister{},
		address: newAddressRegister(),
	}
}

func (p *PPU) Reset() {
	p.cycle = 0
	p.scanline = 0
	p.buffer = 0
	p.nmiPending = false
	p.ctrl.update(0)
	p.mask.update(0)
	p.status.update(0)
	p.scroll.resetLatch()
	p.address.resetLatch()
}

// writePPUCTRL writes PPUCTRL ($2000). Enabling NMI generation while the
// vblank flag is already set raises the pending NMI immediately.
func (p *PPU) writePPUCTRL(data byte) {
	before := p.ctrl.generateNMI()
	p.ctrl.update(data)
	if !before && p.ctrl.generateNMI() && p.status.test(statusVBlank) {
		p.nmiPending = true
	}
}

// writePPUMASK writes PPUMASK ($2001).
func (p *PPU) writePPUMASK(data byte) {
	p.mask.update(data)
}

// readPPUSTATUS reads PPUSTATUS ($2002). The returned value is the
// pre-clear snapshot; the read clears vblank and resets both the address
// and the scroll write toggles.
func (p *PPU) readPPUSTATUS() byte {
	res := p.status.snapshot()
	p.status.clear(statusVBlank)
	p.address.resetLatch()
	p.scroll.resetLatch()
	return res
}

// writeOAMADDR writes OAMADDR ($2003).
func (p *PPU) writeOAMADDR(data byte) {
	p.oamAddress = data
}

// readOAMDATA reads OAMDATA ($2004). Reads do not increment the address.
func (p *PPU) readOAMDATA() byte {
	return p.oam[p.oamAddress]
}

// writeOAMDATA writes OAMDATA ($2004).
func (p *PPU) writeOAMDATA(data byte) {
	p.oam[p.oamAddress] = data
	p.oamAddress++
}

// writeOAMDMA copies a whole 256-byte page into OAM, starting at the
// current OAM address and wrapping.
func (p *PPU) writeOAMDMA(data [256]byte) {
	for _, x := range data {
		p.oam[p.oamAddress] = x
		p.oamAddress++
	}
}

// writePPUSCROLL writes PPUSCROLL ($2005).
func (p *PPU) writePPUSCROLL(data byte) {
	p.scroll.write(data)
}

// writePPUADDR writes PPUADDR ($2006).
func (p *PPU) writePPUADDR(data byte) {
	p.address.update(data)
}

// writePPUDATA writes PPUDATA ($2007) and advances the address register by
// the PPUCTRL stride.
func (p *PPU) writePPUDATA(data byte) {
	address := p.address.get()
	p.address.increment(p.ctrl.vramIncrement())
	if address >= 0x3F00 {
		p.paletteRAM.write(address, data)
	} else {
		p.bus.write(address, data)
	}
}

// readPPUDATA reads PPUDATA ($2007). Reads below the palette go through the
// one-byte buffer: the CPU sees the previous contents and the buffer is
// refreshed from the new address. Palette reads bypass the buffer.
func (p *PPU) readPPUDATA() byte {
	address := p.address.get()
	p.address.increment(p.ctrl.vramIncrement())
	if address >= 0x3F00 {
		return p.paletteRAM.read(address)
	}
	res := p.buffer
	p.buffer = p.bus.read(address)
	return res
}

// pollNMI takes and clears the pending NMI edge.
func (p *PPU) pollNMI() bool {
	res := p.nmiPending
	p.nmiPending = false
	return res
}

// Tick advances the PPU by the given number of PPU cycles and reports
// whether the frame wrapped. Crossing into scanline 241 sets vblank and
// raises the NMI edge if enabled; the wrap at 262 clears vblank and the
// pending edge.
func (p *PPU) Tick(cycles int) bool {
	frame := false
	p.cycle += cycles
	for p.cycle >= cyclesPerScanline {
		p.cycle -= cyclesPerScanline
		p.scanline++
		if p.scanline == scanlineVBlank {
			p.status.set(statusVBlank)
			p.status.clear(statusSpriteZeroHit)
			if p.ctrl.generateNMI() {
				p.nmiPending = true
			}
		}
		if p.scanline == scanlinesPerFrame {
			p.scanline = 0
			p.status.clear(statusVBlank)
			p.status.clear(statusSpriteZeroHit)
			p.nmiPending = false
			frame = true
		}
	}
	return frame
}
