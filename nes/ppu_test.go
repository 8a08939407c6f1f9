package nes

import "testing"

func newTestPPU() *PPU {
	return NewPPU(NewPPUBus(NewRAM(), testCartridge()))
}

func newTestPPUWithMirroring(m Mirroring) *PPU {
	c := testCartridge()
	c.mirroring = m
	return NewPPU(NewPPUBus(NewRAM(), c))
}

// setAddress feeds a full 14-bit address through the $2006 latch.
func setAddress(p *PPU, address uint16) {
	p.writePPUADDR(byte(address >> 8))
	p.writePPUADDR(byte(address))
}

func TestBufferedRead(t *testing.T) {
	p := newTestPPU()
	p.bus.vram.write(0, 0x11)
	p.bus.vram.write(1, 0x22)
	setAddress(p, 0x2000)
	if got := p.readPPUDATA(); got != 0x00 {
		t.Errorf("first read: got=0x%02x, want=0x00 (stale buffer)", got)
	}
	if got := p.readPPUDATA(); got != 0x11 {
		t.Errorf("second read: got=0x%02x, want=0x11", got)
	}
	if got := p.readPPUDATA(); got != 0x22 {
		t.Errorf("third read: got=0x%02x, want=0x22", got)
	}
}

func TestPaletteReadIsNotBuffered(t *testing.T) {
	p := newTestPPU()
	setAddress(p, 0x3F01)
	p.writePPUDATA(0xAB)
	setAddress(p, 0x3F01)
	if got := p.readPPUDATA(); got != 0xAB {
		t.Errorf("palette read: got=0x%02x, want=0xAB (no buffer delay)", got)
	}
}

func TestDataReadWriteIncrement(t *testing.T) {
	p := newTestPPU()
	setAddress(p, 0x2000)
	p.writePPUDATA(0x01)
	p.writePPUDATA(0x02)
	if got, want := p.bus.vram.read(0), byte(0x01); got != want {
		t.Errorf("vram[0]: got=0x%02x, want=0x%02x", got, want)
	}
	if got, want := p.bus.vram.read(1), byte(0x02); got != want {
		t.Errorf("vram[1]: got=0x%02x, want=0x%02x", got, want)
	}
	// Stride 32 when the control bit is set.
	p.writePPUCTRL(ctrlVRAMIncrement)
	setAddress(p, 0x2000)
	p.writePPUDATA(0xAA)
	p.writePPUDATA(0xBB)
	if got, want := p.bus.vram.read(32), byte(0xBB); got != want {
		t.Errorf("vram[32]: got=0x%02x, want=0x%02x", got, want)
	}
}

func TestVBlankAndNMIEdge(t *testing.T) {
	p := newTestPPU()
	p.writePPUCTRL(ctrlGenerateNMI)
	p.Tick(241 * cyclesPerScanline)
	if !p.status.test(statusVBlank) {
		t.Fatalf("vblank clear after 241 scanlines, want set")
	}
	if !p.pollNMI() {
		t.Fatalf("pollNMI: got=false, want=true")
	}
	if p.pollNMI() {
		t.Fatalf("second pollNMI: got=true, want=false (take-and-clear)")
	}
}

func TestNMINotRaisedWhenDisabled(t *testing.T) {
	p := newTestPPU()
	p.Tick(241 * cyclesPerScanline)
	if !p.status.test(statusVBlank) {
		t.Fatalf("vblank clear, want set")
	}
	if p.pollNMI() {
		t.Fatalf("pollNMI: got=true, want=false with NMI disabled")
	}
	// Enabling NMI while vblank is still set raises the edge late.
	p.writePPUCTRL(ctrlGenerateNMI)
	if !p.pollNMI() {
		t.Fatalf("pollNMI after enabling: got=false, want=true")
	}
}

func TestFrameWrapClearsState(t *testing.T) {
	p := newTestPPU()
	p.writePPUCTRL(ctrlGenerateNMI)
	frame := p.Tick(scanlinesPerFrame * cyclesPerScanline)
	if !frame {
		t.Fatalf("frame: got=false, want=true after a full frame of cycles")
	}
	if p.status.test(statusVBlank) {
		t.Errorf("vblank set after wrap, want clear")
	}
	if p.pollNMI() {
		t.Errorf("pollNMI after wrap: got=true, want=false")
	}
	if p.scanline != 0 || p.cycle != 0 {
		t.Errorf("counters: scanline=%d cycle=%d, want 0 0", p.scanline, p.cycle)
	}
}

func TestTickInvariant(t *testing.T) {
	p := newTestPPU()
	total := 0
	for _, n := range []int{1, 340, 341, 1000, 123456, 89341} {
		p.Tick(n)
		total += n
		if p.scanline < 0 || p.scanline > 261 {
			t.Fatalf("scanline out of range: %d", p.scanline)
		}
		if p.cycle < 0 || p.cycle > 340 {
			t.Fatalf("cycle out of range: %d", p.cycle)
		}
		if got, want := p.scanline*cyclesPerScanline+p.cycle, total%(scanlinesPerFrame*cyclesPerScanline); got != want {
			t.Fatalf("dot position: got=%d, want=%d", got, want)
		}
	}
}

func TestStatusReadClearsVBlankAndLatches(t *testing.T) {
	p := newTestPPU()
	p.Tick(241 * cyclesPerScanline)
	p.writePPUADDR(0x3F) // first write of a pair, leaves the latch low
	p.writePPUSCROLL(0x11)
	status := p.readPPUSTATUS()
	if status&statusVBlank == 0 {
		t.Fatalf("returned status: vblank clear, want set (pre-clear snapshot)")
	}
	if p.status.test(statusVBlank) {
		t.Fatalf("register still has vblank after read, want cleared")
	}
	// Both write sequences restart at their first byte.
	setAddress(p, 0x2305)
	if got := p.address.get(); got != 0x2305 {
		t.Errorf("address after latch reset: got=0x%04x, want=0x2305", got)
	}
	p.writePPUSCROLL(0x07)
	p.writePPUSCROLL(0x08)
	if p.scroll.x != 0x07 || p.scroll.y != 0x08 {
		t.Errorf("scroll after latch reset: x=0x%02x y=0x%02x, want 0x07 0x08", p.scroll.x, p.scroll.y)
	}
}

func TestOAMReadWrite(t *testing.T) {
	p := newTestPPU()
	p.writeOAMADDR(0x10)
	p.writeOAMDATA(0xAA)
	p.writeOAMDATA(0xBB)
	if p.oamAddress != 0x12 {
		t.Errorf("oamAddress: got=0x%02x, want=0x12 (write increments)", p.oamAddress)
	}
	p.writeOAMADDR(0x10)
	if got := p.readOAMDATA(); got != 0xAA {
		t.Errorf("oam[0x10]: got=0x%02x, want=0xAA", got)
	}
	if p.oamAddress != 0x10 {
		t.Errorf("oamAddress: got=0x%02x, want=0x10 (read does not increment)", p.oamAddress)
	}
}

func TestOAMDMAWrapsAroundAddress(t *testing.T) {
	p := newTestPPU()
	var page [256]byte
	for i := range page {
		page[i] = byte(i)
	}
	p.writeOAMADDR(0xFE)
	p.writeOAMDMA(page)
	if got := p.oam[0xFE]; got != 0x00 {
		t.Errorf("oam[0xFE]: got=0x%02x, want=0x00", got)
	}
	if got := p.oam[0x00]; got != 0x02 {
		t.Errorf("oam[0x00]: got=0x%02x, want=0x02 (wrapped)", got)
	}
	if got := p.oam[0xFD]; got != 0xFF {
		t.Errorf("oam[0xFD]: got=0x%02x, want=0xFF", got)
	}
}

func TestVerticalMirroring(t *testing.T) {
	p := newTestPPUWithMirroring(MirrorVertical)
	setAddress(p, 0x2005)
	p.writePPUDATA(0x66)
	// Nametable 2 mirrors nametable 0.
	setAddress(p, 0x2805)
	p.readPPUDATA() // prime the buffer
	if got := p.readPPUDATA(); got != 0x66 {
		t.Errorf("mirrored read: got=0x%02x, want=0x66", got)
	}
	// Nametable 1 is distinct.
	setAddress(p, 0x2405)
	p.readPPUDATA()
	if got := p.readPPUDATA(); got != 0x00 {
		t.Errorf("distinct table read: got=0x%02x, want=0x00", got)
	}
}

func TestHorizontalMirroring(t *testing.T) {
	p := newTestPPUWithMirroring(MirrorHorizontal)
	setAddress(p, 0x2405)
	p.writePPUDATA(0x77)
	// Nametable 1 mirrors nametable 0.
	setAddress(p, 0x2005)
	p.readPPUDATA()
	if got := p.readPPUDATA(); got != 0x77 {
		t.Errorf("mirrored read: got=0x%02x, want=0x77", got)
	}
	// Nametables 2 and 3 share the second physical table.
	setAddress(p, 0x2C05)
	p.writePPUDATA(0x88)
	setAddress(p, 0x2805)
	p.readPPUDATA()
	if got := p.readPPUDATA(); got != 0x88 {
		t.Errorf("second table read: got=0x%02x, want=0x88", got)
	}
	// And it is distinct from the first.
	setAddress(p, 0x2005)
	p.readPPUDATA()
	if got := p.readPPUDATA(); got != 0x77 {
		t.Errorf("first table read: got=0x%02x, want=0x77", got)
	}
}

func TestNametableMirrorRegion(t *testing.T) {
	// 0x3000-0x3EFF mirrors 0x2000-0x2EFF.
	p := newTestPPU()
	setAddress(p, 0x2005)
	p.writePPUDATA(0x99)
	setAddress(p, 0x3005)
	p.readPPUDATA()
	if got := p.readPPUDATA(); got != 0x99 {
		t.Errorf("mirror region read: got=0x%02x, want=0x99", got)
	}
}

func TestPaletteMirrors(t *testing.T) {
	p := newTestPPU()
	for _, pair := range [][2]uint16{
		{0x3F10, 0x3F00},
		{0x3F14, 0x3F04},
		{0x3F18, 0x3F08},
		{0x3F1C, 0x3F0C},
	} {
		setAddress(p, pair[0])
		p.writePPUDATA(0x5A)
		setAddress(p, pair[1])
		if got := p.readPPUDATA(); got != 0x5A {
			t.Errorf("palette 0x%04x via 0x%04x: got=0x%02x, want=0x5A", pair[1], pair[0], got)
		}
	}
	// The whole region repeats every 32 bytes.
	setAddress(p, 0x3F21)
	p.writePPUDATA(0x6B)
	setAddress(p, 0x3F01)
	if got := p.readPPUDATA(); got != 0x6B {
		t.Errorf("palette wrap: got=0x%02x, want=0x6B", got)
	}
}

func TestControllerRegisterNMIRace(t *testing.T) {
	p := newTestPPU()
	p.status.set(statusVBlank)
	p.writePPUCTRL(0x00)
	if p.nmiPending {
		t.Fatalf("nmiPending set without enabling NMI")
	}
	p.writePPUCTRL(ctrlGenerateNMI)
	if !p.nmiPending {
		t.Fatalf("nmiPending clear after enabling NMI inside vblank, want set")
	}
	// Re-writing the bit without a 0-to-1 transition does not re-raise.
	p.nmiPending = false
	p.writePPUCTRL(ctrlGenerateNMI)
	if p.nmiPending {
		t.Fatalf("nmiPending re-raised without an enable transition")
	}
}
