package nes

import "testing"

func newTestBus() *Bus {
	return NewBus(testCartridge(), nil)
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus()
	b.write(0x0000, 0x11)
	for _, offset := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := b.read(0x0000 + offset); got != 0x11 {
			t.Errorf("read(0x%04x): got=0x%02x, want=0x11", offset, got)
		}
	}
	// Writing through a mirror lands in the same cell.
	b.write(0x1ABC, 0x22)
	if got := b.read(0x1ABC & 0x07FF); got != 0x22 {
		t.Errorf("read through mirror: got=0x%02x, want=0x22", got)
	}
}

func TestRAMRoundTrip(t *testing.T) {
	b := newTestBus()
	for _, address := range []uint16{0x0000, 0x0001, 0x07FF, 0x0600} {
		b.write(address, byte(address)^0x5A)
		if got, want := b.read(address), byte(address)^0x5A; got != want {
			t.Errorf("read(0x%04x): got=0x%02x, want=0x%02x", address, got, want)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	// $2006/$2007 accessed through a mirror at $3FFE/$3FFF behave like the
	// canonical registers.
	b := newTestBus()
	b.write(0x3FFE, 0x20) // PPUADDR high
	b.write(0x3FFE, 0x05) // PPUADDR low
	b.write(0x3FFF, 0x42) // PPUDATA
	if got := b.ppu.bus.vram.read(0x005); got != 0x42 {
		t.Fatalf("vram[0x005]: got=0x%02x, want=0x42", got)
	}
	// And the canonical registers see the same state.
	b.write(0x2006, 0x20)
	b.write(0x2006, 0x05)
	b.read(0x2007) // prime the buffer
	if got := b.read(0x2007); got != 0x42 {
		t.Fatalf("buffered read: got=0x%02x, want=0x42", got)
	}
}

func TestWriteOnlyRegistersReadZero(t *testing.T) {
	b := newTestBus()
	for _, address := range []uint16{0x2000, 0x2001, 0x2003, 0x2005, 0x2006, 0x4014} {
		if got := b.read(address); got != 0 {
			t.Errorf("read(0x%04x): got=0x%02x, want=0x00", address, got)
		}
	}
}

func TestProgramROMMirroring(t *testing.T) {
	prg := make([]byte, prgROMSizeUnit) // 16KiB, mirrored into both halves
	prg[0x0100] = 0x42
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	chr := make([]byte, chrROMSizeUnit)
	c := &Cartridge{prgROM: prg, chrROM: chr, mirroring: MirrorVertical}
	c.mapper = &mapper0{prg, chr}
	b := NewBus(c, nil)
	if got := b.read(0x8100); got != 0x42 {
		t.Errorf("read(0x8100): got=0x%02x, want=0x42", got)
	}
	if got := b.read(0xC100); got != 0x42 {
		t.Errorf("read(0xC100): got=0x%02x, want=0x42 (mirrored)", got)
	}
}

func TestProgramROMDirect(t *testing.T) {
	b := newTestBus() // 32KiB image
	b.cartridge.prgROM[0x0000] = 0x11
	b.cartridge.prgROM[0x4000] = 0x22
	if got := b.read(0x8000); got != 0x11 {
		t.Errorf("read(0x8000): got=0x%02x, want=0x11", got)
	}
	if got := b.read(0xC000); got != 0x22 {
		t.Errorf("read(0xC000): got=0x%02x, want=0x22", got)
	}
}

func TestUnmappedRegion(t *testing.T) {
	b := newTestBus()
	b.write(0x5000, 0xFF) // discarded
	if got := b.read(0x5000); got != 0 {
		t.Errorf("read(0x5000): got=0x%02x, want=0x00", got)
	}
}

func TestAPURegistersAreInert(t *testing.T) {
	b := newTestBus()
	b.write(0x4000, 0xFF)
	b.write(0x4015, 0x1F)
	if got := b.read(0x4000); got != 0 {
		t.Errorf("read(0x4000): got=0x%02x, want=0x00", got)
	}
	if got := b.read(0x4015); got != 0 {
		t.Errorf("read(0x4015): got=0x%02x, want=0x00", got)
	}
}

func TestControllerPort(t *testing.T) {
	b := newTestBus()
	b.controller.Set([8]bool{true, false, true, false, false, false, false, false}) // A and Select
	b.write(0x4016, 1)
	b.write(0x4016, 0)
	want := []byte{1, 0, 1, 0, 0, 0, 0, 0}
	for i, w := range want {
		if got := b.read(0x4016); got != w {
			t.Errorf("shift %d: got=%d, want=%d", i, got, w)
		}
	}
	// Exhausted register reads 1.
	if got := b.read(0x4016); got != 1 {
		t.Errorf("shift 8: got=%d, want=1", got)
	}
	// Second controller is not implemented.
	if got := b.read(0x4017); got != 0 {
		t.Errorf("read(0x4017): got=%d, want=0", got)
	}
}

func TestOAMDMA(t *testing.T) {
	b := newTestBus()
	for i := 0; i < 256; i++ {
		b.write(0x0200+uint16(i), byte(i))
	}
	b.write(0x2003, 0x00) // OAMADDR
	b.write(0x4014, 0x02)
	for _, i := range []int{0, 1, 127, 255} {
		if got := b.ppu.oam[i]; got != byte(i) {
			t.Errorf("oam[%d]: got=0x%02x, want=0x%02x", i, got, byte(i))
		}
	}
}

func TestTickAdvancesPPUThreeToOne(t *testing.T) {
	b := newTestBus()
	b.tick(100)
	if got := b.ppu.scanline*cyclesPerScanline + b.ppu.cycle; got != 300 {
		t.Errorf("ppu dots: got=%d, want=300", got)
	}
	if b.Cycles() != 100 {
		t.Errorf("bus cycles: got=%d, want=100", b.Cycles())
	}
}

func TestFrameCallbackFiresOnNMIEdge(t *testing.T) {
	calls := 0
	var b *Bus
	b = NewBus(testCartridge(), func(p *PPU, c *Controller) {
		calls++
		if p != b.ppu || c != b.controller {
			t.Errorf("callback got foreign ppu/controller")
		}
	})
	b.write(0x2000, ctrlGenerateNMI)
	// Tick through one vblank entry in pieces: the callback fires exactly
	// once, at the edge.
	cyclesPerFrame := scanlinesPerFrame * cyclesPerScanline / 3
	for i := 0; i < cyclesPerFrame; i += 100 {
		b.tick(100)
	}
	if calls != 1 {
		t.Fatalf("callback calls after one frame: got=%d, want=1", calls)
	}
	// The next frame fires it once more.
	for i := 0; i < cyclesPerFrame; i += 100 {
		b.tick(100)
	}
	if calls != 2 {
		t.Fatalf("callback calls after two frames: got=%d, want=2", calls)
	}
}

func TestEndToEndFrame(t *testing.T) {
	// A tiny guest program enables NMI generation and spins. The frame
	// callback fires at vblank entry, then the CPU services the NMI
	// through the vector, which points at a BRK so the run loop stops.
	cart := testCartridge()
	cart.prgROM[0x7FFA] = 0x00
	cart.prgROM[0x7FFB] = 0x07 // NMI vector -> 0x0700, RAM zeroes decode as BRK
	frames := 0
	frame := NewFrame()
	bus := NewBus(cart, func(p *PPU, c *Controller) {
		frames++
		Render(p, frame)
	})
	cpu := NewCPU(bus)
	cpu.Load([]byte{
		0xA9, 0x80,       // LDA #$80
		0x8D, 0x00, 0x20, // STA $2000
		0x4C, 0x05, 0x06, // JMP $0605 (spin)
	})
	cpu.pc = 0x0600
	cpu.Run(func(*CPU) {})
	if frames != 1 {
		t.Fatalf("frames: got=%d, want=1", frames)
	}
	if cpu.pc != 0x0701 {
		t.Errorf("cpu.pc: got=0x%04x, want=0x0701 (one past the BRK handler)", cpu.pc)
	}
	// The backdrop color filled the screen.
	if got, want := frame.Image().RGBAAt(128, 120), systemPalette[0]; got != want {
		t.Errorf("backdrop: got=%v, want=%v", got, want)
	}
}

func TestFrameCallbackNotFiredWithNMIDisabled(t *testing.T) {
	calls := 0
	b := NewBus(testCartridge(), func(*PPU, *Controller) { calls++ })
	b.tick(scanlinesPerFrame * cyclesPerScanline) // several frames worth
	if calls != 0 {
		t.Fatalf("callback calls: got=%d, want=0 with NMI disabled", calls)
	}
}
