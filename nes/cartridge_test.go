package nes

import "testing"

// buildINES assembles a minimal INES image.
func buildINES(prgUnits, chrUnits int, flags6 byte) []byte {
	header := make([]byte, inesHeaderSizeBytes)
	header[0], header[1], header[2], header[3] = 'N', 'E', 'S', msdosEOF
	header[4] = byte(prgUnits)
	header[5] = byte(chrUnits)
	header[6] = flags6
	data := append(header, make([]byte, prgUnits*prgROMSizeUnit+chrUnits*chrROMSizeUnit)...)
	return data
}

func TestNewCartridge(t *testing.T) {
	data := buildINES(2, 1, 0x01)
	data[inesHeaderSizeBytes] = 0xAB // first PRG byte
	c, err := NewCartridge(data)
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	if len(c.prgROM) != 2*prgROMSizeUnit {
		t.Errorf("prgROM size: got=%d, want=%d", len(c.prgROM), 2*prgROMSizeUnit)
	}
	if len(c.chrROM) != chrROMSizeUnit {
		t.Errorf("chrROM size: got=%d, want=%d", len(c.chrROM), chrROMSizeUnit)
	}
	if c.mirroring != MirrorVertical {
		t.Errorf("mirroring: got=%v, want=%v", c.mirroring, MirrorVertical)
	}
	if c.prgROM[0] != 0xAB {
		t.Errorf("prgROM[0]: got=0x%02x, want=0xAB", c.prgROM[0])
	}
}

func TestNewCartridgeHorizontalMirroring(t *testing.T) {
	c, err := NewCartridge(buildINES(1, 1, 0x00))
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	if c.mirroring != MirrorHorizontal {
		t.Errorf("mirroring: got=%v, want=%v", c.mirroring, MirrorHorizontal)
	}
}

func TestNewCartridgeRejectsBadMagic(t *testing.T) {
	data := buildINES(1, 1, 0)
	data[0] = 'X'
	if _, err := NewCartridge(data); err == nil {
		t.Fatalf("NewCartridge: got=nil error, want invalid format")
	}
}

func TestNewCartridgeRejectsTruncated(t *testing.T) {
	data := buildINES(2, 1, 0)
	if _, err := NewCartridge(data[:len(data)-100]); err == nil {
		t.Fatalf("NewCartridge: got=nil error, want truncation error")
	}
}

func TestNewCartridgeRejectsUnsupportedMapper(t *testing.T) {
	if _, err := NewCartridge(buildINES(1, 1, 0x40)); err == nil { // mapper 4
		t.Fatalf("NewCartridge: got=nil error, want unsupported mapper")
	}
}

func TestMapper0Mirroring(t *testing.T) {
	prg := make([]byte, prgROMSizeUnit)
	prg[0x0123] = 0x42
	m := &mapper0{prg, nil}
	if got := m.ReadFromCPU(0x8123); got != 0x42 {
		t.Errorf("ReadFromCPU(0x8123): got=0x%02x, want=0x42", got)
	}
	if got := m.ReadFromCPU(0xC123); got != 0x42 {
		t.Errorf("ReadFromCPU(0xC123): got=0x%02x, want=0x42 (mirrored)", got)
	}
}
