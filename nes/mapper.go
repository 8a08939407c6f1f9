package nes

import "fmt"

// Mapper funnels every cartridge ROM access through one place so future
// variants with bank switching can be plugged in.
type Mapper interface {
	ReadFromCPU(uint16) byte
	ReadFromPPU(uint16) byte
}

func NewMapper(number byte, prgROM []byte, chrROM []byte) (Mapper, error) {
	switch number {
	case 0:
		return &mapper0{prgROM, chrROM}, nil
	}
	return nil, fmt.Errorf("Mapper %d not supported.", number)
}
