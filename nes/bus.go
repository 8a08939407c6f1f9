package nes

import "github.com/golang/glog"

// Bus connects the CPU to everything else: WRAM, the PPU registers, the APU
// shells, the controller port and the cartridge Program ROM. It also owns
// the clock coupling: after every instruction the CPU hands its cycle count
// to tick, which advances the PPU by three PPU cycles per CPU cycle and
// fires the host frame callback on the NMI rising edge.
//
// CPU memory map
// 0x0000 - 0x07FF	WRAM
// 0x0800 - 0x1FFF	WRAM Mirror
// 0x2000 - 0x2007	PPU Registers
// 0x2008 - 0x3FFF	PPU Registers Mirror
// 0x4000 - 0x4013	APU
// 0x4014		OAM DMA
// 0x4015		APU status
// 0x4016		Controller 1P
// 0x4017		Controller 2P (not implemented)
// 0x4020 - 0x7FFF	Unmapped (Extended/Battery RAM not supported)
// 0x8000 - 0xFFFF	Program ROM
type Bus struct {
	wram       *RAM
	ppu        *PPU
	apu        *APU
	cartridge  *Cartridge
	controller *Controller

	// cycles accumulates CPU cycles since reset. OAM DMA stall cycles
	// (513 or 514) are not charged here.
	cycles uint64

	// onFrame runs synchronously inside tick at the NMI rising edge, once
	// per vblank entry. It gets the PPU to render from and the controller
	// to refresh, and must not call back into the Bus.
	onFrame func(*PPU, *Controller)
}

// NewBus creates a Bus and the components it owns.
func NewBus(cartridge *Cartridge, onFrame func(*PPU, *Controller)) *Bus {
	ppu := NewPPU(NewPPUBus(NewRAM(), cartridge))
	return &Bus{
		wram:       NewRAM(),
		ppu:        ppu,
		apu:        NewAPU(),
		cartridge:  cartridge,
		controller: NewController(),
		onFrame:    onFrame,
	}
}

func (b *Bus) PPU() *PPU {
	return b.ppu
}

func (b *Bus) Controller() *Controller {
	return b.controller
}

func (b *Bus) APU() *APU {
	return b.apu
}

// Cycles returns the cumulative CPU cycle count.
func (b *Bus) Cycles() uint64 {
	return b.cycles
}

// readPPURegister reads one of the eight PPU registers. Write-only
// registers read back 0.
func (b *Bus) readPPURegister(address uint16) byte {
	switch address {
	case 0x2002:
		return b.ppu.readPPUSTATUS()
	case 0x2004:
		return b.ppu.readOAMDATA()
	case 0x2007:
		return b.ppu.readPPUDATA()
	default:
		glog.V(1).Infof("Read from write-only PPU register: 0x%04x\n", address)
		return 0
	}
}

// writePPURegister writes one of the eight PPU registers. PPUSTATUS is read
// only, a write to it is a core bug.
func (b *Bus) writePPURegister(address uint16, data byte) {
	switch address {
	case 0x2000:
		b.ppu.writePPUCTRL(data)
	case 0x2001:
		b.ppu.writePPUMASK(data)
	case 0x2002:
		glog.Fatalf("Writing PPUSTATUS not allowed: data=0x%02x\n", data)
	case 0x2003:
		b.ppu.writeOAMADDR(data)
	case 0x2004:
		b.ppu.writeOAMDATA(data)
	case 0x2005:
		b.ppu.writePPUSCROLL(data)
	case 0x2006:
		b.ppu.writePPUADDR(data)
	case 0x2007:
		b.ppu.writePPUDATA(data)
	}
}

// writeOAMDMA reads a whole 256-byte page through the bus and hands it to
// the PPU ($4014). The CPU stall cycles this should cost are not charged.
func (b *Bus) writeOAMDMA(page byte) {
	var data [256]byte
	offset := uint16(page) << 8
	for i := 0; i < 256; i++ {
		data[i] = b.read(offset + uint16(i))
	}
	b.ppu.writeOAMDMA(data)
}

// read reads a byte.
func (b *Bus) read(address uint16) byte {
	switch {
	case address < 0x2000:
		return b.wram.read(address % 0x0800)
	case address < 0x4000:
		return b.readPPURegister(0x2000 + address%8)
	case address < 0x4014 || address == 0x4015:
		return b.apu.readRegister(address)
	case address == 0x4014:
		glog.V(1).Infof("Read from write-only OAMDMA register\n")
		return 0
	case address == 0x4016: // 1P
		return b.controller.read()
	case address == 0x4017: // 2P
		return 0
	case 0x8000 <= address:
		return b.cartridge.mapper.ReadFromCPU(address)
	default:
		glog.Infof("Unmapped CPU bus read: address=0x%04x\n", address)
		return 0
	}
}

// read16 reads 2 bytes.
func (b *Bus) read16(address uint16) uint16 {
	l := uint16(b.read(address))
	h := uint16(b.read(address+1)) << 8
	return h | l
}

// write writes a byte. Program ROM is read only, writing there is a core
// bug.
func (b *Bus) write(address uint16, data byte) {
	switch {
	case address < 0x2000:
		b.wram.write(address%0x0800, data)
	case address < 0x4000:
		b.writePPURegister(0x2000+address%8, data)
	case address < 0x4014 || address == 0x4015:
		b.apu.writeRegister(address, data)
	case address == 0x4014:
		b.writeOAMDMA(data)
	case address == 0x4016: // 1P
		b.controller.write(data)
	case address == 0x4017: // 2P
	case 0x8000 <= address:
		glog.Fatalf("Writing Program ROM not allowed: address=0x%04x, data=0x%02x\n", address, data)
	default:
		glog.Infof("Unmapped CPU bus write: address=0x%04x, data=0x%02x\n", address, data)
	}
}

// tick advances time by one instruction's worth of CPU cycles. The PPU runs
// at exactly 3x the CPU clock. When the PPU raises its NMI edge during this
// budget, the host frame callback runs before the CPU gets to service the
// interrupt.
func (b *Bus) tick(cpuCycles int) {
	b.cycles += uint64(cpuCycles)
	hadNMI := b.ppu.nmiPending
	b.ppu.Tick(3 * cpuCycles)
	for i := 0; i < cpuCycles; i++ {
		b.apu.Step()
	}
	if !hadNMI && b.ppu.nmiPending && b.onFrame != nil {
		b.onFrame(b.ppu, b.controller)
	}
}

// PollNMI takes and clears the PPU's pending NMI.
func (b *Bus) PollNMI() bool {
	return b.ppu.pollNMI()
}
