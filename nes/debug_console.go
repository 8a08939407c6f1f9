package nes

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DebugConsole steps the machine from stdin instead of the host window.
// commands:
//   s [n]:
//     execute n steps (default 1).
//   p [c|p|ct]:
//     print CPU, PPU or controller state.
//   t:
//     print the next instruction trace.
//   br <hex>:
//     set a break point.
//   r:
//     reset.
//   q:
//     quit.
type DebugConsole struct {
	cpu         *CPU
	bus         *Bus
	breakpoints []uint16
}

func NewDebugConsole(cpu *CPU, bus *Bus) *DebugConsole {
	return &DebugConsole{cpu: cpu, bus: bus}
}

func (d *DebugConsole) basePrint() {
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Executed cycles: %d\n", d.bus.Cycles())
	fmt.Printf("CPU:  PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, P=0x%02x\n",
		d.cpu.pc, d.cpu.a, d.cpu.x, d.cpu.y, d.cpu.s, d.cpu.p.snapshot())
	fmt.Printf("PPU:  scanline=%d, cycle=%d, v=0x%04x\n",
		d.bus.ppu.scanline, d.bus.ppu.cycle, d.bus.ppu.address.get())
}

func (d *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		d.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Printf("%+v\n", *d.cpu)
	case "p", "ppu":
		fmt.Printf("%+v\n", *d.bus.ppu)
	case "ct", "controller":
		fmt.Printf("%+v\n", *d.bus.controller)
	}
}

func (d *DebugConsole) checkBreak() bool {
	for _, b := range d.breakpoints {
		if b == d.cpu.pc {
			fmt.Printf("Break at: 0x%04x\n", b)
			return true
		}
	}
	return false
}

func (d *DebugConsole) stepCommand(args []string) {
	n := 1
	if len(args) >= 2 {
		if x, err := strconv.Atoi(args[1]); err == nil {
			n = x
		}
	}
	for i := 0; i < n && !d.cpu.Halted(); i++ {
		d.cpu.Step()
		if d.checkBreak() {
			break
		}
	}
	d.basePrint()
}

func (d *DebugConsole) breakCommand(args []string) {
	if len(args) < 2 {
		return
	}
	address, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 16)
	if err != nil {
		fmt.Printf("Bad address: %v\n", err)
		return
	}
	d.breakpoints = append(d.breakpoints, uint16(address))
}

// Run reads commands until q or EOF.
func (d *DebugConsole) Run() {
	d.basePrint()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			fmt.Print("> ")
			continue
		}
		switch args[0] {
		case "s":
			d.stepCommand(args)
		case "p":
			d.printCommand(args)
		case "t":
			fmt.Println(Trace(d.cpu))
		case "br":
			d.breakCommand(args)
		case "r":
			d.cpu.Reset()
			d.bus.ppu.Reset()
			d.basePrint()
		case "q":
			return
		}
		fmt.Print("> ")
	}
}
