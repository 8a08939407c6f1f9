package nes

import (
	"fmt"
	"strings"
)

// Trace renders the instruction at the current program counter in the
// nestest log format, reusing the size/mode metadata from the dispatch
// table. Operands are shown as written, they are not dereferenced, so
// tracing never touches registers with read side effects.
func Trace(c *CPU) string {
	opcode := c.bus.read(c.pc)
	inst := c.instructions[opcode]

	var sb strings.Builder
	fmt.Fprintf(&sb, "%04X ", c.pc)
	for i := uint16(0); i < 3; i++ {
		if i < inst.size {
			fmt.Fprintf(&sb, " %02X", c.bus.read(c.pc+i))
		} else {
			sb.WriteString("   ")
		}
	}

	mnemonic := inst.mnemonic
	if mnemonic == "" {
		mnemonic = "???"
	}
	asm := mnemonic
	switch inst.mode {
	case accumulator:
		asm = fmt.Sprintf("%s A", mnemonic)
	case immediate:
		asm = fmt.Sprintf("%s #$%02X", mnemonic, c.bus.read(c.pc+1))
	case zeropage:
		asm = fmt.Sprintf("%s $%02X", mnemonic, c.bus.read(c.pc+1))
	case zeropageX:
		asm = fmt.Sprintf("%s $%02X,X", mnemonic, c.bus.read(c.pc+1))
	case zeropageY:
		asm = fmt.Sprintf("%s $%02X,Y", mnemonic, c.bus.read(c.pc+1))
	case relative:
		asm = fmt.Sprintf("%s $%04X", mnemonic, c.operandAddress(relative))
	case absolute:
		asm = fmt.Sprintf("%s $%04X", mnemonic, c.bus.read16(c.pc+1))
	case absoluteX:
		asm = fmt.Sprintf("%s $%04X,X", mnemonic, c.bus.read16(c.pc+1))
	case absoluteY:
		asm = fmt.Sprintf("%s $%04X,Y", mnemonic, c.bus.read16(c.pc+1))
	case indirect:
		asm = fmt.Sprintf("%s ($%04X)", mnemonic, c.bus.read16(c.pc+1))
	case indirectX:
		asm = fmt.Sprintf("%s ($%02X,X)", mnemonic, c.bus.read(c.pc+1))
	case indirectY:
		asm = fmt.Sprintf("%s ($%02X),Y", mnemonic, c.bus.read(c.pc+1))
	}
	fmt.Fprintf(&sb, "  %-14s", asm)
	fmt.Fprintf(&sb, " A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		c.a, c.x, c.y, c.p.snapshot(), c.s, c.bus.Cycles())
	return sb.String()
}
