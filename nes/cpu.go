package nes

import "github.com/golang/glog"

// CPU emulates the NES CPU - a custom 6502 made by RICOH. Decimal mode is
// wired but ignored, as on the real chip.
// References:
//   https://en.wikipedia.org/wiki/MOS_Technology_6502
//   http://www.6502.org/tutorials/6502opcodes.html
//   https://www.nesdev.org/wiki/CPU_unofficial_opcodes

const CPUFrequency = 1789773

// Interrupt vectors.
const (
	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// The stack always lives in page one and works top down.
const (
	stackPage  = 0x0100
	stackReset = 0xFD
)

type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indirectX
	indirectY
)

// Processor status flags, LSB first.
// 7  bit  0
// ---- ----
// NV1B DIZC
// |||| |||+- Carry
// |||| ||+-- Zero
// |||| |+--- Interrupt disable
// |||| +---- Decimal (ignored on NES)
// |||+------ Break (only exists on the stack)
// ||+------- Unused, behaves as always set
// |+-------- Overflow
// +--------- Negative
const (
	flagCarry      = 1 << 0
	flagZero       = 1 << 1
	flagIRQDisable = 1 << 2
	flagDecimal    = 1 << 3
	flagBreak      = 1 << 4
	flagUnused     = 1 << 5
	flagOverflow   = 1 << 6
	flagNegative   = 1 << 7
)

// statusReset is the power-on status: interrupt disable plus the always-set
// bit.
const statusReset = 0b0010_0100

type CPU struct {
	a  byte     // Accumulator register
	x  byte     // Index register
	y  byte     // Index register
	s  byte     // Stack pointer
	pc uint16   // Program counter
	p  register // Processor status flag bits

	bus          *Bus
	instructions []instruction

	// halted latches when a BRK retires. The hardware interrupt sequence
	// is deliberately not taken: BRK stops the interpreter, which is what
	// the run loops and the test harnesses rely on.
	halted bool
}

type instruction struct {
	mnemonic string
	mode     addressingMode
	execute  func(addressingMode, uint16)
	size     uint16
	cycles   int
}

// NewCPU creates a CPU wired to the bus.
func NewCPU(bus *Bus) *CPU {
	c := &CPU{bus: bus}
	c.instructions = c.createInstructions()
	c.Reset()
	return c
}

// Reset puts the machine into the documented power-on state and loads the
// program counter from the reset vector.
func (c *CPU) Reset() {
	c.a = 0
	c.x = 0
	c.y = 0
	c.s = stackReset
	c.p.update(statusReset)
	c.pc = c.bus.read16(vectorReset)
	c.halted = false
}

// Load copies a raw program into RAM at 0x0600, the conventional snippet
// base. The caller decides where the program counter starts.
func (c *CPU) Load(program []byte) {
	for i, b := range program {
		c.bus.write(0x0600+uint16(i), b)
	}
}

// Halted reports whether a BRK has stopped the interpreter.
func (c *CPU) Halted() bool {
	return c.halted
}

// Halt stops the interpreter the same way a BRK does. The host uses it to
// leave Run when the window closes.
func (c *CPU) Halt() {
	c.halted = true
}

// PC returns the current program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// setZN sets the zero and negative flags from x.
func (c *CPU) setZN(x byte) {
	if x == 0 {
		c.p.set(flagZero)
	} else {
		c.p.clear(flagZero)
	}
	if x&0x80 != 0 {
		c.p.set(flagNegative)
	} else {
		c.p.clear(flagNegative)
	}
}

func (c *CPU) push(x byte) {
	c.bus.write(stackPage|uint16(c.s), x)
	c.s--
}

func (c *CPU) pop() byte {
	c.s++
	return c.bus.read(stackPage | uint16(c.s))
}

func (c *CPU) push16(x uint16) {
	c.push(byte(x >> 8))
	c.push(byte(x))
}

func (c *CPU) pop16() uint16 {
	l := uint16(c.pop())
	h := uint16(c.pop()) << 8
	return h | l
}

// operandAddress resolves the effective address for the instruction at pc.
// Zero page indexing wraps within page zero, and both indirect modes fetch
// their pointer with zero-page wrap on the high byte.
func (c *CPU) operandAddress(mode addressingMode) uint16 {
	switch mode {
	case implied, accumulator:
		return 0
	case immediate:
		return c.pc + 1
	case zeropage:
		return uint16(c.bus.read(c.pc + 1))
	case zeropageX:
		return uint16(c.bus.read(c.pc+1) + c.x)
	case zeropageY:
		return uint16(c.bus.read(c.pc+1) + c.y)
	case relative:
		displacement := c.bus.read(c.pc + 1)
		if displacement < 0x80 {
			return c.pc + 2 + uint16(displacement)
		}
		return c.pc + 2 + uint16(displacement) - 0x100
	case absolute:
		return c.bus.read16(c.pc + 1)
	case absoluteX:
		return c.bus.read16(c.pc+1) + uint16(c.x)
	case absoluteY:
		return c.bus.read16(c.pc+1) + uint16(c.y)
	case indirect:
		// JMP ($xxFF) reproduces the 6502 bug: the high byte of the
		// target comes from the start of the same page, not the next.
		pointer := c.bus.read16(c.pc + 1)
		if pointer&0x00FF == 0x00FF {
			l := uint16(c.bus.read(pointer))
			h := uint16(c.bus.read(pointer & 0xFF00)) << 8
			return h | l
		}
		return c.bus.read16(pointer)
	case indirectX:
		pointer := c.bus.read(c.pc+1) + c.x
		l := uint16(c.bus.read(uint16(pointer)))
		h := uint16(c.bus.read(uint16(pointer+1))) << 8
		return h | l
	case indirectY:
		pointer := c.bus.read(c.pc + 1)
		l := uint16(c.bus.read(uint16(pointer)))
		h := uint16(c.bus.read(uint16(pointer+1))) << 8
		return (h | l) + uint16(c.y)
	}
	return 0
}

// nmi services the non-maskable interrupt raised by the PPU at vblank
// entry. The pushed status has the break bit clear.
func (c *CPU) nmi() {
	c.push16(c.pc)
	c.push((c.p.snapshot() &^ flagBreak) | flagUnused)
	c.p.set(flagIRQDisable)
	c.pc = c.bus.read16(vectorNMI)
}

// Step performs one instruction cycle - fetch, decode, execute - then hands
// the cycle count to the bus clock. A pending NMI is serviced first.
func (c *CPU) Step() int {
	if c.halted {
		return 0
	}
	if c.bus.PollNMI() {
		c.nmi()
		c.bus.tick(7)
		return 7
	}
	opcode := c.bus.read(c.pc)
	inst := c.instructions[opcode]
	if inst.execute == nil {
		glog.Fatalf("Unknown opcode: 0x%02x at PC=0x%04x\n", opcode, c.pc)
	}
	if glog.V(1) {
		glog.Info(Trace(c))
	}
	operand := c.operandAddress(inst.mode)
	c.pc += inst.size
	inst.execute(inst.mode, operand)
	c.bus.tick(inst.cycles)
	return inst.cycles
}

// Run steps the interpreter until a BRK halts it, calling the callback
// before every fetch.
func (c *CPU) Run(callback func(*CPU)) {
	for !c.halted {
		callback(c)
		c.Step()
	}
}

// add implements the shared ADC/SBC core: A + addend + C with carry and
// signed overflow.
func (c *CPU) add(addend byte) {
	var carry uint16
	if c.p.test(flagCarry) {
		carry = 1
	}
	sum := uint16(c.a) + uint16(addend) + carry
	if sum > 0xFF {
		c.p.set(flagCarry)
	} else {
		c.p.clear(flagCarry)
	}
	result := byte(sum)
	// Overflow happened iff both addends disagree with the result in the
	// sign bit.
	if (c.a^result)&(addend^result)&0x80 != 0 {
		c.p.set(flagOverflow)
	} else {
		c.p.clear(flagOverflow)
	}
	c.a = result
}

// compare implements CMP/CPX/CPY on reg.
func (c *CPU) compare(reg byte, operand uint16) {
	operandValue := c.bus.read(operand)
	if reg >= operandValue {
		c.p.set(flagCarry)
	} else {
		c.p.clear(flagCarry)
	}
	c.setZN(reg - operandValue)
}

// ADC - Add with Carry.
func (c *CPU) adc(mode addressingMode, operand uint16) {
	c.add(c.bus.read(operand))
	c.setZN(c.a)
}

// AND - And.
func (c *CPU) and(mode addressingMode, operand uint16) {
	c.a &= c.bus.read(operand)
	c.setZN(c.a)
}

// ASL - Arithmetic Shift Left.
func (c *CPU) asl(mode addressingMode, operand uint16) {
	if mode == accumulator {
		c.setCarryBit(c.a >> 7)
		c.a <<= 1
		c.setZN(c.a)
	} else {
		x := c.bus.read(operand)
		c.setCarryBit(x >> 7)
		x <<= 1
		c.bus.write(operand, x)
		c.setZN(x)
	}
}

func (c *CPU) setCarryBit(bit byte) {
	if bit&1 == 1 {
		c.p.set(flagCarry)
	} else {
		c.p.clear(flagCarry)
	}
}

// BCC - Branch on Carry Clear.
func (c *CPU) bcc(mode addressingMode, operand uint16) {
	if !c.p.test(flagCarry) {
		c.pc = operand
	}
}

// BCS - Branch on Carry Set.
func (c *CPU) bcs(mode addressingMode, operand uint16) {
	if c.p.test(flagCarry) {
		c.pc = operand
	}
}

// BEQ - Branch on Equal.
func (c *CPU) beq(mode addressingMode, operand uint16) {
	if c.p.test(flagZero) {
		c.pc = operand
	}
}

// BIT - test BITS.
func (c *CPU) bit(mode addressingMode, operand uint16) {
	x := c.bus.read(operand)
	if c.a&x == 0 {
		c.p.set(flagZero)
	} else {
		c.p.clear(flagZero)
	}
	if x&flagNegative != 0 {
		c.p.set(flagNegative)
	} else {
		c.p.clear(flagNegative)
	}
	if x&flagOverflow != 0 {
		c.p.set(flagOverflow)
	} else {
		c.p.clear(flagOverflow)
	}
}

// BMI - Branch on Minus.
func (c *CPU) bmi(mode addressingMode, operand uint16) {
	if c.p.test(flagNegative) {
		c.pc = operand
	}
}

// BNE - Branch on Not Equal.
func (c *CPU) bne(mode addressingMode, operand uint16) {
	if !c.p.test(flagZero) {
		c.pc = operand
	}
}

// BPL - Branch on Plus.
func (c *CPU) bpl(mode addressingMode, operand uint16) {
	if !c.p.test(flagNegative) {
		c.pc = operand
	}
}

// BRK - halts the interpreter instead of taking the IRQ vector. See the
// halted field.
func (c *CPU) brk(mode addressingMode, operand uint16) {
	c.halted = true
}

// BVC - Branch on Overflow Clear.
func (c *CPU) bvc(mode addressingMode, operand uint16) {
	if !c.p.test(flagOverflow) {
		c.pc = operand
	}
}

// BVS - Branch on Overflow Set.
func (c *CPU) bvs(mode addressingMode, operand uint16) {
	if c.p.test(flagOverflow) {
		c.pc = operand
	}
}

// CLC - Clear Carry.
func (c *CPU) clc(mode addressingMode, operand uint16) {
	c.p.clear(flagCarry)
}

// CLD - Clear Decimal.
func (c *CPU) cld(mode addressingMode, operand uint16) {
	c.p.clear(flagDecimal)
}

// CLI - Clear Interrupt.
func (c *CPU) cli(mode addressingMode, operand uint16) {
	c.p.clear(flagIRQDisable)
}

// CLV - Clear Overflow.
func (c *CPU) clv(mode addressingMode, operand uint16) {
	c.p.clear(flagOverflow)
}

// CMP - Compare Accumulator.
func (c *CPU) cmp(mode addressingMode, operand uint16) {
	c.compare(c.a, operand)
}

// CPX - Compare X register.
func (c *CPU) cpx(mode addressingMode, operand uint16) {
	c.compare(c.x, operand)
}

// CPY - Compare Y register.
func (c *CPU) cpy(mode addressingMode, operand uint16) {
	c.compare(c.y, operand)
}

// DEC - Decrement Memory.
func (c *CPU) dec(mode addressingMode, operand uint16) {
	x := c.bus.read(operand) - 1
	c.bus.write(operand, x)
	c.setZN(x)
}

// DEX - Decrement X Register.
func (c *CPU) dex(mode addressingMode, operand uint16) {
	c.x--
	c.setZN(c.x)
}

// DEY - Decrement Y Register.
func (c *CPU) dey(mode addressingMode, operand uint16) {
	c.y--
	c.setZN(c.y)
}

// EOR - Bitwise Exclusive OR.
func (c *CPU) eor(mode addressingMode, operand uint16) {
	c.a ^= c.bus.read(operand)
	c.setZN(c.a)
}

// INC - Increment Memory.
func (c *CPU) inc(mode addressingMode, operand uint16) {
	x := c.bus.read(operand) + 1
	c.bus.write(operand, x)
	c.setZN(x)
}

// INX - Increment X Register.
func (c *CPU) inx(mode addressingMode, operand uint16) {
	c.x++
	c.setZN(c.x)
}

// INY - Increment Y Register.
func (c *CPU) iny(mode addressingMode, operand uint16) {
	c.y++
	c.setZN(c.y)
}

// JMP - Jump.
func (c *CPU) jmp(mode addressingMode, operand uint16) {
	c.pc = operand
}

// JSR - Jump to Subroutine. The pushed return address is the address of the
// next instruction minus one, high byte first.
func (c *CPU) jsr(mode addressingMode, operand uint16) {
	c.push16(c.pc - 1)
	c.pc = operand
}

// LDA - Load Accumulator.
func (c *CPU) lda(mode addressingMode, operand uint16) {
	c.a = c.bus.read(operand)
	c.setZN(c.a)
}

// LDX - Load X Register.
func (c *CPU) ldx(mode addressingMode, operand uint16) {
	c.x = c.bus.read(operand)
	c.setZN(c.x)
}

// LDY - Load Y Register.
func (c *CPU) ldy(mode addressingMode, operand uint16) {
	c.y = c.bus.read(operand)
	c.setZN(c.y)
}

// LSR - Logical Shift Right.
func (c *CPU) lsr(mode addressingMode, operand uint16) {
	if mode == accumulator {
		c.setCarryBit(c.a)
		c.a >>= 1
		c.setZN(c.a)
	} else {
		x := c.bus.read(operand)
		c.setCarryBit(x)
		x >>= 1
		c.bus.write(operand, x)
		c.setZN(x)
	}
}

// NOP - No Operation.
func (c *CPU) nop(mode addressingMode, operand uint16) {
}

// dop performs the dummy read the unofficial NOP variants do: the operand
// is fetched and thrown away.
func (c *CPU) dop(mode addressingMode, operand uint16) {
	if mode != implied {
		c.bus.read(operand)
	}
}

// ORA - Bitwise OR with Accumulator.
func (c *CPU) ora(mode addressingMode, operand uint16) {
	c.a |= c.bus.read(operand)
	c.setZN(c.a)
}

// PHA - Push Accumulator.
func (c *CPU) pha(mode addressingMode, operand uint16) {
	c.push(c.a)
}

// PHP - Push Processor Status with both break bits set.
// https://www.nesdev.org/wiki/Status_flags#The_B_flag
func (c *CPU) php(mode addressingMode, operand uint16) {
	c.push(c.p.snapshot() | flagBreak | flagUnused)
}

// PLA - Pull Accumulator.
func (c *CPU) pla(mode addressingMode, operand uint16) {
	c.a = c.pop()
	c.setZN(c.a)
}

// PLP - Pull Processor Status. The break bit does not exist in the
// register, the unused bit always does.
func (c *CPU) plp(mode addressingMode, operand uint16) {
	c.p.update(c.pop())
	c.p.clear(flagBreak)
	c.p.set(flagUnused)
}

// ROL - Rotate Left.
func (c *CPU) rol(mode addressingMode, operand uint16) {
	carry := c.p.snapshot() & flagCarry
	if mode == accumulator {
		c.setCarryBit(c.a >> 7)
		c.a = c.a<<1 | carry
		c.setZN(c.a)
	} else {
		x := c.bus.read(operand)
		c.setCarryBit(x >> 7)
		x = x<<1 | carry
		c.bus.write(operand, x)
		c.setZN(x)
	}
}

// ROR - Rotate Right.
func (c *CPU) ror(mode addressingMode, operand uint16) {
	carry := c.p.snapshot() & flagCarry
	if mode == accumulator {
		c.setCarryBit(c.a)
		c.a = c.a>>1 | carry<<7
		c.setZN(c.a)
	} else {
		x := c.bus.read(operand)
		c.setCarryBit(x)
		x = x>>1 | carry<<7
		c.bus.write(operand, x)
		c.setZN(x)
	}
}

// RTI - Return from Interrupt.
func (c *CPU) rti(mode addressingMode, operand uint16) {
	c.p.update(c.pop())
	c.p.clear(flagBreak)
	c.p.set(flagUnused)
	c.pc = c.pop16()
}

// RTS - Return from Subroutine.
func (c *CPU) rts(mode addressingMode, operand uint16) {
	c.pc = c.pop16() + 1
}

// SBC - Subtract with carry, A + ~M + C. Decimal mode is ignored.
func (c *CPU) sbc(mode addressingMode, operand uint16) {
	c.add(^c.bus.read(operand))
	c.setZN(c.a)
}

// SEC - Set Carry.
func (c *CPU) sec(mode addressingMode, operand uint16) {
	c.p.set(flagCarry)
}

// SED - Set Decimal.
func (c *CPU) sed(mode addressingMode, operand uint16) {
	c.p.set(flagDecimal)
}

// SEI - Set Interrupt.
func (c *CPU) sei(mode addressingMode, operand uint16) {
	c.p.set(flagIRQDisable)
}

// STA - Store A Register.
func (c *CPU) sta(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.a)
}

// STX - Store X Register.
func (c *CPU) stx(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.x)
}

// STY - Store Y Register.
func (c *CPU) sty(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.y)
}

// TAX - Transfer A to X.
func (c *CPU) tax(mode addressingMode, operand uint16) {
	c.x = c.a
	c.setZN(c.x)
}

// TAY - Transfer A to Y.
func (c *CPU) tay(mode addressingMode, operand uint16) {
	c.y = c.a
	c.setZN(c.y)
}

// TSX - Transfer S to X.
func (c *CPU) tsx(mode addressingMode, operand uint16) {
	c.x = c.s
	c.setZN(c.x)
}

// TXA - Transfer X to A.
func (c *CPU) txa(mode addressingMode, operand uint16) {
	c.a = c.x
	c.setZN(c.a)
}

// TXS - Transfer X to S.
func (c *CPU) txs(mode addressingMode, operand uint16) {
	c.s = c.x
}

// TYA - Transfer Y to A.
func (c *CPU) tya(mode addressingMode, operand uint16) {
	c.a = c.y
	c.setZN(c.a)
}

// ALR - AND then LSR of A (unofficial).
func (c *CPU) alr(mode addressingMode, operand uint16) {
	c.a &= c.bus.read(operand)
	c.lsr(accumulator, 0)
}

// ANC - AND, then the negative flag is copied into carry (unofficial).
func (c *CPU) anc(mode addressingMode, operand uint16) {
	c.a &= c.bus.read(operand)
	c.setZN(c.a)
	c.setCarryBit(c.a >> 7)
}

// ARR - AND, ROR of A, then C from bit 6 and V from bit 6 xor bit 5
// (unofficial).
func (c *CPU) arr(mode addressingMode, operand uint16) {
	c.a &= c.bus.read(operand)
	c.ror(accumulator, 0)
	b5 := c.a >> 5 & 1
	b6 := c.a >> 6 & 1
	c.setCarryBit(b6)
	if b6^b5 == 1 {
		c.p.set(flagOverflow)
	} else {
		c.p.clear(flagOverflow)
	}
}

// AXS - X = (A & X) - operand, carry set when no borrow (unofficial).
func (c *CPU) axs(mode addressingMode, operand uint16) {
	operandValue := c.bus.read(operand)
	and := c.a & c.x
	if operandValue <= and {
		c.p.set(flagCarry)
	} else {
		c.p.clear(flagCarry)
	}
	c.x = and - operandValue
	c.setZN(c.x)
}

// DCP - DEC then CMP (unofficial).
func (c *CPU) dcp(mode addressingMode, operand uint16) {
	c.dec(mode, operand)
	c.cmp(mode, operand)
}

// ISB - INC then SBC, also known as ISC (unofficial).
func (c *CPU) isb(mode addressingMode, operand uint16) {
	c.inc(mode, operand)
	c.sbc(mode, operand)
}

// LAX - LDA then TAX (unofficial).
func (c *CPU) lax(mode addressingMode, operand uint16) {
	c.lda(mode, operand)
	c.tax(mode, operand)
}

// LXA - A = A & operand, then TAX (unofficial).
func (c *CPU) lxa(mode addressingMode, operand uint16) {
	c.a &= c.bus.read(operand)
	c.setZN(c.a)
	c.tax(mode, operand)
}

// SAX - store A & X, no flag changes (unofficial).
func (c *CPU) sax(mode addressingMode, operand uint16) {
	c.bus.write(operand, c.a&c.x)
}

// SHA - decoded but has no effect here (unofficial).
func (c *CPU) sha(mode addressingMode, operand uint16) {
}
