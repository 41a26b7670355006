// This file is part of Gopherzx.
//
// Gopherzx is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopherzx is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopherzx.  If not, see <https://www.gnu.org/licenses/>.

package cpu

import (
	"fmt"

	"github.com/kalinsky/gopherzx/hardware/bus"
)

// CPU implements the Zilog Z80 as found in the Spectrum 128K. It is a
// straightforward instruction interpreter: no dynamic recompilation, no
// per-machine-cycle bus states. Memory contention is not modelled.
type CPU struct {
	// the 8080 register file
	A, B, C, D, E, H, L uint8

	// the Z80 shadow copies, exchanged by EX AF,AF' and EXX
	APrime, BPrime, CPrime, DPrime, EPrime, HPrime, LPrime uint8

	// index registers
	IX, IY uint16

	// interrupt vector and memory refresh
	I, R uint8

	SP, PC uint16

	// the F register and its shadow, kept as individual bits
	flags, flagsPrime Flags

	// interrupt mode and the two enable flip-flops
	IM         uint8
	IFF1, IFF2 bool

	// whether a HALT instruction has been executed and not yet interrupted
	Halted bool

	// EI and DI wait one instruction before they take effect. these flags
	// tell us when we're in that wait state
	delayedEI bool
	delayedDI bool

	// cycles spent in the current RunInstruction() call, including prefix
	// processing. zero when RunInstruction() returns; cycles charged by
	// Interrupt() between calls are added to the next call's total
	cycles int

	mem bus.CPUBus
	io  bus.IOBus
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(mem bus.CPUBus, io bus.IOBus) *CPU {
	z := &CPU{mem: mem, io: io}
	z.Reset()
	return z
}

// Plumb new memory and IO buses into the CPU.
func (z *CPU) Plumb(mem bus.CPUBus, io bus.IOBus) {
	z.mem = mem
	z.io = io
}

// Reset reinitialises all registers.
func (z *CPU) Reset() {
	z.A, z.B, z.C, z.D, z.E, z.H, z.L = 0, 0, 0, 0, 0, 0, 0
	z.APrime, z.BPrime, z.CPrime, z.DPrime, z.EPrime, z.HPrime, z.LPrime = 0, 0, 0, 0, 0, 0, 0
	z.IX = 0
	z.IY = 0
	z.I = 0
	z.R = 0
	z.PC = 0
	z.SP = 0xdff0
	z.flags = Flags{}
	z.flagsPrime = Flags{}
	z.IM = 0
	z.IFF1 = false
	z.IFF2 = false
	z.Halted = false
	z.delayedEI = false
	z.delayedDI = false
	z.cycles = 0
}

func (z *CPU) String() string {
	return fmt.Sprintf("AF=%02x%02x BC=%02x%02x DE=%02x%02x HL=%02x%02x IX=%04x IY=%04x SP=%04x PC=%04x IM=%d IFF1=%v",
		z.A, z.flags.Byte(), z.B, z.C, z.D, z.E, z.H, z.L, z.IX, z.IY, z.SP, z.PC, z.IM, z.IFF1)
}

// FlagsByte returns the F register assembled into a byte.
func (z *CPU) FlagsByte() uint8 {
	return z.flags.Byte()
}

// SetFlagsByte breaks a byte out into the F register.
func (z *CPU) SetFlagsByte(v uint8) {
	z.flags.SetByte(v)
}

// FlagsPrimeByte returns the F' register assembled into a byte.
func (z *CPU) FlagsPrimeByte() uint8 {
	return z.flagsPrime.Byte()
}

// SetFlagsPrimeByte breaks a byte out into the F' register.
func (z *CPU) SetFlagsPrimeByte(v uint8) {
	z.flagsPrime.SetByte(v)
}

// RunInstruction retires exactly one instruction and returns the number of
// T cycles it took to run. A DD/FD prefix whose following opcode has no
// indexed form (including another DD/FD) is retired on its own at the cost
// of a NOP, and the following opcode runs on the next call. While halted, each call claims a single cycle of doing nothing so
// that the rest of the machine can still proceed.
func (z *CPU) RunInstruction() int {
	if z.Halted {
		return 1
	}

	// if the previous instruction was a DI or an EI we'll need to disable
	// or enable interrupts after whatever instruction we're about to run is
	// finished
	doingDelayedDI := false
	doingDelayedEI := false
	if z.delayedDI {
		z.delayedDI = false
		doingDelayedDI = true
	} else if z.delayedEI {
		z.delayedEI = false
		doingDelayedEI = true
	}

	// R is incremented at the start of every instruction cycle, before the
	// instruction actually runs
	z.incR()

	opcode := z.mem.ReadMemory(z.PC)
	z.decode(opcode)
	z.PC++

	if doingDelayedDI {
		z.IFF1 = false
		z.IFF2 = false
	} else if doingDelayedEI {
		z.IFF1 = true
		z.IFF2 = true
	}

	// clear out the cycle counter for the next instruction before returning
	// it to the caller
	t := z.cycles
	z.cycles = 0

	return t
}

// Interrupt simulates pulsing the processor's INT (or NMI) pin. The data
// argument is the value on the data bus; it selects the RST instruction in
// mode 0 and the vector table entry in mode 2. The cycles charged are
// carried into the next RunInstruction return value.
func (z *CPU) Interrupt(nonMaskable bool, data uint8) {
	if nonMaskable {
		z.incR()

		// non-maskable interrupts are always handled the same way: save
		// IFF1, clear it, and CALL 0x0066. all interrupts reset the HALT
		// state
		z.Halted = false
		z.IFF2 = z.IFF1
		z.IFF1 = false
		z.pushWord(z.PC)
		z.PC = 0x0066
		z.cycles += 11
		return
	}

	if !z.IFF1 {
		return
	}

	z.incR()
	z.Halted = false
	z.IFF1 = false
	z.IFF2 = false

	switch z.IM {
	case 0:
		// in the 8080-compatible interrupt mode, decode the content of the
		// data bus as an instruction and run it. it's probably a RST, which
		// pushes (PC+1) onto the stack, so decrement PC before decoding and
		// restore the increment afterwards
		z.PC--
		z.decode(data)
		z.PC++
		z.cycles += 2
	case 1:
		// mode 1 is always just RST 0x38
		z.pushWord(z.PC)
		z.PC = 0x0038
		z.cycles += 13
	case 2:
		// mode 2 uses the value on the data bus as an index into the vector
		// table pointed to by the I register
		z.pushWord(z.PC)
		vector := uint16(z.I)<<8 | uint16(data)
		z.PC = uint16(z.mem.ReadMemory(vector)) | uint16(z.mem.ReadMemory(vector+1))<<8
		z.cycles += 19
	}
}

func (z *CPU) pushWord(v uint16) {
	z.SP--
	z.mem.WriteMemory(z.SP, uint8(v>>8))
	z.SP--
	z.mem.WriteMemory(z.SP, uint8(v))
}

func (z *CPU) popWord() uint16 {
	v := uint16(z.mem.ReadMemory(z.SP))
	z.SP++
	v |= uint16(z.mem.ReadMemory(z.SP)) << 8
	z.SP++
	return v
}

// getOperand returns the register (or memory cell) named by the low three
// bits of the opcode, as used by the LD and ALU grids and the CB prefix.
func (z *CPU) getOperand(opcode uint8) uint8 {
	switch opcode & 0x07 {
	case 0:
		return z.B
	case 1:
		return z.C
	case 2:
		return z.D
	case 3:
		return z.E
	case 4:
		return z.H
	case 5:
		return z.L
	case 6:
		return z.mem.ReadMemory(z.hl())
	}
	return z.A
}

// setOperand writes the register (or memory cell) named by the low three
// bits of the opcode.
func (z *CPU) setOperand(opcode uint8, value uint8) {
	switch opcode & 0x07 {
	case 0:
		z.B = value
	case 1:
		z.C = value
	case 2:
		z.D = value
	case 3:
		z.E = value
	case 4:
		z.H = value
	case 5:
		z.L = value
	case 6:
		z.mem.WriteMemory(z.hl(), value)
	case 7:
		z.A = value
	}
}

// readImmediateByte advances the PC over an operand byte and returns it.
func (z *CPU) readImmediateByte() uint8 {
	z.PC++
	return z.mem.ReadMemory(z.PC)
}

// readImmediateWord advances the PC over a little-endian operand word and
// returns it.
func (z *CPU) readImmediateWord() uint16 {
	z.PC++
	lo := z.mem.ReadMemory(z.PC)
	z.PC++
	hi := z.mem.ReadMemory(z.PC)
	return uint16(hi)<<8 | uint16(lo)
}

// the branch helpers set PC to target-1 because the decoder increments PC
// unconditionally at the end of every instruction.

func (z *CPU) conditionalAbsoluteJump(condition bool) {
	if condition {
		z.PC = z.readImmediateWord() - 1
	} else {
		z.PC += 2
	}
}

func (z *CPU) conditionalRelativeJump(condition bool) {
	if condition {
		// a few more cycles to actually take the jump
		z.cycles += 5
		offset := int8(z.mem.ReadMemory(z.PC + 1))
		z.PC += uint16(offset) + 1
	} else {
		z.PC++
	}
}

func (z *CPU) conditionalCall(condition bool) {
	if condition {
		z.cycles += 7
		z.pushWord(z.PC + 3)
		z.PC = z.readImmediateWord() - 1
	} else {
		z.PC += 2
	}
}

func (z *CPU) conditionalReturn(condition bool) {
	if condition {
		z.cycles += 6
		z.PC = z.popWord() - 1
	}
}

func (z *CPU) rst(address uint16) {
	z.pushWord(z.PC + 1)
	z.PC = address - 1
}

// decode runs the instruction encoded by opcode, which has been fetched
// from the PC (or placed on the data bus by a mode 0 interrupt). PC still
// points at the opcode on entry; the caller performs the final increment.
func (z *CPU) decode(opcode uint8) {
	switch {
	case opcode == 0x76:
		// HALT is handled up front because it falls where LD (HL),(HL)
		// ought to be in the load grid
		z.Halted = true

	case opcode >= 0x40 && opcode < 0x80:
		// the entire range is 8 bit register-to-register loads
		operand := z.getOperand(opcode)
		z.setOperand(opcode>>3, operand)

	case opcode >= 0x80 && opcode < 0xc0:
		// the 8 bit ALU grid
		operand := z.getOperand(opcode)
		switch (opcode & 0x38) >> 3 {
		case 0:
			z.add(operand)
		case 1:
			z.adc(operand)
		case 2:
			z.sub(operand)
		case 3:
			z.sbc(operand)
		case 4:
			z.and(operand)
		case 5:
			z.xor(operand)
		case 6:
			z.or(operand)
		case 7:
			z.cp(operand)
		}

	default:
		z.decodeOther(opcode)
	}

	// the base opcode's cycle count. prefix handlers have added their extra
	// cycles already and the prefix bytes themselves cost nothing in the
	// table
	z.cycles += cycleCounts[opcode]
}

// decodeOther handles the less formulaic instructions: everything outside
// the LD and ALU grids.
func (z *CPU) decodeOther(opcode uint8) {
	switch opcode {
	case 0x00: // NOP

	case 0x01: // LD BC, nn
		z.setBC(z.readImmediateWord())

	case 0x02: // LD (BC), A
		z.mem.WriteMemory(z.bc(), z.A)

	case 0x03: // INC BC
		z.setBC(z.bc() + 1)

	case 0x04: // INC B
		z.B = z.inc(z.B)

	case 0x05: // DEC B
		z.B = z.dec(z.B)

	case 0x06: // LD B, n
		z.B = z.readImmediateByte()

	case 0x07: // RLCA
		// RLCA is a version of RLC A that affects fewer flags. the same
		// applies to RRCA, RLA and RRA
		s, zf, p := z.flags.S, z.flags.Z, z.flags.P
		z.A = z.rlc(z.A)
		z.flags.S, z.flags.Z, z.flags.P = s, zf, p

	case 0x08: // EX AF, AF'
		z.A, z.APrime = z.APrime, z.A
		z.flags, z.flagsPrime = z.flagsPrime, z.flags

	case 0x09: // ADD HL, BC
		z.hlAdd(z.bc())

	case 0x0a: // LD A, (BC)
		z.A = z.mem.ReadMemory(z.bc())

	case 0x0b: // DEC BC
		z.setBC(z.bc() - 1)

	case 0x0c: // INC C
		z.C = z.inc(z.C)

	case 0x0d: // DEC C
		z.C = z.dec(z.C)

	case 0x0e: // LD C, n
		z.C = z.readImmediateByte()

	case 0x0f: // RRCA
		s, zf, p := z.flags.S, z.flags.Z, z.flags.P
		z.A = z.rrc(z.A)
		z.flags.S, z.flags.Z, z.flags.P = s, zf, p

	case 0x10: // DJNZ n
		z.B--
		z.conditionalRelativeJump(z.B != 0)

	case 0x11: // LD DE, nn
		z.setDE(z.readImmediateWord())

	case 0x12: // LD (DE), A
		z.mem.WriteMemory(z.de(), z.A)

	case 0x13: // INC DE
		z.setDE(z.de() + 1)

	case 0x14: // INC D
		z.D = z.inc(z.D)

	case 0x15: // DEC D
		z.D = z.dec(z.D)

	case 0x16: // LD D, n
		z.D = z.readImmediateByte()

	case 0x17: // RLA
		s, zf, p := z.flags.S, z.flags.Z, z.flags.P
		z.A = z.rl(z.A)
		z.flags.S, z.flags.Z, z.flags.P = s, zf, p

	case 0x18: // JR n
		offset := int8(z.mem.ReadMemory(z.PC + 1))
		z.PC += uint16(offset) + 1

	case 0x19: // ADD HL, DE
		z.hlAdd(z.de())

	case 0x1a: // LD A, (DE)
		z.A = z.mem.ReadMemory(z.de())

	case 0x1b: // DEC DE
		z.setDE(z.de() - 1)

	case 0x1c: // INC E
		z.E = z.inc(z.E)

	case 0x1d: // DEC E
		z.E = z.dec(z.E)

	case 0x1e: // LD E, n
		z.E = z.readImmediateByte()

	case 0x1f: // RRA
		s, zf, p := z.flags.S, z.flags.Z, z.flags.P
		z.A = z.rr(z.A)
		z.flags.S, z.flags.Z, z.flags.P = s, zf, p

	case 0x20: // JR NZ, n
		z.conditionalRelativeJump(!z.flags.Z)

	case 0x21: // LD HL, nn
		z.setHL(z.readImmediateWord())

	case 0x22: // LD (nn), HL
		address := z.readImmediateWord()
		z.mem.WriteMemory(address, z.L)
		z.mem.WriteMemory(address+1, z.H)

	case 0x23: // INC HL
		z.setHL(z.hl() + 1)

	case 0x24: // INC H
		z.H = z.inc(z.H)

	case 0x25: // DEC H
		z.H = z.dec(z.H)

	case 0x26: // LD H, n
		z.H = z.readImmediateByte()

	case 0x27: // DAA
		z.daa()

	case 0x28: // JR Z, n
		z.conditionalRelativeJump(z.flags.Z)

	case 0x29: // ADD HL, HL
		z.hlAdd(z.hl())

	case 0x2a: // LD HL, (nn)
		address := z.readImmediateWord()
		z.L = z.mem.ReadMemory(address)
		z.H = z.mem.ReadMemory(address + 1)

	case 0x2b: // DEC HL
		z.setHL(z.hl() - 1)

	case 0x2c: // INC L
		z.L = z.inc(z.L)

	case 0x2d: // DEC L
		z.L = z.dec(z.L)

	case 0x2e: // LD L, n
		z.L = z.readImmediateByte()

	case 0x2f: // CPL
		z.A = ^z.A
		z.flags.N = true
		z.flags.H = true
		z.flags.setXY(z.A)

	case 0x30: // JR NC, n
		z.conditionalRelativeJump(!z.flags.C)

	case 0x31: // LD SP, nn
		z.SP = z.readImmediateWord()

	case 0x32: // LD (nn), A
		z.mem.WriteMemory(z.readImmediateWord(), z.A)

	case 0x33: // INC SP
		z.SP++

	case 0x34: // INC (HL)
		z.mem.WriteMemory(z.hl(), z.inc(z.mem.ReadMemory(z.hl())))

	case 0x35: // DEC (HL)
		z.mem.WriteMemory(z.hl(), z.dec(z.mem.ReadMemory(z.hl())))

	case 0x36: // LD (HL), n
		z.mem.WriteMemory(z.hl(), z.readImmediateByte())

	case 0x37: // SCF
		z.flags.N = false
		z.flags.H = false
		z.flags.C = true
		z.flags.setXY(z.A)

	case 0x38: // JR C, n
		z.conditionalRelativeJump(z.flags.C)

	case 0x39: // ADD HL, SP
		z.hlAdd(z.SP)

	case 0x3a: // LD A, (nn)
		z.A = z.mem.ReadMemory(z.readImmediateWord())

	case 0x3b: // DEC SP
		z.SP--

	case 0x3c: // INC A
		z.A = z.inc(z.A)

	case 0x3d: // DEC A
		z.A = z.dec(z.A)

	case 0x3e: // LD A, n
		z.A = z.readImmediateByte()

	case 0x3f: // CCF
		z.flags.N = false
		z.flags.H = z.flags.C
		z.flags.C = !z.flags.C
		z.flags.setXY(z.A)

	case 0xc0: // RET NZ
		z.conditionalReturn(!z.flags.Z)

	case 0xc1: // POP BC
		z.setBC(z.popWord())

	case 0xc2: // JP NZ, nn
		z.conditionalAbsoluteJump(!z.flags.Z)

	case 0xc3: // JP nn
		z.PC = z.readImmediateWord() - 1

	case 0xc4: // CALL NZ, nn
		z.conditionalCall(!z.flags.Z)

	case 0xc5: // PUSH BC
		z.pushWord(z.bc())

	case 0xc6: // ADD A, n
		z.add(z.readImmediateByte())

	case 0xc7: // RST 00h
		z.rst(0x00)

	case 0xc8: // RET Z
		z.conditionalReturn(z.flags.Z)

	case 0xc9: // RET
		z.PC = z.popWord() - 1

	case 0xca: // JP Z, nn
		z.conditionalAbsoluteJump(z.flags.Z)

	case 0xcb:
		z.decodeCB()

	case 0xcc: // CALL Z, nn
		z.conditionalCall(z.flags.Z)

	case 0xcd: // CALL nn
		z.pushWord(z.PC + 3)
		z.PC = z.readImmediateWord() - 1

	case 0xce: // ADC A, n
		z.adc(z.readImmediateByte())

	case 0xcf: // RST 08h
		z.rst(0x08)

	case 0xd0: // RET NC
		z.conditionalReturn(!z.flags.C)

	case 0xd1: // POP DE
		z.setDE(z.popWord())

	case 0xd2: // JP NC, nn
		z.conditionalAbsoluteJump(!z.flags.C)

	case 0xd3: // OUT (n), A
		z.io.WritePort(uint16(z.A)<<8|uint16(z.readImmediateByte()), z.A)

	case 0xd4: // CALL NC, nn
		z.conditionalCall(!z.flags.C)

	case 0xd5: // PUSH DE
		z.pushWord(z.de())

	case 0xd6: // SUB n
		z.sub(z.readImmediateByte())

	case 0xd7: // RST 10h
		z.rst(0x10)

	case 0xd8: // RET C
		z.conditionalReturn(z.flags.C)

	case 0xd9: // EXX
		z.B, z.BPrime = z.BPrime, z.B
		z.C, z.CPrime = z.CPrime, z.C
		z.D, z.DPrime = z.DPrime, z.D
		z.E, z.EPrime = z.EPrime, z.E
		z.H, z.HPrime = z.HPrime, z.H
		z.L, z.LPrime = z.LPrime, z.L

	case 0xda: // JP C, nn
		z.conditionalAbsoluteJump(z.flags.C)

	case 0xdb: // IN A, (n)
		z.A = z.io.ReadPort(uint16(z.A)<<8 | uint16(z.readImmediateByte()))

	case 0xdc: // CALL C, nn
		z.conditionalCall(z.flags.C)

	case 0xdd: // DD prefix: IX instructions
		z.decodeIndex(&z.IX)

	case 0xde: // SBC A, n
		z.sbc(z.readImmediateByte())

	case 0xdf: // RST 18h
		z.rst(0x18)

	case 0xe0: // RET PO
		z.conditionalReturn(!z.flags.P)

	case 0xe1: // POP HL
		z.setHL(z.popWord())

	case 0xe2: // JP PO, nn
		z.conditionalAbsoluteJump(!z.flags.P)

	case 0xe3: // EX (SP), HL
		temp := z.mem.ReadMemory(z.SP)
		z.mem.WriteMemory(z.SP, z.L)
		z.L = temp
		temp = z.mem.ReadMemory(z.SP + 1)
		z.mem.WriteMemory(z.SP+1, z.H)
		z.H = temp

	case 0xe4: // CALL PO, nn
		z.conditionalCall(!z.flags.P)

	case 0xe5: // PUSH HL
		z.pushWord(z.hl())

	case 0xe6: // AND n
		z.and(z.readImmediateByte())

	case 0xe7: // RST 20h
		z.rst(0x20)

	case 0xe8: // RET PE
		z.conditionalReturn(z.flags.P)

	case 0xe9: // JP (HL)
		z.PC = z.hl() - 1

	case 0xea: // JP PE, nn
		z.conditionalAbsoluteJump(z.flags.P)

	case 0xeb: // EX DE, HL
		z.D, z.H = z.H, z.D
		z.E, z.L = z.L, z.E

	case 0xec: // CALL PE, nn
		z.conditionalCall(z.flags.P)

	case 0xed: // ED prefix
		z.incR()
		z.PC++
		op := z.mem.ReadMemory(z.PC)
		if z.decodeED(op) {
			z.cycles += cycleCountsED[op]
		} else {
			// unrecognised ED opcodes are two byte, eight cycle NOPs
			z.cycles += 8
		}

	case 0xee: // XOR n
		z.xor(z.readImmediateByte())

	case 0xef: // RST 28h
		z.rst(0x28)

	case 0xf0: // RET P
		z.conditionalReturn(!z.flags.S)

	case 0xf1: // POP AF
		v := z.popWord()
		z.flags.SetByte(uint8(v))
		z.A = uint8(v >> 8)

	case 0xf2: // JP P, nn
		z.conditionalAbsoluteJump(!z.flags.S)

	case 0xf3: // DI
		// DI doesn't actually take effect until after the next instruction
		z.delayedDI = true

	case 0xf4: // CALL P, nn
		z.conditionalCall(!z.flags.S)

	case 0xf5: // PUSH AF
		z.pushWord(uint16(z.A)<<8 | uint16(z.flags.Byte()))

	case 0xf6: // OR n
		z.or(z.readImmediateByte())

	case 0xf7: // RST 30h
		z.rst(0x30)

	case 0xf8: // RET M
		z.conditionalReturn(z.flags.S)

	case 0xf9: // LD SP, HL
		z.SP = z.hl()

	case 0xfa: // JP M, nn
		z.conditionalAbsoluteJump(z.flags.S)

	case 0xfb: // EI
		// EI doesn't actually take effect until after the next instruction
		z.delayedEI = true

	case 0xfc: // CALL M, nn
		z.conditionalCall(z.flags.S)

	case 0xfd: // FD prefix: IY instructions
		z.decodeIndex(&z.IY)

	case 0xfe: // CP n
		z.cp(z.readImmediateByte())

	case 0xff: // RST 38h
		z.rst(0x38)
	}
}
