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

// decodeIndex handles the DD and FD prefixes. The prefixes are identical
// except for which index register they select, so the active register is
// carried as a pointer rather than duplicating every handler.
//
// An opcode with no indexed form degrades to the unprefixed instruction:
// the PC backs up one byte so the opcode is decoded normally on the next
// RunInstruction, and the prefix costs the same as a NOP. A run of DD/FD
// bytes therefore resolves with only the last prefix taking effect.
func (z *CPU) decodeIndex(idx *uint16) {
	// R is incremented for the prefix byte as well
	z.incR()

	z.PC++
	opcode := z.mem.ReadMemory(z.PC)

	if z.indexInstruction(opcode, idx) {
		z.cycles += cycleCountsIndex[opcode]
	} else {
		z.PC--
		z.cycles += cycleCounts[0x00]
	}
}

// indexOffset returns the target address for an (IX+n)/(IY+n) operand,
// consuming the displacement byte.
func (z *CPU) indexOffset(idx uint16) uint16 {
	z.PC++
	offset := int8(z.mem.ReadMemory(z.PC))
	return idx + uint16(offset)
}

// indexInstruction runs the instruction following a DD or FD prefix with
// idx pointing at the selected index register. Returns false if the opcode
// has no indexed form.
func (z *CPU) indexInstruction(opcode uint8, idx *uint16) bool {
	switch opcode {
	case 0x09: // ADD idx, BC
		z.indexAdd(idx, z.bc())

	case 0x19: // ADD idx, DE
		z.indexAdd(idx, z.de())

	case 0x21: // LD idx, nn
		*idx = z.readImmediateWord()

	case 0x22: // LD (nn), idx
		address := z.readImmediateWord()
		z.mem.WriteMemory(address, uint8(*idx))
		z.mem.WriteMemory(address+1, uint8(*idx>>8))

	case 0x23: // INC idx
		*idx++

	case 0x24: // INC idxH (undocumented)
		*idx = uint16(z.inc(uint8(*idx>>8)))<<8 | *idx&0x00ff

	case 0x25: // DEC idxH (undocumented)
		*idx = uint16(z.dec(uint8(*idx>>8)))<<8 | *idx&0x00ff

	case 0x26: // LD idxH, n (undocumented)
		*idx = uint16(z.readImmediateByte())<<8 | *idx&0x00ff

	case 0x29: // ADD idx, idx
		z.indexAdd(idx, *idx)

	case 0x2a: // LD idx, (nn)
		address := z.readImmediateWord()
		*idx = uint16(z.mem.ReadMemory(address)) | uint16(z.mem.ReadMemory(address+1))<<8

	case 0x2b: // DEC idx
		*idx--

	case 0x2c: // INC idxL (undocumented)
		*idx = uint16(z.inc(uint8(*idx))) | *idx&0xff00

	case 0x2d: // DEC idxL (undocumented)
		*idx = uint16(z.dec(uint8(*idx))) | *idx&0xff00

	case 0x2e: // LD idxL, n (undocumented)
		*idx = uint16(z.readImmediateByte()) | *idx&0xff00

	case 0x34: // INC (idx+n)
		address := z.indexOffset(*idx)
		z.mem.WriteMemory(address, z.inc(z.mem.ReadMemory(address)))

	case 0x35: // DEC (idx+n)
		address := z.indexOffset(*idx)
		z.mem.WriteMemory(address, z.dec(z.mem.ReadMemory(address)))

	case 0x36: // LD (idx+n), n
		address := z.indexOffset(*idx)
		z.mem.WriteMemory(address, z.readImmediateByte())

	case 0x39: // ADD idx, SP
		z.indexAdd(idx, z.SP)

	case 0x44: // LD B, idxH (undocumented)
		z.B = uint8(*idx >> 8)

	case 0x45: // LD B, idxL (undocumented)
		z.B = uint8(*idx)

	case 0x46: // LD B, (idx+n)
		z.B = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x4c: // LD C, idxH (undocumented)
		z.C = uint8(*idx >> 8)

	case 0x4d: // LD C, idxL (undocumented)
		z.C = uint8(*idx)

	case 0x4e: // LD C, (idx+n)
		z.C = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x54: // LD D, idxH (undocumented)
		z.D = uint8(*idx >> 8)

	case 0x55: // LD D, idxL (undocumented)
		z.D = uint8(*idx)

	case 0x56: // LD D, (idx+n)
		z.D = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x5c: // LD E, idxH (undocumented)
		z.E = uint8(*idx >> 8)

	case 0x5d: // LD E, idxL (undocumented)
		z.E = uint8(*idx)

	case 0x5e: // LD E, (idx+n)
		z.E = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x60: // LD idxH, B (undocumented)
		*idx = *idx&0x00ff | uint16(z.B)<<8

	case 0x61: // LD idxH, C (undocumented)
		*idx = *idx&0x00ff | uint16(z.C)<<8

	case 0x62: // LD idxH, D (undocumented)
		*idx = *idx&0x00ff | uint16(z.D)<<8

	case 0x63: // LD idxH, E (undocumented)
		*idx = *idx&0x00ff | uint16(z.E)<<8

	case 0x64: // LD idxH, idxH (undocumented no-op)

	case 0x65: // LD idxH, idxL (undocumented)
		*idx = *idx&0x00ff | *idx<<8

	case 0x66: // LD H, (idx+n)
		z.H = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x67: // LD idxH, A (undocumented)
		*idx = *idx&0x00ff | uint16(z.A)<<8

	case 0x68: // LD idxL, B (undocumented)
		*idx = *idx&0xff00 | uint16(z.B)

	case 0x69: // LD idxL, C (undocumented)
		*idx = *idx&0xff00 | uint16(z.C)

	case 0x6a: // LD idxL, D (undocumented)
		*idx = *idx&0xff00 | uint16(z.D)

	case 0x6b: // LD idxL, E (undocumented)
		*idx = *idx&0xff00 | uint16(z.E)

	case 0x6c: // LD idxL, idxH (undocumented)
		*idx = *idx&0xff00 | *idx>>8

	case 0x6d: // LD idxL, idxL (undocumented no-op)

	case 0x6e: // LD L, (idx+n)
		z.L = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x6f: // LD idxL, A (undocumented)
		*idx = *idx&0xff00 | uint16(z.A)

	case 0x70: // LD (idx+n), B
		z.mem.WriteMemory(z.indexOffset(*idx), z.B)

	case 0x71: // LD (idx+n), C
		z.mem.WriteMemory(z.indexOffset(*idx), z.C)

	case 0x72: // LD (idx+n), D
		z.mem.WriteMemory(z.indexOffset(*idx), z.D)

	case 0x73: // LD (idx+n), E
		z.mem.WriteMemory(z.indexOffset(*idx), z.E)

	case 0x74: // LD (idx+n), H
		z.mem.WriteMemory(z.indexOffset(*idx), z.H)

	case 0x75: // LD (idx+n), L
		z.mem.WriteMemory(z.indexOffset(*idx), z.L)

	case 0x77: // LD (idx+n), A
		z.mem.WriteMemory(z.indexOffset(*idx), z.A)

	case 0x7c: // LD A, idxH (undocumented)
		z.A = uint8(*idx >> 8)

	case 0x7d: // LD A, idxL (undocumented)
		z.A = uint8(*idx)

	case 0x7e: // LD A, (idx+n)
		z.A = z.mem.ReadMemory(z.indexOffset(*idx))

	case 0x84: // ADD A, idxH (undocumented)
		z.add(uint8(*idx >> 8))

	case 0x85: // ADD A, idxL (undocumented)
		z.add(uint8(*idx))

	case 0x86: // ADD A, (idx+n)
		z.add(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0x8c: // ADC A, idxH (undocumented)
		z.adc(uint8(*idx >> 8))

	case 0x8d: // ADC A, idxL (undocumented)
		z.adc(uint8(*idx))

	case 0x8e: // ADC A, (idx+n)
		z.adc(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0x94: // SUB idxH (undocumented)
		z.sub(uint8(*idx >> 8))

	case 0x95: // SUB idxL (undocumented)
		z.sub(uint8(*idx))

	case 0x96: // SUB (idx+n)
		z.sub(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0x9c: // SBC idxH (undocumented)
		z.sbc(uint8(*idx >> 8))

	case 0x9d: // SBC idxL (undocumented)
		z.sbc(uint8(*idx))

	case 0x9e: // SBC A, (idx+n)
		z.sbc(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0xa4: // AND idxH (undocumented)
		z.and(uint8(*idx >> 8))

	case 0xa5: // AND idxL (undocumented)
		z.and(uint8(*idx))

	case 0xa6: // AND (idx+n)
		z.and(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0xac: // XOR idxH (undocumented)
		z.xor(uint8(*idx >> 8))

	case 0xad: // XOR idxL (undocumented)
		z.xor(uint8(*idx))

	case 0xae: // XOR (idx+n)
		z.xor(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0xb4: // OR idxH (undocumented)
		z.or(uint8(*idx >> 8))

	case 0xb5: // OR idxL (undocumented)
		z.or(uint8(*idx))

	case 0xb6: // OR (idx+n)
		z.or(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0xbc: // CP idxH (undocumented)
		z.cp(uint8(*idx >> 8))

	case 0xbd: // CP idxL (undocumented)
		z.cp(uint8(*idx))

	case 0xbe: // CP (idx+n)
		z.cp(z.mem.ReadMemory(z.indexOffset(*idx)))

	case 0xcb: // DDCB/FDCB: indexed bit instructions
		z.decodeIndexCB(*idx)

	case 0xe1: // POP idx
		*idx = z.popWord()

	case 0xe3: // EX (SP), idx
		temp := *idx
		*idx = uint16(z.mem.ReadMemory(z.SP)) | uint16(z.mem.ReadMemory(z.SP+1))<<8
		z.mem.WriteMemory(z.SP, uint8(temp))
		z.mem.WriteMemory(z.SP+1, uint8(temp>>8))

	case 0xe5: // PUSH idx
		z.pushWord(*idx)

	case 0xe9: // JP (idx)
		z.PC = *idx - 1

	case 0xf9: // LD SP, idx
		z.SP = *idx

	default:
		return false
	}

	return true
}

// decodeIndexCB handles the doubly prefixed DDCB/FDCB instructions. The
// displacement byte comes before the opcode. The shift, RES and SET forms
// write their result to memory and, undocumented but well used, also to the
// 8080 register named by the low three bits of the opcode (except 6, the
// documented memory-only form). BIT only performs the test.
func (z *CPU) decodeIndexCB(idx uint16) {
	z.PC++
	offset := int8(z.mem.ReadMemory(z.PC))
	address := idx + uint16(offset)

	z.PC++
	opcode := z.mem.ReadMemory(z.PC)
	bitNumber := (opcode & 0x38) >> 3

	value := -1

	switch {
	case opcode < 0x40:
		// shift/rotate; most of the opcodes in this range are not valid as
		// named, so the variant field alone decides the operation
		v := z.shift(bitNumber, z.mem.ReadMemory(address))
		z.mem.WriteMemory(address, v)
		value = int(v)

	case opcode < 0x80:
		// BIT
		z.flags.N = false
		z.flags.H = true
		z.flags.Z = z.mem.ReadMemory(address)&(1<<bitNumber) == 0
		z.flags.P = z.flags.Z
		z.flags.S = bitNumber == 7 && !z.flags.Z

	case opcode < 0xc0:
		// RES
		v := z.mem.ReadMemory(address) &^ (1 << bitNumber)
		z.mem.WriteMemory(address, v)
		value = int(v)

	default:
		// SET
		v := z.mem.ReadMemory(address) | 1<<bitNumber
		z.mem.WriteMemory(address, v)
		value = int(v)
	}

	// the shift-and-store mirror into the named register
	if value != -1 && opcode&0x07 != 6 {
		z.setOperand(opcode, uint8(value))
	}

	z.cycles += cycleCountsCB[opcode] + 8
}
