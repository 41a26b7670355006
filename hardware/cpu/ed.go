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

// decodeED handles the instruction following an ED prefix. The table is
// sparse: there are not very many valid ED-prefixed opcodes and several of
// the valid ones are undocumented. Returns false for an opcode with no
// meaning, in which case the caller charges the cost of a NOP.
func (z *CPU) decodeED(opcode uint8) bool {
	switch opcode {
	case 0x40: // IN B, (C)
		z.B = z.in(z.bc())

	case 0x41: // OUT (C), B
		z.io.WritePort(z.bc(), z.B)

	case 0x42: // SBC HL, BC
		z.hlSbc(z.bc())

	case 0x43: // LD (nn), BC
		address := z.readImmediateWord()
		z.mem.WriteMemory(address, z.C)
		z.mem.WriteMemory(address+1, z.B)

	case 0x44, 0x4c, 0x54, 0x5c, 0x64, 0x6c, 0x74, 0x7c: // NEG
		// only 0x44 is documented; the others behave identically
		z.neg()

	case 0x45, 0x55, 0x5d, 0x65, 0x6d, 0x75, 0x7d: // RETN
		z.PC = z.popWord() - 1
		z.IFF1 = z.IFF2

	case 0x46, 0x4e, 0x66, 0x6e: // IM 0
		z.IM = 0

	case 0x47: // LD I, A
		z.I = z.A

	case 0x48: // IN C, (C)
		z.C = z.in(z.bc())

	case 0x49: // OUT (C), C
		z.io.WritePort(z.bc(), z.C)

	case 0x4a: // ADC HL, BC
		z.hlAdc(z.bc())

	case 0x4b: // LD BC, (nn)
		address := z.readImmediateWord()
		z.C = z.mem.ReadMemory(address)
		z.B = z.mem.ReadMemory(address + 1)

	case 0x4d: // RETI
		z.PC = z.popWord() - 1

	case 0x4f: // LD R, A
		// the only way the high bit of R can change
		z.R = z.A

	case 0x50: // IN D, (C)
		z.D = z.in(z.bc())

	case 0x51: // OUT (C), D
		z.io.WritePort(z.bc(), z.D)

	case 0x52: // SBC HL, DE
		z.hlSbc(z.de())

	case 0x53: // LD (nn), DE
		address := z.readImmediateWord()
		z.mem.WriteMemory(address, z.E)
		z.mem.WriteMemory(address+1, z.D)

	case 0x56, 0x76: // IM 1
		z.IM = 1

	case 0x57: // LD A, I
		z.A = z.I
		z.flags.S = z.A&0x80 != 0
		z.flags.Z = z.A == 0
		z.flags.H = false
		z.flags.P = z.IFF2
		z.flags.N = false
		z.flags.setXY(z.A)

	case 0x58: // IN E, (C)
		z.E = z.in(z.bc())

	case 0x59: // OUT (C), E
		z.io.WritePort(z.bc(), z.E)

	case 0x5a: // ADC HL, DE
		z.hlAdc(z.de())

	case 0x5b: // LD DE, (nn)
		address := z.readImmediateWord()
		z.E = z.mem.ReadMemory(address)
		z.D = z.mem.ReadMemory(address + 1)

	case 0x5e, 0x7e: // IM 2
		z.IM = 2

	case 0x5f: // LD A, R
		z.A = z.R
		z.flags.S = z.A&0x80 != 0
		z.flags.Z = z.A == 0
		z.flags.H = false
		z.flags.P = z.IFF2
		z.flags.N = false
		z.flags.setXY(z.A)

	case 0x60: // IN H, (C)
		z.H = z.in(z.bc())

	case 0x61: // OUT (C), H
		z.io.WritePort(z.bc(), z.H)

	case 0x62: // SBC HL, HL
		z.hlSbc(z.hl())

	case 0x63: // LD (nn), HL (undocumented duplicate of 0x22)
		address := z.readImmediateWord()
		z.mem.WriteMemory(address, z.L)
		z.mem.WriteMemory(address+1, z.H)

	case 0x67: // RRD
		z.rrd()

	case 0x68: // IN L, (C)
		z.L = z.in(z.bc())

	case 0x69: // OUT (C), L
		z.io.WritePort(z.bc(), z.L)

	case 0x6a: // ADC HL, HL
		z.hlAdc(z.hl())

	case 0x6b: // LD HL, (nn) (undocumented duplicate of 0x2a)
		address := z.readImmediateWord()
		z.L = z.mem.ReadMemory(address)
		z.H = z.mem.ReadMemory(address + 1)

	case 0x6f: // RLD
		z.rld()

	case 0x70: // IN (C) (undocumented; flags only)
		z.in(z.bc())

	case 0x71: // OUT (C), 0 (undocumented)
		z.io.WritePort(z.bc(), 0)

	case 0x72: // SBC HL, SP
		z.hlSbc(z.SP)

	case 0x73: // LD (nn), SP
		address := z.readImmediateWord()
		z.mem.WriteMemory(address, uint8(z.SP))
		z.mem.WriteMemory(address+1, uint8(z.SP>>8))

	case 0x78: // IN A, (C)
		z.A = z.in(z.bc())

	case 0x79: // OUT (C), A
		z.io.WritePort(z.bc(), z.A)

	case 0x7a: // ADC HL, SP
		z.hlAdc(z.SP)

	case 0x7b: // LD SP, (nn)
		address := z.readImmediateWord()
		z.SP = uint16(z.mem.ReadMemory(address)) | uint16(z.mem.ReadMemory(address+1))<<8

	case 0xa0: // LDI
		z.ldi()

	case 0xa1: // CPI
		z.cpi()

	case 0xa2: // INI
		z.ini()

	case 0xa3: // OUTI
		z.outi()

	case 0xa8: // LDD
		z.ldd()

	case 0xa9: // CPD
		z.cpd()

	case 0xaa: // IND
		z.ind()

	case 0xab: // OUTD
		z.outd()

	case 0xb0: // LDIR
		z.ldi()
		z.repeatWhile(z.bc() != 0)

	case 0xb1: // CPIR
		z.cpi()
		z.repeatWhile(!z.flags.Z && z.bc() != 0)

	case 0xb2: // INIR
		z.ini()
		z.repeatWhile(z.B != 0)

	case 0xb3: // OTIR
		z.outi()
		z.repeatWhile(z.B != 0)

	case 0xb8: // LDDR
		z.ldd()
		z.repeatWhile(z.bc() != 0)

	case 0xb9: // CPDR
		z.cpd()
		z.repeatWhile(!z.flags.Z && z.bc() != 0)

	case 0xba: // INDR
		z.ind()
		z.repeatWhile(z.B != 0)

	case 0xbb: // OTDR
		z.outd()
		z.repeatWhile(z.B != 0)

	default:
		return false
	}

	return true
}

// repeatWhile re-executes a repeating block instruction by backing the PC
// up over the two instruction bytes. Each repeat costs five extra cycles.
func (z *CPU) repeatWhile(condition bool) {
	if condition {
		z.cycles += 5
		z.PC -= 2
	}
}
