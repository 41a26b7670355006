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

// decodeCB handles the CB prefix. There is no table for this prefix; the
// instructions are so uniform that we can directly decode the bit fields:
// bits 3-5 select the shift variant or the bit number, bits 0-2 the target
// register (6 meaning (HL)).
func (z *CPU) decodeCB() {
	// R is incremented for the prefix byte as well
	z.incR()

	z.PC++
	opcode := z.mem.ReadMemory(z.PC)
	bitNumber := (opcode & 0x38) >> 3

	switch {
	case opcode < 0x40:
		// shift/rotate instructions
		operand := z.getOperand(opcode)
		operand = z.shift(bitNumber, operand)
		z.setOperand(opcode, operand)

	case opcode < 0x80:
		// BIT instructions
		operand := z.getOperand(opcode)
		z.flags.Z = operand&(1<<bitNumber) == 0
		z.flags.N = false
		z.flags.H = true
		z.flags.P = z.flags.Z
		z.flags.S = bitNumber == 7 && !z.flags.Z

		// for BIT n,(HL) the X and Y flags are really obtained from an
		// internal temporary register used by the 16 bit arithmetic
		// instructions. that register is not modelled here, so X and Y are
		// set the same way for every BIT opcode, which means they will
		// usually be wrong for BIT n,(HL)
		z.flags.Y = bitNumber == 5 && !z.flags.Z
		z.flags.X = bitNumber == 3 && !z.flags.Z

	case opcode < 0xc0:
		// RES instructions
		z.setOperand(opcode, z.getOperand(opcode)&^(1<<bitNumber))

	default:
		// SET instructions
		z.setOperand(opcode, z.getOperand(opcode)|1<<bitNumber)
	}

	z.cycles += cycleCountsCB[opcode]
}

// shift runs the shift/rotate variant selected by bits 3-5 of a CB opcode.
func (z *CPU) shift(variant uint8, operand uint8) uint8 {
	switch variant {
	case 0:
		return z.rlc(operand)
	case 1:
		return z.rrc(operand)
	case 2:
		return z.rl(operand)
	case 3:
		return z.rr(operand)
	case 4:
		return z.sla(operand)
	case 5:
		return z.sra(operand)
	case 6:
		return z.sll(operand)
	}
	return z.srl(operand)
}
