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

// Flags is the F register broken out into its eight component bits. Most
// instructions touch individual flags so we optimise for that case and only
// assemble the byte form when PUSH AF or a snapshot needs it.
//
// Byte layout: S=7 Z=6 Y=5 H=4 X=3 P=2 N=1 C=0. Y and X are the
// undocumented copies of result bits 5 and 3.
type Flags struct {
	S bool
	Z bool
	Y bool
	H bool
	X bool
	P bool
	N bool
	C bool
}

// Byte assembles the flags into the F register byte.
func (f *Flags) Byte() uint8 {
	var v uint8
	if f.S {
		v |= 0x80
	}
	if f.Z {
		v |= 0x40
	}
	if f.Y {
		v |= 0x20
	}
	if f.H {
		v |= 0x10
	}
	if f.X {
		v |= 0x08
	}
	if f.P {
		v |= 0x04
	}
	if f.N {
		v |= 0x02
	}
	if f.C {
		v |= 0x01
	}
	return v
}

// SetByte breaks the F register byte out into the component flags.
func (f *Flags) SetByte(v uint8) {
	f.S = v&0x80 != 0
	f.Z = v&0x40 != 0
	f.Y = v&0x20 != 0
	f.H = v&0x10 != 0
	f.X = v&0x08 != 0
	f.P = v&0x04 != 0
	f.N = v&0x02 != 0
	f.C = v&0x01 != 0
}

// carry is the C flag as an integer, for the instructions that add it in.
func (f *Flags) carry() int {
	if f.C {
		return 1
	}
	return 0
}

// half is the H flag as an integer, for the block compare flag rules.
func (f *Flags) half() int {
	if f.H {
		return 1
	}
	return 0
}

// setXY sets the undocumented flags from bits 5 and 3 of a result.
func (f *Flags) setXY(result uint8) {
	f.Y = result&0x20 != 0
	f.X = result&0x08 != 0
}

// the 16 bit register pairs are assembled from their component bytes on
// demand.

func (z *CPU) bc() uint16 { return uint16(z.B)<<8 | uint16(z.C) }
func (z *CPU) de() uint16 { return uint16(z.D)<<8 | uint16(z.E) }
func (z *CPU) hl() uint16 { return uint16(z.H)<<8 | uint16(z.L) }

func (z *CPU) setBC(v uint16) {
	z.B = uint8(v >> 8)
	z.C = uint8(v)
}

func (z *CPU) setDE(v uint16) {
	z.D = uint8(v >> 8)
	z.E = uint8(v)
}

func (z *CPU) setHL(v uint16) {
	z.H = uint8(v >> 8)
	z.L = uint8(v)
}

// incR increments the low seven bits of the refresh register. The high bit
// is only ever changed by LD R,A.
func (z *CPU) incR() {
	z.R = (z.R & 0x80) | ((z.R + 1) & 0x7f)
}
