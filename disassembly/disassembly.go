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

// Package disassembly decodes Z80 machine code back into assembly
// mnemonics. It is entirely separate from the execution path: the CPU
// package knows nothing about it and it holds no state beyond the memory
// it is asked to read.
package disassembly

import (
	"fmt"
	"io"

	"github.com/kalinsky/gopherzx/hardware/bus"
)

var mnemonics = [256]string{
	"nop", "ld", "ld", "inc", "inc", "dec", "ld", "rlca",
	"ex", "add", "ld", "dec", "inc", "dec", "ld", "rrca",
	"djnz", "ld", "ld", "inc", "inc", "dec", "ld", "rla",
	"jr", "add", "ld", "dec", "inc", "dec", "ld", "rra",
	"jr", "ld", "ld", "inc", "inc", "dec", "ld", "daa",
	"jr", "add", "ld", "dec", "inc", "dec", "ld", "cpl",
	"jr", "ld", "ld", "inc", "inc", "dec", "ld", "scf",
	"jr", "add", "ld", "dec", "inc", "dec", "ld", "ccf",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "halt", "ld",
	"ld", "ld", "ld", "ld", "ld", "ld", "ld", "ld",
	"add", "add", "add", "add", "add", "add", "add", "add",
	"adc", "adc", "adc", "adc", "adc", "adc", "adc", "adc",
	"sub", "sub", "sub", "sub", "sub", "sub", "sub", "sub",
	"sbc", "sbc", "sbc", "sbc", "sbc", "sbc", "sbc", "sbc",
	"and", "and", "and", "and", "and", "and", "and", "and",
	"xor", "xor", "xor", "xor", "xor", "xor", "xor", "xor",
	"or", "or", "or", "or", "or", "or", "or", "or",
	"cp", "cp", "cp", "cp", "cp", "cp", "cp", "cp",
	"ret", "pop", "jp", "jp", "call", "push", "add", "rst",
	"ret", "ret", "jp", "", "call", "call", "adc", "rst",
	"ret", "pop", "jp", "out", "call", "push", "sub", "rst",
	"ret", "exx", "jp", "in", "call", "", "sbc", "rst",
	"ret", "pop", "jp", "ex", "call", "push", "and", "rst",
	"ret", "jp", "jp", "ex", "call", "", "xor", "rst",
	"ret", "pop", "jp", "di", "call", "push", "or", "rst",
	"ret", "ld", "jp", "ei", "call", "", "cp", "rst",
}

var reg8 = [8]string{"b", "c", "d", "e", "h", "l", "(hl)", "a"}
var reg16 = [4]string{"bc", "de", "hl", "sp"}
var reg16af = [4]string{"bc", "de", "hl", "af"}
var conditions = [8]string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}
var shifts = [8]string{"rlc", "rrc", "rl", "rr", "sla", "sra", "sll", "srl"}
var interruptModes = [8]int{0, 0, 1, 2, 0, 0, 1, 2}

// Entry is one disassembled instruction.
type Entry struct {
	Address  uint16
	Bytes    int
	Mnemonic string
	Operand  string
}

func (e Entry) String() string {
	if e.Operand == "" {
		return fmt.Sprintf("%04x  %s", e.Address, e.Mnemonic)
	}
	return fmt.Sprintf("%04x  %s %s", e.Address, e.Mnemonic, e.Operand)
}

// decoder walks memory and accumulates the byte count.
type decoder struct {
	mem  bus.CPUBus
	addr uint16
	size int

	// the active index register name ("" when unprefixed) and the decoded
	// (ix+d) operand text
	index string
	disp  string
}

func (d *decoder) fetchByte() uint8 {
	b := d.mem.ReadMemory(d.addr)
	d.addr++
	d.size++
	return b
}

func (d *decoder) fetchWord() uint16 {
	lo := d.fetchByte()
	hi := d.fetchByte()
	return uint16(hi)<<8 | uint16(lo)
}

// fetchRel resolves a relative branch operand to its target address.
func (d *decoder) fetchRel() uint16 {
	offset := int8(d.fetchByte())
	return d.addr + uint16(offset)
}

// fetchDisp formats the (ix+d)/(iy+d) operand.
func (d *decoder) fetchDisp() {
	offset := int8(d.fetchByte())
	switch {
	case offset < 0:
		d.disp = fmt.Sprintf("(%s-$%02x)", d.index, -int(offset))
	case offset > 0:
		d.disp = fmt.Sprintf("(%s+$%02x)", d.index, offset)
	default:
		d.disp = fmt.Sprintf("(%s)", d.index)
	}
}

// reg8Name is the 8 bit register name with the index register substituted
// for H and L under a DD/FD prefix.
func (d *decoder) reg8Name(code uint8) string {
	if d.index != "" {
		switch code {
		case 4:
			return d.index + "h"
		case 5:
			return d.index + "l"
		}
	}
	return reg8[code&0x07]
}

// reg16Name is the 16 bit register pair name with hl replaced by the index
// register under a prefix.
func (d *decoder) reg16Name(code uint8, withAF bool) string {
	if d.index != "" && code&0x03 == 2 {
		return d.index
	}
	if withAF {
		return reg16af[code&0x03]
	}
	return reg16[code&0x03]
}

// hlName is "hl", "ix" or "iy" depending on the prefix.
func (d *decoder) hlName() string {
	if d.index != "" {
		return d.index
	}
	return "hl"
}

// Disassemble decodes the instruction at the address, following any DD/FD
// prefix bytes.
func Disassemble(mem bus.CPUBus, address uint16) Entry {
	d := &decoder{mem: mem, addr: address}

	op := d.fetchByte()
	for op == 0xdd || op == 0xfd {
		if op == 0xdd {
			d.index = "ix"
		} else {
			d.index = "iy"
		}
		op = d.fetchByte()
	}

	e := Entry{Address: address}

	switch op {
	case 0xed:
		e.Mnemonic, e.Operand = d.decodeED(d.fetchByte())
	case 0xcb:
		e.Mnemonic, e.Operand = d.decodeCB()
	default:
		e.Mnemonic = mnemonics[op]
		e.Operand = d.decodeOperand(op)
	}

	e.Bytes = d.size

	return e
}

// Dump writes count disassembled instructions starting at address.
func Dump(w io.Writer, mem bus.CPUBus, address uint16, count int) {
	for i := 0; i < count; i++ {
		e := Disassemble(mem, address)
		fmt.Fprintln(w, e.String())
		address += uint16(e.Bytes)
	}
}

func (d *decoder) decodeED(op uint8) (string, string) {
	a := (op & 0x38) >> 3
	f := (op & 0x30) >> 4

	switch {
	case op&0xc7 == 0x40:
		if a == 6 {
			return "in", "(c)"
		}
		return "in", fmt.Sprintf("%s, (c)", reg8[a])
	case op&0xc7 == 0x41:
		if a == 6 {
			return "out", "(c), 0"
		}
		return "out", fmt.Sprintf("(c), %s", reg8[a])
	case op&0xc7 == 0x42:
		if op&0x08 != 0 {
			return "adc", fmt.Sprintf("hl, %s", reg16[f])
		}
		return "sbc", fmt.Sprintf("hl, %s", reg16[f])
	case op&0xcf == 0x43:
		return "ld", fmt.Sprintf("($%04x), %s", d.fetchWord(), reg16[f])
	case op&0xcf == 0x4b:
		return "ld", fmt.Sprintf("%s, ($%04x)", reg16[f], d.fetchWord())
	case op == 0x4d:
		return "reti", ""
	case op&0xc7 == 0x44:
		return "neg", ""
	case op&0xc7 == 0x45:
		return "retn", ""
	case op&0xc7 == 0x46:
		return "im", fmt.Sprintf("%d", interruptModes[a])
	}

	switch op {
	case 0x47:
		return "ld", "i, a"
	case 0x4f:
		return "ld", "r, a"
	case 0x57:
		return "ld", "a, i"
	case 0x5f:
		return "ld", "a, r"
	case 0x67:
		return "rrd", ""
	case 0x6f:
		return "rld", ""
	case 0xa0:
		return "ldi", ""
	case 0xa1:
		return "cpi", ""
	case 0xa2:
		return "ini", ""
	case 0xa3:
		return "outi", ""
	case 0xa8:
		return "ldd", ""
	case 0xa9:
		return "cpd", ""
	case 0xaa:
		return "ind", ""
	case 0xab:
		return "outd", ""
	case 0xb0:
		return "ldir", ""
	case 0xb1:
		return "cpir", ""
	case 0xb2:
		return "inir", ""
	case 0xb3:
		return "otir", ""
	case 0xb8:
		return "lddr", ""
	case 0xb9:
		return "cpdr", ""
	case 0xba:
		return "indr", ""
	case 0xbb:
		return "otdr", ""
	}

	return "nop?", ""
}

func (d *decoder) decodeCB() (string, string) {
	if d.index != "" {
		d.fetchDisp()
	}

	op := d.fetchByte()
	a := (op & 0x38) >> 3
	b := op & 0x07

	if op < 0x40 {
		if d.index != "" {
			return shifts[a], d.disp
		}
		return shifts[a], reg8[b]
	}

	var mnemonic string
	switch op & 0xc0 {
	case 0x40:
		mnemonic = "bit"
	case 0x80:
		mnemonic = "res"
	default:
		mnemonic = "set"
	}

	if d.index != "" {
		return mnemonic, fmt.Sprintf("%d, %s", a, d.disp)
	}
	return mnemonic, fmt.Sprintf("%d, %s", a, reg8[b])
}

func (d *decoder) decodeOperand(op uint8) string {
	a := (op & 0x38) >> 3
	b := op & 0x07

	// the LD and ALU grids
	if op >= 0x40 && op < 0x80 {
		if op == 0x76 {
			return ""
		}
		if d.index != "" && (a == 6 || b == 6) {
			d.fetchDisp()
			if a == 6 {
				return fmt.Sprintf("%s, %s", d.disp, reg8[b])
			}
			return fmt.Sprintf("%s, %s", reg8[a], d.disp)
		}
		return fmt.Sprintf("%s, %s", d.reg8Name(a), d.reg8Name(b))
	}

	if op >= 0x80 && op < 0xc0 {
		if d.index != "" && b == 6 {
			d.fetchDisp()
			return d.disp
		}
		return d.reg8Name(b)
	}

	switch {
	case op == 0x01 || op == 0x11 || op == 0x21 || op == 0x31:
		return fmt.Sprintf("%s, $%04x", d.reg16Name((op&0x30)>>4, false), d.fetchWord())

	case op&0xc7 == 0x06: // LD r8, n
		if a == 6 && d.index != "" {
			d.fetchDisp()
			return fmt.Sprintf("%s, $%02x", d.disp, d.fetchByte())
		}
		if a == 6 {
			return fmt.Sprintf("(hl), $%02x", d.fetchByte())
		}
		return fmt.Sprintf("%s, $%02x", d.reg8Name(a), d.fetchByte())

	case op&0xc7 == 0x04 || op&0xc7 == 0x05: // INC/DEC r8
		if a == 6 && d.index != "" {
			d.fetchDisp()
			return d.disp
		}
		return d.reg8Name(a)

	case op&0xc7 == 0x03: // INC/DEC r16
		return d.reg16Name((op&0x30)>>4, false)

	case op&0xcf == 0x09: // ADD hl, r16
		return fmt.Sprintf("%s, %s", d.hlName(), d.reg16Name((op&0x30)>>4, false))

	case op == 0x02:
		return "(bc), a"
	case op == 0x08:
		return "af, af'"
	case op == 0x0a:
		return "a, (bc)"
	case op == 0x12:
		return "(de), a"
	case op == 0x1a:
		return "a, (de)"
	case op == 0xd3:
		return fmt.Sprintf("($%02x), a", d.fetchByte())
	case op == 0xdb:
		return fmt.Sprintf("a, ($%02x)", d.fetchByte())
	case op == 0xe3:
		return fmt.Sprintf("(sp), %s", d.hlName())
	case op == 0xe9:
		return fmt.Sprintf("(%s)", d.hlName())
	case op == 0xeb:
		return "de, hl"
	case op == 0xf9:
		return fmt.Sprintf("sp, %s", d.hlName())
	case op == 0xc3 || op == 0xcd:
		return fmt.Sprintf("$%04x", d.fetchWord())
	case op == 0x22:
		return fmt.Sprintf("($%04x), %s", d.fetchWord(), d.hlName())
	case op == 0x2a:
		return fmt.Sprintf("%s, ($%04x)", d.hlName(), d.fetchWord())
	case op == 0x32:
		return fmt.Sprintf("($%04x), a", d.fetchWord())
	case op == 0x3a:
		return fmt.Sprintf("a, ($%04x)", d.fetchWord())
	case op == 0x10 || op == 0x18:
		return fmt.Sprintf("$%04x", d.fetchRel())
	case op&0xe7 == 0x20: // JR cc, n
		return fmt.Sprintf("%s, $%04x", conditions[(op&0x18)>>3], d.fetchRel())
	case op&0xc7 == 0xc0: // RET cc
		return conditions[a]
	case op&0xc7 == 0xc2 || op&0xc7 == 0xc4: // JP/CALL cc, nn
		return fmt.Sprintf("%s, $%04x", conditions[a], d.fetchWord())
	case op&0xc7 == 0xc6: // ALU A, n
		return fmt.Sprintf("$%02x", d.fetchByte())
	case op&0xc7 == 0xc7: // RST
		return fmt.Sprintf("$%02x", op&0x38)
	case op&0xcb == 0xc1: // PUSH/POP r16
		return d.reg16Name((op&0x30)>>4, true)
	}

	return ""
}
