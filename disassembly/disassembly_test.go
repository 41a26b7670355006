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

package disassembly_test

import (
	"testing"

	"github.com/kalinsky/gopherzx/disassembly"
	"github.com/kalinsky/gopherzx/test"
)

type flatMem [0x10000]uint8

func (m *flatMem) ReadMemory(address uint16) uint8       { return m[address] }
func (m *flatMem) WriteMemory(address uint16, data uint8) { m[address] = data }

func put(m *flatMem, origin uint16, bytes ...uint8) {
	copy(m[origin:], bytes)
}

func disasm(t *testing.T, m *flatMem, address uint16, mnemonic, operand string, size int) {
	t.Helper()

	e := disassembly.Disassemble(m, address)
	test.Equate(t, e.Mnemonic, mnemonic)
	test.Equate(t, e.Operand, operand)
	test.Equate(t, e.Bytes, size)
}

func TestBaseOpcodes(t *testing.T) {
	m := &flatMem{}

	put(m, 0x100, 0x00)
	disasm(t, m, 0x100, "nop", "", 1)

	put(m, 0x110, 0x41)
	disasm(t, m, 0x110, "ld", "b, c", 1)

	put(m, 0x120, 0x36, 0x55)
	disasm(t, m, 0x120, "ld", "(hl), $55", 2)

	put(m, 0x130, 0x21, 0x34, 0x12)
	disasm(t, m, 0x130, "ld", "hl, $1234", 3)

	put(m, 0x140, 0x76)
	disasm(t, m, 0x140, "halt", "", 1)

	put(m, 0x150, 0xc3, 0x00, 0x80)
	disasm(t, m, 0x150, "jp", "$8000", 3)

	put(m, 0x160, 0xd8)
	disasm(t, m, 0x160, "ret", "c", 1)

	put(m, 0x170, 0xc7)
	disasm(t, m, 0x170, "rst", "$00", 1)

	put(m, 0x180, 0xf5)
	disasm(t, m, 0x180, "push", "af", 1)
}

func TestRelativeTargets(t *testing.T) {
	m := &flatMem{}

	// JR resolves to the absolute target
	put(m, 0x200, 0x18, 0x10)
	disasm(t, m, 0x200, "jr", "$0212", 2)

	put(m, 0x210, 0x20, 0xfe)
	disasm(t, m, 0x210, "jr", "nz, $0210", 2)

	put(m, 0x220, 0x10, 0x00)
	disasm(t, m, 0x220, "djnz", "$0222", 2)
}

func TestCBOpcodes(t *testing.T) {
	m := &flatMem{}

	put(m, 0x300, 0xcb, 0x00)
	disasm(t, m, 0x300, "rlc", "b", 2)

	put(m, 0x310, 0xcb, 0x7e)
	disasm(t, m, 0x310, "bit", "7, (hl)", 2)

	put(m, 0x320, 0xcb, 0xc7)
	disasm(t, m, 0x320, "set", "0, a", 2)
}

func TestEDOpcodes(t *testing.T) {
	m := &flatMem{}

	put(m, 0x400, 0xed, 0xb0)
	disasm(t, m, 0x400, "ldir", "", 2)

	put(m, 0x410, 0xed, 0x47)
	disasm(t, m, 0x410, "ld", "i, a", 2)

	put(m, 0x420, 0xed, 0x43, 0x00, 0xc0)
	disasm(t, m, 0x420, "ld", "($c000), bc", 4)

	put(m, 0x430, 0xed, 0x78)
	disasm(t, m, 0x430, "in", "a, (c)", 2)
}

func TestIndexedOpcodes(t *testing.T) {
	m := &flatMem{}

	put(m, 0x500, 0xdd, 0x7e, 0x05)
	disasm(t, m, 0x500, "ld", "a, (ix+$05)", 3)

	put(m, 0x510, 0xfd, 0x7e, 0xfb)
	disasm(t, m, 0x510, "ld", "a, (iy-$05)", 3)

	put(m, 0x520, 0xdd, 0x21, 0x34, 0x12)
	disasm(t, m, 0x520, "ld", "ix, $1234", 4)

	put(m, 0x530, 0xdd, 0xcb, 0x02, 0x46)
	disasm(t, m, 0x530, "bit", "0, (ix+$02)", 4)

	put(m, 0x540, 0xdd, 0x24)
	disasm(t, m, 0x540, "inc", "ixh", 2)
}
