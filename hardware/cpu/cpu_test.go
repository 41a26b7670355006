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

package cpu_test

import (
	"testing"

	"github.com/kalinsky/gopherzx/hardware/cpu"
	"github.com/kalinsky/gopherzx/test"
)

// mockMem is a flat 64 KiB memory and a recording IO space.
type mockMem struct {
	internal [0x10000]uint8

	lastPort  uint16
	lastData  uint8
	portValue uint8
}

func newMockMem() *mockMem {
	return &mockMem{portValue: 0xff}
}

func (m *mockMem) putInstructions(origin uint16, bytes ...uint8) uint16 {
	for i, b := range bytes {
		m.internal[origin+uint16(i)] = b
	}
	return origin + uint16(len(bytes))
}

func (m *mockMem) ReadMemory(address uint16) uint8 {
	return m.internal[address]
}

func (m *mockMem) WriteMemory(address uint16, data uint8) {
	m.internal[address] = data
}

func (m *mockMem) ReadPort(port uint16) uint8 {
	m.lastPort = port
	return m.portValue
}

func (m *mockMem) WritePort(port uint16, data uint8) {
	m.lastPort = port
	m.lastData = data
}

func newTestCPU() (*cpu.CPU, *mockMem) {
	mem := newMockMem()
	return cpu.NewCPU(mem, mem), mem
}

func step(t *testing.T, z *cpu.CPU) int {
	t.Helper()
	return z.RunInstruction()
}

func TestFlagsRoundTrip(t *testing.T) {
	z, _ := newTestCPU()

	for v := 0; v < 256; v++ {
		z.SetFlagsByte(uint8(v))
		test.Equate(t, z.FlagsByte(), uint8(v))
	}
}

func TestPushPopAF(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0xf1, 0xf5) // POP AF; PUSH AF
	z.PC = 0x8000
	z.SP = 0x9000
	mem.internal[0x9000] = 0xa5
	mem.internal[0x9001] = 0x3c

	step(t, z) // POP AF
	test.Equate(t, z.A, 0x3c)
	step(t, z) // PUSH AF
	test.Equate(t, mem.internal[0x9000], 0xa5)
	test.Equate(t, mem.internal[0x9001], 0x3c)
}

func TestRefreshRegister(t *testing.T) {
	z, mem := newTestCPU()

	// the high bit of R must survive any number of fetches
	z.R = 0x80
	mem.putInstructions(0x8000, 0x00, 0x00, 0x00)
	z.PC = 0x8000
	for i := 0; i < 3; i++ {
		step(t, z)
	}
	test.Equate(t, z.R, 0x83)

	// low seven bits wrap without touching the high bit
	z.R = 0xff
	step(t, z)
	test.Equate(t, z.R, 0x80)

	// LD R,A is the only way to change the high bit
	mem.putInstructions(0x9000, 0xed, 0x4f) // LD R, A
	z.PC = 0x9000
	z.A = 0x12
	step(t, z)
	test.Equate(t, z.R, 0x12)
}

func TestCycleCounts(t *testing.T) {
	z, mem := newTestCPU()

	type tc struct {
		bytes  []uint8
		cycles int
	}

	for _, c := range []tc{
		{[]uint8{0x00}, 4},             // NOP
		{[]uint8{0x41}, 4},             // LD B, C
		{[]uint8{0x46}, 7},             // LD B, (HL)
		{[]uint8{0x06, 0x12}, 7},       // LD B, n
		{[]uint8{0x01, 0x34, 0x12}, 10}, // LD BC, nn
		{[]uint8{0x80}, 4},             // ADD A, B
		{[]uint8{0x86}, 7},             // ADD A, (HL)
		{[]uint8{0xc3, 0x00, 0x90}, 10}, // JP nn
		{[]uint8{0xcd, 0x00, 0x90}, 17}, // CALL nn
		{[]uint8{0x76}, 4},             // HALT (first step)
		{[]uint8{0xcb, 0x00}, 8},       // RLC B
		{[]uint8{0xcb, 0x06}, 15},      // RLC (HL)
		{[]uint8{0xcb, 0x46}, 12},      // BIT 0, (HL)
		{[]uint8{0xed, 0x44}, 8},       // NEG
		{[]uint8{0xed, 0x4a}, 15},      // ADC HL, BC
		{[]uint8{0xed, 0x57}, 9},       // LD A, I
		{[]uint8{0xed, 0x21}, 8},       // unrecognised ED: 8T NOP
		{[]uint8{0xdd, 0x21, 0x00, 0x00}, 14}, // LD IX, nn
		{[]uint8{0xdd, 0xe5}, 15},      // PUSH IX
		{[]uint8{0xdd, 0x7e, 0x00}, 19}, // LD A, (IX+0)
	} {
		z.Reset()
		z.PC = 0x8000
		z.SP = 0xa000
		z.Halted = false
		mem.putInstructions(0x8000, c.bytes...)
		if got := step(t, z); got != c.cycles {
			t.Errorf("opcode % x: %d cycles - wanted %d", c.bytes, got, c.cycles)
		}
	}
}

func TestConditionalCycleAdjustments(t *testing.T) {
	z, mem := newTestCPU()

	// JR NZ taken and not taken
	mem.putInstructions(0x8000, 0x20, 0x10)
	z.PC = 0x8000
	z.SetFlagsByte(0x00) // Z clear: taken
	test.Equate(t, step(t, z), 12)
	test.Equate(t, z.PC, 0x8012)

	z.PC = 0x8000
	z.SetFlagsByte(0x40) // Z set: not taken
	test.Equate(t, step(t, z), 7)
	test.Equate(t, z.PC, 0x8002)

	// CALL NZ taken: 10 + 7
	mem.putInstructions(0x8100, 0xc4, 0x00, 0x90)
	z.PC = 0x8100
	z.SP = 0xa000
	z.SetFlagsByte(0x00)
	test.Equate(t, step(t, z), 17)
	test.Equate(t, z.PC, 0x9000)

	// RET NZ taken: 5 + 6
	mem.putInstructions(0x9000, 0xc0)
	z.SetFlagsByte(0x00)
	test.Equate(t, step(t, z), 11)
	test.Equate(t, z.PC, 0x8103)

	// DJNZ taken and expired
	mem.putInstructions(0x8200, 0x10, 0xfe) // DJNZ -2
	z.PC = 0x8200
	z.B = 2
	test.Equate(t, step(t, z), 13)
	test.Equate(t, z.PC, 0x8200)
	test.Equate(t, step(t, z), 8)
	test.Equate(t, z.PC, 0x8202)
}

func TestAddAdcEquivalence(t *testing.T) {
	z, mem := newTestCPU()
	zz, mm := newTestCPU()

	// with the carry clear, ADC must behave exactly like ADD for every
	// pair of operands
	mem.putInstructions(0x8000, 0x80) // ADD A, B
	mm.putInstructions(0x8000, 0x88)  // ADC A, B

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			z.Reset()
			z.PC = 0x8000
			z.A = uint8(a)
			z.B = uint8(b)
			z.RunInstruction()

			zz.Reset()
			zz.PC = 0x8000
			zz.A = uint8(a)
			zz.B = uint8(b)
			zz.RunInstruction()

			if z.A != zz.A || z.FlagsByte() != zz.FlagsByte() {
				t.Fatalf("ADD/ADC divergence for %02x+%02x: %02x/%02x flags %02x/%02x",
					a, b, z.A, zz.A, z.FlagsByte(), zz.FlagsByte())
			}
		}
	}
}

func TestBitInstructions(t *testing.T) {
	z, mem := newTestCPU()

	// for every BIT opcode on a register operand (the (HL) forms are
	// skipped): Z = NOT(bit), H set, N clear, P mirrors Z
	for op := 0x40; op < 0x80; op++ {
		if op&0x07 == 6 {
			continue
		}

		z.Reset()
		z.B, z.C, z.D, z.E, z.H, z.L, z.A = 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa
		mem.putInstructions(0x8000, 0xcb, uint8(op))
		z.PC = 0x8000
		step(t, z)

		bit := (op & 0x38) >> 3
		expectZ := 0xaa&(1<<bit) == 0
		f := z.FlagsByte()

		if (f&0x40 != 0) != expectZ {
			t.Errorf("BIT %d: Z=%v - wanted %v", bit, f&0x40 != 0, expectZ)
		}
		if f&0x10 == 0 {
			t.Errorf("BIT %d: H clear - wanted set", bit)
		}
		if f&0x02 != 0 {
			t.Errorf("BIT %d: N set - wanted clear", bit)
		}
		if (f&0x04 != 0) != expectZ {
			t.Errorf("BIT %d: P=%v - wanted %v", bit, f&0x04 != 0, expectZ)
		}
	}
}

func TestShiftFamily(t *testing.T) {
	z, mem := newTestCPU()

	run := func(op uint8, val uint8) uint8 {
		z.Reset()
		z.B = val
		mem.putInstructions(0x8000, 0xcb, op)
		z.PC = 0x8000
		step(t, z)
		return z.B
	}

	// SLL sets bit 0 on the way through
	test.Equate(t, run(0x30, 0x80), 0x01)
	test.Equate(t, z.FlagsByte()&0x01, 0x01) // carry from bit 7

	// SRA preserves the sign bit
	test.Equate(t, run(0x28, 0x81), 0xc0)
	test.Equate(t, z.FlagsByte()&0x01, 0x01)

	// RLC rotates through itself
	test.Equate(t, run(0x00, 0x81), 0x03)

	// SRL always clears S
	run(0x38, 0xff)
	test.Equate(t, z.FlagsByte()&0x80, 0)
}

func TestRLCAPreservesSZP(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0x07) // RLCA
	z.PC = 0x8000
	z.A = 0x80
	z.SetFlagsByte(0xc4) // S, Z, P set
	step(t, z)

	test.Equate(t, z.A, 0x01)
	f := z.FlagsByte()
	test.Equate(t, f&0x80, 0x80) // S preserved
	test.Equate(t, f&0x40, 0x40) // Z preserved
	test.Equate(t, f&0x04, 0x04) // P preserved
	test.Equate(t, f&0x01, 0x01) // C from bit 7
}

func TestNEG(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0xed, 0x44)
	z.PC = 0x8000
	z.A = 0x80
	step(t, z)

	// 0x80 is the fixed point: P and C both set
	test.Equate(t, z.A, 0x80)
	f := z.FlagsByte()
	test.Equate(t, f&0x04, 0x04)
	test.Equate(t, f&0x01, 0x01)

	z.PC = 0x8000
	z.A = 0x01
	step(t, z)
	test.Equate(t, z.A, 0xff)
}

func TestDAA(t *testing.T) {
	z, mem := newTestCPU()

	// 0x15 + 0x27 = 0x3c, DAA corrects to BCD 42
	mem.putInstructions(0x8000, 0xc6, 0x27, 0x27) // ADD A, 0x27; DAA
	z.PC = 0x8000
	z.A = 0x15
	step(t, z)
	step(t, z)
	test.Equate(t, z.A, 0x42)

	// the sticky carry: once set, DAA never clears it
	z.PC = 0x8002
	z.A = 0x00
	z.SetFlagsByte(0x01)
	step(t, z)
	test.Equate(t, z.FlagsByte()&0x01, 0x01)
}

func TestDelayedEI(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0xfb, 0x00) // EI; NOP
	z.PC = 0x8000

	step(t, z)
	test.Equate(t, z.IFF1, false) // not yet

	step(t, z)
	test.Equate(t, z.IFF1, true) // applied after the following instruction
}

func TestHalt(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0x76)
	z.PC = 0x8000
	test.Equate(t, step(t, z), 4)
	test.Equate(t, z.Halted, true)

	// halted steps claim one cycle each
	test.Equate(t, step(t, z), 1)
	test.Equate(t, step(t, z), 1)
}

func TestInterruptModes(t *testing.T) {
	z, mem := newTestCPU()

	// mode 1: RST 38
	mem.putInstructions(0x8000, 0xfb, 0x76) // EI; HALT
	z.PC = 0x8000
	z.SP = 0xa000
	step(t, z)
	step(t, z)
	test.Equate(t, z.IFF1, true)

	z.IM = 1
	z.Interrupt(false, 0xff)
	test.Equate(t, z.Halted, false)
	test.Equate(t, z.IFF1, false)
	test.Equate(t, z.PC, 0x0038)

	// the return address on the stack is the byte after the HALT
	test.Equate(t, mem.internal[0x9ffe], 0x02)
	test.Equate(t, mem.internal[0x9fff], 0x80)

	// mode 2: vector fetch from (I<<8)|data
	z.Reset()
	z.IM = 2
	z.I = 0x40
	z.SP = 0xa000
	mem.internal[0x40ff] = 0x22
	mem.internal[0x4100] = 0x11
	z.IFF1 = true
	z.Interrupt(false, 0xff)
	test.Equate(t, z.PC, 0x1122)

	// masked off: nothing happens
	z.Reset()
	z.PC = 0x7777
	z.Interrupt(false, 0xff)
	test.Equate(t, z.PC, 0x7777)

	// NMI ignores IFF1 and saves it into IFF2
	z.Reset()
	z.PC = 0x1234
	z.SP = 0xa000
	z.IFF1 = true
	z.Interrupt(true, 0)
	test.Equate(t, z.PC, 0x0066)
	test.Equate(t, z.IFF1, false)
	test.Equate(t, z.IFF2, true)
}

func TestPrefixDegradation(t *testing.T) {
	z, mem := newTestCPU()

	// DD before an opcode with no indexed form: the prefix costs a NOP
	// and the instruction runs unindexed on the next step
	mem.putInstructions(0x8000, 0xdd, 0x04) // DD; INC B
	z.PC = 0x8000
	z.B = 7

	test.Equate(t, step(t, z), 4)
	test.Equate(t, z.B, 7) // not yet run

	step(t, z)
	test.Equate(t, z.B, 8)

	// a DD/FD chain: only the last prefix takes effect
	mem.putInstructions(0x9000, 0xdd, 0xfd, 0x21, 0x34, 0x12) // DD FD LD IY, 0x1234
	z.PC = 0x9000
	step(t, z) // DD degrades
	step(t, z) // FD LD IY, nn
	test.Equate(t, z.IY, 0x1234)
	test.Equate(t, z.IX, 0x0000)
}

func TestIndexedShiftStore(t *testing.T) {
	z, mem := newTestCPU()

	// DDCB RLC (IX+1),B : result goes to memory and to B
	mem.putInstructions(0x8000, 0xdd, 0xcb, 0x01, 0x00)
	z.PC = 0x8000
	z.IX = 0x9000
	mem.internal[0x9001] = 0x81

	step(t, z)
	test.Equate(t, mem.internal[0x9001], 0x03)
	test.Equate(t, z.B, 0x03)

	// BIT only tests
	mem.putInstructions(0x8100, 0xdd, 0xcb, 0x01, 0x46) // BIT 0, (IX+1)
	z.PC = 0x8100
	z.B = 0xee
	step(t, z)
	test.Equate(t, mem.internal[0x9001], 0x03)
	test.Equate(t, z.B, 0xee)
	test.Equate(t, z.FlagsByte()&0x40, 0) // bit 0 is set so Z clear
}

func TestBlockTransfer(t *testing.T) {
	z, mem := newTestCPU()

	// LDIR copies BC bytes and repeats in place
	mem.putInstructions(0x8000, 0xed, 0xb0)
	for i := 0; i < 5; i++ {
		mem.internal[0x9000+i] = uint8(0x10 + i)
	}
	z.PC = 0x8000
	setForLDIR(z, 0x9000, 0xa000, 5)

	total := 0
	for i := 0; i < 5; i++ {
		total += step(t, z)
	}

	for i := 0; i < 5; i++ {
		test.Equate(t, mem.internal[0xa000+i], uint8(0x10+i))
	}
	test.Equate(t, z.PC, 0x8002)
	test.Equate(t, total, 4*21+16)

	// P is clear once BC has run out
	test.Equate(t, z.FlagsByte()&0x04, 0)
}

// setForLDIR is a helper setting HL, DE and BC.
func setForLDIR(z *cpu.CPU, src, dst, count uint16) {
	z.H = uint8(src >> 8)
	z.L = uint8(src)
	z.D = uint8(dst >> 8)
	z.E = uint8(dst)
	z.B = uint8(count >> 8)
	z.C = uint8(count)
}

func TestCPIFlags(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0xed, 0xa1) // CPI
	mem.internal[0x9000] = 0x10
	z.PC = 0x8000
	z.A = 0x10
	z.H = 0x90
	z.L = 0x00
	z.B = 0x00
	z.C = 0x02
	z.SetFlagsByte(0x01) // carry set: must survive

	step(t, z)

	f := z.FlagsByte()
	test.Equate(t, f&0x40, 0x40) // match found
	test.Equate(t, f&0x01, 0x01) // carry preserved
	test.Equate(t, f&0x04, 0x04) // BC not yet zero
	test.Equate(t, z.C, 0x01)
	test.Equate(t, z.L, 0x01)
}

func TestExchangeInstructions(t *testing.T) {
	z, mem := newTestCPU()

	// EX AF, AF'
	mem.putInstructions(0x8000, 0x08, 0xd9) // EX AF,AF'; EXX
	z.PC = 0x8000
	z.A = 0x11
	z.APrime = 0x22
	z.SetFlagsByte(0x01)
	z.SetFlagsPrimeByte(0x80)

	step(t, z)
	test.Equate(t, z.A, 0x22)
	test.Equate(t, z.APrime, 0x11)
	test.Equate(t, z.FlagsByte(), 0x80)
	test.Equate(t, z.FlagsPrimeByte(), 0x01)

	// EXX
	z.B, z.BPrime = 0x01, 0x02
	step(t, z)
	test.Equate(t, z.B, 0x02)
	test.Equate(t, z.BPrime, 0x01)
}

func TestRLDRRD(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0xed, 0x6f) // RLD
	mem.internal[0x9000] = 0x31
	z.PC = 0x8000
	z.A = 0x7a
	z.H = 0x90
	z.L = 0x00

	step(t, z)
	test.Equate(t, z.A, 0x73)
	test.Equate(t, mem.internal[0x9000], 0x1a)

	mem.putInstructions(0x8100, 0xed, 0x67) // RRD undoes it
	z.PC = 0x8100
	step(t, z)
	test.Equate(t, z.A, 0x7a)
	test.Equate(t, mem.internal[0x9000], 0x31)
}

func TestInOutFlags(t *testing.T) {
	z, mem := newTestCPU()

	mem.putInstructions(0x8000, 0xed, 0x78) // IN A, (C)
	z.PC = 0x8000
	z.B = 0x12
	z.C = 0x34
	mem.portValue = 0x00

	step(t, z)
	test.Equate(t, z.A, 0x00)
	test.Equate(t, mem.lastPort, 0x1234)
	test.Equate(t, z.FlagsByte()&0x40, 0x40) // Z from the read value

	// OUT (C), B
	mem.putInstructions(0x8100, 0xed, 0x41)
	z.PC = 0x8100
	step(t, z)
	test.Equate(t, mem.lastData, 0x12)
}
