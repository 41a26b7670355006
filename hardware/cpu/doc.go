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

// Package cpu emulates the Zilog Z80, including the undocumented opcodes
// and flags that Spectrum software relies on. The CPU talks to the machine
// exclusively through the interfaces in the bus package.
//
// RunInstruction() retires one instruction per call and returns the T
// cycles consumed. Interrupt() pulses the INT or NMI pin. The decoder
// charges T cycles from the published per-opcode tables in cycles.go, with
// the conditional control flow instructions adding their documented
// penalties when taken.
//
// References for the instruction set used while writing this package:
//
//	http://clrhome.org/table/ - Z80 instruction set tables
//	http://www.zilog.com/docs/z80/um0080.pdf - The official manual
//	http://www.myquest.nl/z80undocumented/z80-documented-v0.91.pdf
package cpu
