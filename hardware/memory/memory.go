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

// Package memory implements the Spectrum 128K address space: eight 16 KiB
// RAM banks, the two base ROMs, the TR-DOS ROM and the paging rules driven
// by port 0x7FFD.
//
// The visible 64 KiB is four windows:
//
//	0x0000-0x3fff  ROM (TR-DOS when trapped, else 128K or 48K per bit 4)
//	0x4000-0x7fff  RAM bank 5 (screen 0)
//	0x8000-0xbfff  RAM bank 2
//	0xc000-0xffff  RAM bank selected by bits 0-2
package memory

import (
	"os"

	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/logger"
)

// BankSize is the size of one RAM or ROM bank.
const BankSize = 16384

// ROM bank identifiers for LoadROM.
const (
	ROM128   = 0
	ROM48    = 1
	ROMTRDOS = 4
)

// Memory is the Spectrum 128K memory system. It implements bus.CPUBus.
type Memory struct {
	// the eight RAM banks as one linear block; get offsets with BankOffset
	RAM [8 * BankSize]uint8

	// up to four 16 KiB ROM banks. bank 0 is the 128K editor, bank 1 the
	// 48K BASIC ROM
	ROM [4 * BankSize]uint8

	// the TR-DOS disk ROM, paged in by the trap below
	TRDOS [BankSize]uint8

	// the last value written to port 0x7ffd. the ports package writes this
	// through Page()
	Port7FFD uint8

	// whether the TR-DOS ROM is currently visible at 0x0000
	TRDOSLatch bool
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset the paging state. ROM and RAM contents are left alone.
func (m *Memory) Reset() {
	// bit 4 set: the 48K BASIC ROM is mapped on reset
	m.Port7FFD = 0x10
	m.TRDOSLatch = false
}

// Page latches a value written to port 0x7ffd. Once bit 5 has been set,
// further writes can no longer change the RAM bank selection or clear the
// lock.
func (m *Memory) Page(data uint8) {
	if m.Port7FFD&0x20 != 0 {
		data |= 0x20
		data &= ^uint8(0x0f)
	}
	m.Port7FFD = data
}

// BankOffset translates a visible address into an offset into the RAM (or
// ROM) block according to the current paging state.
func (m *Memory) BankOffset(address uint16) int {
	var bank int
	switch address & 0xc000 {
	case 0x0000:
		if m.Port7FFD&0x10 != 0 {
			bank = ROM48
		} else {
			bank = ROM128
		}
	case 0x4000:
		bank = 5
	case 0x8000:
		bank = 2
	case 0xc000:
		bank = int(m.Port7FFD & 0x07)
	}
	return bank*BankSize + int(address&0x3fff)
}

// ScreenBank returns the RAM bank holding the live display file: bank 5
// normally, bank 7 when bit 3 of port 0x7ffd is set.
func (m *Memory) ScreenBank() int {
	if m.Port7FFD&0x08 != 0 {
		return 7
	}
	return 5
}

// ReadMemory implements the bus.CPUBus interface.
func (m *Memory) ReadMemory(address uint16) uint8 {
	if address < 0x4000 {
		if m.TRDOSLatch {
			return m.TRDOS[address]
		}
		return m.ROM[m.BankOffset(address)]
	}
	return m.RAM[m.BankOffset(address)]
}

// WriteMemory implements the bus.CPUBus interface. Writes to the ROM window
// are dropped.
func (m *Memory) WriteMemory(address uint16, data uint8) {
	if address < 0x4000 {
		return
	}
	m.RAM[m.BankOffset(address)] = data
}

// TRDOSTrap latches the TR-DOS ROM in and out according to the PC. The trap
// only operates while the 48K ROM is mapped: jumping into page 0x3Dxx pages
// the disk ROM in; leaving the bottom 16 KiB window pages it back out. Call
// before every instruction fetch.
func (m *Memory) TRDOSTrap(pc uint16) {
	if m.Port7FFD&0x10 == 0 {
		return
	}

	if !m.TRDOSLatch && pc&0xff00 == 0x3d00 {
		m.TRDOSLatch = true
	} else if m.TRDOSLatch && pc&0xc000 != 0 {
		m.TRDOSLatch = false
	}
}

// Address48K translates a 48K-layout address (0x4000..0xffff) into the
// offset of the same cell in the RAM block: the three 16 KiB stretches map
// to banks 5, 2 and 0 respectively. Used by the snapshot codecs and the
// tape loader.
func Address48K(address int) int {
	switch address & 0xc000 {
	case 0x4000:
		return address&0x3fff + 5*BankSize
	case 0x8000:
		return address&0x3fff + 2*BankSize
	case 0xc000:
		return address & 0x3fff
	}
	return address
}

// LoadROM fills a ROM bank (0-3) or, for bank 4, the TR-DOS ROM, from a
// file.
func (m *Memory) LoadROM(filename string, bank int) error {
	d, err := os.ReadFile(filename)
	if err != nil {
		return curated.Errorf(curated.FileUnavailable, filename)
	}

	if len(d) > BankSize {
		d = d[:BankSize]
	}

	if bank < 4 {
		copy(m.ROM[bank*BankSize:], d)
	} else {
		copy(m.TRDOS[:], d)
	}

	logger.Logf("memory", "rom bank %d loaded from %s", bank, filename)

	return nil
}
