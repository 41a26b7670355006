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

package memory_test

import (
	"testing"

	"github.com/kalinsky/gopherzx/hardware/memory"
	"github.com/kalinsky/gopherzx/test"
)

func TestWindowMapping(t *testing.T) {
	m := memory.NewMemory()

	// the fixed windows
	test.Equate(t, m.BankOffset(0x4000), 5*memory.BankSize)
	test.Equate(t, m.BankOffset(0x7fff), 5*memory.BankSize+0x3fff)
	test.Equate(t, m.BankOffset(0x8000), 2*memory.BankSize)

	// the top window follows bits 0-2
	for bank := 0; bank < 8; bank++ {
		m.Port7FFD = uint8(bank)
		test.Equate(t, m.BankOffset(0xc000), bank*memory.BankSize)
	}
}

func TestROMSelection(t *testing.T) {
	m := memory.NewMemory()

	m.ROM[0] = 0x11                  // 128K editor ROM
	m.ROM[memory.BankSize] = 0x22    // 48K BASIC ROM
	m.TRDOS[0] = 0x33

	// reset state maps the 48K ROM
	test.Equate(t, m.ReadMemory(0x0000), 0x22)

	m.Port7FFD = 0x00
	test.Equate(t, m.ReadMemory(0x0000), 0x11)

	m.TRDOSLatch = true
	test.Equate(t, m.ReadMemory(0x0000), 0x33)
}

func TestROMWriteDropped(t *testing.T) {
	m := memory.NewMemory()

	m.WriteMemory(0x1234, 0xaa)
	test.Equate(t, m.ReadMemory(0x1234), 0x00)

	// RAM writes land
	m.WriteMemory(0x4000, 0xaa)
	test.Equate(t, m.ReadMemory(0x4000), 0xaa)
}

func TestPagingLock(t *testing.T) {
	m := memory.NewMemory()

	// setting bit 5 latches the configuration
	m.Page(0x20)
	test.Equate(t, m.Port7FFD, 0x20)

	// further writes can't select a bank or clear the lock
	m.Page(0x07)
	test.Equate(t, m.Port7FFD, 0x20)

	// but bit 4 (ROM select) still gets through
	m.Page(0x17)
	test.Equate(t, m.Port7FFD, 0x30)
}

func TestScreenBank(t *testing.T) {
	m := memory.NewMemory()

	test.Equate(t, m.ScreenBank(), 5)
	m.Port7FFD |= 0x08
	test.Equate(t, m.ScreenBank(), 7)
}

func TestTRDOSTrap(t *testing.T) {
	m := memory.NewMemory()

	// with the 48K ROM mapped, entering page 0x3dxx latches the disk ROM
	test.Equate(t, m.TRDOSLatch, false)
	m.TRDOSTrap(0x3d00)
	test.Equate(t, m.TRDOSLatch, true)

	// it stays while execution remains in the bottom window
	m.TRDOSTrap(0x0123)
	test.Equate(t, m.TRDOSLatch, true)

	// and unlatches when the PC leaves
	m.TRDOSTrap(0x8000)
	test.Equate(t, m.TRDOSLatch, false)

	// with the 128K ROM mapped the trap never fires
	m.Port7FFD = 0x00
	m.TRDOSTrap(0x3d80)
	test.Equate(t, m.TRDOSLatch, false)
}

func TestAddress48K(t *testing.T) {
	test.Equate(t, memory.Address48K(0x4000), 5*memory.BankSize)
	test.Equate(t, memory.Address48K(0x8001), 2*memory.BankSize+1)
	test.Equate(t, memory.Address48K(0xffff), 0x3fff)
}
