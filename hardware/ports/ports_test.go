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

package ports_test

import (
	"testing"

	"github.com/kalinsky/gopherzx/hardware/ay38910"
	"github.com/kalinsky/gopherzx/hardware/memory"
	"github.com/kalinsky/gopherzx/hardware/ports"
	"github.com/kalinsky/gopherzx/test"
)

func newTestPorts() *ports.Ports {
	return ports.NewPorts(memory.NewMemory(), ay38910.NewPSG())
}

func TestKeyboardMatrix(t *testing.T) {
	p := newTestPorts()

	// no keys held: all rows float high
	test.Equate(t, p.ReadPort(0xfefe), 0xff)

	// hold CAPS (row 0, bit 0); row 0 is selected by clearing A8
	p.KeyEvent(0, 0x01, true)
	test.Equate(t, p.ReadPort(0xfefe), 0xfe)

	// a read selecting a different row doesn't see it
	test.Equate(t, p.ReadPort(0xfdfe), 0xff)

	// selecting several rows ANDs them together
	p.KeyEvent(1, 0x02, true)
	test.Equate(t, p.ReadPort(0xfcfe), 0xfc)

	// release
	p.KeyEvent(0, 0x01, false)
	p.KeyEvent(1, 0x02, false)
	test.Equate(t, p.ReadPort(0x00fe), 0xff)
}

func TestBorderAndBeeper(t *testing.T) {
	p := newTestPorts()

	p.WritePort(0x00fe, 0x15)
	test.Equate(t, p.BorderColour, 0x05)
	test.Equate(t, p.PortFE, 0x15)
}

func TestAYPorts(t *testing.T) {
	p := newTestPorts()

	p.WritePort(0xfffd, 0x07)
	test.Equate(t, p.ReadPort(0xfffd), 0x07)

	p.WritePort(0xbffd, 0x38)
	test.Equate(t, p.ReadPort(0xbffd), 0x38)

	// the select register only keeps the low four bits
	p.WritePort(0xfffd, 0xf8)
	test.Equate(t, p.ReadPort(0xfffd), 0x08)
}

func TestPagingPort(t *testing.T) {
	p := newTestPorts()

	// any port with 0xfd in the low byte drives the latch
	p.WritePort(0x7ffd, 0x20)
	p.WritePort(0x7ffd, 0x07)
	test.Equate(t, p.ReadPort(0x7ffd), 0x20)
}

func TestKempstonAndFloating(t *testing.T) {
	p := newTestPorts()

	// Kempston: idle joystick
	test.Equate(t, p.ReadPort(0x001f), 0x00)

	// anything unattached floats high, and writes are dropped
	test.Equate(t, p.ReadPort(0x12e5), 0xff)
	p.WritePort(0x12e5, 0x55)
	test.Equate(t, p.ReadPort(0x12e5), 0xff)
}
