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

// Package ports decodes the Spectrum's I/O space. Port decoding on the
// Spectrum is by partial address decode rather than by full port number:
//
//	0xfffd        AY register select (read returns the selection)
//	0xbffd        AY data
//	xxFD          128K paging latch (a read returns the latch)
//	even ports    ULA: border colour + beeper out, keyboard matrix in
//	xxxx000xxxxx  Kempston joystick (stub)
//
// Reads of anything else float high (0xff); writes are dropped.
package ports

import (
	"github.com/kalinsky/gopherzx/hardware/ay38910"
	"github.com/kalinsky/gopherzx/hardware/memory"
)

// Ports implements bus.IOBus for the 128K machine.
type Ports struct {
	mem *memory.Memory
	psg *ay38910.PSG

	// the keyboard matrix: eight active-low rows. a zero bit is a held key
	KeyStates [8]uint8

	// bits 0-2 of the last even-port write
	BorderColour uint8

	// the full last even-port write; bits 3 (MIC) and 4 (EAR) feed the
	// beeper
	PortFE uint8
}

// NewPorts is the preferred method of initialisation for the Ports type.
func NewPorts(mem *memory.Memory, psg *ay38910.PSG) *Ports {
	p := &Ports{mem: mem, psg: psg}
	p.Reset()
	return p
}

// Reset releases every key and resets the border.
func (p *Ports) Reset() {
	for i := range p.KeyStates {
		p.KeyStates[i] = 0xff
	}
	p.BorderColour = 0
	p.PortFE = 0
}

// KeyEvent records a key press or release in the matrix. Row is 0 to 7 and
// mask has one bit set for the key within the row.
func (p *Ports) KeyEvent(row int, mask uint8, pressed bool) {
	if row < 0 || row > 7 {
		return
	}
	if pressed {
		p.KeyStates[row] &= ^mask
	} else {
		p.KeyStates[row] |= mask
	}
}

// ReadPort implements the bus.IOBus interface.
func (p *Ports) ReadPort(port uint16) uint8 {
	switch {
	case port == 0xfffd:
		return p.psg.SelectedRegister()

	case port == 0xbffd:
		return p.psg.ReadData()

	case port&0x00ff == 0x00fd:
		return p.mem.Port7FFD

	case port&0x0001 == 0:
		// keyboard matrix: each zero bit in the high byte selects a row;
		// the selected rows are ANDed together
		result := uint8(0xff)
		for row := 0; row < 8; row++ {
			if port&(1<<(row+8)) == 0 {
				result &= p.KeyStates[row]
			}
		}
		return result

	case port&0x00e0 == 0:
		// Kempston joystick: no movement, no buttons
		return 0x00
	}

	return 0xff
}

// WritePort implements the bus.IOBus interface.
func (p *Ports) WritePort(port uint16, data uint8) {
	switch {
	case port == 0xfffd:
		p.psg.SelectRegister(data)

	case port == 0xbffd:
		p.psg.WriteData(data)

	case port == 0x1ffd:
		// +2A/+3 paging; not a feature of this machine

	case port&0x00ff == 0x00fd:
		p.mem.Page(data)

	case port&0x0001 == 0:
		p.BorderColour = data & 0x07
		p.PortFE = data
	}
}
