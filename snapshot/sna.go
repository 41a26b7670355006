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

package snapshot

import (
	"os"

	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/hardware/memory"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/logger"
)

// the two supported .sna sizes: 27 byte header + 48 KiB, and the 128K
// layout that follows it with PC, the paging latch, the TR-DOS flag and
// the remaining banks.
const (
	snaSize48  = 49179
	snaSize128 = 131103

	// the 128K+ variant. recognised so it can be rejected by name
	snaSize128Plus = 147487
)

// LoadSNA reads a .sna image into the machine.
func LoadSNA(spec *spectrum.Spectrum, filename string) error {
	data, err := readFile(filename)
	if err != nil {
		return err
	}

	if len(data) != snaSize48 && len(data) != snaSize128 {
		if len(data) == snaSize128Plus {
			return curated.Errorf(curated.SnapshotUnsupported, "128k+ .sna")
		}
		return curated.Errorf(curated.SnapshotLayout, len(data))
	}

	z := spec.CPU

	z.I = data[0]
	z.LPrime = data[1]
	z.HPrime = data[2]
	z.EPrime = data[3]
	z.DPrime = data[4]
	z.CPrime = data[5]
	z.BPrime = data[6]
	z.SetFlagsPrimeByte(data[7])
	z.APrime = data[8]
	z.L = data[9]
	z.H = data[10]
	z.E = data[11]
	z.D = data[12]
	z.C = data[13]
	z.B = data[14]
	z.IY = word(data[15:])
	z.IX = word(data[17:])
	z.IFF1 = data[19]&0x01 != 0
	z.IFF2 = data[19]&0x02 != 0
	z.R = data[20]
	z.SetFlagsByte(data[21])
	z.A = data[22]
	z.SP = word(data[23:])
	z.IM = data[25] & 0x03
	spec.Ports.BorderColour = data[26] & 0x07

	if len(data) == snaSize48 {
		for w := 0; w < 49152; w++ {
			spec.Mem.RAM[memory.Address48K(0x4000+w)] = data[27+w]
		}

		// 48K snapshots park the PC on the stack
		z.PC = uint16(spec.Mem.ReadMemory(z.SP)) | uint16(spec.Mem.ReadMemory(z.SP+1))<<8
		z.SP += 2

		logger.Logf("snapshot", "48k .sna loaded from %s", filename)
		return nil
	}

	// 128K layout: the banks at the screen, fixed and paged-in windows
	// come first, then the extra header, then the rest
	z.PC = word(data[49179:])
	spec.Mem.Port7FFD = data[49181]
	spec.Mem.TRDOSLatch = data[49182] != 0

	selected := int(spec.Mem.Port7FFD & 0x07)

	copy(spec.Mem.RAM[5*memory.BankSize:], data[27:27+memory.BankSize])
	copy(spec.Mem.RAM[2*memory.BankSize:], data[16411:16411+memory.BankSize])
	copy(spec.Mem.RAM[selected*memory.BankSize:], data[32795:32795+memory.BankSize])

	cursor := 49183
	for n := 0; n < 8; n++ {
		if n == 2 || n == 5 || n == selected {
			continue
		}
		copy(spec.Mem.RAM[n*memory.BankSize:(n+1)*memory.BankSize], data[cursor:])
		cursor += memory.BankSize
	}

	logger.Logf("snapshot", "128k .sna loaded from %s", filename)

	return nil
}

// SaveSNA writes the machine out as a 128K layout .sna image.
func SaveSNA(spec *spectrum.Spectrum, filename string) error {
	data := make([]uint8, snaSize128)
	z := spec.CPU

	data[0] = z.I
	data[1] = z.LPrime
	data[2] = z.HPrime
	data[3] = z.EPrime
	data[4] = z.DPrime
	data[5] = z.CPrime
	data[6] = z.BPrime
	data[7] = z.FlagsPrimeByte()
	data[8] = z.APrime
	data[9] = z.L
	data[10] = z.H
	data[11] = z.E
	data[12] = z.D
	data[13] = z.C
	data[14] = z.B
	putWord(data[15:], z.IY)
	putWord(data[17:], z.IX)

	if z.IFF1 {
		data[19] |= 0x01
	}
	if z.IFF2 {
		data[19] |= 0x02
	}

	data[20] = z.R
	data[21] = z.FlagsByte()
	data[22] = z.A
	putWord(data[23:], z.SP)
	data[25] = z.IM & 0x03
	data[26] = spec.Ports.BorderColour & 0x07

	putWord(data[49179:], z.PC)
	data[49181] = spec.Mem.Port7FFD
	if spec.Mem.TRDOSLatch {
		data[49182] = 1
	}

	selected := int(spec.Mem.Port7FFD & 0x07)

	copy(data[27:], spec.Mem.RAM[5*memory.BankSize:6*memory.BankSize])
	copy(data[16411:], spec.Mem.RAM[2*memory.BankSize:3*memory.BankSize])
	copy(data[32795:], spec.Mem.RAM[selected*memory.BankSize:(selected+1)*memory.BankSize])

	cursor := 49183
	for n := 0; n < 8; n++ {
		if n == 2 || n == 5 || n == selected {
			continue
		}
		copy(data[cursor:], spec.Mem.RAM[n*memory.BankSize:(n+1)*memory.BankSize])
		cursor += memory.BankSize
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}

	logger.Logf("snapshot", "128k .sna saved to %s", filename)

	return nil
}

func word(d []uint8) uint16 {
	return uint16(d[0]) | uint16(d[1])<<8
}

func putWord(d []uint8, v uint16) {
	d[0] = uint8(v)
	d[1] = uint8(v >> 8)
}
