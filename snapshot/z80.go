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

// LoadZ80 reads a .z80 snapshot into the machine. All three versions of
// the format are understood: v1 is a single 48K block (raw or RLE) and is
// recognised by a non-zero PC in the fixed header; v2 and v3 follow the
// fixed header with an extra header (whose length gives the version) and
// a sequence of per-bank blocks.
func LoadZ80(spec *spectrum.Spectrum, filename string) error {
	data, err := readFile(filename)
	if err != nil {
		return err
	}

	if len(data) < 30 {
		return curated.Errorf(curated.SnapshotLayout, len(data))
	}

	z := spec.CPU

	z.A = data[0]
	z.SetFlagsByte(data[1])
	z.C = data[2]
	z.B = data[3]
	z.L = data[4]
	z.H = data[5]
	z.PC = word(data[6:])
	z.SP = word(data[8:])
	z.I = data[10]
	z.R = data[11]
	z.E = data[13]
	z.D = data[14]
	z.CPrime = data[15]
	z.BPrime = data[16]
	z.EPrime = data[17]
	z.DPrime = data[18]
	z.LPrime = data[19]
	z.HPrime = data[20]
	z.APrime = data[21]
	z.SetFlagsPrimeByte(data[22])
	z.IY = word(data[23:])
	z.IX = word(data[25:])
	z.IFF1 = data[27] != 0
	z.IFF2 = data[28] != 0
	z.IM = data[29] & 0x03

	// the "flags" byte: bit 0 carries the high bit of R, bits 1-3 the
	// border, bit 5 compression
	z.R |= (data[12] & 0x01) << 7
	spec.Ports.BorderColour = (data[12] & 0x0e) >> 1
	rle := data[12]&0x20 != 0

	if z.PC != 0 {
		// v1: one 48K block from 0x4000 up
		spec.Mem.Port7FFD = 0x30
		cursor := 30
		address := 0x4000
		loadBlock(spec, true, &cursor, &address, data, len(data), rle)

		logger.Logf("snapshot", "v1 .z80 loaded from %s", filename)
		return nil
	}

	// v2/v3: extra header length selects the version
	extra := int(word(data[30:]))
	hmode := int(data[34])

	z.PC = word(data[32:])
	spec.Mem.Port7FFD = data[35]

	spec.PSG.SelectRegister(data[38])
	for i := 0; i < 16; i++ {
		spec.PSG.Regs[i] = data[39+i]
	}

	version := 2
	cursor := 55
	switch extra {
	case 23:
		version = 2
		cursor = 55
	case 54:
		version = 3
		cursor = 86
	case 55:
		version = 3
		cursor = 87
	}

	// hardware modes: 0 and 1 are the 48K machines, 3 and 4 the 128K ones
	// (the boundary moved between v2 and v3 but the source field values
	// the loader accepts are the same)
	if hmode != 0 && hmode != 1 && hmode != 3 && hmode != 4 {
		return curated.Errorf(curated.SnapshotUnsupported, hmode)
	}

	mode48 := hmode < 2
	if mode48 {
		// a 48K image always runs with the 48K ROM and flat paging
		spec.Mem.Port7FFD = 0x10
	}

	for cursor < len(data)-2 {
		blockLen := int(word(data[cursor:]))
		bank, err := bankMap(hmode, int(data[cursor+2]))
		if err != nil {
			return err
		}
		cursor += 3

		// 0xffff means an uncompressed 16 KiB block
		blockRLE := true
		if blockLen == 0xffff {
			blockRLE = false
			blockLen = memory.BankSize
		}

		address := bank * memory.BankSize
		top := cursor + blockLen
		if top > len(data) {
			top = len(data)
		}

		loadBlock(spec, false, &cursor, &address, data, top, blockRLE)
		cursor = top
	}

	logger.Logf("snapshot", "v%d .z80 loaded from %s", version, filename)

	return nil
}

// bankMap translates the bank id of a .z80 block into a RAM bank index.
// The 48K machines store their three RAM stretches under ids 4, 5 and 8;
// the 128K machines number the banks 3 to 10.
func bankMap(hmode, bank int) (int, error) {
	if hmode == 3 || hmode == 4 {
		b := bank - 3
		if b < 0 || b > 7 {
			return 0, curated.Errorf(curated.SnapshotLayout, bank)
		}
		return b, nil
	}

	switch bank {
	case 4:
		return 2, nil // 0x8000-0xbfff
	case 5:
		return 0, nil // 0xc000-0xffff
	case 8:
		return 5, nil // 0x4000-0x7fff
	}

	return 0, curated.Errorf(curated.SnapshotLayout, bank)
}

// loadBlock decodes one block of snapshot data into RAM. With mode48 set
// the address is a visible 48K address and is routed through the 48K
// translation; otherwise it is a linear RAM offset. The RLE scheme is
// "ED ED count value"; v1 files end with the marker 00 ED ED 00.
func loadBlock(spec *spectrum.Spectrum, mode48 bool, cursor, address *int, data []uint8, top int, rle bool) {
	put := func(b uint8) {
		a := *address
		if mode48 {
			a = memory.Address48K(a)
		}
		if a >= 0 && a < len(spec.Mem.RAM) {
			spec.Mem.RAM[a] = b
		}
		*address++
	}

	if !rle {
		for *cursor < top {
			put(data[*cursor])
			*cursor++
		}
		return
	}

	for *cursor < top {
		c := *cursor

		// end of data marker
		if c+3 < len(data) &&
			data[c] == 0x00 && data[c+1] == 0xed && data[c+2] == 0xed && data[c+3] == 0x00 {
			*cursor += 4
			return
		}

		if c+1 < len(data) && data[c] == 0xed && data[c+1] == 0xed {
			if c+3 >= len(data) {
				return
			}
			for i := 0; i < int(data[c+2]); i++ {
				put(data[c+3])
			}
			*cursor += 4
			continue
		}

		put(data[c])
		*cursor++
	}
}

// SaveZ80 writes the 48K view of the machine as an uncompressed v1 .z80
// snapshot.
func SaveZ80(spec *spectrum.Spectrum, filename string) error {
	data := make([]uint8, 30+49152)
	z := spec.CPU

	data[0] = z.A
	data[1] = z.FlagsByte()
	data[2] = z.C
	data[3] = z.B
	data[4] = z.L
	data[5] = z.H
	putWord(data[6:], z.PC)
	putWord(data[8:], z.SP)
	data[10] = z.I
	data[11] = z.R & 0x7f
	data[12] = z.R>>7 | (spec.Ports.BorderColour&0x07)<<1
	data[13] = z.E
	data[14] = z.D
	data[15] = z.CPrime
	data[16] = z.BPrime
	data[17] = z.EPrime
	data[18] = z.DPrime
	data[19] = z.LPrime
	data[20] = z.HPrime
	data[21] = z.APrime
	data[22] = z.FlagsPrimeByte()
	putWord(data[23:], z.IY)
	putWord(data[25:], z.IX)
	if z.IFF1 {
		data[27] = 1
	}
	if z.IFF2 {
		data[28] = 1
	}
	data[29] = z.IM & 0x03

	for w := 0; w < 49152; w++ {
		data[30+w] = spec.Mem.RAM[memory.Address48K(0x4000+w)]
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}

	logger.Logf("snapshot", "v1 .z80 saved to %s", filename)

	return nil
}
