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

// Package snapshot loads and saves machine state in the formats the
// Spectrum world actually uses: .sna images (48K and 128K), .z80 files
// (v1, v2 and v3) and the BASIC fast path of .tap tape files. Snapshots
// are small, so every codec reads the whole file into memory and parses
// the byte slice.
//
// Format references:
//
//	https://worldofspectrum.org/faq/reference/z80format.htm
//	https://worldofspectrum.org/faq/reference/128kreference.htm
//	http://speccy.info/SNA
//	https://sinclair.wiki.zxnet.co.uk/wiki/TAP_format
package snapshot

import (
	"os"
	"strings"

	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
)

// Load reads the file into the machine, choosing the codec by the
// filename extension.
func Load(spec *spectrum.Spectrum, filename string) error {
	switch {
	case strings.HasSuffix(filename, ".z80"):
		return LoadZ80(spec, filename)
	case strings.HasSuffix(filename, ".sna"):
		return LoadSNA(spec, filename)
	case strings.HasSuffix(filename, ".tap"):
		return LoadTAP(spec, filename)
	}
	return curated.Errorf(curated.SnapshotLayout, filename)
}

// LoadBin copies a raw file image into memory at the given address, as
// seen through the current paging. Handy for dropping test programs like
// the instruction exercisers into RAM.
func LoadBin(spec *spectrum.Spectrum, filename string, address int) error {
	d, err := os.ReadFile(filename)
	if err != nil {
		return curated.Errorf(curated.FileUnavailable, filename)
	}

	for i, b := range d {
		spec.Mem.WriteMemory(uint16(address+i), b)
	}

	return nil
}

func readFile(filename string) ([]byte, error) {
	d, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf(curated.FileUnavailable, filename)
	}
	return d, nil
}
