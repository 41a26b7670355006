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
	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/hardware/memory"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/logger"
)

// BASIC system variables patched by the tape fast path.
const (
	sysvarNXTLIN = 0x5c55
	sysvarVARS   = 0x5c4b
	sysvarELINE  = 0x5c59
	sysvarKCUR   = 0x5c5b
	sysvarCHADD  = 0x5c5d
	sysvarWORKSP = 0x5c61
	sysvarSTKBOT = 0x5c63
	sysvarSTKEND = 0x5c65
)

// LoadTAP implements the fast path for tape files whose first block is a
// BASIC program: the program bytes are copied straight into the BASIC
// program area and the system variables are patched so the program is
// immediately listable and runnable. Real tape signal timing is not
// emulated.
func LoadTAP(spec *spectrum.Spectrum, filename string) error {
	data, err := readFile(filename)
	if err != nil {
		return err
	}

	if len(data) < 0x18 || data[0x17] != 0xff {
		return curated.Errorf(curated.SnapshotLayout, "no BASIC program header")
	}

	// program length from the second block's length word, less the flag
	// and checksum bytes
	size := int(data[0x15]) + int(data[0x16])*256 - 2
	if size < 0 || 0x18+size > len(data) {
		return curated.Errorf(curated.SnapshotLayout, "truncated BASIC block")
	}

	put := func(address int, v uint8) {
		spec.Mem.RAM[memory.Address48K(address)] = v
	}
	putW := func(address, v int) {
		put(address, uint8(v))
		put(address+1, uint8(v>>8))
	}

	// the program area on a fresh 128K machine
	const progTop = 0x5ccb

	for i := 0; i < size; i++ {
		put(progTop+i, data[0x18+i])
	}

	// terminate the program and point the editor's bookkeeping just past
	// it, leaving an empty edit line
	end := progTop + size
	next := end

	putW(end, 0x0d80)
	putW(end+2, 0x2280)
	putW(end+4, 0x800d)

	putW(sysvarVARS, next)
	next++

	putW(sysvarELINE, next)
	putW(sysvarKCUR, next)

	next += 2
	putW(sysvarWORKSP, next)
	putW(sysvarSTKBOT, next)
	putW(sysvarSTKEND, next)

	next++
	putW(sysvarCHADD, next)

	next++
	putW(sysvarNXTLIN, next)

	logger.Logf("snapshot", "BASIC program (%d bytes) injected from %s", size, filename)

	return nil
}
