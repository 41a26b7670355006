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

package spectrum

import (
	"sync/atomic"
)

// ring sizing. one slot holds one frame of interleaved stereo samples.
const (
	ringFrames   = 16
	ringSlotSize = SamplesPerFrame * 2
)

// AudioRing is the single-producer/single-consumer buffer between the
// emulation (which writes one slot per video frame) and the host audio
// side (the SDL presentation drains one slot per presented frame). There
// is no locking: the
// writer only advances zxFrame and the reader only advances sdlFrame. If
// the reader catches the writer it drops back eight frames rather than
// stall.
type AudioRing struct {
	buf [ringFrames * ringSlotSize]uint8

	// cursor within the writer's current slot
	cursor int

	zxFrame  int32
	sdlFrame int32
}

// NewAudioRing is the preferred method of initialisation for the AudioRing
// type.
func NewAudioRing() *AudioRing {
	r := &AudioRing{}
	for i := range r.buf {
		// silence
		r.buf[i] = 0x80
	}
	atomic.StoreInt32(&r.zxFrame, 8)
	return r
}

// Push appends one stereo pair to the writer's slot. Called from the frame
// scheduler only.
func (r *AudioRing) Push(left, right uint8) {
	r.buf[r.cursor] = left
	r.buf[(r.cursor+1)%len(r.buf)] = right
	r.cursor = (r.cursor + 2) % len(r.buf)
	atomic.StoreInt32(&r.zxFrame, int32(r.cursor/ringSlotSize))
}

// Serve copies the reader's slot into stream and advances the reader.
// Called from the host audio side only.
func (r *AudioRing) Serve(stream []uint8) {
	sdl := atomic.LoadInt32(&r.sdlFrame)
	zx := atomic.LoadInt32(&r.zxFrame)

	copy(stream, r.buf[int(sdl)*ringSlotSize:(int(sdl)+1)*ringSlotSize])

	// advance, or fall back several frames if we've caught the writer
	if sdl != zx {
		sdl = (sdl + 1) % ringFrames
	} else {
		sdl = (zx + ringFrames - 8) % ringFrames
	}
	atomic.StoreInt32(&r.sdlFrame, sdl)
}
