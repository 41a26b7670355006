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

package sdlplay

import (
	"github.com/veandco/go-sdl2/sdl"
)

// matrixKey is one position in the Spectrum's 8x5 key matrix.
type matrixKey struct {
	row  int
	mask uint8
}

// the matrix rows:
//
//	0: CAPS  Z X C V      1: A S D F G
//	2: Q W E R T          3: 1 2 3 4 5
//	4: 0 9 8 7 6          5: P O I U Y
//	6: ENT L K J H        7: SPC SYM M N B
var (
	keyCaps  = matrixKey{0, 0x01}
	keySym   = matrixKey{7, 0x02}
	keySpace = matrixKey{7, 0x01}
	keyEnter = matrixKey{6, 0x01}
)

// the host keys that map directly onto one matrix position.
var directKeys = map[sdl.Keycode]matrixKey{
	sdl.K_1: {3, 0x01}, sdl.K_2: {3, 0x02}, sdl.K_3: {3, 0x04}, sdl.K_4: {3, 0x08}, sdl.K_5: {3, 0x10},
	sdl.K_6: {4, 0x10}, sdl.K_7: {4, 0x08}, sdl.K_8: {4, 0x04}, sdl.K_9: {4, 0x02}, sdl.K_0: {4, 0x01},

	sdl.K_q: {2, 0x01}, sdl.K_w: {2, 0x02}, sdl.K_e: {2, 0x04}, sdl.K_r: {2, 0x08}, sdl.K_t: {2, 0x10},
	sdl.K_y: {5, 0x10}, sdl.K_u: {5, 0x08}, sdl.K_i: {5, 0x04}, sdl.K_o: {5, 0x02}, sdl.K_p: {5, 0x01},

	sdl.K_a: {1, 0x01}, sdl.K_s: {1, 0x02}, sdl.K_d: {1, 0x04}, sdl.K_f: {1, 0x08}, sdl.K_g: {1, 0x10},
	sdl.K_h: {6, 0x10}, sdl.K_j: {6, 0x08}, sdl.K_k: {6, 0x04}, sdl.K_l: {6, 0x02},

	sdl.K_z: {0, 0x02}, sdl.K_x: {0, 0x04}, sdl.K_c: {0, 0x08}, sdl.K_v: {0, 0x10},
	sdl.K_b: {7, 0x10}, sdl.K_n: {7, 0x08}, sdl.K_m: {7, 0x04},

	sdl.K_RETURN:   keyEnter,
	sdl.K_KP_ENTER: keyEnter,
	sdl.K_SPACE:    keySpace,
	sdl.K_LSHIFT:   keyCaps,
	sdl.K_RSHIFT:   keySym,
}

// the host keys that compose two matrix positions, the way the Spectrum's
// own extended keys work (cursor keys are CAPS+5..8 and so on).
var composedKeys = map[sdl.Keycode][2]matrixKey{
	sdl.K_UP:        {keyCaps, {4, 0x08}}, // CAPS+7
	sdl.K_DOWN:      {keyCaps, {4, 0x10}}, // CAPS+6
	sdl.K_LEFT:      {keyCaps, {3, 0x10}}, // CAPS+5
	sdl.K_RIGHT:     {keyCaps, {4, 0x04}}, // CAPS+8
	sdl.K_BACKSPACE: {keyCaps, {4, 0x01}}, // CAPS+0
	sdl.K_ESCAPE:    {keyCaps, keySpace},  // CAPS+SPACE
	sdl.K_TAB:       {keyCaps, keySym},
	sdl.K_CAPSLOCK:  {keyCaps, {3, 0x02}}, // CAPS+2

	sdl.K_MINUS:       {keySym, {6, 0x08}}, // SYM+J
	sdl.K_EQUALS:      {keySym, {6, 0x02}}, // SYM+L
	sdl.K_COMMA:       {keySym, {7, 0x08}}, // SYM+N
	sdl.K_PERIOD:      {keySym, {7, 0x04}}, // SYM+M
	sdl.K_KP_PLUS:     {keySym, {6, 0x04}}, // SYM+K
	sdl.K_KP_MINUS:    {keySym, {6, 0x08}}, // SYM+J
	sdl.K_KP_MULTIPLY: {keySym, {7, 0x10}}, // SYM+B
	sdl.K_KP_DIVIDE:   {keySym, {0, 0x10}}, // SYM+V
}

// serviceKeyboard routes one SDL keyboard event into the key matrix.
func (scr *SdlPlay) serviceKeyboard(ev *sdl.KeyboardEvent) {
	pressed := ev.Type == sdl.KEYDOWN

	sym := ev.Keysym.Sym
	if k, ok := directKeys[sym]; ok {
		scr.spec.KeyEvent(k.row, k.mask, pressed)
		return
	}

	if ks, ok := composedKeys[sym]; ok {
		scr.spec.KeyEvent(ks[0].row, ks[0].mask, pressed)
		scr.spec.KeyEvent(ks[1].row, ks[1].mask, pressed)
		return
	}

	// the function keys drive the emulator rather than the Spectrum
	if pressed {
		switch sym {
		case sdl.K_F2:
			scr.snapshotRequest = snapshotSave
		case sdl.K_F3:
			scr.snapshotRequest = snapshotLoad
		}
	}
}

// snapshot requests raised by the function keys, consumed by the play
// loop.
type snapshotReq int

const (
	snapshotNone snapshotReq = iota
	snapshotSave
	snapshotLoad
)

// SnapshotRequest returns and clears the pending function key request.
func (scr *SdlPlay) SnapshotRequest() (save, load bool) {
	req := scr.snapshotRequest
	scr.snapshotRequest = snapshotNone
	return req == snapshotSave, req == snapshotLoad
}
