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

// Frame timing. These are the Pentagon numbers, not the Sinclair ones: no
// memory contention, 71680 T-states per frame, interrupt raised late in the
// bottom border.
const (
	TPerFrame  = 71680
	IRQTOffset = 304*224 + 8

	PPUCols = 224
	PPURows = 312

	// paper area in PPU clocks
	paperRowStart = 64
	paperRowEnd   = 256
	paperColStart = 72
	paperColEnd   = 200

	// the visible region (border included) starts here
	visibleCol = 48
	visibleRow = 16

	// audio output
	AudioFreq       = 44100
	FramesPerSecond = 50
	SamplesPerFrame = AudioFreq / FramesPerSecond

	// FLASH attributes toggle every 25 frames
	flashFrames = 25
)

// StepFrame runs the machine for one PAL frame: interleaves CPU
// instructions with the PPU beam, the AY clock and the audio resampler,
// and raises the frame interrupt at its fixed T-state offset. On
// completion the framebuffer and audio are handed to the registered
// renderers and mixers.
func (spec *Spectrum) StepFrame() error {
	reqInt := true
	ppuX, ppuY := 0, 0
	ayState := 0

	spec.autostartMacro()
	spec.audioFrame = spec.audioFrame[:0]

	// always restart the T-state accumulator at the top of the frame;
	// demos rely on a stable instruction/beam relationship
	spec.tStatesCycle = 0

	for spec.tStatesCycle < TPerFrame {
		// the one maskable interrupt per frame, raised before the first
		// instruction that starts after the offset
		if reqInt && spec.tStatesCycle > IRQTOffset {
			spec.CPU.Interrupt(false, 0xff)
			reqInt = false
		}

		if spec.OnHalt != nil && spec.Mem.ReadMemory(spec.CPU.PC) == 0x76 {
			return spec.OnHalt()
		}

		spec.Mem.TRDOSTrap(spec.CPU.PC)

		t := spec.CPU.RunInstruction()
		spec.tStatesCycle += t
		spec.TStatesAll += int64(t)

		// one CPU T-state is two PPU pixel clocks; the beam covers the
		// instruction's duration
		for w := 0; w < t; w++ {
			// the AY chip runs once every 32 T-states
			if ayState&0x1f == 0 {
				spec.PSG.Tick()
			}
			ayState++

			if ppuY >= visibleRow && ppuX >= visibleCol {
				if ppuY < paperRowStart || ppuY >= paperRowEnd || ppuX < paperColStart || ppuX >= paperColEnd {
					// border: two pixels per T-state
					lx := ppuX - visibleCol
					spec.setBorder(2*lx, ppuY-visibleRow)
					spec.setBorder(2*lx+1, ppuY-visibleRow)
				} else if (ppuX-paperColStart)&3 == 0 {
					// paper: re-render the display file cell under the
					// beam, one cell per four T-states
					vx := ppuX - paperColStart
					spec.updateCell(screenRowBase[ppuY-paperRowStart] + vx>>2)
				}
			}

			ppuX++
			if ppuX >= PPUCols {
				ppuX = 0
				ppuY++
			}
		}

		spec.audioTick(t)
	}

	// reduce the accumulator to the overshoot; the next StepFrame restarts
	// it at zero, so the overshoot is not carried into the next frame
	spec.tStatesCycle %= TPerFrame

	spec.flashCounter++
	if spec.flashCounter >= flashFrames || spec.firstFrame {
		spec.flashCounter = 0
		spec.firstFrame = false
		spec.flashState = !spec.flashState
		spec.repaintFlashCells()
	}

	if err := spec.emitFrame(); err != nil {
		return err
	}

	spec.FrameNum++

	return nil
}

// audioTick advances the 44.1kHz resampler by the instruction's T-states
// and emits a sample on each period crossing. Branch-free accumulator
// arithmetic: one sample per crossing of TPerFrame*50.
func (spec *Spectrum) audioTick(t int) {
	spec.tStatesWav += AudioFreq * t

	if spec.tStatesWav > TPerFrame*FramesPerSecond {
		spec.tStatesWav %= TPerFrame * FramesPerSecond

		// the beeper provides the baseline the AY is mixed onto
		beep := (spec.Ports.PortFE&0x10 != 0) != (spec.Ports.PortFE&0x08 != 0)
		base := 0x80 + 32
		if beep {
			base = 0x80
		}

		left, right := spec.PSG.Mix(base, base)

		spec.audioFrame = append(spec.audioFrame, left, right)
		spec.Ring.Push(left, right)
	}
}

// repaintFlashCells redraws the cells whose FLASH attribute is set, so a
// phase flip is visible even while the beam is elsewhere.
func (spec *Spectrum) repaintFlashCells() {
	base := spec.Mem.ScreenBank() * 0x4000

	for offset := 0x1800; offset < 0x1b00; offset++ {
		if spec.Mem.RAM[base+offset]&0x80 == 0 {
			continue
		}

		// the attribute cell covers eight display file rows
		col := (offset - 0x1800) & 0x1f
		row := (offset - 0x1800) >> 5
		for j := 0; j < 8; j++ {
			spec.updateCell(screenRowBase[row*8+j] + col)
		}
	}
}

// emitFrame hands the finished frame to the collaborators.
func (spec *Spectrum) emitFrame() error {
	changed := spec.frameChanged
	if spec.SkipDuplicateFrames {
		spec.frameChanged = false
	}

	if !spec.SkipDuplicateFrames || changed {
		for _, r := range spec.renderers {
			if err := r.SetPixels(spec.FrameNum, &spec.fb); err != nil {
				return err
			}
		}
	}

	for _, m := range spec.mixers {
		if err := m.SetAudio(spec.audioFrame); err != nil {
			return err
		}
	}

	return nil
}

// screenRowBase maps a paper row (0-191) to the display file address of
// the leftmost byte in that row. The Spectrum's screen interleaving makes
// this worth precomputing.
var screenRowBase [192]int

func init() {
	for y := 0; y < 192; y++ {
		screenRowBase[y] = 0x4000 + 32*((y&0x38)>>3) + 256*(y&7) + 2048*(y>>6)
	}
}
