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

package spectrum_test

import (
	"testing"

	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/test"
)

// collect is a PixelRenderer/AudioMixer that records what it is handed.
type collect struct {
	frames  int
	samples int
}

func (c *collect) SetPixels(frameNum int, fb *spectrum.Framebuffer) error {
	c.frames++
	return nil
}

func (c *collect) EndRendering() error { return nil }

func (c *collect) SetAudio(samples []uint8) error {
	c.samples += len(samples) / 2
	return nil
}

func (c *collect) EndMixing() error { return nil }

func TestFrameTiming(t *testing.T) {
	spec := spectrum.NewSpectrum()

	// EI; HALT at the top of the 48K ROM. the frame is then one long
	// HALT, woken only by the frame interrupt
	spec.Mem.ROM[0x4000] = 0xfb // EI
	spec.Mem.ROM[0x4001] = 0x76 // HALT
	spec.CPU.IM = 1

	if err := spec.StepFrame(); err != nil {
		t.Fatal(err)
	}

	// the frame consumed (almost exactly) the full frame's T-states; the
	// overshoot can be at most the final instruction's length
	total := spec.TStatesAll
	if total < spectrum.TPerFrame || total > spectrum.TPerFrame+32 {
		t.Errorf("frame consumed %d T-states - wanted about %d", total, spectrum.TPerFrame)
	}

	// the interrupt took the CPU out of HALT and through 0x0038
	if spec.CPU.Halted {
		t.Errorf("CPU still halted after the frame interrupt")
	}
	if spec.CPU.PC < 0x0038 {
		t.Errorf("PC did not pass through the interrupt handler (%04x)", spec.CPU.PC)
	}
	test.Equate(t, spec.CPU.IFF1, false)
}

func TestFrameAudio(t *testing.T) {
	spec := spectrum.NewSpectrum()
	c := &collect{}
	spec.AddAudioMixer(c)

	spec.Mem.ROM[0x4000] = 0xfb
	spec.Mem.ROM[0x4001] = 0x76
	spec.CPU.IM = 1

	for i := 0; i < 5; i++ {
		if err := spec.StepFrame(); err != nil {
			t.Fatal(err)
		}
	}

	// one frame is 1/50s at 44100Hz: 882 stereo pairs, give or take the
	// resampler's rounding at the frame boundary
	perFrame := c.samples / 5
	if perFrame < spectrum.SamplesPerFrame-2 || perFrame > spectrum.SamplesPerFrame+2 {
		t.Errorf("%d samples per frame - wanted about %d", perFrame, spectrum.SamplesPerFrame)
	}
}

func TestFrameEmission(t *testing.T) {
	spec := spectrum.NewSpectrum()
	c := &collect{}
	spec.AddPixelRenderer(c)

	spec.Mem.ROM[0x4000] = 0x76
	if err := spec.StepFrame(); err != nil {
		t.Fatal(err)
	}

	test.Equate(t, c.frames, 1)
	test.Equate(t, spec.FrameNum, 1)
}

func TestFlashAttribute(t *testing.T) {
	spec := spectrum.NewSpectrum()

	// a FLASH cell with paper 0, ink 7 in the top left corner of the
	// display file
	base := 5 * 0x4000
	spec.Mem.RAM[base+0x0000] = 0xf0   // left four pixels set
	spec.Mem.RAM[base+0x1800] = 0x87   // FLASH, paper 0, ink 7

	spec.Mem.ROM[0x4000] = 0x76 // HALT

	// first frame: flash phase flips to true on the first frame, so the
	// ink and paper are already swapped
	if err := spec.StepFrame(); err != nil {
		t.Fatal(err)
	}

	fb := spec.Framebuffer()

	// the cell's first pixel row is at beam (48..,48) which is frame
	// coordinate (32,24). set pixels show paper, clear pixels ink
	test.Equate(t, fb.At(32, 24), 0)
	test.Equate(t, fb.At(36, 24), 7)

	// run to the next flash toggle: the colours swap back
	for i := 0; i < 25; i++ {
		if err := spec.StepFrame(); err != nil {
			t.Fatal(err)
		}
	}

	test.Equate(t, fb.At(32, 24), 7)
	test.Equate(t, fb.At(36, 24), 0)
}

func TestBorderColour(t *testing.T) {
	spec := spectrum.NewSpectrum()

	// set the border through the ULA port, then run a frame
	spec.Ports.WritePort(0x00fe, 0x02)
	spec.Mem.ROM[0x4000] = 0x76

	if err := spec.StepFrame(); err != nil {
		t.Fatal(err)
	}

	// a pixel well inside the top border
	fb := spec.Framebuffer()
	test.Equate(t, fb.At(10, 10), 2)
}

func TestAudioRing(t *testing.T) {
	r := spectrum.NewAudioRing()

	// fill one slot's worth
	for i := 0; i < spectrum.SamplesPerFrame; i++ {
		r.Push(0x40, 0xc0)
	}

	// the reader drains the slot that was just completed
	out := make([]uint8, spectrum.SamplesPerFrame*2)
	r.Serve(out)
	test.Equate(t, out[0], 0x40)
	test.Equate(t, out[1], 0xc0)

	// the next slot is still silence
	r.Serve(out)
	test.Equate(t, out[0], 0x80)

	// that read reached the writer's own slot, so the reader dropped back
	// eight slots; the slot served now is one of those, still silence
	r.Serve(out)
	test.Equate(t, out[0], 0x80)
}
