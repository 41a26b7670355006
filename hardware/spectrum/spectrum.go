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

// Package spectrum assembles the Spectrum 128K from its component parts
// and runs it one video frame at a time. The host calls StepFrame() once
// per 20ms; everything else (pixels, audio, key events) flows through the
// PixelRenderer/AudioMixer protocols and the KeyEvent function.
package spectrum

import (
	"github.com/kalinsky/gopherzx/hardware/ay38910"
	"github.com/kalinsky/gopherzx/hardware/cpu"
	"github.com/kalinsky/gopherzx/hardware/memory"
	"github.com/kalinsky/gopherzx/hardware/ports"
)

// Spectrum is the 128K machine.
type Spectrum struct {
	CPU   *cpu.CPU
	Mem   *memory.Memory
	PSG   *ay38910.PSG
	Ports *ports.Ports

	// the frame being built
	fb Framebuffer

	// whether any pixel has changed since the last completed frame
	frameChanged bool

	// SkipDuplicateFrames suppresses the SetPixels hand-off for frames
	// identical to the previous one
	SkipDuplicateFrames bool

	// T-state accumulators: position within the current frame and lifetime
	// total
	tStatesCycle int
	TStatesAll   int64

	// audio resampling accumulator and the samples gathered this frame
	tStatesWav int
	audioFrame []uint8

	// the lock-free buffer the host audio side drains, one slot per frame
	Ring *AudioRing

	// FLASH attribute phase
	flashState   bool
	flashCounter int
	firstFrame   bool

	// frames since power-on
	FrameNum int

	// autostart state: 0 idle, otherwise the macro step counter
	autostart int

	// AutoSpace presses SPACE at frame 25 and releases it a frame later
	AutoSpace bool

	// OnHalt, if set, is consulted before every instruction; when the next
	// opcode is HALT the frame stops and the callback's error is returned.
	// Used by the -h diagnostic
	OnHalt func() error

	renderers []PixelRenderer
	mixers    []AudioMixer
}

// NewSpectrum is the preferred method of initialisation for the Spectrum
// type.
func NewSpectrum() *Spectrum {
	spec := &Spectrum{}

	spec.Mem = memory.NewMemory()
	spec.PSG = ay38910.NewPSG()
	spec.Ports = ports.NewPorts(spec.Mem, spec.PSG)
	spec.CPU = cpu.NewCPU(spec.Mem, spec.Ports)
	spec.Ring = NewAudioRing()

	spec.audioFrame = make([]uint8, 0, 2*SamplesPerFrame)
	spec.firstFrame = true
	spec.frameChanged = true

	return spec
}

// AddPixelRenderer registers an (additional) implementation of
// PixelRenderer.
func (spec *Spectrum) AddPixelRenderer(r PixelRenderer) {
	spec.renderers = append(spec.renderers, r)
}

// AddAudioMixer registers an (additional) implementation of AudioMixer.
func (spec *Spectrum) AddAudioMixer(m AudioMixer) {
	spec.mixers = append(spec.mixers, m)
}

// Framebuffer returns the frame image under construction. Collaborators
// normally receive it through the PixelRenderer protocol instead.
func (spec *Spectrum) Framebuffer() *Framebuffer {
	return &spec.fb
}

// KeyEvent forwards a key press/release to the keyboard matrix.
func (spec *Spectrum) KeyEvent(row int, mask uint8, pressed bool) {
	spec.Ports.KeyEvent(row, mask, pressed)
}

// Autostart arms the RUN + ENTER key macro, which types the command over
// the first few frames after startup.
func (spec *Spectrum) Autostart() {
	spec.autostart = 1
}

// End shuts the machine down, giving every renderer and mixer the chance
// to finalise its output.
func (spec *Spectrum) End() error {
	var rerr error

	for _, r := range spec.renderers {
		if err := r.EndRendering(); err != nil {
			rerr = err
		}
	}
	for _, m := range spec.mixers {
		if err := m.EndMixing(); err != nil {
			rerr = err
		}
	}

	return rerr
}

// autostartMacro advances the startup key macro by one frame.
func (spec *Spectrum) autostartMacro() {
	if spec.autostart > 0 {
		spec.autostart++
		switch spec.autostart {
		case 2: // R (the RUN keyword)
			spec.Ports.KeyEvent(2, 0x08, true)
		case 3:
			spec.Ports.KeyEvent(2, 0x08, false)
		case 4: // ENTER
			spec.Ports.KeyEvent(6, 0x01, true)
		case 5:
			spec.Ports.KeyEvent(6, 0x01, false)
		case 6:
			spec.autostart = 0
		}
	}

	if spec.AutoSpace {
		switch spec.FrameNum {
		case 25:
			spec.Ports.KeyEvent(7, 0x01, true)
		case 26:
			spec.Ports.KeyEvent(7, 0x01, false)
		}
	}
}
