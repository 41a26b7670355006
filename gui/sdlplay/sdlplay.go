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

// Package sdlplay is the SDL2 presentation of the emulation: a scaled
// window fed from the framebuffer once per frame, an audio queue fed from
// the machine's audio ring, and the host keyboard translated onto the
// Spectrum's key matrix.
//
// SDL requires servicing on the main thread. Service() must be called
// from the same goroutine that created the SdlPlay value.
package sdlplay

import (
	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/veandco/go-sdl2/sdl"
)

// window scale over the native 320x240.
const pixelScale = 3

// SdlPlay is the SDL window and audio device. It implements the
// spectrum.PixelRenderer interface.
type SdlPlay struct {
	spec *spectrum.Spectrum

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	audioDev  sdl.AudioDeviceID
	audioSlot []uint8

	// pixel conversion buffer, ARGB8888
	pixels []uint8

	// function key request raised by the keyboard handler
	snapshotRequest snapshotReq
}

// New is the preferred method of initialisation for the SdlPlay type.
// Pass muted as true to run without an audio device.
func New(spec *spectrum.Spectrum, muted bool) (*SdlPlay, error) {
	scr := &SdlPlay{
		spec:   spec,
		pixels: make([]uint8, spectrum.FrameWidth*spectrum.FrameHeight*4),
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	var err error

	scr.window, err = sdl.CreateWindow("Gopherzx",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		spectrum.FrameWidth*pixelScale, spectrum.FrameHeight*pixelScale,
		sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.renderer, err = sdl.CreateRenderer(scr.window, -1,
		sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.texture, err = scr.renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		spectrum.FrameWidth, spectrum.FrameHeight)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	if !muted {
		want := sdl.AudioSpec{
			Freq:     spectrum.AudioFreq,
			Format:   sdl.AUDIO_U8,
			Channels: 2,
			Samples:  uint16(spectrum.SamplesPerFrame),
		}
		scr.audioDev, err = sdl.OpenAudioDevice("", false, &want, nil, 0)
		if err != nil {
			return nil, curated.Errorf("sdlplay: %v", err)
		}
		scr.audioSlot = make([]uint8, spectrum.SamplesPerFrame*2)
		sdl.PauseAudioDevice(scr.audioDev, false)
	}

	return scr, nil
}

// SetPixels implements the spectrum.PixelRenderer interface: the 4bpp
// framebuffer is unpacked through the palette into the streaming texture.
func (scr *SdlPlay) SetPixels(frameNum int, fb *spectrum.Framebuffer) error {
	for y := 0; y < spectrum.FrameHeight; y++ {
		for x := 0; x < spectrum.FrameWidth; x++ {
			rgb := spectrum.Palette[fb.At(x, y)]
			o := (y*spectrum.FrameWidth + x) * 4
			scr.pixels[o] = uint8(rgb)
			scr.pixels[o+1] = uint8(rgb >> 8)
			scr.pixels[o+2] = uint8(rgb >> 16)
			scr.pixels[o+3] = 0xff
		}
	}

	if err := scr.texture.Update(nil, scr.pixels, spectrum.FrameWidth*4); err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}
	if err := scr.renderer.Copy(scr.texture, nil, nil); err != nil {
		return curated.Errorf("sdlplay: %v", err)
	}
	scr.renderer.Present()

	// drain one ring slot into the audio queue
	if scr.audioDev != 0 {
		scr.spec.Ring.Serve(scr.audioSlot)
		if err := sdl.QueueAudio(scr.audioDev, scr.audioSlot); err != nil {
			return curated.Errorf("sdlplay: %v", err)
		}
	}

	return nil
}

// EndRendering implements the spectrum.PixelRenderer interface.
func (scr *SdlPlay) EndRendering() error {
	if scr.audioDev != 0 {
		sdl.CloseAudioDevice(scr.audioDev)
	}
	scr.texture.Destroy()
	scr.renderer.Destroy()
	scr.window.Destroy()
	sdl.Quit()
	return nil
}

// Service polls and handles pending SDL events. Returns false when the
// user has asked to quit.
func (scr *SdlPlay) Service() bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return false

		case *sdl.KeyboardEvent:
			scr.serviceKeyboard(ev)
		}
	}

	return true
}
