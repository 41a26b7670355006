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

// PixelRenderer implementations display, or otherwise work with, the
// finished framebuffer. The machine itself does not present anything;
// renderers are added with AddPixelRenderer().
type PixelRenderer interface {
	// SetPixels is called once per completed frame. The framebuffer is
	// owned by the machine and must not be retained or written to.
	SetPixels(frameNum int, fb *Framebuffer) error

	// EndRendering is called when the machine is shutting down.
	EndRendering() error
}

// AudioMixer implementations consume the frame's audio: interleaved
// unsigned 8 bit stereo samples at 44100 Hz. Mixers are added with
// AddAudioMixer().
type AudioMixer interface {
	// SetAudio is called once per completed frame with the samples
	// resampled during that frame (ordinarily 882 stereo pairs).
	SetAudio(samples []uint8) error

	// EndMixing is called when the machine is shutting down.
	EndMixing() error
}
