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

// Package wavwriter saves the emulation's audio to disk as a WAV file.
// Note that audio data is buffered in memory in its entirety and written
// on program end. It is therefore probably only suitable for capturing
// bounded runs.
package wavwriter

import (
	"os"

	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/logger"
	"github.com/youpy/go-wav"
)

// WavWriter implements the spectrum.AudioMixer interface.
type WavWriter struct {
	filename string
	buffer   []wav.Sample
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) (*WavWriter, error) {
	aw := &WavWriter{
		filename: filename,
		buffer:   make([]wav.Sample, 0),
	}

	return aw, nil
}

// SetAudio implements the spectrum.AudioMixer interface.
func (aw *WavWriter) SetAudio(samples []uint8) error {
	for i := 0; i+1 < len(samples); i += 2 {
		s := wav.Sample{}
		s.Values[0] = int(samples[i])
		s.Values[1] = int(samples[i+1])
		aw.buffer = append(aw.buffer, s)
	}

	return nil
}

// EndMixing implements the spectrum.AudioMixer interface.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 2, spectrum.AudioFreq, 8)
	if enc == nil {
		return curated.Errorf("wavwriter: %v", "bad parameters for wav encoding")
	}

	logger.Logf("wavwriter", "writing audio to %s", aw.filename)
	if err := enc.WriteSamples(aw.buffer); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
