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

// Package playmode runs the emulation for normal use: a 50Hz frame loop
// against the SDL window, or flat out with no presentation at all for
// headless capture runs.
package playmode

import (
	"time"

	"github.com/kalinsky/gopherzx/gui/sdlplay"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/logger"
	"github.com/kalinsky/gopherzx/snapshot"
)

// the F2/F3 keys save and restore this snapshot.
const autosaveFilename = "autosave.sna"

// Play runs the machine against the SDL window until the window is closed
// or, if endFrame is positive, until that many frames have run. Must be
// called on the main thread.
func Play(spec *spectrum.Spectrum, scr *sdlplay.SdlPlay, endFrame int) error {
	tick := time.NewTicker(time.Second / spectrum.FramesPerSecond)
	defer tick.Stop()

	for {
		if !scr.Service() {
			return nil
		}

		save, load := scr.SnapshotRequest()
		if save {
			if err := snapshot.SaveSNA(spec, autosaveFilename); err != nil {
				logger.Logf("playmode", "%v", err)
			}
		} else if load {
			if err := snapshot.LoadSNA(spec, autosaveFilename); err != nil {
				logger.Logf("playmode", "%v", err)
			}
		}

		select {
		case <-tick.C:
			if err := spec.StepFrame(); err != nil {
				return err
			}
			if endFrame > 0 && spec.FrameNum >= endFrame {
				return nil
			}
		default:
			// keep servicing events between frames
			time.Sleep(time.Millisecond)
		}
	}
}

// Headless runs the machine as fast as the host allows, with no
// presentation and no pacing, until endFrame frames have run.
func Headless(spec *spectrum.Spectrum, endFrame int) error {
	if endFrame <= 0 {
		// three seconds of emulated time
		endFrame = 3 * spectrum.FramesPerSecond
	}

	for spec.FrameNum < endFrame {
		if err := spec.StepFrame(); err != nil {
			return err
		}
	}

	return nil
}
