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

// Package bmpwriter streams the emulation's video as a sequence of
// 16-colour 4bpp BMP images, one per frame, to a file or stdout. The
// stream can be picked apart or piped into an encoder afterwards; ffmpeg
// understands concatenated BMPs directly.
package bmpwriter

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/kalinsky/gopherzx/curated"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/logger"
)

// one frame on disk: file header (14) + info header (40) + palette (64) +
// 320x240 at 4bpp.
const (
	headerSize = 14 + 40 + 64
	imageSize  = spectrum.FrameWidth / 2 * spectrum.FrameHeight
	fileSize   = headerSize + imageSize
)

// BMPWriter implements the spectrum.PixelRenderer interface.
type BMPWriter struct {
	out    *bufio.Writer
	closer io.Closer

	// number of leading frames left to drop
	skip int

	header [headerSize]uint8
}

// New is the preferred method of initialisation for the BMPWriter type.
// The filename "-" streams to stdout. skipFrames leading frames are
// dropped, which gives a ROM time to boot before capture starts.
func New(filename string, skipFrames int) (*BMPWriter, error) {
	bw := &BMPWriter{skip: skipFrames}

	if filename == "-" {
		bw.out = bufio.NewWriter(os.Stdout)
	} else {
		f, err := os.Create(filename)
		if err != nil {
			return nil, curated.Errorf("bmpwriter: %v", err)
		}
		bw.out = bufio.NewWriter(f)
		bw.closer = f
	}

	bw.buildHeader()

	return bw, nil
}

// buildHeader assembles the constant 118 byte prefix every frame shares.
func (bw *BMPWriter) buildHeader() {
	h := bw.header[:]
	put16 := binary.LittleEndian.PutUint16
	put32 := binary.LittleEndian.PutUint32

	// BITMAPFILEHEADER
	h[0] = 'B'
	h[1] = 'M'
	put32(h[2:], fileSize)
	put32(h[6:], 0) // reserved
	put32(h[10:], headerSize)

	// BITMAPINFOHEADER
	put32(h[14:], 40)
	put32(h[18:], spectrum.FrameWidth)
	put32(h[22:], spectrum.FrameHeight)
	put16(h[26:], 1) // planes
	put16(h[28:], 4) // bits per pixel
	put32(h[30:], 0) // no compression
	put32(h[34:], imageSize)
	put32(h[38:], 0x0b13) // pixels per metre
	put32(h[42:], 0x0b13)
	put32(h[46:], 16) // colours used
	put32(h[50:], 0)

	// the palette, as BGR0
	for i, c := range spectrum.Palette {
		h[54+4*i] = uint8(c)
		h[55+4*i] = uint8(c >> 8)
		h[56+4*i] = uint8(c >> 16)
		h[57+4*i] = 0
	}
}

// SetPixels implements the spectrum.PixelRenderer interface. The
// framebuffer rows are already stored bottom-up, which is the BMP scan
// order, so the pixel data goes out as is.
func (bw *BMPWriter) SetPixels(frameNum int, fb *spectrum.Framebuffer) error {
	if bw.skip > 0 {
		bw.skip--
		return nil
	}

	if _, err := bw.out.Write(bw.header[:]); err != nil {
		return curated.Errorf("bmpwriter: %v", err)
	}
	if _, err := bw.out.Write(fb.Pix[:]); err != nil {
		return curated.Errorf("bmpwriter: %v", err)
	}

	return nil
}

// EndRendering implements the spectrum.PixelRenderer interface.
func (bw *BMPWriter) EndRendering() error {
	if err := bw.out.Flush(); err != nil {
		return curated.Errorf("bmpwriter: %v", err)
	}

	if bw.closer != nil {
		if err := bw.closer.Close(); err != nil {
			return curated.Errorf("bmpwriter: %v", err)
		}
	}

	logger.Log("bmpwriter", "video stream closed")

	return nil
}
