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

// Gopherzx is a ZX Spectrum 128K emulator.
//
// The positional argument is a .z80, .sna or .tap file to load. Without
// the -c flag an SDL window opens and runs the machine at 50 frames per
// second; with it the machine runs headless, which is useful together
// with the -o and -w capture flags.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kalinsky/gopherzx/bmpwriter"
	"github.com/kalinsky/gopherzx/disassembly"
	"github.com/kalinsky/gopherzx/gui/sdlplay"
	"github.com/kalinsky/gopherzx/hardware/memory"
	"github.com/kalinsky/gopherzx/hardware/spectrum"
	"github.com/kalinsky/gopherzx/logger"
	"github.com/kalinsky/gopherzx/playmode"
	"github.com/kalinsky/gopherzx/snapshot"
	"github.com/kalinsky/gopherzx/wavwriter"
)

// the error used to unwind cleanly from the -h diagnostic.
var errHaltDump = errors.New("halt")

func main() {
	md := flag.NewFlagSet("gopherzx", flag.ExitOnError)

	reset128 := md.Bool("2", false, "reset paging to 128K mode")
	autostart := md.Bool("a", false, "auto type RUN + ENTER on startup")
	loadBin := md.String("b", "", "load binary image: FILE:HEXADDR")
	headless := md.Bool("c", false, "run headless (no window, no audio)")
	disasm := md.Bool("d", false, "dump a disassembly from the entry point")
	haltDump := md.Bool("h", false, "dump machine state and stop on HALT")
	autoSpace := md.Bool("k", false, "auto press SPACE at frame 25")
	skipFrames := md.Int("m", 0, "skip first N frames of capture")
	runSeconds := md.Int("M", 0, "stop after N seconds of emulated time")
	videoFile := md.String("o", "", "write BMP video stream to file, or - for stdout")
	forcePC := md.String("p", "", "force PC after load (hex)")
	rom0 := md.String("r0", "128k.rom", "ROM bank 0 (128K editor) image")
	rom1 := md.String("r1", "48k.rom", "ROM bank 1 (48K BASIC) image")
	romT := md.String("rt", "trdos.rom", "TR-DOS ROM image")
	skipDup := md.Bool("s", false, "skip duplicate frames in video capture")
	wavFile := md.String("w", "", "write WAV audio to file")
	mute := md.Bool("x", false, "mute host audio")
	mono := md.Bool("z", false, "mono audio mix")

	md.Parse(os.Args[1:])

	logger.SetEcho(os.Stderr)

	spec := spectrum.NewSpectrum()

	for _, rom := range []struct {
		filename string
		bank     int
	}{
		{*rom0, memory.ROM128},
		{*rom1, memory.ROM48},
		{*romT, memory.ROMTRDOS},
	} {
		if err := spec.Mem.LoadROM(rom.filename, rom.bank); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *reset128 {
		spec.Mem.Port7FFD = 0x00
	}

	// the snapshot to run
	if md.NArg() > 0 {
		if err := snapshot.Load(spec, md.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *loadBin != "" {
		file, address, err := splitBinArg(*loadBin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := snapshot.LoadBin(spec, file, address); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *forcePC != "" {
		pc, err := strconv.ParseUint(strings.TrimPrefix(*forcePC, "0x"), 16, 16)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -p value: %v\n", *forcePC)
			os.Exit(1)
		}
		spec.CPU.PC = uint16(pc)
	}

	if *autostart {
		spec.Autostart()
	}
	spec.AutoSpace = *autoSpace
	spec.SkipDuplicateFrames = *skipDup
	spec.PSG.Mono = *mono

	if *haltDump {
		spec.OnHalt = func() error {
			dumpState(spec)
			return errHaltDump
		}
	}

	if *disasm {
		disassembly.Dump(os.Stdout, spec.Mem, spec.CPU.PC, 24)
	}

	if *wavFile != "" {
		aw, err := wavwriter.New(*wavFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		spec.AddAudioMixer(aw)
	}

	if *videoFile != "" {
		bw, err := bmpwriter.New(*videoFile, *skipFrames)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		spec.AddPixelRenderer(bw)
	}

	endFrame := *runSeconds * spectrum.FramesPerSecond

	var err error
	if *headless {
		err = playmode.Headless(spec, endFrame)
	} else {
		var scr *sdlplay.SdlPlay
		scr, err = sdlplay.New(spec, *mute)
		if err == nil {
			spec.AddPixelRenderer(scr)
			err = playmode.Play(spec, scr, endFrame)
		}
	}

	if err != nil && !errors.Is(err, errHaltDump) {
		fmt.Fprintln(os.Stderr, err)
		spec.End()
		os.Exit(1)
	}

	if err := spec.End(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// splitBinArg parses the FILE:HEXADDR form of the -b flag.
func splitBinArg(arg string) (string, int, error) {
	i := strings.LastIndex(arg, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("bad -b value: %v (want FILE:HEXADDR)", arg)
	}

	address, err := strconv.ParseUint(strings.TrimPrefix(arg[i+1:], "0x"), 16, 16)
	if err != nil {
		return "", 0, fmt.Errorf("bad -b address: %v", arg[i+1:])
	}

	return arg[:i], int(address), nil
}

// dumpState prints the machine state, for the -h diagnostic.
func dumpState(spec *spectrum.Spectrum) {
	z := spec.CPU

	fmt.Printf("BC:  %02X%02X | DE:  %02X%02X | HL:  %02X%02X | AF:  %02X%02X\n",
		z.B, z.C, z.D, z.E, z.H, z.L, z.A, z.FlagsByte())
	fmt.Printf("BC': %02X%02X | DE': %02X%02X | HL': %02X%02X | AF': %02X%02X\n",
		z.BPrime, z.CPrime, z.DPrime, z.EPrime, z.HPrime, z.LPrime, z.APrime, z.FlagsPrimeByte())
	fmt.Printf("IM: %d | IFF1: %v | IFF2: %v\n", z.IM, z.IFF1, z.IFF2)
	fmt.Printf("I:  %02x | R: %02x\n", z.I, z.R)
	fmt.Printf("IX: %04x | IY: %04x\n", z.IX, z.IY)
	fmt.Printf("SP: %04x\n", z.SP)
	fmt.Printf("PC: %04x\n", z.PC)
	fmt.Printf("7FFD: %02x | TRDOS: %v | T: %d\n", spec.Mem.Port7FFD, spec.Mem.TRDOSLatch, spec.TStatesAll)
}
