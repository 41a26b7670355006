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

// Package ay38910 emulates the AY-3-8910 programmable sound generator used
// for music and effects on the Spectrum 128K. Three square wave channels, a
// shared noise generator and a shared hardware envelope, mixed down to an
// unsigned 8 bit stereo pair with channel A on the left, C on the right and
// B split between both.
//
// Tick() advances the generator by one chip cycle and is called once every
// 32 T-states by the frame scheduler.
package ay38910

// envelope shape bits of register 13.
const (
	envHold   = 1
	envAlt    = 2
	envAttack = 4
	envCont   = 8
)

// the DAC response of the chip, from the hardware measurements everyone
// uses. scaled into a byte range at construction.
var levels = [16]int{
	0x0000, 0x0385, 0x053d, 0x0770,
	0x0ad7, 0x0fd5, 0x15b0, 0x230c,
	0x2b4c, 0x43c1, 0x5a4b, 0x732f,
	0x9204, 0xaff1, 0xd921, 0xffff,
}

// PSG is the AY-3-8910 state.
type PSG struct {
	// the sixteen data registers, indexed by the select register
	Regs [16]uint8

	// the currently selected register
	selected uint8

	// volume lookup: envelope/level counter value to linear amplitude
	volume [16]int

	// square wave state per channel
	tonePeriod [3]int
	toneTick   [3]int
	toneHigh   [3]bool

	// noise generator
	noisePeriod int
	noiseTick   int
	noiseToggle bool
	rng         int

	// envelope generator
	envPeriod       int
	envTick         int
	envInternalTick int
	envCounter      int
	envFirst        bool
	envRev          bool

	// output amplitude per channel after the last Tick
	amp [3]int

	// fold the stereo pair to its average
	Mono bool
}

// NewPSG is the preferred method of initialisation for the PSG type.
func NewPSG() *PSG {
	p := &PSG{}
	p.Reset()
	return p
}

// Reset the generator to power-on state.
func (p *PSG) Reset() {
	for i := range p.Regs {
		p.Regs[i] = 0
	}

	// all channels masked off
	p.Regs[7] = 0xff

	p.selected = 0
	p.noisePeriod = 0
	p.noiseTick = 0
	p.noiseToggle = false
	p.rng = 1
	p.envPeriod = 0
	p.envTick = 0
	p.envInternalTick = 0
	p.envCounter = 0
	p.envFirst = true
	p.envRev = false

	for n := 0; n < 3; n++ {
		p.tonePeriod[n] = 1
		p.toneTick[n] = 0
		p.toneHigh[n] = false
		p.amp[n] = 0
	}

	// the level table is 16 bit; scale into a byte
	for i, l := range levels {
		p.volume[i] = (l*256 + 0x8000) / 0xffff
	}
}

// SelectRegister latches the register index for subsequent data accesses.
// Only the low four bits take part.
func (p *PSG) SelectRegister(data uint8) {
	p.selected = data & 0x0f
}

// SelectedRegister returns the latched register index, which is what a read
// of port 0xfffd produces.
func (p *PSG) SelectedRegister() uint8 {
	return p.selected
}

// ReadData returns the value of the selected register.
func (p *PSG) ReadData() uint8 {
	return p.Regs[p.selected]
}

// WriteData writes the selected register and refreshes the derived state.
func (p *PSG) WriteData(data uint8) {
	reg := int(p.selected)
	p.Regs[reg] = data

	switch reg {
	case 0, 1, 2, 3, 4, 5:
		// tone period for the channel, packed across a register pair
		tone := reg >> 1
		p.tonePeriod[tone] = int(p.Regs[reg&^1]) + 256*int(p.Regs[reg|1]&0x0f)

		if p.tonePeriod[tone] == 0 {
			p.tonePeriod[tone] = 1
		}

		// stop a running counter overshooting the new, shorter period
		if p.toneTick[tone] >= p.tonePeriod[tone]*2 {
			p.toneTick[tone] %= p.tonePeriod[tone] * 2
		}

	case 6:
		p.noiseTick = 0
		p.noisePeriod = int(data & 0x1f)

	case 11, 12:
		p.envPeriod = int(p.Regs[11]) | int(p.Regs[12])<<8

	case 13:
		// writing a shape restarts the envelope machine
		p.envFirst = true
		p.envRev = false
		p.envTick = 0
		p.envInternalTick = 0
		if data&envAttack != 0 {
			p.envCounter = 0
		} else {
			p.envCounter = 15
		}
	}
}

// Tick advances the generator one chip cycle (one per 32 T-states).
func (p *PSG) Tick() {
	mixer := p.Regs[7]
	shape := p.Regs[13]

	// per-channel levels: bit 4 of the level register selects the envelope
	var channelLevel [3]int
	for n := 0; n < 3; n++ {
		g := p.Regs[8+n]
		if g&0x10 != 0 {
			channelLevel[n] = p.volume[p.envCounter&0x0f]
		} else {
			channelLevel[n] = p.volume[g&0x0f]
		}
	}

	// envelope generator
	p.envTick++
	for p.envTick >= p.envPeriod {
		p.envTick -= p.envPeriod

		// step the counter on the first cycle after a shape write and
		// thereafter only for the continuing, non-holding shapes
		if p.envFirst || (shape&envCont != 0 && shape&envHold == 0) {
			step := 1
			if shape&envAttack == 0 {
				step = -1
			}
			if p.envRev {
				p.envCounter -= step
			} else {
				p.envCounter += step
			}

			if p.envCounter < 0 {
				p.envCounter = 0
			} else if p.envCounter > 15 {
				p.envCounter = 15
			}
		}

		p.envInternalTick++

		// every sixteen sub-ticks the shape decides what happens next
		for p.envInternalTick >= 16 {
			p.envInternalTick -= 16

			if shape&envCont == 0 {
				// one-shot: the counter stops at zero
				p.envCounter = 0
			} else if shape&envHold != 0 {
				if p.envFirst && shape&envAlt != 0 {
					if p.envCounter == 0 {
						p.envCounter = 15
					} else {
						p.envCounter = 0
					}
				}
			} else {
				if shape&envAlt != 0 {
					p.envRev = !p.envRev
				} else if shape&envAttack != 0 {
					p.envCounter = 0
				} else {
					p.envCounter = 15
				}
			}

			p.envFirst = false
		}

		// period zero behaves as period one but must not spin forever
		if p.envPeriod == 0 {
			break
		}
	}

	// the three tone channels
	for n := 0; n < 3; n++ {
		level := channelLevel[n]

		// with the tone masked off this is either the envelope or the
		// fixed level from the register
		p.amp[n] = level

		if mixer&(1<<n) == 0 {
			p.toneTick[n] += 2

			if p.toneTick[n] >= p.tonePeriod[n] {
				p.toneTick[n] %= p.tonePeriod[n]
				p.toneHigh[n] = !p.toneHigh[n]
			}

			if p.toneHigh[n] {
				p.amp[n] = level
			} else {
				p.amp[n] = 0
			}
		}

		// noise pulls the channel to zero while the generator is low
		if mixer&(8<<n) == 0 && p.noiseToggle {
			p.amp[n] = 0
		}
	}

	// the noise generator is a 17 bit LFSR. the output is decided by bits
	// 0 and 1 here, as the machine this was measured against does it; the
	// datasheet says bits 0 and 3
	p.noiseTick++
	for p.noiseTick >= p.noisePeriod {
		p.noiseTick -= p.noisePeriod

		if (p.rng&1)^((p.rng>>1)&1) != 0 {
			p.noiseToggle = !p.noiseToggle
		}

		if p.rng&1 != 0 {
			p.rng ^= 0x24000
		}
		p.rng >>= 1

		if p.noisePeriod == 0 {
			break
		}
	}
}

// Mix adds the chip's contribution to an unsigned 8 bit stereo pair and
// clamps. Channel A goes left, C right and B is split between the two.
func (p *PSG) Mix(left, right int) (uint8, uint8) {
	left += (p.amp[0] + p.amp[1]/2) / 4
	right += (p.amp[2] + p.amp[1]/2) / 4

	if p.Mono {
		centre := (left + right) / 2
		left = centre
		right = centre
	}

	if left > 255 {
		left = 255
	} else if left < 0 {
		left = 0
	}
	if right > 255 {
		right = 255
	} else if right < 0 {
		right = 0
	}

	return uint8(left), uint8(right)
}

// EnvelopeCounter exposes the current envelope step, for tests and the
// state dump.
func (p *PSG) EnvelopeCounter() int {
	return p.envCounter
}
