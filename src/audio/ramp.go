package audio

// ----- Ramp ----- //

// segment moves linearly from `from` toward `to` over frames samples.
type segment struct {
	from   float64
	to     float64
	frames int
}

func (s segment) at(i int) float64 {
	return s.from + (s.to-s.from)*float64(i)/float64(s.frames)
}

// ramp is a precomputed table of concatenated linear segments.
// Positions past the end hold the final value.
type ramp struct {
	segments []segment
	length   int
	last     float64
	attack   int
}

func newRamp(segments ...segment) *ramp {
	r := &ramp{}
	for _, s := range segments {
		if s.frames <= 0 {
			r.last = s.to
			continue
		}
		r.segments = append(r.segments, s)
		r.length += s.frames
		r.last = s.to
	}
	return r
}

/*
  target +     x
         |    / \
         |   /   \
 sustain +  /     x---x
         | /
       0 +-----+---+--+
         |a    |d  |hold
*/
func newADSRamp(attack int, decay int, sustain float64, target float64, hold int) *ramp {
	level := sustain * target
	r := newRamp(
		segment{from: 0, to: target, frames: attack},
		segment{from: target, to: level, frames: decay},
		segment{from: level, to: level, frames: hold},
	)
	if attack > 0 {
		r.attack = attack
	}
	return r
}

func (r *ramp) at(pos int) float64 {
	for _, s := range r.segments {
		if pos < s.frames {
			return s.at(pos)
		}
		pos -= s.frames
	}
	return r.last
}

func (r *ramp) attackFrames() int {
	return r.attack
}

// positionFor returns where the attack segment reaches level, so a retrigger resumes without a jump.
func (r *ramp) positionFor(level float64, target float64) int {
	frames := r.attackFrames()
	if frames == 0 || target <= 0 || level <= 0 {
		return 0
	}
	if level >= target {
		return frames
	}
	pos := int(level / target * float64(frames))
	if pos > frames {
		pos = frames
	}
	return pos
}
