package audio

import (
	"log"
	"math"
	"sync/atomic"
)

// param is a float cell with a single writer (the control loop) and a single reader (the render path).
type param struct {
	bits atomic.Uint64
}

func (p *param) load() float64 {
	return math.Float64frombits(p.bits.Load())
}

func (p *param) store(value float64) {
	p.bits.Store(math.Float64bits(value))
}

// set stores value if it lies in [min, max]. Otherwise it logs and keeps the previous value.
func (p *param) set(logger *log.Logger, name string, value float64, min float64, max float64) bool {
	if math.IsNaN(value) || value < min || value > max {
		logger.Printf("%s out of range [%v, %v]: %v (kept %v)\n", name, min, max, value, p.load())
		return false
	}
	p.store(value)
	return true
}

// setPositive stores value if it is > 0 and <= max.
func (p *param) setPositive(logger *log.Logger, name string, value float64, max float64) bool {
	if math.IsNaN(value) || value <= 0 || value > max {
		logger.Printf("%s out of range (0, %v]: %v (kept %v)\n", name, max, value, p.load())
		return false
	}
	p.store(value)
	return true
}
