package reservoir

import (
	"fmt"
	"math"
)

// Basin is one reservoir basin: a filling level (MWh) bounded below and
// above. Levels are clipped to the bounds at every step, never allowed to
// overflow or go negative.
type Basin struct {
	FillingMWH    float64 `json:"fillingMWH"`
	LowerBoundMWH float64 `json:"lowerBoundMWH"`
	UpperBoundMWH float64 `json:"upperBoundMWH"`
}

func (b Basin) validate(name string) error {
	if b.LowerBoundMWH > b.UpperBoundMWH {
		return fmt.Errorf("%s basin: lower bound %f above upper bound %f", name, b.LowerBoundMWH, b.UpperBoundMWH)
	}
	if b.FillingMWH < b.LowerBoundMWH || b.FillingMWH > b.UpperBoundMWH {
		return fmt.Errorf("%s basin: filling level %f outside [%f, %f]", name, b.FillingMWH, b.LowerBoundMWH, b.UpperBoundMWH)
	}
	return nil
}

// State is the reservoir filling state threaded hour-to-hour through the
// dispatch fold. It is either a Single basin or a Coupled pumped-storage
// pair; step is pure and returns the successor state together with the
// realized generation for the hour.
type State interface {
	step(inflowMWH, requestedMW float64) (State, float64)
	levels() (upstream, downstream float64)
	coupled() bool
	validate() error
}

// Single is a conventional reservoir: inflow fills it, generation drains it.
type Single struct {
	Basin
}

// NewSingle returns a single-reservoir state.
func NewSingle(filling, lower, upper float64) Single {
	return Single{Basin{FillingMWH: filling, LowerBoundMWH: lower, UpperBoundMWH: upper}}
}

func (s Single) step(inflowMWH, requestedMW float64) (State, float64) {
	// Inflow first, clipped to the upper bound (spill is lost).
	level := math.Min(s.FillingMWH+inflowMWH, s.UpperBoundMWH)
	// Cannot generate more than the water sitting above the floor.
	generation := math.Min(requestedMW, level-s.LowerBoundMWH)
	s.FillingMWH = level - generation
	return s, generation
}

func (s Single) levels() (float64, float64) { return s.FillingMWH, 0 }
func (s Single) coupled() bool              { return false }
func (s Single) validate() error            { return s.Basin.validate("single") }

// Coupled is a pumped-storage pair: generation moves energy from the
// upstream to the downstream basin, pumping (negative generation) moves it
// back. Only the upstream basin receives natural inflow.
type Coupled struct {
	Upstream   Basin
	Downstream Basin
}

// NewCoupled returns a coupled two-basin state.
func NewCoupled(upstream, downstream Basin) Coupled {
	return Coupled{Upstream: upstream, Downstream: downstream}
}

func (s Coupled) step(inflowMWH, requestedMW float64) (State, float64) {
	up := math.Min(s.Upstream.FillingMWH+inflowMWH, s.Upstream.UpperBoundMWH)

	generation := requestedMW
	if generation > 0 {
		// Cannot generate more than the upstream water above the floor.
		generation = math.Min(generation, up-s.Upstream.LowerBoundMWH)
	} else {
		// Pumping is limited by the downstream water available to pump from
		// and by the upstream headroom it has to go to.
		generation = math.Max(generation, -(s.Downstream.FillingMWH - s.Downstream.LowerBoundMWH))
		generation = math.Max(generation, -(s.Upstream.UpperBoundMWH - up))
	}

	s.Upstream.FillingMWH = up - generation
	s.Downstream.FillingMWH = math.Min(s.Downstream.FillingMWH+generation, s.Downstream.UpperBoundMWH)
	return s, generation
}

func (s Coupled) levels() (float64, float64) {
	return s.Upstream.FillingMWH, s.Downstream.FillingMWH
}
func (s Coupled) coupled() bool { return true }

func (s Coupled) validate() error {
	if err := s.Upstream.validate("upstream"); err != nil {
		return err
	}
	return s.Downstream.validate("downstream")
}
