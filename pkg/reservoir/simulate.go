package reservoir

import (
	"fmt"
	"math"
)

// Result holds the outcome of one dispatch simulation: the realized
// generation (MW, negative while pumping) and the filling-level trajectory
// of each basin. DownstreamFillingMWH is nil for single-reservoir runs.
type Result struct {
	GenerationMW         []float64 `json:"generationMW"`
	UpstreamFillingMWH   []float64 `json:"upstreamFillingMWH"`
	DownstreamFillingMWH []float64 `json:"downstreamFillingMWH,omitempty"`
}

// Simulate folds the reservoir state over the hourly inflow and requested
// generation series, clipping the request at every step to what the basins
// physically allow. The fold is strictly sequential: each hour depends on
// the clipped outcome of the previous one.
func Simulate(inflowMWH, requestedMW []float64, initial State) (Result, error) {
	if len(inflowMWH) != len(requestedMW) {
		return Result{}, fmt.Errorf("inflow has %d hours but requested generation has %d", len(inflowMWH), len(requestedMW))
	}
	if initial == nil {
		return Result{}, fmt.Errorf("missing initial reservoir state")
	}
	if err := initial.validate(); err != nil {
		return Result{}, fmt.Errorf("invalid initial reservoir state: %w", err)
	}

	res := Result{
		GenerationMW:       make([]float64, len(requestedMW)),
		UpstreamFillingMWH: make([]float64, len(requestedMW)),
	}
	if initial.coupled() {
		res.DownstreamFillingMWH = make([]float64, len(requestedMW))
	}

	state := initial
	for i := range requestedMW {
		var generation float64
		state, generation = state.step(inflowMWH[i], requestedMW[i])
		res.GenerationMW[i] = generation
		up, down := state.levels()
		res.UpstreamFillingMWH[i] = up
		if res.DownstreamFillingMWH != nil {
			res.DownstreamFillingMWH[i] = down
		}
	}
	return res, nil
}

// ClampToCapacity limits the requested generation series to the plant power
// ratings: at most generationCapMW producing and at most consumptionCapMW
// pumping. It returns a new slice and is idempotent.
func ClampToCapacity(requestedMW []float64, generationCapMW, consumptionCapMW float64) []float64 {
	out := make([]float64, len(requestedMW))
	for i, v := range requestedMW {
		out[i] = math.Max(math.Min(v, generationCapMW), -consumptionCapMW)
	}
	return out
}
