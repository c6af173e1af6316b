package reservoir

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/types"
)

// DispatchResult is the feasible hydropower answer to a residual-demand
// series: realized generation (run-of-river included) and the simulated
// reservoir trajectories.
type DispatchResult struct {
	// GenerationMW is the realized hydropower generation including
	// run-of-river, negative while pumping exceeds generation.
	GenerationMW         []float64 `json:"generationMW"`
	UpstreamFillingMWH   []float64 `json:"upstreamFillingMWH"`
	DownstreamFillingMWH []float64 `json:"downstreamFillingMWH,omitempty"`

	// ConsumptionCapped reports that the configured pumping capacity
	// exceeded the cap and was reduced.
	ConsumptionCapped bool `json:"consumptionCapped"`
}

// Dispatch turns the residual demand into a physically feasible hydropower
// generation series for the bundle's plants: it clamps the request to the
// installed power ratings, simulates the reservoirs hour by hour, and adds
// the (non-dispatchable) run-of-river generation on top.
//
// With a zero pumped-storage fraction the plants dispatch against a single
// reservoir; otherwise a downstream basin sized by the consumption capacity
// and the configured hours of pumping autonomy is coupled in.
func Dispatch(ctx context.Context, b types.Bundle, residualMW []float64, set types.SweepSettings) (DispatchResult, error) {
	set.ApplyDefaults()

	if len(residualMW) != b.DemandMW.Len() {
		return DispatchResult{}, fmt.Errorf("residual demand has %d hours, bundle has %d", len(residualMW), b.DemandMW.Len())
	}

	generationCap := b.ConventionalHydroCapacityMW + b.PumpedStorageGenerationCapacityMW
	consumptionCap := set.PumpedStorageFraction * b.PumpedStorageConsumptionCapacityMW

	capped := false
	if consumptionCap > set.ConsumptionCapFraction*generationCap {
		log.Ctx(ctx).WarnContext(ctx, "pumped-storage consumption capacity capped",
			slog.String("region", b.Region),
			slog.Float64("requestedMW", consumptionCap),
			slog.Float64("cappedMW", set.ConsumptionCapFraction*generationCap),
			slog.Float64("capFraction", set.ConsumptionCapFraction),
		)
		consumptionCap = set.ConsumptionCapFraction * generationCap
		capped = true
	}

	requested := ClampToCapacity(residualMW, generationCap, consumptionCap)

	// The previous hour's inflow enters this hour's energy balance.
	inflow := b.HydroInflowMWH.Shifted(1, 0)

	filling := b.ReservoirFillingLevelMWH
	var initial State
	if set.PumpedStorageFraction > 0 {
		downUpper := consumptionCap * set.HoursAtFullConsumption
		downLower := set.DownstreamFloorFraction * downUpper
		initial = NewCoupled(
			Basin{
				FillingMWH:    filling.Values[0],
				LowerBoundMWH: filling.Min(),
				UpperBoundMWH: filling.Max(),
			},
			Basin{
				// Half full when no metered level is known.
				FillingMWH:    0.5 * downUpper,
				LowerBoundMWH: downLower,
				UpperBoundMWH: downUpper,
			},
		)
	} else {
		initial = NewSingle(filling.Values[0], filling.Min(), filling.Max())
	}

	res, err := Simulate(inflow, requested, initial)
	if err != nil {
		return DispatchResult{}, err
	}

	generation := make([]float64, len(res.GenerationMW))
	for i, g := range res.GenerationMW {
		generation[i] = g + b.RunOfRiverGenerationMW.Values[i]
	}

	return DispatchResult{
		GenerationMW:         generation,
		UpstreamFillingMWH:   res.UpstreamFillingMWH,
		DownstreamFillingMWH: res.DownstreamFillingMWH,
		ConsumptionCapped:    capped,
	}, nil
}
