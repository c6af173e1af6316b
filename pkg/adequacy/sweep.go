// Package adequacy evaluates how well a wind/solar/hydropower mix meets a
// country-year of hourly electricity demand, sweeping a grid of generation
// scenarios and locating the mix that maximizes resource adequacy.
package adequacy

import (
	"context"
	"fmt"
	"sync"

	"github.com/hydromix/hydromix/pkg/reservoir"
	"github.com/hydromix/hydromix/pkg/residual"
	"github.com/hydromix/hydromix/pkg/types"
)

// CellResult is the outcome of one (renewable share, wind fraction)
// scenario.
type CellResult struct {
	// ResidualMW is demand minus wind, solar, and hydropower generation.
	// Positive hours are unmet demand.
	ResidualMW []float64 `json:"residualMW"`
	// HydroGenerationMW is the hydropower generation used: metered, or
	// simulated by reservoir dispatch.
	HydroGenerationMW    []float64 `json:"hydroGenerationMW"`
	UpstreamFillingMWH   []float64 `json:"upstreamFillingMWH,omitempty"`
	DownstreamFillingMWH []float64 `json:"downstreamFillingMWH,omitempty"`
	ConsumptionCapped    bool      `json:"consumptionCapped"`

	UnmetFraction float64 `json:"unmetFraction"`
	Adequacy      float64 `json:"adequacy"`
}

// Evaluate runs a single scenario cell: residual demand after scaled wind
// and solar, hydropower on top (metered or dispatched), and the resulting
// unmet-demand fraction. Resource adequacy is 1 - unmet fraction.
func Evaluate(ctx context.Context, b types.Bundle, renewableShare, windFraction float64, set types.SweepSettings) (CellResult, error) {
	afterRenewables, err := residual.Demand(b, renewableShare, windFraction)
	if err != nil {
		return CellResult{}, err
	}

	res := CellResult{}
	if set.UseActualHydro {
		res.HydroGenerationMW = b.ActualHydroGenerationMW()
	} else {
		dispatched, err := reservoir.Dispatch(ctx, b, afterRenewables, set)
		if err != nil {
			return CellResult{}, err
		}
		res.HydroGenerationMW = dispatched.GenerationMW
		res.UpstreamFillingMWH = dispatched.UpstreamFillingMWH
		res.DownstreamFillingMWH = dispatched.DownstreamFillingMWH
		res.ConsumptionCapped = dispatched.ConsumptionCapped
	}

	res.ResidualMW = residual.Subtract(afterRenewables, res.HydroGenerationMW)

	totalDemand := b.DemandMW.Sum()
	if totalDemand == 0 {
		return CellResult{}, fmt.Errorf("demand series sums to zero")
	}
	var unmet float64
	for _, v := range res.ResidualMW {
		if v > 0 {
			unmet += v
		}
	}
	res.UnmetFraction = unmet / totalDemand
	res.Adequacy = 1 - res.UnmetFraction
	return res, nil
}

// Surface is the full resource-adequacy table over the scenario grid, plus
// the interpolated best mix per renewable share.
type Surface struct {
	RenewableShares []float64 `json:"renewableShares"`
	WindFractions   []float64 `json:"windFractions"`
	// Adequacy is indexed [renewable share][wind fraction].
	Adequacy [][]float64          `json:"adequacy"`
	BestMix  []types.BestMixPoint `json:"bestMix"`
}

// Sweep evaluates every (renewable share, wind fraction) pair. Cells are
// independent given the shared bundle, so rows run in parallel; each cell
// carries its own reservoir state, and only the dispatch fold inside a cell
// is sequential.
func Sweep(ctx context.Context, b types.Bundle, set types.SweepSettings) (Surface, error) {
	set.ApplyDefaults()
	if err := set.Validate(); err != nil {
		return Surface{}, fmt.Errorf("invalid sweep settings: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Surface{}, fmt.Errorf("invalid bundle: %w", err)
	}

	surface := Surface{
		RenewableShares: set.RenewableShares,
		WindFractions:   set.WindFractions,
		Adequacy:        make([][]float64, len(set.RenewableShares)),
	}

	errs := make([]error, len(set.RenewableShares))
	var wg sync.WaitGroup
	for i, share := range set.RenewableShares {
		wg.Add(1)
		go func(i int, share float64) {
			defer wg.Done()
			row := make([]float64, len(set.WindFractions))
			for j, frac := range set.WindFractions {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					return
				}
				cell, err := Evaluate(ctx, b, share, frac, set)
				if err != nil {
					errs[i] = fmt.Errorf("share=%g windFraction=%g: %w", share, frac, err)
					return
				}
				row[j] = cell.Adequacy
			}
			surface.Adequacy[i] = row
		}(i, share)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Surface{}, err
		}
	}

	surface.BestMix = make([]types.BestMixPoint, len(set.RenewableShares))
	for i, share := range set.RenewableShares {
		frac, value, err := BestMix(set.WindFractions, surface.Adequacy[i])
		if err != nil {
			return Surface{}, fmt.Errorf("best mix at share=%g: %w", share, err)
		}
		surface.BestMix[i] = types.BestMixPoint{
			RenewableShare: share,
			WindFraction:   frac,
			Adequacy:       value,
		}
	}
	return surface, nil
}
