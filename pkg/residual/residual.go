// Package residual computes the residual electricity demand left after
// scaled wind and solar generation: the series that dispatchable hydropower
// (or unmet-demand accounting) has to address.
package residual

import (
	"fmt"

	"github.com/hydromix/hydromix/pkg/types"
)

// Generation is the per-hour wind and solar generation implied by one
// scenario, plus the mean levels both series were scaled to.
type Generation struct {
	WindMW       []float64 `json:"windMW"`
	SolarMW      []float64 `json:"solarMW"`
	MeanWindMW   float64   `json:"meanWindMW"`
	MeanSolarMW  float64   `json:"meanSolarMW"`
	MeanDemandMW float64   `json:"meanDemandMW"`
}

// Scale rescales the bundle's capacity-factor series so that total wind and
// solar output averages renewableShare times (mean demand - mean metered
// hydropower generation), split windFraction/(1-windFraction) between wind
// and solar.
//
// It fails fast when a capacity-factor series has a zero annual mean or the
// demand averages zero; silently dividing by those would propagate NaN
// through every downstream result.
func Scale(b types.Bundle, renewableShare, windFraction float64) (Generation, error) {
	if windFraction < 0 || windFraction > 1 {
		return Generation{}, fmt.Errorf("wind fraction %f outside [0, 1]", windFraction)
	}
	if renewableShare < 0 {
		return Generation{}, fmt.Errorf("renewable share %f is negative", renewableShare)
	}

	meanDemand := b.DemandMW.Mean()
	if meanDemand == 0 {
		return Generation{}, fmt.Errorf("demand series has zero mean")
	}
	meanWindCF := b.WindCapacityFactor.Mean()
	if meanWindCF == 0 {
		return Generation{}, fmt.Errorf("wind capacity factor series has zero mean")
	}
	meanSolarCF := b.SolarCapacityFactor.Mean()
	if meanSolarCF == 0 {
		return Generation{}, fmt.Errorf("solar capacity factor series has zero mean")
	}

	// Wind and solar cover the demand hydropower does not already meet.
	nonHydroDemand := meanDemand - b.MeanActualHydroGenerationMW()
	meanWind := renewableShare * windFraction * nonHydroDemand
	meanSolar := renewableShare * (1 - windFraction) * nonHydroDemand

	g := Generation{
		WindMW:       make([]float64, b.DemandMW.Len()),
		SolarMW:      make([]float64, b.DemandMW.Len()),
		MeanWindMW:   meanWind,
		MeanSolarMW:  meanSolar,
		MeanDemandMW: meanDemand,
	}
	for i := range g.WindMW {
		g.WindMW[i] = meanWind * b.WindCapacityFactor.Values[i] / meanWindCF
		g.SolarMW[i] = meanSolar * b.SolarCapacityFactor.Values[i] / meanSolarCF
	}
	return g, nil
}

// Demand returns demand minus the scenario's wind and solar generation.
// Negative hours are requests for consumption (pumping), not an error.
func Demand(b types.Bundle, renewableShare, windFraction float64) ([]float64, error) {
	g, err := Scale(b, renewableShare, windFraction)
	if err != nil {
		return nil, err
	}
	out := make([]float64, b.DemandMW.Len())
	for i := range out {
		out[i] = b.DemandMW.Values[i] - g.WindMW[i] - g.SolarMW[i]
	}
	return out, nil
}

// Subtract returns a-b element-wise in a new slice.
func Subtract(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}
