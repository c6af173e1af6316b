package types

import (
	"fmt"
)

// CurrentBundleVersion is the current version of the stored bundle document.
const CurrentBundleVersion = 1

// Bundle holds every hourly series and capacity scalar needed to evaluate
// one country-year. All series share the same year and hourly grid. Power is
// in MW, stored energy in MWh.
//
// The series are named fields rather than a keyed map so that a missing
// series is a validation error at construction, not a lookup failure deep in
// a simulation run.
type Bundle struct {
	Region string `json:"region"`
	Year   int    `json:"year"`

	// Weather-driven series
	WindCapacityFactor  Series `json:"windCapacityFactor"`  // dimensionless, 0-1
	SolarCapacityFactor Series `json:"solarCapacityFactor"` // dimensionless, 0-1
	DemandMW            Series `json:"demandMW"`
	HydroInflowMWH      Series `json:"hydroInflowMWH"` // MWh-equivalent per hour

	// Metered hydropower series
	ConventionalHydroGenerationMW Series `json:"conventionalHydroGenerationMW"`
	PumpedStorageGenerationMW     Series `json:"pumpedStorageGenerationMW"`
	PumpedStorageConsumptionMW    Series `json:"pumpedStorageConsumptionMW"`
	RunOfRiverGenerationMW        Series `json:"runOfRiverGenerationMW"`
	ReservoirFillingLevelMWH      Series `json:"reservoirFillingLevelMWH"`

	// Installed capacities
	ConventionalHydroCapacityMW        float64 `json:"conventionalHydroCapacityMW"`
	PumpedStorageGenerationCapacityMW  float64 `json:"pumpedStorageGenerationCapacityMW"`
	PumpedStorageConsumptionCapacityMW float64 `json:"pumpedStorageConsumptionCapacityMW"`
	RunOfRiverCapacityMW               float64 `json:"runOfRiverCapacityMW"`
}

// Validate checks that every required series is present, covers the bundle's
// year, and that capacities are non-negative.
func (b Bundle) Validate() error {
	if b.Region == "" {
		return fmt.Errorf("bundle missing region")
	}
	if b.Year < 1900 || b.Year > 2200 {
		return fmt.Errorf("bundle year %d out of range", b.Year)
	}

	series := []struct {
		name string
		s    Series
	}{
		{"windCapacityFactor", b.WindCapacityFactor},
		{"solarCapacityFactor", b.SolarCapacityFactor},
		{"demandMW", b.DemandMW},
		{"hydroInflowMWH", b.HydroInflowMWH},
		{"conventionalHydroGenerationMW", b.ConventionalHydroGenerationMW},
		{"pumpedStorageGenerationMW", b.PumpedStorageGenerationMW},
		{"pumpedStorageConsumptionMW", b.PumpedStorageConsumptionMW},
		{"runOfRiverGenerationMW", b.RunOfRiverGenerationMW},
		{"reservoirFillingLevelMWH", b.ReservoirFillingLevelMWH},
	}
	for _, sv := range series {
		if sv.s.Len() == 0 {
			return fmt.Errorf("bundle missing series %s", sv.name)
		}
		if err := sv.s.validateLength(sv.name, b.Year); err != nil {
			return err
		}
	}

	caps := []struct {
		name string
		v    float64
	}{
		{"conventionalHydroCapacityMW", b.ConventionalHydroCapacityMW},
		{"pumpedStorageGenerationCapacityMW", b.PumpedStorageGenerationCapacityMW},
		{"pumpedStorageConsumptionCapacityMW", b.PumpedStorageConsumptionCapacityMW},
		{"runOfRiverCapacityMW", b.RunOfRiverCapacityMW},
	}
	for _, cv := range caps {
		if cv.v < 0 {
			return fmt.Errorf("bundle capacity %s is negative (%f)", cv.name, cv.v)
		}
	}
	return nil
}

// ActualHydroGenerationMW returns the metered net hydropower generation:
// conventional + pumped-storage + run-of-river generation minus
// pumped-storage consumption (pumping).
func (b Bundle) ActualHydroGenerationMW() []float64 {
	out := make([]float64, b.DemandMW.Len())
	for i := range out {
		out[i] = b.ConventionalHydroGenerationMW.Values[i] +
			b.PumpedStorageGenerationMW.Values[i] +
			b.RunOfRiverGenerationMW.Values[i] -
			b.PumpedStorageConsumptionMW.Values[i]
	}
	return out
}

// MeanActualHydroGenerationMW returns the mean of ActualHydroGenerationMW.
func (b Bundle) MeanActualHydroGenerationMW() float64 {
	vals := b.ActualHydroGenerationMW()
	var total float64
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}
