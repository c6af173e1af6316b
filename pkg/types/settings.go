package types

import (
	"fmt"
	"math"
)

// CurrentSweepSettingsVersion is the current version of the sweep settings
// struct. Increment this value when adding new fields that require default
// values.
const CurrentSweepSettingsVersion = 2

// SweepSettings represents the per-region scenario configuration stored in
// the database. These are dynamic settings that can be changed without
// redeploying.
type SweepSettings struct {
	// Scenario axes.
	// RenewableShares are targets for total wind+solar output, expressed as a
	// multiple of (mean demand - mean hydropower generation).
	RenewableShares []float64 `json:"renewableShares"`
	// WindFractions are the wind shares of that total, in [0, 1].
	WindFractions []float64 `json:"windFractions"`

	// UseActualHydro uses the metered hydropower generation instead of
	// simulating reservoir dispatch.
	UseActualHydro bool `json:"useActualHydro"`

	// PumpedStorageFraction scales the pumped-storage consumption capacity.
	// 0 disables pumping entirely (single-reservoir dispatch), 1 keeps the
	// currently installed capacity, values above 1 model expansion.
	PumpedStorageFraction float64 `json:"pumpedStorageFraction"`

	// HoursAtFullConsumption is how long the pumped-storage plants can pump
	// at full power before the downstream basin runs dry. It sizes the
	// downstream reservoir.
	HoursAtFullConsumption float64 `json:"hoursAtFullConsumption"`

	// ConsumptionCapFraction caps total pumping capacity at this fraction of
	// total generation capacity. Empirical constant, not a physical law.
	ConsumptionCapFraction float64 `json:"consumptionCapFraction"`

	// DownstreamFloorFraction sets the downstream reservoir's lower bound as
	// a fraction of its upper bound. Empirical constant.
	DownstreamFloorFraction float64 `json:"downstreamFloorFraction"`
}

// DefaultSweepSettings returns the settings used when a region has none
// stored yet: shares from 1.0 to 3.0 in steps of 0.1 and wind fractions from
// 0 to 1 in steps of 0.05, with actual metered hydropower.
func DefaultSweepSettings() SweepSettings {
	s := SweepSettings{
		RenewableShares: stepRange(1.0, 3.0, 0.1),
		WindFractions:   stepRange(0, 1.0, 0.05),
		UseActualHydro:  true,
	}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero-valued tuning fields with their defaults. It does
// not touch the scenario axes.
func (s *SweepSettings) ApplyDefaults() {
	if s.HoursAtFullConsumption == 0 {
		s.HoursAtFullConsumption = 8
	}
	if s.ConsumptionCapFraction == 0 {
		s.ConsumptionCapFraction = 0.8
	}
	if s.DownstreamFloorFraction == 0 {
		s.DownstreamFloorFraction = 0.1
	}
}

// Validate checks that the scenario axes are usable for a sweep.
func (s SweepSettings) Validate() error {
	if len(s.RenewableShares) == 0 {
		return fmt.Errorf("no renewable shares configured")
	}
	if len(s.WindFractions) == 0 {
		return fmt.Errorf("no wind fractions configured")
	}
	for i, f := range s.WindFractions {
		if f < 0 || f > 1 {
			return fmt.Errorf("wind fraction %d (%f) outside [0, 1]", i, f)
		}
		if i > 0 && f <= s.WindFractions[i-1] {
			return fmt.Errorf("wind fractions must be strictly increasing")
		}
	}
	for i, f := range s.RenewableShares {
		if f < 0 {
			return fmt.Errorf("renewable share %d (%f) is negative", i, f)
		}
		if i > 0 && f <= s.RenewableShares[i-1] {
			return fmt.Errorf("renewable shares must be strictly increasing")
		}
	}
	if s.PumpedStorageFraction < 0 {
		return fmt.Errorf("pumped storage fraction is negative")
	}
	if s.ConsumptionCapFraction < 0 || s.ConsumptionCapFraction > 1 {
		return fmt.Errorf("consumption cap fraction outside [0, 1]")
	}
	if s.DownstreamFloorFraction < 0 || s.DownstreamFloorFraction >= 1 {
		return fmt.Errorf("downstream floor fraction outside [0, 1)")
	}
	if s.HoursAtFullConsumption < 0 {
		return fmt.Errorf("hours at full consumption is negative")
	}
	return nil
}

// MigrateSweepSettings migrates the settings to the current version.
// It returns the migrated settings, a boolean indicating if changes were
// made, and an error if migration failed.
func MigrateSweepSettings(s SweepSettings, currentVersion int) (SweepSettings, bool, error) {
	if currentVersion >= CurrentSweepSettingsVersion {
		return s, false, nil
	}

	migrated := false
	for version := currentVersion + 1; version <= CurrentSweepSettingsVersion; version++ {
		switch version {
		case 1:
			// version 1: initial
			if len(s.RenewableShares) == 0 {
				s.RenewableShares = stepRange(1.0, 3.0, 0.1)
				migrated = true
			}
			if len(s.WindFractions) == 0 {
				s.WindFractions = stepRange(0, 1.0, 0.05)
				migrated = true
			}
			if s.HoursAtFullConsumption == 0 {
				s.HoursAtFullConsumption = 8
				migrated = true
			}
		case 2:
			// version 2: the consumption cap and downstream floor became
			// configurable
			if s.ConsumptionCapFraction == 0 {
				s.ConsumptionCapFraction = 0.8
				migrated = true
			}
			if s.DownstreamFloorFraction == 0 {
				s.DownstreamFloorFraction = 0.1
				migrated = true
			}
		default:
			return s, false, fmt.Errorf("unknown sweep settings version: %d", version)
		}
	}

	return s, migrated, nil
}

// stepRange returns start, start+step, ... up to and including stop. Points
// are generated by index rather than by repeated addition so the endpoint is
// exact; an accumulated wind-fraction axis would drift past 1.0 and fail
// validation.
func stepRange(start, stop, step float64) []float64 {
	n := int(math.Round((stop-start)/step)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
