package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/storage"
	"github.com/hydromix/hydromix/pkg/types"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	region := lflag.String("seed-region", "testland", "Region to seed")
	yearStr := lflag.String("seed-year", "2023", "Calendar year to seed")
	lflag.Configure()

	year, err := strconv.Atoi(*yearStr)
	if err != nil {
		panic(fmt.Errorf("invalid seed-year: %w", err))
	}

	ctx := context.Background()

	log.Ctx(ctx).InfoContext(ctx, "seeding mock data")

	// Use a new random source
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	b := synthesizeBundle(rng, *region, year)
	if err := b.Validate(); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "synthesized bundle is invalid", "error", err)
		os.Exit(1)
	}

	if err := s.UpsertBundle(ctx, b, types.CurrentBundleVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed bundle", "error", err)
		os.Exit(1)
	}

	settings := types.DefaultSweepSettings()
	if err := s.SetSweepSettings(ctx, *region, settings, types.CurrentSweepSettingsVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed settings", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %s/%d: %d hours, mean demand %.0f MW, mean inflow %.0f MWh\n",
		*region, year, b.DemandMW.Len(), b.DemandMW.Mean(), b.HydroInflowMWH.Mean())

	log.Ctx(ctx).InfoContext(ctx, "seeded mock data successfully")
}

// synthesizeBundle generates a plausible country-year: winter-peaking demand
// with a daily cycle, seasonal wind, a solar bell curve, a spring-melt inflow
// pulse, and hydropower plants roughly following demand.
func synthesizeBundle(rng *rand.Rand, region string, year int) types.Bundle {
	const (
		convCapMW       = 2000.0
		pumpedGenCapMW  = 600.0
		pumpedConsCapMW = 480.0
		rorCapMW        = 800.0
		reservoirMWH    = 2_000_000.0
	)

	n := types.HoursInYear(year)
	demand := make([]float64, n)
	windCF := make([]float64, n)
	solarCF := make([]float64, n)
	inflow := make([]float64, n)
	convGen := make([]float64, n)
	pumpedGen := make([]float64, n)
	pumpedCons := make([]float64, n)
	rorGen := make([]float64, n)
	filling := make([]float64, n)

	level := 0.5 * reservoirMWH
	for i := 0; i < n; i++ {
		hour := i % 24
		day := float64(i / 24)
		// +1 in winter, -1 in summer (northern hemisphere)
		season := math.Cos(2 * math.Pi * (day - 15) / 365)
		// daily demand cycle peaking in the evening
		diurnal := math.Sin(2 * math.Pi * (float64(hour) - 6) / 24)

		demand[i] = 8000 + 1500*season + 1200*diurnal + rng.Float64()*400

		windCF[i] = clamp(0.28+0.12*season+0.08*math.Sin(2*math.Pi*day/17)+rng.Float64()*0.15, 0.01, 1)

		// daylight bell centered on 13:00, stronger in summer
		if hour > 5 && hour < 21 {
			dist := float64(hour) - 13
			solarCF[i] = clamp((0.55-0.35*season)*math.Exp(-dist*dist/14)+rng.Float64()*0.02, 0, 1)
		}

		// spring melt pulse on top of a baseline
		melt := 900 * math.Exp(-math.Pow((day-140)/45, 2))
		inflow[i] = 400 + melt + rng.Float64()*120

		convGen[i] = clamp(800+400*diurnal+rng.Float64()*100, 0, convCapMW)
		if hour >= 17 && hour < 22 {
			pumpedGen[i] = clamp(300+rng.Float64()*100, 0, pumpedGenCapMW)
		}
		if hour >= 1 && hour < 5 {
			pumpedCons[i] = clamp(250+rng.Float64()*80, 0, pumpedConsCapMW)
		}
		rorGen[i] = clamp(300+150*melt/900+rng.Float64()*60, 0, rorCapMW)

		level += inflow[i] - convGen[i] - pumpedGen[i] + pumpedCons[i]
		level = clamp(level, 0.1*reservoirMWH, reservoirMWH)
		filling[i] = level
	}

	return types.Bundle{
		Region:                             region,
		Year:                               year,
		WindCapacityFactor:                 types.NewSeries(year, windCF),
		SolarCapacityFactor:                types.NewSeries(year, solarCF),
		DemandMW:                           types.NewSeries(year, demand),
		HydroInflowMWH:                     types.NewSeries(year, inflow),
		ConventionalHydroGenerationMW:      types.NewSeries(year, convGen),
		PumpedStorageGenerationMW:          types.NewSeries(year, pumpedGen),
		PumpedStorageConsumptionMW:         types.NewSeries(year, pumpedCons),
		RunOfRiverGenerationMW:             types.NewSeries(year, rorGen),
		ReservoirFillingLevelMWH:           types.NewSeries(year, filling),
		ConventionalHydroCapacityMW:        convCapMW,
		PumpedStorageGenerationCapacityMW:  pumpedGenCapMW,
		PumpedStorageConsumptionCapacityMW: pumpedConsCapMW,
		RunOfRiverCapacityMW:               rorCapMW,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
