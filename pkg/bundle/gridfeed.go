package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/hydromix/hydromix/pkg/common"
	"github.com/hydromix/hydromix/pkg/log"
	"github.com/hydromix/hydromix/pkg/types"
)

const (
	// Discharge (m3/s) to stored energy (MWh per hour) at a nominal 50 m
	// head: 1000 kg/m3 * 9.81 m/s2 * 50 m * 3600 s / 3.6e9 J/MWh.
	dischargeToMWH = 1000 * 9.81 * 50 * 3600 / 3.6e9

	// Fraction of generation capacity assumed for pumping when the feed
	// does not report a consumption capacity.
	assumedConsumptionCapFraction = 0.8
)

// GridFeed implements the Provider interface against a grid data feed that
// serves hourly country-year series and installed capacities.
type GridFeed struct {
	apiURL string
	apiKey string
	client *http.Client

	mu     sync.Mutex
	cached map[string]types.Bundle
}

// configuredGridFeed sets up flags for the grid feed and returns the instance.
// It uses lflag to register command-line flags for configuration.
func configuredGridFeed() *GridFeed {
	g := &GridFeed{
		client: common.HTTPClient(30 * time.Second),
		cached: make(map[string]types.Bundle),
	}
	apiURL := lflag.String("gridfeed-api-url", "", "URL for the grid data feed API")
	apiKey := lflag.String("gridfeed-api-key", "", "API key for the grid data feed (optional)")

	lflag.Do(func() {
		g.apiURL = *apiURL
		g.apiKey = *apiKey
	})

	return g
}

// Describe implements the Provider interface.
func (g *GridFeed) Describe() string {
	return "live hourly country-year series and capacities from the grid data feed"
}

// Validate ensures the configuration is valid.
func (g *GridFeed) Validate() error {
	if g.apiURL == "" {
		return fmt.Errorf("gridfeed-api-url is required")
	}
	if _, err := url.Parse(g.apiURL); err != nil {
		return fmt.Errorf("failed to parse gridfeed url (%s): %w", g.apiURL, err)
	}
	return nil
}

// gridFeedResponse represents the structure of the JSON returned by the feed.
// The inflow arrives as river discharge and is converted locally.
type gridFeedResponse struct {
	Region string `json:"region"`
	Year   int    `json:"year"`

	WindCapacityFactor            []float64 `json:"windCapacityFactor"`
	SolarCapacityFactor           []float64 `json:"solarCapacityFactor"`
	DemandMW                      []float64 `json:"demandMW"`
	RiverDischargeM3S             []float64 `json:"riverDischargeM3S"`
	ConventionalHydroGenerationMW []float64 `json:"conventionalHydroGenerationMW"`
	PumpedStorageGenerationMW     []float64 `json:"pumpedStorageGenerationMW"`
	PumpedStorageConsumptionMW    []float64 `json:"pumpedStorageConsumptionMW"`
	RunOfRiverGenerationMW        []float64 `json:"runOfRiverGenerationMW"`
	ReservoirFillingLevelMWH      []float64 `json:"reservoirFillingLevelMWH"`

	ConventionalHydroCapacityMW        float64 `json:"conventionalHydroCapacityMW"`
	PumpedStorageGenerationCapacityMW  float64 `json:"pumpedStorageGenerationCapacityMW"`
	PumpedStorageConsumptionCapacityMW float64 `json:"pumpedStorageConsumptionCapacityMW"`
	RunOfRiverCapacityMW               float64 `json:"runOfRiverCapacityMW"`
}

// Bundle fetches, converts, and validates the bundle for a region and year.
// Historical feeds are immutable so results are cached for the process
// lifetime.
func (g *GridFeed) Bundle(ctx context.Context, region string, year int) (types.Bundle, error) {
	key := region + "/" + strconv.Itoa(year)
	g.mu.Lock()
	if b, ok := g.cached[key]; ok {
		g.mu.Unlock()
		return b, nil
	}
	g.mu.Unlock()

	resp, err := g.fetch(ctx, region, year)
	if err != nil {
		return types.Bundle{}, err
	}

	b, err := g.assemble(ctx, resp)
	if err != nil {
		return types.Bundle{}, err
	}

	g.mu.Lock()
	g.cached[key] = b
	g.mu.Unlock()
	return b, nil
}

func (g *GridFeed) fetch(ctx context.Context, region string, year int) (gridFeedResponse, error) {
	u, err := url.Parse(g.apiURL)
	if err != nil {
		return gridFeedResponse{}, fmt.Errorf("invalid api url: %w", err)
	}
	params := url.Values{}
	params.Set("region", region)
	params.Set("year", strconv.Itoa(year))
	params.Set("format", "json")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return gridFeedResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetching bundle from grid feed", slog.String("url", u.String()))

	resp, err := g.client.Do(req)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch bundle", slog.Any("error", err))
		return gridFeedResponse{}, fmt.Errorf("failed to fetch bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gridFeedResponse{}, fmt.Errorf("grid feed returned status: %d", resp.StatusCode)
	}

	var data gridFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode grid feed response", slog.Any("error", err))
		return gridFeedResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return data, nil
}

// assemble converts the raw feed response into a validated bundle: discharge
// becomes inflow energy normalized to the metered hydropower balance, and a
// missing consumption capacity is derived from the generation capacity.
func (g *GridFeed) assemble(ctx context.Context, resp gridFeedResponse) (types.Bundle, error) {
	inflow := make([]float64, len(resp.RiverDischargeM3S))
	for i, d := range resp.RiverDischargeM3S {
		inflow[i] = d * dischargeToMWH
	}

	// Normalize the inflow so its mean matches the metered hydro balance:
	// what the reservoirs actually passed through over the year.
	var inflowSum, balanceSum float64
	for i := range inflow {
		inflowSum += inflow[i]
	}
	for i := range resp.ConventionalHydroGenerationMW {
		balanceSum += resp.ConventionalHydroGenerationMW[i] +
			resp.PumpedStorageGenerationMW[i] -
			resp.PumpedStorageConsumptionMW[i]
	}
	if inflowSum > 0 && balanceSum > 0 {
		scale := balanceSum / inflowSum
		for i := range inflow {
			inflow[i] *= scale
		}
	}

	consumptionCap := resp.PumpedStorageConsumptionCapacityMW
	if consumptionCap == 0 && resp.PumpedStorageGenerationCapacityMW > 0 {
		consumptionCap = assumedConsumptionCapFraction * resp.PumpedStorageGenerationCapacityMW
		log.Ctx(ctx).InfoContext(ctx, "feed missing pumped-storage consumption capacity, deriving it",
			slog.String("region", resp.Region),
			slog.Float64("derivedMW", consumptionCap),
		)
	}

	b := types.Bundle{
		Region:                             resp.Region,
		Year:                               resp.Year,
		WindCapacityFactor:                 types.NewSeries(resp.Year, resp.WindCapacityFactor),
		SolarCapacityFactor:                types.NewSeries(resp.Year, resp.SolarCapacityFactor),
		DemandMW:                           types.NewSeries(resp.Year, resp.DemandMW),
		HydroInflowMWH:                     types.NewSeries(resp.Year, inflow),
		ConventionalHydroGenerationMW:      types.NewSeries(resp.Year, resp.ConventionalHydroGenerationMW),
		PumpedStorageGenerationMW:          types.NewSeries(resp.Year, resp.PumpedStorageGenerationMW),
		PumpedStorageConsumptionMW:         types.NewSeries(resp.Year, resp.PumpedStorageConsumptionMW),
		RunOfRiverGenerationMW:             types.NewSeries(resp.Year, resp.RunOfRiverGenerationMW),
		ReservoirFillingLevelMWH:           types.NewSeries(resp.Year, resp.ReservoirFillingLevelMWH),
		ConventionalHydroCapacityMW:        resp.ConventionalHydroCapacityMW,
		PumpedStorageGenerationCapacityMW:  resp.PumpedStorageGenerationCapacityMW,
		PumpedStorageConsumptionCapacityMW: consumptionCap,
		RunOfRiverCapacityMW:               resp.RunOfRiverCapacityMW,
	}
	if err := b.Validate(); err != nil {
		return types.Bundle{}, fmt.Errorf("grid feed returned invalid bundle: %w", err)
	}
	return b, nil
}
