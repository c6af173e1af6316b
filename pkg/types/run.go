package types

import "time"

// CurrentRunVersion is the current version of the stored run document.
const CurrentRunVersion = 1

// BestMixPoint is the interpolated wind fraction that maximizes resource
// adequacy at one renewable share, together with the adequacy reached there.
type BestMixPoint struct {
	RenewableShare float64 `json:"renewableShare"`
	WindFraction   float64 `json:"windFraction"`
	Adequacy       float64 `json:"adequacy"`
}

// AdequacyRun is one persisted resource-adequacy sweep over a country-year.
type AdequacyRun struct {
	ID        string    `json:"id"`
	Region    string    `json:"region"`
	Year      int       `json:"year"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`

	Settings SweepSettings `json:"settings"`

	// Adequacy is indexed [renewable share][wind fraction]; values in [0, 1].
	Adequacy [][]float64    `json:"adequacy"`
	BestMix  []BestMixPoint `json:"bestMix"`

	DurationMS int64 `json:"durationMS"`
}
