package adequacy

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// upsamplePoints is the size of the fine grid the fitted curve is sampled
// on when hunting for the maximum.
const upsamplePoints = 1001

// BestMix fits a cubic spline through the adequacy values along the
// wind-fraction axis and returns the wind fraction (on a fine upsampled
// grid) at which the interpolated curve peaks, together with the adequacy
// reached there. The wind fractions must be strictly increasing.
func BestMix(windFractions, adequacy []float64) (float64, float64, error) {
	if len(windFractions) != len(adequacy) {
		return 0, 0, fmt.Errorf("%d wind fractions but %d adequacy values", len(windFractions), len(adequacy))
	}
	if len(windFractions) == 0 {
		return 0, 0, fmt.Errorf("no wind fractions to fit")
	}
	if len(windFractions) == 1 {
		return windFractions[0], adequacy[0], nil
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(windFractions, adequacy); err != nil {
		return 0, 0, fmt.Errorf("failed to fit adequacy spline: %w", err)
	}

	first := windFractions[0]
	last := windFractions[len(windFractions)-1]
	step := (last - first) / float64(upsamplePoints-1)

	bestFrac := first
	bestValue := spline.Predict(first)
	for i := 1; i < upsamplePoints; i++ {
		x := first + float64(i)*step
		if v := spline.Predict(x); v > bestValue {
			bestValue = v
			bestFrac = x
		}
	}
	return bestFrac, bestValue, nil
}
