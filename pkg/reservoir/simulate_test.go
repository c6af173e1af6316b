package reservoir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateSingle(t *testing.T) {
	t.Run("clips to available water", func(t *testing.T) {
		res, err := Simulate(
			[]float64{10, 0, 0},
			[]float64{5, 80, 0},
			NewSingle(50, 0, 100),
		)
		require.NoError(t, err)
		// hour 2 asks for 80 MW with only 55 MWh above the floor
		assert.Equal(t, []float64{5, 55, 0}, res.GenerationMW)
		assert.Equal(t, []float64{55, 0, 0}, res.UpstreamFillingMWH)
		assert.Nil(t, res.DownstreamFillingMWH)
	})

	t.Run("idle reservoir holds its level", func(t *testing.T) {
		inflow := make([]float64, 10)
		requested := make([]float64, 10)
		res, err := Simulate(inflow, requested, NewSingle(40, 10, 100))
		require.NoError(t, err)
		for i := range res.UpstreamFillingMWH {
			assert.Equal(t, 40.0, res.UpstreamFillingMWH[i], "hour %d", i)
			assert.Equal(t, 0.0, res.GenerationMW[i], "hour %d", i)
		}
	})

	t.Run("spill above the upper bound is lost", func(t *testing.T) {
		res, err := Simulate(
			[]float64{30, 30},
			[]float64{0, 0},
			NewSingle(90, 0, 100),
		)
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 100}, res.UpstreamFillingMWH)
	})

	t.Run("conserves energy when nothing spills", func(t *testing.T) {
		inflow := []float64{5, 3, 0, 7, 2}
		requested := []float64{2, 2, 2, 2, 2}
		initial := 50.0
		res, err := Simulate(inflow, requested, NewSingle(initial, 0, 1000))
		require.NoError(t, err)

		var totalIn, totalOut float64
		for i := range inflow {
			totalIn += inflow[i]
			totalOut += res.GenerationMW[i]
		}
		final := res.UpstreamFillingMWH[len(res.UpstreamFillingMWH)-1]
		assert.InDelta(t, initial+totalIn-totalOut, final, 1e-9)
	})

	t.Run("levels stay within bounds", func(t *testing.T) {
		inflow := []float64{100, 0, 0, 50, 0}
		requested := []float64{200, 200, -10, 0, 300}
		res, err := Simulate(inflow, requested, NewSingle(30, 10, 80))
		require.NoError(t, err)
		for i, level := range res.UpstreamFillingMWH {
			assert.GreaterOrEqual(t, level, 10.0, "hour %d", i)
			assert.LessOrEqual(t, level, 80.0, "hour %d", i)
		}
	})

	t.Run("rejects mismatched series", func(t *testing.T) {
		_, err := Simulate([]float64{1, 2}, []float64{1}, NewSingle(50, 0, 100))
		assert.Error(t, err)
	})

	t.Run("rejects invalid initial state", func(t *testing.T) {
		_, err := Simulate([]float64{0}, []float64{0}, NewSingle(200, 0, 100))
		assert.Error(t, err)

		_, err = Simulate([]float64{0}, []float64{0}, nil)
		assert.Error(t, err)
	})
}

func TestSimulateCoupled(t *testing.T) {
	t.Run("pumping limited by downstream water", func(t *testing.T) {
		res, err := Simulate(
			[]float64{0},
			[]float64{-15},
			NewCoupled(
				Basin{FillingMWH: 50, LowerBoundMWH: 0, UpperBoundMWH: 100},
				Basin{FillingMWH: 10, LowerBoundMWH: 0, UpperBoundMWH: 20},
			),
		)
		require.NoError(t, err)
		// only 10 MWh sits downstream, so only 10 MW of pumping happens
		assert.Equal(t, []float64{-10}, res.GenerationMW)
		assert.Equal(t, []float64{60}, res.UpstreamFillingMWH)
		assert.Equal(t, []float64{0}, res.DownstreamFillingMWH)
	})

	t.Run("pumping limited by upstream headroom", func(t *testing.T) {
		res, err := Simulate(
			[]float64{0},
			[]float64{-50},
			NewCoupled(
				Basin{FillingMWH: 95, LowerBoundMWH: 0, UpperBoundMWH: 100},
				Basin{FillingMWH: 80, LowerBoundMWH: 0, UpperBoundMWH: 100},
			),
		)
		require.NoError(t, err)
		assert.Equal(t, []float64{-5}, res.GenerationMW)
		assert.Equal(t, []float64{100}, res.UpstreamFillingMWH)
		assert.Equal(t, []float64{75}, res.DownstreamFillingMWH)
	})

	t.Run("generation refills the downstream basin", func(t *testing.T) {
		res, err := Simulate(
			[]float64{0, 0},
			[]float64{10, -10},
			NewCoupled(
				Basin{FillingMWH: 50, LowerBoundMWH: 0, UpperBoundMWH: 100},
				Basin{FillingMWH: 0, LowerBoundMWH: 0, UpperBoundMWH: 20},
			),
		)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, -10}, res.GenerationMW)
		assert.Equal(t, []float64{40, 50}, res.UpstreamFillingMWH)
		assert.Equal(t, []float64{10, 0}, res.DownstreamFillingMWH)
	})

	t.Run("generation still clipped by the upstream floor", func(t *testing.T) {
		res, err := Simulate(
			[]float64{0},
			[]float64{100},
			NewCoupled(
				Basin{FillingMWH: 30, LowerBoundMWH: 20, UpperBoundMWH: 100},
				Basin{FillingMWH: 0, LowerBoundMWH: 0, UpperBoundMWH: 50},
			),
		)
		require.NoError(t, err)
		assert.Equal(t, []float64{10}, res.GenerationMW)
		assert.Equal(t, []float64{20}, res.UpstreamFillingMWH)
		assert.Equal(t, []float64{10}, res.DownstreamFillingMWH)
	})
}

func TestClampToCapacity(t *testing.T) {
	in := []float64{-100, -20, 0, 30, 90}
	out := ClampToCapacity(in, 50, 25)
	assert.Equal(t, []float64{-25, -20, 0, 30, 50}, out)
	// input untouched
	assert.Equal(t, []float64{-100, -20, 0, 30, 90}, in)
	// idempotent
	assert.Equal(t, out, ClampToCapacity(out, 50, 25))
}

// Raising the generation capacity can only raise total realized generation:
// a looser clamp never forces the fold to give back energy overall.
func TestGenerationCapacityMonotonic(t *testing.T) {
	inflow := []float64{5, 0, 10, 0, 0, 20, 0, 5}
	residual := []float64{3, 40, -10, 8, 25, 0, 60, 2}

	low, err := Simulate(inflow, ClampToCapacity(residual, 10, 5), NewSingle(30, 0, 100))
	require.NoError(t, err)
	high, err := Simulate(inflow, ClampToCapacity(residual, 30, 5), NewSingle(30, 0, 100))
	require.NoError(t, err)

	var lowTotal, highTotal float64
	for i := range low.GenerationMW {
		lowTotal += low.GenerationMW[i]
		highTotal += high.GenerationMW[i]
	}
	assert.GreaterOrEqual(t, highTotal, lowTotal)
}
