package types

import (
	"fmt"
	"time"
)

// Series is an hourly time series covering a single calendar year.
// Values are uniformly spaced one hour apart starting at TSStart.
type Series struct {
	TSStart time.Time `json:"tsStart"`
	Values  []float64 `json:"values"`
}

// NewSeries creates a Series starting at midnight UTC of January 1st of the
// given year.
func NewSeries(year int, values []float64) Series {
	return Series{
		TSStart: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Values:  values,
	}
}

// HoursInYear returns the number of hourly points in the given calendar year
// (8784 in leap years, 8760 otherwise).
func HoursInYear(year int) int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / time.Hour)
}

// Len returns the number of hourly points.
func (s Series) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean of the series, or 0 for an empty series.
func (s Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Sum() / float64(len(s.Values))
}

// Sum returns the sum of all values.
func (s Series) Sum() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

// PositiveSum returns the sum of only the positive values.
func (s Series) PositiveSum() float64 {
	var total float64
	for _, v := range s.Values {
		if v > 0 {
			total += v
		}
	}
	return total
}

// Min returns the smallest value in the series, or 0 for an empty series.
func (s Series) Min() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value in the series, or 0 for an empty series.
func (s Series) Max() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Shifted returns a copy of the values moved n hours later, with the first n
// entries set to fill. It does not modify the receiver.
func (s Series) Shifted(n int, fill float64) []float64 {
	out := make([]float64, len(s.Values))
	for i := range out {
		if i < n {
			out[i] = fill
		} else {
			out[i] = s.Values[i-n]
		}
	}
	return out
}

// validateLength checks that the series covers the given year exactly.
func (s Series) validateLength(name string, year int) error {
	want := HoursInYear(year)
	if len(s.Values) != want {
		return fmt.Errorf("%s: expected %d hourly values for %d, got %d", name, want, year, len(s.Values))
	}
	return nil
}
