// Package indicator computes technical indicators from ascending daily closes.
package indicator

import (
	"errors"
)

var (
	ErrBadPeriod        = errors.New("indicator: period must be positive")
	ErrInsufficientData = errors.New("indicator: not enough data")
)

// SMA is the simple moving average of the last period closes.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrBadPeriod
	}
	if len(closes) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), nil
}

// SMAOrMean is SMA, falling back to the mean of all closes when there are
// fewer than period of them. It is 0 for no closes.
func SMAOrMean(closes []float64, period int) float64 {
	if v, err := SMA(closes, period); err == nil {
		return v
	}
	if len(closes) == 0 {
		return 0
	}
	v, _ := SMA(closes, len(closes))
	return v
}
