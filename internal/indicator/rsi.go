package indicator

// NeutralRSI is reported when there are too few closes to compute RSI.
const NeutralRSI = 50.0

// RSI computes the Wilder-smoothed relative strength index over period.
// It needs period+1 closes and returns NeutralRSI otherwise.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrBadPeriod
	}
	if len(closes) < period+1 {
		return NeutralRSI, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	switch {
	case avgLoss == 0 && avgGain == 0:
		return NeutralRSI, nil
	case avgLoss == 0:
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
