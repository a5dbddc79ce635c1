package evaluation

import "slices"

// AnalyzeTrend merges earlier years with the current one and classifies the
// change between the last two years. Current replaces a history entry of
// the same year. Without history there is nothing to compare and the
// result is nil.
func AnalyzeTrend(history []YearFigures, current YearFigures, band float64) *TrendAnalysis {
	if len(history) == 0 {
		return nil
	}
	years := make([]YearFigures, 0, len(history)+1)
	for _, h := range history {
		if h.Year != current.Year {
			years = append(years, h)
		}
	}
	years = append(years, current)
	slices.SortStableFunc(years, func(a, b YearFigures) int { return a.Year - b.Year })

	ta := &TrendAnalysis{Trend: TrendStable}
	for _, y := range years {
		ta.Years = append(ta.Years, y.Year)
		ta.ErrorRates = append(ta.ErrorRates, y.ErrorRate)
		ta.OperationCounts = append(ta.OperationCounts, y.Operations)
		ta.Amounts = append(ta.Amounts, y.Amount)
	}
	if n := len(years); n >= 2 {
		ta.Trend = ClassifyTrend(years[n-2].ErrorRate, years[n-1].ErrorRate, band)
	}
	return ta
}

// ClassifyTrend compares two consecutive error rates. A drop by more than
// band is improving, a rise by more than band is declining.
func ClassifyTrend(previous, latest, band float64) Trend {
	switch diff := latest - previous; {
	case diff < -band:
		return TrendImproving
	case diff > band:
		return TrendDeclining
	default:
		return TrendStable
	}
}
