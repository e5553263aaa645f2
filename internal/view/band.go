package view

// Band classifies a lead score for display.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ScoreBand maps a numeric lead score to its display band: 80 and above is
// high, 60 up to but not including 80 is medium, everything below 60 is low.
func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}
