package eval

// ConfusionCounts holds the presence/absence-within-boundary confusion
// counts for one layer evaluation. True negatives outside the polygons are
// deliberately not computed; this is not a full confusion matrix.
type ConfusionCounts struct {
	// TruePositive is the number of inside cells equal to the target code.
	TruePositive int

	// FalseNegative is the number of non-missing inside cells not equal to
	// the target code.
	FalseNegative int

	// FalsePositive is the number of outside cells equal to the target code.
	FalsePositive int
}

// Accumulate derives confusion counts from masked cell values and the
// resolved target code. Missing cells were already excluded by Mask.
func Accumulate(m *MaskResult, targetCode int) ConfusionCounts {
	var c ConfusionCounts
	for _, v := range m.Inside {
		if v == targetCode {
			c.TruePositive++
		} else {
			c.FalseNegative++
		}
	}
	for _, v := range m.Outside {
		if v == targetCode {
			c.FalsePositive++
		}
	}
	return c
}
