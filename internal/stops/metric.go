package stops

// DefaultMinAllowedOverlap is the overlap ratio a prediction must exceed to
// count as a match.
const DefaultMinAllowedOverlap = 0.8

// ClassificationMetric counts matched, missed and spurious stops.
type ClassificationMetric struct {
	TP int `json:"tp"`
	FN int `json:"fn"`
	FP int `json:"fp"`
}

// Add returns the element-wise sum of m and other.
func (m ClassificationMetric) Add(other ClassificationMetric) ClassificationMetric {
	return ClassificationMetric{
		TP: m.TP + other.TP,
		FN: m.FN + other.FN,
		FP: m.FP + other.FP,
	}
}

// Precision returns TP / (TP + FP), or 0 with no predictions counted.
func (m ClassificationMetric) Precision() float64 {
	if m.TP+m.FP == 0 {
		return 0
	}
	return float64(m.TP) / float64(m.TP+m.FP)
}

// Recall returns TP / (TP + FN), or 0 with no true stops counted.
func (m ClassificationMetric) Recall() float64 {
	if m.TP+m.FN == 0 {
		return 0
	}
	return float64(m.TP) / float64(m.TP+m.FN)
}

// F1 returns the harmonic mean of precision and recall.
func (m ClassificationMetric) F1() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
