package stops

// outcome is the result of comparing one true stop with one prediction.
type outcome int

const (
	// matched: the prediction covers the true stop. Both cursors advance.
	matched outcome = iota
	// missed: the prediction starts after the true stop, so it is kept for a
	// later true stop. Only the true cursor advances.
	missed
	// spurious: the prediction starts no later than the true stop but does
	// not cover it. Only the predicted cursor advances.
	spurious
)

// compare checks overlap before start order. The order matters: a
// prediction that starts after the true stop but still overlaps enough is a
// match, not a miss.
func compare(truth, predicted Interval, minAllowedOverlap float64) (outcome, error) {
	overlap, err := truth.OverlapPercent(predicted)
	if err != nil {
		return 0, err
	}
	if overlap > minAllowedOverlap {
		return matched, nil
	}
	if predicted.Start.After(truth.Start) {
		return missed, nil
	}
	return spurious, nil
}

// Match scores predicted stops against true stops. Both slices must be
// ordered by start time. It makes a single forward pass with two cursors
// that never move backwards.
//
// A true stop reached after every prediction is consumed counts as one false
// negative. A true stop whose scan consumes the last prediction as spurious
// is not charged. Predictions left over once the true stops run out are not
// counted at all.
func Match(truth, predicted []Interval, minAllowedOverlap float64) (ClassificationMetric, error) {
	var m ClassificationMetric
	p := 0

	for t := range truth {
		if p == len(predicted) {
			m.FN++
			continue
		}

	scan:
		for p < len(predicted) {
			o, err := compare(truth[t], predicted[p], minAllowedOverlap)
			if err != nil {
				return ClassificationMetric{}, err
			}
			switch o {
			case matched:
				m.TP++
				p++
				break scan
			case missed:
				m.FN++
				break scan
			case spurious:
				m.FP++
				p++
			}
		}
	}

	return m, nil
}
