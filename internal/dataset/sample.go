package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrLabelMapping is returned when a label token cannot be mapped to a class id.
var ErrLabelMapping = errors.New("label mapping failed")

// Sample is one accelerometer reading. Signal and Label are nil when the
// source row had no value; such rows are dropped before windowing.
type Sample struct {
	Timestamp time.Time
	Signal    *float64 // linear acceleration magnitude
	Label     *string
}

// LabelMapper maps a raw label token to an integer class id.
type LabelMapper func(label string) (int32, error)

// IntegerLabels is the default mapper for labels that are already class ids.
func IntegerLabels(label string) (int32, error) {
	v, err := strconv.ParseInt(label, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer class id", ErrLabelMapping, label)
	}
	return int32(v), nil
}

// BinaryStopLabels maps stopLabel to 1 and every other label to 0.
func BinaryStopLabels(stopLabel string) LabelMapper {
	return func(label string) (int32, error) {
		if label == stopLabel {
			return 1, nil
		}
		return 0, nil
	}
}
