// Package stops holds annotated stop intervals and scores predicted stops
// against ground truth.
package stops

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrZeroDuration is returned when an overlap ratio would divide by a
// zero-length interval.
var ErrZeroDuration = errors.New("interval has zero duration")

// Interval is a closed time span during which the vehicle was stopped.
// Start <= End is assumed by callers but not enforced.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns the interval [start, end].
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// FromEpochMillis builds an interval from millisecond Unix timestamps,
// interpreted as UTC.
func FromEpochMillis(startMs, endMs int64) Interval {
	return Interval{
		Start: time.UnixMilli(startMs).UTC(),
		End:   time.UnixMilli(endMs).UTC(),
	}
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// OverlapPercent returns the signed overlap between iv and other divided by
// the shorter of the two durations. It is 1 only for identical intervals and
// negative when the intervals do not touch.
func (iv Interval) OverlapPercent(other Interval) (float64, error) {
	shorter := min(iv.Duration(), other.Duration())
	if shorter == 0 {
		return 0, fmt.Errorf("overlap of %s and %s: %w", iv, other, ErrZeroDuration)
	}

	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	overlap := end.Sub(start)

	return float64(overlap) / float64(shorter), nil
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.Start.Format(time.RFC3339Nano), iv.End.Format(time.RFC3339Nano))
}

type intervalJSON struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// MarshalJSON writes the interval as millisecond epoch startTime/endTime.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{
		StartTime: iv.Start.UnixMilli(),
		EndTime:   iv.End.UnixMilli(),
	})
}

// UnmarshalJSON reads millisecond epoch startTime/endTime fields.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse interval: %w", err)
	}
	*iv = FromEpochMillis(raw.StartTime, raw.EndTime)
	return nil
}
