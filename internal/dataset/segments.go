package dataset

import (
	"math"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DurationSegment is a maximal run of consecutive samples sharing a label.
// Duration spans the first to the last sample of the run.
type DurationSegment struct {
	Label    string        `json:"label"`
	Duration time.Duration `json:"duration"`
}

// DurationRow is a DurationSegment tagged with the recording it came from.
type DurationRow struct {
	RecordingID string `json:"recording_id"`
	DurationSegment
}

// segmentDurations collapses labelled samples into runs. Samples without a
// label are skipped; missing signal values do not break a run.
func segmentDurations(samples []Sample) []DurationSegment {
	var segments []DurationSegment
	var label string
	var first, last time.Time
	open := false

	for _, s := range samples {
		if s.Label == nil {
			continue
		}
		if open && *s.Label == label {
			last = s.Timestamp
			continue
		}
		if open {
			segments = append(segments, DurationSegment{Label: label, Duration: last.Sub(first)})
		}
		label = *s.Label
		first, last = s.Timestamp, s.Timestamp
		open = true
	}
	if open {
		segments = append(segments, DurationSegment{Label: label, Duration: last.Sub(first)})
	}
	return segments
}

// interior drops the first and last run, which may be cut short by the
// recording bounds.
func interior(segments []DurationSegment) []DurationSegment {
	if len(segments) <= 2 {
		return nil
	}
	return segments[1 : len(segments)-1]
}

// DurationSummary describes the distribution of run durations for one label.
type DurationSummary struct {
	Label  string
	Count  int
	Mean   time.Duration
	StdDev time.Duration
	Median time.Duration
}

// SummariseDurations groups runs by label and returns summaries sorted by label.
// StdDev is the sample standard deviation, 0 for a single run.
func SummariseDurations(segments []DurationSegment) []DurationSummary {
	byLabel := make(map[string][]float64)
	for _, seg := range segments {
		byLabel[seg.Label] = append(byLabel[seg.Label], float64(seg.Duration))
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	summaries := make([]DurationSummary, 0, len(labels))
	for _, label := range labels {
		xs := byLabel[label]
		slices.Sort(xs)

		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 || math.IsNaN(std) {
			std = 0
		}
		summaries = append(summaries, DurationSummary{
			Label:  label,
			Count:  len(xs),
			Mean:   time.Duration(mean),
			StdDev: time.Duration(std),
			Median: time.Duration(stat.Quantile(0.5, stat.Empirical, xs, nil)),
		})
	}
	return summaries
}
