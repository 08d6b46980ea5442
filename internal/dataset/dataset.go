// Package dataset turns labelled accelerometer recordings into fixed-size
// windows for sequence classification and scores predicted stops against
// each recording's annotated stops.
//
// A Recording is one sensor file. A Corpus is an ordered list of Sources
// (anything that can window, segment and score like a Recording) and
// aggregates their outputs in order.
package dataset

import (
	"github.com/banshee-data/stopwindow/internal/stops"
)

// Windower produces split and sliding windows.
type Windower interface {
	// SplitWindows cuts the series into disjoint windows and keeps every
	// per-sample label.
	SplitWindows(size int) (WindowSet, error)

	// SlidingWindows cuts the series into step-1 windows labelled by the
	// sample at offset size/2.
	SlidingWindows(size int) (WindowSet, error)
}

// DurationSegmenter reports alternating stop/non-stop runs.
type DurationSegmenter interface {
	StopDurations() []DurationSegment
}

// StopScorer scores predicted stops against ground truth.
type StopScorer interface {
	Metrics(predicted []stops.Interval, minAllowedOverlap float64) (stops.ClassificationMetric, error)
}

// Source is a recording-like input a Corpus can aggregate. Alternate file
// formats implement it directly.
type Source interface {
	Windower
	DurationSegmenter
	StopScorer

	// ID names the source, usually its file name.
	ID() string
}

// Aggregator is the corpus-level contract.
type Aggregator interface {
	SplitWindows(size int) (WindowSet, error)
	SlidingWindows(size int) (WindowSet, error)
	SlidingWindowStream(size int) (*WindowStream, error)
	StopDurations() []DurationRow
}

var (
	_ Source     = (*Recording)(nil)
	_ Aggregator = (*Corpus)(nil)
)
