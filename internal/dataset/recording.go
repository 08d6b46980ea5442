package dataset

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/stopwindow/internal/stops"
	"github.com/banshee-data/stopwindow/internal/window"
)

// Recording is one sensor recording: time-ordered samples plus the stops
// annotated on it. It is immutable after NewRecording.
type Recording struct {
	id            string
	transportMode string
	samples       []Sample
	annotated     []stops.Interval
	mapLabel      LabelMapper
	durations     []DurationSegment
}

// RecordingOption configures a Recording.
type RecordingOption func(*Recording)

// WithID names the recording.
func WithID(id string) RecordingOption {
	return func(r *Recording) { r.id = id }
}

// WithTransportMode records the vehicle type the recording was taken on.
func WithTransportMode(mode string) RecordingOption {
	return func(r *Recording) { r.transportMode = mode }
}

// WithLabelMapper sets the label mapper used for numeric label windows.
// The default is IntegerLabels.
func WithLabelMapper(f LabelMapper) RecordingOption {
	return func(r *Recording) {
		if f != nil {
			r.mapLabel = f
		}
	}
}

// NewRecording copies samples (ordered by timestamp) and annotated stops
// (ordered, non-overlapping) and derives the duration segments.
func NewRecording(samples []Sample, annotated []stops.Interval, opts ...RecordingOption) *Recording {
	r := &Recording{
		samples:   slices.Clone(samples),
		annotated: slices.Clone(annotated),
		mapLabel:  IntegerLabels,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.durations = segmentDurations(r.samples)
	return r
}

// ID returns the recording name.
func (r *Recording) ID() string { return r.id }

// TransportMode returns the vehicle type, if known.
func (r *Recording) TransportMode() string { return r.transportMode }

// Samples returns a copy of the raw samples, including rows with missing values.
func (r *Recording) Samples() []Sample { return slices.Clone(r.samples) }

// AnnotatedStops returns a copy of the ground truth stops.
func (r *Recording) AnnotatedStops() []stops.Interval { return slices.Clone(r.annotated) }

// Len returns the number of samples with both a signal and a label.
func (r *Recording) Len() int {
	n := 0
	for _, s := range r.samples {
		if s.Signal != nil && s.Label != nil {
			n++
		}
	}
	return n
}

// columns drops rows missing a signal or label and returns the signal as an
// (n, 1) matrix and the mapped labels. The matrix is nil when n is 0.
func (r *Recording) columns() (*mat.Dense, []int32, error) {
	signal := make([]float64, 0, len(r.samples))
	labels := make([]int32, 0, len(r.samples))
	for _, s := range r.samples {
		if s.Signal == nil || s.Label == nil {
			continue
		}
		class, err := r.mapLabel(*s.Label)
		if err != nil {
			return nil, nil, fmt.Errorf("recording %q at %s: %w", r.id, s.Timestamp, err)
		}
		signal = append(signal, *s.Signal)
		labels = append(labels, class)
	}
	if len(signal) == 0 {
		return nil, labels, nil
	}
	return mat.NewDense(len(signal), 1, signal), labels, nil
}

func (r *Recording) windows(size, overlap int) (WindowSet, error) {
	if err := window.Validate(size, overlap); err != nil {
		return WindowSet{}, err
	}
	signal, labels, err := r.columns()
	if err != nil {
		return WindowSet{}, err
	}

	features, err := window.Matrix(signal, size, overlap, false)
	if err != nil {
		return WindowSet{}, err
	}
	labelWindows, err := window.Labels(labels, size, overlap)
	if err != nil {
		return WindowSet{}, err
	}

	return WindowSet{
		WindowSize: size,
		LabelWidth: size,
		Features:   features,
		Labels:     labelWindows,
	}, nil
}

// SplitWindows returns floor(n/size) disjoint windows. Each window keeps its
// full per-sample label sequence.
func (r *Recording) SplitWindows(size int) (WindowSet, error) {
	return r.windows(size, 0)
}

// SlidingWindows returns max(0, n-size+1) step-1 windows. Each window is
// labelled by the sample at offset size/2, so the label has context on both
// sides.
func (r *Recording) SlidingWindows(size int) (WindowSet, error) {
	set, err := r.windows(size, size-1)
	if err != nil {
		return WindowSet{}, err
	}

	mid := size / 2
	for i, labels := range set.Labels {
		set.Labels[i] = []int32{labels[mid]}
	}
	set.LabelWidth = 1
	return set, nil
}

// Metrics scores predicted stops, ordered by start time, against the
// recording's annotated stops.
func (r *Recording) Metrics(predicted []stops.Interval, minAllowedOverlap float64) (stops.ClassificationMetric, error) {
	m, err := stops.Match(r.annotated, predicted, minAllowedOverlap)
	if err != nil {
		return stops.ClassificationMetric{}, fmt.Errorf("recording %q: %w", r.id, err)
	}
	return m, nil
}

// StopDurations returns the label runs computed at construction, in time
// order. The first and last runs may be truncated by the recording bounds.
func (r *Recording) StopDurations() []DurationSegment {
	return slices.Clone(r.durations)
}
