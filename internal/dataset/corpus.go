package dataset

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/banshee-data/stopwindow/internal/monitoring"
	"github.com/banshee-data/stopwindow/internal/stops"
	"github.com/banshee-data/stopwindow/internal/window"
)

// Corpus is an ordered collection of sources. Aggregations preserve source
// order so outputs are reproducible.
type Corpus struct {
	sources []Source
}

// NewCorpus returns a corpus over sources in the given order.
func NewCorpus(sources ...Source) *Corpus {
	return &Corpus{sources: slices.Clone(sources)}
}

// Sources returns the sources in corpus order.
func (c *Corpus) Sources() []Source {
	return slices.Clone(c.sources)
}

// Len returns the number of sources.
func (c *Corpus) Len() int {
	return len(c.sources)
}

func (c *Corpus) concat(mode WindowMode, size int) (WindowSet, error) {
	out := WindowSet{WindowSize: size, LabelWidth: size}
	if mode == SlidingMode {
		out.LabelWidth = 1
	}

	for _, src := range c.sources {
		set, err := Windows(src, mode, size)
		if err != nil {
			return WindowSet{}, fmt.Errorf("%s windows for %q: %w", mode, src.ID(), err)
		}
		if set.Len() == 0 {
			monitoring.WithFields(logrus.Fields{
				"recording":   src.ID(),
				"mode":        mode,
				"window_size": size,
			}).Debug("recording produced no windows")
		}
		out = out.Append(set)
	}
	return out, nil
}

// SplitWindows concatenates every source's split windows in corpus order.
func (c *Corpus) SplitWindows(size int) (WindowSet, error) {
	return c.concat(SplitMode, size)
}

// SlidingWindows concatenates every source's sliding windows in corpus order.
func (c *Corpus) SlidingWindows(size int) (WindowSet, error) {
	return c.concat(SlidingMode, size)
}

// SlidingWindowStream returns a lazy view of the corpus sliding windows.
func (c *Corpus) SlidingWindowStream(size int) (*WindowStream, error) {
	if err := window.Validate(size, size-1); err != nil {
		return nil, err
	}
	return &WindowStream{sources: slices.Clone(c.sources), size: size}, nil
}

// StopDurations returns every source's duration runs, without the first and
// last run of each source, flattened in corpus order.
func (c *Corpus) StopDurations() []DurationRow {
	var rows []DurationRow
	for _, src := range c.sources {
		for _, seg := range interior(src.StopDurations()) {
			rows = append(rows, DurationRow{RecordingID: src.ID(), DurationSegment: seg})
		}
	}
	return rows
}

// RecordingMetric is the score of one source.
type RecordingMetric struct {
	RecordingID string `json:"recording_id"`
	stops.ClassificationMetric
}

// Scores holds per-source metrics in corpus order.
type Scores []RecordingMetric

// Total sums all per-source metrics.
func (s Scores) Total() stops.ClassificationMetric {
	var total stops.ClassificationMetric
	for _, m := range s {
		total = total.Add(m.ClassificationMetric)
	}
	return total
}

// Metrics scores each source against predicted[source ID]. A source with no
// entry is scored against no predictions.
func (c *Corpus) Metrics(predicted map[string][]stops.Interval, minAllowedOverlap float64) (Scores, error) {
	scores := make(Scores, 0, len(c.sources))
	for _, src := range c.sources {
		m, err := src.Metrics(predicted[src.ID()], minAllowedOverlap)
		if err != nil {
			return nil, err
		}
		scores = append(scores, RecordingMetric{RecordingID: src.ID(), ClassificationMetric: m})
	}
	return scores, nil
}
