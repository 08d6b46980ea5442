package dataset

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stopwindow/internal/stops"
	"github.com/banshee-data/stopwindow/internal/testutil"
	"github.com/banshee-data/stopwindow/internal/window"
)

func TestCorpusSplitWindows(t *testing.T) {
	const n, size = 23, 5
	a := NewRecording(labelled(cycle(n)...), nil, WithID("a"))
	b := NewRecording(labelled(cycle(n)...), nil, WithID("b"))

	single, err := a.SplitWindows(size)
	require.NoError(t, err)

	set, err := NewCorpus(a, b).SplitWindows(size)
	require.NoError(t, err)
	require.Equal(t, 2*single.Len(), set.Len())
	assert.Equal(t, size, set.LabelWidth)

	for i, w := range set.Features {
		r, c := w.Dims()
		assert.Equal(t, size, r)
		assert.Equal(t, 1, c)
		assert.Len(t, set.Labels[i], size)
	}
	// second recording's windows follow the first's
	assert.Equal(t, 0.0, set.Features[single.Len()].At(0, 0))
	assert.Equal(t, float64((single.Len()-1)*size), set.Features[single.Len()-1].At(0, 0))
}

func TestCorpusSlidingWindows(t *testing.T) {
	const size = 5
	recs := []Source{
		NewRecording(labelled(cycle(23)...), nil, WithID("a")),
		NewRecording(nil, nil, WithID("empty")),
		NewRecording(labelled(cycle(3)...), nil, WithID("short")),
		NewRecording(labelled(cycle(12)...), nil, WithID("b")),
	}

	set, err := NewCorpus(recs...).SlidingWindows(size)
	require.NoError(t, err)
	assert.Equal(t, (23-size+1)+(12-size+1), set.Len())
	assert.Equal(t, 1, set.LabelWidth)
	for _, labels := range set.Labels {
		assert.Len(t, labels, 1)
	}
	assert.Equal(t, 0.0, set.Features[23-size+1].At(0, 0))
}

func TestCorpusEmpty(t *testing.T) {
	c := NewCorpus(NewRecording(nil, nil))

	split, err := c.SplitWindows(4)
	require.NoError(t, err)
	assert.Zero(t, split.Len())

	sliding, err := c.SlidingWindows(4)
	require.NoError(t, err)
	assert.Zero(t, sliding.Len())

	stream, err := c.SlidingWindowStream(4)
	require.NoError(t, err)
	for range stream.All() {
		t.Fatal("expected no examples")
	}

	assert.Empty(t, c.StopDurations())
	assert.Zero(t, NewCorpus().Len())
}

func TestCorpusPropagatesErrors(t *testing.T) {
	c := NewCorpus(NewRecording(labelled("x", "y"), nil, WithID("bad")))
	_, err := c.SplitWindows(1)
	assert.True(t, errors.Is(err, ErrLabelMapping))

	_, err = c.SlidingWindowStream(0)
	assert.True(t, errors.Is(err, window.ErrInvalidWindowSize))
}

func TestWindowStream(t *testing.T) {
	const size = 5
	a := NewRecording(labelled(cycle(23)...), nil, WithID("a"))
	b := NewRecording(labelled(cycle(9)...), nil, WithID("b"))
	c := NewCorpus(a, b)

	stream, err := c.SlidingWindowStream(size)
	require.NoError(t, err)
	assert.Equal(t, [2]int{size, 1}, stream.FeatureShape())
	assert.Equal(t, [1]int{1}, stream.LabelShape())
	assert.Equal(t, size, stream.WindowSize())

	materialised, err := c.SlidingWindows(size)
	require.NoError(t, err)

	collect := func() []Example {
		var out []Example
		for ex, err := range stream.All() {
			require.NoError(t, err)
			out = append(out, ex)
		}
		return out
	}

	first := collect()
	require.Len(t, first, (23-size+1)+(9-size+1))
	for i, ex := range first {
		require.Len(t, ex.Features, size)
		assert.Equal(t, float32(materialised.Features[i].At(0, 0)), ex.Features[0])
		assert.Equal(t, materialised.Labels[i][0], ex.Label[0])
	}

	// a second pass starts from the beginning
	second := collect()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass differs (-first +second):\n%s", diff)
	}

	// stopping early does not disturb later passes
	count := 0
	for range stream.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Len(t, collect(), len(first))
}

func TestWindowStreamYieldsError(t *testing.T) {
	c := NewCorpus(
		NewRecording(labelled(cycle(6)...), nil, WithID("good")),
		NewRecording(labelled("x", "y", "z"), nil, WithID("bad")),
	)
	stream, err := c.SlidingWindowStream(3)
	require.NoError(t, err)

	var examples int
	var errs []error
	for _, err := range stream.All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		examples++
	}
	assert.Equal(t, 4, examples)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrLabelMapping))
}

func TestCorpusStopDurations(t *testing.T) {
	rec := NewRecording(labelled("drive", "stop", "stop", "stop", "drive"), nil, WithID("only"))
	rows := NewCorpus(rec).StopDurations()

	durations := make([]time.Duration, len(rows))
	for i, row := range rows {
		durations[i] = row.Duration
	}
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, durations)

	two := NewCorpus(
		NewRecording(labelled("a", "b", "b", "c"), nil, WithID("first")),
		NewRecording(labelled("a", "b"), nil, WithID("tiny")),
		NewRecording(labelled("x", "y", "z", "z", "w"), nil, WithID("second")),
	)
	want := []DurationRow{
		{RecordingID: "first", DurationSegment: DurationSegment{Label: "b", Duration: time.Millisecond}},
		{RecordingID: "second", DurationSegment: DurationSegment{Label: "y", Duration: 0}},
		{RecordingID: "second", DurationSegment: DurationSegment{Label: "z", Duration: time.Millisecond}},
	}
	if diff := cmp.Diff(want, two.StopDurations()); diff != "" {
		t.Errorf("StopDurations() mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpusMetrics(t *testing.T) {
	truth := []stops.Interval{
		stops.NewInterval(testutil.Epoch(10), testutil.Epoch(15)),
		stops.NewInterval(testutil.Epoch(25), testutil.Epoch(30)),
	}
	c := NewCorpus(
		NewRecording(nil, truth, WithID("a")),
		NewRecording(nil, truth, WithID("b")),
	)

	scores, err := c.Metrics(map[string][]stops.Interval{"a": truth}, stops.DefaultMinAllowedOverlap)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "a", scores[0].RecordingID)
	assert.Equal(t, stops.ClassificationMetric{TP: 2}, scores[0].ClassificationMetric)
	assert.Equal(t, stops.ClassificationMetric{FN: 2}, scores[1].ClassificationMetric)
	assert.Equal(t, stops.ClassificationMetric{TP: 2, FN: 2}, scores.Total())

	bad := map[string][]stops.Interval{"a": {stops.NewInterval(testutil.Epoch(12), testutil.Epoch(12))}}
	_, err = c.Metrics(bad, stops.DefaultMinAllowedOverlap)
	assert.True(t, errors.Is(err, stops.ErrZeroDuration))
}

func TestSummariseDurations(t *testing.T) {
	segments := []DurationSegment{
		{Label: "stop", Duration: 10 * time.Second},
		{Label: "drive", Duration: 60 * time.Second},
		{Label: "stop", Duration: 30 * time.Second},
		{Label: "stop", Duration: 20 * time.Second},
	}

	got := SummariseDurations(segments)
	require.Len(t, got, 2)

	assert.Equal(t, "drive", got[0].Label)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, 60*time.Second, got[0].Mean)
	assert.Zero(t, got[0].StdDev)

	assert.Equal(t, "stop", got[1].Label)
	assert.Equal(t, 3, got[1].Count)
	assert.Equal(t, 20*time.Second, got[1].Mean)
	assert.Equal(t, 10*time.Second, got[1].StdDev)
	assert.Equal(t, 20*time.Second, got[1].Median)

	assert.Empty(t, SummariseDurations(nil))
}
