package export

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/fsutil"
	"github.com/banshee-data/stopwindow/internal/stops"
	"github.com/banshee-data/stopwindow/internal/testutil"
)

func recording(id string, labels ...string) *dataset.Recording {
	samples := make([]dataset.Sample, len(labels))
	for i, label := range labels {
		samples[i] = dataset.Sample{
			Timestamp: testutil.EpochMillis(int64(i)),
			Signal:    testutil.Ptr(float64(i)),
			Label:     testutil.Ptr(label),
		}
	}
	return dataset.NewRecording(samples, nil, dataset.WithID(id))
}

func readAll[T any](t *testing.T, data []byte) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestSchemaColumns(t *testing.T) {
	for _, tc := range []struct {
		schema  *parquet.Schema
		columns []string
	}{
		{parquet.SchemaOf(new(WindowRecord)), []string{"recording_id", "window_index", "features", "labels"}},
		{parquet.SchemaOf(new(DurationRecord)), []string{"recording_id", "label", "duration_ms"}},
		{parquet.SchemaOf(new(ScoreRecord)), []string{"recording_id", "tp", "fn", "fp", "precision", "recall", "f1"}},
	} {
		for _, name := range tc.columns {
			_, ok := tc.schema.Lookup(name)
			assert.True(t, ok, "column %s should exist in %s", name, tc.schema.Name())
		}
	}
}

func TestWriteSplitWindows(t *testing.T) {
	c := dataset.NewCorpus(
		recording("a", "0", "0", "1", "1", "1", "0", "0"),
		recording("b", "1", "1", "0"),
	)

	var buf bytes.Buffer
	n, err := WriteWindows(&buf, c, dataset.SplitMode, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows := readAll[WindowRecord](t, buf.Bytes())
	require.Len(t, rows, 3)

	assert.Equal(t, "a", rows[0].RecordingID)
	assert.Equal(t, int64(0), rows[0].WindowIndex)
	assert.Equal(t, []float32{0, 1, 2}, rows[0].Features)
	assert.Equal(t, []int32{0, 0, 1}, rows[0].Labels)

	assert.Equal(t, "a", rows[1].RecordingID)
	assert.Equal(t, int64(1), rows[1].WindowIndex)
	assert.Equal(t, []float32{3, 4, 5}, rows[1].Features)

	assert.Equal(t, "b", rows[2].RecordingID)
	assert.Equal(t, int64(0), rows[2].WindowIndex)
	assert.Equal(t, []int32{1, 1, 0}, rows[2].Labels)
}

func TestWriteSlidingWindows(t *testing.T) {
	c := dataset.NewCorpus(recording("a", "0", "0", "1", "1", "1"))

	var buf bytes.Buffer
	n, err := WriteWindows(&buf, c, dataset.SlidingMode, 3)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	rows := readAll[WindowRecord](t, buf.Bytes())
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Len(t, row.Features, 3)
		assert.Equal(t, float32(i), row.Features[0])
		require.Len(t, row.Labels, 1)
	}
	assert.Equal(t, []int32{0}, rows[0].Labels)
	assert.Equal(t, []int32{1}, rows[1].Labels)
	assert.Equal(t, []int32{1}, rows[2].Labels)
}

func TestWriteWindowsError(t *testing.T) {
	c := dataset.NewCorpus(recording("bad", "drive", "stop"))
	var buf bytes.Buffer
	_, err := WriteWindows(&buf, c, dataset.SplitMode, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	_, err = WriteWindows(&buf, dataset.NewCorpus(recording("a", "0")), dataset.SplitMode, 0)
	assert.Error(t, err)
}

func TestWriteDurations(t *testing.T) {
	rows := []dataset.DurationRow{
		{RecordingID: "a", DurationSegment: dataset.DurationSegment{Label: "stop", Duration: 1500 * time.Millisecond}},
		{RecordingID: "b", DurationSegment: dataset.DurationSegment{Label: "drive", Duration: 0}},
	}

	var buf bytes.Buffer
	n, err := WriteDurations(&buf, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := readAll[DurationRecord](t, buf.Bytes())
	assert.Equal(t, []DurationRecord{
		{RecordingID: "a", Label: "stop", DurationMs: 1500},
		{RecordingID: "b", Label: "drive", DurationMs: 0},
	}, got)
}

func TestWriteScores(t *testing.T) {
	scores := dataset.Scores{
		{RecordingID: "a", ClassificationMetric: stops.ClassificationMetric{TP: 3, FN: 1}},
		{RecordingID: "b"},
	}

	var buf bytes.Buffer
	_, err := WriteScores(&buf, scores)
	require.NoError(t, err)

	got := readAll[ScoreRecord](t, buf.Bytes())
	require.Len(t, got, 2)
	assert.Equal(t, int32(3), got[0].TP)
	assert.Equal(t, int32(1), got[0].FN)
	assert.InDelta(t, 1.0, got[0].Precision, 1e-9)
	assert.InDelta(t, 0.75, got[0].Recall, 1e-9)
	assert.Zero(t, got[1].F1)
}

func TestToFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	rows := []dataset.DurationRow{
		{RecordingID: "a", DurationSegment: dataset.DurationSegment{Label: "stop", Duration: time.Second}},
	}

	n, err := ToFile(mfs, "out/durations.parquet", func(w io.Writer) (int, error) {
		return WriteDurations(w, rows)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := mfs.ReadFile("out/durations.parquet")
	require.NoError(t, err)
	got := readAll[DurationRecord](t, data)
	assert.Equal(t, []DurationRecord{{RecordingID: "a", Label: "stop", DurationMs: 1000}}, got)
}
