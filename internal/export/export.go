// Package export writes windows, duration runs and scores to Parquet files
// using github.com/parquet-go/parquet-go.
package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"

	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/fsutil"
	"github.com/banshee-data/stopwindow/internal/monitoring"
)

// WindowRecord is one feature window. Features holds the window's samples in
// time order; Labels holds every sample label for split windows and the single
// mid-point label for sliding windows.
type WindowRecord struct {
	RecordingID string    `parquet:"recording_id,snappy,dict"`
	WindowIndex int64     `parquet:"window_index,snappy"`
	Features    []float32 `parquet:"features"`
	Labels      []int32   `parquet:"labels"`
}

// DurationRecord is one labelled run from a recording's interior.
type DurationRecord struct {
	RecordingID string `parquet:"recording_id,snappy,dict"`
	Label       string `parquet:"label,snappy,dict"`
	DurationMs  int64  `parquet:"duration_ms,snappy"`
}

// ScoreRecord is one recording's stop detection score.
type ScoreRecord struct {
	RecordingID string  `parquet:"recording_id,snappy"`
	TP          int32   `parquet:"tp,snappy"`
	FN          int32   `parquet:"fn,snappy"`
	FP          int32   `parquet:"fp,snappy"`
	Precision   float64 `parquet:"precision,snappy"`
	Recall      float64 `parquet:"recall,snappy"`
	F1          float64 `parquet:"f1,snappy"`
}

// WriteWindows writes the corpus windows, one source at a time, and returns
// the number of rows written.
func WriteWindows(w io.Writer, c *dataset.Corpus, mode dataset.WindowMode, size int) (int, error) {
	writer := parquet.NewGenericWriter[WindowRecord](w)
	total := 0
	for _, src := range c.Sources() {
		set, err := dataset.Windows(src, mode, size)
		if err != nil {
			_ = writer.Close()
			return total, fmt.Errorf("failed to window %s: %w", src.ID(), err)
		}
		rows := make([]WindowRecord, set.Len())
		for i, f := range set.Features {
			r, cols := f.Dims()
			features := make([]float32, 0, r*cols)
			for row := 0; row < r; row++ {
				for col := 0; col < cols; col++ {
					features = append(features, float32(f.At(row, col)))
				}
			}
			rows[i] = WindowRecord{
				RecordingID: src.ID(),
				WindowIndex: int64(i),
				Features:    features,
				Labels:      set.Labels[i],
			}
		}
		n, err := writer.Write(rows)
		total += n
		if err != nil {
			_ = writer.Close()
			return total, fmt.Errorf("failed to write windows for %s: %w", src.ID(), err)
		}
	}
	if err := writer.Close(); err != nil {
		return total, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return total, nil
}

// WriteDurations writes duration rows and returns the number written.
func WriteDurations(w io.Writer, rows []dataset.DurationRow) (int, error) {
	records := make([]DurationRecord, len(rows))
	for i, row := range rows {
		records[i] = DurationRecord{
			RecordingID: row.RecordingID,
			Label:       row.Label,
			DurationMs:  row.Duration.Milliseconds(),
		}
	}
	return writeAll(w, records)
}

// WriteScores writes per-recording scores and returns the number written.
func WriteScores(w io.Writer, scores dataset.Scores) (int, error) {
	records := make([]ScoreRecord, len(scores))
	for i, s := range scores {
		records[i] = ScoreRecord{
			RecordingID: s.RecordingID,
			TP:          int32(s.TP),
			FN:          int32(s.FN),
			FP:          int32(s.FP),
			Precision:   s.Precision(),
			Recall:      s.Recall(),
			F1:          s.F1(),
		}
	}
	return writeAll(w, records)
}

func writeAll[T any](w io.Writer, records []T) (int, error) {
	writer := parquet.NewGenericWriter[T](w)
	n, err := writer.Write(records)
	if err != nil {
		_ = writer.Close()
		return n, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return n, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return n, nil
}

// ToFile creates path on fsys and runs write against it.
func ToFile(fsys fsutil.FileSystem, path string, write func(io.Writer) (int, error)) (n int, err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	n, err = write(f)
	if err != nil {
		return n, err
	}
	monitoring.WithFields(logrus.Fields{"path": path, "rows": n}).Info("wrote parquet file")
	return n, nil
}
