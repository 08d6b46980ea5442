// Package loader builds recordings from JSON accelerometer files.
//
// A recording file looks like:
//
//	{
//	  "id": "bus-2021-03-04",
//	  "transportMode": "bus",
//	  "samples": [
//	    {"timestamp": 1614850000000, "linearAccel": 0.12, "label": "stop"},
//	    {"timestamp": 1614850000010, "linearAccel": null}
//	  ],
//	  "stops": [{"startTime": 1614850000000, "endTime": 1614850004000}]
//	}
//
// Timestamps are millisecond Unix epochs interpreted as UTC. linearAccel and
// label may be null or absent.
package loader

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/fsutil"
	"github.com/banshee-data/stopwindow/internal/monitoring"
	"github.com/banshee-data/stopwindow/internal/stops"
)

// NonStopLabel is assigned to derived samples outside every annotated stop.
const NonStopLabel = "non-stop"

// Options controls how samples are labelled.
type Options struct {
	// DeriveLabels fills missing sample labels from the annotated stops.
	DeriveLabels bool

	// StopLabel is the label for samples inside an annotated stop, "stop"
	// when empty. It also drives the default binary label mapping.
	StopLabel string

	// LabelMapper overrides the label mapping. When nil, labels are mapped
	// with dataset.BinaryStopLabels on the resolved stop label, or
	// dataset.IntegerLabels when neither DeriveLabels nor StopLabel is set.
	LabelMapper dataset.LabelMapper
}

// Loader reads recording and prediction files.
type Loader struct {
	fs   fsutil.FileSystem
	opts Options
}

// New returns a Loader reading through fsys.
func New(fsys fsutil.FileSystem, opts Options) *Loader {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &Loader{fs: fsys, opts: opts}
}

type sampleJSON struct {
	Timestamp   int64    `json:"timestamp"`
	LinearAccel *float64 `json:"linearAccel"`
	Label       *string  `json:"label"`
}

type recordingJSON struct {
	ID            string           `json:"id"`
	TransportMode string           `json:"transportMode"`
	Samples       []sampleJSON     `json:"samples"`
	Stops         []stops.Interval `json:"stops"`
}

// Load reads one recording file. The recording ID defaults to the file
// name without extension.
func (l *Loader) Load(path string) (*dataset.Recording, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording %s: %w", path, err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec, err := l.Decode(bytes.NewReader(data), id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// LoadCorpus reads every path, in order, into a corpus.
func (l *Loader) LoadCorpus(paths []string) (*dataset.Corpus, error) {
	sources := make([]dataset.Source, 0, len(paths))
	for _, p := range paths {
		rec, err := l.Load(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, rec)
	}
	return dataset.NewCorpus(sources...), nil
}

// Decode parses a recording from r. defaultID is used when the document
// carries no id.
func (l *Loader) Decode(r io.Reader, defaultID string) (*dataset.Recording, error) {
	var doc recordingJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse recording JSON: %w", err)
	}
	if doc.ID == "" {
		doc.ID = defaultID
	}

	samples := make([]dataset.Sample, len(doc.Samples))
	derived := 0
	for i, s := range doc.Samples {
		sample := dataset.Sample{
			Timestamp: time.UnixMilli(s.Timestamp).UTC(),
			Signal:    s.LinearAccel,
			Label:     s.Label,
		}
		if sample.Label == nil && l.opts.DeriveLabels {
			label := l.labelAt(sample, doc.Stops)
			sample.Label = &label
			derived++
		}
		samples[i] = sample
	}

	rec := dataset.NewRecording(samples, doc.Stops,
		dataset.WithID(doc.ID),
		dataset.WithTransportMode(doc.TransportMode),
		dataset.WithLabelMapper(l.mapper()),
	)

	monitoring.WithFields(logrus.Fields{
		"recording":      doc.ID,
		"transport_mode": doc.TransportMode,
		"samples":        len(samples),
		"usable":         rec.Len(),
		"derived_labels": derived,
		"stops":          len(doc.Stops),
	}).Debug("loaded recording")

	return rec, nil
}

func (l *Loader) labelAt(s dataset.Sample, annotated []stops.Interval) string {
	stopLabel := l.stopLabel()
	for _, iv := range annotated {
		if !s.Timestamp.Before(iv.Start) && !s.Timestamp.After(iv.End) {
			return stopLabel
		}
	}
	return NonStopLabel
}

func (l *Loader) stopLabel() string {
	return cmp.Or(l.opts.StopLabel, "stop")
}

func (l *Loader) mapper() dataset.LabelMapper {
	switch {
	case l.opts.LabelMapper != nil:
		return l.opts.LabelMapper
	case l.opts.DeriveLabels || l.opts.StopLabel != "":
		return dataset.BinaryStopLabels(l.stopLabel())
	default:
		return dataset.IntegerLabels
	}
}

// LoadPredictions reads predicted stops keyed by recording ID:
//
//	{"bus-2021-03-04": [{"startTime": ..., "endTime": ...}]}
func (l *Loader) LoadPredictions(path string) (map[string][]stops.Interval, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictions %s: %w", path, err)
	}
	var predicted map[string][]stops.Interval
	if err := json.Unmarshal(data, &predicted); err != nil {
		return nil, fmt.Errorf("failed to parse predictions %s: %w", path, err)
	}
	return predicted, nil
}
