package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/evalstore"
	"github.com/banshee-data/stopwindow/internal/export"
	"github.com/banshee-data/stopwindow/internal/monitoring"
)

func (a *app) evaluateCmd() *cobra.Command {
	var predictedPath, parquetName string
	var store bool

	cmd := &cobra.Command{
		Use:   "evaluate --predicted predictions.json recording.json...",
		Short: "Score predicted stops against annotated stops.",
		Long: `Match each recording's predicted stops against its annotated stops and
report true positives, false negatives and false positives.

A predicted stop matches when its overlap with the annotated stop covers
more than --min-overlap of the shorter of the two. The predictions file maps
recording IDs to stop intervals:

  {"bus-1": [{"startTime": 1614850000000, "endTime": 1614850004000}]}

Examples:
  stopwindow evaluate --predicted preds.json data/*.json
  stopwindow evaluate --predicted preds.json --store --db runs.db data/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := a.loadCorpus(args)
			if err != nil {
				return err
			}
			predicted, err := a.loader().LoadPredictions(predictedPath)
			if err != nil {
				return err
			}
			for id := range predicted {
				if !hasSource(corpus, id) {
					monitoring.WithFields(logrus.Fields{"recording": id}).Warn("predictions for unknown recording ignored")
				}
			}

			scores, err := corpus.Metrics(predicted, a.cfg.MinOverlap)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := writeScores(out, scores); err != nil {
				return err
			}

			if store {
				if err := a.storeScores(scores); err != nil {
					return err
				}
			}
			if parquetName != "" {
				path, err := a.exportPath(parquetName)
				if err != nil {
					return err
				}
				if _, err := export.ToFile(a.fs, path, func(w io.Writer) (int, error) {
					return export.WriteScores(w, scores)
				}); err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "wrote %s\n", path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&predictedPath, "predicted", "", "predicted stops JSON file")
	cmd.Flags().BoolVar(&store, "store", false, "save each recording's score to the evaluation database")
	cmd.Flags().StringVar(&parquetName, "parquet", "", "write scores to this file in the export directory")
	_ = cmd.MarkFlagRequired("predicted")
	return cmd
}

func hasSource(c *dataset.Corpus, id string) bool {
	for _, src := range c.Sources() {
		if src.ID() == id {
			return true
		}
	}
	return false
}

func (a *app) storeScores(scores dataset.Scores) error {
	s, err := evalstore.Open(a.cfg.Database, a.clock)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.MigrateUp(); err != nil {
		return err
	}

	params, err := json.Marshal(a.cfg.pipeline())
	if err != nil {
		return fmt.Errorf("failed to encode evaluation params: %w", err)
	}
	for _, m := range scores {
		eval := evalstore.FromMetric(m.RecordingID, m.ClassificationMetric, a.cfg.MinOverlap)
		eval.ParamsJSON = params
		if err := s.Insert(eval); err != nil {
			return fmt.Errorf("failed to store evaluation for %s: %w", m.RecordingID, err)
		}
	}
	monitoring.Logf("stored %d evaluations in %s", len(scores), a.cfg.Database)
	return nil
}
