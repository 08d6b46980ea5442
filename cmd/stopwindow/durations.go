package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/export"
)

func (a *app) durationsCmd() *cobra.Command {
	var parquetName string

	cmd := &cobra.Command{
		Use:   "durations recording.json...",
		Short: "Summarise how long labelled runs last.",
		Long: `Split each recording into runs of identical labels and summarise their
durations per label. The first and last run of every recording are cut off
at the recording boundary and are excluded.

Examples:
  stopwindow durations data/*.json
  stopwindow durations --parquet durations.parquet data/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus, err := a.loadCorpus(args)
			if err != nil {
				return err
			}
			rows := corpus.StopDurations()

			segments := make([]dataset.DurationSegment, len(rows))
			for i, row := range rows {
				segments[i] = row.DurationSegment
			}
			out := cmd.OutOrStdout()
			if err := writeDurationSummary(out, dataset.SummariseDurations(segments)); err != nil {
				return err
			}

			if parquetName != "" {
				path, err := a.exportPath(parquetName)
				if err != nil {
					return err
				}
				if _, err := export.ToFile(a.fs, path, func(w io.Writer) (int, error) {
					return export.WriteDurations(w, rows)
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

	cmd.Flags().StringVar(&parquetName, "parquet", "", "write duration rows to this file in the export directory")
	return cmd
}
