package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/banshee-data/stopwindow/internal/dataset"
	"github.com/banshee-data/stopwindow/internal/export"
	"github.com/banshee-data/stopwindow/internal/monitoring"
)

func (a *app) windowsCmd() *cobra.Command {
	var parquetName string
	var stream bool

	cmd := &cobra.Command{
		Use:   "windows recording.json...",
		Short: "Cut recordings into feature windows.",
		Long: `Cut every recording into fixed-size windows and report their shapes.

Split mode produces disjoint windows labelled per sample. Sliding mode
produces step-1 windows labelled by the sample at the window midpoint.

Examples:
  # Count sliding windows of 100 samples
  stopwindow windows --window-size 100 data/*.json

  # Export split windows to Parquet
  stopwindow windows --mode split --parquet windows.parquet data/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := dataset.ParseWindowMode(a.cfg.Mode)
			if err != nil {
				return err
			}
			corpus, err := a.loadCorpus(args)
			if err != nil {
				return err
			}
			start := a.clock.Now()
			out := cmd.OutOrStdout()

			if stream && mode != dataset.SlidingMode {
				return fmt.Errorf("--stream requires sliding mode")
			}
			if stream {
				if err := a.countStream(out, corpus); err != nil {
					return err
				}
			}

			count := 0
			switch {
			case parquetName != "":
				path, err := a.exportPath(parquetName)
				if err != nil {
					return err
				}
				count, err = export.ToFile(a.fs, path, func(w io.Writer) (int, error) {
					return export.WriteWindows(w, corpus, mode, a.cfg.WindowSize)
				})
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "wrote %s\n", path); err != nil {
					return err
				}
			case !stream:
				set, err := dataset.Windows(corpus, mode, a.cfg.WindowSize)
				if err != nil {
					return err
				}
				count = set.Len()
			}

			if !stream {
				labelWidth := a.cfg.WindowSize
				if mode == dataset.SlidingMode {
					labelWidth = 1
				}
				if _, err := fmt.Fprintf(out, "%d %s windows, features (%d, 1), labels (%d)\n",
					count, mode, a.cfg.WindowSize, labelWidth); err != nil {
					return err
				}
			}

			monitoring.WithFields(logrus.Fields{"elapsed": a.clock.Since(start)}).Debug("windowing complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&parquetName, "parquet", "", "write windows to this file in the export directory")
	cmd.Flags().BoolVar(&stream, "stream", false, "iterate sliding windows lazily instead of materialising them")
	return cmd
}

func (a *app) countStream(out io.Writer, corpus *dataset.Corpus) error {
	ws, err := corpus.SlidingWindowStream(a.cfg.WindowSize)
	if err != nil {
		return err
	}
	counts := map[int32]int{}
	total := 0
	for ex, err := range ws.All() {
		if err != nil {
			return err
		}
		counts[ex.Label[0]]++
		total++
	}
	shape := ws.FeatureShape()
	if _, err := fmt.Fprintf(out, "%d streamed windows, features (%d, %d), labels (%d)\n",
		total, shape[0], shape[1], ws.LabelShape()[0]); err != nil {
		return err
	}
	return writeLabelCounts(out, counts)
}
