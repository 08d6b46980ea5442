package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/banshee-data/stopwindow/internal/dataset"
)

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

func render(table *tablewriter.Table, data [][]string) error {
	defer func() { _ = table.Close() }()
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeLabelCounts(w io.Writer, counts map[int32]int) error {
	labels := make([]int32, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	data := make([][]string, 0, len(labels))
	for _, l := range labels {
		data = append(data, []string{strconv.Itoa(int(l)), strconv.Itoa(counts[l])})
	}
	return render(newTable(w, []string{"Label", "Windows"}), data)
}

func writeDurationSummary(w io.Writer, summaries []dataset.DurationSummary) error {
	data := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		data = append(data, []string{
			s.Label,
			strconv.Itoa(s.Count),
			s.Mean.String(),
			s.StdDev.String(),
			s.Median.String(),
		})
	}
	return render(newTable(w, []string{"Label", "Runs", "Mean", "Std Dev", "Median"}), data)
}

func scoreRow(id string, tp, fn, fp int, precision, recall, f1 float64) []string {
	return []string{
		id,
		strconv.Itoa(tp),
		strconv.Itoa(fn),
		strconv.Itoa(fp),
		fmt.Sprintf("%.3f", precision),
		fmt.Sprintf("%.3f", recall),
		fmt.Sprintf("%.3f", f1),
	}
}

func writeScores(w io.Writer, scores dataset.Scores) error {
	data := make([][]string, 0, len(scores)+1)
	for _, s := range scores {
		data = append(data, scoreRow(s.RecordingID, s.TP, s.FN, s.FP, s.Precision(), s.Recall(), s.F1()))
	}
	total := scores.Total()
	data = append(data, scoreRow("TOTAL", total.TP, total.FN, total.FP, total.Precision(), total.Recall(), total.F1()))
	return render(newTable(w, []string{"Recording", "TP", "FN", "FP", "Precision", "Recall", "F1"}), data)
}
