package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dubsync/internal/store"
	"dubsync/internal/subtitle"
	"dubsync/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showLines bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show stage checkpoints and line table summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath())
			if err != nil {
				return err
			}
			defer st.Close()

			completions, err := st.StageCompletions(cmd.Context())
			if err != nil {
				return err
			}
			lines, err := st.Lines(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workspace: %s\n\n", cfg.Paths.WorkspaceDir)

			stageRows := make([][]string, 0, len(workflow.StageNames()))
			for _, name := range workflow.StageNames() {
				status := "pending"
				completedAt := ""
				if ts, ok := completions[name]; ok {
					status = "complete"
					completedAt = ts
				}
				stageRows = append(stageRows, []string{name, status, completedAt})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Status", "Completed At"},
				stageRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if len(lines) == 0 {
				fmt.Fprintln(out, "\nLine table is empty; run `dubsync run` to start.")
				return nil
			}

			chunks := 0
			failed := 0
			synthesized := 0
			rendered := 0
			for _, line := range lines {
				if line.CutOff == 1 {
					chunks++
				}
				if line.SynthesisFailed() {
					failed++
				} else if line.RealDur > 0 {
					synthesized++
				}
				if len(line.NewTimes) > 0 {
					rendered++
				}
			}
			summaryRows := [][]string{
				{"Lines", strconv.Itoa(len(lines))},
				{"Chunks", strconv.Itoa(chunks)},
				{"Synthesized", strconv.Itoa(synthesized)},
				{"Failed", strconv.Itoa(failed)},
				{"Rendered", strconv.Itoa(rendered)},
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Count"},
				summaryRows,
				[]columnAlignment{alignLeft, alignRight},
			))

			if showLines {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					statusLineHeaders(),
					statusLineRows(lines),
					[]columnAlignment{
						alignRight, alignRight, alignRight, alignRight, alignRight,
						alignRight, alignRight, alignRight, alignRight, alignLeft,
					},
				))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLines, "lines", false, "show the full per-line timing table")
	return cmd
}

func statusLineHeaders() []string {
	return []string{"Line", "Start", "End", "Gap", "Tol Dur", "Est", "Real", "Flag", "Cut", "New Times"}
}

// statusLineRows formats one row per planned line, mirroring the columns
// the pipeline persists.
func statusLineRows(lines []subtitle.Line) [][]string {
	secs := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		real := secs(line.RealDur)
		if line.SynthesisFailed() {
			real = "failed"
		} else if line.RealDur == 0 {
			real = "-"
		}
		times := make([]string, 0, len(line.NewTimes))
		for _, span := range line.NewTimes {
			times = append(times, secs(span[0])+".."+secs(span[1]))
		}
		rows = append(rows, []string{
			strconv.Itoa(line.Index),
			secs(line.Start),
			secs(line.End),
			secs(line.Gap),
			secs(line.TolDur),
			secs(line.EstDur),
			real,
			strconv.Itoa(line.SpeedFlag),
			strconv.Itoa(line.CutOff),
			strings.Join(times, ", "),
		})
	}
	return rows
}
