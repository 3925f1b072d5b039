package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"qsomerge/internal/cabrillo"
	"qsomerge/internal/logdiff"
	"qsomerge/internal/stage"
)

func newDiffCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "diff <old.log> <new.log>",
		Short: "List QSO amendments between two revisions of a log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			before, err := readRevision(args[0], cfg.CabrilloOptions())
			if err != nil {
				return err
			}
			after, err := readRevision(args[1], cfg.CabrilloOptions())
			if err != nil {
				return err
			}

			report := logdiff.Compare(before, after)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, report)
			}
			printDiffReport(out, report, shouldColorize(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print amendments as JSON")
	return cmd
}

func readRevision(path string, opts cabrillo.Options) (*cabrillo.Log, error) {
	log, err := cabrillo.ReadFile(path, opts)
	if err == nil {
		return log, nil
	}
	var parseErr *cabrillo.ParseError
	switch {
	case errors.As(err, &parseErr):
		return nil, stage.Wrap(stage.ErrValidation, "diff", "parse", path, err)
	case errors.Is(err, os.ErrNotExist):
		return nil, stage.Wrap(stage.ErrNotFound, "diff", "open", path, err)
	default:
		return nil, stage.Wrap(stage.ErrIO, "diff", "read", path, err)
	}
}

func printDiffReport(w io.Writer, report logdiff.Report, colorize bool) {
	lines := renderSectionHeader("Amendments", colorize)
	if report.Total == 0 {
		lines = append(lines, renderStatusLine("QSO lines", statusOK, "no amendments", colorize))
		fmt.Fprintln(w, strings.Join(lines, "\n"))
		return
	}
	lines = append(lines, renderStatusLine("QSO lines", statusWarn, fmt.Sprintf("%d amendments", report.Total), colorize))
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(report.Amendments))
	for _, a := range report.Amendments {
		rows = append(rows, []string{
			itoa(a.Number),
			string(a.Kind),
			lineNumber(a.OldLine),
			lineNumber(a.NewLine),
			describeAmendment(a),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Kind", "Old line", "New line", "Detail"},
		rows,
		nil,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	))
}

func describeAmendment(a logdiff.Amendment) string {
	switch a.Kind {
	case logdiff.KindRemoved:
		return a.Old
	case logdiff.KindAdded:
		return a.New
	}
	parts := make([]string, 0, len(a.Changes))
	for _, change := range a.Changes {
		parts = append(parts, change.String())
	}
	if len(parts) == 0 {
		return "spacing only"
	}
	return strings.Join(parts, "\n")
}

func lineNumber(n int) string {
	if n == 0 {
		return "-"
	}
	return itoa(n)
}
