package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"qsomerge/internal/annotations"
	"qsomerge/internal/config"
	"qsomerge/internal/correlate"
	"qsomerge/internal/reconcile"
	"qsomerge/internal/workflow"
)

type mergeFlags struct {
	annotationsDir string
	out            string
	tolerance      int
	modePolicy     string
	workers        int
	overwrite      bool
	dryRun         bool
	jsonOutput     bool
	auditDB        string
	metricsFile    string
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var flags mergeFlags

	cmd := &cobra.Command{
		Use:   "merge <cabrillo.log> [annotation paths...]",
		Short: "Attach annotation notes to the QSOs they describe",
		Long: "Correlate operator annotation files with a Cabrillo log and write the merged log.\n" +
			"Annotation paths may be files or directories; without any, the configured\n" +
			"annotations directory is scanned.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyMergeFlags(cmd, cfg, flags)
			if err := ctx.applyOverrides(cfg); err != nil {
				return err
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			logPath, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve log path: %w", err)
			}
			req := workflow.Request{
				LogPath:         logPath,
				AnnotationPaths: args[1:],
				DryRun:          flags.dryRun,
				Stdout:          cmd.OutOrStdout(),
			}
			result, err := workflow.NewManager(cfg, logger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			// The report must not interleave with a merged log on stdout.
			out := cmd.OutOrStdout()
			if result.Written && result.OutputPath == "-" {
				out = cmd.ErrOrStderr()
			}
			if flags.jsonOutput {
				return writeJSON(out, newMergeJSON(result, flags.dryRun))
			}
			printMergeReport(out, result, flags.dryRun, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.annotationsDir, "annotations-dir", "", "Directory scanned for annotation files when none are given")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Merged log destination (- for stdout)")
	cmd.Flags().IntVar(&flags.tolerance, "tolerance", 0, "Accepted clock skew in minutes")
	cmd.Flags().StringVar(&flags.modePolicy, "mode-policy", "", "Mode agreement policy: soft, strict or ignore")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel correlation workers (0 or 1 runs sequentially)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Replace an existing merged log")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Correlate and report without writing the merged log")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the reconciliation report as JSON")
	cmd.Flags().StringVar(&flags.auditDB, "audit-db", "", "Write a SQLite audit database to this path")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	return cmd
}

func applyMergeFlags(cmd *cobra.Command, cfg *config.Config, flags mergeFlags) {
	changed := cmd.Flags().Changed
	if changed("annotations-dir") {
		cfg.Input.AnnotationsDir = flags.annotationsDir
	}
	if changed("out") {
		cfg.Output.Path = flags.out
	}
	if changed("tolerance") {
		cfg.Matching.ToleranceMinutes = flags.tolerance
	}
	if changed("mode-policy") {
		cfg.Matching.ModePolicy = flags.modePolicy
	}
	if changed("workers") {
		cfg.Matching.Workers = flags.workers
	}
	if changed("overwrite") {
		cfg.Output.Overwrite = flags.overwrite
	}
	if changed("audit-db") {
		cfg.Audit.Enabled = flags.auditDB != ""
		cfg.Audit.Path = flags.auditDB
	}
	if changed("metrics-file") {
		cfg.Metrics.TextfilePath = flags.metricsFile
	}
}

type mergeJSON struct {
	RunID       string                  `json:"run_id"`
	LogPath     string                  `json:"log_path"`
	OutputPath  string                  `json:"output_path,omitempty"`
	Written     bool                    `json:"written"`
	DryRun      bool                    `json:"dry_run"`
	Files       []string                `json:"annotation_files"`
	Summary     reconcile.Summary       `json:"summary"`
	Issues      []annotations.Issue     `json:"issues"`
	Results     []correlate.MatchResult `json:"results"`
	AuditPath   string                  `json:"audit_path,omitempty"`
	MetricsPath string                  `json:"metrics_path,omitempty"`
}

func newMergeJSON(result *workflow.Result, dryRun bool) mergeJSON {
	out := mergeJSON{
		RunID:       result.RunID,
		LogPath:     result.LogPath,
		OutputPath:  result.OutputPath,
		Written:     result.Written,
		DryRun:      dryRun,
		Files:       result.Annotations.Files,
		Summary:     result.Summary,
		Issues:      result.Annotations.Issues,
		Results:     result.Results,
		AuditPath:   result.AuditPath,
		MetricsPath: result.MetricsPath,
	}
	if out.Files == nil {
		out.Files = []string{}
	}
	if out.Issues == nil {
		out.Issues = []annotations.Issue{}
	}
	if out.Results == nil {
		out.Results = []correlate.MatchResult{}
	}
	return out
}

func printMergeReport(w io.Writer, result *workflow.Result, dryRun, colorize bool) {
	s := result.Summary
	lines := renderSectionHeader("Reconciliation", colorize)

	lines = append(lines, renderStatusLine("Run", statusInfo, result.RunID, colorize))
	switch {
	case dryRun:
		lines = append(lines, renderStatusLine("Merged log", statusInfo, "dry run, nothing written", colorize))
	case result.OutputPath == "-":
		lines = append(lines, renderStatusLine("Merged log", statusOK, "written to stdout", colorize))
	default:
		lines = append(lines, renderStatusLine("Merged log", statusOK, result.OutputPath, colorize))
	}

	annotationKind := statusOK
	if s.Total == 0 {
		annotationKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Annotations", annotationKind,
		fmt.Sprintf("%d total, %d matched (%.1f%%)", s.Total, s.Matched, s.MatchRate), colorize))

	if s.Resolved() {
		lines = append(lines, renderStatusLine("Unresolved", statusOK, "none", colorize))
	} else {
		lines = append(lines, renderStatusLine("Unresolved", statusWarn,
			fmt.Sprintf("%d ambiguous, %d unmatched", s.Ambiguous, s.Unmatched), colorize))
	}
	if s.ModeMismatches > 0 {
		lines = append(lines, renderStatusLine("Mode mismatches", statusWarn,
			fmt.Sprintf("%d placed despite a mode disagreement", s.ModeMismatches), colorize))
	}
	if issues := len(result.Annotations.Issues); issues > 0 {
		lines = append(lines, renderStatusLine("Parse issues", statusWarn,
			fmt.Sprintf("%d (%d lines skipped)", issues, result.Annotations.Dropped()), colorize))
	}
	if result.AuditPath != "" {
		lines = append(lines, renderStatusLine("Audit database", statusInfo, result.AuditPath, colorize))
	}
	if result.MetricsPath != "" {
		lines = append(lines, renderStatusLine("Metrics", statusInfo, result.MetricsPath, colorize))
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))

	if len(s.Stations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderStationTable(s))
	}
	if len(s.Reasons) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderReasonTable(s))
	}
}

func renderStationTable(s reconcile.Summary) string {
	rows := make([][]string, 0, len(s.Stations))
	for _, station := range s.Stations {
		rows = append(rows, []string{
			station.Tag,
			itoa(station.Matched),
			itoa(station.Ambiguous),
			itoa(station.Unmatched),
			itoa(station.Total()),
		})
	}
	footer := []string{"Total", itoa(s.Matched), itoa(s.Ambiguous), itoa(s.Unmatched), itoa(s.Total)}
	return renderTable(
		[]string{"Station", "Matched", "Ambiguous", "Unmatched", "Total"},
		rows,
		footer,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderReasonTable(s reconcile.Summary) string {
	reasons := make([]string, 0, len(s.Reasons))
	for reason := range s.Reasons {
		reasons = append(reasons, reason)
	}
	slices.Sort(reasons)
	rows := make([][]string, 0, len(reasons))
	for _, reason := range reasons {
		rows = append(rows, []string{reason, itoa(s.Reasons[reason])})
	}
	return renderTable([]string{"Unmatched reason", "Count"}, rows, nil, []columnAlignment{alignLeft, alignRight})
}
