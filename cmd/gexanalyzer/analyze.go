package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/export"
	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
	"github.com/dgnsrekt/gexbot-analyzer/internal/report"
)

func analyzeCmd() *cobra.Command {
	var (
		spot        float64
		window      float64
		expirations []string
		exclude     []string
		format      string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE|SYMBOL",
		Short: "Compute gamma exposure, max pain and strike rankings for a chain",
		Long: `Analyze an option chain around a spot price.

The argument is either a chain file (.csv broker export or .jsonl rows) or a
symbol loaded from the configured data directory.

Examples:
  # Analyze a broker export at spot 5850
  gexanalyzer analyze ./exports/spx.csv --spot 5850

  # Only the nearest expiration, narrower window, JSON output
  gexanalyzer analyze SPX --spot 5850 --expirations "Fri Nov 14 2025" --window 100 --format json

  # Write the table to the output directory
  gexanalyzer analyze SPY --spot 601.25 --out spy.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q (use table or json)", format)
			}

			snap, err := loadChain(args[0], cfg.Data.Directory, logger)
			if err != nil {
				return err
			}

			include, err := includeSet(snap.Rows, expirations, exclude, time.Now())
			if err != nil {
				return err
			}

			start := time.Now()
			analysis, err := newAnalyzer(cfg.Analysis).Analyze(ctx, snap.Rows, gex.Params{
				Spot:        spot,
				Expirations: include,
				HalfWidth:   window,
			})
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", snap.Symbol, err)
			}

			logger.Debug("analysis complete",
				zap.String("symbol", snap.Symbol),
				zap.Int("rows", len(snap.Rows)),
				zap.Int("strikes", len(analysis.Aggregates)),
				zap.Duration("duration", time.Since(start)),
			)

			rep := report.FromAnalysis(analysis)
			rep.Symbol = snap.Symbol

			render := func(w io.Writer) error {
				if format == "json" {
					return report.WriteJSON(w, rep)
				}
				return report.WriteText(w, rep)
			}

			if out == "" {
				return render(os.Stdout)
			}

			path, size, err := export.NewWriter(cfg.Output.Directory).Write(out, render)
			if err != nil {
				return err
			}
			logger.Info("report written", zap.String("path", path), zap.Int64("bytes", size))
			return nil
		},
	}

	cmd.Flags().Float64Var(&spot, "spot", 0, "underlying spot price (required)")
	cmd.Flags().Float64VarP(&window, "window", "w", 0, "strike window half-width (default from config)")
	cmd.Flags().StringSliceVarP(&expirations, "expirations", "e", nil, "only include these expirations")
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "include every expiration except these")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file under the output directory")
	_ = cmd.MarkFlagRequired("spot")

	return cmd
}
