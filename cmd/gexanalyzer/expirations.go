package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/gexbot-analyzer/internal/chain"
)

func expirationsCmd() *cobra.Command {
	var (
		asOf   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "expirations FILE|SYMBOL",
		Short: "List the upcoming expirations in a chain",
		Long: `List the distinct expirations dated today or later, oldest first.
Expirations on NYSE non-trading days are flagged.

Examples:
  gexanalyzer expirations SPX
  gexanalyzer expirations ./exports/spx.csv --as-of 2025-11-03`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now()
			if asOf != "" {
				t, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date (use YYYY-MM-DD): %w", err)
				}
				today = t
			}

			snap, err := loadChain(args[0], cfg.Data.Directory, logger)
			if err != nil {
				return err
			}

			exps := chain.NewMarketCalendar(logger).Annotate(chain.Expirations(snap.Rows, today))

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(exps)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EXPIRATION\tDATE\tMARKET DAY")
			for _, e := range exps {
				date, market := "-", "-"
				if e.Parsed {
					date = e.Date.Format("2006-01-02")
					market = "yes"
					if !e.MarketDay {
						market = "NO"
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Label, date, market)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "treat this date (YYYY-MM-DD) as today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}
