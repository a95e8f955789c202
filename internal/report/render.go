package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// PeakMarker is appended to the open interest cell holding the column maximum.
const PeakMarker = "●"

const barWidth = 20

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteText writes the summary block followed by the strike table.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder

	if r.Symbol != "" {
		fmt.Fprintf(&b, "Symbol: %s\n", r.Symbol)
	}
	fmt.Fprintf(&b, "Spot: $%s\n", dollars(r.Spot))
	fmt.Fprintf(&b, "Max Pain: $%s\n", dollars(r.MaxPain))
	fmt.Fprintf(&b, "Comparison: %s\n", r.Comparison)
	if r.Stats.PutCallRatioInfinite {
		b.WriteString("Put/Call Ratio: inf\n")
	} else if r.Stats.PutCallRatio != nil {
		fmt.Fprintf(&b, "Put/Call Ratio: %.2f\n", *r.Stats.PutCallRatio)
	}
	fmt.Fprintf(&b, "Net Positive Gamma: %s\n", commaf(r.Stats.NetPositiveGamma))
	fmt.Fprintf(&b, "Net Negative Gamma: %s\n\n", commaf(r.Stats.NetNegativeGamma))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STRIKE\tGEX\tNET GEX\tABS GEX\tTOTAL OI\tCALL OI\tPUT OI\tNET %\t")
	for _, row := range r.Rows {
		strike := fmt.Sprintf("%.2f", row.Strike)
		if row.Nearest {
			strike = "> " + strike
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.2f%%\t\n",
			strike,
			bar(row.Bar),
			markNet(commaf(row.NetGex), row.NetRank),
			markAbs(commaf(row.AbsGex), row.AbsRank),
			mark(humanize.Comma(row.TotalOpenInterest), row.PeakTotalOI),
			mark(humanize.Comma(row.CallOpenInterest), row.PeakCallOI),
			mark(humanize.Comma(row.PutOpenInterest), row.PeakPutOI),
			row.Percent,
		)
	}
	return tw.Flush()
}

func commaf(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func mark(s string, peak bool) string {
	if peak {
		return s + " " + PeakMarker
	}
	return s
}

func markNet(s, rank string) string {
	if rank == "" {
		return s
	}
	return s + " [" + rank + "]"
}

func markAbs(s string, rank int) string {
	if rank == 0 {
		return s
	}
	return fmt.Sprintf("%s [abs%d]", s, rank)
}

// bar draws a right-anchored bar; "+" for positive exposure, "-" for negative.
func bar(v float64) string {
	n := int(math.Abs(v) * barWidth)
	ch := "+"
	if v < 0 {
		ch = "-"
	}
	return strings.Repeat(" ", barWidth-n) + strings.Repeat(ch, n)
}
