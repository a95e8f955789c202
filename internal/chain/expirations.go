package chain

import (
	"sort"
	"time"

	"github.com/scmhub/calendar"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

// ExpirationLayout is the date format of the "Expiration Date" column, e.g. "Fri Nov 14 2025".
const ExpirationLayout = "Mon Jan 2 2006"

// Expiration is a distinct expiration label found in a chain.
type Expiration struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date,omitempty"`
	// Parsed is false when Label does not match ExpirationLayout.
	Parsed    bool `json:"parsed"`
	MarketDay bool `json:"market_day"`
}

// Expirations returns the distinct expirations of rows dated on or after today,
// oldest first. Labels that do not parse as dates are kept and sorted last.
func Expirations(rows []gex.Row, today time.Time) []Expiration {
	todayDate := dateOnly(today)

	seen := make(map[string]bool)
	var dated, undated []Expiration
	for _, r := range rows {
		if seen[r.Expiration] {
			continue
		}
		seen[r.Expiration] = true

		t, err := time.Parse(ExpirationLayout, r.Expiration)
		if err != nil {
			undated = append(undated, Expiration{Label: r.Expiration})
			continue
		}
		if t.Before(todayDate) {
			continue
		}
		dated = append(dated, Expiration{Label: r.Expiration, Date: t, Parsed: true})
	}

	sort.SliceStable(dated, func(i, j int) bool {
		if dated[i].Date.Equal(dated[j].Date) {
			return dated[i].Label < dated[j].Label
		}
		return dated[i].Date.Before(dated[j].Date)
	})
	sort.Slice(undated, func(i, j int) bool {
		return undated[i].Label < undated[j].Label
	})

	return append(dated, undated...)
}

// CurrentSet is the inclusion set used when the caller picks no expirations:
// every expiration Expirations lists for today. Expired dates are left out.
func CurrentSet(rows []gex.Row, today time.Time) map[string]bool {
	return ExcludeSet(rows, today, nil)
}

// ExcludeSet is CurrentSet minus the given labels.
func ExcludeSet(rows []gex.Row, today time.Time, exclude []string) map[string]bool {
	skip := IncludeSet(exclude)
	set := make(map[string]bool)
	for _, e := range Expirations(rows, today) {
		if !skip[e.Label] {
			set[e.Label] = true
		}
	}
	return set
}

// IncludeSet builds the inclusion set for gex.Params from expiration labels.
func IncludeSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

type businessDays interface {
	IsBusinessDay(t time.Time) bool
}

// MarketCalendar flags expirations that land on NYSE non-trading days.
type MarketCalendar struct {
	nyse   businessDays
	loc    *time.Location
	logger *zap.Logger
}

func NewMarketCalendar(logger *zap.Logger) *MarketCalendar {
	// NYSE operates in Eastern time
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.Warn("failed to load America/New_York timezone, using UTC", zap.Error(err))
		loc = time.UTC
	}
	return &MarketCalendar{
		nyse:   calendar.XNYS(),
		loc:    loc,
		logger: logger,
	}
}

// IsMarketDay reports whether the calendar date of d is an NYSE business day.
func (c *MarketCalendar) IsMarketDay(d time.Time) bool {
	// Noon in New York keeps the calendar date stable across zones
	noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.loc)
	return c.nyse.IsBusinessDay(noon)
}

// Annotate sets MarketDay on each parsed expiration and logs the ones that are not.
func (c *MarketCalendar) Annotate(exps []Expiration) []Expiration {
	out := make([]Expiration, len(exps))
	for i, e := range exps {
		if e.Parsed {
			e.MarketDay = c.IsMarketDay(e.Date)
			if !e.MarketDay {
				c.logger.Warn("expiration falls on a non-market day", zap.String("expiration", e.Label))
			}
		}
		out[i] = e
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
