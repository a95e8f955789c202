package chain

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

func TestExpirations(t *testing.T) {
	rows := []gex.Row{
		{Expiration: "Fri Nov 14 2025", Strike: 500},
		{Expiration: "Weekly", Strike: 500},
		{Expiration: "Fri Nov 7 2025", Strike: 500},
		{Expiration: "Mon Nov 3 2025", Strike: 500},
		{Expiration: "Fri Nov 14 2025", Strike: 505},
		{Expiration: "Wed Nov 5 2025", Strike: 500},
		{Expiration: "Adhoc", Strike: 500},
	}
	today := time.Date(2025, 11, 5, 15, 30, 0, 0, time.UTC)

	exps := Expirations(rows, today)

	want := []string{"Wed Nov 5 2025", "Fri Nov 7 2025", "Fri Nov 14 2025", "Adhoc", "Weekly"}
	if len(exps) != len(want) {
		t.Fatalf("expected %d expirations, got %d: %+v", len(want), len(exps), exps)
	}
	for i, label := range want {
		if exps[i].Label != label {
			t.Errorf("position %d: expected %q, got %q", i, label, exps[i].Label)
		}
	}

	if !exps[0].Parsed || exps[3].Parsed {
		t.Error("parsed flags do not match label formats")
	}
}

func TestIncludeSet(t *testing.T) {
	set := IncludeSet([]string{"A", "B"})
	if !set["A"] || !set["B"] || set["C"] {
		t.Errorf("unexpected set: %v", set)
	}

	empty := IncludeSet(nil)
	if empty == nil {
		t.Error("IncludeSet(nil) must return an empty non-nil set")
	}
}

func TestCurrentSetAndExcludeSet(t *testing.T) {
	rows := []gex.Row{
		{Expiration: "Mon Nov 3 2025"},
		{Expiration: "Fri Nov 7 2025"},
		{Expiration: "Weekly"},
	}
	today := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)

	current := CurrentSet(rows, today)
	if len(current) != 2 || current["Mon Nov 3 2025"] || !current["Fri Nov 7 2025"] || !current["Weekly"] {
		t.Errorf("unexpected current set: %v", current)
	}

	rest := ExcludeSet(rows, today, []string{"Weekly"})
	if len(rest) != 1 || !rest["Fri Nov 7 2025"] {
		t.Errorf("unexpected exclude set: %v", rest)
	}

	if none := CurrentSet([]gex.Row{{Expiration: "Mon Nov 3 2025"}}, today); none == nil || len(none) != 0 {
		t.Errorf("all-expired chain should give an empty non-nil set, got %v", none)
	}
}

type weekdaysOnly struct{}

func (weekdaysOnly) IsBusinessDay(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}

func TestMarketCalendar_Annotate(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	cal := &MarketCalendar{nyse: weekdaysOnly{}, loc: time.UTC, logger: logger}

	exps := []Expiration{
		{Label: "Fri Nov 14 2025", Date: time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), Parsed: true},
		{Label: "Sat Nov 15 2025", Date: time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC), Parsed: true},
		{Label: "Weekly"},
	}

	out := cal.Annotate(exps)
	if !out[0].MarketDay {
		t.Error("Friday should be a market day")
	}
	if out[1].MarketDay {
		t.Error("Saturday should not be a market day")
	}
	if out[2].MarketDay {
		t.Error("unparsed labels are never market days")
	}
	if exps[0].MarketDay {
		t.Error("Annotate must not modify its input")
	}
}

func TestNewMarketCalendar_Weekend(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	cal := NewMarketCalendar(logger)

	if cal.IsMarketDay(time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("Saturday should not be an NYSE business day")
	}
	if !cal.IsMarketDay(time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC)) {
		t.Error("an ordinary Friday should be an NYSE business day")
	}
}
