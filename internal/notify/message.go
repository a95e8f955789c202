package notify

import (
	"fmt"
	"strings"
	"time"
)

// ReloadEvent describes one finished reload of the chain directory.
type ReloadEvent struct {
	DataDir         string
	PreviousSymbols int
	SymbolsLoaded   int
	Duration        time.Duration
	Err             error
}

// FormatReloadMessage creates the notification body for a reload.
func FormatReloadMessage(ev ReloadEvent) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Directory: %s\n", ev.DataDir))
	sb.WriteString(fmt.Sprintf("Previous symbols: %d\n", ev.PreviousSymbols))
	if ev.Err == nil {
		sb.WriteString(fmt.Sprintf("Symbols loaded: %d\n", ev.SymbolsLoaded))
	}
	sb.WriteString(fmt.Sprintf("Duration: %s", ev.Duration.Round(time.Millisecond)))

	if ev.Err != nil {
		sb.WriteString(fmt.Sprintf("\n\nError: %v", ev.Err))
	}

	return sb.String()
}
