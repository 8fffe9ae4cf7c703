package orchestrator

import (
	"fmt"
	"time"
)

// Mode selects which of the three scheduled runs to perform.
type Mode string

const (
	ModeMidday Mode = "MEDIODIA"
	ModeClose  Mode = "CIERRE"
	ModeWeekly Mode = "SEMANA"
)

// ParseMode validates an explicit mode override.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMidday, ModeClose, ModeWeekly:
		return Mode(s), nil
	}
	return "", fmt.Errorf("orchestrator: unknown mode %q", s)
}

// InferMode derives the mode from the UTC clock, matching the cron schedule:
// Sunday 23h is the weekly run, 21h is the close run, anything else is midday.
func InferMode(now time.Time) Mode {
	now = now.UTC()
	if now.Weekday() == time.Sunday && now.Hour() == 23 {
		return ModeWeekly
	}
	if now.Hour() == 21 {
		return ModeClose
	}
	return ModeMidday
}
