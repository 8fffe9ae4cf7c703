package orchestrator

import (
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"MEDIODIA", "CIERRE", "SEMANA"} {
		if _, err := ParseMode(valid); err != nil {
			t.Errorf("ParseMode(%q): %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "mediodia", "WEEKLY", "NOCHE"} {
		if _, err := ParseMode(invalid); err == nil {
			t.Errorf("ParseMode(%q) accepted", invalid)
		}
	}
}

func TestInferMode(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Mode
	}{
		{"sunday 23h is weekly", time.Date(2026, 8, 30, 23, 10, 0, 0, time.UTC), ModeWeekly},
		{"sunday 15h is midday", time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC), ModeMidday},
		{"weekday 21h is close", time.Date(2026, 9, 1, 21, 5, 0, 0, time.UTC), ModeClose},
		{"sunday 21h is close", time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC), ModeClose},
		{"weekday 15h is midday", time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC), ModeMidday},
		{"weekday 23h is midday", time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC), ModeMidday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferMode(tt.now); got != tt.want {
				t.Errorf("InferMode(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}
