package cooldown

import (
	"testing"
	"time"
)

func TestReady(t *testing.T) {
	t.Parallel()

	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ok       bool
		now      time.Time
		interval int
		want     bool
	}{
		{"never fired", false, last, 14, true},
		{"interval disabled", true, last.Add(time.Minute), 0, true},
		{"negative interval", true, last.Add(time.Minute), -1, true},
		{"within interval", true, last.Add(13 * Day), 14, false},
		{"exactly interval", true, last.Add(14 * Day), 14, true},
		{"past interval", true, last.Add(15 * Day), 14, true},
		{"same instant", true, last, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Ready(last, tt.ok, tt.now, tt.interval); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}
