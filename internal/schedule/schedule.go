// Package schedule interprets the configured cron expression so status output
// can show when the next relocation pass is due. Scheduling itself belongs to
// the host (systemd timer or crontab); this package only reads the expression.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Next holds the upcoming fire time for a cron expression.
type Next struct {
	Expression string
	At         time.Time
}

// Countdown returns the remaining time until the next fire, relative to now.
func (n Next) Countdown(now time.Time) time.Duration {
	return n.At.Sub(now)
}

// Parse validates a standard five-field cron expression.
func Parse(expression string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(expression)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expression, err)
	}
	return sched, nil
}

// NextRun computes the next fire time for expression after now.
func NextRun(expression string, now time.Time) (Next, error) {
	sched, err := Parse(expression)
	if err != nil {
		return Next{}, err
	}
	return Next{Expression: expression, At: sched.Next(now)}, nil
}

// FormatCountdown renders a duration as a compact "2h 14m" style string for
// status output. Sub-minute remainders round up so the display never shows
// "0m" while time remains.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	d = d.Round(time.Minute)
	if d < time.Minute {
		d = time.Minute
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours >= 24 {
		days := hours / 24
		hours %= 24
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
