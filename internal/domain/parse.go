package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval parses a whole-minute interval argument like "30".
// Anything non-numeric or below one minute is ErrInvalidInterval.
func ParseInterval(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidInterval)
	}
	mins, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInterval, s)
	}
	if mins < 1 {
		return 0, fmt.Errorf("%w: must be at least 1 minute", ErrInvalidInterval)
	}
	return mins, nil
}

// FormatRemaining renders a countdown like "1h 05m 03s" or "45m 10s".
// Negative durations render as "0s" (a fire is due).
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
