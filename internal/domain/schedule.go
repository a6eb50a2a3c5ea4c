package domain

import (
	"fmt"
	"strings"
	"time"
)

// Schedule is a named notification rule with its own interval and message.
// All timestamps are UTC.
type Schedule struct {
	Name        string     `json:"name"`
	IntervalMin int        `json:"interval_minutes"`
	Message     string     `json:"message"`
	NextFireAt  time.Time  `json:"next_fire_at"`
	CreatedAt   time.Time  `json:"created_at"`
	LastFireAt  *time.Time `json:"last_fire_at"`
}

// Interval returns the firing interval as a duration.
func (s *Schedule) Interval() time.Duration {
	return time.Duration(s.IntervalMin) * time.Minute
}

// Validate checks the field invariants every stored schedule must hold.
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schedule name must not be empty")
	}
	if s.IntervalMin < 1 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidInterval, s.IntervalMin)
	}
	return nil
}
