package domain

import "time"

// Delivery is the outcome of one notification dispatch, kept in the
// delivery log. SentAt is UTC.
type Delivery struct {
	ID       string
	Schedule string
	Message  string
	SentAt   time.Time
	OK       bool
	Error    string
}
