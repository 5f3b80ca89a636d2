package domain

import "time"

// Subscription links a subscriber account to a channel account. The pair is
// unique; subscribing twice is a toggle, not a duplicate.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}
