package models

// RateFetchedEvent is published each time the external provider serves a rate.
type RateFetchedEvent struct {
	// EventID is a unique identifier for the event.
	EventID string `json:"event_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	// Rate is the formatted rate as returned to the client.
	Rate string `json:"rate"`
	// Date is the requested date or "latest".
	Date     string `json:"date"`
	Provider string `json:"provider"`
	// Cached tells whether the rate was written back to the cache.
	Cached bool `json:"cached"`
	// Timestamp is the Unix time (seconds) of the fetch.
	Timestamp int64 `json:"timestamp"`
}
