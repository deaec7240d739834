package store

import "time"

// Status is the stored server status, shaped for JSON (REST API and SSE).
//
// It is decoupled from the poller's types so the wire form can evolve
// independently.
type Status struct {
	// Online reports whether the server answered the status lookup.
	Online bool `json:"online"`

	// ServerName is the first MOTD line. Empty when offline or unknown.
	ServerName string `json:"serverName,omitempty"`

	// Version is the reported game version.
	Version string `json:"version,omitempty"`

	// Players carries the player counts when the API supplied them.
	Players *Players `json:"players,omitempty"`

	// PlayerNames is the merged player list, omitted when empty.
	PlayerNames []string `json:"playerNames,omitempty"`

	// CheckedAt is when the poll tick completed.
	CheckedAt time.Time `json:"checkedAt"`

	// ResponseTimeMs is the status request latency in milliseconds.
	ResponseTimeMs int64 `json:"responseTimeMs"`
}

// Players holds the online and maximum player counts.
type Players struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// Store holds the current status and fans updates out to subscribers.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update replaces the current status and notifies all subscribers.
	Update(status Status)

	// Get returns the current status. ok is false until the first Update.
	Get() (status Status, ok bool)

	// Subscribe returns a channel that receives every subsequent update.
	// The channel is buffered; slow consumers may miss updates.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan Status

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Status)
}
