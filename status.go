package mcstatus

import "time"

// Players holds the online and maximum player counts.
type Players struct {
	Online int
	Max    int
}

// ServerStatus is the normalized status of the monitored server.
//
// A zero ServerStatus means offline. Optional fields are empty when the
// status API did not report them.
type ServerStatus struct {
	// Online reports whether the server answered the lookup.
	Online bool

	// ServerName is the first cleaned MOTD line.
	ServerName string

	// Version is the reported game version.
	Version string

	// Players is nil when the API gave no player counts.
	Players *Players

	// PlayerNames lists connected players, deduplicated, in API order.
	// nil when nobody is listed.
	PlayerNames []string
}

// StatusResult holds the outcome of one poll tick.
//
// StatusResult is passed to callbacks registered with [WithStatusCallback].
// Its slices are copies and may be retained.
type StatusResult struct {
	// Target is the host:port that was looked up.
	Target string

	// URL is the status API URL that was requested.
	URL string

	// Status is the normalized status. It is offline whenever Error is set.
	Status ServerStatus

	// Latency is the time taken to complete the HTTP request.
	Latency time.Duration

	// CheckedAt is when the tick completed.
	CheckedAt time.Time

	// Error is why the tick resolved to offline, if it failed.
	Error error

	// RawResponse contains the status API response body, limited to 1MB.
	RawResponse []byte

	// StatusCode is the HTTP status code. Zero if no response arrived.
	StatusCode int
}
