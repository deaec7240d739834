// Package poller periodically checks a Minecraft server through the
// mcsrvstat.us status API.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout and size limits
//   - [Scheduler]: Polls one target immediately and then on a fixed interval
//   - [StatusResult]: Outcome of a single poll tick
//
// Every failure (transport error, non-2xx, malformed body) collapses to the
// offline record. The cause is kept on the result for logging only.
package poller
