// Package store keeps the most recent server status in memory and
// publishes every change to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Status]: JSON form of a server status
//
// There is exactly one status record. It is absent until the first poll
// resolves and is replaced wholesale on every tick; no history is kept.
// Subscribers receive updates via channels with non-blocking sends.
package store
