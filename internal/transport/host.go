// Package transport defines the reliable-transport contract spec.md §1
// treats as an external collaborator (ordered/unordered channels,
// connect/receive/disconnect events, broadcast/send primitives, a
// millisecond clock) and provides one concrete implementation on top of
// github.com/gorilla/websocket (see SPEC_FULL.md §1 for why: no ENet-style
// reliable-UDP library appears anywhere in this project's dependency
// corpus, and gorilla/websocket already gives per-connection ordered,
// reliable delivery).
package transport

import "time"

// Channel mirrors spec.md §6's two channels.
type Channel uint8

const (
	Reliable   Channel = 0
	Unreliable Channel = 1
)

// PeerID identifies one connected client for the lifetime of its session.
type PeerID uint32

// EventKind distinguishes the three event shapes a Host emits.
type EventKind uint8

const (
	EventConnect EventKind = iota
	EventReceive
	EventDisconnect
)

// Event is the single type flowing out of a Host's event channel; the tick
// engine (C8) type-switches on Kind (spec.md §4.8).
type Event struct {
	Kind    EventKind
	Peer    PeerID
	Channel Channel // only meaningful for EventReceive
	Data    []byte  // only meaningful for EventReceive
}

// Host is the transport contract the tick engine depends on. It never
// blocks the simulation thread: Events is drained with a caller-supplied
// time budget, and Send/Broadcast are fire-and-forget from the caller's
// point of view (spec.md §5).
type Host interface {
	// Events returns the channel of inbound connect/receive/disconnect
	// events.
	Events() <-chan Event
	// Send delivers data to one peer on the given channel.
	Send(peer PeerID, ch Channel, data []byte) error
	// Broadcast delivers data to every connected peer on the given channel.
	Broadcast(ch Channel, data []byte)
	// NowMs returns the transport's millisecond clock (spec.md §1).
	NowMs() int64
	// Close shuts the host down, terminating all peer connections.
	Close() error
}

// SystemClockMs is the default millisecond clock implementation, shared by
// the websocket host and by tests that don't need a fake clock.
func SystemClockMs() int64 {
	return time.Now().UnixMilli()
}
