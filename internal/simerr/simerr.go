// Package simerr defines the error-kind sentinels from spec.md §7, so
// callers can classify failures with errors.Is rather than string matching.
package simerr

import "errors"

var (
	// ErrConfig is fatal at startup: manifest/navmap load failures.
	ErrConfig = errors.New("CONFIG_ERROR")
	// ErrTransport is fatal at startup: transport bind failure.
	ErrTransport = errors.New("TRANSPORT_ERROR")
	// ErrProtocol is logged and the offending message dropped; the peer is
	// never disconnected for it.
	ErrProtocol = errors.New("PROTOCOL_ERROR")
	// ErrPrecondition marks a programmer-error lookup of an object assumed
	// to be present; production code degrades to dropping the operation.
	ErrPrecondition = errors.New("LOGIC_PRECONDITION")
)
