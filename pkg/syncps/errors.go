package syncps

import "errors"

// ErrNoFilter is returned by New when no FilterPubs callback is supplied.
// The engine takes "caller always supplies one" as the contract rather than
// falling back to an engine-level default policy.
var ErrNoFilter = errors.New("syncps: FilterPubs callback is required")

// ErrNoIsExpired is returned by New when no IsExpired callback is supplied.
var ErrNoIsExpired = errors.New("syncps: IsExpired callback is required")

// ErrNilTransport is returned by New when no Transport is supplied.
var ErrNilTransport = errors.New("syncps: Transport is required")

// ErrMalformedPublication is returned by decodePublication when raw bytes
// don't decode as a publication. It is a soft, log-and-ignore error at call
// sites, never surfaced to callers of Publish or Subscribe.
var ErrMalformedPublication = errors.New("syncps: malformed publication encoding")

// ErrWrongContentType is logged (not returned) when a sync response's outer
// content block carries a tag other than syncpsContentTag.
var ErrWrongContentType = errors.New("syncps: sync data has wrong content type")

// ErrTooManyOutstanding marks a defensive reentrancy check in
// sendSyncInterest: nothing in the single-threaded engine is supposed to
// call back into it while it's already running, so this should never
// actually trigger.
var ErrTooManyOutstanding = errors.New("syncps: more than one sync request outstanding")

// ErrAlreadyStarted is returned by Start when the engine is already running.
var ErrAlreadyStarted = errors.New("syncps: engine already started")

// ErrNotStarted is returned by operations that require a running engine.
var ErrNotStarted = errors.New("syncps: engine not started")

// ErrRegistration wraps a prefix-registration failure reported by the
// Transport. It is fatal: the engine cannot receive sync requests without a
// registered prefix and cannot recover on its own.
type ErrRegistration struct {
	Prefix string
	Reason string
}

func (e *ErrRegistration) Error() string {
	return "syncps: failed to register prefix " + e.Prefix + ": " + e.Reason
}
