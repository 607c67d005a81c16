package syncps

import (
	"time"

	"github.com/pollere/DNMP/pkg/wirename"
)

// TimerHandle is returned by Transport.Schedule. Cancel stops the callback
// from firing if it hasn't already; calling Cancel more than once, or after
// the callback has fired, is a no-op. Dropping a handle without calling
// Cancel leaves the timer running — callers that need scoped cancellation
// must call Cancel explicitly (the engine always does).
type TimerHandle interface {
	Cancel()
}

// DataCallbacks are the three outcomes of an expressed interest.
type DataCallbacks struct {
	OnData    func(content []byte)
	OnNack    func()
	OnTimeout func()
}

// Transport is the external collaborator that carries named interests and
// data. It is assumed to provide prefix registration, interest expression
// with data/nack/timeout callbacks, satisfying a matched interest with data,
// a timer service, and a face-level event loop driving all of the above.
// Every method here is called from, and every callback fires on, the same
// single event-loop goroutine — the engine installs no locking around its
// use of a Transport.
type Transport interface {
	// RegisterPrefix registers prefix so that interests matching it are
	// delivered to onInterest as (fullInterestName, nonce). onRegSuccess
	// fires once registration completes; onRegFail fires with a reason if
	// it cannot be completed (fatal: see ErrRegistration).
	RegisterPrefix(prefix wirename.Name, onInterest func(name wirename.Name, nonce uint32), onRegSuccess func(), onRegFail func(reason string))

	// ExpressInterest sends an interest for name carrying nonce, asking for
	// a response within lifetime. Exactly one of cb's three callbacks fires
	// for this expression.
	ExpressInterest(name wirename.Name, nonce uint32, lifetime time.Duration, cb DataCallbacks)

	// Put answers an outstanding interest matching name with content,
	// signed with sigInfo. freshness is advisory (a cache hint); the
	// transport may ignore it.
	Put(name wirename.Name, content, sigInfo []byte, freshness time.Duration)

	// Schedule arranges for cb to run after delay on the event-loop
	// goroutine. The returned handle cancels it.
	Schedule(delay time.Duration, cb func()) TimerHandle
}
