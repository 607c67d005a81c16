package syncps

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/pollere/DNMP/pkg/wirename"
)

// SimBus is an in-process Transport for tests and small demos: every
// SimTransport sharing a Bus hears every interest every other transport on
// the bus expresses (the protocol is symmetric multicast), and Put replies
// route directly back to whichever ExpressInterest call is still waiting on
// that name.
//
// The real engine is single-threaded; SimBus approximates that by
// serializing all delivery through one mutex. Timer callbacks acquire it
// before touching any engine; calls originating in test code should go
// through Bus.Do so they're serialized the same way.
type SimBus struct {
	mu      sync.Mutex
	peers   map[*SimTransport]struct{}
	pending map[string]*simPending
	clock   clock.Clock
}

// NewSimBus creates an empty bus backed by the real wall clock.
func NewSimBus() *SimBus {
	return NewSimBusWithClock(clock.New())
}

// NewSimBusWithClock creates an empty bus backed by c, letting tests
// substitute a clock.Mock to advance publication-lifecycle timers without
// sleeping real wall-clock time.
func NewSimBusWithClock(c clock.Clock) *SimBus {
	return &SimBus{
		peers:   make(map[*SimTransport]struct{}),
		pending: make(map[string]*simPending),
		clock:   c,
	}
}

// Do runs fn with the bus lock held, the same guarantee every timer-driven
// callback gets. Test code that calls into an Engine from outside a
// scheduled callback (e.g. the initial Publish) should wrap the call in Do.
func (b *SimBus) Do(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// NewTransport creates a new face on the bus.
func (b *SimBus) NewTransport() *SimTransport {
	return &SimTransport{bus: b}
}

type simPending struct {
	nonce uint32
	cb    DataCallbacks
	timer *clock.Timer
}

// SimTransport is one peer's face on a SimBus.
type SimTransport struct {
	bus        *SimBus
	prefix     wirename.Name
	onInterest func(name wirename.Name, nonce uint32)
}

var _ Transport = (*SimTransport)(nil)

// RegisterPrefix implements Transport. Registration always succeeds
// immediately and synchronously (there is no real registration protocol to
// wait on in-process).
func (t *SimTransport) RegisterPrefix(prefix wirename.Name, onInterest func(name wirename.Name, nonce uint32), onRegSuccess func(), onRegFail func(reason string)) {
	t.prefix = prefix.Clone()
	t.onInterest = onInterest
	t.bus.peers[t] = struct{}{}
	onRegSuccess()
}

// ExpressInterest implements Transport: it broadcasts the interest to every
// other registered peer synchronously, then arms a timeout. A Put from any
// peer satisfies it and cancels the timeout.
func (t *SimTransport) ExpressInterest(name wirename.Name, nonce uint32, lifetime time.Duration, cb DataCallbacks) {
	key := name.Key()
	p := &simPending{nonce: nonce, cb: cb}
	t.bus.pending[key] = p
	p.timer = t.bus.clock.AfterFunc(lifetime, func() {
		t.bus.mu.Lock()
		defer t.bus.mu.Unlock()
		if cur, ok := t.bus.pending[key]; ok && cur == p {
			delete(t.bus.pending, key)
			cb.OnTimeout()
		}
	})

	for peer := range t.bus.peers {
		if peer == t {
			continue
		}
		if peer.onInterest != nil && peer.prefix.IsPrefixOf(name) {
			peer.onInterest(name, nonce)
		}
	}
}

// Put implements Transport: it looks up the outstanding ExpressInterest for
// name and, if one is still pending, delivers content to it and cancels the
// timeout.
func (t *SimTransport) Put(name wirename.Name, content, _ []byte, _ time.Duration) {
	key := name.Key()
	p, ok := t.bus.pending[key]
	if !ok {
		return
	}
	delete(t.bus.pending, key)
	p.timer.Stop()
	p.cb.OnData(content)
}

// Schedule implements Transport using the bus's clock (the wall clock
// outside of tests, a clock.Mock under NewSimBusWithClock); the fired
// callback acquires the bus lock before running, so it never overlaps with
// another callback or a Bus.Do call.
func (t *SimTransport) Schedule(delay time.Duration, cb func()) TimerHandle {
	h := &simTimerHandle{}
	h.timer = t.bus.clock.AfterFunc(delay, func() {
		t.bus.mu.Lock()
		defer t.bus.mu.Unlock()
		if !h.cancelled {
			cb()
		}
	})
	return h
}

type simTimerHandle struct {
	timer     *clock.Timer
	cancelled bool
}

func (h *simTimerHandle) Cancel() {
	h.cancelled = true
	h.timer.Stop()
}
