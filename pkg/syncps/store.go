package syncps

// Publication-store state bits. bit 0 ("live") clears at the end of a
// publication's primary lifetime: it is no longer offered in sync
// responses, but its digest still occupies a slot in the IBLT until the
// entry's IBLT timer erases it (the extra clock-skew hold). bit 1 ("local")
// marks a publication this engine itself published, vs. one learned from a
// peer; handleInterest uses it to split "ours" from "others" before running
// the filter.
const (
	stateLive  = 1 << 0
	stateLocal = 1 << 1
)

// activeEntry is the publication store's value type. A handle-to-state map
// and a digest-to-handle map could in principle be kept separate if a
// handle could diverge from its digest; here the digest is derived
// deterministically from the publication's wire bytes, so one map keyed by
// digest plays both roles.
type activeEntry struct {
	pub   *Publication
	state uint8

	liveTimer   TimerHandle
	ibltTimer   TimerHandle
	removeTimer TimerHandle
}

// isKnown reports whether digest has an entry in the publication store,
// live or not — it stays "known" through the full 2*MaxPubLifetime hold.
func (e *Engine) isKnown(digest uint32) bool {
	_, ok := e.active[digest]
	return ok
}

// isKnownPub is isKnown applied to a decoded publication.
func (e *Engine) isKnownPub(pub *Publication) bool {
	return e.isKnown(pub.digestOf())
}

// addToActive admits pub to the store: computes its digest, records it with
// the appropriate state bits, inserts the digest into the member IBLT, and
// schedules the publication's three independent lifecycle timers. Returns
// the stored publication (which may be pub itself).
func (e *Engine) addToActive(pub *Publication, local bool) *Publication {
	digest := pub.digestOf()
	state := uint8(stateLive)
	if local {
		state |= stateLocal
	}

	entry := &activeEntry{pub: pub, state: state}
	e.active[digest] = entry
	e.iblt.Insert(digest)

	// Cleared at one lifetime: no longer offered in responses.
	entry.liveTimer = e.transport.Schedule(e.config.MaxPubLifetime, func() {
		if ent, ok := e.active[digest]; ok {
			ent.state &^= stateLive
		}
	})
	// Erased from the IBLT one lifetime plus the clock-skew window later,
	// and a prompt re-issue so peers learn of the eviction quickly. Expired
	// publications are kept in the IBLT this long so a peer whose clock
	// runs slightly behind doesn't hand the digest straight back to us the
	// moment we drop it.
	entry.ibltTimer = e.transport.Schedule(e.config.MaxPubLifetime+e.config.MaxClockSkew, func() {
		if err := e.iblt.Erase(digest); err != nil {
			logger.Warn("iblt erase failed", "digest", digest, "error", err)
		}
		e.sendSyncInterestSoon()
	})
	// Removed from the store entirely at twice the lifetime.
	entry.removeTimer = e.transport.Schedule(2*e.config.MaxPubLifetime, func() {
		e.removeFromActive(digest)
	})

	return entry.pub
}

// removeFromActive drops digest's entry and cancels any timers still
// pending on it (a no-op for ones that already fired).
func (e *Engine) removeFromActive(digest uint32) {
	entry, ok := e.active[digest]
	if !ok {
		return
	}
	cancel(entry.liveTimer)
	cancel(entry.ibltTimer)
	cancel(entry.removeTimer)
	delete(e.active, digest)
}

func cancel(h TimerHandle) {
	if h != nil {
		h.Cancel()
	}
}
