package syncps

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollere/DNMP/pkg/wirename"
)

// A published entry is known for [t0, t0+2L), live for [t0, t0+L), and
// IBLT-resident for [t0, t0+L+S). Driven by a mock clock so the three
// transitions are exercised without sleeping real wall-clock time.
func TestPublicationLifecycleTimers(t *testing.T) {
	mockClock := clock.NewMock()
	bus := NewSimBusWithClock(mockClock)
	lifetime := 30 * time.Millisecond
	skew := 10 * time.Millisecond
	a := newTestEngine(t, bus, WithExpectedNumEntries(10))
	a.config.MaxPubLifetime = lifetime
	a.config.MaxClockSkew = skew
	startEngine(t, bus, a)

	var digest uint32
	pub := NewPublication(wirename.New("x"), []byte("v"))
	bus.Do(func() {
		require.NoError(t, a.Publish(pub))
		for d := range a.active {
			digest = d
		}
	})

	bus.Do(func() {
		assert.True(t, a.isKnown(digest))
		assert.True(t, a.active[digest].state&stateLive != 0)
	})

	// after L: no longer live, still known, still in the IBLT.
	mockClock.Add(lifetime)
	bus.Do(func() {
		entry, ok := a.active[digest]
		require.True(t, ok)
		assert.False(t, entry.state&stateLive != 0)
	})

	// after L+S: erased from the IBLT but still known until 2L.
	mockClock.Add(skew)
	bus.Do(func() {
		_, stillKnown := a.active[digest]
		assert.True(t, stillKnown)
	})

	// after 2L total: fully evicted.
	mockClock.Add(lifetime)
	bus.Do(func() {
		assert.False(t, a.isKnown(digest))
	})
}

func TestRemoveFromActiveCancelsTimers(t *testing.T) {
	bus := NewSimBus()
	a := newTestEngine(t, bus)
	startEngine(t, bus, a)

	pub := NewPublication(wirename.New("x"), []byte("v"))
	stored := a.addToActive(pub, true)
	digest := stored.digestOf()

	a.removeFromActive(digest)
	assert.False(t, a.isKnown(digest))

	// calling it again is a no-op, not a panic on nil timer handles.
	a.removeFromActive(digest)
}

func TestDefaultIsExpiredTwoSided(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPubLifetime = time.Second
	cfg.MaxClockSkew = time.Second
	isExpired := DefaultIsExpired(cfg)

	now := time.Now().UnixMilli()
	fresh := NewPublication(wirename.New("x"), nil).withTimestamp(now)
	stale := NewPublication(wirename.New("x"), nil).withTimestamp(now - 3000)
	future := NewPublication(wirename.New("x"), nil).withTimestamp(now + 3000)

	assert.False(t, isExpired(fresh))
	assert.True(t, isExpired(stale))
	assert.True(t, isExpired(future))
}
