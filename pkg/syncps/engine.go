package syncps

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pollere/DNMP/internal/dlog"
	"github.com/pollere/DNMP/pkg/iblt"
	"github.com/pollere/DNMP/pkg/wirename"
)

var logger = dlog.Named("syncps")

// IsExpiredCb tests whether a publication should be treated as expired.
// DefaultIsExpired implements the default two-sided policy; callers may
// substitute their own.
type IsExpiredCb func(*Publication) bool

// FilterPubsCb decides, for a sync request, which of the publications this
// engine could answer with ("ours", ones it published itself, and
// "others", ones it learned from a peer) actually get sent. It receives
// both lists and returns the final ordered list to pack into the response.
// There is no engine-level default: every Engine must be given one.
type FilterPubsCb func(ours, others []*Publication) []*Publication

// Engine is a sync-engine instance bound to one sync prefix. All of its
// methods, and every callback it invokes, are expected to run on the same
// goroutine that drives the underlying Transport's event loop; Engine does
// no internal locking around its own state beyond the Start/Stop guard.
type Engine struct {
	mu      sync.RWMutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	// id identifies this engine instance in log lines; it has no protocol
	// significance (two engines on the same sync prefix are otherwise
	// indistinguishable in logs).
	id string

	transport  Transport
	config     *Config
	syncPrefix wirename.Name

	iblt   *iblt.IBLT
	active map[uint32]*activeEntry

	subs    subscriptionTable
	pending *pendingInterestTable

	isExpired  IsExpiredCb
	filterPubs FilterPubsCb

	registering         bool
	currentNonce        uint32
	sendingSyncInterest bool
	delivering          bool
	publicationsCount   uint32
	scheduledReissue    TimerHandle
}

// New builds an Engine for syncPrefix. isExpired and filterPubs are
// required (ErrNoIsExpired / ErrNoFilter); transport is required
// (ErrNilTransport). The engine does not start reconciling until Start is
// called.
func New(transport Transport, syncPrefix wirename.Name, isExpired IsExpiredCb, filterPubs FilterPubsCb, opts ...Option) (*Engine, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if isExpired == nil {
		return nil, ErrNoIsExpired
	}
	if filterPubs == nil {
		return nil, ErrNoFilter
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	e := &Engine{
		id:          uuid.New().String(),
		transport:   transport,
		config:      config,
		syncPrefix:  syncPrefix.Clone(),
		iblt:        iblt.New(config.ExpectedNumEntries),
		active:      make(map[uint32]*activeEntry),
		pending:     newPendingInterestTable(),
		isExpired:   isExpired,
		filterPubs:  filterPubs,
		registering: true,
	}
	return e, nil
}

// DefaultIsExpired implements a two-sided expiry policy: a publication is
// expired once its declared timestamp is at least
// MaxPubLifetime+MaxClockSkew in the past, or at least MaxClockSkew in the
// future (guarding against both stale replays and future-dated spoofs).
func DefaultIsExpired(cfg *Config) IsExpiredCb {
	return func(p *Publication) bool {
		ts, ok := p.timestampMillis()
		if !ok {
			return true
		}
		now := time.Now().UnixMilli()
		age := now - ts
		limit := (cfg.MaxPubLifetime + cfg.MaxClockSkew).Milliseconds()
		skew := cfg.MaxClockSkew.Milliseconds()
		return age >= limit || age <= -skew
	}
}

// Start registers the sync prefix with the transport and, once that
// succeeds, sends the first sync request. Registration failure is fatal:
// it terminates the engine (no automatic recovery is attempted).
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.started = true
	e.registering = true
	e.mu.Unlock()

	logger.Info("starting sync engine", "engine", e.id, "prefix", e.syncPrefix.String())

	e.transport.RegisterPrefix(e.syncPrefix,
		e.onSyncInterest,
		func() {
			e.registering = false
			e.sendSyncInterest()
		},
		func(reason string) {
			err := &ErrRegistration{Prefix: e.syncPrefix.String(), Reason: reason}
			logger.Error("prefix registration failed", "error", err)
			e.mu.Lock()
			e.started = false
			e.mu.Unlock()
		},
	)
	return nil
}

// Stop cancels the engine's context and its scheduled re-issue timer. It
// does not unregister the prefix — that's the Transport's business, not
// tracked here.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return ErrNotStarted
	}
	if e.cancel != nil {
		e.cancel()
	}
	cancel(e.scheduledReissue)
	e.started = false
	logger.Info("stopped sync engine", "engine", e.id, "prefix", e.syncPrefix.String())
	return nil
}

// Schedule runs cb after delay, on the transport's event loop. It exists so
// callers (probes, CLI tools) don't need to depend on the Transport
// directly to get timer service.
func (e *Engine) Schedule(delay time.Duration, cb func()) TimerHandle {
	return e.transport.Schedule(delay, cb)
}

// SubscribeTo routes publications under topic to cb. A second call for the
// same topic replaces the first callback.
func (e *Engine) SubscribeTo(topic wirename.Name, cb UpdateCb) {
	e.subs.subscribeTo(topic, cb)
	logger.Info("subscribeTo", "topic", topic.String())
}

// Unsubscribe removes any subscription to topic.
func (e *Engine) Unsubscribe(topic wirename.Name) {
	e.subs.unsubscribe(topic)
	logger.Info("unsubscribe", "topic", topic.String())
}

// Publish appends a timestamp component (the current time in milliseconds)
// to pub's name, signs the result and admits it. The republish check runs
// on that timestamped, signed publication: it is detected by isKnown and
// silently ignored only when it is wire-identical to one already admitted,
// which happens when the same name and content are published again within
// the same millisecond. Publishing the same pub at a later millisecond
// admits a new publication.
func (e *Engine) Publish(pub *Publication) error {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	timestamped := pub.withTimestamp(time.Now().UnixMilli())
	sig, err := e.config.Signer.Sign(timestamped.wireEncode())
	if err != nil {
		return err
	}
	signed := timestamped.withSigInfo(sig)

	if e.isKnownPub(signed) {
		logger.Warn("republish ignored", "name", signed.Name().String())
		return nil
	}

	logger.Info("publish", "name", signed.Name().String())
	e.publicationsCount++
	e.addToActive(signed, true)

	if !e.delivering {
		e.sendSyncInterest()
		e.handleInterests()
	}
	return nil
}

// sendSyncInterest issues a fresh outbound sync request carrying the
// current IBLT snapshot, and schedules its own re-issue 20ms before its
// lifetime would otherwise elapse.
func (e *Engine) sendSyncInterest() {
	if e.registering {
		return
	}
	if e.sendingSyncInterest {
		// Nothing in this single-threaded engine is supposed to call back
		// into sendSyncInterest while it's already running (every callback
		// it registers below fires later, on its own scheduled turn).
		logger.Error("defensive check failed", "error", ErrTooManyOutstanding)
		return
	}
	e.sendingSyncInterest = true
	defer func() { e.sendingSyncInterest = false }()

	e.reExpressSyncInterest()

	name := e.syncPrefix.Append(wirename.Component(e.iblt.Marshal()))
	nonce := randomNonce()
	e.currentNonce = nonce

	logger.Debug("sendSyncInterest", "nonce", nonce, "hash", e.hashIBLT(name))

	e.transport.ExpressInterest(name, nonce, e.config.SyncInterestLifetime, DataCallbacks{
		OnData: func(content []byte) {
			if err := e.config.Validator.Validate(content); err != nil {
				logger.Info("invalid sync data ignored", "error", err)
				return
			}
			e.onValidData(nonce, name, content)
		},
		OnNack:    func() { logger.Info("nack for sync interest", "nonce", nonce) },
		OnTimeout: func() { logger.Info("timeout for sync interest", "nonce", nonce) },
	})
}

// hashIBLT returns a short correlation hash of the IBLT carried in name's
// last component, for tying together the Debug log lines of a send/receive
// round without printing the whole (possibly large) component.
func (e *Engine) hashIBLT(name wirename.Name) uint32 {
	return iblt.Hash(iblt.HashCheckSeed, name.At(-1))
}

func (e *Engine) reExpressSyncInterest() {
	cancel(e.scheduledReissue)
	when := e.config.SyncInterestLifetime - 20*time.Millisecond
	e.scheduledReissue = e.transport.Schedule(when, e.sendSyncInterest)
}

// sendSyncInterestSoon schedules a sync request shortly (3ms) from now, used
// to let peers learn promptly of a digest this engine just evicted.
func (e *Engine) sendSyncInterestSoon() {
	cancel(e.scheduledReissue)
	e.scheduledReissue = e.transport.Schedule(3*time.Millisecond, e.sendSyncInterest)
}

// onSyncInterest is the Transport's onInterest callback for the registered
// sync prefix.
func (e *Engine) onSyncInterest(name wirename.Name, nonce uint32) {
	if nonce == e.currentNonce {
		// the transport looped our own interest back to us
		return
	}
	logger.Debug("onSyncInterest", "nonce", nonce, "hash", e.hashIBLT(name))
	if name.Size()-e.syncPrefix.Size() != 1 {
		logger.Info("invalid sync interest name, dropped", "name", name.String())
		return
	}
	if !e.handleInterest(name) {
		e.pending.add(name, time.Now().Add(e.config.SyncInterestLifetime))
	}
}

// handleInterests re-attempts every still-pending sync request, keeping the
// ones that remain unsatisfied and haven't yet expired.
func (e *Engine) handleInterests() {
	e.pending.sweep(time.Now(), e.handleInterest)
}

// handleInterest decodes the peer IBLT carried in name's last component,
// peels the difference against this engine's own IBLT, and answers with a
// Data packet if the filter callback has anything to send. It returns true
// once the request should be considered satisfied: after a response is
// sent, and also when it gives up (malformed peer IBLT, size mismatch,
// peeling failure, signing failure) so it isn't retried forever. It returns
// false when the filtered list is empty, leaving the request to be retried
// from the pending table.
func (e *Engine) handleInterest(name wirename.Name) bool {
	peer := iblt.NewOfSize(e.iblt.Size())
	if err := peer.Unmarshal(name.At(-1)); err != nil {
		logger.Warn("malformed peer iblt, treating interest as satisfied", "error", err)
		return true
	}

	diff, err := e.iblt.Subtract(peer)
	if err != nil {
		logger.Warn("iblt size mismatch against peer, treating interest as satisfied", "error", err)
		return true
	}
	have, _, err := diff.ListEntries()
	if err != nil {
		logger.Warn("iblt peeling failed, treating interest as satisfied", "error", err)
		return true
	}

	var ours, others []*Publication
	for _, digest := range have {
		entry, found := e.active[digest]
		if !found || entry.state&stateLive == 0 {
			continue
		}
		if entry.state&stateLocal != 0 {
			ours = append(ours, entry.pub)
		} else {
			others = append(others, entry.pub)
		}
	}

	filtered := e.filterPubs(ours, others)
	if len(filtered) == 0 {
		return false
	}

	block, sent := encodeContent(filtered, e.config.MaxPubSize)
	logger.Debug("sendSyncData", "name", name.String(), "publications", sent)
	sig, err := e.config.Signer.Sign(block)
	if err != nil {
		logger.Warn("failed to sign sync data, dropping response", "error", err)
		return true
	}
	e.transport.Put(name, block, sig, e.config.MaxPubLifetime/2)
	return true
}

// DefaultFilterPubs implements the reference default: nothing is sent
// unless ours is non-empty; when it is, both lists are sorted most-recent-
// first by their trailing timestamp component and ours is sent ahead of
// others.
func DefaultFilterPubs(ours, others []*Publication) []*Publication {
	if len(ours) == 0 {
		return nil
	}
	sortByTimestampDesc(ours)
	sortByTimestampDesc(others)
	return append(ours, others...)
}

func sortByTimestampDesc(pubs []*Publication) {
	sort.SliceStable(pubs, func(i, j int) bool {
		ti, _ := pubs[i].timestampMillis()
		tj, _ := pubs[j].timestampMillis()
		return ti > tj
	})
}

// onValidData processes a sync response after the configured Validator has
// accepted it. name is the sync request this response answers.
func (e *Engine) onValidData(nonce uint32, name wirename.Name, content []byte) {
	logger.Debug("onValidData", "nonce", nonce, "hash", e.hashIBLT(name))

	entries, err := decodeContent(content)
	if err != nil {
		logger.Warn("sync data with wrong content type, ignored", "error", err)
		return
	}

	e.delivering = true
	initPubs := e.publicationsCount

	for _, raw := range entries {
		pub, err := decodePublication(raw)
		if err != nil {
			logger.Warn("sync data with malformed publication, ignored", "error", err)
			continue
		}
		if e.isExpired(pub) || e.isKnownPub(pub) {
			continue
		}
		stored := e.addToActive(pub, false)
		if cb, matched := e.subs.match(stored.Name()); matched {
			cb(stored)
		}
	}

	e.delivering = false
	if nonce == e.currentNonce {
		e.sendSyncInterest()
	}
	if initPubs != e.publicationsCount {
		e.handleInterests()
	}
}

func randomNonce() uint32 {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}
