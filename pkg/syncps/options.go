package syncps

import "time"

// Config holds an Engine's tunable parameters. The defaults are part of
// the protocol's wire contract: changing MaxPubLifetime or MaxClockSkew
// changes when a peer considers a publication expired, so all peers in a
// sync group must agree.
type Config struct {
	// SyncInterestLifetime is how long an outbound sync request is valid
	// for before the engine re-issues it.
	SyncInterestLifetime time.Duration

	// ExpectedNumEntries sizes the IBLT: N = ceil(1.5*ExpectedNumEntries)
	// rounded up to a multiple of 3.
	ExpectedNumEntries int

	// MaxPubLifetime is how long a publication is "live" (offered in
	// responses) after being admitted.
	MaxPubLifetime time.Duration

	// MaxClockSkew extends IBLT membership past MaxPubLifetime, and is the
	// two-sided tolerance isExpired applies around a publication's declared
	// timestamp.
	MaxClockSkew time.Duration

	// MaxPubSize bounds how many bytes of publications are packed into one
	// sync-response content block.
	MaxPubSize int

	Signer    Signer
	Validator Validator
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterestLifetime: 4 * time.Second,
		ExpectedNumEntries:   85,
		MaxPubLifetime:       1 * time.Second,
		MaxClockSkew:         1 * time.Second,
		MaxPubSize:           1300,
		Signer:               DigestSigner{},
		Validator:            AcceptAllValidator{},
	}
}

// Option configures an Engine at construction time.
type Option func(*Config)

// WithSyncInterestLifetime overrides the outbound sync request lifetime.
func WithSyncInterestLifetime(d time.Duration) Option {
	return func(c *Config) { c.SyncInterestLifetime = d }
}

// WithExpectedNumEntries overrides the IBLT sizing hint.
func WithExpectedNumEntries(n int) Option {
	return func(c *Config) { c.ExpectedNumEntries = n }
}

// WithSigner installs a custom Signer. All publications are signed when
// published, and all sync-response Data packets are signed when sent, using
// this signer.
func WithSigner(s Signer) Option {
	return func(c *Config) { c.Signer = s }
}

// WithValidator installs a custom Validator. All arriving Data packets are
// validated with this before the engine acts on their contents.
func WithValidator(v Validator) Option {
	return func(c *Config) { c.Validator = v }
}
