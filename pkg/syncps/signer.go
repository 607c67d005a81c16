package syncps

import "crypto/sha256"

// Signer signs a publication before it is admitted to the store, and a
// sync-response data packet before it is put on the wire. The default,
// DigestSigner, is a high-quality checksum without provenance or trust
// semantics, suitable as a proof-of-concept default. Production
// deployments install a real Signer without changing any engine logic.
type Signer interface {
	Sign(data []byte) (sigInfo []byte, err error)
}

// Validator validates data arriving from the transport before the engine
// acts on it. AcceptAllValidator is the default "accept all" validator.
type Validator interface {
	Validate(data []byte) error
}

// DigestSigner produces a sigInfo blob that is just the SHA-256 digest of
// the signed bytes — cheap, deterministic, and enough to detect accidental
// corruption, but not an assertion of identity.
type DigestSigner struct{}

// Sign implements Signer.
func (DigestSigner) Sign(data []byte) ([]byte, error) {
	d := sha256.Sum256(data)
	return d[:], nil
}

// AcceptAllValidator implements Validator by accepting everything. This is
// the engine's default; it carries no trust guarantee whatsoever.
type AcceptAllValidator struct{}

// Validate implements Validator.
func (AcceptAllValidator) Validate([]byte) error { return nil }
