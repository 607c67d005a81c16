package iblt

import "errors"

var (
	// ErrSizeMismatch is returned by Subtract when the two IBLTs don't have
	// the same cell count. Subtracting IBLTs of different sizes is a
	// construction bug in the caller, not a recoverable wire condition — it
	// can never happen from decoding a peer's IBLT, since Unmarshal
	// rejects any payload whose length disagrees with the local table size
	// before Subtract is ever called.
	ErrSizeMismatch = errors.New("iblt: cannot subtract tables of different size")

	// ErrMalformedPayload is returned by Unmarshal when the decompressed
	// payload's length isn't exactly 12*N bytes for this table's N.
	ErrMalformedPayload = errors.New("iblt: decoded payload has wrong length")

	// ErrCorrupt is returned by Erase and ListEntries when badPeers flags a
	// key as inconsistent with the table's current contents (a double
	// erase, or a peer whose IBLT disagrees with ours in a way a clean
	// decode shouldn't produce).
	ErrCorrupt = errors.New("iblt: corrupt table or invalid key")
)
