// Package iblt implements the Invertible Bloom Lookup Table used to
// reconcile two lifetime-bounded sets of 32-bit keys without exchanging the
// sets themselves. It is deliberately self-contained: everything here is
// pure data-structure code with no knowledge of names, publications or the
// sync protocol built on top of it.
package iblt

import "github.com/pollere/DNMP/internal/dlog"

// nHash is the number of independent hash functions (and sub-tables) an
// IBLT is split into. It, like hashCheckSeed, is part of the wire contract.
const nHash = 3

var logger = dlog.Named("iblt")

// IBLT is a fixed-size table of nHash equal sub-tables. Cell size is fixed
// at construction and never resized; two IBLTs can only be subtracted if
// their cell counts match.
type IBLT struct {
	cells []Cell
}

// New builds an IBLT sized for expected entries: N is ceil(1.5*expected)
// rounded up to the next multiple of nHash — the 1.5x headroom keeps
// peeling-decode failure probability very low at the design load.
func New(expected int) *IBLT {
	n := expected + expected/2
	if rem := n % nHash; rem != 0 {
		n += nHash - rem
	}
	return &IBLT{cells: make([]Cell, n)}
}

// NewOfSize builds an IBLT with exactly n cells. n must already be a
// multiple of nHash; it is the caller's job to have gotten that from New or
// from a decoded peer table of the same configured size.
func NewOfSize(n int) *IBLT {
	return &IBLT{cells: make([]Cell, n)}
}

// Size returns the number of cells.
func (t *IBLT) Size() int { return len(t.cells) }

// subTableSize is N/nHash, the size of each of the three disjoint
// sub-tables.
func (t *IBLT) subTableSize() int { return len(t.cells) / nHash }

// hashIndex returns the cell index that hash function i assigns to key:
// murmur(i, key) mod (N/nHash) + i*(N/nHash).
func (t *IBLT) hashIndex(i int, key uint32) int {
	st := uint32(t.subTableSize())
	h := murmurUint32(uint32(i), key)
	return int(h%st) + i*t.subTableSize()
}

// Insert adds key to the table.
func (t *IBLT) Insert(key uint32) { t.update(1, key) }

// Erase removes key from the table. This is only safe when badPeers(key)
// is false (the table is known to actually contain key at each of its
// three hash positions); a violation returns ErrCorrupt and the erase is
// skipped rather than corrupting the table further.
func (t *IBLT) Erase(key uint32) error {
	if t.badPeers(key) {
		logger.Warn("invalid iblt erase: badPeers for key", "key", key)
		return ErrCorrupt
	}
	t.update(-1, key)
	return nil
}

func (t *IBLT) update(sign int32, key uint32) {
	for i := 0; i < nHash; i++ {
		t.cells[t.hashIndex(i, key)].update(sign, key)
	}
}

// chkPeer reports whether the cell at idx is inconsistent with key being a
// genuine member: it's empty, or it's pure but holds a different key.
func (t *IBLT) chkPeer(key uint32, idx int) bool {
	c := t.cells[idx]
	return c.IsEmpty() || (c.IsPure() && c.KeySum != key)
}

// badPeers reports whether any of key's three hash-table cells look
// inconsistent with key actually being a member — the interlock that
// catches a corrupted table or a double erase/peel before it can do
// further damage.
func (t *IBLT) badPeers(key uint32) bool {
	for i := 0; i < nHash; i++ {
		if t.chkPeer(key, t.hashIndex(i, key)) {
			return true
		}
	}
	return false
}

// Subtract returns a new IBLT holding this table minus other, cell by
// cell: count subtracts, keySum and keyCheck XOR. Both tables must have
// the same cell count; a mismatch is a construction bug in the caller;
// this is never triggered by decoding a peer's wire IBLT since
// Unmarshal already enforces matching size.
func (t *IBLT) Subtract(other *IBLT) (*IBLT, error) {
	if len(t.cells) != len(other.cells) {
		return nil, ErrSizeMismatch
	}
	result := &IBLT{cells: make([]Cell, len(t.cells))}
	for i := range t.cells {
		result.cells[i] = Cell{
			Count:    t.cells[i].Count - other.cells[i].Count,
			KeySum:   t.cells[i].KeySum ^ other.cells[i].KeySum,
			KeyCheck: t.cells[i].KeyCheck ^ other.cells[i].KeyCheck,
		}
	}
	return result, nil
}

// ListEntries peels this table (a difference of two IBLTs, by convention)
// down to the keys present on each side: positive holds keys whose count
// came out +1 (present in the left-hand operand of the subtraction but not
// the right), negative holds keys whose count came out -1 (the converse).
//
// It returns ErrCorrupt if peeling hits a pure cell that fails the
// badPeers check — a corrupt table or an invalid difference — in which
// case positive/negative reflect whatever was peeled before the failure
// and must be discarded by the caller. It returns nil once no pure cell
// remains; some cells may still be nonzero (a residual that round after
// round of the protocol, not this call, will resolve).
func (t *IBLT) ListEntries() (positive, negative []uint32, err error) {
	peeled := t.clone()

	for {
		progressed := false
		// Indexed (not range-value) iteration: a peel's update() touches
		// all three of a key's cells, which can include cells later in
		// this same pass. Re-reading peeled.cells[i] at each step (rather
		// than a snapshot taken before the pass) means a cell zeroed by an
		// earlier peel this pass is never recorded twice.
		for i := 0; i < len(peeled.cells); i++ {
			c := peeled.cells[i]
			if !c.IsPure() {
				continue
			}
			if peeled.badPeers(c.KeySum) {
				logger.Warn("invalid iblt: badPeers during peel", "key", c.KeySum)
				return positive, negative, ErrCorrupt
			}
			if c.Count == 1 {
				positive = append(positive, c.KeySum)
			} else {
				negative = append(negative, c.KeySum)
			}
			peeled.update(-c.Count, c.KeySum)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return positive, negative, nil
}

func (t *IBLT) clone() *IBLT {
	cells := make([]Cell, len(t.cells))
	copy(cells, t.cells)
	return &IBLT{cells: cells}
}

// Equal reports whether two IBLTs have byte-identical cell contents. Used
// by round-trip tests (insert then erase returns to the prior state).
func (t *IBLT) Equal(other *IBLT) bool {
	if len(t.cells) != len(other.cells) {
		return false
	}
	for i := range t.cells {
		if t.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Cells returns a copy of the cell table, for tests and diagnostics.
func (t *IBLT) Cells() []Cell {
	out := make([]Cell, len(t.cells))
	copy(out, t.cells)
	return out
}
