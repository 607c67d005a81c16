package iblt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Insert then erase of the same key returns the table to its prior
// state, byte-identical.
func TestInsertEraseRoundTrip(t *testing.T) {
	tbl := New(50)
	before := tbl.clone()

	tbl.Insert(0xdeadbeef)
	assert.False(t, tbl.Equal(before))

	require.NoError(t, tbl.Erase(0xdeadbeef))
	assert.True(t, tbl.Equal(before))
}

// Marshal/Unmarshal round-trips exactly for a populated table.
func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	tbl := New(50)
	for i := uint32(0); i < 40; i++ {
		tbl.Insert(i * 7919)
	}

	wire := tbl.Marshal()

	decoded := NewOfSize(tbl.Size())
	require.NoError(t, decoded.Unmarshal(wire))
	assert.True(t, tbl.Equal(decoded))
}

func TestUnmarshalRejectsWrongLength(t *testing.T) {
	a := New(50)
	a.Insert(1)
	wire := a.Marshal()

	b := NewOfSize(a.Size() + nHash) // deliberately mismatched N
	err := b.Unmarshal(wire)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	tbl := NewOfSize(30)
	err := tbl.Unmarshal([]byte("not zlib data at all"))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

// Subtracting two tables built from related key sets peels to the
// exact symmetric difference.
func TestListEntriesSymmetricDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	shared := make([]uint32, 45)
	for i := range shared {
		shared[i] = rng.Uint32()
	}
	onlyA := []uint32{rng.Uint32(), rng.Uint32(), rng.Uint32(), rng.Uint32(), rng.Uint32()}
	onlyB := []uint32{rng.Uint32(), rng.Uint32(), rng.Uint32(), rng.Uint32(), rng.Uint32()}

	a := New(50)
	b := New(50)
	for _, k := range shared {
		a.Insert(k)
		b.Insert(k)
	}
	for _, k := range onlyA {
		a.Insert(k)
	}
	for _, k := range onlyB {
		b.Insert(k)
	}

	diff, err := a.Subtract(b)
	require.NoError(t, err)

	pos, neg, err := diff.ListEntries()
	require.NoError(t, err)
	assert.ElementsMatch(t, onlyA, pos)
	assert.ElementsMatch(t, onlyB, neg)
}

func TestSubtractSizeMismatch(t *testing.T) {
	a := New(50)
	b := New(10)
	_, err := a.Subtract(b)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestEraseUnknownKeyIsSuppressed(t *testing.T) {
	tbl := New(50)
	before := tbl.clone()
	assert.ErrorIs(t, tbl.Erase(0x12345678), ErrCorrupt) // never inserted: badPeers should suppress this
	assert.True(t, tbl.Equal(before))
}

func TestNewSizing(t *testing.T) {
	// expectedNumEntries=85 -> ceil(1.5*85)=128 rounded up to mult of 3 = 129
	tbl := New(85)
	assert.Equal(t, 129, tbl.Size())
}

func TestListEntriesEmptyDifferenceIsEmpty(t *testing.T) {
	a := New(50)
	b := New(50)
	for _, k := range []uint32{1, 2, 3} {
		a.Insert(k)
		b.Insert(k)
	}
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	pos, neg, err := diff.ListEntries()
	assert.NoError(t, err)
	assert.Empty(t, pos)
	assert.Empty(t, neg)
}
