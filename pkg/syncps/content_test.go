package syncps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollere/DNMP/pkg/wirename"
)

func TestEncodeDecodeContentRoundTrip(t *testing.T) {
	pubs := []*Publication{
		NewPublication(wirename.New("a"), []byte("one")).withTimestamp(1),
		NewPublication(wirename.New("b"), []byte("two")).withTimestamp(2),
	}
	block, sent := encodeContent(pubs, 10_000)
	require.Equal(t, 2, sent)

	entries, err := decodeContent(block)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	decoded, err := decodePublication(entries[0])
	require.NoError(t, err)
	assert.True(t, decoded.Name().Equal(pubs[0].Name()))
	assert.Equal(t, pubs[0].Content(), decoded.Content())
}

// packing stops once the budget is reached rather than overflowing it, but
// always sends at least one publication so the block can't be empty purely
// due to size.
func TestEncodeContentStopsAtBudget(t *testing.T) {
	var pubs []*Publication
	content := make([]byte, 200)
	for i := 0; i < 20; i++ {
		ts := int64(i)
		pubs = append(pubs, NewPublication(wirename.New("topic"), content).withTimestamp(ts))
	}

	block, sent := encodeContent(pubs, 1300)
	assert.Less(t, sent, 20)
	assert.Greater(t, sent, 0)

	entries, err := decodeContent(block)
	require.NoError(t, err)
	assert.Len(t, entries, sent)
}

func TestDecodeContentRejectsWrongOuterTag(t *testing.T) {
	block := tlvEncode(42, []byte("whatever"))
	_, err := decodeContent(block)
	assert.ErrorIs(t, err, ErrWrongContentType)
}

func TestDecodeContentSkipsMalformedInnerEntryButKeepsGood(t *testing.T) {
	good := tlvEncode(pubEntryTag, []byte("ok"))
	wrongTag := tlvEncode(99, []byte("skip-me"))
	value := append(append([]byte{}, wrongTag...), good...)
	block := tlvEncode(syncpsContentTag, value)

	entries, err := decodeContent(block)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []byte("ok"), entries[0])
}
