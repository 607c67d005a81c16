package syncps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollere/DNMP/pkg/wirename"
)

func TestWireEncodeDecodeRoundTrip(t *testing.T) {
	pub := NewPublication(wirename.New("x", "y"), []byte("payload")).withTimestamp(12345)
	sig, err := DigestSigner{}.Sign(pub.wireEncode())
	require.NoError(t, err)
	pub = pub.withSigInfo(sig)

	decoded, err := decodePublication(pub.wireEncode())
	require.NoError(t, err)

	assert.True(t, decoded.Name().Equal(pub.Name()))
	assert.Equal(t, pub.Content(), decoded.Content())
	assert.Equal(t, pub.digestOf(), decoded.digestOf())
}

func TestDecodePublicationRejectsGarbage(t *testing.T) {
	_, err := decodePublication([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrMalformedPublication)
}

func TestTimestampMillisRoundTrip(t *testing.T) {
	pub := NewPublication(wirename.New("x"), nil).withTimestamp(987654321)
	ts, ok := pub.timestampMillis()
	require.True(t, ok)
	assert.Equal(t, int64(987654321), ts)
}

func TestTimestampMillisFalseWithoutTimestampComponent(t *testing.T) {
	pub := NewPublication(wirename.New("x"), nil)
	_, ok := pub.timestampMillis()
	assert.False(t, ok)
}

// Two publications with identical wire bytes must hash identically: the
// digest is the IBLT key and has to be stable across peers.
func TestDigestIsDeterministic(t *testing.T) {
	a := NewPublication(wirename.New("x"), []byte("v")).withTimestamp(1)
	b := NewPublication(wirename.New("x"), []byte("v")).withTimestamp(1)
	assert.Equal(t, a.digestOf(), b.digestOf())
}

func TestDigestDiffersOnContent(t *testing.T) {
	a := NewPublication(wirename.New("x"), []byte("v1")).withTimestamp(1)
	b := NewPublication(wirename.New("x"), []byte("v2")).withTimestamp(1)
	assert.NotEqual(t, a.digestOf(), b.digestOf())
}
