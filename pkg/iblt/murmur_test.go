package iblt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMurmurDeterministic(t *testing.T) {
	a := murmurBytes(0, []byte("the quick brown fox"))
	b := murmurBytes(0, []byte("the quick brown fox"))
	assert.Equal(t, a, b)
}

func TestMurmurSeedSensitivity(t *testing.T) {
	a := murmurBytes(0, []byte("publication-digest"))
	b := murmurBytes(1, []byte("publication-digest"))
	c := murmurBytes(hashCheckSeed, []byte("publication-digest"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
}

func TestMurmurUint32MatchesLittleEndianBytes(t *testing.T) {
	v := uint32(0x01020304)
	viaUint := murmurUint32(0, v)
	viaBytes := murmurBytes(0, []byte{0x04, 0x03, 0x02, 0x01})
	assert.Equal(t, viaBytes, viaUint)
}
