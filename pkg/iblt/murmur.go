package iblt

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// hashCheckSeed is the seed used to compute a cell's keyCheck value. It is
// part of the wire contract: peers that disagree on this seed will decode
// garbage from each other's IBLTs.
const hashCheckSeed = 11

// murmurBytes hashes buf with the given 32-bit seed using MurmurHash3's
// x86_32 variant. The implementation must stay bit-identical to Austin
// Appleby's public-domain reference (digests and cell indices are compared
// across peers on the wire), so this is a thin wrapper around
// spaolacci/murmur3 rather than a hand-rolled reimplementation.
func murmurBytes(seed uint32, buf []byte) uint32 {
	return murmur3.Sum32WithSeed(buf, seed)
}

// murmurUint32 hashes the little-endian bytes of v.
func murmurUint32(seed, v uint32) uint32 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return murmurBytes(seed, buf[:])
}

// checkHash returns the keyCheck value for key: murmur(hashCheckSeed, key).
func checkHash(key uint32) uint32 {
	return murmurUint32(hashCheckSeed, key)
}

// HashCheckSeed is hashCheckSeed's exported form, for callers outside this
// package that need to derive an IBLT key the same way the engine hashes a
// publication's wire encoding (seed 11, a.k.a. N_HASHCHECK).
const HashCheckSeed = hashCheckSeed

// Hash exposes murmurBytes for computing publication digests and other
// wire-comparable hashes outside this package.
func Hash(seed uint32, buf []byte) uint32 {
	return murmurBytes(seed, buf)
}
