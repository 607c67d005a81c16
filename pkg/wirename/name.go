// Package wirename implements the named-data style hierarchical name used
// throughout pkg/syncps: an ordered sequence of opaque byte-string
// components, supporting prefix and sub-name extraction and prefix tests.
// It has no dependency on the sync protocol itself — it is pure value-type
// plumbing.
package wirename

import "bytes"

// Component is one opaque element of a Name.
type Component []byte

// Equal reports byte-for-byte equality.
func (c Component) Equal(other Component) bool {
	return bytes.Equal(c, other)
}

// Clone returns an independent copy of c.
func (c Component) Clone() Component {
	out := make(Component, len(c))
	copy(out, c)
	return out
}

// Name is an ordered sequence of components, e.g. the topic/timestamp
// structure of a publication name or the sync-prefix/encoded-IBLT structure
// of a sync-request name.
type Name []Component

// New builds a Name from string components, a convenience for tests and
// callers that don't need binary component values.
func New(parts ...string) Name {
	n := make(Name, len(parts))
	for i, p := range parts {
		n[i] = Component(p)
	}
	return n
}

// Size returns the number of components.
func (n Name) Size() int { return len(n) }

// At returns the component at index i. Negative indices count from the end
// (-1 is the last component), the usual convention for reaching a name's
// trailing IBLT/timestamp component.
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n)
	}
	return n[i]
}

// Append returns a new Name with c appended. Name values are treated as
// immutable by convention; Append never mutates the receiver's backing
// array in a way visible to other Names sharing it.
func (n Name) Append(c Component) Name {
	out := make(Name, len(n), len(n)+1)
	copy(out, n)
	return append(out, c)
}

// Prefix returns the first n_ components as a new Name. Panics if n_
// exceeds Size(), the same contract as a slice bounds error.
func (n Name) Prefix(n_ int) Name {
	return n.Subname(0, n_)
}

// Subname returns components [start, start+count).
func (n Name) Subname(start, count int) Name {
	out := make(Name, count)
	copy(out, n[start:start+count])
	return out
}

// Equal reports whether two Names have the same components in the same
// order.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether n is a proper-or-equal prefix of other: every
// component of n matches the corresponding component of other, and n is no
// longer than other.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n) > len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Key returns an unambiguous string encoding of n suitable for use as a map
// key: each component is prefixed with its length so that no sequence of
// components can collide with a different sequence (unlike joining with a
// separator byte, which a component could itself contain).
func (n Name) Key() string {
	var b []byte
	for _, c := range n {
		var lenBuf [4]byte
		l := len(c)
		lenBuf[0] = byte(l)
		lenBuf[1] = byte(l >> 8)
		lenBuf[2] = byte(l >> 16)
		lenBuf[3] = byte(l >> 24)
		b = append(b, lenBuf[:]...)
		b = append(b, c...)
	}
	return string(b)
}

// Clone returns a deep copy.
func (n Name) Clone() Name {
	out := make(Name, len(n))
	for i, c := range n {
		out[i] = c.Clone()
	}
	return out
}

// String renders the name as a slash-separated, best-effort printable form
// for logs. Components containing any byte outside printable ASCII print as
// hex.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var b []byte
	for _, c := range n {
		b = append(b, '/')
		if isPrintable(c) {
			b = append(b, c...)
		} else {
			b = append(b, []byte(hexString(c))...)
		}
	}
	return string(b)
}

func isPrintable(c Component) bool {
	for _, b := range c {
		if b < 0x20 || b >= 0x7f {
			return false
		}
	}
	return true
}

const hexDigits = "0123456789abcdef"

func hexString(c Component) string {
	out := make([]byte, len(c)*2)
	for i, b := range c {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0xf]
	}
	return string(out)
}
