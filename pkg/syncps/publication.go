package syncps

import (
	"encoding/binary"

	"github.com/pollere/DNMP/pkg/iblt"
	"github.com/pollere/DNMP/pkg/wirename"
)

// Publication is an immutable signed object: a Name and an opaque content
// payload. publish appends a timestamp component (milliseconds since the
// Unix epoch) before signing, so the name's last component both versions
// the publication and bounds its lifetime.
type Publication struct {
	name     wirename.Name
	content  []byte
	sigInfo  []byte
	wire     []byte // cached wireEncode() output
	digest   uint32
	digested bool
}

// NewPublication builds an unsigned publication. Callers normally go
// through Engine.Publish, which appends the timestamp component and signs
// it; this constructor is exported for tests and for signers that need to
// build one directly.
func NewPublication(name wirename.Name, content []byte) *Publication {
	return &Publication{name: name.Clone(), content: append([]byte(nil), content...)}
}

// Name returns the publication's name.
func (p *Publication) Name() wirename.Name { return p.name }

// Content returns the publication's payload.
func (p *Publication) Content() []byte { return p.content }

// wireEncode serializes name, content and signature info into the single
// byte buffer that is both the wire form carried inside a sync-response TLV
// and the input to the publication's digest. The encoding is a simple
// length-prefixed concatenation: it only has to be self-consistent between
// peers running this implementation, not match any external NDN TLV.
func (p *Publication) wireEncode() []byte {
	if p.wire != nil {
		return p.wire
	}
	var buf []byte
	buf = appendUvarint(buf, uint64(p.name.Size()))
	for _, c := range p.name {
		buf = appendUvarint(buf, uint64(len(c)))
		buf = append(buf, c...)
	}
	buf = appendUvarint(buf, uint64(len(p.content)))
	buf = append(buf, p.content...)
	buf = appendUvarint(buf, uint64(len(p.sigInfo)))
	buf = append(buf, p.sigInfo...)
	p.wire = buf
	return buf
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// decodePublication is the inverse of wireEncode.
func decodePublication(raw []byte) (*Publication, error) {
	r := raw
	nComponents, n, err := readUvarint(r)
	if err != nil {
		return nil, ErrMalformedPublication
	}
	r = r[n:]

	name := make(wirename.Name, nComponents)
	for i := uint64(0); i < nComponents; i++ {
		clen, n, err := readUvarint(r)
		if err != nil || uint64(len(r)-n) < clen {
			return nil, ErrMalformedPublication
		}
		r = r[n:]
		name[i] = wirename.Component(append([]byte(nil), r[:clen]...))
		r = r[clen:]
	}

	clen, n, err := readUvarint(r)
	if err != nil || uint64(len(r)-n) < clen {
		return nil, ErrMalformedPublication
	}
	r = r[n:]
	content := append([]byte(nil), r[:clen]...)
	r = r[clen:]

	slen, n, err := readUvarint(r)
	if err != nil || uint64(len(r)-n) < slen {
		return nil, ErrMalformedPublication
	}
	r = r[n:]
	sigInfo := append([]byte(nil), r[:slen]...)

	p := &Publication{name: name, content: content, sigInfo: sigInfo}
	p.wire = append([]byte(nil), raw...)
	return p, nil
}

func readUvarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, ErrMalformedPublication
	}
	return v, n, nil
}

// digestOf returns the 32-bit digest used as the publication's IBLT key:
// murmur(HashCheckSeed, wireEncode()). Cached on first computation since a
// Publication's content never changes after construction.
func (p *Publication) digestOf() uint32 {
	if !p.digested {
		p.digest = iblt.Hash(iblt.HashCheckSeed, p.wireEncode())
		p.digested = true
	}
	return p.digest
}

// timestampMillis returns the value of the last name component, interpreted
// as a big-endian 64-bit millisecond timestamp (the form publish appends).
// Returns 0, false if the last component isn't 8 bytes.
func (p *Publication) timestampMillis() (int64, bool) {
	if p.name.Size() == 0 {
		return 0, false
	}
	last := p.name.At(-1)
	if len(last) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(last)), true
}

// withTimestamp returns a copy of p with a timestamp component appended,
// encoding t as big-endian milliseconds since the Unix epoch.
func (p *Publication) withTimestamp(millis int64) *Publication {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(millis))
	return &Publication{
		name:    p.name.Append(wirename.Component(ts[:])),
		content: p.content,
		sigInfo: p.sigInfo,
	}
}

// withSigInfo returns a copy of p with sigInfo attached, invalidating any
// cached wire encoding.
func (p *Publication) withSigInfo(sig []byte) *Publication {
	return &Publication{
		name:    p.name,
		content: p.content,
		sigInfo: sig,
	}
}
