package iblt

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

// cellWireSize is the on-wire size of one cell: a signed 32-bit count plus
// two uint32 XOR-sums, little-endian. Part of the wire contract.
const cellWireSize = 12

// Marshal serializes the table to its wire form: the cells, little-endian,
// count/keySum/keyCheck per cell, then zlib-deflated. The result is the raw
// payload of a single sync-request name component.
func (t *IBLT) Marshal() []byte {
	raw := make([]byte, cellWireSize*len(t.cells))
	for i, c := range t.cells {
		off := i * cellWireSize
		binary.LittleEndian.PutUint32(raw[off:], uint32(c.Count))
		binary.LittleEndian.PutUint32(raw[off+4:], c.KeySum)
		binary.LittleEndian.PutUint32(raw[off+8:], c.KeyCheck)
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	// Writes to an in-memory bytes.Buffer never fail.
	_, _ = w.Write(raw)
	_ = w.Close()
	return buf.Bytes()
}

// Unmarshal decodes component into this table in place. component is
// expected to inflate to exactly cellWireSize*N bytes, where N is this
// table's configured size (set by New/NewOfSize before calling Unmarshal) —
// any other length is rejected rather than silently truncated or padded, so
// a peer running with a different expectedNumEntries can't desync us.
func (t *IBLT) Unmarshal(component []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(component))
	if err != nil {
		return ErrMalformedPayload
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return ErrMalformedPayload
	}
	if len(raw) != cellWireSize*len(t.cells) {
		return ErrMalformedPayload
	}

	for i := range t.cells {
		off := i * cellWireSize
		t.cells[i] = Cell{
			Count:    int32(binary.LittleEndian.Uint32(raw[off:])),
			KeySum:   binary.LittleEndian.Uint32(raw[off+4:]),
			KeyCheck: binary.LittleEndian.Uint32(raw[off+8:]),
		}
	}
	return nil
}
