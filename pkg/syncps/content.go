package syncps

import "encoding/binary"

// syncpsContentTag is the outer TLV type wrapping a sync response's
// publication block, value 129 in the wire contract.
const syncpsContentTag = 129

// pubEntryTag tags each inner publication TLV within a content block.
const pubEntryTag = 6

// encodeContent packs as many of pubs (already sorted into send order by
// the caller) as fit within maxSize bytes into one outer TLV block. It
// returns the encoded block and the number of publications it consumed.
func encodeContent(pubs []*Publication, maxSize int) ([]byte, int) {
	var value []byte
	sent := 0
	for _, p := range pubs {
		enc := p.wireEncode()
		entry := tlvEncode(pubEntryTag, enc)
		if len(value)+len(entry) > maxSize && sent > 0 {
			break
		}
		value = append(value, entry...)
		sent++
		if len(value) >= maxSize {
			break
		}
	}
	return tlvEncode(syncpsContentTag, value), sent
}

// decodeContent unwraps a content block and returns the raw wire encoding
// of each inner publication it carries. An error is returned if the outer
// tag doesn't match syncpsContentTag. An inner entry with the wrong tag is
// skipped and logged; an inner entry that fails to decode is logged and
// ends the block there, keeping the entries decoded before it.
func decodeContent(block []byte) ([][]byte, error) {
	tag, value, _, err := tlvDecode(block)
	if err != nil {
		return nil, ErrMalformedPublication
	}
	if tag != syncpsContentTag {
		return nil, ErrWrongContentType
	}

	var out [][]byte
	rest := value
	for len(rest) > 0 {
		entryTag, entryVal, n, err := tlvDecode(rest)
		if err != nil {
			logger.Warn("malformed publication TLV in sync data, truncating block")
			break
		}
		rest = rest[n:]
		if entryTag != pubEntryTag {
			logger.Warn("sync data with wrong publication tag, ignored", "tag", entryTag)
			continue
		}
		out = append(out, entryVal)
	}
	return out, nil
}

func tlvEncode(tag uint64, value []byte) []byte {
	var buf []byte
	buf = appendUvarint(buf, tag)
	buf = appendUvarint(buf, uint64(len(value)))
	buf = append(buf, value...)
	return buf
}

// tlvDecode reads one (tag, length-prefixed value) pair from buf and
// returns the total bytes consumed.
func tlvDecode(buf []byte) (tag uint64, value []byte, consumed int, err error) {
	tag, n1 := binary.Uvarint(buf)
	if n1 <= 0 {
		return 0, nil, 0, ErrMalformedPublication
	}
	rest := buf[n1:]
	l, n2 := binary.Uvarint(rest)
	if n2 <= 0 || uint64(len(rest)-n2) < l {
		return 0, nil, 0, ErrMalformedPublication
	}
	value = rest[n2 : n2+int(l)]
	consumed = n1 + n2 + int(l)
	return tag, value, consumed, nil
}
