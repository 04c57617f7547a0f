package u8pool

import "unsafe"

// alignPad returns the number of padding bytes needed so that absolute
// buffer offset cursor+pad is aligned to align (a power of two, as
// produced by unsafe.Alignof).
func alignPad(base uintptr, cursor, align int) int {
	if align <= 1 {
		return 0
	}
	abs := base + uintptr(cursor)
	rem := int(abs % uintptr(align))
	if rem == 0 {
		return 0
	}
	return align - rem
}

// PushAssoc stores a fixed-size header H immediately before data, inserting
// whatever padding is required so the header's address satisfies
// unsafe.Alignof(H). The descriptor's length covers padding + sizeof(H) +
// len(data), so dataEnd() always lands past the padding on the next push.
// Returns pointers that alias the pool's buffer; they are valid until the
// pool is cleared or reused.
func PushAssoc[H any](p *U8Pool, header H, data []byte) (*H, []byte, error) {
	var zero H
	sz := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))

	cursor := p.dataEnd()
	base := uintptr(unsafe.Pointer(&p.buffer[0]))
	pad := alignPad(base, cursor, align)
	total := pad + sz + len(data)

	if err := p.reserve(total); err != nil {
		return nil, nil, err
	}
	if err := p.setDescriptor(p.count, cursor, total); err != nil {
		return nil, nil, err
	}

	hdrStart := cursor + pad
	hdrBytes := p.buffer[hdrStart : hdrStart+sz]
	var hdrPtr *H
	if sz > 0 {
		hdrPtr = (*H)(unsafe.Pointer(&hdrBytes[0]))
		*hdrPtr = header
	} else {
		hdrPtr = &zero
	}

	payloadStart := hdrStart + sz
	payload := p.buffer[payloadStart : payloadStart+len(data)]
	copy(payload, data)

	p.count++
	return hdrPtr, payload, nil
}

// GetAssoc decodes the header and data payload stored at index i by an
// earlier PushAssoc[H]. The caller must pass the same H used to store the
// entry; there is no runtime tag to verify this, exactly as in the
// original Rust API.
func GetAssoc[H any](p *U8Pool, i int) (*H, []byte, error) {
	if i < 0 || i >= p.count {
		return nil, nil, errIndexOutOfBounds(i, p.count)
	}
	start, length := p.descriptor(i)
	return decodeAssoc[H](p, start, length)
}

// PopAssoc removes and decodes the most recently pushed associated entry.
func PopAssoc[H any](p *U8Pool) (*H, []byte, error) {
	if p.count == 0 {
		return nil, nil, errEmptyVector
	}
	start, length := p.descriptor(p.count - 1)
	hdr, data, err := decodeAssoc[H](p, start, length)
	if err != nil {
		return nil, nil, err
	}
	p.count--
	return hdr, data, nil
}

// TopAssoc decodes the most recently pushed associated entry without
// removing it.
func TopAssoc[H any](p *U8Pool) (*H, []byte, error) {
	if p.count == 0 {
		return nil, nil, errEmptyVector
	}
	start, length := p.descriptor(p.count - 1)
	return decodeAssoc[H](p, start, length)
}

func decodeAssoc[H any](p *U8Pool, start, length int) (*H, []byte, error) {
	var zero H
	sz := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))
	base := uintptr(unsafe.Pointer(&p.buffer[0]))
	pad := alignPad(base, start, align)

	hdrStart := start + pad
	payloadStart := hdrStart + sz
	payloadEnd := start + length
	if payloadStart > payloadEnd || hdrStart+sz > len(p.buffer) {
		return nil, nil, errIndexOutOfBounds(start, len(p.buffer))
	}

	var hdrPtr *H
	if sz > 0 {
		hdrPtr = (*H)(unsafe.Pointer(&p.buffer[hdrStart]))
	} else {
		hdrPtr = &zero
	}
	return hdrPtr, p.buffer[payloadStart:payloadEnd], nil
}
