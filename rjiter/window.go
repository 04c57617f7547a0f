package rjiter

import "io"

// window is the refillable, compactable byte buffer RJiter scans over. It
// owns no memory of its own: buf is supplied by the caller at
// construction time, exactly as the teacher's internalParsedJson reuses a
// caller- or pool-owned backing array instead of allocating per parse.
type window struct {
	buf    []byte
	nValid int
	reader io.Reader
}

func newWindow(r io.Reader, buf []byte) (*window, error) {
	w := &window{buf: buf, reader: r}
	n, err := fillFrom(r, buf, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	w.nValid = n
	return w, nil
}

// fillFrom reads as many bytes as are immediately available into
// buf[offset:], returning the new total valid length (offset + bytes
// read). io.EOF is returned alongside a valid count, never swallowed,
// so callers can distinguish "nothing more to read" from a real error.
func fillFrom(r io.Reader, buf []byte, offset int) (int, error) {
	n, err := r.Read(buf[offset:])
	return offset + n, err
}

// compact discards everything before fromPos, moving any remaining bytes
// to the start of buf. Returns the number of bytes retained.
func (w *window) compact(fromPos int) int {
	if fromPos <= 0 {
		return w.nValid
	}
	if fromPos >= w.nValid {
		w.nValid = 0
		return 0
	}
	n := copy(w.buf, w.buf[fromPos:w.nValid])
	w.nValid = n
	return n
}

// refill compacts the window from fromPos and reads more data from the
// reader. When partialString is set, byte 0 is reserved for a synthetic
// opening quote (so the resumed scan re-enters "inside a string" state at
// the very start of the window): the bytes kept by compaction (at most the
// tail of an escape sequence that scanStringSegment stopped before) are
// moved up to start at offset 1, and new bytes are read right after them.
//
// Returns whether any new bytes were read, and the underlying reader
// error (io.EOF is reported, not swallowed, so the caller can tell a
// genuinely exhausted stream from a transient empty read).
func (w *window) refill(fromPos int, partialString bool) (bool, error) {
	w.compact(fromPos)

	start := w.nValid
	if partialString {
		start = w.nValid + 1
	}
	if start >= len(w.buf) {
		return false, errBufferFull()
	}
	if partialString {
		copy(w.buf[1:], w.buf[:w.nValid])
	}

	n, err := w.reader.Read(w.buf[start:])

	if partialString {
		w.buf[0] = '"'
		w.nValid = start + n
	} else {
		w.nValid = start + n
	}

	if err != nil && err != io.EOF {
		return n > 0, err
	}
	if err == io.EOF {
		return n > 0, io.EOF
	}
	return n > 0, nil
}
