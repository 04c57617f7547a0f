// Package u8pool implements a bounded pool of byte slices carved out of a
// single caller-supplied buffer. No allocation happens after construction:
// descriptors (fixed-size start/length records) fill a block of
// 4*maxSlices bytes at the front of the buffer, and slice data grows from
// the end of that block toward the end of the buffer.
//
// This mirrors a vector-of-slices, but with storage owned entirely by the
// caller rather than the Go heap, so it is safe to use from code paths that
// must not allocate on the hot path (the scanjson context stack is the
// primary consumer).
package u8pool

import "encoding/binary"

const descriptorSize = 4

// DefaultMaxSlices is used by WithDefaultMaxSlices.
const DefaultMaxSlices = 32

// U8Pool is a LIFO/array hybrid: slices can be pushed, popped, and
// random-accessed by index, all within one fixed-size buffer.
type U8Pool struct {
	buffer    []byte
	count     int
	maxSlices int
}

// New creates a pool backed by buffer, with room for at most maxSlices
// descriptors. buffer must be at least 4*maxSlices+1 bytes (room for the
// descriptor block plus at least one byte of data).
func New(buffer []byte, maxSlices int) (*U8Pool, error) {
	if len(buffer) == 0 {
		return nil, &Error{Kind: ErrZeroSizeBuffer}
	}
	if maxSlices <= 0 {
		return nil, errInvalidConfiguration("maxSlices must be positive")
	}
	needed := maxSlices*descriptorSize + 1
	if len(buffer) < needed {
		return nil, errBufferTooSmall("buffer must hold at least 4*maxSlices+1 bytes")
	}
	return &U8Pool{buffer: buffer, maxSlices: maxSlices}, nil
}

// WithDefaultMaxSlices is New with maxSlices set to DefaultMaxSlices.
func WithDefaultMaxSlices(buffer []byte) (*U8Pool, error) {
	return New(buffer, DefaultMaxSlices)
}

// Len returns the number of slices currently stored.
func (p *U8Pool) Len() int { return p.count }

// IsEmpty reports whether the pool currently holds no slices.
func (p *U8Pool) IsEmpty() bool { return p.count == 0 }

// MaxSlices returns the configured descriptor capacity.
func (p *U8Pool) MaxSlices() int { return p.maxSlices }

// Clear drops all stored slices without touching the buffer contents; the
// next Push reuses the buffer from the start of the data region.
func (p *U8Pool) Clear() { p.count = 0 }

func (p *U8Pool) dataStart() int { return p.maxSlices * descriptorSize }

// dataEnd returns the absolute offset one past the last byte currently in
// use by stored data (the next Push/PushAssoc would start writing here,
// possibly with alignment padding inserted first for PushAssoc).
func (p *U8Pool) dataEnd() int {
	if p.count == 0 {
		return p.dataStart()
	}
	start, length := p.descriptor(p.count - 1)
	return start + length
}

func (p *U8Pool) descriptor(i int) (start, length int) {
	off := i * descriptorSize
	start = int(binary.LittleEndian.Uint16(p.buffer[off : off+2]))
	length = int(binary.LittleEndian.Uint16(p.buffer[off+2 : off+4]))
	return
}

func (p *U8Pool) setDescriptor(i, start, length int) error {
	if start > 0xFFFF {
		return errValueTooLarge(start, 0xFFFF)
	}
	if length > 0xFFFF {
		return errValueTooLarge(length, 0xFFFF)
	}
	off := i * descriptorSize
	binary.LittleEndian.PutUint16(p.buffer[off:off+2], uint16(start))
	binary.LittleEndian.PutUint16(p.buffer[off+2:off+4], uint16(length))
	return nil
}

// reserve checks that an additional `total` bytes of data and one more
// descriptor slot are both available, without committing anything.
func (p *U8Pool) reserve(total int) error {
	if p.count >= p.maxSlices {
		return errSliceLimitExceeded(p.maxSlices)
	}
	available := len(p.buffer) - p.dataEnd()
	if total > available {
		return errBufferOverflow(total, available)
	}
	return nil
}

// Push (alias Add) copies data into the pool's data region and returns the
// stored slice (an alias into the pool's buffer, valid until the pool is
// reused or cleared).
func (p *U8Pool) Push(data []byte) ([]byte, error) {
	if err := p.reserve(len(data)); err != nil {
		return nil, err
	}
	start := p.dataEnd()
	end := start + len(data)
	if err := p.setDescriptor(p.count, start, len(data)); err != nil {
		return nil, err
	}
	copy(p.buffer[start:end], data)
	p.count++
	return p.buffer[start:end], nil
}

// Add is an alias for Push, matching the add_value naming used by the
// original key/value dictionary helpers.
func (p *U8Pool) Add(data []byte) ([]byte, error) { return p.Push(data) }

// Pop removes and returns the last-pushed slice.
func (p *U8Pool) Pop() ([]byte, error) {
	if p.count == 0 {
		return nil, errEmptyVector
	}
	start, length := p.descriptor(p.count - 1)
	p.count--
	return p.buffer[start : start+length], nil
}

// Top returns the last-pushed slice without removing it.
func (p *U8Pool) Top() ([]byte, error) {
	if p.count == 0 {
		return nil, errEmptyVector
	}
	start, length := p.descriptor(p.count - 1)
	return p.buffer[start : start+length], nil
}

// TryTop is Top but returns (nil, false) instead of an error on an empty
// pool, for callers that treat emptiness as a normal outcome.
func (p *U8Pool) TryTop() ([]byte, bool) {
	if p.count == 0 {
		return nil, false
	}
	s, _ := p.Top()
	return s, true
}

// Get returns the slice stored at index i (0 is the oldest).
func (p *U8Pool) Get(i int) ([]byte, error) {
	if i < 0 || i >= p.count {
		return nil, errIndexOutOfBounds(i, p.count)
	}
	start, length := p.descriptor(i)
	return p.buffer[start : start+length], nil
}

// TryGet is Get but returns (nil, false) instead of an error.
func (p *U8Pool) TryGet(i int) ([]byte, bool) {
	s, err := p.Get(i)
	if err != nil {
		return nil, false
	}
	return s, true
}

// ReplaceLast overwrites the most recently pushed slice in place. The new
// data must fit in the space already reserved for it (same length or
// shorter); this is used by callers that build up a key incrementally.
func (p *U8Pool) ReplaceLast(data []byte) error {
	if p.count == 0 {
		return errEmptyVector
	}
	start, length := p.descriptor(p.count - 1)
	if len(data) > length {
		return errBufferOverflow(len(data), length)
	}
	if err := p.setDescriptor(p.count-1, start, len(data)); err != nil {
		return err
	}
	copy(p.buffer[start:start+len(data)], data)
	return nil
}
