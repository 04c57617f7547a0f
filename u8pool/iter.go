package u8pool

// Iter walks stored slices oldest-first.
type Iter struct {
	p   *U8Pool
	idx int
}

func (p *U8Pool) Iter() *Iter { return &Iter{p: p} }

// Next returns the next slice, or (nil, false) once exhausted.
func (it *Iter) Next() ([]byte, bool) {
	if it.idx >= it.p.count {
		return nil, false
	}
	s, _ := it.p.Get(it.idx)
	it.idx++
	return s, true
}

// Len reports the number of elements remaining (ExactSizeIterator analog).
func (it *Iter) Len() int { return it.p.count - it.idx }

// RevIter walks stored slices newest-first.
type RevIter struct {
	p   *U8Pool
	idx int // next index to yield, counting down from count-1
}

func (p *U8Pool) IterRev() *RevIter { return &RevIter{p: p, idx: p.count - 1} }

func (it *RevIter) Next() ([]byte, bool) {
	if it.idx < 0 {
		return nil, false
	}
	s, _ := it.p.Get(it.idx)
	it.idx--
	return s, true
}

func (it *RevIter) Len() int { return it.idx + 1 }

// AssocIter walks associated (header, data) pairs oldest-first.
type AssocIter[H any] struct {
	p   *U8Pool
	idx int
}

func IterAssoc[H any](p *U8Pool) *AssocIter[H] { return &AssocIter[H]{p: p} }

func (it *AssocIter[H]) Next() (*H, []byte, bool) {
	if it.idx >= it.p.count {
		return nil, nil, false
	}
	hdr, data, _ := GetAssoc[H](it.p, it.idx)
	it.idx++
	return hdr, data, true
}

func (it *AssocIter[H]) Len() int { return it.p.count - it.idx }

// AssocRevIter walks associated (header, data) pairs newest-first. This is
// the iterator scanjson's ContextIter is built on, mirroring the Rust
// U8PoolAssocRevIter used by stack.rs's ContextIter.
type AssocRevIter[H any] struct {
	p   *U8Pool
	idx int
}

func IterAssocRev[H any](p *U8Pool) *AssocRevIter[H] {
	return &AssocRevIter[H]{p: p, idx: p.count - 1}
}

func (it *AssocRevIter[H]) Next() (*H, []byte, bool) {
	if it.idx < 0 {
		return nil, nil, false
	}
	hdr, data, _ := GetAssoc[H](it.p, it.idx)
	it.idx--
	return hdr, data, true
}

func (it *AssocRevIter[H]) Len() int { return it.idx + 1 }

// Clone returns an independent copy of the iterator's current position,
// used by scanjson's ContextIter.Clone to let a matcher inspect ancestors
// without disturbing the walker's own cursor.
func (it *AssocRevIter[H]) Clone() *AssocRevIter[H] {
	cp := *it
	return &cp
}

// Pair is one key/value entry as produced by PairIter. HasValue is false
// only for a trailing odd key with no matching value yet pushed, in which
// case Value is nil.
type Pair struct {
	Key      []byte
	Value    []byte
	HasValue bool
}

// PairIter walks the pool two slices at a time, treating even indices as
// keys and odd indices as values. It is the Go analogue of the Rust
// BufVecPairIter used by the dictionary-style helpers (AddKey/AddValue): a
// trailing unpaired key is still yielded, with HasValue false, rather than
// being dropped.
type PairIter struct {
	p   *U8Pool
	idx int // counts pairs, not slices: key index is idx*2
}

func (p *U8Pool) Pairs() *PairIter { return &PairIter{p: p} }

func (it *PairIter) Next() (Pair, bool) {
	keyIdx := it.idx * 2
	if keyIdx >= it.p.count {
		return Pair{}, false
	}
	key, _ := it.p.Get(keyIdx)
	pair := Pair{Key: key}
	if keyIdx+1 < it.p.count {
		value, _ := it.p.Get(keyIdx + 1)
		pair.Value = value
		pair.HasValue = true
	}
	it.idx++
	return pair, true
}

// Len reports the number of pairs remaining, counting a trailing unpaired
// key as one more pair.
func (it *PairIter) Len() int {
	remaining := it.p.count - it.idx*2
	if remaining <= 0 {
		return 0
	}
	return (remaining + 1) / 2
}
