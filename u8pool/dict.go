package u8pool

// hasUnpairedKey reports whether the pool's last entry is a key with no
// matching value yet (an odd count means the trailing entry is unpaired).
func (p *U8Pool) hasUnpairedKey() bool { return p.count%2 == 1 }

// AddKey pushes key as a new entry, always followed eventually by a
// matching AddValue, so that Pairs() can walk the pool two slices at a
// time. If the pool already ends in an unpaired key (the previous AddKey
// was never followed by an AddValue), that trailing key is replaced
// rather than leaving two keys in a row.
func (p *U8Pool) AddKey(key []byte) ([]byte, error) {
	if p.IsEmpty() || !p.hasUnpairedKey() {
		return p.Push(key)
	}
	return p.replaceLast(key)
}

// AddValue pushes value as a new entry, pairing with the most recently
// added key. If the pool is non-empty and already ends in a complete
// pair (no unpaired key pending), the previous value is replaced rather
// than appending a second value for the same key.
func (p *U8Pool) AddValue(value []byte) ([]byte, error) {
	if p.IsEmpty() || p.hasUnpairedKey() {
		return p.Push(value)
	}
	return p.replaceLast(value)
}

// replaceLast drops the most recently pushed entry and pushes data in its
// place. Unlike ReplaceLast, the new data need not fit in the old entry's
// reserved space: the slot is freed first, so data can be longer or
// shorter than what it replaces.
func (p *U8Pool) replaceLast(data []byte) ([]byte, error) {
	if _, err := p.Pop(); err != nil {
		return nil, err
	}
	return p.Push(data)
}
