package rjiter

// Peek classifies the next JSON token without consuming it. This stands in
// for the Rust `jiter` crate's Peek type, which has no Go equivalent in
// the retrieved dependency pack, so the low-level tokenizer lives directly
// in this package instead of being imported.
type Peek int

const (
	PeekNull Peek = iota
	PeekTrue
	PeekFalse
	PeekString
	PeekArray
	PeekObject
	PeekNumber
)

func (p Peek) String() string {
	switch p {
	case PeekNull:
		return "null"
	case PeekTrue:
		return "true"
	case PeekFalse:
		return "false"
	case PeekString:
		return "string"
	case PeekArray:
		return "array"
	case PeekObject:
		return "object"
	case PeekNumber:
		return "number"
	default:
		return "unknown"
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// skipWhitespace advances pos past any run of JSON whitespace, stopping at
// nValid if the window ends mid-run.
func skipWhitespace(buf []byte, pos, nValid int) int {
	for pos < nValid && isWhitespace(buf[pos]) {
		pos++
	}
	return pos
}

// classify looks at buf[pos] (assumed non-whitespace) and returns its Peek
// kind, or an error if it isn't the start of any valid JSON token.
func classify(buf []byte, pos int) (Peek, error) {
	switch c := buf[pos]; {
	case c == '"':
		return PeekString, nil
	case c == '{':
		return PeekObject, nil
	case c == '[':
		return PeekArray, nil
	case c == 'n':
		return PeekNull, nil
	case c == 't':
		return PeekTrue, nil
	case c == 'f':
		return PeekFalse, nil
	case c == '-' || isDigit(c):
		return PeekNumber, nil
	default:
		return 0, &Error{Kind: ErrExpectedSomeValue, Pos: pos}
	}
}

// scanLiteral checks that buf[pos:] begins with lit; returns the new
// position past it, or an error if the window doesn't yet hold enough
// bytes to decide (retryable) or the bytes don't match (not retryable).
func scanLiteral(buf []byte, pos, nValid int, lit string) (int, error) {
	end := pos + len(lit)
	if end > nValid {
		return pos, &Error{Kind: ErrEOFWhileParsingValue, Pos: pos}
	}
	if string(buf[pos:end]) != lit {
		return pos, &Error{Kind: ErrExpectedSomeValue, Pos: pos}
	}
	return end, nil
}

// scanNumber consumes a JSON number starting at pos, returning the
// position just past it. When final is false, running out of window in a
// spot where more digits could legally follow yields a retryable
// ErrEOFWhileParsingNumber so the caller can grow the window and retry.
// When final is true (the reader has genuinely reached EOF), the same
// spots are treated as the number simply ending there instead, since a
// JSON number may legally terminate at end of input. Numbers have no
// streaming API beyond this retry — unlike strings, they must fit in one
// window once the stream is exhausted, matching the original's Non-goal
// on number normalization.
func scanNumber(buf []byte, pos, nValid int, final bool) (int, error) {
	start := pos
	i := pos
	if i < nValid && buf[i] == '-' {
		i++
	}
	if i >= nValid {
		if final {
			return start, &Error{Kind: ErrExpectedSomeValue, Pos: start}
		}
		return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
	}
	if !isDigit(buf[i]) {
		return start, &Error{Kind: ErrExpectedSomeValue, Pos: start}
	}
	if buf[i] == '0' {
		i++
	} else {
		for i < nValid && isDigit(buf[i]) {
			i++
		}
	}
	if i >= nValid {
		if final {
			return i, nil
		}
		return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
	}
	if buf[i] == '.' {
		afterDot := i + 1
		digits := 0
		j := afterDot
		for j < nValid && isDigit(buf[j]) {
			j++
			digits++
		}
		if j >= nValid && !final {
			return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
		}
		if digits == 0 {
			if final || afterDot < nValid {
				return start, &Error{Kind: ErrExpectedSomeValue, Pos: start}
			}
			return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
		}
		i = j
	}
	if i < nValid && (buf[i] == 'e' || buf[i] == 'E') {
		expStart := i
		j := i + 1
		if j < nValid && (buf[j] == '+' || buf[j] == '-') {
			j++
		}
		if j >= nValid {
			if final {
				return expStart, nil
			}
			return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
		}
		digits := 0
		for j < nValid && isDigit(buf[j]) {
			j++
			digits++
		}
		if digits == 0 {
			if final {
				return expStart, nil
			}
			return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
		}
		if j >= nValid && !final {
			return start, &Error{Kind: ErrEOFWhileParsingNumber, Pos: start}
		}
		i = j
	}
	return i, nil
}
