package scanjson

import (
	"io"

	"github.com/rjiter/streamjson/rjiter"
)

// CopyAtom writes peek's raw token text to w unmodified: a string's body
// is forwarded escape-for-escape via WriteLongBytes (so it also streams
// past the window, never buffering the whole value), numbers are copied
// as their raw digit text, and null/true/false as literals. It assumes
// peek was just produced by an rj.Peek() call that hasn't been followed
// by any other consumption.
func CopyAtom(rj *rjiter.RJiter, peek rjiter.Peek, w io.Writer) error {
	switch peek {
	case rjiter.PeekString:
		if _, err := io.WriteString(w, `"`); err != nil {
			return err
		}
		if err := rj.WriteLongBytes(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `"`)
		return err
	case rjiter.PeekNumber:
		raw, err := rj.NextNumberBytes()
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	case rjiter.PeekNull:
		if err := rj.KnownNull(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "null")
		return err
	case rjiter.PeekTrue, rjiter.PeekFalse:
		v, err := rj.KnownBool(peek)
		if err != nil {
			return err
		}
		if v {
			_, err = io.WriteString(w, "true")
		} else {
			_, err = io.WriteString(w, "false")
		}
		return err
	default:
		return errUnhandledPeek(rj.CurrentIndex())
	}
}

// IDTransform returns a FindAction that writes every primitive value's raw
// text verbatim to w and tells the walker the value is already consumed,
// leaving the walker itself to drive all structural punctuation (object
// and array traversal, key reads). It takes no baton state, since copying
// needs none; pass struct{} as Scan's type parameter when using it.
func IDTransform(w io.Writer) FindAction[struct{}] {
	return func(name Pseudoname, ctx *ContextIter, baton *struct{}) BeginFunc[struct{}] {
		if name != PseudonameAtom {
			return nil
		}
		return func(rj *rjiter.RJiter, baton *struct{}) (StreamOp, error) {
			peek, err := rj.Peek()
			if err != nil {
				return StreamOpNone, err
			}
			if err := CopyAtom(rj, peek, w); err != nil {
				return StreamOpNone, err
			}
			return StreamOpValueConsumed, nil
		}
	}
}

// TeeSource wraps r so every byte RJiter reads from it is also written to
// w, verbatim and in the order read. Driving a Scan over an RJiter built
// on a TeeSource reproduces the input byte-for-byte, independent of which
// callbacks fire — the reference round-trip harness used by regression
// tests, since it does not depend on reconstructing structural
// punctuation from individual callback events the way IDTransform's
// atom-only copying does.
func TeeSource(r io.Reader, w io.Writer) io.Reader {
	return io.TeeReader(r, w)
}
