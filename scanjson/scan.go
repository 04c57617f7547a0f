// Package scanjson implements a push-style walker over RJiter: it drives
// the tokenizer through a whole document (or a stream of concatenated
// documents), calling back into caller-supplied matchers at every
// structural event instead of building a parse tree. The context of
// open ancestor frames lives in a bounded U8Pool, so nesting depth is
// capped by the pool's capacity rather than the call stack or the heap.
package scanjson

import (
	"io"

	"github.com/rjiter/streamjson/rjiter"
	"github.com/rjiter/streamjson/u8pool"
)

// origin records why scanValue is being asked to classify the next value,
// which determines the payload pushed onto the context stack for it.
type origin int

const (
	originRoot origin = iota
	originArray
	originField
)

// kindPseudoname names a value's own kind, independent of how it was
// reached; this is always the second (or only) event fired for a value.
func kindPseudoname(peek rjiter.Peek) Pseudoname {
	switch peek {
	case rjiter.PeekObject:
		return PseudonameObject
	case rjiter.PeekArray:
		return PseudonameArray
	default:
		return PseudonameAtom
	}
}

// rootOrArrayPayload picks the synthetic context payload for a value that
// was not reached through an object field (those instead carry the field's
// own key, unconditionally, as decided in scanValue). The root gets "#top"
// regardless of kind, distinguishing a root object from one opened while
// already inside an array (which gets the kind-named tag instead).
func rootOrArrayPayload(peek rjiter.Peek, org origin) []byte {
	if org == originRoot {
		return topKey
	}
	switch peek {
	case rjiter.PeekObject:
		return objectKey
	case rjiter.PeekArray:
		return arrayKey
	default:
		return atomKey
	}
}

type walker[T any] struct {
	rj      *rjiter.RJiter
	baton   *T
	ctxPool *u8pool.U8Pool
	find    FindAction[T]
	findEnd FindEndAction[T]
	opts    Options
}

// Scan drives rj to the end of the input (or, with opts.StopEarly, through
// exactly one top-level value), dispatching every structural event to find
// and findEnd. ctxPool backs the ancestor context exposed to callbacks;
// its max-slices bound is the walker's hard nesting limit.
func Scan[T any](rj *rjiter.RJiter, baton *T, ctxPool *u8pool.U8Pool, find FindAction[T], findEnd FindEndAction[T], opts Options) error {
	w := &walker[T]{rj: rj, baton: baton, ctxPool: ctxPool, find: find, findEnd: findEnd, opts: opts}
	if err := w.run(); err != nil {
		return err
	}
	if ctxPool.Len() != 0 {
		return errInternal(rj.CurrentIndex(), "context stack not empty after scan completed")
	}
	return nil
}

func (w *walker[T]) run() error {
	for {
		if err := w.trySSE(); err != nil {
			return err
		}
		peek, err := w.rj.Peek()
		if err != nil {
			if isEOFValue(err) {
				return nil
			}
			return errRJiter(w.rj.CurrentIndex(), err)
		}
		if err := w.scanValue(peek, originRoot, nil); err != nil {
			return err
		}
		if w.opts.StopEarly {
			return nil
		}
	}
}

func isEOFValue(err error) bool {
	e, ok := err.(*rjiter.Error)
	return ok && e.Kind == rjiter.ErrEOFWhileParsingValue
}

func (w *walker[T]) trySSE() error {
	for _, tok := range w.opts.SSETokens {
		if _, err := w.rj.SkipToken([]byte(tok)); err != nil {
			return errRJiter(w.rj.CurrentIndex(), err)
		}
	}
	return nil
}

func (w *walker[T]) pushFrame(key []byte, frame StackFrame) (*StackFrame, error) {
	hdr, _, err := u8pool.PushAssoc(w.ctxPool, frame, key)
	if err != nil {
		return nil, errMaxNesting(w.rj.CurrentIndex(), w.ctxPool.Len())
	}
	return hdr, nil
}

func (w *walker[T]) popFrame() {
	u8pool.PopAssoc[StackFrame](w.ctxPool)
}

func (w *walker[T]) contextIter() *ContextIter {
	return &ContextIter{it: u8pool.IterAssocRev[StackFrame](w.ctxPool)}
}

// wrapStructuralErr reclassifies an rjiter error surfaced while waiting
// for the next key/element as UnbalancedJson when it is an EOF inside an
// open object/array, matching the walker-level taxonomy instead of
// leaking a raw tokenizer error for what is really "input ended with
// scopes still open."
func (w *walker[T]) wrapStructuralErr(err error) error {
	if e, ok := err.(*rjiter.Error); ok {
		if e.Kind == rjiter.ErrEOFWhileParsingObject || e.Kind == rjiter.ErrEOFWhileParsingArray {
			return errUnbalanced(e.Pos)
		}
	}
	return errRJiter(w.rj.CurrentIndex(), err)
}

// scanValue handles one value whose kind has already been classified by
// peek but not yet consumed. org/fieldKey determine its context payload.
//
// Object field values fire two events at the same context position: a
// PseudonameNone event carrying just the key (before the value's own kind
// is known), then — unless that event's callback already consumed the
// value — a second event named after the value's actual kind
// (Object/Array/Atom). Values reached any other way (array elements, the
// root) only ever fire the second, kind-named event. Both events share one
// pushed frame, popped once the value (and, for containers, its matching
// end event) is fully processed.
func (w *walker[T]) scanValue(peek rjiter.Peek, org origin, fieldKey []byte) error {
	isContainer := peek == rjiter.PeekObject || peek == rjiter.PeekArray

	payload := fieldKey
	if org != originField {
		payload = rootOrArrayPayload(peek, org)
	}
	hdr, err := w.pushFrame(payload, StackFrame{IsElemBegin: true})
	if err != nil {
		return err
	}

	if org == originField {
		consumed, err := w.dispatch(PseudonameNone)
		if err != nil {
			return err
		}
		if consumed {
			w.popFrame()
			return nil
		}
	}

	name := kindPseudoname(peek)
	hdr.IsInObject = peek == rjiter.PeekObject
	hdr.IsInArray = peek == rjiter.PeekArray

	consumed, err := w.dispatch(name)
	if err != nil {
		return err
	}
	if consumed {
		if isContainer {
			if err := w.dispatchEnd(name); err != nil {
				return err
			}
		}
		w.popFrame()
		return nil
	}

	if !isContainer {
		defer w.popFrame()
		switch peek {
		case rjiter.PeekNull:
			return w.rj.KnownNull()
		case rjiter.PeekTrue, rjiter.PeekFalse:
			_, err := w.rj.KnownBool(peek)
			return err
		case rjiter.PeekNumber:
			_, err := w.rj.NextNumberBytes0()
			return err
		case rjiter.PeekString:
			return w.rj.WriteLongBytes(io.Discard)
		default:
			return errUnhandledPeek(w.rj.CurrentIndex())
		}
	}

	switch peek {
	case rjiter.PeekObject:
		return w.scanObject(name, hdr)
	case rjiter.PeekArray:
		return w.scanArray(name, hdr)
	default:
		return errInternal(w.rj.CurrentIndex(), "unreachable container dispatch")
	}
}

// dispatch fires find for name against the pool's current top frame and,
// if it returns a handler, runs it. It reports whether the callback
// consumed the value itself.
func (w *walker[T]) dispatch(name Pseudoname) (bool, error) {
	if w.find == nil {
		return false, nil
	}
	begin := w.find(name, w.contextIter(), w.baton)
	if begin == nil {
		return false, nil
	}
	op, err := begin(w.rj, w.baton)
	if err != nil {
		return false, errAction(w.rj.CurrentIndex(), err)
	}
	return op == StreamOpValueConsumed, nil
}

func (w *walker[T]) dispatchEnd(name Pseudoname) error {
	if w.findEnd == nil {
		return nil
	}
	end := w.findEnd(name, w.contextIter(), w.baton)
	if end == nil {
		return nil
	}
	if err := end(w.baton); err != nil {
		return errAction(w.rj.CurrentIndex(), err)
	}
	return nil
}

func (w *walker[T]) scanObject(name Pseudoname, hdr *StackFrame) error {
	key, ok, err := w.rj.NextObject()
	if err != nil {
		return w.wrapStructuralErr(err)
	}
	for ok {
		hdr.IsElemBegin = false
		vpeek, err := w.rj.Peek()
		if err != nil {
			return w.wrapStructuralErr(err)
		}
		if err := w.scanValue(vpeek, originField, []byte(key)); err != nil {
			return err
		}
		key, ok, err = w.rj.NextKey()
		if err != nil {
			return w.wrapStructuralErr(err)
		}
	}
	if err := w.dispatchEnd(name); err != nil {
		return err
	}
	w.popFrame()
	return nil
}

func (w *walker[T]) scanArray(name Pseudoname, hdr *StackFrame) error {
	// Only a top-level array's very first step is a candidate for the
	// [DONE]-style sentinel check; see DESIGN.md for why this reading of
	// "before each element of a top-level array of length 1" was chosen.
	isTopLevel := w.ctxPool.Len() == 1
	var peek rjiter.Peek
	var ok bool
	var err error
	if isTopLevel && hdr.IsElemBegin && len(w.opts.SSETokens) > 0 {
		if _, err = w.rj.SkipToken([]byte("[")); err != nil {
			return w.wrapStructuralErr(err)
		}
		if err = w.trySSE(); err != nil {
			return err
		}
		peek, ok, err = w.rj.ArrayStep()
	} else {
		peek, ok, err = w.rj.NextArray()
	}
	hdr.IsElemBegin = false
	if err != nil {
		return w.wrapStructuralErr(err)
	}
	for ok {
		if err := w.scanValue(peek, originArray, nil); err != nil {
			return err
		}
		peek, ok, err = w.rj.ArrayStep()
		if err != nil {
			return w.wrapStructuralErr(err)
		}
	}
	if err := w.dispatchEnd(name); err != nil {
		return err
	}
	w.popFrame()
	return nil
}
