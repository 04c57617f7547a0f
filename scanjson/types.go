package scanjson

import (
	"github.com/rjiter/streamjson/rjiter"
	"github.com/rjiter/streamjson/u8pool"
)

// Pseudoname tags a structural event so a FindAction/FindEndAction can
// decide whether it applies, without the walker needing to know anything
// about the caller's matching scheme.
type Pseudoname int

const (
	// PseudonameNone marks a real object key; the context payload at the
	// top of the iterator is the key's own bytes.
	PseudonameNone Pseudoname = iota
	// PseudonameObject marks an object-begin event. The payload at the
	// top of the context iterator is the field's key when the object is
	// an object field's value, otherwise "#object", or "#top" at the root.
	PseudonameObject
	// PseudonameArray marks an array-begin event; the payload is chosen
	// the same way, with "#array" in place of "#object".
	PseudonameArray
	// PseudonameAtom marks a primitive value's own kind event. For array
	// elements and the root value this is the only event fired; for an
	// object field's value it is the second event, fired after a
	// PseudonameNone event already carried the key (see DESIGN.md for the
	// dual-firing resolution of the source's None/Atom ambiguity).
	PseudonameAtom
)

func (p Pseudoname) String() string {
	switch p {
	case PseudonameNone:
		return "None"
	case PseudonameObject:
		return "Object"
	case PseudonameArray:
		return "Array"
	case PseudonameAtom:
		return "Atom"
	default:
		return "Unknown"
	}
}

// topKey, objectKey, arrayKey and atomKey are the synthetic payload bytes used for events that
// have no real object key backing them.
var (
	topKey    = []byte("#top")
	objectKey = []byte("#object")
	arrayKey  = []byte("#array")
	atomKey   = []byte("#atom")
)

// StreamOp is returned by a BeginFunc to tell the walker whether it must
// still consume the current value itself.
type StreamOp int

const (
	// StreamOpNone tells the walker to consume the value per its normal
	// rules (the callback only observed, it did not read anything).
	StreamOpNone StreamOp = iota
	// StreamOpValueConsumed tells the walker the callback already read
	// the value through the tokenizer; the walker moves on without
	// consuming anything itself.
	StreamOpValueConsumed
)

// StackFrame is the header stored in the context pool for every open
// object/array frame: its kind flags, alongside the frame's key bytes as
// the associated payload.
type StackFrame struct {
	IsInObject  bool
	IsInArray   bool
	IsElemBegin bool
}

// ContextIter walks a scan's open ancestor frames from innermost to
// outermost, exposing each frame's key bytes. It never mutates walker
// state; callbacks only observe through it.
type ContextIter struct {
	it *u8pool.AssocRevIter[StackFrame]
}

// Next returns the next ancestor's key bytes and frame header, or
// (nil, nil, false) once every open frame has been visited.
func (c *ContextIter) Next() ([]byte, *StackFrame, bool) {
	if c == nil || c.it == nil {
		return nil, nil, false
	}
	hdr, data, ok := c.it.Next()
	if !ok {
		return nil, nil, false
	}
	return data, hdr, true
}

// Len reports how many ancestor frames remain unvisited.
func (c *ContextIter) Len() int {
	if c == nil || c.it == nil {
		return 0
	}
	return c.it.Len()
}

// Clone returns an independent copy positioned exactly where c is, so a
// matcher can look ahead without disturbing the walker's own iteration.
func (c *ContextIter) Clone() *ContextIter {
	if c == nil || c.it == nil {
		return &ContextIter{}
	}
	return &ContextIter{it: c.it.Clone()}
}

// BeginFunc is invoked when the walker reaches a structural event the
// caller's FindAction chose to handle. Returning StreamOpValueConsumed
// tells the walker the callback already read the value.
type BeginFunc[T any] func(rj *rjiter.RJiter, baton *T) (StreamOp, error)

// EndFunc is invoked when a scope the caller's FindEndAction chose to
// handle is about to close.
type EndFunc[T any] func(baton *T) error

// FindAction is consulted at every structural event. Returning nil means
// "no handler, consume with default rules."
type FindAction[T any] func(name Pseudoname, ctx *ContextIter, baton *T) BeginFunc[T]

// FindEndAction is consulted when an object or array closes. It is not
// consulted for keys or atoms: no end event fires for them. Returning nil
// means "no handler."
type FindEndAction[T any] func(name Pseudoname, ctx *ContextIter, baton *T) EndFunc[T]

// Options configures a single Scan invocation.
type Options struct {
	// SSETokens is tried, in order, before each top-level token and
	// before the first element of a top-level array — this
	// lets a caller filter "data:" framing or a "[DONE]" terminator out
	// of a concatenated stream of records.
	SSETokens []string
	// StopEarly, when set, makes Scan return as soon as one complete
	// top-level value has been consumed, leaving the tokenizer
	// positioned at the next byte so a later call can resume.
	StopEarly bool
}
