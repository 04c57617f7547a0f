package ddbjson

// ItemWrapperMode tells ConvertDDBToNormal whether each record in the
// input stream is wrapped in a DynamoDB-style {"Item": {...}} envelope
// or is itself the bare attribute map, so the converter never has to
// guess from the shape of the data.
type ItemWrapperMode int

const (
	// ItemWrapped expects every record to be a single-key object whose
	// key is the wrapper ("Item"/"Items"-style) and whose value is the
	// attribute map to convert.
	ItemWrapped ItemWrapperMode = iota
	// ItemBare expects every record to already be the attribute map
	// itself, with no wrapper key to strip.
	ItemBare
)

func (m ItemWrapperMode) String() string {
	switch m {
	case ItemWrapped:
		return "ItemWrapped"
	case ItemBare:
		return "ItemBare"
	default:
		return "Unknown"
	}
}

// parseMode tracks what the DDB-to-normal converter is currently
// expecting, since the same structural event (an object or array
// opening) means something different depending on where it sits: a type
// descriptor, a nested map, a set, a list. Mirrors the source's
// ParseMode enum and its explicit mode_stack (rather than scanjson's own
// context stack) because one open object frame can mean two things in
// sequence — the field's own braces, then the type descriptor inside it.
type parseMode int

const (
	modeRoot parseMode = iota
	modeFieldNames
	modeTypeDescriptor
	modeInS
	modeInN
	modeInBool
	modeInNull
	modeExpectSSArray
	modeExpectNSArray
	modeExpectLArray
	modeExpectMObject
	modeInSS
	modeInNS
	modeInL
	modeInM
)

func (m parseMode) String() string {
	switch m {
	case modeRoot:
		return "Root"
	case modeFieldNames:
		return "FieldNames"
	case modeTypeDescriptor:
		return "TypeDescriptor"
	case modeInS:
		return "InS"
	case modeInN:
		return "InN"
	case modeInBool:
		return "InBool"
	case modeInNull:
		return "InNull"
	case modeExpectSSArray:
		return "ExpectSSArray"
	case modeExpectNSArray:
		return "ExpectNSArray"
	case modeExpectLArray:
		return "ExpectLArray"
	case modeExpectMObject:
		return "ExpectMObject"
	case modeInSS:
		return "InSS"
	case modeInNS:
		return "InNS"
	case modeInL:
		return "InL"
	case modeInM:
		return "InM"
	default:
		return "Unknown"
	}
}

// modeStack is a plain LIFO of parseMode, grounded on the source's
// Vec<ParseMode>-backed mode_stack.
type modeStack struct {
	modes []parseMode
}

func newModeStack(initial parseMode) *modeStack {
	return &modeStack{modes: []parseMode{initial}}
}

func (s *modeStack) current() parseMode {
	if len(s.modes) == 0 {
		return modeRoot
	}
	return s.modes[len(s.modes)-1]
}

func (s *modeStack) push(m parseMode) {
	s.modes = append(s.modes, m)
}

func (s *modeStack) pop() {
	if len(s.modes) == 0 {
		return
	}
	s.modes = s.modes[:len(s.modes)-1]
}

// parent reports the mode one level below the current one, and whether
// one exists.
func (s *modeStack) parent() (parseMode, bool) {
	if len(s.modes) < 2 {
		return 0, false
	}
	return s.modes[len(s.modes)-2], true
}
