package ddbjson

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/rjiter/streamjson/rjiter"
	"github.com/rjiter/streamjson/scanjson"
	"github.com/rjiter/streamjson/u8pool"
)

// ddbBaton carries the conversion state threaded through a DDB-to-normal
// scan: the output formatter, the parse-mode stack that disambiguates what
// a given object/array/key means at each point, the caller-asserted item
// wrapper mode, and skipNextObject, which flags that the next object open
// is the wrapper's value rather than a type descriptor.
type ddbBaton struct {
	out            *outWriter
	modes          *modeStack
	itemMode       ItemWrapperMode
	skipNextObject bool
}

func writeJSONKey(o *outWriter, key []byte) error {
	encoded, err := json.Marshal(string(key))
	if err != nil {
		return err
	}
	if err := o.write(encoded); err != nil {
		return err
	}
	return o.writeStr(":")
}

func isTopFrame(ctx *scanjson.ContextIter) bool {
	c := ctx.Clone()
	key, _, ok := c.Next()
	return ok && string(key) == "#top"
}

func onRootObjectBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	return scanjson.StreamOpNone, nil
}

func onItemKey(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	baton.skipNextObject = true
	return scanjson.StreamOpNone, nil
}

func onItemValueObjectBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.writeStr("{"); err != nil {
		return 0, err
	}
	if err := o.newline(); err != nil {
		return 0, err
	}
	o.depth = 1
	o.pendingComma = false
	baton.modes.push(modeFieldNames)
	return scanjson.StreamOpNone, nil
}

func onItemEnd(baton *ddbBaton) error {
	o := baton.out
	if err := o.newline(); err != nil {
		return err
	}
	if err := o.writeStr("}"); err != nil {
		return err
	}
	if err := o.writeStr("\n"); err != nil {
		return err
	}
	o.depth = 0
	baton.modes.pop()
	return nil
}

func onFieldKey(baton *ddbBaton, key []byte) (scanjson.StreamOp, error) {
	o := baton.out
	if baton.modes.current() == modeRoot {
		if err := o.writeStr("{"); err != nil {
			return 0, err
		}
		if err := o.newline(); err != nil {
			return 0, err
		}
		o.depth = 1
		baton.modes.pop()
		baton.modes.push(modeFieldNames)
	}
	if err := o.writeComma(); err != nil {
		return 0, err
	}
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := writeJSONKey(o, key); err != nil {
		return 0, err
	}
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onTypeDescriptorBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	if baton.modes.current() == modeInL {
		if err := baton.out.writeComma(); err != nil {
			return 0, err
		}
	}
	baton.modes.push(modeTypeDescriptor)
	return scanjson.StreamOpNone, nil
}

func onTypeKey(baton *ddbBaton, key []byte) (scanjson.StreamOp, error) {
	switch string(key) {
	case "S", "B":
		baton.modes.push(modeInS)
	case "N":
		baton.modes.push(modeInN)
	case "BOOL":
		baton.modes.push(modeInBool)
	case "NULL":
		baton.modes.push(modeInNull)
	case "SS", "BS":
		baton.modes.push(modeExpectSSArray)
	case "NS":
		baton.modes.push(modeExpectNSArray)
	case "L":
		baton.modes.push(modeExpectLArray)
	case "M":
		baton.modes.push(modeExpectMObject)
	default:
		return 0, errParse(0, "unknown type descriptor", string(key))
	}
	return scanjson.StreamOpNone, nil
}

func onStringValue(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekString {
		return 0, errParse(pos, "expected string value for S/B type", "")
	}
	o := baton.out
	if err := o.writeStr("\""); err != nil {
		return 0, err
	}
	if err := rj.WriteLongBytes(o.w); err != nil {
		return 0, errScan(pos, err)
	}
	if err := o.writeStr("\""); err != nil {
		return 0, err
	}
	o.pendingComma = true
	baton.modes.pop()
	return scanjson.StreamOpValueConsumed, nil
}

func onNumberValue(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekString {
		return 0, errParse(pos, "expected string value for N type", "")
	}
	o := baton.out
	if err := rj.WriteLongBytes(o.w); err != nil {
		return 0, errScan(pos, err)
	}
	o.pendingComma = true
	baton.modes.pop()
	return scanjson.StreamOpValueConsumed, nil
}

func onBoolValue(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekTrue && peek != rjiter.PeekFalse {
		return 0, errParse(pos, "expected boolean value for BOOL type", "")
	}
	val, err := rj.KnownBool(peek)
	if err != nil {
		return 0, errScan(pos, err)
	}
	o := baton.out
	lit := "false"
	if val {
		lit = "true"
	}
	if err := o.writeStr(lit); err != nil {
		return 0, err
	}
	o.pendingComma = true
	baton.modes.pop()
	return scanjson.StreamOpValueConsumed, nil
}

func onNullValue(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekTrue {
		return 0, errParse(pos, "expected true for NULL type", "")
	}
	if _, err := rj.KnownBool(peek); err != nil {
		return 0, errScan(pos, err)
	}
	o := baton.out
	if err := o.writeStr("null"); err != nil {
		return 0, err
	}
	o.pendingComma = true
	baton.modes.pop()
	return scanjson.StreamOpValueConsumed, nil
}

func onStringSetBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	baton.modes.pop()
	baton.modes.push(modeInSS)
	o := baton.out
	if err := o.writeStr("["); err != nil {
		return 0, err
	}
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onNumberSetBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	baton.modes.pop()
	baton.modes.push(modeInNS)
	o := baton.out
	if err := o.writeStr("["); err != nil {
		return 0, err
	}
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onListBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	baton.modes.pop()
	baton.modes.push(modeInL)
	o := baton.out
	if err := o.writeStr("["); err != nil {
		return 0, err
	}
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onMapBegin(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	baton.modes.pop()
	baton.modes.push(modeInM)
	o := baton.out
	if err := o.writeStr("{"); err != nil {
		return 0, err
	}
	if err := o.newline(); err != nil {
		return 0, err
	}
	o.depth++
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onSetStringElement(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekString {
		return 0, errParse(pos, "expected string in SS/BS set", "")
	}
	o := baton.out
	if err := o.writeComma(); err != nil {
		return 0, err
	}
	if err := o.writeStr("\""); err != nil {
		return 0, err
	}
	if err := rj.WriteLongBytes(o.w); err != nil {
		return 0, errScan(pos, err)
	}
	if err := o.writeStr("\""); err != nil {
		return 0, err
	}
	o.pendingComma = true
	return scanjson.StreamOpValueConsumed, nil
}

func onSetNumberElement(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekString {
		return 0, errParse(pos, "expected string (number) in NS set", "")
	}
	o := baton.out
	if err := o.writeComma(); err != nil {
		return 0, err
	}
	if err := rj.WriteLongBytes(o.w); err != nil {
		return 0, errScan(pos, err)
	}
	o.pendingComma = true
	return scanjson.StreamOpValueConsumed, nil
}

func typeNameForArrayExpectation(mode parseMode) string {
	switch mode {
	case modeExpectSSArray:
		return "SS/BS"
	case modeExpectNSArray:
		return "NS"
	case modeExpectLArray:
		return "L"
	default:
		return "unknown"
	}
}

func typeNameForAtomExpectation(mode parseMode) string {
	switch mode {
	case modeInS:
		return "S"
	case modeInN:
		return "N"
	case modeInBool:
		return "BOOL"
	case modeInNull:
		return "NULL"
	default:
		return "unknown"
	}
}

func onInvalidNotArray(mode parseMode) scanjson.BeginFunc[ddbBaton] {
	typeName := typeNameForArrayExpectation(mode)
	return func(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
		return 0, errParse(rj.CurrentIndex(), "type expects an array value", typeName)
	}
}

func onInvalidNotObject(typeName string) scanjson.BeginFunc[ddbBaton] {
	return func(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
		return 0, errParse(rj.CurrentIndex(), "type expects an object value", typeName)
	}
}

func onInvalidNotAtom(mode parseMode) scanjson.BeginFunc[ddbBaton] {
	typeName := typeNameForAtomExpectation(mode)
	return func(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
		return 0, errParse(rj.CurrentIndex(), "type expects a primitive value", typeName)
	}
}

func onSetOrListEnd(baton *ddbBaton) error {
	o := baton.out
	if err := o.writeStr("]"); err != nil {
		return err
	}
	o.pendingComma = true
	baton.modes.pop()
	return nil
}

func onMapEnd(baton *ddbBaton) error {
	o := baton.out
	if err := o.newline(); err != nil {
		return err
	}
	o.depth--
	if err := o.indent(); err != nil {
		return err
	}
	if err := o.writeStr("}"); err != nil {
		return err
	}
	o.pendingComma = true
	baton.modes.pop()
	return nil
}

func onTypeDescriptorEnd(baton *ddbBaton) error {
	baton.modes.pop()
	return nil
}

// onRootObjectEnd fires when the outer top-level "{"/"}" closes while the
// mode stack is still at modeRoot — which, in ItemBare mode, only happens
// for a record with no fields (modeRoot is popped the moment the first
// field key is seen, via onFieldKey, so a record with fields closes on
// modeFieldNames and is handled there instead). Nothing was written for a
// field-less record, so depth is 0 and no output is produced. In ItemWrapped mode the
// wrapper's own braces always close while still at modeRoot, but that
// close needs no extra output: onItemEnd already ran for the inner Item
// value object.
func onRootObjectEnd(baton *ddbBaton) error {
	if baton.itemMode == ItemBare && baton.out.depth > 0 {
		return onItemEnd(baton)
	}
	return nil
}

// findActionDDB mirrors the source's find_action: the same structural event
// means different things depending on the current parse mode, so the modes
// below are consulted in the same order the source checks them.
func findActionDDB(name scanjson.Pseudoname, ctx *scanjson.ContextIter, baton *ddbBaton) scanjson.BeginFunc[ddbBaton] {
	mode := baton.modes.current()

	if name == scanjson.PseudonameObject && mode == modeRoot {
		if isTopFrame(ctx) {
			return onRootObjectBegin
		}
	}

	if name == scanjson.PseudonameNone {
		c := ctx.Clone()
		key, _, ok := c.Next()
		if ok {
			if mode == modeRoot && baton.itemMode == ItemWrapped {
				return onItemKey
			}
			keyCopy := key
			switch mode {
			case modeRoot, modeFieldNames, modeInM:
				return func(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
					return onFieldKey(baton, keyCopy)
				}
			case modeTypeDescriptor:
				return func(rj *rjiter.RJiter, baton *ddbBaton) (scanjson.StreamOp, error) {
					return onTypeKey(baton, keyCopy)
				}
			}
		}
	}

	if name == scanjson.PseudonameObject {
		if baton.skipNextObject {
			baton.skipNextObject = false
			return onItemValueObjectBegin
		}
		switch mode {
		case modeFieldNames, modeInM, modeInL:
			return onTypeDescriptorBegin
		}
	}

	if name == scanjson.PseudonameArray {
		switch mode {
		case modeExpectSSArray:
			return onStringSetBegin
		case modeExpectNSArray:
			return onNumberSetBegin
		case modeExpectLArray:
			return onListBegin
		case modeExpectMObject:
			return onInvalidNotObject("M")
		case modeInS, modeInN, modeInBool, modeInNull:
			return onInvalidNotAtom(mode)
		}
	}

	if name == scanjson.PseudonameObject {
		if mode == modeExpectMObject {
			return onMapBegin
		}
		switch mode {
		case modeExpectSSArray, modeExpectNSArray, modeExpectLArray:
			return onInvalidNotArray(mode)
		case modeInS, modeInN, modeInBool, modeInNull:
			return onInvalidNotAtom(mode)
		}
	}

	if name == scanjson.PseudonameAtom {
		switch mode {
		case modeInS:
			return onStringValue
		case modeInN:
			return onNumberValue
		case modeInBool:
			return onBoolValue
		case modeInNull:
			return onNullValue
		case modeInSS:
			return onSetStringElement
		case modeInNS:
			return onSetNumberElement
		case modeExpectSSArray, modeExpectNSArray, modeExpectLArray:
			return onInvalidNotArray(mode)
		case modeExpectMObject:
			return onInvalidNotObject("M")
		}
	}

	return nil
}

// findEndActionDDB mirrors the source's find_end_action. The dead branch
// that re-checked mode==TypeDescriptor with an InL parent is intentionally
// not reproduced: on_list_element_end's only effect (setting pending_comma)
// is unreachable there because the earlier TypeDescriptor arm below already
// returns first, and every atom/array/object value handler already sets
// pending_comma itself once it finishes writing.
func findEndActionDDB(name scanjson.Pseudoname, ctx *scanjson.ContextIter, baton *ddbBaton) scanjson.EndFunc[ddbBaton] {
	mode := baton.modes.current()

	if name == scanjson.PseudonameObject && mode == modeRoot {
		if isTopFrame(ctx) {
			return onRootObjectEnd
		}
	}

	if name == scanjson.PseudonameObject {
		switch mode {
		case modeFieldNames:
			return onItemEnd
		case modeInM:
			return onMapEnd
		case modeTypeDescriptor:
			return onTypeDescriptorEnd
		}
	}

	if name == scanjson.PseudonameArray {
		switch mode {
		case modeInSS, modeInNS, modeInL:
			return onSetOrListEnd
		}
	}

	return nil
}

// ConvertDDBToNormal reads a stream of DynamoDB-JSON records (concatenated
// back-to-back) and writes each as one line of plain JSON. mode states
// whether every record is wrapped in a {"Item": {...}} envelope (ItemWrapped)
// or is itself the bare attribute map (ItemBare); the caller asserts this
// rather than having the converter guess from a field's name, since a bare
// record's own attributes may legitimately include one named "Item".
// rjiterBuf and ctxBuf are the caller-owned windows for the tokenizer and
// the ancestor-context pool respectively; maxSlices bounds nesting depth.
func ConvertDDBToNormal(r io.Reader, w io.Writer, rjiterBuf []byte, ctxBuf []byte, maxSlices int, pretty bool, mode ItemWrapperMode) error {
	rj, err := rjiter.New(r, rjiterBuf)
	if err != nil {
		return errScan(0, err)
	}
	pool, err := u8pool.New(ctxBuf, maxSlices)
	if err != nil {
		return errScan(0, err)
	}

	baton := &ddbBaton{
		out:      &outWriter{w: w, pretty: pretty},
		modes:    newModeStack(modeRoot),
		itemMode: mode,
	}

	if err := scanjson.Scan[ddbBaton](rj, baton, pool, findActionDDB, findEndActionDDB, scanjson.Options{}); err != nil {
		var de *Error
		if errors.As(err, &de) {
			return de
		}
		return errScan(rj.CurrentIndex(), err)
	}
	return nil
}
