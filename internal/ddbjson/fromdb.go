package ddbjson

import (
	"errors"
	"io"

	"github.com/rjiter/streamjson/rjiter"
	"github.com/rjiter/streamjson/scanjson"
	"github.com/rjiter/streamjson/u8pool"
)

// toDdbBaton carries the state for a normal-JSON-to-DDB-JSON scan. Unlike
// the reverse direction this needs no mode stack: every dispatch decision
// is made from the ancestor context alone (is this the root, is the
// immediate parent an array), since there is no type-descriptor-vs-
// field-braces ambiguity going this direction.
type toDdbBaton struct {
	out            *outWriter
	withItemWrapper bool
}

func parentIsArray(ctx *scanjson.ContextIter) bool {
	c := ctx.Clone()
	if _, _, ok := c.Next(); !ok {
		return false
	}
	_, hdr, ok := c.Next()
	return ok && hdr.IsInArray
}

func onRootObjectBeginToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.writeStr("{"); err != nil {
		return 0, err
	}
	if err := o.newline(); err != nil {
		return 0, err
	}
	o.depth++
	if baton.withItemWrapper {
		if err := o.indent(); err != nil {
			return 0, err
		}
		if err := o.writeStr(`"Item":{`); err != nil {
			return 0, err
		}
		if err := o.newline(); err != nil {
			return 0, err
		}
		o.depth++
	}
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onFieldKeyToDDB(baton *toDdbBaton, key []byte) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.writeComma(); err != nil {
		return 0, err
	}
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := writeJSONKey(o, key); err != nil {
		return 0, err
	}
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

func onStringValueToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := o.writeStr(`"S":"`); err != nil {
		return 0, err
	}
	if err := rj.WriteLongBytes(o.w); err != nil {
		return 0, errScan(rj.CurrentIndex(), err)
	}
	if err := o.writeStr("\""); err != nil {
		return 0, err
	}
	return closeAttributeWrapper(o)
}

func onBoolValueToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekTrue && peek != rjiter.PeekFalse {
		return 0, errParse(pos, "expected boolean value", "")
	}
	val, err := rj.KnownBool(peek)
	if err != nil {
		return 0, errScan(pos, err)
	}
	o := baton.out
	if err := o.indent(); err != nil {
		return 0, err
	}
	lit := `"BOOL":false`
	if val {
		lit = `"BOOL":true`
	}
	if err := o.writeStr(lit); err != nil {
		return 0, err
	}
	return closeAttributeWrapper(o)
}

func onNullValueToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	if peek != rjiter.PeekNull {
		return 0, errParse(pos, "expected null value", "")
	}
	if err := rj.KnownNull(); err != nil {
		return 0, errScan(pos, err)
	}
	o := baton.out
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := o.writeStr(`"NULL":true`); err != nil {
		return 0, err
	}
	return closeAttributeWrapper(o)
}

// closeAttributeWrapper finishes the {"TYPE":value} object a field key or
// array element handler already opened: newline, dedent, closing brace,
// and a trailing comma for the next sibling.
func closeAttributeWrapper(o *outWriter) (scanjson.StreamOp, error) {
	if err := o.newline(); err != nil {
		return 0, err
	}
	o.depth--
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := o.writeStr("}"); err != nil {
		return 0, err
	}
	o.pendingComma = true
	return scanjson.StreamOpValueConsumed, nil
}

func onAtomValueToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.writeComma(); err != nil {
		return 0, err
	}
	pos := rj.CurrentIndex()
	peek, err := rj.Peek()
	if err != nil {
		return 0, errScan(pos, err)
	}
	switch peek {
	case rjiter.PeekString:
		return onStringValueToDDB(rj, baton)
	case rjiter.PeekTrue, rjiter.PeekFalse:
		return onBoolValueToDDB(rj, baton)
	case rjiter.PeekNull:
		return onNullValueToDDB(rj, baton)
	default:
		raw, err := rj.NextNumberBytes()
		if err != nil {
			return 0, errScan(pos, err)
		}
		if err := o.indent(); err != nil {
			return 0, err
		}
		if err := o.writeStr(`"N":"`); err != nil {
			return 0, err
		}
		if err := o.write(raw); err != nil {
			return 0, err
		}
		if err := o.writeStr("\""); err != nil {
			return 0, err
		}
		return closeAttributeWrapper(o)
	}
}

func onArrayBeginToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := o.writeStr(`"L":[`); err != nil {
		return 0, err
	}
	if err := o.newline(); err != nil {
		return 0, err
	}
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func openElementWrapper(o *outWriter) error {
	if err := o.writeComma(); err != nil {
		return err
	}
	if err := o.writeStr("{"); err != nil {
		return err
	}
	if err := o.newline(); err != nil {
		return err
	}
	o.depth++
	o.pendingComma = false
	return nil
}

func onArrayElementAtom(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	if err := openElementWrapper(baton.out); err != nil {
		return 0, err
	}
	return onAtomValueToDDB(rj, baton)
}

func onArrayElementArray(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	if err := openElementWrapper(baton.out); err != nil {
		return 0, err
	}
	return onArrayBeginToDDB(rj, baton)
}

func onArrayElementObject(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	if err := openElementWrapper(baton.out); err != nil {
		return 0, err
	}
	return onNestedObjectBeginToDDB(rj, baton)
}

func onNestedObjectBeginToDDB(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
	o := baton.out
	if err := o.indent(); err != nil {
		return 0, err
	}
	if err := o.writeStr(`"M":{`); err != nil {
		return 0, err
	}
	if err := o.newline(); err != nil {
		return 0, err
	}
	o.depth++
	o.pendingComma = false
	return scanjson.StreamOpNone, nil
}

func onRootObjectEndToDDB(baton *toDdbBaton) error {
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
	if baton.withItemWrapper {
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
	}
	return o.writeStr("\n")
}

// onNestedObjectEnd closes a plain object-of-fields value's "M" wrapper and
// the attribute wrapper around it. The source defines this logic twice
// (on_nested_object_end and on_object_in_array_end are identical) because
// it names the two call sites separately; here one function serves both.
func onNestedObjectEnd(baton *toDdbBaton) error {
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
	return nil
}

// onArrayEnd closes an "L" array and the attribute wrapper around it. As
// with onNestedObjectEnd, the source's on_array_end_toddb and
// on_array_in_array_end are identical and are merged here.
func onArrayEnd(baton *toDdbBaton) error {
	o := baton.out
	if err := o.newline(); err != nil {
		return err
	}
	if err := o.indent(); err != nil {
		return err
	}
	if err := o.writeStr("]"); err != nil {
		return err
	}
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
	return nil
}

func findActionToDDB(name scanjson.Pseudoname, ctx *scanjson.ContextIter, baton *toDdbBaton) scanjson.BeginFunc[toDdbBaton] {
	if name == scanjson.PseudonameObject && isTopFrame(ctx) {
		return onRootObjectBeginToDDB
	}

	if name == scanjson.PseudonameNone {
		c := ctx.Clone()
		if key, _, ok := c.Next(); ok {
			keyCopy := key
			return func(rj *rjiter.RJiter, baton *toDdbBaton) (scanjson.StreamOp, error) {
				return onFieldKeyToDDB(baton, keyCopy)
			}
		}
	}

	inArray := parentIsArray(ctx)

	switch name {
	case scanjson.PseudonameAtom:
		if inArray {
			return onArrayElementAtom
		}
		return onAtomValueToDDB
	case scanjson.PseudonameArray:
		if inArray {
			return onArrayElementArray
		}
		return onArrayBeginToDDB
	case scanjson.PseudonameObject:
		if inArray {
			return onArrayElementObject
		}
		return onNestedObjectBeginToDDB
	}

	return nil
}

func findEndActionToDDB(name scanjson.Pseudoname, ctx *scanjson.ContextIter, baton *toDdbBaton) scanjson.EndFunc[toDdbBaton] {
	if name == scanjson.PseudonameObject {
		if isTopFrame(ctx) {
			return onRootObjectEndToDDB
		}
		return onNestedObjectEnd
	}
	if name == scanjson.PseudonameArray {
		return onArrayEnd
	}
	return nil
}

// ConvertNormalToDDB reads a stream of plain JSON records (objects only —
// the DynamoDB item format has no array-at-the-root shape) and writes each
// as one line of DynamoDB-JSON, optionally wrapped in an "Item" key.
func ConvertNormalToDDB(r io.Reader, w io.Writer, rjiterBuf []byte, ctxBuf []byte, maxSlices int, pretty, withItemWrapper bool) error {
	rj, err := rjiter.New(r, rjiterBuf)
	if err != nil {
		return errScan(0, err)
	}
	pool, err := u8pool.New(ctxBuf, maxSlices)
	if err != nil {
		return errScan(0, err)
	}

	baton := &toDdbBaton{
		out:             &outWriter{w: w, pretty: pretty},
		withItemWrapper: withItemWrapper,
	}

	if err := scanjson.Scan[toDdbBaton](rj, baton, pool, findActionToDDB, findEndActionToDDB, scanjson.Options{}); err != nil {
		var de *Error
		if errors.As(err, &de) {
			return de
		}
		return errScan(rj.CurrentIndex(), err)
	}
	return nil
}
