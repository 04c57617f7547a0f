package ddbjson

import "io"

// outWriter accumulates the small amount of formatting state (comma
// placement, indentation) both converters need around a plain io.Writer.
// Grounded on DdbConverter/NormalToDdbConverter's write/write_comma/
// newline/indent helpers in the source, merged into one type shared by
// both directions since the logic is identical either way.
type outWriter struct {
	w            io.Writer
	pendingComma bool
	pretty       bool
	depth        int
}

func (o *outWriter) write(b []byte) error {
	_, err := o.w.Write(b)
	return err
}

func (o *outWriter) writeStr(s string) error {
	_, err := io.WriteString(o.w, s)
	return err
}

func (o *outWriter) writeComma() error {
	if !o.pendingComma {
		return nil
	}
	if err := o.writeStr(","); err != nil {
		return err
	}
	o.pendingComma = false
	return o.newline()
}

func (o *outWriter) newline() error {
	if !o.pretty {
		return nil
	}
	return o.writeStr("\n")
}

func (o *outWriter) indent() error {
	if !o.pretty {
		return nil
	}
	for i := 0; i < o.depth; i++ {
		if err := o.writeStr("  "); err != nil {
			return err
		}
	}
	return nil
}
