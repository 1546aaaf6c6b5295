package swarjson

// Field is one member of a struct-fields encode: RawKey is the
// pre-escaped key bytes including the surrounding quotes and the
// trailing colon; Value is a scalar primitive or a fragment written
// verbatim.
type Field struct {
	RawKey []byte
	Value  Value
}

// EncodeFields is the shortcut used by code-generated record encoders:
// it produces a single flat JSON object from pre-escaped keys and
// scalar or pre-encoded values, skipping key escaping entirely.
func EncodeFields(fields []Field, opts *EncodeOptions) ([]byte, error) {
	o := DefaultEncodeOptions()
	if opts != nil {
		o = *opts
	}
	w, err := newOutputWriter(&o)
	if err != nil {
		return nil, err
	}
	e := newEncoder(w, &o)
	if err := e.writeByte('{'); err != nil {
		return nil, err
	}
	for i, f := range fields {
		if i > 0 {
			if err := e.writeByte(','); err != nil {
				return nil, err
			}
		}
		if err := e.writeAll(f.RawKey); err != nil {
			return nil, err
		}
		if f.Value.kind == KindFragment {
			if err := e.writeAll(f.Value.str); err != nil {
				return nil, err
			}
			continue
		}
		if err := e.writeValue(f.Value, 1); err != nil {
			return nil, err
		}
	}
	if err := e.writeByte('}'); err != nil {
		return nil, err
	}
	return w.Finalize()
}
