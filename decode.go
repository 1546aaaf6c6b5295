/*
 * swarjson, (C) 2023 The swarjson Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package swarjson

import (
	"bytes"
)

type decoder struct {
	buf    []byte
	pos    int
	depth  int
	opts   DecodeOptions
	si     *structuralIndex
	intern *internCache
}

func (d *decoder) decode() (Value, error) {
	if d.opts.MaxBytes > 0 && len(d.buf) > d.opts.MaxBytes {
		return Value{}, decErr(ErrInputTooLarge, 0)
	}
	if len(d.buf) >= minIndexInput {
		d.si = buildStructuralIndex(d.buf)
	}
	if d.opts.InternKeys {
		d.intern = newInternCache()
	}
	d.pos = skipWhitespace(d.buf, 0)
	v, err := d.parseValue()
	if err != nil {
		return Value{}, err
	}
	d.pos = skipWhitespace(d.buf, d.pos)
	if d.pos != len(d.buf) {
		return Value{}, decErr(ErrTrailingChars, d.pos)
	}
	return v, nil
}

// skipWSToStructural advances the cursor to the next non-whitespace
// byte, jumping straight to the next indexed offset when a structural
// index is present. The gap is verified whitespace-only; anything else
// falls back to the byte scanner so malformed input still errors at the
// right offset.
func (d *decoder) skipWSToStructural() {
	if d.si != nil {
		if off := d.si.nextOffset(d.pos); off >= 0 {
			if skipWhitespace(d.buf[:off], d.pos) == off {
				d.pos = off
				return
			}
		}
	}
	d.pos = skipWhitespace(d.buf, d.pos)
}

func (d *decoder) peek() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, decErr(ErrUnexpectedEOF, len(d.buf))
	}
	return d.buf[d.pos], nil
}

// parseValue dispatches on the first byte of a value.
func (d *decoder) parseValue() (Value, error) {
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	switch {
	case c == '"':
		return d.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return d.parseNumber()
	case c == 't':
		return d.parseLiteral(litTrue, Bool(true))
	case c == 'f':
		return d.parseLiteral(litFalse, Bool(false))
	case c == 'n':
		return d.parseLiteral(litNull, Null())
	case c == '[':
		return d.parseArray()
	case c == '{':
		return d.parseObject(nil)
	}
	return Value{}, decErr(ErrUnexpectedChar, d.pos)
}

// parseValueScalar is the dispatch used inside flat objects and shaped
// arrays: digits route straight to the number parser and the common
// scalar arms come first. Container values still parse correctly via
// the general dispatch.
func (d *decoder) parseValueScalar() (Value, error) {
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	switch {
	case c == '-' || (c >= '0' && c <= '9'):
		return d.parseNumber()
	case c == '"':
		return d.parseString()
	case c == 't':
		return d.parseLiteral(litTrue, Bool(true))
	case c == 'f':
		return d.parseLiteral(litFalse, Bool(false))
	case c == 'n':
		return d.parseLiteral(litNull, Null())
	}
	return d.parseValue()
}

var (
	litTrue  = []byte("true")
	litFalse = []byte("false")
	litNull  = []byte("null")
)

func (d *decoder) parseLiteral(lit []byte, v Value) (Value, error) {
	if d.pos+len(lit) > len(d.buf) {
		return Value{}, decErr(ErrUnexpectedEOF, len(d.buf))
	}
	if !bytes.Equal(d.buf[d.pos:d.pos+len(lit)], lit) {
		return Value{}, decErr(ErrUnexpectedChar, d.pos)
	}
	d.pos += len(lit)
	return v, nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > maxDepth {
		return decErr(ErrDepthExceeded, d.pos)
	}
	return nil
}

// arrayShape caches the key layout of the first object in an array so
// that subsequent objects with identical raw keys skip key hashing and
// materialization entirely. Cleared on the first mismatch.
type arrayShape struct {
	rawKeys [][]byte
	keyVals []Value
	flat    bool
	active  bool
}

func (d *decoder) parseArray() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	defer func() { d.depth-- }()
	open := d.pos
	d.pos++ // '['
	d.pos = skipWhitespace(d.buf, d.pos)
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	if c == ']' {
		d.pos++
		return Array(), nil
	}

	capacity := -1
	if d.si != nil {
		capacity = d.si.predictContainer(d.buf, open+1)
	}
	if capacity < 0 {
		capacity = heuristicCapacity(len(d.buf) - d.pos)
	}
	elems := make([]Value, 0, capacity)

	var shape arrayShape
	first, err := d.parseArrayElement(&shape, true)
	if err != nil {
		return Value{}, err
	}
	elems = append(elems, first)

	for {
		d.skipWSToStructural()
		c, err := d.peek()
		if err != nil {
			return Value{}, err
		}
		switch c {
		case ']':
			d.pos++
			return Array(elems...), nil
		case ',':
			d.pos++
			d.pos = skipWhitespace(d.buf, d.pos)
			v, err := d.parseArrayElement(&shape, false)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		default:
			return Value{}, decErr(ErrUnexpectedChar, d.pos)
		}
	}
}

// parseArrayElement classifies an element by its first byte for
// specialized dispatch. The first object element seeds the array's
// shape cache; later objects go through the shape-matched parser while
// the shape stays active.
func (d *decoder) parseArrayElement(shape *arrayShape, first bool) (Value, error) {
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	switch {
	case c == '-' || (c >= '0' && c <= '9'):
		return d.parseNumber()
	case c == '"':
		return d.parseString()
	case c == '{':
		if first {
			return d.parseObject(shape)
		}
		if shape.active {
			return d.parseObjectShaped(shape)
		}
		return d.parseObject(nil)
	default:
		return d.parseValue()
	}
}

// parseObject parses a generic object. When capture is non-nil the key
// layout of this object is recorded as the enclosing array's shape.
func (d *decoder) parseObject(capture *arrayShape) (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	defer func() { d.depth-- }()
	open := d.pos
	d.pos++ // '{'
	d.pos = skipWhitespace(d.buf, d.pos)
	c, err := d.peek()
	if err != nil {
		return Value{}, err
	}
	if c == '}' {
		d.pos++
		return NewObject(nil, d.opts.OrderedObjects), nil
	}

	capacity := -1
	if d.si != nil {
		capacity = d.si.predictContainer(d.buf, open+1)
	}
	if capacity < 0 {
		capacity = heuristicCapacity(len(d.buf) - d.pos)
	}
	members := make([]Member, 0, capacity)

	var dupes map[string]struct{}
	if d.opts.RejectDuplicateKeys {
		dupes = make(map[string]struct{}, capacity)
	}
	flat := true
	for {
		c, err := d.peek()
		if err != nil {
			return Value{}, err
		}
		if c != '"' {
			return Value{}, decErr(ErrUnexpectedChar, d.pos)
		}
		keyStart := d.pos
		raw, err := d.scanString()
		if err != nil {
			return Value{}, err
		}
		if dupes != nil {
			rk := raw.bytes(d.buf)
			if _, ok := dupes[string(rk)]; ok {
				return Value{}, decErr(ErrDuplicateKey, keyStart)
			}
			dupes[string(rk)] = struct{}{}
		}
		key, err := d.materializeKey(raw)
		if err != nil {
			return Value{}, err
		}

		d.skipWSToStructural()
		c, err = d.peek()
		if err != nil {
			return Value{}, err
		}
		if c != ':' {
			return Value{}, decErr(ErrUnexpectedChar, d.pos)
		}
		d.pos++
		d.pos = skipWhitespace(d.buf, d.pos)

		var val Value
		if len(members) == 0 || !flat {
			val, err = d.parseValue()
		} else {
			// Flat object: the first value was a scalar, so route later
			// values through the scalar-first dispatch.
			val, err = d.parseValueScalar()
		}
		if err != nil {
			return Value{}, err
		}
		if len(members) == 0 {
			flat = val.kind != KindArray && val.kind != KindObject
		}
		members = append(members, Member{Key: key, Value: val})
		if capture != nil {
			capture.rawKeys = append(capture.rawKeys, raw.bytes(d.buf))
			capture.keyVals = append(capture.keyVals, key)
		}

		d.skipWSToStructural()
		c, err = d.peek()
		if err != nil {
			return Value{}, err
		}
		switch c {
		case '}':
			d.pos++
			if capture != nil {
				capture.flat = flat
				capture.active = true
			}
			return d.buildObject(members), nil
		case ',':
			d.pos++
			d.pos = skipWhitespace(d.buf, d.pos)
		default:
			return Value{}, decErr(ErrUnexpectedChar, d.pos)
		}
	}
}

// buildObject applies the configured mapping semantics: ordered objects
// keep members verbatim; unordered mappings collapse duplicate keys
// with last-wins resolution.
func (d *decoder) buildObject(members []Member) Value {
	if d.opts.OrderedObjects {
		return NewObject(members, true)
	}
	// Fast path: no duplicates, keep the slice as-is.
	seen := make(map[string]int, len(members))
	dup := false
	for i := range members {
		k := string(members[i].Key.str)
		if _, ok := seen[k]; ok {
			dup = true
			break
		}
		seen[k] = i
	}
	if !dup {
		return NewObject(members, false)
	}
	rebuilt := members[:0]
	index := make(map[string]int, len(members))
	for i := range members {
		k := string(members[i].Key.str)
		if at, ok := index[k]; ok {
			rebuilt[at].Value = members[i].Value
			continue
		}
		index[k] = len(rebuilt)
		rebuilt = append(rebuilt, members[i])
	}
	return NewObject(rebuilt, false)
}

// materializeKey produces the key value for a scanned raw key,
// consulting the intern cache for escape-free keys.
func (d *decoder) materializeKey(raw rawString) (Value, error) {
	if d.intern == nil || raw.escape {
		// Keys containing escapes are never interned; schemas avoid them.
		return d.materializeString(raw)
	}
	rk := raw.bytes(d.buf)
	if v, ok := d.intern.lookup(rk); ok {
		return v, nil
	}
	v, err := d.materializeString(raw)
	if err != nil {
		return Value{}, err
	}
	d.intern.insert(rk, v)
	return v, nil
}

// parseObjectShaped parses an object expected to match the enclosing
// array's cached shape: keys are compared byte-wise against the cached
// raw keys without materialization, and the cached key values are
// reused. Any mismatch rewinds fully, clears the shape, and reparses
// through the generic path.
func (d *decoder) parseObjectShaped(shape *arrayShape) (Value, error) {
	startPos := d.pos
	startCursor := 0
	if d.si != nil {
		startCursor = d.si.cursor
	}
	v, ok, err := d.tryObjectShaped(shape)
	if err != nil {
		return Value{}, err
	}
	if ok {
		return v, nil
	}
	// Rewind and fall through to the generic parser.
	d.pos = startPos
	if d.si != nil {
		d.si.cursor = startCursor
	}
	shape.active = false
	shape.rawKeys = nil
	shape.keyVals = nil
	return d.parseObject(nil)
}

// tryObjectShaped attempts the shape-matched parse. It reports ok=false
// for any layout mismatch; hard input errors (bad strings, bad numbers,
// depth) are returned as errors since the generic parser would fail the
// same way.
func (d *decoder) tryObjectShaped(shape *arrayShape) (Value, bool, error) {
	if err := d.enter(); err != nil {
		return Value{}, false, err
	}
	defer func() { d.depth-- }()
	d.pos++ // '{'
	values := make([]Value, 0, len(shape.rawKeys))
	for i, rk := range shape.rawKeys {
		if i > 0 {
			d.skipWSToStructural()
			c, err := d.peek()
			if err != nil || c != ',' {
				return Value{}, false, nil
			}
			d.pos++
		}
		d.pos = skipWhitespace(d.buf, d.pos)
		c, err := d.peek()
		if err != nil || c != '"' {
			return Value{}, false, nil
		}
		raw, err := d.scanString()
		if err != nil {
			return Value{}, false, nil
		}
		if raw.escape || !bytes.Equal(raw.bytes(d.buf), rk) {
			return Value{}, false, nil
		}
		d.skipWSToStructural()
		c, err = d.peek()
		if err != nil || c != ':' {
			return Value{}, false, nil
		}
		d.pos++
		d.pos = skipWhitespace(d.buf, d.pos)
		var val Value
		if shape.flat {
			val, err = d.parseValueScalar()
		} else {
			val, err = d.parseValue()
		}
		if err != nil {
			return Value{}, false, err
		}
		values = append(values, val)
	}
	d.skipWSToStructural()
	c, err := d.peek()
	if err != nil || c != '}' {
		// Wrong member count (extra comma or members beyond the shape).
		return Value{}, false, nil
	}
	d.pos++
	members := make([]Member, len(values))
	for i := range values {
		members[i] = Member{Key: shape.keyVals[i], Value: values[i]}
	}
	return NewObject(members, d.opts.OrderedObjects), true, nil
}
