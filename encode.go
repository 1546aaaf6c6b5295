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
	"math"
	"math/big"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// structMarker is the reserved mapping key the encoder probes for
// domain-tagged mappings. It is skipped by the generic writer.
const structMarker = "__struct__"

type encoder struct {
	w       Writer
	opts    *EncodeOptions
	line    []byte
	colon   []byte
	unit    []byte
	scratch [40]byte
}

func newEncoder(w Writer, opts *EncodeOptions) *encoder {
	e := &encoder{w: w, opts: opts}
	if opts.pretty() {
		e.line = opts.lineSeparator()
		e.colon = opts.afterColon()
		e.unit = opts.indentUnit()
	}
	return e
}

func encodeTo(w Writer, v Value, opts *EncodeOptions) error {
	return newEncoder(w, opts).writeValue(v, 0)
}

func (e *encoder) writeAll(p []byte) error {
	_, err := e.w.Write(p)
	if err != nil {
		return encErr(ErrIO, err.Error())
	}
	return nil
}

func (e *encoder) writeByte(c byte) error {
	e.scratch[0] = c
	return e.writeAll(e.scratch[:1])
}

func (e *encoder) writeLiteral(s string) error {
	return e.writeAll([]byte(s))
}

// writeNewline emits the pretty-print line break plus depth indents.
func (e *encoder) writeNewline(depth int) error {
	if !e.opts.pretty() {
		return nil
	}
	if err := e.writeAll(e.line); err != nil {
		return err
	}
	for i := 0; i < depth; i++ {
		if err := e.writeAll(e.unit); err != nil {
			return err
		}
	}
	return nil
}

// writeColonSpace emits the post-colon separator when pretty-printing.
func (e *encoder) writeColonSpace() error {
	if !e.opts.pretty() {
		return nil
	}
	return e.writeAll(e.colon)
}

func (e *encoder) writeValue(v Value, depth int) error {
	if depth > maxDepth {
		return encErr(ErrDepthExceeded, "nesting depth exceeds maximum")
	}
	switch v.kind {
	case KindNull:
		return e.writeLiteral("null")
	case KindBool:
		if v.num != 0 {
			return e.writeLiteral("true")
		}
		return e.writeLiteral("false")
	case KindInt:
		return e.writeAll(strconv.AppendInt(e.scratch[:0], int64(v.num), 10))
	case KindUint:
		return e.writeAll(strconv.AppendUint(e.scratch[:0], v.num, 10))
	case KindBigInt:
		return e.writeAll(v.big.Append(nil, 10))
	case KindFloat:
		dst, err := appendFloat(e.scratch[:0], math.Float64frombits(v.num))
		if err != nil {
			return err
		}
		return e.writeAll(dst)
	case KindString:
		return e.writeString(v.str)
	case KindArray, KindTuple, KindSet:
		return e.writeArray(v.arr, depth)
	case KindObject:
		return e.writeObject(v.obj, depth)
	case KindDecimal:
		return e.writeDecimal(v.dom.(*Decimal))
	case KindDate:
		return e.writeDate(v.dom.(*Date))
	case KindTime:
		return e.writeTime(v.dom.(*TimeOfDay))
	case KindDateTime:
		return e.writeDateTime(v.dom.(*DateTime))
	case KindURI:
		return e.writeURI(v.dom.(*URI))
	case KindRange:
		return e.writeRange(v.dom.(*Range), depth)
	case KindFragment:
		return e.writeAll(v.str)
	}
	return encErr(ErrUnexpectedChar, "cannot encode value of kind "+v.kind.String())
}

func (e *encoder) writeArray(elems []Value, depth int) error {
	if len(elems) == 0 {
		return e.writeLiteral("[]")
	}
	if err := e.writeByte('['); err != nil {
		return err
	}
	nested := depth + 1
	for i, el := range elems {
		if i > 0 {
			if err := e.writeByte(','); err != nil {
				return err
			}
		}
		if err := e.writeNewline(nested); err != nil {
			return err
		}
		if err := e.writeValue(el, nested); err != nil {
			return err
		}
	}
	if err := e.writeNewline(depth); err != nil {
		return err
	}
	return e.writeByte(']')
}

// objectEntry is one mapping member with its key pre-formatted to raw
// bytes for sorting and duplicate detection.
type objectEntry struct {
	key []byte
	val Value
}

func (e *encoder) writeObject(o *Object, depth int) error {
	if !e.opts.Lean {
		if tag, ok := o.structTag(); ok {
			handled, err := e.writeTaggedStruct(o, tag, depth)
			if err != nil {
				return err
			}
			if handled {
				return nil
			}
		}
	}

	entries := make([]objectEntry, 0, o.Len())
	for _, m := range o.Members() {
		switch m.Key.kind {
		case KindString:
			if string(m.Key.str) == structMarker {
				continue
			}
			entries = append(entries, objectEntry{key: m.Key.str, val: m.Value})
		case KindInt:
			entries = append(entries, objectEntry{
				key: strconv.AppendInt(nil, int64(m.Key.num), 10),
				val: m.Value,
			})
		case KindUint:
			entries = append(entries, objectEntry{
				key: strconv.AppendUint(nil, m.Key.num, 10),
				val: m.Value,
			})
		default:
			return encErr(ErrInvalidMapKey, "map key must be a string or integer, not "+m.Key.kind.String())
		}
	}
	if len(entries) == 0 {
		return e.writeLiteral("{}")
	}
	if e.opts.SortKeys {
		slices.SortStableFunc(entries, func(a, b objectEntry) int {
			return bytes.Compare(a.key, b.key)
		})
	}
	var seen map[string]struct{}
	if e.opts.StrictKeys {
		seen = make(map[string]struct{}, len(entries))
	}

	if err := e.writeByte('{'); err != nil {
		return err
	}
	nested := depth + 1
	for i, ent := range entries {
		if seen != nil {
			if _, dup := seen[string(ent.key)]; dup {
				return encErr(ErrDuplicateOutputKey, "duplicate key: "+string(ent.key))
			}
			seen[string(ent.key)] = struct{}{}
		}
		if i > 0 {
			if err := e.writeByte(','); err != nil {
				return err
			}
		}
		if err := e.writeNewline(nested); err != nil {
			return err
		}
		if err := e.writeString(ent.key); err != nil {
			return err
		}
		if err := e.writeByte(':'); err != nil {
			return err
		}
		if err := e.writeColonSpace(); err != nil {
			return err
		}
		if err := e.writeValue(ent.val, nested); err != nil {
			return err
		}
	}
	if err := e.writeNewline(depth); err != nil {
		return err
	}
	return e.writeByte('}')
}

// structTag returns the domain tag carried by the reserved marker key.
func (o *Object) structTag() (string, bool) {
	v, ok := o.Get(structMarker)
	if !ok || v.kind != KindString {
		return "", false
	}
	return string(v.str), true
}

// writeTaggedStruct renders a mapping whose reserved marker names one
// of the closed domain tags. Mappings whose fields do not decode fall
// back to the generic writer (handled=false).
func (e *encoder) writeTaggedStruct(o *Object, tag string, depth int) (bool, error) {
	switch tag {
	case "decimal":
		coef, ok := o.getBig("coef")
		if !ok {
			return false, nil
		}
		exp, ok := o.getInt("exp")
		if !ok {
			return false, nil
		}
		sign, ok := o.getInt("sign")
		if !ok {
			return false, nil
		}
		s := 1
		if sign < 0 {
			s = -1
		}
		return true, e.writeDecimal(&Decimal{Sign: s, Coef: coef, Exp: int32(exp)})
	case "date":
		d, ok := o.getDateFields()
		if !ok {
			return false, nil
		}
		return true, e.writeDate(&d)
	case "time":
		t, ok := o.getTimeFields()
		if !ok {
			return false, nil
		}
		return true, e.writeTime(&t)
	case "naive-datetime":
		d, ok := o.getDateFields()
		if !ok {
			return false, nil
		}
		t, ok := o.getTimeFields()
		if !ok {
			return false, nil
		}
		return true, e.writeDateTime(&DateTime{Date: d, Time: t})
	case "datetime":
		d, ok := o.getDateFields()
		if !ok {
			return false, nil
		}
		t, ok := o.getTimeFields()
		if !ok {
			return false, nil
		}
		utcOff, _ := o.getInt("utc_offset")
		stdOff, _ := o.getInt("std_offset")
		return true, e.writeDateTime(&DateTime{
			Date: d, Time: t, Offset: int(utcOff + stdOff), Zoned: true,
		})
	case "uri":
		u := URI{
			Scheme:   o.getStringField("scheme"),
			Userinfo: o.getStringField("userinfo"),
			Host:     o.getStringField("host"),
			Path:     o.getStringField("path"),
			Query:    o.getStringField("query"),
			Fragment: o.getStringField("fragment"),
		}
		if p, ok := o.getInt("port"); ok {
			u.Port = int(p)
		}
		return true, e.writeURI(&u)
	case "ordered-set":
		elems, ok := o.Get("elements")
		if !ok {
			return false, nil
		}
		arr, ok := elems.Elems()
		if !ok {
			return false, nil
		}
		return true, e.writeArray(arr, depth)
	case "integer-range":
		first, ok := o.getInt("first")
		if !ok {
			return false, nil
		}
		last, ok := o.getInt("last")
		if !ok {
			return false, nil
		}
		step := int64(1)
		if s, ok := o.getInt("step"); ok {
			step = s
		}
		return true, e.writeRange(&Range{First: first, Last: last, Step: step}, depth)
	case "fragment":
		enc, ok := o.Get("encode")
		if !ok {
			return false, nil
		}
		return true, e.writeIodata(enc)
	}
	return false, nil
}

func (o *Object) getInt(name string) (int64, bool) {
	v, ok := o.Get(name)
	if !ok {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return int64(v.num), true
	case KindUint:
		if v.num <= math.MaxInt64 {
			return int64(v.num), true
		}
	}
	return 0, false
}

func (o *Object) getBig(name string) (*big.Int, bool) {
	v, ok := o.Get(name)
	if !ok {
		return nil, false
	}
	switch v.kind {
	case KindInt:
		return new(big.Int).SetInt64(int64(v.num)), true
	case KindUint:
		return new(big.Int).SetUint64(v.num), true
	case KindBigInt:
		return v.big, true
	}
	return nil, false
}

// getStringField returns "" for absent or null fields.
func (o *Object) getStringField(name string) string {
	v, ok := o.Get(name)
	if !ok || v.kind != KindString {
		return ""
	}
	return string(v.str)
}

func (o *Object) getDateFields() (Date, bool) {
	y, ok1 := o.getInt("year")
	m, ok2 := o.getInt("month")
	d, ok3 := o.getInt("day")
	if !ok1 || !ok2 || !ok3 {
		return Date{}, false
	}
	return Date{Year: int(y), Month: int(m), Day: int(d)}, true
}

func (o *Object) getTimeFields() (TimeOfDay, bool) {
	h, ok1 := o.getInt("hour")
	m, ok2 := o.getInt("minute")
	s, ok3 := o.getInt("second")
	if !ok1 || !ok2 || !ok3 {
		return TimeOfDay{}, false
	}
	t := TimeOfDay{Hour: int(h), Minute: int(m), Second: int(s)}
	// microsecond is a {value, precision} pair.
	if us, ok := o.Get("microsecond"); ok {
		pair, ok := us.Elems()
		if !ok || len(pair) != 2 {
			return TimeOfDay{}, false
		}
		v, ok1 := pairInt(pair[0])
		p, ok2 := pairInt(pair[1])
		if !ok1 || !ok2 {
			return TimeOfDay{}, false
		}
		t.Micro = int(v)
		t.Precision = int(p)
	}
	return t, true
}

func pairInt(v Value) (int64, bool) {
	switch v.kind {
	case KindInt:
		return int64(v.num), true
	case KindUint:
		return int64(v.num), true
	}
	return 0, false
}

// Domain writers. Each renders directly into the output; padded
// integers go through a small fixed-size stack buffer.

func (e *encoder) writeDecimal(d *Decimal) error {
	dst := e.scratch[:0]
	dst = append(dst, '"')
	dst = appendDecimal(dst, d)
	dst = append(dst, '"')
	return e.writeAll(dst)
}

// appendDecimal renders sign * coef * 10^exp in canonical decimal
// notation: no point for exp >= 0, otherwise the point sits -exp
// places from the right with zero padding.
func appendDecimal(dst []byte, d *Decimal) []byte {
	if d.Sign < 0 {
		dst = append(dst, '-')
	}
	digits := new(big.Int).Abs(d.Coef).String()
	if d.Exp >= 0 {
		dst = append(dst, digits...)
		for i := int32(0); i < d.Exp; i++ {
			dst = append(dst, '0')
		}
		return dst
	}
	places := int(-d.Exp)
	if places >= len(digits) {
		dst = append(dst, '0', '.')
		for i := 0; i < places-len(digits); i++ {
			dst = append(dst, '0')
		}
		return append(dst, digits...)
	}
	dst = append(dst, digits[:len(digits)-places]...)
	dst = append(dst, '.')
	return append(dst, digits[len(digits)-places:]...)
}

// appendPadded writes v zero-padded to the given total width,
// sign included, matching {:0w} formatting.
func appendPadded(dst []byte, v, width int) []byte {
	var tmp [20]byte
	neg := v < 0
	if neg {
		v = -v
		width--
	}
	digits := strconv.AppendInt(tmp[:0], int64(v), 10)
	if neg {
		dst = append(dst, '-')
	}
	for i := len(digits); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}

func appendDate(dst []byte, d *Date) []byte {
	dst = appendPadded(dst, d.Year, 4)
	dst = append(dst, '-')
	dst = appendPadded(dst, d.Month, 2)
	dst = append(dst, '-')
	return appendPadded(dst, d.Day, 2)
}

func appendTime(dst []byte, t *TimeOfDay) []byte {
	dst = appendPadded(dst, t.Hour, 2)
	dst = append(dst, ':')
	dst = appendPadded(dst, t.Minute, 2)
	dst = append(dst, ':')
	dst = appendPadded(dst, t.Second, 2)
	if t.Micro != 0 {
		prec := t.Precision
		if prec <= 0 || prec > 6 {
			prec = 6
		}
		var micro [8]byte
		frac := appendPadded(micro[:0], t.Micro, 6)
		dst = append(dst, '.')
		dst = append(dst, frac[:prec]...)
	}
	return dst
}

func (e *encoder) writeDate(d *Date) error {
	dst := append(e.scratch[:0], '"')
	dst = appendDate(dst, d)
	return e.writeAll(append(dst, '"'))
}

func (e *encoder) writeTime(t *TimeOfDay) error {
	dst := append(e.scratch[:0], '"')
	dst = appendTime(dst, t)
	return e.writeAll(append(dst, '"'))
}

func (e *encoder) writeDateTime(dt *DateTime) error {
	dst := append(e.scratch[:0], '"')
	dst = appendDate(dst, &dt.Date)
	dst = append(dst, 'T')
	dst = appendTime(dst, &dt.Time)
	if dt.Zoned {
		if dt.Offset == 0 {
			dst = append(dst, 'Z')
		} else {
			off := dt.Offset
			sign := byte('+')
			if off < 0 {
				sign = '-'
				off = -off
			}
			dst = append(dst, sign)
			dst = appendPadded(dst, off/3600, 2)
			dst = append(dst, ':')
			dst = appendPadded(dst, (off%3600)/60, 2)
		}
	}
	return e.writeAll(append(dst, '"'))
}

func (e *encoder) writeURI(u *URI) error {
	var dst []byte
	if u.Scheme != "" {
		dst = append(dst, u.Scheme...)
		dst = append(dst, "://"...)
	}
	if u.Userinfo != "" {
		dst = append(dst, u.Userinfo...)
		dst = append(dst, '@')
	}
	dst = append(dst, u.Host...)
	if u.Port > 0 && !defaultPort(u.Scheme, u.Port) {
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(u.Port), 10)
	}
	dst = append(dst, u.Path...)
	if u.Query != "" {
		dst = append(dst, '?')
		dst = append(dst, u.Query...)
	}
	if u.Fragment != "" {
		dst = append(dst, '#')
		dst = append(dst, u.Fragment...)
	}
	return e.writeString(dst)
}

func defaultPort(scheme string, port int) bool {
	switch scheme {
	case "http":
		return port == 80
	case "https":
		return port == 443
	}
	return false
}

func (e *encoder) writeRange(r *Range, depth int) error {
	if err := e.writeByte('{'); err != nil {
		return err
	}
	nested := depth + 1
	writeField := func(name string, v int64, comma bool) error {
		if comma {
			if err := e.writeByte(','); err != nil {
				return err
			}
		}
		if err := e.writeNewline(nested); err != nil {
			return err
		}
		if err := e.writeString([]byte(name)); err != nil {
			return err
		}
		if err := e.writeByte(':'); err != nil {
			return err
		}
		if err := e.writeColonSpace(); err != nil {
			return err
		}
		return e.writeAll(strconv.AppendInt(e.scratch[:0], v, 10))
	}
	if err := writeField("first", r.First, false); err != nil {
		return err
	}
	if err := writeField("last", r.Last, true); err != nil {
		return err
	}
	if r.Step != 1 {
		if err := writeField("step", r.Step, true); err != nil {
			return err
		}
	}
	if err := e.writeNewline(depth); err != nil {
		return err
	}
	return e.writeByte('}')
}

// writeIodata writes fragment payload verbatim: a byte string, or a
// nested list of byte strings and integer bytes.
func (e *encoder) writeIodata(v Value) error {
	switch v.kind {
	case KindString, KindFragment:
		return e.writeAll(v.str)
	case KindArray, KindTuple:
		for _, el := range v.arr {
			if err := e.writeIodata(el); err != nil {
				return err
			}
		}
		return nil
	case KindInt:
		if v.num <= 0xFF {
			return e.writeByte(byte(v.num))
		}
	case KindUint:
		if v.num <= 0xFF {
			return e.writeByte(byte(v.num))
		}
	}
	return encErr(ErrUnexpectedChar, "invalid iodata in fragment")
}

// String escaping.

// jsonEscTable maps each byte to its escape action in json mode:
// 0 passes through, 'u' becomes \u00XX, anything else is the letter of
// a two-byte escape.
var jsonEscTable = func() (t [256]byte) {
	for i := 0; i < 0x20; i++ {
		t[i] = 'u'
	}
	t['\b'] = 'b'
	t['\t'] = 't'
	t['\n'] = 'n'
	t['\f'] = 'f'
	t['\r'] = 'r'
	t['"'] = '"'
	t['\\'] = '\\'
	return
}()

var valToHex = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

func (e *encoder) writeString(s []byte) error {
	if err := e.writeByte('"'); err != nil {
		return err
	}
	var err error
	switch e.opts.Escape {
	case EscapeJSON:
		err = e.writeEscapedJSON(s)
	case EscapeHTMLSafe:
		err = e.writeEscapedChunked(s, findEscapeHTML, e.escapeByteHTML)
	case EscapeJavaScriptSafe:
		err = e.writeEscapedChunked(s, findEscapeJavaScript, e.escapeByteJS)
	case EscapeUnicodeSafe:
		err = e.writeEscapedChunked(s, findEscapeUnicode, e.escapeByteUnicode)
	}
	if err != nil {
		return err
	}
	return e.writeByte('"')
}

// writeEscapedJSON uses the exact finder: every candidate is a real
// escape, so the safe prefix is written in one piece per escape event.
func (e *encoder) writeEscapedJSON(s []byte) error {
	i := 0
	for {
		j := findEscapeJSON(s, i)
		if j > i {
			if err := e.writeAll(s[i:j]); err != nil {
				return err
			}
		}
		if j >= len(s) {
			return nil
		}
		if err := e.writeJSONEscape(s[j]); err != nil {
			return err
		}
		i = j + 1
	}
}

func (e *encoder) writeJSONEscape(c byte) error {
	switch act := jsonEscTable[c]; act {
	case 'u':
		return e.writeAll([]byte{'\\', 'u', '0', '0', valToHex[c>>4], valToHex[c&0xF]})
	default:
		return e.writeAll([]byte{'\\', act})
	}
}

// writeEscapedChunked drives the chunk-granular finders: the finder
// stops at the chunk holding a candidate, and a scalar step resolves
// up to one chunk of bytes before handing back to the finder.
func (e *encoder) writeEscapedChunked(s []byte, find func([]byte, int) int, esc func([]byte, int) (int, error)) error {
	i := 0
	for i < len(s) {
		j := find(s, i)
		if j > i {
			if err := e.writeAll(s[i:j]); err != nil {
				return err
			}
			i = j
		}
		if i >= len(s) {
			return nil
		}
		for k := 0; k < 16 && i < len(s); k++ {
			n, err := esc(s, i)
			if err != nil {
				return err
			}
			i += n
		}
	}
	return nil
}

// escapeByteHTML resolves one byte (or one U+2028/U+2029 sequence) in
// html_safe mode and returns the number of source bytes consumed.
func (e *encoder) escapeByteHTML(s []byte, i int) (int, error) {
	c := s[i]
	switch {
	case c < 0x20 || c == '"' || c == '\\':
		return 1, e.writeJSONEscape(c)
	case c == '<':
		return 1, e.writeLiteral(`\u003c`)
	case c == '>':
		return 1, e.writeLiteral(`\u003e`)
	case c == '&':
		return 1, e.writeLiteral(`\u0026`)
	case c == '/':
		return 1, e.writeLiteral(`\/`)
	case c == 0xE2:
		if n, done, err := e.escapeLineSep(s, i); done {
			return n, err
		}
		return 1, e.writeByte(c)
	default:
		return 1, e.writeByte(c)
	}
}

// escapeByteJS resolves one byte in javascript_safe mode.
func (e *encoder) escapeByteJS(s []byte, i int) (int, error) {
	c := s[i]
	switch {
	case c < 0x20 || c == '"' || c == '\\':
		return 1, e.writeJSONEscape(c)
	case c == 0xE2:
		if n, done, err := e.escapeLineSep(s, i); done {
			return n, err
		}
		return 1, e.writeByte(c)
	default:
		return 1, e.writeByte(c)
	}
}

// escapeLineSep recognizes the UTF-8 sequences of U+2028 and U+2029
// (E2 80 A8, E2 80 A9) and emits their \u escapes.
func (e *encoder) escapeLineSep(s []byte, i int) (int, bool, error) {
	if i+2 < len(s) && s[i+1] == 0x80 && (s[i+2] == 0xA8 || s[i+2] == 0xA9) {
		if s[i+2] == 0xA8 {
			return 3, true, e.writeLiteral(`\u2028`)
		}
		return 3, true, e.writeLiteral(`\u2029`)
	}
	return 0, false, nil
}

// escapeByteUnicode resolves one byte or one non-ASCII codepoint in
// unicode_safe mode.
func (e *encoder) escapeByteUnicode(s []byte, i int) (int, error) {
	c := s[i]
	if c < 0x80 {
		if c < 0x20 || c == '"' || c == '\\' {
			return 1, e.writeJSONEscape(c)
		}
		return 1, e.writeByte(c)
	}
	r, size := utf8.DecodeRune(s[i:])
	if r == utf8.RuneError && size == 1 {
		return 0, encErr(ErrInvalidUTF8, "invalid UTF-8 in string")
	}
	if r <= 0xFFFF {
		return size, e.writeHexEscape(uint16(r))
	}
	hi, lo := utf16.EncodeRune(r)
	if err := e.writeHexEscape(uint16(hi)); err != nil {
		return 0, err
	}
	return size, e.writeHexEscape(uint16(lo))
}

func (e *encoder) writeHexEscape(u uint16) error {
	return e.writeAll([]byte{'\\', 'u',
		valToHex[u>>12], valToHex[(u>>8)&0xF], valToHex[(u>>4)&0xF], valToHex[u&0xF]})
}

// appendFloat converts a float as if by ES6 number-to-string, which
// matches most other JSON generators: %g-like with different exponent
// cutoffs and no zero-padded exponents. Unlike ES6, integral values in
// fixed notation keep a trailing ".0" (1000 is written as 1000.0).
func appendFloat(dst []byte, f float64) ([]byte, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, encErr(ErrNonFiniteFloat, "INF or NaN number found")
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if abs < 1e-6 || abs >= 1e21 {
			format = 'e'
		}
	}
	mark := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
		return dst, nil
	}
	// Keep integral floats recognizable as floats on the wire, so a
	// decode of the output restores the same variant.
	if !bytes.ContainsAny(dst[mark:], ".") {
		dst = append(dst, '.', '0')
	}
	return dst, nil
}
