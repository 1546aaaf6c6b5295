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
	"unicode/utf16"
	"unicode/utf8"
)

// zeroCopyMin is the shortest unescaped string worth returning as a
// sub-slice of the input; below it a copy beats the aliasing cost.
const zeroCopyMin = 64

// rawString is the scanned extent of one string literal: the bytes
// between the quotes, still encoded.
type rawString struct {
	start  int // offset of the byte after the opening quote
	end    int // offset of the closing quote
	escape bool
}

func (r rawString) bytes(buf []byte) []byte { return buf[r.start:r.end] }

// scanString positions d.pos past the closing quote and returns the raw
// extent. d.pos must be on the opening quote.
func (d *decoder) scanString() (rawString, error) {
	buf := d.buf
	open := d.pos
	p := open + 1
	raw := rawString{start: p}
	for {
		p = skipPlainStringBytes(buf, p)
		// The kernel stopped at a candidate chunk (or the tail);
		// inspect bytes until the candidate is resolved.
		for {
			if p >= len(buf) {
				return raw, decErr(ErrUnterminatedString, open)
			}
			c := buf[p]
			if c == '"' {
				raw.end = p
				d.pos = p + 1
				return raw, nil
			}
			if c == '\\' {
				raw.escape = true
				if p+1 >= len(buf) {
					return raw, decErr(ErrUnterminatedString, open)
				}
				p += 2
				break
			}
			if c < 0x20 {
				return raw, decErr(ErrUnescapedControl, p)
			}
			p++
			if p&15 == 0 {
				break // re-enter the chunked kernel on an aligned boundary
			}
		}
	}
}

// materializeString converts a scanned literal into a string value,
// decoding escapes and validating UTF-8 as configured.
func (d *decoder) materializeString(raw rawString) (Value, error) {
	var out []byte
	if raw.escape {
		dec, err := d.decodeEscaped(raw)
		if err != nil {
			return Value{}, err
		}
		out = dec
	} else {
		src := raw.bytes(d.buf)
		if !d.opts.CopyStrings && len(src) >= zeroCopyMin {
			out = src
		} else {
			out = append(make([]byte, 0, len(src)), src...)
		}
	}
	if d.opts.ValidateStrings && !utf8.Valid(out) {
		return Value{}, decErr(ErrInvalidUTF8, raw.start-1)
	}
	return StringBytes(out), nil
}

// decodeEscaped rewrites the escaped literal into fresh bytes, copying
// safe runs in bulk and handling one escape at a time.
func (d *decoder) decodeEscaped(raw rawString) ([]byte, error) {
	src := raw.bytes(d.buf)
	out := make([]byte, 0, len(src))
	i := 0
	for {
		j := findEscapeJSON(src, i)
		out = append(out, src[i:j]...)
		if j >= len(src) {
			return out, nil
		}
		// scanString guarantees the only candidates left are backslashes
		// with at least one byte following.
		c := src[j+1]
		switch c {
		case '"', '\\', '/':
			out = append(out, c)
			i = j + 2
		case 'b':
			out = append(out, 0x08)
			i = j + 2
		case 'f':
			out = append(out, 0x0C)
			i = j + 2
		case 'n':
			out = append(out, 0x0A)
			i = j + 2
		case 'r':
			out = append(out, 0x0D)
			i = j + 2
		case 't':
			out = append(out, 0x09)
			i = j + 2
		case 'u':
			n, buf, err := d.decodeUnicodeEscape(src, j, raw.start)
			if err != nil {
				return nil, err
			}
			out = append(out, buf...)
			i = j + n
		default:
			return nil, decErr(ErrInvalidEscape, raw.start+j)
		}
	}
}

// decodeUnicodeEscape handles one \uXXXX sequence at src[j], including
// a trailing low-surrogate pair, returning the number of source bytes
// consumed and the UTF-8 encoding. base is the absolute offset of
// src[0], used for error positions.
func (d *decoder) decodeUnicodeEscape(src []byte, j, base int) (int, []byte, error) {
	var enc [4]byte
	r, ok := hex4(src, j+2)
	if !ok {
		return 0, nil, decErr(ErrInvalidUnicodeEscape, base+j)
	}
	if !utf16.IsSurrogate(r) {
		return 6, enc[:utf8.EncodeRune(enc[:], r)], nil
	}
	if r >= 0xDC00 {
		// Isolated low surrogate.
		return 0, nil, decErr(ErrLoneSurrogate, base+j)
	}
	// High surrogate: require an immediately following \uYYYY low half.
	if j+12 > len(src) || src[j+6] != '\\' || src[j+7] != 'u' {
		return 0, nil, decErr(ErrLoneSurrogate, base+j)
	}
	r2, ok := hex4(src, j+8)
	if !ok {
		return 0, nil, decErr(ErrInvalidUnicodeEscape, base+j+6)
	}
	if r2 < 0xDC00 || r2 > 0xDFFF {
		return 0, nil, decErr(ErrLoneSurrogate, base+j)
	}
	return 12, enc[:utf8.EncodeRune(enc[:], utf16.DecodeRune(r, r2))], nil
}

// hex4 decodes exactly four hex digits at src[i].
func hex4(src []byte, i int) (rune, bool) {
	if i+4 > len(src) {
		return 0, false
	}
	r := rune(0)
	for _, c := range src[i : i+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}

// parseString scans and materializes a string literal at the cursor.
func (d *decoder) parseString() (Value, error) {
	raw, err := d.scanString()
	if err != nil {
		return Value{}, err
	}
	return d.materializeString(raw)
}
