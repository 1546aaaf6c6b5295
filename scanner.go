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
	"encoding/binary"
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// The scanner classifies bytes in 16- or 32-byte chunks using SWAR
// arithmetic on 64-bit lanes. Two exit disciplines coexist and must not
// be mixed up: boundary-exact kernels (skipWhitespace, skipASCIIDigits,
// findEscapeJSON) bit-scan to the precise byte because their callers
// consume the run as a slice; chunk-granular kernels
// (skipPlainStringBytes, the html/unicode/javascript escape finders)
// stop at the chunk holding the first candidate and leave the final
// step to the caller, which inspects that byte anyway.

// wideKernels selects the 32-bytes-per-iteration kernels on cores with
// 256-bit vector units; narrower cores run the 16-byte kernels.
var wideKernels = cpuid.CPU.Has(cpuid.AVX2)

const (
	swarLSB uint64 = 0x0101010101010101
	swarMSB uint64 = 0x8080808080808080
)

func broadcast(b byte) uint64 { return swarLSB * uint64(b) }

// eqMask returns 0x80 in exactly the lanes of w equal to b. The
// carry-free zero test keeps every lane independent, so the mask is
// exact and safe to complement (the cheaper subtract-borrow form is
// only trustworthy up to its first match).
func eqMask(w uint64, b byte) uint64 {
	x := w ^ broadcast(b)
	y := ((x &^ swarMSB) + ^swarMSB) | x
	return ^y & swarMSB
}

// ge7Mask returns 0x80 in every lane whose low 7 bits are >= n (n < 0x80).
// Per-lane exact: the forced MSB blocks cross-lane borrows.
func ge7Mask(w uint64, n byte) uint64 {
	return ((w | swarMSB) - broadcast(n)) & swarMSB
}

// wsMask flags lanes holding JSON whitespace: space, tab, LF, CR.
func wsMask(w uint64) uint64 {
	return eqMask(w, ' ') | eqMask(w, '\t') | eqMask(w, '\n') | eqMask(w, '\r')
}

// digitMask flags lanes holding '0'..'9'. Exact in every lane.
func digitMask(w uint64) uint64 {
	return ge7Mask(w, '0') &^ ge7Mask(w, '9'+1) &^ (w & swarMSB)
}

// ctlMask flags lanes holding bytes below 0x20. Exact in every lane.
func ctlMask(w uint64) uint64 {
	return ^ge7Mask(w, 0x20) & ^w & swarMSB
}

// plainStrMask flags lanes that terminate a plain string run:
// quote, backslash or a control byte.
func plainStrMask(w uint64) uint64 {
	return eqMask(w, '"') | eqMask(w, '\\') | ctlMask(w)
}

// structuralMask flags lanes holding a structural character, including
// the quote and backslash needed for string-state tracking.
func structuralMask(w uint64) uint64 {
	return eqMask(w, '{') | eqMask(w, '}') |
		eqMask(w, '[') | eqMask(w, ']') |
		eqMask(w, ':') | eqMask(w, ',') |
		eqMask(w, '"') | eqMask(w, '\\')
}

func load64(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off:])
}

// firstLane returns the byte position of the lowest 0x80 marker in m.
func firstLane(m uint64) int {
	return bits.TrailingZeros64(m) >> 3
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// skipWhitespace returns the exact offset of the first byte at or after
// off that is not JSON whitespace.
func skipWhitespace(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m0 := ^wsMask(load64(buf, off)) & swarMSB
			m1 := ^wsMask(load64(buf, off+8)) & swarMSB
			m2 := ^wsMask(load64(buf, off+16)) & swarMSB
			m3 := ^wsMask(load64(buf, off+24)) & swarMSB
			if m0|m1|m2|m3 == 0 {
				off += 32
				continue
			}
			// eqMask is exact in every lane, so the complemented wsMask
			// flags exactly the non-whitespace lanes and the lowest
			// marker is the boundary.
			switch {
			case m0 != 0:
				return off + firstLane(m0)
			case m1 != 0:
				return off + 8 + firstLane(m1)
			case m2 != 0:
				return off + 16 + firstLane(m2)
			default:
				return off + 24 + firstLane(m3)
			}
		}
	}
	for off+16 <= len(buf) {
		m0 := ^wsMask(load64(buf, off)) & swarMSB
		m1 := ^wsMask(load64(buf, off+8)) & swarMSB
		if m0|m1 == 0 {
			off += 16
			continue
		}
		if m0 != 0 {
			return off + firstLane(m0)
		}
		return off + 8 + firstLane(m1)
	}
	for off < len(buf) && isSpace(buf[off]) {
		off++
	}
	return off
}

// skipASCIIDigits returns the exact offset of the first byte at or
// after off that is not an ASCII digit.
func skipASCIIDigits(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m0 := ^digitMask(load64(buf, off)) & swarMSB
			m1 := ^digitMask(load64(buf, off+8)) & swarMSB
			m2 := ^digitMask(load64(buf, off+16)) & swarMSB
			m3 := ^digitMask(load64(buf, off+24)) & swarMSB
			if m0|m1|m2|m3 == 0 {
				off += 32
				continue
			}
			switch {
			case m0 != 0:
				return off + firstLane(m0)
			case m1 != 0:
				return off + 8 + firstLane(m1)
			case m2 != 0:
				return off + 16 + firstLane(m2)
			default:
				return off + 24 + firstLane(m3)
			}
		}
	}
	for off+16 <= len(buf) {
		m0 := ^digitMask(load64(buf, off)) & swarMSB
		m1 := ^digitMask(load64(buf, off+8)) & swarMSB
		if m0|m1 == 0 {
			off += 16
			continue
		}
		if m0 != 0 {
			return off + firstLane(m0)
		}
		return off + 8 + firstLane(m1)
	}
	for off < len(buf) && buf[off] >= '0' && buf[off] <= '9' {
		off++
	}
	return off
}

// skipPlainStringBytes advances past bytes that are neither quote,
// backslash nor control. Chunk-granular: it stops at the start of the
// first chunk containing a candidate, leaving up to one chunk of plain
// bytes for the caller to step over while inspecting.
func skipPlainStringBytes(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m := plainStrMask(load64(buf, off)) |
				plainStrMask(load64(buf, off+8)) |
				plainStrMask(load64(buf, off+16)) |
				plainStrMask(load64(buf, off+24))
			if m != 0 {
				return off
			}
			off += 32
		}
	}
	for off+16 <= len(buf) {
		m := plainStrMask(load64(buf, off)) | plainStrMask(load64(buf, off+8))
		if m != 0 {
			return off
		}
		off += 16
	}
	return off
}

// chunkHasStructural reports whether the 16-byte chunk at off contains
// a structural character (or a quote/backslash, which the structural
// pass must inspect to track string state). The caller guarantees
// off+16 <= len(buf).
func chunkHasStructural(buf []byte, off int) bool {
	return structuralMask(load64(buf, off))|structuralMask(load64(buf, off+8)) != 0
}

// chunkHasStructuralWide is the 32-byte variant of chunkHasStructural.
// The caller guarantees off+32 <= len(buf).
func chunkHasStructuralWide(buf []byte, off int) bool {
	return structuralMask(load64(buf, off))|
		structuralMask(load64(buf, off+8))|
		structuralMask(load64(buf, off+16))|
		structuralMask(load64(buf, off+24)) != 0
}

// findEscapeJSON returns the exact offset of the next byte that needs a
// JSON escape (control, quote or backslash), or len(buf). Boundary-
// exact: the escape decoder bulk-copies the run before the result.
func findEscapeJSON(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m0 := plainStrMask(load64(buf, off))
			m1 := plainStrMask(load64(buf, off+8))
			m2 := plainStrMask(load64(buf, off+16))
			m3 := plainStrMask(load64(buf, off+24))
			if m0|m1|m2|m3 == 0 {
				off += 32
				continue
			}
			switch {
			case m0 != 0:
				return off + firstLane(m0)
			case m1 != 0:
				return off + 8 + firstLane(m1)
			case m2 != 0:
				return off + 16 + firstLane(m2)
			default:
				return off + 24 + firstLane(m3)
			}
		}
	}
	for off+16 <= len(buf) {
		m0 := plainStrMask(load64(buf, off))
		m1 := plainStrMask(load64(buf, off+8))
		if m0|m1 == 0 {
			off += 16
			continue
		}
		if m0 != 0 {
			return off + firstLane(m0)
		}
		return off + 8 + firstLane(m1)
	}
	for off < len(buf) {
		if c := buf[off]; c < 0x20 || c == '"' || c == '\\' {
			return off
		}
		off++
	}
	return off
}

// Candidate masks for the three non-JSON escape modes. These kernels
// are chunk-granular: they run once per escape event and the encoder
// follows with a scalar step, so bit-exact positions are wasted work.

func htmlEscMask(w uint64) uint64 {
	return plainStrMask(w) |
		eqMask(w, '<') | eqMask(w, '>') |
		eqMask(w, '&') | eqMask(w, '/') |
		eqMask(w, 0xE2) // first byte of U+2028/U+2029
}

func jsEscMask(w uint64) uint64 {
	return plainStrMask(w) | eqMask(w, 0xE2)
}

func unicodeEscMask(w uint64) uint64 {
	return plainStrMask(w) | (w & swarMSB)
}

// findEscapeHTML returns the offset of the first chunk containing a
// byte the html_safe mode may need to escape, or len(buf).
func findEscapeHTML(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m := htmlEscMask(load64(buf, off)) |
				htmlEscMask(load64(buf, off+8)) |
				htmlEscMask(load64(buf, off+16)) |
				htmlEscMask(load64(buf, off+24))
			if m != 0 {
				return off
			}
			off += 32
		}
	}
	for off+16 <= len(buf) {
		m := htmlEscMask(load64(buf, off)) | htmlEscMask(load64(buf, off+8))
		if m != 0 {
			return off
		}
		off += 16
	}
	return off
}

// findEscapeJavaScript returns the offset of the first chunk containing
// a byte the javascript_safe mode may need to escape, or len(buf).
func findEscapeJavaScript(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m := jsEscMask(load64(buf, off)) |
				jsEscMask(load64(buf, off+8)) |
				jsEscMask(load64(buf, off+16)) |
				jsEscMask(load64(buf, off+24))
			if m != 0 {
				return off
			}
			off += 32
		}
	}
	for off+16 <= len(buf) {
		m := jsEscMask(load64(buf, off)) | jsEscMask(load64(buf, off+8))
		if m != 0 {
			return off
		}
		off += 16
	}
	return off
}

// findEscapeUnicode returns the offset of the first chunk containing a
// byte the unicode_safe mode must escape, or len(buf).
func findEscapeUnicode(buf []byte, off int) int {
	if wideKernels {
		for off+32 <= len(buf) {
			m := unicodeEscMask(load64(buf, off)) |
				unicodeEscMask(load64(buf, off+8)) |
				unicodeEscMask(load64(buf, off+16)) |
				unicodeEscMask(load64(buf, off+24))
			if m != 0 {
				return off
			}
			off += 32
		}
	}
	for off+16 <= len(buf) {
		m := unicodeEscMask(load64(buf, off)) | unicodeEscMask(load64(buf, off+8))
		if m != 0 {
			return off
		}
		off += 16
	}
	return off
}
