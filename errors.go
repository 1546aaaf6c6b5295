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

import "fmt"

// ErrKind classifies decode and encode failures.
type ErrKind uint8

const (
	// Decoder error kinds.
	ErrInputTooLarge ErrKind = iota + 1
	ErrUnexpectedChar
	ErrUnexpectedEOF
	ErrInvalidNumber
	ErrDigitLimit
	ErrUnterminatedString
	ErrUnescapedControl
	ErrInvalidEscape
	ErrInvalidUnicodeEscape
	ErrLoneSurrogate
	ErrInvalidUTF8
	ErrDuplicateKey
	ErrDepthExceeded
	ErrTrailingChars

	// Encoder error kinds.
	ErrNonFiniteFloat
	ErrInvalidMapKey
	ErrDuplicateOutputKey
	ErrIO
)

var errKindNames = map[ErrKind]string{
	ErrInputTooLarge:        "input_too_large",
	ErrUnexpectedChar:       "unexpected_character",
	ErrUnexpectedEOF:        "unexpected_end_of_input",
	ErrInvalidNumber:        "invalid_number",
	ErrDigitLimit:           "number_digit_limit_exceeded",
	ErrUnterminatedString:   "unterminated_string",
	ErrUnescapedControl:     "unescaped_control_character",
	ErrInvalidEscape:        "invalid_escape_sequence",
	ErrInvalidUnicodeEscape: "invalid_unicode_escape",
	ErrLoneSurrogate:        "lone_surrogate",
	ErrInvalidUTF8:          "invalid_utf8",
	ErrDuplicateKey:         "duplicate_object_key",
	ErrDepthExceeded:        "nesting_depth_exceeded",
	ErrTrailingChars:        "trailing_characters",
	ErrNonFiniteFloat:       "non_finite_float",
	ErrInvalidMapKey:        "invalid_map_key_type",
	ErrDuplicateOutputKey:   "duplicate_output_key",
	ErrIO:                   "io_or_allocation",
}

func (k ErrKind) String() string {
	if s, ok := errKindNames[k]; ok {
		return s
	}
	return "(invalid error kind)"
}

// DecodeError is returned for malformed or rejected input.
// Offset is the byte offset into the source where the problem was detected.
type DecodeError struct {
	Kind   ErrKind
	Offset int
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
}

func decErr(kind ErrKind, offset int) error {
	return &DecodeError{Kind: kind, Offset: offset}
}

// EncodeError is returned when a value tree cannot be serialized.
type EncodeError struct {
	Kind ErrKind
	Msg  string
}

func (e *EncodeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func encErr(kind ErrKind, msg string) error {
	return &EncodeError{Kind: kind, Msg: msg}
}
