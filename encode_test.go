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
	"math"
	"math/big"
	"strings"
	"testing"
)

func mustEncode(t *testing.T, v Value, opts *EncodeOptions) string {
	t.Helper()
	out, err := Encode(v, opts)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func member(k string, v Value) Member {
	return Member{Key: String(k), Value: v}
}

func TestEncodeScalars(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null(), "null"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Int(0), "0"},
		{Int(-42), "-42"},
		{Uint(18446744073709551615), "18446744073709551615"},
		{BigInt(mustBig("123456789012345678901234567890")), "123456789012345678901234567890"},
		{Float(1.5), "1.5"},
		{Float(0), "0.0"},
		{Float(1000), "1000.0"},
		{Float(1e21), "1e+21"},
		{Float(1e-7), "1e-7"},
		{String("hi"), `"hi"`},
		{Array(), "[]"},
		{Array(Int(1), Int(2)), "[1,2]"},
		{Tuple(Int(1), String("a")), `[1,"a"]`},
		{Set(Int(3), Int(1)), "[3,1]"},
		{NewObject(nil, false), "{}"},
		{NewObject([]Member{member("a", Int(1))}, false), `{"a":1}`},
	}
	for _, tt := range tests {
		if got := mustEncode(t, tt.v, nil); got != tt.want {
			t.Errorf("Encode(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestEncodeNonFinite(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := Encode(Float(f), nil)
		ee, ok := err.(*EncodeError)
		if !ok || ee.Kind != ErrNonFiniteFloat {
			t.Fatalf("Encode(%v): got %v", f, err)
		}
	}
}

func TestEscapeModes(t *testing.T) {
	e2028 := "\u2028"
	e2029 := "\u2029"
	tests := []struct {
		name string
		mode EscapeMode
		in   string
		want string
	}{
		{"json-plain", EscapeJSON, "hello", `"hello"`},
		{"json-quote", EscapeJSON, `a"b`, "\"a\\\"b\""},
		{"json-newline", EscapeJSON, "a\nb", "\"a\\nb\""},
		{"json-control", EscapeJSON, "\x01", "\"\\u0001\""},
		{"json-solidus-verbatim", EscapeJSON, "a/b", `"a/b"`},
		{"json-nonascii-verbatim", EscapeJSON, "caf\u00e9", "\"caf\u00e9\""},
		{"json-2028-verbatim", EscapeJSON, e2028, `"` + e2028 + `"`},

		{"html-script", EscapeHTMLSafe, "<script>", "\"\\u003cscript\\u003e\""},
		{"html-amp", EscapeHTMLSafe, "a & b", "\"a \\u0026 b\""},
		{"html-solidus", EscapeHTMLSafe, "a/b", "\"a\\/b\""},
		{"html-2028", EscapeHTMLSafe, "x" + e2028 + "y", "\"x\\u2028y\""},
		{"html-2029", EscapeHTMLSafe, e2029, "\"\\u2029\""},
		{"html-e2-not-sep", EscapeHTMLSafe, "\u20ac", "\"\u20ac\""}, // E2 82 AC stays verbatim
		{"html-quote", EscapeHTMLSafe, `a"b`, "\"a\\\"b\""},

		{"js-2028", EscapeJavaScriptSafe, e2028, "\"\\u2028\""},
		{"js-2029", EscapeJavaScriptSafe, e2029, "\"\\u2029\""},
		{"js-angle-verbatim", EscapeJavaScriptSafe, "<>", `"<>"`},
		{"js-euro-verbatim", EscapeJavaScriptSafe, "\u20ac", "\"\u20ac\""},

		{"unicode-ascii", EscapeUnicodeSafe, "abc", `"abc"`},
		{"unicode-latin", EscapeUnicodeSafe, "caf\u00e9", "\"caf\\u00e9\""},
		{"unicode-cjk", EscapeUnicodeSafe, "\u4e16\u754c", "\"\\u4e16\\u754c\""},
		{"unicode-emoji", EscapeUnicodeSafe, "\U0001F600", "\"\\ud83d\\ude00\""},
		{"unicode-control", EscapeUnicodeSafe, "\t", "\"\\t\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultEncodeOptions()
			opts.Escape = tt.mode
			got := mustEncode(t, String(tt.in), &opts)
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// Escape completeness: parsing the encoded form yields the original
// string in every mode.
func TestEscapeCompleteness(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii",
		"quotes \" and \\ backslashes",
		"control \x01\x02\x1f bytes \t\n\r",
		"html <b>&amp;</b> a/b",
		"caf\u00e9 \u4e16\u754c \U0001F600",
		"separators \u2028 and \u2029",
		strings.Repeat("long ascii with no escapes at all ", 20),
		strings.Repeat("esc\"aped\\", 50),
	}
	modes := []EscapeMode{EscapeJSON, EscapeHTMLSafe, EscapeUnicodeSafe, EscapeJavaScriptSafe}
	for _, s := range inputs {
		for _, mode := range modes {
			opts := DefaultEncodeOptions()
			opts.Escape = mode
			out := mustEncode(t, String(s), &opts)
			back, err := Decode([]byte(out), nil)
			if err != nil {
				t.Fatalf("mode %d: decode(%s): %v", mode, out, err)
			}
			if !back.Equal(String(s)) {
				t.Fatalf("mode %d: %q round-tripped to %q", mode, s, back.String())
			}
		}
	}
}

// Scenario 2: the emoji round trip in unicode_safe and default modes.
func TestEmojiScenario(t *testing.T) {
	v, err := Decode([]byte("\"\\uD83D\\uDE00\""), nil)
	if err != nil {
		t.Fatal(err)
	}
	sb, _ := v.StringBytes()
	if string(sb) != "\U0001F600" {
		t.Fatalf("decoded %x", sb)
	}
	opts := DefaultEncodeOptions()
	opts.Escape = EscapeUnicodeSafe
	if got := mustEncode(t, v, &opts); got != "\"\\ud83d\\ude00\"" {
		t.Fatalf("unicode_safe: %s", got)
	}
	if got := mustEncode(t, v, nil); got != "\"\U0001F600\"" {
		t.Fatalf("default: %s", got)
	}
}

func TestPrettyPrint(t *testing.T) {
	v := NewObject([]Member{
		member("a", Int(1)),
		member("b", Array(Int(2), Int(3))),
	}, true)

	opts := DefaultEncodeOptions()
	opts.Indent = 2
	want := "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}"
	if got := mustEncode(t, v, &opts); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	// Custom separators.
	opts.LineSeparator = []byte("\r\n")
	opts.AfterColon = []byte("")
	opts.IndentUnit = []byte("\t")
	want = "{\r\n\t\"a\":1,\r\n\t\"b\":[\r\n\t\t2,\r\n\t\t3\r\n\t]\r\n}"
	if got := mustEncode(t, v, &opts); got != want {
		t.Fatalf("custom separators:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSortKeys(t *testing.T) {
	v := NewObject([]Member{
		member("zebra", Int(1)),
		member("apple", Int(2)),
		member("mango", Int(3)),
	}, false)
	opts := DefaultEncodeOptions()
	opts.SortKeys = true
	if got := mustEncode(t, v, &opts); got != `{"apple":2,"mango":3,"zebra":1}` {
		t.Fatalf("got %s", got)
	}
}

func TestStrictKeys(t *testing.T) {
	v := NewObject([]Member{
		member("a", Int(1)),
		member("a", Int(2)),
	}, true)
	opts := DefaultEncodeOptions()
	opts.StrictKeys = true
	_, err := Encode(v, &opts)
	ee, ok := err.(*EncodeError)
	if !ok || ee.Kind != ErrDuplicateOutputKey {
		t.Fatalf("got %v", err)
	}
	if _, err := Encode(v, nil); err != nil {
		t.Fatalf("non-strict: %v", err)
	}
}

func TestIntegerKeys(t *testing.T) {
	v := NewObject([]Member{
		{Key: Int(7), Value: String("seven")},
		{Key: Uint(8), Value: String("eight")},
	}, true)
	if got := mustEncode(t, v, nil); got != `{"7":"seven","8":"eight"}` {
		t.Fatalf("got %s", got)
	}

	bad := NewObject([]Member{{Key: Float(1.5), Value: Null()}}, true)
	_, err := Encode(bad, nil)
	ee, ok := err.(*EncodeError)
	if !ok || ee.Kind != ErrInvalidMapKey {
		t.Fatalf("got %v", err)
	}
}

func TestEncodeDepthLimit(t *testing.T) {
	v := Int(1)
	for i := 0; i < 200; i++ {
		v = Array(v)
	}
	_, err := Encode(v, nil)
	ee, ok := err.(*EncodeError)
	if !ok || ee.Kind != ErrDepthExceeded {
		t.Fatalf("got %v", err)
	}
}

func TestDomainValues(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"decimal", DecimalValue(Decimal{Sign: 1, Coef: big.NewInt(12345), Exp: -2}), `"123.45"`},
		{"decimal-neg", DecimalValue(Decimal{Sign: -1, Coef: big.NewInt(12345), Exp: -2}), `"-123.45"`},
		{"decimal-int", DecimalValue(Decimal{Sign: 1, Coef: big.NewInt(5), Exp: 0}), `"5"`},
		{"decimal-zeros", DecimalValue(Decimal{Sign: 1, Coef: big.NewInt(1), Exp: 3}), `"1000"`},
		{"decimal-small", DecimalValue(Decimal{Sign: 1, Coef: big.NewInt(123), Exp: -5}), `"0.00123"`},
		{"decimal-lead", DecimalValue(Decimal{Sign: 1, Coef: big.NewInt(1), Exp: -3}), `"0.001"`},

		{"date", DateValue(Date{Year: 2023, Month: 7, Day: 4}), `"2023-07-04"`},
		{"date-pad", DateValue(Date{Year: 33, Month: 1, Day: 2}), `"0033-01-02"`},
		{"date-neg-year", DateValue(Date{Year: -5, Month: 12, Day: 31}), `"-005-12-31"`},

		{"time", TimeValue(TimeOfDay{Hour: 13, Minute: 5, Second: 9}), `"13:05:09"`},
		{
			"time-micro",
			TimeValue(TimeOfDay{Hour: 1, Minute: 2, Second: 3, Micro: 456000, Precision: 6}),
			`"01:02:03.456000"`,
		},
		{
			"time-precision",
			TimeValue(TimeOfDay{Hour: 1, Minute: 2, Second: 3, Micro: 456000, Precision: 3}),
			`"01:02:03.456"`,
		},
		{
			"naive-datetime",
			DateTimeValue(DateTime{
				Date: Date{Year: 2023, Month: 7, Day: 4},
				Time: TimeOfDay{Hour: 13, Minute: 5, Second: 9},
			}),
			`"2023-07-04T13:05:09"`,
		},
		{
			"datetime-utc",
			DateTimeValue(DateTime{
				Date:  Date{Year: 2023, Month: 7, Day: 4},
				Time:  TimeOfDay{Hour: 13, Minute: 5, Second: 9},
				Zoned: true,
			}),
			`"2023-07-04T13:05:09Z"`,
		},
		{
			"datetime-offset",
			DateTimeValue(DateTime{
				Date:   Date{Year: 2023, Month: 7, Day: 4},
				Time:   TimeOfDay{Hour: 13, Minute: 5, Second: 9},
				Offset: 2*3600 + 30*60,
				Zoned:  true,
			}),
			`"2023-07-04T13:05:09+02:30"`,
		},
		{
			"datetime-neg-offset",
			DateTimeValue(DateTime{
				Date:   Date{Year: 2023, Month: 7, Day: 4},
				Time:   TimeOfDay{Hour: 13, Minute: 5, Second: 9},
				Offset: -5 * 3600,
				Zoned:  true,
			}),
			`"2023-07-04T13:05:09-05:00"`,
		},

		{
			"uri",
			URIValue(URI{Scheme: "https", Host: "example.com", Port: 8443, Path: "/x", Query: "a=1", Fragment: "top"}),
			`"https://example.com:8443/x?a=1#top"`,
		},
		{
			"uri-default-port",
			URIValue(URI{Scheme: "https", Host: "example.com", Port: 443, Path: "/"}),
			`"https://example.com/"`,
		},
		{
			"uri-http-default",
			URIValue(URI{Scheme: "http", Host: "example.com", Port: 80}),
			`"http://example.com"`,
		},
		{
			"uri-userinfo",
			URIValue(URI{Scheme: "http", Userinfo: "u", Host: "h", Port: 81}),
			`"http://u@h:81"`,
		},

		{"range", RangeValue(Range{First: 1, Last: 5, Step: 1}), `{"first":1,"last":5}`},
		{"range-step", RangeValue(Range{First: 1, Last: 9, Step: 2}), `{"first":1,"last":9,"step":2}`},
		{"set", Set(Int(1), Int(2), Int(3)), `[1,2,3]`},
		{"fragment", Fragment([]byte(`{"pre":"encoded"}`)), `{"pre":"encoded"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustEncode(t, tt.v, nil); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// Struct-tagged mappings render through the domain writers unless lean.
func TestTaggedStructMappings(t *testing.T) {
	rangeObj := NewObject([]Member{
		member("__struct__", String("integer-range")),
		member("step", Int(1)),
		member("first", Int(1)),
		member("last", Int(5)),
	}, false)
	// Scenario 8: step omitted because it equals 1.
	if got := mustEncode(t, rangeObj, nil); got != `{"first":1,"last":5}` {
		t.Fatalf("integer-range: %s", got)
	}

	// Lean mode treats it as a generic mapping and drops the marker.
	opts := DefaultEncodeOptions()
	opts.Lean = true
	opts.SortKeys = true
	if got := mustEncode(t, rangeObj, &opts); got != `{"first":1,"last":5,"step":1}` {
		t.Fatalf("lean: %s", got)
	}

	dec := NewObject([]Member{
		member("__struct__", String("decimal")),
		member("coef", Int(314)),
		member("exp", Int(-2)),
		member("sign", Int(1)),
	}, false)
	if got := mustEncode(t, dec, nil); got != `"3.14"` {
		t.Fatalf("decimal: %s", got)
	}

	date := NewObject([]Member{
		member("__struct__", String("date")),
		member("year", Int(2020)),
		member("month", Int(2)),
		member("day", Int(29)),
	}, false)
	if got := mustEncode(t, date, nil); got != `"2020-02-29"` {
		t.Fatalf("date: %s", got)
	}

	tm := NewObject([]Member{
		member("__struct__", String("time")),
		member("hour", Int(6)),
		member("minute", Int(7)),
		member("second", Int(8)),
		member("microsecond", Tuple(Int(500000), Int(3))),
	}, false)
	if got := mustEncode(t, tm, nil); got != `"06:07:08.500"` {
		t.Fatalf("time: %s", got)
	}

	set := NewObject([]Member{
		member("__struct__", String("ordered-set")),
		member("elements", Array(Int(3), Int(1))),
	}, false)
	if got := mustEncode(t, set, nil); got != `[3,1]` {
		t.Fatalf("ordered-set: %s", got)
	}

	frag := NewObject([]Member{
		member("__struct__", String("fragment")),
		member("encode", Array(String("[1,"), String("2]"))),
	}, false)
	if got := mustEncode(t, frag, nil); got != `[1,2]` {
		t.Fatalf("fragment iodata: %s", got)
	}

	// Unknown tags and malformed fields fall back to the generic
	// writer, with the marker key skipped.
	unknown := NewObject([]Member{
		member("__struct__", String("mystery")),
		member("x", Int(1)),
	}, false)
	if got := mustEncode(t, unknown, nil); got != `{"x":1}` {
		t.Fatalf("unknown tag: %s", got)
	}
	malformed := NewObject([]Member{
		member("__struct__", String("date")),
		member("year", String("not a number")),
	}, false)
	if got := mustEncode(t, malformed, nil); got != `{"year":"not a number"}` {
		t.Fatalf("malformed struct: %s", got)
	}
}

// Scenario 7.
func TestHTMLSafeObject(t *testing.T) {
	v := NewObject([]Member{member("a", String("<script>"))}, false)
	opts := DefaultEncodeOptions()
	opts.Escape = EscapeHTMLSafe
	if got := mustEncode(t, v, &opts); got != "{\"a\":\"\\u003cscript\\u003e\"}" {
		t.Fatalf("got %s", got)
	}
}

func TestEncodeFields(t *testing.T) {
	out, err := EncodeFields([]Field{
		{RawKey: []byte(`"id":`), Value: Int(7)},
		{RawKey: []byte(`"name":`), Value: String("x")},
		{RawKey: []byte(`"blob":`), Value: Fragment([]byte(`[1,2,3]`))},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"id":7,"name":"x","blob":[1,2,3]}` {
		t.Fatalf("got %s", out)
	}

	out, err = EncodeFields(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "{}" {
		t.Fatalf("empty: %s", out)
	}
}
