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
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	jsoniter "github.com/json-iterator/go"
)

// homogeneousArray builds the workload the shape cache targets: a large
// array of objects sharing key order.
func homogeneousArray(n int) []byte {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"id":`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`,"name":"user-`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`","active":true,"score":`)
		sb.WriteString(strconv.FormatFloat(float64(i)*1.5, 'f', -1, 64))
		sb.WriteString(`}`)
	}
	sb.WriteByte(']')
	return []byte(sb.String())
}

func asciiHeavyDoc() []byte {
	var sb strings.Builder
	sb.WriteString(`{"title":"`)
	sb.WriteString(strings.Repeat("lorem ipsum dolor sit amet ", 40))
	sb.WriteString(`","tags":[`)
	for i := 0; i < 50; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`"tag-`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte('"')
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

func BenchmarkDecodeHomogeneous(b *testing.B) {
	msg := homogeneousArray(1000)
	b.Run("swarjson", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := Decode(msg, nil); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("swarjson-intern", func(b *testing.B) {
		opts := DefaultDecodeOptions()
		opts.InternKeys = true
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := Decode(msg, &opts); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("encoding-json", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var dst []interface{}
			if err := json.Unmarshal(msg, &dst); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("jsoniter", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var dst []interface{}
			if err := jsoniter.Unmarshal(msg, &dst); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("sonic", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var dst []interface{}
			if err := sonic.Unmarshal(msg, &dst); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkDecodeASCIIHeavy(b *testing.B) {
	msg := asciiHeavyDoc()
	b.SetBytes(int64(len(msg)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(msg, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeNoCopyStrings(b *testing.B) {
	msg := asciiHeavyDoc()
	opts := DefaultDecodeOptions()
	opts.CopyStrings = false
	b.SetBytes(int64(len(msg)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(msg, &opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	v, err := Decode(homogeneousArray(1000), nil)
	if err != nil {
		b.Fatal(err)
	}
	out, _ := Encode(v, nil)
	b.SetBytes(int64(len(out)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(v, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeEscapeModes(b *testing.B) {
	v := String(strings.Repeat("safe ascii text with the odd \"quote\" ", 50))
	for _, bench := range []struct {
		name string
		mode EscapeMode
	}{
		{"json", EscapeJSON},
		{"html_safe", EscapeHTMLSafe},
		{"unicode_safe", EscapeUnicodeSafe},
		{"javascript_safe", EscapeJavaScriptSafe},
	} {
		b.Run(bench.name, func(b *testing.B) {
			opts := DefaultEncodeOptions()
			opts.Escape = bench.mode
			out, _ := Encode(v, &opts)
			b.SetBytes(int64(len(out)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Encode(v, &opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSkipWhitespace(b *testing.B) {
	buf := []byte(strings.Repeat("  \n    \t  \r\n        ", 100) + "{")
	b.SetBytes(int64(len(buf)))
	for i := 0; i < b.N; i++ {
		if skipWhitespace(buf, 0) != len(buf)-1 {
			b.Fatal("wrong boundary")
		}
	}
}

func BenchmarkStructuralIndex(b *testing.B) {
	msg := homogeneousArray(1000)
	b.SetBytes(int64(len(msg)))
	for i := 0; i < b.N; i++ {
		buildStructuralIndex(msg)
	}
}
