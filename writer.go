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
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Writer is the encoder's output abstraction: append bytes, then
// finalize to the completed output.
type Writer interface {
	Write(p []byte) (int, error)
	Finalize() ([]byte, error)
}

// minGrowStep is the smallest capacity increase on buffer growth.
const minGrowStep = 128

// Buffer is a growable byte buffer that finalizes to an exact-size
// byte slice. Growth doubles or jumps straight to the required size,
// whichever is larger.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *Buffer) grow(n int) {
	required := len(b.buf) + n
	if required <= cap(b.buf) {
		return
	}
	newCap := cap(b.buf) * 2
	if newCap < required {
		newCap = required
	}
	if newCap < cap(b.buf)+minGrowStep {
		newCap = cap(b.buf) + minGrowStep
	}
	grown := make([]byte, len(b.buf), newCap)
	copy(grown, b.buf)
	b.buf = grown
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.buf) }

// Truncate discards all but the first n bytes.
func (b *Buffer) Truncate(n int) { b.buf = b.buf[:n] }

// Finalize returns the written bytes with capacity clamped to length,
// so appending to the result reallocates instead of writing into the
// buffer's spare capacity. The result shares the buffer's backing array.
func (b *Buffer) Finalize() ([]byte, error) {
	return b.buf[:len(b.buf):len(b.buf)], nil
}

// CompressedWriter forwards writes through a compression encoder and
// finalizes by flushing and taking the compressed bytes. Algorithms are
// selected by name: "gzip" (optionally "gzip:N" with a level), "zstd"
// or "s2".
type CompressedWriter struct {
	out bytes.Buffer
	gz  *gzip.Writer
	zs  *zstd.Encoder
	s2w *s2.Writer
}

// NewCompressedWriter builds a compressing writer for the named
// algorithm.
func NewCompressedWriter(name string) (*CompressedWriter, error) {
	w := &CompressedWriter{}
	algo, levelStr, hasLevel := strings.Cut(name, ":")
	switch algo {
	case "gzip":
		level := gzip.DefaultCompression
		if hasLevel {
			n, err := strconv.Atoi(levelStr)
			if err != nil {
				return nil, fmt.Errorf("bad gzip level %q: %w", levelStr, err)
			}
			level = n
		}
		gz, err := gzip.NewWriterLevel(&w.out, level)
		if err != nil {
			return nil, err
		}
		w.gz = gz
	case "zstd":
		zs, err := zstd.NewWriter(&w.out, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		w.zs = zs
	case "s2":
		w.s2w = s2.NewWriter(&w.out)
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
	return w, nil
}

func (w *CompressedWriter) Write(p []byte) (int, error) {
	switch {
	case w.gz != nil:
		return w.gz.Write(p)
	case w.zs != nil:
		return w.zs.Write(p)
	default:
		return w.s2w.Write(p)
	}
}

// Finalize flushes the compressor and returns the compressed stream.
func (w *CompressedWriter) Finalize() ([]byte, error) {
	var err error
	switch {
	case w.gz != nil:
		err = w.gz.Close()
	case w.zs != nil:
		err = w.zs.Close()
	default:
		err = w.s2w.Close()
	}
	if err != nil {
		return nil, err
	}
	return w.out.Bytes(), nil
}
