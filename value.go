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
)

// maxDepth is the hard bound on container nesting for both directions.
const maxDepth = 128

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindUint
	KindBigInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindTuple

	// Domain kinds, rendered specially by the encoder.
	KindDecimal
	KindDate
	KindTime
	KindDateTime
	KindURI
	KindSet
	KindRange
	KindFragment
)

var kindNames = [...]string{
	KindInvalid:  "(invalid)",
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindUint:     "uint",
	KindBigInt:   "bigint",
	KindFloat:    "float",
	KindString:   "string",
	KindArray:    "array",
	KindObject:   "object",
	KindTuple:    "tuple",
	KindDecimal:  "decimal",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindURI:      "uri",
	KindSet:      "set",
	KindRange:    "range",
	KindFragment: "fragment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "(invalid)"
}

// Value is one node of the host value tree: a tagged sum over the JSON
// scalar and container variants plus the recognized domain records.
// Values are cheap to copy; container and big-number arms share their
// backing storage.
type Value struct {
	kind Kind
	num  uint64
	str  []byte
	arr  []Value
	obj  *Object
	big  *big.Int
	dom  interface{}
}

// Member is a single object entry. Key is a string value after decoding;
// host-built objects may also use integer keys.
type Member struct {
	Key   Value
	Value Value
}

// Object holds the members of a JSON object. When ordered, member order
// is significant for equality; otherwise the object carries unordered
// mapping semantics with last-wins duplicate resolution.
type Object struct {
	members []Member
	ordered bool
}

// Decimal is an arbitrary-precision decimal record:
// sign * coefficient * 10^exp.
type Decimal struct {
	Sign int // +1 or -1
	Coef *big.Int
	Exp  int32
}

// Date is a calendar date. Year may be negative.
type Date struct {
	Year  int
	Month int
	Day   int
}

// TimeOfDay is a wall-clock time with microsecond precision.
// Precision is the number of fractional digits written when Micro is
// non-zero; 0 or a value above 6 writes all six. A zero Micro writes no
// fractional part at any precision.
type TimeOfDay struct {
	Hour      int
	Minute    int
	Second    int
	Micro     int
	Precision int
}

// DateTime is a date plus a time of day. Zoned selects between the naive
// variant (no offset emitted) and the zoned variant with a UTC offset in
// seconds.
type DateTime struct {
	Date   Date
	Time   TimeOfDay
	Offset int
	Zoned  bool
}

// URI holds the components of a URI. Empty components are omitted on
// output; Port <= 0 means no port.
type URI struct {
	Scheme   string
	Userinfo string
	Host     string
	Port     int
	Path     string
	Query    string
	Fragment string
}

// Range is an integer range. Step is emitted only when it differs from 1.
type Range struct {
	First int64
	Last  int64
	Step  int64
}

// Constructors, one per variant.

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int returns a signed integer value.
func Int(v int64) Value { return Value{kind: KindInt, num: uint64(v)} }

// Uint returns an unsigned integer value.
func Uint(v uint64) Value { return Value{kind: KindUint, num: v} }

// BigInt returns an arbitrary-precision integer value.
func BigInt(v *big.Int) Value { return Value{kind: KindBigInt, big: v} }

// Float returns a finite IEEE-754 double value.
func Float(v float64) Value { return Value{kind: KindFloat, num: math.Float64bits(v)} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: []byte(s)} }

// StringBytes returns a string value sharing the given bytes.
func StringBytes(b []byte) Value { return Value{kind: KindString, str: b} }

// Array returns an ordered sequence value.
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Tuple returns a tuple value; tuples serialize as JSON arrays.
func Tuple(elems ...Value) Value { return Value{kind: KindTuple, arr: elems} }

// Set returns an ordered-set value; sets serialize as JSON arrays.
func Set(elems ...Value) Value { return Value{kind: KindSet, arr: elems} }

// NewObject builds an object value from members. When ordered, member
// order participates in equality and is preserved verbatim.
func NewObject(members []Member, ordered bool) Value {
	return Value{kind: KindObject, obj: &Object{members: members, ordered: ordered}}
}

// DecimalValue returns a decimal domain value.
func DecimalValue(d Decimal) Value { return Value{kind: KindDecimal, dom: &d} }

// DateValue returns a date domain value.
func DateValue(d Date) Value { return Value{kind: KindDate, dom: &d} }

// TimeValue returns a time-of-day domain value.
func TimeValue(t TimeOfDay) Value { return Value{kind: KindTime, dom: &t} }

// DateTimeValue returns a datetime domain value.
func DateTimeValue(dt DateTime) Value { return Value{kind: KindDateTime, dom: &dt} }

// URIValue returns a URI domain value.
func URIValue(u URI) Value { return Value{kind: KindURI, dom: &u} }

// RangeValue returns an integer-range domain value.
func RangeValue(r Range) Value { return Value{kind: KindRange, dom: &r} }

// Fragment returns a pre-encoded fragment written verbatim by the encoder.
func Fragment(raw []byte) Value { return Value{kind: KindFragment, str: raw} }

// Accessors.

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean arm.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num != 0, true
}

// Int returns the signed integer arm.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return int64(v.num), true
}

// Uint returns the unsigned integer arm.
func (v Value) Uint() (uint64, bool) {
	if v.kind != KindUint {
		return 0, false
	}
	return v.num, true
}

// BigInt returns the arbitrary-precision integer arm.
func (v Value) BigInt() (*big.Int, bool) {
	if v.kind != KindBigInt {
		return nil, false
	}
	return v.big, true
}

// Float returns the double arm.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return math.Float64frombits(v.num), true
}

// StringBytes returns the string arm without copying.
func (v Value) StringBytes() ([]byte, bool) {
	if v.kind != KindString {
		return nil, false
	}
	return v.str, true
}

// String returns the string arm as a Go string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return string(v.str)
	default:
		return v.kind.String()
	}
}

// Elems returns the element slice of an array, tuple or set.
func (v Value) Elems() ([]Value, bool) {
	switch v.kind {
	case KindArray, KindTuple, KindSet:
		return v.arr, true
	}
	return nil, false
}

// Object returns the object arm.
func (v Value) Object() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Decimal returns the decimal arm.
func (v Value) Decimal() (Decimal, bool) {
	if d, ok := v.dom.(*Decimal); ok && v.kind == KindDecimal {
		return *d, true
	}
	return Decimal{}, false
}

// FragmentBytes returns the raw bytes of a fragment.
func (v Value) FragmentBytes() ([]byte, bool) {
	if v.kind != KindFragment {
		return nil, false
	}
	return v.str, true
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.members) }

// Ordered reports whether member order is significant.
func (o *Object) Ordered() bool { return o.ordered }

// Member returns the i-th member.
func (o *Object) Member(i int) Member { return o.members[i] }

// Members returns the member slice without copying.
func (o *Object) Members() []Member { return o.members }

// Get returns the value of the last member whose key is the given string.
func (o *Object) Get(key string) (Value, bool) {
	for i := len(o.members) - 1; i >= 0; i-- {
		if k := o.members[i].Key; k.kind == KindString && string(k.str) == key {
			return o.members[i].Value, true
		}
	}
	return Value{}, false
}

// Equal reports structural equality between two value trees. Mapping
// comparison ignores member order unless both objects were materialized
// as ordered; integers compare across the signed/unsigned/big arms when
// they denote the same number.
func (v Value) Equal(w Value) bool {
	if sameNumericKind(v.kind, w.kind) {
		return numericEqual(v, w)
	}
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.num == w.num
	case KindFloat:
		return v.num == w.num
	case KindString, KindFragment:
		return bytes.Equal(v.str, w.str)
	case KindArray, KindTuple, KindSet:
		if len(v.arr) != len(w.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(w.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.equal(w.obj)
	case KindDecimal:
		a := v.dom.(*Decimal)
		b := w.dom.(*Decimal)
		return a.Sign == b.Sign && a.Exp == b.Exp && a.Coef.Cmp(b.Coef) == 0
	case KindDate:
		return *v.dom.(*Date) == *w.dom.(*Date)
	case KindTime:
		return *v.dom.(*TimeOfDay) == *w.dom.(*TimeOfDay)
	case KindDateTime:
		return *v.dom.(*DateTime) == *w.dom.(*DateTime)
	case KindURI:
		return *v.dom.(*URI) == *w.dom.(*URI)
	case KindRange:
		return *v.dom.(*Range) == *w.dom.(*Range)
	}
	return false
}

func sameNumericKind(a, b Kind) bool {
	num := func(k Kind) bool { return k == KindInt || k == KindUint || k == KindBigInt }
	return num(a) && num(b)
}

func numericEqual(v, w Value) bool {
	vi, vok := v.toBig()
	wi, wok := w.toBig()
	if !vok || !wok {
		return false
	}
	return vi.Cmp(wi) == 0
}

func (v Value) toBig() (*big.Int, bool) {
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

func (o *Object) equal(p *Object) bool {
	if len(o.members) != len(p.members) {
		return false
	}
	if o.ordered && p.ordered {
		for i := range o.members {
			if !o.members[i].Key.Equal(p.members[i].Key) {
				return false
			}
			if !o.members[i].Value.Equal(p.members[i].Value) {
				return false
			}
		}
		return true
	}
	// Mapping comparison: each key's last-wins value must match.
	for i := range o.members {
		k := o.members[i].Key
		if k.kind != KindString {
			if !p.containsMember(o.members[i]) {
				return false
			}
			continue
		}
		ov, _ := o.Get(string(k.str))
		pv, ok := p.Get(string(k.str))
		if !ok || !ov.Equal(pv) {
			return false
		}
	}
	return true
}

func (o *Object) containsMember(m Member) bool {
	for i := range o.members {
		if o.members[i].Key.Equal(m.Key) && o.members[i].Value.Equal(m.Value) {
			return true
		}
	}
	return false
}
