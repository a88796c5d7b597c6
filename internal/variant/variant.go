// Package variant implements the tagged payload carried by queue events.
//
// A Variant holds one of a fixed set of kinds. The To* converters are total:
// they convert between numeric kinds and return a type-appropriate default
// when a conversion makes no sense. At and Value are contract-checked and
// panic when called on the wrong kind.
//
// Variants have value semantics. Copying a Variant never shares mutable
// state with the original: constructors copy their inputs, ToArray and ToMap
// return deep copies and the mutators are copy-on-write.
package variant

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Kind is the type tag of a Variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt       // int32
	KindUInt      // uint32
	KindLongLong  // int64
	KindULongLong // uint64
	KindFloat     // float32
	KindDouble    // float64
	KindPointer   // opaque Go value
	KindString
	KindArray
	KindMap
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "int",
	KindUInt:      "uint",
	KindLongLong:  "longlong",
	KindULongLong: "ulonglong",
	KindFloat:     "float",
	KindDouble:    "double",
	KindPointer:   "pointer",
	KindString:    "string",
	KindArray:     "array",
	KindMap:       "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Variant is a tagged union. The zero value is Null.
type Variant struct {
	kind Kind
	i    int64   // Bool (0/1), Int, LongLong
	u    uint64  // UInt, ULongLong
	f    float64 // Float, Double
	s    string
	p    any
	arr  []Variant
	m    map[string]Variant
}

func Null() Variant              { return Variant{} }
func Bool(b bool) Variant        { return Variant{kind: KindBool, i: b2i(b)} }
func Int(v int32) Variant        { return Variant{kind: KindInt, i: int64(v)} }
func UInt(v uint32) Variant      { return Variant{kind: KindUInt, u: uint64(v)} }
func LongLong(v int64) Variant   { return Variant{kind: KindLongLong, i: v} }
func ULongLong(v uint64) Variant { return Variant{kind: KindULongLong, u: v} }
func Float(v float32) Variant    { return Variant{kind: KindFloat, f: float64(v)} }
func Double(v float64) Variant   { return Variant{kind: KindDouble, f: v} }
func String(s string) Variant    { return Variant{kind: KindString, s: s} }

// Pointer wraps an opaque value such as a callback or a handle owned by a
// collaborator. Nil yields a Pointer variant whose ToPointer is nil.
func Pointer(p any) Variant { return Variant{kind: KindPointer, p: p} }

// Array builds an Array variant from deep copies of elems.
func Array(elems ...Variant) Variant {
	return Variant{kind: KindArray, arr: cloneSlice(elems)}
}

// Map builds a Map variant from a deep copy of m.
func Map(m map[string]Variant) Variant {
	return Variant{kind: KindMap, m: cloneMap(m)}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (v Variant) Type() Kind { return v.kind }

func (v Variant) IsNull() bool    { return v.kind == KindNull }
func (v Variant) IsBool() bool    { return v.kind == KindBool }
func (v Variant) IsPointer() bool { return v.kind == KindPointer }
func (v Variant) IsString() bool  { return v.kind == KindString }
func (v Variant) IsArray() bool   { return v.kind == KindArray }
func (v Variant) IsMap() bool     { return v.kind == KindMap }

// IsInteger reports whether v holds one of the four integer kinds.
func (v Variant) IsInteger() bool {
	switch v.kind {
	case KindInt, KindUInt, KindLongLong, KindULongLong:
		return true
	}
	return false
}

func (v Variant) IsFloating() bool { return v.kind == KindFloat || v.kind == KindDouble }
func (v Variant) IsNumeric() bool  { return v.IsInteger() || v.IsFloating() }

// ToBool: numerics are true when non-zero, strings go through
// strconv.ParseBool.
func (v Variant) ToBool() bool {
	switch v.kind {
	case KindBool, KindInt, KindLongLong:
		return v.i != 0
	case KindUInt, KindULongLong:
		return v.u != 0
	case KindFloat, KindDouble:
		return v.f != 0
	case KindString:
		b, _ := strconv.ParseBool(v.s)
		return b
	}
	return false
}

func (v Variant) ToInt64() int64 {
	switch v.kind {
	case KindBool, KindInt, KindLongLong:
		return v.i
	case KindUInt, KindULongLong:
		return int64(v.u)
	case KindFloat, KindDouble:
		return floatToInt64(v.f)
	case KindString:
		if n, err := strconv.ParseInt(v.s, 0, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return floatToInt64(f)
		}
	}
	return 0
}

func (v Variant) ToUint64() uint64 {
	switch v.kind {
	case KindBool, KindInt, KindLongLong:
		return uint64(v.i)
	case KindUInt, KindULongLong:
		return v.u
	case KindFloat, KindDouble:
		if v.f <= 0 || math.IsNaN(v.f) {
			return 0
		}
		if v.f >= math.MaxUint64 {
			return math.MaxUint64
		}
		return uint64(v.f)
	case KindString:
		if n, err := strconv.ParseUint(v.s, 0, 64); err == nil {
			return n
		}
		return uint64(v.ToInt64())
	}
	return 0
}

func (v Variant) ToInt() int32   { return int32(v.ToInt64()) }
func (v Variant) ToUInt() uint32 { return uint32(v.ToUint64()) }

func (v Variant) ToDouble() float64 {
	switch v.kind {
	case KindBool, KindInt, KindLongLong:
		return float64(v.i)
	case KindUInt, KindULongLong:
		return float64(v.u)
	case KindFloat, KindDouble:
		return v.f
	case KindString:
		f, _ := strconv.ParseFloat(v.s, 64)
		return f
	}
	return 0
}

func (v Variant) ToFloat() float32 { return float32(v.ToDouble()) }

// ToPointer returns the wrapped value of a Pointer variant, nil otherwise.
func (v Variant) ToPointer() any {
	if v.kind == KindPointer {
		return v.p
	}
	return nil
}

// ToString formats scalars. Null, Pointer, Array and Map yield "".
func (v Variant) ToString() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	case KindInt, KindLongLong:
		return strconv.FormatInt(v.i, 10)
	case KindUInt, KindULongLong:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return ""
}

// ToArray returns a deep copy of the elements, nil for non-arrays.
func (v Variant) ToArray() []Variant {
	if v.kind != KindArray {
		return nil
	}
	return cloneSlice(v.arr)
}

// ToMap returns a deep copy of the entries, nil for non-maps.
func (v Variant) ToMap() map[string]Variant {
	if v.kind != KindMap {
		return nil
	}
	return cloneMap(v.m)
}

// At returns the i-th element of an Array. It panics if v is not an Array or
// i is out of range.
func (v Variant) At(i int) Variant {
	v.mustBe(KindArray, "At")
	if i < 0 || i >= len(v.arr) {
		panic(fmt.Sprintf("variant: At(%d) out of range [0,%d)", i, len(v.arr)))
	}
	return v.arr[i].Clone()
}

// Value returns the entry for key of a Map, Null when absent. It panics if v
// is not a Map.
func (v Variant) Value(key string) Variant {
	v.mustBe(KindMap, "Value")
	return v.m[key].Clone()
}

// Contains reports whether a Map has key. It panics if v is not a Map.
func (v Variant) Contains(key string) bool {
	v.mustBe(KindMap, "Contains")
	_, ok := v.m[key]
	return ok
}

// Keys returns the sorted keys of a Map, nil otherwise.
func (v Variant) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Length is the element count of an Array or the byte length of a String.
func (v Variant) Length() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindString:
		return len(v.s)
	}
	return 0
}

// Size is the entry count of a Map or the element count of an Array.
func (v Variant) Size() int {
	switch v.kind {
	case KindMap:
		return len(v.m)
	case KindArray:
		return len(v.arr)
	}
	return 0
}

// Append adds elems to an Array in a new backing slice. It panics if v is
// not an Array.
func (v *Variant) Append(elems ...Variant) {
	v.mustBe(KindArray, "Append")
	arr := make([]Variant, len(v.arr), len(v.arr)+len(elems))
	copy(arr, v.arr)
	for _, e := range elems {
		arr = append(arr, e.Clone())
	}
	v.arr = arr
}

// SetAt replaces the i-th element of an Array in a new backing slice.
func (v *Variant) SetAt(i int, e Variant) {
	v.mustBe(KindArray, "SetAt")
	if i < 0 || i >= len(v.arr) {
		panic(fmt.Sprintf("variant: SetAt(%d) out of range [0,%d)", i, len(v.arr)))
	}
	arr := make([]Variant, len(v.arr))
	copy(arr, v.arr)
	arr[i] = e.Clone()
	v.arr = arr
}

// Insert sets key in a Map, copying the map first.
func (v *Variant) Insert(key string, e Variant) {
	v.mustBe(KindMap, "Insert")
	m := make(map[string]Variant, len(v.m)+1)
	for k, x := range v.m {
		m[k] = x
	}
	m[key] = e.Clone()
	v.m = m
}

// Remove deletes key from a Map, copying the map first.
func (v *Variant) Remove(key string) {
	v.mustBe(KindMap, "Remove")
	if _, ok := v.m[key]; !ok {
		return
	}
	m := make(map[string]Variant, len(v.m))
	for k, x := range v.m {
		if k != key {
			m[k] = x
		}
	}
	v.m = m
}

// Clone returns a deep copy. Pointer payloads are shared.
func (v Variant) Clone() Variant {
	switch v.kind {
	case KindArray:
		v.arr = cloneSlice(v.arr)
	case KindMap:
		v.m = cloneMap(v.m)
	}
	return v
}

// Equal compares structurally. Pointer payloads of func, map, slice, chan
// and pointer kind compare by identity; other uncomparable payloads are
// never equal.
func (v Variant) Equal(o Variant) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindInt, KindLongLong:
		return v.i == o.i
	case KindUInt, KindULongLong:
		return v.u == o.u
	case KindFloat, KindDouble:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindPointer:
		return samePointer(v.p, o.p)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, x := range v.m {
			y, ok := o.m[k]
			if !ok || !x.Equal(y) {
				return false
			}
		}
		return true
	}
	return false
}

// String implements fmt.Stringer for logging.
func (v Variant) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindPointer:
		return fmt.Sprintf("pointer(%T)", v.p)
	case KindArray, KindMap:
		b, err := v.MarshalJSON()
		if err != nil {
			return v.kind.String()
		}
		return string(b)
	}
	return v.ToString()
}

func (v Variant) mustBe(k Kind, op string) {
	if v.kind != k {
		panic(fmt.Sprintf("variant: %s on %s, want %s", op, v.kind, k))
	}
}

func floatToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func cloneSlice(in []Variant) []Variant {
	if in == nil {
		return nil
	}
	out := make([]Variant, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func cloneMap(in map[string]Variant) map[string]Variant {
	if in == nil {
		return nil
	}
	out := make(map[string]Variant, len(in))
	for k, e := range in {
		out[k] = e.Clone()
	}
	return out
}

func samePointer(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	return ra.Comparable() && rb.Comparable() && a == b
}
