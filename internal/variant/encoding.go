package variant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJSON is returned by UnmarshalJSON for malformed input.
var ErrInvalidJSON = errors.New("variant: invalid JSON")

// FromAny converts plain Go values, including the generic trees produced by
// encoding/json, yaml.v3 and go-toml, into a Variant. Unknown types become
// Pointer variants.
func FromAny(x any) Variant {
	switch t := x.(type) {
	case nil:
		return Null()
	case Variant:
		return t.Clone()
	case bool:
		return Bool(t)
	case int:
		return LongLong(int64(t))
	case int8:
		return Int(int32(t))
	case int16:
		return Int(int32(t))
	case int32:
		return Int(t)
	case int64:
		return LongLong(t)
	case uint:
		return ULongLong(uint64(t))
	case uint8:
		return UInt(uint32(t))
	case uint16:
		return UInt(uint32(t))
	case uint32:
		return UInt(t)
	case uint64:
		return ULongLong(t)
	case float32:
		return Float(t)
	case float64:
		return Double(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return LongLong(n)
		}
		f, _ := t.Float64()
		return Double(f)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case []Variant:
		return Array(t...)
	case map[string]Variant:
		return Map(t)
	case []any:
		arr := make([]Variant, len(t))
		for i, e := range t {
			arr[i] = FromAny(e)
		}
		return Variant{kind: KindArray, arr: arr}
	case map[string]any:
		m := make(map[string]Variant, len(t))
		for k, e := range t {
			m[k] = FromAny(e)
		}
		return Variant{kind: KindMap, m: m}
	case map[any]any:
		m := make(map[string]Variant, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = FromAny(e)
		}
		return Variant{kind: KindMap, m: m}
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		arr := make([]Variant, rv.Len())
		for i := range arr {
			arr[i] = FromAny(rv.Index(i).Interface())
		}
		return Variant{kind: KindArray, arr: arr}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]Variant, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = FromAny(iter.Value().Interface())
			}
			return Variant{kind: KindMap, m: m}
		}
	}
	return Pointer(x)
}

// Interface converts v back to plain Go values: nil, bool, int32, uint32,
// int64, uint64, float32, float64, string, []any, map[string]any or the
// wrapped Pointer payload.
func (v Variant) Interface() any {
	switch v.kind {
	case KindBool:
		return v.i != 0
	case KindInt:
		return int32(v.i)
	case KindUInt:
		return uint32(v.u)
	case KindLongLong:
		return v.i
	case KindULongLong:
		return v.u
	case KindFloat:
		return float32(v.f)
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindPointer:
		return v.p
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes v as plain JSON. Pointer variants encode as null and
// non-finite floats as null. Map keys are emitted sorted.
func (v Variant) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Variant) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull, KindPointer:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.i != 0))
	case KindInt, KindLongLong:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindUInt, KindULongLong:
		buf.WriteString(strconv.FormatUint(v.u, 10))
	case KindFloat, KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return nil
		}
		bits := 64
		if v.kind == KindFloat {
			bits = 32
		}
		s := strconv.FormatFloat(v.f, 'g', -1, bits)
		// Keep a fractional marker so decoding yields a float kind again.
		if !bytes.ContainsAny([]byte(s), ".eE") {
			s += ".0"
		}
		buf.WriteString(s)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.m[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("variant: cannot encode %s", v.kind)
	}
	return nil
}

// UnmarshalJSON decodes any JSON value. Integral numbers become LongLong
// (ULongLong above MaxInt64), other numbers Double.
func (v *Variant) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return ErrInvalidJSON
	}
	*v = FromJSON(gjson.ParseBytes(b))
	return nil
}

// ParseJSON decodes a JSON document into a Variant.
func ParseJSON(s string) (Variant, error) {
	if !gjson.Valid(s) {
		return Null(), ErrInvalidJSON
	}
	return FromJSON(gjson.Parse(s)), nil
}

// FromJSON converts a gjson result tree.
func FromJSON(r gjson.Result) Variant {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		return numberFromRaw(r)
	case gjson.JSON:
		if r.IsArray() {
			elems := r.Array()
			arr := make([]Variant, len(elems))
			for i, e := range elems {
				arr[i] = FromJSON(e)
			}
			return Variant{kind: KindArray, arr: arr}
		}
		m := map[string]Variant{}
		r.ForEach(func(k, val gjson.Result) bool {
			m[k.String()] = FromJSON(val)
			return true
		})
		return Variant{kind: KindMap, m: m}
	}
	return Null()
}

func numberFromRaw(r gjson.Result) Variant {
	raw := r.Raw
	if !bytes.ContainsAny([]byte(raw), ".eE") {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return LongLong(n)
		}
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return ULongLong(n)
		}
	}
	return Double(r.Num)
}

// UnmarshalYAML decodes a YAML node through yaml.v3's generic decoding.
func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	var x any
	if err := node.Decode(&x); err != nil {
		return err
	}
	*v = FromAny(x)
	return nil
}
