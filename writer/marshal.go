// Package writer renders evaluator output (events, diagnostics, run
// reports) for human consumption: a generic reflection-based literal
// dumper plus a severity-colored diagnostic report printer.
package writer

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
)

// DebugMarshaler is implemented by types that know how to render themselves
// for the literal dumper, bypassing the generic reflection-based encoding.
type DebugMarshaler interface {
	MarshalDebug() ([]byte, error)
}

var debugMarshalerType = reflect.TypeOf((*DebugMarshaler)(nil)).Elem()

// Marshal returns a compact, deterministic literal rendering of v, intended
// for verbose event-stream and diagnostic dumps (not a wire format).
//
// Marshal traverses v recursively: booleans become true/false, strings are
// quoted, slices and arrays become bracketed lists, structs become lists of
// their exported fields in declaration order, maps become key-sorted field
// lists, and nil
// pointers/interfaces become null.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(b *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		return writeString(b, "null")
	}
	return encodeType(b, v.Type(), v)
}

func encodeType(b *bytes.Buffer, t reflect.Type, v reflect.Value) error {
	if t.Implements(debugMarshalerType) {
		return encodeMarshaler(b, v)
	}

	switch t.Kind() {
	case reflect.Bool:
		return encodeBool(b, v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Uint:
		return encodeInt(b, v)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return encodeUint(b, v)
	case reflect.Float32, reflect.Float64:
		return encodeFloat(b, v)
	case reflect.String:
		return encodeString(b, v)
	case reflect.Slice:
		return encodeSlice(b, v)
	case reflect.Array:
		return encodeArray(b, v)
	case reflect.Interface, reflect.Ptr:
		return encodeInterface(b, v)
	case reflect.Struct:
		return encodeStruct(b, v)
	case reflect.Map:
		return encodeMap(b, v)
	default:
		return fmt.Errorf("unsupported encoding type for value: %#v", v)
	}
}

func encodeBool(b *bytes.Buffer, v reflect.Value) error {
	return writeString(b, strconv.FormatBool(v.Bool()))
}

func encodeInt(b *bytes.Buffer, v reflect.Value) error {
	return writeString(b, strconv.FormatInt(v.Int(), 10))
}

func encodeUint(b *bytes.Buffer, v reflect.Value) error {
	return writeString(b, strconv.FormatUint(v.Uint(), 10))
}

func encodeFloat(b *bytes.Buffer, v reflect.Value) error {
	return writeString(b, strconv.FormatFloat(v.Float(), 'g', -1, 64))
}

func encodeString(b *bytes.Buffer, v reflect.Value) error {
	return writeString(b, strconv.QuoteToASCII(v.String()))
}

func encodeSlice(b *bytes.Buffer, v reflect.Value) error {
	if v.IsNil() {
		return writeString(b, "[]")
	}
	return encodeArray(b, v)
}

func encodeArray(b *bytes.Buffer, v reflect.Value) error {
	if err := b.WriteByte('['); err != nil {
		return err
	}
	n := v.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := writeString(b, ", "); err != nil {
				return err
			}
		}
		if err := encodeValue(b, v.Index(i)); err != nil {
			return err
		}
	}
	return b.WriteByte(']')
}

func encodeInterface(b *bytes.Buffer, v reflect.Value) error {
	if v.IsNil() {
		return writeString(b, "null")
	}
	return encodeValue(b, v.Elem())
}

func encodeStruct(b *bytes.Buffer, v reflect.Value) error {
	t := v.Type()
	if err := b.WriteByte('{'); err != nil {
		return err
	}
	wrote := false
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		if wrote {
			if err := writeString(b, ", "); err != nil {
				return err
			}
		}
		wrote = true
		if err := writeString(b, f.Name+": "); err != nil {
			return err
		}
		if err := encodeValue(b, v.Field(i)); err != nil {
			return err
		}
	}
	return b.WriteByte('}')
}

func encodeMap(b *bytes.Buffer, v reflect.Value) error {
	if v.IsNil() {
		return writeString(b, "{}")
	}
	keys := v.MapKeys()
	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = fmt.Sprint(k.Interface())
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && strs[order[j]] < strs[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	if err := b.WriteByte('{'); err != nil {
		return err
	}
	for pos, idx := range order {
		if pos > 0 {
			if err := writeString(b, ", "); err != nil {
				return err
			}
		}
		if err := writeString(b, strs[idx]+": "); err != nil {
			return err
		}
		if err := encodeValue(b, v.MapIndex(keys[idx])); err != nil {
			return err
		}
	}
	return b.WriteByte('}')
}

func encodeMarshaler(b *bytes.Buffer, v reflect.Value) error {
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return writeString(b, "null")
	}
	m, ok := v.Interface().(DebugMarshaler)
	if !ok {
		return writeString(b, "null")
	}
	r, err := m.MarshalDebug()
	if err != nil {
		return err
	}
	return writeString(b, string(r))
}

func writeString(b *bytes.Buffer, value string) error {
	_, err := b.WriteString(value)
	return err
}
