// Package codec turns Go values into the byte and text forms kept in the
// store: Encode for cached values, Repr and Tuple for call history.
//
// The text forms follow the conventions of the tools that inspect
// the same keys: floats use the shortest round-trip form with a trailing
// ".0" for integral values, and argument tuples are written as
// ('foo',) or (1, b'raw').
package codec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

var ErrUnsupportedValue = errors.New("unsupported value type")

// Encode returns the bytes stored for value. Strings, byte slices,
// integers and floats are accepted, including named types over them.
func Encode(value any) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedValue)
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return []byte(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		out := make([]byte, v.Len())
		copy(out, v.Bytes())
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []byte(strconv.FormatInt(v.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return []byte(strconv.FormatUint(v.Uint(), 10)), nil
	case reflect.Float32:
		return []byte(FormatFloat(v.Float(), 32)), nil
	case reflect.Float64:
		return []byte(FormatFloat(v.Float(), 64)), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

// FormatFloat writes f in positional notation for 1e-4 <= |f| < 1e16 and
// in exponent notation otherwise.
func FormatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}

	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Tuple renders args as a tuple literal: () for none, ('a',) for one,
// ('a', 1) for more.
func Tuple(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Repr(a)
	}

	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Str is the plain text form of v: strings verbatim, everything else as Repr.
func Str(v any) string {
	if v == nil {
		return "None"
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String()
	}
	return Repr(v)
}

// Repr is the literal form of v.
func Repr(v any) string {
	if v == nil {
		return "None"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return quote(rv.String())
	case reflect.Bool:
		if rv.Bool() {
			return "True"
		}
		return "False"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return FormatFloat(rv.Float(), 32)
	case reflect.Float64:
		return FormatFloat(rv.Float(), 64)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return quoteBytes(rv.Bytes())
		}
	}

	return fmt.Sprintf("%v", v)
}

func quoteChar(s string) byte {
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		return '"'
	}
	return '\''
}

func quote(s string) string {
	q := quoteChar(s)

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func quoteBytes(p []byte) string {
	q := quoteChar(string(p))

	var b strings.Builder
	b.WriteByte('b')
	b.WriteByte(q)
	for _, c := range p {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == q:
			b.WriteByte('\\')
			b.WriteByte(q)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}
