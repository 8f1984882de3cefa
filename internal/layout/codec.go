// internal/layout/codec.go
package layout

import (
	"bytes"
	"fmt"
)

// Values is the decoded content of one layout, keyed by field name.
// Scalar fields are held as int64 slices, byte and char fields as []byte.
type Values struct {
	layout *Layout
	ints   map[string][]int64
	raw    map[string][]byte
}

// NewValues returns an empty value set for l. Unset fields encode as zero.
func NewValues(l *Layout) *Values {
	return &Values{
		layout: l,
		ints:   make(map[string][]int64),
		raw:    make(map[string][]byte),
	}
}

func (v *Values) Layout() *Layout { return v.layout }

// Set assigns a scalar field. Panics on an unknown field name: layouts are
// static and a wrong name is a programming error.
func (v *Values) Set(name string, vals ...int64) *Values {
	f := v.mustField(name)
	if f.Kind == Bytes || f.Kind == Chars {
		panic(fmt.Sprintf("layout %s: field %q is not scalar", v.layout.name, name))
	}
	out := make([]int64, f.Count)
	copy(out, vals)
	v.ints[name] = out
	return v
}

// SetBytes assigns a byte or char field, truncating or zero padding to its length.
func (v *Values) SetBytes(name string, b []byte) *Values {
	f := v.mustField(name)
	if f.Kind != Bytes && f.Kind != Chars {
		panic(fmt.Sprintf("layout %s: field %q is not a byte field", v.layout.name, name))
	}
	out := make([]byte, f.Count)
	copy(out, b)
	v.raw[name] = out
	return v
}

func (v *Values) SetString(name, s string) *Values {
	return v.SetBytes(name, []byte(s))
}

// Int returns the first element of a scalar field.
func (v *Values) Int(name string) int64 {
	vals := v.Ints(name)
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}

// Ints returns a copy of a scalar field.
func (v *Values) Ints(name string) []int64 {
	f := v.mustField(name)
	out := make([]int64, f.Count)
	copy(out, v.ints[name])
	return out
}

func (v *Values) Bytes(name string) []byte {
	f := v.mustField(name)
	out := make([]byte, f.Count)
	copy(out, v.raw[name])
	return out
}

// String returns a char field up to its first NUL.
func (v *Values) String(name string) string {
	b := v.Bytes(name)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (v *Values) mustField(name string) Field {
	f, _, ok := v.layout.field(name)
	if !ok {
		panic(fmt.Sprintf("layout %s: unknown field %q", v.layout.name, name))
	}
	return f
}

// Decode converts registers into values.
// Each register holds two bytes, low byte first.
func Decode(l *Layout, regs []uint16) (*Values, error) {
	if len(regs) < int(l.Words()) {
		return nil, fmt.Errorf("layout %s: short decode: got %d registers want %d", l.name, len(regs), l.Words())
	}

	buf := unpack(regs[:l.Words()])
	v := NewValues(l)

	for i, f := range l.fields {
		off := l.offset[i]
		switch f.Kind {
		case Bytes, Chars:
			b := make([]byte, f.Count)
			copy(b, buf[off:off+f.Count])
			v.raw[f.Name] = b
		default:
			w := f.Kind.width()
			vals := make([]int64, f.Count)
			for n := 0; n < f.Count; n++ {
				vals[n] = readScalar(f.Kind, buf[off+n*w:off+(n+1)*w])
			}
			v.ints[f.Name] = vals
		}
	}

	return v, nil
}

// Encode converts values into exactly l.Words() registers.
func Encode(l *Layout, v *Values) ([]uint16, error) {
	if v == nil {
		v = NewValues(l)
	}
	if v.layout != l {
		return nil, fmt.Errorf("layout %s: values belong to layout %s", l.name, v.layout.name)
	}

	buf := make([]byte, int(l.Words())*2)

	for i, f := range l.fields {
		off := l.offset[i]
		switch f.Kind {
		case Bytes, Chars:
			copy(buf[off:off+f.Count], v.raw[f.Name])
		default:
			w := f.Kind.width()
			vals := v.ints[f.Name]
			for n := 0; n < f.Count; n++ {
				var x int64
				if n < len(vals) {
					x = vals[n]
				}
				if !inRange(f.Kind, x) {
					return nil, fmt.Errorf("layout %s: field %q[%d]=%d out of range for %v", l.name, f.Name, n, x, f.Kind)
				}
				writeScalar(f.Kind, buf[off+n*w:off+(n+1)*w], x)
			}
		}
	}

	return pack(buf), nil
}

// ---- helpers ----

func unpack(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r)
		out[2*i+1] = byte(r >> 8)
	}
	return out
}

func pack(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return out
}

func readScalar(k Kind, b []byte) int64 {
	var u uint64
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	if !k.signed() {
		return int64(u)
	}
	switch k {
	case I8:
		return int64(int8(u))
	case I16:
		return int64(int16(u))
	default:
		return int64(int32(u))
	}
}

func writeScalar(k Kind, b []byte, x int64) {
	u := uint64(x)
	for i := range b {
		b[i] = byte(u)
		u >>= 8
	}
}

func inRange(k Kind, x int64) bool {
	switch k {
	case U8:
		return x >= 0 && x <= 0xFF
	case I8:
		return x >= -0x80 && x <= 0x7F
	case U16:
		return x >= 0 && x <= 0xFFFF
	case I16:
		return x >= -0x8000 && x <= 0x7FFF
	case U32:
		return x >= 0 && x <= 0xFFFFFFFF
	case I32:
		return x >= -0x80000000 && x <= 0x7FFFFFFF
	default:
		return false
	}
}
