// internal/layout/layout.go
package layout

import (
	"errors"
	"fmt"
)

// Kind is the wire type of one field.
type Kind uint8

const (
	U8 Kind = iota + 1
	I8
	U16
	I16
	U32
	I32
	Bytes // raw fixed-length byte array
	Chars // fixed-length NUL padded text
)

// MaxWords is the largest register count a single Modbus read may carry.
const MaxWords = 125

func (k Kind) width() int {
	switch k {
	case U8, I8, Bytes, Chars:
		return 1
	case U16, I16:
		return 2
	case U32, I32:
		return 4
	default:
		return 0
	}
}

func (k Kind) signed() bool {
	return k == I8 || k == I16 || k == I32
}

func (k Kind) String() string {
	switch k {
	case U8:
		return "u8"
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case Bytes:
		return "bytes"
	case Chars:
		return "chars"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Field describes one entry of a layout.
// For scalar kinds Count is the array length (1 for a plain value).
// For Bytes and Chars Count is the length in bytes.
type Field struct {
	Name  string
	Kind  Kind
	Count int
}

// Layout is an immutable, ordered field list with a fixed register width.
// Fields are packed with no alignment padding; a trailing odd byte is
// padded to a whole register.
type Layout struct {
	name   string
	fields []Field
	index  map[string]int
	offset []int
	size   int
}

// New validates the field list and builds a layout.
func New(name string, fields ...Field) (*Layout, error) {
	if name == "" {
		return nil, errors.New("layout: name required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("layout %s: at least one field required", name)
	}

	l := &Layout{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		offset: make([]int, 0, len(fields)),
	}

	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("layout %s: field %d has no name", name, i)
		}
		if _, dup := l.index[f.Name]; dup {
			return nil, fmt.Errorf("layout %s: duplicate field %q", name, f.Name)
		}
		if f.Kind.width() == 0 {
			return nil, fmt.Errorf("layout %s: field %q has unknown kind %v", name, f.Name, f.Kind)
		}
		if f.Count <= 0 {
			return nil, fmt.Errorf("layout %s: field %q count must be > 0", name, f.Name)
		}

		l.index[f.Name] = i
		l.offset = append(l.offset, l.size)
		l.fields = append(l.fields, f)
		l.size += f.Kind.width() * f.Count
	}

	if w := l.Words(); w > MaxWords {
		return nil, fmt.Errorf("layout %s: %d registers exceeds max %d", name, w, MaxWords)
	}

	return l, nil
}

// MustNew is New for package-level register map definitions.
func MustNew(name string, fields ...Field) *Layout {
	l, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Layout) Name() string { return l.name }

// Size is the packed byte length.
func (l *Layout) Size() int { return l.size }

// Words is the register width.
func (l *Layout) Words() uint16 { return uint16((l.size + 1) / 2) }

// Fields returns a copy of the field list.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

func (l *Layout) field(name string) (Field, int, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, 0, false
	}
	return l.fields[i], l.offset[i], true
}

// WordOffset is the register offset of a field within the layout.
// The field must start on a register boundary.
func (l *Layout) WordOffset(name string) (uint16, error) {
	_, off, ok := l.field(name)
	if !ok {
		return 0, fmt.Errorf("layout %s: unknown field %q", l.name, name)
	}
	if off%2 != 0 {
		return 0, fmt.Errorf("layout %s: field %q is not register aligned", l.name, name)
	}
	return uint16(off / 2), nil
}

// Sub cuts the register range [from, to) out of l as a new layout.
// Both ends must fall on field boundaries, so a record read in one set of
// chunks and written in another keeps every field at the same offset.
func (l *Layout) Sub(name string, from, to uint16) (*Layout, error) {
	start, end := int(from)*2, int(to)*2
	if start >= end || end > l.size+l.size%2 {
		return nil, fmt.Errorf("layout %s: bad sub range [%d,%d)", l.name, from, to)
	}

	var (
		fields     []Field
		startFound bool
		endFound   = end >= l.size
	)
	for i, f := range l.fields {
		off := l.offset[i]
		fend := off + f.Kind.width()*f.Count
		if off == start {
			startFound = true
		}
		if fend == end {
			endFound = true
		}
		if off >= start && fend <= end {
			fields = append(fields, f)
		} else if off < end && fend > start {
			return nil, fmt.Errorf("layout %s: field %q straddles sub range [%d,%d)", l.name, f.Name, from, to)
		}
	}
	if !startFound || !endFound {
		return nil, fmt.Errorf("layout %s: sub range [%d,%d) not on field boundaries", l.name, from, to)
	}

	return New(name, fields...)
}

// MustSub is Sub for package-level register map definitions.
func (l *Layout) MustSub(name string, from, to uint16) *Layout {
	s, err := l.Sub(name, from, to)
	if err != nil {
		panic(err)
	}
	return s
}

// ---- field constructors ----

func Uint8(name string) Field          { return Field{Name: name, Kind: U8, Count: 1} }
func Int8(name string) Field           { return Field{Name: name, Kind: I8, Count: 1} }
func Uint16(name string) Field         { return Field{Name: name, Kind: U16, Count: 1} }
func Int16(name string) Field          { return Field{Name: name, Kind: I16, Count: 1} }
func Uint32(name string) Field         { return Field{Name: name, Kind: U32, Count: 1} }
func Int32(name string) Field          { return Field{Name: name, Kind: I32, Count: 1} }
func Uint8s(name string, n int) Field  { return Field{Name: name, Kind: U8, Count: n} }
func Uint16s(name string, n int) Field { return Field{Name: name, Kind: U16, Count: n} }
func Raw(name string, n int) Field     { return Field{Name: name, Kind: Bytes, Count: n} }
func Text(name string, n int) Field    { return Field{Name: name, Kind: Chars, Count: n} }
