// internal/model/bind.go
package model

import "github.com/tamzrod/charger-bridge/internal/layout"

// binding ties one layout field to one struct field so decode and encode
// walk the same table.
type binding struct {
	name string
	get  func() []int64
	set  func([]int64)
}

func bindU8(name string, p *uint8) binding {
	return binding{
		name: name,
		get:  func() []int64 { return []int64{int64(*p)} },
		set:  func(v []int64) { *p = uint8(v[0]) },
	}
}

func bindU16(name string, p *uint16) binding {
	return binding{
		name: name,
		get:  func() []int64 { return []int64{int64(*p)} },
		set:  func(v []int64) { *p = uint16(v[0]) },
	}
}

func bindU32(name string, p *uint32) binding {
	return binding{
		name: name,
		get:  func() []int64 { return []int64{int64(*p)} },
		set:  func(v []int64) { *p = uint32(v[0]) },
	}
}

func bindU16s(name string, p []uint16) binding {
	return binding{
		name: name,
		get: func() []int64 {
			out := make([]int64, len(p))
			for i, x := range p {
				out[i] = int64(x)
			}
			return out
		},
		set: func(v []int64) {
			for i := range p {
				if i < len(v) {
					p[i] = uint16(v[i])
				}
			}
		},
	}
}

// load copies the fields v's layout declares into the bound struct fields.
func load(v *layout.Values, bs []binding) {
	declared := declaredFields(v.Layout())
	for _, b := range bs {
		if declared[b.name] {
			b.set(v.Ints(b.name))
		}
	}
}

// store builds values for l from the bound fields it declares.
func store(l *layout.Layout, bs []binding) *layout.Values {
	v := layout.NewValues(l)
	declared := declaredFields(l)
	for _, b := range bs {
		if declared[b.name] {
			v.Set(b.name, b.get()...)
		}
	}
	return v
}

func declaredFields(l *layout.Layout) map[string]bool {
	out := make(map[string]bool)
	for _, f := range l.Fields() {
		out[f.Name] = true
	}
	return out
}
