// internal/layout/layout_test.go
package layout

import "testing"

func TestNew_WordLengthRoundsUp(t *testing.T) {
	l, err := New("t", Uint8("a"), Uint16("b"))
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	if l.Size() != 3 {
		t.Fatalf("size: got=%d want=3", l.Size())
	}
	if l.Words() != 2 {
		t.Fatalf("words: got=%d want=2", l.Words())
	}
}

func TestNew_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		fields []Field
	}{
		{"no fields", nil},
		{"duplicate", []Field{Uint16("a"), Uint16("a")}},
		{"zero count", []Field{{Name: "a", Kind: U16, Count: 0}}},
		{"unknown kind", []Field{{Name: "a", Kind: Kind(99), Count: 1}}},
		{"unnamed", []Field{{Kind: U16, Count: 1}}},
		{"too wide", []Field{Uint16s("a", MaxWords+1)}},
	}

	for _, tc := range cases {
		if _, err := New("t", tc.fields...); err == nil {
			t.Fatalf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestSub_KeepsFieldOffsets(t *testing.T) {
	full := MustNew("full",
		Uint16("a"),
		Uint16s("b", 3),
		Uint16("c"),
		Uint32("d"),
	)

	mid, err := full.Sub("mid", 1, 5)
	if err != nil {
		t.Fatalf("Sub err=%v", err)
	}
	if mid.Words() != 4 {
		t.Fatalf("words: got=%d want=4", mid.Words())
	}

	off, err := full.WordOffset("d")
	if err != nil || off != 5 {
		t.Fatalf("WordOffset(d): got=%d err=%v want=5", off, err)
	}

	if _, err := full.Sub("bad", 2, 5); err == nil {
		t.Fatalf("expected straddle error, got nil")
	}
	if _, err := full.Sub("bad", 5, 6); err == nil {
		t.Fatalf("expected split u32 error, got nil")
	}
}

func TestDecode_LittleEndianPacking(t *testing.T) {
	l := MustNew("t",
		Uint8("b0"),
		Uint8("b1"),
		Int16("s"),
		Uint32("u"),
		Text("name", 4),
	)

	regs := []uint16{
		0x0201,     // b0=1 b1=2
		0xFFFE,     // s=-2
		0x5678,     // u low word
		0x1234,     // u high word
		0x4241,     // "AB"
		0x0043,     // "C\x00"
	}

	v, err := Decode(l, regs)
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}

	if v.Int("b0") != 1 || v.Int("b1") != 2 {
		t.Fatalf("bytes: got=%d,%d want=1,2", v.Int("b0"), v.Int("b1"))
	}
	if v.Int("s") != -2 {
		t.Fatalf("i16: got=%d want=-2", v.Int("s"))
	}
	if v.Int("u") != 0x12345678 {
		t.Fatalf("u32: got=%#x want=0x12345678", v.Int("u"))
	}
	if v.String("name") != "ABC" {
		t.Fatalf("chars: got=%q want=%q", v.String("name"), "ABC")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	l := MustNew("t",
		Uint16("flag"),
		Text("name", 5),
		Int32("power"),
		Uint8s("cells", 3),
	)

	v := NewValues(l).
		Set("flag", 0x55AA).
		SetString("name", "LiPo").
		Set("power", -12345).
		Set("cells", 1, 2, 3)

	regs, err := Encode(l, v)
	if err != nil {
		t.Fatalf("Encode err=%v", err)
	}
	if len(regs) != int(l.Words()) {
		t.Fatalf("len: got=%d want=%d", len(regs), l.Words())
	}

	back, err := Decode(l, regs)
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}

	if back.Int("flag") != 0x55AA {
		t.Fatalf("flag: got=%#x", back.Int("flag"))
	}
	if back.String("name") != "LiPo" {
		t.Fatalf("name: got=%q", back.String("name"))
	}
	if back.Int("power") != -12345 {
		t.Fatalf("power: got=%d", back.Int("power"))
	}
	cells := back.Ints("cells")
	for i, want := range []int64{1, 2, 3} {
		if cells[i] != want {
			t.Fatalf("cells[%d]: got=%d want=%d", i, cells[i], want)
		}
	}
}

func TestEncode_OutOfRange(t *testing.T) {
	l := MustNew("t", Uint8("a"))
	if _, err := Encode(l, NewValues(l).Set("a", 256)); err == nil {
		t.Fatalf("expected range error, got nil")
	}
}

func TestDecode_Short(t *testing.T) {
	l := MustNew("t", Uint16s("a", 4))
	if _, err := Decode(l, []uint16{1, 2}); err == nil {
		t.Fatalf("expected short decode error, got nil")
	}
}
