package rid

import "testing"

func TestMakeGet(t *testing.T) {
	o := NewOwner[string](1)
	a := o.Make("a")
	b := o.Make("b")

	if a == b || !a.IsValid() || !b.IsValid() {
		t.Fatalf("bad handles %v %v", a, b)
	}
	if v, ok := o.Get(a); !ok || v != "a" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if o.Len() != 2 {
		t.Errorf("Len = %d, want 2", o.Len())
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	o := NewOwner[int](1)
	a := o.Make(1)
	if !o.Free(a) {
		t.Fatal("Free failed")
	}
	b := o.Make(2)
	if b.index() != a.index() {
		t.Fatalf("slot not reused: %v vs %v", a, b)
	}
	if o.Owns(a) {
		t.Error("stale handle still resolves")
	}
	if _, ok := o.Get(a); ok {
		t.Error("Get on stale handle succeeded")
	}
	if o.Free(a) {
		t.Error("double free succeeded")
	}
	if v, _ := o.Get(b); v != 2 {
		t.Errorf("Get(b) = %d, want 2", v)
	}
}

func TestTagsSeparateTables(t *testing.T) {
	bodies := NewOwner[int](1)
	areas := NewOwner[int](2)
	b := bodies.Make(7)
	if areas.Owns(b) {
		t.Error("handle validated against the wrong table")
	}
	if Invalid.IsValid() || bodies.Owns(Invalid) {
		t.Error("invalid handle resolved")
	}
}

func TestEachOrder(t *testing.T) {
	o := NewOwner[int](3)
	var want []RID
	for i := 0; i < 5; i++ {
		want = append(want, o.Make(i))
	}
	o.Free(want[2])
	want = append(want[:2], want[3:]...)

	var got []RID
	o.Each(func(r RID, _ int) { got = append(got, r) })
	if len(got) != len(want) {
		t.Fatalf("Each visited %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Each[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
