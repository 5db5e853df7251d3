package physics

import "testing"

func TestOrderedSetDrain(t *testing.T) {
	var s orderedSet[int]
	for _, v := range []int{3, 1, 4, 1, 5} {
		s.add(v)
	}
	s.remove(4)

	got := s.drain()
	want := []int{3, 1, 5}
	if len(got) != len(want) {
		t.Fatalf("drain = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drain = %v, want %v", got, want)
			break
		}
	}
	if s.len() != 0 || s.has(3) {
		t.Errorf("set not empty after drain: %v", s.items)
	}

	// the set stays usable and drained items can be queued again
	s.add(3)
	if got := s.drain(); len(got) != 1 || got[0] != 3 {
		t.Errorf("second drain = %v", got)
	}
	if got := s.drain(); len(got) != 0 {
		t.Errorf("empty drain = %v", got)
	}
}
