package broadphase

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

type event struct {
	a, b   string
	paired bool
}

func newRecorder() (*SweepAndPrune[string], *[]event) {
	s := NewSweepAndPrune[string]()
	var events []event
	s.SetPairCallback(func(a string, _ int, b string, _ int) any {
		events = append(events, event{a, b, true})
		return a + "|" + b
	})
	s.SetUnpairCallback(func(a string, _ int, b string, _ int, data any) {
		if data != a+"|"+b {
			panic("unpair got wrong pair data")
		}
		events = append(events, event{a, b, false})
	})
	return s, &events
}

func box(x float64) geom.AABB {
	return geom.NewAABB(mgl64.Vec3{x, 0, 0}, mgl64.Vec3{1, 1, 1})
}

func TestPairAndUnpair(t *testing.T) {
	s, events := newRecorder()
	a := s.Create("a", 0)
	b := s.Create("b", 0)
	s.Move(a, box(0))
	s.Move(b, box(0.5))
	s.Update()

	if len(*events) != 1 || (*events)[0] != (event{"a", "b", true}) {
		t.Fatalf("events = %+v, want one a|b pair", *events)
	}
	if s.PairCount() != 1 {
		t.Errorf("PairCount = %d, want 1", s.PairCount())
	}

	s.Update()
	if len(*events) != 1 {
		t.Errorf("steady overlap fired callbacks again: %+v", *events)
	}

	s.Move(b, box(5))
	s.Update()
	if len(*events) != 2 || (*events)[1] != (event{"a", "b", false}) {
		t.Fatalf("events = %+v, want unpair", *events)
	}
	if s.PairCount() != 0 {
		t.Errorf("PairCount = %d after separation", s.PairCount())
	}
}

func TestStaticAndSameOwnerNeverPair(t *testing.T) {
	s, events := newRecorder()
	a := s.Create("ground", 0)
	b := s.Create("wall", 0)
	c := s.Create("wall", 1)
	s.SetStatic(a, true)
	s.SetStatic(b, true)
	for _, id := range []ID{a, b, c} {
		s.Move(id, box(0))
	}
	s.Update()

	if len(*events) != 1 || (*events)[0] != (event{"ground", "wall", true}) {
		t.Errorf("events = %+v, want only ground|wall(1)", *events)
	}
}

func TestRemoveUnpairsImmediately(t *testing.T) {
	s, events := newRecorder()
	a := s.Create("a", 0)
	b := s.Create("b", 0)
	s.Move(a, box(0))
	s.Move(b, box(0))
	s.Update()

	s.Remove(b)
	if got := *events; len(got) != 2 || got[1].paired {
		t.Fatalf("events = %+v, want unpair on remove", got)
	}

	c := s.Create("c", 0)
	if c != b {
		t.Errorf("freed id not reused: got %d want %d", c, b)
	}
	s.Move(c, box(0.2))
	s.Update()
	if got := *events; len(got) != 3 || got[2] != (event{"a", "c", true}) {
		t.Errorf("events = %+v, want a|c pair", got)
	}
}

func TestCullAABB(t *testing.T) {
	s := NewSweepAndPrune[string]()
	for i, name := range []string{"x", "y", "z"} {
		id := s.Create(name, i)
		s.Move(id, box(float64(i)*3))
	}
	hits := s.CullAABB(geom.NewAABB(mgl64.Vec3{2.5, 0, 0}, mgl64.Vec3{4, 1, 1}))
	if len(hits) != 2 || hits[0].Owner != "y" || hits[1].Owner != "z" || hits[1].Subindex != 2 {
		t.Errorf("hits = %+v", hits)
	}
}
