package nblast

import "testing"

func TestFilterEquals(t *testing.T) {
	f := Equals{Key: "cell_type", Value: "PN"}
	if !f.Match(map[string]interface{}{"cell_type": "PN"}) {
		t.Fatal("Equals should match equal value")
	}
	if f.Match(map[string]interface{}{"cell_type": "LN"}) {
		t.Fatal("Equals should not match different value")
	}
	if f.Match(map[string]interface{}{}) {
		t.Fatal("Equals should not match missing key")
	}
}

func TestFilterAndOrNot(t *testing.T) {
	meta := map[string]interface{}{"cell_type": "PN", "hemisphere": "L"}

	and := And{Equals{"cell_type", "PN"}, Equals{"hemisphere", "L"}}
	if !and.Match(meta) {
		t.Fatal("And of two true predicates should match")
	}
	and2 := And{Equals{"cell_type", "PN"}, Equals{"hemisphere", "R"}}
	if and2.Match(meta) {
		t.Fatal("And with one false predicate should not match")
	}

	or := Or{Equals{"cell_type", "LN"}, Equals{"hemisphere", "L"}}
	if !or.Match(meta) {
		t.Fatal("Or with one true predicate should match")
	}
	if (Or{}).Match(meta) {
		t.Fatal("empty Or should never match")
	}

	not := Not{Filter: Equals{"cell_type", "LN"}}
	if !not.Match(meta) {
		t.Fatal("Not of false predicate should match")
	}
}

func TestFilterInSet(t *testing.T) {
	f := InSet{Key: "cell_type", Values: []interface{}{"PN", "LN"}}
	if !f.Match(map[string]interface{}{"cell_type": "LN"}) {
		t.Fatal("InSet should match a listed value")
	}
	if f.Match(map[string]interface{}{"cell_type": "KC"}) {
		t.Fatal("InSet should not match an unlisted value")
	}
}

func TestArenaSelectIndicesNilFilterSelectsAll(t *testing.T) {
	arena, idxA, idxB := newTestArena(t)
	got := arena.SelectIndices(nil)
	if len(got) != 2 || got[0] != idxA || got[1] != idxB {
		t.Fatalf("SelectIndices(nil) = %v, want [%d %d]", got, idxA, idxB)
	}
}

func TestArenaSelectIndicesWithFilter(t *testing.T) {
	arena := NewArena(identityScoreFn)
	n1, _ := NewTargetNeuron(linePoints(8, 0))
	n2, _ := NewTargetNeuron(linePoints(8, 1))
	idx1 := arena.AddWithMetadata(n1, map[string]interface{}{"cell_type": "PN"})
	_ = arena.AddWithMetadata(n2, map[string]interface{}{"cell_type": "LN"})

	got := arena.SelectIndices(Equals{"cell_type", "PN"})
	if len(got) != 1 || got[0] != idx1 {
		t.Fatalf("SelectIndices(PN) = %v, want [%d]", got, idx1)
	}
}

func TestArenaFilteredBatch(t *testing.T) {
	arena := NewArena(identityScoreFn)
	n1, _ := NewTargetNeuron(linePoints(8, 0))
	n2, _ := NewTargetNeuron(linePoints(8, 1))
	idx1 := arena.AddWithMetadata(n1, map[string]interface{}{"cell_type": "PN"})
	idx2 := arena.AddWithMetadata(n2, map[string]interface{}{"cell_type": "LN"})

	out := arena.FilteredBatch(Equals{"cell_type", "PN"}, nil, false, false)
	for key := range out {
		if key.Query != idx1 {
			t.Fatalf("FilteredBatch leaked query index %d, want only %d", key.Query, idx1)
		}
	}
	found := false
	for key := range out {
		if key.Target == idx2 {
			found = true
		}
	}
	if !found {
		t.Fatal("FilteredBatch with nil targetFilter should still include all targets")
	}
}
