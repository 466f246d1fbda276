package recognition

import (
	"math"
	"path/filepath"
	"testing"
)

func testIdentities() []Identity {
	return []Identity{
		{UID: "u1", Name: "Alice", Embedding: []float32{0, 0}},
		{UID: "u2", Name: "Bob", Embedding: []float32{10, 0}},
		{UID: "u3", Name: "Carol", Embedding: []float32{0, 10}},
	}
}

func TestIndexSearch(t *testing.T) {
	ix := NewIdentityIndex()
	ix.BuildFromSnapshot(testIdentities(), 3)

	if ix.Count() != 3 {
		t.Fatalf("expected 3 indexed identities, got %d", ix.Count())
	}

	ids, distances, err := ix.Search([]float32{0.5, 0}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 1 || ids[0].Name != "Alice" {
		t.Fatalf("expected Alice as nearest, got %+v", ids)
	}
	if math.Abs(distances[0]-0.5) > 1e-6 {
		t.Errorf("expected exact distance 0.5, got %f", distances[0])
	}
}

func TestIndexSearchUninitialized(t *testing.T) {
	ix := NewIdentityIndex()
	if _, _, err := ix.Search([]float32{1, 2}, 1); err == nil {
		t.Error("expected error on uninitialized index")
	}
}

func TestIndexAdd(t *testing.T) {
	ix := NewIdentityIndex()
	ix.BuildFromSnapshot(testIdentities(), 3)

	ix.Add(Identity{UID: "u4", Name: "Dave", Embedding: []float32{1, 1}}, 4)
	if ix.Count() != 4 {
		t.Errorf("expected 4 identities after add, got %d", ix.Count())
	}
	if ix.Version() != 4 {
		t.Errorf("expected index version 4, got %d", ix.Version())
	}

	ids, _, err := ix.Search([]float32{1, 1}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if ids[0].Name != "Dave" {
		t.Errorf("expected Dave as nearest, got %s", ids[0].Name)
	}
}

func TestIndexSave(t *testing.T) {
	ix := NewIdentityIndex()
	ix.BuildFromSnapshot(testIdentities(), 3)
	ix.SetPath(filepath.Join(t.TempDir(), "identities.hnsw"))

	if err := ix.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
}

func TestIndexSaveWithoutPathIsNoop(t *testing.T) {
	ix := NewIdentityIndex()
	ix.BuildFromSnapshot(testIdentities(), 3)
	if err := ix.Save(); err != nil {
		t.Errorf("expected no-op save without path, got %v", err)
	}
}
