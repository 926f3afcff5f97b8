package set

import (
	"slices"
	"testing"
)

func TestHasAdd(t *testing.T) {
	s := New[string]()

	if s.HasAdd("a") {
		t.Fatal("HasAdd() on empty set = true, want false")
	}
	if !s.HasAdd("a") {
		t.Fatal("HasAdd() on existing value = false, want true")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSorted(t *testing.T) {
	s := FromSlice([]string{"c", "a", "b", "a"})

	got := Sorted(s)
	want := []string{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}
