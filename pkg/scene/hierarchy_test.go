package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// buildFamily creates root-level "parent" with children a, b, c in order.
func buildFamily(t *testing.T) *Hierarchy {
	t.Helper()
	h := New()
	parent := NewObject("parent", "parent")
	if err := h.Add(parent); err != nil {
		t.Fatalf("Add(parent) error = %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		o := NewObject(ObjectID(name), name)
		o.Parent = "parent"
		if err := h.Add(o); err != nil {
			t.Fatalf("Add(%s) error = %v", name, err)
		}
	}
	return h
}

func TestAddAndLookup(t *testing.T) {
	h := buildFamily(t)
	if h.Len() != 4 {
		t.Errorf("Len() = %d, want 4", h.Len())
	}
	if o := h.Lookup("b"); o == nil || o.ID != "b" {
		t.Errorf("Lookup(b) = %v", o)
	}
	if o := h.Get("nope"); o != nil {
		t.Errorf("Get(nope) = %v, want nil", o)
	}
	if got := h.Get("parent").Children; len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("children = %v, want [a b c]", got)
	}
}

func TestAddErrors(t *testing.T) {
	h := buildFamily(t)

	t.Run("duplicate id", func(t *testing.T) {
		if err := h.Add(NewObject("a", "again")); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("unknown parent", func(t *testing.T) {
		o := NewObject("orphan", "orphan")
		o.Parent = "ghost"
		if err := h.Add(o); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("empty id", func(t *testing.T) {
		if err := h.Add(NewObject(Root, "empty")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestSiblingIndex(t *testing.T) {
	h := buildFamily(t)
	tests := []struct {
		id   ObjectID
		want int
	}{
		{"a", 0}, {"b", 1}, {"c", 2}, {"parent", 0}, {"ghost", -1},
	}
	for _, tt := range tests {
		if got := h.SiblingIndex(tt.id); got != tt.want {
			t.Errorf("SiblingIndex(%s) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestReparent(t *testing.T) {
	t.Run("move to front of sibling list", func(t *testing.T) {
		h := buildFamily(t)
		if err := h.Reparent("c", "parent", 0); err != nil {
			t.Fatalf("Reparent() error = %v", err)
		}
		got := h.Get("parent").Children
		if got[0] != "c" || got[1] != "a" || got[2] != "b" {
			t.Errorf("children = %v, want [c a b]", got)
		}
	})
	t.Run("move to root", func(t *testing.T) {
		h := buildFamily(t)
		if err := h.Reparent("b", Root, 0); err != nil {
			t.Fatalf("Reparent() error = %v", err)
		}
		if h.Get("b").Parent != Root {
			t.Error("parent not cleared")
		}
		if h.Roots()[0] != "b" {
			t.Errorf("roots = %v, want b first", h.Roots())
		}
		if len(h.Get("parent").Children) != 2 {
			t.Errorf("old siblings = %v, want 2 entries", h.Get("parent").Children)
		}
	})
	t.Run("missing parent falls back to root", func(t *testing.T) {
		h := buildFamily(t)
		if err := h.Reparent("a", "ghost", 5); err != nil {
			t.Fatalf("Reparent() error = %v", err)
		}
		if h.Get("a").Parent != Root {
			t.Errorf("parent = %q, want root", h.Get("a").Parent)
		}
	})
	t.Run("sibling index clamped", func(t *testing.T) {
		h := buildFamily(t)
		if err := h.Reparent("a", "parent", 99); err != nil {
			t.Fatalf("Reparent() error = %v", err)
		}
		got := h.Get("parent").Children
		if got[len(got)-1] != "a" {
			t.Errorf("children = %v, want a last", got)
		}
	})
	t.Run("cannot reparent under own subtree", func(t *testing.T) {
		h := buildFamily(t)
		if err := h.Reparent("parent", "a", 0); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestRemoveSubtree(t *testing.T) {
	h := buildFamily(t)
	grand := NewObject("grand", "grand")
	grand.Parent = "b"
	if err := h.Add(grand); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	h.Remove("parent")
	if h.Len() != 0 {
		t.Errorf("Len() = %d after removing the root of the family, want 0", h.Len())
	}
	if len(h.Roots()) != 0 {
		t.Errorf("roots = %v, want empty", h.Roots())
	}
	h.Remove("parent") // idempotent
}

func TestWorldTransform(t *testing.T) {
	h := New()
	parent := NewObject("parent", "parent")
	parent.Position = mgl32.Vec3{10, 0, 0}
	if err := h.Add(parent); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	child := NewObject("child", "child")
	child.Parent = "parent"
	child.Position = mgl32.Vec3{0, 5, 0}
	child.Scale = mgl32.Vec3{2, 2, 2}
	if err := h.Add(child); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	world := h.WorldTransform("child")
	got := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, world)
	want := mgl32.Vec3{12, 5, 0} // scaled by 2, lifted by 5, shifted by 10
	if got.Sub(want).Len() > 1e-5 {
		t.Errorf("world point = %v, want %v", got, want)
	}

	if h.WorldTransform("ghost") != mgl32.Ident4() {
		t.Error("unknown object should map to identity")
	}
}

func TestValidateConsistency(t *testing.T) {
	t.Run("valid family", func(t *testing.T) {
		h := buildFamily(t)
		if errs := h.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want none", errs)
		}
	})
	t.Run("corrupted parent field", func(t *testing.T) {
		h := buildFamily(t)
		h.Get("a").Parent = "c" // child list still says parent
		if errs := h.Validate(); len(errs) == 0 {
			t.Error("expected findings")
		}
	})
	t.Run("dangling child reference", func(t *testing.T) {
		h := buildFamily(t)
		p := h.Get("parent")
		p.Children = append(p.Children, "ghost")
		if errs := h.Validate(); len(errs) == 0 {
			t.Error("expected findings")
		}
	})
}
