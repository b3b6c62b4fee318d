package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(material :name "oak")`,
			expect: `(material "__kw_name" "oak")`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :x 40 :y 20)`,
			expect: `(box "__kw_x" 40 "__kw_y" 20)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(combine "c" :strip-back-faces true)`,
			expect: `(combine "c" "__kw_strip-back-faces" true)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:mutual-threshold`,
			expect: `"__kw_mutual-threshold"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Object construction
// ---------------------------------------------------------------------------

func TestSimpleObject(t *testing.T) {
	eng := NewEngine()

	source := `
(object "shelf"
  :mesh (box :x 600 :y 19 :z 300)
  :material (material :name "walnut" :color "#5C4033")
  :position (vec3 0 75 0))
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 object, got %d", h.Len())
	}

	shelf := h.Lookup("shelf")
	if shelf == nil {
		t.Fatal("expected object named 'shelf'")
	}
	if !shelf.Renderable() {
		t.Error("shelf should be renderable")
	}
	if shelf.Mesh.VertexCount() != 8 || shelf.Mesh.TriangleCount() != 12 {
		t.Errorf("mesh = %dv/%dt, want 8/12", shelf.Mesh.VertexCount(), shelf.Mesh.TriangleCount())
	}
	if shelf.Materials[0].Name != "walnut" || shelf.Materials[0].Color != "#5C4033" {
		t.Errorf("material = %+v", shelf.Materials[0])
	}
	if shelf.Position != (mgl32.Vec3{0, 75, 0}) {
		t.Errorf("position = %v", shelf.Position)
	}
}

func TestObjectHierarchy(t *testing.T) {
	eng := NewEngine()

	source := `
(def bench (object "bench"))
(object "leg-a" :parent bench :mesh (cylinder :height 70 :radius 2 :segments 12)
        :material (material :name "oak"))
(object "leg-b" :parent bench :mesh (cylinder :height 70 :radius 2 :segments 12)
        :material (material :name "oak"))
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	bench := h.Lookup("bench")
	if bench == nil {
		t.Fatal("expected object named 'bench'")
	}
	if len(bench.Children) != 2 || bench.Children[0] != "leg-a" || bench.Children[1] != "leg-b" {
		t.Errorf("children = %v, want [leg-a leg-b]", bench.Children)
	}
	if len(h.Roots()) != 1 {
		t.Errorf("roots = %v, want only bench", h.Roots())
	}
}

func TestVariableReference(t *testing.T) {
	eng := NewEngine()

	source := `
(def oak (material :name "oak"))
(def w 40)
(object "top" :mesh (box :x w :y 4 :z 20) :material oak)
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	top := h.Lookup("top")
	if top == nil {
		t.Fatal("expected object named 'top'")
	}
	if top.Materials[0].Name != "oak" {
		t.Errorf("material = %+v, want oak", top.Materials[0])
	}
	if got := top.Mesh.Bounds.Max.X(); got != 20 {
		t.Errorf("bounds max X = %g, want half of w", got)
	}
}

// ---------------------------------------------------------------------------
// Combine and restore through the DSL
// ---------------------------------------------------------------------------

func TestCombineBuiltin(t *testing.T) {
	eng := NewEngine()

	source := `
(def oak (material :name "oak"))
(def a (object "a" :mesh (box :x 1 :y 1 :z 1) :material oak))
(def b (object "b" :mesh (box :x 1 :y 1 :z 1) :material oak
               :position (vec3 2 0 0)))
(combine "combined" :objects (list a b))
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	combined := h.Lookup("combined")
	if combined == nil {
		t.Fatal("expected object named 'combined'")
	}
	if combined.Mesh.VertexCount() != 16 || combined.Mesh.TriangleCount() != 24 {
		t.Errorf("combined mesh = %dv/%dt, want 16/24",
			combined.Mesh.VertexCount(), combined.Mesh.TriangleCount())
	}
	// Identical materials coalesce into a single group.
	if combined.Mesh.GroupCount() != 1 || len(combined.Materials) != 1 {
		t.Errorf("groups = %d, materials = %d, want 1/1",
			combined.Mesh.GroupCount(), len(combined.Materials))
	}
	if combined.Combined == nil {
		t.Fatal("combined object carries no restore record")
	}
	for _, name := range []string{"a", "b"} {
		if h.Lookup(name).Active {
			t.Errorf("%s still active after combine", name)
		}
	}
}

func TestCombineWithCulling(t *testing.T) {
	eng := NewEngine()

	// Two unit cubes sharing the wall at x=0.5.
	source := `
(def oak (material :name "oak"))
(def a (object "a" :mesh (box :x 1 :y 1 :z 1) :material oak))
(def b (object "b" :mesh (box :x 1 :y 1 :z 1) :material oak
               :position (vec3 1 0 0)))
(combine "combined" :objects (list a b)
         :strip-mutual-faces true :mutual-threshold 0.01)
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	combined := h.Lookup("combined")
	if combined == nil {
		t.Fatal("expected object named 'combined'")
	}
	// The shared wall loses 2 triangles on each side.
	if got := combined.Mesh.TriangleCount(); got != 20 {
		t.Errorf("triangles after mutual strip = %d, want 20", got)
	}
}

func TestRestoreBuiltin(t *testing.T) {
	eng := NewEngine()

	source := `
(def oak (material :name "oak"))
(def a (object "a" :mesh (box :x 1 :y 1 :z 1) :material oak))
(def b (object "b" :mesh (box :x 1 :y 1 :z 1) :material oak
               :position (vec3 2 0 0)))
(def c (combine "combined" :objects (list a b)))
(restore c)
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	if h.Lookup("combined") != nil {
		t.Error("combined object should be gone after restore")
	}
	a, b := h.Lookup("a"), h.Lookup("b")
	if a == nil || b == nil {
		t.Fatal("sources missing after restore")
	}
	if !a.Active || !b.Active {
		t.Error("sources should be active after restore")
	}
	if b.Position != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("b position = %v, want (2 0 0)", b.Position)
	}
}

func TestCombineInsufficientSources(t *testing.T) {
	eng := NewEngine()

	source := `
(def a (object "a" :mesh (box :x 1 :y 1 :z 1) :material (material :name "oak")))
(combine "combined" :objects (list a))
`
	h, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if h != nil {
		t.Fatal("expected nil hierarchy when combine fails")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for a single-source combine")
	}
}
