package sdfx

import (
	"math"
	"testing"
)

func TestBox(t *testing.T) {
	k := New()
	m, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if m.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(m.Vertices), len(m.Normals))
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("invalid mesh: %v", errs)
	}
	t.Logf("box triangle count: %d", m.TriangleCount())
}

func TestBoxBounds(t *testing.T) {
	k := New()
	m, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}

	// Marching cubes resolution blurs the surface slightly.
	const tol = 2.0
	expectMin := [3]float32{-50, -25, -12.5}
	expectMax := [3]float32{50, 25, 12.5}

	for i := 0; i < 3; i++ {
		if math.Abs(float64(m.Bounds.Min[i]-expectMin[i])) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, m.Bounds.Min[i], expectMin[i])
		}
		if math.Abs(float64(m.Bounds.Max[i]-expectMax[i])) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, m.Bounds.Max[i], expectMax[i])
		}
	}
}

func TestSphere(t *testing.T) {
	k := New()
	m, err := k.Sphere(10, 0, 0) // segments/rings ignored by this backend
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	t.Logf("sphere triangle count: %d", m.TriangleCount())
}

func TestCylinder(t *testing.T) {
	k := New()
	m, err := k.Cylinder(50, 10, 32)
	if err != nil {
		t.Fatalf("Cylinder failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if m.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", m.TriangleCount())
}
