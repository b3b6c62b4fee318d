// Package primitive defines the mesh source interface and the exact
// parametric backend. Implementations (parametric, sdfx) produce triangle
// meshes for the combiner behind this interface, so callers can swap the
// analytic tessellator for the SDF-based one without changing anything else.
package primitive

import (
	"fmt"
	"math"

	"github.com/chazu/glulam/pkg/mesh"
)

// Mesher produces source meshes for the combiner. All meshes are centered at
// the origin with a single submesh group, derived normals and bounds already
// computed, and outward-facing (counter-clockwise) winding.
type Mesher interface {
	Box(x, y, z float32) (*mesh.Mesh, error)
	Sphere(radius float32, segments, rings int) (*mesh.Mesh, error)
	Cylinder(height, radius float32, segments int) (*mesh.Mesh, error)
}

// Compile-time interface check.
var _ Mesher = (*Parametric)(nil)

// Parametric is the analytic tessellation backend. Unlike the sdfx backend it
// produces exact vertex/triangle counts (a box is always 8 vertices and 12
// triangles), which the tests and the merge scenarios rely on.
type Parametric struct{}

// New returns a new Parametric mesher.
func New() *Parametric {
	return &Parametric{}
}

// Box returns an indexed box with dimensions (x, y, z) centered at the
// origin: 8 vertices, 12 triangles.
func (p *Parametric) Box(x, y, z float32) (*mesh.Mesh, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("box: dimensions must be positive, got (%g, %g, %g)", x, y, z)
	}
	hx, hy, hz := x/2, y/2, z/2

	m := &mesh.Mesh{
		Vertices: []float32{
			-hx, -hy, -hz, // 0
			hx, -hy, -hz, // 1
			hx, hy, -hz, // 2
			-hx, hy, -hz, // 3
			-hx, -hy, hz, // 4
			hx, -hy, hz, // 5
			hx, hy, hz, // 6
			-hx, hy, hz, // 7
		},
		Groups: []mesh.Group{{Indices: []uint32{
			4, 5, 6, 4, 6, 7, // front (+z)
			0, 3, 2, 0, 2, 1, // back (-z)
			1, 2, 6, 1, 6, 5, // right (+x)
			0, 4, 7, 0, 7, 3, // left (-x)
			3, 7, 6, 3, 6, 2, // top (+y)
			0, 1, 5, 0, 5, 4, // bottom (-y)
		}}},
	}
	finish(m)
	return m, nil
}

// Sphere returns a closed uv-sphere centered at the origin with the given
// longitudinal segment and latitudinal ring counts.
func (p *Parametric) Sphere(radius float32, segments, rings int) (*mesh.Mesh, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere: radius must be positive, got %g", radius)
	}
	if segments < 3 || rings < 2 {
		return nil, fmt.Errorf("sphere: need at least 3 segments and 2 rings, got %d/%d", segments, rings)
	}

	m := &mesh.Mesh{}
	r := float64(radius)

	// Top pole, interior rings, bottom pole.
	m.Vertices = append(m.Vertices, 0, radius, 0)
	for i := 1; i < rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			m.Vertices = append(m.Vertices,
				float32(r*math.Sin(phi)*math.Cos(theta)),
				float32(r*math.Cos(phi)),
				float32(r*math.Sin(phi)*math.Sin(theta)))
		}
	}
	bottom := uint32(1 + (rings-1)*segments)
	m.Vertices = append(m.Vertices, 0, -radius, 0)

	ring := func(i, j int) uint32 {
		return uint32(1 + (i-1)*segments + j%segments)
	}

	var idx []uint32
	for j := 0; j < segments; j++ {
		idx = append(idx, 0, ring(1, j+1), ring(1, j))
	}
	for i := 1; i < rings-1; i++ {
		for j := 0; j < segments; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j+1), ring(i+1, j)
			idx = append(idx, a, b, c, a, c, d)
		}
	}
	for j := 0; j < segments; j++ {
		idx = append(idx, bottom, ring(rings-1, j), ring(rings-1, j+1))
	}
	m.Groups = []mesh.Group{{Indices: idx}}
	finish(m)
	return m, nil
}

// Cylinder returns a capped cylinder along the Z axis centered at the origin.
func (p *Parametric) Cylinder(height, radius float32, segments int) (*mesh.Mesh, error) {
	if height <= 0 || radius <= 0 {
		return nil, fmt.Errorf("cylinder: height and radius must be positive, got (%g, %g)", height, radius)
	}
	if segments < 3 {
		return nil, fmt.Errorf("cylinder: need at least 3 segments, got %d", segments)
	}

	m := &mesh.Mesh{}
	hz := height / 2
	for _, z := range []float32{-hz, hz} {
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			m.Vertices = append(m.Vertices,
				radius*float32(math.Cos(theta)),
				radius*float32(math.Sin(theta)),
				z)
		}
	}
	bottomCenter := uint32(2 * segments)
	topCenter := uint32(2*segments + 1)
	m.Vertices = append(m.Vertices, 0, 0, -hz, 0, 0, hz)

	bot := func(j int) uint32 { return uint32(j % segments) }
	top := func(j int) uint32 { return uint32(segments + j%segments) }

	var idx []uint32
	for j := 0; j < segments; j++ {
		a, b := bot(j), bot(j+1)
		c, d := top(j+1), top(j)
		idx = append(idx, a, b, c, a, c, d)
	}
	for j := 0; j < segments; j++ {
		idx = append(idx, topCenter, top(j), top(j+1))
		idx = append(idx, bottomCenter, bot(j+1), bot(j))
	}
	m.Groups = []mesh.Group{{Indices: idx}}
	finish(m)
	return m, nil
}

// finish computes the derived buffers every backend must deliver.
func finish(m *mesh.Mesh) {
	m.RecomputeNormals()
	m.RecomputeBounds()
}
