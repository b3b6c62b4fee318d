// Package sdfx implements the primitive.Mesher interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Meshes come out of marching
// cubes, so vertex and triangle counts depend on the tessellation resolution;
// use the parametric backend when exact counts matter.
package sdfx

import (
	"fmt"

	"github.com/chazu/glulam/pkg/mesh"
	"github.com/chazu/glulam/pkg/primitive"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ primitive.Mesher = (*Mesher)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 100

// Mesher implements primitive.Mesher using sdfx.
type Mesher struct {
	cells int
}

// New returns a new sdfx Mesher at the default resolution.
func New() *Mesher {
	return &Mesher{cells: defaultMeshCells}
}

// Box creates a box with the given dimensions centered at the origin.
func (k *Mesher) Box(x, y, z float32) (*mesh.Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	return k.toMesh(s), nil
}

// Sphere creates a sphere centered at the origin. The segments and rings
// parameters are ignored since SDF represents smooth surfaces.
func (k *Mesher) Sphere(radius float32, segments, rings int) (*mesh.Mesh, error) {
	s, err := sdf.Sphere3D(float64(radius))
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return k.toMesh(s), nil
}

// Cylinder creates a cylinder along the Z axis centered at the origin. The
// segments parameter is ignored since SDF represents smooth surfaces.
func (k *Mesher) Cylinder(height, radius float32, segments int) (*mesh.Mesh, error) {
	s, err := sdf.Cylinder3D(float64(height), float64(radius), 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	return k.toMesh(s), nil
}

// toMesh converts an SDF to a triangle mesh using marching cubes. Marching
// cubes emits triangle soup, so each triangle gets its own three vertices.
func (k *Mesher) toMesh(s sdf.SDF3) *mesh.Mesh {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	m := &mesh.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Groups:   []mesh.Group{{Indices: make([]uint32, 0, numVerts)}},
	}
	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Groups[0].Indices = append(m.Groups[0].Indices, uint32(i*3+j))
		}
	}
	m.RecomputeNormals()
	m.RecomputeBounds()
	return m
}
