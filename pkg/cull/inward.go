// Package cull implements the optional geometry-pruning passes that discard
// triangles unlikely to ever be visible. Both passes are value-semantics
// transformations: they take a mesh, return a new mesh sharing no buffers
// with the input, and only ever filter triangle index lists; the vertex
// buffer is copied untouched. Normals and bounds are recomputed on output.
// The passes are independently callable and compose in either order.
package cull

import (
	"github.com/chazu/glulam/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// StripInward removes triangles whose face normal points back toward the
// mesh interior. The interior is approximated by the unweighted centroid of
// all vertices: a triangle is kept when the dot product of its face normal
// with the direction from the mesh centroid to the triangle centroid is
// positive.
//
// This is a heuristic, not an exact visibility test. It is correct for
// convex-ish, roughly star-shaped geometry and degrades gracefully (over- or
// under-culls) on concave shapes. Degenerate triangles have no preferred
// direction and are always kept. The centroid derives from the vertex
// buffer, which this pass never touches, so repeated application is
// idempotent. An empty mesh passes through unchanged.
func StripInward(m *mesh.Mesh) *mesh.Mesh {
	out := &mesh.Mesh{
		Vertices: append([]float32(nil), m.Vertices...),
		Groups:   make([]mesh.Group, len(m.Groups)),
	}
	center := m.Centroid()

	for g := range m.Groups {
		idx := m.Groups[g].Indices
		kept := make([]uint32, 0, len(idx))
		for t := 0; t+2 < len(idx); t += 3 {
			i0, i1, i2 := idx[t], idx[t+1], idx[t+2]
			n := m.FaceNormal(i0, i1, i2)
			if n == (mgl32.Vec3{}) {
				kept = append(kept, i0, i1, i2)
				continue
			}
			dir := m.TriangleCentroid(i0, i1, i2).Sub(center)
			if n.Dot(dir) > 0 {
				kept = append(kept, i0, i1, i2)
			}
		}
		out.Groups[g].Indices = kept
	}

	out.RecomputeNormals()
	out.RecomputeBounds()
	return out
}
