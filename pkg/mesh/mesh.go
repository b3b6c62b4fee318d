// Package mesh defines the triangle mesh data model shared by the merge
// engine and the culling passes. All buffers are flat: vertices has 3 floats
// per vertex (x,y,z), normals has 3 floats per vertex, and each group's
// indices has 3 uint32s per triangle. Normals and bounds are derived data,
// recomputed whenever the vertex or triangle set changes; the vertex buffer
// and the group index lists are the source of truth.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Material identifies a render material slot. Advisory only: the mesh code
// never interprets it beyond equality, which decides whether two submesh
// groups can be coalesced during a merge.
type Material struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"` // e.g. "#4A90D9"
}

// Group is one submesh: a contiguous run of triangles sharing one material
// slot. Indices reference the owning mesh's vertex buffer.
type Group struct {
	Indices []uint32 `json:"indices"` // [i0,i1,i2, ...] triangles
}

// TriangleCount returns the number of triangles in the group.
func (g *Group) TriangleCount() int {
	return len(g.Indices) / 3
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3 `json:"min"`
	Max mgl32.Vec3 `json:"max"`
}

// Mesh is a triangle mesh with one or more material-slotted submesh groups.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // per-vertex, derived
	Groups   []Group   `json:"groups"`   // submeshes
	Bounds   Bounds    `json:"bounds"`   // derived
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the total number of triangles across all groups.
func (m *Mesh) TriangleCount() int {
	total := 0
	for i := range m.Groups {
		total += m.Groups[i].TriangleCount()
	}
	return total
}

// GroupCount returns the number of submesh groups.
func (m *Mesh) GroupCount() int {
	return len(m.Groups)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

// Triangle returns the index triple of triangle t within group g.
func (m *Mesh) Triangle(g, t int) (uint32, uint32, uint32) {
	idx := m.Groups[g].Indices
	return idx[t*3], idx[t*3+1], idx[t*3+2]
}

// Centroid returns the unweighted average of all vertex positions. An empty
// mesh yields the origin. This is the "inside" approximation the inward
// culling pass orients against.
func (m *Mesh) Centroid() mgl32.Vec3 {
	n := m.VertexCount()
	if n == 0 {
		return mgl32.Vec3{}
	}
	var sum mgl32.Vec3
	for i := 0; i < n; i++ {
		sum = sum.Add(m.Vertex(uint32(i)))
	}
	return sum.Mul(1 / float32(n))
}

// FaceNormal returns the normalized face normal of the triangle (i0,i1,i2).
// A degenerate triangle (colinear or coincident vertices) produces the zero
// vector, meaning "no preferred direction"; callers must treat such
// triangles as unorientable rather than dividing by the zero length.
func (m *Mesh) FaceNormal(i0, i1, i2 uint32) mgl32.Vec3 {
	a := m.Vertex(i0)
	cross := m.Vertex(i1).Sub(a).Cross(m.Vertex(i2).Sub(a))
	return safeNormalize(cross)
}

// TriangleCentroid returns the centroid of the triangle (i0,i1,i2).
func (m *Mesh) TriangleCentroid(i0, i1, i2 uint32) mgl32.Vec3 {
	return m.Vertex(i0).Add(m.Vertex(i1)).Add(m.Vertex(i2)).Mul(1.0 / 3.0)
}

// Clone returns a deep copy sharing no buffers with the receiver.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: append([]float32(nil), m.Vertices...),
		Normals:  append([]float32(nil), m.Normals...),
		Groups:   make([]Group, len(m.Groups)),
		Bounds:   m.Bounds,
	}
	for i := range m.Groups {
		out.Groups[i].Indices = append([]uint32(nil), m.Groups[i].Indices...)
	}
	return out
}

// RecomputeNormals rebuilds the per-vertex normal buffer from the triangle
// set. Face normals are accumulated area-weighted (unnormalized cross
// products) onto each referenced vertex, then normalized. Vertices referenced
// by no triangle, and vertices whose accumulated normal cancels to zero, get
// the zero normal.
func (m *Mesh) RecomputeNormals() {
	m.Normals = make([]float32, len(m.Vertices))
	for g := range m.Groups {
		idx := m.Groups[g].Indices
		for t := 0; t+2 < len(idx); t += 3 {
			i0, i1, i2 := idx[t], idx[t+1], idx[t+2]
			a := m.Vertex(i0)
			fn := m.Vertex(i1).Sub(a).Cross(m.Vertex(i2).Sub(a))
			for _, vi := range [3]uint32{i0, i1, i2} {
				m.Normals[vi*3] += fn.X()
				m.Normals[vi*3+1] += fn.Y()
				m.Normals[vi*3+2] += fn.Z()
			}
		}
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := safeNormalize(mgl32.Vec3{m.Normals[i], m.Normals[i+1], m.Normals[i+2]})
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = n.X(), n.Y(), n.Z()
	}
}

// RecomputeBounds rebuilds the axis-aligned bounding box from the vertex
// buffer. An empty mesh gets a zero box.
func (m *Mesh) RecomputeBounds() {
	if m.IsEmpty() {
		m.Bounds = Bounds{}
		return
	}
	min := m.Vertex(0)
	max := min
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(uint32(i))
		for axis := 0; axis < 3; axis++ {
			if v[axis] < min[axis] {
				min[axis] = v[axis]
			}
			if v[axis] > max[axis] {
				max[axis] = v[axis]
			}
		}
	}
	m.Bounds = Bounds{Min: min, Max: max}
}

// minNormalLenSq is the squared-length floor below which a direction vector
// is considered degenerate.
const minNormalLenSq = 1e-12

// safeNormalize normalizes v, returning the zero vector for degenerate input
// instead of producing NaNs.
func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	lenSq := v.Dot(v)
	if lenSq < minNormalLenSq {
		return mgl32.Vec3{}
	}
	return v.Normalize()
}
