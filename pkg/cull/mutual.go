package cull

import (
	"sort"

	"github.com/chazu/glulam/pkg/mesh"
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl32"
)

// antiparallelDot is the strict upper bound on the normal dot product for a
// mutual pair: two normals qualify only when within a fraction of a degree
// of exactly opposite.
const antiparallelDot = -0.999

// centroidTol is the padding used when a triangle centroid is turned into a
// point-like rectangle for the spatial index. Queries are padded the same
// way, so the index only ever over-approximates; the exact distance test
// decides.
const centroidTol = 1e-4

// triangle is one candidate record in the mutual-pair scan. ord is the
// global triangle position (groups in order, triangles ascending within each
// group), which defines the pairing order.
type triangle struct {
	ord        int
	group, tri int
	centroid   mgl32.Vec3
	normal     mgl32.Vec3
}

func (t *triangle) Bounds() rtreego.Rect {
	return rtreego.Point{
		float64(t.centroid.X()),
		float64(t.centroid.Y()),
		float64(t.centroid.Z()),
	}.ToRect(centroidTol)
}

// StripMutualPairs removes pairs of near-opposite, near-coincident
// triangles: internal surfaces where two meshes touch face to face. Two
// triangles form a mutual pair when their face normals are nearly
// antiparallel (dot < -0.999) and their centroids are within maxDistance of
// each other (inclusive). Both members of a pair are removed.
//
// Pairing is first-match-wins in ascending triangle order: each triangle is
// consumed by at most one pair and excluded from further pairing once
// marked. Degenerate triangles have no orientation and are never paired. An
// R-tree over triangle centroids prunes the candidate set; candidates are
// re-sorted by triangle order before matching, so the result is exactly the
// sequential pairwise scan.
func StripMutualPairs(m *mesh.Mesh, maxDistance float32) *mesh.Mesh {
	var tris []*triangle
	ord := 0
	for g := range m.Groups {
		idx := m.Groups[g].Indices
		for t := 0; t+2 < len(idx); t += 3 {
			i0, i1, i2 := idx[t], idx[t+1], idx[t+2]
			n := m.FaceNormal(i0, i1, i2)
			if n != (mgl32.Vec3{}) {
				tris = append(tris, &triangle{
					ord:      ord,
					group:    g,
					tri:      t,
					centroid: m.TriangleCentroid(i0, i1, i2),
					normal:   n,
				})
			}
			ord++
		}
	}

	removed := make([]bool, ord)
	if len(tris) > 1 {
		tree := rtreego.NewTree(3, 25, 50)
		for _, tr := range tris {
			tree.Insert(tr)
		}
		pad := float64(maxDistance) + 2*centroidTol
		for _, a := range tris {
			if removed[a.ord] {
				continue
			}
			query, err := rtreego.NewRect(rtreego.Point{
				float64(a.centroid.X()) - pad,
				float64(a.centroid.Y()) - pad,
				float64(a.centroid.Z()) - pad,
			}, []float64{2 * pad, 2 * pad, 2 * pad})
			if err != nil {
				continue
			}
			candidates := tree.SearchIntersect(query)
			sort.Slice(candidates, func(i, j int) bool {
				return candidates[i].(*triangle).ord < candidates[j].(*triangle).ord
			})
			for _, c := range candidates {
				b := c.(*triangle)
				if b.ord <= a.ord || removed[b.ord] {
					continue
				}
				if a.normal.Dot(b.normal) >= antiparallelDot {
					continue
				}
				if a.centroid.Sub(b.centroid).Len() > maxDistance {
					continue
				}
				removed[a.ord] = true
				removed[b.ord] = true
				break
			}
		}
	}

	out := &mesh.Mesh{
		Vertices: append([]float32(nil), m.Vertices...),
		Groups:   make([]mesh.Group, len(m.Groups)),
	}
	ord = 0
	for g := range m.Groups {
		idx := m.Groups[g].Indices
		kept := make([]uint32, 0, len(idx))
		for t := 0; t+2 < len(idx); t += 3 {
			if !removed[ord] {
				kept = append(kept, idx[t], idx[t+1], idx[t+2])
			}
			ord++
		}
		out.Groups[g].Indices = kept
	}
	out.RecomputeNormals()
	out.RecomputeBounds()
	return out
}
