// Package combine implements the geometry merge engine: it concatenates the
// transformed vertex buffers and triangle groups of several source meshes
// into one combined mesh with material-slotted submesh groups.
//
// Merge is a pure function over its inputs. Hiding, reparenting or otherwise
// mutating the source objects after a successful merge is the orchestration
// layer's job (see scene.CombineObjects), never this package's.
package combine

import (
	"errors"

	"github.com/chazu/glulam/pkg/cull"
	"github.com/chazu/glulam/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInsufficientInput is returned when fewer than two usable sources are
// supplied. No partial result is produced in that case.
var ErrInsufficientInput = errors.New("combine: need at least 2 usable sources")

// Source is one input to a merge: a mesh, the world transform mapping its
// local space into the shared target space, and its materials (one per
// submesh group; if there are fewer materials than groups the last material
// is reused, matching common renderer semantics). Sources are only read
// during a merge, never mutated.
type Source struct {
	Mesh      *mesh.Mesh
	Transform mgl32.Mat4
	Materials []mesh.Material
}

// usable reports whether the source can contribute geometry. Sources that
// lack a mesh, triangles, or a material set are skipped silently rather than
// failing the merge: they are treated as zero-triangle contributions.
func (s *Source) usable() bool {
	return s.Mesh != nil && !s.Mesh.IsEmpty() && s.Mesh.TriangleCount() > 0 && len(s.Materials) > 0
}

// materialFor returns the material for submesh group gi.
func (s *Source) materialFor(gi int) mesh.Material {
	if gi < len(s.Materials) {
		return s.Materials[gi]
	}
	return s.Materials[len(s.Materials)-1]
}

// Settings configures a combine operation.
type Settings struct {
	StripBackFaces   bool    `json:"stripBackFaces"`   // remove inward-facing triangles
	StripMutualFaces bool    `json:"stripMutualFaces"` // remove near-coincident opposite pairs
	MutualThreshold  float32 `json:"mutualThreshold"`  // max centroid distance for a mutual pair
}

// Combined is the output of a merge: one mesh plus the flattened material
// list, one material per submesh group in group order. The caller owns it
// exclusively; the engine keeps no reference.
type Combined struct {
	Mesh      *mesh.Mesh
	Materials []mesh.Material
}

// Merge concatenates the sources into one combined mesh. Every vertex is
// transformed by its source's world transform, so the result lives in the
// shared target space and is invariant under rigid re-origin of the inputs.
// Triangles are grouped by material: groups with an identical material
// coalesce into one output group, in first-appearance order, so distinct
// materials concatenate in source order and render state is unchanged after
// the merge. Normals and bounds of the output are recomputed.
func Merge(sources []Source) (*Combined, error) {
	var usable []*Source
	for i := range sources {
		if sources[i].usable() {
			usable = append(usable, &sources[i])
		}
	}
	if len(usable) < 2 {
		return nil, ErrInsufficientInput
	}

	out := &mesh.Mesh{}

	// Slice, not map, so output group order is deterministic.
	type slot struct {
		material mesh.Material
		indices  []uint32
	}
	var slots []*slot
	slotFor := func(mat mesh.Material) *slot {
		for _, s := range slots {
			if s.material == mat {
				return s
			}
		}
		s := &slot{material: mat}
		slots = append(slots, s)
		return s
	}

	for _, src := range usable {
		base := uint32(out.VertexCount())
		for i := 0; i < src.Mesh.VertexCount(); i++ {
			v := mgl32.TransformCoordinate(src.Mesh.Vertex(uint32(i)), src.Transform)
			out.Vertices = append(out.Vertices, v.X(), v.Y(), v.Z())
		}
		for gi := range src.Mesh.Groups {
			s := slotFor(src.materialFor(gi))
			for _, idx := range src.Mesh.Groups[gi].Indices {
				s.indices = append(s.indices, base+idx)
			}
		}
	}

	combined := &Combined{Mesh: out}
	for _, s := range slots {
		out.Groups = append(out.Groups, mesh.Group{Indices: s.indices})
		combined.Materials = append(combined.Materials, s.material)
	}
	out.RecomputeNormals()
	out.RecomputeBounds()
	return combined, nil
}

// Combine merges the sources and applies the enabled culling passes. When
// both passes are enabled, back-face stripping runs first so the quadratic
// mutual scan sees an already-reduced triangle set. Culling filters triangle
// groups in place-order, so the material list stays aligned with the groups.
func Combine(sources []Source, settings Settings) (*Combined, error) {
	combined, err := Merge(sources)
	if err != nil {
		return nil, err
	}
	if settings.StripBackFaces {
		combined.Mesh = cull.StripInward(combined.Mesh)
	}
	if settings.StripMutualFaces {
		combined.Mesh = cull.StripMutualPairs(combined.Mesh, settings.MutualThreshold)
	}
	return combined, nil
}
