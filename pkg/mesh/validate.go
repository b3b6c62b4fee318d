package mesh

import "fmt"

// ValidationError describes a single mesh invariant violation.
type ValidationError struct {
	Group   int    // which submesh group has the problem (-1 if mesh-level)
	Message string // human-readable description
}

func (e ValidationError) Error() string {
	if e.Group < 0 {
		return e.Message
	}
	return fmt.Sprintf("group %d: %s", e.Group, e.Message)
}

// Validate checks the mesh data-model invariants: the vertex buffer length is
// a multiple of 3, every group's index count is a multiple of 3, every
// triangle index references a valid vertex, and the normal buffer (when
// present) matches the vertex buffer. An empty slice means the mesh is valid.
// Validate is read-only and never mutates the mesh.
func (m *Mesh) Validate() []ValidationError {
	var errs []ValidationError

	if len(m.Vertices)%3 != 0 {
		errs = append(errs, ValidationError{
			Group:   -1,
			Message: fmt.Sprintf("vertex buffer length %d is not a multiple of 3", len(m.Vertices)),
		})
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		errs = append(errs, ValidationError{
			Group:   -1,
			Message: fmt.Sprintf("normal buffer length %d does not match vertex buffer length %d", len(m.Normals), len(m.Vertices)),
		})
	}

	vertexCount := uint32(m.VertexCount())
	for g := range m.Groups {
		idx := m.Groups[g].Indices
		if len(idx)%3 != 0 {
			errs = append(errs, ValidationError{
				Group:   g,
				Message: fmt.Sprintf("index count %d is not a multiple of 3", len(idx)),
			})
		}
		for i, vi := range idx {
			if vi >= vertexCount {
				errs = append(errs, ValidationError{
					Group:   g,
					Message: fmt.Sprintf("index %d references vertex %d, mesh has %d vertices", i, vi, vertexCount),
				})
				break // one report per group is enough
			}
		}
	}

	return errs
}
