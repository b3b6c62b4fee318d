package scene

import (
	"fmt"

	"github.com/chazu/glulam/pkg/combine"
)

// CombineObjects is the orchestration around the pure merge engine: it
// filters the candidate list down to usable sources (renderable, not itself
// a combined result), captures the hierarchy snapshot while the sources are
// still untouched, merges them in world space, attaches the result as a new
// root-level object carrying the restore metadata, and finally deactivates
// the sources. The merge itself never mutates the hierarchy; every side
// effect lives here.
func CombineObjects(h *Hierarchy, name string, candidates []ObjectID, settings combine.Settings) (*Object, error) {
	var ids []ObjectID
	var sources []combine.Source
	for _, id := range candidates {
		o := h.Get(id)
		if o == nil || !o.Renderable() || o.Combined != nil {
			continue
		}
		ids = append(ids, id)
		sources = append(sources, combine.Source{
			Mesh:      o.Mesh,
			Transform: h.WorldTransform(id),
			Materials: o.Materials,
		})
	}

	// Snapshot first: after the merge succeeds the sources get hidden, and
	// a capture taken after that would record the mutated state.
	snaps := Capture(h, ids)

	combined, err := combine.Combine(sources, settings)
	if err != nil {
		return nil, err
	}

	result := NewObject(ObjectID(name), name)
	result.Mesh = combined.Mesh
	result.Materials = combined.Materials
	result.Combined = &CombineRecord{Sources: ids, Snapshots: snaps}
	if err := h.Add(result); err != nil {
		return nil, fmt.Errorf("scene: attach combined result: %w", err)
	}

	for _, id := range ids {
		h.SetActive(id, false)
	}
	return result, nil
}

// RestoreObjects is the undo entry point for a combined result: it puts the
// surviving source objects back to their captured arrangement and removes
// the combined object from the hierarchy. The snapshot is consumed exactly
// once; restoring an object that is not an unconsumed combined result is an
// error.
func RestoreObjects(h *Hierarchy, combinedID ObjectID) error {
	o := h.Get(combinedID)
	if o == nil {
		return fmt.Errorf("scene: no object %q", combinedID)
	}
	if o.Combined == nil {
		return fmt.Errorf("scene: object %q is not a combined result", combinedID)
	}
	record := o.Combined
	o.Combined = nil
	Restore(h, record.Sources, record.Snapshots)
	h.Remove(combinedID)
	return nil
}
