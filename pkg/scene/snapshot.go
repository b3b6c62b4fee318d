package scene

import "github.com/go-gl/mathgl/mgl32"

// Snapshot records everything needed to put one source object back exactly
// where it was before a combine: its parent (as an opaque ID, a weak
// reference), its position among that parent's children, and its local
// transform. A snapshot slice is positionally correlated with the
// source list it was captured from, never matched by name or lookup, so
// callers must preserve list order between Capture and Restore.
type Snapshot struct {
	Parent       ObjectID   `json:"parent"`
	SiblingIndex int        `json:"siblingIndex"`
	Position     mgl32.Vec3 `json:"position"`
	Rotation     mgl32.Quat `json:"rotation"`
	Scale        mgl32.Vec3 `json:"scale"`
}

// Capture reads the current parent, sibling index and local transform of
// every source object. It must be called before any destructive mutation of
// the sources (hiding, reparenting): capturing afterwards silently produces
// a wrong snapshot. That is a documented precondition, not something this
// function can detect. A source that does not exist yields a zero snapshot.
// The returned slice always has exactly len(sources) entries.
func Capture(h *Hierarchy, sources []ObjectID) []Snapshot {
	snaps := make([]Snapshot, len(sources))
	for i, id := range sources {
		o := h.Get(id)
		if o == nil {
			continue
		}
		snaps[i] = Snapshot{
			Parent:       o.Parent,
			SiblingIndex: h.SiblingIndex(id),
			Position:     o.Position,
			Rotation:     o.Rotation,
			Scale:        o.Scale,
		}
	}
	return snaps
}

// Restore re-activates each source object and forces it back to its
// captured parent, sibling index and local transform. Only the overlapping
// prefix of sources and snaps is processed, so a length mismatch is never an
// error: partial restores must still proceed for whatever survived. Sources
// that no longer exist are skipped; a captured parent that no longer exists
// falls back to attaching at the hierarchy root. A consumed snapshot is
// stale and should be discarded by the caller.
func Restore(h *Hierarchy, sources []ObjectID, snaps []Snapshot) {
	n := len(sources)
	if len(snaps) < n {
		n = len(snaps)
	}
	for i := 0; i < n; i++ {
		o := h.Get(sources[i])
		if o == nil {
			continue
		}
		o.Active = true
		// Reparent falls back to the root when the captured parent is gone.
		if err := h.Reparent(sources[i], snaps[i].Parent, snaps[i].SiblingIndex); err != nil {
			continue
		}
		o.Position = snaps[i].Position
		o.Rotation = snaps[i].Rotation
		o.Scale = snaps[i].Scale
	}
}
