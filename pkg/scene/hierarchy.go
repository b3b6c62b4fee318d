// Package scene models the object hierarchy the combiner operates against:
// named objects with parent/child structure, sibling ordering, local
// transforms and activation state. It also implements the snapshot/restore
// protocol that makes a combine operation exactly reversible, and the
// orchestration that ties the pure merge engine to the hierarchy's side
// effects (hiding sources, attaching results).
package scene

import (
	"fmt"

	"github.com/chazu/glulam/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectID identifies an object in the hierarchy. IDs are opaque: snapshots
// record them as weak references, never as live handles, so a recorded ID may
// refer to an object that no longer exists.
type ObjectID string

// Root is the parent value meaning "attached at the hierarchy root".
const Root ObjectID = ""

// CombineRecord is the restore metadata attached to a combined result: which
// objects it was built from and the hierarchy snapshot taken before they
// were deactivated. Positionally correlated: Snapshots[i] belongs to
// Sources[i].
type CombineRecord struct {
	Sources   []ObjectID `json:"sources"`
	Snapshots []Snapshot `json:"snapshots"`
}

// Object is a node in the hierarchy. Children holds the direct children in
// sibling order, which defines render/iteration order.
type Object struct {
	ID       ObjectID   `json:"id"`
	Name     string     `json:"name,omitempty"`
	Parent   ObjectID   `json:"parent,omitempty"`
	Children []ObjectID `json:"children,omitempty"`

	Position mgl32.Vec3 `json:"position"` // local
	Rotation mgl32.Quat `json:"rotation"` // local
	Scale    mgl32.Vec3 `json:"scale"`    // local
	Active   bool       `json:"active"`

	Mesh      *mesh.Mesh      `json:"mesh,omitempty"`
	Materials []mesh.Material `json:"materials,omitempty"`

	// Combined is non-nil on a combined result that has not been restored.
	Combined *CombineRecord `json:"combined,omitempty"`
}

// NewObject creates an active object with an identity local transform.
func NewObject(id ObjectID, name string) *Object {
	return &Object{
		ID:       id,
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Active:   true,
	}
}

// Renderable reports whether the object contributes geometry: it has a mesh
// with at least one triangle and a material set.
func (o *Object) Renderable() bool {
	return o.Mesh != nil && o.Mesh.TriangleCount() > 0 && len(o.Materials) > 0
}

// LocalTransform returns the object's local T·R·S matrix.
func (o *Object) LocalTransform() mgl32.Mat4 {
	t := mgl32.Translate3D(o.Position.X(), o.Position.Y(), o.Position.Z())
	s := mgl32.Scale3D(o.Scale.X(), o.Scale.Y(), o.Scale.Z())
	return t.Mul4(o.Rotation.Mat4()).Mul4(s)
}

// Hierarchy is the object tree. Roots holds the top-level objects in sibling
// order; every other object appears in exactly one parent's Children list.
type Hierarchy struct {
	objects map[ObjectID]*Object
	roots   []ObjectID
	names   map[string]ObjectID
}

// New creates an empty Hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		objects: make(map[ObjectID]*Object),
		names:   make(map[string]ObjectID),
	}
}

// Len returns the number of live objects.
func (h *Hierarchy) Len() int {
	return len(h.objects)
}

// Roots returns the top-level object IDs in sibling order.
func (h *Hierarchy) Roots() []ObjectID {
	return h.roots
}

// Get returns the object with the given ID, or nil if it does not exist.
func (h *Hierarchy) Get(id ObjectID) *Object {
	return h.objects[id]
}

// Lookup returns the object with the given user-assigned name, or nil.
func (h *Hierarchy) Lookup(name string) *Object {
	id, ok := h.names[name]
	if !ok {
		return nil
	}
	return h.objects[id]
}

// Add inserts an object. Its Parent field decides where it attaches; the new
// object becomes the last sibling. Adding under an unknown parent or reusing
// an ID is an error.
func (h *Hierarchy) Add(o *Object) error {
	if o.ID == Root {
		return fmt.Errorf("scene: object needs a non-empty ID")
	}
	if _, exists := h.objects[o.ID]; exists {
		return fmt.Errorf("scene: object %q already exists", o.ID)
	}
	siblings := &h.roots
	if o.Parent != Root {
		parent := h.objects[o.Parent]
		if parent == nil {
			return fmt.Errorf("scene: parent %q of %q does not exist", o.Parent, o.ID)
		}
		siblings = &parent.Children
	}
	h.objects[o.ID] = o
	*siblings = append(*siblings, o.ID)
	if o.Name != "" {
		h.names[o.Name] = o.ID
	}
	return nil
}

// Remove destroys an object and its entire subtree. Removing an unknown ID
// is a no-op: destruction must be idempotent because restore-time callers
// may race the host over object lifetime.
func (h *Hierarchy) Remove(id ObjectID) {
	o := h.objects[id]
	if o == nil {
		return
	}
	for _, child := range append([]ObjectID(nil), o.Children...) {
		h.Remove(child)
	}
	h.detach(o)
	delete(h.objects, id)
	if o.Name != "" && h.names[o.Name] == id {
		delete(h.names, o.Name)
	}
}

// SiblingIndex returns the object's position among its parent's direct
// children, or -1 if the object does not exist.
func (h *Hierarchy) SiblingIndex(id ObjectID) int {
	o := h.objects[id]
	if o == nil {
		return -1
	}
	for i, sib := range *h.siblings(o) {
		if sib == id {
			return i
		}
	}
	return -1
}

// Reparent moves an object under newParent at the given sibling position
// (clamped to the sibling list). A newParent that no longer exists falls
// back to the hierarchy root: the snapshot records identity only, not a
// guaranteed-alive link. Reparenting an object under itself or one of its
// descendants is an error.
func (h *Hierarchy) Reparent(id, newParent ObjectID, siblingIndex int) error {
	o := h.objects[id]
	if o == nil {
		return fmt.Errorf("scene: object %q does not exist", id)
	}
	if newParent != Root && h.objects[newParent] == nil {
		newParent = Root
	}
	for p := newParent; p != Root; p = h.objects[p].Parent {
		if p == id {
			return fmt.Errorf("scene: cannot reparent %q under its own subtree", id)
		}
	}

	h.detach(o)
	o.Parent = newParent
	siblings := h.siblings(o)
	if siblingIndex < 0 {
		siblingIndex = 0
	}
	if siblingIndex > len(*siblings) {
		siblingIndex = len(*siblings)
	}
	*siblings = append(*siblings, "")
	copy((*siblings)[siblingIndex+1:], (*siblings)[siblingIndex:])
	(*siblings)[siblingIndex] = id
	return nil
}

// SetActive toggles an object's activation state. Unknown IDs are ignored.
func (h *Hierarchy) SetActive(id ObjectID, active bool) {
	if o := h.objects[id]; o != nil {
		o.Active = active
	}
}

// WorldTransform composes the local transforms up the parent chain, mapping
// the object's local space into the shared scene space.
func (h *Hierarchy) WorldTransform(id ObjectID) mgl32.Mat4 {
	o := h.objects[id]
	if o == nil {
		return mgl32.Ident4()
	}
	world := o.LocalTransform()
	for p := o.Parent; p != Root; {
		parent := h.objects[p]
		if parent == nil {
			break
		}
		world = parent.LocalTransform().Mul4(world)
		p = parent.Parent
	}
	return world
}

// siblings returns the child list the object lives in.
func (h *Hierarchy) siblings(o *Object) *[]ObjectID {
	if o.Parent == Root {
		return &h.roots
	}
	parent := h.objects[o.Parent]
	if parent == nil {
		return &h.roots
	}
	return &parent.Children
}

// detach removes the object from its current sibling list without deleting
// it.
func (h *Hierarchy) detach(o *Object) {
	siblings := h.siblings(o)
	for i, sib := range *siblings {
		if sib == o.ID {
			*siblings = append((*siblings)[:i], (*siblings)[i+1:]...)
			return
		}
	}
}
