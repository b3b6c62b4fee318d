package scene

import "fmt"

// ValidationError describes a single hierarchy consistency finding.
type ValidationError struct {
	ObjectID ObjectID // which object has the problem (empty if hierarchy-level)
	Message  string
}

func (e ValidationError) Error() string {
	if e.ObjectID == Root {
		return e.Message
	}
	return fmt.Sprintf("object %q: %s", e.ObjectID, e.Message)
}

// Validate runs structural consistency checks over the hierarchy: every
// child reference resolves, child lists agree with Parent fields, no object
// appears in two sibling lists, and the parent chain is acyclic. An empty
// slice means the hierarchy is consistent. Validate is read-only.
func (h *Hierarchy) Validate() []ValidationError {
	var errs []ValidationError

	seen := make(map[ObjectID]ObjectID) // child -> holder of the sibling list
	checkList := func(holder ObjectID, children []ObjectID) {
		for _, child := range children {
			c := h.objects[child]
			if c == nil {
				errs = append(errs, ValidationError{
					ObjectID: holder,
					Message:  fmt.Sprintf("child %q does not exist", child),
				})
				continue
			}
			if c.Parent != holder {
				errs = append(errs, ValidationError{
					ObjectID: child,
					Message:  fmt.Sprintf("listed under %q but has parent %q", holder, c.Parent),
				})
			}
			if prev, dup := seen[child]; dup {
				errs = append(errs, ValidationError{
					ObjectID: child,
					Message:  fmt.Sprintf("appears in the sibling lists of both %q and %q", prev, holder),
				})
			}
			seen[child] = holder
		}
	}

	checkList(Root, h.roots)
	for id, o := range h.objects {
		checkList(id, o.Children)
	}

	for id, o := range h.objects {
		if o.Parent != Root && h.objects[o.Parent] == nil {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  fmt.Sprintf("parent %q does not exist", o.Parent),
			})
		}
		if _, ok := seen[id]; !ok {
			errs = append(errs, ValidationError{
				ObjectID: id,
				Message:  "not reachable from any sibling list",
			})
		}
	}

	// Cycle check: walk each parent chain with a step bound.
	for id, o := range h.objects {
		steps := 0
		for p := o.Parent; p != Root; steps++ {
			if p == id {
				errs = append(errs, ValidationError{
					ObjectID: id,
					Message:  "parent chain forms a cycle",
				})
				break
			}
			if steps > len(h.objects) {
				break // cycle not through id; reported by its own member
			}
			po := h.objects[p]
			if po == nil {
				break // dangling parent, reported above
			}
			p = po.Parent
		}
	}

	return errs
}
