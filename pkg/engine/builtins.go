package engine

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/glulam/pkg/combine"
	"github.com/chazu/glulam/pkg/mesh"
	"github.com/chazu/glulam/pkg/primitive"
	"github.com/chazu/glulam/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Glulam Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: strip-back-faces -> strip_back_faces
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus
		// operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMaterial wraps a mesh.Material so it can be passed between builtins.
type sexpMaterial struct {
	mat mesh.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :name %q)", m.mat.Name)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a mesh so it can be returned from the primitive builtins
// and consumed by `object`.
type sexpMesh struct {
	m *mesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %dv %dt)", s.m.VertexCount(), s.m.TriangleCount())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpObjectRef wraps a scene.ObjectID so it can be passed between builtins.
type sexpObjectRef struct {
	id   scene.ObjectID
	name string // human-readable name for error messages
}

func (n *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(objectref %q)", n.name)
	}
	return fmt.Sprintf("(objectref %s)", string(n.id))
}
func (n *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an mgl32.Vec3.
type sexpVec3 struct {
	vec mgl32.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat32 extracts a float32 from a Sexp (SexpInt or SexpFloat).
func toFloat32(s zygo.Sexp) (float32, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float32(v.Val), nil
	case *zygo.SexpFloat:
		return float32(v.Val), nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toObjectRef extracts an ObjectID from a sexpObjectRef.
func toObjectRef(s zygo.Sexp) (scene.ObjectID, error) {
	if ref, ok := s.(*sexpObjectRef); ok {
		return ref.id, nil
	}
	return scene.Root, fmt.Errorf("expected object reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl32.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl32.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMaterial extracts a Material from a sexpMaterial.
func toMaterial(s zygo.Sexp) (mesh.Material, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.mat, nil
	}
	return mesh.Material{}, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Object ID generation
// ---------------------------------------------------------------------------

// objectCounter provides unique suffixes for anonymous objects.
var objectCounter uint64

func nextObjectSuffix() string {
	n := atomic.AddUint64(&objectCounter, 1)
	return fmt.Sprintf("_anon_%d", n)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Glulam DSL builtins into a zygomys
// environment. The builtins operate on the provided Hierarchy, populating it
// during evaluation; primitive meshes come from the given mesher.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, h *scene.Hierarchy, mesher primitive.Mesher) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl32.Vec3
		for i := 0; i < 3; i++ {
			f, err := toFloat32(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (material :name "oak" :color "#8B5A2B")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		mat := mesh.Material{}

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
			}
			mat.Name = s
		}
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: color: %w", err)
			}
			mat.Color = s
		}

		return &sexpMaterial{mat: mat}, nil
	})

	// -----------------------------------------------------------------------
	// (box :x 40 :y 20 :z 10)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dims := [3]float32{1, 1, 1}
		for i, axis := range []string{"x", "y", "z"} {
			if v, ok := pa.kw[axis]; ok {
				f, err := toFloat32(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: %s: %w", axis, err)
				}
				dims[i] = f
			}
		}
		m, err := mesher.Box(dims[0], dims[1], dims[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 10 :segments 24 :rings 12)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius := float32(1)
		segments, rings := 24, 12

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			radius = f
		}
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: segments: %w", err)
			}
			segments = n
		}
		if v, ok := pa.kw["rings"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: rings: %w", err)
			}
			rings = n
		}

		m, err := mesher.Sphere(radius, segments, rings)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 30 :radius 5 :segments 24)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		height, radius := float32(1), float32(1)
		segments := 24

		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			height = f
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			radius = f
		}
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			segments = n
		}

		m, err := mesher.Cylinder(height, radius, segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpMesh{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (object "leg" :mesh (box :x 4 :y 70 :z 4) :material oak
	//               :position (vec3 0 35 0) :rotation (vec3 0 45 0)
	//               :scale (vec3 1 1 1) :parent bench)
	//
	// Rotation is Euler angles in degrees, applied in XYZ order.
	// -----------------------------------------------------------------------
	env.AddFunction("object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		objName := ""
		if len(pa.positional) > 0 {
			s, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: name: %w", err)
			}
			objName = s
		}
		id := scene.ObjectID(objName)
		if objName == "" {
			id = scene.ObjectID("object" + nextObjectSuffix())
		}

		o := scene.NewObject(id, objName)

		if v, ok := pa.kw["mesh"]; ok {
			m, err := toMesh(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: mesh: %w", err)
			}
			o.Mesh = m
		}
		if v, ok := pa.kw["material"]; ok {
			mat, err := toMaterial(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: material: %w", err)
			}
			o.Materials = []mesh.Material{mat}
		}
		if v, ok := pa.kw["position"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: position: %w", err)
			}
			o.Position = vec
		}
		if v, ok := pa.kw["rotation"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: rotation: %w", err)
			}
			o.Rotation = eulerDegreesToQuat(vec)
		}
		if v, ok := pa.kw["scale"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: scale: %w", err)
			}
			o.Scale = vec
		}
		if v, ok := pa.kw["parent"]; ok {
			pid, err := toObjectRef(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: parent: %w", err)
			}
			o.Parent = pid
		}

		if err := h.Add(o); err != nil {
			return zygo.SexpNull, fmt.Errorf("object: %w", err)
		}
		return &sexpObjectRef{id: id, name: objName}, nil
	})

	// -----------------------------------------------------------------------
	// (combine "combined" :objects (list a b c)
	//          :strip-back-faces true
	//          :strip-mutual-faces true :mutual-threshold 0.01)
	// -----------------------------------------------------------------------
	env.AddFunction("combine", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("combine requires a name argument")
		}
		resultName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("combine: name: %w", err)
		}

		var ids []scene.ObjectID
		if v, ok := pa.kw["objects"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine: objects: %w", err)
			}
			for _, item := range items {
				id, err := toObjectRef(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("combine: objects entry: %w", err)
				}
				ids = append(ids, id)
			}
		}

		settings := combine.Settings{}
		if v, ok := pa.kw["strip-back-faces"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine: strip-back-faces: %w", err)
			}
			settings.StripBackFaces = b
		}
		if v, ok := pa.kw["strip-mutual-faces"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine: strip-mutual-faces: %w", err)
			}
			settings.StripMutualFaces = b
		}
		if v, ok := pa.kw["mutual-threshold"]; ok {
			f, err := toFloat32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine: mutual-threshold: %w", err)
			}
			settings.MutualThreshold = f
		}

		result, err := scene.CombineObjects(h, resultName, ids, settings)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("combine: %w", err)
		}
		return &sexpObjectRef{id: result.ID, name: resultName}, nil
	})

	// -----------------------------------------------------------------------
	// (restore combined)
	// -----------------------------------------------------------------------
	env.AddFunction("restore", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("restore requires a combined object reference")
		}
		id, err := toObjectRef(args[0])
		if err != nil {
			// Accept a name string as well as a reference.
			s, serr := toString(args[0])
			if serr != nil {
				return zygo.SexpNull, fmt.Errorf("restore: %w", err)
			}
			o := h.Lookup(s)
			if o == nil {
				return zygo.SexpNull, fmt.Errorf("restore: no object named %q", s)
			}
			id = o.ID
		}
		if err := scene.RestoreObjects(h, id); err != nil {
			return zygo.SexpNull, fmt.Errorf("restore: %w", err)
		}
		return zygo.SexpNull, nil
	})
}

// eulerDegreesToQuat builds a rotation quaternion from Euler angles in
// degrees, applied in XYZ order.
func eulerDegreesToQuat(deg mgl32.Vec3) mgl32.Quat {
	const toRad = math.Pi / 180
	return mgl32.AnglesToQuat(deg.X()*toRad, deg.Y()*toRad, deg.Z()*toRad, mgl32.XYZ)
}
