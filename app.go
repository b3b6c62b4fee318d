package main

import (
	"context"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/glulam/pkg/engine"
	"github.com/chazu/glulam/pkg/mesh"
	"github.com/chazu/glulam/pkg/scene"
)

// colorPalette is a default palette used to assign distinct colors to
// objects whose material carries none.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the host-facing backend. It exposes Evaluate to UI bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
// Vertices are baked into world space so the frontend needs no transform
// handling.
type MeshData struct {
	Vertices   []float32 `json:"vertices"`
	Normals    []float32 `json:"normals"`
	Indices    []uint32  `json:"indices"`
	ObjectName string    `json:"objectName"`
	Color      string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with a parametric-backed engine.
func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// startup saves the host context so runtime methods can be called later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns world-space mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	h, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Walk the hierarchy in sibling order and emit one MeshData per submesh
	// group of each active renderable object.
	count := 0
	var walk func(ids []scene.ObjectID)
	walk = func(ids []scene.ObjectID) {
		for _, id := range ids {
			o := h.Get(id)
			if o == nil {
				continue
			}
			if o.Active && o.Renderable() {
				world := h.WorldTransform(id)
				baked := bakeWorld(o.Mesh, world)
				for gi, g := range baked.Groups {
					color := materialColor(o.Materials, gi)
					if color == "" {
						color = colorPalette[count%len(colorPalette)]
					}
					result.Meshes = append(result.Meshes, MeshData{
						Vertices:   baked.Vertices,
						Normals:    baked.Normals,
						Indices:    g.Indices,
						ObjectName: o.Name,
						Color:      color,
					})
					count++
				}
			}
			walk(o.Children)
		}
	}
	walk(h.Roots())

	return result
}

// bakeWorld returns a copy of m with the world transform applied to every
// vertex and the normals recomputed.
func bakeWorld(m *mesh.Mesh, world mgl32.Mat4) *mesh.Mesh {
	if world == mgl32.Ident4() {
		return m
	}
	out := m.Clone()
	for i := 0; i < out.VertexCount(); i++ {
		v := mgl32.TransformCoordinate(out.Vertex(uint32(i)), world)
		out.Vertices[i*3] = v.X()
		out.Vertices[i*3+1] = v.Y()
		out.Vertices[i*3+2] = v.Z()
	}
	out.RecomputeNormals()
	out.RecomputeBounds()
	return out
}

// materialColor returns the color of the material for group gi, reusing the
// last material when the list is short.
func materialColor(mats []mesh.Material, gi int) string {
	if len(mats) == 0 {
		return ""
	}
	if gi >= len(mats) {
		gi = len(mats) - 1
	}
	return mats[gi].Color
}
