package convert

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// GLB container constants from the glTF 2.0 binary spec.
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	chunkJSON    = 0x4E4F534A
	chunkBIN     = 0x004E4942
	glbHeaderLen = 12
)

// glTF accessor component types.
const (
	componentByte   = 5120
	componentUByte  = 5121
	componentShort  = 5122
	componentUShort = 5123
	componentUInt   = 5125
	componentFloat  = 5126
)

// document mirrors the subset of the glTF 2.0 JSON schema the
// converter needs: scene graph, mesh geometry, and base color.
type document struct {
	Scene       *int         `json:"scene"`
	Scenes      []scene      `json:"scenes"`
	Nodes       []node       `json:"nodes"`
	Meshes      []mesh       `json:"meshes"`
	Accessors   []accessor   `json:"accessors"`
	BufferViews []bufferView `json:"bufferViews"`
	Buffers     []buffer     `json:"buffers"`
	Materials   []material   `json:"materials"`
}

type scene struct {
	Nodes []int `json:"nodes"`
}

type node struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Children    []int     `json:"children"`
	Matrix      []float64 `json:"matrix"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Scale       []float64 `json:"scale"`
}

type mesh struct {
	Name       string      `json:"name"`
	Primitives []primitive `json:"primitives"`
}

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
	Mode       *int           `json:"mode"`
}

type accessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

type bufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

type buffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

type material struct {
	PBRMetallicRoughness *struct {
		BaseColorFactor []float64 `json:"baseColorFactor"`
	} `json:"pbrMetallicRoughness"`
}

// triangleMesh is one mesh primitive flattened into world space.
type triangleMesh struct {
	Name    string
	Points  [][3]float64
	Normals [][3]float64
	Indices []uint32
	// Color is the material base color (RGB), when the source declares one.
	Color *[3]float64
}

// sceneGeometry is the parsed scene: world-space triangle meshes plus
// the scene-wide axis-aligned bounding box.
type sceneGeometry struct {
	Meshes []triangleMesh
	Min    [3]float64
	Max    [3]float64
}

// Center returns the bounding-box center of the scene.
func (g *sceneGeometry) Center() [3]float64 {
	return [3]float64{
		(g.Min[0] + g.Max[0]) / 2,
		(g.Min[1] + g.Max[1]) / 2,
		(g.Min[2] + g.Max[2]) / 2,
	}
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
func parseGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < glbHeaderLen {
		return nil, nil, fmt.Errorf("glb: container shorter than header (%d bytes)", len(data))
	}
	if binary.LittleEndian.Uint32(data[0:4]) != glbMagic {
		return nil, nil, fmt.Errorf("glb: bad magic")
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != glbVersion {
		return nil, nil, fmt.Errorf("glb: unsupported version %d", v)
	}
	total := binary.LittleEndian.Uint32(data[8:12])
	if int(total) > len(data) {
		return nil, nil, fmt.Errorf("glb: declared length %d exceeds %d available bytes", total, len(data))
	}

	offset := glbHeaderLen
	for offset+8 <= int(total) {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8
		if offset+chunkLen > int(total) {
			return nil, nil, fmt.Errorf("glb: chunk overruns container")
		}
		switch chunkType {
		case chunkJSON:
			jsonChunk = data[offset : offset+chunkLen]
		case chunkBIN:
			binChunk = data[offset : offset+chunkLen]
		}
		offset += chunkLen
	}
	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("glb: missing JSON chunk")
	}
	return jsonChunk, binChunk, nil
}

// parseScene decodes a glb or gltf payload into world-space geometry.
// Bare gltf JSON is accepted when its buffers are embedded data URIs;
// external buffer files cannot be resolved from a byte slice.
func parseScene(data []byte) (*sceneGeometry, error) {
	jsonDoc := data
	var binChunk []byte
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == glbMagic {
		var err error
		jsonDoc, binChunk, err = parseGLB(data)
		if err != nil {
			return nil, err
		}
	}

	var doc document
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, fmt.Errorf("gltf: decode scene JSON: %v", err)
	}

	buffers, err := resolveBuffers(&doc, binChunk)
	if err != nil {
		return nil, err
	}

	geo := &sceneGeometry{
		Min: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}

	for _, rootIndex := range sceneRoots(&doc) {
		if err := walkNode(&doc, buffers, rootIndex, identityMatrix(), geo); err != nil {
			return nil, err
		}
	}
	if len(geo.Meshes) == 0 {
		return nil, fmt.Errorf("gltf: scene contains no triangle geometry")
	}
	return geo, nil
}

func sceneRoots(doc *document) []int {
	index := 0
	if doc.Scene != nil {
		index = *doc.Scene
	}
	if index < len(doc.Scenes) {
		return doc.Scenes[index].Nodes
	}
	// No scene declared: treat every node as a root so geometry-only
	// exports still convert.
	roots := make([]int, len(doc.Nodes))
	for i := range doc.Nodes {
		roots[i] = i
	}
	return roots
}

func resolveBuffers(doc *document, binChunk []byte) ([][]byte, error) {
	resolved := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		switch {
		case b.URI == "":
			if binChunk == nil {
				return nil, fmt.Errorf("gltf: buffer %d has no URI and no BIN chunk is present", i)
			}
			resolved[i] = binChunk
		case strings.HasPrefix(b.URI, "data:"):
			comma := strings.IndexByte(b.URI, ',')
			if comma < 0 {
				return nil, fmt.Errorf("gltf: buffer %d has a malformed data URI", i)
			}
			decoded, err := base64.StdEncoding.DecodeString(b.URI[comma+1:])
			if err != nil {
				return nil, fmt.Errorf("gltf: buffer %d data URI: %v", i, err)
			}
			resolved[i] = decoded
		default:
			return nil, fmt.Errorf("gltf: buffer %d references external file %q, which in-process conversion cannot load", i, b.URI)
		}
	}
	return resolved, nil
}

func walkNode(doc *document, buffers [][]byte, index int, parent [16]float64, geo *sceneGeometry) error {
	if index < 0 || index >= len(doc.Nodes) {
		return fmt.Errorf("gltf: node index %d out of range", index)
	}
	n := doc.Nodes[index]
	world := multiplyMatrix(parent, localMatrix(n))

	if n.Mesh != nil {
		if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("gltf: mesh index %d out of range", *n.Mesh)
		}
		m := doc.Meshes[*n.Mesh]
		for pi, prim := range m.Primitives {
			tm, err := extractPrimitive(doc, buffers, m, pi, prim, world)
			if err != nil {
				return err
			}
			if tm == nil {
				continue // non-triangle primitive
			}
			for _, p := range tm.Points {
				for axis := 0; axis < 3; axis++ {
					geo.Min[axis] = math.Min(geo.Min[axis], p[axis])
					geo.Max[axis] = math.Max(geo.Max[axis], p[axis])
				}
			}
			geo.Meshes = append(geo.Meshes, *tm)
		}
	}

	for _, child := range n.Children {
		if err := walkNode(doc, buffers, child, world, geo); err != nil {
			return err
		}
	}
	return nil
}

func extractPrimitive(doc *document, buffers [][]byte, m mesh, primIndex int, prim primitive, world [16]float64) (*triangleMesh, error) {
	if prim.Mode != nil && *prim.Mode != 4 {
		return nil, nil // only TRIANGLES survive the conversion
	}
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("gltf: primitive %d of mesh %q has no POSITION attribute", primIndex, m.Name)
	}

	positions, err := readVec3(doc, buffers, posIndex)
	if err != nil {
		return nil, err
	}

	tm := &triangleMesh{
		Name:   meshName(m, primIndex),
		Points: make([][3]float64, len(positions)),
	}
	for i, p := range positions {
		tm.Points[i] = transformPoint(world, p)
	}

	if normIndex, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := readVec3(doc, buffers, normIndex)
		if err != nil {
			return nil, err
		}
		if len(normals) == len(positions) {
			tm.Normals = make([][3]float64, len(normals))
			for i, nrm := range normals {
				tm.Normals[i] = transformDirection(world, nrm)
			}
		}
	}

	if prim.Indices != nil {
		indices, err := readIndices(doc, buffers, *prim.Indices)
		if err != nil {
			return nil, err
		}
		tm.Indices = indices
	} else {
		tm.Indices = make([]uint32, len(positions))
		for i := range tm.Indices {
			tm.Indices[i] = uint32(i)
		}
	}
	if len(tm.Indices)%3 != 0 {
		return nil, fmt.Errorf("gltf: primitive %d of mesh %q has %d indices, not a triangle list", primIndex, m.Name, len(tm.Indices))
	}

	if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(doc.Materials) {
		if pbr := doc.Materials[*prim.Material].PBRMetallicRoughness; pbr != nil && len(pbr.BaseColorFactor) >= 3 {
			tm.Color = &[3]float64{pbr.BaseColorFactor[0], pbr.BaseColorFactor[1], pbr.BaseColorFactor[2]}
		}
	}
	return tm, nil
}

func meshName(m mesh, primIndex int) string {
	base := m.Name
	if base == "" {
		base = "mesh"
	}
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, base)
	return fmt.Sprintf("%s_%d", safe, primIndex)
}

// accessorBytes locates the backing bytes and element stride for an
// accessor holding elements of the given size.
func accessorBytes(doc *document, buffers [][]byte, accIndex, elementSize int) ([]byte, int, accessor, error) {
	if accIndex < 0 || accIndex >= len(doc.Accessors) {
		return nil, 0, accessor{}, fmt.Errorf("gltf: accessor index %d out of range", accIndex)
	}
	acc := doc.Accessors[accIndex]
	if acc.BufferView == nil {
		return nil, 0, accessor{}, fmt.Errorf("gltf: accessor %d has no buffer view (sparse accessors unsupported)", accIndex)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, 0, accessor{}, fmt.Errorf("gltf: buffer view index %d out of range", *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(buffers) {
		return nil, 0, accessor{}, fmt.Errorf("gltf: buffer index %d out of range", view.Buffer)
	}
	backing := buffers[view.Buffer]
	start := view.ByteOffset + acc.ByteOffset
	stride := view.ByteStride
	if stride == 0 {
		stride = elementSize
	}
	end := start + (acc.Count-1)*stride + elementSize
	if acc.Count == 0 {
		end = start
	}
	if start < 0 || end > len(backing) {
		return nil, 0, accessor{}, fmt.Errorf("gltf: accessor %d overruns its buffer", accIndex)
	}
	return backing[start:], stride, acc, nil
}

func readVec3(doc *document, buffers [][]byte, accIndex int) ([][3]float64, error) {
	data, stride, acc, err := accessorBytes(doc, buffers, accIndex, 12)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != componentFloat || acc.Type != "VEC3" {
		return nil, fmt.Errorf("gltf: accessor %d is %s/%d, expected float VEC3", accIndex, acc.Type, acc.ComponentType)
	}
	out := make([][3]float64, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(data[base+c*4 : base+c*4+4])
			out[i][c] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

func readIndices(doc *document, buffers [][]byte, accIndex int) ([]uint32, error) {
	if accIndex < 0 || accIndex >= len(doc.Accessors) {
		return nil, fmt.Errorf("gltf: accessor index %d out of range", accIndex)
	}
	var elementSize int
	switch doc.Accessors[accIndex].ComponentType {
	case componentUByte:
		elementSize = 1
	case componentUShort:
		elementSize = 2
	case componentUInt:
		elementSize = 4
	default:
		return nil, fmt.Errorf("gltf: accessor %d has component type %d, not a valid index type", accIndex, doc.Accessors[accIndex].ComponentType)
	}

	data, stride, acc, err := accessorBytes(doc, buffers, accIndex, elementSize)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("gltf: index accessor %d is %s, expected SCALAR", accIndex, acc.Type)
	}
	out := make([]uint32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		switch elementSize {
		case 1:
			out[i] = uint32(data[base])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[base : base+2]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(data[base : base+4])
		}
	}
	return out, nil
}

// isGLB reports whether data starts with the GLB container magic.
func isGLB(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[0:4], []byte("glTF"))
}
