package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// usdz payload alignment required by the Usdz File Format
// Specification: every file's data must begin on a 64-byte boundary
// and must be stored uncompressed.
const usdzAlignment = 64

// zip local file header size preceding the file name and extra field.
const zipLocalHeaderLen = 30

// writeUSDA serializes the scene into USD text format. The root Xform
// carries a translate op that moves the scene's bounding-box center to
// the origin, so AR viewers place the model on the anchor instead of
// off to the side.
func writeUSDA(geo *sceneGeometry) []byte {
	center := geo.Center()

	var b strings.Builder
	b.WriteString("#usda 1.0\n(\n")
	b.WriteString("    defaultPrim = \"Model\"\n")
	b.WriteString("    metersPerUnit = 1\n")
	b.WriteString("    upAxis = \"Y\"\n")
	b.WriteString(")\n\n")
	b.WriteString("def Xform \"Model\"\n{\n")
	fmt.Fprintf(&b, "    double3 xformOp:translate = (%s, %s, %s)\n",
		usdFloat(-center[0]), usdFloat(-center[1]), usdFloat(-center[2]))
	b.WriteString("    uniform token[] xformOpOrder = [\"xformOp:translate\"]\n")

	for _, m := range geo.Meshes {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    def Mesh \"%s\"\n    {\n", m.Name)

		counts := make([]string, len(m.Indices)/3)
		for i := range counts {
			counts[i] = "3"
		}
		fmt.Fprintf(&b, "        int[] faceVertexCounts = [%s]\n", strings.Join(counts, ", "))

		indices := make([]string, len(m.Indices))
		for i, idx := range m.Indices {
			indices[i] = strconv.FormatUint(uint64(idx), 10)
		}
		fmt.Fprintf(&b, "        int[] faceVertexIndices = [%s]\n", strings.Join(indices, ", "))

		fmt.Fprintf(&b, "        point3f[] points = [%s]\n", usdVec3List(m.Points))

		if len(m.Normals) > 0 {
			fmt.Fprintf(&b, "        normal3f[] normals = [%s] (\n            interpolation = \"vertex\"\n        )\n",
				usdVec3List(m.Normals))
		}
		if m.Color != nil {
			fmt.Fprintf(&b, "        color3f[] primvars:displayColor = [(%s, %s, %s)]\n",
				usdFloat(m.Color[0]), usdFloat(m.Color[1]), usdFloat(m.Color[2]))
		}
		b.WriteString("        uniform token subdivisionScheme = \"none\"\n")
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

func usdVec3List(vecs [][3]float64) string {
	parts := make([]string, len(vecs))
	for i, v := range vecs {
		parts[i] = fmt.Sprintf("(%s, %s, %s)", usdFloat(v[0]), usdFloat(v[1]), usdFloat(v[2]))
	}
	return strings.Join(parts, ", ")
}

func usdFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// packUSDZ wraps a single USD layer file into a usdz archive: a zip
// with the entry stored uncompressed and its payload aligned to a
// 64-byte boundary, per the usdz spec. Alignment is achieved with a
// padding extra field in the local header, the same technique Pixar's
// usdzip uses.
func packUSDZ(layerName string, layer []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	header := &zip.FileHeader{
		Name:   layerName,
		Method: zip.Store,
	}
	// The first entry's payload starts at local header length + name +
	// extra field. Pad the extra field so that lands on the boundary.
	dataStart := zipLocalHeaderLen + len(layerName)
	pad := (usdzAlignment - dataStart%usdzAlignment) % usdzAlignment
	if pad > 0 && pad < 4 {
		// An extra field needs a 4-byte id/size preamble.
		pad += usdzAlignment
	}
	if pad > 0 {
		extra := make([]byte, pad)
		// Arbitrary unreserved extra field id; readers skip unknown ids.
		extra[0] = 0x86
		extra[1] = 0x19
		extra[2] = byte(pad - 4)
		extra[3] = byte((pad - 4) >> 8)
		header.Extra = extra
	}

	entry, err := w.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("usdz: create archive entry: %v", err)
	}
	if _, err := entry.Write(layer); err != nil {
		return nil, fmt.Errorf("usdz: write layer: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("usdz: finalize archive: %v", err)
	}
	return buf.Bytes(), nil
}
