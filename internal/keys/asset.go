// Package keys builds and derives the canonical object keys for
// uploaded 3D assets. A key is `<unix-millis>_<sanitized filename>`,
// which makes concurrent uploads of different files collision-free
// and keeps every key safe for S3-style stores.
package keys

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Format is a supported 3D asset file format, identified by extension.
type Format string

const (
	GLB  Format = "glb"
	GLTF Format = "gltf"
	OBJ  Format = "obj"
	FBX  Format = "fbx"
	STL  Format = "stl"
	USDZ Format = "usdz"
)

// Supported reports whether the format is accepted for upload.
func Supported(f Format) bool {
	switch f {
	case GLB, GLTF, OBJ, FBX, STL:
		return true
	}
	return false
}

// Convertible reports whether a usdz sibling can be derived from the
// format. Only the glTF family is convertible.
func Convertible(f Format) bool {
	return f == GLB || f == GLTF
}

// FormatOf extracts the format from a filename, lowercased. An empty
// Format is returned when the name has no extension.
func FormatOf(filename string) Format {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	return Format(strings.ToLower(ext))
}

// ContentType returns the MIME type to store alongside a format.
func ContentType(f Format) string {
	switch f {
	case GLB:
		return "model/gltf-binary"
	case GLTF:
		return "model/gltf+json"
	case OBJ:
		return "model/obj"
	case STL:
		return "model/stl"
	case USDZ:
		return "model/vnd.usdz+zip"
	default:
		return "application/octet-stream"
	}
}

// Sanitize replaces every character outside [A-Za-z0-9_.-] with an
// underscore. Sanitizing an already-sanitized name is a no-op.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '.', r == '-':
			return r
		}
		return '_'
	}, name)
}

// ForUpload returns the canonical store key for an upload that
// happened at the given time.
func ForUpload(now time.Time, filename string) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), Sanitize(filename))
}

// Derived returns the usdz sibling key for a glb/gltf key: same base
// name, extension rewritten to .usdz. For any other extension the key
// is returned unchanged, meaning no sibling exists for it.
func Derived(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext != ".glb" && ext != ".gltf" {
		return key
	}
	return key[:len(key)-len(ext)] + ".usdz"
}
