package keys

import (
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean name untouched", "chair.glb", "chair.glb"},
		{"spaces replaced", "my chair.glb", "my_chair.glb"},
		{"unicode replaced", "의자 모델.glb", "_____.glb"},
		{"allowed punctuation kept", "chair_v2.final-01.glb", "chair_v2.final-01.glb"},
		{"slashes replaced", "../escape/chair.glb", ".._escape_chair.glb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sanitize(tc.input)
			if got != tc.expected {
				t.Fatalf("Sanitize(%q) = %q; want %q", tc.input, got, tc.expected)
			}
			for _, r := range got {
				ok := r == '_' || r == '.' || r == '-' ||
					(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
				if !ok {
					t.Fatalf("Sanitize(%q) produced disallowed rune %q", tc.input, r)
				}
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"chair.glb", "my chair (2).glb", "모델.gltf", "a/b\\c.stl"}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestForUpload(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	got := ForUpload(now, "my chair.glb")
	want := "1700000000000_my_chair.glb"
	if got != want {
		t.Fatalf("ForUpload = %q; want %q", got, want)
	}
}

func TestDerived(t *testing.T) {
	cases := []struct {
		name     string
		key      string
		expected string
	}{
		{"glb rewritten", "1700_chair.glb", "1700_chair.usdz"},
		{"gltf rewritten", "1700_scene.gltf", "1700_scene.usdz"},
		{"uppercase extension", "1700_CHAIR.GLB", "1700_CHAIR.usdz"},
		{"stl unchanged", "1700_scan.stl", "1700_scan.stl"},
		{"usdz unchanged", "1700_chair.usdz", "1700_chair.usdz"},
		{"no extension unchanged", "1700_chair", "1700_chair"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derived(tc.key); got != tc.expected {
				t.Fatalf("Derived(%q) = %q; want %q", tc.key, got, tc.expected)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	cases := []struct {
		filename string
		expected Format
	}{
		{"chair.glb", GLB},
		{"Chair.GLTF", GLTF},
		{"scan.stl", STL},
		{"model.fbx", FBX},
		{"mesh.obj", OBJ},
		{"noext", Format("")},
	}

	for _, tc := range cases {
		if got := FormatOf(tc.filename); got != tc.expected {
			t.Fatalf("FormatOf(%q) = %q; want %q", tc.filename, got, tc.expected)
		}
	}
}

func TestSupportedAndConvertible(t *testing.T) {
	for _, f := range []Format{GLB, GLTF, OBJ, FBX, STL} {
		if !Supported(f) {
			t.Fatalf("Supported(%q) = false; want true", f)
		}
	}
	for _, f := range []Format{USDZ, Format("exe"), Format("")} {
		if Supported(f) {
			t.Fatalf("Supported(%q) = true; want false", f)
		}
	}
	if !Convertible(GLB) || !Convertible(GLTF) {
		t.Fatal("glb and gltf must be convertible")
	}
	if Convertible(STL) || Convertible(OBJ) {
		t.Fatal("stl/obj must not be convertible")
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType(USDZ); got != "model/vnd.usdz+zip" {
		t.Fatalf("ContentType(USDZ) = %q", got)
	}
	if got := ContentType(Format("fbx")); !strings.HasPrefix(got, "application/") {
		t.Fatalf("unknown formats should fall back to octet-stream, got %q", got)
	}
}
