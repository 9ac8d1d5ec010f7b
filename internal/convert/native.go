package convert

import (
	"context"

	"github.com/mixtugu/ARization/internal/keys"
)

// usdz archives carry their layers by name; a single root layer is
// enough for a geometry-only conversion.
const defaultLayerName = "model.usda"

// Native converts glb/gltf in-process: parse the scene graph, recenter
// the bounding-box center onto the origin, serialize to USD text, and
// pack the aligned usdz archive. No external tools, no temp files.
type Native struct{}

// NewNative returns the in-process converter.
func NewNative() *Native {
	return &Native{}
}

func (n *Native) Convert(ctx context.Context, src []byte, format keys.Format) ([]byte, error) {
	if !keys.Convertible(format) {
		return nil, failed(string(format), errUnconvertibleFormat(format))
	}
	if err := ctx.Err(); err != nil {
		return nil, failed("scene parse", err)
	}

	geo, err := parseScene(src)
	if err != nil {
		return nil, failed("scene parse", err)
	}

	layer := writeUSDA(geo)
	if err := ctx.Err(); err != nil {
		return nil, failed("usdz pack", err)
	}

	archive, err := packUSDZ(defaultLayerName, layer)
	if err != nil {
		return nil, failed("usdz pack", err)
	}
	return archive, nil
}
