// Package convert derives usdz variants from glb/gltf assets so iOS
// Quick Look can open what Android Scene Viewer already renders.
// Two interchangeable strategies exist: Native runs a pure in-process
// geometry pipeline, Exec shells out to an external conversion tool.
package convert

import (
	"context"
	"fmt"

	"github.com/mixtugu/ARization/internal/keys"
)

// Converter turns glb/gltf source bytes into a usdz archive.
// Implementations make a single attempt; callers decide whether a
// failure is fatal (it is not during ingestion).
type Converter interface {
	Convert(ctx context.Context, src []byte, format keys.Format) ([]byte, error)
}

// Error is the conversion failure type. It is expected and tolerated
// during ingestion: the original asset remains the primary deliverable.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failed(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
