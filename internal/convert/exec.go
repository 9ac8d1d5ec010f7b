package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mixtugu/ARization/internal/keys"
)

// DefaultExecTimeout bounds a single external conversion so a hung
// tool cannot hold a temp dir and a request slot indefinitely.
const DefaultExecTimeout = 30 * time.Second

// Exec converts by invoking an external tool (e.g. usd_from_gltf) as
// `tool <input> <output>`. Source bytes are written to a private temp
// directory that is removed on every exit path.
type Exec struct {
	// Tool is the converter executable path or name on PATH.
	Tool string
	// Timeout caps one invocation; DefaultExecTimeout when zero.
	Timeout time.Duration
}

// NewExec returns an external-tool converter.
func NewExec(tool string, timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}
	return &Exec{Tool: tool, Timeout: timeout}
}

func (e *Exec) Convert(ctx context.Context, src []byte, format keys.Format) ([]byte, error) {
	if !keys.Convertible(format) {
		return nil, failed(string(format), errUnconvertibleFormat(format))
	}
	if e.Tool == "" {
		return nil, failed("exec", fmt.Errorf("no converter tool configured"))
	}

	tmpDir, err := os.MkdirTemp("", "arization-convert-*")
	if err != nil {
		return nil, failed("exec", fmt.Errorf("create temp dir: %v", err))
	}
	defer os.RemoveAll(tmpDir)

	inputPath := filepath.Join(tmpDir, "input."+string(format))
	outputPath := filepath.Join(tmpDir, "output.usdz")
	if err := os.WriteFile(inputPath, src, 0o600); err != nil {
		return nil, failed("exec", fmt.Errorf("write source: %v", err))
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.Tool, inputPath, outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, failed("exec", fmt.Errorf("%s failed: %v (%s)", e.Tool, err, firstLine(out)))
	}

	result, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, failed("exec", fmt.Errorf("read converter output: %v", err))
	}
	return result, nil
}

func errUnconvertibleFormat(format keys.Format) error {
	return fmt.Errorf("format %q is not in the glTF family", format)
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
