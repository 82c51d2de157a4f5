package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
)

const fontConfigEnv = "FONTCONFIG_PATH"

// waitDelay bounds how long Run waits for the output pipes after the renderer
// is killed, since children of the renderer may still hold them open.
const waitDelay = 2 * time.Second

// Result is the outcome of a renderer process that started.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Messages returns the non-empty captured streams as text, stdout first.
func (r *Result) Messages() []string {
	messages := []string{}
	for _, stream := range [][]byte{r.Stdout, r.Stderr} {
		if len(stream) > 0 {
			messages = append(messages, strings.ToValidUTF8(string(stream), "\uFFFD"))
		}
	}
	return messages
}

// Invoker runs a located renderer binary.
type Invoker struct {
	exe Executable
}

// NewInvoker creates an Invoker for exe.
func NewInvoker(exe Executable) *Invoker {
	return &Invoker{exe: exe}
}

// Executable returns the binary this invoker runs.
func (i *Invoker) Executable() Executable {
	return i.exe
}

// Run executes the renderer with args followed by outputPath and waits for it.
// A process that exits unsuccessfully is reported through Result, not as an
// error. Failing to start the process, or ctx ending while it runs, is an
// error.
func (i *Invoker) Run(ctx context.Context, args []string, outputPath string) (*Result, error) {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, args...)
	argv = append(argv, outputPath)

	cmd := exec.CommandContext(ctx, i.exe.Path, argv...)
	cmd.Env = append(os.Environ(), fontConfigEnv+"="+i.exe.FontConfigPath)
	cmd.Stdin = nil
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		return nil, apperr.New(apperr.KindInterrupted, "renderer interrupted", ctx.Err())
	}
	result := &Result{
		Success: err == nil,
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return nil, apperr.New(apperr.KindSpawn, "failed to start renderer "+i.exe.Path, err)
}
