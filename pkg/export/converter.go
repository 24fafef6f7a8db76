package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/haivivi/wakeword/pkg/model"
	"github.com/haivivi/wakeword/pkg/tfjs"
)

// Exec runs an external converter:
//
//	<Command> <Args...> --input_format <InputFormat> <src> <dstDir>
//
// The process must exit 0 and leave dstDir/model.json behind.
type Exec struct {
	// Command is the converter binary. Empty runs the current executable.
	Command string

	// Args precede the format flag. With an empty Command they default to
	// the "convert" subcommand.
	Args []string

	// InputFormat defaults to model.FormatName.
	InputFormat string
}

func (c *Exec) commandLine(src, dst string) (string, []string, error) {
	name, args := c.Command, c.Args
	if name == "" {
		self, err := os.Executable()
		if err != nil {
			return "", nil, err
		}
		name = self
		if len(args) == 0 {
			args = []string{"convert"}
		}
	}
	format := c.InputFormat
	if format == "" {
		format = model.FormatName
	}
	full := append(append([]string(nil), args...), "--input_format", format, src, dst)
	return name, full, nil
}

// Convert runs the converter and waits for it to finish.
func (c *Exec) Convert(ctx context.Context, src, dstDir string) error {
	name, args, err := c.commandLine(src, dstDir)
	if err != nil {
		return &ConversionError{ExitCode: -1, Err: err}
	}
	line := strings.Join(append([]string{name}, args...), " ")

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ConversionError{Command: line, ExitCode: code, Output: out.String(), Err: err}
	}
	if _, err := os.Stat(filepath.Join(dstDir, tfjs.ModelFile)); err != nil {
		return &ConversionError{
			Command: line,
			Output:  out.String(),
			Err:     fmt.Errorf("no %s in output directory: %w", tfjs.ModelFile, err),
		}
	}
	return nil
}

// Builtin converts in-process with pkg/tfjs.
type Builtin struct {
	Options tfjs.Options
}

func (b *Builtin) Convert(_ context.Context, src, dstDir string) error {
	f, err := model.Load(src)
	if err != nil {
		return &ConversionError{ExitCode: -1, Err: err}
	}
	if err := tfjs.Write(dstDir, f, b.Options); err != nil {
		return &ConversionError{ExitCode: -1, Err: err}
	}
	return nil
}

var (
	_ Converter = (*Exec)(nil)
	_ Converter = (*Builtin)(nil)
)
