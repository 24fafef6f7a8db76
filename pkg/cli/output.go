package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
)

// OutputFormat names an encoding for command results.
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
	// FormatRaw writes strings and byte slices untouched and falls back to
	// YAML for anything else.
	FormatRaw OutputFormat = "raw"
)

type encodeFunc func(w io.Writer, v any) error

var encoders = map[OutputFormat]encodeFunc{
	FormatYAML: encodeYAML,
	FormatJSON: encodeJSON,
	FormatRaw:  encodeRaw,
}

// ParseOutputFormat maps a user supplied name to an OutputFormat. Matching
// is case-insensitive; an empty name yields def.
func ParseOutputFormat(name string, def OutputFormat) (OutputFormat, error) {
	if name == "" {
		return def, nil
	}
	f := OutputFormat(strings.ToLower(name))
	if _, ok := encoders[f]; !ok {
		return "", fmt.Errorf("unsupported output format %q", name)
	}
	return f, nil
}

// OutputOptions says where and how Output writes.
type OutputOptions struct {
	Format OutputFormat // empty means YAML
	File   string       // written instead of stdout when set
	Writer io.Writer    // takes precedence over File
}

// Output encodes result to the destination in opts.
func Output(result any, opts OutputOptions) (err error) {
	format := opts.Format
	if format == "" {
		format = FormatYAML
	}
	encode, ok := encoders[format]
	if !ok {
		return fmt.Errorf("unsupported output format %q", format)
	}

	w := opts.Writer
	switch {
	case w != nil:
	case opts.File != "":
		f, cerr := os.Create(opts.File)
		if cerr != nil {
			return fmt.Errorf("create output file: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	default:
		w = os.Stdout
	}
	return encode(w, result)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func encodeRaw(w io.Writer, v any) error {
	switch raw := v.(type) {
	case []byte:
		_, err := w.Write(raw)
		return err
	case string:
		_, err := io.WriteString(w, raw)
		return err
	}
	return encodeYAML(w, v)
}

// Messages is where the Print helpers write; nil means the current
// os.Stderr. Results go to stdout through Output, so status lines stay off
// it.
var Messages io.Writer

func mark(c lipgloss.Color, symbol string) string {
	return lipgloss.NewStyle().Foreground(c).Render(symbol)
}

func printMarked(symbol, format string, args []any) {
	w := Messages
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "%s %s\n", symbol, fmt.Sprintf(format, args...))
}

// PrintSuccess reports a completed step.
func PrintSuccess(format string, args ...any) {
	printMarked(mark(DefaultTheme.Primary, "✓"), format, args)
}

// PrintInfo reports a detail.
func PrintInfo(format string, args ...any) {
	printMarked(mark(DefaultTheme.Dim, "ℹ"), format, args)
}

// PrintWarning reports something the user should look at.
func PrintWarning(format string, args ...any) {
	printMarked(mark(DefaultTheme.Warning, "⚠"), format, args)
}
