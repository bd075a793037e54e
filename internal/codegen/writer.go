// Package codegen assembles the ordered component fragments produced by a
// diagram build into formatted Go source files.
//
// The core hands over an execution order and per-component setup/execution
// fragments; this package treats the fragments as opaque statement text,
// wraps them in a state struct plus Init/Step functions, formats the result
// with goimports, and writes one file per diagram.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/vk/blockflow/internal/ctxlog"
	"github.com/vk/blockflow/internal/diagram"
)

// Stateful is implemented by blocks whose components carry extra state
// fields in the generated program, beyond the output slot every component
// gets.
type Stateful interface {
	ExtraStateFields(c *diagram.Component) []string
}

// Target pairs a diagram with its build result for emission.
type Target struct {
	Diagram *diagram.Diagram
	Result  *diagram.BuildResult
}

// Writer emits generated source files into one output directory.
type Writer struct {
	outDir  string
	workers int
}

// NewWriter returns a writer targeting outDir. The directory is created on
// the first generate call.
func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir, workers: 4}
}

// WithWorkers sets the number of diagrams emitted in parallel.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

var fileTemplate = template.Must(template.New("diagram").Parse(`// Code generated by blockflow. DO NOT EDIT.

package {{.Package}}

// {{.StateType}} holds every signal and state value of the {{.Diagram}} diagram.
type {{.StateType}} struct {
{{- range .Fields}}
	{{.}} float64
{{- end}}
}

// Init{{.TypeStem}} prepares the diagram state for the first step.
func Init{{.TypeStem}}(s *{{.StateType}}) {
{{- range .Setup}}
	{{.}}
{{- end}}
}

// Step{{.TypeStem}} evaluates one simulation step in execution order.
func Step{{.TypeStem}}(s *{{.StateType}}) {
{{- range .Execution}}
	{{.}}
{{- end}}
}
`))

// fileData is the template payload for one diagram file.
type fileData struct {
	Package   string
	Diagram   string
	TypeStem  string
	StateType string
	Fields    []string
	Setup     []string
	Execution []string
}

// GenerateAll emits one source file per target, in parallel, formatting each
// with goimports before writing.
func (w *Writer) GenerateAll(ctx context.Context, targets []Target) error {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, target := range targets {
		target := target
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.generateFile(ctx, target)
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	logger.Debug("Code generation complete.", "diagrams", len(targets), "dir", w.outDir)
	return nil
}

// generateFile renders, formats, and writes one diagram's source file.
func (w *Writer) generateFile(ctx context.Context, target Target) error {
	logger := ctxlog.FromContext(ctx)
	data := w.buildFileData(target)

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render diagram %q: %w", target.Diagram.Name(), err)
	}

	path := filepath.Join(w.outDir, target.Diagram.Name()+".go")
	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("format %s: %w", path, err)
	}

	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("Wrote generated file.", "path", path, "bytes", len(formatted))
	return nil
}

func (w *Writer) buildFileData(target Target) fileData {
	stem := Ident(target.Diagram.Name())
	data := fileData{
		Package:   packageName(w.outDir),
		Diagram:   target.Diagram.Name(),
		TypeStem:  stem,
		StateType: stem + "State",
	}
	for _, c := range target.Result.Ordered {
		data.Fields = append(data.Fields, Ident(c.Name()))
		if stateful, ok := c.Block().(Stateful); ok {
			data.Fields = append(data.Fields, stateful.ExtraStateFields(c)...)
		}
		code := c.Code()
		if code.Setup != "" {
			data.Setup = append(data.Setup, splitLines(code.Setup)...)
		}
		if code.Execution != "" {
			data.Execution = append(data.Execution, splitLines(code.Execution)...)
		}
	}
	return data
}

// splitLines breaks a multi-statement fragment into template lines.
func splitLines(fragment string) []string {
	var lines []string
	for _, line := range strings.Split(fragment, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// packageName sanitizes the output directory's base name into a Go package
// name.
func packageName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	if b.Len() == 0 || b.String()[0] >= '0' && b.String()[0] <= '9' {
		return "gen"
	}
	return b.String()
}
