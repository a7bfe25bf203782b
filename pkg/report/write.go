package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wudi/pdfkit/ir/semantic"
	"github.com/wudi/pdfkit/writer"
)

// WriteError reports a failure to produce the report file. No partial file
// is left at Path.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Encode serializes doc into PDF bytes.
func Encode(ctx context.Context, doc *semantic.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := (&writer.WriterBuilder{}).Build()
	cfg := writer.Config{Deterministic: true, ContentFilter: writer.FilterFlate}
	if err := w.Write(ctx, doc, &buf, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serializes doc and moves it into place at path. The bytes go to
// a temporary file in the same directory first, so path either keeps its
// previous content or holds the complete new report.
func WriteFile(ctx context.Context, path string, doc *semantic.Document) error {
	if doc == nil {
		return &WriteError{Path: path, Op: "encode", Err: fmt.Errorf("nil document")}
	}
	if err := ctx.Err(); err != nil {
		return &WriteError{Path: path, Op: "encode", Err: err}
	}
	data, err := Encode(ctx, doc)
	if err != nil {
		return &WriteError{Path: path, Op: "encode", Err: err}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Op: op, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
