package output

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ubuntu/decorate"

	"github.com/StinkyLord/ort-html-report/internal/model"
)

// WriteHTML renders the store as an HTML report and writes it to outputPath.
// The file is only created once rendering succeeded, and it is replaced
// atomically, so a failure never leaves a truncated report behind.
func WriteHTML(store *model.Store, outputPath string, toolVersion string) (err error) {
	defer decorate.OnError(&err, "cannot write HTML report %q", outputPath)

	r, err := NewHTMLRenderer(toolVersion)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, store); err != nil {
		return err
	}

	return atomicWrite(outputPath, buf.Bytes())
}

// atomicWrite writes data to a temporary file next to path and renames it
// into place.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove temporary file", "file", tmp.Name(), "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("could not write to temporary file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("could not set report permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not rename temporary file: %w", err)
	}
	return nil
}
