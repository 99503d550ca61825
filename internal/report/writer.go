package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/logger"
)

// Writer renders reports to the artifact path
type Writer struct {
	renderer Renderer
	logger   *logger.Logger
}

// NewWriter creates a Writer
func NewWriter(renderer Renderer, log *logger.Logger) *Writer {
	return &Writer{
		renderer: renderer,
		logger:   log.WithModule("report"),
	}
}

// Write renders r and replaces the file at path.
// The previous artifact stays intact if rendering fails (temp file + rename).
func (w *Writer) Write(path string, r *contracts.RunReport) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // rename 성공 시 no-op

	if err := w.renderer.Render(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path":   path,
		"status": string(r.Status),
		"hits":   len(r.Hits),
	}).Info("Report written")

	return nil
}
