// Package diaglog appends mismatch diagnostic records to a JSONL file, one
// JSON object per line, for offline pricing analysis.
package diaglog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gemgem/backend/internal/domain"
)

// Writer is an append-only JSONL sink. Implements domain.MismatchSink.
type Writer struct {
	mutex sync.Mutex
	file  *os.File
}

// NewWriter opens (or creates) the sink file in append mode
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open mismatch log %s: %w", path, err)
	}
	return &Writer{file: f}, nil
}

// Record appends one event as a single JSON line
func (w *Writer) Record(event domain.MismatchEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal mismatch event: %w", err)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append mismatch event: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.file.Close()
}
