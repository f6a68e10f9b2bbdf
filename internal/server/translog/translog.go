// Package translog appends committed transaction records to a durable log
// file. The log only ever grows; lines are never rewritten or removed.
package translog

import (
	"fmt"
	"os"
	"sync"

	"github.com/sbayu21/Secure-banking-system/internal/filex"
)

// Writer serializes appends to one log file. Concurrent sessions share a
// single Writer; the mutex keeps lines whole.
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

// Open creates the log file (and its directory) if needed and opens it for
// appending.
func Open(path string) (*Writer, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Writer{f: f}, nil
}

// Append writes one formatted record as a log line.
func (w *Writer) Append(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintln(w.f, line); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
