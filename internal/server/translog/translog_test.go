package translog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWriter_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "transactions.log")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer w.Close()

	if err := w.Append("[2026-01-01 10:00:00] atm1 124356: Deposited $100"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := w.Append("[2026-01-01 10:00:01] atm1 124356: Withdrew $50"); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasSuffix(lines[0], "Deposited $100") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
}

func TestWriter_ReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.log")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := w.Append("first"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	w.Close()

	w2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer w2.Close()
	if err := w2.Append("second"); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if got := strings.Count(string(raw), "\n"); got != 2 {
		t.Fatalf("expected the log to grow across reopen, got %d lines", got)
	}
}

func TestWriter_ConcurrentAppendsKeepLinesWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.log")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer w.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Append(strings.Repeat("x", 80))
		}()
	}
	wg.Wait()

	raw, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("expected %d lines, got %d", n, len(lines))
	}
	for i, line := range lines {
		if line != strings.Repeat("x", 80) {
			t.Fatalf("line %d interleaved: %q", i, line)
		}
	}
}
