package catalog

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/tracesum/internal/testutil"
	"github.com/roach88/tracesum/internal/trace"
)

// createTestStore creates a new store in a temporary directory with
// deterministic run tokens and a discarding logger.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(path,
		WithTokenGenerator(testutil.NewSequenceTokenGenerator()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEntry creates an entry with minimal required fields.
func createTestEntry(digest, path string) Entry {
	return Entry{
		Digest:        digest,
		Path:          path,
		FormatVersion: trace.FormatVersion,
		SizeBytes:     141,
	}
}
