package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tracesum/internal/trace"
)

const entryColumns = `seq, digest, run_token, path, format_version, size_bytes, trace_len, raw_trace_len, bytecode_len`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	err := sc.Scan(
		&e.Seq,
		&e.Digest,
		&e.RunToken,
		&e.Path,
		&e.FormatVersion,
		&e.SizeBytes,
		&e.TraceLen,
		&e.RawTraceLen,
		&e.BytecodeLen,
	)
	return e, err
}

// ReadEntry retrieves a single entry by digest.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEntry(ctx context.Context, digest string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM summaries
		WHERE digest = ?
	`, digest)

	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("read entry %s: %w", digest, err)
	}
	return e, nil
}

// ListEntries returns every entry in insertion order.
// Ordering: ORDER BY seq ASC, digest ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) for an empty catalog.
func (s *Store) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM summaries
		ORDER BY seq ASC, digest COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// ReadHistogram returns the recorded opcode histogram of a digest, in the
// order it was recorded.
//
// Returns sql.ErrNoRows if the digest is not in the catalog. A recorded
// summary with an empty trace has an empty (non-nil) histogram.
func (s *Store) ReadHistogram(ctx context.Context, digest string) ([]trace.OpcodeCount, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM summaries WHERE digest = ?`, digest).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("read histogram %s: %w", digest, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT opcode, count
		FROM opcode_counts
		WHERE digest = ?
		ORDER BY rank ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query histogram: %w", err)
	}
	defer rows.Close()

	hist := []trace.OpcodeCount{}
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan histogram: %w", err)
		}
		op, err := trace.ParseOpcode(name)
		if err != nil {
			return nil, fmt.Errorf("histogram of %s: %w", digest, err)
		}
		hist = append(hist, trace.OpcodeCount{Opcode: op, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate histogram: %w", err)
	}
	return hist, nil
}

// Count returns the number of recorded summaries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return n, nil
}

var _ scanner = (*sql.Row)(nil)
