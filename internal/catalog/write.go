package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/tracesum/internal/trace"
)

// ErrMissingDigest is returned by Record for an entry without a digest.
var ErrMissingDigest = errors.New("entry has no digest")

// Record inserts an entry and its opcode histogram in one transaction.
//
// The digest identifies the summary: recording a digest that is already
// present is a no-op and returns false. Histogram rows are stored with their
// position in hist as rank, so hist should already be in Analyze order.
//
// A missing RunToken is filled from the store's TokenGenerator.
func (s *Store) Record(ctx context.Context, e Entry, hist []trace.OpcodeCount) (bool, error) {
	if e.Digest == "" {
		return false, fmt.Errorf("record: %w", ErrMissingDigest)
	}
	if e.RunToken == "" {
		e.RunToken = s.tokens.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("record: begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO summaries
		(digest, run_token, path, format_version, size_bytes, trace_len, raw_trace_len, bytecode_len)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(digest) DO NOTHING
	`,
		e.Digest,
		e.RunToken,
		e.Path,
		e.FormatVersion,
		e.SizeBytes,
		e.TraceLen,
		e.RawTraceLen,
		e.BytecodeLen,
	)
	if err != nil {
		return false, fmt.Errorf("record summary: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record summary: %w", err)
	}
	if n == 0 {
		s.logger.Debug("summary already recorded", "digest", e.Digest, "path", e.Path)
		return false, nil
	}

	for rank, oc := range hist {
		if !oc.Opcode.Valid() {
			return false, fmt.Errorf("record histogram: rank %d: invalid opcode %d", rank, uint32(oc.Opcode))
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO opcode_counts (digest, rank, opcode, count)
			VALUES (?, ?, ?, ?)
		`, e.Digest, rank, oc.Opcode.String(), oc.Count)
		if err != nil {
			return false, fmt.Errorf("record histogram: rank %d: %w", rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("record: commit: %w", err)
	}

	s.logger.Info("summary recorded",
		"digest", e.Digest,
		"path", e.Path,
		"run_token", e.RunToken,
		"opcodes", len(hist),
	)
	return true, nil
}
