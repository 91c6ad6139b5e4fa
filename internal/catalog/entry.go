package catalog

import "github.com/roach88/tracesum/internal/trace"

// Entry is one recorded summary file.
type Entry struct {
	// Seq is assigned by the catalog on insert. Ignored by Record.
	Seq int64 `json:"seq"`

	Digest        string `json:"digest"`
	RunToken      string `json:"run_token"`
	Path          string `json:"path"`
	FormatVersion uint32 `json:"format_version"`
	SizeBytes     int64  `json:"size_bytes"`
	TraceLen      int    `json:"trace_len"`
	RawTraceLen   int    `json:"raw_trace_len"`
	BytecodeLen   int    `json:"bytecode_len"`
}

// EntryFromReport builds an entry for the file at path from its report.
// The report must carry a digest.
func EntryFromReport(r trace.Report, path string, size int64) Entry {
	return Entry{
		Digest:        r.Digest,
		Path:          path,
		FormatVersion: r.FormatVersion,
		SizeBytes:     size,
		TraceLen:      r.TraceLen,
		RawTraceLen:   r.RawTraceLen,
		BytecodeLen:   r.BytecodeLen,
	}
}
