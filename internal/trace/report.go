package trace

// Report is the printable result of analyzing a summary.
type Report struct {
	// Digest is the content identity of the summary. Empty when not computed.
	Digest string `json:"digest,omitempty"`

	FormatVersion   uint32        `json:"format_version"`
	TraceLen        int           `json:"trace_len"`
	RawTraceLen     int           `json:"raw_trace_len"`
	BytecodeLen     int           `json:"bytecode_len"`
	MemoryInitLen   int           `json:"memory_init_len"`
	CircuitFlagsLen int           `json:"circuit_flags_len"`
	Opcodes         []OpcodeCount `json:"opcodes"`
}

// NewReport analyzes s. The digest is left empty; see WithDigest.
func NewReport(s *ProgramSummary) Report {
	return Report{
		FormatVersion:   FormatVersion,
		TraceLen:        s.TraceLen(),
		RawTraceLen:     len(s.RawTrace),
		BytecodeLen:     len(s.Bytecode),
		MemoryInitLen:   len(s.MemoryInit),
		CircuitFlagsLen: len(s.CircuitFlags),
		Opcodes:         s.Analyze(),
	}
}

// WithDigest returns a copy of r carrying digest.
func (r Report) WithDigest(digest string) Report {
	r.Digest = digest
	return r
}

// Top returns a copy of r keeping only the n most frequent opcodes.
// n <= 0 keeps all of them.
func (r Report) Top(n int) Report {
	if n > 0 && n < len(r.Opcodes) {
		r.Opcodes = r.Opcodes[:n]
	}
	return r
}

// MarshalCanonical renders r as canonical JSON, omitting an empty digest.
func (r Report) MarshalCanonical() ([]byte, error) {
	opcodes := make([]any, len(r.Opcodes))
	for i, oc := range r.Opcodes {
		opcodes[i] = map[string]any{
			"opcode": oc.Opcode.String(),
			"count":  oc.Count,
		}
	}

	m := map[string]any{
		"format_version":    r.FormatVersion,
		"trace_len":         r.TraceLen,
		"raw_trace_len":     r.RawTraceLen,
		"bytecode_len":      r.BytecodeLen,
		"memory_init_len":   r.MemoryInitLen,
		"circuit_flags_len": r.CircuitFlagsLen,
		"opcodes":           opcodes,
	}
	if r.Digest != "" {
		m["digest"] = r.Digest
	}
	return MarshalCanonical(m)
}
