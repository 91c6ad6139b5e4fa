package trace

// Version constants for the persisted summary format.
const (
	// FormatVersion is written as the first four bytes of every summary file.
	FormatVersion uint32 = 1

	// DigestDomain separates summary digests from any other SHA-256 use.
	DigestDomain = "tracesum/summary/v1"
)
