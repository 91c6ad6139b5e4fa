package fixture

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tracesum/internal/trace"
)

// AssertReportGolden compares the canonical JSON of r against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/fixture -update
//
// The report digest is part of the comparison when set; callers that only
// care about the histogram should pass a report without one.
func AssertReportGolden(t *testing.T, name string, r trace.Report) {
	t.Helper()

	data, err := r.MarshalCanonical()
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
