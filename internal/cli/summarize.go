package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/roach88/tracesum/internal/catalog"
	"github.com/roach88/tracesum/internal/fixture"
	"github.com/roach88/tracesum/internal/trace"
)

// SummarizeOptions holds flags for the summarize command.
type SummarizeOptions struct {
	*RootOptions
	Fixture string // CUE fixture path
	Out     string // summary file path
	DB      string // catalog path (optional)
}

// SummarizeResult describes a written summary file.
type SummarizeResult struct {
	Path      string `json:"path"`
	Digest    string `json:"digest"`
	SizeBytes int64  `json:"size_bytes"`
	TraceLen  int    `json:"trace_len"`
	Catalog   string `json:"catalog,omitempty"`
	Recorded  bool   `json:"recorded"`
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummarizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summarize --fixture <file.cue> --out <file>",
		Short: "Compile a trace fixture and write its summary file",
		Long: `Compile a CUE trace fixture into a program summary and persist it.

The summary is written atomically. When a catalog is given with --db (or
the config file names one), the summary digest and opcode histogram are
recorded there; recording the same summary twice is a no-op.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "CUE fixture to compile (required)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "summary file to write (required)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog database to record the summary in")
	_ = cmd.MarkFlagRequired("fixture")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runSummarize(opts *SummarizeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	s, err := fixture.LoadFile(opts.Fixture)
	if err != nil {
		var ce *fixture.CompileError
		if errors.As(err, &ce) {
			return outputFixtureErrors(formatter, err)
		}
		return formatter.Fail("loading fixture", err)
	}
	formatter.VerboseLog("Compiled %s: %d step(s)", opts.Fixture, s.TraceLen())

	out := outputPath(opts.Out, opts.Config.OutputDir)

	digest, err := s.WriteToFileDigest(out)
	if err != nil {
		return formatter.Fail("writing summary", err)
	}
	rep := trace.NewReport(s).WithDigest(digest)
	info, err := os.Stat(out)
	if err != nil {
		return formatter.Fail("writing summary", err)
	}
	logger.Debug("summary written", "path", out, "digest", digest, "bytes", info.Size())

	result := SummarizeResult{
		Path:      out,
		Digest:    digest,
		SizeBytes: info.Size(),
		TraceLen:  rep.TraceLen,
	}

	db := opts.DB
	if db == "" {
		db = opts.Config.Catalog
	}
	if db != "" {
		inserted, err := recordSummary(cmd, opts.RootOptions, db, catalog.EntryFromReport(rep, out, info.Size()), rep.Opcodes)
		if err != nil {
			_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
			return WrapExitError(ExitFailure, ErrCodeCatalog+": recording summary", err)
		}
		result.Catalog = db
		result.Recorded = inserted
	}

	return outputSummarizeSuccess(formatter, result)
}

// outputPath places a bare file name under dir. Paths with a directory
// component are used as given.
func outputPath(out, dir string) string {
	if dir == "" || filepath.Base(out) != out {
		return out
	}
	return filepath.Join(dir, out)
}

func recordSummary(cmd *cobra.Command, opts *RootOptions, db string, e catalog.Entry, hist []trace.OpcodeCount) (bool, error) {
	store, err := catalog.Open(db, catalog.WithLogger(opts.logger()))
	if err != nil {
		return false, err
	}
	defer store.Close()

	return store.Record(cmd.Context(), e, hist)
}

func outputSummarizeSuccess(formatter *OutputFormatter, r SummarizeResult) error {
	if formatter.Format == "json" {
		return formatter.Success(r)
	}

	fmt.Fprintf(formatter.Writer, "✓ Wrote %s (%d step(s), %d bytes)\n", r.Path, r.TraceLen, r.SizeBytes)
	fmt.Fprintf(formatter.Writer, "  digest: %s\n", r.Digest)
	if r.Catalog != "" {
		if r.Recorded {
			fmt.Fprintf(formatter.Writer, "  recorded in %s\n", r.Catalog)
		} else {
			fmt.Fprintf(formatter.Writer, "  already recorded in %s\n", r.Catalog)
		}
	}
	return nil
}

// outputFixtureErrors reports every compile error of a fixture.
func outputFixtureErrors(formatter *OutputFormatter, err error) error {
	errs := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	}

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, e := range errs {
			cliErrors[i] = CLIError{Code: ErrCodeFixture, Message: e.Error()}
		}
		_ = formatter.Error(ErrCodeFixture, fmt.Sprintf("fixture has %d error(s)", len(errs)), cliErrors)
		return NewExitError(ExitCommandError, fmt.Sprintf("fixture compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Fixture compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeFixture, e.Error())
	}

	// Fixture errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("fixture compilation failed with %d error(s)", len(errs)))
}
