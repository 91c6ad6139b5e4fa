package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tracesum/internal/catalog"
	"github.com/roach88/tracesum/internal/trace"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	DB     string // catalog path
	Digest string // show one entry
}

// CatalogDetail is one catalog entry with its histogram.
type CatalogDetail struct {
	Entry   catalog.Entry       `json:"entry"`
	Opcodes []trace.OpcodeCount `json:"opcodes"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog --db <catalog.db>",
		Short: "List recorded summaries",
		Long: `List the summaries recorded in a catalog, oldest first.

With --digest, show one entry together with its opcode histogram.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog database (defaults to the config file's catalog)")
	cmd.Flags().StringVar(&opts.Digest, "digest", "", "show a single entry")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	db := opts.DB
	if db == "" {
		db = opts.Config.Catalog
	}
	if db == "" {
		_ = formatter.Error(ErrCodeCatalog, "no catalog: pass --db or set catalog in the config file", nil)
		return NewExitError(ExitCommandError, "no catalog")
	}

	// Opening would create an empty catalog; a missing one is a usage error.
	if _, err := os.Stat(db); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("catalog not found: %s", db), nil)
		return WrapExitError(ExitCommandError, "catalog not found", err)
	}

	store, err := catalog.Open(db, catalog.WithLogger(opts.logger()))
	if err != nil {
		_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening catalog", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if opts.Digest != "" {
		entry, err := store.ReadEntry(ctx, opts.Digest)
		if err == nil {
			var hist []trace.OpcodeCount
			hist, err = store.ReadHistogram(ctx, opts.Digest)
			if err == nil {
				return outputCatalogDetail(formatter, CatalogDetail{Entry: entry, Opcodes: hist})
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("digest %s is not in the catalog", opts.Digest), nil)
			return WrapExitError(ExitCommandError, "digest not found", err)
		}
		_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
		return WrapExitError(ExitFailure, "reading catalog", err)
	}

	entries, err := store.ListEntries(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
		return WrapExitError(ExitFailure, "reading catalog", err)
	}
	return outputCatalogList(formatter, entries)
}

func outputCatalogList(formatter *OutputFormatter, entries []catalog.Entry) error {
	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No summaries recorded.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%-4s %-16s %8s  %s\n", "SEQ", "DIGEST", "STEPS", "PATH")
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%-4d %-16s %8d  %s\n", e.Seq, shortDigest(e.Digest), e.TraceLen, e.Path)
	}
	return nil
}

func outputCatalogDetail(formatter *OutputFormatter, d CatalogDetail) error {
	if formatter.Format == "json" {
		return formatter.Success(d)
	}

	e := d.Entry
	fmt.Fprintf(formatter.Writer, "%s\n", e.Digest)
	fmt.Fprintf(formatter.Writer, "  path:      %s\n", e.Path)
	fmt.Fprintf(formatter.Writer, "  run:       %s\n", e.RunToken)
	fmt.Fprintf(formatter.Writer, "  size:      %d bytes (format v%d)\n", e.SizeBytes, e.FormatVersion)
	fmt.Fprintf(formatter.Writer, "  steps:     %d\n", e.TraceLen)
	fmt.Fprintf(formatter.Writer, "  bytecode:  %d instruction(s)\n\n", e.BytecodeLen)
	fmt.Fprintf(formatter.Writer, "%-8s %s\n", "OPCODE", "COUNT")
	for _, oc := range d.Opcodes {
		fmt.Fprintf(formatter.Writer, "%-8s %d\n", oc.Opcode, oc.Count)
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 16 {
		return d[:16]
	}
	return d
}
