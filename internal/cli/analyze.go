package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tracesum/internal/trace"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Top int // keep only the N most frequent opcodes; 0 keeps all
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <summary-file>",
		Short: "Print the opcode histogram of a summary file",
		Long: `Count how often each opcode was executed in a summary's raw trace.

Opcodes are listed most frequent first; equal counts are listed in opcode
order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Top, "top", 0, "show only the N most frequent opcodes")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Top < 0 {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("--top must not be negative, got %d", opts.Top), nil)
		return NewExitError(ExitCommandError, "invalid --top")
	}

	s, err := trace.ReadFromFile(path)
	if err != nil {
		return formatter.Fail("reading summary", err)
	}
	digest, err := s.Digest()
	if err != nil {
		return formatter.Fail("encoding summary", err)
	}
	rep := trace.NewReport(s).WithDigest(digest).Top(opts.Top)
	opts.logger().Debug("summary analyzed", "path", path, "opcodes", len(rep.Opcodes))

	if formatter.Format == "json" {
		return formatter.Success(rep)
	}

	fmt.Fprintf(formatter.Writer, "%s\n", path)
	fmt.Fprintf(formatter.Writer, "  digest: %s\n", rep.Digest)
	fmt.Fprintf(formatter.Writer, "  steps:  %d\n\n", rep.TraceLen)
	if len(rep.Opcodes) == 0 {
		fmt.Fprintln(formatter.Writer, "No instructions executed.")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%-8s %s\n", "OPCODE", "COUNT")
	for _, oc := range rep.Opcodes {
		fmt.Fprintf(formatter.Writer, "%-8s %d\n", oc.Opcode, oc.Count)
	}
	return nil
}
