package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tracesum/internal/trace"
)

// InspectResult describes the shape of a summary file.
type InspectResult struct {
	Path          string `json:"path"`
	SizeBytes     int64  `json:"size_bytes"`
	Digest        string `json:"digest"`
	FormatVersion uint32 `json:"format_version"`

	TraceLen         int `json:"trace_len"`
	RawTraceLen      int `json:"raw_trace_len"`
	BytecodeLen      int `json:"bytecode_len"`
	MemoryInitLen    int `json:"memory_init_len"`
	BytecodeTraceLen int `json:"bytecode_trace_len"`
	Lookups          int `json:"lookups"`
	MemoryWrites     int `json:"memory_writes"`
	CircuitFlagsLen  int `json:"circuit_flags_len"`
	FlagsPerStep     int `json:"flags_per_step"`

	DeviceInputs  int  `json:"device_inputs"`
	DeviceOutputs int  `json:"device_outputs"`
	DevicePanic   bool `json:"device_panic"`

	// Problem is set when the per-step fields disagree on the step count.
	Problem string `json:"problem,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <summary-file>",
		Short: "Describe the contents of a summary file",
		Long: `Decode a summary file and print the size of each of its parts,
together with its digest. Files whose per-step traces disagree on the step
count are reported but not rejected.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	s, err := trace.ReadFromFile(path)
	if err != nil {
		return formatter.Fail("reading summary", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return formatter.Fail("reading summary", err)
	}
	digest, err := s.Digest()
	if err != nil {
		return formatter.Fail("encoding summary", err)
	}

	result := inspect(s)
	result.Path = path
	result.SizeBytes = info.Size()
	result.Digest = digest
	opts.logger().Debug("summary inspected", "path", path, "steps", result.TraceLen)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputInspectText(formatter, result)
	return nil
}

func inspect(s *trace.ProgramSummary) InspectResult {
	r := InspectResult{
		FormatVersion:    trace.FormatVersion,
		TraceLen:         s.TraceLen(),
		RawTraceLen:      len(s.RawTrace),
		BytecodeLen:      len(s.Bytecode),
		MemoryInitLen:    len(s.MemoryInit),
		BytecodeTraceLen: len(s.BytecodeTrace),
		CircuitFlagsLen:  len(s.CircuitFlags),
		DeviceInputs:     len(s.Device.Inputs),
		DeviceOutputs:    len(s.Device.Outputs),
		DevicePanic:      s.Device.Panic,
	}

	for _, l := range s.InstructionTrace {
		if l != nil {
			r.Lookups++
		}
	}
	for _, group := range s.MemoryTrace {
		for _, op := range group {
			if op.Kind == trace.MemoryWrite {
				r.MemoryWrites++
			}
		}
	}

	if err := s.Validate(); err != nil {
		r.Problem = err.Error()
	} else {
		r.FlagsPerStep = s.FlagsPerStep()
	}
	return r
}

func outputInspectText(formatter *OutputFormatter, r InspectResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "%s (%d bytes, format v%d)\n", r.Path, r.SizeBytes, r.FormatVersion)
	fmt.Fprintf(w, "  digest:            %s\n", r.Digest)
	fmt.Fprintf(w, "  steps:             %d\n", r.TraceLen)
	fmt.Fprintf(w, "  raw trace rows:    %d\n", r.RawTraceLen)
	fmt.Fprintf(w, "  bytecode:          %d instruction(s)\n", r.BytecodeLen)
	fmt.Fprintf(w, "  memory init:       %d byte(s)\n", r.MemoryInitLen)
	fmt.Fprintf(w, "  lookups:           %d\n", r.Lookups)
	fmt.Fprintf(w, "  memory writes:     %d\n", r.MemoryWrites)
	fmt.Fprintf(w, "  circuit flags:     %d (%d per step)\n", r.CircuitFlagsLen, r.FlagsPerStep)
	fmt.Fprintf(w, "  device:            %d input byte(s), %d output byte(s), panic=%t\n",
		r.DeviceInputs, r.DeviceOutputs, r.DevicePanic)
	if r.Problem != "" {
		fmt.Fprintf(w, "  ✗ %s\n", r.Problem)
	}
}
