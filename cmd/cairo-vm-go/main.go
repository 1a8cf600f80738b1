// Command cairo-vm-go runs a compiled Cairo program and optionally writes
// its relocated trace and memory to disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/internal/runnerlog"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/runners"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "execute" {
		fmt.Fprintln(os.Stderr, "usage: cairo-vm-go execute --filename <path> [flags]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("execute", flag.ExitOnError)
	filename := fs.String("filename", "", "path to a compiled Cairo program (JSON)")
	layout := fs.String("layout", "plain", "builtin layout name (informational; builtins come from the program itself)")
	proofMode := fs.Bool("proof-mode", false, "accepted for compatibility; the trace is not padded")
	enableTrace := fs.Bool("enable-trace", false, "log one line per executed step")
	outputMemory := fs.String("output-memory", "", "path to write the relocated memory to")
	outputTrace := fs.String("output-trace", "", "path to write the relocated trace to")
	maxSteps := fs.Uint64("max-steps", 1_000_000, "maximum steps before aborting")
	_ = layout
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(1)
	}

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "execute: --filename is required")
		os.Exit(1)
	}

	runnerlog.SetVerbose(*enableTrace)

	if err := run(*filename, *maxSteps, *proofMode, *outputTrace, *outputMemory); err != nil {
		fmt.Fprintf(os.Stderr, "cairo-vm-go: %v\n", err)
		os.Exit(1)
	}
}

func run(filename string, maxSteps uint64, proofMode bool, outputTrace, outputMemory string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	program, err := vm.LoadProgramJSON(content)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	runner, err := runners.NewCairoRunner(program)
	if err != nil {
		return fmt.Errorf("constructing runner: %w", err)
	}

	endPtr, err := runner.Initialize()
	if err != nil {
		return fmt.Errorf("initializing runner: %w", err)
	}

	if err := runner.RunUntilPc(endPtr, maxSteps); err != nil {
		runnerlog.StepFailed(runner.Vm.CurrentStep, runner.Vm.RunContext.Pc, err)
		return fmt.Errorf("running program: %w", err)
	}

	// Proof generation itself is out of scope here; --proof-mode is
	// accepted for CLI surface compatibility but emits the trace as run,
	// unpadded.
	_ = proofMode

	if err := runner.Relocate(); err != nil {
		return fmt.Errorf("relocating: %w", err)
	}

	runnerlog.RunSummary(runner.Vm.CurrentStep, endPtr)

	if outputTrace != "" {
		if err := os.WriteFile(outputTrace, runners.EncodeTrace(runner.Vm.RelocatedTrace), 0o644); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	if outputMemory != "" {
		if err := os.WriteFile(outputMemory, runners.EncodeMemory(runner.Vm.RelocatedMemory), 0o644); err != nil {
			return fmt.Errorf("writing memory: %w", err)
		}
	}
	return nil
}
