// Package runnerlog is the structured-logging boundary for the runner and
// CLI. The core vm/memory/lambdaworks packages never log; only code at this
// boundary decides what is worth surfacing to an operator.
package runnerlog

import (
	"github.com/sirupsen/logrus"

	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm"
	"github.com/keep-starknet-strange/ziggy-starkdust-sub006/pkg/vm/memory"
)

var log = logrus.StandardLogger()

// SetVerbose toggles per-step debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		return
	}
	log.SetLevel(logrus.InfoLevel)
}

// StepFailed logs a fatal step failure with the step and pc context a
// postmortem needs to locate the failing instruction.
func StepFailed(step uint64, pc memory.Relocatable, err error) {
	log.WithFields(logrus.Fields{
		"step": step,
		"pc":   pc.String(),
	}).WithError(err).Error("cairo vm step failed")
}

// Step logs one line per executed step when verbose tracing is requested.
// Cheap to call unconditionally: logrus skips field formatting below the
// configured level.
func Step(step uint64, pc, ap, fp memory.Relocatable, instr *vm.Instruction) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.WithFields(logrus.Fields{
		"step": step,
		"pc":   pc.String(),
		"ap":   ap.String(),
		"fp":   fp.String(),
	}).Debugf("opcode=%v pc_update=%v", instr.Opcode, instr.PcUpdate)
}

// RunSummary logs the one-line completion summary a successful run reports.
func RunSummary(steps uint64, finalPc memory.Relocatable) {
	log.WithFields(logrus.Fields{
		"steps":    steps,
		"final_pc": finalPc.String(),
	}).Info("cairo vm run complete")
}
