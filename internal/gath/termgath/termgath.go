// Package termgath prints grading progress to the terminal. Used by the
// CLI run flow.
package termgath

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/fngrade/grader/api"
)

type TerminalGatherer struct {
	StartedAt time.Time
}

func New() *TerminalGatherer { return &TerminalGatherer{StartedAt: time.Now()} }

var (
	headerCol = color.New(color.Bold)
	passCol   = color.New(color.FgGreen)
	failCol   = color.New(color.FgRed)
	warnCol   = color.New(color.FgYellow)
)

func (t *TerminalGatherer) StartGrading(langID string) {
	headerCol.Printf("== Grading started (%s) ==\n", langID)
}

func (t *TerminalGatherer) StartCompile() {
	fmt.Println("-- Compiling --")
}

func (t *TerminalGatherer) FinishCompile(exitCode int64, stderr string, diags []api.Diagnostic) {
	fmt.Printf("-- Compile finished: exit=%d --\n", exitCode)
	for _, d := range diags {
		warnCol.Printf("  %s:%d:%d: %s: %s\n", d.File, d.Line, d.Column, d.Severity, d.Message)
	}
}

func (t *TerminalGatherer) ReachTest(index int) {
	fmt.Printf("-> Testcase %d\n", index)
}

func (t *TerminalGatherer) FinishTest(v api.TestVerdict) {
	col := failCol
	if v.Status == api.TestPassed {
		col = passCol
	}
	suffix := ""
	if v.Hidden {
		suffix = " (hidden)"
	}
	col.Printf("<- Testcase %d: %s in %dms%s\n", v.Index, v.Status, v.TimeMillis, suffix)
	if v.ErrorMessage != "" {
		fmt.Printf("   %s\n", v.ErrorMessage)
	}
}

func (t *TerminalGatherer) CompileError(msg string) {
	failCol.Printf("== Compile error: %s ==\n", msg)
}

func (t *TerminalGatherer) InternalError(msg string) {
	failCol.Printf("== Internal error: %s ==\n", msg)
}

func (t *TerminalGatherer) Finish(status api.Status) {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	col := failCol
	if status == api.Accepted {
		col = passCol
	}
	col.Printf("== %s in %s ==\n", status, dur)
}
