package grader

import "github.com/fngrade/grader/api"

// ResultGatherer receives grading progress as it happens. It is purely
// observational: the SubmissionReport returned by Grade is authoritative.
// Verdicts passed to FinishTest are already redacted where the hidden
// policy applies, so gatherer transports cannot leak hidden testcases.
type ResultGatherer interface {
	StartGrading(langID string)

	StartCompile()
	FinishCompile(exitCode int64, stderr string, diags []api.Diagnostic)

	ReachTest(index int)
	FinishTest(verdict api.TestVerdict)

	CompileError(msg string)
	InternalError(msg string)
	Finish(status api.Status)
}

// NopGatherer discards all progress.
type NopGatherer struct{}

func (NopGatherer) StartGrading(string)                           {}
func (NopGatherer) StartCompile()                                 {}
func (NopGatherer) FinishCompile(int64, string, []api.Diagnostic) {}
func (NopGatherer) ReachTest(int)                                 {}
func (NopGatherer) FinishTest(api.TestVerdict)                    {}
func (NopGatherer) CompileError(string)                           {}
func (NopGatherer) InternalError(string)                          {}
func (NopGatherer) Finish(api.Status)                             {}

