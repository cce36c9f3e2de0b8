// Package langs holds per-language behavior: source/harness file naming,
// compile and run command lines, harness synthesis from a function
// signature, and diagnostics parsing. The orchestrator never branches on
// a language id; everything language-specific lives behind a Language
// looked up in the registry.
package langs

import (
	"errors"

	"github.com/fngrade/grader/api"
	"github.com/fngrade/grader/internal/typespec"
)

var ErrUnknownLanguage = errors.New("unknown language")

// SynthesizeFunc produces the complete harness source for a signature.
// The sentinel is the line printed between user debug output and the
// structured result line.
type SynthesizeFunc func(sig *typespec.Signature, sentinel string) (string, error)

// Language describes one target execution language.
type Language struct {
	ID   string
	Name string

	// SourceFname is where the user's code is materialized inside the
	// workspace; HarnessFname is the synthesized entry point.
	SourceFname  string
	HarnessFname string

	// CompileArgv is nil for interpreted languages. Both argv slices are
	// run with the workspace as working directory.
	CompileArgv []string
	RunArgv     []string

	Synthesize SynthesizeFunc

	// ParseDiagnostics recovers structured records from compiler or
	// interpreter stderr. May return nil when nothing matches.
	ParseDiagnostics func(stderr string) []api.Diagnostic

	// IsSyntaxError reports whether interpreter stderr looks like a
	// syntax error. Only consulted for interpreted languages on the
	// first testcase, where it turns a runtime failure into CE.
	IsSyntaxError func(stderr string) bool
}

// Compiled reports whether the language has a distinct compile step.
func (l *Language) Compiled() bool {
	return len(l.CompileArgv) > 0
}
