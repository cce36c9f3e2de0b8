package langs

import (
	"regexp"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/fngrade/grader/api"
)

// gccDiagRe matches the `file:line[:col]: severity: message` line grammar
// emitted by gcc and clang.
var gccDiagRe = regexp.MustCompile(`^([^:\s][^:]*):(\d+)(?::(\d+))?:\s*(fatal error|error|warning|note):\s*(.*)$`)

// parseGccDiagnostics converts compiler stderr into structured records,
// one per matching line. Column defaults to 1 when the compiler omits it.
func parseGccDiagnostics(stderr string) []api.Diagnostic {
	var diags []api.Diagnostic
	for _, line := range strings.Split(stderr, "\n") {
		m := gccDiagRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col := 1
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}
		severity := m[4]
		if severity == "fatal error" {
			severity = "error"
		}
		diags = append(diags, api.Diagnostic{
			File:     m[1],
			Line:     lineNo,
			Column:   col,
			Severity: severity,
			Message:  m[5],
		})
	}
	return diags
}

// Interpreted-language diagnostics are heuristic: a file/line marker in
// the traceback paired with a known error-class keyword. Without both,
// only the raw message survives (the orchestrator keeps raw stderr).

var pythonErrorClasses = mapset.NewSet(
	"SyntaxError", "IndentationError", "TabError",
	"NameError", "TypeError", "ValueError", "IndexError", "KeyError",
	"AttributeError", "ZeroDivisionError", "ImportError",
	"ModuleNotFoundError", "RecursionError", "OverflowError",
)

var pythonSyntaxErrorClasses = mapset.NewSet(
	"SyntaxError", "IndentationError", "TabError",
)

var (
	pyFileLineRe = regexp.MustCompile(`File "([^"]+)", line (\d+)`)
	errClassRe   = regexp.MustCompile(`^([A-Za-z]+Error):\s*(.*)$`)
)

func parsePythonDiagnostics(stderr string) []api.Diagnostic {
	return parseInterpretedDiagnostics(stderr, pyFileLineRe, pythonErrorClasses, false)
}

func pythonSyntaxError(stderr string) bool {
	return matchesErrorClass(stderr, pythonSyntaxErrorClasses)
}

var nodeErrorClasses = mapset.NewSet(
	"SyntaxError", "ReferenceError", "TypeError", "RangeError", "EvalError",
)

var nodeSyntaxErrorClasses = mapset.NewSet("SyntaxError")

// nodeFileLineRe matches both the header form `solution.js:3` and stack
// frames like `at solve (solution.js:3:11)`.
var nodeFileLineRe = regexp.MustCompile(`([A-Za-z0-9_./-]+\.js):(\d+)`)

func parseNodeDiagnostics(stderr string) []api.Diagnostic {
	return parseInterpretedDiagnostics(stderr, nodeFileLineRe, nodeErrorClasses, true)
}

func nodeSyntaxError(stderr string) bool {
	return matchesErrorClass(stderr, nodeSyntaxErrorClasses)
}

// parseInterpretedDiagnostics pairs a file/line marker with the last
// recognized `ErrorClass: message` line. Python tracebacks print the
// deepest frame last, Node prints it first (the header line names the
// faulting file), so firstMarker selects which end holds the failure.
// No marker or no known class means no structured diagnostic.
func parseInterpretedDiagnostics(stderr string, fileLineRe *regexp.Regexp, classes mapset.Set[string], firstMarker bool) []api.Diagnostic {
	markers := fileLineRe.FindAllStringSubmatch(stderr, -1)
	if len(markers) == 0 {
		return nil
	}
	marker := markers[len(markers)-1]
	if firstMarker {
		marker = markers[0]
	}
	lineNo, _ := strconv.Atoi(marker[2])

	var class, msg string
	for _, line := range strings.Split(stderr, "\n") {
		m := errClassRe.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil && classes.Contains(m[1]) {
			class, msg = m[1], m[2]
		}
	}
	if class == "" {
		return nil
	}

	return []api.Diagnostic{{
		File:     marker[1],
		Line:     lineNo,
		Column:   1,
		Severity: "error",
		Message:  class + ": " + msg,
	}}
}

func matchesErrorClass(stderr string, classes mapset.Set[string]) bool {
	for _, line := range strings.Split(stderr, "\n") {
		m := errClassRe.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil && classes.Contains(m[1]) {
			return true
		}
	}
	return false
}
