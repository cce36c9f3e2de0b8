package grader_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fngrade/grader/api"
	"github.com/fngrade/grader/internal/grader"
	"github.com/fngrade/grader/internal/langs"
	"github.com/fngrade/grader/internal/typespec"
	"github.com/stretchr/testify/require"
)

// shLang is a scripted test language: the harness sources solution.sh
// (top-level statements act as user debug output), prints the sentinel
// and then the result produced by the solve function.
func shLang(compileArgv []string) *langs.Language {
	return &langs.Language{
		ID:           "sh",
		Name:         "Shell (test)",
		SourceFname:  "solution.sh",
		HarnessFname: "main.sh",
		CompileArgv:  compileArgv,
		RunArgv:      []string{"sh", "main.sh"},
		Synthesize: func(sig *typespec.Signature, sentinel string) (string, error) {
			return fmt.Sprintf("in=$(cat)\n. ./solution.sh\nprintf '\\n%%s\\n' %q\nsolve \"$in\"\n", sentinel), nil
		},
		ParseDiagnostics: langs.Cpp().ParseDiagnostics,
		IsSyntaxError: func(stderr string) bool {
			return strings.Contains(stderr, "FakeSyntaxError")
		},
	}
}

func newGrader(t *testing.T, hiddenThreshold int, runTimeout time.Duration, compileArgv []string) *grader.Grader {
	t.Helper()
	reg := langs.NewRegistry()
	reg.Register(shLang(compileArgv))
	cfg := grader.Config{
		WorkspaceRoot:   t.TempDir(),
		RunTimeout:      runTimeout,
		CompileTimeout:  5 * time.Second,
		OutputCapBytes:  64 * 1024,
		HiddenThreshold: hiddenThreshold,
	}
	return grader.New(cfg, reg, nil)
}

func numTest(n int, expected string) api.Testcase {
	return api.Testcase{
		Input:    map[string]json.RawMessage{"n": json.RawMessage(fmt.Sprint(n))},
		Expected: json.RawMessage(expected),
	}
}

// echoSolution answers with the n field of its input, so expectations can
// make any prefix of the testcases pass or fail.
const echoSolution = `echo "dbg"
solve() {
	case "$1" in
	*'"n":1'*) echo '{"result": 1}' ;;
	*'"n":2'*) echo '{"result": 2}' ;;
	*'"n":3'*) echo '{"result": 3}' ;;
	*'"n":4'*) echo '{"result": 4}' ;;
	*'"n":5'*) echo '{"result": 5}' ;;
	*) echo '{"result": 0}' ;;
	esac
}
`

func TestGradeAccepted(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s1",
		LangID:   "sh",
		Source:   echoSolution,
		Tests:    []api.Testcase{numTest(1, "1"), numTest(2, "2")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.Accepted, report.Status)
	require.Equal(t, 2, report.TotalTests)
	require.Equal(t, 2, report.PassedTests)
	require.Len(t, report.TestVerdicts, 2)
	require.Equal(t, api.TestPassed, report.TestVerdicts[0].Status)
	require.Contains(t, report.DebugOutput, "--- testcase 1 ---")
	require.Contains(t, report.DebugOutput, "dbg")
}

func TestGradeFirstFailureWins(t *testing.T) {
	g := newGrader(t, 10, 5*time.Second, nil)

	// testcase 2 is a wrong answer, testcase 3 a runtime error; the
	// earliest failure decides status and message
	solution := `solve() {
	case "$1" in
	*'"n":3'*) exit 7 ;;
	*'"n":2'*) echo '{"result": 999}' ;;
	*) echo '{"result": 1}' ;;
	esac
}
`
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s2",
		LangID:   "sh",
		Source:   solution,
		Tests:    []api.Testcase{numTest(1, "1"), numTest(2, "2"), numTest(3, "3")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.WrongAnswer, report.Status)
	require.Contains(t, report.Message, "testcase 2")
	require.Equal(t, 1, report.PassedTests)
	require.Equal(t, api.TestFailed, report.TestVerdicts[1].Status)
	require.Equal(t, api.TestError, report.TestVerdicts[2].Status)
}

func TestGradeTimeout(t *testing.T) {
	g := newGrader(t, 3, 200*time.Millisecond, nil)

	start := time.Now()
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s3",
		LangID:   "sh",
		Source:   "solve() { sleep 30; }\n",
		Tests:    []api.Testcase{numTest(1, "1")},
	}, nil)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 10*time.Second)

	require.Equal(t, api.TimeLimitExceeded, report.Status)
	require.Contains(t, report.Message, "testcase 1")
	require.Equal(t, api.TestTimeout, report.TestVerdicts[0].Status)
}

func TestGradeCompileError(t *testing.T) {
	compileArgv := []string{"sh", "-c", "echo 'solution.sh:3:5: error: boom' >&2; exit 1"}
	g := newGrader(t, 3, 5*time.Second, compileArgv)

	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s4",
		LangID:   "sh",
		Source:   echoSolution,
		Tests:    []api.Testcase{numTest(1, "1")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.CompilationError, report.Status)
	require.Empty(t, report.TestVerdicts)
	require.Equal(t, 0, report.PassedTests)
	require.NotEmpty(t, report.CompileDiagnostics)
	require.Equal(t, 3, report.CompileDiagnostics[0].Line)
	require.Positive(t, report.CompileDiagnostics[0].Line)
}

func TestGradeInferredSyntaxError(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	solution := `echo "FakeSyntaxError: unexpected token" >&2
exit 1
`
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s5",
		LangID:   "sh",
		Source:   solution,
		Tests:    []api.Testcase{numTest(1, "1"), numTest(2, "2")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.CompilationError, report.Status)
	require.Empty(t, report.TestVerdicts)
	require.Contains(t, report.CompileStderr, "FakeSyntaxError")
}

func TestGradeRuntimeErrorNotFirstTest(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	// the syntax-error signature only converts to CE on testcase 1
	solution := `solve() {
	case "$1" in
	*'"n":2'*) echo "FakeSyntaxError: nope" >&2; exit 1 ;;
	*) echo '{"result": 1}' ;;
	esac
}
`
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s6",
		LangID:   "sh",
		Source:   solution,
		Tests:    []api.Testcase{numTest(1, "1"), numTest(2, "2")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.RuntimeError, report.Status)
	require.Contains(t, report.Message, "testcase 2")
}

func TestGradeUnparsableResult(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s7",
		LangID:   "sh",
		Source:   "solve() { echo 'not json'; }\n",
		Tests:    []api.Testcase{numTest(1, "1")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.RuntimeError, report.Status)
	require.Equal(t, api.TestError, report.TestVerdicts[0].Status)
	require.Contains(t, report.TestVerdicts[0].ErrorMessage, "parse")
}

func TestGradeRedaction(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	// five testcases, only the fifth (0-based index 4) fails
	tests := []api.Testcase{
		numTest(1, "1"), numTest(2, "2"), numTest(3, "3"),
		numTest(4, "4"), numTest(5, "999"),
	}
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid:     "s8",
		LangID:       "sh",
		Source:       echoSolution,
		Tests:        tests,
		RedactHidden: true,
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.WrongAnswer, report.Status)
	require.Contains(t, report.Message, "testcase 5")
	// pass/fail is tallied over all five testcases
	require.Equal(t, 5, report.TotalTests)
	require.Equal(t, 4, report.PassedTests)

	// first three in full, the passing hidden testcase 4 withheld, the
	// failing hidden testcase 5 appended for debuggability
	require.Len(t, report.TestVerdicts, 4)
	for i := 0; i < 3; i++ {
		require.Equal(t, i+1, report.TestVerdicts[i].Index)
		require.False(t, report.TestVerdicts[i].Hidden)
		require.NotEmpty(t, report.TestVerdicts[i].Input)
	}
	last := report.TestVerdicts[3]
	require.Equal(t, 5, last.Index)
	require.True(t, last.Hidden)
	require.Equal(t, api.TestFailed, last.Status)

	// debug sections for withheld testcases never reach the report
	require.NotContains(t, report.DebugOutput, "--- testcase 4 ---")
	require.Contains(t, report.DebugOutput, "--- testcase 1 ---")
}

func TestGradeNoRedactionShowsAll(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	tests := []api.Testcase{
		numTest(1, "1"), numTest(2, "2"), numTest(3, "3"),
		numTest(4, "4"), numTest(5, "5"),
	}
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s9",
		LangID:   "sh",
		Source:   echoSolution,
		Tests:    tests,
	}, nil)
	require.NoError(t, err)
	require.Len(t, report.TestVerdicts, 5)
	for _, v := range report.TestVerdicts {
		require.False(t, v.Hidden)
	}
}

func TestGradeSentinelCollision(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	// user debug output contains the historical fixed sentinel; the
	// per-run random token must not be fooled by it
	solution := `echo "===RESULT_JSON_START==="
solve() { echo '{"result": 1}'; }
`
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s10",
		LangID:   "sh",
		Source:   solution,
		Tests:    []api.Testcase{numTest(1, "1")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, api.Accepted, report.Status)
	require.Contains(t, report.DebugOutput, "===RESULT_JSON_START===")
}

func TestGradeUnknownLanguage(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	_, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s11",
		LangID:   "cobol",
		Source:   "x",
		Tests:    []api.Testcase{numTest(1, "1")},
	}, nil)
	require.ErrorIs(t, err, grader.ErrBadRequest)
}

func TestGradeInvalidFuncSpec(t *testing.T) {
	g := newGrader(t, 3, 5*time.Second, nil)

	_, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s12",
		LangID:   "sh",
		Source:   "x",
		FuncSpec: &api.FuncSpec{
			FuncName:   "f",
			Params:     []api.Param{{Name: "x", Type: "float"}},
			ReturnType: "int",
		},
		Tests: []api.Testcase{numTest(1, "1")},
	}, nil)
	require.ErrorIs(t, err, grader.ErrBadRequest)
}

func TestSplitSentinelHelpers(t *testing.T) {
	// verified through Grade above; here the degenerate no-sentinel path
	g := newGrader(t, 3, 5*time.Second, nil)

	// solve never prints, harness is replaced by a crashing script via
	// top-level exit before the sentinel line
	report, err := g.Grade(context.Background(), &api.GradeRequest{
		SubmUuid: "s13",
		LangID:   "sh",
		Source:   "exit 0\n",
		Tests:    []api.Testcase{numTest(1, "1")},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, api.RuntimeError, report.Status)
	require.Contains(t, report.TestVerdicts[0].ErrorMessage, "no result")
}
