package langs_test

import (
	"testing"

	"github.com/fngrade/grader/internal/langs"
	"github.com/stretchr/testify/require"
)

const gccStderr = `main.cpp: In function 'int main()':
solution.cpp:4:12: error: 'vectr' was not declared in this scope
    4 |     return vectr;
      |            ^~~~~
solution.cpp:2:1: warning: unused variable 'x' [-Wunused-variable]
`

func TestParseGccDiagnostics(t *testing.T) {
	diags := langs.Cpp().ParseDiagnostics(gccStderr)
	require.Len(t, diags, 2)

	require.Equal(t, "solution.cpp", diags[0].File)
	require.Equal(t, 4, diags[0].Line)
	require.Equal(t, 12, diags[0].Column)
	require.Equal(t, "error", diags[0].Severity)
	require.Contains(t, diags[0].Message, "'vectr' was not declared")

	require.Equal(t, "warning", diags[1].Severity)
	require.Equal(t, 2, diags[1].Line)
}

func TestParseGccDiagnosticsNoColumn(t *testing.T) {
	diags := langs.Cpp().ParseDiagnostics("solution.cpp:7: error: expected ';'\n")
	require.Len(t, diags, 1)
	require.Equal(t, 7, diags[0].Line)
	require.Equal(t, 1, diags[0].Column)
}

const pySyntaxStderr = `  File "/work/solution.py", line 3
    def sortArray(nums)
                       ^
SyntaxError: expected ':'
`

const pyRuntimeStderr = `Traceback (most recent call last):
  File "/work/main.py", line 24, in <module>
    main()
  File "/work/solution.py", line 5, in sortArray
    return nums[100]
IndexError: list index out of range
`

func TestParsePythonDiagnostics(t *testing.T) {
	diags := langs.Python().ParseDiagnostics(pySyntaxStderr)
	require.Len(t, diags, 1)
	require.Equal(t, "/work/solution.py", diags[0].File)
	require.Equal(t, 3, diags[0].Line)
	require.Equal(t, "error", diags[0].Severity)
	require.Contains(t, diags[0].Message, "SyntaxError")

	diags = langs.Python().ParseDiagnostics(pyRuntimeStderr)
	require.Len(t, diags, 1)
	// the deepest frame wins
	require.Equal(t, "/work/solution.py", diags[0].File)
	require.Equal(t, 5, diags[0].Line)
	require.Contains(t, diags[0].Message, "IndexError")
}

func TestParsePythonDiagnosticsUnrecognized(t *testing.T) {
	require.Nil(t, langs.Python().ParseDiagnostics("segmentation fault\n"))
}

func TestPythonSyntaxErrorSignatures(t *testing.T) {
	require.True(t, langs.Python().IsSyntaxError(pySyntaxStderr))
	require.True(t, langs.Python().IsSyntaxError("IndentationError: unexpected indent\n"))
	require.False(t, langs.Python().IsSyntaxError(pyRuntimeStderr))
	require.False(t, langs.Python().IsSyntaxError(""))
}

const nodeSyntaxStderr = `/work/solution.js:3
  return nums.sort((a, b => a - b);
                                  ^

SyntaxError: missing ) after argument list
    at internalCompileFunction (node:internal/vm:73:18)
`

func TestParseNodeDiagnostics(t *testing.T) {
	diags := langs.JavaScript().ParseDiagnostics(nodeSyntaxStderr)
	require.Len(t, diags, 1)
	require.Equal(t, 3, diags[0].Line)
	require.Contains(t, diags[0].Message, "SyntaxError")

	require.True(t, langs.JavaScript().IsSyntaxError(nodeSyntaxStderr))
	require.False(t, langs.JavaScript().IsSyntaxError("Error: boom\n"))
}

const nodeRuntimeStderr = `/work/solution.js:2
  return foo(nums);
         ^

ReferenceError: foo is not defined
    at sortArray (/work/solution.js:2:10)
    at main (/work/main.js:12:20)
    at Object.<anonymous> (/work/main.js:18:1)
`

func TestParseNodeDiagnosticsDeepestFrameFirst(t *testing.T) {
	// node prints the faulting file first; the trailing main.js frames
	// must not win the attribution
	diags := langs.JavaScript().ParseDiagnostics(nodeRuntimeStderr)
	require.Len(t, diags, 1)
	require.Equal(t, "/work/solution.js", diags[0].File)
	require.Equal(t, 2, diags[0].Line)
	require.Contains(t, diags[0].Message, "ReferenceError")
}
