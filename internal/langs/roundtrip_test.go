package langs_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fngrade/grader/internal/execute"
	"github.com/fngrade/grader/internal/langs"
	"github.com/fngrade/grader/internal/typespec"
	"github.com/stretchr/testify/require"
)

// identityCases feeds a value of every scalar kind, plus nested
// composites, through a synthesized harness wrapping an identity
// function. What comes back must be value-equal JSON.
var identityCases = []struct {
	tag   string
	value string
}{
	{"int", "7"},
	{"long", "123456789012345"},
	{"double", "2.5"},
	{"boolean", "true"},
	{"char", `"k"`},
	{"string", `"hello world"`},
	{"int[]", "[5,2,3,1]"},
	{"int[][][]", "[[[1,2],[3]],[[4,5,6]]]"},
	{"list<list<list<string>>>", `[[["a","b"],["c"]],[[]]]`},
}

const pyIdentity = "def mirror(x):\n    return x\n"

const jsIdentity = "function mirror(x) { return x; }\n"

var cppIdentity = map[string]string{
	"int":                      "int mirror(int x) { return x; }\n",
	"long":                     "long long mirror(long long x) { return x; }\n",
	"double":                   "double mirror(double x) { return x; }\n",
	"boolean":                  "bool mirror(bool x) { return x; }\n",
	"char":                     "char mirror(char x) { return x; }\n",
	"string":                   "std::string mirror(std::string x) { return x; }\n",
	"int[]":                    "std::vector<int> mirror(std::vector<int> x) { return x; }\n",
	"int[][][]":                "std::vector<std::vector<std::vector<int>>> mirror(std::vector<std::vector<std::vector<int>>> x) { return x; }\n",
	"list<list<list<string>>>": "std::vector<std::vector<std::vector<std::string>>> mirror(std::vector<std::vector<std::vector<std::string>>> x) { return x; }\n",
}

func TestHarnessRoundTripPython(t *testing.T) {
	for _, tc := range identityCases {
		t.Run(tc.tag, func(t *testing.T) {
			runIdentityHarness(t, langs.Python(), pyIdentity, tc.tag, tc.value)
		})
	}
}

func TestHarnessRoundTripJavaScript(t *testing.T) {
	for _, tc := range identityCases {
		t.Run(tc.tag, func(t *testing.T) {
			runIdentityHarness(t, langs.JavaScript(), jsIdentity, tc.tag, tc.value)
		})
	}
}

func TestHarnessRoundTripCpp(t *testing.T) {
	for _, tc := range identityCases {
		t.Run(tc.tag, func(t *testing.T) {
			runIdentityHarness(t, langs.Cpp(), cppIdentity[tc.tag], tc.tag, tc.value)
		})
	}
}

// runIdentityHarness synthesizes the harness for mirror(x tag) -> tag,
// materializes it next to the identity solution, compiles when the
// language requires it and runs one testcase end to end.
func runIdentityHarness(t *testing.T, lang *langs.Language, solution, tag, value string) {
	t.Helper()

	bin := lang.RunArgv[0]
	if lang.Compiled() {
		bin = lang.CompileArgv[0]
	}
	if _, err := exec.LookPath(bin); err != nil {
		t.Skipf("%s not installed", bin)
	}

	sig, err := typespec.ParseSignature("mirror",
		[]typespec.NamedTag{{Name: "x", Tag: tag}}, tag)
	require.NoError(t, err)

	harness, err := lang.Synthesize(sig, sentinel)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lang.SourceFname), []byte(solution), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lang.HarnessFname), []byte(harness), 0o644))

	if lang.Compiled() {
		res, err := execute.Run(context.Background(), lang.CompileArgv, dir, nil, 60*time.Second, 1<<20)
		require.NoError(t, err)
		require.Equal(t, 0, res.ExitCode, "compile failed:\n%s", res.Stderr)
	}

	input := fmt.Sprintf(`{"x": %s}`, value)
	res, err := execute.Run(context.Background(), lang.RunArgv, dir, []byte(input), 20*time.Second, 1<<20)
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode, "run failed:\n%s", res.Stderr)

	var parsed struct {
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultAfterSentinel(t, string(res.Stdout))), &parsed))
	require.JSONEq(t, value, string(parsed.Result), "%s %s", lang.ID, tag)
}

func resultAfterSentinel(t *testing.T, stdout string) string {
	t.Helper()
	lines := strings.Split(stdout, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == sentinel {
			return strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}
	t.Fatalf("no result delimiter in harness output: %q", stdout)
	return ""
}
