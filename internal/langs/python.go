package langs

import (
	"fmt"
	"strings"

	"github.com/fngrade/grader/internal/typespec"
)

// Python returns the python3 language definition. Python is interpreted:
// there is no compile step, and syntax errors are inferred from the first
// testcase's stderr.
func Python() *Language {
	return &Language{
		ID:               "python",
		Name:             "Python 3",
		SourceFname:      "solution.py",
		HarnessFname:     "main.py",
		RunArgv:          []string{"python3", "main.py"},
		Synthesize:       synthesizePython,
		ParseDiagnostics: parsePythonDiagnostics,
		IsSyntaxError:    pythonSyntaxError,
	}
}

// pyScalarCodecs maps scalar tag kinds to decode/encode expression
// templates. %s is the expression holding the value being converted.
var pyScalarCodecs = map[typespec.Kind]scalarCodec{
	typespec.Int:     {dec: "int(%s)", enc: "str(%s)"},
	typespec.Long:    {dec: "int(%s)", enc: "str(%s)"},
	typespec.Double:  {dec: "float(%s)", enc: "repr(float(%s))"},
	typespec.Boolean: {dec: "bool(%s)", enc: `("true" if %s else "false")`},
	typespec.Char:    {dec: "str(%s)", enc: "_json_str(%s)"},
	typespec.String:  {dec: "str(%s)", enc: "_json_str(%s)"},
}

// pyDecodeExpr renders an expression converting the generic JSON value in
// expr to the native shape of t. Composites recurse; depth keeps the
// comprehension variables distinct.
func pyDecodeExpr(expr string, t *typespec.Type, depth int) (string, error) {
	if t.Scalar() {
		codec, ok := pyScalarCodecs[t.Kind]
		if !ok {
			return "", fmt.Errorf("unsupported type %q for python", t)
		}
		return fmt.Sprintf(codec.dec, expr), nil
	}
	v := fmt.Sprintf("_e%d", depth)
	inner, err := pyDecodeExpr(v, t.Elem, depth+1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s for %s in %s]", inner, v, expr), nil
}

func pyEncodeExpr(expr string, t *typespec.Type, depth int) (string, error) {
	if t.Scalar() {
		codec, ok := pyScalarCodecs[t.Kind]
		if !ok {
			return "", fmt.Errorf("unsupported type %q for python", t)
		}
		return fmt.Sprintf(codec.enc, expr), nil
	}
	v := fmt.Sprintf("_e%d", depth)
	inner, err := pyEncodeExpr(v, t.Elem, depth+1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`("[" + ",".join(%s for %s in %s) + "]")`, inner, v, expr), nil
}

const pyJSONStrHelper = `def _json_str(s):
    out = '"'
    for ch in str(s):
        if ch == '"' or ch == "\\":
            out += "\\" + ch
        elif ch == "\n":
            out += "\\n"
        elif ch == "\t":
            out += "\\t"
        elif ch == "\r":
            out += "\\r"
        else:
            out += ch
    return out + '"'
`

func synthesizePython(sig *typespec.Signature, sentinel string) (string, error) {
	var b strings.Builder

	b.WriteString("import json\n")
	b.WriteString("import sys\n\n")
	fmt.Fprintf(&b, "from solution import %s\n\n\n", sig.FuncName)
	b.WriteString(pyJSONStrHelper)
	b.WriteString("\n\n")

	b.WriteString("def main():\n")
	b.WriteString("    _data = json.loads(sys.stdin.read())\n")

	var argNames []string
	for _, p := range sig.Params {
		dec, err := pyDecodeExpr(fmt.Sprintf("_data[%q]", p.Name), p.Type, 0)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "    %s = %s\n", p.Name, dec)
		argNames = append(argNames, p.Name)
	}

	fmt.Fprintf(&b, "    _result = %s(%s)\n", sig.FuncName, strings.Join(argNames, ", "))

	enc, err := pyEncodeExpr("_result", sig.Return, 0)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "    _encoded = %s\n", enc)
	b.WriteString("    sys.stdout.flush()\n")
	fmt.Fprintf(&b, "    sys.stdout.write(\"\\n\" + %q + \"\\n\")\n", sentinel)
	b.WriteString("    sys.stdout.write('{\"result\": ' + _encoded + '}\\n')\n\n\n")

	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    main()\n")

	return b.String(), nil
}
