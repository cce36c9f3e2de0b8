package langs

import (
	"fmt"
	"strings"

	"github.com/fngrade/grader/internal/typespec"
)

// JavaScript returns the Node.js language definition. The user source is
// loaded with vm.runInThisContext so stack traces keep the solution.js
// file name; the solution must declare its function with `function` or
// `var` so it lands on the global object.
func JavaScript() *Language {
	return &Language{
		ID:               "javascript",
		Name:             "JavaScript (Node.js)",
		SourceFname:      "solution.js",
		HarnessFname:     "main.js",
		RunArgv:          []string{"node", "main.js"},
		Synthesize:       synthesizeJavaScript,
		ParseDiagnostics: parseNodeDiagnostics,
		IsSyntaxError:    nodeSyntaxError,
	}
}

var jsScalarCodecs = map[typespec.Kind]scalarCodec{
	typespec.Int:     {dec: "Math.trunc(Number(%s))", enc: "String(%s)"},
	typespec.Long:    {dec: "Math.trunc(Number(%s))", enc: "String(%s)"},
	typespec.Double:  {dec: "Number(%s)", enc: "String(%s)"},
	typespec.Boolean: {dec: "Boolean(%s)", enc: `(%s ? "true" : "false")`},
	typespec.Char:    {dec: "String(%s)", enc: "jsonStr(%s)"},
	typespec.String:  {dec: "String(%s)", enc: "jsonStr(%s)"},
}

func jsDecodeExpr(expr string, t *typespec.Type, depth int) (string, error) {
	if t.Scalar() {
		codec, ok := jsScalarCodecs[t.Kind]
		if !ok {
			return "", fmt.Errorf("unsupported type %q for javascript", t)
		}
		return fmt.Sprintf(codec.dec, expr), nil
	}
	v := fmt.Sprintf("_e%d", depth)
	inner, err := jsDecodeExpr(v, t.Elem, depth+1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s).map((%s) => %s)", expr, v, inner), nil
}

func jsEncodeExpr(expr string, t *typespec.Type, depth int) (string, error) {
	if t.Scalar() {
		codec, ok := jsScalarCodecs[t.Kind]
		if !ok {
			return "", fmt.Errorf("unsupported type %q for javascript", t)
		}
		return fmt.Sprintf(codec.enc, expr), nil
	}
	v := fmt.Sprintf("_e%d", depth)
	inner, err := jsEncodeExpr(v, t.Elem, depth+1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`("[" + (%s).map((%s) => %s).join(",") + "]")`, expr, v, inner), nil
}

const jsPrelude = `"use strict";

const fs = require("node:fs");
const path = require("node:path");
const vm = require("node:vm");

vm.runInThisContext(
  fs.readFileSync(path.join(__dirname, "solution.js"), "utf8"),
  { filename: "solution.js" },
);

function jsonStr(s) {
  let out = '"';
  for (const ch of String(s)) {
    if (ch === '"' || ch === "\\") out += "\\" + ch;
    else if (ch === "\n") out += "\\n";
    else if (ch === "\t") out += "\\t";
    else if (ch === "\r") out += "\\r";
    else out += ch;
  }
  return out + '"';
}
`

func synthesizeJavaScript(sig *typespec.Signature, sentinel string) (string, error) {
	var b strings.Builder

	b.WriteString(jsPrelude)
	b.WriteString("\nfunction main() {\n")
	b.WriteString("  const _data = JSON.parse(fs.readFileSync(0, \"utf8\"));\n")

	var argNames []string
	for _, p := range sig.Params {
		dec, err := jsDecodeExpr(fmt.Sprintf("_data[%q]", p.Name), p.Type, 0)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  const %s = %s;\n", p.Name, dec)
		argNames = append(argNames, p.Name)
	}

	fmt.Fprintf(&b, "  const _fn = globalThis[%q];\n", sig.FuncName)
	fmt.Fprintf(&b, "  if (typeof _fn !== \"function\") {\n"+
		"    throw new Error(\"function %s is not defined\");\n  }\n", sig.FuncName)
	fmt.Fprintf(&b, "  const _result = _fn(%s);\n", strings.Join(argNames, ", "))

	enc, err := jsEncodeExpr("_result", sig.Return, 0)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "  const _encoded = %s;\n", enc)
	fmt.Fprintf(&b, "  process.stdout.write(\"\\n\" + %q + \"\\n\");\n", sentinel)
	b.WriteString("  process.stdout.write('{\"result\": ' + _encoded + '}\\n');\n")
	b.WriteString("}\n\nmain();\n")

	return b.String(), nil
}
