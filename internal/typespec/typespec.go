// Package typespec parses the recursive TypeTag grammar used to describe
// user-function parameter and return types: the scalars int, long, double,
// boolean, char and string, plus `T[]` arrays and `list<T>` ordered lists
// nested to any finite depth.
package typespec

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Int Kind = iota
	Long
	Double
	Boolean
	Char
	String
	Array
	List
)

// Type is one node of the TypeTag AST. Elem is set for Array and List.
type Type struct {
	Kind Kind
	Elem *Type
}

var scalars = map[string]Kind{
	"int":     Int,
	"long":    Long,
	"double":  Double,
	"boolean": Boolean,
	"char":    Char,
	"string":  String,
}

var scalarNames = map[Kind]string{
	Int:     "int",
	Long:    "long",
	Double:  "double",
	Boolean: "boolean",
	Char:    "char",
	String:  "string",
}

// Parse converts a TypeTag string into its AST. Unknown tags are rejected
// here so that harness synthesis never sees an unsupported type.
func Parse(tag string) (*Type, error) {
	s := strings.TrimSpace(tag)
	if s == "" {
		return nil, fmt.Errorf("empty type tag")
	}

	if strings.HasSuffix(s, "[]") {
		elem, err := Parse(s[:len(s)-2])
		if err != nil {
			return nil, err
		}
		return &Type{Kind: Array, Elem: elem}, nil
	}

	if strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">") {
		elem, err := Parse(s[len("list<") : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &Type{Kind: List, Elem: elem}, nil
	}

	if kind, ok := scalars[s]; ok {
		return &Type{Kind: kind}, nil
	}

	return nil, fmt.Errorf("unsupported type tag %q", tag)
}

// String renders the AST back into TypeTag form.
func (t *Type) String() string {
	switch t.Kind {
	case Array:
		return t.Elem.String() + "[]"
	case List:
		return "list<" + t.Elem.String() + ">"
	default:
		return scalarNames[t.Kind]
	}
}

// Scalar reports whether t is a leaf of the grammar.
func (t *Type) Scalar() bool {
	return t.Kind != Array && t.Kind != List
}

// Depth returns the nesting depth: 0 for scalars, 1 for T[], and so on.
func (t *Type) Depth() int {
	d := 0
	for !t.Scalar() {
		d++
		t = t.Elem
	}
	return d
}

// Param is one named, typed user-function parameter.
type Param struct {
	Name string
	Type *Type
}

// Signature is the resolved form of a function spec: the function name,
// its parameters in declared order and the return type.
type Signature struct {
	FuncName string
	Params   []Param
	Return   *Type
}

// NamedTag is a wire-form parameter: a name and an unparsed TypeTag.
type NamedTag struct {
	Name string
	Tag  string
}

// ParseSignature resolves a wire-form function spec into a Signature.
func ParseSignature(funcName string, params []NamedTag, returnType string) (*Signature, error) {
	if funcName == "" {
		return nil, fmt.Errorf("function name is empty")
	}
	sig := &Signature{FuncName: funcName}
	for _, p := range params {
		t, err := Parse(p.Tag)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		sig.Params = append(sig.Params, Param{Name: p.Name, Type: t})
	}
	ret, err := Parse(returnType)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	sig.Return = ret
	return sig, nil
}

// DefaultSignature is the legacy fallback used when a problem carries no
// function spec: a single int[] parameter named nums returning int[].
func DefaultSignature(funcName string) *Signature {
	intArr := &Type{Kind: Array, Elem: &Type{Kind: Int}}
	if funcName == "" {
		funcName = "solve"
	}
	return &Signature{
		FuncName: funcName,
		Params:   []Param{{Name: "nums", Type: intArr}},
		Return:   intArr,
	}
}
