package api

import "encoding/json"

// GradeRequest is a request to grade one submission against a set of testcases.
type GradeRequest struct {
	SubmUuid string `json:"subm_uuid"`

	LangID   string     `json:"lang_id"`
	Source   string     `json:"source"`
	FuncSpec *FuncSpec  `json:"func_spec"`
	Tests    []Testcase `json:"tests"`

	// RedactHidden enables the hidden-testcase policy used by the
	// final submit flow. The run flow leaves it off.
	RedactHidden bool `json:"redact_hidden"`

	// ProgressSubject, if set, is a NATS subject to stream progress
	// messages to while grading runs.
	ProgressSubject string `json:"progress_subject,omitempty"`
}

// FuncSpec describes the user function's signature. Types are written in
// the TypeTag grammar: int, long, double, boolean, char, string, T[] and
// list<T> with arbitrary nesting.
type FuncSpec struct {
	FuncName   string  `json:"func_name"`
	Params     []Param `json:"params"`
	ReturnType string  `json:"return_type"`
}

type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Testcase maps parameter names to JSON-encoded argument values plus the
// expected return value. Order in the request defines testcase index.
type Testcase struct {
	Input    map[string]json.RawMessage `json:"input"`
	Expected json.RawMessage            `json:"expected"`
}
