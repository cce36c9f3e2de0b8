package api

import "encoding/json"

// Status is the overall outcome of grading one submission.
type Status string

const (
	Accepted            Status = "AC"
	WrongAnswer         Status = "WA"
	CompilationError    Status = "CE"
	RuntimeError        Status = "RE"
	TimeLimitExceeded   Status = "TLE"
	InternalServerError Status = "ISE"
)

// TestStatus classifies one testcase's outcome.
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestError   TestStatus = "error"
	TestTimeout TestStatus = "timeout"
)

// TestVerdict is the outcome of a single testcase. Index is 1-based in
// user-facing messages. Input, Expected and Actual are omitted for
// redacted hidden testcases.
type TestVerdict struct {
	Index  int        `json:"index"`
	Status TestStatus `json:"status"`
	Hidden bool       `json:"hidden"`

	Input    json.RawMessage `json:"input,omitempty"`
	Expected json.RawMessage `json:"expected,omitempty"`
	Actual   json.RawMessage `json:"actual,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	TimeMillis   int64  `json:"time_ms"`
}

// Diagnostic is one structured compiler/interpreter error record.
type Diagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// SubmissionReport is the grading response for one submission.
type SubmissionReport struct {
	SubmUuid string `json:"subm_uuid"`

	Status  Status `json:"status"`
	Message string `json:"message"`

	TestVerdicts []TestVerdict `json:"test_verdicts"`
	TotalTests   int           `json:"total_tests"`
	PassedTests  int           `json:"passed_tests"`

	CompileDiagnostics []Diagnostic `json:"compile_diagnostics,omitempty"`
	CompileStderr      string       `json:"compile_stderr,omitempty"`

	DebugOutput string `json:"debug_output,omitempty"`
}
