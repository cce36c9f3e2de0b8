package api

import "time"

// MsgType is a message type for streaming progress responses
type MsgType string

// Streaming message type constants
const (
	StartGradingMsg  MsgType = "grading_start"
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	ReachTestMsg     MsgType = "test_reach"
	FinishTestMsg    MsgType = "test_finish"
	FinishGradingMsg MsgType = "grading_finish"
)

// Output size constraints for streamed process output
const (
	MaxStreamHeight = 40
	MaxStreamWidth  = 80
)

// Header is the common header for all streaming progress messages
type Header struct {
	SubmUuid string  `json:"subm_uuid"`
	MsgType  MsgType `json:"msg_type"`
}

// StartGrading message sent when grading begins
type StartGrading struct {
	Header
	LangID      string `json:"lang_id"`
	StartedTime string `json:"started_time"`
}

// StartCompile message sent when the compile step begins
type StartCompile struct {
	Header
}

// FinishCompile message sent when the compile step completes
type FinishCompile struct {
	Header
	ExitCode    int64        `json:"exit"`
	Stderr      string       `json:"stderr"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// ReachTest message sent when a testcase is reached
type ReachTest struct {
	Header
	TestIndex int `json:"test_index"`
}

// FinishTest message sent when a testcase completes
type FinishTest struct {
	Header
	Verdict TestVerdict `json:"verdict"`
}

// FinishGrading message sent when grading completes
type FinishGrading struct {
	Header
	Status        *Status `json:"status"`
	ErrorMessage  *string `json:"error_message"`
	CompileError  bool    `json:"compile_error"`
	InternalError bool    `json:"internal_error"`
}

// NewHeader creates a common message header
func NewHeader(submUuid string, msgType MsgType) Header {
	return Header{
		SubmUuid: submUuid,
		MsgType:  msgType,
	}
}

func NewStartGrading(submUuid, langID string) StartGrading {
	return StartGrading{
		Header:      NewHeader(submUuid, StartGradingMsg),
		LangID:      langID,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartCompile(submUuid string) StartCompile {
	return StartCompile{
		Header: NewHeader(submUuid, StartCompileMsg),
	}
}

func NewFinishCompile(submUuid string, exitCode int64, stderr string, diags []Diagnostic) FinishCompile {
	return FinishCompile{
		Header:      NewHeader(submUuid, FinishCompileMsg),
		ExitCode:    exitCode,
		Stderr:      stderr,
		Diagnostics: diags,
	}
}

func NewReachTest(submUuid string, testIndex int) ReachTest {
	return ReachTest{
		Header:    NewHeader(submUuid, ReachTestMsg),
		TestIndex: testIndex,
	}
}

func NewFinishTest(submUuid string, verdict TestVerdict) FinishTest {
	return FinishTest{
		Header:  NewHeader(submUuid, FinishTestMsg),
		Verdict: verdict,
	}
}

func NewFinishGrading(submUuid string, status *Status, errMsg *string, compileErr, internalErr bool) FinishGrading {
	return FinishGrading{
		Header:        NewHeader(submUuid, FinishGradingMsg),
		Status:        status,
		ErrorMessage:  errMsg,
		CompileError:  compileErr,
		InternalError: internalErr,
	}
}
