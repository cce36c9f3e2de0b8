// Package grader drives the per-submission state machine: synthesize the
// harness, compile when the language requires it, run every testcase in
// order, classify each outcome, aggregate an overall verdict and apply
// the hidden-testcase redaction policy.
package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/fngrade/grader/api"
	"github.com/fngrade/grader/internal/execute"
	"github.com/fngrade/grader/internal/langs"
	"github.com/fngrade/grader/internal/typespec"
	"github.com/fngrade/grader/internal/workspace"
)

// ErrBadRequest marks failures caused by the request itself (unknown
// language, malformed function spec) rather than the infrastructure.
var ErrBadRequest = errors.New("bad grading request")

// Config holds the deployment-time limits. They are configuration
// constants, never protocol fields.
type Config struct {
	WorkspaceRoot  string
	RunTimeout     time.Duration
	CompileTimeout time.Duration
	OutputCapBytes int

	// HiddenThreshold is the 0-based testcase index where the hidden
	// range begins when a request asks for redaction.
	HiddenThreshold int
}

type Grader struct {
	cfg    Config
	reg    *langs.Registry
	logger *slog.Logger
}

func New(cfg Config, reg *langs.Registry, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{cfg: cfg, reg: reg, logger: logger}
}

// outcome is one testcase's full verdict plus its captured debug output,
// kept separate until the redaction pass decides what the report shows.
type outcome struct {
	verdict api.TestVerdict
	debug   string
}

// Grade runs the whole pipeline for one submission. A non-nil error means
// infrastructure failure; grading outcomes, compile errors included, are
// reported through the SubmissionReport with a nil error.
func (g *Grader) Grade(ctx context.Context, req *api.GradeRequest, gath ResultGatherer) (*api.SubmissionReport, error) {
	if gath == nil {
		gath = NopGatherer{}
	}

	lang, err := g.reg.Get(req.LangID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	sig, err := resolveSignature(req.FuncSpec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	sentinel := newSentinel()
	harness, err := lang.Synthesize(sig, sentinel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	gath.StartGrading(lang.ID)
	log := g.logger.With("subm_uuid", req.SubmUuid, "lang", lang.ID)
	log.Info("grading started", "tests", len(req.Tests), "redact", req.RedactHidden)

	ws, err := workspace.New(g.cfg.WorkspaceRoot)
	if err != nil {
		gath.InternalError(err.Error())
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn("failed to remove workspace", "dir", ws.Dir(), "err", err)
		}
	}()

	if err := ws.AddFile(lang.SourceFname, []byte(req.Source)); err != nil {
		gath.InternalError(err.Error())
		return nil, err
	}
	if err := ws.AddFile(lang.HarnessFname, []byte(harness)); err != nil {
		gath.InternalError(err.Error())
		return nil, err
	}

	report := &api.SubmissionReport{
		SubmUuid:   req.SubmUuid,
		TotalTests: len(req.Tests),
	}

	if lang.Compiled() {
		gath.StartCompile()
		res, err := execute.Run(ctx, lang.CompileArgv, ws.Dir(), nil, g.cfg.CompileTimeout, g.cfg.OutputCapBytes)
		if err != nil {
			gath.InternalError(err.Error())
			return nil, fmt.Errorf("compile step: %w", err)
		}
		diags := lang.ParseDiagnostics(string(res.Stderr))
		gath.FinishCompile(int64(res.ExitCode), string(res.Stderr), diags)

		if res.TimedOut || res.ExitCode != 0 {
			msg := "compilation failed"
			if res.TimedOut {
				msg = "compilation timed out"
			}
			log.Info("compile error", "exit", res.ExitCode, "timed_out", res.TimedOut)
			report.Status = api.CompilationError
			report.Message = msg
			report.CompileDiagnostics = diags
			report.CompileStderr = string(res.Stderr)
			gath.CompileError(msg)
			return report, nil
		}
	}

	outcomes := make([]outcome, 0, len(req.Tests))
	for i, tc := range req.Tests {
		gath.ReachTest(i + 1)

		out, ce, err := g.runTestcase(ctx, lang, ws, sentinel, i, tc)
		if err != nil {
			gath.InternalError(err.Error())
			return nil, err
		}
		if ce != nil {
			// interpreted language, first testcase, syntax-error
			// signature: the submission never really ran
			log.Info("syntax error inferred on first run")
			report.Status = api.CompilationError
			report.Message = ce.msg
			report.CompileDiagnostics = ce.diags
			report.CompileStderr = ce.stderr
			gath.CompileError(ce.msg)
			return report, nil
		}

		outcomes = append(outcomes, *out)
	}

	assembleReport(report, outcomes, req.RedactHidden, g.cfg.HiddenThreshold, gath)
	gath.Finish(report.Status)
	log.Info("grading finished", "status", report.Status,
		"passed", report.PassedTests, "total", report.TotalTests)
	return report, nil
}

// inferredCE carries the compile-error equivalent recovered from an
// interpreted language's first-run failure.
type inferredCE struct {
	msg    string
	stderr string
	diags  []api.Diagnostic
}

func (g *Grader) runTestcase(ctx context.Context, lang *langs.Language, ws *workspace.Workspace, sentinel string, index int, tc api.Testcase) (*outcome, *inferredCE, error) {
	inputJSON, err := json.Marshal(tc.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode testcase %d input: %w", index+1, err)
	}

	res, err := execute.Run(ctx, lang.RunArgv, ws.Dir(), inputJSON, g.cfg.RunTimeout, g.cfg.OutputCapBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("testcase %d: %w", index+1, err)
	}

	v := api.TestVerdict{
		Index:      index + 1,
		TimeMillis: res.WallMillis,
		Input:      inputJSON,
		Expected:   tc.Expected,
	}
	debug, result, found := splitSentinel(string(res.Stdout), sentinel)

	switch {
	case res.TimedOut:
		v.Status = api.TestTimeout
		v.ErrorMessage = "time limit exceeded"

	case res.ExitCode != 0:
		stderr := string(res.Stderr)
		if index == 0 && !lang.Compiled() && lang.IsSyntaxError != nil && lang.IsSyntaxError(stderr) {
			return nil, &inferredCE{
				msg:    "syntax error",
				stderr: stderr,
				diags:  lang.ParseDiagnostics(stderr),
			}, nil
		}
		v.Status = api.TestError
		v.ErrorMessage = strings.TrimSpace(stderr)
		if v.ErrorMessage == "" {
			v.ErrorMessage = fmt.Sprintf("process exited with code %d", res.ExitCode)
		}

	case !found:
		v.Status = api.TestError
		v.ErrorMessage = "harness produced no result"

	default:
		var parsed struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal([]byte(result), &parsed); err != nil {
			v.Status = api.TestError
			v.ErrorMessage = fmt.Sprintf("failed to parse harness result: %v", err)
			break
		}
		v.Actual = parsed.Result
		if jsonEqual(parsed.Result, tc.Expected) {
			v.Status = api.TestPassed
		} else {
			v.Status = api.TestFailed
		}
	}

	return &outcome{verdict: v, debug: debug}, nil, nil
}

// resolveSignature parses the wire-form spec, falling back to the legacy
// fixed int[] -> int[] signature when none is supplied.
func resolveSignature(spec *api.FuncSpec) (*typespec.Signature, error) {
	if spec == nil {
		return typespec.DefaultSignature("solve"), nil
	}
	params := make([]typespec.NamedTag, 0, len(spec.Params))
	for _, p := range spec.Params {
		params = append(params, typespec.NamedTag{Name: p.Name, Tag: p.Type})
	}
	return typespec.ParseSignature(spec.FuncName, params, spec.ReturnType)
}

// jsonEqual compares two JSON documents by deep structural equality.
// Both sides decode through the same generic representation, so 1 and
// 1.0 compare equal and object key order is irrelevant.
func jsonEqual(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// statusForVerdict maps a testcase verdict kind to the overall submission
// status used when that verdict is the first failure.
func statusForVerdict(s api.TestStatus) (api.Status, string) {
	switch s {
	case api.TestTimeout:
		return api.TimeLimitExceeded, "time limit exceeded on testcase %d"
	case api.TestError:
		return api.RuntimeError, "runtime error on testcase %d"
	default:
		return api.WrongAnswer, "wrong answer on testcase %d"
	}
}

// assembleReport aggregates per-testcase outcomes into the final report,
// applying first-failure-wins status selection and the hidden-testcase
// redaction policy.
func assembleReport(report *api.SubmissionReport, outcomes []outcome, redact bool, hiddenThreshold int, gath ResultGatherer) {
	report.Status = api.Accepted
	report.Message = "all testcases passed"

	firstFailure := -1
	for i, out := range outcomes {
		if out.verdict.Status == api.TestPassed {
			report.PassedTests++
		} else if firstFailure == -1 {
			firstFailure = i
		}
	}
	if firstFailure >= 0 {
		// the earliest failing testcase decides the overall status,
		// regardless of the severity of later failures
		status, msgFmt := statusForVerdict(outcomes[firstFailure].verdict.Status)
		report.Status = status
		report.Message = fmt.Sprintf(msgFmt, firstFailure+1)
	}

	firstHiddenFailure := -1
	if redact {
		for i := hiddenThreshold; i < len(outcomes); i++ {
			if outcomes[i].verdict.Status != api.TestPassed {
				firstHiddenFailure = i
				break
			}
		}
	}

	var debugSections []string
	for i, out := range outcomes {
		v := out.verdict
		hidden := redact && i >= hiddenThreshold
		if hidden {
			v.Hidden = true
			if i != firstHiddenFailure {
				// tallied above, detail withheld; the first failing
				// hidden testcase alone stays visible for debugging
				gath.FinishTest(api.TestVerdict{Index: v.Index, Status: v.Status, Hidden: true, TimeMillis: v.TimeMillis})
				continue
			}
		}
		report.TestVerdicts = append(report.TestVerdicts, v)
		gath.FinishTest(v)
		if out.debug != "" {
			debugSections = append(debugSections,
				fmt.Sprintf("--- testcase %d ---\n%s", v.Index, out.debug))
		}
	}
	report.DebugOutput = strings.Join(debugSections, "\n")
}
