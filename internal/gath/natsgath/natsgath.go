// Package natsgath streams grading progress messages to a NATS subject.
// It lets the submitting side render live feedback while the HTTP call
// that carries the final report is still in flight.
package natsgath

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/fngrade/grader/api"
)

type natsGatherer struct {
	nc       *nats.Conn
	subject  string
	submUuid string
}

// New creates a gatherer publishing to the given subject.
func New(nc *nats.Conn, submUuid string, subject string) *natsGatherer {
	return &natsGatherer{
		nc:       nc,
		subject:  subject,
		submUuid: submUuid,
	}
}

func (s *natsGatherer) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("failed to marshal progress message", "err", err)
		return
	}
	if err := s.nc.Publish(s.subject, b); err != nil {
		slog.Warn("failed to publish progress message", "subject", s.subject, "err", err)
	}
}

func (s *natsGatherer) StartGrading(langID string) {
	s.send(api.NewStartGrading(s.submUuid, langID))
}

func (s *natsGatherer) StartCompile() {
	s.send(api.NewStartCompile(s.submUuid))
}

func (s *natsGatherer) FinishCompile(exitCode int64, stderr string, diags []api.Diagnostic) {
	s.send(api.NewFinishCompile(s.submUuid, exitCode,
		trimToRect(stderr, api.MaxStreamHeight, api.MaxStreamWidth), diags))
}

func (s *natsGatherer) ReachTest(index int) {
	s.send(api.NewReachTest(s.submUuid, index))
}

func (s *natsGatherer) FinishTest(v api.TestVerdict) {
	v.ErrorMessage = trimToRect(v.ErrorMessage, api.MaxStreamHeight, api.MaxStreamWidth)
	s.send(api.NewFinishTest(s.submUuid, v))
}

func (s *natsGatherer) CompileError(msg string) {
	s.send(api.NewFinishGrading(s.submUuid, nil, &msg, true, false))
}

func (s *natsGatherer) InternalError(msg string) {
	s.send(api.NewFinishGrading(s.submUuid, nil, &msg, false, true))
}

func (s *natsGatherer) Finish(status api.Status) {
	s.send(api.NewFinishGrading(s.submUuid, &status, nil, false, false))
}
