// Package server is the thin HTTP routing layer around the grading
// pipeline. Endpoints bind JSON, pick a progress gatherer and delegate;
// everything interesting happens in the grader.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/semaphore"

	"github.com/fngrade/grader/api"
	"github.com/fngrade/grader/internal/gath/natsgath"
	"github.com/fngrade/grader/internal/grader"
	"github.com/fngrade/grader/internal/langs"
	"github.com/fngrade/grader/internal/problems"
)

type Server struct {
	grader *grader.Grader
	reg    *langs.Registry
	repo   *problems.Repository
	nc     *nats.Conn

	// sem bounds concurrent gradings so one host never runs an
	// unbounded number of compilers and interpreters at once.
	sem    *semaphore.Weighted
	logger *slog.Logger
}

func New(g *grader.Grader, reg *langs.Registry, repo *problems.Repository, nc *nats.Conn, maxConcurrent int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Server{
		grader: g,
		reg:    reg,
		repo:   repo,
		nc:     nc,
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logger,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.GET("/languages", s.listLanguages)
	r.GET("/problems", s.listProblems)
	r.POST("/grade", s.grade)
	r.POST("/problems/:id/grade", s.gradeProblem)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listLanguages(c *gin.Context) {
	type langInfo struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Compiled bool   `json:"compiled"`
	}
	var out []langInfo
	for _, l := range s.reg.List() {
		out = append(out, langInfo{ID: l.ID, Name: l.Name, Compiled: l.Compiled()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listProblems(c *gin.Context) {
	list, err := s.repo.List()
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) grade(c *gin.Context) {
	var req api.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.runGrading(c, &req)
}

// gradeProblemRequest is the body of the problem-bound grading endpoint;
// the function spec and testcases come from the repository.
type gradeProblemRequest struct {
	SubmUuid        string `json:"subm_uuid"`
	LangID          string `json:"lang_id"`
	Source          string `json:"source"`
	RedactHidden    bool   `json:"redact_hidden"`
	ProgressSubject string `json:"progress_subject"`
}

func (s *Server) gradeProblem(c *gin.Context) {
	var body gradeProblemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	problem, err := s.repo.Load(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown problem " + id})
		return
	}
	tests, err := s.repo.LoadTests(id)
	if err != nil {
		s.internalError(c, err)
		return
	}

	s.runGrading(c, &api.GradeRequest{
		SubmUuid:        body.SubmUuid,
		LangID:          body.LangID,
		Source:          body.Source,
		FuncSpec:        problem.FuncSpec(),
		Tests:           tests,
		RedactHidden:    body.RedactHidden,
		ProgressSubject: body.ProgressSubject,
	})
}

func (s *Server) runGrading(c *gin.Context, req *api.GradeRequest) {
	if req.SubmUuid == "" {
		req.SubmUuid = uuid.New().String()
	}

	if err := s.sem.Acquire(c.Request.Context(), 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "grading capacity unavailable"})
		return
	}
	defer s.sem.Release(1)

	var gath grader.ResultGatherer = grader.NopGatherer{}
	if req.ProgressSubject != "" && s.nc != nil {
		gath = natsgath.New(s.nc, req.SubmUuid, req.ProgressSubject)
	}

	report, err := s.grader.Grade(c.Request.Context(), req, gath)
	if err != nil {
		if errors.Is(err, grader.ErrBadRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// internalError hides infrastructure details from the caller; it never
// fabricates a grading verdict.
func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("internal failure", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"status": api.InternalServerError,
		"error":  "internal server error",
	})
}
