package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/fngrade/grader/api"
	"github.com/fngrade/grader/internal/environment"
	"github.com/fngrade/grader/internal/gath/termgath"
	"github.com/fngrade/grader/internal/grader"
	"github.com/fngrade/grader/internal/langs"
	"github.com/fngrade/grader/internal/problems"
	"github.com/fngrade/grader/internal/server"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cmd := &cli.Command{
		Name:  "grader",
		Usage: "function grading service",
		Commands: []*cli.Command{
			serveCmd(logger),
			runCmd(logger),
			languagesCmd(),
			doctorCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func serveCmd(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the HTTP grading server",
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg := environment.ReadEnvConfig()

			var nc *nats.Conn
			if cfg.NatsURL != "" {
				var err error
				nc, err = nats.Connect(cfg.NatsURL)
				if err != nil {
					return fmt.Errorf("failed to connect to nats: %w", err)
				}
				defer nc.Close()
				logger.Info("connected to nats", "url", cfg.NatsURL)
			}

			reg := langs.NewDefaultRegistry()
			g := grader.New(graderConfig(cfg), reg, logger)
			repo := problems.NewRepository(cfg.ProblemsDir)
			srv := server.New(g, reg, repo, nc, cfg.MaxConcurrent, logger)

			logger.Info("listening", "addr", cfg.HTTPAddr)
			return srv.Router().Run(cfg.HTTPAddr)
		},
	}
}

func runCmd(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "grade a single solution file against a stored problem",
		ArgsUsage: "<problem-id> <solution-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "lang",
				Usage: "language id (python, javascript, cpp)",
				Value: "python",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return errors.New("expected <problem-id> <solution-file>")
			}
			problemID := c.Args().Get(0)
			srcPath := c.Args().Get(1)

			source, err := os.ReadFile(srcPath)
			if err != nil {
				return fmt.Errorf("failed to read solution: %w", err)
			}

			cfg := environment.ReadEnvConfig()
			repo := problems.NewRepository(cfg.ProblemsDir)
			problem, err := repo.Load(problemID)
			if err != nil {
				return fmt.Errorf("failed to load problem: %w", err)
			}
			tests, err := repo.LoadTests(problemID)
			if err != nil {
				return fmt.Errorf("failed to load testcases: %w", err)
			}

			reg := langs.NewDefaultRegistry()
			g := grader.New(graderConfig(cfg), reg, logger)

			report, err := g.Grade(ctx, &api.GradeRequest{
				LangID:   c.String("lang"),
				Source:   string(source),
				FuncSpec: problem.FuncSpec(),
				Tests:    tests,
			}, termgath.New())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if report.Status != api.Accepted {
				os.Exit(1)
			}
			return nil
		},
	}
}

func languagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "list supported languages",
		Action: func(_ context.Context, _ *cli.Command) error {
			for _, l := range langs.NewDefaultRegistry().List() {
				kind := "interpreted"
				if l.Compiled() {
					kind = "compiled"
				}
				fmt.Printf("%-12s %-20s %s\n", l.ID, l.Name, kind)
			}
			return nil
		},
	}
}

func graderConfig(cfg *environment.EnvConfig) grader.Config {
	return grader.Config{
		WorkspaceRoot:   cfg.WorkspaceRoot,
		RunTimeout:      cfg.RunTimeout,
		CompileTimeout:  cfg.CompileTimeout,
		OutputCapBytes:  cfg.OutputCapBytes,
		HiddenThreshold: cfg.HiddenThreshold,
	}
}
