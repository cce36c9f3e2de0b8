// Package environment reads deployment configuration from the process
// environment, with an optional .env file for development.
package environment

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fngrade/grader/internal/xdg"
)

type EnvConfig struct {
	HTTPAddr    string
	ProblemsDir string

	WorkspaceRoot string

	RunTimeout     time.Duration
	CompileTimeout time.Duration
	OutputCapBytes int

	HiddenThreshold int
	MaxConcurrent   int64

	// NatsURL is optional; empty disables the progress stream.
	NatsURL string
}

// ReadEnvConfig loads configuration, applying defaults for anything
// unset. A missing .env file is fine outside development.
func ReadEnvConfig() *EnvConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}

	return &EnvConfig{
		HTTPAddr:    getEnv("GRADER_HTTP_ADDR", ":8080"),
		ProblemsDir: getEnv("GRADER_PROBLEMS_DIR", "problems"),

		WorkspaceRoot: getEnv("GRADER_WORKSPACE_ROOT",
			filepath.Join(xdg.RuntimeDir(), "grader", "workspaces")),

		RunTimeout:     getEnvMillis("GRADER_RUN_TIMEOUT_MS", 5000),
		CompileTimeout: getEnvMillis("GRADER_COMPILE_TIMEOUT_MS", 20000),
		OutputCapBytes: getEnvInt("GRADER_OUTPUT_CAP_BYTES", 1<<20),

		HiddenThreshold: getEnvInt("GRADER_HIDDEN_THRESHOLD", 3),
		MaxConcurrent:   int64(getEnvInt("GRADER_MAX_CONCURRENT", 2)),

		NatsURL: os.Getenv("GRADER_NATS_URL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvMillis(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
