// Package problems is a file-backed repository of problem definitions,
// keyed by problem id. Each problem is a directory holding problem.toml
// (metadata, function spec, starter templates) and tests.json.zst, the
// zstd-compressed testcase array.
package problems

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"

	"github.com/fngrade/grader/api"
)

const (
	metaFname  = "problem.toml"
	testsFname = "tests.json.zst"
)

// Problem is the metadata side of a problem definition; testcases are
// loaded separately because they can be large.
type Problem struct {
	ID         string `toml:"id"`
	Title      string `toml:"title"`
	Difficulty string `toml:"difficulty"`

	FuncName   string      `toml:"func_name"`
	Params     []ParamSpec `toml:"params"`
	ReturnType string      `toml:"return_type"`

	// Templates maps language ids to starter code shown in the editor.
	Templates map[string]string `toml:"templates"`
}

type ParamSpec struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// FuncSpec converts the stored signature into wire form. Nil when the
// problem predates function specs (the grader falls back to its legacy
// signature).
func (p *Problem) FuncSpec() *api.FuncSpec {
	if p.FuncName == "" {
		return nil
	}
	spec := &api.FuncSpec{FuncName: p.FuncName, ReturnType: p.ReturnType}
	for _, ps := range p.Params {
		spec.Params = append(spec.Params, api.Param{Name: ps.Name, Type: ps.Type})
	}
	return spec
}

type Repository struct {
	dir string
}

func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// List returns the metadata of every problem in the repository, ordered
// by directory name.
func (r *Repository) List() ([]Problem, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read problems dir %s: %w", r.dir, err)
	}
	var out []Problem
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := r.Load(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Load reads one problem's metadata.
func (r *Repository) Load(id string) (*Problem, error) {
	body, err := os.ReadFile(filepath.Join(r.dir, id, metaFname))
	if err != nil {
		return nil, fmt.Errorf("failed to read problem %s: %w", id, err)
	}
	var p Problem
	if err := toml.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s for problem %s: %w", metaFname, id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

// LoadTests reads and decompresses a problem's testcases.
func (r *Repository) LoadTests(id string) ([]api.Testcase, error) {
	f, err := os.Open(filepath.Join(r.dir, id, testsFname))
	if err != nil {
		return nil, fmt.Errorf("failed to open tests for problem %s: %w", id, err)
	}
	defer f.Close()

	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()

	body, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress tests for problem %s: %w", id, err)
	}

	var tests []api.Testcase
	if err := json.Unmarshal(body, &tests); err != nil {
		return nil, fmt.Errorf("failed to parse tests for problem %s: %w", id, err)
	}
	return tests, nil
}

// Save writes a problem definition and its testcases. Used by tooling
// that imports problems; the serving path only reads.
func (r *Repository) Save(p *Problem, tests []api.Testcase) error {
	if p.ID == "" {
		return fmt.Errorf("problem id is empty")
	}
	dir := filepath.Join(r.dir, p.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create problem dir: %w", err)
	}

	meta, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode problem meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFname), meta, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", metaFname, err)
	}

	body, err := json.Marshal(tests)
	if err != nil {
		return fmt.Errorf("failed to encode tests: %w", err)
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(body); err != nil {
		enc.Close()
		return fmt.Errorf("failed to compress tests: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish zstd stream: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, testsFname), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", testsFname, err)
	}
	return nil
}
