package langs

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry maps language ids to Language definitions. Lookups happen on
// every grading call, concurrently across submissions.
type Registry struct {
	langs *xsync.MapOf[string, *Language]
}

func NewRegistry() *Registry {
	return &Registry{langs: xsync.NewMapOf[string, *Language]()}
}

// NewDefaultRegistry returns a registry with the built-in languages.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Python())
	r.Register(JavaScript())
	r.Register(Cpp())
	return r
}

func (r *Registry) Register(lang *Language) {
	r.langs.Store(lang.ID, lang)
}

func (r *Registry) Get(id string) (*Language, error) {
	lang, ok := r.langs.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, id)
	}
	return lang, nil
}

// List returns all registered languages ordered by id.
func (r *Registry) List() []*Language {
	var out []*Language
	r.langs.Range(func(_ string, lang *Language) bool {
		out = append(out, lang)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
