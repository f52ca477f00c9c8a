package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/emitter/csemitter"
	"github.com/mark3labs/eeclientgen/internal/emitter/javaemitter"
	"github.com/mark3labs/eeclientgen/internal/emitter/jsemitter"
	"github.com/mark3labs/eeclientgen/internal/emitter/oasemitter"
	"github.com/mark3labs/eeclientgen/internal/emitter/perlemitter"
	"github.com/mark3labs/eeclientgen/internal/emitter/phpemitter"
	"github.com/mark3labs/eeclientgen/internal/emitter/pyemitter"
	"github.com/mark3labs/eeclientgen/internal/engine"
)

// All selects every client backend.
const All = "all"

// ClientBackends are the ids All expands to. The OpenAPI descriptor is
// opt-in.
var ClientBackends = []string{
	csemitter.ID, javaemitter.ID, jsemitter.ID, perlemitter.ID, phpemitter.ID, pyemitter.ID,
}

// UnknownBackendError reports a requested name that is neither an id nor an
// alias.
type UnknownBackendError struct {
	Name  string
	Known []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("generate: unknown backend %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Registry maps backend ids and aliases to emitters.
type Registry struct {
	emitters map[string]engine.Emitter
	aliases  map[string]string
}

// NewRegistry registers emitters. Ids and aliases are case-insensitive and
// must be unique across the registry.
func NewRegistry(emitters ...engine.Emitter) (*Registry, error) {
	r := &Registry{emitters: map[string]engine.Emitter{}, aliases: map[string]string{}}
	for _, e := range emitters {
		id := e.ID()
		if _, dup := r.emitters[id]; dup {
			return nil, errors.Newf("generate: backend %q registered twice", id)
		}
		r.emitters[id] = e
		for _, name := range append([]string{id}, e.Aliases()...) {
			key := strings.ToLower(strings.TrimSpace(name))
			if owner, taken := r.aliases[key]; taken && owner != id {
				return nil, errors.Newf("generate: alias %q of %s is already used by %s", name, id, owner)
			}
			r.aliases[key] = id
		}
	}
	return r, nil
}

// DefaultRegistry holds the six client backends and the OpenAPI descriptor,
// all configured with settings.
func DefaultRegistry(settings engine.Settings) *Registry {
	r, err := NewRegistry(
		csemitter.New(settings),
		javaemitter.New(settings),
		jsemitter.New(settings),
		perlemitter.New(settings),
		phpemitter.New(settings),
		pyemitter.New(settings),
		oasemitter.New(settings),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// IDs returns registered ids in ascending order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.emitters))
	for id := range r.emitters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Get(id string) (engine.Emitter, bool) {
	e, ok := r.emitters[id]
	return e, ok
}

// Lookup resolves an id or alias.
func (r *Registry) Lookup(name string) (string, bool) {
	id, ok := r.aliases[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Resolve turns requested names into sorted, de-duplicated ids. "all" adds
// every registered client backend.
func (r *Registry) Resolve(names []string) ([]string, error) {
	seen := map[string]struct{}{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, All) {
			for _, id := range ClientBackends {
				if _, ok := r.emitters[id]; ok {
					seen[id] = struct{}{}
				}
			}
			continue
		}
		id, ok := r.Lookup(name)
		if !ok {
			return nil, &UnknownBackendError{Name: name, Known: r.IDs()}
		}
		seen[id] = struct{}{}
	}
	if len(seen) == 0 {
		return nil, errors.New("generate: no backend requested")
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
