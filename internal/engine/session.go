package engine

import "sort"

// Session is the working state of one Emit call. The orchestrator creates a
// new Session for every backend invocation, so nothing recorded here can leak
// into another backend or another run.
type Session struct {
	Backend string
	Lists   *ListRegistry
}

func NewSession(backend string) *Session {
	return &Session{Backend: backend, Lists: &ListRegistry{}}
}

// ListRegistry records custom types returned as lists that need a synthetic
// wrapper declaration. It is owned by a single goroutine.
type ListRegistry struct {
	names map[string]struct{}
}

func (r *ListRegistry) Record(name string) {
	if r.names == nil {
		r.names = make(map[string]struct{})
	}
	r.names[name] = struct{}{}
}

func (r *ListRegistry) Has(name string) bool {
	_, ok := r.names[name]
	return ok
}

func (r *ListRegistry) Len() int { return len(r.names) }

// Names returns the recorded type names in ascending order.
func (r *ListRegistry) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
