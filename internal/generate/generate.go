// Package generate runs the requested backends over one Project. Every
// backend gets its own Session and a recovered call, so one failing backend
// never stops the others.
package generate

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/logging"
	"github.com/mark3labs/eeclientgen/internal/spec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BackendFailure is one backend's failed Emit call. Panic is set when the
// failure was a recovered panic.
type BackendFailure struct {
	Backend string
	Err     error
	Panic   any
}

func (f *BackendFailure) Error() string {
	return fmt.Sprintf("generate: backend %s failed: %v", f.Backend, f.Err)
}

func (f *BackendFailure) Unwrap() error { return f.Err }

// Options tunes a Generate run.
type Options struct {
	// Parallel bounds concurrently running backends; <= 0 means GOMAXPROCS.
	Parallel int
	Logger   *zap.SugaredLogger
}

// Result is the outcome of one backend.
type Result struct {
	Backend  string
	Artifact *engine.Artifact
	Err      error
	Duration time.Duration
}

// Report holds one Result per requested backend in id order.
type Report struct {
	Results []Result
}

// Artifacts maps backend id to artifact for the backends that succeeded.
func (r *Report) Artifacts() map[string]*engine.Artifact {
	out := make(map[string]*engine.Artifact, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil {
			out[res.Backend] = res.Artifact
		}
	}
	return out
}

func (r *Report) Failures() []*BackendFailure {
	var out []*BackendFailure
	for _, res := range r.Results {
		var bf *BackendFailure
		if res.Err != nil && errors.As(res.Err, &bf) {
			out = append(out, bf)
		}
	}
	return out
}

// Err summarises failed backends, or returns nil when all succeeded. The
// first failure stays reachable with errors.As.
func (r *Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Backend)
	}
	return errors.Wrapf(failures[0], "%d of %d backends failed (%s)", len(failures), len(r.Results), strings.Join(names, ", "))
}

// Generate validates p once, then invokes every backend in ids exactly once.
// ids must already be resolved through reg. The returned error is non-nil
// only for problems that prevent any backend from running; per-backend
// failures are in the Report.
func Generate(ctx context.Context, p *spec.Project, reg *Registry, ids []string, opts Options) (*Report, error) {
	if err := spec.Validate(p); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New("generate: no backend requested")
	}
	emitters := make([]engine.Emitter, len(ids))
	for i, id := range ids {
		e, ok := reg.Get(id)
		if !ok {
			return nil, &UnknownBackendError{Name: id, Known: reg.IDs()}
		}
		emitters[i] = e
	}

	log := opts.Logger
	if log == nil {
		log = logging.Named("generate")
	}
	limit := opts.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	report := &Report{Results: make([]Result, len(ids))}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, e := range emitters {
		g.Go(func() error {
			report.Results[i] = run(ctx, log, e, p)
			return nil
		})
	}
	_ = g.Wait()
	return report, nil
}

func run(ctx context.Context, log *zap.SugaredLogger, e engine.Emitter, p *spec.Project) (res Result) {
	id := e.ID()
	res.Backend = id
	start := time.Now()
	log.Debugw("backend started", "backend", id)

	defer func() {
		if v := recover(); v != nil {
			res.Artifact = nil
			res.Err = &BackendFailure{Backend: id, Err: errors.Newf("panic: %v", v), Panic: v}
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			log.Errorw("backend failed", "backend", id, "duration", res.Duration, "error", res.Err)
			return
		}
		log.Infow("backend finished", "backend", id, "duration", res.Duration, "artifact", res.Artifact.Name, "bytes", res.Artifact.Size())
	}()

	if err := ctx.Err(); err != nil {
		res.Err = &BackendFailure{Backend: id, Err: err}
		return res
	}
	art, err := e.Emit(engine.NewSession(id), p)
	switch {
	case err != nil:
		res.Err = &BackendFailure{Backend: id, Err: err}
	case art == nil:
		res.Err = &BackendFailure{Backend: id, Err: errors.New("emitter returned no artifact")}
	default:
		res.Artifact = art
	}
	return res
}
