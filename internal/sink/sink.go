// Package sink persists generated artifacts.
package sink

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/logging"
	"go.uber.org/zap"
)

// ErrExists is returned when a target file exists and overwriting was not
// requested.
var ErrExists = errors.New("sink: output already exists")

// Sink persists one backend's artifact and reports what it wrote, or would
// write.
type Sink interface {
	Write(ctx context.Context, a *engine.Artifact) ([]PlannedFile, error)
}

// PlannedFile is one file a Sink writes.
type PlannedFile struct {
	Backend string
	RelPath string
	Size    int
}

type file struct {
	rel     string
	content []byte
}

// layout maps an artifact onto files: single documents as themselves,
// bundles as one archive or, unpacked, as their entries.
func layout(a *engine.Artifact, unpack bool) ([]file, error) {
	if a == nil {
		return nil, errors.New("sink: nil artifact")
	}
	var files []file
	switch {
	case !a.Bundle:
		if len(a.Entries) != 1 {
			return nil, errors.Newf("sink: %s artifact %s has %d entries", a.Backend, a.Name, len(a.Entries))
		}
		files = []file{{rel: a.Name, content: a.Entries[0].Content}}
	case unpack:
		for _, e := range a.Entries {
			files = append(files, file{rel: e.Path, content: e.Content})
		}
	default:
		data, err := Archive(a)
		if err != nil {
			return nil, err
		}
		files = []file{{rel: a.Name, content: data}}
	}
	for _, f := range files {
		if err := ValidatePath(f.rel); err != nil {
			return nil, errors.Wrapf(err, "sink: %s path %q", a.Backend, f.rel)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

func plan(backend string, files []file) []PlannedFile {
	out := make([]PlannedFile, 0, len(files))
	for _, f := range files {
		out = append(out, PlannedFile{Backend: backend, RelPath: f.rel, Size: len(f.content)})
	}
	return out
}

// Filesystem writes artifacts below Root with temp file + rename.
type Filesystem struct {
	Root   string
	Force  bool
	DryRun bool
	Unpack bool
	Logger *zap.SugaredLogger
}

func (s *Filesystem) log() *zap.SugaredLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.Named("sink")
}

func (s *Filesystem) Write(ctx context.Context, a *engine.Artifact) ([]PlannedFile, error) {
	files, err := layout(a, s.Unpack)
	if err != nil {
		return nil, err
	}
	planned := plan(a.Backend, files)
	if s.DryRun {
		return planned, nil
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, errors.Wrap(err, "sink: resolve output directory")
	}
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		return nil, errors.WithHintf(errors.Newf("sink: output path %q is not a directory", root), "choose a different --out")
	}

	// Pre-flight every target before touching the disk so a refused
	// artifact leaves nothing half written.
	targets := make([]string, len(files))
	for i, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f.rel))
		if !strings.HasPrefix(p, root+string(filepath.Separator)) {
			return nil, errors.Newf("sink: path %q escapes %s", f.rel, root)
		}
		if !s.Force {
			if _, err := os.Stat(p); err == nil {
				return nil, errors.WithHint(errors.Wrapf(ErrExists, "%s", p), "use --force to overwrite")
			}
		}
		targets[i] = p
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeFileAtomic(targets[i], f.content); err != nil {
			return nil, errors.Wrapf(err, "sink: write %s", f.rel)
		}
		s.log().Infow("artifact written", "backend", a.Backend, "path", targets[i], "bytes", len(f.content))
	}
	return planned, nil
}

func writeFileAtomic(p string, content []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	tmp, err := os.CreateTemp(dir, ".eeclientgen-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp")
	}
	tmpPath := tmp.Name()
	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.CombineErrors(werr, cerr), "write temp")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "chmod")
	}
	if err := os.Rename(tmpPath, p); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "rename")
	}
	return nil
}

// Memory keeps written files in memory, laid out as Filesystem would.
type Memory struct {
	Unpack bool

	mu    sync.Mutex
	files map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{files: map[string][]byte{}}
}

func (s *Memory) Write(ctx context.Context, a *engine.Artifact) ([]PlannedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := layout(a, s.Unpack)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	for _, f := range files {
		s.files[f.rel] = append([]byte(nil), f.content...)
	}
	return plan(a.Backend, files), nil
}

// Files returns a copy of everything written.
func (s *Memory) Files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.files))
	for k, v := range s.files {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// ValidatePath accepts clean, relative, slash separated paths without ".."
// components.
func ValidatePath(p string) error {
	switch {
	case p == "":
		return errors.New("path is empty")
	case strings.HasPrefix(p, "/") || filepath.IsAbs(p):
		return errors.New("absolute paths not allowed")
	case len(p) >= 2 && p[1] == ':':
		return errors.New("absolute paths not allowed")
	case strings.Contains(p, `\`):
		return errors.New("backslash separators not allowed")
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := path.Clean(p); cleaned != p {
		return errors.Newf("path is not clean (expected %q)", cleaned)
	}
	return nil
}
