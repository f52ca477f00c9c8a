package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Entry is one file inside an Artifact.
type Entry struct {
	Path    string
	Content []byte
}

// Artifact is what one backend produces. Single-document backends carry one
// entry whose Path equals Name; bundles carry many entries and are persisted
// as an archive called Name.
type Artifact struct {
	Backend string
	Name    string
	Bundle  bool
	Entries []Entry
}

// SingleFile wraps one source document.
func SingleFile(backend, name string, content []byte) *Artifact {
	return &Artifact{
		Backend: backend,
		Name:    name,
		Entries: []Entry{{Path: name, Content: content}},
	}
}

// NewBundle builds a multi-file artifact with entries sorted by path.
func NewBundle(backend, name string, files map[string][]byte) *Artifact {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, Entry{Path: p, Content: files[p]})
	}
	return &Artifact{Backend: backend, Name: name, Bundle: true, Entries: entries}
}

// Text returns the content of a single-document artifact, or "" for bundles.
func (a *Artifact) Text() string {
	if a == nil || a.Bundle || len(a.Entries) != 1 {
		return ""
	}
	return string(a.Entries[0].Content)
}

// Entry looks up a bundle entry by path.
func (a *Artifact) Entry(path string) (Entry, bool) {
	for _, e := range a.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Size is the total content length.
func (a *Artifact) Size() int {
	n := 0
	for _, e := range a.Entries {
		n += len(e.Content)
	}
	return n
}

// Digest hashes entry paths and contents in order.
func (a *Artifact) Digest() string {
	h := sha256.New()
	for _, e := range a.Entries {
		_, _ = h.Write([]byte(e.Path))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(e.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
