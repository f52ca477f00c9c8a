package sink

import (
	"bytes"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zip"
	"github.com/mark3labs/eeclientgen/internal/engine"
)

// archiveTime is stamped on every entry so archives of equal artifacts are
// byte-identical.
var archiveTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Archive packs a bundle's entries, in order, into a zip archive.
func Archive(a *engine.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range a.Entries {
		if err := ValidatePath(e.Path); err != nil {
			return nil, errors.Wrapf(err, "sink: archive entry %q", e.Path)
		}
		hdr := &zip.FileHeader{Name: e.Path, Method: zip.Deflate, Modified: archiveTime}
		hdr.SetMode(0o644)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, errors.Wrapf(err, "sink: archive entry %s", e.Path)
		}
		if _, err := w.Write(e.Content); err != nil {
			return nil, errors.Wrapf(err, "sink: archive entry %s", e.Path)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "sink: close archive")
	}
	return buf.Bytes(), nil
}

// Unarchive reads an archive produced by Archive back into entries.
func Unarchive(data []byte) ([]engine.Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "sink: open archive")
	}
	entries := make([]engine.Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "sink: open entry %s", f.Name)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "sink: read entry %s", f.Name)
		}
		entries = append(entries, engine.Entry{Path: f.Name, Content: content})
	}
	return entries, nil
}
