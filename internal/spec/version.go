package spec

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// VersionStatus is the outcome of comparing a local schema with the remote one.
type VersionStatus struct {
	Local  string
	Remote string
	Newer  bool
}

// NewerVersion reports whether remote is newer than local. Versions compare
// as floating point keys, so "2.10" sorts below "2.9".
func NewerVersion(local, remote string) (bool, error) {
	l, err := parseVersionKey(local)
	if err != nil {
		return false, err
	}
	r, err := parseVersionKey(remote)
	if err != nil {
		return false, err
	}
	return r > l, nil
}

func parseVersionKey(v string) (float64, error) {
	trimmed := strings.Trim(strings.TrimSpace(v), `"`)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &SpecError{Code: ParseError, Message: fmt.Sprintf("spec: version %q is not numeric", v), Cause: err}
	}
	return f, nil
}

// CheckVersion asks schemaURL for its current version and compares it with
// local.
func CheckVersion(ctx context.Context, schemaURL, local string, opts ...Option) (VersionStatus, error) {
	u, err := url.Parse(schemaURL)
	if err != nil || u.Host == "" {
		return VersionStatus{}, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: invalid schema URL %q", schemaURL), Location: schemaURL, Cause: err}
	}
	q := u.Query()
	q.Set("checkversion", "true")
	u.RawQuery = q.Encode()

	raw, err := fetchWithRetry(ctx, u.String(), resolveSettings(opts))
	if err != nil {
		return VersionStatus{}, &SpecError{Code: NetworkError, Message: fmt.Sprintf("spec: fetch %s: %v", u.String(), err), Location: u.String(), Cause: err}
	}
	remote := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if _, perr := parseVersionKey(remote); perr != nil {
		// Older servers ignore checkversion and answer the whole description.
		if p, derr := Decode(raw); derr == nil && p.Version != "" {
			remote = p.Version
		}
	}
	newer, err := NewerVersion(local, remote)
	if err != nil {
		return VersionStatus{}, err
	}
	return VersionStatus{Local: local, Remote: remote, Newer: newer}, nil
}
