package engine

import "strings"

// ReservedPrefix is prepended to identifiers colliding with reserved words.
const ReservedPrefix = "EE"

// Sanitizer rewrites identifiers found in a case-insensitive reserved set.
type Sanitizer struct {
	prefix   string
	reserved map[string]struct{}
}

func NewSanitizer(words ...string) *Sanitizer {
	s := &Sanitizer{prefix: ReservedPrefix, reserved: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.reserved[strings.ToLower(w)] = struct{}{}
	}
	return s
}

func (s *Sanitizer) IsReserved(name string) bool {
	_, ok := s.reserved[strings.ToLower(name)]
	return ok
}

func (s *Sanitizer) Sanitize(name string) string {
	if s.IsReserved(name) {
		return s.prefix + name
	}
	return name
}
