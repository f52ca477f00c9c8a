package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func toLower(s string) string { return strings.ToLower(s) }

// LowerFirst lower-cases the first rune only: "GetList" -> "getList".
func LowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// DocLines splits free text into trimmed non-empty lines.
func DocLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// DocText joins DocLines with a single space.
func DocText(s string) string {
	return strings.Join(DocLines(s), " ")
}

// DoubleQuoted renders s as a double quoted literal escaping backslash,
// quote and control characters, valid in C#, Java and JavaScript.
func DoubleQuoted(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SingleQuoted renders s as a single quoted literal escaping backslash and
// quote, valid in PHP, Perl, Python and JavaScript.
func SingleQuoted(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
