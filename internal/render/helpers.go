// Package render produces Graphviz DOT for instruction-level graphs.
package render

import (
	"fmt"
	"strings"
	"unicode"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

// dotEscape escapes text for DOT HTML-like labels. Method names such as
// <init> and <clinit> need it.
func dotEscape(s string) string { return htmlEscaper.Replace(s) }

// dotID turns a qualified method name into a bare DOT identifier.
// Anything outside [A-Za-z0-9_] is hex-encoded so distinct names stay
// distinct.
func dotID(name string) string {
	var b strings.Builder
	b.WriteString("n_")
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "_%04x", r)
	}
	return b.String()
}

// truncLabel cuts s to n bytes, marking the cut with "...".
func truncLabel(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
