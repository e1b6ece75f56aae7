package markdown

import (
	"html"
	"strings"
)

// renderInline performs the inline pass over a single line: code spans,
// bold, italic and links, in one left-to-right scan. Code spans are
// atomic, so markers inside backticks are never re-matched. A marker
// with no closer on the same line stays literal.
func renderInline(s string) string {
	var out strings.Builder
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			out.WriteString(html.EscapeString(plain.String()))
			plain.Reset()
		}
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '`':
			if j := strings.IndexByte(s[i+1:], '`'); j > 0 {
				flush()
				out.WriteString("<code>" + html.EscapeString(s[i+1:i+1+j]) + "</code>")
				i += j + 2
				continue
			}
		case c == '*' || c == '_':
			if node, next, ok := emphasis(s, i); ok {
				flush()
				out.WriteString(node)
				i = next
				continue
			}
		case c == '[':
			if node, next, ok := link(s, i); ok {
				flush()
				out.WriteString(node)
				i = next
				continue
			}
		}
		plain.WriteByte(c)
		i++
	}
	flush()
	return out.String()
}

// emphasis parses **…**, __…__, *…* or _…_ starting at i. Double
// markers are tried first so a single '*' is never matched inside a
// bold delimiter.
func emphasis(s string, i int) (string, int, bool) {
	c := s[i]
	if i+1 < len(s) && s[i+1] == c {
		delim := string([]byte{c, c})
		if j := strings.Index(s[i+2:], delim); j > 0 {
			content := s[i+2 : i+2+j]
			return "<strong>" + renderInline(content) + "</strong>", i + 2 + j + 2, true
		}
		return "", 0, false
	}
	if j := strings.IndexByte(s[i+1:], c); j > 0 {
		content := s[i+1 : i+1+j]
		return "<em>" + renderInline(content) + "</em>", i + 1 + j + 1, true
	}
	return "", 0, false
}

// link parses [label](url). Rendered anchors always open in a new
// browsing context with no-opener/no-referrer so reply content never
// gains a handle back to the host page.
func link(s string, i int) (string, int, bool) {
	mid := strings.Index(s[i:], "](")
	if mid <= 1 {
		return "", 0, false
	}
	label := s[i+1 : i+mid]
	rest := s[i+mid+2:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", 0, false
	}
	url := strings.TrimSpace(rest[:end])
	next := i + mid + 2 + end + 1
	if !safeURL(url) {
		return renderInline(label), next, true
	}
	return `<a href="` + html.EscapeString(url) + `" target="_blank" rel="noopener noreferrer">` +
		renderInline(label) + "</a>", next, true
}

// safeURL rejects script-bearing schemes; relative paths, fragments,
// http(s) and mailto pass through.
func safeURL(url string) bool {
	colon := strings.IndexByte(url, ':')
	if colon < 0 {
		return true
	}
	switch strings.ToLower(url[:colon]) {
	case "http", "https", "mailto":
		return true
	}
	return false
}
