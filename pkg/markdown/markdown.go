// Package markdown renders the restricted markdown subset used by
// assistant replies into HTML-safe fragments.
//
// The renderer is a two-stage pipeline: a block parser that produces a
// small node list (paragraphs, headings, fenced code, lists), then an
// inline pass per text run. Replies arrive from the model with citation
// artifacts (【…】 and [d:d†…] bracket groups) that are stripped before
// any markdown handling.
package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	fullWidthCitation = regexp.MustCompile(`【[^】]*】`)
	bracketCitation   = regexp.MustCompile(`\[\d+:\d+†[^\]]*\]`)
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockCode
	blockList
)

type block struct {
	kind    blockKind
	level   int      // heading level 1-3
	lang    string   // fenced code language tag, may be empty
	lines   []string // paragraph lines or raw code lines
	ordered bool     // list container type, from the first marker
	items   []string // list item text
}

// Render converts text into an HTML fragment. It is pure and never
// panics; input that matches nothing renders as escaped literal text.
// Empty input yields an empty string with no paragraph wrapper.
func Render(text string) string {
	text = stripCitations(text)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var sb strings.Builder
	for _, b := range parseBlocks(text) {
		switch b.kind {
		case blockHeading:
			fmt.Fprintf(&sb, "<h%d>%s</h%d>", b.level, renderInline(b.lines[0]), b.level)
		case blockCode:
			if b.lang != "" {
				fmt.Fprintf(&sb, `<pre><code class="language-%s">`, html.EscapeString(b.lang))
			} else {
				sb.WriteString("<pre><code>")
			}
			sb.WriteString(html.EscapeString(strings.Join(b.lines, "\n")))
			sb.WriteString("</code></pre>")
		case blockList:
			tag := "ul"
			if b.ordered {
				tag = "ol"
			}
			sb.WriteString("<" + tag + ">")
			for _, item := range b.items {
				sb.WriteString("<li>" + renderInline(item) + "</li>")
			}
			sb.WriteString("</" + tag + ">")
		default:
			sb.WriteString("<p>")
			for i, line := range b.lines {
				if i > 0 {
					sb.WriteString("<br>")
				}
				sb.WriteString(renderInline(line))
			}
			sb.WriteString("</p>")
		}
	}
	return sb.String()
}

func stripCitations(text string) string {
	text = fullWidthCitation.ReplaceAllString(text, "")
	return bracketCitation.ReplaceAllString(text, "")
}

func parseBlocks(text string) []block {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var blocks []block
	var para []string

	flushPara := func() {
		if len(para) > 0 {
			blocks = append(blocks, block{kind: blockParagraph, lines: para})
			para = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, "```") {
			flushPara()
			lang := strings.TrimSpace(strings.TrimPrefix(line, "```"))
			var code []string
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "```") {
				code = append(code, lines[i])
				i++
			}
			blocks = append(blocks, block{kind: blockCode, lang: lang, lines: code})
			continue
		}

		if level, rest, ok := headingLine(line); ok {
			flushPara()
			blocks = append(blocks, block{kind: blockHeading, level: level, lines: []string{rest}})
			continue
		}

		if item, ordered, ok := listLine(line); ok {
			flushPara()
			lb := block{kind: blockList, ordered: ordered, items: []string{item}}
			for i+1 < len(lines) {
				next, _, more := listLine(lines[i+1])
				if !more {
					break
				}
				lb.items = append(lb.items, next)
				i++
			}
			blocks = append(blocks, lb)
			continue
		}

		if strings.TrimSpace(line) == "" {
			flushPara()
			continue
		}

		para = append(para, line)
	}
	flushPara()
	return blocks
}

// headingLine matches 1-3 leading '#' followed by a space. Deeper
// levels stay literal text.
func headingLine(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < 1 || level > 3 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level+1:]), true
}

// listLine matches "- ", "* " or "N. " markers. Ordered is reported per
// line; the container type is decided by the run's first line.
func listLine(line string) (string, bool, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return strings.TrimSpace(trimmed[2:]), false, true
	}
	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits+1 < len(trimmed) && trimmed[digits] == '.' && trimmed[digits+1] == ' ' {
		return strings.TrimSpace(trimmed[digits+2:]), true, true
	}
	return "", false, false
}
