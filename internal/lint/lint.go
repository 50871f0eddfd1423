// Package lint checks an HTML document for structural problems without a full
// parser. The scan is stack-based and intentionally approximate: comments are
// stripped, script/style bodies are scrubbed, and the remaining tag tokens are
// matched open-to-close. Positions refer to the comment-stripped text.
package lint

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxDefects caps how many defects are rendered in feedback.
const DefaultMaxDefects = 12

// Defect is a single structural problem. Line is 1-based and references the
// comment-stripped document, not the raw input.
type Defect struct {
	Message string
	Line    int
	Snippet string
}

// voidElements cannot have closing tags or children and are never pushed onto
// the tag stack.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
	"command": true, "keygen": true, "menuitem": true,
}

var (
	fencePattern   = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*|\\s*```\\s*$")
	commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)
	doctypePattern = regexp.MustCompile(`(?i)^\s*<!doctype\s+html\s*>`)
	tagPattern     = regexp.MustCompile(`<\s*(/)?\s*([a-zA-Z][a-zA-Z0-9\-]*)\b[^>]*?>`)

	openPatterns  = map[string]*regexp.Regexp{}
	closePatterns = map[string]*regexp.Regexp{}
	blockPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, tag := range []string{"html", "head", "body", "script", "style"} {
		openPatterns[tag] = regexp.MustCompile(`(?i)<\s*` + tag + `\b`)
	}
	for _, tag := range []string{"script", "style"} {
		closePatterns[tag] = regexp.MustCompile(`(?i)</\s*` + tag + `\s*>`)
		blockPatterns[tag] = regexp.MustCompile(`(?is)<` + tag + `\b.*?</` + tag + `\s*>`)
	}
}

// Lint returns all structural defects found in html, global checks first, then
// positional checks in scan order.
func Lint(html string) []Defect {
	var defects []Defect

	html = fencePattern.ReplaceAllString(html, "")
	stripped := commentPattern.ReplaceAllString(html, "")
	scrubbed := blockPatterns["style"].ReplaceAllString(
		blockPatterns["script"].ReplaceAllString(stripped, ""), "")
	index := newLineIndex(stripped)

	if !doctypePattern.MatchString(stripped) {
		defects = append(defects, Defect{
			Message: "Missing <!DOCTYPE html> at top",
			Line:    1,
			Snippet: index.snippet(0),
		})
	}

	for _, tag := range []string{"html", "head", "body"} {
		count := len(openPatterns[tag].FindAllStringIndex(stripped, -1))
		switch {
		case count == 0:
			defects = append(defects, Defect{Message: fmt.Sprintf("Missing <%s> tag", tag), Line: 1})
		case count > 1:
			defects = append(defects, Defect{Message: fmt.Sprintf("Multiple <%s> tags found (%d)", tag, count), Line: 1})
		}
	}

	for _, tag := range []string{"script", "style"} {
		opens := len(openPatterns[tag].FindAllStringIndex(stripped, -1))
		closes := len(closePatterns[tag].FindAllStringIndex(stripped, -1))
		if opens != closes {
			defects = append(defects, Defect{
				Message: fmt.Sprintf("Unbalanced <%s> tags (open=%d, close=%d)", tag, opens, closes),
				Line:    1,
			})
		}
	}

	defects = append(defects, scanTags(scrubbed, index)...)
	return defects
}

type openTag struct {
	name string
	pos  int
}

// scanTags walks every tag token in the scrubbed document and matches opens
// against closes with a stack. A mismatched close pops anyway, treating the
// mismatch as a typo rather than a structural restart, which keeps one bad tag
// from cascading into false positives.
func scanTags(scrubbed string, index *lineIndex) []Defect {
	var defects []Defect
	var stack []openTag

	for _, m := range tagPattern.FindAllStringSubmatchIndex(scrubbed, -1) {
		closing := m[2] >= 0
		name := strings.ToLower(scrubbed[m[4]:m[5]])
		pos := m[0]
		if name == "!doctype" {
			continue
		}
		token := scrubbed[m[0]:m[1]]
		selfClosed := strings.HasSuffix(strings.TrimRight(token, " \t\r\n"), "/>")

		if !closing {
			if voidElements[name] || selfClosed {
				continue
			}
			stack = append(stack, openTag{name: name, pos: pos})
			continue
		}

		line := index.locate(pos)
		switch {
		case voidElements[name]:
			defects = append(defects, Defect{
				Message: fmt.Sprintf("Unexpected closing tag </%s> for void element", name),
				Line:    line + 1,
				Snippet: index.snippet(line),
			})
		case len(stack) == 0:
			defects = append(defects, Defect{
				Message: fmt.Sprintf("Unmatched closing tag </%s>", name),
				Line:    line + 1,
				Snippet: index.snippet(line),
			})
		case stack[len(stack)-1].name != name:
			defects = append(defects, Defect{
				Message: fmt.Sprintf("Mismatched closing tag </%s>; expected </%s>", name, stack[len(stack)-1].name),
				Line:    line + 1,
				Snippet: index.snippet(line),
			})
			stack = stack[:len(stack)-1]
		default:
			stack = stack[:len(stack)-1]
		}
	}

	for _, open := range stack {
		line := index.locate(open.pos)
		defects = append(defects, Defect{
			Message: fmt.Sprintf("Unclosed <%s> tag", open.name),
			Line:    line + 1,
			Snippet: index.snippet(line),
		})
	}
	return defects
}

// lineIndex maps byte offsets to 1-based lines over a fixed text.
type lineIndex struct {
	lines  []string
	starts []int
}

func newLineIndex(text string) *lineIndex {
	ix := &lineIndex{}
	start := 0
	for {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			break
		}
		ix.starts = append(ix.starts, start)
		ix.lines = append(ix.lines, text[start:start+nl])
		start += nl + 1
	}
	if start < len(text) || len(ix.starts) == 0 {
		ix.starts = append(ix.starts, start)
		ix.lines = append(ix.lines, text[start:])
	}
	return ix
}

// locate returns the 0-based line containing offset pos.
func (ix *lineIndex) locate(pos int) int {
	n := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > pos })
	if n == 0 {
		return 0
	}
	return n - 1
}

func (ix *lineIndex) snippet(line int) string {
	if line < 0 || line >= len(ix.lines) {
		return ""
	}
	return strings.TrimSpace(ix.lines[line])
}

// FormatDefects renders up to max defects as a numbered list with a count of
// any remainder. The exact layout is pattern-matched by the model, so it must
// stay byte-stable across rounds.
func FormatDefects(defects []Defect, max int) string {
	if max <= 0 {
		max = DefaultMaxDefects
	}
	var out []string
	for i, d := range defects {
		if i >= max {
			break
		}
		snippet := strings.TrimSpace(d.Snippet)
		if len(snippet) > 240 {
			snippet = snippet[:240] + "..."
		}
		out = append(out, fmt.Sprintf("%d. Line %d: %s | Snippet: %s", i+1, d.Line, d.Message, snippet))
	}
	if more := len(defects) - len(out); more > 0 {
		out = append(out, fmt.Sprintf("... and %d more", more))
	}
	return strings.Join(out, "\n")
}
