package controller

import (
	"fmt"
	"strings"

	"github.com/dshills/pageforge/internal/lint"
)

// lintFeedback renders a LINT result body.
func lintFeedback(defects []lint.Defect) string {
	if len(defects) == 0 {
		return "LINTER: OK. No syntax issues."
	}
	return "LINTER: Found issues:\n" + lint.FormatDefects(defects, lint.DefaultMaxDefects)
}

// numberLines prefixes each line of html with "ln{N}, " so patch deletions can
// reference stable line numbers.
func numberLines(html, prefix string) string {
	lines := strings.Split(html, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	out := make([]string, 0, len(lines))
	for i, ln := range lines {
		out = append(out, fmt.Sprintf("%s%d, %s", prefix, i+1, ln))
	}
	return strings.Join(out, "\n")
}

// patchModeRequest builds the feedback turn that switches the engine into
// patch mode: the numbered current file plus the patch format contract.
func patchModeRequest(html string) string {
	return "PATCH MODE ENABLED: Changes appear small. In your NEXT reply, return ONLY the patch for index.html " +
		"using the format below. Do not include other text or protocol commands.\n\n" +
		"Current file with line prefixes for reference:\n" +
		numberLines(html, "ln") + "\n\n" +
		"Patch Specification:\n" + patchInstructions
}
