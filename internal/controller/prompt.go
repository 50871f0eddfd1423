package controller

import (
	"fmt"
	"strings"

	"github.com/dshills/pageforge/internal/profile"
)

// patchInstructions is the patch dialect contract sent to the model when patch
// mode is enabled. The engine pattern-matches on it; keep it stable.
const patchInstructions = `
*** Begin Patch
*** Update File: index.html
@@ <body>
-<line_number_to_delete>
+<new_code_line_to_add>
*** End Patch

Rules:
- For deletions: -<line_number> (single integer, refers to current file line number)
- For additions: +<new_code_line> (write full new line, no line number)
- Show 3 lines of context before and after each change if possible.
- If multiple sections need changes, repeat the *** Update File header.
- Only return the patch. Do not add commentary.
`

// SystemPrompt builds the agent's standing instructions for a deliverable
// profile.
func SystemPrompt(p *profile.Profile) string {
	var b strings.Builder

	b.WriteString(`You are a single self-steering agent that produces, critiques, and iterates on one single-file HTML5 deliverable.

Protocol (use this exact special syntax; each on its own line):
- [[DO:LINT]]            -> Ask controller to run an HTML syntax linter on your latest full HTML and return results.
- [[DO:QG_CHECK]]        -> Ask controller to run general QA checks (bugs, disconnects, mobile readiness) and return results.
- [[TOSELF: <prompt>]]   -> Send yourself a new "user" instruction for the next turn (self-feedback). Keep it concise and actionable.
- [[ASK:FINAL_OK?]]      -> Ask controller if all checks are clear. Controller will reply. If not clear, continue improving.
- [[FINAL]]              -> Use only when the deliverable is complete and all checks are clear.

Optional patch mode:
- When the controller provides a numbered file view and patch instructions, and changes are small, respond with ONLY a patch using that format. Otherwise output full HTML.

Rules:
- Always output one complete, valid HTML5 document (<!DOCTYPE html> ... </html>) whenever you write or revise code, unless controller explicitly requests patch-only mode.
- After the HTML (or the patch), list any commands using the special syntax lines above. Zero or more per turn.
- If linter or QA feedback reports issues, fix them in the next HTML and request checks again.
- If controller responds that all checks are clear, emit [[FINAL]] with the final, full HTML.

`)

	if p != nil {
		b.WriteString(profile.FormatForPrompt(p))
	}

	return b.String()
}

// kickoffMessage is the round-zero user turn seeding the run.
func kickoffMessage(topic string) string {
	return fmt.Sprintf(
		"User request: Build the deliverable from this idea:\n%s\n\n"+
			"Produce one complete HTML5 file now. Then request checks with [[DO:LINT]] and [[DO:QG_CHECK]], "+
			"and add one [[TOSELF: ...]] instruction to improve next turn.", topic)
}
