// Package check runs heuristic quality checks over a generated HTML page:
// mobile readiness, wiring of interactive elements, and game-loop presence.
// Findings are advisory; only error-severity issues block finalization.
package check

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity indicates how strongly an issue blocks readiness.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityWarn, SeverityError:
		return true
	}
	return false
}

// Issue is a single heuristic finding.
type Issue struct {
	Name     string
	Detail   string
	Hint     string
	Severity Severity
}

// Checker analyzes a complete HTML document and reports advisory issues.
type Checker interface {
	Analyze(html string) []Issue
}

// QAChecker is the default Checker covering mobile readiness and common
// wiring gaps in single-file game pages.
type QAChecker struct{}

// NewQAChecker returns the default heuristic checker.
func NewQAChecker() *QAChecker { return &QAChecker{} }

var (
	viewportPattern  = regexp.MustCompile(`(?i)<meta\s+name=["']viewport["']`)
	touchPattern     = regexp.MustCompile(`addEventListener\(\s*['"](touchstart|touchmove|touchend|pointerdown|pointermove|pointerup)['"]`)
	keyboardPattern  = regexp.MustCompile(`(?i)\b(WASD|arrow keys|Arrow(?:Left|Right|Up|Down)|KeyW|KeyA|KeyS|KeyD)\b`)
	rafPattern       = regexp.MustCompile(`requestAnimationFrame\s*\(`)
	audioDataPattern = regexp.MustCompile(`(?i)data:audio/wav;base64`)
	canvasPattern    = regexp.MustCompile(`<canvas\b`)
	gameIDPattern    = regexp.MustCompile(`id\s*=\s*['"]game['"]`)
	buttonIDPattern  = regexp.MustCompile(`(?i)id\s*=\s*["'](restart|start|pause|menu)["']`)
	collisionPattern = regexp.MustCompile(`(?i)collision|intersect|hitTest`)
	scriptOpen       = regexp.MustCompile(`(?i)<\s*script\b`)
	scriptClose      = regexp.MustCompile(`(?i)</\s*script\s*>`)
)

// Analyze runs every heuristic against html and returns findings in a fixed
// rule order.
func (c *QAChecker) Analyze(html string) []Issue {
	var issues []Issue
	add := func(name, detail, hint string, severity Severity) {
		issues = append(issues, Issue{Name: name, Detail: detail, Hint: hint, Severity: severity})
	}

	if !viewportPattern.MatchString(html) {
		add("viewport_meta_missing",
			"No viewport meta for mobile.",
			`Add: <meta name="viewport" content="width=device-width,initial-scale=1,viewport-fit=cover,user-scalable=no">`,
			SeverityError)
	}

	if !touchPattern.MatchString(html) {
		add("touch_controls_missing",
			"No touch or pointer event handlers detected.",
			"Add touch/pointer event handlers or on-screen controls for mobile.",
			SeverityError)
	}

	if keyboardPattern.MatchString(html) {
		add("keyboard_instructions_present",
			"UI or code references keyboard controls.",
			"Update UI text to reflect touch controls, map keyboard to touch as fallback.",
			SeverityWarn)
	}

	if !rafPattern.MatchString(html) {
		add("no_game_loop",
			"No requestAnimationFrame game loop detected.",
			"Ensure there is a main loop to update and render the game each frame.",
			SeverityWarn)
	}

	if audioDataPattern.MatchString(html) {
		add("embedded_audio_data_uri",
			"Large base64 audio embedded can fail to load and bloat file.",
			"Prefer small SFX or remove embedded audio for MVP.",
			SeverityWarn)
	}

	if !canvasPattern.MatchString(html) && !gameIDPattern.MatchString(html) {
		add("no_game_surface",
			"No obvious game surface like <canvas> or #game container found.",
			"Add a canvas or a game container element.",
			SeverityWarn)
	}

	for _, m := range buttonIDPattern.FindAllStringSubmatch(html, -1) {
		btnID := m[1]
		handler := regexp.MustCompile(`document\.getElementById\(\s*['"]` + regexp.QuoteMeta(btnID) + `['"]\s*\)\.addEventListener`)
		if !handler.MatchString(html) {
			add("button_no_handler",
				fmt.Sprintf("Button #%s lacks event listener.", btnID),
				fmt.Sprintf("Add: document.getElementById('%s').addEventListener('click', ...)", btnID),
				SeverityWarn)
		}
	}

	if !collisionPattern.MatchString(html) && canvasPattern.MatchString(html) {
		add("no_collision_logic",
			"No explicit collision or boundary checks detected.",
			"Add simple boundary or collision checks appropriate to the game.",
			SeverityWarn)
	}

	opens := len(scriptOpen.FindAllStringIndex(html, -1))
	closes := len(scriptClose.FindAllStringIndex(html, -1))
	if opens != closes {
		add("unbalanced_script_tags",
			fmt.Sprintf("Script tags open=%d close=%d.", opens, closes),
			"Fix unbalanced <script> tags.",
			SeverityError)
	}

	return issues
}

// ErrorCount returns how many issues carry error severity.
func ErrorCount(issues []Issue) int {
	n := 0
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			n++
		}
	}
	return n
}

// FormatIssues renders issues as a QG_CHECK result block. The model
// pattern-matches on this layout, so it must stay stable across rounds.
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return "QG_CHECK: OK\nNo general issues detected."
	}
	lines := []string{"QG_CHECK: ISSUES"}
	for i, iss := range issues {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s: %s | Hint: %s",
			i+1, strings.ToUpper(string(iss.Severity)), iss.Name, iss.Detail, iss.Hint))
	}
	return strings.Join(lines, "\n")
}
