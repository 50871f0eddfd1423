package check

import (
	"strings"
	"testing"
)

// mobileReady passes every heuristic.
const mobileReady = `<!DOCTYPE html>
<html>
<head>
<meta name="viewport" content="width=device-width,initial-scale=1">
</head>
<body>
<canvas id="game"></canvas>
<button id="restart">Restart</button>
<script>
document.getElementById('restart').addEventListener('click', reset);
canvas.addEventListener('touchstart', onTouch);
function loop() { checkCollision(); requestAnimationFrame(loop); }
requestAnimationFrame(loop);
</script>
</body>
</html>`

func TestAnalyzeCleanPage(t *testing.T) {
	issues := NewQAChecker().Analyze(mobileReady)
	if n := ErrorCount(issues); n != 0 {
		t.Errorf("expected no error issues, got %d: %v", n, issues)
	}
}

func TestAnalyzeMissingViewport(t *testing.T) {
	html := strings.Replace(mobileReady, `<meta name="viewport" content="width=device-width,initial-scale=1">`, "", 1)
	issues := NewQAChecker().Analyze(html)
	found := false
	for _, iss := range issues {
		if iss.Name == "viewport_meta_missing" {
			found = true
			if iss.Severity != SeverityError {
				t.Errorf("viewport issue must be error severity, got %s", iss.Severity)
			}
		}
	}
	if !found {
		t.Errorf("expected viewport_meta_missing, got %v", issues)
	}
}

func TestAnalyzeUnbalancedScripts(t *testing.T) {
	html := "<script>var a;</script>\n<script>var b;"
	issues := NewQAChecker().Analyze(html)
	found := false
	for _, iss := range issues {
		if iss.Name == "unbalanced_script_tags" {
			found = true
			if iss.Severity != SeverityError {
				t.Errorf("unbalanced scripts must be error severity, got %s", iss.Severity)
			}
			if !strings.Contains(iss.Detail, "open=2 close=1") {
				t.Errorf("detail should carry both counts, got %q", iss.Detail)
			}
		}
	}
	if !found {
		t.Errorf("expected unbalanced_script_tags, got %v", issues)
	}
}

func TestAnalyzeButtonWithoutHandler(t *testing.T) {
	html := strings.Replace(mobileReady,
		"document.getElementById('restart').addEventListener('click', reset);", "", 1)
	issues := NewQAChecker().Analyze(html)
	found := false
	for _, iss := range issues {
		if iss.Name == "button_no_handler" {
			found = true
			if iss.Severity != SeverityWarn {
				t.Errorf("expected warn severity, got %s", iss.Severity)
			}
			if !strings.Contains(iss.Detail, "#restart") {
				t.Errorf("detail should name the button, got %q", iss.Detail)
			}
		}
	}
	if !found {
		t.Errorf("expected button_no_handler, got %v", issues)
	}
}

func TestAnalyzeKeyboardReferences(t *testing.T) {
	html := strings.Replace(mobileReady, "<canvas id=\"game\"></canvas>",
		"<canvas id=\"game\"></canvas><p>Use WASD to move</p>", 1)
	issues := NewQAChecker().Analyze(html)
	found := false
	for _, iss := range issues {
		if iss.Name == "keyboard_instructions_present" && iss.Severity == SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Errorf("expected keyboard_instructions_present warn, got %v", issues)
	}
}

func TestAnalyzeNoGameSurface(t *testing.T) {
	issues := NewQAChecker().Analyze("<html><body><p>nothing here</p></body></html>")
	found := false
	for _, iss := range issues {
		if iss.Name == "no_game_surface" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected no_game_surface, got %v", issues)
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityWarn, SeverityError} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Severity("fatal").Valid() {
		t.Error("expected fatal to be invalid")
	}
}

func TestErrorCount(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityError},
		{Severity: SeverityWarn},
		{Severity: SeverityError},
	}
	if n := ErrorCount(issues); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func TestFormatIssuesEmpty(t *testing.T) {
	out := FormatIssues(nil)
	if !strings.HasPrefix(out, "QG_CHECK: OK") {
		t.Errorf("expected OK block, got %q", out)
	}
}

func TestFormatIssuesLayout(t *testing.T) {
	out := FormatIssues([]Issue{
		{Name: "x", Detail: "d", Hint: "h", Severity: SeverityError},
	})
	if !strings.HasPrefix(out, "QG_CHECK: ISSUES") {
		t.Errorf("expected ISSUES header, got %q", out)
	}
	if !strings.Contains(out, "1. [ERROR] x: d | Hint: h") {
		t.Errorf("unexpected line format:\n%s", out)
	}
}
