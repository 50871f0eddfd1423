package lint

import (
	"strings"
	"testing"
)

const cleanDoc = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ok</title>
<style>body { margin: 0; }</style>
</head>
<body>
<div><span>hello</span></div>
<script>console.log("</div> inside script is not markup");</script>
</body>
</html>`

func TestLintCleanDocument(t *testing.T) {
	defects := Lint(cleanDoc)
	if len(defects) != 0 {
		t.Fatalf("expected no defects, got %d: %v", len(defects), defects)
	}
}

func TestLintMissingDoctype(t *testing.T) {
	doc := "<html>\n<head></head>\n<body></body>\n</html>"
	defects := Lint(doc)
	if len(defects) == 0 {
		t.Fatal("expected defects")
	}
	first := defects[0]
	if !strings.Contains(first.Message, "DOCTYPE") {
		t.Errorf("first defect should be missing doctype, got %q", first.Message)
	}
	if first.Line != 1 {
		t.Errorf("missing doctype should report line 1, got %d", first.Line)
	}
}

func TestLintMismatchedClose(t *testing.T) {
	// Bare fragment: the tag scan reports one mismatch citing span, then the
	// recovery pop leaves div on the stack for one unclosed defect.
	defects := Lint("<div><span></div>")
	var scan []Defect
	for _, d := range defects {
		if strings.Contains(d.Message, "Mismatched") || strings.Contains(d.Message, "Unclosed") {
			scan = append(scan, d)
		}
	}
	if len(scan) != 2 {
		t.Fatalf("expected exactly 2 tag-scan defects, got %d: %v", len(scan), scan)
	}
	if !strings.Contains(scan[0].Message, "</div>") || !strings.Contains(scan[0].Message, "</span>") {
		t.Errorf("expected mismatch citing span, got %q", scan[0].Message)
	}
	if !strings.Contains(scan[1].Message, "Unclosed <div>") {
		t.Errorf("expected unclosed div, got %q", scan[1].Message)
	}
}

func TestLintUnclosedTagPositions(t *testing.T) {
	// Truncated document: everything still open reports at its own push line.
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body>\n<div>"
	defects := Lint(doc)
	wantLines := map[string]int{
		"Unclosed <html> tag": 2,
		"Unclosed <body> tag": 4,
		"Unclosed <div> tag":  5,
	}
	for msg, line := range wantLines {
		found := false
		for _, d := range defects {
			if d.Message == msg {
				found = true
				if d.Line != line {
					t.Errorf("%s: expected line %d, got %d", msg, line, d.Line)
				}
			}
		}
		if !found {
			t.Errorf("missing defect %q in %v", msg, defects)
		}
	}
}

func TestLintVoidElementClose(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body>\n<br></br>\n</body>\n</html>"
	defects := Lint(doc)
	found := false
	for _, d := range defects {
		if strings.Contains(d.Message, "void element") {
			found = true
			if d.Line != 5 {
				t.Errorf("void close should report line 5, got %d", d.Line)
			}
		}
	}
	if !found {
		t.Errorf("expected void element defect, got %v", defects)
	}
}

func TestLintVoidAndSelfClosingNotPushed(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><link rel=\"x\" href=\"y\"></head>\n<body>\n<img src=\"a.png\">\n<circle cx=\"1\" />\n</body>\n</html>"
	if defects := Lint(doc); len(defects) != 0 {
		t.Errorf("void and self-closing tags should not need closes, got %v", defects)
	}
}

func TestLintUnmatchedClose(t *testing.T) {
	// The stray close comes after every open has been popped, so the stack is
	// empty when it is seen.
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body></body>\n</html>\n</section>"
	defects := Lint(doc)
	if len(defects) != 1 {
		t.Fatalf("expected exactly 1 defect, got %d: %v", len(defects), defects)
	}
	if !strings.Contains(defects[0].Message, "Unmatched closing tag </section>") {
		t.Errorf("expected unmatched close defect, got %q", defects[0].Message)
	}
	if defects[0].Line != 6 {
		t.Errorf("expected line 6, got %d", defects[0].Line)
	}
}

func TestLintMismatchRecoveryPopsAnyway(t *testing.T) {
	// A stray close inside an open container mismatches against that container
	// and pops it, so the containers above it cascade into mismatches too.
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body>\n</section>\n</body>\n</html>"
	defects := Lint(doc)
	wantMessages := []string{
		"Mismatched closing tag </section>; expected </body>",
		"Mismatched closing tag </body>; expected </html>",
		"Unmatched closing tag </html>",
	}
	if len(defects) != len(wantMessages) {
		t.Fatalf("expected %d defects, got %d: %v", len(wantMessages), len(defects), defects)
	}
	for i, want := range wantMessages {
		if defects[i].Message != want {
			t.Errorf("defect %d: got %q, want %q", i, defects[i].Message, want)
		}
	}
}

func TestLintMultipleContainers(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body></body>\n<body></body>\n</html>"
	defects := Lint(doc)
	found := false
	for _, d := range defects {
		if strings.Contains(d.Message, "Multiple <body> tags found (2)") {
			found = true
			if d.Line != 1 {
				t.Errorf("container defects carry line 1, got %d", d.Line)
			}
		}
	}
	if !found {
		t.Errorf("expected multiple body defect, got %v", defects)
	}
}

func TestLintMissingContainers(t *testing.T) {
	defects := Lint("<!DOCTYPE html>\n<p>hi</p>")
	var missing []string
	for _, d := range defects {
		if strings.HasPrefix(d.Message, "Missing <") {
			missing = append(missing, d.Message)
		}
	}
	if len(missing) != 3 {
		t.Errorf("expected missing html/head/body, got %v", missing)
	}
}

func TestLintUnbalancedScript(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body>\n<script>var a = 1;\n<script>var b = 2;</script>\n</body>\n</html>"
	defects := Lint(doc)
	found := false
	for _, d := range defects {
		if strings.Contains(d.Message, "Unbalanced <script> tags (open=2, close=1)") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unbalanced script defect, got %v", defects)
	}
}

func TestLintIgnoresComments(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<head></head>\n<body>\n<!-- <div> commented out, never closed -->\n</body>\n</html>"
	if defects := Lint(doc); len(defects) != 0 {
		t.Errorf("commented-out markup should be ignored, got %v", defects)
	}
}

func TestLintScrubsStyleContent(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<head>\n<style>/* a > b { } */ .x { content: \"</div>\"; }</style>\n</head>\n<body></body>\n</html>"
	if defects := Lint(doc); len(defects) != 0 {
		t.Errorf("style content should not be parsed as markup, got %v", defects)
	}
}

func TestFormatDefectsCap(t *testing.T) {
	defects := make([]Defect, 15)
	for i := range defects {
		defects[i] = Defect{Message: "problem", Line: i + 1, Snippet: "<x>"}
	}
	out := FormatDefects(defects, 12)
	if !strings.Contains(out, "12. Line 12:") {
		t.Errorf("expected 12 numbered entries, got:\n%s", out)
	}
	if strings.Contains(out, "13. Line") {
		t.Errorf("entries past the cap should be folded, got:\n%s", out)
	}
	if !strings.Contains(out, "... and 3 more") {
		t.Errorf("expected remainder count, got:\n%s", out)
	}
}

func TestFormatDefectsTruncatesSnippet(t *testing.T) {
	long := strings.Repeat("x", 300)
	out := FormatDefects([]Defect{{Message: "m", Line: 1, Snippet: long}}, 12)
	if !strings.Contains(out, strings.Repeat("x", 240)+"...") {
		t.Errorf("snippet should be truncated at 240 chars, got:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 241)) {
		t.Error("snippet exceeded 240 chars")
	}
}
