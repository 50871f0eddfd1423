package profile

import (
	"sort"
	"strings"
	"testing"
)

func TestLoadBuiltinMinigame(t *testing.T) {
	p, err := LoadBuiltin("minigame")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "minigame" {
		t.Errorf("expected name minigame, got %q", p.Name)
	}
	if p.Version < 1 {
		t.Errorf("expected version >= 1, got %d", p.Version)
	}
	if p.Deliverable == "" {
		t.Error("deliverable should not be empty")
	}
	if len(p.Requirements) == 0 {
		t.Error("minigame profile should carry requirements")
	}
	if len(p.SelfReview) == 0 {
		t.Error("minigame profile should carry self-review questions")
	}
}

func TestLoadBuiltinUnknown(t *testing.T) {
	if _, err := LoadBuiltin("no-such-profile"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestListBuiltins(t *testing.T) {
	names, err := List()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(names)
	want := []string{"landing", "minigame", "widget"}
	if len(names) != len(want) {
		t.Fatalf("expected %d profiles, got %v", len(want), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("profile %d: got %q, want %q", i, names[i], n)
		}
	}
}

func TestFormatForPrompt(t *testing.T) {
	p := &Profile{
		Deliverable:  "A single-file HTML5 page.",
		Requirements: []string{"works offline", "no external assets"},
		SelfReview:   []string{"Does it load without errors?"},
	}
	got := FormatForPrompt(p)

	for _, want := range []string{
		"Deliverable:\n- A single-file HTML5 page.",
		"Requirements:\n- works offline\n- no external assets",
		"Generate your TOSELF prompt by questioning general things:",
		"Does it load without errors?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted prompt missing %q:\n%s", want, got)
		}
	}
}

func TestFormatForPromptMinimal(t *testing.T) {
	got := FormatForPrompt(&Profile{Deliverable: "A widget."})
	if strings.Contains(got, "Requirements:") {
		t.Error("empty requirements should be omitted")
	}
	if strings.Contains(got, "TOSELF") {
		t.Error("empty self-review should be omitted")
	}
}
