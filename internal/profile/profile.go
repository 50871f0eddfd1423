// Package profile handles loading and formatting built-in deliverable profiles.
// A profile describes what kind of single-file page the agent should produce
// and which questions it should ask itself between rounds.
package profile

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Profile defines a deliverable preset for the generation run.
type Profile struct {
	Name         string   `yaml:"name"`
	Version      int      `yaml:"version"`
	Description  string   `yaml:"description"`
	Deliverable  string   `yaml:"deliverable"`
	Requirements []string `yaml:"requirements"`
	SelfReview   []string `yaml:"self_review"`
}

// LoadBuiltin loads a built-in profile by name.
func LoadBuiltin(name string) (*Profile, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: unknown profile %q: %w", name, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: parse %q: %w", name, err)
	}
	return &p, nil
}

// List returns the names of all available built-in profiles.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}

// FormatForPrompt renders the profile into text suitable for the system prompt.
func FormatForPrompt(p *Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Deliverable:\n- %s\n", strings.TrimSpace(p.Deliverable))

	if len(p.Requirements) > 0 {
		b.WriteString("\nRequirements:\n")
		for _, r := range p.Requirements {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	if len(p.SelfReview) > 0 {
		b.WriteString("\nGenerate your TOSELF prompt by questioning general things:\n")
		for _, q := range p.SelfReview {
			fmt.Fprintf(&b, "  • %s\n", q)
		}
	}

	return b.String()
}
