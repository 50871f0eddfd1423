package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/pageforge/internal/llm"
)

func TestGroupInt(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := groupInt(tt.in); got != tt.want {
			t.Errorf("groupInt(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUsage(t *testing.T) {
	got := formatUsage(llm.Usage{
		PromptTokens:     12345,
		CompletionTokens: 678,
		TotalTokens:      13023,
	})
	for _, want := range []string{
		"CUMULATIVE TOKEN USAGE SUMMARY",
		"Total Prompt Tokens:     12,345",
		"Total Completion Tokens: 678",
		"Total Tokens Used:       13,023",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("usage summary missing %q:\n%s", want, got)
		}
	}
}

func TestFormatTranscript(t *testing.T) {
	got := formatTranscript([]llm.Message{
		{Role: llm.RoleUser, Content: "build a pong clone"},
		{Role: llm.RoleAssistant, Content: "<!DOCTYPE html>..."},
		{Role: llm.RoleUser, Content: "[[RESULT:LINT]]\nLINTER: OK. No syntax issues."},
	})
	for _, want := range []string{
		"CONVERSATION TRANSCRIPT",
		"[1] USER:\nbuild a pong clone",
		"[2] ASSISTANT:\n<!DOCTYPE html>...",
		"[3] USER:\n[[RESULT:LINT]]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestExitErr(t *testing.T) {
	err := exitError(3, "bad input: %s", "empty topic")
	var ee *exitErr
	if !errors.As(err, &ee) {
		t.Fatal("expected *exitErr")
	}
	if ee.code != 3 {
		t.Errorf("expected code 3, got %d", ee.code)
	}
	if ee.Error() != "bad input: empty topic" {
		t.Errorf("unexpected message: %q", ee.Error())
	}
}
