package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dshills/pageforge/internal/controller"
	"github.com/dshills/pageforge/internal/llm"
	"github.com/dshills/pageforge/internal/profile"
	"github.com/dshills/pageforge/internal/redact"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	profileName   string
	model         string
	maxRounds     int
	maxTokens     int
	temperature   float64
	seed          int
	hasSeed       bool
	out           string
	redactEnabled bool
	verbose       bool
	debug         bool
}

func newGenerateCmd() *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a page from an idea and iterate until checks pass",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.hasSeed = cmd.Flags().Changed("seed")
			topic := ""
			if len(args) == 1 {
				topic = args[0]
			}
			return runGenerate(topic, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.profileName, "profile", "minigame", "Deliverable profile name")
	flags.StringVar(&f.model, "model", "", "Model ID (e.g., claude-sonnet-4-6, gpt-5-mini)")
	flags.IntVar(&f.maxRounds, "max-rounds", controller.DefaultMaxRounds, "Round budget before giving up")
	flags.IntVar(&f.maxTokens, "max-tokens", 16384, "Max response tokens")
	flags.Float64Var(&f.temperature, "temperature", 0.2, "Model temperature")
	flags.IntVar(&f.seed, "seed", 0, "Random seed (if supported)")
	flags.StringVar(&f.out, "out", "", "Output file path for the final HTML (default: stdout)")
	flags.BoolVar(&f.redactEnabled, "redact", true, "Redact secrets from the topic before sending to model")
	flags.BoolVar(&f.verbose, "verbose", false, "Print round progress to stderr")
	flags.BoolVar(&f.debug, "debug", false, "Save the system prompt to a debug file")

	return cmd
}

func runGenerate(topic string, f *generateFlags) error {
	logger := log.New(os.Stderr, "", 0)
	verbose := func(msg string, args ...any) {
		if f.verbose {
			logger.Printf(msg, args...)
		}
	}

	if topic == "" {
		fmt.Fprintln(os.Stderr, "Describe your page idea:")
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		if scanner.Scan() {
			topic = strings.TrimSpace(scanner.Text())
		}
	}
	if topic == "" {
		return exitError(3, "no topic provided")
	}
	if f.redactEnabled {
		topic = redact.Redact(topic)
	}

	verbose("Loading profile: %s", f.profileName)
	prof, err := profile.LoadBuiltin(f.profileName)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}

	verbose("Resolving LLM provider")
	provider, err := llm.ResolveProvider(f.model)
	if err != nil {
		return exitError(4, "model provider error: %v", err)
	}
	verbose("Using provider: %s", provider.Name())

	settings := llm.Settings{
		Model:       f.model,
		Temperature: f.temperature,
		MaxTokens:   f.maxTokens,
	}
	if f.hasSeed {
		settings.Seed = &f.seed
	}

	system := controller.SystemPrompt(prof)
	const debugPath = "pageforge-debug-prompt.txt"
	if f.debug {
		verbose("Writing debug prompt to %s", debugPath)
		if werr := os.WriteFile(debugPath, []byte(system), 0600); werr != nil {
			verbose("Warning: failed to write debug prompt: %v", werr)
		}
	}

	ctrl, err := controller.New(controller.Config{
		Engine:    &llm.Engine{Provider: provider, Settings: settings},
		System:    system,
		MaxRounds: f.maxRounds,
		Logf:      verbose,
	})
	if err != nil {
		return exitError(3, "controller setup failed: %v", err)
	}

	result, runErr := ctrl.Run(context.Background(), topic)
	if f.debug {
		// Append the round transcript so the debug file carries every feedback
		// turn, including those from a run that failed partway.
		df, derr := os.OpenFile(debugPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if derr != nil {
			verbose("Warning: failed to append debug transcript: %v", derr)
		} else {
			if _, werr := df.WriteString(formatTranscript(ctrl.Conversation())); werr != nil {
				verbose("Warning: failed to append debug transcript: %v", werr)
			}
			df.Close()
		}
	}
	if runErr != nil {
		return exitError(4, "generation run failed: %v", runErr)
	}

	fmt.Fprint(os.Stderr, formatUsage(result.Usage))
	if result.Status == controller.StatusExhausted {
		fmt.Fprintf(os.Stderr, "Reached round budget (%d) without finalization; returning latest document.\n", result.Rounds)
	}

	if result.HTML == "" {
		return exitError(2, "no HTML produced after %d rounds", result.Rounds)
	}

	if f.out != "" {
		verbose("Writing output to %s", f.out)
		if err := os.WriteFile(f.out, []byte(result.HTML), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Print(result.HTML)
	return nil
}

// formatTranscript renders the conversation as role-labeled turns for the
// debug file.
func formatTranscript(msgs []llm.Message) string {
	sep := strings.Repeat("-", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n CONVERSATION TRANSCRIPT\n%s\n", sep, sep)
	for i, m := range msgs {
		fmt.Fprintf(&b, "[%d] %s:\n%s\n%s\n", i+1, strings.ToUpper(string(m.Role)), m.Content, sep)
	}
	return b.String()
}

// formatUsage renders the end-of-run token accounting block.
func formatUsage(u llm.Usage) string {
	sep := strings.Repeat("=", 60)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n CUMULATIVE TOKEN USAGE SUMMARY\n%s\n", sep, sep)
	fmt.Fprintf(&b, " Total Prompt Tokens:     %s\n", groupInt(u.PromptTokens))
	fmt.Fprintf(&b, " Total Completion Tokens: %s\n", groupInt(u.CompletionTokens))
	fmt.Fprintf(&b, " Total Tokens Used:       %s\n", groupInt(u.TotalTokens))
	fmt.Fprintf(&b, "%s\n", sep)
	return b.String()
}

// groupInt formats n with comma thousands separators.
func groupInt(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
