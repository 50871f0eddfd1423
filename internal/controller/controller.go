// Package controller drives the multi-round generate/validate/patch loop
// against a generative engine until the document passes its quality gates or
// the round budget runs out.
package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/pageforge/internal/check"
	"github.com/dshills/pageforge/internal/lint"
	"github.com/dshills/pageforge/internal/llm"
	"github.com/dshills/pageforge/internal/patch"
	"github.com/dshills/pageforge/internal/protocol"
)

// DefaultMaxRounds is the round budget when none is configured.
const DefaultMaxRounds = 12

// Status reports how a run ended.
type Status string

const (
	// StatusFinalized means a FINAL command was accepted with clean checks.
	StatusFinalized Status = "FINALIZED"
	// StatusExhausted means the round budget ran out; the result carries the
	// best available document, possibly empty.
	StatusExhausted Status = "EXHAUSTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusFinalized, StatusExhausted:
		return true
	}
	return false
}

// Engine is the external generative collaborator: one blocking call per round
// that either returns text or fails terminally.
type Engine interface {
	Chat(ctx context.Context, system string, msgs []llm.Message) (string, llm.Usage, error)
}

// Config wires a Controller.
type Config struct {
	Engine    Engine
	Checker   check.Checker // defaults to check.NewQAChecker()
	System    string        // standing system prompt for the run
	MaxRounds int           // defaults to DefaultMaxRounds
	Logf      func(format string, args ...any)
}

// Controller holds all per-run state. It is not safe for concurrent use; a
// run is strictly round-synchronous with a single outstanding engine call.
type Controller struct {
	engine    Engine
	checker   check.Checker
	system    string
	maxRounds int
	logf      func(string, ...any)

	conversation  []llm.Message
	html          string
	lastDefects   []lint.Defect
	lastIssues    []check.Issue
	patchModeHint bool
	usage         llm.Usage
}

// Result is the outcome of a run.
type Result struct {
	HTML   string
	Status Status
	Rounds int
	Usage  llm.Usage
}

// New creates a Controller from cfg.
func New(cfg Config) (*Controller, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("controller.New: engine is required")
	}
	c := &Controller{
		engine:    cfg.Engine,
		checker:   cfg.Checker,
		system:    cfg.System,
		maxRounds: cfg.MaxRounds,
		logf:      cfg.Logf,
	}
	if c.checker == nil {
		c.checker = check.NewQAChecker()
	}
	if c.maxRounds <= 0 {
		c.maxRounds = DefaultMaxRounds
	}
	if c.logf == nil {
		c.logf = func(string, ...any) {}
	}
	return c, nil
}

// Conversation returns a copy of the accumulated conversation turns.
func (c *Controller) Conversation() []llm.Message {
	return append([]llm.Message(nil), c.conversation...)
}

// Run drives rounds until a FINAL command is accepted or the budget is
// exhausted. Budget exhaustion is a degraded result, not an error; only an
// engine transport failure returns an error.
func (c *Controller) Run(ctx context.Context, topic string) (*Result, error) {
	c.conversation = append(c.conversation, llm.Message{Role: llm.RoleUser, Content: kickoffMessage(topic)})

	for round := 1; round <= c.maxRounds; round++ {
		c.logf("=== ROUND %d ===", round)

		resp, usage, err := c.engine.Chat(ctx, c.system, c.conversation)
		if err != nil {
			return nil, fmt.Errorf("controller: engine call failed in round %d: %w", round, err)
		}
		c.usage.Add(usage)
		text := protocol.StripCodeFences(resp)

		var followups []string

		// Patch first. A full document later in the same response wins anyway
		// because it overwrites the patched result below.
		patchBlock := protocol.ExtractPatchBlock(text)
		if patchBlock != "" && c.html != "" {
			c.logf("patch detected, applying")
			newHTML, perr := patch.Apply(c.html, patchBlock)
			if perr == nil {
				c.html = newHTML
				c.lastDefects = lint.Lint(c.html)
				c.lastIssues = c.checker.Analyze(c.html)
				followups = append(followups,
					"[[RESULT:LINT]]\n"+lintFeedback(c.lastDefects),
					"[[RESULT:QG_CHECK]]\n"+check.FormatIssues(c.lastIssues))
			} else {
				followups = append(followups, fmt.Sprintf(
					"Controller: Patch apply failed: %v. Please output the FULL corrected HTML instead.", perr))
			}
		}

		if doc := protocol.ExtractDocument(text); doc != "" {
			c.html = doc
		}

		cmds := protocol.ParseCommands(text)
		if len(cmds) > 0 {
			c.logf("commands: %s", commandNames(cmds))
		}

		accepted := false
		for _, cmd := range cmds {
			followups, accepted = c.dispatch(cmd, followups)
			if accepted {
				break
			}
		}
		if accepted {
			c.logf("final accepted in round %d", round)
			return &Result{HTML: c.html, Status: StatusFinalized, Rounds: round, Usage: c.usage}, nil
		}

		if c.html != "" {
			if ShouldUsePatch(c.lastDefects, c.lastIssues, len(c.html)) {
				followups = append(followups, patchModeRequest(c.html))
				c.patchModeHint = true
			} else {
				c.patchModeHint = false
			}
		}

		if len(cmds) == 0 && patchBlock == "" {
			followups = append(followups, c.nudge())
		}

		c.conversation = append(c.conversation, llm.Message{Role: llm.RoleAssistant, Content: text})
		for _, f := range followups {
			c.conversation = append(c.conversation, llm.Message{Role: llm.RoleUser, Content: f})
		}
	}

	c.logf("reached max rounds without finalization")
	return &Result{HTML: c.html, Status: StatusExhausted, Rounds: c.maxRounds, Usage: c.usage}, nil
}

// dispatch handles one command, returning the extended followup queue and
// whether a FINAL command was accepted.
func (c *Controller) dispatch(cmd protocol.Command, followups []string) ([]string, bool) {
	switch cmd.Kind {
	case protocol.KindRunLint:
		if c.html == "" {
			c.lastDefects = []lint.Defect{{Message: "No HTML to lint", Line: 1}}
			followups = append(followups, "[[RESULT:LINT]]\nNo full HTML detected to lint.")
			break
		}
		c.lastDefects = lint.Lint(c.html)
		followups = append(followups, "[[RESULT:LINT]]\n"+lintFeedback(c.lastDefects))

	case protocol.KindRunQGCheck:
		if c.html == "" {
			c.lastIssues = noHTMLIssues()
		} else {
			c.lastIssues = c.checker.Analyze(c.html)
		}
		followups = append(followups, "[[RESULT:QG_CHECK]]\n"+check.FormatIssues(c.lastIssues))

	case protocol.KindSelfInstruct:
		followups = append(followups, "[[SELF-INSTRUCTION]] "+cmd.Arg)

	case protocol.KindAskFinal:
		followups = append(followups, c.finalStatusReport())

	case protocol.KindFinalize:
		if c.html == "" {
			followups = append(followups, "Controller: FINAL rejected. No HTML detected.")
			break
		}
		// Recompute fresh; cached results may be stale.
		defects := lint.Lint(c.html)
		issues := c.checker.Analyze(c.html)
		if len(defects) == 0 && check.ErrorCount(issues) == 0 {
			return followups, true
		}
		msg := []string{"Controller: FINAL rejected due to remaining issues."}
		if len(defects) > 0 {
			msg = append(msg, "Linter issues:\n"+lint.FormatDefects(defects, lint.DefaultMaxDefects))
		}
		if len(issues) > 0 {
			msg = append(msg, "QG issues:\n"+check.FormatIssues(issues))
		}
		followups = append(followups, strings.Join(msg, "\n"))

	default:
		followups = append(followups, fmt.Sprintf(
			"Controller: Unknown or unhandled command [[%s:%s]]; continue with improvements and checks.", cmd.Name, cmd.Arg))
	}
	return followups, false
}

// finalStatusReport recomputes readiness from scratch and renders the
// FINAL_OK? status block.
func (c *Controller) finalStatusReport() string {
	var defects []lint.Defect
	var issues []check.Issue
	if c.html == "" {
		defects = []lint.Defect{{Message: "No HTML", Line: 1}}
		issues = []check.Issue{{
			Name:     "no_html",
			Detail:   "No HTML present.",
			Hint:     "Provide HTML.",
			Severity: check.SeverityError,
		}}
	} else {
		defects = lint.Lint(c.html)
		issues = c.checker.Analyze(c.html)
	}

	ready := len(defects) == 0 && check.ErrorCount(issues) == 0
	decision := "NOT_READY"
	if ready {
		decision = "READY"
	}
	report := []string{
		"[[RESULT:FINAL_OK?]]",
		"Controller decision: " + decision,
		fmt.Sprintf("Lint OK: %t", len(defects) == 0),
		fmt.Sprintf("QG errors: %d of %d", check.ErrorCount(issues), len(issues)),
		fmt.Sprintf("Has HTML: %t", c.html != ""),
	}
	if !ready {
		report = append(report, "Recommendation: Address remaining issues, then re-run [[DO:LINT]] and [[DO:QG_CHECK]].")
	}
	return strings.Join(report, "\n")
}

// nudge produces the corrective turn for a response with no commands and no
// patch block.
func (c *Controller) nudge() string {
	if c.html == "" {
		return "Controller: No HTML detected. Output a complete HTML5 document and then add [[DO:LINT]] and [[DO:QG_CHECK]]."
	}
	defects := lint.Lint(c.html)
	issues := c.checker.Analyze(c.html)
	if len(defects) == 0 && check.ErrorCount(issues) == 0 {
		return "Controller: All checks pass. Reply with [[FINAL]] and include the final full HTML again."
	}
	nudge := []string{"Controller: No commands detected. Please fix issues and request checks."}
	if len(defects) > 0 {
		nudge = append(nudge, "Linter issues:\n"+lint.FormatDefects(defects, lint.DefaultMaxDefects))
	}
	if len(issues) > 0 {
		nudge = append(nudge, "QG issues:\n"+check.FormatIssues(issues))
	}
	if !c.patchModeHint {
		nudge = append(nudge, "Tip: If changes are small, you may reply with a patch next time.")
	}
	return strings.Join(nudge, "\n")
}

// ShouldUsePatch recommends patch mode when the outstanding problem count is
// small but nonzero and the document is large enough for line-number edits to
// beat a full rewrite.
func ShouldUsePatch(defects []lint.Defect, issues []check.Issue, htmlLen int) bool {
	if htmlLen == 0 {
		return false
	}
	total := len(defects) + check.ErrorCount(issues)
	return total >= 1 && total <= 5 && htmlLen >= 200
}

func noHTMLIssues() []check.Issue {
	return []check.Issue{{
		Name:     "no_html",
		Detail:   "No HTML to analyze.",
		Hint:     "Output full HTML first.",
		Severity: check.SeverityError,
	}}
}

func commandNames(cmds []protocol.Command) string {
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.Name)
	}
	return strings.Join(names, ", ")
}
