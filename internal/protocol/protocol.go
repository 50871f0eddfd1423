// Package protocol parses the agent wire format: embedded HTML documents,
// patch blocks, and [[COMMAND: arg]] directive lines. Extraction never fails
// hard; anything that cannot be found is reported as the zero value.
package protocol

import (
	"regexp"
	"strings"
)

// Kind identifies a recognized command variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindRunLint
	KindRunQGCheck
	KindSelfInstruct
	KindAskFinal
	KindFinalize
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindRunLint:
		return "lint"
	case KindRunQGCheck:
		return "qg_check"
	case KindSelfInstruct:
		return "toself"
	case KindAskFinal:
		return "ask_final"
	case KindFinalize:
		return "final"
	default:
		return "unknown"
	}
}

// Command is one parsed directive line. Name and Arg hold the raw normalized
// pieces so unknown commands can be echoed back to the model verbatim.
type Command struct {
	Kind Kind
	Name string
	Arg  string
}

var (
	// A line matches only if the whole line is a single bracketed command.
	commandPattern = regexp.MustCompile(`(?im)^[ \t]*\[\[\s*([A-Za-z_]+)(?::\s*(.+?))?\s*\]\][ \t]*\r?$`)
	fencePattern   = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*|\\s*```\\s*$")
	docPattern     = regexp.MustCompile(`(?is)<!doctype\s+html[^>]*>.*?</html\s*>`)
	patchPattern   = regexp.MustCompile(`(?s)\*\*\*\s*Begin Patch.*?\*\*\*\s*End Patch`)
)

// ParseCommands scans text for command lines and returns them in document order.
// Names are normalized to uppercase, arguments trimmed. Unrecognized names are
// preserved as KindUnknown so the caller can reject them explicitly.
func ParseCommands(text string) []Command {
	var cmds []Command
	for _, m := range commandPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(strings.TrimSpace(m[1]))
		arg := strings.TrimSpace(m[2])
		cmds = append(cmds, classify(name, arg))
	}
	return cmds
}

func classify(name, arg string) Command {
	cmd := Command{Name: name, Arg: arg}
	switch name {
	case "DO":
		switch strings.ToUpper(arg) {
		case "LINT":
			cmd.Kind = KindRunLint
		case "QG_CHECK":
			cmd.Kind = KindRunQGCheck
		}
	case "TOSELF":
		cmd.Kind = KindSelfInstruct
	case "ASK":
		if strings.ToUpper(arg) == "FINAL_OK?" {
			cmd.Kind = KindAskFinal
		}
	case "FINAL":
		cmd.Kind = KindFinalize
	}
	return cmd
}

// ExtractDocument returns the first complete HTML document embedded in text,
// from a case-insensitive doctype declaration through the matching </html>
// close, spanning line boundaries. Code fences are stripped first. Returns ""
// if no document is present.
func ExtractDocument(text string) string {
	return docPattern.FindString(StripCodeFences(text))
}

// ExtractPatchBlock returns the first "*** Begin Patch" ... "*** End Patch"
// span in text, or "" if absent.
func ExtractPatchBlock(text string) string {
	return patchPattern.FindString(text)
}

// StripCodeFences removes markdown code-fence lines wrapping a response.
func StripCodeFences(text string) string {
	return fencePattern.ReplaceAllString(text, "")
}
