// Package patch applies the restricted line-diff dialect to an in-memory
// document. The dialect supports "-<line>" deletions against the current
// document's frozen line numbers and "+<text>" additions inserted as one
// contiguous block.
package patch

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	blockPattern    = regexp.MustCompile(`(?s)\*\*\*\s*Begin Patch.*?\*\*\*\s*End Patch`)
	deletionPattern = regexp.MustCompile(`^-\s*(\d+)\s*$`)
)

// Apply applies patchText to current and returns the new document. On failure
// it returns current unchanged with a non-nil error; it never panics out to
// the caller, since the controller needs a uniform result to pick its next
// feedback message.
func Apply(current, patchText string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = current
			err = fmt.Errorf("patch.Apply: %v", r)
		}
	}()

	block := blockPattern.FindString(patchText)
	if block == "" {
		return current, fmt.Errorf("patch.Apply: no patch block found")
	}

	var delNums []int
	var addLines []string
	for _, raw := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(trimmed, "***"), strings.HasPrefix(trimmed, "@@"):
			// header or hunk marker
		case strings.HasPrefix(raw, "-"):
			if m := deletionPattern.FindStringSubmatch(trimmed); m != nil {
				n, convErr := strconv.Atoi(m[1])
				if convErr == nil {
					delNums = append(delNums, n)
				}
			}
		case strings.HasPrefix(raw, "+"):
			line := strings.TrimSuffix(raw[1:], "\r")
			// One leading space is diff formatting, not content.
			line = strings.TrimPrefix(line, " ")
			addLines = append(addLines, line)
		default:
			// context line, ignored
		}
	}

	fileLines := splitKeepEnds(current)

	// Deletions run in descending order so earlier removals do not shift the
	// line numbers of later ones. Out-of-range numbers are skipped.
	for _, dn := range uniqueDescending(delNums) {
		if dn >= 1 && dn <= len(fileLines) {
			fileLines = append(fileLines[:dn-1], fileLines[dn:]...)
		}
	}

	insertAt := len(fileLines)
	if len(delNums) > 0 {
		insertAt = minInt(delNums) - 1
		if insertAt > len(fileLines) {
			insertAt = len(fileLines)
		}
		if insertAt < 0 {
			insertAt = 0
		}
	}

	additions := make([]string, 0, len(addLines))
	for _, l := range addLines {
		if !strings.HasSuffix(l, "\n") {
			l += "\n"
		}
		additions = append(additions, l)
	}

	merged := make([]string, 0, len(fileLines)+len(additions))
	merged = append(merged, fileLines[:insertAt]...)
	merged = append(merged, additions...)
	merged = append(merged, fileLines[insertAt:]...)

	return strings.Join(merged, ""), nil
}

// splitKeepEnds splits text into lines retaining the trailing newline on each,
// without a phantom empty line after a final newline.
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func uniqueDescending(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	var out []int
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func minInt(nums []int) int {
	m := nums[0]
	for _, n := range nums[1:] {
		if n < m {
			m = n
		}
	}
	return m
}
