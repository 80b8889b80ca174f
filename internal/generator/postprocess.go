package generator

import (
	"regexp"
	"strings"
)

var (
	javaBlockRe = regexp.MustCompile("(?s)```java\\s*\\n(.*?)```")
	anyBlockRe  = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\s*\\n(.*?)```")
	thinkingRe  = regexp.MustCompile("(?s)<think>.*?</think>")
	lineNumRe   = regexp.MustCompile(`^\s*\d+[.:|]?\s`)
)

// ExtractCode pulls the generated test class out of a model reply. Java
// fenced blocks win over other fences; when several blocks are present the
// last one is taken, since models tend to restate corrected code at the
// end. Returns "" when the reply has no fenced block at all.
func ExtractCode(response string) string {
	if ms := javaBlockRe.FindAllStringSubmatch(response, -1); len(ms) > 0 {
		return strings.TrimSpace(ms[len(ms)-1][1])
	}
	if ms := anyBlockRe.FindAllStringSubmatch(response, -1); len(ms) > 0 {
		return strings.TrimSpace(ms[len(ms)-1][1])
	}
	return ""
}

// RemoveThinking strips <think>...</think> spans that reasoning models
// prepend to their replies.
func RemoveThinking(response string) string {
	return strings.TrimSpace(thinkingRe.ReplaceAllString(response, ""))
}

// StripLineNumbers removes leading line-number gutters ("1. ", "2: ",
// "3| ") that some models copy from numbered source listings. Prefixes are
// only stripped when at least half of the non-empty lines carry one, so
// ordinary code containing numbers is left alone.
func StripLineNumbers(code string) string {
	lines := strings.Split(code, "\n")

	nonEmpty, numbered := 0, 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		if lineNumRe.MatchString(line) {
			numbered++
		}
	}
	if nonEmpty == 0 || numbered*2 < nonEmpty {
		return code
	}

	for i, line := range lines {
		lines[i] = lineNumRe.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}
