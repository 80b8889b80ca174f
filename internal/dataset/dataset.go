package dataset

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Entropy136/intention-test-extension/internal/session"

	"go.uber.org/zap"
)

// Desc is a test intention split into its markdown sections. Sections the
// description omits stay empty.
type Desc struct {
	Objective       string
	Preconditions   string
	ExpectedResults string
}

var sectionRe = regexp.MustCompile(`(?m)^#\s*(.+?)\s*$`)

// DivideDesc splits a structured test description into its
// "# Objective" / "# Preconditions" / "# Expected Results" sections.
// Unknown headers are ignored; missing sections are tolerated.
func DivideDesc(desc string) Desc {
	var out Desc

	headers := sectionRe.FindAllStringSubmatchIndex(desc, -1)
	for i, h := range headers {
		name := strings.ToLower(desc[h[2]:h[3]])
		end := len(desc)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		body := strings.TrimSpace(desc[h[1]:end])
		switch name {
		case "objective":
			out.Objective = body
		case "preconditions":
			out.Preconditions = body
		case "expected results":
			out.ExpectedResults = body
		}
	}

	// A description without any recognized header is treated as the
	// objective itself.
	if out.Objective == "" && out.Preconditions == "" && out.ExpectedResults == "" {
		out.Objective = strings.TrimSpace(desc)
	}
	return out
}

// AddNewlineChar converts literal "\n" escapes, as they arrive in JSON
// string fields, into real newlines.
func AddNewlineChar(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// Builder turns a validated request into the prompt pair sent to the model.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a prompt builder.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger.Named("dataset")}
}

const systemPromptTmpl = `You are an expert Java test engineer. You write compilable, ` +
	`self-contained JUnit %d test classes. Reply with the complete test class ` +
	"inside a single ```java code block."

// BuildPrompt reads the focal file and assembles the system and user
// prompts for the first generation round.
func (b *Builder) BuildPrompt(data session.RawData, junitVersion int) (system, user string, err error) {
	source, err := os.ReadFile(data.FocalFilePath)
	if err != nil {
		return "", "", fmt.Errorf("read focal file: %w", err)
	}

	desc := DivideDesc(AddNewlineChar(data.TestDesc))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a JUnit %d test for the method `%s` in `%s`.\n\n",
		junitVersion, data.TargetFocalMethod, data.TargetFocalFile)
	if desc.Objective != "" {
		fmt.Fprintf(&sb, "Objective:\n%s\n\n", desc.Objective)
	}
	if desc.Preconditions != "" {
		fmt.Fprintf(&sb, "Preconditions:\n%s\n\n", desc.Preconditions)
	}
	if desc.ExpectedResults != "" {
		fmt.Fprintf(&sb, "Expected results:\n%s\n\n", desc.ExpectedResults)
	}
	fmt.Fprintf(&sb, "Source of `%s`:\n```java\n%s\n```\n", data.TargetFocalFile, string(source))

	b.logger.Debug("built generation prompt",
		zap.String("focal_method", data.TargetFocalMethod),
		zap.String("focal_file", data.TargetFocalFile),
		zap.Int("junit_version", junitVersion))

	return fmt.Sprintf(systemPromptTmpl, junitVersion), sb.String(), nil
}
