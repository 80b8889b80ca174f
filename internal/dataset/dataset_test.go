package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Entropy136/intention-test-extension/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDivideDesc_FullFormat(t *testing.T) {
	desc := `# Objective
Verify the parse method works correctly.

# Preconditions
1. The parser is initialized.
2. Input string is valid.

# Expected Results
1. Returns parsed output.
2. No exceptions thrown.`

	got := DivideDesc(desc)

	assert.Equal(t, "Verify the parse method works correctly.", got.Objective)
	assert.Contains(t, got.Preconditions, "parser is initialized")
	assert.Contains(t, got.ExpectedResults, "No exceptions thrown")
}

func TestDivideDesc_MissingSection(t *testing.T) {
	desc := `# Objective
Just test something.

# Expected Results
It should work.`

	got := DivideDesc(desc)

	assert.Equal(t, "Just test something.", got.Objective)
	assert.Empty(t, got.Preconditions)
	assert.Equal(t, "It should work.", got.ExpectedResults)
}

func TestDivideDesc_NoHeaders(t *testing.T) {
	got := DivideDesc("adds two numbers")
	assert.Equal(t, "adds two numbers", got.Objective)
}

func TestAddNewlineChar(t *testing.T) {
	assert.Equal(t, "line1\nline2", AddNewlineChar(`line1\nline2`))
	assert.Equal(t, "plain", AddNewlineChar("plain"))
}

func TestBuilder_BuildPrompt(t *testing.T) {
	tmp := t.TempDir()
	focal := filepath.Join(tmp, "Calc.java")
	require.NoError(t, os.WriteFile(focal, []byte("public class Calc { int add(int a, int b) { return a + b; } }"), 0o644))

	b := NewBuilder(zap.NewNop())
	system, user, err := b.BuildPrompt(session.RawData{
		TargetFocalMethod: "add",
		TargetFocalFile:   "Calc.java",
		TestDesc:          "# Objective\nadds two numbers",
		ProjectPath:       tmp,
		FocalFilePath:     focal,
	}, 5)
	require.NoError(t, err)

	assert.Contains(t, system, "JUnit 5")
	assert.Contains(t, user, "`add`")
	assert.Contains(t, user, "adds two numbers")
	assert.Contains(t, user, "public class Calc")
}

func TestBuilder_BuildPromptMissingFocalFile(t *testing.T) {
	b := NewBuilder(zap.NewNop())
	_, _, err := b.BuildPrompt(session.RawData{
		TargetFocalMethod: "add",
		TargetFocalFile:   "Calc.java",
		TestDesc:          "desc",
		ProjectPath:       "/p",
		FocalFilePath:     "/nonexistent/Calc.java",
	}, 4)
	assert.ErrorContains(t, err, "read focal file")
}
