package ai

import (
	"fmt"
	"strings"

	"github.com/CosmoTheDev/zwischen/models"
)

// Project describes the scanned project for the prompt header. Zero fields
// render as "unknown".
type Project struct {
	Type     string
	Language string
}

// BuildPrompt renders findings as 1-based numbered blocks and asks for a JSON
// object keyed by the same numbers.
func BuildPrompt(findings []models.Finding, project Project) string {
	var sb strings.Builder

	sb.WriteString("You are a senior security engineer reviewing security scan findings. ")
	sb.WriteString("Analyze the following findings and provide:\n\n")
	sb.WriteString("1. Prioritization: Which findings are most critical and should be addressed first?\n")
	sb.WriteString("2. False positives: Are any of these false positives that can be safely ignored?\n")
	sb.WriteString("3. Fix suggestions: For each real finding, provide a clear, actionable fix suggestion.\n\n")
	fmt.Fprintf(&sb, "Project type: %s, Language: %s\n\n", orUnknown(project.Type), orUnknown(project.Language))

	sb.WriteString("Findings:\n")
	for i, f := range findings {
		fmt.Fprintf(&sb, "%d. [%s] %s:%d\n", i+1, strings.ToUpper(f.Severity.String()), f.Location.File, f.Location.Line)
		fmt.Fprintf(&sb, "   Rule: %s\n", f.RuleID)
		fmt.Fprintf(&sb, "   Message: %s\n", f.Message)
		if snippet := strings.TrimRight(f.CodeSnippet, "\n"); snippet != "" {
			sb.WriteString("   Code:\n")
			for _, line := range strings.Split(snippet, "\n") {
				sb.WriteString("      " + line + "\n")
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Please respond in the following JSON format for each finding (by index number):
{
  "1": {
    "priority": "high|medium|low",
    "is_false_positive": false,
    "fix_suggestion": "Clear explanation of how to fix this issue",
    "risk_explanation": "Why this is a security risk"
  },
  ...
}

If a finding is a false positive, set is_false_positive to true and explain why.
Respond ONLY with the JSON object.
`)
	return sb.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
