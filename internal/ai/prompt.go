package ai

import (
	"fmt"
	"strings"
)

// BuildPrompt assembles the user-facing prompt from the assignment question
// and the optional attached-file summary.
func BuildPrompt(question, fileInfo string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Assignment question: %s\n\n", question)
	if fileInfo != "" {
		fmt.Fprintf(&sb, "Attached file information:\n%s\n", fileInfo)
	}
	sb.WriteString("Please provide the exact answer to be entered in the assignment.")
	return sb.String()
}
