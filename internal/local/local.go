// Package local resolves questions that must be answered on the host rather
// than by the model, such as checksums of the uploaded file or outputs of
// specific local commands.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"assignmate/internal/files"
)

// prettierVersion pins the formatter used for checksum questions so the
// output is reproducible across hosts.
const prettierVersion = "3.4.2"

// Resolver decides whether a question can be answered locally and computes
// the answer when it can.
type Resolver struct {
	log *slog.Logger
}

// NewResolver creates a Resolver that logs through the provided logger.
func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{log: log.With("component", "local_resolver")}
}

// Resolve inspects the question and the uploaded file and returns a locally
// computed answer when one of the host-side rules applies. The second return
// value reports whether the question was handled. Command failures are folded
// into the answer text, matching how generated answers report errors.
func (r *Resolver) Resolve(ctx context.Context, question, filePath string, fileType files.Type) (string, bool) {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "prettier") && strings.Contains(q, "sha256sum") && fileType == files.TypeMarkdown:
		cmd := fmt.Sprintf("npx -y prettier@%s %q | sha256sum", prettierVersion, filePath)
		return r.runCommand(ctx, cmd), true

	case strings.Contains(q, "sha256sum") && fileType == files.TypeMarkdown:
		digest, err := files.SHA256(filePath)
		if err != nil {
			r.log.ErrorContext(ctx, "Failed to hash uploaded file", "path", filePath, "error", err)
			return fmt.Sprintf("Error calculating SHA256: %v", err), true
		}
		return digest, true

	case strings.Contains(q, "code -s"):
		return r.runCommand(ctx, "code -s"), true
	}

	return "", false
}

// runCommand executes a shell command and returns its trimmed stdout, or an
// error description in the same shape the rest of the answer pipeline uses.
func (r *Resolver) runCommand(ctx context.Context, command string) string {
	r.log.DebugContext(ctx, "Running local command", "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.log.WarnContext(ctx, "Local command failed", "command", command, "error", err, "stderr", stderr.String())
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Sprintf("Error: Command failed with exit code %d. Output: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Sprintf("Error executing command: %v", err)
	}

	return strings.TrimSpace(stdout.String())
}
