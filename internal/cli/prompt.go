package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/byflash/drive-cli/internal/gate"
)

// terminalPrompter reads passwords from the terminal with echo disabled.
// It implements gate.Prompter; an empty line or EOF counts as cancelling.
type terminalPrompter struct{}

func (terminalPrompter) PromptPassword(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", gate.ErrCancelled
	}

	fmt.Fprintf(os.Stderr, "%s (empty to cancel): ", label)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", gate.ErrCancelled
		}
		password := strings.TrimSpace(string(raw))
		if password == "" {
			return "", gate.ErrCancelled
		}
		return password, nil
	}

	// Piped stdin: read a plain line, used by tests and scripts.
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", gate.ErrCancelled
	}
	password := strings.TrimSpace(line)
	if password == "" {
		return "", gate.ErrCancelled
	}
	return password, nil
}

// promptLine reads one visible line from stdin.
func promptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(question string) bool {
	answer, err := promptLine(question + " [y/N]")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
