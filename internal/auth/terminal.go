package auth

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dtroode/cabinet/internal/model"
)

// TerminalPrompter reads a passcode from the controlling terminal without echo.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter prompts on out and reads from in.
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

// Prompt shows reason and reads one line. A non-terminal input cannot be trusted
// to come from the user, so the gate is reported unavailable. ctx is not observed
// once the read has started.
func (p *TerminalPrompter) Prompt(_ context.Context, reason string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: input is not a terminal", model.ErrAuthenticationUnavailable)
	}

	fmt.Fprintf(p.out, "%s\nPasscode: ", reason)
	passcode, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read passcode: %w", err)
	}
	return string(passcode), nil
}
