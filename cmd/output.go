package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/dtroode/cabinet/internal/crypto"
	"github.com/dtroode/cabinet/internal/model"
)

// describeFailure renders an error so that a value that could not be revealed is
// never confused with an empty value.
func describeFailure(err error) string {
	switch crypto.Classify(err) {
	case crypto.FailureCiphertext:
		if errors.Is(err, model.ErrKeyMismatch) {
			return "could not decrypt: the master key changed since this value was saved"
		}
		return "could not decrypt: the stored value is corrupted or was sealed with another key"
	case crypto.FailureDecoding:
		return "could not decrypt: " + err.Error()
	case crypto.FailureKey:
		return "could not decrypt: " + err.Error()
	case crypto.FailureAuthentication:
		if errors.Is(err, model.ErrAuthenticationUnavailable) {
			return "authentication unavailable: set a passcode with `cabinet passcode set` and run from a terminal"
		}
		return "authentication failed"
	}

	switch {
	case errors.Is(err, model.ErrAmbiguous):
		return err.Error() + ", use the id instead"
	case errors.Is(err, model.ErrStorageDisabled):
		return "backups are disabled, set MINIO_ENABLED=true"
	}
	return err.Error()
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("✗")+" "+describeFailure(err))
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, color.GreenString("✓")+" "+msg)
}

func printPair(w io.Writer, p model.Pair) {
	var flags []string
	if p.IsFavorite {
		flags = append(flags, color.YellowString("★"))
	}
	if p.IsHidden {
		flags = append(flags, color.MagentaString("hidden"))
	}
	line := color.CyanString(p.ID.String()) + "  " + p.Key
	if len(flags) > 0 {
		line += "  " + strings.Join(flags, " ")
	}
	if p.LastUsedAt != nil {
		line += "  " + color.HiBlackString("used "+p.LastUsedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(w, line)
}

func printDrawer(w io.Writer, d model.Drawer) {
	line := color.CyanString(d.ID.String()) + "  " + d.Name
	if d.Purpose != "" {
		line += "  " + color.HiBlackString(d.Purpose)
	}
	fmt.Fprintln(w, line)
}

var stdin = newSecretReader(os.Stdin)

// secretReader reads values without echo from a terminal, or line by line from piped input.
type secretReader struct {
	in    *os.File
	lines *bufio.Reader
}

func newSecretReader(in *os.File) *secretReader {
	return &secretReader{in: in, lines: bufio.NewReader(in)}
}

func (r *secretReader) ReadSecret(out io.Writer, prompt string) (string, error) {
	fd := int(r.in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read value: %w", err)
		}
		return string(b), nil
	}

	line, err := r.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
