package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// readLine prints prompt to w and reads one trimmed line
func (a *app) readLine(w io.Writer, prompt string) (string, error) {
	line, err := a.readRawLine(w, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readRawLine prints prompt to w and reads one line with only its line
// ending removed
func (a *app) readRawLine(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

// readSecret reads a password without echo when stdin is a terminal and as
// a raw line otherwise, so it can be piped. Spaces are part of the password.
func (a *app) readSecret(w io.Writer, prompt string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		return a.readRawLine(w, prompt)
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(f.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// readBody returns the text argument, or all of stdin when it is "-"
func (a *app) readBody(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	b, err := io.ReadAll(a.reader)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
