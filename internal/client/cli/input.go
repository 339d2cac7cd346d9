package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetDefaultText is GetSimpleText with a current value: an empty answer keeps
// it.
func GetDefaultText(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, current)
	}
	v, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// GetSecret reads a value without echo when stdin is a terminal, and as a
// plain line otherwise (pipes, tests).
func GetSecret(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return GetSimpleText(reader, prompt, w)
	}
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	b, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// GetLines prints a prompt to w and reads lines until an empty line is
// entered (i.e., the user presses Enter twice).
func GetLines(reader *bufio.Reader, prompt string, w io.Writer) ([]string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return nil, err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}
		if line == "" || err != nil {
			break
		}
	}
	return lines, nil
}
