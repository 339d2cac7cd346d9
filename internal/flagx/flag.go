// Package flagx holds helpers for command lines typed into the interactive
// shell.
package flagx

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned by Split for a line with an open quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Split breaks a shell line into arguments. Whitespace separates arguments;
// single and double quotes group text, and a backslash escapes the next
// character outside single quotes.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// FilterArgs returns the arguments that belong to the listed flags, with
// their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
func FilterArgs(args []string, flags []string) []string {
	kept, _ := partition(args, flags)
	return kept
}

// DropArgs is the complement of FilterArgs: it returns args without the
// listed flags and their values.
func DropArgs(args []string, flags []string) []string {
	_, rest := partition(args, flags)
	return rest
}

func partition(args []string, flags []string) (matched, rest []string) {
	known := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		known[f] = struct{}{}
	}

	matched = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := known[name]; ok {
				matched = append(matched, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := known[arg]; !ok {
			rest = append(rest, arg)
			continue
		}
		matched = append(matched, arg)
		// a following non-flag argument is the value
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			matched = append(matched, args[i+1])
			i++
		}
	}
	return matched, rest
}
