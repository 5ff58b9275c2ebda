package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// readSecret prompts on stderr and reads one line from stdin without echo when
// stdin is a terminal. The caller owns the returned slice and must clear it.
func readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if len(raw) == 0 {
			return nil, errors.New("input cannot be empty")
		}
		return raw, nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	secret := bytes.TrimSpace(line)
	out := make([]byte, len(secret))
	copy(out, secret)
	clear(line)
	if len(out) == 0 {
		return nil, errors.New("input cannot be empty")
	}
	return out, nil
}
