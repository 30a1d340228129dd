// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"sfquery/cli/internal/terminal"
)

// TerminalPrompter reads a username from In and a password from the terminal
// without echo. When In is not a terminal the password is read as a plain line.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter prompts on stdin/stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (p *TerminalPrompter) Prompt(ctx context.Context) (Credentials, error) {
	if err := ctx.Err(); err != nil {
		return Credentials{}, err
	}
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}

	const userPrompt = "Username: "
	fmt.Fprint(p.Out, userPrompt)
	username, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && username != "") {
		return Credentials{}, fmt.Errorf("read username: %w", err)
	}
	username = strings.TrimSpace(username)

	fmt.Fprint(p.Out, "Password: ")
	var password string
	fd := int(p.In.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.Out)
		if err != nil {
			return Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = string(b)
		// Drop the username line once both values are in.
		terminal.ClearPreviousLines(p.Out, len(userPrompt)+len(username))
	} else {
		line, err := p.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	return Credentials{Username: username, Password: password}, nil
}
