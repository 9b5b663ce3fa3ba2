package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/robinhood-cli/internal/ports"
)

// terminalPrompt collects login inputs line by line from the attached
// terminal.
type terminalPrompt struct {
	reader *bufio.Reader
	out    io.Writer
}

var _ ports.Prompt = (*terminalPrompt)(nil)

func newTerminalPrompt(in io.Reader, out io.Writer) *terminalPrompt {
	return &terminalPrompt{reader: bufio.NewReader(in), out: out}
}

func (p *terminalPrompt) Username(ctx context.Context) (string, error) {
	return p.ask(ctx, "Robinhood username: ")
}

func (p *terminalPrompt) Password(ctx context.Context) (string, error) {
	return p.ask(ctx, "Robinhood password: ")
}

func (p *terminalPrompt) MFACode(ctx context.Context) (string, error) {
	return p.ask(ctx, "Please type in the MFA code: ")
}

func (p *terminalPrompt) ChallengeCode(ctx context.Context) (string, error) {
	return p.ask(ctx, "Enter Robinhood code for validation: ")
}

func (p *terminalPrompt) ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
