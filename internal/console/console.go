// Package console runs the interactive session: a Bubble Tea terminal UI
// when attached to a terminal, a plain prompt loop otherwise.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/phonebook/internal/command"
)

// Prompt precedes every input line of the plain console.
const Prompt = ">>> "

// Executor runs one input line. *command.Dispatcher satisfies it.
type Executor interface {
	Execute(line string) command.Result
}

// Console runs an interactive session until an exit command, end of input,
// or cancellation of ctx. Interruption is a normal end, not an error.
type Console interface {
	Run(ctx context.Context) error
}

// Options configures console creation.
type Options struct {
	In       io.Reader   // Input source (default: os.Stdin).
	Out      io.Writer   // Output destination (default: os.Stdout).
	NoTUI    bool        // Force the plain console even on a TTY.
	Executor Executor    // Runs each line.
	Keywords []string    // Offered as completions by the TUI.
	Logger   *zap.Logger // Session events (default: no-op).
}

// NewConsole returns a TUI console when Out is a TTY, or a plain console
// otherwise. NoTUI overrides TTY detection.
func NewConsole(opts Options) Console {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	plain := &PlainConsole{in: opts.In, out: opts.Out, exec: opts.Executor, log: opts.Logger}
	if opts.NoTUI || !isTTY(opts.Out) {
		return plain
	}
	return &TUIConsole{opts: opts, fallback: plain}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainConsole reads one command per line after a ">>> " prompt.
type PlainConsole struct {
	in   io.Reader
	out  io.Writer
	exec Executor
	log  *zap.Logger
}

// NewPlainConsole creates a PlainConsole.
func NewPlainConsole(in io.Reader, out io.Writer, exec Executor) *PlainConsole {
	return &PlainConsole{in: in, out: out, exec: exec, log: zap.NewNop()}
}

// Run prompts, executes and prints until an exit command or end of input.
func (c *PlainConsole) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	c.log.Info("console started", zap.String("mode", "plain"))
	for {
		_, _ = fmt.Fprint(c.out, Prompt)
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(c.out)
			c.log.Info("console interrupted")
			return nil
		case line, ok := <-lines:
			if !ok {
				_, _ = fmt.Fprintln(c.out)
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("console: reading input: %w", err)
					}
				default:
				}
				c.log.Info("console input closed")
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			res := c.exec.Execute(line)
			_, _ = fmt.Fprintln(c.out, res.Output)
			if res.Exit {
				return nil
			}
		}
	}
}
