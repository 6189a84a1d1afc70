package console

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// TUIConsole runs the session in a Bubble Tea program.
// Falls back to the plain console if the program fails to start.
type TUIConsole struct {
	opts     Options
	fallback *PlainConsole
}

// Run starts the Bubble Tea program and blocks until it quits.
func (c *TUIConsole) Run(ctx context.Context) error {
	model := NewModel(c.opts.Executor, c.opts.Keywords)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(c.opts.In),
		tea.WithOutput(c.opts.Out),
		tea.WithAltScreen(),
	)

	c.opts.Logger.Info("console started", zap.String("mode", "tui"))
	final, err := p.Run()
	switch {
	case err == nil:
		if m, ok := final.(Model); ok && m.Farewell() != "" {
			// The alt screen is gone; leave the farewell on the terminal.
			_, _ = c.opts.Out.Write([]byte(m.Farewell() + "\n"))
		}
		return nil
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		c.opts.Logger.Info("console interrupted")
		return nil
	default:
		c.opts.Logger.Warn("tui failed, falling back to plain console", zap.Error(err))
		return c.fallback.Run(ctx)
	}
}
