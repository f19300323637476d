package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/stellium/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the explorer and blocks until the user quits or ctx is canceled.
// A chart without points is rejected before the terminal is taken over.
func Run(ctx context.Context, data Data, opts ...Option) error {
	if len(data.Chart) == 0 {
		return common.ErrNoPoints
	}

	p := tea.NewProgram(New(data, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		return fmt.Errorf("explorer error: %w", err)
	}
	return nil
}
