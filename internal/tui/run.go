package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/provision"
)

// Run starts a provisioning session on the terminal and blocks until the
// user quits or ctx is canceled. It returns the navigation when the device
// connected, nil otherwise.
func Run(ctx context.Context, backend provision.Backend, opts provision.Options, info Info, progOpts ...tea.ProgramOption) (*provision.Navigation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The renderer needs the program and the model needs the controller,
	// so the renderer's target is bound once the program exists.
	relay := &lateSender{}
	ctrl := provision.New(backend, NewRenderer(relay), opts)
	info.Session = ctrl.Session()

	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	p := tea.NewProgram(NewModel(ctrl, info), progOpts...)
	relay.p = p

	go func() {
		err := ctrl.Run(ctx)
		p.Send(sessionEndedMsg{err: err})
	}()

	final, err := p.Run()
	cancel()
	<-ctrl.Done()

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("terminal UI failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, nil
	}
	if m.Err() != nil {
		logging.Warn("Provisioning session ended with error", zap.Error(m.Err()))
		return m.Navigation(), m.Err()
	}
	return m.Navigation(), nil
}

// lateSender forwards to a program assigned after construction.
type lateSender struct {
	p *tea.Program
}

func (s *lateSender) Send(msg tea.Msg) {
	s.p.Send(msg)
}
