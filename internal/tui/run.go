package tui

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"ezlockin/internal/app"
)

// Run starts the terminal timer for opened and blocks until the user quits.
func Run(opened *app.App) error {
	guard, err := opened.Lock()
	if err != nil {
		return err
	}
	defer guard.Release()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	machine := opened.NewMachine()
	program := tea.NewProgram(New(machine, machine.Subscribe(256)), tea.WithAltScreen(), tea.WithContext(ctx))

	runErr := make(chan error, 1)
	go func() {
		runErr <- opened.Run(ctx, machine, opened.LoadSounds(), func() { program.Send(ConfigChangedMsg{}) })
	}()

	_, programErr := program.Run()
	if errors.Is(programErr, tea.ErrProgramKilled) {
		programErr = nil
	}
	quitErr := machine.Quit()
	cancel()
	return errors.Join(programErr, quitErr, <-runErr)
}
