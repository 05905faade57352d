package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tower/internal/driver"
	"tower/internal/source"
	"tower/internal/ui"
)

type resolveOutcome struct {
	fs      *source.FileSet
	results []driver.WorldResult
	err     error
}

// resolveWithUI runs a batch while a progress view renders its events.
// Quitting the view cancels the batch.
func resolveWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*source.FileSet, []driver.WorldResult, error) {
	files, err := driver.ListWorldFiles(paths...)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan resolveOutcome, 1)
	opts.Progress = func(ev driver.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		fs, results, err := driver.ResolvePaths(ctx, files, opts)
		outcomeCh <- resolveOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
