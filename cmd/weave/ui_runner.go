package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"weave/internal/driver"
	"weave/internal/source"
	"weave/internal/ui"
)

type compileOutcome struct {
	files   *source.FileSet
	results []driver.Result
	err     error
}

// compileWithUI runs the driver while the progress view consumes its events.
func compileWithUI(ctx context.Context, title string, paths []string, opts driver.Options) (*source.FileSet, []driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		o := opts
		o.Progress = driver.ChannelSink{Ch: events}
		files, results, err := driver.CompileFiles(ctx, paths, o)
		outcomeCh <- compileOutcome{files: files, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI упал: дочитываем события, чтобы воркеры не встали
		for range events {
		}
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.files, outcome.results, uiErr
	}
	return outcome.files, outcome.results, outcome.err
}
