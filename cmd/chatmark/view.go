// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/chatmark/lib/config"
	"github.com/bureau-foundation/chatmark/lib/imagefetch"
	"github.com/bureau-foundation/chatmark/lib/termrender"
	"github.com/bureau-foundation/chatmark/lib/viewer"
)

type viewerParams struct {
	source    string
	fromStdin bool
	config    *config.Config
	render    termrender.Options
	stream    time.Duration
	level     slog.Level
	logOutput string
	// textLogger receives records before the program starts and
	// after it exits, when the status bar is not on screen.
	textLogger *slog.Logger
}

// runViewer runs the interactive viewer until the user quits.
//
// Background logging (image fetches, the viewer itself) is routed
// through a viewer.LogHandler that shows records in the status bar
// instead of writing to stderr, which would corrupt the alt-screen
// display. --log-output additionally captures every record to a JSON
// file.
func runViewer(params viewerParams) error {
	statusHandler := viewer.NewLogHandler(params.level)
	var handler slog.Handler = statusHandler
	if params.logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(params.logOutput)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", params.logOutput, err)
		}
		defer closeFile()
		handler = fanoutHandler{statusHandler, fileHandler}
	}
	logger := slog.New(handler)

	changes := make(chan imagefetch.Key, 16)
	manager := imagefetch.NewManager(imagefetch.Config{
		Policy:   params.config.Policies().Images,
		Fetcher:  params.config.Fetcher(),
		Timeout:  params.config.FetchTimeout(),
		OnChange: viewer.ChangeNotifier(changes),
		Logger:   logger.With("component", "imagefetch"),
	})
	defer manager.Close()

	model := viewer.NewModel(viewer.Config{
		Source:         params.source,
		StreamInterval: params.stream,
		Render:         params.render,
		Images:         manager,
		ImageChanges:   changes,
		Logger:         logger.With("component", "viewer"),
	})

	programOptions := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if params.fromStdin {
		// Standard input held the document; keys come from the terminal.
		programOptions = append(programOptions, tea.WithInputTTY())
	}
	program := tea.NewProgram(model, programOptions...)
	statusHandler.SetProgram(program)

	params.textLogger.Debug("starting viewer", "bytes", len(params.source), "stream", params.stream)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
