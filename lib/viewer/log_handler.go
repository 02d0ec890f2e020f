// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// Sender is the part of *tea.Program the log handler needs.
type Sender interface {
	Send(message tea.Msg)
}

// LogHandler is a slog.Handler that routes log records into the
// viewer's status bar. Records below the configured level are
// dropped, as are records arriving before SetProgram is called.
//
// Handlers derived via WithAttrs/WithGroup share the same program
// pointer, so a single SetProgram call reaches every derived handler.
type LogHandler struct {
	level   slog.Level
	program *atomic.Pointer[Sender]
	attrs   []slog.Attr
	groups  []string
}

// NewLogHandler creates a handler that delivers records at or above
// level. Call SetProgram after creating the tea.Program.
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{
		level:   level,
		program: &atomic.Pointer[Sender]{},
	}
}

// SetProgram sets the program that receives log messages. Safe to
// call from any goroutine.
func (handler *LogHandler) SetProgram(program Sender) {
	handler.program.Store(&program)
}

// Enabled reports whether the handler is interested in records at the
// given level.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)" and sends
// it to the program.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}

	var attrParts []string
	prefix := strings.Join(handler.groups, ".")
	if prefix != "" {
		prefix += "."
	}
	for _, attr := range handler.attrs {
		attrParts = append(attrParts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})

	summary := record.Message
	if len(attrParts) > 0 {
		summary += " (" + strings.Join(attrParts, ", ") + ")"
	}

	(*program).Send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs returns a new handler with the given attributes appended.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append(sliceClone(handler.attrs), attrs...),
		groups:  sliceClone(handler.groups),
	}
}

// WithGroup returns a new handler with the given group name appended.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   sliceClone(handler.attrs),
		groups:  append(sliceClone(handler.groups), name),
	}
}

// sliceClone returns a shallow copy of a slice. Avoids aliasing when
// building derived handlers.
func sliceClone[T any](source []T) []T {
	if source == nil {
		return nil
	}
	result := make([]T, len(source))
	copy(result, source)
	return result
}
