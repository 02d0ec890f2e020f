// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/chatmark/lib/imagefetch"
	"github.com/bureau-foundation/chatmark/lib/markdown"
)

type fakeImages struct {
	replaced     [][]markdown.Image
	loadAllCalls int
	started      int
	states       map[string]imagefetch.Image
}

func (images *fakeImages) Replace(current []markdown.Image) []imagefetch.Key {
	images.replaced = append(images.replaced, current)
	keys := make([]imagefetch.Key, len(current))
	for index, image := range current {
		keys[index] = imagefetch.KeyFor(image.URL)
	}
	return keys
}

func (images *fakeImages) LoadAll() int {
	images.loadAllCalls++
	return images.started
}

func (images *fakeImages) Lookup(url string) (imagefetch.Image, bool) {
	image, ok := images.states[url]
	return image, ok
}

func sized(t *testing.T, model Model, width, height int) Model {
	t.Helper()
	updated, _ := model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model)
}

func visible(model Model) string {
	return ansi.Strip(model.View())
}

func keyPress(character rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}}
}

func TestViewEmptyBeforeWindowSize(t *testing.T) {
	model := NewModel(Config{Source: "hello"})
	if view := model.View(); view != "" {
		t.Errorf("expected empty view before the first WindowSizeMsg, got %q", view)
	}
}

func TestWindowSizeRenders(t *testing.T) {
	model := sized(t, NewModel(Config{Source: "# Hello\n\nworld"}), 40, 10)
	view := visible(model)
	if !strings.Contains(view, "Hello") || !strings.Contains(view, "world") {
		t.Errorf("expected rendered content, got:\n%s", view)
	}
	if !strings.Contains(view, "q quit") {
		t.Errorf("expected help line, got:\n%s", view)
	}
}

func TestResizeRerendersAtNewWidth(t *testing.T) {
	source := strings.Repeat("word ", 30)
	model := sized(t, NewModel(Config{Source: source}), 100, 20)
	if !strings.Contains(visible(model), "word") {
		t.Fatal("expected content before resize")
	}

	model = sized(t, model, 20, 20)
	for _, line := range strings.Split(visible(model), "\n") {
		if strings.Contains(line, "word") && ansi.StringWidth(line) > 20 {
			t.Errorf("line exceeds width 20 after resize: %q", line)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	model := NewModel(Config{Source: "x"})
	for _, message := range []tea.KeyMsg{keyPress('q'), {Type: tea.KeyCtrlC}} {
		_, command := model.Update(message)
		if command == nil {
			t.Fatalf("expected quit command for %q", message.String())
		}
		if _, ok := command().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg for %q", message.String())
		}
	}
}

func TestStreamRevealsOneLinePerTick(t *testing.T) {
	model := NewModel(Config{Source: "one\n\ntwo\n", StreamInterval: time.Millisecond})
	if model.Init() == nil {
		t.Fatal("expected Init to schedule a stream tick")
	}
	model = sized(t, model, 40, 10)
	if view := visible(model); strings.Contains(view, "one") {
		t.Fatalf("expected nothing revealed before the first tick, got:\n%s", view)
	}

	updated, command := model.Update(streamTickMsg{})
	model = updated.(Model)
	view := visible(model)
	if !strings.Contains(view, "one") || strings.Contains(view, "two") {
		t.Errorf("expected only the first line after one tick, got:\n%s", view)
	}
	if command == nil {
		t.Fatal("expected another tick while the stream has more lines")
	}

	for ticks := 0; ticks < 10 && command != nil; ticks++ {
		updated, command = model.Update(streamTickMsg{})
		model = updated.(Model)
	}
	if command != nil {
		t.Error("expected ticking to stop once the source is fully revealed")
	}
	if view := visible(model); !strings.Contains(view, "two") {
		t.Errorf("expected full source revealed, got:\n%s", view)
	}
}

func TestNextLineEnd(t *testing.T) {
	tests := []struct {
		source string
		offset int
		want   int
	}{
		{source: "ab\ncd", offset: 0, want: 3},
		{source: "ab\ncd", offset: 3, want: 5},
		{source: "ab\n", offset: 3, want: 3},
		{source: "", offset: 0, want: 0},
	}
	for _, tt := range tests {
		if got := nextLineEnd(tt.source, tt.offset); got != tt.want {
			t.Errorf("nextLineEnd(%q, %d): expected %d, got %d", tt.source, tt.offset, tt.want, got)
		}
	}
}

func TestRefreshReplacesImages(t *testing.T) {
	images := &fakeImages{}
	model := sized(t, NewModel(Config{
		Source: "![a](https://img.example/a.png)\n\n![b](https://img.example/b.png)",
		Images: images,
	}), 40, 10)

	if len(images.replaced) != 1 {
		t.Fatalf("expected one Replace call, got %d", len(images.replaced))
	}
	if got := len(images.replaced[0]); got != 2 {
		t.Errorf("expected 2 images handed to the manager, got %d", got)
	}
	_ = model
}

func TestLoadImagesKey(t *testing.T) {
	images := &fakeImages{started: 1}
	model := sized(t, NewModel(Config{Source: "![a](https://img.example/a.png)", Images: images}), 40, 10)
	replaced := len(images.replaced)

	updated, _ := model.Update(keyPress('i'))
	model = updated.(Model)
	if images.loadAllCalls != 1 {
		t.Errorf("expected LoadAll once, got %d", images.loadAllCalls)
	}
	if len(images.replaced) != replaced+1 {
		t.Errorf("expected a re-render after starting fetches")
	}

	images.started = 0
	model.Update(keyPress('i'))
	if len(images.replaced) != replaced+1 {
		t.Errorf("expected no re-render when nothing started")
	}
}

func TestImageChangeRerenders(t *testing.T) {
	const url = "https://img.example/a.png"
	images := &fakeImages{states: map[string]imagefetch.Image{
		url: {State: imagefetch.StateLoading},
	}}
	changes := make(chan imagefetch.Key, 1)
	model := sized(t, NewModel(Config{
		Source:       "![cat](" + url + ")",
		Images:       images,
		ImageChanges: changes,
	}), 60, 10)
	if view := visible(model); !strings.Contains(view, "[loading image: cat]") {
		t.Fatalf("expected loading placeholder, got:\n%s", view)
	}

	images.states[url] = imagefetch.Image{State: imagefetch.StateLoaded, ContentType: "image/png", Data: []byte{1, 2, 3}}
	updated, command := model.Update(imageChangedMsg{key: imagefetch.KeyFor(url)})
	model = updated.(Model)
	if view := visible(model); !strings.Contains(view, "[image: cat] image/png, 3 B") {
		t.Errorf("expected loaded placeholder, got:\n%s", view)
	}
	if command == nil {
		t.Fatal("expected the viewer to keep listening for image changes")
	}

	changes <- imagefetch.KeyFor(url)
	if message, ok := command().(imageChangedMsg); !ok || message.key != imagefetch.KeyFor(url) {
		t.Errorf("expected imageChangedMsg from listener, got %#v", message)
	}
}

func TestChangeNotifierNeverBlocks(t *testing.T) {
	changes := make(chan imagefetch.Key, 1)
	notify := ChangeNotifier(changes)
	notify(imagefetch.KeyFor("a"))
	notify(imagefetch.KeyFor("b"))
	if len(changes) != 1 {
		t.Errorf("expected one buffered change, got %d", len(changes))
	}
}

func TestStatusMessageFades(t *testing.T) {
	model := sized(t, NewModel(Config{Source: "x"}), 40, 5)
	updated, command := model.Update(logRecordMsg{Summary: "fetch failed", Level: slog.LevelWarn})
	model = updated.(Model)
	if command == nil {
		t.Fatal("expected a fade timer")
	}
	if view := visible(model); !strings.Contains(view, "fetch failed") {
		t.Errorf("expected status message, got:\n%s", view)
	}

	// A fade scheduled for an older message leaves a newer one alone.
	updated, _ = model.Update(logRecordMsg{Summary: "second", Level: slog.LevelWarn})
	model = updated.(Model)
	updated, _ = model.Update(statusFadeMsg{sequence: 1})
	model = updated.(Model)
	if view := visible(model); !strings.Contains(view, "second") {
		t.Errorf("expected newer status to survive stale fade, got:\n%s", view)
	}

	updated, _ = model.Update(statusFadeMsg{sequence: 2})
	model = updated.(Model)
	if view := visible(model); strings.Contains(view, "second") {
		t.Errorf("expected status cleared, got:\n%s", view)
	}
}

type recordingSender struct {
	messages []tea.Msg
}

func (sender *recordingSender) Send(message tea.Msg) {
	sender.messages = append(sender.messages, message)
}

func TestLogHandler(t *testing.T) {
	handler := NewLogHandler(slog.LevelWarn)
	logger := slog.New(handler)

	logger.Warn("dropped before SetProgram")

	sender := &recordingSender{}
	handler.SetProgram(sender)

	logger.Info("below level")
	logger.Warn("image fetch failed", "url", "https://x/a.png")
	logger.With("component", "viewer").WithGroup("fetch").Error("boom", "attempt", 2)

	if len(sender.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d: %#v", len(sender.messages), sender.messages)
	}
	first := sender.messages[0].(logRecordMsg)
	if first.Summary != "image fetch failed (url=https://x/a.png)" {
		t.Errorf("unexpected summary %q", first.Summary)
	}
	second := sender.messages[1].(logRecordMsg)
	if second.Summary != "boom (component=viewer, fetch.attempt=2)" || second.Level != slog.LevelError {
		t.Errorf("unexpected record %#v", second)
	}
}
