// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/chatmark/lib/imagefetch"
	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/termrender"
)

// Images is the image manager the viewer drives.
// [imagefetch.Manager] implements it.
type Images interface {
	Replace(images []markdown.Image) []imagefetch.Key
	LoadAll() int
	Lookup(url string) (imagefetch.Image, bool)
}

// Config configures a Model.
type Config struct {
	// Source is the complete markdown text.
	Source string

	// StreamInterval, when positive, reveals Source one line per
	// interval instead of all at once.
	StreamInterval time.Duration

	// Render configures the terminal renderer. Width is replaced by
	// the window width once it is known.
	Render termrender.Options

	// Images may be nil, in which case images show their policy
	// decision and never load.
	Images Images

	// ImageChanges delivers keys whose state changed. Use
	// [ChangeNotifier] to feed it from the image manager.
	ImageChanges <-chan imagefetch.Key

	// Logger defaults to a discard logger.
	Logger *slog.Logger
}

// ChangeNotifier returns an OnChange callback for
// [imagefetch.Config] that forwards keys to changes without ever
// blocking the fetch goroutine. When changes is full the key is
// dropped; the next delivered change re-renders every image anyway.
func ChangeNotifier(changes chan<- imagefetch.Key) func(imagefetch.Key) {
	return func(key imagefetch.Key) {
		select {
		case changes <- key:
		default:
		}
	}
}

// streamTickMsg reveals the next line of a streamed source.
type streamTickMsg struct{}

// imageChangedMsg reports that an image changed state.
type imageChangedMsg struct {
	key imagefetch.Key
}

// statusFadeDelay is how long a status message stays before the help
// line returns.
const statusFadeDelay = 5 * time.Second

// statusFadeMsg clears the status message it was scheduled for.
type statusFadeMsg struct {
	sequence int
}

// Model is the bubbletea model of the viewer.
type Model struct {
	keys     KeyMap
	renderer *termrender.Renderer
	images   Images
	changes  <-chan imagefetch.Key
	logger   *slog.Logger

	source         string
	revealed       int
	streamInterval time.Duration

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	items []markdown.RenderItem

	status         string
	statusLevel    slog.Level
	statusSequence int

	helpStyle   lipgloss.Style
	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

// NewModel creates a viewer model.
func NewModel(config Config) Model {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	renderer := termrender.New(config.Render)
	if config.Images != nil {
		renderer.SetStates(config.Images)
	}

	revealed := len(config.Source)
	if config.StreamInterval > 0 {
		revealed = 0
	}

	theme := termrender.DefaultTheme
	return Model{
		keys:           DefaultKeyMap,
		renderer:       renderer,
		images:         config.Images,
		changes:        config.ImageChanges,
		logger:         logger,
		source:         config.Source,
		revealed:       revealed,
		streamInterval: config.StreamInterval,
		viewport:       viewport.New(renderer.Width(), 0),
		helpStyle:      lipgloss.NewStyle().Foreground(theme.FaintText),
		statusStyle:    lipgloss.NewStyle().Foreground(theme.NormalText),
		errorStyle:     lipgloss.NewStyle().Foreground(theme.ImageFailedForeground),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	var commands []tea.Cmd
	if model.changes != nil {
		commands = append(commands, listenForImageChange(model.changes))
	}
	if model.streaming() {
		commands = append(commands, model.streamTick())
	}
	return tea.Batch(commands...)
}

// listenForImageChange returns a tea.Cmd that blocks until a key
// arrives on the channel, then delivers it as an imageChangedMsg.
func listenForImageChange(channel <-chan imagefetch.Key) tea.Cmd {
	return func() tea.Msg {
		key, ok := <-channel
		if !ok {
			return nil
		}
		return imageChangedMsg{key: key}
	}
}

func (model Model) streaming() bool {
	return model.streamInterval > 0 && model.revealed < len(model.source)
}

func (model Model) streamTick() tea.Cmd {
	return tea.Tick(model.streamInterval, func(time.Time) tea.Msg {
		return streamTickMsg{}
	})
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.LoadImages):
			return model.loadImages()
		}
		var command tea.Cmd
		model.viewport, command = model.viewport.Update(message)
		return model, command

	case tea.MouseMsg:
		var command tea.Cmd
		model.viewport, command = model.viewport.Update(message)
		return model, command

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.viewport.Width = message.Width
		model.viewport.Height = max(message.Height-1, 1)
		model.renderer.SetWidth(message.Width)
		model.refresh()

	case streamTickMsg:
		followTail := model.viewport.AtBottom()
		model.revealed = nextLineEnd(model.source, model.revealed)
		model.refresh()
		if followTail {
			model.viewport.GotoBottom()
		}
		if model.streaming() {
			return model, model.streamTick()
		}

	case imageChangedMsg:
		model.logger.Debug("image state changed", "key", message.key.String())
		model.refresh()
		return model, listenForImageChange(model.changes)

	case logRecordMsg:
		model.statusSequence++
		model.status = message.Summary
		model.statusLevel = message.Level
		sequence := model.statusSequence
		return model, tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
			return statusFadeMsg{sequence: sequence}
		})

	case statusFadeMsg:
		if message.sequence == model.statusSequence {
			model.status = ""
		}
	}
	return model, nil
}

func (model Model) loadImages() (tea.Model, tea.Cmd) {
	if model.images == nil {
		return model, nil
	}
	started := model.images.LoadAll()
	model.logger.Debug("loading images on request", "count", started)
	if started > 0 {
		model.refresh()
	}
	return model, nil
}

// nextLineEnd returns the offset just past the line starting at
// offset, or the end of source.
func nextLineEnd(source string, offset int) int {
	if offset >= len(source) {
		return len(source)
	}
	newline := strings.IndexByte(source[offset:], '\n')
	if newline < 0 {
		return len(source)
	}
	return offset + newline + 1
}

// refresh recomputes the tree from the revealed source, hands its
// images to the manager, and re-renders into the viewport.
func (model *Model) refresh() {
	model.items = markdown.Parse(model.source[:model.revealed])
	if model.images != nil {
		model.images.Replace(markdown.CollectImages(model.items))
	}
	model.viewport.SetContent(model.renderer.Render(model.items))
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return ""
	}
	return model.viewport.View() + "\n" + model.statusLine()
}

func (model Model) statusLine() string {
	if model.status != "" {
		style := model.statusStyle
		if model.statusLevel >= slog.LevelError {
			style = model.errorStyle
		}
		return style.Render(model.status)
	}

	help := []string{
		model.keys.Quit.Help().Key + " " + model.keys.Quit.Help().Desc,
		"↑/↓ scroll",
	}
	if model.images != nil {
		help = append(help, model.keys.LoadImages.Help().Key+" "+model.keys.LoadImages.Help().Desc)
	}
	line := strings.Join(help, " • ")
	if model.streaming() {
		line += fmt.Sprintf(" • streaming %d%%", model.revealed*100/max(len(model.source), 1))
	} else {
		line += fmt.Sprintf(" • %3.f%%", model.viewport.ScrollPercent()*100)
	}
	return model.helpStyle.Render(line)
}
