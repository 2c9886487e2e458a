// Package ui provides the interactive terminal resolver.
// A video id typed into the prompt is resolved in the background; the
// in-flight resolution can be cancelled with esc without leaving the UI.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ytresolve/internal/extract"
	"ytresolve/internal/media"
)

// ResolveFunc resolves one video id. It must return promptly once ctx is done.
type ResolveFunc func(ctx context.Context, videoID string) (*media.Stream, error)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type resolvedMsg struct {
	seq    int
	stream *media.Stream
	err    error
}

// Model is the bubbletea model for the resolver prompt.
type Model struct {
	input   textinput.Model
	spinner spinner.Model
	resolve ResolveFunc

	// seq identifies the current resolution; results from older ones are dropped.
	seq       int
	cancel    context.CancelFunc
	resolving bool
	pending   string

	last     *media.Stream
	resolved []*media.Stream
	err      error
	status   string
	quitting bool
}

// New returns a focused Model that resolves with fn.
func New(fn ResolveFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "video id"
	ti.Prompt = "› "
	ti.CharLimit = 64
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle))

	return Model{input: ti, spinner: sp, resolve: fn}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.stop()
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if !m.resolving {
				m.quitting = true
				return m, tea.Quit
			}
			m.stop()
			m.status = fmt.Sprintf("cancelled %s", m.pending)
			return m, nil
		case tea.KeyEnter:
			if m.resolving {
				return m, nil
			}
			id := strings.TrimSpace(m.input.Value())
			if id == "" {
				return m, nil
			}
			return m.start(id)
		}

	case resolvedMsg:
		if msg.seq != m.seq || !m.resolving {
			return m, nil
		}
		m.finish()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.last = msg.stream
		m.resolved = append(m.resolved, msg.stream)
		m.input.Reset()
		return m, nil

	case spinner.TickMsg:
		if !m.resolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.resolving {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) start(id string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.seq++
	m.cancel = cancel
	m.resolving = true
	m.pending = id
	m.last, m.err, m.status = nil, nil, ""

	seq, fn := m.seq, m.resolve
	run := func() tea.Msg {
		stream, err := fn(ctx, id)
		return resolvedMsg{seq: seq, stream: stream, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

// stop cancels the in-flight resolution, if any.
func (m *Model) stop() {
	m.finish()
	m.seq++
}

func (m *Model) finish() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.resolving = false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ytresolve"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.resolving:
		fmt.Fprintf(&b, "%s resolving %s\n", m.spinner.View(), m.pending)
	case m.err != nil:
		b.WriteString(errStyle.Render(extract.UserMessage(m.err)))
		b.WriteString("\n")
	case m.last != nil:
		b.WriteString(renderStream(m.last))
	case m.status != "":
		b.WriteString(labelStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.resolving {
		b.WriteString(helpStyle.Render("esc cancel • ctrl+c quit"))
	} else {
		b.WriteString(helpStyle.Render("enter resolve • esc quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func renderStream(s *media.Stream) string {
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("title"), s.Title)
	}
	quality := s.QualityLabel
	if quality == "" {
		quality = "audio"
	}
	fmt.Fprintf(&b, "%s itag %d, %s, %d bps\n", labelStyle.Render("format"), s.Itag, quality, s.Bitrate)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("url"), urlStyle.Render(s.URL))
	return b.String()
}

// Resolved returns every stream resolved during the session, oldest first.
func (m Model) Resolved() []*media.Stream {
	return m.resolved
}

// Run starts the interactive resolver and returns the streams it resolved.
func Run(fn ResolveFunc) ([]*media.Stream, error) {
	final, err := tea.NewProgram(New(fn)).Run()
	if err != nil {
		return nil, fmt.Errorf("running ui: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return nil, nil
	}
	m.stop()
	return m.Resolved(), nil
}
