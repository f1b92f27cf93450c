// Package runner is the interactive terminal front end for one execution
// session: it shows the highlighted buffer, lets the user edit it, runs it,
// collects input lines while the program waits, and renders the verdict.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/pytutor/internal/cachemanager"
	"github.com/zjrosen/pytutor/internal/editor"
	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/pubsub"
	"github.com/zjrosen/pytutor/internal/retry"
	"github.com/zjrosen/pytutor/internal/session"
	"github.com/zjrosen/pytutor/internal/syntax"
)

const (
	defaultWidth = 80
	maxLogLines  = 50
	shownLogs    = 8
)

// Highlighter renders a buffer into styled lines.
type Highlighter interface {
	Render(ctx context.Context, buffer string, errorLines []int) []syntax.Line
}

// Option configures a Model.
type Option func(*Model)

// WithReload re-reads the buffer before every rerun.
func WithReload(fn func() (string, error)) Option {
	return func(m *Model) { m.reload = fn }
}

// WithHighlighter replaces the default memoized highlighter.
func WithHighlighter(h Highlighter) Option {
	return func(m *Model) {
		if h != nil {
			m.highlighter = h
		}
	}
}

// WithRenderer sets the renderer used to draw the buffer.
func WithRenderer(r *syntax.Renderer) Option {
	return func(m *Model) {
		if r != nil {
			m.renderer = r
		}
	}
}

// WithSave writes the edited buffer back, e.g. to the source file.
func WithSave(fn func(string) error) Option {
	return func(m *Model) { m.save = fn }
}

// WithIndentWidth sets the indent unit used by Tab, Backspace and Enter.
func WithIndentWidth(n int) Option {
	return func(m *Model) { m.ed = editor.New(n) }
}

// WithLogs tails log entries into a toggleable pane. A nil listener is
// ignored.
func WithLogs(l *log.LogListener) Option {
	return func(m *Model) { m.logs = l }
}

// WithEvents subscribes the model to session state changes.
func WithEvents(b *pubsub.Broker[session.StateChange]) Option {
	return func(m *Model) { m.events = b }
}

// runDoneMsg reports the end of a Start or SubmitInput call.
type runDoneMsg struct {
	err error
}

// Model is the Bubble Tea model for an interactive run.
type Model struct {
	ctx         context.Context
	sess        *session.Session
	source      string
	caret       int
	ed          *editor.Editor
	reload      func() (string, error)
	save        func(string) error
	highlighter Highlighter
	renderer    *syntax.Renderer
	events      *pubsub.Broker[session.StateChange]
	listener    *pubsub.ContinuousListener[session.StateChange]
	logs        *log.LogListener

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap
	md      *Markdown

	state    session.State
	err      error
	notice   string
	width    int
	editing  bool
	dirty    bool
	showLogs bool
	logLines []string
}

// New creates a runner for source. The run starts when the program starts.
func New(ctx context.Context, sess *session.Session, source string, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	source = editor.Normalize(source)
	m := Model{
		ctx:      ctx,
		sess:     sess,
		source:   source,
		caret:    len(source),
		ed:       editor.New(editor.DefaultIndentWidth),
		renderer: syntax.NewRenderer(),
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		keys:     DefaultKeyMap(),
		state:    sess.State(),
		width:    defaultWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.highlighter == nil {
		cache := cachemanager.NewInMemoryCacheManager[[]syntax.Line](
			"highlight", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
		m.highlighter = syntax.NewCachedRenderer(cache, syntax.DefaultCacheTTL)
	}
	if m.events != nil {
		m.listener = pubsub.NewContinuousListener(ctx, m.events)
	}
	m.md, _ = NewMarkdown(m.width - 4)
	return m
}

// Init starts the first run.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.start(m.source), m.spinner.Tick}
	if m.listener != nil {
		cmds = append(cmds, m.listener.Listen())
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

func (m Model) start(source string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return runDoneMsg{err: sess.Start(ctx, source)}
	}
}

func (m Model) submit(value string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return runDoneMsg{err: sess.SubmitInput(ctx, value)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		if md, err := NewMarkdown(max(msg.Width-4, 20)); err == nil {
			m.md = md
		}
		return m, nil

	case pubsub.Event[session.StateChange]:
		m = m.sync()
		cmds := []tea.Cmd{}
		if m.listener != nil {
			cmds = append(cmds, m.listener.Listen())
		}
		if msg.Payload.To == session.StateSubmitting {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case log.LogEvent:
		m.logLines = append(m.logLines, strings.TrimRight(msg.Payload, "\n"))
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		if m.logs == nil {
			return m, nil
		}
		return m, m.logs.Listen()

	case runDoneMsg:
		m.err = msg.err
		if msg.err != nil {
			log.ErrorErr(log.CatUI, "Run failed", msg.err)
		}
		return m.sync(), nil

	case spinner.TickMsg:
		if m.state != session.StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// sync copies the session state into the model.
func (m Model) sync() Model {
	prev := m.state
	m.state = m.sess.State()
	if m.state == session.StateAwaitingInput {
		m.input.Placeholder = m.sess.Prompt()
		if prev != session.StateAwaitingInput {
			m.input.Reset()
		}
		m.input.Focus()
		m.editing = false
	} else {
		m.input.Blur()
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == session.StateAwaitingInput {
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m.dismiss(), nil
		case tea.KeyEnter:
			value := m.input.Value()
			m.input.Reset()
			m.err = nil
			return m, m.submit(value)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Edit):
		m.editing = true
		m.notice = ""
		return m, nil
	case key.Matches(msg, m.keys.Save):
		return m.saveSource(), nil
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		return m.dismiss(), nil
	case key.Matches(msg, m.keys.Rerun):
		return m.rerun()
	}
	return m, nil
}

// handleEditKey routes keys to the buffer. Tab, Backspace and Enter go through
// the indent-aware editor; printable keys are inserted at the caret.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := editor.Caret(m.caret)
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
		return m, nil
	case tea.KeyCtrlR:
		return m.rerun()
	case tea.KeyCtrlS:
		return m.saveSource(), nil
	case tea.KeyTab:
		return m.edit(m.ed.Apply(m.source, sel, editor.KeyTab)), nil
	case tea.KeyBackspace:
		return m.edit(m.ed.Apply(m.source, sel, editor.KeyBackspace)), nil
	case tea.KeyEnter:
		return m.edit(m.ed.Apply(m.source, sel, editor.KeyEnter)), nil
	case tea.KeyDelete:
		return m.edit(editor.Delete(m.source, m.caret)), nil
	case tea.KeySpace:
		return m.edit(editor.Insert(m.source, sel, " ")), nil
	case tea.KeyRunes:
		return m.edit(editor.Insert(m.source, sel, string(msg.Runes))), nil
	case tea.KeyLeft:
		m.caret = editor.Left(m.source, m.caret)
	case tea.KeyRight:
		m.caret = editor.Right(m.source, m.caret)
	case tea.KeyUp:
		m.caret = editor.Vertical(m.source, m.caret, -1)
	case tea.KeyDown:
		m.caret = editor.Vertical(m.source, m.caret, 1)
	case tea.KeyHome:
		m.caret = editor.Home(m.source, m.caret)
	case tea.KeyEnd:
		m.caret = editor.End(m.source, m.caret)
	}
	return m, nil
}

// edit adopts an editor result. Any change to the text clears the flagged
// error lines.
func (m Model) edit(res editor.Result) Model {
	if res.Text != m.source {
		m.source = res.Text
		m.dirty = true
		m.notice = ""
		m.sess.EditBuffer()
	}
	m.caret = res.Caret
	return m
}

func (m Model) saveSource() Model {
	if m.save == nil || !m.dirty {
		return m
	}
	if err := m.save(m.source); err != nil {
		m.err = fmt.Errorf("saving source: %w", err)
		return m
	}
	m.dirty = false
	m.err = nil
	m.notice = "Saved."
	return m
}

func (m Model) dismiss() Model {
	if err := m.sess.Dismiss(); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	return m.sync()
}

func (m Model) rerun() (tea.Model, tea.Cmd) {
	if m.state == session.StateSubmitting {
		return m, nil
	}
	if m.state == session.StateAwaitingInput {
		m = m.dismiss()
	}
	if m.reload != nil && !m.dirty {
		source, err := m.reload()
		if err != nil {
			m.err = fmt.Errorf("reloading source: %w", err)
			return m, nil
		}
		if src := editor.Normalize(source); src != m.source {
			m.source = src
			m.caret = len(src)
			m.sess.EditBuffer()
		}
	}
	m.err = nil
	return m, tea.Batch(m.start(m.source), m.spinner.Tick)
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pytutor"))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  [%s] %s", m.sess.Locale(), m.state)))
	if m.editing {
		line, col := editor.LineAt(m.source, m.caret)
		b.WriteString(labelStyle.Render(fmt.Sprintf("  editing Ln %d, Col %d", line, col+1)))
	}
	if m.dirty {
		b.WriteString(labelStyle.Render("  (modified)"))
	}
	b.WriteString("\n\n")

	lines := m.highlighter.Render(m.ctx, m.source, m.sess.ErrorLines())
	if m.editing {
		line, col := editor.LineAt(m.source, m.caret)
		b.WriteString(m.renderer.FormatCursor(lines, line, col))
	} else {
		b.WriteString(m.renderer.Format(lines))
	}
	b.WriteString("\n\n")

	switch m.state {
	case session.StateSubmitting:
		b.WriteString(m.spinner.View() + " Running...\n")
	case session.StateIdle:
		b.WriteString(labelStyle.Render("Press r to run.") + "\n")
	}

	if m.state == session.StateFailed {
		if err := m.sess.LastError(); err != nil {
			b.WriteString(errorStyle.Render(errorText(err)) + "\n")
		}
	}

	if v, ok := m.sess.Verdict(); ok {
		b.WriteString(m.verdictView(v))
	}

	if m.state == session.StateAwaitingInput {
		b.WriteString("\n" + labelStyle.Render(m.sess.Prompt()) + "\n")
		b.WriteString(m.input.View() + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(errorText(m.err)) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + labelStyle.Render(m.notice) + "\n")
	}

	if m.showLogs && len(m.logLines) > 0 {
		b.WriteString("\n" + labelStyle.Render("Log") + "\n")
		tail := m.logLines[max(len(m.logLines)-shownLogs, 0):]
		b.WriteString(strings.Join(tail, "\n") + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) verdictView(v interpreter.Verdict) string {
	var b strings.Builder
	width := max(m.width-4, 20)

	style := outputStyle
	if v.IsError {
		style = failedOutputStyle
	}
	output := v.Output
	if output == "" {
		output = " "
	}
	b.WriteString(labelStyle.Render("Output") + "\n")
	b.WriteString(style.Render(wordwrap.String(output, width)) + "\n")

	if v.Explanation != "" {
		b.WriteString("\n" + labelStyle.Render("Explanation") + "\n")
		if m.md != nil {
			b.WriteString(m.md.Render(v.Explanation))
		} else {
			b.WriteString(wordwrap.String(v.Explanation, width))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func errorText(err error) string {
	switch {
	case interpreter.IsAuthError(err):
		return "The API key was rejected. Check the key and try again."
	case errors.Is(err, interpreter.ErrEmptySource):
		return "Nothing to run: the buffer is empty."
	case errors.Is(err, session.ErrBusy):
		return "Still running, please wait."
	case errors.As(err, new(*interpreter.MalformedResponseError)):
		return "The interpreter sent a reply that could not be read."
	case retry.IsTransient(err):
		return "The interpreter is unavailable right now."
	default:
		return err.Error()
	}
}
