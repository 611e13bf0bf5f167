// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

const (
	// reservedRows is the space kept for the header, input and status bar.
	reservedRows = 9

	// snippetPreview caps the snippet characters shown under each citation.
	snippetPreview = 240
)

// View is the question input and answer view.
type View struct {
	ctx           context.Context
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	answerService driving.AnswerService

	input     *input.QuestionInput
	spinner   spinner.Model
	viewport  viewport.Model
	statusbar *status.Bar

	question   string
	result     *domain.AnswerResult
	err        error
	thinking   bool
	focusInput bool

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		answerService: answerService,
		input:         input.NewQuestionInput(s),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(s.Subtitle),
		),
		viewport:   viewport.New(80, 15),
		statusbar:  status.NewBar(s, km),
		focusInput: true,
	}
}

// WithContext sets the context used for answer requests.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.setError(msg.Err)
		v.focusInput = true
		return v, v.input.Focus()
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Keys are ignored while an answer is being generated.
	if v.thinking {
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuestion) {
		v.focusInput = true
		v.input.Reset()
		return v, v.input.Focus()
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// submit sends the typed question to the answer service.
func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return v, nil
	}

	v.question = question
	v.thinking = true
	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")

	return v, tea.Batch(v.spinner.Tick, v.askQuestion(question))
}

// askQuestion returns a command that answers question.
func (v *View) askQuestion(question string) tea.Cmd {
	svc := v.answerService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}

		result, err := svc.Answer(ctx, question)
		return messages.AnswerReceived{Question: question, Result: result, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false

	if msg.Err != nil {
		v.setError(msg.Err)
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.result = msg.Result
	v.viewport.SetContent(v.renderAnswer())
	v.viewport.GotoTop()
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessage("")
	if msg.Result != nil {
		v.statusbar.SetSourceCount(len(msg.Result.Sources))
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	if err != nil {
		v.statusbar.SetMessage(err.Error())
	}
}

// renderAnswer formats the answer followed by its numbered citations.
func (v *View) renderAnswer() string {
	if v.result == nil {
		return ""
	}

	wrap := max(v.width-4, 20)
	sections := []string{
		v.styles.Muted.Render("Q: " + v.question),
		"",
		v.styles.Answer.Width(wrap).Render(v.result.Answer),
	}

	if len(v.result.Sources) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, "", v.styles.Subtitle.Render("Sources"))
	for i, src := range v.result.Sources {
		sections = append(sections,
			v.styles.Citation.Render(fmt.Sprintf("[%d] %s", i+1, FormatCitation(src))),
			v.styles.Snippet.Width(wrap).Render(truncate(src.Snippet, snippetPreview)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// FormatCitation renders a source as "document, page N" or
// "document, page unknown".
func FormatCitation(src domain.Source) string {
	if src.Page == domain.UnknownPage {
		return src.Document + ", page unknown"
	}
	return fmt.Sprintf("%s, page %d", src.Document, src.Page)
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("docqa"), "", v.input.View(), "")

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Searching documents and generating an answer..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.result != nil:
		sections = append(sections, v.viewport.View())
	default:
		sections = append(sections, v.styles.Muted.Render("Type a question and press enter."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedRows, 3)
	if v.result != nil {
		v.viewport.SetContent(v.renderAnswer())
	}
}

// Reset returns the view to an empty question prompt.
func (v *View) Reset() {
	v.question = ""
	v.result = nil
	v.err = nil
	v.thinking = false
	v.focusInput = true
	v.input.Reset()
	v.input.Focus()
	v.viewport.SetContent("")
	v.statusbar.Clear()
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Result returns the last answer, if any.
func (v *View) Result() *domain.AnswerResult {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Thinking reports whether an answer is being generated.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused returns whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// SetQuestion sets the question input value.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
