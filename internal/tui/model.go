// Package tui is the terminal front end of the wizard. It owns no form state: every edit goes
// through the wizard's binding and every screen is rendered from the stores.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"social-support-wizard/internal/models"
	"social-support-wizard/internal/suggestion"
	"social-support-wizard/internal/wizard"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type suggestionDoneMsg struct{ err error }

type submitDoneMsg struct{ err error }

type Model struct {
	w       *wizard.Wizard
	ctx     context.Context
	resumed bool

	focus    int
	input    textinput.Model
	area     textarea.Model
	modal    textarea.Model
	modalFor string

	width    int
	quitting bool
}

// New builds the model. resumed tells the first screen to mention the restored draft.
func New(ctx context.Context, w *wizard.Wizard, resumed bool) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50

	ta := textarea.New()
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(60)

	modal := textarea.New()
	modal.CharLimit = 4000
	modal.ShowLineNumbers = false
	modal.SetHeight(8)
	modal.SetWidth(60)

	m := Model{
		w:       w,
		ctx:     ctx,
		resumed: resumed,
		input:   ti,
		area:    ta,
		modal:   modal,
	}
	m.load()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) fields() []string {
	return models.FieldsForStep(m.w.CurrentStep())
}

// field is the focused field name.
func (m Model) field() string {
	fields := m.fields()
	if m.focus < 0 || m.focus >= len(fields) {
		return fields[0]
	}
	return fields[m.focus]
}

// load copies the focused field's value from the binding into its editor.
func (m *Model) load() {
	fields := m.fields()
	if m.focus >= len(fields) {
		m.focus = len(fields) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}

	field := m.field()
	value := m.w.Binding().Get(field)
	if models.IsMultiline(field) {
		m.input.Blur()
		m.area.SetValue(value)
		m.area.Focus()
		return
	}
	m.area.Blur()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.area.SetWidth(w)
			m.modal.SetWidth(w)
		}
		return m, nil

	case suggestionDoneMsg:
		if errors.Is(msg.err, suggestion.ErrSuggestionPending) {
			m.w.UI().SetAlert(m.w.T("ai.pending"))
		}
		m.syncModal()
		return m, nil

	case submitDoneMsg:
		m.focus = 0
		m.load()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.w.UI().State().Alert != "" {
			m.w.UI().ClearAlert()
		}
		m.resumed = false
		if m.w.UI().State().ShowAIModal {
			return m.updateModal(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.focus = (m.focus + 1) % len(m.fields())
		m.load()
		return m, nil
	case "shift+tab":
		m.focus = (m.focus - 1 + len(m.fields())) % len(m.fields())
		m.load()
		return m, nil
	case "ctrl+n":
		before := m.w.CurrentStep()
		if err := m.w.Next(); err == nil && m.w.CurrentStep() != before {
			m.focus = 0
		} else {
			m.focusFirstError()
		}
		m.load()
		return m, nil
	case "ctrl+p":
		m.w.Previous()
		m.focus = 0
		m.load()
		return m, nil
	case "ctrl+l":
		m.w.ToggleLanguage()
		return m, nil
	case "ctrl+r":
		m.w.Reset(m.ctx)
		m.focus = 0
		m.load()
		return m, nil
	case "ctrl+s":
		if m.w.CurrentStep() != models.MaxStep || m.w.UI().State().IsSubmitting {
			return m, nil
		}
		return m, m.submitCmd()
	case "ctrl+g":
		return m, m.suggestCmd(0)
	case "ctrl+o":
		return m, m.suggestCmd(1)
	}

	field := m.field()
	var cmd tea.Cmd
	if models.IsMultiline(field) {
		m.area, cmd = m.area.Update(msg)
		m.commit(field, m.area.Value())
	} else {
		m.input, cmd = m.input.Update(msg)
		m.commit(field, m.input.Value())
	}
	return m, cmd
}

func (m Model) commit(field, value string) {
	if m.w.Binding().Get(field) != value {
		m.w.Binding().Set(field, value)
	}
}

func (m *Model) focusFirstError() {
	errs := m.w.Binding().Errors()
	for i, f := range m.fields() {
		if _, ok := errs[f]; ok {
			m.focus = i
			return
		}
	}
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+y":
		_ = m.w.AcceptSuggestion(m.modal.Value())
		m.modalFor = ""
		m.load()
		return m, nil
	case "esc":
		m.w.DiscardSuggestion()
		m.modalFor = ""
		m.load()
		return m, nil
	}
	var cmd tea.Cmd
	m.modal, cmd = m.modal.Update(msg)
	return m, cmd
}

// syncModal loads a newly published suggestion into the modal editor.
func (m *Model) syncModal() {
	st := m.w.UI().State()
	if !st.ShowAIModal {
		m.modalFor = ""
		return
	}
	if m.modalFor == st.AIField {
		return
	}
	m.modalFor = st.AIField
	m.modal.SetValue(st.AISuggestion)
	m.modal.Focus()
	m.input.Blur()
	m.area.Blur()
}

// suggestCmd asks for draft text for the focused field. Under the fallback policy both keys ask
// the orchestrator; under the independent policy idx picks the provider.
func (m Model) suggestCmd(idx int) tea.Cmd {
	field := m.field()
	if !models.IsMultiline(field) || m.w.Orchestrator() == nil {
		return nil
	}
	w, ctx := m.w, m.ctx

	if w.Orchestrator().Policy() == suggestion.PolicyFallback {
		return func() tea.Msg {
			_, err := w.RequestSuggestion(ctx, field)
			return suggestionDoneMsg{err: err}
		}
	}

	providers := w.Orchestrator().Providers()
	if idx >= len(providers) || providers[idx] == nil {
		return nil
	}
	name := providers[idx].Name()
	return func() tea.Msg {
		_, err := w.RequestSuggestionFrom(ctx, name, field)
		return suggestionDoneMsg{err: err}
	}
}

func (m Model) submitCmd() tea.Cmd {
	w, ctx := m.w, m.ctx
	return func() tea.Msg {
		_, err := w.Submit(ctx)
		return submitDoneMsg{err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	ui := m.w.UI().State()
	step := m.w.CurrentStep()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.w.T("app.title")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %d %s %d  %s",
		m.w.T("progress.step"), step, m.w.T("progress.of"), models.MaxStep,
		m.w.Catalog().StepTitle(ui.Language, step))))
	b.WriteString("\n\n")

	if m.resumed {
		b.WriteString(noticeStyle.Render(m.w.T("form.resumed")) + "\n\n")
	}
	if text := m.w.ConfirmationText(); text != "" && step == models.MinStep {
		b.WriteString(noticeStyle.Render(text) + "\n\n")
	}

	if ui.ShowAIModal {
		b.WriteString(m.modalView(ui))
	} else {
		b.WriteString(m.formView(ui))
	}

	if ui.Alert != "" {
		b.WriteString("\n" + alertStyle.Render(ui.Alert) + "\n")
	}
	if ui.SubmissionError != "" {
		b.WriteString("\n" + errorStyle.Render(ui.SubmissionError) + "\n")
	}
	if ui.IsSubmitting {
		b.WriteString("\n" + mutedStyle.Render(m.w.T("form.submitting")) + "\n")
	}
	if ui.IsLoading {
		b.WriteString("\n" + mutedStyle.Render(m.w.T("ai.generating")) + "\n")
	}

	b.WriteString("\n" + m.helpView(ui))
	return directional(ui.Language, m.width, b.String())
}

func (m Model) formView(ui models.UIState) string {
	var b strings.Builder
	errs := m.w.Binding().Errors()

	for i, field := range m.fields() {
		label := m.w.Catalog().FieldLabel(ui.Language, field)
		if i == m.focus {
			b.WriteString(focusStyle.Render("> " + label))
		} else {
			b.WriteString(labelStyle.Render("  " + label))
		}
		b.WriteString("\n")

		switch {
		case i == m.focus && models.IsMultiline(field):
			b.WriteString(m.area.View())
		case i == m.focus:
			b.WriteString("  " + m.input.View())
		default:
			b.WriteString("  " + m.w.Binding().Get(field))
		}
		b.WriteString("\n")

		if i == m.focus {
			if options, ok := models.Enumerations[field]; ok {
				labels := make([]string, 0, len(options))
				for _, o := range options {
					labels = append(labels, o+" ("+m.w.Catalog().OptionLabel(ui.Language, field, o)+")")
				}
				b.WriteString(mutedStyle.Render("  "+m.w.T("help.options")+": "+strings.Join(labels, ", ")) + "\n")
			}
		}
		if _, ok := errs[field]; ok {
			b.WriteString(errorStyle.Render("  "+m.w.FieldError(field)) + "\n")
		}
	}
	return b.String()
}

func (m Model) modalView(ui models.UIState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.w.T("ai.suggestion")))
	b.WriteString("  " + mutedStyle.Render(m.w.Catalog().FieldLabel(ui.Language, ui.AIField)))
	b.WriteString("\n")
	b.WriteString(modalStyle.Render(m.modal.View()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) helpView(ui models.UIState) string {
	if ui.ShowAIModal {
		return mutedStyle.Render(m.w.T("help.modal"))
	}
	lines := []string{m.w.T("help.navigate"), m.w.T("help.actions")}
	if o := m.w.Orchestrator(); o != nil && o.Policy() == suggestion.PolicyIndependent {
		p := o.Providers()
		lines = append(lines, m.w.Catalog().Format(ui.Language, "help.independent", map[string]string{
			"primary":   p[0].DisplayName(),
			"secondary": p[1].DisplayName(),
		}))
	}
	return mutedStyle.Render(strings.Join(lines, "\n"))
}
