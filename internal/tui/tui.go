// Package tui plays a stage interactively in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/louisbranch/stagesim/internal/engine"
	"github.com/louisbranch/stagesim/internal/strategy"
)

const logHeight = 8

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(18)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("#FFA500")).
				Bold(true)

	unusableCardStyle = cardStyle.
				Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

// Model is the bubbletea model of one interactive stage.
type Model struct {
	engine   *engine.Engine
	state    *engine.State
	cursor   int
	lines    []string
	hint     *strategy.Decision
	err      error
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	width    int
}

// New starts a stage on eng and returns a model ready to play it.
func New(eng *engine.Engine) (Model, error) {
	s, err := eng.InitialState()
	if err != nil {
		return Model{}, err
	}
	if err := eng.StartStage(s); err != nil {
		return Model{}, err
	}
	m := Model{
		engine:   eng,
		state:    s,
		keys:     defaultKeys,
		help:     help.New(),
		viewport: viewport.New(60, logHeight),
	}
	m.logf("Stage %d started: %d turns", eng.Stage().ID, int(s.TurnsRemaining))
	return m, nil
}

// State returns the stage state being played.
func (m Model) State() *engine.State {
	return m.state
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = max(msg.Width-4, 20)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if engine.Complete(m.state) {
			return m, nil
		}
		m.err = nil
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Right):
			if m.cursor < len(m.state.HandCardIDs)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Play):
			m.play()
		case key.Matches(msg, m.keys.EndTurn):
			m.endTurn()
		case key.Matches(msg, m.keys.Hint):
			m.suggest()
		}
	}
	return m, nil
}

func (m *Model) play() {
	if len(m.state.HandCardIDs) == 0 {
		return
	}
	id := m.state.HandCardIDs[m.cursor]
	turn, score := int(m.state.TurnsElapsed)+1, m.state.Score
	if err := m.engine.UseCard(m.state, id); err != nil {
		m.err = err
		return
	}
	m.logf("Turn %d: played %s (%+g score)", turn, m.cardName(id), m.state.Score-score)
	m.afterAction()
}

func (m *Model) endTurn() {
	turn := int(m.state.TurnsElapsed) + 1
	if err := m.engine.EndTurn(m.state); err != nil {
		m.err = err
		return
	}
	m.logf("Turn %d: rested", turn)
	m.afterAction()
}

func (m *Model) suggest() {
	decision, err := strategy.NewGreedy(0).Evaluate(context.Background(), strategy.Turn{Engine: m.engine, State: m.state})
	if err != nil {
		m.err = err
		return
	}
	m.hint = &decision
	if decision.CardID == 0 {
		m.logf("Hint: rest")
		return
	}
	m.logf("Hint: play %s", m.cardName(decision.CardID))
}

func (m *Model) afterAction() {
	m.hint = nil
	m.cursor = min(m.cursor, max(len(m.state.HandCardIDs)-1, 0))
	if engine.Complete(m.state) {
		m.logf("Stage complete: final score %g", m.state.Score)
	}
}

func (m *Model) logf(format string, args ...any) {
	m.lines = append(m.lines, fmt.Sprintf(format, args...))
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) cardName(id int) string {
	card, err := m.engine.Catalog().Card(id)
	if err != nil {
		return fmt.Sprintf("#%d", id)
	}
	return card.Name
}

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.renderHeader()}
	if !engine.Complete(m.state) {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, m.renderHand(), m.renderStats()))
	} else {
		sections = append(sections, m.renderStats())
	}
	sections = append(sections, m.viewport.View())
	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	}
	sections = append(sections, helpStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderHeader() string {
	s := m.state
	if engine.Complete(s) {
		return titleStyle.Render(fmt.Sprintf("Stage complete · score %g", s.Score))
	}
	total := int(s.TurnsElapsed + s.TurnsRemaining)
	return titleStyle.Render(fmt.Sprintf("Turn %d/%d · %s ×%.2f",
		int(s.TurnsElapsed)+1, total, s.TurnType, m.engine.TypeMultiplier(s.TurnType)))
}

func (m Model) renderHand() string {
	if len(m.state.HandCardIDs) == 0 {
		return cardStyle.Render("(empty hand)")
	}
	cards := make([]string, 0, len(m.state.HandCardIDs))
	for i, id := range m.state.HandCardIDs {
		label := m.cardName(id)
		if m.hint != nil {
			label += fmt.Sprintf("\n%.2f", m.hint.Scores[id])
		}
		style := cardStyle
		if usable, err := m.engine.IsCardUsable(m.state, id); err != nil || !usable {
			style = unusableCardStyle
		}
		if i == m.cursor {
			style = selectedCardStyle
		}
		cards = append(cards, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) renderStats() string {
	s := m.state
	lines := []string{fmt.Sprintf("stamina %g/%g", s.Stamina, s.MaxStamina)}
	for _, name := range engine.LoggedFields {
		if name == engine.FieldStamina || name == engine.FieldTurnsRemaining || name == engine.FieldCardUsesRemaining {
			continue
		}
		if v, ok := s.Field(name); ok && v != 0 {
			lines = append(lines, fmt.Sprintf("%s %g", name, v))
		}
	}
	if total := s.ScoreBuffTotal(); total != 0 {
		lines = append(lines, fmt.Sprintf("score buffs +%g%%", total*100))
	}
	return statsStyle.Render(strings.Join(lines, "\n"))
}

// Run plays the stage until the user quits and returns the final state.
func Run(ctx context.Context, m Model) (*engine.State, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).State(), nil
}
