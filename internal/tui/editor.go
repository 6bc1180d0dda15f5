package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// editor holds an in-progress edit of a saved analysis. Focus runs over
// the topic (0), each key point (1..n), then the summary (n+1).
type editor struct {
	id        string
	topic     string
	keyPoints []string
	summary   string
	focus     int
	saving    bool
}

func newEditor(a *models.SavedAnalysis) *editor {
	return &editor{
		id:        a.ID,
		topic:     a.Analysis.Topic,
		keyPoints: append([]string(nil), a.Analysis.KeyPoints...),
		summary:   a.Analysis.Summary,
	}
}

func (e *editor) summaryIndex() int { return len(e.keyPoints) + 1 }

// keyPointIndex returns the focused key point, or -1 when focus is elsewhere.
func (e *editor) keyPointIndex() int {
	if e.focus >= 1 && e.focus <= len(e.keyPoints) {
		return e.focus - 1
	}
	return -1
}

func (e *editor) field() *string {
	switch i := e.keyPointIndex(); {
	case e.focus == 0:
		return &e.topic
	case i >= 0:
		return &e.keyPoints[i]
	default:
		return &e.summary
	}
}

func (e *editor) next() {
	if e.focus < e.summaryIndex() {
		e.focus++
	}
}

func (e *editor) prev() {
	if e.focus > 0 {
		e.focus--
	}
}

// addKeyPoint inserts an empty key point after the focused one (or at the
// end when focus is on the topic or summary) and focuses it.
func (e *editor) addKeyPoint() {
	at := len(e.keyPoints)
	if i := e.keyPointIndex(); i >= 0 {
		at = i + 1
	}
	e.keyPoints = append(e.keyPoints, "")
	copy(e.keyPoints[at+1:], e.keyPoints[at:])
	e.keyPoints[at] = ""
	e.focus = at + 1
}

// removeKeyPoint deletes the focused key point, if any.
func (e *editor) removeKeyPoint() {
	i := e.keyPointIndex()
	if i < 0 {
		return
	}
	e.keyPoints = append(e.keyPoints[:i], e.keyPoints[i+1:]...)
	e.focus = min(e.focus, e.summaryIndex())
}

func (e *editor) analysis() models.Analysis {
	return models.Analysis{
		Topic:     e.topic,
		KeyPoints: append([]string{}, e.keyPoints...),
		Summary:   e.summary,
	}
}

// handleEditKey processes keys while a saved analysis is being edited.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	if e.saving {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		f := e.field()
		*f += string(msg.Runes)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			*f += " "
		}
		return m, nil
	}

	switch msg.String() {
	case KeyEsc:
		m.editor = nil
	case KeyCtrlS:
		e.saving = true
		return m, updateCmd(m.ctx, m.api, e.id, e.analysis())
	case KeyTab, KeyDown, KeyEnter:
		e.next()
	case KeyShiftTab, KeyUp:
		e.prev()
	case KeyBackspace:
		f := e.field()
		if r := []rune(*f); len(r) > 0 {
			*f = string(r[:len(r)-1])
		}
	case KeyCtrlU:
		*e.field() = ""
	case KeyCtrlN:
		e.addKeyPoint()
	case KeyCtrlX:
		e.removeKeyPoint()
	}
	return m, nil
}

func (m Model) renderEditor() string {
	e := m.editor
	wrap := lipgloss.NewStyle().Width(max(20, m.width-8))

	line := func(focused bool, text string) string {
		prefix := "  "
		if focused {
			prefix = SelectedStyle.Render("▸ ")
			return prefix + InputStyle.Render(wrap.Render(text)) + CursorStyle.Render("█")
		}
		return prefix + wrap.Render(text)
	}

	var lines []string
	lines = append(lines, SectionTitleStyle.Render("Edit Analysis"))
	lines = append(lines, InputLabelStyle.Render("Topic"))
	lines = append(lines, line(e.focus == 0, e.topic))
	lines = append(lines, InputLabelStyle.Render("Key Points"))
	if len(e.keyPoints) == 0 {
		lines = append(lines, DimStyle.Render("  (none, ctrl+n to add)"))
	}
	for i, p := range e.keyPoints {
		lines = append(lines, line(e.focus == i+1, BulletStyle.Render("• ")+p))
	}
	lines = append(lines, InputLabelStyle.Render("Summary"))
	lines = append(lines, line(e.focus == e.summaryIndex(), e.summary))
	if e.saving {
		lines = append(lines, DimStyle.Render("Saving..."))
	}
	return strings.Join(lines, "\n")
}
