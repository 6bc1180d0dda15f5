// Package tui is a terminal front end for the ytsummary API: submit a video,
// watch the analysis pipeline progress, save results, and manage saved ones.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/client"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/pipeline"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// Screen selects the active view.
type Screen int

const (
	ScreenAnalyze Screen = iota
	ScreenSaved
)

const (
	labelExtracting = "Extracting video transcript..."
	labelAnalyzing  = "Analyzing content..."
	noticeSaved     = "Analysis saved"
	noticeDeleted   = "Analysis deleted successfully"
	noticeUpdated   = "Analysis updated"
	progressWidth   = 40
	noticeTimeout   = 3 * time.Second
)

// snapshotFeed hands pipeline snapshots to the bubbletea loop. It holds at
// most one pending snapshot and replaces it with newer ones, so pushes
// never block the pipeline.
type snapshotFeed chan pipeline.Snapshot

func newSnapshotFeed() snapshotFeed { return make(snapshotFeed, 1) }

func (f snapshotFeed) push(s pipeline.Snapshot) {
	for {
		select {
		case f <- s:
			return
		default:
		}
		select {
		case <-f:
		default:
		}
	}
}

// Model is the root bubbletea model.
type Model struct {
	api  client.Client
	pipe *pipeline.Pipeline
	feed snapshotFeed
	ctx  context.Context

	// Analyze screen
	input   string
	snap    pipeline.Snapshot
	saving  bool
	savedID string

	// Saved screen
	saved        []*models.SavedAnalysis
	selected     int
	expanded     map[string]bool
	loadingSaved bool
	editor       *editor

	// UI state
	screen       Screen
	width        int
	height       int
	statusText   string
	notice       string
	errorMessage string
}

// New creates a Model driving api. The pipeline runs its stages against the
// same API.
func New(ctx context.Context, api client.Client, opts ...pipeline.Option) Model {
	feed := newSnapshotFeed()
	opts = append(opts, pipeline.WithOnChange(feed.push))
	return Model{
		api:        api,
		pipe:       pipeline.New(api, api, opts...),
		feed:       feed,
		ctx:        ctx,
		expanded:   make(map[string]bool),
		statusText: "Connecting...",
	}
}

// Init checks the server and starts listening for pipeline updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(healthCmd(m.ctx, m.api), waitForSnapshotCmd(m.feed))
}

func waitForSnapshotCmd(feed snapshotFeed) tea.Cmd {
	return func() tea.Msg {
		return PipelineUpdateMsg{Snapshot: <-feed}
	}
}

func healthCmd(ctx context.Context, api client.Client) tea.Cmd {
	return func() tea.Msg {
		return HealthMsg{Err: api.Health(ctx)}
	}
}

func submitCmd(ctx context.Context, p *pipeline.Pipeline, url string) tea.Cmd {
	return func() tea.Msg {
		if _, err := p.Submit(ctx, url); err != nil {
			return SubmitErrorMsg{Err: err}
		}
		return nil
	}
}

func saveCmd(ctx context.Context, api client.Client, snap pipeline.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if snap.Analysis == nil {
			return SaveErrorMsg{Err: errors.New("nothing to save")}
		}
		id, err := api.Save(ctx, snap.VideoID, snap.VideoURL, *snap.Analysis)
		if err != nil {
			return SaveErrorMsg{Err: err}
		}
		return SavedMsg{ID: id}
	}
}

func loadSavedCmd(ctx context.Context, api client.Client) tea.Cmd {
	return func() tea.Msg {
		list, err := api.List(ctx)
		if err != nil {
			return SavedListErrorMsg{Err: err}
		}
		return SavedListMsg{Analyses: list}
	}
}

func deleteCmd(ctx context.Context, api client.Client, id string) tea.Cmd {
	return func() tea.Msg {
		if err := api.Delete(ctx, id); err != nil {
			return DeleteErrorMsg{ID: id, Err: err}
		}
		return DeletedMsg{ID: id}
	}
}

func editLoadCmd(ctx context.Context, api client.Client, id string) tea.Cmd {
	return func() tea.Msg {
		a, err := api.Get(ctx, id)
		if err != nil {
			return EditLoadErrorMsg{ID: id, Err: err}
		}
		return EditLoadedMsg{Analysis: a}
	}
}

func updateCmd(ctx context.Context, api client.Client, id string, a models.Analysis) tea.Cmd {
	return func() tea.Msg {
		updated, err := api.Update(ctx, id, a)
		if err != nil {
			return UpdateErrorMsg{Err: err}
		}
		return UpdatedMsg{Analysis: updated}
	}
}

// clearNoticeCmd fires after a delay to clear transient notices.
func clearNoticeCmd() tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case PipelineUpdateMsg:
		if msg.Snapshot.State != pipeline.Complete {
			m.savedID = ""
			m.saving = false
		}
		m.snap = msg.Snapshot
		if m.snap.State == pipeline.Failed {
			slog.Warn("pipeline failed", "error", m.snap.Err)
		}
		return m, waitForSnapshotCmd(m.feed)

	case HealthMsg:
		if msg.Err != nil {
			m.statusText = "Server unreachable"
			m.errorMessage = errMessage(msg.Err)
			return m, nil
		}
		m.statusText = "Connected"
		return m, nil

	case SubmitErrorMsg:
		m.errorMessage = errMessage(msg.Err)
		return m, nil

	case SavedMsg:
		m.saving = false
		m.savedID = msg.ID
		m.notice = noticeSaved
		return m, clearNoticeCmd()

	case SaveErrorMsg:
		m.saving = false
		m.errorMessage = errMessage(msg.Err)
		slog.Error("save failed", "error", msg.Err)
		return m, nil

	case SavedListMsg:
		m.loadingSaved = false
		m.saved = msg.Analyses
		if m.selected >= len(m.saved) {
			m.selected = max(0, len(m.saved)-1)
		}
		return m, nil

	case SavedListErrorMsg:
		m.loadingSaved = false
		m.errorMessage = errMessage(msg.Err)
		return m, nil

	case DeletedMsg:
		for i, a := range m.saved {
			if a.ID == msg.ID {
				m.saved = append(m.saved[:i:i], m.saved[i+1:]...)
				break
			}
		}
		delete(m.expanded, msg.ID)
		if m.selected >= len(m.saved) {
			m.selected = max(0, len(m.saved)-1)
		}
		m.notice = noticeDeleted
		return m, clearNoticeCmd()

	case DeleteErrorMsg:
		m.errorMessage = errMessage(msg.Err)
		slog.Error("delete failed", "id", msg.ID, "error", msg.Err)
		return m, nil

	case EditLoadedMsg:
		m.replaceSaved(msg.Analysis)
		m.editor = newEditor(msg.Analysis)
		return m, nil

	case EditLoadErrorMsg:
		m.errorMessage = errMessage(msg.Err)
		if errors.Is(msg.Err, client.ErrNotFound) {
			m.loadingSaved = true
			return m, loadSavedCmd(m.ctx, m.api)
		}
		return m, nil

	case UpdatedMsg:
		m.replaceSaved(msg.Analysis)
		m.editor = nil
		m.notice = noticeUpdated
		return m, clearNoticeCmd()

	case UpdateErrorMsg:
		if m.editor != nil {
			m.editor.saving = false
		}
		m.errorMessage = errMessage(msg.Err)
		slog.Error("update failed", "error", msg.Err)
		return m, nil

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyCtrlC {
		return m, tea.Quit
	}
	if m.errorMessage != "" && key == KeyEsc {
		m.errorMessage = ""
		return m, nil
	}

	if m.screen == ScreenSaved {
		if m.editor != nil {
			return m.handleEditKey(msg)
		}
		return m.handleSavedKey(key)
	}

	switch m.snap.State {
	case pipeline.Idle:
		return m.handleInputKey(msg)

	case pipeline.FetchingTranscript, pipeline.AnalyzingContent:
		if key == KeyEsc {
			m.pipe.Reset()
		}
		return m, nil

	case pipeline.Failed:
		// Dismissing the error resets the pipeline; the URL stays for a retry.
		if key == KeyEsc || key == KeyEnter {
			m.pipe.Reset()
		}
		return m, nil

	case pipeline.Complete:
		switch key {
		case KeySave:
			if m.saving || m.savedID != "" {
				return m, nil
			}
			m.saving = true
			return m, saveCmd(m.ctx, m.api, m.snap)
		case KeyNew, KeyEsc:
			m.input = ""
			m.pipe.Reset()
			return m, nil
		case KeyTab:
			return m.openSaved()
		case KeyQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.input += " "
		}
		return m, nil
	}

	switch msg.String() {
	case KeyEnter:
		m.errorMessage = ""
		return m, submitCmd(m.ctx, m.pipe, m.input)
	case KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case KeyCtrlU:
		m.input = ""
	case KeyTab:
		return m.openSaved()
	case KeyEsc:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSavedKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyJ, KeyDown:
		if m.selected < len(m.saved)-1 {
			m.selected++
		}
	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case KeyEnter:
		if a := m.selectedAnalysis(); a != nil {
			m.expanded[a.ID] = !m.expanded[a.ID]
		}
	case KeyDelete:
		if a := m.selectedAnalysis(); a != nil {
			return m, deleteCmd(m.ctx, m.api, a.ID)
		}
	case KeyEdit:
		if a := m.selectedAnalysis(); a != nil {
			return m, editLoadCmd(m.ctx, m.api, a.ID)
		}
	case KeyRefresh:
		m.loadingSaved = true
		return m, loadSavedCmd(m.ctx, m.api)
	case KeyTab, KeyEsc:
		m.screen = ScreenAnalyze
	case KeyQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) openSaved() (tea.Model, tea.Cmd) {
	m.screen = ScreenSaved
	m.loadingSaved = true
	return m, loadSavedCmd(m.ctx, m.api)
}

// replaceSaved swaps in a fresher copy of a listed analysis.
func (m Model) replaceSaved(a *models.SavedAnalysis) {
	if a == nil {
		return
	}
	for i, s := range m.saved {
		if s.ID == a.ID {
			m.saved[i] = a
			return
		}
	}
}

func (m Model) selectedAnalysis() *models.SavedAnalysis {
	if m.selected < 0 || m.selected >= len(m.saved) {
		return nil
	}
	return m.saved[m.selected]
}

func errMessage(err error) string {
	var um pipeline.UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return err.Error()
}

// --- view ---

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.screen == ScreenSaved {
		sections = append(sections, m.renderSaved())
	} else {
		sections = append(sections, m.renderAnalyze())
	}

	sections = append(sections, DividerStyle.Render(strings.Repeat("─", m.width)))
	if msg := m.currentError(); msg != "" {
		sections = append(sections, ErrorStyle.Render("✗ ")+ErrorTextStyle.Render(msg))
	}
	if m.notice != "" {
		sections = append(sections, NoticeStyle.Render("✓ "+m.notice))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) currentError() string {
	if m.screen == ScreenAnalyze && m.snap.State == pipeline.Failed {
		return m.snap.Err
	}
	return m.errorMessage
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render("YOUTUBE VIDEO INSIGHTS")
	status := StatusStyle.Render("  " + m.statusText)
	return title + status + "\n" +
		SubtitleStyle.Render("Get AI-powered summaries and key points from any YouTube video")
}

func (m Model) renderAnalyze() string {
	switch m.snap.State {
	case pipeline.FetchingTranscript, pipeline.AnalyzingContent:
		return m.renderProgress()
	case pipeline.Complete:
		return m.renderResults()
	default:
		return m.renderForm()
	}
}

func (m Model) renderForm() string {
	return InputLabelStyle.Render("YouTube URL: ") +
		InputStyle.Render(m.input) +
		CursorStyle.Render("█")
}

func (m Model) renderProgress() string {
	label := labelAnalyzing
	if m.snap.Progress < 50 {
		label = labelExtracting
	}
	return DimStyle.Render(m.snap.VideoURL) + "\n\n" +
		renderProgressBar(m.snap.Progress, progressWidth) + "\n" +
		DimStyle.Render(label)
}

func renderProgressBar(progress, width int) string {
	progress = min(max(progress, 0), 100)
	filled := progress * width / 100
	return ProgressFillStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled)) +
		DimStyle.Render(fmt.Sprintf(" %3d%%", progress))
}

func (m Model) renderResults() string {
	a := m.snap.Analysis
	if a == nil {
		return ""
	}
	wrap := lipgloss.NewStyle().Width(max(20, m.width-4))

	var b strings.Builder
	b.WriteString(DimStyle.Render(fmt.Sprintf("%s · %d transcript segments", m.snap.VideoURL, len(m.snap.Transcript))))
	b.WriteString("\n\n")
	b.WriteString(SectionTitleStyle.Render("Topic"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(a.Topic))
	b.WriteString("\n\n")
	b.WriteString(SectionTitleStyle.Render("Key Points"))
	for _, p := range a.KeyPoints {
		b.WriteString("\n")
		b.WriteString(BulletStyle.Render("• "))
		b.WriteString(wrap.Render(p))
	}
	b.WriteString("\n\n")
	b.WriteString(SectionTitleStyle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(wrap.Render(a.Summary))

	switch {
	case m.saving:
		b.WriteString("\n\n" + DimStyle.Render("Saving..."))
	case m.savedID != "":
		b.WriteString("\n\n" + DimStyle.Render("Saved as "+m.savedID))
	}
	return b.String()
}

func (m Model) renderSaved() string {
	if m.editor != nil {
		return m.renderEditor()
	}
	if m.loadingSaved && len(m.saved) == 0 {
		return DimStyle.Render("Loading saved analyses...")
	}
	if len(m.saved) == 0 {
		return DimStyle.Render("No saved analyses yet.")
	}

	wrap := lipgloss.NewStyle().Width(max(20, m.width-6))
	var lines []string
	lines = append(lines, SectionTitleStyle.Render(fmt.Sprintf("Saved Analyses (%d)", len(m.saved))))
	for i, a := range m.saved {
		date := a.CreatedAt.Local().Format("Jan 2, 2006 15:04")
		line := fmt.Sprintf("%s  %s", a.Title, DimStyle.Render(date+" · "+a.VideoID))
		if i == m.selected {
			line = SelectedStyle.Render("▸ ") + SelectedStyle.Render(a.Title) + "  " + DimStyle.Render(date+" · "+a.VideoID)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
		if m.expanded[a.ID] {
			lines = append(lines, "    "+wrap.Render(a.Analysis.Summary))
			for _, p := range a.Analysis.KeyPoints {
				lines = append(lines, "    "+BulletStyle.Render("• ")+p)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	type binding struct{ key, desc string }
	var keys []binding

	switch {
	case m.screen == ScreenSaved && m.editor != nil:
		keys = []binding{{"tab/↑↓", "field"}, {"ctrl+n", "add point"}, {"ctrl+x", "remove point"}, {"ctrl+s", "save"}, {"esc", "cancel"}}
	case m.screen == ScreenSaved:
		keys = []binding{{"j/k", "move"}, {"enter", "expand"}, {"e", "edit"}, {"d", "delete"}, {"r", "refresh"}, {"tab", "back"}, {"q", "quit"}}
	case m.snap.State == pipeline.Idle:
		keys = []binding{{"enter", "analyze"}, {"ctrl+u", "clear"}, {"tab", "saved"}, {"esc", "quit"}}
	case m.snap.State == pipeline.Failed:
		keys = []binding{{"esc", "dismiss"}}
	case m.snap.State == pipeline.Complete:
		keys = []binding{{"s", "save"}, {"n", "new"}, {"tab", "saved"}, {"q", "quit"}}
	default:
		keys = []binding{{"esc", "cancel"}}
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, FooterKeyStyle.Render(k.key)+" "+FooterDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}
