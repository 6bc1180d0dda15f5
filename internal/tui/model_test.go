package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/client"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/pipeline"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// --- fake client ---

type fakeClient struct {
	mu        sync.Mutex
	items     []models.TranscriptItem
	fetchErr  error
	analysis  *models.Analysis
	saveErr   error
	saved     []*models.SavedAnalysis
	listErr   error
	deleteErr error
	healthErr error
	getErr    error
	updateErr error

	savedCalls []models.Analysis
	deleted    []string
	gets       []string
	updates    []models.Analysis
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) FetchTranscript(context.Context, string) ([]models.TranscriptItem, error) {
	return f.items, f.fetchErr
}

func (f *fakeClient) Analyze(context.Context, []models.TranscriptItem) (*models.Analysis, error) {
	return f.analysis, nil
}

func (f *fakeClient) Save(_ context.Context, _, _ string, a models.Analysis) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.savedCalls = append(f.savedCalls, a)
	return "saved-1", nil
}

func (f *fakeClient) List(context.Context) ([]*models.SavedAnalysis, error) {
	return f.saved, f.listErr
}

func (f *fakeClient) find(id string) *models.SavedAnalysis {
	for _, a := range f.saved {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeClient) Get(_ context.Context, id string) (*models.SavedAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	a := f.find(id)
	if a == nil {
		return nil, &client.APIError{Status: 404, Message: "Analysis not found"}
	}
	cp := *a
	return &cp, nil
}

func (f *fakeClient) Update(_ context.Context, id string, an models.Analysis) (*models.SavedAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a := f.find(id)
	if a == nil {
		return nil, &client.APIError{Status: 404, Message: "Analysis not found"}
	}
	f.updates = append(f.updates, an)
	cp := *a
	cp.Analysis = an
	cp.Title = models.TitleFor(an)
	return &cp, nil
}

func (f *fakeClient) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) Health(context.Context) error { return f.healthErr }

// --- helpers ---

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestModel(t *testing.T, fc *fakeClient) Model {
	t.Helper()
	m := New(context.Background(), fc, pipeline.WithTickInterval(0))
	m.width = 100
	m.height = 40
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

// pumpUntil feeds pipeline snapshots into the model until want is reached.
func pumpUntil(t *testing.T, m Model, want pipeline.State) Model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for m.snap.State != want {
		select {
		case snap := <-m.feed:
			m, _ = update(t, m, PipelineUpdateMsg{Snapshot: snap})
		case <-deadline:
			t.Fatalf("timed out waiting for %s, last state %s", want, m.snap.State)
		}
	}
	return m
}

func submit(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := update(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	return m
}

func completedModel(t *testing.T, fc *fakeClient) Model {
	t.Helper()
	m := newTestModel(t, fc)
	m = typeText(t, m, testURL)
	m = submit(t, m)
	return pumpUntil(t, m, pipeline.Complete)
}

func goodClient() *fakeClient {
	return &fakeClient{
		items:    []models.TranscriptItem{{Text: "hello", Duration: 1}, {Text: "world", Duration: 1, Offset: 1}},
		analysis: &models.Analysis{Topic: "Greetings", KeyPoints: []string{"hello", "world"}, Summary: "A short greeting."},
	}
}

// --- snapshot feed ---

func TestSnapshotFeed_KeepsLatest(t *testing.T) {
	f := newSnapshotFeed()
	f.push(pipeline.Snapshot{Progress: 10})
	f.push(pipeline.Snapshot{Progress: 20})
	f.push(pipeline.Snapshot{Progress: 30})

	got := <-f
	assert.Equal(t, 30, got.Progress)
	select {
	case extra := <-f:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

// --- input ---

func TestInput_TypingAndEditing(t *testing.T) {
	m := newTestModel(t, goodClient())
	m = typeText(t, m, "abc")
	m, _ = update(t, m, key(tea.KeySpace))
	m = typeText(t, m, "é")
	assert.Equal(t, "abc é", m.input)

	m, _ = update(t, m, key(tea.KeyBackspace))
	assert.Equal(t, "abc ", m.input)

	m, _ = update(t, m, key(tea.KeyCtrlU))
	assert.Empty(t, m.input)

	m, _ = update(t, m, key(tea.KeyBackspace))
	assert.Empty(t, m.input)
}

func TestInput_EscQuitsWhenIdle(t *testing.T) {
	m := newTestModel(t, goodClient())
	_, cmd := update(t, m, key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCtrlC_AlwaysQuits(t *testing.T) {
	m := completedModel(t, goodClient())
	_, cmd := update(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// --- pipeline flow ---

func TestSubmit_RunsPipelineToCompletion(t *testing.T) {
	m := completedModel(t, goodClient())

	assert.Equal(t, "dQw4w9WgXcQ", m.snap.VideoID)
	require.NotNil(t, m.snap.Analysis)
	assert.Equal(t, "Greetings", m.snap.Analysis.Topic)

	view := m.View()
	assert.Contains(t, view, "YOUTUBE VIDEO INSIGHTS")
	assert.Contains(t, view, "Greetings")
	assert.Contains(t, view, "A short greeting.")
	assert.Contains(t, view, "2 transcript segments")
}

func TestSubmit_EmptyURLShowsValidationError(t *testing.T) {
	m := newTestModel(t, goodClient())
	m = submit(t, m)
	m = pumpUntil(t, m, pipeline.Failed)

	assert.Equal(t, pipeline.MsgURLRequired, m.snap.Err)
	assert.Contains(t, m.View(), pipeline.MsgURLRequired)
}

func TestSubmit_InvalidURL(t *testing.T) {
	m := newTestModel(t, goodClient())
	m = typeText(t, m, "https://example.com/video")
	m = submit(t, m)
	m = pumpUntil(t, m, pipeline.Failed)

	assert.Equal(t, pipeline.MsgInvalidURL, m.snap.Err)
}

func TestSubmit_FetchFailureThenDismiss(t *testing.T) {
	fc := goodClient()
	fc.fetchErr = &client.APIError{Status: 503, Message: "Network error while fetching transcript"}

	m := newTestModel(t, fc)
	m = typeText(t, m, testURL)
	m = submit(t, m)
	m = pumpUntil(t, m, pipeline.Failed)
	assert.Equal(t, "Network error while fetching transcript", m.snap.Err)

	m, _ = update(t, m, key(tea.KeyEsc))
	m = pumpUntil(t, m, pipeline.Idle)
	assert.Equal(t, testURL, m.input, "the URL is kept for a retry")
	assert.Empty(t, m.snap.Err)
}

func TestSubmitError_ShownInErrorBar(t *testing.T) {
	m := newTestModel(t, goodClient())
	m, _ = update(t, m, SubmitErrorMsg{Err: pipeline.ErrBusy})
	assert.Contains(t, m.View(), pipeline.ErrBusy.Error())

	m, _ = update(t, m, key(tea.KeyEsc))
	assert.Empty(t, m.errorMessage)
}

func TestNew_ResetsToIdleAndClearsInput(t *testing.T) {
	m := completedModel(t, goodClient())
	m, _ = update(t, m, runeKey('n'))
	m = pumpUntil(t, m, pipeline.Idle)

	assert.Empty(t, m.input)
	assert.Nil(t, m.snap.Analysis)
}

func TestProgressView(t *testing.T) {
	m := newTestModel(t, goodClient())
	m.snap = pipeline.Snapshot{State: pipeline.FetchingTranscript, Progress: 25, VideoURL: testURL}
	assert.Contains(t, m.View(), labelExtracting)
	assert.Contains(t, m.View(), " 25%")

	m.snap = pipeline.Snapshot{State: pipeline.AnalyzingContent, Progress: 100, VideoURL: testURL}
	assert.Contains(t, m.View(), labelAnalyzing)
	assert.Contains(t, m.View(), "100%")
}

func TestRenderProgressBar_Clamps(t *testing.T) {
	assert.Contains(t, renderProgressBar(-5, 10), "  0%")
	assert.Contains(t, renderProgressBar(150, 10), "100%")
}

// --- save ---

func TestSave_PersistsCurrentAnalysisOnce(t *testing.T) {
	fc := goodClient()
	m := completedModel(t, fc)

	m, cmd := update(t, m, runeKey('s'))
	require.NotNil(t, cmd)
	assert.True(t, m.saving)

	// A second press while saving is ignored.
	_, again := update(t, m, runeKey('s'))
	assert.Nil(t, again)

	msg := cmd()
	require.IsType(t, SavedMsg{}, msg)
	m, clearCmd := update(t, m, msg)
	assert.NotNil(t, clearCmd)
	assert.False(t, m.saving)
	assert.Equal(t, "saved-1", m.savedID)
	assert.Contains(t, m.View(), noticeSaved)

	_, again = update(t, m, runeKey('s'))
	assert.Nil(t, again, "already saved")
	assert.Len(t, fc.savedCalls, 1)

	m, _ = update(t, m, ClearNoticeMsg{})
	assert.Empty(t, m.notice)
}

func TestSave_Failure(t *testing.T) {
	fc := goodClient()
	fc.saveErr = &client.APIError{Status: 500, Message: "Failed to save analysis"}
	m := completedModel(t, fc)

	m, cmd := update(t, m, runeKey('s'))
	m, _ = update(t, m, cmd())

	assert.False(t, m.saving)
	assert.Empty(t, m.savedID)
	assert.Contains(t, m.View(), "Failed to save analysis")
}

func TestSaveCmd_NoAnalysis(t *testing.T) {
	msg := saveCmd(context.Background(), goodClient(), pipeline.Snapshot{})()
	assert.IsType(t, SaveErrorMsg{}, msg)
}

// --- saved screen ---

func savedFixtures() []*models.SavedAnalysis {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*models.SavedAnalysis{
		{ID: "a", VideoID: "vid-a", Title: "First", CreatedAt: now, Analysis: models.Analysis{Summary: "first summary", KeyPoints: []string{"fa"}}},
		{ID: "b", VideoID: "vid-b", Title: "Second", CreatedAt: now.Add(-time.Hour), Analysis: models.Analysis{Summary: "second summary"}},
	}
}

func openSavedScreen(t *testing.T, fc *fakeClient) Model {
	t.Helper()
	m := newTestModel(t, fc)
	m, cmd := update(t, m, key(tea.KeyTab))
	require.NotNil(t, cmd)
	assert.Equal(t, ScreenSaved, m.screen)
	assert.Contains(t, m.View(), "Loading saved analyses...")
	m, _ = update(t, m, cmd())
	return m
}

func TestSavedScreen_ListNavigateExpand(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	m := openSavedScreen(t, fc)

	view := m.View()
	assert.Contains(t, view, "Saved Analyses (2)")
	assert.Contains(t, view, "First")
	assert.Contains(t, view, "Second")

	m, _ = update(t, m, runeKey('k'))
	assert.Equal(t, 0, m.selected)
	m, _ = update(t, m, runeKey('j'))
	assert.Equal(t, 1, m.selected)
	m, _ = update(t, m, key(tea.KeyDown))
	assert.Equal(t, 1, m.selected)

	m, _ = update(t, m, key(tea.KeyEnter))
	assert.True(t, m.expanded["b"])
	assert.Contains(t, m.View(), "second summary")
	assert.NotContains(t, m.View(), "first summary")

	m, _ = update(t, m, key(tea.KeyEnter))
	assert.False(t, m.expanded["b"])

	m, _ = update(t, m, key(tea.KeyEsc))
	assert.Equal(t, ScreenAnalyze, m.screen)
}

func TestSavedScreen_Empty(t *testing.T) {
	m := openSavedScreen(t, goodClient())
	assert.Contains(t, m.View(), "No saved analyses yet.")

	_, cmd := update(t, m, runeKey('d'))
	assert.Nil(t, cmd)
}

func TestSavedScreen_Delete(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	m := openSavedScreen(t, fc)
	m, _ = update(t, m, runeKey('j'))

	m, cmd := update(t, m, runeKey('d'))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, DeletedMsg{ID: "b"}, msg)

	m, _ = update(t, m, msg)
	require.Len(t, m.saved, 1)
	assert.Equal(t, "a", m.saved[0].ID)
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, []string{"b"}, fc.deleted)
	assert.Contains(t, m.View(), noticeDeleted)
}

func TestSavedScreen_DeleteFailure(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	fc.deleteErr = &client.APIError{Status: 404, Message: "Analysis not found"}
	m := openSavedScreen(t, fc)

	m, cmd := update(t, m, runeKey('d'))
	m, _ = update(t, m, cmd())
	assert.Len(t, m.saved, 2)
	assert.Contains(t, m.View(), "Analysis not found")
}

func TestSavedScreen_LoadFailure(t *testing.T) {
	fc := goodClient()
	fc.listErr = client.ErrServerUnreachable
	m := openSavedScreen(t, fc)

	assert.False(t, m.loadingSaved)
	assert.Contains(t, m.View(), client.ErrServerUnreachable.Error())
}

func TestSavedScreen_RefreshAndQuit(t *testing.T) {
	fc := goodClient()
	m := openSavedScreen(t, fc)

	fc.saved = savedFixtures()
	m, cmd := update(t, m, runeKey('r'))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Len(t, m.saved, 2)

	_, cmd = update(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSavedList_ClampsSelection(t *testing.T) {
	m := newTestModel(t, goodClient())
	m.selected = 5
	m, _ = update(t, m, SavedListMsg{Analyses: savedFixtures()})
	assert.Equal(t, 1, m.selected)
}

// --- health / view ---

func TestHealth(t *testing.T) {
	fc := goodClient()
	m := newTestModel(t, fc)
	m, _ = update(t, m, healthCmd(context.Background(), fc)())
	assert.Equal(t, "Connected", m.statusText)

	fc.healthErr = client.ErrServerUnreachable
	m, _ = update(t, m, healthCmd(context.Background(), fc)())
	assert.Equal(t, "Server unreachable", m.statusText)
	assert.NotEmpty(t, m.errorMessage)
}

func TestView_BeforeWindowSize(t *testing.T) {
	m := New(context.Background(), goodClient())
	assert.Equal(t, "Initializing...", m.View())
}

func TestView_FooterPerState(t *testing.T) {
	m := newTestModel(t, goodClient())
	assert.Contains(t, m.View(), "analyze")

	m.snap.State = pipeline.Failed
	assert.Contains(t, m.View(), "dismiss")

	m.snap.State = pipeline.FetchingTranscript
	assert.Contains(t, m.View(), "cancel")

	m.screen = ScreenSaved
	assert.Contains(t, m.View(), "refresh")
}

func TestErrMessage(t *testing.T) {
	assert.Equal(t, "friendly", errMessage(&client.APIError{Status: 400, Message: "friendly"}))
	assert.Equal(t, "plain", errMessage(errors.New("plain")))
	assert.True(t, strings.HasPrefix(errMessage(&client.APIError{Status: 500}), "api error 500"))
}

// --- edit ---

func openEditor(t *testing.T, fc *fakeClient) Model {
	t.Helper()
	m := openSavedScreen(t, fc)
	m, cmd := update(t, m, runeKey('e'))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, EditLoadedMsg{}, msg)
	m, _ = update(t, m, msg)
	require.NotNil(t, m.editor)
	return m
}

func TestEdit_LoadsLatestCopyAndSaves(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	m := openEditor(t, fc)

	assert.Equal(t, []string{"a"}, fc.gets)
	assert.Equal(t, "", m.editor.topic)
	assert.Contains(t, m.View(), "Edit Analysis")
	assert.Contains(t, m.View(), "first summary")

	// Topic is focused first.
	m = typeText(t, m, "New topic")
	// Key point 1: clear and retype.
	m, _ = update(t, m, key(tea.KeyTab))
	m, _ = update(t, m, key(tea.KeyCtrlU))
	m = typeText(t, m, "rewritten")
	// Add a second point after it.
	m, _ = update(t, m, key(tea.KeyCtrlN))
	m = typeText(t, m, "added")
	// Summary: trim one character.
	m, _ = update(t, m, key(tea.KeyDown))
	m, _ = update(t, m, key(tea.KeyBackspace))

	m, cmd := update(t, m, key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	assert.True(t, m.editor.saving)

	// Keys are ignored while the update is in flight.
	_, again := update(t, m, key(tea.KeyCtrlS))
	assert.Nil(t, again)

	msg := cmd()
	require.IsType(t, UpdatedMsg{}, msg)
	m, clearCmd := update(t, m, msg)
	assert.NotNil(t, clearCmd)

	want := models.Analysis{Topic: "New topic", KeyPoints: []string{"rewritten", "added"}, Summary: "first summar"}
	require.Len(t, fc.updates, 1)
	assert.Equal(t, want, fc.updates[0])

	assert.Nil(t, m.editor)
	assert.Equal(t, "New topic", m.saved[0].Title)
	assert.Equal(t, want, m.saved[0].Analysis)
	assert.Contains(t, m.View(), noticeUpdated)
}

func TestEdit_RemoveKeyPointAndCancel(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	m := openEditor(t, fc)

	m, _ = update(t, m, key(tea.KeyTab))
	m, _ = update(t, m, key(tea.KeyCtrlX))
	assert.Empty(t, m.editor.keyPoints)
	assert.Equal(t, 1, m.editor.focus, "focus moves to the summary")
	assert.Contains(t, m.View(), "ctrl+n to add")

	// Removing with the summary focused is a no-op.
	m, _ = update(t, m, key(tea.KeyCtrlX))
	assert.Empty(t, m.editor.keyPoints)

	m, _ = update(t, m, key(tea.KeyShiftTab))
	assert.Equal(t, 0, m.editor.focus)
	m, _ = update(t, m, key(tea.KeyUp))
	assert.Equal(t, 0, m.editor.focus)

	m, _ = update(t, m, key(tea.KeyEsc))
	assert.Nil(t, m.editor)
	assert.Empty(t, fc.updates)
	assert.Equal(t, []string{"fa"}, m.saved[0].Analysis.KeyPoints, "cancel discards edits")
}

func TestEdit_UpdateFailureKeepsEditorOpen(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	fc.updateErr = &client.APIError{Status: 500, Message: "Failed to update analysis"}
	m := openEditor(t, fc)

	m = typeText(t, m, "x")
	m, cmd := update(t, m, key(tea.KeyCtrlS))
	m, _ = update(t, m, cmd())

	require.NotNil(t, m.editor)
	assert.False(t, m.editor.saving)
	assert.Equal(t, "x", m.editor.topic)
	assert.Contains(t, m.View(), "Failed to update analysis")
}

func TestEdit_MissingAnalysisRefreshesList(t *testing.T) {
	fc := goodClient()
	fc.saved = savedFixtures()
	m := openSavedScreen(t, fc)

	fc.saved = fc.saved[1:]
	m, cmd := update(t, m, runeKey('e'))
	msg := cmd()
	require.IsType(t, EditLoadErrorMsg{}, msg)

	m, refresh := update(t, m, msg)
	assert.Nil(t, m.editor)
	assert.Contains(t, m.View(), "Analysis not found")
	require.NotNil(t, refresh)

	m, _ = update(t, m, refresh())
	assert.Len(t, m.saved, 1)
}

func TestEditor_AddKeyPointFromTopicAppends(t *testing.T) {
	e := newEditor(&models.SavedAnalysis{ID: "x", Analysis: models.Analysis{KeyPoints: []string{"one", "two"}}})
	e.addKeyPoint()
	assert.Equal(t, []string{"one", "two", ""}, e.keyPoints)
	assert.Equal(t, 3, e.focus)

	e.focus = 1
	e.addKeyPoint()
	assert.Equal(t, []string{"one", "", "two", ""}, e.keyPoints)
	assert.Equal(t, 2, e.focus)
}
