package tui

import (
	"github.com/Ronnakrit11/nextai-ytsummary/internal/pipeline"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// PipelineUpdateMsg carries the latest pipeline state.
type PipelineUpdateMsg struct {
	Snapshot pipeline.Snapshot
}

// SubmitErrorMsg is sent when the pipeline refuses a submission.
type SubmitErrorMsg struct {
	Err error
}

// HealthMsg carries the result of the startup health check.
type HealthMsg struct {
	Err error
}

// SavedMsg is sent when the current analysis has been persisted.
type SavedMsg struct {
	ID string
}

// SaveErrorMsg is sent when saving fails.
type SaveErrorMsg struct {
	Err error
}

// SavedListMsg carries the saved analyses, newest first.
type SavedListMsg struct {
	Analyses []*models.SavedAnalysis
}

// SavedListErrorMsg is sent when loading saved analyses fails.
type SavedListErrorMsg struct {
	Err error
}

// DeletedMsg is sent when a saved analysis has been deleted.
type DeletedMsg struct {
	ID string
}

// DeleteErrorMsg is sent when a delete fails.
type DeleteErrorMsg struct {
	ID  string
	Err error
}

// EditLoadedMsg carries the latest copy of an analysis about to be edited.
type EditLoadedMsg struct {
	Analysis *models.SavedAnalysis
}

// EditLoadErrorMsg is sent when an analysis cannot be loaded for editing.
type EditLoadErrorMsg struct {
	ID  string
	Err error
}

// UpdatedMsg carries an analysis after a successful edit.
type UpdatedMsg struct {
	Analysis *models.SavedAnalysis
}

// UpdateErrorMsg is sent when saving an edit fails.
type UpdateErrorMsg struct {
	Err error
}

// ClearNoticeMsg clears a transient notice after a timeout.
type ClearNoticeMsg struct{}
