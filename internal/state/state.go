// Package state writes inspection artifacts for a workflow run: the run
// status, the per-stage records and stage timings. Runs are never resumed
// from these files.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// State is the status.json of a run.
type State struct {
	WorkflowID string    `json:"workflow_id"`
	Keyword    string    `json:"keyword"`
	Stage      string    `json:"stage"`
	Status     string    `json:"status"` // running, completed, failed, interrupted
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Retries    int       `json:"retries,omitempty"`
	ArticleID  int64     `json:"article_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func statePath(runDir string) string {
	return filepath.Join(runDir, "status.json")
}

// New returns a running state for a fresh workflow.
func New(workflowID, keyword string) *State {
	now := time.Now()
	return &State{
		WorkflowID: workflowID,
		Keyword:    keyword,
		Status:     StatusRunning,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Load reads the state from a run directory.
func Load(runDir string) (*State, error) {
	data, err := os.ReadFile(statePath(runDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no run status in %s", runDir)
		}
		return nil, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", statePath(runDir), err)
	}
	return &s, nil
}

// Save writes the state to the run directory.
func (s *State) Save(runDir string) error {
	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writeArtifact(statePath(runDir), data)
}

// SetStage records the stage the run is at and clears any earlier error.
func (s *State) SetStage(stage string) {
	s.Stage = stage
	s.Error = ""
	s.ErrorKind = ""
}

// Fail marks the run failed with err.
func (s *State) Fail(kind string, err error) {
	s.Status = StatusFailed
	s.ErrorKind = kind
	if err != nil {
		s.Error = err.Error()
	}
}

// Complete marks the run completed with the persisted article id.
func (s *State) Complete(articleID int64) {
	s.Status = StatusCompleted
	s.ArticleID = articleID
	s.Error = ""
	s.ErrorKind = ""
}
