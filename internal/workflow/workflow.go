// Package workflow drives one content-generation session from clustering to a
// persisted article. All state lives in a single mutex-guarded cell; network
// calls run outside the lock against payloads snapshotted under it.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

// Stage is a step of the interactive workflow.
type Stage string

const (
	StageClustering       Stage = "clustering"
	StageTitleDescription Stage = "title_description"
	StageOutlinePrompt    Stage = "outline_prompt"
	StageFinalBlog        Stage = "final_blog"
)

var stageOrder = []Stage{StageClustering, StageTitleDescription, StageOutlinePrompt, StageFinalBlog}

func (s Stage) previous() (Stage, bool) {
	for i, st := range stageOrder {
		if st == s && i > 0 {
			return stageOrder[i-1], true
		}
	}
	return "", false
}

// Deps are the collaborators a workflow needs.
type Deps struct {
	Caller   pipeline.Caller
	Identity Identity
	Content  ContentStore
	BlogIDs  BlogIDGenerator
	Logger   *zap.Logger
}

// Start is the hand-over from keyword discovery.
type Start struct {
	WorkflowID      string
	OriginalKeyword string
	Discovered      []pipeline.DiscoveredKeyword
}

// State is a point-in-time copy of the workflow.
type State struct {
	WorkflowID      string
	UserID          string
	SessionID       string
	OriginalKeyword string

	Stage     Stage
	Loading   bool
	Error     string
	Persisted bool
	Closed    bool

	Discovered []pipeline.DiscoveredKeyword
	Clusters   []cluster.Group
	Filters    cluster.Filters
	GroupBy    cluster.GroupBy
	Sort       cluster.Sort

	Titles        []pipeline.TitleOption
	SelectedTitle *pipeline.TitleOption
	BlogID        int

	Outline     *pipeline.OutlineRecord
	OutlineForm *OutlineForm

	Final     *pipeline.FinalArticleRecord
	FinalForm *FinalForm

	Ack *Ack
}

// Workflow is a single session. It is safe for concurrent use.
type Workflow struct {
	caller   pipeline.Caller
	content  ContentStore
	blogIDs  BlogIDGenerator
	logger   *zap.Logger
	validate *validator.Validate

	mu      sync.Mutex
	st      State
	store   *cluster.Store
	gen     uint64
	cancel  context.CancelFunc
	lastErr *call
}

// New creates a workflow at the clustering stage.
func New(d Deps, s Start) (*Workflow, error) {
	if d.Caller == nil {
		return nil, fmt.Errorf("workflow: caller is required")
	}
	if s.OriginalKeyword == "" {
		return nil, common.Validation("original keyword is required")
	}
	var user User
	if d.Identity != nil {
		u, err := d.Identity.CurrentUser()
		if err != nil {
			return nil, fmt.Errorf("resolving current user: %w", err)
		}
		user = u
	}
	if d.BlogIDs == nil {
		d.BlogIDs = RandomBlogIDs{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if s.WorkflowID == "" {
		s.WorkflowID = uuid.NewString()
	}

	w := &Workflow{
		caller:   d.Caller,
		content:  d.Content,
		blogIDs:  d.BlogIDs,
		validate: newValidator(),
		st: State{
			WorkflowID:      s.WorkflowID,
			UserID:          user.ID,
			SessionID:       SessionID(user.SessionToken),
			OriginalKeyword: s.OriginalKeyword,
			Stage:           StageClustering,
			GroupBy:         cluster.ByClusterName,
			Discovered:      append([]pipeline.DiscoveredKeyword(nil), s.Discovered...),
		},
	}
	w.logger = d.Logger.With(zap.String("workflow_id", s.WorkflowID))
	return w, nil
}

// ID returns the workflow id.
func (w *Workflow) ID() string {
	return w.st.WorkflowID
}

// Snapshot returns a deep copy of the current state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.st
	s.Discovered = append([]pipeline.DiscoveredKeyword(nil), w.st.Discovered...)
	if w.store != nil {
		s.Clusters = cluster.Clone(w.store.Groups())
	}
	s.Titles = append([]pipeline.TitleOption(nil), w.st.Titles...)
	if w.st.SelectedTitle != nil {
		t := *w.st.SelectedTitle
		s.SelectedTitle = &t
	}
	if w.st.Outline != nil {
		o := *w.st.Outline
		s.Outline = &o
	}
	if w.st.OutlineForm != nil {
		f := *w.st.OutlineForm
		s.OutlineForm = &f
	}
	if w.st.Final != nil {
		f := *w.st.Final
		s.Final = &f
	}
	if w.st.FinalForm != nil {
		f := *w.st.FinalForm
		s.FinalForm = &f
	}
	if w.st.Ack != nil {
		a := *w.st.Ack
		s.Ack = &a
	}
	s.Filters = cloneFilters(w.st.Filters)
	return s
}

// Close aborts any in-flight call and discards the workflow.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.abort()
	w.st.Closed = true
	w.lastErr = nil
}

func (w *Workflow) identity() pipeline.Identity {
	return pipeline.Identity{
		WorkflowID: w.st.WorkflowID,
		UserID:     w.st.UserID,
		SessionID:  w.st.SessionID,
	}
}

// requireStage fails when the workflow is closed or not at want.
// Caller must hold w.mu.
func (w *Workflow) requireStage(want Stage) error {
	if w.st.Closed || w.st.Persisted {
		return common.Validation("workflow %s is closed", w.st.WorkflowID)
	}
	if w.st.Stage != want {
		return common.Validation("operation requires stage %s, workflow is at %s", want, w.st.Stage)
	}
	return nil
}

// reject records a client-side failure without touching stage data.
// Caller must hold w.mu.
func (w *Workflow) reject(err error) error {
	w.st.Error = err.Error()
	w.logger.Warn("rejected", zap.String("stage", string(w.st.Stage)), zap.Error(err))
	return err
}

func cloneFilters(f cluster.Filters) cluster.Filters {
	if f.MinDifficulty != nil {
		v := *f.MinDifficulty
		f.MinDifficulty = &v
	}
	if f.MaxDifficulty != nil {
		v := *f.MaxDifficulty
		f.MaxDifficulty = &v
	}
	return f
}
