// Package runner walks a workflow from keyword discovery to a persisted
// article, asking a Selector for every human decision.
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
	"github.com/jorge-barreto/blogflow/internal/state"
	"github.com/jorge-barreto/blogflow/internal/ux"
	"github.com/jorge-barreto/blogflow/internal/workflow"
)

// Step names in run order. They double as artifact record names.
const (
	StepDiscovery    = "discovery"
	StepClustering   = "clustering"
	StepTitles       = "titles"
	StepOutline      = "outline"
	StepFinalArticle = "final_article"
	StepPersist      = "persist"
)

// Steps lists every step of a run.
var Steps = []string{StepDiscovery, StepClustering, StepTitles, StepOutline, StepFinalArticle, StepPersist}

var stepDescriptions = map[string]string{
	StepDiscovery:    "keyword discovery",
	StepClustering:   "group keywords into clusters",
	StepTitles:       "generate title options",
	StepOutline:      "outline and body prompt",
	StepFinalArticle: "assemble the article",
	StepPersist:      "store the article",
}

// DiscoveryOptions are the fixed discovery request parameters.
type DiscoveryOptions struct {
	Language string
	Country  string
	Depth    int
	Limit    int
}

// Runner drives one workflow per Run call.
type Runner struct {
	Caller        pipeline.Caller
	Content       workflow.ContentStore
	Identity      workflow.Identity
	Selector      Selector
	BlogIDs       workflow.BlogIDGenerator
	Discovery     DiscoveryOptions
	MaxRetries    int
	ArtifactsRoot string
	Logger        *zap.Logger

	state  *state.State
	timing *state.Timing
	runDir string
}

// Result describes a completed run.
type Result struct {
	WorkflowID string
	ArticleID  int64
	BlogID     int
	RunDir     string
}

// failRun records err against the current step, saves state (warning on
// error), flushes timing and returns err.
func (r *Runner) failRun(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil || common.IsKind(err, common.KindCancelled) {
		r.state.Status = state.StatusInterrupted
		r.state.Error = err.Error()
	} else {
		r.state.Fail(string(common.KindOf(err)), err)
	}
	if saveErr := r.state.Save(r.runDir); saveErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save state: %v\n", saveErr)
	}
	if flushErr := r.timing.Flush(r.runDir); flushErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to flush timing: %v\n", flushErr)
	}
	ux.StageFail(step, err.Error())
	r.logger().Error("run failed", zap.String("step", step), zap.Error(err))
	return fmt.Errorf("%s: %w", step, err)
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// step runs fn under a header, with timing and automatic retries of
// recoverable failures through again. A nil again disables retries.
func (r *Runner) step(ctx context.Context, name string, fn, again func() error) error {
	idx := 0
	for i, s := range Steps {
		if s == name {
			idx = i
		}
	}
	if ctx.Err() != nil {
		return r.failRun(ctx, name, ctx.Err())
	}
	ux.StageHeader(idx, len(Steps), name, stepDescriptions[name])
	r.state.SetStage(name)
	if err := r.state.Save(r.runDir); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	r.timing.AddStart(name)
	start := time.Now()

	err := fn()
	attempts := 1
	for n := 1; err != nil && again != nil && common.IsRecoverable(err) && n <= r.MaxRetries; n++ {
		if ctx.Err() != nil {
			break
		}
		ux.StageFail(name, err.Error())
		ux.RetryNotice(name, n, r.MaxRetries)
		r.state.Retries++
		attempts++
		err = again()
	}
	outcome := state.OutcomeOK
	if err != nil {
		outcome = "error"
		if kind := common.KindOf(err); kind != "" {
			outcome = string(kind)
		}
	}
	r.timing.AddEnd(name, attempts, outcome)
	if err != nil {
		return r.failRun(ctx, name, err)
	}
	if err := r.timing.Flush(r.runDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to flush timing: %v\n", err)
	}
	ux.StageComplete(name, time.Since(start))
	return nil
}

// Run executes a full workflow for keyword.
func (r *Runner) Run(ctx context.Context, keyword string) (*Result, error) {
	if keyword == "" {
		return nil, common.Validation("keyword is required")
	}
	if r.Selector == nil {
		r.Selector = AutoSelector{}
	}
	workflowID := uuid.NewString()
	r.runDir = state.RunDir(r.ArtifactsRoot, workflowID)
	if err := state.EnsureDir(r.runDir); err != nil {
		return nil, err
	}
	if err := state.SetLatest(r.ArtifactsRoot, workflowID); err != nil {
		return nil, err
	}
	timing, err := state.LoadTiming(r.runDir)
	if err != nil {
		return nil, fmt.Errorf("loading timing: %w", err)
	}
	r.timing = timing
	r.state = state.New(workflowID, keyword)
	if err := r.state.Save(r.runDir); err != nil {
		return nil, fmt.Errorf("saving state: %w", err)
	}
	log := r.logger().With(zap.String("workflow_id", workflowID))
	log.Info("run started", zap.String("keyword", keyword))

	discovered, err := r.discover(ctx, workflowID, keyword)
	if err != nil {
		return nil, err
	}

	w, err := workflow.New(workflow.Deps{
		Caller:   r.Caller,
		Identity: r.Identity,
		Content:  r.Content,
		BlogIDs:  r.BlogIDs,
		Logger:   r.Logger,
	}, workflow.Start{WorkflowID: workflowID, OriginalKeyword: keyword, Discovered: discovered})
	if err != nil {
		return nil, r.failRun(ctx, StepClustering, err)
	}
	defer w.Close()

	ack, err := r.drive(ctx, w, discovered)
	if err != nil {
		return nil, err
	}

	r.state.Complete(ack.ID)
	if err := r.state.Save(r.runDir); err != nil {
		return nil, fmt.Errorf("saving final state: %w", err)
	}
	if err := r.timing.Flush(r.runDir); err != nil {
		return nil, fmt.Errorf("flushing timing: %w", err)
	}
	snap := w.Snapshot()
	ux.Success(ack.ID, snap.BlogID, r.timing.Total())
	log.Info("run completed", zap.Int64("article_id", ack.ID), zap.Int("blog_id", snap.BlogID))
	return &Result{WorkflowID: workflowID, ArticleID: ack.ID, BlogID: snap.BlogID, RunDir: r.runDir}, nil
}

func (r *Runner) discover(ctx context.Context, workflowID, keyword string) ([]pipeline.DiscoveredKeyword, error) {
	var user workflow.User
	if r.Identity != nil {
		u, err := r.Identity.CurrentUser()
		if err != nil {
			return nil, r.failRun(ctx, StepDiscovery, fmt.Errorf("resolving current user: %w", err))
		}
		user = u
	}
	payload := pipeline.DiscoveryRequest{
		Keyword:  keyword,
		Language: r.Discovery.Language,
		Country:  r.Discovery.Country,
		Depth:    r.Discovery.Depth,
		Limit:    r.Discovery.Limit,
		Identity: pipeline.Identity{
			WorkflowID: workflowID,
			UserID:     user.ID,
			SessionID:  workflow.SessionID(user.SessionToken),
		},
	}

	var res *pipeline.DiscoveryResult
	call := func() error {
		raw, err := r.Caller.Call(ctx, pipeline.StageDiscovery, payload)
		if err != nil {
			return err
		}
		res, err = pipeline.DecodeDiscovery(raw)
		return err
	}
	if err := r.step(ctx, StepDiscovery, call, call); err != nil {
		return nil, err
	}
	if len(res.Keywords) == 0 {
		return nil, r.failRun(ctx, StepDiscovery, common.Malformed(string(pipeline.StageDiscovery), "no keywords discovered for %q", keyword))
	}
	r.record(StepDiscovery, res)
	ux.Notice("%d keywords discovered", len(res.Keywords))
	return res.Keywords, nil
}

// drive walks the workflow from clustering to persistence.
func (r *Runner) drive(ctx context.Context, w *workflow.Workflow, discovered []pipeline.DiscoveredKeyword) (workflow.Ack, error) {
	retry := func() error { return w.Retry(ctx) }

	err := r.step(ctx, StepClustering, func() error {
		keywords, err := r.Selector.SelectKeywords(ctx, discovered)
		if err != nil {
			return err
		}
		return w.LoadClusters(ctx, keywords)
	}, retry)
	if err != nil {
		return workflow.Ack{}, err
	}
	r.record(StepClustering, w.Snapshot().Clusters)

	err = r.step(ctx, StepTitles, func() error {
		if err := r.prioritize(ctx, w); err != nil {
			return err
		}
		return w.AdvanceToTitles(ctx)
	}, retry)
	if err != nil {
		return workflow.Ack{}, err
	}
	r.record(StepTitles, w.Snapshot().Titles)

	err = r.step(ctx, StepOutline, func() error {
		titles := w.Snapshot().Titles
		i, err := r.Selector.ChooseTitle(ctx, titles)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(titles) {
			return common.Validation("title choice %d out of range", i+1)
		}
		return w.AdvanceToOutline(ctx, titles[i])
	}, retry)
	if err != nil {
		return workflow.Ack{}, err
	}
	r.record(StepOutline, w.Snapshot().Outline)

	err = r.step(ctx, StepFinalArticle, func() error {
		form, err := r.Selector.EditOutline(ctx, *w.Snapshot().OutlineForm)
		if err != nil {
			return err
		}
		return w.AdvanceToFinalArticle(ctx, form)
	}, retry)
	if err != nil {
		return workflow.Ack{}, err
	}
	r.record(StepFinalArticle, w.Snapshot().Final)

	var ack workflow.Ack
	err = r.step(ctx, StepPersist, func() error {
		snap := w.Snapshot()
		form, err := r.Selector.EditFinal(ctx, fillTitles(*snap.FinalForm, snap.OutlineForm))
		if err != nil {
			return err
		}
		ack, err = w.PersistArticle(ctx, form)
		return err
	}, nil)
	return ack, err
}

// prioritize applies the selector's ordered picks as priorities 1..n.
func (r *Runner) prioritize(ctx context.Context, w *workflow.Workflow) error {
	picks, err := r.Selector.ChooseKeywords(ctx, w.Snapshot().Clusters)
	if err != nil {
		return err
	}
	for i, it := range picks {
		if err := w.SetStatus(it.Cluster, it.Keyword, cluster.StatusSelect); err != nil {
			return err
		}
		if err := w.SetPriority(it.Cluster, it.Keyword, i+1); err != nil {
			return err
		}
	}
	r.logger().Debug("keywords prioritized", zap.Int("count", len(picks)))
	return nil
}

// fillTitles fills blank final-form titles from the outline form.
func fillTitles(f workflow.FinalForm, outline *workflow.OutlineForm) workflow.FinalForm {
	if outline == nil {
		return f
	}
	if f.Title == "" {
		f.Title = outline.Title
	}
	if f.AlternateTitle == "" {
		f.AlternateTitle = outline.AlternateTitle
	}
	if f.AlternateTitle == "" {
		f.AlternateTitle = f.Title
	}
	return f
}

// record writes a stage record, warning on failure.
func (r *Runner) record(step string, v any) {
	if err := state.WriteRecord(r.runDir, step, v); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write %s record: %v\n", step, err)
	}
}
