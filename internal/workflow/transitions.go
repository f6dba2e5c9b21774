package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
	"github.com/jorge-barreto/blogflow/internal/priority"
)

// stagePersist labels errors from the content store hand-off.
const stagePersist = "persist"

// AdvanceToTitles sends every cluster, annotated with its current status
// and priority, to the titles stage once enough keywords are prioritized.
func (w *Workflow) AdvanceToTitles(ctx context.Context) error {
	w.mu.Lock()
	if err := w.requireStage(StageClustering); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.store == nil {
		err := w.reject(common.Validation("clusters have not been loaded"))
		w.mu.Unlock()
		return err
	}
	groups := w.store.Groups()
	if err := priority.Gate(groups); err != nil {
		err = w.reject(err)
		w.mu.Unlock()
		return err
	}
	payload := pipeline.TitlesRequest{
		Clusters:        cluster.Clone(groups),
		OriginalKeyword: w.st.OriginalKeyword,
		Identity:        w.identity(),
	}
	w.mu.Unlock()

	return w.dispatch(ctx, &call{
		stage:   pipeline.StageTitles,
		payload: payload,
		apply: func(raw json.RawMessage) error {
			res, err := pipeline.DecodeTitles(raw)
			if err != nil {
				return err
			}
			w.st.Titles = res.Options
			w.st.SelectedTitle = nil
			w.st.BlogID = 0
			w.st.Outline, w.st.OutlineForm = nil, nil
			w.st.Final, w.st.FinalForm = nil, nil
			w.st.Stage = StageTitleDescription
			return nil
		},
	})
}

// SetTitleStatus changes the status of the i-th title option.
func (w *Workflow) SetTitleStatus(i int, status cluster.Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStage(StageTitleDescription); err != nil {
		return err
	}
	if i < 0 || i >= len(w.st.Titles) {
		return w.reject(common.Validation("title option %d out of range (have %d)", i, len(w.st.Titles)))
	}
	if !status.Valid() {
		return w.reject(common.Validation("invalid status %q", status))
	}
	titles := append([]pipeline.TitleOption(nil), w.st.Titles...)
	titles[i].Status = status
	w.st.Titles = titles
	w.st.Error = ""
	return nil
}

// AdvanceToOutline requests an outline for option under a freshly
// generated blog id.
func (w *Workflow) AdvanceToOutline(ctx context.Context, option pipeline.TitleOption) error {
	w.mu.Lock()
	if err := w.requireStage(StageTitleDescription); err != nil {
		w.mu.Unlock()
		return err
	}
	i := w.findTitle(option)
	if i < 0 {
		err := w.reject(common.Validation("title %q is not one of the generated options", option.Title))
		w.mu.Unlock()
		return err
	}
	option = w.st.Titles[i]
	if option.Status != cluster.StatusSelect {
		err := w.reject(common.Validation("title %q is not selected for blog", option.Title))
		w.mu.Unlock()
		return err
	}
	blogID := w.blogIDs.NextBlogID()
	payload := pipeline.OutlineRequest{
		TitleOption:     option,
		BlogID:          blogID,
		OriginalKeyword: w.st.OriginalKeyword,
		Identity:        w.identity(),
	}
	w.mu.Unlock()

	return w.dispatch(ctx, &call{
		stage:   pipeline.StageOutline,
		payload: payload,
		apply: func(raw json.RawMessage) error {
			rec, err := pipeline.DecodeOutline(raw)
			if err != nil {
				return err
			}
			selected := option
			w.st.SelectedTitle = &selected
			w.st.BlogID = blogID
			w.st.Outline = rec
			w.st.OutlineForm = seedOutline(rec)
			w.st.Final, w.st.FinalForm = nil, nil
			w.st.Stage = StageOutlinePrompt
			return nil
		},
	})
}

// findTitle returns the index of the stored option matching option by
// keyword and title, or -1. Caller must hold w.mu.
func (w *Workflow) findTitle(option pipeline.TitleOption) int {
	for i, t := range w.st.Titles {
		if t.Keyword == option.Keyword && t.Title == option.Title {
			return i
		}
	}
	return -1
}

// UpdateOutlineForm replaces the editable outline form. The outline record
// is left untouched.
func (w *Workflow) UpdateOutlineForm(form OutlineForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStage(StageOutlinePrompt); err != nil {
		return err
	}
	w.st.OutlineForm = &form
	return nil
}

// AdvanceToFinalArticle requests the article for the edited outline form.
func (w *Workflow) AdvanceToFinalArticle(ctx context.Context, form OutlineForm) error {
	w.mu.Lock()
	if err := w.requireStage(StageOutlinePrompt); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := validateForm(w.validate, form); err != nil {
		err = w.reject(err)
		w.mu.Unlock()
		return err
	}
	w.st.OutlineForm = &form

	keyword := w.st.OriginalKeyword
	if w.st.SelectedTitle != nil && w.st.SelectedTitle.Keyword != "" {
		keyword = w.st.SelectedTitle.Keyword
	}
	if w.st.Outline.Keyword != "" {
		keyword = w.st.Outline.Keyword
	}
	blogID := w.st.BlogID
	payload := pipeline.FinalArticleRequest{
		BlogID:         blogID,
		Title:          form.Title,
		NewTitle:       form.AlternateTitle,
		Keyword:        keyword,
		OutlineID:      w.st.Outline.OutlineID.String(),
		PromptID:       w.st.Outline.PromptID.String(),
		Outline:        form.Outline,
		BodyPrompt:     form.BodyPrompt,
		TargetAudience: form.TargetAudience,
		Goal:           form.Goal,
		Identity:       w.identity(),
	}
	w.mu.Unlock()

	return w.dispatch(ctx, &call{
		stage:   pipeline.StageFinalArticle,
		payload: payload,
		apply: func(raw json.RawMessage) error {
			rec, err := pipeline.DecodeFinalArticle(raw)
			if err != nil {
				return err
			}
			if id, ok := rec.BlogID.Int(); ok && id != blogID {
				w.logger.Warn("final article blog id differs from request",
					zap.Int("requested", blogID), zap.Int("returned", id))
			}
			w.st.Final = rec
			w.st.FinalForm = seedFinal(rec)
			w.st.Stage = StageFinalBlog
			return nil
		},
	})
}

// UpdateFinalForm replaces the editable final-article form.
func (w *Workflow) UpdateFinalForm(form FinalForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStage(StageFinalBlog); err != nil {
		return err
	}
	w.st.FinalForm = &form
	return nil
}

// PersistArticle validates form and hands the article to the content store.
// Fields are trimmed for the required check only; the article is stored as
// given. The hand-off is cancelled like any other in-flight call, and a
// persisted workflow is terminal.
func (w *Workflow) PersistArticle(ctx context.Context, form FinalForm) (Ack, error) {
	w.mu.Lock()
	if err := w.requireStage(StageFinalBlog); err != nil {
		w.mu.Unlock()
		return Ack{}, err
	}
	if w.content == nil {
		err := w.reject(common.Validation("no content store configured"))
		w.mu.Unlock()
		return Ack{}, err
	}
	if err := validateForm(w.validate, form.trimmed()); err != nil {
		err = w.reject(err)
		w.mu.Unlock()
		return Ack{}, err
	}
	w.st.FinalForm = &form
	article := Article{
		WorkflowID:     w.st.WorkflowID,
		UserID:         w.st.UserID,
		SessionID:      w.st.SessionID,
		BlogID:         w.st.BlogID,
		Title:          form.Title,
		AlternateTitle: form.AlternateTitle,
		Body:           form.Article,
		Keyword:        w.st.OriginalKeyword,
	}
	if w.st.Final != nil {
		article.MetaDescription = w.st.Final.MetaDescription
		if w.st.Final.Keyword != "" {
			article.Keyword = w.st.Final.Keyword
		}
	}
	if w.st.Outline != nil {
		article.OutlineID = w.st.Outline.OutlineID.String()
	}
	w.abort()
	w.gen++
	gen := w.gen
	persistCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.st.Loading = true
	w.st.Error = ""
	w.mu.Unlock()

	start := time.Now()
	ack, err := w.content.Persist(persistCtx, article)

	w.mu.Lock()
	defer w.mu.Unlock()
	cancel()
	if gen != w.gen {
		w.logger.Warn("dropping stale persist result",
			zap.Int64("article_id", ack.ID), zap.Error(err))
		return Ack{}, common.Cancelled(stagePersist, context.Canceled)
	}
	w.cancel = nil
	w.st.Loading = false
	if err != nil {
		err = fmt.Errorf("persisting article: %w", err)
		w.st.Error = err.Error()
		w.logger.Error("persist failed", zap.Error(err))
		return Ack{}, err
	}
	w.st.Persisted = true
	w.st.Ack = &ack
	w.lastErr = nil
	w.logger.Info("article persisted",
		zap.Int64("article_id", ack.ID),
		zap.Int("blog_id", article.BlogID),
		zap.Duration("elapsed", time.Since(start)))
	return ack, nil
}

// Back returns to the previous stage without re-fetching. Any in-flight
// call is cancelled and the current stage's form edits are discarded.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.Closed || w.st.Persisted {
		return common.Validation("workflow %s is closed", w.st.WorkflowID)
	}
	prev, ok := w.st.Stage.previous()
	if !ok {
		return w.reject(common.Validation("already at the first stage"))
	}
	w.abort()
	switch w.st.Stage {
	case StageOutlinePrompt:
		w.st.OutlineForm = seedOutline(w.st.Outline)
	case StageFinalBlog:
		w.st.FinalForm = seedFinal(w.st.Final)
	}
	w.lastErr = nil
	w.st.Error = ""
	w.logger.Info("stage back", zap.String("from", string(w.st.Stage)), zap.String("to", string(prev)))
	w.st.Stage = prev
	return nil
}
