package workflow

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

// call is a snapshotted pipeline request plus the state update to apply
// when its response arrives.
type call struct {
	stage   pipeline.Stage
	payload any
	// apply decodes raw and mutates state. It runs under w.mu and must not
	// touch state when it returns an error.
	apply func(raw json.RawMessage) error
}

// dispatch runs c outside the lock. Any prior in-flight call is cancelled
// first, and a response that is no longer current is dropped.
func (w *Workflow) dispatch(ctx context.Context, c *call) error {
	w.mu.Lock()
	w.abort()
	w.gen++
	gen := w.gen
	callCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.st.Loading = true
	w.st.Error = ""
	w.mu.Unlock()

	log := w.logger.With(zap.String("stage", string(c.stage)), zap.Uint64("generation", gen))
	log.Debug("dispatching")
	start := time.Now()

	raw, err := w.caller.Call(callCtx, c.stage, c.payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	cancel()

	if gen != w.gen {
		log.Info("dropping stale response", zap.Duration("elapsed", time.Since(start)))
		return common.Cancelled(string(c.stage), context.Canceled)
	}
	w.cancel = nil
	w.st.Loading = false

	if err == nil {
		err = c.apply(raw)
	}
	if err != nil {
		return w.fail(c, err)
	}
	w.lastErr = nil
	log.Info("stage completed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// fail records a failed call. Caller must hold w.mu.
func (w *Workflow) fail(c *call, err error) error {
	log := w.logger.With(zap.String("stage", string(c.stage)))
	switch {
	case common.IsKind(err, common.KindCancelled):
		log.Info("call cancelled")
		return err
	case common.IsRecoverable(err):
		w.lastErr = c
	}
	w.st.Error = err.Error()
	log.Error("call failed", zap.String("kind", string(common.KindOf(err))), zap.Error(err))
	return err
}

// abort cancels the in-flight call, if any, and invalidates its response.
// Caller must hold w.mu.
func (w *Workflow) abort() bool {
	if w.cancel == nil {
		return false
	}
	w.cancel()
	w.cancel = nil
	w.gen++
	w.st.Loading = false
	return true
}

// Cancel aborts the in-flight call. Its late response is dropped and stage
// data is left as it was. It reports whether a call was in flight.
func (w *Workflow) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.abort() {
		return false
	}
	w.logger.Info("in-flight call cancelled", zap.String("stage", string(w.st.Stage)))
	return true
}

// Retry re-dispatches the last failed call with the payload it was first
// sent with.
func (w *Workflow) Retry(ctx context.Context) error {
	w.mu.Lock()
	c := w.lastErr
	if c == nil {
		w.mu.Unlock()
		return common.Validation("no failed call to retry")
	}
	if w.st.Closed || w.st.Persisted {
		w.mu.Unlock()
		return common.Validation("workflow %s is closed", w.st.WorkflowID)
	}
	w.mu.Unlock()

	w.logger.Info("retrying", zap.String("stage", string(c.stage)))
	return w.dispatch(ctx, c)
}

// CanRetry reports whether Retry has a failed call to re-dispatch.
func (w *Workflow) CanRetry() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr != nil
}
