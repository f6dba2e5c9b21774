package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

func TestCancel_DropsStaleResponse(t *testing.T) {
	h := newHarness(t)
	h.loadClusters(t, 4, 3, 3)
	h.prioritize(t, 10)
	before := h.w.Snapshot()

	h.caller.holdCalls()
	h.caller.on(pipeline.StageTitles, reply{body: titlesBody})
	errc := make(chan error, 1)
	go func() { errc <- h.w.AdvanceToTitles(context.Background()) }()

	assert.Equal(t, pipeline.StageTitles, <-h.caller.started)
	assert.True(t, h.w.Snapshot().Loading)

	assert.True(t, h.w.Cancel())
	assert.False(t, h.w.Snapshot().Loading)
	assert.False(t, h.w.Cancel(), "nothing left in flight")

	close(h.caller.hold)
	err := <-errc
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindCancelled))

	after := h.w.Snapshot()
	assert.Equal(t, StageClustering, after.Stage)
	assert.False(t, after.Loading)
	assert.Nil(t, after.Titles)
	assert.Equal(t, before.Clusters, after.Clusters)
	assert.Equal(t, before.Error, after.Error)
	assert.False(t, h.w.CanRetry())
}

func TestDispatch_PayloadSnapshot(t *testing.T) {
	h := newHarness(t)
	h.loadClusters(t, 4, 3, 3)
	h.prioritize(t, 10)

	h.caller.holdCalls()
	h.caller.on(pipeline.StageTitles, reply{body: titlesBody})
	errc := make(chan error, 1)
	go func() { errc <- h.w.AdvanceToTitles(context.Background()) }()
	<-h.caller.started

	// Mutate while the call is in flight; the payload must not change.
	g := h.w.Snapshot().Clusters[0]
	require.NoError(t, h.w.SetStatus(g.Name, g.Items[0].Keyword, cluster.StatusReject))

	close(h.caller.hold)
	require.NoError(t, <-errc)

	calls := h.caller.callsFor(pipeline.StageTitles)
	require.Len(t, calls, 1)
	first := calls[0].payload["clusters"].([]any)[0].(map[string]any)["keywords"].([]any)[0].(map[string]any)
	assert.Equal(t, "select_for_blog", first["status"])
	assert.Equal(t, float64(1), first["priority"])
}

func TestDispatch_NewCallSupersedesInFlight(t *testing.T) {
	h := newHarness(t)
	h.caller.holdCalls()
	h.caller.on(pipeline.StageClustering, reply{body: clustersBody(t, 1)}, reply{body: clustersBody(t, 2)})

	first := make(chan error, 1)
	go func() { first <- h.w.LoadClusters(context.Background(), seedKeywords) }()
	<-h.caller.started

	// Only the first call blocks.
	h.caller.mu.Lock()
	firstHold := h.caller.hold
	h.caller.hold = nil
	h.caller.mu.Unlock()

	require.NoError(t, h.w.LoadClusters(context.Background(), seedKeywords[:1]))
	close(firstHold)
	err := <-first
	assert.True(t, common.IsKind(err, common.KindCancelled))

	s := h.w.Snapshot()
	assert.False(t, s.Loading)
	require.Len(t, s.Clusters, 1)
	assert.Len(t, s.Clusters[0].Items, 1)
}

// stageServer routes each stage path to a handler.
func stageServer(t *testing.T, routes map[pipeline.Stage]http.HandlerFunc) (*pipeline.Client, func()) {
	t.Helper()
	mux := http.NewServeMux()
	for st, h := range routes {
		mux.HandleFunc("/"+string(st), h)
	}
	srv := httptest.NewServer(mux)
	endpoints := map[pipeline.Stage]string{}
	for _, st := range pipeline.Stages {
		endpoints[st] = srv.URL + "/" + string(st)
	}
	c := pipeline.NewClient(pipeline.Options{
		Endpoints: endpoints,
		Timeouts:  map[pipeline.Stage]time.Duration{pipeline.StageTitles: 50 * time.Millisecond},
		Logger:    zaptest.NewLogger(t),
	})
	return c, srv.Close
}

func TestTimeout_KeepsStageData(t *testing.T) {
	clusters := clustersBody(t, 4, 3, 3)
	client, stop := stageServer(t, map[pipeline.Stage]http.HandlerFunc{
		pipeline.StageClustering: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(clusters))
		},
		pipeline.StageTitles: func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		},
	})
	defer stop()

	w, err := New(Deps{Caller: client, Logger: zaptest.NewLogger(t)}, Start{OriginalKeyword: "running shoes"})
	require.NoError(t, err)
	require.NoError(t, w.LoadClusters(context.Background(), seedKeywords))
	h := &harness{w: w}
	h.prioritize(t, 10)
	before := w.Snapshot()

	err = w.AdvanceToTitles(context.Background())
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindTimeout))

	after := w.Snapshot()
	assert.Equal(t, StageClustering, after.Stage)
	assert.False(t, after.Loading)
	assert.Contains(t, after.Error, "timeout")
	assert.Equal(t, before.Clusters, after.Clusters)
	assert.True(t, w.CanRetry())
}

func TestRetry_ResendsSnapshottedPayload(t *testing.T) {
	h := newHarness(t)
	h.loadClusters(t, 4, 3, 3)
	h.prioritize(t, 10)
	h.caller.on(pipeline.StageTitles, reply{body: titlesBody})
	require.NoError(t, h.w.AdvanceToTitles(context.Background()))

	h.caller.on(pipeline.StageOutline,
		reply{err: common.ServerError(string(pipeline.StageOutline), http.StatusInternalServerError, errors.New("internal"))},
		reply{body: outlineBody})

	err := h.w.AdvanceToOutline(context.Background(), h.w.Snapshot().Titles[0])
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, common.StatusOf(err))
	s := h.w.Snapshot()
	assert.Equal(t, StageTitleDescription, s.Stage)
	assert.False(t, s.Loading)
	assert.True(t, strings.Contains(s.Error, "status 500"))
	require.True(t, h.w.CanRetry())

	require.NoError(t, h.w.Retry(context.Background()))
	calls := h.caller.callsFor(pipeline.StageOutline)
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].payload, calls[1].payload)
	assert.Equal(t, 1, *h.ids, "blog id generated once")

	s = h.w.Snapshot()
	assert.Equal(t, StageOutlinePrompt, s.Stage)
	assert.Equal(t, 11111, s.BlogID)
	assert.Empty(t, s.Error)
	assert.False(t, h.w.CanRetry())

	err = h.w.Retry(context.Background())
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestMalformedResponse_IsRetryable(t *testing.T) {
	h := newHarness(t)
	h.caller.on(pipeline.StageClustering, reply{body: `<html>oops</html>`}, reply{body: clustersBody(t, 2)})

	err := h.w.LoadClusters(context.Background(), seedKeywords)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindMalformed))
	assert.Nil(t, h.w.Snapshot().Clusters)

	require.NoError(t, h.w.Retry(context.Background()))
	assert.Len(t, h.w.Snapshot().Clusters, 1)
}

func TestBack_CancelsInFlight(t *testing.T) {
	h := newHarness(t)
	h.loadClusters(t, 4, 3, 3)
	h.prioritize(t, 10)
	h.caller.on(pipeline.StageTitles, reply{body: titlesBody})
	require.NoError(t, h.w.AdvanceToTitles(context.Background()))

	h.caller.holdCalls()
	h.caller.on(pipeline.StageOutline, reply{body: outlineBody})
	errc := make(chan error, 1)
	go func() { errc <- h.w.AdvanceToOutline(context.Background(), h.w.Snapshot().Titles[0]) }()
	<-h.caller.started

	require.NoError(t, h.w.Back())
	close(h.caller.hold)
	assert.True(t, common.IsKind(<-errc, common.KindCancelled))

	s := h.w.Snapshot()
	assert.Equal(t, StageClustering, s.Stage)
	assert.False(t, s.Loading)
	assert.Nil(t, s.Outline)
}
