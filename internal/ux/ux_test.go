package ux

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/state"
	"github.com/jorge-barreto/blogflow/internal/store"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func TestClusterTable(t *testing.T) {
	buf := capture(t)
	vol := 1200
	ClusterTable([]cluster.Group{{
		Name: "shoes",
		Items: []cluster.Item{
			{Keyword: "trail shoes", Metrics: cluster.Metrics{SearchVolume: &vol}, Status: cluster.StatusSelect, Priority: 2},
			{Keyword: "road shoes", Status: cluster.StatusReject},
		},
	}})
	out := buf.String()
	assert.Contains(t, out, "shoes")
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "1200")
	assert.Contains(t, out, "reject")
}

func TestRenderStatus(t *testing.T) {
	buf := capture(t)
	dir := t.TempDir()
	st := state.New("wf-1", "running shoes")
	st.SetStage("titles")
	st.Fail("timeout", errors.New("titles: timeout"))
	require.NoError(t, st.Save(dir))
	require.NoError(t, state.WriteRecord(dir, "clustering", map[string]any{}))
	timing, err := state.LoadTiming(dir)
	require.NoError(t, err)
	timing.AddStart("clustering")
	timing.AddEnd("clustering", 2, state.OutcomeOK)
	require.NoError(t, timing.Flush(dir))

	RenderStatus([]string{"discovery", "clustering", "titles", "outline"}, st, dir)
	out := buf.String()
	assert.Contains(t, out, "wf-1")
	assert.Contains(t, out, "failed at titles")
	assert.Contains(t, out, "clustering.json")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "2 attempts")
}

func TestArticleTable(t *testing.T) {
	buf := capture(t)
	ArticleTable(nil)
	assert.Contains(t, buf.String(), "no articles")

	buf.Reset()
	ArticleTable([]store.Summary{{ID: 3, Title: "Best Shoes", BlogID: 12345, WordCount: 800, CreatedAt: time.Now()}})
	assert.Contains(t, buf.String(), "Best Shoes")
	assert.Contains(t, buf.String(), "blog 12345")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}
