package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoExistingState(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "no run status")
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	st := New("wf-1", "running shoes")
	st.SetStage("titles")
	require.NoError(t, st.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", loaded.WorkflowID)
	assert.Equal(t, "running shoes", loaded.Keyword)
	assert.Equal(t, "titles", loaded.Stage)
	assert.Equal(t, StatusRunning, loaded.Status)
	assert.False(t, loaded.UpdatedAt.Before(loaded.StartedAt))
}

func TestFailThenComplete(t *testing.T) {
	st := New("wf-1", "k")
	st.Fail("timeout", errors.New("titles: timeout"))
	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "timeout", st.ErrorKind)
	assert.Equal(t, "titles: timeout", st.Error)

	st.SetStage("outline")
	assert.Empty(t, st.Error)

	st.Complete(42)
	assert.Equal(t, StatusCompleted, st.Status)
	assert.Equal(t, int64(42), st.ArticleID)
}
