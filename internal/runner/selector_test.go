package runner

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
)

func intp(v int) *int { return &v }

func TestTopByVolume(t *testing.T) {
	groups := []cluster.Group{
		{Name: "a", Items: []cluster.Item{
			{Keyword: "low", Cluster: "a", Metrics: cluster.Metrics{SearchVolume: intp(10)}, Status: cluster.StatusSelect},
			{Keyword: "unknown", Cluster: "a", Status: cluster.StatusSelect},
			{Keyword: "rejected", Cluster: "a", Metrics: cluster.Metrics{SearchVolume: intp(9999)}, Status: cluster.StatusReject},
		}},
		{Name: "b", Items: []cluster.Item{
			{Keyword: "high", Cluster: "b", Metrics: cluster.Metrics{SearchVolume: intp(500)}, Status: cluster.StatusKeep},
		}},
	}
	got := topByVolume(groups, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].Keyword)
	assert.Equal(t, "low", got[1].Keyword)
}

func TestAutoSelector_ChooseTitle(t *testing.T) {
	var s AutoSelector
	i, err := s.ChooseTitle(context.Background(), []pipeline.TitleOption{
		{Title: "a", Status: cluster.StatusReject},
		{Title: "b", Status: cluster.StatusSelect},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = s.ChooseTitle(context.Background(), []pipeline.TitleOption{{Status: cluster.StatusKeep}})
	assert.ErrorIs(t, err, ErrNoChoice)
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr string
	}{
		{"1,3 2", []int{0, 2, 1}, ""},
		{" 4 ", []int{3}, ""},
		{"x", nil, "not a number"},
		{"0", nil, "out of range"},
		{"6", nil, "out of range"},
		{"2,2", nil, "given twice"},
	}
	for _, tt := range tests {
		got, err := parseNumbers(tt.in, 5)
		if tt.wantErr != "" {
			assert.ErrorContains(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPromptSelector_SelectKeywords(t *testing.T) {
	quiet(t)
	var out strings.Builder
	sel := NewPromptSelector(strings.NewReader("2\n"), &out)
	defer sel.Close()

	got, err := sel.SelectKeywords(context.Background(), []pipeline.DiscoveredKeyword{{Keyword: "a"}, {Keyword: "b"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Keyword)
	assert.Contains(t, out.String(), "enter for all 2")
}

func TestLineReader_EOFAndCancel(t *testing.T) {
	lr := newLineReader(strings.NewReader("one\n"))
	line, err := lr.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", line)
	_, err = lr.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	pr, pw := io.Pipe()
	defer pw.Close()
	blocked := newLineReader(pr)
	defer blocked.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = blocked.ReadLine(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
