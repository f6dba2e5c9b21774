package ux

import (
	"fmt"

	"github.com/jorge-barreto/blogflow/internal/state"
	"github.com/jorge-barreto/blogflow/internal/store"
)

// RenderStatus prints the status display for a run.
func RenderStatus(steps []string, st *state.State, runDir string) {
	timing, _ := state.LoadTiming(runDir)

	printf("%sWorkflow:%s %s\n", Bold, Reset, st.WorkflowID)
	printf("%sKeyword:%s  %s\n", Bold, Reset, st.Keyword)
	switch st.Status {
	case state.StatusCompleted:
		printf("%sState:%s    %s%scompleted%s (article %d)\n", Bold, Reset, Green, Bold, Reset, st.ArticleID)
	case state.StatusFailed:
		printf("%sState:%s    %sfailed at %s%s: %s\n", Bold, Reset, Red, st.Stage, Reset, st.Error)
	default:
		printf("%sState:%s    %s at %s\n", Bold, Reset, st.Status, st.Stage)
	}
	if st.Retries > 0 {
		printf("%sRetries:%s  %d\n", Bold, Reset, st.Retries)
	}

	current := len(steps)
	for i, s := range steps {
		if s == st.Stage {
			current = i
		}
	}
	if st.Status == state.StatusCompleted {
		current = len(steps)
	}

	printf("\n%sStages:%s\n", Bold, Reset)
	for i, s := range steps {
		switch {
		case i < current:
			printf("    %s%d%s  %-16s %sdone%s  %s\n", Dim, i+1, Reset, s, Green, Reset, findDuration(timing, s))
		case i == current:
			printf("  %s→%s %s%d%s  %-16s %s%s%s\n", Yellow, Reset, Dim, i+1, Reset, s, Dim, st.Status, Reset)
		default:
			printf("    %s%d%s  %-16s\n", Dim, i+1, Reset, s)
		}
	}

	printf("\n%sArtifacts:%s\n", Bold, Reset)
	names, err := state.Records(runDir)
	if err != nil || len(names) == 0 {
		printf("  %s(none)%s\n", Dim, Reset)
		return
	}
	for _, n := range names {
		printf("  %s\n", state.RecordPath(runDir, n))
	}
	printf("\n")
}

// ArticleTable prints persisted article summaries.
func ArticleTable(articles []store.Summary) {
	if len(articles) == 0 {
		printf("%s(no articles)%s\n", Dim, Reset)
		return
	}
	for _, a := range articles {
		printf("%s%4d%s  %s  %s%s%s %s(blog %d, %d words)%s\n",
			Dim, a.ID, Reset, a.CreatedAt.Format("2006-01-02 15:04"),
			Bold, a.Title, Reset, Dim, a.BlogID, a.WordCount, Reset)
		if a.Excerpt != "" {
			printf("      %s\n", truncate(a.Excerpt, 100))
		}
	}
}

func findDuration(timing *state.Timing, stage string) string {
	if timing == nil {
		return ""
	}
	e, ok := timing.Last(stage)
	if !ok {
		return ""
	}
	if e.Attempts > 1 {
		return fmt.Sprintf("(%s, %d attempts)", e.Duration, e.Attempts)
	}
	return fmt.Sprintf("(%s)", e.Duration)
}
