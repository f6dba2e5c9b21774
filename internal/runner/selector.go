package runner

import (
	"context"
	"errors"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
	"github.com/jorge-barreto/blogflow/internal/priority"
	"github.com/jorge-barreto/blogflow/internal/workflow"
)

// ErrNoChoice is returned by selectors when no acceptable option exists.
var ErrNoChoice = errors.New("no acceptable option")

// Selector makes the human decisions of a run.
type Selector interface {
	// SelectKeywords picks the discovered keywords sent to clustering.
	SelectKeywords(ctx context.Context, discovered []pipeline.DiscoveredKeyword) ([]pipeline.DiscoveredKeyword, error)
	// ChooseKeywords returns the items to prioritize, highest priority first.
	ChooseKeywords(ctx context.Context, groups []cluster.Group) ([]cluster.Item, error)
	// ChooseTitle returns the index of the title option to outline.
	ChooseTitle(ctx context.Context, options []pipeline.TitleOption) (int, error)
	EditOutline(ctx context.Context, form workflow.OutlineForm) (workflow.OutlineForm, error)
	EditFinal(ctx context.Context, form workflow.FinalForm) (workflow.FinalForm, error)
}

// AutoSelector decides without asking: every discovered keyword, the
// highest-volume keywords as priorities, the first selected title, and
// forms as seeded.
type AutoSelector struct{}

var _ Selector = AutoSelector{}

func (AutoSelector) SelectKeywords(_ context.Context, discovered []pipeline.DiscoveredKeyword) ([]pipeline.DiscoveredKeyword, error) {
	return discovered, nil
}

func (AutoSelector) ChooseKeywords(_ context.Context, groups []cluster.Group) ([]cluster.Item, error) {
	return topByVolume(groups, priority.Required), nil
}

func (AutoSelector) ChooseTitle(_ context.Context, options []pipeline.TitleOption) (int, error) {
	for i, o := range options {
		if o.Status == cluster.StatusSelect {
			return i, nil
		}
	}
	return -1, ErrNoChoice
}

func (AutoSelector) EditOutline(_ context.Context, form workflow.OutlineForm) (workflow.OutlineForm, error) {
	return form, nil
}

func (AutoSelector) EditFinal(_ context.Context, form workflow.FinalForm) (workflow.FinalForm, error) {
	return form, nil
}

// topByVolume returns up to n selectable items across groups, highest
// search volume first. Unknown volumes sort last.
func topByVolume(groups []cluster.Group, n int) []cluster.Item {
	var all []cluster.Item
	for _, g := range groups {
		for _, it := range g.Items {
			if it.Status == cluster.StatusReject {
				continue
			}
			all = append(all, it)
		}
	}
	sorted := cluster.SortItems(all, cluster.Sort{Column: cluster.ColumnSearchVolume, Desc: true})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
