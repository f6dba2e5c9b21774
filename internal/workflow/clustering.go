package workflow

import (
	"context"
	"encoding/json"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
	"github.com/jorge-barreto/blogflow/internal/priority"
)

const maxDifficulty = 100

// LoadClusters sends keywords to the clustering stage and replaces the
// cluster store with the result. The workflow stays at the clustering stage.
func (w *Workflow) LoadClusters(ctx context.Context, keywords []pipeline.DiscoveredKeyword) error {
	w.mu.Lock()
	if err := w.requireStage(StageClustering); err != nil {
		w.mu.Unlock()
		return err
	}
	if len(keywords) == 0 {
		err := w.reject(common.Validation("no keywords selected for clustering"))
		w.mu.Unlock()
		return err
	}
	payload := pipeline.ClusteringRequest{
		Keywords:        append([]pipeline.DiscoveredKeyword(nil), keywords...),
		OriginalKeyword: w.st.OriginalKeyword,
		Identity:        w.identity(),
	}
	w.mu.Unlock()

	return w.dispatch(ctx, &call{
		stage:   pipeline.StageClustering,
		payload: payload,
		apply: func(raw json.RawMessage) error {
			res, err := pipeline.DecodeClusters(raw)
			if err != nil {
				return err
			}
			w.store = cluster.NewStore(res.Clusters)
			w.st.Titles = nil
			w.st.SelectedTitle = nil
			w.st.BlogID = 0
			w.st.Outline, w.st.OutlineForm = nil, nil
			w.st.Final, w.st.FinalForm = nil, nil
			return nil
		},
	})
}

// update applies fn to the cluster store at the clustering stage.
func (w *Workflow) update(fn func(s *cluster.Store) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireStage(StageClustering); err != nil {
		return err
	}
	if w.store == nil {
		return w.reject(common.Validation("clusters have not been loaded"))
	}
	if err := fn(w.store); err != nil {
		return w.reject(err)
	}
	w.st.Error = ""
	return nil
}

// SetStatus changes an item's selection status. Leaving SelectForBlog
// clears the item's priority.
func (w *Workflow) SetStatus(clusterName, keyword string, status cluster.Status) error {
	return w.update(func(s *cluster.Store) error {
		return s.Update(clusterName, keyword, cluster.WithStatus(status))
	})
}

// SetPriority assigns one of the priorities currently offered for the
// item. Zero clears the priority.
func (w *Workflow) SetPriority(clusterName, keyword string, p int) error {
	return w.update(func(s *cluster.Store) error {
		if p != 0 {
			offered := priority.ForItem(s.Groups(), clusterName, keyword)
			if !priority.Offered(offered, p) {
				return common.Validation("priority %d is not available for %q (offered %v)", p, keyword, offered)
			}
		}
		return s.Update(clusterName, keyword, cluster.WithPriority(p))
	})
}

// SetEditing toggles the inline-edit flag of an item.
func (w *Workflow) SetEditing(clusterName, keyword string, editing bool) error {
	return w.update(func(s *cluster.Store) error {
		return s.Update(clusterName, keyword, cluster.WithEditing(editing))
	})
}

// Merge joins keywords of one cluster into the first one's text.
func (w *Workflow) Merge(clusterName string, keywords []string) error {
	return w.update(func(s *cluster.Store) error {
		return s.Merge(clusterName, keywords)
	})
}

// SetFilters replaces the view filters.
func (w *Workflow) SetFilters(f cluster.Filters) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range []*int{f.MinDifficulty, f.MaxDifficulty} {
		if d != nil && (*d < 0 || *d > maxDifficulty) {
			return w.reject(common.Validation("difficulty %d out of range 0..%d", *d, maxDifficulty))
		}
	}
	if f.MinDifficulty != nil && f.MaxDifficulty != nil && *f.MinDifficulty > *f.MaxDifficulty {
		return w.reject(common.Validation("min difficulty %d exceeds max difficulty %d", *f.MinDifficulty, *f.MaxDifficulty))
	}
	w.st.Filters = cloneFilters(f)
	return nil
}

// SetGroupBy changes the grouping key of the view.
func (w *Workflow) SetGroupBy(by cluster.GroupBy) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !by.Valid() {
		return w.reject(common.Validation("unknown grouping %q", by))
	}
	w.st.GroupBy = by
	return nil
}

// ToggleSort cycles the card-view sort on column.
func (w *Workflow) ToggleSort(c cluster.Column) (cluster.Sort, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !c.Valid() {
		return w.st.Sort, w.reject(common.Validation("unknown sort column %q", c))
	}
	w.st.Sort = w.st.Sort.Toggle(c)
	return w.st.Sort, nil
}

// View returns the filtered, grouped and sorted projection of the clusters.
func (w *Workflow) View() []cluster.Group {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.store == nil {
		return nil
	}
	groups := cluster.Apply(w.store.Groups(), w.st.Filters, w.st.GroupBy)
	if w.st.Sort.Column == "" {
		return cluster.Clone(groups)
	}
	out := make([]cluster.Group, len(groups))
	for i, g := range groups {
		g.Items = cluster.SortItems(g.Items, w.st.Sort)
		out[i] = g
	}
	return out
}

// AvailablePriorities lists the priorities that may be assigned to an item.
func (w *Workflow) AvailablePriorities(clusterName, keyword string) []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.store == nil {
		return nil
	}
	return priority.ForItem(w.store.Groups(), clusterName, keyword)
}

// SelectedCount is the number of selected and prioritized keywords.
func (w *Workflow) SelectedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.store == nil {
		return 0
	}
	return priority.Count(w.store.Groups())
}
