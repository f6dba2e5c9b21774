package cluster

import (
	"github.com/jorge-barreto/blogflow/internal/common"
)

// MaxPriority is the highest rank a keyword can hold.
const MaxPriority = 10

// ItemUpdate is a partial update; nil fields are left as they are.
type ItemUpdate struct {
	Status   *Status
	Priority *int
	Editing  *bool
}

// WithStatus returns an update that sets only the status.
func WithStatus(s Status) ItemUpdate {
	return ItemUpdate{Status: &s}
}

// WithPriority returns an update that sets only the priority.
func WithPriority(p int) ItemUpdate {
	return ItemUpdate{Priority: &p}
}

// WithEditing returns an update that sets only the editing flag.
func WithEditing(e bool) ItemUpdate {
	return ItemUpdate{Editing: &e}
}

// Store holds the source groups. The slice it holds is replaced, never
// modified in place, so any slice obtained from Groups stays stable.
type Store struct {
	groups []Group
}

// NewStore normalizes groups and takes ownership of a copy of them: missing
// statuses default to SelectForBlog, items remember their cluster, duplicate
// keywords inside a group are dropped and the status/priority invariant is
// enforced. Ranking belongs to the user, so incoming priorities are
// discarded and every item starts unranked.
func NewStore(groups []Group) *Store {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		ng := g
		ng.Items = make([]Item, 0, len(g.Items))
		seen := make(map[string]bool, len(g.Items))
		for _, it := range g.Items {
			if seen[it.Keyword] {
				continue
			}
			seen[it.Keyword] = true
			if !it.Status.Valid() {
				it.Status = StatusSelect
			}
			if it.Cluster == "" {
				it.Cluster = g.Name
			}
			it.Priority = 0
			enforce(&it)
			ng.Items = append(ng.Items, it)
		}
		out = append(out, ng)
	}
	return &Store{groups: out}
}

// Groups returns the current source groups. Treat the result as read-only.
func (s *Store) Groups() []Group {
	return s.groups
}

// Find locates an item by cluster name then keyword.
func (s *Store) Find(clusterName, keyword string) (Item, bool) {
	gi, ii := s.locate(clusterName, keyword)
	if gi < 0 || ii < 0 {
		return Item{}, false
	}
	return s.groups[gi].Items[ii], true
}

// Update applies u to the item identified by cluster name then keyword.
// Keywords are not unique across clusters once merged, so both are required.
func (s *Store) Update(clusterName, keyword string, u ItemUpdate) error {
	gi, ii := s.locate(clusterName, keyword)
	if gi < 0 {
		return common.Validation("unknown cluster %q", clusterName)
	}
	if ii < 0 {
		return common.Validation("keyword %q not found in cluster %q", keyword, clusterName)
	}
	if u.Status != nil && !u.Status.Valid() {
		return common.Validation("invalid status %q", *u.Status)
	}
	if u.Priority != nil && (*u.Priority < 0 || *u.Priority > MaxPriority) {
		return common.Validation("priority %d out of range 0..%d", *u.Priority, MaxPriority)
	}

	it := s.groups[gi].Items[ii]
	if u.Priority != nil && *u.Priority > 0 && u.Status == nil && it.Status != StatusSelect {
		return common.Validation("keyword %q must be selected for blog before it can be prioritized", keyword)
	}
	if u.Status != nil {
		it.Status = *u.Status
	}
	if u.Priority != nil {
		it.Priority = *u.Priority
	}
	if u.Editing != nil {
		it.Editing = *u.Editing
	}
	enforce(&it)

	s.replaceItem(gi, ii, it)
	return nil
}

func (s *Store) replaceItem(gi, ii int, it Item) {
	groups := make([]Group, len(s.groups))
	copy(groups, s.groups)
	items := make([]Item, len(groups[gi].Items))
	copy(items, groups[gi].Items)
	items[ii] = it
	groups[gi].Items = items
	s.groups = groups
}

func (s *Store) locate(clusterName, keyword string) (int, int) {
	for gi, g := range s.groups {
		if g.Name != clusterName {
			continue
		}
		for ii, it := range g.Items {
			if it.Keyword == keyword {
				return gi, ii
			}
		}
		return gi, -1
	}
	return -1, -1
}

// enforce clears the priority of any item that is not selected for blog.
func enforce(it *Item) {
	if it.Status != StatusSelect {
		it.Priority = 0
	}
}
