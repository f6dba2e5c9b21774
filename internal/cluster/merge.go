package cluster

import (
	"strings"

	"github.com/jorge-barreto/blogflow/internal/common"
)

// MaxMerge is the largest number of keywords one merge may join.
const MaxMerge = 3

// Merge joins 2..MaxMerge keywords of one cluster into the first one's
// keyword text, comma separated. The other items are left in place.
//
// Whether a merge should instead produce a composite entity is unresolved;
// keep every caller going through this method.
func (s *Store) Merge(clusterName string, keywords []string) error {
	if len(keywords) < 2 || len(keywords) > MaxMerge {
		return common.Validation("merge needs 2 to %d keywords, got %d", MaxMerge, len(keywords))
	}
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		if seen[kw] {
			return common.Validation("keyword %q listed twice in merge", kw)
		}
		seen[kw] = true
	}

	first := -1
	gi := -1
	for _, kw := range keywords {
		g, ii := s.locate(clusterName, kw)
		if g < 0 {
			return common.Validation("unknown cluster %q", clusterName)
		}
		if ii < 0 {
			return common.Validation("keyword %q not found in cluster %q", kw, clusterName)
		}
		if first < 0 {
			gi, first = g, ii
		}
	}

	joined := strings.Join(keywords, ", ")
	for ii, it := range s.groups[gi].Items {
		if ii != first && it.Keyword == joined {
			return common.Validation("cluster %q already has keyword %q", clusterName, joined)
		}
	}

	it := s.groups[gi].Items[first]
	it.Keyword = joined
	s.replaceItem(gi, first, it)
	return nil
}
