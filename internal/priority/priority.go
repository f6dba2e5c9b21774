// Package priority enforces contiguous 1..10 keyword ranking and the
// selection gate in front of title generation.
package priority

import (
	"sort"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
)

// Required is the number of prioritized keywords needed to generate titles.
const Required = 10

// Available returns the priorities an item may choose: the next value after
// the highest one in use (while it fits in 1..MaxPriority), plus the item's
// own priority when it already holds one. Nothing else is offered, so ranks
// stay contiguous.
func Available(used []int, current int) []int {
	highest := 0
	for _, p := range used {
		if p > highest {
			highest = p
		}
	}
	var out []int
	if next := highest + 1; next <= cluster.MaxPriority {
		out = append(out, next)
	}
	if current > 0 && (len(out) == 0 || out[0] != current) {
		out = append(out, current)
	}
	sort.Ints(out)
	return out
}

// Used returns every priority currently held by a selected item.
func Used(groups []cluster.Group) []int {
	var used []int
	for _, g := range groups {
		for _, it := range g.Items {
			if it.Prioritized() {
				used = append(used, it.Priority)
			}
		}
	}
	sort.Ints(used)
	return used
}

// ForItem returns Available for the item identified by cluster and keyword.
// Items that are not selected for blog are offered nothing.
func ForItem(groups []cluster.Group, clusterName, keyword string) []int {
	for _, g := range groups {
		if g.Name != clusterName {
			continue
		}
		for _, it := range g.Items {
			if it.Keyword != keyword {
				continue
			}
			if it.Status != cluster.StatusSelect {
				return nil
			}
			return Available(Used(groups), it.Priority)
		}
	}
	return nil
}

// Offered reports whether p is among the values Available would offer.
func Offered(offered []int, p int) bool {
	for _, o := range offered {
		if o == p {
			return true
		}
	}
	return false
}

// Count returns the number of items selected for blog with a priority set.
func Count(groups []cluster.Group) int {
	n := 0
	for _, g := range groups {
		for _, it := range g.Items {
			if it.Prioritized() {
				n++
			}
		}
	}
	return n
}

// Gate rejects title generation until Required keywords are prioritized.
func Gate(groups []cluster.Group) error {
	if n := Count(groups); n < Required {
		return common.Validation("select and prioritize %d keywords before generating titles (%d/%d selected)", Required, n, Required)
	}
	return nil
}
