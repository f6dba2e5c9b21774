package cluster

import "strings"

// UnknownBucket names the group collecting items with no value for the
// grouping key.
const UnknownBucket = "Unknown"

// Filters narrow a projection. Zero values disable a filter.
type Filters struct {
	Keyword       string      `json:"keyword,omitempty"`
	Competition   Competition `json:"competition,omitempty"`
	MinDifficulty *int        `json:"min_difficulty,omitempty"`
	MaxDifficulty *int        `json:"max_difficulty,omitempty"`
	SearchIntent  string      `json:"search_intent,omitempty"`
	Category      string      `json:"category,omitempty"`
}

// Match reports whether it passes every active filter. Difficulty bounds are
// inclusive and reject items whose difficulty is unknown.
func (f Filters) Match(it Item) bool {
	if f.Keyword != "" && !strings.Contains(strings.ToLower(it.Keyword), strings.ToLower(f.Keyword)) {
		return false
	}
	if f.Competition != "" && !strings.EqualFold(string(f.Competition), string(it.Competition)) {
		return false
	}
	if f.MinDifficulty != nil && (it.Difficulty == nil || *it.Difficulty < *f.MinDifficulty) {
		return false
	}
	if f.MaxDifficulty != nil && (it.Difficulty == nil || *it.Difficulty > *f.MaxDifficulty) {
		return false
	}
	if f.SearchIntent != "" && !strings.EqualFold(f.SearchIntent, deref(it.SearchIntent)) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, deref(it.Category)) {
		return false
	}
	return true
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f != (Filters{})
}

// Apply filters groups and re-buckets the survivors by groupBy. The input is
// never modified. Groups left with no items are dropped.
func Apply(groups []Group, f Filters, by GroupBy) []Group {
	filtered := filter(groups, f)
	if by == ByClusterName || by == "" {
		return filtered
	}
	return regroup(filtered, by)
}

func filter(groups []Group, f Filters) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		var items []Item
		for _, it := range g.Items {
			if f.Match(it) {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		ng := g
		ng.Items = items
		out = append(out, ng)
	}
	return out
}

func regroup(groups []Group, by GroupBy) []Group {
	var order []string
	buckets := make(map[string]*Group)

	for _, g := range groups {
		for _, it := range g.Items {
			key := bucketKey(g, it, by)
			b, ok := buckets[key]
			if !ok {
				b = &Group{
					Name:          key,
					IntentPattern: g.IntentPattern,
					CoreTopic:     g.CoreTopic,
					Reasoning:     g.Reasoning,
				}
				switch by {
				case ByIntentPattern:
					b.IntentPattern = key
				case ByCoreTopic:
					b.CoreTopic = key
				}
				buckets[key] = b
				order = append(order, key)
			}
			b.Items = append(b.Items, it)
		}
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out
}

func bucketKey(g Group, it Item, by GroupBy) string {
	var v string
	switch by {
	case ByCategory:
		v = deref(it.Category)
	case BySearchIntent:
		v = deref(it.SearchIntent)
	case ByIntentPattern:
		v = g.IntentPattern
	case ByCoreTopic:
		v = g.CoreTopic
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return UnknownBucket
	}
	return v
}
