// Package cluster holds the keyword set model and the cluster store: the
// groups returned by the clustering service, their filter/group/sort
// projections and the single mutation entry point for annotations.
package cluster

import (
	"encoding/json"
	"strings"
)

// Status is the workflow annotation on a keyword or title option.
type Status string

const (
	StatusSelect Status = "select_for_blog"
	StatusReject Status = "reject_for_blog"
	StatusKeep   Status = "keep_for_future"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSelect, StatusReject, StatusKeep:
		return true
	}
	return false
}

// Competition is the paid-search competition level. Empty means unknown.
type Competition string

const (
	CompetitionLow    Competition = "Low"
	CompetitionMedium Competition = "Medium"
	CompetitionHigh   Competition = "High"
)

// ParseCompetition maps any casing of low/medium/high to a Competition.
// Unknown values map to "".
func ParseCompetition(s string) Competition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CompetitionLow
	case "medium":
		return CompetitionMedium
	case "high":
		return CompetitionHigh
	}
	return ""
}

// UnmarshalJSON accepts a level name in any casing, a 0..1 competition index
// or null.
func (c *Competition) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*c = ParseCompetition(x)
	case float64:
		switch {
		case x < 0.33:
			*c = CompetitionLow
		case x < 0.66:
			*c = CompetitionMedium
		default:
			*c = CompetitionHigh
		}
	default:
		*c = ""
	}
	return nil
}

func (c Competition) rank() int {
	switch c {
	case CompetitionLow:
		return 1
	case CompetitionMedium:
		return 2
	case CompetitionHigh:
		return 3
	}
	return 0
}

// Metrics are the keyword measurements returned by discovery/clustering.
// They are never modified after decoding.
type Metrics struct {
	SearchVolume *int        `json:"search_volume"`
	Difficulty   *int        `json:"keyword_difficulty"`
	Competition  Competition `json:"competition,omitempty"`
	CPC          *float64    `json:"cpc"`
	SearchIntent *string     `json:"search_intent"`
	Category     *string     `json:"category"`
}

// Item is one keyword inside a cluster.
type Item struct {
	Keyword string `json:"keyword"`
	Metrics
	// Cluster is the name of the group the item arrived in.
	Cluster  string `json:"cluster_name,omitempty"`
	Status   Status `json:"status"`
	Priority int    `json:"priority"`
	Editing  bool   `json:"-"`
}

// Prioritized reports whether the item counts toward the title gate.
func (it Item) Prioritized() bool {
	return it.Status == StatusSelect && it.Priority > 0
}

// Group is a named cluster. The name is its identity.
type Group struct {
	Name          string `json:"cluster_name"`
	IntentPattern string `json:"intent_pattern"`
	CoreTopic     string `json:"core_topic"`
	Reasoning     string `json:"reasoning"`
	Items         []Item `json:"keywords"`
}

// GroupBy selects the key used to bucket items in a projection.
type GroupBy string

const (
	ByClusterName   GroupBy = "cluster_name"
	ByCategory      GroupBy = "category"
	ByIntentPattern GroupBy = "intent_pattern"
	ByCoreTopic     GroupBy = "core_topic"
	BySearchIntent  GroupBy = "search_intent"
)

// Valid reports whether g is a known grouping key.
func (g GroupBy) Valid() bool {
	switch g {
	case ByClusterName, ByCategory, ByIntentPattern, ByCoreTopic, BySearchIntent:
		return true
	}
	return false
}

// Clone returns a deep copy of groups. Metric pointers are shared; they are
// immutable.
func Clone(groups []Group) []Group {
	if groups == nil {
		return nil
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Items = append([]Item(nil), g.Items...)
	}
	return out
}

// Count returns the number of items across all groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
