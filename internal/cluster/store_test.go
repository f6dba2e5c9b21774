package cluster

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/blogflow/internal/common"
)

func intp(v int) *int           { return &v }
func strp(v string) *string     { return &v }
func floatp(v float64) *float64 { return &v }

func item(kw string, volume, difficulty int, category, intent string) Item {
	return Item{
		Keyword: kw,
		Metrics: Metrics{
			SearchVolume: intp(volume),
			Difficulty:   intp(difficulty),
			Competition:  CompetitionMedium,
			CPC:          floatp(1.5),
			SearchIntent: strp(intent),
			Category:     strp(category),
		},
	}
}

func sampleGroups() []Group {
	return []Group{
		{
			Name: "running shoes", IntentPattern: "commercial", CoreTopic: "footwear",
			Items: []Item{
				item("best running shoes", 9000, 40, "Gear", "commercial"),
				item("running shoes for flat feet", 1200, 25, "Gear", "informational"),
			},
		},
		{
			Name: "marathon training", IntentPattern: "informational", CoreTopic: "training",
			Items: []Item{
				item("marathon plan", 5000, 30, "Training", "informational"),
			},
		},
	}
}

func assertInvariant(t *testing.T, groups []Group) {
	t.Helper()
	for _, g := range groups {
		for _, it := range g.Items {
			if it.Status != StatusSelect {
				assert.Zero(t, it.Priority, "%s/%s has priority while %s", g.Name, it.Keyword, it.Status)
			}
		}
	}
}

func TestNewStore_Normalizes(t *testing.T) {
	groups := sampleGroups()
	groups[0].Items = append(groups[0].Items, Item{Keyword: "best running shoes"})
	groups[1].Items[0].Status = StatusReject
	groups[1].Items[0].Priority = 4

	s := NewStore(groups)
	got := s.Groups()

	require.Len(t, got[0].Items, 2, "duplicate keyword dropped")
	assert.Equal(t, StatusSelect, got[0].Items[0].Status)
	assert.Equal(t, "running shoes", got[0].Items[0].Cluster)
	assert.Zero(t, got[1].Items[0].Priority)
	assertInvariant(t, got)

	// the caller's slice is untouched
	assert.Len(t, groups[0].Items, 3)
}

func TestNewStore_DiscardsIncomingPriorities(t *testing.T) {
	var groups []Group
	for gi := 0; gi < 2; gi++ {
		g := Group{Name: string(rune('a' + gi))}
		for i := 0; i < 5; i++ {
			g.Items = append(g.Items, Item{Keyword: fmt.Sprintf("%s-%d", g.Name, i), Status: StatusSelect, Priority: 1})
		}
		groups = append(groups, g)
	}

	s := NewStore(groups)
	for _, g := range s.Groups() {
		for _, it := range g.Items {
			assert.Zero(t, it.Priority, it.Keyword)
			assert.Equal(t, StatusSelect, it.Status)
		}
	}
	assert.Equal(t, 1, groups[0].Items[0].Priority, "caller's slice untouched")

	require.NoError(t, s.Update("a", "a-0", WithPriority(1)))
	got, ok := s.Find("a", "a-0")
	require.True(t, ok)
	assert.Equal(t, 1, got.Priority)
}

func TestUpdate_LocatesByClusterThenKeyword(t *testing.T) {
	groups := sampleGroups()
	groups[1].Items = append(groups[1].Items, item("best running shoes", 10, 10, "Gear", "commercial"))
	s := NewStore(groups)

	require.NoError(t, s.Update("marathon training", "best running shoes", WithPriority(1)))

	a, _ := s.Find("running shoes", "best running shoes")
	b, _ := s.Find("marathon training", "best running shoes")
	assert.Zero(t, a.Priority)
	assert.Equal(t, 1, b.Priority)
}

func TestUpdate_IsImmutable(t *testing.T) {
	s := NewStore(sampleGroups())
	before := s.Groups()

	require.NoError(t, s.Update("running shoes", "best running shoes", WithPriority(1)))

	assert.Zero(t, before[0].Items[0].Priority, "previous snapshot must not change")
	assert.Equal(t, 1, s.Groups()[0].Items[0].Priority)
}

func TestUpdate_PriorityThenReject(t *testing.T) {
	s := NewStore(sampleGroups())
	require.NoError(t, s.Update("running shoes", "best running shoes", WithPriority(3)))
	require.NoError(t, s.Update("running shoes", "best running shoes", WithStatus(StatusReject)))

	it, ok := s.Find("running shoes", "best running shoes")
	require.True(t, ok)
	assert.Equal(t, StatusReject, it.Status)
	assert.Zero(t, it.Priority)
	assertInvariant(t, s.Groups())
}

func TestUpdate_RejectDoesNotRenumber(t *testing.T) {
	s := NewStore(sampleGroups())
	require.NoError(t, s.Update("running shoes", "best running shoes", WithPriority(1)))
	require.NoError(t, s.Update("running shoes", "running shoes for flat feet", WithPriority(2)))
	require.NoError(t, s.Update("marathon training", "marathon plan", WithPriority(3)))

	require.NoError(t, s.Update("running shoes", "running shoes for flat feet", WithStatus(StatusKeep)))

	a, _ := s.Find("running shoes", "best running shoes")
	c, _ := s.Find("marathon training", "marathon plan")
	assert.Equal(t, 1, a.Priority)
	assert.Equal(t, 3, c.Priority)
}

func TestUpdate_Errors(t *testing.T) {
	s := NewStore(sampleGroups())

	cases := []struct {
		name    string
		cluster string
		keyword string
		update  ItemUpdate
	}{
		{"unknown cluster", "nope", "best running shoes", WithPriority(1)},
		{"unknown keyword", "running shoes", "nope", WithPriority(1)},
		{"priority too high", "running shoes", "best running shoes", WithPriority(11)},
		{"negative priority", "running shoes", "best running shoes", WithPriority(-1)},
		{"bad status", "running shoes", "best running shoes", WithStatus(Status("maybe"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Update(tc.cluster, tc.keyword, tc.update)
			assert.True(t, common.IsKind(err, common.KindValidation), "err = %v", err)
		})
	}
}

func TestUpdate_PriorityOnUnselectedRejected(t *testing.T) {
	s := NewStore(sampleGroups())
	require.NoError(t, s.Update("running shoes", "best running shoes", WithStatus(StatusKeep)))

	err := s.Update("running shoes", "best running shoes", WithPriority(1))
	assert.True(t, common.IsKind(err, common.KindValidation))

	p, st := 2, StatusSelect
	require.NoError(t, s.Update("running shoes", "best running shoes", ItemUpdate{Status: &st, Priority: &p}))
	it, _ := s.Find("running shoes", "best running shoes")
	assert.Equal(t, 2, it.Priority)
}

func TestUpdate_Editing(t *testing.T) {
	s := NewStore(sampleGroups())
	require.NoError(t, s.Update("running shoes", "best running shoes", WithEditing(true)))
	it, _ := s.Find("running shoes", "best running shoes")
	assert.True(t, it.Editing)
}

func TestMerge(t *testing.T) {
	s := NewStore(sampleGroups())

	require.NoError(t, s.Merge("running shoes", []string{"best running shoes", "running shoes for flat feet"}))

	g := s.Groups()[0]
	require.Len(t, g.Items, 2)
	assert.Equal(t, "best running shoes, running shoes for flat feet", g.Items[0].Keyword)
	assert.Equal(t, "running shoes for flat feet", g.Items[1].Keyword)
}

func TestMerge_Errors(t *testing.T) {
	s := NewStore(sampleGroups())

	for _, kws := range [][]string{
		{"best running shoes"},
		{"a", "b", "c", "d"},
		{"best running shoes", "best running shoes"},
		{"best running shoes", "marathon plan"},
	} {
		err := s.Merge("running shoes", kws)
		assert.True(t, common.IsKind(err, common.KindValidation), "%v: %v", kws, err)
	}
	assert.Error(t, s.Merge("missing", []string{"x", "y"}))
}

func TestClone_IsDeep(t *testing.T) {
	groups := sampleGroups()
	c := Clone(groups)
	c[0].Items[0].Priority = 7
	assert.Zero(t, groups[0].Items[0].Priority)
	assert.Nil(t, Clone(nil))
}

func TestParseCompetition(t *testing.T) {
	assert.Equal(t, CompetitionHigh, ParseCompetition(" HIGH "))
	assert.Equal(t, CompetitionLow, ParseCompetition("low"))
	assert.Equal(t, Competition(""), ParseCompetition("n/a"))
}

func TestCompetition_UnmarshalJSON(t *testing.T) {
	var m Metrics
	require.NoError(t, json.Unmarshal([]byte(`{"competition":"HIGH"}`), &m))
	assert.Equal(t, CompetitionHigh, m.Competition)
	require.NoError(t, json.Unmarshal([]byte(`{"competition":0.12}`), &m))
	assert.Equal(t, CompetitionLow, m.Competition)
	require.NoError(t, json.Unmarshal([]byte(`{"competition":0.5}`), &m))
	assert.Equal(t, CompetitionMedium, m.Competition)
	require.NoError(t, json.Unmarshal([]byte(`{"competition":null}`), &m))
	assert.Equal(t, Competition(""), m.Competition)
}
