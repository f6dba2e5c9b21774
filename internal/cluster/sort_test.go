package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortToggle_Cycles(t *testing.T) {
	var s Sort
	s = s.Toggle(ColumnSearchVolume)
	assert.Equal(t, Sort{Column: ColumnSearchVolume}, s)
	s = s.Toggle(ColumnSearchVolume)
	assert.Equal(t, Sort{Column: ColumnSearchVolume, Desc: true}, s)
	s = s.Toggle(ColumnSearchVolume)
	assert.Equal(t, Sort{}, s)

	s = Sort{Column: ColumnCPC, Desc: true}.Toggle(ColumnKeyword)
	assert.Equal(t, Sort{Column: ColumnKeyword}, s)
}

func sortFixture() []Item {
	a := item("alpha", 100, 10, "x", "y")
	b := item("bravo", 300, 20, "x", "y")
	c := item("charlie", 200, 30, "x", "y")
	d := Item{Keyword: "delta"} // no metrics
	e := item("echo", 50, 40, "x", "y")
	e.Priority = 2
	f := item("foxtrot", 500, 50, "x", "y")
	f.Priority = 1
	return []Item{a, b, c, d, e, f}
}

func names(items []Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Keyword)
	}
	return out
}

func TestSortItems_NoColumnKeepsInsertionOrder(t *testing.T) {
	items := sortFixture()
	assert.Equal(t, names(items), names(SortItems(items, Sort{})))
}

func TestSortItems_PrioritizedFirstThenColumn(t *testing.T) {
	items := sortFixture()

	asc := SortItems(items, Sort{Column: ColumnSearchVolume})
	assert.Equal(t, []string{"foxtrot", "echo", "alpha", "charlie", "bravo", "delta"}, names(asc))

	desc := SortItems(items, Sort{Column: ColumnSearchVolume, Desc: true})
	assert.Equal(t, []string{"foxtrot", "echo", "bravo", "charlie", "alpha", "delta"}, names(desc))
}

func TestSortItems_Strings(t *testing.T) {
	items := []Item{{Keyword: "b"}, {Keyword: "A"}, {Keyword: "c"}}
	assert.Equal(t, []string{"c", "b", "A"}, names(SortItems(items, Sort{Column: ColumnKeyword, Desc: true})))
}

func TestSortItems_CompetitionRanked(t *testing.T) {
	items := []Item{
		{Keyword: "h", Metrics: Metrics{Competition: CompetitionHigh}},
		{Keyword: "n"},
		{Keyword: "l", Metrics: Metrics{Competition: CompetitionLow}},
		{Keyword: "m", Metrics: Metrics{Competition: CompetitionMedium}},
	}
	assert.Equal(t, []string{"l", "m", "h", "n"}, names(SortItems(items, Sort{Column: ColumnCompetition})))
}

func TestSortItems_DoesNotMutateInput(t *testing.T) {
	items := sortFixture()
	before := names(items)
	SortItems(items, Sort{Column: ColumnKeyword, Desc: true})
	assert.Equal(t, before, names(items))
}
