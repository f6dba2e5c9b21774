package cluster

import (
	"sort"
	"strings"
)

// Column is a sortable item field in the card view.
type Column string

const (
	ColumnNone         Column = ""
	ColumnKeyword      Column = "keyword"
	ColumnSearchVolume Column = "search_volume"
	ColumnDifficulty   Column = "keyword_difficulty"
	ColumnCompetition  Column = "competition"
	ColumnCPC          Column = "cpc"
	ColumnSearchIntent Column = "search_intent"
	ColumnCategory     Column = "category"
	ColumnStatus       Column = "status"
	ColumnPriority     Column = "priority"
)

// Valid reports whether c is a known column or ColumnNone.
func (c Column) Valid() bool {
	switch c {
	case ColumnNone, ColumnKeyword, ColumnSearchVolume, ColumnDifficulty, ColumnCompetition,
		ColumnCPC, ColumnSearchIntent, ColumnCategory, ColumnStatus, ColumnPriority:
		return true
	}
	return false
}

// Sort is the card-view sort state.
type Sort struct {
	Column Column `json:"column,omitempty"`
	Desc   bool   `json:"desc,omitempty"`
}

// Toggle returns the state after clicking column: a new column sorts
// ascending, the same column flips to descending, a third click clears.
func (s Sort) Toggle(c Column) Sort {
	switch {
	case c == ColumnNone || s.Column != c:
		return Sort{Column: c}
	case !s.Desc:
		return Sort{Column: c, Desc: true}
	default:
		return Sort{}
	}
}

// SortItems returns a sorted copy of items. With no column the insertion
// order is kept. Otherwise prioritized items lead by ascending priority and
// the rest follow by the column, unknown values last in either direction.
func SortItems(items []Item, s Sort) []Item {
	out := append([]Item(nil), items...)
	if s.Column == ColumnNone {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		pa, pb := a.Priority > 0, b.Priority > 0
		switch {
		case pa && pb:
			return a.Priority < b.Priority
		case pa != pb:
			return pa
		}
		return less(a, b, s)
	})
	return out
}

func less(a, b Item, s Sort) bool {
	ka, kb := sortKey(a, s.Column), sortKey(b, s.Column)
	switch {
	case ka.null:
		return false
	case kb.null:
		return true
	}
	c := ka.compare(kb)
	if s.Desc {
		return c > 0
	}
	return c < 0
}

type key struct {
	null  bool
	isNum bool
	num   float64
	str   string
}

func (k key) compare(o key) int {
	if k.isNum {
		switch {
		case k.num < o.num:
			return -1
		case k.num > o.num:
			return 1
		}
		return 0
	}
	return strings.Compare(k.str, o.str)
}

func numKey(v *float64) key {
	if v == nil {
		return key{null: true}
	}
	return key{num: *v, isNum: true}
}

func intKey(v *int) key {
	if v == nil {
		return key{null: true}
	}
	return key{num: float64(*v), isNum: true}
}

func strKey(v string) key {
	v = strings.TrimSpace(v)
	if v == "" {
		return key{null: true}
	}
	return key{str: strings.ToLower(v)}
}

func sortKey(it Item, c Column) key {
	switch c {
	case ColumnKeyword:
		return strKey(it.Keyword)
	case ColumnSearchVolume:
		return intKey(it.SearchVolume)
	case ColumnDifficulty:
		return intKey(it.Difficulty)
	case ColumnCompetition:
		r := it.Competition.rank()
		if r == 0 {
			return key{null: true}
		}
		return key{num: float64(r), isNum: true}
	case ColumnCPC:
		return numKey(it.CPC)
	case ColumnSearchIntent:
		return strKey(deref(it.SearchIntent))
	case ColumnCategory:
		return strKey(deref(it.Category))
	case ColumnStatus:
		return strKey(string(it.Status))
	case ColumnPriority:
		if it.Priority == 0 {
			return key{null: true}
		}
		return key{num: float64(it.Priority), isNum: true}
	}
	return key{null: true}
}
