package ranking

import (
	"cmp"
	"slices"
	"strings"

	"github.com/abelbrown/palette/internal/catalog"
)

// Field weights applied to raw scores before taking the best field.
const (
	TitleWeight    = 1.0
	SubtitleWeight = 0.8
	KeywordWeight  = 0.7
)

// Scored pairs an item with its composite score for a query.
type Scored struct {
	Item  catalog.Item
	Score float64
}

// fields holds the lowercased searchable text of one item.
type fields struct {
	title       string
	subtitle    string
	hasSubtitle bool
	keywords    []string
}

// composite is the best weighted field score for q (already lowercased).
func (f fields) composite(q string) float64 {
	best := scoreLower(q, f.title) * TitleWeight

	if f.hasSubtitle {
		best = max(best, scoreLower(q, f.subtitle)*SubtitleWeight)
	}

	if len(f.keywords) > 0 {
		kw := NoMatch
		for _, k := range f.keywords {
			kw = max(kw, scoreLower(q, k))
		}
		best = max(best, kw*KeywordWeight)
	}

	return best
}

// Index is a catalog snapshot prepared for repeated ranking. Field text is
// lowercased once here instead of on every query.
type Index struct {
	items  []catalog.Item
	fields []fields
}

// NewIndex prepares items for ranking. The slice is copied.
func NewIndex(items []catalog.Item) *Index {
	ix := &Index{
		items:  append([]catalog.Item(nil), items...),
		fields: make([]fields, len(items)),
	}
	for i, it := range items {
		f := fields{
			title:       strings.ToLower(it.Title),
			subtitle:    strings.ToLower(it.Subtitle),
			hasSubtitle: it.Subtitle != "",
		}
		if len(it.Keywords) > 0 {
			f.keywords = make([]string, len(it.Keywords))
			for j, k := range it.Keywords {
				f.keywords[j] = strings.ToLower(k)
			}
		}
		ix.fields[i] = f
	}
	return ix
}

// Len returns the number of items in the snapshot.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.items)
}

// Items returns the snapshot in catalog order.
func (ix *Index) Items() []catalog.Item {
	if ix == nil {
		return nil
	}
	return append([]catalog.Item(nil), ix.items...)
}

// Rank returns the items matching query, best first. A blank query returns
// the catalog unchanged.
func (ix *Index) Rank(query string) []catalog.Item {
	scored := ix.Scores(query)
	out := make([]catalog.Item, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// Scores is Rank with the composite scores attached. Blank queries yield
// every item with a zero score in catalog order.
func (ix *Index) Scores(query string) []Scored {
	if ix == nil {
		return nil
	}

	if strings.TrimSpace(query) == "" {
		out := make([]Scored, len(ix.items))
		for i, it := range ix.items {
			out[i] = Scored{Item: it}
		}
		return out
	}

	q := strings.ToLower(query)

	type hit struct {
		index int
		score float64
	}
	hits := make([]hit, 0, len(ix.items))
	for i, f := range ix.fields {
		if s := f.composite(q); s > 0 {
			hits = append(hits, hit{index: i, score: s})
		}
	}

	// Equal scores keep catalog order.
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]Scored, len(hits))
	for i, h := range hits {
		out[i] = Scored{Item: ix.items[h.index], Score: h.score}
	}
	return out
}

// Rank is a convenience for one-off ranking without keeping an Index.
func Rank(items []catalog.Item, query string) []catalog.Item {
	return NewIndex(items).Rank(query)
}
