package catalog

import (
	"cmp"
	"fmt"
	"modelcatalog/pkg/textutil"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

type SortKey string

const (
	SortName    SortKey = "name"
	SortPulls   SortKey = "pulls"
	SortTags    SortKey = "tags"
	SortUpdated SortKey = "updated"
	SortSize    SortKey = "size"
)

var SortKeys = []SortKey{SortName, SortPulls, SortTags, SortUpdated, SortSize}

func ParseSortKey(text string) (SortKey, error) {
	if text == "" {
		return SortName, nil
	}
	key := SortKey(strings.ToLower(text))
	if !slices.Contains(SortKeys, key) {
		return "", fmt.Errorf("unknown sort key %q", text)
	}
	return key, nil
}

// fuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy match.
const fuzzyThreshold = 0.85

type Query struct {
	Search       string
	Capabilities []string
	Sort         SortKey
	Descending   bool
	Fuzzy        bool
}

func (q Query) matchesSearch(m Model) bool {
	if strings.TrimSpace(q.Search) == "" {
		return true
	}
	if textutil.MatchName(m.Name, []string{q.Search}) ||
		textutil.MatchName(m.Description, []string{q.Search}) {
		return true
	}
	if !q.Fuzzy {
		return false
	}
	similarity := matchr.JaroWinkler(
		textutil.NormalizeName(m.Name),
		textutil.NormalizeName(q.Search),
		false,
	)
	return similarity >= fuzzyThreshold
}

func (q Query) matchesCapabilities(m Model) bool {
	for _, want := range q.Capabilities {
		want = textutil.NormalizeName(want)
		if want == "" {
			continue
		}
		found := slices.ContainsFunc(m.Capabilities, func(have string) bool {
			return textutil.NormalizeName(have) == want
		})
		if !found {
			return false
		}
	}
	return true
}

func (q Query) compare(a, b Model) int {
	var result int
	switch q.Sort {
	case SortPulls:
		av, _ := ParseCount(a.PullCount)
		bv, _ := ParseCount(b.PullCount)
		result = cmp.Compare(av, bv)
	case SortTags:
		av, _ := ParseCount(a.TagCount)
		bv, _ := ParseCount(b.TagCount)
		result = cmp.Compare(av, bv)
	case SortUpdated:
		result = cmp.Compare(ageOrMax(a.Updated), ageOrMax(b.Updated))
	case SortSize:
		result = cmp.Compare(LargestParams(a.Sizes), LargestParams(b.Sizes))
	}
	if q.Descending {
		result = -result
	}
	if result != 0 {
		return result
	}
	// ties (and SortName) always read alphabetically
	byName := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	if q.Sort == SortName || q.Sort == "" {
		if q.Descending {
			return -byName
		}
	}
	return byName
}

// unparsable ages sort as the oldest
func ageOrMax(text string) int64 {
	age, ok := ParseAge(text)
	if !ok {
		return 1<<63 - 1
	}
	return int64(age)
}

// Apply filters and sorts a copy of models, the input is not modified.
func Apply(models []Model, q Query) []Model {
	out := []Model{}
	for _, m := range models {
		if !q.matchesSearch(m) || !q.matchesCapabilities(m) {
			continue
		}
		out = append(out, m.Clone())
	}
	slices.SortStableFunc(out, q.compare)
	return out
}
