package docs

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// searchIndex maps stemmed terms from entry names and descriptions back to
// the entries containing them. Scores favour name matches over description
// matches so that "sma" ranks ta.sma above entries that merely mention it.
type searchIndex struct {
	terms map[string][]scoredEntry
	names []string // qualified names for fuzzy suggestion
}

type scoredEntry struct {
	entry *Entry
	score int
}

const (
	scoreNameExact = 100
	scoreNameTerm  = 40
	scoreDescTerm  = 10
)

// SearchResult is one ranked hit from Index.Search.
type SearchResult struct {
	Entry *Entry
	Score int
}

func buildSearchIndex(entries []*Entry) *searchIndex {
	si := &searchIndex{terms: make(map[string][]scoredEntry)}
	for _, e := range entries {
		if e.Deprecated {
			continue
		}
		si.names = append(si.names, e.QualifiedName())
		si.add(stem(e.Name), e, scoreNameTerm)
		if e.Namespace != "" {
			si.add(stem(e.Namespace), e, scoreDescTerm)
		}
		for _, term := range tokenizeText(e.Description) {
			si.add(term, e, scoreDescTerm)
		}
	}
	return si
}

func (si *searchIndex) add(term string, e *Entry, score int) {
	if term == "" {
		return
	}
	for i, se := range si.terms[term] {
		if se.entry == e {
			if score > se.score {
				si.terms[term][i].score = score
			}
			return
		}
	}
	si.terms[term] = append(si.terms[term], scoredEntry{entry: e, score: score})
}

// tokenizeText splits free text into stemmed lowercase terms.
func tokenizeText(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		out = append(out, porter2.Stem(f))
	}
	return out
}

func stem(word string) string {
	return porter2.Stem(strings.ToLower(word))
}

// Search ranks reference entries against a free-text query. Exact
// qualified-name matches rank first, then name-term matches, then
// description matches. Limit <= 0 means no limit.
func (ix *Index) Search(query string, limit int) []SearchResult {
	query = normalizeQuery(query)
	if query == "" {
		return nil
	}

	scores := make(map[*Entry]int)
	if e, ok := ix.byName[query]; ok && !e.Deprecated {
		scores[e] = scoreNameExact
	}
	for _, term := range tokenizeText(query) {
		for _, se := range ix.search.terms[term] {
			scores[se.entry] += se.score
		}
	}

	results := make([]SearchResult, 0, len(scores))
	for e, s := range scores {
		results = append(results, SearchResult{Entry: e, Score: s})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.QualifiedName() < results[j].Entry.QualifiedName()
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// maxSuggestDistance bounds how far a did-you-mean suggestion may be from
// the query before it is judged unrelated.
const maxSuggestDistance = 3

// Suggest returns the closest known qualified name to the query, for
// did-you-mean hints on unknown function lookups. ok is false when nothing
// is close enough.
func (ix *Index) Suggest(query string) (string, bool) {
	query = normalizeQuery(query)
	if query == "" {
		return "", false
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, name := range ix.search.names {
		d := edlib.DamerauLevenshteinDistance(query, strings.ToLower(name))
		if d < bestDist || (d == bestDist && best != "" && name < best) {
			best = name
			bestDist = d
		}
	}
	if best == "" || bestDist > maxSuggestDistance {
		return "", false
	}
	return best, true
}
