package index

import (
	"sort"
	"strings"
)

// MatchKind ranks how a search result matched the query. Lower values rank
// higher; exact matches always sort before fuzzy matches.
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchPrefix
	MatchSubstring
	MatchSubsequence
)

func (m MatchKind) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSubstring:
		return "substring"
	case MatchSubsequence:
		return "subsequence"
	}
	return "none"
}

// SearchOptions controls Search behavior.
type SearchOptions struct {
	// Fuzzy enables prefix/substring/subsequence matching in addition to
	// exact name lookup.
	Fuzzy bool
	// CaseSensitive compares names without folding.
	CaseSensitive bool
	// MaxResults caps the result count; 0 means a default of 50.
	MaxResults int
}

// SearchResult is one ranked match.
type SearchResult struct {
	Entry *Entry
	Match MatchKind
	Score float64
}

const defaultMaxResults = 50

// Search looks the query up by exact name first (constant-time against the
// name map), then, when fuzzy matching is requested, scans candidate names
// for prefix, substring, and subsequence matches. Results are ranked exact
// first, then by match kind, score, and name; the scan short-circuits once
// exact and prefix matches alone satisfy MaxResults.
func (x *SymbolIndex) Search(query string, opts SearchOptions) []SearchResult {
	if query == "" {
		return nil
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	fold := func(s string) string { return s }
	if !opts.CaseSensitive {
		fold = strings.ToLower
	}
	q := fold(query)

	var results []SearchResult
	seen := make(map[string]bool)

	// Exact phase: direct map hit, plus folded comparison when insensitive.
	if entries, ok := x.byName[query]; ok && opts.CaseSensitive {
		seen[query] = true
		for _, e := range entries {
			results = append(results, SearchResult{Entry: e, Match: MatchExact, Score: 1})
		}
	} else if !opts.CaseSensitive {
		for name, entries := range x.byName {
			if fold(name) != q {
				continue
			}
			seen[name] = true
			for _, e := range entries {
				results = append(results, SearchResult{Entry: e, Match: MatchExact, Score: 1})
			}
		}
	}

	if opts.Fuzzy && len(results) < limit {
		names := make([]string, 0, len(x.byName))
		for name := range x.byName {
			if !seen[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)

		strong := len(results)
		for _, name := range names {
			if strong >= limit {
				break
			}
			kind, ok := fuzzyMatch(fold(name), q)
			if !ok {
				continue
			}
			score := fuzzyScore(kind, len(q), len(name))
			for _, e := range x.byName[name] {
				results = append(results, SearchResult{Entry: e, Match: kind, Score: score})
				if kind == MatchPrefix {
					strong++
				}
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Match != results[j].Match {
			return results[i].Match < results[j].Match
		}
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.Symbol.Name < results[j].Entry.Symbol.Name
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// fuzzyMatch classifies name against the folded query.
func fuzzyMatch(name, query string) (MatchKind, bool) {
	switch {
	case strings.HasPrefix(name, query):
		return MatchPrefix, true
	case strings.Contains(name, query):
		return MatchSubstring, true
	case isSubsequence(name, query):
		return MatchSubsequence, true
	}
	return MatchSubsequence, false
}

// fuzzyScore favors tighter matches: longer queries against shorter names.
func fuzzyScore(kind MatchKind, queryLen, nameLen int) float64 {
	base := map[MatchKind]float64{
		MatchPrefix:      0.8,
		MatchSubstring:   0.6,
		MatchSubsequence: 0.4,
	}[kind]
	if nameLen == 0 {
		return base
	}
	return base * float64(queryLen) / float64(nameLen)
}

// isSubsequence reports whether every rune of query appears in name in
// order.
func isSubsequence(name, query string) bool {
	if query == "" {
		return false
	}
	i := 0
	qr := []rune(query)
	for _, r := range name {
		if i < len(qr) && r == qr[i] {
			i++
		}
	}
	return i == len(qr)
}
