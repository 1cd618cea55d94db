package matcher

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"chat-order-service/internal/models"
)

// MatchType describes how a catalog item was matched
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
)

// minAnchorLen is the shortest name word that partial matching anchors on.
// Shorter words ("tea", "hot", "of") are too ambiguous.
const minAnchorLen = 4

// Match is a catalog item resolved from free text
type Match struct {
	Item       models.CatalogItem `json:"item"`
	Confidence float64            `json:"confidence"`
	Type       MatchType          `json:"match_type"`
}

type entry struct {
	item  models.CatalogItem
	exact *regexp.Regexp
	words []*regexp.Regexp
}

// Index is an immutable, precompiled view of one catalog snapshot
type Index struct {
	entries []entry
}

// NewIndex compiles the exact and per-word patterns for every item
func NewIndex(items []models.CatalogItem) *Index {
	entries := make([]entry, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		e := entry{
			item:  item,
			exact: regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `$`),
		}
		for _, word := range strings.Fields(strings.ToLower(name)) {
			// "(large)" anchors on "large"
			word = strings.TrimFunc(word, isWordEdge)
			if utf8.RuneCountInString(word) < minAnchorLen {
				continue
			}
			e.words = append(e.words, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
		}
		entries = append(entries, e)
	}
	return &Index{entries: entries}
}

func isWordEdge(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Len returns the number of indexed items
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Items returns the indexed items in catalog order
func (ix *Index) Items() []models.CatalogItem {
	items := make([]models.CatalogItem, len(ix.entries))
	for i, e := range ix.entries {
		items[i] = e.item
	}
	return items
}

// Match resolves text against the catalog, best match first.
// An exact whole-name hit short-circuits; otherwise items are scored by the
// fraction of their anchor words present in text. Ties keep catalog order.
func (ix *Index) Match(text string) []Match {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, e := range ix.entries {
		if e.exact.MatchString(text) {
			return []Match{{Item: e.item, Confidence: 1.0, Type: MatchExact}}
		}
	}

	var matches []Match
	for _, e := range ix.entries {
		if len(e.words) == 0 {
			continue
		}

		hits := 0
		for _, w := range e.words {
			if w.MatchString(text) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}

		confidence := float64(hits) / float64(len(e.words))
		matchType := MatchPartial
		if confidence == 1.0 {
			matchType = MatchExact
		}
		matches = append(matches, Match{Item: e.item, Confidence: confidence, Type: matchType})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// Best returns the highest ranked match, if any
func (ix *Index) Best(text string) (Match, bool) {
	matches := ix.Match(text)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Suggest returns up to n item names containing text, falling back to the
// first n names of the catalog when none contain it
func (ix *Index) Suggest(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(text))

	var suggestions []string
	if needle != "" {
		for _, e := range ix.entries {
			if strings.Contains(strings.ToLower(e.item.Name), needle) {
				suggestions = append(suggestions, e.item.Name)
				if len(suggestions) == n {
					return suggestions
				}
			}
		}
	}
	if len(suggestions) > 0 {
		return suggestions
	}

	for _, e := range ix.entries {
		suggestions = append(suggestions, e.item.Name)
		if len(suggestions) == n {
			break
		}
	}
	return suggestions
}
