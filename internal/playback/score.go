// Package playback turns a resolved intent into exactly one playback mode and starts it.
//
// The pipeline is:
//  1. [Normalize] picks the search query.
//  2. [Rank] orders raw catalog hits by relevance.
//  3. [Classifier] walks an ordered [Rule] list and returns a [Decision].
//  4. [Dispatcher] hands the decision to the [Transport].
package playback

import (
	"slices"
	"strings"

	"github.com/desertthunder/moodplay/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	artistMatchBonus = 50
	titleMatchBonus  = 50
)

// Normalize returns the search query for intent, falling back to the trimmed raw utterance
// when the intent carries no query or its action is unknown.
func Normalize(intent models.Intent, raw string) string {
	query := strings.TrimSpace(intent.Query)
	if query == "" || intent.Action == models.ActionUnknown {
		return strings.TrimSpace(raw)
	}
	return query
}

// fold applies Unicode case folding. A Caser holds state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// foldText case-folds s, rewrites "&" as "and" and collapses whitespace.
func foldText(s string) string {
	s = fold(norm.NFKC.String(s))
	s = strings.ReplaceAll(s, "&", " and ")
	return strings.Join(strings.Fields(s), " ")
}

// tokens splits s into its case-folded whitespace-separated words.
func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(fold(s)) {
		set[w] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}

// Score rates track against query: popularity, plus a bonus when any artist appears in the
// query, plus a bonus when the title equals the query.
func Score(track models.Track, query string) int {
	q := foldText(query)
	score := track.PopularityOrZero()

	for _, artist := range track.Artists {
		if a := foldText(artist); a != "" && strings.Contains(q, a) {
			score += artistMatchBonus
			break
		}
	}

	if foldText(track.Name) == q {
		score += titleMatchBonus
	}
	return score
}

// Rank returns a copy of tracks ordered by descending [Score]. Ties keep catalog order.
func Rank(tracks []models.Track, query string) []models.Track {
	type scored struct {
		track models.Track
		score int
	}

	items := make([]scored, len(tracks))
	for i, t := range tracks {
		items[i] = scored{t, Score(t, query)}
	}
	slices.SortStableFunc(items, func(a, b scored) int { return b.score - a.score })

	ranked := make([]models.Track, len(items))
	for i, it := range items {
		ranked[i] = it.track
	}
	return ranked
}
