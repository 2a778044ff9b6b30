package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/desertthunder/moodplay/internal/models"
)

// KeywordPolicy is the set of patterns the fallback path classifies with.
type KeywordPolicy struct {
	User      *regexp.Regexp
	Devices   *regexp.Regexp
	Recommend *regexp.Regexp
	Search    *regexp.Regexp
	Play      *regexp.Regexp
	Prefix    *regexp.Regexp // leading verb phrase stripped to get the bare query
	Verb      *regexp.Regexp // an utterance that is nothing but a verb phrase
	Mood      *regexp.Regexp
}

const verbPhrases = `play|put on|start|listen to|queue|search|find|look up|show me|` +
	`recommend|suggest|something like|songs like|music like`

// DefaultKeywordPolicy returns the built-in fallback patterns. All are case-insensitive.
func DefaultKeywordPolicy() KeywordPolicy {
	return KeywordPolicy{
		User:      regexp.MustCompile(`(?i)\b(who am i|logged in|my account|my profile)\b`),
		Devices:   regexp.MustCompile(`(?i)\b(device|devices|speaker|player|where)\b`),
		Recommend: regexp.MustCompile(`(?i)\b(recommend|suggest|similar to|like|vibe)\b`),
		Search:    regexp.MustCompile(`(?i)\b(search|find|look up|show me|what is)\b`),
		Play:      regexp.MustCompile(`(?i)\b(play|put on|start|listen to|queue)\b`),
		Prefix:    regexp.MustCompile(`(?i)^(` + verbPhrases + `)[[:punct:]]*\s+`),
		Verb:      regexp.MustCompile(`(?i)^(` + verbPhrases + `)[[:punct:]]*$`),
		Mood:      regexp.MustCompile(`(?i)\b(mood|moody|lofi|lo-fi|chill|chilled|study|studying|ambient|ambience|background)\b`),
	}
}

// KeywordResolver is the deterministic fallback path. It never fails.
type KeywordResolver struct {
	policy KeywordPolicy
}

// NewKeywordResolver creates a [KeywordResolver] using policy.
func NewKeywordResolver(policy KeywordPolicy) *KeywordResolver {
	return &KeywordResolver{policy: policy}
}

// Resolve classifies utterance in fixed precedence: identity, devices, then (after stripping the
// leading verb) recommend, search and play. Anything else plays the whole utterance.
func (r *KeywordResolver) Resolve(_ context.Context, utterance string) (models.Intent, error) {
	p := r.policy
	text := strings.TrimSpace(utterance)

	extras := map[string]any{}
	if p.Mood.MatchString(text) {
		extras[models.ExtraMoodOrGenre] = true
	}
	build := func(action models.Action, query string) (models.Intent, error) {
		return models.Intent{Action: action, Query: query, Extras: extras, Source: models.SourceFallback}, nil
	}

	if p.User.MatchString(text) {
		return build(models.ActionGetCurrentUser, "")
	}
	if p.Devices.MatchString(text) {
		return build(models.ActionListDevices, "")
	}

	query := strings.TrimSpace(p.Prefix.ReplaceAllString(text, ""))
	if p.Verb.MatchString(query) {
		query = ""
	}

	switch {
	case p.Recommend.MatchString(text):
		return build(models.ActionGetRecommendations, query)
	case p.Search.MatchString(text):
		return build(models.ActionSearchMusic, query)
	case p.Play.MatchString(text):
		return build(models.ActionPlayMusic, query)
	}
	return build(models.ActionPlayMusic, text)
}
