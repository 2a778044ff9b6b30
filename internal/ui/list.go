package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/tasks"
)

var (
	_ list.Item = playItem{}
	_ list.Item = recommendationItem{}
)

// playItem wraps a dispatched utterance to implement [list.Item].
type playItem struct {
	message string
	result  *tasks.PlayResult
}

func (i playItem) FilterValue() string { return i.message }
func (i playItem) Title() string       { return i.message }
func (i playItem) Description() string {
	out := i.result.Outcome
	parts := []string{string(out.Mode())}
	if out.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", out.Query))
	}
	parts = append(parts, string(i.result.Intent.Source))
	if out.Playback.DeviceID != "" {
		parts = append(parts, "device "+out.Playback.DeviceID)
	}
	return strings.Join(parts, " • ")
}

// recommendationItem wraps [models.Recommendation] to implement [list.Item].
type recommendationItem struct {
	rank int
	rec  models.Recommendation
}

func (i recommendationItem) FilterValue() string { return i.rec.Name }
func (i recommendationItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.rec.Name) }
func (i recommendationItem) Description() string {
	desc := strings.Join(i.rec.Artists, ", ")
	if i.rec.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.rec.Album)
	}
	return fmt.Sprintf("%s • %.3f", desc, i.rec.SimilarityScore)
}
