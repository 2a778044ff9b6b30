// package formatter renders track listings (recommendations, top tracks) as plain text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted values for [Format].
var Formats = []string{FormatText, FormatCSV, FormatJSON, FormatMarkdown}

// Report is a titled, ranked list of tracks.
//
// Scores is parallel to Tracks and is nil for listings without similarity scores.
type Report struct {
	Title     string         `json:"title"`
	TimeRange string         `json:"time_range,omitempty"`
	BasedOn   int            `json:"based_on,omitempty"`
	Tracks    []models.Track `json:"tracks"`
	Scores    []float64      `json:"scores,omitempty"`
}

// FromRecommendations builds a report from ranked recommendations.
func FromRecommendations(recs []models.Recommendation, timeRange string, basedOn int) *Report {
	r := &Report{
		Title:     "Recommendations",
		TimeRange: timeRange,
		BasedOn:   basedOn,
		Tracks:    make([]models.Track, 0, len(recs)),
		Scores:    make([]float64, 0, len(recs)),
	}
	for _, rec := range recs {
		r.Tracks = append(r.Tracks, rec.Track)
		r.Scores = append(r.Scores, rec.SimilarityScore)
	}
	return r
}

// FromTopTracks builds a report from the user's top tracks.
func FromTopTracks(tracks []models.Track, timeRange string) *Report {
	return &Report{Title: "Top Tracks", TimeRange: timeRange, Tracks: tracks}
}

func (r *Report) score(i int) (float64, bool) {
	if i < len(r.Scores) {
		return r.Scores[i], true
	}
	return 0, false
}

func (r *Report) subtitle() string {
	var parts []string
	if r.TimeRange != "" {
		parts = append(parts, "time range "+r.TimeRange)
	}
	if r.BasedOn > 0 {
		parts = append(parts, fmt.Sprintf("based on %d tracks", r.BasedOn))
	}
	return strings.Join(parts, ", ")
}

// ToCSV renders the report with columns: Rank, ID, Name, Artists, Album, Duration, Popularity, Score, URI
func ToCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Name", "Artists", "Album", "Duration", "Popularity", "Score", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range r.Tracks {
		popularity := ""
		if track.Popularity != nil {
			popularity = strconv.Itoa(*track.Popularity)
		}
		score := ""
		if s, ok := r.score(i); ok {
			score = strconv.FormatFloat(s, 'f', 4, 64)
		}

		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			strings.Join(track.Artists, "; "),
			track.Album,
			shared.FormatDuration(track.DurationMS),
			popularity,
			score,
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders the report as a Markdown document with a numbered track list.
func ToMarkdown(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Title)
	if sub := r.subtitle(); sub != "" {
		fmt.Fprintf(&buf, "_%s_\n\n", sub)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(r.Tracks))

	if len(r.Tracks) == 0 {
		buf.WriteString("No tracks found.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Tracks\n\n")
	for i, track := range r.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		scorePart := ""
		if s, ok := r.score(i); ok {
			scorePart = fmt.Sprintf(" `%.3f`", s)
		}
		fmt.Fprintf(&buf, "%d. **%s** - %s%s [%s]%s\n",
			i+1, strings.Join(track.Artists, ", "), track.Name, albumPart,
			shared.FormatDuration(track.DurationMS), scorePart)
	}
	return buf.Bytes(), nil
}

// ToText renders the report as plain text.
func ToText(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", r.Title)
	if sub := r.subtitle(); sub != "" {
		fmt.Fprintf(&buf, "%s\n", sub)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(r.Tracks))

	for i, track := range r.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s", i+1, strings.Join(track.Artists, ", "), track.Name)
		if s, ok := r.score(i); ok {
			fmt.Fprintf(&buf, " (%.3f)", s)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ToJSON renders the report as indented JSON.
func ToJSON(r *Report) ([]byte, error) {
	return shared.MarshalJSON(r, true)
}

// Format renders r in the named format. An empty format means text.
func Format(r *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ToText(r)
	case FormatCSV:
		return ToCSV(r)
	case FormatJSON:
		return ToJSON(r)
	case FormatMarkdown, "md":
		return ToMarkdown(r)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (expected one of %s)",
			shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// RenderMarkdown styles Markdown for the terminal, wrapping at width columns.
func RenderMarkdown(md []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.RenderBytes(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return string(out), nil
}

// WriteExport renders r in format and writes it to path.
func WriteExport(r *Report, format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Format(r, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}
