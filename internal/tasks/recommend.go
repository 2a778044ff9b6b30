package tasks

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/recommend"
	"github.com/desertthunder/moodplay/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultProfileLimit        = 50
	defaultCandidateArtists    = 5
	defaultCandidatesPerArtist = 20
	defaultRequestsPerSecond   = 5.0
)

// RecommendRequest selects the profile window and result size. Zero values use the configured defaults.
type RecommendRequest struct {
	Limit     int
	TimeRange models.TimeRange
	TopN      int
}

// RecommendResult is a ranked recommendation list and the profile it came from.
type RecommendResult struct {
	Total           int                     `json:"total"`
	BasedOn         int                     `json:"based_on"`
	TimeRange       models.TimeRange        `json:"time_range"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// Recommend builds a taste profile from the listener's top tracks and ranks tracks by the
// profile's most frequent artists against it.
//
// A fresh [recommend.Recommender] is used per call.
func (a *Assistant) Recommend(ctx context.Context, req RecommendRequest, progress chan<- ProgressUpdate) (*RecommendResult, error) {
	cfg := a.opts.Recommend
	if req.Limit == 0 {
		req.Limit = cmp.Or(cfg.ProfileLimit, defaultProfileLimit)
	}
	if req.TimeRange == "" {
		req.TimeRange = models.MediumTerm
	}
	if !req.TimeRange.Valid() {
		return nil, fmt.Errorf("%w: invalid time_range %q", shared.ErrValidation, req.TimeRange)
	}
	if req.TopN <= 0 {
		req.TopN = cmp.Or(cfg.TopN, recommend.DefaultTopN)
	}

	sendProgress(progress, fetchProfileUpdate(string(req.TimeRange)))
	profile, err := a.music.TopTracks(ctx, req.Limit, req.TimeRange)
	if err != nil {
		return nil, err
	}
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w: no top tracks to build a profile from", shared.ErrNoTracksFound)
	}

	sendProgress(progress, buildProfileUpdate(len(profile)))
	rec := recommend.New(shared.WithLogger(a.logger, "component", "recommender"))
	if _, err := rec.Build(profile); err != nil {
		return nil, err
	}

	candidates, err := a.gatherCandidates(ctx, profile, progress)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, rankCandidatesUpdate(len(candidates)))
	ranked, err := rec.Rank(candidates, req.TopN)
	if err != nil {
		return nil, err
	}

	return &RecommendResult{
		Total:           len(ranked),
		BasedOn:         len(profile),
		TimeRange:       req.TimeRange,
		Recommendations: ranked,
	}, nil
}

// gatherCandidates searches the profile's most frequent artists concurrently, paced by a
// shared limiter, and returns the hits minus profile tracks, deduplicated by id.
func (a *Assistant) gatherCandidates(ctx context.Context, profile []models.Track, progress chan<- ProgressUpdate) ([]models.Track, error) {
	cfg := a.opts.Recommend
	artists := topArtists(profile, cmp.Or(cfg.CandidateArtists, defaultCandidateArtists))
	perArtist := cmp.Or(cfg.CandidatesPerArtist, defaultCandidatesPerArtist)
	limiter := rate.NewLimiter(rate.Limit(cmp.Or(cfg.RequestsPerSecond, defaultRequestsPerSecond)), 1)

	results := make([][]models.Track, len(artists))
	g, gctx := errgroup.WithContext(ctx)
	for i, artist := range artists {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			sendProgress(progress, searchArtistUpdate(i+1, len(artists), artist))

			tracks, err := a.music.SearchTracks(gctx, fmt.Sprintf("artist:%q", artist), perArtist)
			if err != nil {
				return fmt.Errorf("failed to search artist %s: %w", artist, err)
			}
			results[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(profile))
	for _, t := range profile {
		seen[t.ID] = struct{}{}
	}

	candidates := []models.Track{}
	for _, tracks := range results {
		for _, t := range tracks {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			candidates = append(candidates, t)
		}
	}

	a.logger.Debug("gathered candidates", "artists", len(artists), "candidates", len(candidates))
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates outside the profile", shared.ErrNoTracksFound)
	}
	return candidates, nil
}

// topArtists returns the n most credited artists in tracks, ties broken by first appearance.
func topArtists(tracks []models.Track, n int) []string {
	counts := map[string]int{}
	order := []string{}
	for _, t := range tracks {
		for _, name := range t.Artists {
			if name == "" {
				continue
			}
			if _, ok := counts[name]; !ok {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
