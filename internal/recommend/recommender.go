// Package recommend ranks candidate tracks against a listener's taste profile.
//
// A track's feature vector is the TF-IDF weighting of its artists followed by its min/max
// scaled duration and popularity. The vocabulary and scale are fitted once by
// [BuildProfile] and reused unchanged for every candidate ranked against that [Profile].
package recommend

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// DefaultTopN is the recommendation count used when neither the request nor the config sets one.
const DefaultTopN = 10

// Profile is a fitted taste profile. It is safe for concurrent ranking once built.
type Profile struct {
	vectorizer *vectorizer
	scaler     *scaler
	vector     []float64
	size       int
}

// Size is the number of tracks the profile was built from.
func (p *Profile) Size() int { return p.size }

// Vector returns a copy of the mean feature vector.
func (p *Profile) Vector() []float64 { return slices.Clone(p.vector) }

// BuildProfile fits the vocabulary and scaler on tracks and stores their mean feature vector.
//
// A single track cannot be scaled, so its numeric features are zero and candidates ranked
// against it get zero numeric features too.
func BuildProfile(tracks []models.Track) (*Profile, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: top tracks must not be empty", shared.ErrValidation)
	}

	docs := make([]string, len(tracks))
	numeric := make([][]float64, len(tracks))
	for i, t := range tracks {
		docs[i] = artistDoc(t)
		numeric[i] = numericFeatures(t)
	}

	p := &Profile{vectorizer: fitVectorizer(docs), size: len(tracks)}
	if len(tracks) > 1 {
		p.scaler = fitScaler(numeric)
	}

	p.vector = make([]float64, p.vectorizer.dim()+2)
	for i, t := range tracks {
		for j, x := range p.features(t, docs[i]) {
			p.vector[j] += x
		}
	}
	for j := range p.vector {
		p.vector[j] /= float64(len(tracks))
	}
	return p, nil
}

// features builds the full feature vector of t under the fitted state.
func (p *Profile) features(t models.Track, doc string) []float64 {
	row := p.vectorizer.transform(doc)
	scaled, err := p.scaler.transform(numericFeatures(t))
	if err != nil {
		scaled = make([]float64, 2)
	}
	return append(row, scaled...)
}

// Rank scores candidates by cosine similarity to the profile and returns at most topN of them,
// best first. A non-positive topN yields an empty slice. Ties keep input order and scores are
// rounded to 4 decimals.
func (p *Profile) Rank(candidates []models.Track, topN int) []models.Recommendation {
	if len(candidates) == 0 || topN <= 0 {
		return []models.Recommendation{}
	}

	recs := make([]models.Recommendation, len(candidates))
	for i, t := range candidates {
		score := cosine(p.vector, p.features(t, artistDoc(t)))
		recs[i] = models.Recommendation{Track: t, SimilarityScore: score}
	}
	slices.SortStableFunc(recs, func(a, b models.Recommendation) int {
		switch {
		case a.SimilarityScore > b.SimilarityScore:
			return -1
		case a.SimilarityScore < b.SimilarityScore:
			return 1
		}
		return 0
	})

	recs = recs[:min(topN, len(recs))]
	for i := range recs {
		recs[i].SimilarityScore = round4(recs[i].SimilarityScore)
	}
	return recs
}

// Recommender owns one profile at a time. Build replaces the profile, so a Recommender must not
// be shared between listeners ranking concurrently.
type Recommender struct {
	profile *Profile
	logger  *log.Logger
}

// New creates an empty [Recommender].
func New(logger *log.Logger) *Recommender {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Recommender{logger: logger}
}

// Build fits a new profile from tracks, discarding any previous one.
func (r *Recommender) Build(tracks []models.Track) (*Profile, error) {
	p, err := BuildProfile(tracks)
	if err != nil {
		return nil, err
	}
	r.profile = p
	r.logger.Info("built taste profile", "tracks", len(tracks), "features", len(p.vector))
	return p, nil
}

// Rank ranks candidates against the current profile.
func (r *Recommender) Rank(candidates []models.Track, topN int) ([]models.Recommendation, error) {
	if r.profile == nil {
		return nil, fmt.Errorf("%w: build a profile before ranking", shared.ErrProfileNotBuilt)
	}
	recs := r.profile.Rank(candidates, topN)
	r.logger.Info("ranked candidates", "candidates", len(candidates), "returned", len(recs))
	return recs, nil
}

func artistDoc(t models.Track) string {
	return strings.Join(t.Artists, ", ")
}

func numericFeatures(t models.Track) []float64 {
	return []float64{float64(t.DurationMS), float64(t.PopularityOrZero())}
}

// cosine is 0 when either vector has zero length.
func cosine(a, b []float64) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
