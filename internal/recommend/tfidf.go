package recommend

import (
	"math"
	"regexp"
	"slices"
	"strings"
)

// artistToken matches one comma-delimited artist credit.
var artistToken = regexp.MustCompile(`[^,]+`)

// analyze lowercases doc and splits it into trimmed artist tokens.
func analyze(doc string) []string {
	var out []string
	for _, tok := range artistToken.FindAllString(strings.ToLower(doc), -1) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// vectorizer is a TF-IDF model whose vocabulary and idf weights are fixed by fit.
//
// Terms use raw counts, idf is smoothed as ln((1+n)/(1+df))+1 and every row is L2 normalized.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

func fitVectorizer(docs []string) *vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range analyze(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	v := &vectorizer{vocab: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// dim is the width of a transformed row.
func (v *vectorizer) dim() int { return len(v.idf) }

// transform maps doc onto the fitted vocabulary. Unknown terms are dropped.
func (v *vectorizer) transform(doc string) []float64 {
	row := make([]float64, v.dim())
	for _, tok := range analyze(doc) {
		if i, ok := v.vocab[tok]; ok {
			row[i]++
		}
	}
	for i := range row {
		row[i] *= v.idf[i]
	}
	if n := norm(row); n > 0 {
		for i := range row {
			row[i] /= n
		}
	}
	return row
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
