package recommend

import (
	"fmt"

	"github.com/desertthunder/moodplay/internal/shared"
)

// scaler rescales each column to [0, 1] over the rows it was fitted on.
// A constant column has scale 1, so it transforms to x-min.
type scaler struct {
	min   []float64
	scale []float64
}

func fitScaler(rows [][]float64) *scaler {
	if len(rows) == 0 {
		return nil
	}

	width := len(rows[0])
	lo := append([]float64(nil), rows[0]...)
	hi := append([]float64(nil), rows[0]...)
	for _, row := range rows[1:] {
		for j := 0; j < width; j++ {
			lo[j] = min(lo[j], row[j])
			hi[j] = max(hi[j], row[j])
		}
	}

	s := &scaler{min: lo, scale: make([]float64, width)}
	for j := range s.scale {
		if d := hi[j] - lo[j]; d != 0 {
			s.scale[j] = d
		} else {
			s.scale[j] = 1
		}
	}
	return s
}

// transform rescales row without clipping. A nil scaler or a width mismatch is an error.
func (s *scaler) transform(row []float64) ([]float64, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: scaler is not fitted", shared.ErrProfileNotBuilt)
	}
	if len(row) != len(s.min) {
		return nil, fmt.Errorf("%w: expected %d features, got %d", shared.ErrValidation, len(s.min), len(row))
	}

	out := make([]float64, len(row))
	for j, x := range row {
		out[j] = (x - s.min[j]) / s.scale[j]
	}
	return out, nil
}
