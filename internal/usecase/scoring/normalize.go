package scoring

import (
	"fmt"
	"math"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// MaxDimensionScore is the top of the canonical per-dimension scale
const MaxDimensionScore = 10.0

// Normalize converts every dimension score of a prediction to the 0-10 scale.
//
// The scale declared on the prediction decides the conversion. Under
// ScoreScaleAuto a prediction whose scores all lie in [0,1] is read as 0-1 and
// multiplied by 10; otherwise its scores must already lie in [0,10] and are
// kept. Any score outside the declared range is an invalid upstream response.
func Normalize(backend string, pred *entities.RawPrediction) ([]float64, error) {
	if pred == nil {
		return nil, entities.InvalidResponse(backend, fmt.Errorf("empty prediction"))
	}

	scale := pred.Scale
	if scale == "" {
		scale = entities.ScoreScaleAuto
	}

	raw := make([]float64, len(pred.Dimensions))
	for i, d := range pred.Dimensions {
		if math.IsNaN(d.Score) || math.IsInf(d.Score, 0) || d.Score < 0 {
			return nil, entities.InvalidResponse(backend, fmt.Errorf("dimension %q has score %v", d.Name, d.Score))
		}
		raw[i] = d.Score
	}

	factor, limit, err := scaleFactor(scale, raw)
	if err != nil {
		return nil, entities.InvalidResponse(backend, err)
	}

	out := make([]float64, len(raw))
	for i, v := range raw {
		if v > limit {
			return nil, entities.InvalidResponse(backend,
				fmt.Errorf("dimension %q score %v exceeds %s range", pred.Dimensions[i].Name, v, scale))
		}
		out[i] = math.Min(v*factor, MaxDimensionScore)
	}
	return out, nil
}

// scaleFactor returns the multiplier to 0-10 and the largest accepted raw value
func scaleFactor(scale entities.ScoreScale, raw []float64) (float64, float64, error) {
	switch scale {
	case entities.ScoreScaleUnit:
		return 10, 1, nil
	case entities.ScoreScaleDecile:
		return 1, 10, nil
	case entities.ScoreScalePercent:
		return 0.1, 100, nil
	case entities.ScoreScaleAuto:
		for _, v := range raw {
			if v > 1 {
				return 1, 10, nil
			}
		}
		return 10, 1, nil
	}
	return 0, 0, fmt.Errorf("unknown score scale %q", scale)
}
