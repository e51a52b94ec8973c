package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// ErrNothingToAggregate is returned when no prediction carries a dimension
var ErrNothingToAggregate = errors.New("no dimension scores to aggregate")

// AggregatedDimension is one canonical dimension after merging every source
type AggregatedDimension struct {
	Name     string
	Score    float64
	Weight   *float64
	Evidence string
	Quotes   []string
	Sources  int
}

// Aggregate is the canonical result of merging one or more predictions
type Aggregate struct {
	Dimensions        []AggregatedDimension
	OverallScore      int
	NarrativeSummary  string
	CandidateFeedback string
	RiskLevel         entities.RiskLevel
	// MissingDimensions lists required rubric dimensions no backend scored
	MissingDimensions []string
	// BackendGaps lists, per backend, the required dimensions it did not score
	BackendGaps map[string][]string
	Backends    []string
	Models      []string
}

// Aggregator merges raw predictions into a canonical score. It holds no state.
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

type dimensionAccumulator struct {
	name      string
	sum       float64
	sources   int
	rationale []string
	quotes    []string
	seenQuote map[string]struct{}
}

// Aggregate merges predictions in the given backend order.
//
// Dimensions are the union of all predictions, in first-seen order. A
// dimension supplied by several backends gets the plain mean of their
// normalized scores. Weights come from the rubric; dimensions the rubric does
// not name carry weight 0, and when no weight is positive every dimension
// counts equally. overall = round(sum(score*weight) / sum(weight) * 10).
func (a *Aggregator) Aggregate(preds []entities.SourcedPrediction, rubric *entities.Rubric) (*Aggregate, error) {
	if err := rubric.Validate(); err != nil {
		return nil, err
	}

	var (
		order  []string
		accums = make(map[string]*dimensionAccumulator)
		result = &Aggregate{RiskLevel: entities.RiskLevelLow}
		seen   = make(map[string]map[string]struct{}, len(preds))
	)

	for _, sp := range preds {
		if sp.Prediction == nil {
			continue
		}
		scores, err := Normalize(sp.Backend, sp.Prediction)
		if err != nil {
			return nil, err
		}

		result.Backends = append(result.Backends, sp.Backend)
		if sp.Prediction.Model != "" {
			result.Models = append(result.Models, sp.Prediction.Model)
		}
		if result.NarrativeSummary == "" {
			result.NarrativeSummary = strings.TrimSpace(sp.Prediction.Summary)
		}
		if result.CandidateFeedback == "" {
			result.CandidateFeedback = strings.TrimSpace(sp.Prediction.CandidateFeedback)
		}
		if sp.Prediction.AntiCheatRiskLevel.Rank() > result.RiskLevel.Rank() {
			result.RiskLevel = sp.Prediction.AntiCheatRiskLevel
		}

		backendSeen := make(map[string]struct{}, len(sp.Prediction.Dimensions))
		seen[sp.Backend] = backendSeen
		for i, d := range sp.Prediction.Dimensions {
			key := entities.DimensionKey(d.Name)
			if key == "" {
				continue
			}
			if _, dup := backendSeen[key]; dup {
				return nil, entities.InvalidResponse(sp.Backend, fmt.Errorf("dimension %q reported twice", d.Name))
			}
			backendSeen[key] = struct{}{}

			acc, ok := accums[key]
			if !ok {
				acc = &dimensionAccumulator{name: strings.TrimSpace(d.Name), seenQuote: map[string]struct{}{}}
				accums[key] = acc
				order = append(order, key)
			}
			acc.sum += scores[i]
			acc.sources++
			if r := strings.TrimSpace(d.Rationale); r != "" {
				acc.rationale = append(acc.rationale, r)
			}
			for _, q := range d.Quotes {
				q = strings.TrimSpace(q)
				if q == "" {
					continue
				}
				if _, dup := acc.seenQuote[q]; dup {
					continue
				}
				acc.seenQuote[q] = struct{}{}
				acc.quotes = append(acc.quotes, q)
			}
		}
	}

	if len(order) == 0 {
		return nil, ErrNothingToAggregate
	}

	weights, declared := rubricWeights(rubric)
	var totalWeight float64
	for _, key := range order {
		totalWeight += weights[key]
	}
	equalWeights := totalWeight <= 0

	var weightedSum, weightSum float64
	result.Dimensions = make([]AggregatedDimension, 0, len(order))
	for _, key := range order {
		acc := accums[key]
		name := acc.name
		if n, ok := declared[key]; ok {
			name = n
		}

		dim := AggregatedDimension{
			Name:     name,
			Score:    acc.sum / float64(acc.sources),
			Evidence: strings.Join(acc.rationale, "\n\n"),
			Quotes:   acc.quotes,
			Sources:  acc.sources,
		}

		w := 1.0
		if !equalWeights {
			w = weights[key]
		}
		if rubric != nil && len(rubric.Dimensions) > 0 {
			rw := weights[key]
			dim.Weight = &rw
		}

		weightedSum += dim.Score * w
		weightSum += w
		result.Dimensions = append(result.Dimensions, dim)
	}

	result.OverallScore = overallScore(weightedSum, weightSum)
	result.MissingDimensions, result.BackendGaps = missingRequired(rubric, accums, seen, result.Backends)
	return result, nil
}

// overallScore rescales the weighted mean to 0-100
func overallScore(weightedSum, weightSum float64) int {
	if weightSum <= 0 {
		return 0
	}
	overall := math.Round(weightedSum / weightSum * 10)
	return int(math.Max(0, math.Min(100, overall)))
}

// rubricWeights indexes the rubric by dimension key and keeps its declared names
func rubricWeights(rubric *entities.Rubric) (map[string]float64, map[string]string) {
	weights := make(map[string]float64)
	declared := make(map[string]string)
	if rubric == nil {
		return weights, declared
	}
	for _, d := range rubric.Dimensions {
		key := entities.DimensionKey(d.Name)
		weights[key] = d.Weight
		declared[key] = strings.TrimSpace(d.Name)
	}
	return weights, declared
}

func missingRequired(rubric *entities.Rubric, accums map[string]*dimensionAccumulator, seen map[string]map[string]struct{}, backends []string) ([]string, map[string][]string) {
	required := rubric.RequiredNames()
	if len(required) == 0 {
		return nil, nil
	}

	var missing []string
	gaps := make(map[string][]string)
	for _, name := range required {
		key := entities.DimensionKey(name)
		if _, ok := accums[key]; !ok {
			missing = append(missing, name)
		}
		for _, b := range backends {
			if _, ok := seen[b][key]; !ok {
				gaps[b] = append(gaps[b], name)
			}
		}
	}
	if len(gaps) == 0 {
		gaps = nil
	}
	return missing, gaps
}

// String renders a compact description used in logs
func (a *Aggregate) String() string {
	return fmt.Sprintf("overall=%d dimensions=%d backends=%v missing=%v",
		a.OverallScore, len(a.Dimensions), a.Backends, a.MissingDimensions)
}
