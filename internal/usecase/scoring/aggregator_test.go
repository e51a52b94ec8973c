package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

func prediction(scores map[string]float64, order ...string) *entities.RawPrediction {
	p := &entities.RawPrediction{}
	for _, name := range order {
		p.Dimensions = append(p.Dimensions, entities.DimensionPrediction{Name: name, Score: scores[name]})
	}
	return p
}

func TestAggregate_RubricWeights(t *testing.T) {
	preds := []entities.SourcedPrediction{{
		Backend:    "groq",
		Prediction: prediction(map[string]float64{"communication": 8, "technical": 6}, "communication", "technical"),
	}}
	rubric := &entities.Rubric{Dimensions: []entities.RubricDimension{
		{Name: "communication", Weight: 0.3},
		{Name: "technical", Weight: 0.7},
	}}

	agg, err := NewAggregator().Aggregate(preds, rubric)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.OverallScore != 66 {
		t.Fatalf("expected 66, got %d", agg.OverallScore)
	}
	if agg.Dimensions[1].Weight == nil || *agg.Dimensions[1].Weight != 0.7 {
		t.Fatalf("expected technical weight 0.7, got %v", agg.Dimensions[1].Weight)
	}
	if len(agg.MissingDimensions) != 0 {
		t.Fatalf("expected no missing dimensions, got %v", agg.MissingDimensions)
	}
}

func TestAggregate_TwoBackendsWithMissingDimension(t *testing.T) {
	preds := []entities.SourcedPrediction{
		{Backend: "a", Prediction: prediction(map[string]float64{"communication": 7}, "communication")},
		{Backend: "b", Prediction: prediction(map[string]float64{"communication": 9, "technical": 5}, "communication", "technical")},
	}

	agg, err := NewAggregator().Aggregate(preds, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(agg.Dimensions) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(agg.Dimensions))
	}
	comm, tech := agg.Dimensions[0], agg.Dimensions[1]
	if comm.Name != "communication" || comm.Score != 8 || comm.Sources != 2 {
		t.Fatalf("unexpected communication: %+v", comm)
	}
	if tech.Name != "technical" || tech.Score != 5 || tech.Sources != 1 {
		t.Fatalf("unexpected technical: %+v", tech)
	}
	if agg.OverallScore != 65 {
		t.Fatalf("expected 65, got %d", agg.OverallScore)
	}
	if comm.Weight != nil {
		t.Fatalf("expected no weight without rubric, got %v", *comm.Weight)
	}
}

func TestAggregate_ReportsMissingRequiredDimensions(t *testing.T) {
	preds := []entities.SourcedPrediction{
		{Backend: "a", Prediction: prediction(map[string]float64{"communication": 7}, "communication")},
		{Backend: "b", Prediction: prediction(map[string]float64{"Technical": 5}, "Technical")},
	}
	rubric := &entities.Rubric{Dimensions: []entities.RubricDimension{
		{Name: "communication", Weight: 1, Required: true},
		{Name: "technical", Weight: 1, Required: true},
		{Name: "leadership", Weight: 2, Required: true},
	}}

	agg, err := NewAggregator().Aggregate(preds, rubric)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !reflect.DeepEqual(agg.MissingDimensions, []string{"leadership"}) {
		t.Fatalf("unexpected missing: %v", agg.MissingDimensions)
	}
	if !reflect.DeepEqual(agg.BackendGaps["a"], []string{"technical", "leadership"}) {
		t.Fatalf("unexpected gaps for a: %v", agg.BackendGaps["a"])
	}
	// leadership is excluded, not zeroed: (7+5)/2 = 6
	if agg.OverallScore != 60 {
		t.Fatalf("expected 60, got %d", agg.OverallScore)
	}
	if agg.Dimensions[1].Name != "technical" {
		t.Fatalf("expected rubric spelling, got %q", agg.Dimensions[1].Name)
	}
}

func TestAggregate_UnitScaleAndSummaryPriority(t *testing.T) {
	preds := []entities.SourcedPrediction{
		{Backend: "first", Prediction: &entities.RawPrediction{
			Dimensions:         []entities.DimensionPrediction{{Name: "technical", Score: 0.9}},
			AntiCheatRiskLevel: entities.RiskLevelMedium,
		}},
		{Backend: "second", Prediction: &entities.RawPrediction{
			Dimensions:        []entities.DimensionPrediction{{Name: "technical", Score: 7}},
			Summary:           "second summary",
			CandidateFeedback: "keep practicing",
		}},
		{Backend: "third", Prediction: &entities.RawPrediction{
			Dimensions:         []entities.DimensionPrediction{{Name: "technical", Score: 8}},
			Summary:            "third summary",
			AntiCheatRiskLevel: entities.RiskLevelLow,
		}},
	}

	agg, err := NewAggregator().Aggregate(preds, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.Dimensions[0].Score != 8 {
		t.Fatalf("expected mean of 9,7,8 = 8, got %v", agg.Dimensions[0].Score)
	}
	if agg.NarrativeSummary != "second summary" {
		t.Fatalf("unexpected summary %q", agg.NarrativeSummary)
	}
	if agg.CandidateFeedback != "keep practicing" {
		t.Fatalf("unexpected feedback %q", agg.CandidateFeedback)
	}
	if agg.RiskLevel != entities.RiskLevelMedium {
		t.Fatalf("expected medium risk, got %s", agg.RiskLevel)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	preds := []entities.SourcedPrediction{
		{Backend: "a", Prediction: prediction(map[string]float64{"x": 3.3, "y": 7.1, "z": 9.9}, "x", "y", "z")},
		{Backend: "b", Prediction: prediction(map[string]float64{"x": 4.4, "z": 1.7}, "x", "z")},
	}
	rubric := &entities.Rubric{Dimensions: []entities.RubricDimension{
		{Name: "x", Weight: 0.13}, {Name: "y", Weight: 0.29}, {Name: "z", Weight: 0.58},
	}}

	first, err := NewAggregator().Aggregate(preds, rubric)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := NewAggregator().Aggregate(preds, rubric)
		if err != nil {
			t.Fatalf("aggregate: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestAggregate_Errors(t *testing.T) {
	if _, err := NewAggregator().Aggregate(nil, nil); !errors.Is(err, ErrNothingToAggregate) {
		t.Fatalf("expected ErrNothingToAggregate, got %v", err)
	}

	bad := []entities.SourcedPrediction{{Backend: "a", Prediction: prediction(map[string]float64{"x": 42}, "x")}}
	if _, err := NewAggregator().Aggregate(bad, nil); !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("expected ErrInvalidUpstreamResponse, got %v", err)
	}

	dup := &entities.Rubric{Dimensions: []entities.RubricDimension{{Name: "x", Weight: 1}, {Name: "x", Weight: 2}}}
	ok := []entities.SourcedPrediction{{Backend: "a", Prediction: prediction(map[string]float64{"x": 4}, "x")}}
	if _, err := NewAggregator().Aggregate(ok, dup); !errors.Is(err, entities.ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric, got %v", err)
	}
}

func TestAggregate_RejectsFoldedDuplicates(t *testing.T) {
	folded := &entities.Rubric{Dimensions: []entities.RubricDimension{{Name: "Technical", Weight: 0.7}, {Name: "technical", Weight: 0.3}}}
	ok := []entities.SourcedPrediction{{Backend: "a", Prediction: prediction(map[string]float64{"technical": 6}, "technical")}}
	if _, err := NewAggregator().Aggregate(ok, folded); !errors.Is(err, entities.ErrInvalidRubric) {
		t.Fatalf("expected ErrInvalidRubric for case-folded rubric names, got %v", err)
	}

	twice := []entities.SourcedPrediction{
		{Backend: "a", Prediction: prediction(map[string]float64{"Problem Solving": 2, "problem_solving": 2}, "Problem Solving", "problem_solving")},
		{Backend: "b", Prediction: prediction(map[string]float64{"problem-solving": 8}, "problem-solving")},
	}
	_, err := NewAggregator().Aggregate(twice, nil)
	if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("expected ErrInvalidUpstreamResponse for a backend reporting one axis twice, got %v", err)
	}
	var be *entities.BackendError
	if !errors.As(err, &be) || be.Backend != "a" {
		t.Fatalf("expected the error to name backend a, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		scale   entities.ScoreScale
		scores  []float64
		want    []float64
		wantErr bool
	}{
		{name: "auto unit range", scale: entities.ScoreScaleAuto, scores: []float64{0.5, 1}, want: []float64{5, 10}},
		{name: "auto decile range", scale: "", scores: []float64{0.5, 7}, want: []float64{0.5, 7}},
		{name: "auto above ten", scale: entities.ScoreScaleAuto, scores: []float64{11}, wantErr: true},
		{name: "declared unit", scale: entities.ScoreScaleUnit, scores: []float64{0.25}, want: []float64{2.5}},
		{name: "declared unit out of range", scale: entities.ScoreScaleUnit, scores: []float64{3}, wantErr: true},
		{name: "declared decile keeps small values", scale: entities.ScoreScaleDecile, scores: []float64{0.5}, want: []float64{0.5}},
		{name: "declared percent", scale: entities.ScoreScalePercent, scores: []float64{85}, want: []float64{8.5}},
		{name: "negative", scale: entities.ScoreScaleDecile, scores: []float64{-1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &entities.RawPrediction{Scale: tt.scale}
			for i, s := range tt.scores {
				p.Dimensions = append(p.Dimensions, entities.DimensionPrediction{Name: string(rune('a' + i)), Score: s})
			}
			got, err := Normalize("test", p)
			if tt.wantErr {
				if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
					t.Fatalf("expected invalid response, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
