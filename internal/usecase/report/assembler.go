package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
)

// Assembler builds the renderable report of a scored interview. It only reads.
type Assembler struct {
	interviews   repositories.InterviewRepository
	scores       repositories.ScoreRepository
	applications repositories.ApplicationRepository
	now          func() time.Time
}

// NewAssembler creates a report assembler
func NewAssembler(interviews repositories.InterviewRepository, scores repositories.ScoreRepository, applications repositories.ApplicationRepository) *Assembler {
	return &Assembler{
		interviews:   interviews,
		scores:       scores,
		applications: applications,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Assemble returns entities.ErrIncomplete until the interview has a score
func (a *Assembler) Assemble(ctx context.Context, interviewID uuid.UUID) (*entities.ReportDocument, error) {
	interview, err := a.interviews.FindByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	score, err := a.scores.Get(ctx, interviewID)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("report for interview %s: %w", interviewID, entities.ErrIncomplete)
	}
	if err != nil {
		return nil, fmt.Errorf("load score: %w", err)
	}

	dims, err := a.scores.GetDimensions(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("load dimensions: %w", err)
	}

	transcript, err := a.interviews.GetTranscript(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	doc := &entities.ReportDocument{
		InterviewID:        interview.ID,
		ApplicationID:      interview.ApplicationID,
		OrgID:              interview.OrgID,
		OverallScore:       score.OverallScore,
		AntiCheatRiskLevel: score.AntiCheatRiskLevel,
		ScorerType:         score.ScorerType,
		HumanOverride:      score.HumanOverride,
		NarrativeSummary:   score.NarrativeSummary,
		CandidateFeedback:  score.CandidateFeedback,
		ScoredAt:           score.UpdatedAt,
		GeneratedAt:        a.now(),
	}
	if score.OverrideReason != nil {
		doc.OverrideReason = *score.OverrideReason
	}

	if a.applications != nil {
		app, err := a.applications.FindByID(ctx, interview.ApplicationID)
		switch {
		case err == nil:
			doc.OrganisationName = app.OrganisationName
			doc.CandidateName = app.CandidateName
			doc.RoleTitle = app.RoleTitle
			doc.Seniority = app.Seniority
		case !errors.Is(err, entities.ErrNotFound):
			return nil, fmt.Errorf("load application: %w", err)
		}
	}

	for _, d := range orderDimensions(dims, score.Metadata.Data().RubricOrder) {
		doc.Dimensions = append(doc.Dimensions, entities.ReportDimension{
			Name:     d.Name,
			Score:    d.Score,
			Weight:   d.Weight,
			Evidence: d.Evidence,
			Quotes:   d.Quotes.Data(),
		})
	}

	doc.Transcript = make([]entities.ReportSegment, 0, len(transcript))
	for _, seg := range transcript {
		doc.Transcript = append(doc.Transcript, entities.ReportSegment{
			Speaker:     seg.Speaker,
			Content:     seg.Content,
			StartTimeMs: seg.StartTimeMs,
			Timestamp:   entities.FormatOffset(seg.StartTimeMs),
		})
	}

	return doc, nil
}

// orderDimensions puts rubric dimensions first in declared order, then the
// rest in the order they were aggregated.
func orderDimensions(dims []entities.ScoreDimension, rubricOrder []string) []entities.ScoreDimension {
	out := make([]entities.ScoreDimension, len(dims))
	copy(out, dims)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	if len(rubricOrder) == 0 {
		return out
	}

	rank := make(map[string]int, len(rubricOrder))
	for i, name := range rubricOrder {
		rank[entities.DimensionKey(name)] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[entities.DimensionKey(out[i].Name)]
		rj, jok := rank[entities.DimensionKey(out[j].Name)]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return false
	})
	return out
}
