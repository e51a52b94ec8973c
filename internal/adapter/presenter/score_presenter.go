package presenter

import (
	"time"

	"github.com/johnquangdev/interview-scoring/internal/adapter/dto/score"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/scoring"
)

// ToScoringContext converts a score request into the context handed to every backend
func ToScoringContext(req *score.ScoreInterviewRequest, orgID string) entities.ScoringContext {
	sc := entities.ScoringContext{
		OrgID:          orgID,
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		RoleTitle:      req.RoleTitle,
		Seniority:      req.Seniority,
		Values:         req.Values,
	}

	if req.Rubric != nil {
		rubric := &entities.Rubric{
			Version:    req.Rubric.Version,
			Dimensions: make([]entities.RubricDimension, len(req.Rubric.Dimensions)),
		}
		for i, d := range req.Rubric.Dimensions {
			rubric.Dimensions[i] = entities.RubricDimension{
				Name:        d.Name,
				Weight:      d.Weight,
				Description: d.Description,
				Required:    d.Required,
			}
		}
		sc.Rubric = rubric
	}

	return sc
}

// ToScoreResponse converts a score and its dimensions to ScoreResponse DTO
func ToScoreResponse(s *entities.InterviewScore, dims []entities.ScoreDimension) *score.ScoreResponse {
	if s == nil {
		return nil
	}

	meta := s.Metadata.Data()
	response := &score.ScoreResponse{
		InterviewID:        s.InterviewID,
		ApplicationID:      s.ApplicationID,
		OverallScore:       s.OverallScore,
		NarrativeSummary:   s.NarrativeSummary,
		CandidateFeedback:  s.CandidateFeedback,
		AntiCheatRiskLevel: string(s.AntiCheatRiskLevel),
		ScorerType:         string(s.ScorerType),
		ModelVersion:       s.ModelVersion,
		PromptVersion:      s.PromptVersion,
		RubricVersion:      s.RubricVersion,
		HumanOverride:      s.HumanOverride,
		OverrideReason:     s.OverrideReason,
		ReviewerID:         s.ReviewerID,
		MissingDimensions:  meta.MissingDimensions,
		FailedBackends:     meta.FailedBackends,
		Dimensions:         make([]score.DimensionResponse, len(dims)),
		UpdatedAt:          s.UpdatedAt,
	}

	for i, d := range dims {
		response.Dimensions[i] = score.DimensionResponse{
			Name:     d.Name,
			Score:    d.Score,
			Weight:   d.Weight,
			Evidence: d.Evidence,
			Quotes:   d.Quotes.Data(),
			Sources:  d.Sources,
		}
	}

	return response
}

// ToRunResponse converts an orchestrator result to RunResponse DTO
func ToRunResponse(r *scoring.RunResult) *score.RunResponse {
	if r == nil {
		return nil
	}
	return &score.RunResponse{
		RunID:      r.RunID,
		State:      string(r.State),
		Skipped:    r.Skipped,
		DurationMs: r.Duration.Milliseconds(),
		Score:      ToScoreResponse(r.Score, r.Dimensions),
	}
}

// ToBackendStatuses converts health snapshots, hiding zero times
func ToBackendStatuses(snapshot []scoring.BackendHealth) []score.BackendStatus {
	out := make([]score.BackendStatus, len(snapshot))
	for i, h := range snapshot {
		out[i] = score.BackendStatus{
			Name:        h.Name,
			Available:   h.Available,
			LastError:   h.LastError,
			LastOK:      timePtr(h.LastOK),
			LastProbeAt: timePtr(h.LastProbeAt),
		}
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
