package ai

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// defaultDimensions are asked for when the caller supplies no rubric
var defaultDimensions = []string{
	"technical_depth",
	"problem_solving",
	"communication",
	"role_fit",
	"culture_alignment",
}

// FormatTranscript renders segments as "[MM:SS speaker]: text" lines
func FormatTranscript(segments []entities.TranscriptSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(fmt.Sprintf("[%s %s]: %s\n", entities.FormatOffset(seg.StartTimeMs), seg.Speaker, strings.TrimSpace(seg.Content)))
	}
	return sb.String()
}

// BuildPrompt assembles the LLM instruction for one scoring run
func BuildPrompt(segments []entities.TranscriptSegment, sc entities.ScoringContext) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced interviewer evaluating a candidate from an interview transcript.\n")
	if sc.RoleTitle != "" {
		sb.WriteString(fmt.Sprintf("Role: %s", sc.RoleTitle))
		if sc.Seniority != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", sc.Seniority))
		}
		sb.WriteString("\n")
	}
	if jd := strings.TrimSpace(sc.JobDescription); jd != "" {
		sb.WriteString("\n## Job description\n")
		sb.WriteString(jd)
		sb.WriteString("\n")
	}
	if cv := strings.TrimSpace(sc.ResumeText); cv != "" {
		sb.WriteString("\n## Candidate resume\n")
		sb.WriteString(cv)
		sb.WriteString("\n")
	}
	if len(sc.Values) > 0 {
		sb.WriteString("\n## Company values\n")
		for _, v := range sc.Values {
			sb.WriteString("- " + v + "\n")
		}
	}

	sb.WriteString("\n## Dimensions to score\n")
	if sc.Rubric != nil && len(sc.Rubric.Dimensions) > 0 {
		for _, d := range sc.Rubric.Dimensions {
			line := "- " + d.Name
			if d.Description != "" {
				line += ": " + d.Description
			}
			sb.WriteString(line + "\n")
		}
	} else {
		for _, name := range defaultDimensions {
			sb.WriteString("- " + name + "\n")
		}
	}

	sb.WriteString("\n## Transcript\n")
	sb.WriteString(FormatTranscript(segments))

	sb.WriteString(`
Respond with a single JSON object and nothing else:
{
  "dimensions": {
    "<dimension name>": {"score": <0-10>, "confidence": <0-1>, "rationale": "<why>", "quotes": ["<verbatim quote>"]}
  },
  "summary": "<narrative summary for the hiring team>",
  "candidate_feedback": "<constructive feedback addressed to the candidate>",
  "anti_cheat_risk_level": "low|medium|high"
}
Quotes must be copied verbatim from the candidate's lines.`)

	return sb.String()
}
