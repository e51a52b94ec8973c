package assemblyai

import (
	"context"
	"fmt"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
)

// transcriptGetter is the part of the SDK transcript service the importer uses
type transcriptGetter interface {
	Get(ctx context.Context, transcriptID string) (aai.Transcript, error)
}

// ImportOptions controls how a transcript is mapped onto an interview
type ImportOptions struct {
	// CandidateSpeaker is the diarization label of the candidate, e.g. "B"
	CandidateSpeaker string
	// Complete freezes the transcript by moving the interview to completed
	Complete bool
}

// Importer turns a finished AssemblyAI transcript into interview segments
type Importer struct {
	transcripts transcriptGetter
	interviews  repositories.InterviewRepository
	logger      *zap.Logger
}

// NewImporter creates an importer backed by the official SDK client
func NewImporter(apiKey string, interviews repositories.InterviewRepository, logger *zap.Logger) *Importer {
	client := aai.NewClient(apiKey)
	return newImporter(client.Transcripts, interviews, logger)
}

func newImporter(transcripts transcriptGetter, interviews repositories.InterviewRepository, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{transcripts: transcripts, interviews: interviews, logger: logger}
}

// Import appends the transcript's utterances to the interview and returns how
// many segments were written.
func (i *Importer) Import(ctx context.Context, interviewID uuid.UUID, transcriptID string, opts ImportOptions) (int, error) {
	if strings.TrimSpace(opts.CandidateSpeaker) == "" {
		return 0, fmt.Errorf("candidate speaker label is required")
	}

	transcript, err := i.transcripts.Get(ctx, transcriptID)
	if err != nil {
		return 0, fmt.Errorf("fetch transcript %s: %w", transcriptID, err)
	}
	if transcript.Status != aai.TranscriptStatusCompleted {
		if transcript.Error != nil {
			return 0, fmt.Errorf("transcript %s is %s: %s", transcriptID, transcript.Status, *transcript.Error)
		}
		return 0, fmt.Errorf("transcript %s is %s, not completed", transcriptID, transcript.Status)
	}

	segments := ToSegments(interviewID, transcript.Utterances, opts.CandidateSpeaker)
	if len(segments) == 0 {
		return 0, fmt.Errorf("transcript %s: %w", transcriptID, entities.ErrNoTranscript)
	}

	if err := i.interviews.AppendSegments(ctx, interviewID, segments); err != nil {
		return 0, fmt.Errorf("append segments: %w", err)
	}
	if opts.Complete {
		if err := i.interviews.MarkCompleted(ctx, interviewID); err != nil {
			return len(segments), fmt.Errorf("mark interview completed: %w", err)
		}
	}

	i.logger.Info("✅ Transcript imported",
		zap.String("interview_id", interviewID.String()),
		zap.String("transcript_id", transcriptID),
		zap.Int("segments", len(segments)),
		zap.Bool("completed", opts.Complete),
	)
	return len(segments), nil
}

// ToSegments maps diarized utterances onto interview speakers.
// Utterances without text are skipped.
func ToSegments(interviewID uuid.UUID, utterances []aai.TranscriptUtterance, candidateSpeaker string) []entities.TranscriptSegment {
	segments := make([]entities.TranscriptSegment, 0, len(utterances))
	for _, utt := range utterances {
		if utt.Text == nil || strings.TrimSpace(*utt.Text) == "" {
			continue
		}

		speaker := entities.SpeakerInterviewer
		if utt.Speaker != nil && strings.EqualFold(*utt.Speaker, candidateSpeaker) {
			speaker = entities.SpeakerCandidate
		}

		var start int64
		if utt.Start != nil {
			start = *utt.Start
		}

		seg := entities.NewTranscriptSegment(interviewID, speaker, strings.TrimSpace(*utt.Text), start)
		if utt.Confidence != nil {
			c := *utt.Confidence
			seg.Confidence = &c
		}
		segments = append(segments, *seg)
	}
	return segments
}
