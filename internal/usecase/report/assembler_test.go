package report

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/interview-scoring/internal/adapter/repository"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

type fixture struct {
	db        *gorm.DB
	assembler *Assembler
	interview *entities.Interview
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "report.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entities.Interview{},
		&entities.TranscriptSegment{},
		&entities.Application{},
		&entities.InterviewScore{},
		&entities.ScoreDimension{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	app := &entities.Application{
		ID:               uuid.New(),
		OrgID:            uuid.New(),
		OrganisationName: "Acme",
		CandidateName:    "Sam Doe",
		RoleTitle:        "Backend Engineer",
		Seniority:        "senior",
		Status:           entities.ApplicationStatusInterviewing,
	}
	interview := &entities.Interview{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		OrgID:         app.OrgID,
		Status:        entities.InterviewStatusCompleted,
	}
	segments := []*entities.TranscriptSegment{
		entities.NewTranscriptSegment(interview.ID, entities.SpeakerCandidate, "I scaled the queue", 125000),
		entities.NewTranscriptSegment(interview.ID, entities.SpeakerInterviewer, "Walk me through it", 3000),
	}
	for _, v := range []interface{}{app, interview, segments[0], segments[1]} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	interviews := repository.NewInterviewRepository(db)
	scores := repository.NewScoreRepository(db)
	applications := repository.NewApplicationRepository(db)
	a := NewAssembler(interviews, scores, applications)
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return &fixture{db: db, assembler: a, interview: interview}
}

func (f *fixture) score(t *testing.T, rubricOrder []string) {
	t.Helper()
	score := entities.NewAutomatedScore(f.interview)
	score.OverallScore = 72
	score.NarrativeSummary = "Strong systems thinking"
	score.CandidateFeedback = "Go deeper on testing"
	score.AntiCheatRiskLevel = entities.RiskLevelMedium
	score.Metadata = datatypes.NewJSONType(entities.ScoreMetadata{RubricOrder: rubricOrder})

	weight := 0.5
	dims := []entities.ScoreDimension{
		{Name: "technical", Score: 8, Weight: &weight, Quotes: datatypes.NewJSONType([]string{"I scaled the queue"}), Sources: 2, Position: 0},
		{Name: "extra_insight", Score: 6, Sources: 1, Position: 1},
		{Name: "Communication", Score: 7, Weight: &weight, Sources: 2, Position: 2},
	}
	if _, err := repository.NewScoreRepository(f.db).Upsert(context.Background(), score, dims); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func names(doc *entities.ReportDocument) string {
	out := make([]string, 0, len(doc.Dimensions))
	for _, d := range doc.Dimensions {
		out = append(out, d.Name)
	}
	return strings.Join(out, ",")
}

func TestAssemble_IncompleteWithoutScore(t *testing.T) {
	f := newFixture(t)
	_, err := f.assembler.Assemble(context.Background(), f.interview.ID)
	if !errors.Is(err, entities.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestAssemble_UnknownInterview(t *testing.T) {
	f := newFixture(t)
	_, err := f.assembler.Assemble(context.Background(), uuid.New())
	if !errors.Is(err, entities.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssemble_RubricOrderThenAggregationOrder(t *testing.T) {
	f := newFixture(t)
	f.score(t, []string{"communication", "technical"})

	doc, err := f.assembler.Assemble(context.Background(), f.interview.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got := names(doc); got != "Communication,technical,extra_insight" {
		t.Fatalf("unexpected dimension order %s", got)
	}
	if doc.OverallScore != 72 || doc.AntiCheatRiskLevel != entities.RiskLevelMedium {
		t.Fatalf("unexpected score fields %+v", doc)
	}
	if doc.CandidateName != "Sam Doe" || doc.RoleTitle != "Backend Engineer" || doc.OrganisationName != "Acme" {
		t.Fatalf("application context missing %+v", doc)
	}
	if len(doc.Transcript) != 2 || doc.Transcript[0].Timestamp != "00:03" || doc.Transcript[1].Timestamp != "02:05" {
		t.Fatalf("unexpected transcript %+v", doc.Transcript)
	}
	if !doc.GeneratedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected generated_at %s", doc.GeneratedAt)
	}
}

func TestAssemble_FirstSeenOrderWithoutRubric(t *testing.T) {
	f := newFixture(t)
	f.score(t, nil)

	doc, err := f.assembler.Assemble(context.Background(), f.interview.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got := names(doc); got != "technical,extra_insight,Communication" {
		t.Fatalf("unexpected dimension order %s", got)
	}
	if len(doc.Dimensions[0].Quotes) != 1 {
		t.Fatalf("quotes not carried: %+v", doc.Dimensions[0])
	}
}

type memArchive struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memArchive) URL(ctx context.Context, key string) (string, error) {
	return "https://reports.example/" + key, nil
}

func TestService_PublishReport(t *testing.T) {
	f := newFixture(t)
	f.score(t, nil)
	archive := &memArchive{objects: map[string][]byte{}, types: map[string]string{}}
	svc := NewService(f.assembler, archive, nil)

	url, err := svc.PublishReport(context.Background(), f.interview.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	key := "reports/" + f.interview.ApplicationID.String() + "/" + f.interview.ID.String() + ".json"
	if url != "https://reports.example/"+key {
		t.Fatalf("unexpected url %s", url)
	}
	var doc entities.ReportDocument
	if err := json.Unmarshal(archive.objects[key], &doc); err != nil {
		t.Fatalf("archived report is not json: %v", err)
	}
	if doc.InterviewID != f.interview.ID || archive.types[key] != "application/json" {
		t.Fatalf("unexpected archived report %+v", doc)
	}
}

func TestService_PublishRequiresScore(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.assembler, &memArchive{objects: map[string][]byte{}, types: map[string]string{}}, nil)
	if _, err := svc.PublishReport(context.Background(), f.interview.ID); !errors.Is(err, entities.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}
