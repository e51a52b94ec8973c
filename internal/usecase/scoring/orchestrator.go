package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
	"github.com/johnquangdev/interview-scoring/internal/usecase/audit"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
	"github.com/johnquangdev/interview-scoring/pkg/jobcontext"
)

// ErrUnknownBackend is returned when a request names a backend that is not configured
var ErrUnknownBackend = entities.ErrUnknownBackend

// State is a step of a scoring run
type State string

const (
	StateFetching    State = "fetching"
	StateInvoking    State = "invoking"
	StateAggregating State = "aggregating"
	StatePersisting  State = "persisting"
	StateNotifying   State = "notifying"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Options configures retry and notification policy
type Options struct {
	// TolerateFailures lets a run complete when at least one backend succeeded
	TolerateFailures bool
	RunTimeout       time.Duration
	LockTTL          time.Duration
	// RetryDelay is the pause before the single whole-request retry
	RetryDelay    time.Duration
	PromptVersion string
	AuditFailures bool
	ReadyStatus   entities.ApplicationStatus
}

// Dependencies are the collaborators of the orchestrator. Health, Audit and
// Reports are optional.
type Dependencies struct {
	Interviews   repositories.InterviewRepository
	Scores       repositories.ScoreRepository
	Applications repositories.ApplicationRepository
	Clients      []ScoringClient
	Locker       Locker
	Health       Availability
	Audit        AuditEmitter
	Tasks        TaskRunner
	Reports      ReportPublisher
	Logger       *zap.Logger
}

// ScoreRequest asks for one scoring run. Context is passed by value and is
// never looked up during the run.
type ScoreRequest struct {
	InterviewID uuid.UUID
	Context     entities.ScoringContext
	// Backends optionally selects and orders backends; empty means all configured
	Backends []string
	Actor    string
}

// RunResult describes how a run ended
type RunResult struct {
	RunID          uuid.UUID
	InterviewID    uuid.UUID
	State          State
	FailedIn       State
	Reason         string
	Score          *entities.InterviewScore
	Dimensions     []entities.ScoreDimension
	Aggregate      *Aggregate
	FailedBackends map[string]string
	Skipped        []string
	Duration       time.Duration
}

// Orchestrator runs the scoring state machine:
// fetching, invoking, aggregating, persisting, notifying, done.
// Any step may end the run in failed.
type Orchestrator struct {
	interviews   repositories.InterviewRepository
	scores       repositories.ScoreRepository
	applications repositories.ApplicationRepository
	clients      []ScoringClient
	aggregator   *Aggregator
	locker       Locker
	health       Availability
	audit        AuditEmitter
	tasks        TaskRunner
	reports      ReportPublisher
	opts         Options
	logger       *zap.Logger
}

// NewOrchestrator constructs a new orchestrator
func NewOrchestrator(deps Dependencies, opts Options) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if opts.ReadyStatus == "" {
		opts.ReadyStatus = entities.ApplicationStatusReviewReady
	}
	tasks := deps.Tasks
	if tasks == nil {
		tasks = dispatch.New(dispatch.DefaultConfig(), nil, logger)
	}

	return &Orchestrator{
		interviews:   deps.Interviews,
		scores:       deps.Scores,
		applications: deps.Applications,
		clients:      deps.Clients,
		aggregator:   NewAggregator(),
		locker:       deps.Locker,
		health:       deps.Health,
		audit:        deps.Audit,
		tasks:        tasks,
		reports:      deps.Reports,
		opts:         opts,
		logger:       logger,
	}
}

// run carries per-request state through the steps
type run struct {
	req       ScoreRequest
	result    *RunResult
	interview *entities.Interview
	state     State
	started   time.Time
	log       *zap.Logger
}

type outcome struct {
	prediction *entities.RawPrediction
	err        error
}

// Score executes one scoring run. On error the returned result is still
// populated with the failing state and reason.
func (o *Orchestrator) Score(ctx context.Context, req ScoreRequest) (*RunResult, error) {
	runID := uuid.New()
	ctx, cancel := jobcontext.Begin(ctx, runID, "score", req.InterviewID, o.opts.RunTimeout)
	defer cancel()

	r := &run{
		req:     req,
		result:  &RunResult{RunID: runID, InterviewID: req.InterviewID},
		started: time.Now(),
		log: o.logger.With(
			zap.String("run_id", runID.String()),
			zap.String("interview_id", req.InterviewID.String()),
		),
	}

	o.enter(r, StateFetching)

	// Same-interview runs must not interleave into a mixed dimension set
	if o.locker != nil {
		release, err := o.locker.Acquire(ctx, LockKey(req.InterviewID), o.opts.LockTTL)
		if err != nil {
			return o.fail(ctx, r, fmt.Errorf("%w: %w", entities.ErrScoringInProgress, err))
		}
		defer release()
	}

	transcript, err := o.fetch(ctx, r)
	if err != nil {
		return o.fail(ctx, r, err)
	}

	o.enter(r, StateInvoking)
	preds, err := o.invoke(ctx, r, transcript)
	if err != nil {
		return o.fail(ctx, r, err)
	}

	o.enter(r, StateAggregating)
	agg, err := o.aggregator.Aggregate(preds, req.Context.Rubric)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	r.result.Aggregate = agg
	r.log.Info("📊 Aggregated scores",
		zap.Int("overall_score", agg.OverallScore),
		zap.Int("dimensions", len(agg.Dimensions)),
		zap.Strings("missing_dimensions", agg.MissingDimensions),
	)

	o.enter(r, StatePersisting)
	previous, stored, dims, err := o.persist(ctx, r, preds, agg)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	r.result.Score = stored
	r.result.Dimensions = dims

	o.enter(r, StateNotifying)
	o.notify(ctx, r, previous, stored)

	o.enter(r, StateDone)
	r.result.Duration = time.Since(r.started)
	r.log.Info("✅ Scoring run completed",
		zap.Int("overall_score", stored.OverallScore),
		zap.Duration("duration", r.result.Duration),
	)
	return r.result, nil
}

// fetch loads the interview and its frozen transcript
func (o *Orchestrator) fetch(ctx context.Context, r *run) ([]entities.TranscriptSegment, error) {
	interview, err := o.interviews.FindByID(ctx, r.req.InterviewID)
	if err != nil {
		return nil, err
	}
	// A caller scoped to another organisation sees the interview as missing
	if org := r.req.Context.OrgID; org != "" && org != interview.OrgID.String() {
		return nil, fmt.Errorf("interview %s: %w", interview.ID, entities.ErrNotFound)
	}
	r.interview = interview

	transcript, err := o.interviews.GetTranscript(ctx, interview.ID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if len(transcript) == 0 {
		return nil, entities.ErrNoTranscript
	}
	if !interview.Status.Scorable() {
		return nil, fmt.Errorf("%w: status %s", entities.ErrInterviewNotScorable, interview.Status)
	}
	if err := r.req.Context.Rubric.Validate(); err != nil {
		return nil, err
	}

	r.log.Info("📥 Transcript loaded", zap.Int("segments", len(transcript)))
	return transcript, nil
}

// selectClients resolves the backends of a request in caller order, dropping
// those the health tracker marks unavailable
func (o *Orchestrator) selectClients(r *run) ([]ScoringClient, error) {
	candidates := o.clients
	if len(r.req.Backends) > 0 {
		byName := make(map[string]ScoringClient, len(o.clients))
		for _, c := range o.clients {
			byName[c.Name()] = c
		}
		candidates = make([]ScoringClient, 0, len(r.req.Backends))
		seen := make(map[string]struct{}, len(r.req.Backends))
		for _, name := range r.req.Backends {
			c, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			candidates = append(candidates, c)
		}
	}

	selected := make([]ScoringClient, 0, len(candidates))
	for _, c := range candidates {
		if o.health != nil && !o.health.Available(c.Name()) {
			r.result.Skipped = append(r.result.Skipped, c.Name())
			continue
		}
		selected = append(selected, c)
	}

	if len(r.result.Skipped) > 0 {
		r.log.Warn("⚠️ Skipping unavailable backends", zap.Strings("backends", r.result.Skipped))
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no scoring backend available", entities.ErrAllUpstreamsFailed)
	}
	return selected, nil
}

// invoke calls every selected backend concurrently, waits for all of them and
// retries the whole request once when the failures allow it
func (o *Orchestrator) invoke(ctx context.Context, r *run, transcript []entities.TranscriptSegment) ([]entities.SourcedPrediction, error) {
	clients, err := o.selectClients(r)
	if err != nil {
		return nil, err
	}

	outcomes := make([]outcome, len(clients))
	all := make([]int, len(clients))
	for i := range clients {
		all[i] = i
	}
	o.callBackends(ctx, r, clients, all, transcript, outcomes)

	if retry := o.retryable(outcomes); len(retry) > 0 && ctx.Err() == nil {
		r.log.Info("🔄 Retrying unavailable backends", zap.Int("backends", len(retry)))
		if err := sleepCtx(ctx, o.opts.RetryDelay); err == nil {
			retryCtx := jobcontext.SetRetryAttempt(ctx, 1)
			o.callBackends(retryCtx, r, clients, retry, transcript, outcomes)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring run cancelled: %w", err)
	}

	var (
		preds    []entities.SourcedPrediction
		failures []error
	)
	for i, c := range clients {
		if outcomes[i].err != nil {
			if r.result.FailedBackends == nil {
				r.result.FailedBackends = make(map[string]string)
			}
			r.result.FailedBackends[c.Name()] = outcomes[i].err.Error()
			failures = append(failures, outcomes[i].err)
			continue
		}
		preds = append(preds, entities.SourcedPrediction{Backend: c.Name(), Prediction: outcomes[i].prediction})
	}

	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: %w", entities.ErrAllUpstreamsFailed, errors.Join(failures...))
	}
	if len(failures) > 0 && !o.opts.TolerateFailures {
		return nil, failures[0]
	}
	return preds, nil
}

// retryable picks the backends worth a second attempt. A retry only happens
// when it can change the outcome of the run.
func (o *Orchestrator) retryable(outcomes []outcome) []int {
	var retry []int
	succeeded, fatal := 0, 0
	for i, out := range outcomes {
		switch {
		case out.err == nil:
			succeeded++
		case entities.IsRetryable(out.err):
			retry = append(retry, i)
		default:
			fatal++
		}
	}
	if o.opts.TolerateFailures && succeeded > 0 {
		return nil
	}
	if !o.opts.TolerateFailures && fatal > 0 {
		return nil
	}
	return retry
}

func (o *Orchestrator) callBackends(ctx context.Context, r *run, clients []ScoringClient, indices []int, transcript []entities.TranscriptSegment, outcomes []outcome) {
	var wg sync.WaitGroup
	for _, i := range indices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = o.callBackend(ctx, r, clients[i], transcript)
		}(i)
	}
	wg.Wait()
}

func (o *Orchestrator) callBackend(ctx context.Context, r *run, c ScoringClient, transcript []entities.TranscriptSegment) outcome {
	started := time.Now()
	pred, err := c.Score(ctx, transcript, r.req.Context)
	if err == nil && pred == nil {
		err = entities.InvalidResponse(c.Name(), errors.New("empty prediction"))
	}
	if err == nil {
		_, err = Normalize(c.Name(), pred)
	}
	if err != nil && !errors.Is(err, entities.ErrUpstreamUnavailable) && !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		err = entities.Unavailable(c.Name(), 0, err)
	}

	if err != nil {
		r.log.Warn("⚠️ Scoring backend failed",
			zap.String("backend", c.Name()),
			zap.Int("attempt", jobcontext.GetRetryAttempt(ctx)),
			zap.Bool("retryable", entities.IsRetryable(err)),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return outcome{err: err}
	}

	r.log.Info("✅ Scoring backend responded",
		zap.String("backend", c.Name()),
		zap.Int("attempt", jobcontext.GetRetryAttempt(ctx)),
		zap.Int("dimensions", len(pred.Dimensions)),
		zap.Duration("duration", time.Since(started)),
	)
	return outcome{prediction: pred}
}

// persist writes the canonical score. Nothing is written once ctx is done.
func (o *Orchestrator) persist(ctx context.Context, r *run, preds []entities.SourcedPrediction, agg *Aggregate) (*entities.InterviewScore, *entities.InterviewScore, []entities.ScoreDimension, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("scoring run cancelled: %w", err)
	}

	previous, err := o.scores.Get(ctx, r.interview.ID)
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("load previous score: %w", err)
	}

	score := entities.NewAutomatedScore(r.interview)
	score.OverallScore = agg.OverallScore
	score.NarrativeSummary = agg.NarrativeSummary
	score.CandidateFeedback = agg.CandidateFeedback
	score.AntiCheatRiskLevel = agg.RiskLevel
	score.ModelVersion = strings.Join(agg.Models, ",")
	score.PromptVersion = o.opts.PromptVersion

	rubric := r.req.Context.Rubric
	if rubric != nil {
		score.RubricVersion = rubric.Version
	}
	score.Metadata = datatypes.NewJSONType(entities.ScoreMetadata{
		RunID:             r.result.RunID.String(),
		Backends:          agg.Backends,
		FailedBackends:    r.result.FailedBackends,
		MissingDimensions: agg.MissingDimensions,
		BackendGaps:       agg.BackendGaps,
		RubricOrder:       rubric.Order(),
		RawPredictions:    preds,
	})

	dims := make([]entities.ScoreDimension, 0, len(agg.Dimensions))
	for i, d := range agg.Dimensions {
		dims = append(dims, entities.ScoreDimension{
			ID:          uuid.New(),
			InterviewID: r.interview.ID,
			Name:        d.Name,
			Score:       d.Score,
			Weight:      d.Weight,
			Evidence:    d.Evidence,
			Quotes:      datatypes.NewJSONType(d.Quotes),
			Sources:     d.Sources,
			Position:    i,
		})
	}

	stored, err := o.scores.Upsert(ctx, score, dims)
	if err != nil {
		return nil, nil, nil, err
	}
	return previous, stored, dims, nil
}

// notify schedules the best-effort side effects of a committed score.
// Their failures never revert the score.
func (o *Orchestrator) notify(ctx context.Context, r *run, previous, stored *entities.InterviewScore) {
	interview := r.interview

	if o.audit != nil {
		event := entities.NewAuditEvent(o.actor(r), entities.AuditActionInterviewCompleted,
			entities.AuditEntityInterviewScore, interview.ID, interview.OrgID)
		event.Before = audit.Snapshot(previous)
		event.After = audit.Snapshot(stored)
		o.audit.Emit(ctx, event)
	}

	if o.applications != nil {
		status := o.opts.ReadyStatus
		o.tasks.Submit(ctx, dispatch.Task{
			Name:        "application.status",
			InterviewID: interview.ID,
			Payload: map[string]string{
				"application_id": interview.ApplicationID.String(),
				"status":         string(status),
			},
			Run: func(ctx context.Context) error {
				return o.applications.UpdateStatus(ctx, interview.ApplicationID, status)
			},
		})
	}

	if o.reports != nil {
		o.tasks.Submit(ctx, dispatch.Task{
			Name:        "report.publish",
			InterviewID: interview.ID,
			Payload:     map[string]string{"interview_id": interview.ID.String()},
			Run: func(ctx context.Context) error {
				url, err := o.reports.PublishReport(ctx, interview.ID)
				if err == nil {
					r.log.Info("📄 Report published", zap.String("url", url))
				}
				return err
			},
		})
	}
}

func (o *Orchestrator) fail(ctx context.Context, r *run, err error) (*RunResult, error) {
	r.result.FailedIn = r.state
	r.result.State = StateFailed
	r.result.Reason = err.Error()
	r.result.Duration = time.Since(r.started)
	r.state = StateFailed

	r.log.Error("❌ Scoring run failed",
		zap.String("state", string(r.result.FailedIn)),
		zap.Duration("duration", r.result.Duration),
		zap.Error(err),
	)

	if o.audit != nil && o.opts.AuditFailures && r.interview != nil {
		event := entities.NewAuditEvent(o.actor(r), entities.AuditActionScoringFailed,
			entities.AuditEntityInterview, r.interview.ID, r.interview.OrgID)
		event.After = audit.Snapshot(map[string]interface{}{
			"run_id":          r.result.RunID.String(),
			"state":           r.result.FailedIn,
			"reason":          r.result.Reason,
			"failed_backends": r.result.FailedBackends,
		})
		o.audit.Emit(ctx, event)
	}
	return r.result, err
}

func (o *Orchestrator) enter(r *run, state State) {
	r.state = state
	r.result.State = state
	r.log.Info("➡️ Scoring state", zap.String("state", string(state)))
}

func (o *Orchestrator) actor(r *run) string {
	if r.req.Actor != "" {
		return r.req.Actor
	}
	return entities.ActorSystemScoring
}

// LockKey is the per-interview mutual-exclusion key shared by every writer of a score
func LockKey(interviewID uuid.UUID) string {
	return "scoring:interview:" + interviewID.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
