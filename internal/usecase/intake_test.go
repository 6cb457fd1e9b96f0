package usecase

import (
	"context"
	"errors"
	"testing"

	"ReviewIntake/internal/domain"
)

type fakeModerator struct {
	result domain.ModerationResult
	err    error
	calls  int
	texts  []string
}

func (f *fakeModerator) Classify(_ context.Context, content string) (domain.ModerationResult, error) {
	f.calls++
	f.texts = append(f.texts, content)
	if f.err != nil {
		return domain.DefaultModerationResult(), f.err
	}
	return f.result, nil
}

type fakeRepository struct {
	err     error
	reviews []domain.Review
	calls   int
}

func (f *fakeRepository) Insert(_ context.Context, review domain.Review) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.reviews = append(f.reviews, review)
	return nil
}

type fakeRecorder struct {
	outcomes  []string
	statuses  []domain.Status
	fallbacks []string
}

func (f *fakeRecorder) SubmissionHandled(outcome string) { f.outcomes = append(f.outcomes, outcome) }

func (f *fakeRecorder) ReviewDecided(status domain.Status) { f.statuses = append(f.statuses, status) }

func (f *fakeRecorder) ModerationDefaulted(reason string) { f.fallbacks = append(f.fallbacks, reason) }

type fixture struct {
	moderator  *fakeModerator
	repository *fakeRepository
	recorder   *fakeRecorder
	intake     *Intake
}

func newFixture(secret string, result domain.ModerationResult, modErr, repoErr error) fixture {
	f := fixture{
		moderator:  &fakeModerator{result: result, err: modErr},
		repository: &fakeRepository{err: repoErr},
		recorder:   &fakeRecorder{},
	}
	f.intake = NewIntake(IntakeDeps{
		Validator:  NewValidator(secret),
		Moderator:  f.moderator,
		Repository: f.repository,
		Recorder:   f.recorder,
	})
	return f
}

func TestSubmitApproved(t *testing.T) {
	t.Parallel()

	f := newFixture("", domain.ModerationResult{SafetyScore: 0.1, SentimentScore: 0.5, Action: domain.ActionAllow}, nil, nil)

	res, err := f.intake.Submit(context.Background(), completeRaw(), "")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if res.Stage != StagePersisted || res.SubmissionID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.repository.reviews) != 1 {
		t.Fatalf("expected one insert, got %d", len(f.repository.reviews))
	}

	stored := f.repository.reviews[0]
	if stored.Status != domain.StatusApproved || stored.SentimentScore != 0.5 || !stored.IsPositive {
		t.Fatalf("unexpected stored review: %+v", stored)
	}
	if f.moderator.texts[0] != "  Great coffee  " {
		t.Fatalf("content must reach moderation unchanged, got %q", f.moderator.texts[0])
	}
	if len(f.recorder.outcomes) != 1 || f.recorder.outcomes[0] != OutcomeAccepted {
		t.Fatalf("unexpected outcomes: %v", f.recorder.outcomes)
	}
}

func TestSubmitFlaggedByScore(t *testing.T) {
	t.Parallel()

	f := newFixture("", domain.ModerationResult{SafetyScore: 0.9, SentimentScore: -0.2, Action: domain.ActionFlag}, nil, nil)

	if _, err := f.intake.Submit(context.Background(), completeRaw(), ""); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	stored := f.repository.reviews[0]
	if stored.Status != domain.StatusFlagged || stored.IsPositive {
		t.Fatalf("unexpected stored review: %+v", stored)
	}
}

func TestSubmitModerationFailureUsesDefaults(t *testing.T) {
	t.Parallel()

	modErr := &domain.ModerationFallback{Reason: domain.FallbackTransport, Err: context.DeadlineExceeded}
	f := newFixture("", domain.ModerationResult{}, modErr, nil)

	res, err := f.intake.Submit(context.Background(), completeRaw(), "")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Defaulted || res.Moderation != domain.DefaultModerationResult() {
		t.Fatalf("expected defaulted moderation, got %+v", res)
	}

	stored := f.repository.reviews[0]
	if stored.Status != domain.StatusPending || stored.IsPositive || stored.SentimentScore != 0 {
		t.Fatalf("unexpected stored review: %+v", stored)
	}
	if len(f.recorder.fallbacks) != 1 || f.recorder.fallbacks[0] != domain.FallbackTransport {
		t.Fatalf("fallback not recorded: %v", f.recorder.fallbacks)
	}
}

func TestSubmitWithoutModerator(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	intake := NewIntake(IntakeDeps{Repository: repo})

	res, err := intake.Submit(context.Background(), completeRaw(), "")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Defaulted || repo.reviews[0].Status != domain.StatusPending {
		t.Fatalf("expected pending from defaults, got %+v", repo.reviews[0])
	}
}

func TestSubmitMissingContent(t *testing.T) {
	t.Parallel()

	f := newFixture("", domain.ModerationResult{}, nil, nil)
	raw := completeRaw()
	delete(raw, "content")

	res, err := f.intake.Submit(context.Background(), raw, "")
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if res.Stage != StageReceived {
		t.Fatalf("unexpected stage %s", res.Stage)
	}
	if f.moderator.calls != 0 || f.repository.calls != 0 {
		t.Fatalf("no downstream calls expected, got moderation=%d storage=%d", f.moderator.calls, f.repository.calls)
	}
}

func TestSubmitBadSecret(t *testing.T) {
	t.Parallel()

	f := newFixture("s3cret", domain.ModerationResult{}, nil, nil)

	_, err := f.intake.Submit(context.Background(), completeRaw(), "guess")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if f.moderator.calls != 0 || f.repository.calls != 0 {
		t.Fatalf("no downstream calls expected, got moderation=%d storage=%d", f.moderator.calls, f.repository.calls)
	}
	if f.recorder.outcomes[0] != OutcomeUnauthorized {
		t.Fatalf("unexpected outcome %v", f.recorder.outcomes)
	}
}

func TestSubmitStorageFailure(t *testing.T) {
	t.Parallel()

	repoErr := &domain.StorageError{Message: "permission denied for table reviews"}
	f := newFixture("", domain.ModerationResult{SafetyScore: 0.1, Action: domain.ActionAllow}, nil, repoErr)

	res, err := f.intake.Submit(context.Background(), completeRaw(), "")

	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) || storageErr.Message != "permission denied for table reviews" {
		t.Fatalf("expected storage error with original message, got %v", err)
	}
	if f.moderator.calls != 1 {
		t.Fatalf("moderation must still have happened, calls=%d", f.moderator.calls)
	}
	if res.Stage != StageDecided {
		t.Fatalf("unexpected stage %s", res.Stage)
	}
	if f.recorder.outcomes[0] != OutcomeStorageError || len(f.recorder.statuses) != 0 {
		t.Fatalf("unexpected telemetry: %+v", f.recorder)
	}
}

func TestSubmitWrapsPlainRepositoryErrors(t *testing.T) {
	t.Parallel()

	f := newFixture("", domain.ModerationResult{}, nil, errors.New("socket closed"))

	_, err := f.intake.Submit(context.Background(), completeRaw(), "")

	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) || storageErr.Message != "socket closed" {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestSubmitRepeatedSubmissionsCreateDistinctRows(t *testing.T) {
	t.Parallel()

	f := newFixture("", domain.ModerationResult{SafetyScore: 0.5, Action: domain.ActionAllow}, nil, nil)

	first, _ := f.intake.Submit(context.Background(), completeRaw(), "")
	second, _ := f.intake.Submit(context.Background(), completeRaw(), "")

	if len(f.repository.reviews) != 2 {
		t.Fatalf("expected two inserts, got %d", len(f.repository.reviews))
	}
	if first.SubmissionID == second.SubmissionID {
		t.Fatalf("submission ids must differ")
	}
}
