package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ReviewIntake/internal/domain"
	"ReviewIntake/internal/ports"
)

// Stage names the step a submission reached inside Submit.
type Stage string

const (
	StageReceived   Stage = "received"
	StageValidated  Stage = "validated"
	StageClassified Stage = "classified"
	StageDecided    Stage = "decided"
	StagePersisted  Stage = "persisted"
)

// Outcome labels reported to the Recorder.
const (
	OutcomeAccepted     = "accepted"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeStorageError = "storage_error"
	OutcomeError        = "error"
)

// IntakeDeps wires all driven adapters into the intake use case.
type IntakeDeps struct {
	Validator  *Validator
	Moderator  ports.Moderator
	Repository ports.ReviewRepository
	Recorder   ports.Recorder
	Logger     *slog.Logger
}

// Intake screens one submission and stores it with its publication status.
type Intake struct {
	validator  *Validator
	moderator  ports.Moderator
	repository ports.ReviewRepository
	recorder   ports.Recorder
	logger     *slog.Logger
}

// Result describes a stored submission.
type Result struct {
	SubmissionID string
	Stage        Stage
	Moderation   domain.ModerationResult
	Defaulted    bool
	Review       domain.Review
}

// NewIntake constructs the use case; missing validator and recorder get no-op defaults.
func NewIntake(deps IntakeDeps) *Intake {
	validator := deps.Validator
	if validator == nil {
		validator = NewValidator("")
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Intake{
		validator:  validator,
		moderator:  deps.Moderator,
		repository: deps.Repository,
		recorder:   recorder,
		logger:     deps.Logger,
	}
}

// Submit validates, classifies, decides and persists one submission.
// Validation failures return ErrMissingFields or ErrUnauthorized; storage
// failures return *domain.StorageError. The Result is filled up to the
// stage that was reached.
func (i *Intake) Submit(ctx context.Context, raw domain.RawSubmission, secret string) (Result, error) {
	res := Result{SubmissionID: uuid.NewString(), Stage: StageReceived}
	i.debug("submission received", "submission_id", res.SubmissionID)

	sub, err := i.validator.Validate(raw, secret)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			i.recorder.SubmissionHandled(OutcomeUnauthorized)
		default:
			i.recorder.SubmissionHandled(OutcomeInvalid)
		}
		i.debug("submission rejected", "submission_id", res.SubmissionID, "error", err)
		return res, err
	}
	res.Stage = StageValidated
	i.debug("submission validated", "submission_id", res.SubmissionID, "business_id", sub.BusinessID)

	res.Moderation, res.Defaulted = i.classify(ctx, res.SubmissionID, sub.Content)
	res.Stage = StageClassified

	status := domain.Decide(res.Moderation.SafetyScore, res.Moderation.Action)
	res.Review = domain.NewReview(sub, res.Moderation, status)
	res.Stage = StageDecided
	i.debug("review decided", "submission_id", res.SubmissionID, "status", status)

	if i.repository == nil {
		i.recorder.SubmissionHandled(OutcomeError)
		return res, errors.New("review repository is not configured")
	}

	if err := i.repository.Insert(ctx, res.Review); err != nil {
		var storageErr *domain.StorageError
		if !errors.As(err, &storageErr) {
			storageErr = &domain.StorageError{Message: err.Error(), Err: err}
		}
		i.recorder.SubmissionHandled(OutcomeStorageError)
		i.logError("review insert failed", "submission_id", res.SubmissionID, "error", storageErr.Message)
		return res, storageErr
	}
	res.Stage = StagePersisted

	i.recorder.ReviewDecided(status)
	i.recorder.SubmissionHandled(OutcomeAccepted)
	i.info("review stored",
		"submission_id", res.SubmissionID,
		"business_id", sub.BusinessID,
		"status", status,
		"safety_score", res.Moderation.SafetyScore,
		"action", res.Moderation.Action,
		"defaulted", res.Defaulted,
	)

	return res, nil
}

// classify returns the moderation result or the defaults, reporting whether defaults were used.
func (i *Intake) classify(ctx context.Context, submissionID, content string) (domain.ModerationResult, bool) {
	if i.moderator == nil {
		i.recorder.ModerationDefaulted(domain.FallbackDisabled)
		i.warn("moderation defaulted", "submission_id", submissionID, "reason", domain.FallbackDisabled)
		return domain.DefaultModerationResult(), true
	}

	result, err := i.moderator.Classify(ctx, content)
	if err == nil {
		return result, false
	}

	reason := "unknown"
	var fallback *domain.ModerationFallback
	if errors.As(err, &fallback) {
		reason = fallback.Reason
	}
	i.recorder.ModerationDefaulted(reason)
	i.warn("moderation defaulted", "submission_id", submissionID, "reason", reason, "error", err)

	return domain.DefaultModerationResult(), true
}

func (i *Intake) debug(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}
}

func (i *Intake) info(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}

func (i *Intake) warn(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}

func (i *Intake) logError(msg string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Error(msg, args...)
	}
}

type nopRecorder struct{}

func (nopRecorder) SubmissionHandled(string) {}

func (nopRecorder) ReviewDecided(domain.Status) {}

func (nopRecorder) ModerationDefaulted(string) {}
