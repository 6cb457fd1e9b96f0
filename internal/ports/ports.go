package ports

import (
	"context"

	"ReviewIntake/internal/domain"
)

// Moderator classifies review text through an external service.
// It always returns a usable result; a non-nil error means the result is the default one.
type Moderator interface {
	Classify(ctx context.Context, content string) (domain.ModerationResult, error)
}

// ReviewRepository stores reviews. Every call inserts a new record.
type ReviewRepository interface {
	Insert(ctx context.Context, review domain.Review) error
}

// Recorder collects intake telemetry (Prometheus, etc.).
type Recorder interface {
	SubmissionHandled(outcome string)
	ReviewDecided(status domain.Status)
	ModerationDefaulted(reason string)
}
