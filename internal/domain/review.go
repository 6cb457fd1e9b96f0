package domain

// Submission is a validated review as received from the web form.
type Submission struct {
	BusinessID   string
	ReviewerName string
	Phone        string
	Content      string
}

// RawSubmission is the untrusted request body before validation.
// Values keep whatever JSON type the caller sent.
type RawSubmission map[string]any

// Submission field names as they appear on the wire and in storage.
const (
	FieldBusinessID   = "business_id"
	FieldReviewerName = "reviewer_name"
	FieldPhone        = "phone"
	FieldContent      = "content"
)

// RequiredFields lists the fields every submission must carry.
var RequiredFields = []string{FieldBusinessID, FieldReviewerName, FieldPhone, FieldContent}

// Action is the verdict label returned by the moderation service.
// Labels outside the known set are kept as-is.
type Action string

const (
	ActionAllow Action = "allow"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// ModerationResult is the interpreted classification of a review text.
// Scores are not clamped to their nominal ranges.
type ModerationResult struct {
	SafetyScore    float64 `json:"safety_score"`
	SentimentScore float64 `json:"sentiment_score"`
	Action         Action  `json:"action"`
}

// DefaultModerationResult is used whenever the moderation service gives no usable answer.
func DefaultModerationResult() ModerationResult {
	return ModerationResult{
		SafetyScore:    0,
		SentimentScore: 0,
		Action:         ActionFlag,
	}
}

// Status is the publication state attached to a stored review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFlagged  Status = "flagged"
)

// Review is the record written to the datastore.
type Review struct {
	Submission
	Status         Status
	SentimentScore float64
	IsPositive     bool
}

// NewReview attaches the decided status and sentiment fields to a submission.
func NewReview(sub Submission, result ModerationResult, status Status) Review {
	return Review{
		Submission:     sub,
		Status:         status,
		SentimentScore: result.SentimentScore,
		IsPositive:     IsPositive(result.SentimentScore),
	}
}

// StorageError carries the datastore's own failure message.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Reasons for falling back to DefaultModerationResult.
const (
	FallbackTransport = "transport"
	FallbackStatus    = "status"
	FallbackDecode    = "decode"
	FallbackEmpty     = "empty"
	FallbackParse     = "parse"
	FallbackDisabled  = "disabled"
)

// ModerationFallback explains why the default moderation result was used.
type ModerationFallback struct {
	Reason string
	Err    error
}

func (e *ModerationFallback) Error() string {
	if e.Err == nil {
		return "moderation " + e.Reason
	}
	return "moderation " + e.Reason + ": " + e.Err.Error()
}

func (e *ModerationFallback) Unwrap() error {
	return e.Err
}
