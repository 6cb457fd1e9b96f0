package domain

const (
	approveBelow  = 0.3
	flagAtOrAbove = 0.7
)

// Decide maps a moderation verdict to a publication status.
// An explicit block flags the review regardless of its score.
func Decide(safetyScore float64, action Action) Status {
	if action == ActionAllow && safetyScore < approveBelow {
		return StatusApproved
	}
	if action == ActionBlock || safetyScore >= flagAtOrAbove {
		return StatusFlagged
	}
	return StatusPending
}

// IsPositive reports whether a sentiment score counts as positive.
func IsPositive(sentimentScore float64) bool {
	return sentimentScore > 0
}
