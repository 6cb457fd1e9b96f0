package storage

import "ReviewIntake/internal/domain"

var reviewColumns = []string{
	domain.FieldBusinessID,
	domain.FieldReviewerName,
	domain.FieldPhone,
	domain.FieldContent,
	"status",
	"sentiment_score",
	"is_positive",
}

// reviewRow is the stored shape of a review.
type reviewRow struct {
	BusinessID     string  `json:"business_id"`
	ReviewerName   string  `json:"reviewer_name"`
	Phone          string  `json:"phone"`
	Content        string  `json:"content"`
	Status         string  `json:"status"`
	SentimentScore float64 `json:"sentiment_score"`
	IsPositive     bool    `json:"is_positive"`
}

func toRow(review domain.Review) reviewRow {
	return reviewRow{
		BusinessID:     review.BusinessID,
		ReviewerName:   review.ReviewerName,
		Phone:          review.Phone,
		Content:        review.Content,
		Status:         string(review.Status),
		SentimentScore: review.SentimentScore,
		IsPositive:     review.IsPositive,
	}
}

// values returns the row in reviewColumns order.
func (r reviewRow) values() []interface{} {
	return []interface{}{
		r.BusinessID,
		r.ReviewerName,
		r.Phone,
		r.Content,
		r.Status,
		r.SentimentScore,
		r.IsPositive,
	}
}
