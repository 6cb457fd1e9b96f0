package storage

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/lib/pq"

	"ReviewIntake/internal/domain"
)

func sampleReview() domain.Review {
	return domain.NewReview(
		domain.Submission{BusinessID: "biz-7", ReviewerName: "Ann", Phone: "+1 555", Content: "Friendly"},
		domain.ModerationResult{SafetyScore: 0.1, SentimentScore: 0.5, Action: domain.ActionAllow},
		domain.StatusApproved,
	)
}

func TestInsertQuery(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil, "")
	query, args, err := repo.insertQuery(sampleReview())
	if err != nil {
		t.Fatalf("insertQuery error: %v", err)
	}

	wantQuery := "INSERT INTO reviews (business_id,reviewer_name,phone,content,status,sentiment_score,is_positive) VALUES ($1,$2,$3,$4,$5,$6,$7)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, wantQuery)
	}

	wantArgs := []interface{}{"biz-7", "Ann", "+1 555", "Friendly", "approved", 0.5, true}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestInsertQueryCustomTable(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil, "public.business_reviews")
	query, _, err := repo.insertQuery(sampleReview())
	if err != nil {
		t.Fatalf("insertQuery error: %v", err)
	}
	if want := "INSERT INTO public.business_reviews "; query[:len(want)] != want {
		t.Fatalf("unexpected table in %s", query)
	}
}

func TestPostgresInsertWithoutDB(t *testing.T) {
	t.Parallel()

	err := NewPostgresRepository(nil, "").Insert(context.Background(), sampleReview())

	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestPgMessage(t *testing.T) {
	t.Parallel()

	pqErr := &pq.Error{Message: `null value in column "phone" violates not-null constraint`}
	if got := pgMessage(fmt.Errorf("exec: %w", pqErr)); got != pqErr.Message {
		t.Fatalf("unexpected message: %s", got)
	}

	plain := errors.New("connection refused")
	if got := pgMessage(plain); got != "connection refused" {
		t.Fatalf("unexpected message: %s", got)
	}
}
