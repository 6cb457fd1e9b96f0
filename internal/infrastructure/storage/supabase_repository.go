package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ReviewIntake/internal/domain"
	"ReviewIntake/internal/ports"
)

// SupabaseRepository inserts reviews through the Supabase REST (PostgREST) API.
type SupabaseRepository struct {
	baseURL    string
	serviceKey string
	table      string
	client     *http.Client
}

var _ ports.ReviewRepository = (*SupabaseRepository)(nil)

// NewSupabaseRepository registers the project URL and service-role key.
func NewSupabaseRepository(baseURL, serviceKey, table string, client *http.Client) *SupabaseRepository {
	if client == nil {
		client = &http.Client{}
	}
	if table == "" {
		table = "reviews"
	}
	return &SupabaseRepository{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		table:      table,
		client:     client,
	}
}

// postgrestError is the error body returned by PostgREST.
type postgrestError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// Insert posts a single row; the datastore's message is returned unmodified on failure.
func (r *SupabaseRepository) Insert(ctx context.Context, review domain.Review) error {
	if r.baseURL == "" || r.serviceKey == "" {
		return &domain.StorageError{Message: "supabase storage misconfigured"}
	}

	body, err := json.Marshal(toRow(review))
	if err != nil {
		return &domain.StorageError{Message: err.Error(), Err: err}
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, url.PathEscape(r.table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &domain.StorageError{Message: err.Error(), Err: err}
	}
	req.Header.Set("apikey", r.serviceKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.client.Do(req)
	if err != nil {
		return &domain.StorageError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := restMessage(resp.Status, payload)
		return &domain.StorageError{Message: message, Err: fmt.Errorf("supabase insert %s", resp.Status)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func restMessage(status string, payload []byte) string {
	var perr postgrestError
	if err := json.Unmarshal(payload, &perr); err == nil && perr.Message != "" {
		return perr.Message
	}
	if text := strings.TrimSpace(string(payload)); text != "" {
		return text
	}
	return status
}
