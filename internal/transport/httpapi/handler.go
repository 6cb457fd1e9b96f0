package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ReviewIntake/internal/domain"
	"ReviewIntake/internal/usecase"
)

const (
	submissionIDHeader = "X-Submission-Id"
	successMessage     = "Review received successfully."
)

// Submitter runs the intake pipeline for one submission.
type Submitter interface {
	Submit(ctx context.Context, raw domain.RawSubmission, secret string) (usecase.Result, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type submitResponse struct {
	OK      bool          `json:"ok"`
	Message string        `json:"message"`
	Status  domain.Status `json:"status"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.intake == nil {
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	raw := decodeSubmission(r)

	res, err := s.intake.Submit(r.Context(), raw, r.Header.Get(s.secretHeader))
	if res.SubmissionID != "" {
		w.Header().Set(submissionIDHeader, res.SubmissionID)
	}
	if err != nil {
		status, message := errorStatus(err)
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		OK:      true,
		Message: successMessage,
		Status:  res.Review.Status,
	})
}

// decodeSubmission reads a JSON object body; anything else yields an empty submission.
func decodeSubmission(r *http.Request) domain.RawSubmission {
	raw := domain.RawSubmission{}
	if r.Body == nil {
		return raw
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return domain.RawSubmission{}
	}
	return raw
}

func errorStatus(err error) (int, string) {
	var storageErr *domain.StorageError
	switch {
	case errors.Is(err, usecase.ErrMissingFields):
		return http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid webhook secret"
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, storageErr.Message
	case err.Error() != "":
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
