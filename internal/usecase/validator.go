package usecase

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strconv"

	"ReviewIntake/internal/domain"
)

var (
	// ErrMissingFields reports that a required submission field is absent or empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrUnauthorized reports a shared-secret mismatch.
	ErrUnauthorized = errors.New("invalid webhook secret")
)

// Validator checks raw submissions and the caller's shared secret.
type Validator struct {
	secret string
}

// NewValidator builds a validator. An empty secret disables the secret check.
func NewValidator(secret string) *Validator {
	return &Validator{secret: secret}
}

// Validate returns the well-formed submission or ErrMissingFields / ErrUnauthorized.
// Field values are not trimmed or otherwise normalized.
func (v *Validator) Validate(raw domain.RawSubmission, suppliedSecret string) (domain.Submission, error) {
	values := make(map[string]string, len(domain.RequiredFields))
	for _, field := range domain.RequiredFields {
		value, ok := presentValue(raw[field])
		if !ok {
			return domain.Submission{}, ErrMissingFields
		}
		values[field] = value
	}

	if v != nil && v.secret != "" {
		if subtle.ConstantTimeCompare([]byte(suppliedSecret), []byte(v.secret)) != 1 {
			return domain.Submission{}, ErrUnauthorized
		}
	}

	return domain.Submission{
		BusinessID:   values[domain.FieldBusinessID],
		ReviewerName: values[domain.FieldReviewerName],
		Phone:        values[domain.FieldPhone],
		Content:      values[domain.FieldContent],
	}, nil
}

// presentValue treats nil, "", false and numeric zero as absent.
func presentValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		if !v {
			return "", false
		}
		return "true", true
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", false
		}
		return v.String(), true
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}
