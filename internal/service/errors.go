package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error taxonomy surfaced to handlers. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrGeneration   = errors.New("document generation failed")
	ErrStorage      = errors.New("storage operation failed")
	ErrNotification = errors.New("notification failed")
	ErrNotFound     = errors.New("not found")

	ErrEvidenceRequired = fmt.Errorf("%w: photo evidence of the part is required before approval", ErrValidation)
)

// Actions offered when a parts approval is blocked for missing evidence.
const (
	ActionRequestEvidence = "request_evidence"
	ActionRecheckEvidence = "recheck_evidence"
)

// EvidenceRequiredError carries the follow-up actions the caller can offer.
type EvidenceRequiredError struct {
	SolicitationID string
	Actions        []string
}

func (e *EvidenceRequiredError) Error() string {
	return ErrEvidenceRequired.Error()
}

func (e *EvidenceRequiredError) Unwrap() error {
	return ErrEvidenceRequired
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translateRepoErr maps gorm's not-found onto ErrNotFound and wraps the rest.
func translateRepoErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("failed to access %s: %w", what, err)
}
