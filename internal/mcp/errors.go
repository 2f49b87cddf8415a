package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/stocklog/internal/domain/activity"
	"github.com/ganot/stocklog/internal/domain/snapshot"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, snapshot.ErrItemNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: "item not found", RecoveryHint: "Call list_items for tracked ids"}
	case errors.Is(err, snapshot.ErrSnapshotNotFound):
		return &APIError{Code: "SNAPSHOT_NOT_FOUND", Message: "no snapshots for member", RecoveryHint: "Call list_members for known members"}
	case errors.Is(err, snapshot.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
