// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when the query has no text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrBudgetExceeded is returned when the request limit is reached
	// before an answer is accepted.
	ErrBudgetExceeded = errors.New("request budget exceeded")

	// ErrRetryCeilingReached is matched by *RetryCeilingError.
	ErrRetryCeilingReached = errors.New("retry ceiling reached")
)

// RetryCeilingError reports that every allowed retry was rejected by the
// validator. Reason is the last rejection.
type RetryCeilingError struct {
	Retries int
	Reason  string
}

func (e *RetryCeilingError) Error() string {
	return fmt.Sprintf("answer rejected after %d retries: %s", e.Retries, e.Reason)
}

// Unwrap lets errors.Is match ErrRetryCeilingReached.
func (e *RetryCeilingError) Unwrap() error { return ErrRetryCeilingReached }
