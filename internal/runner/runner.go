// Package runner drives a single query through an assembled agent, retrying
// a bounded number of times when the failure looks like a transient tool-usage
// error and surfacing everything else immediately.
//
// Retried attempts re-invoke the same agent with the same query; tool side
// effects from a failed attempt (partial file writes, AWS calls already made)
// are not undone. That is an inherited limitation of the design, not a bug.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opsgrade/mlcost/internal/agent"
	"github.com/opsgrade/mlcost/internal/llm"
)

// Invoker is the one capability the orchestrator needs from an agent.
type Invoker interface {
	Invoke(ctx context.Context, messages []llm.Message) (agent.Result, error)
}

// Policy bounds the retry loop. MaxAttempts must be >= 1; the orchestrator
// issues at most that many invocations per Run call.
type Policy struct {
	MaxAttempts int
}

// ExhaustedError reports that every allotted attempt failed with a retryable
// error. It is distinguishable from a fatal failure so callers can log that
// retries were attempted and exhausted rather than skipped.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("query failed after %d attempt(s), retries exhausted: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// FatalError reports a failure classified as non-retryable, surfaced
// immediately regardless of remaining attempt budget.
type FatalError struct {
	Attempt int
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("query failed on attempt %d: %v", e.Attempt, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Run executes the query against the agent under the default classifier.
func Run(ctx context.Context, inv Invoker, query string, policy Policy) (agent.Result, error) {
	return RunWithClassifier(ctx, inv, query, policy, Classify)
}

// RunWithClassifier is Run with a pluggable failure classifier, so the
// matching rules can be swapped without touching the retry loop.
//
// Exactly one terminal outcome is produced per call: the first successful
// result, a *FatalError on the first non-retryable failure, or an
// *ExhaustedError once MaxAttempts retryable failures have occurred. Attempts
// are strictly sequential; at most one invocation is in flight at a time.
func RunWithClassifier(ctx context.Context, inv Invoker, query string, policy Policy, classify Classifier) (agent.Result, error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	messages := []llm.Message{llm.UserMessage(query)}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			// Canceled between attempts; never aborts an in-flight one.
			return nil, &FatalError{Attempt: attempt, Err: err}
		}

		result, err := inv.Invoke(ctx, messages)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if classify(err) != Retryable {
			return nil, &FatalError{Attempt: attempt, Err: err}
		}

		log.Printf("[runner] tool error on attempt %d/%d: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			log.Printf("[runner] retrying... (attempt %d/%d)", attempt+1, maxAttempts)
		}
	}

	log.Printf("[runner] max retries reached; the agent is having trouble with tool usage. " +
		"Consider simplifying the query or reducing the number of tools.")
	return nil, &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
}

// IsExhausted reports whether err is an exhausted-retry failure.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}
