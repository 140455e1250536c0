package runner

import "strings"

// Class is the retry classification of a failed attempt.
type Class int

const (
	// Fatal failures are surfaced immediately; repeating the identical
	// request will not fix a configuration, authentication or provider
	// outage error.
	Fatal Class = iota
	// Retryable failures are transient tool-usage errors worth re-invoking.
	Retryable
)

// Classifier decides whether a failed attempt is worth retrying.
type Classifier func(err error) Class

// Classify is the default classifier. It matches the provider error wording
// for two known-transient failure modes:
//
//   - a rejected tool_use/tool_result pairing, meaning the model produced a
//     malformed tool-call cycle;
//   - a validation error on a write_file call.
//
// The substring matching is a best-effort heuristic tied to provider error
// text, deliberately kept to these exact markers.
func Classify(err error) Class {
	if err == nil {
		return Fatal
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	if strings.Contains(msg, "tool_use") && strings.Contains(msg, "tool_result") {
		return Retryable
	}
	if strings.Contains(lower, "validation error") && strings.Contains(msg, "write_file") {
		return Retryable
	}
	return Fatal
}
