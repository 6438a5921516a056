package domain

import "strings"

// AnswerMatches compares a submitted answer against the expected one.
// Comparison is whitespace-trimmed and case-insensitive, uniformly for
// round and clue answers.
func AnswerMatches(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}
