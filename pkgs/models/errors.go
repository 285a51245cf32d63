package models

import "fmt"

// MalformedSubmissionError marks a submission that cannot be normalized:
// unsupported revision, unmapped source, or invariant-violating chat layout.
// The proof assembler recovers it into a valid=false scored result.
type MalformedSubmissionError struct {
	Reason string
}

func (e *MalformedSubmissionError) Error() string {
	return "malformed submission: " + e.Reason
}

// Malformedf builds a MalformedSubmissionError from a format string
func Malformedf(format string, args ...interface{}) error {
	return &MalformedSubmissionError{Reason: fmt.Sprintf(format, args...)}
}
