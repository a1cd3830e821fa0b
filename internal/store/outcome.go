package store

import "fmt"

// Status classifies the result of an upsert attempt.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// SkipReason explains why a record was skipped rather than saved.
type SkipReason string

const (
	// SkipAlreadyExists is the benign steady-state outcome once a listing
	// has been seen in a prior run.
	SkipAlreadyExists SkipReason = "already_exists"
	// SkipMissingIdentity marks a record rejected before any insert attempt
	// because it carries no job id.
	SkipMissingIdentity SkipReason = "missing_identity"
)

// Outcome is the result of a single UpsertIfAbsent call.
type Outcome struct {
	Status Status
	Reason SkipReason
	Err    error
}

func Saved() Outcome {
	return Outcome{Status: StatusSaved}
}

func Skipped(reason SkipReason) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

func (o Outcome) String() string {
	switch {
	case o.Status == StatusSkipped:
		return fmt.Sprintf("%s(%s)", o.Status, o.Reason)
	case o.Status == StatusFailed && o.Err != nil:
		return fmt.Sprintf("%s(%v)", o.Status, o.Err)
	default:
		return string(o.Status)
	}
}
