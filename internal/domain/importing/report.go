package importing

import (
	"fmt"
	"time"
)

type State string

const (
	StateUploaded   State = "uploaded"
	StateClassified State = "classified"
	StateExtracted  State = "extracted"
	StateReconciled State = "reconciled"
	StatePersisted  State = "persisted"
	StateRolledBack State = "rolled_back"
)

var transitions = map[State][]State{
	StateUploaded:   {StateClassified, StateRolledBack},
	StateClassified: {StateExtracted, StateRolledBack},
	StateExtracted:  {StateReconciled, StateRolledBack},
	StateReconciled: {StatePersisted, StateRolledBack},
}

// Report tracks one import run. Only its final counts leave the process.
type Report struct {
	ImportID string
	Filename string
	State    State
	Added    int
	Skipped  int
	Errors   []string
	Started  time.Time
	Finished time.Time
}

func NewReport(importID, filename string, now time.Time) *Report {
	return &Report{
		ImportID: importID,
		Filename: filename,
		State:    StateUploaded,
		Errors:   []string{},
		Started:  now,
	}
}

// Advance moves the report to next, rejecting transitions out of order.
func (r *Report) Advance(next State) error {
	for _, s := range transitions[r.State] {
		if s == next {
			r.State = next
			return nil
		}
	}
	return fmt.Errorf("invalid import transition %s -> %s", r.State, next)
}

// RowError records a row that could not be stored.
func (r *Report) RowError(row int, err error) {
	r.Errors = append(r.Errors, FormatRowError(row, err))
}

func FormatRowError(row int, err error) string {
	return fmt.Sprintf("Row %d: %v", row, err)
}

// Result is the public outcome of an import.
type Result struct {
	ImportID string
	Added    int
	Skipped  int
	Errors   []string
}

func (r *Report) Result() Result {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return Result{ImportID: r.ImportID, Added: r.Added, Skipped: r.Skipped, Errors: errs}
}
