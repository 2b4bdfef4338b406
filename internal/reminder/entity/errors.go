package entity

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrRunInProgress is returned when another scheduler run holds the run lock.
var ErrRunInProgress = errors.New("reminder: run already in progress")

// ConfigurationError reports an unusable timezone or deadline time.
type ConfigurationError struct {
	AssignmentID int64
	Field        string
	Value        string
	Err          error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: invalid %s %q", e.Field, e.Value)
	if e.AssignmentID != 0 {
		msg = fmt.Sprintf("configuration error: assignment %d: invalid %s %q", e.AssignmentID, e.Field, e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InvalidDescriptorError reports a recipient descriptor that cannot be parsed.
type InvalidDescriptorError struct {
	Raw    string
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid recipient descriptor %q: %s", e.Raw, e.Reason)
}

// DataAccessError wraps a failed collaborator call.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return "data access error: " + e.Op + ": " + e.Err.Error()
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// ItemError is a failure scoped to one (assignment, date, rule) evaluation.
// Kind is RuleKindUnknown when the failure happened before rule evaluation.
type ItemError struct {
	AssignmentID    int64
	UnitID          int64
	CategoryID      *int64
	Date            time.Time
	Kind            RuleKind
	EscalationLevel int
	Err             error
}

func (e *ItemError) Error() string {
	category := "-"
	if e.CategoryID != nil {
		category = strconv.FormatInt(*e.CategoryID, 10)
	}
	return fmt.Sprintf("unit %d category %s date %s rule %s level %d: %v",
		e.UnitID, category, e.Date.Format(time.DateOnly), e.Kind, e.EscalationLevel, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// PartialRunError aggregates the item errors of one driver pass.
type PartialRunError struct {
	Items []*ItemError
}

func (e *PartialRunError) Error() string {
	return fmt.Sprintf("partial run: %d item(s) failed", len(e.Items))
}

func (e *PartialRunError) Unwrap() []error {
	errs := make([]error, 0, len(e.Items))
	for _, it := range e.Items {
		errs = append(errs, it)
	}
	return errs
}
