package schedule

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrScheduleConfig  = errors.New("invalid schedule configuration")
	ErrSessionNotFound = errors.New("session not found")
)

// InvalidDurationError reports a negative (or unit-less) duration.
// Field is the path of the offending value inside the session, when known.
type InvalidDurationError struct {
	Field  string
	Value  int
	Unit   Unit
	Reason string
}

func (e *InvalidDurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid duration %d %s: %s", e.Field, e.Value, e.Unit, e.Reason)
	}
	return fmt.Sprintf("invalid duration %d %s: %s", e.Value, e.Unit, e.Reason)
}

func (e *InvalidDurationError) Is(target error) bool { return target == ErrInvalidDuration }

// ScheduleConfigError reports a contradictory or incomplete session configuration.
type ScheduleConfigError struct {
	SessionGUID string
	Field       string
	Reason      string
}

func (e *ScheduleConfigError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.SessionGUID != "" {
		return fmt.Sprintf("session %q: %s", e.SessionGUID, msg)
	}
	return msg
}

func (e *ScheduleConfigError) Is(target error) bool { return target == ErrScheduleConfig }

func configError(guid, field, reason string) error {
	return &ScheduleConfigError{SessionGUID: guid, Field: field, Reason: reason}
}

func withField(err error, field string) error {
	var de *InvalidDurationError
	if errors.As(err, &de) && de.Field == "" {
		cp := *de
		cp.Field = field
		return &cp
	}
	return err
}

// ValidationErrors maps a session key (its guid, or sessions[i] when the guid
// is missing) to the reason the session was left out of the timeline.
type ValidationErrors map[string]error

// Keys returns the failing session keys in sorted order.
func (v ValidationErrors) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Err joins all errors in key order. It returns nil when there are none.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	errs := make([]error, 0, len(v))
	for _, k := range v.Keys() {
		errs = append(errs, fmt.Errorf("%s: %w", k, v[k]))
	}
	return errors.Join(errs...)
}
