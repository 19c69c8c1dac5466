package schedule

import (
	"fmt"
	"strings"
)

// Unit is the granularity of a Duration.
type Unit string

const (
	UnitDay  Unit = "day"
	UnitWeek Unit = "week"
)

// ParseUnit accepts singular/plural names and the short d/w forms.
func ParseUnit(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "d", "day", "days":
		return UnitDay, nil
	case "w", "week", "weeks":
		return UnitWeek, nil
	default:
		return "", fmt.Errorf("unknown duration unit %q (use day or week)", raw)
	}
}

// Duration is a day/week delta such as an interval, a delay or a window offset.
type Duration struct {
	Value int  `json:"value"`
	Unit  Unit `json:"unit"`
}

func Days(n int) Duration  { return Duration{Value: n, Unit: UnitDay} }
func Weeks(n int) Duration { return Duration{Value: n, Unit: UnitWeek} }

// Days returns the canonical day count.
func (d Duration) Days() (int, error) {
	if d.Value < 0 {
		return 0, &InvalidDurationError{Value: d.Value, Unit: d.Unit, Reason: "value must be >= 0"}
	}
	switch d.Unit {
	case UnitDay:
		return d.Value, nil
	case UnitWeek:
		days, ok := mulInt(d.Value, 7)
		if !ok {
			return 0, &InvalidDurationError{Value: d.Value, Unit: d.Unit, Reason: "too large"}
		}
		return days, nil
	default:
		return 0, &InvalidDurationError{Value: d.Value, Unit: d.Unit, Reason: "unknown unit"}
	}
}

// Compare orders durations by canonical day count (-1, 0, +1).
func (d Duration) Compare(o Duration) (int, error) {
	a, err := d.Days()
	if err != nil {
		return 0, err
	}
	b, err := o.Days()
	if err != nil {
		return 0, err
	}
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports whether both durations are valid and span the same number of days.
// Weeks(1) equals Days(7).
func (d Duration) Equal(o Duration) bool {
	c, err := d.Compare(o)
	return err == nil && c == 0
}

func (d Duration) String() string {
	unit := string(d.Unit)
	if d.Value != 1 && unit != "" {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", d.Value, unit)
}

// optionalDays converts an optional duration, treating nil as zero days.
func optionalDays(d *Duration, field string) (int, error) {
	if d == nil {
		return 0, nil
	}
	n, err := d.Days()
	if err != nil {
		return 0, withField(err, field)
	}
	return n, nil
}
