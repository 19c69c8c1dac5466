package schedule

// Recurrence is a session's resolved end condition.
type Recurrence struct {
	End          EndType
	Occurrences  int
	IntervalDays int // 0 unless the session occurs more than once
}

func (r Recurrence) Repeats() bool { return r.Occurrences > 1 }

// ResolveEndCondition computes how many times a session occurs and how far apart.
//
// Rules:
//   - occurrences set: N = occurrences; an interval is required when N > 1
//   - occurrences unset, no interval: a single delivery (N = 1)
//   - occurrences unset, interval set: N = floor(studyDays/intervalDays) + 1,
//     which needs the study duration
//
// A repeating session needs an interval of at least one day, and N times the
// number of windows may not exceed MaxScheduledItems.
func ResolveEndCondition(s Session, studyDuration *Duration) (Recurrence, error) {
	intervalDays, err := optionalDays(s.Interval, "interval")
	if err != nil {
		return Recurrence{}, err
	}

	if s.Occurrences != nil {
		n := *s.Occurrences
		switch {
		case n <= 0:
			return Recurrence{}, configError(s.GUID, "occurrences", "must be > 0")
		case n > 1 && s.Interval == nil:
			return Recurrence{}, configError(s.GUID, "interval", "required when occurrences > 1")
		case n > 1 && intervalDays == 0:
			return Recurrence{}, configError(s.GUID, "interval", "must be at least one day when the session repeats")
		}
		if err := checkItemCount(s.GUID, "occurrences", n, len(s.TimeWindows)); err != nil {
			return Recurrence{}, err
		}
		r := Recurrence{End: EndOccurrences, Occurrences: n}
		if n > 1 {
			r.IntervalDays = intervalDays
		}
		return r, nil
	}

	if s.Interval == nil {
		return Recurrence{End: EndStudy, Occurrences: 1}, nil
	}
	if studyDuration == nil {
		return Recurrence{}, configError(s.GUID, "studyDuration", "required when the session repeats until the end of the study")
	}
	studyDays, err := studyDuration.Days()
	if err != nil {
		return Recurrence{}, withField(err, "studyDuration")
	}
	if intervalDays == 0 {
		return Recurrence{}, configError(s.GUID, "interval", "must be at least one day when the session repeats")
	}

	n, ok := addInt(studyDays/intervalDays, 1)
	if !ok {
		return Recurrence{}, configError(s.GUID, "studyDuration", "too long for the interval")
	}
	if err := checkItemCount(s.GUID, "studyDuration", n, len(s.TimeWindows)); err != nil {
		return Recurrence{}, err
	}
	r := Recurrence{End: EndStudy, Occurrences: n}
	if n > 1 {
		r.IntervalDays = intervalDays
	}
	return r, nil
}
