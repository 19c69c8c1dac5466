package schedule

import "fmt"

type windowSpan struct {
	guid   string
	start  int
	length int
}

// ExpandWindows lays out every (occurrence, window) pair of a session.
//
//	startDay = occurrence*intervalDays + delayDays + window.startTime
//	endDay   = startDay + window.expiration (0 when absent)
//
// Items come out occurrence-major, windows in declaration order.
func ExpandWindows(s Session, r Recurrence) ([]ScheduledItem, error) {
	if len(s.TimeWindows) == 0 {
		return nil, configError(s.GUID, "timeWindows", "at least one time window is required")
	}
	if r.Occurrences < 1 {
		return nil, configError(s.GUID, "occurrences", "must be > 0")
	}
	if err := checkItemCount(s.GUID, "occurrences", r.Occurrences, len(s.TimeWindows)); err != nil {
		return nil, err
	}
	delay, err := optionalDays(s.Delay, "delay")
	if err != nil {
		return nil, err
	}

	spans := make([]windowSpan, 0, len(s.TimeWindows))
	for i, w := range s.TimeWindows {
		if w.GUID == "" {
			return nil, configError(s.GUID, fmt.Sprintf("timeWindows[%d].guid", i), "required")
		}
		start, err := w.StartTime.Days()
		if err != nil {
			return nil, withField(err, fmt.Sprintf("timeWindows[%d].startTime", i))
		}
		length, err := optionalDays(w.Expiration, fmt.Sprintf("timeWindows[%d].expiration", i))
		if err != nil {
			return nil, err
		}
		spans = append(spans, windowSpan{guid: w.GUID, start: start, length: length})
	}

	items := make([]ScheduledItem, 0, r.Occurrences*len(spans))
	for occ := 0; occ < r.Occurrences; occ++ {
		offset, ok := mulInt(occ, r.IntervalDays)
		base, ok2 := addInt(offset, delay)
		if !ok || !ok2 {
			return nil, configError(s.GUID, "interval", "day offset out of range")
		}
		for i, sp := range spans {
			start, ok := addInt(base, sp.start)
			end, ok2 := addInt(start, sp.length)
			if !ok || !ok2 {
				return nil, configError(s.GUID, fmt.Sprintf("timeWindows[%d]", i), "day offset out of range")
			}
			if _, ok := mulInt(sp.length, MinutesPerDay); !ok {
				return nil, configError(s.GUID, fmt.Sprintf("timeWindows[%d].expiration", i), "too long")
			}
			items = append(items, ScheduledItem{
				SessionGUID:    s.GUID,
				TimeWindowGUID: sp.guid,
				StartEventID:   s.StartEventID,
				StartDay:       start,
				EndDay:         end,
				Occurrence:     occ,
			})
		}
	}
	return items, nil
}

// checkItemCount rejects sessions that would expand past MaxScheduledItems.
func checkItemCount(guid, field string, occurrences, windows int) error {
	n, ok := mulInt(occurrences, max(windows, 1))
	if !ok || n > MaxScheduledItems {
		return configError(guid, field, fmt.Sprintf("expands to more than %d scheduled items", MaxScheduledItems))
	}
	return nil
}

// windowGUIDs returns the session's window guids, deduplicated, in declaration order.
func windowGUIDs(s Session) []string {
	out := make([]string, 0, len(s.TimeWindows))
	seen := make(map[string]struct{}, len(s.TimeWindows))
	for _, w := range s.TimeWindows {
		if _, ok := seen[w.GUID]; ok {
			continue
		}
		seen[w.GUID] = struct{}{}
		out = append(out, w.GUID)
	}
	return out
}
