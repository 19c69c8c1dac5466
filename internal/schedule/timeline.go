package schedule

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Result is the outcome of Build: the timeline of every session that
// resolved, plus the reason each remaining session was left out.
type Result struct {
	Timeline Timeline         `json:"timeline"`
	Errors   ValidationErrors `json:"-"`
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) fail(key string, err error) {
	if r.Errors == nil {
		r.Errors = ValidationErrors{}
	}
	// keep the first reason when a guid is reported twice
	if _, ok := r.Errors[key]; !ok {
		r.Errors[key] = err
	}
}

type rankedItem struct {
	item    ScheduledItem
	session int
	seq     int
}

// Build computes the timeline of a schedule.
//
// A session that fails to resolve is left out and reported in Result.Errors;
// the other sessions and the totals are unaffected by it. Items are ordered by
// start day, then session declaration order, then occurrence and window order.
//
// Build does not retain or modify its inputs.
func Build(sched Schedule, studyDuration *Duration) Result {
	res := Result{Timeline: Timeline{
		Schedule: []ScheduledItem{},
		Sessions: []SessionGeneral{},
	}}

	seen := make(map[string]struct{}, len(sched.Sessions))
	var ranked []rankedItem

	for idx, s := range sched.Sessions {
		if strings.TrimSpace(s.GUID) == "" {
			res.fail(fmt.Sprintf("sessions[%d]", idx), configError("", "guid", "required"))
			continue
		}
		if _, dup := seen[s.GUID]; dup {
			res.fail(s.GUID, configError(s.GUID, "guid", "duplicate session guid"))
			continue
		}
		seen[s.GUID] = struct{}{}

		general, items, err := buildSession(s, studyDuration)
		if err != nil {
			res.fail(s.GUID, err)
			continue
		}
		notifications, ok := addInt(res.Timeline.TotalNotifications, general.Notifications)
		minutes, ok2 := addInt(res.Timeline.TotalMinutes, general.Minutes)
		if !ok || !ok2 {
			res.fail(s.GUID, configError(s.GUID, "", "timeline totals out of range"))
			continue
		}
		for seq, it := range items {
			ranked = append(ranked, rankedItem{item: it, session: idx, seq: seq})
		}
		res.Timeline.Sessions = append(res.Timeline.Sessions, general)
		res.Timeline.TotalNotifications = notifications
		res.Timeline.TotalMinutes = minutes
	}

	slices.SortFunc(ranked, func(a, b rankedItem) int {
		if c := cmp.Compare(a.item.StartDay, b.item.StartDay); c != 0 {
			return c
		}
		if c := cmp.Compare(a.session, b.session); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, r := range ranked {
		res.Timeline.Schedule = append(res.Timeline.Schedule, r.item)
	}
	return res
}

func buildSession(s Session, studyDuration *Duration) (SessionGeneral, []ScheduledItem, error) {
	rec, err := ResolveEndCondition(s, studyDuration)
	if err != nil {
		return SessionGeneral{}, nil, err
	}
	items, err := ExpandWindows(s, rec)
	if err != nil {
		return SessionGeneral{}, nil, err
	}
	label := s.Name
	if label == "" {
		label = s.GUID
	}
	notifications, ok := countNotifications(s.Notifications, rec.Occurrences, len(s.TimeWindows))
	if !ok {
		return SessionGeneral{}, nil, configError(s.GUID, "notifications", "count out of range")
	}
	minutes, ok := countMinutes(items)
	if !ok {
		return SessionGeneral{}, nil, configError(s.GUID, "timeWindows", "total minutes out of range")
	}
	return SessionGeneral{
		GUID:            s.GUID,
		Label:           label,
		StartEventID:    s.StartEventID,
		EndType:         rec.End,
		Occurrences:     rec.Occurrences,
		IntervalDays:    rec.IntervalDays,
		TimeWindowGUIDs: windowGUIDs(s),
		Notifications:   notifications,
		Minutes:         minutes,
	}, items, nil
}
