package schedule

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestWeeksOverflowIsInvalidDuration(t *testing.T) {
	t.Parallel()
	if _, err := Weeks(math.MaxInt / 4).Days(); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if n, err := Weeks(math.MaxInt / 7).Days(); err != nil || n <= 0 {
		t.Fatalf("largest representable week count: n=%d err=%v", n, err)
	}
}

func TestResolveRejectsTooManyItems(t *testing.T) {
	t.Parallel()
	windows := []TimeWindow{window("a", 0), window("b", 1), window("c", 2)}
	tests := []struct {
		name  string
		s     Session
		study *Duration
		field string
	}{
		{
			name:  "huge occurrences",
			s:     Session{GUID: "s", Occurrences: intPtr(math.MaxInt / 2), Interval: durPtr(Days(1)), TimeWindows: windows},
			field: "occurrences",
		},
		{
			name:  "occurrences times windows",
			s:     Session{GUID: "s", Occurrences: intPtr(MaxScheduledItems/3 + 1), Interval: durPtr(Days(1)), TimeWindows: windows},
			field: "occurrences",
		},
		{
			name:  "long study daily",
			s:     Session{GUID: "s", Interval: durPtr(Days(1)), TimeWindows: windows},
			study: durPtr(Days(math.MaxInt)),
			field: "studyDuration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveEndCondition(tt.s, tt.study)
			var ce *ScheduleConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field || ce.SessionGUID != "s" {
				t.Fatalf("expected ScheduleConfigError on %s, got %v", tt.field, err)
			}
		})
	}

	ok := Session{GUID: "s", Occurrences: intPtr(MaxScheduledItems / 3), Interval: durPtr(Days(1)), TimeWindows: windows}
	if _, err := ResolveEndCondition(ok, nil); err != nil {
		t.Fatalf("session at the limit rejected: %v", err)
	}
}

func TestExpandWindowsRejectsUncheckedRecurrence(t *testing.T) {
	t.Parallel()
	s := Session{GUID: "s", TimeWindows: []TimeWindow{window("w", 0)}}
	if _, err := ExpandWindows(s, Recurrence{Occurrences: math.MaxInt / 2, IntervalDays: 1}); !errors.Is(err, ErrScheduleConfig) {
		t.Fatalf("expected ErrScheduleConfig, got %v", err)
	}
}

func TestExpandWindowsDayOffsetOverflow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		s    Session
		r    Recurrence
	}{
		{
			name: "occurrence times interval",
			s:    Session{GUID: "s", TimeWindows: []TimeWindow{window("w", 0)}},
			r:    Recurrence{Occurrences: 3, IntervalDays: math.MaxInt/2 + 1},
		},
		{
			name: "delay plus start",
			s:    Session{GUID: "s", Delay: durPtr(Days(math.MaxInt)), TimeWindows: []TimeWindow{window("w", 1)}},
			r:    Recurrence{Occurrences: 1},
		},
		{
			name: "start plus expiration",
			s: Session{GUID: "s", TimeWindows: []TimeWindow{
				{GUID: "w", StartTime: Days(math.MaxInt - 1), Expiration: durPtr(Days(2))},
			}},
			r: Recurrence{Occurrences: 1},
		},
		{
			name: "expiration in minutes",
			s: Session{GUID: "s", TimeWindows: []TimeWindow{
				{GUID: "w", StartTime: Days(0), Expiration: durPtr(Days(math.MaxInt / 1000))},
			}},
			r: Recurrence{Occurrences: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ExpandWindows(tt.s, tt.r)
			if !errors.Is(err, ErrScheduleConfig) {
				t.Fatalf("expected ErrScheduleConfig, got %v (items=%v)", err, items)
			}
		})
	}
}

func TestCountersSaturate(t *testing.T) {
	t.Parallel()
	cfg := &NotificationConfig{Frequency: OncePerWindow, Reminder: true}
	if got := CountNotifications(cfg, math.MaxInt/2, 3); got != math.MaxInt {
		t.Fatalf("CountNotifications = %d, want saturation", got)
	}
	items := []ScheduledItem{{StartDay: 0, EndDay: math.MaxInt / MinutesPerDay}, {StartDay: 0, EndDay: 10}}
	if got := CountMinutes(items); got != math.MaxInt {
		t.Fatalf("CountMinutes = %d, want saturation", got)
	}
}

func TestBuildNeverPanicsOnLargeInput(t *testing.T) {
	t.Parallel()
	sched := Schedule{Sessions: []Session{
		{GUID: "huge", Occurrences: intPtr(math.MaxInt / 2), Interval: durPtr(Days(1)),
			TimeWindows: []TimeWindow{window("a", 0), window("b", 0), window("c", 0)}},
		{GUID: "weeks", TimeWindows: []TimeWindow{{GUID: "w", StartTime: Weeks(math.MaxInt / 4)}}},
		{GUID: "long", TimeWindows: []TimeWindow{{GUID: "w", StartTime: Days(0), Expiration: durPtr(Days(math.MaxInt / 1000))}}},
		{GUID: "ok", TimeWindows: []TimeWindow{{GUID: "w", StartTime: Days(2), Expiration: durPtr(Days(1))}}},
	}}

	res := Build(sched, nil)

	if got := res.Errors.Keys(); strings.Join(got, ",") != "huge,long,weeks" {
		t.Fatalf("failing sessions = %v", got)
	}
	if len(res.Timeline.Schedule) != 1 || res.Timeline.Schedule[0].SessionGUID != "ok" {
		t.Fatalf("unexpected schedule: %+v", res.Timeline.Schedule)
	}
	if res.Timeline.TotalMinutes != MinutesPerDay || res.Timeline.TotalNotifications != 0 {
		t.Fatalf("unexpected totals: %+v", res.Timeline)
	}
	for _, it := range res.Timeline.Schedule {
		if it.StartDay < 0 || it.EndDay < it.StartDay {
			t.Fatalf("item out of range: %+v", it)
		}
	}
}

func TestBuildTotalsOverflowExcludesSession(t *testing.T) {
	t.Parallel()
	// Each session stays just inside the per-session limits; together their
	// minutes exceed math.MaxInt.
	days := math.MaxInt/MinutesPerDay - 1
	long := func(guid string) Session {
		return Session{GUID: guid, TimeWindows: []TimeWindow{{GUID: "w", StartTime: Days(0), Expiration: durPtr(Days(days))}}}
	}
	res := Build(Schedule{Sessions: []Session{long("a"), long("b")}}, nil)
	if _, ok := res.Errors["b"]; !ok || len(res.Errors) != 1 {
		t.Fatalf("expected only b to fail, got %v", res.Errors)
	}
	if res.Timeline.TotalMinutes != days*MinutesPerDay {
		t.Fatalf("TotalMinutes = %d", res.Timeline.TotalMinutes)
	}
}
