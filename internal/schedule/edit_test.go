package schedule

import (
	"errors"
	"testing"
)

func TestApplyDoesNotMutate(t *testing.T) {
	t.Parallel()
	orig := sampleSchedule()
	next, err := orig.Apply(
		SetAnchor{SessionGUID: "daily", StartEventID: "first_visit"},
		SetEndCondition{SessionGUID: "daily", Occurrences: intPtr(2)},
		SetInterval{SessionGUID: "burst", Interval: durPtr(Days(3))},
		SetDelay{SessionGUID: "burst", Delay: durPtr(Days(1))},
	)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if orig.Sessions[0].StartEventID != "enrollment" || orig.Sessions[0].Occurrences != nil {
		t.Fatalf("original schedule was modified: %+v", orig.Sessions[0])
	}
	if !orig.Sessions[1].Interval.Equal(Weeks(2)) || orig.Sessions[1].Delay != nil {
		t.Fatalf("original schedule was modified: %+v", orig.Sessions[1])
	}
	d := next.Sessions[0]
	if d.StartEventID != "first_visit" || d.Occurrences == nil || *d.Occurrences != 2 {
		t.Fatalf("unexpected edited session: %+v", d)
	}
	if !next.Sessions[1].Interval.Equal(Days(3)) || !next.Sessions[1].Delay.Equal(Days(1)) {
		t.Fatalf("unexpected edited session: %+v", next.Sessions[1])
	}
}

func TestApplyEndStudyClearsOccurrences(t *testing.T) {
	t.Parallel()
	orig := sampleSchedule()
	next, err := orig.Apply(SetEndCondition{SessionGUID: "burst"})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if next.Sessions[1].EndType() != EndStudy {
		t.Fatalf("EndType = %s, want END_STUDY", next.Sessions[1].EndType())
	}
	if orig.Sessions[1].EndType() != EndOccurrences {
		t.Fatal("original schedule was modified")
	}
}

func TestApplyAddRemove(t *testing.T) {
	t.Parallel()
	orig := sampleSchedule()
	next, err := orig.Apply(
		AddSession{Session: Session{GUID: "extra", TimeWindows: []TimeWindow{window("e", 0)}}},
		RemoveSession{SessionGUID: "daily"},
	)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(next.Sessions) != 2 || next.Sessions[0].GUID != "burst" || next.Sessions[1].GUID != "extra" {
		t.Fatalf("unexpected sessions: %+v", next.Sessions)
	}
	if len(orig.Sessions) != 2 || orig.Sessions[0].GUID != "daily" {
		t.Fatal("original schedule was modified")
	}
}

func TestApplyErrors(t *testing.T) {
	t.Parallel()
	orig := sampleSchedule()
	if _, err := orig.Apply(SetAnchor{SessionGUID: "nope"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := orig.Apply(RemoveSession{SessionGUID: "nope"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := orig.Apply(AddSession{Session: Session{GUID: "daily"}}); !errors.Is(err, ErrScheduleConfig) {
		t.Fatalf("expected ErrScheduleConfig, got %v", err)
	}
	got, err := orig.Apply(SetAnchor{SessionGUID: "daily", StartEventID: "x"}, RemoveSession{SessionGUID: "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got.Sessions[0].StartEventID != "enrollment" {
		t.Fatal("failed Apply must return the untouched schedule")
	}
}

func TestStudyStatus(t *testing.T) {
	t.Parallel()
	s, err := ParseStudyStatus("active")
	if err != nil || s != StatusActive {
		t.Fatalf("ParseStudyStatus = %q, %v", s, err)
	}
	if s.Editable() {
		t.Fatal("active study must not be editable")
	}
	if s, _ := ParseStudyStatus(""); s != StatusDraft || !s.Editable() {
		t.Fatalf("empty status should default to an editable draft, got %q", s)
	}
	if _, err := ParseStudyStatus("ARCHIVED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
