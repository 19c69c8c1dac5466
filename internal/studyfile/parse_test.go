package studyfile

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"studyplan/internal/schedule"
)

func TestParseDurationForms(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want schedule.Duration
	}{
		{raw: "P3D", want: schedule.Days(3)},
		{raw: "p2w", want: schedule.Weeks(2)},
		{raw: "-P1D", want: schedule.Days(-1)},
		{raw: "3d", want: schedule.Days(3)},
		{raw: "2 weeks", want: schedule.Weeks(2)},
		{raw: " 1 Week ", want: schedule.Weeks(1)},
		{raw: "-4d", want: schedule.Days(-4)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDuration(tt.raw)
			if err != nil {
				t.Fatalf("ParseDuration(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDuration(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDurationInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "soon", "3 months", "P1M", "PT3H"} {
		if _, err := ParseDuration(raw); err == nil {
			t.Fatalf("ParseDuration(%q): expected error", raw)
		}
	}
}

func TestLoadSampleStudy(t *testing.T) {
	t.Parallel()
	st, err := Load("testdata/sleep-study.yaml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if st.Identifier != "sleep-study" || st.Status != schedule.StatusDraft {
		t.Fatalf("unexpected study header: %+v", st)
	}
	if st.StudyDuration == nil || !st.StudyDuration.Equal(schedule.Days(28)) {
		t.Fatalf("StudyDuration = %+v, want 4 weeks", st.StudyDuration)
	}
	if len(st.Schedule.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(st.Schedule.Sessions))
	}

	morning := st.Schedule.Sessions[0]
	if morning.EndType() != schedule.EndStudy || morning.StartEventID != "enrollment" {
		t.Fatalf("unexpected morning session: %+v", morning)
	}
	if morning.Notifications == nil || morning.Notifications.Frequency != schedule.OncePerWindow || !morning.Notifications.Reminder {
		t.Fatalf("unexpected notifications: %+v", morning.Notifications)
	}
	var cd map[string]any
	if err := json.Unmarshal(morning.ClientData, &cd); err != nil || cd["color"] != "#ffcc00" {
		t.Fatalf("clientData not carried through: %s (%v)", morning.ClientData, err)
	}

	burst := st.Schedule.Sessions[1]
	if !burst.Interval.Equal(schedule.Weeks(2)) || !burst.Delay.Equal(schedule.Days(2)) || *burst.Occurrences != 2 {
		t.Fatalf("unexpected burst session: %+v", burst)
	}
	if burst.TimeWindows[1].GUID == "" || burst.TimeWindows[1].Expiration != nil {
		t.Fatalf("unexpected generated window: %+v", burst.TimeWindows[1])
	}

	exit := st.Schedule.Sessions[2]
	if exit.GUID == "" || exit.StartEventID != "study_end" {
		t.Fatalf("unexpected exit session: %+v", exit)
	}
}

func TestParseDerivedGUIDsAreStable(t *testing.T) {
	t.Parallel()
	b, err := os.ReadFile("testdata/sleep-study.yaml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	a, err := Parse("sleep-study.yaml", b)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	c, err := Parse("sleep-study.yaml", b)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !reflect.DeepEqual(a, c) || Hash(a) != Hash(c) {
		t.Fatal("parsing the same document twice must give the same study")
	}
	if a.Schedule.Sessions[2].GUID == a.Schedule.Sessions[2].TimeWindows[0].GUID {
		t.Fatal("session and window guids must differ")
	}

	other, err := Parse("x.yaml", []byte(strings.Replace(string(b), "identifier: sleep-study", "identifier: other", 1)))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if other.Schedule.Sessions[2].GUID == a.Schedule.Sessions[2].GUID {
		t.Fatal("derived guids must depend on the study identifier")
	}
}

func TestParseJSONDefaults(t *testing.T) {
	t.Parallel()
	doc := `{"schedule":{"sessions":[{"guid":"s","timeWindows":[{"guid":"w"}],"notifications":{}}]}}`
	st, err := Parse("studies/pilot.json", []byte(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if st.Identifier != "pilot" || st.StartEventID != schedule.DefaultStartEventID || st.StudyDuration != nil {
		t.Fatalf("unexpected defaults: %+v", st)
	}
	s := st.Schedule.Sessions[0]
	if s.StartEventID != schedule.DefaultStartEventID || s.Notifications.Frequency != schedule.OncePerWindow {
		t.Fatalf("unexpected session defaults: %+v", s)
	}
	if !s.TimeWindows[0].StartTime.Equal(schedule.Days(0)) {
		t.Fatalf("StartTime = %+v, want 0 days", s.TimeWindows[0].StartTime)
	}
}

func TestParseKeepsNegativeDurationsForTimeline(t *testing.T) {
	t.Parallel()
	doc := `
studyDuration: 30d
schedule:
  sessions:
    - guid: ok
      timeWindows: [{guid: w}]
    - guid: bad
      interval: {value: -7, unit: day}
      timeWindows: [{guid: w}]
`
	st, err := Parse("study.yaml", []byte(doc))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	res := st.Timeline()
	if len(res.Timeline.Sessions) != 1 || !errors.Is(res.Errors["bad"], schedule.ErrInvalidDuration) {
		t.Fatalf("expected only bad to fail with ErrInvalidDuration: %+v %v", res.Timeline.Sessions, res.Errors)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown field", doc: `{"schedule":{"sessions":[{"guid":"s","timeWindows":[],"repeat":true}]}}`, want: "repeat"},
		{name: "bad duration", doc: `{"schedule":{"sessions":[{"guid":"s","interval":"weekly","timeWindows":[]}]}}`, want: "schedule.sessions[0].interval"},
		{name: "bad unit", doc: `{"studyDuration":{"value":3,"unit":"month"},"schedule":{"sessions":[]}}`, want: "studyDuration"},
		{name: "bad window", doc: `{"schedule":{"sessions":[{"timeWindows":[{"expiration":"x"}]}]}}`, want: "schedule.sessions[0].timeWindows[0].expiration"},
		{name: "bad frequency", doc: `{"schedule":{"sessions":[{"timeWindows":[],"notifications":{"frequency":"hourly"}}]}}`, want: "notifications.frequency"},
		{name: "bad status", doc: `{"status":"ARCHIVED","schedule":{"sessions":[]}}`, want: "status"},
		{name: "fractional occurrences", doc: `{"schedule":{"sessions":[{"occurrences":2.5,"timeWindows":[]}]}}`, want: "occurrences"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("study.json", []byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
