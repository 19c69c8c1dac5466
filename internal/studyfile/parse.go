package studyfile

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"studyplan/internal/config"
	"studyplan/internal/schedule"
)

type studyDoc struct {
	Identifier    string          `json:"identifier"`
	Name          string          `json:"name,omitempty"`
	Status        string          `json:"status,omitempty"`
	StudyDuration json.RawMessage `json:"studyDuration,omitempty"`
	StartEventID  string          `json:"startEventId,omitempty"`
	Schedule      scheduleDoc     `json:"schedule"`
}

type scheduleDoc struct {
	Sessions []sessionDoc `json:"sessions"`
}

type sessionDoc struct {
	GUID          string                   `json:"guid,omitempty"`
	Name          string                   `json:"name,omitempty"`
	StartEventID  string                   `json:"startEventId,omitempty"`
	Interval      json.RawMessage          `json:"interval,omitempty"`
	Delay         json.RawMessage          `json:"delay,omitempty"`
	Occurrences   *int                     `json:"occurrences,omitempty"`
	TimeWindows   []windowDoc              `json:"timeWindows"`
	Notifications *notificationDoc         `json:"notifications,omitempty"`
	Assessments   []schedule.AssessmentRef `json:"assessments,omitempty"`
	ClientData    json.RawMessage          `json:"clientData,omitempty"`
}

type windowDoc struct {
	GUID       string          `json:"guid,omitempty"`
	StartTime  json.RawMessage `json:"startTime,omitempty"`
	Expiration json.RawMessage `json:"expiration,omitempty"`
}

type notificationDoc struct {
	Frequency string `json:"frequency,omitempty"`
	Reminder  bool   `json:"reminder,omitempty"`
}

// Load reads and parses the study document at path.
func Load(path string) (schedule.Study, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return schedule.Study{}, err
	}
	st, err := Parse(path, b)
	if err != nil {
		return schedule.Study{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// Parse decodes a study document. name selects the format by extension and
// supplies the identifier when the document has none.
func Parse(name string, data []byte) (schedule.Study, error) {
	var doc studyDoc
	if err := config.Decode(name, data, &doc); err != nil {
		return schedule.Study{}, err
	}

	id := strings.TrimSpace(doc.Identifier)
	if id == "" {
		base := filepath.Base(name)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}
	status, err := schedule.ParseStudyStatus(doc.Status)
	if err != nil {
		return schedule.Study{}, fmt.Errorf("status: %w", err)
	}
	studyDuration, err := decodeDuration("studyDuration", doc.StudyDuration)
	if err != nil {
		return schedule.Study{}, err
	}
	anchor := schedule.StartEventID(strings.TrimSpace(doc.StartEventID))
	if anchor == "" {
		anchor = schedule.DefaultStartEventID
	}

	st := schedule.Study{
		Identifier:    id,
		Name:          doc.Name,
		Status:        status,
		StudyDuration: studyDuration,
		StartEventID:  anchor,
		Schedule:      schedule.Schedule{Sessions: make([]schedule.Session, 0, len(doc.Schedule.Sessions))},
	}
	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte("studyplan:"+id))
	for i, sd := range doc.Schedule.Sessions {
		s, err := sd.toSession(ns, i, anchor)
		if err != nil {
			return schedule.Study{}, err
		}
		st.Schedule.Sessions = append(st.Schedule.Sessions, s)
	}
	return st, nil
}

func (sd sessionDoc) toSession(ns uuid.UUID, i int, anchor schedule.StartEventID) (schedule.Session, error) {
	path := fmt.Sprintf("schedule.sessions[%d]", i)

	s := schedule.Session{
		GUID:         strings.TrimSpace(sd.GUID),
		Name:         sd.Name,
		StartEventID: schedule.StartEventID(strings.TrimSpace(sd.StartEventID)),
		Occurrences:  sd.Occurrences,
		Assessments:  sd.Assessments,
		ClientData:   sd.ClientData,
	}
	if s.GUID == "" {
		s.GUID = derivedGUID(ns, path)
	}
	if s.StartEventID == "" {
		s.StartEventID = anchor
	}

	var err error
	if s.Interval, err = decodeDuration(path+".interval", sd.Interval); err != nil {
		return schedule.Session{}, err
	}
	if s.Delay, err = decodeDuration(path+".delay", sd.Delay); err != nil {
		return schedule.Session{}, err
	}

	if sd.Notifications != nil {
		freq, err := parseFrequency(sd.Notifications.Frequency)
		if err != nil {
			return schedule.Session{}, fmt.Errorf("%s.notifications.frequency: %w", path, err)
		}
		s.Notifications = &schedule.NotificationConfig{Frequency: freq, Reminder: sd.Notifications.Reminder}
	}

	s.TimeWindows = make([]schedule.TimeWindow, 0, len(sd.TimeWindows))
	for j, wd := range sd.TimeWindows {
		wpath := fmt.Sprintf("%s.timeWindows[%d]", path, j)
		w := schedule.TimeWindow{GUID: strings.TrimSpace(wd.GUID)}
		if w.GUID == "" {
			w.GUID = derivedGUID(ns, wpath)
		}
		start, err := decodeDuration(wpath+".startTime", wd.StartTime)
		if err != nil {
			return schedule.Session{}, err
		}
		if start != nil {
			w.StartTime = *start
		} else {
			w.StartTime = schedule.Days(0)
		}
		if w.Expiration, err = decodeDuration(wpath+".expiration", wd.Expiration); err != nil {
			return schedule.Session{}, err
		}
		s.TimeWindows = append(s.TimeWindows, w)
	}
	return s, nil
}

func parseFrequency(raw string) (schedule.Frequency, error) {
	switch f := schedule.Frequency(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return schedule.OncePerWindow, nil
	case schedule.OncePerWindow, schedule.OncePerOccurrence:
		return f, nil
	default:
		return "", fmt.Errorf("unknown frequency %q (use once_per_window or once_per_occurrence)", raw)
	}
}

// derivedGUID gives entities declared without a guid a stable identity, so
// parsing the same document twice yields the same timeline.
func derivedGUID(ns uuid.UUID, path string) string {
	return uuid.NewSHA1(ns, []byte(path)).String()
}

// Hash returns a stable 64-bit content hash of a parsed study.
func Hash(st schedule.Study) uint64 {
	b, err := json.Marshal(st)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
