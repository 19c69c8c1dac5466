package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StartEventID names the anchor event a session's day offsets are measured from.
type StartEventID string

const DefaultStartEventID StartEventID = "enrollment"

// StudyStatus is the lifecycle state of a study.
type StudyStatus string

const (
	StatusDraft     StudyStatus = "DRAFT"
	StatusActive    StudyStatus = "ACTIVE"
	StatusCompleted StudyStatus = "COMPLETED"
)

func ParseStudyStatus(raw string) (StudyStatus, error) {
	switch s := StudyStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusDraft, StatusActive, StatusCompleted:
		return s, nil
	case "":
		return StatusDraft, nil
	default:
		return "", fmt.Errorf("unknown study status %q (use DRAFT, ACTIVE or COMPLETED)", raw)
	}
}

// Editable reports whether the schedule may still change. Only drafts are editable.
func (s StudyStatus) Editable() bool { return s == StatusDraft }

// EndType is how a session's recurrence terminates.
type EndType string

const (
	EndStudy       EndType = "END_STUDY"
	EndOccurrences EndType = "N_OCCURRENCES"
)

// Frequency controls how many notifications one occurrence produces.
type Frequency string

const (
	OncePerOccurrence Frequency = "once_per_occurrence"
	OncePerWindow     Frequency = "once_per_window"
)

type NotificationConfig struct {
	Frequency Frequency `json:"frequency,omitempty"`
	Reminder  bool      `json:"reminder,omitempty"`
}

type AssessmentRef struct {
	GUID       string `json:"guid"`
	Identifier string `json:"identifier,omitempty"`
	Title      string `json:"title,omitempty"`
}

// TimeWindow is one deliverable slot inside every occurrence of a session.
type TimeWindow struct {
	GUID       string    `json:"guid"`
	StartTime  Duration  `json:"startTime"`
	Expiration *Duration `json:"expiration,omitempty"`
}

// Session is one repeating bundle of assessments.
//
// Occurrences == nil means the session repeats until the end of the study.
// ClientData is carried through untouched.
type Session struct {
	GUID          string              `json:"guid"`
	Name          string              `json:"name,omitempty"`
	StartEventID  StartEventID        `json:"startEventId"`
	Interval      *Duration           `json:"interval,omitempty"`
	Delay         *Duration           `json:"delay,omitempty"`
	Occurrences   *int                `json:"occurrences,omitempty"`
	TimeWindows   []TimeWindow        `json:"timeWindows"`
	Notifications *NotificationConfig `json:"notifications,omitempty"`
	Assessments   []AssessmentRef     `json:"assessments,omitempty"`
	ClientData    json.RawMessage     `json:"clientData,omitempty"`
}

func (s Session) EndType() EndType {
	if s.Occurrences != nil {
		return EndOccurrences
	}
	return EndStudy
}

// Schedule is the ordered list of sessions of one study arm.
type Schedule struct {
	Sessions []Session `json:"sessions"`
}

// Study ties a schedule to the study-level settings that shape it.
type Study struct {
	Identifier    string       `json:"identifier"`
	Name          string       `json:"name,omitempty"`
	Status        StudyStatus  `json:"status"`
	StudyDuration *Duration    `json:"studyDuration,omitempty"`
	StartEventID  StartEventID `json:"startEventId,omitempty"`
	Schedule      Schedule     `json:"schedule"`
}

// Timeline computes the study's timeline.
func (s Study) Timeline() Result { return Build(s.Schedule, s.StudyDuration) }

// ScheduledItem is one window of one occurrence, positioned in days from the anchor event.
type ScheduledItem struct {
	SessionGUID    string       `json:"sessionGuid"`
	TimeWindowGUID string       `json:"timeWindowGuid"`
	StartEventID   StartEventID `json:"startEventId"`
	StartDay       int          `json:"startDay"`
	EndDay         int          `json:"endDay"`
	Occurrence     int          `json:"occurrence"`
}

// SessionGeneral summarizes one resolved session of a timeline.
type SessionGeneral struct {
	GUID            string       `json:"guid"`
	Label           string       `json:"label"`
	StartEventID    StartEventID `json:"startEventId"`
	EndType         EndType      `json:"endType"`
	Occurrences     int          `json:"occurrences"`
	IntervalDays    int          `json:"intervalDays,omitempty"`
	TimeWindowGUIDs []string     `json:"timeWindowGuids"`
	Notifications   int          `json:"notifications"`
	Minutes         int          `json:"minutes"`
}

// Timeline is the fully expanded, day-indexed view of a schedule.
type Timeline struct {
	Schedule           []ScheduledItem  `json:"schedule"`
	Sessions           []SessionGeneral `json:"sessions"`
	TotalNotifications int              `json:"totalNotifications"`
	TotalMinutes       int              `json:"totalMinutes"`
}

// MaxWindows is the largest number of windows any resolved session has.
func (t Timeline) MaxWindows() int {
	n := 0
	for _, s := range t.Sessions {
		if len(s.TimeWindowGUIDs) > n {
			n = len(s.TimeWindowGUIDs)
		}
	}
	return n
}

// Session looks up a resolved session by guid.
func (t Timeline) Session(guid string) (SessionGeneral, bool) {
	for _, s := range t.Sessions {
		if s.GUID == guid {
			return s, true
		}
	}
	return SessionGeneral{}, false
}
