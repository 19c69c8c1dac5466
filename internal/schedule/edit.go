package schedule

import "fmt"

// Command is one edit of a schedule. Applying a command yields a new Schedule;
// the original value is never modified.
type Command interface {
	apply(Schedule) (Schedule, error)
}

// Apply runs cmds in order and returns the edited copy.
func (s Schedule) Apply(cmds ...Command) (Schedule, error) {
	out := s.clone()
	for _, c := range cmds {
		next, err := c.apply(out)
		if err != nil {
			return s, err
		}
		out = next
	}
	return out, nil
}

// Index returns the position of the session with guid, or -1.
func (s Schedule) Index(guid string) int {
	for i := range s.Sessions {
		if s.Sessions[i].GUID == guid {
			return i
		}
	}
	return -1
}

func (s Schedule) clone() Schedule {
	return Schedule{Sessions: append([]Session(nil), s.Sessions...)}
}

func (s Schedule) update(guid string, fn func(*Session)) (Schedule, error) {
	i := s.Index(guid)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrSessionNotFound, guid)
	}
	out := s.clone()
	fn(&out.Sessions[i])
	return out, nil
}

func cloneDuration(d *Duration) *Duration {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

// SetAnchor moves a session to a different start event.
type SetAnchor struct {
	SessionGUID  string
	StartEventID StartEventID
}

func (c SetAnchor) apply(s Schedule) (Schedule, error) {
	return s.update(c.SessionGUID, func(ss *Session) { ss.StartEventID = c.StartEventID })
}

// SetEndCondition switches between N occurrences and END_STUDY (Occurrences == nil).
type SetEndCondition struct {
	SessionGUID string
	Occurrences *int
}

func (c SetEndCondition) apply(s Schedule) (Schedule, error) {
	var occ *int
	if c.Occurrences != nil {
		n := *c.Occurrences
		occ = &n
	}
	return s.update(c.SessionGUID, func(ss *Session) { ss.Occurrences = occ })
}

type SetInterval struct {
	SessionGUID string
	Interval    *Duration
}

func (c SetInterval) apply(s Schedule) (Schedule, error) {
	d := cloneDuration(c.Interval)
	return s.update(c.SessionGUID, func(ss *Session) { ss.Interval = d })
}

type SetDelay struct {
	SessionGUID string
	Delay       *Duration
}

func (c SetDelay) apply(s Schedule) (Schedule, error) {
	d := cloneDuration(c.Delay)
	return s.update(c.SessionGUID, func(ss *Session) { ss.Delay = d })
}

// AddSession appends a session. The guid must be new to the schedule.
type AddSession struct {
	Session Session
}

func (c AddSession) apply(s Schedule) (Schedule, error) {
	if c.Session.GUID == "" {
		return s, configError("", "guid", "required")
	}
	if s.Index(c.Session.GUID) >= 0 {
		return s, configError(c.Session.GUID, "guid", "duplicate session guid")
	}
	out := s.clone()
	out.Sessions = append(out.Sessions, c.Session)
	return out, nil
}

type RemoveSession struct {
	SessionGUID string
}

func (c RemoveSession) apply(s Schedule) (Schedule, error) {
	i := s.Index(c.SessionGUID)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrSessionNotFound, c.SessionGUID)
	}
	out := Schedule{Sessions: make([]Session, 0, len(s.Sessions)-1)}
	out.Sessions = append(out.Sessions, s.Sessions[:i]...)
	out.Sessions = append(out.Sessions, s.Sessions[i+1:]...)
	return out, nil
}
