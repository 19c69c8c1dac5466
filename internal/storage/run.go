package storage

import (
	"fmt"
	"time"

	"studyplan/internal/schedule"
)

// HashString formats a document content hash the way it is stored.
func HashString(h uint64) string { return fmt.Sprintf("%016x", h) }

// NewRun summarizes one timeline computation of st.
func NewRun(st schedule.Study, hash uint64, res schedule.Result, source string, took time.Duration) RunRecord {
	r := RunRecord{
		At:                 time.Now(),
		StudyID:            st.Identifier,
		Source:             source,
		Hash:               HashString(hash),
		Sessions:           len(st.Schedule.Sessions),
		Items:              len(res.Timeline.Schedule),
		Invalid:            len(res.Errors),
		TotalNotifications: res.Timeline.TotalNotifications,
		TotalMinutes:       res.Timeline.TotalMinutes,
		TookMS:             took.Milliseconds(),
	}
	if len(res.Errors) > 0 {
		r.Errors = make(map[string]string, len(res.Errors))
		for k, err := range res.Errors {
			r.Errors[k] = err.Error()
		}
	}
	return r
}
