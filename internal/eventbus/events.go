package eventbus

// Event types published while following a study document.
const (
	StudyLoaded      = "study.loaded"
	StudyRejected    = "study.rejected"
	TimelineComputed = "timeline.computed"
	TimelineInvalid  = "timeline.invalid"
)

// StudyInfo is the payload of StudyLoaded.
type StudyInfo struct {
	Path     string
	StudyID  string
	Hash     uint64
	Sessions int
}

// Rejection is the payload of StudyRejected.
type Rejection struct {
	Path string
	Err  string
}

// TimelineInfo is the payload of TimelineComputed and TimelineInvalid.
type TimelineInfo struct {
	StudyID            string
	Hash               uint64
	Items              int
	TotalNotifications int
	TotalMinutes       int
	Invalid            []string
}
