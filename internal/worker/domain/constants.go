package domain

// Event types recorded on the activity timeline
const (
	EventJobCreated     = "job.created"
	EventJobUpdated     = "job.updated"
	EventStatusChanged  = "job.status_changed"
	EventInterviewAdded = "job.interview_added"
	EventJobDeleted     = "job.deleted"
)

var knownEventTypes = map[string]struct{}{
	EventJobCreated:     {},
	EventJobUpdated:     {},
	EventStatusChanged:  {},
	EventInterviewAdded: {},
	EventJobDeleted:     {},
}

// IsKnownEventType reports whether t is one of the recorded event types
func IsKnownEventType(t string) bool {
	_, ok := knownEventTypes[t]
	return ok
}
