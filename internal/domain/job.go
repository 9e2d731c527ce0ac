package domain

// JobStatus enumerates the unified job lifecycle states exposed to clients.
// The provider uses a wider vocabulary (notably both COMPLETE and COMPLETED
// for terminal success); ParseStatus folds it into this set.
type JobStatus string

const (
	StatusSubmitting JobStatus = "SUBMITTING"
	StatusInQueue    JobStatus = "IN_QUEUE"
	StatusInProgress JobStatus = "IN_PROGRESS"
	StatusComplete   JobStatus = "COMPLETE"
	StatusFailed     JobStatus = "FAILED"
)

// ParseStatus maps a raw provider status onto the local lifecycle. Unknown
// values pass through unchanged so new provider states surface as "still
// processing" rather than an error.
func ParseStatus(raw string) (JobStatus, bool) {
	switch raw {
	case "IN_QUEUE":
		return StatusInQueue, true
	case "IN_PROGRESS":
		return StatusInProgress, true
	case "COMPLETE", "COMPLETED":
		return StatusComplete, true
	case "FAILED":
		return StatusFailed, true
	default:
		return JobStatus(raw), false
	}
}

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// MediaKind enumerates the output media types a model can produce.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// Job tracks one provider submission.
type Job struct {
	RequestID string
	ModelID   string
	Status    JobStatus
	Input     map[string]any
	Result    map[string]any
}
