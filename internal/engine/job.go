package engine

// Canonical job statuses
const (
	StatusBlue   = "blue"   // last build passed
	StatusYellow = "yellow" // build in progress
	StatusRed    = "red"    // failed, errored or unknown
)

// Job is the canonical view of a remote CI job
type Job struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Building    bool    `json:"building"`
	LastBuildID *string `json:"lastBuildId,omitempty"`
}

// HasBuilt reports whether the job has at least one build
func (j Job) HasBuilt() bool {
	return j.LastBuildID != nil
}
