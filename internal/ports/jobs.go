package ports

import "time"

// BatchStatus is the poll-visible progress of one background batch.
type BatchStatus struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // scoring|outreach
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Done      bool      `json:"done"`
	Halted    bool      `json:"halted"` // stopped early (credits exhausted)
	Message   string    `json:"message,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusStore holds batch progress for polling. Implementations are
// process-local and bounded; when capacity is exceeded the oldest entries
// are evicted first.
type StatusStore interface {
	Put(id string, st BatchStatus)
	Get(id string) (BatchStatus, bool)
	Evict(id string)
}
