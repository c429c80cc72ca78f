package coordinator

import (
	"time"

	"discover-server/models"
)

// Snapshot is what subscribers see after every change of a session.
type Snapshot struct {
	Version     uint64             `json:"version"`
	SessionID   string             `json:"session_id"`
	Filters     models.FilterState `json:"filters"`
	View        models.ViewModel   `json:"view"`
	RawCount    int                `json:"raw_count"`
	IsLoading   bool               `json:"is_loading"`
	LastError   string             `json:"last_error,omitempty"`
	Phase       Phase              `json:"phase"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}
