package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeStatusChanged = "claim.status_changed"

// NewStatusChanged records a workflow transition for downstream
// notification dispatch. Every transition carries its actor and timestamp
// so the audit collaborator can attribute it.
func NewStatusChanged(recordType string, recordID, tenantID, ownerID, actorID int64, from, to string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeStatusChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"record_type": recordType,
			"record_id":   recordID,
			"tenant_id":   tenantID,
			"owner_id":    ownerID,
			"actor_id":    actorID,
			"from":        from,
			"to":          to,
		},
	}
}
