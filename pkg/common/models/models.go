package models

import "time"

// Event is the envelope written to every Kafka topic.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // import.requested, import.started, import.finished
	Source    string                 `json:"source"`
	Key       string                 `json:"key,omitempty"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventImportRequested = "import.requested"
	EventImportStarted   = "import.started"
	EventImportFinished  = "import.finished"
)

// ImportRequest asks for one legacy import for a tenant. Either ConfigID or
// BaseURL/APIKey identify the source.
type ImportRequest struct {
	TenantID    string `json:"tenant_id"`
	BaseURL     string `json:"base_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	ConfigID    string `json:"config_id,omitempty"`
	InitiatedBy string `json:"initiated_by,omitempty"`
}

// ToEventData flattens the request for an event payload. The API key is
// never put on the bus; queued requests must reference a saved config.
func (r ImportRequest) ToEventData() map[string]interface{} {
	return map[string]interface{}{
		"tenant_id":    r.TenantID,
		"config_id":    r.ConfigID,
		"initiated_by": r.InitiatedBy,
	}
}

// ImportRequestFromEvent reads the fields written by ToEventData.
func ImportRequestFromEvent(event Event) ImportRequest {
	str := func(key string) string {
		if v, ok := event.Data[key].(string); ok {
			return v
		}
		return ""
	}
	return ImportRequest{
		TenantID:    str("tenant_id"),
		ConfigID:    str("config_id"),
		InitiatedBy: str("initiated_by"),
	}
}
