package messaging

import (
	"time"

	"github.com/google/uuid"
)

const ServiceName = "care-record-service"

// Event routing keys as constants
const (
	// Resident events
	EventResidentCreated     = "resident.created"
	EventResidentUpdated     = "resident.updated"
	EventResidentDeactivated = "resident.deactivated"

	// Daily record events. A bulk append publishes only the bulk event,
	// never one saved event per resident.
	EventDailyRecordSaved     = "daily_record.saved"
	EventDailyRecordBulkSaved = "daily_record.bulk_saved"

	// Demo maintenance
	EventDemoReset = "demo.reset"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
	Mode        string    `json:"mode"`
}

type ResidentEvent struct {
	BaseEvent
	Data ResidentEventData `json:"data"`
}

type ResidentEventData struct {
	ResidentID string    `json:"resident_id"`
	Name       string    `json:"name"`
	RoomNumber string    `json:"room_number"`
	CareLevel  int       `json:"care_level"`
	IsActive   bool      `json:"is_active"`
	ChangedAt  time.Time `json:"changed_at"`
}

// DailyRecordSavedEvent is emitted once per successful write to a daily record.
type DailyRecordSavedEvent struct {
	BaseEvent
	Data DailyRecordSavedData `json:"data"`
}

type DailyRecordSavedData struct {
	ResidentID string    `json:"resident_id"`
	Date       string    `json:"date"`
	Action     string    `json:"action"` // append, remove, replace, save
	Kinds      []string  `json:"kinds"`
	EntryID    string    `json:"entry_id,omitempty"`
	RecordedBy string    `json:"recorded_by,omitempty"`
	SavedAt    time.Time `json:"saved_at"`
}

type DailyRecordBulkSavedEvent struct {
	BaseEvent
	Data DailyRecordBulkSavedData `json:"data"`
}

type DailyRecordBulkSavedData struct {
	Date        string    `json:"date,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	ResidentIDs []string  `json:"resident_ids"`
	FailedIDs   []string  `json:"failed_ids,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

type DemoResetEvent struct {
	BaseEvent
	Data DemoResetData `json:"data"`
}

type DemoResetData struct {
	Residents int       `json:"residents"`
	Days      int       `json:"days"`
	ResetAt   time.Time `json:"reset_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType, mode string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
		Mode:        mode,
	}
}
