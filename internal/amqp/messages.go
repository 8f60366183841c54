package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordAction is what happened to a maintenance record.
type RecordAction string

const (
	RecordCreated RecordAction = "created"
	RecordUpdated RecordAction = "updated"
	RecordDeleted RecordAction = "deleted"
)

// RecordEvent is a lightweight notification that a car's journal changed.
// It carries IDs only; consumers load the current state from the database.
type RecordEvent struct {
	Action    RecordAction `json:"action"`
	RecordID  string       `json:"recordId"`
	CarID     string       `json:"carId"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewRecordEvent(action RecordAction, recordID, carID string) *RecordEvent {
	return &RecordEvent{
		Action:    action,
		RecordID:  recordID,
		CarID:     carID,
		Timestamp: time.Now(),
	}
}

func (m *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordEventFromJSON decodes an event and rejects ones without a car.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var msg RecordEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.CarID == "" {
		return nil, fmt.Errorf("record event without car id")
	}
	switch msg.Action {
	case RecordCreated, RecordUpdated, RecordDeleted:
	default:
		return nil, fmt.Errorf("unknown record action %q", msg.Action)
	}
	return &msg, nil
}
