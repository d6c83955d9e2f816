package amqp

import (
	"encoding/json"
	"time"
)

// Op is the sync operation kind carried by a message.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// SyncMessage tells the worker to mirror one row to Google Sheets.
// It carries only the row ID and operation; the worker fetches the full
// record from the local database for upserts.
type SyncMessage struct {
	Op        Op        `json:"op"`
	RowID     string    `json:"row_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncMessage(op Op, rowID string) *SyncMessage {
	return &SyncMessage{
		Op:        op,
		RowID:     rowID,
		Timestamp: time.Now(),
	}
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
