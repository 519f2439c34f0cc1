package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SnapshotPersistedMessage announces that a job snapshot reached storage.
// It carries only the slot coordinates; consumers read the slot themselves.
type SnapshotPersistedMessage struct {
	Key       string    `json:"key"`
	Revision  uint64    `json:"revision"`
	Jobs      int       `json:"jobs"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotPersistedMessage creates a message stamped with the current time
func NewSnapshotPersistedMessage(key string, revision uint64, jobs int) *SnapshotPersistedMessage {
	return &SnapshotPersistedMessage{
		Key:       key,
		Revision:  revision,
		Jobs:      jobs,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotPersistedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotPersistedMessageFromJSON decodes and checks a message body
func SnapshotPersistedMessageFromJSON(data []byte) (*SnapshotPersistedMessage, error) {
	var msg SnapshotPersistedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("message without slot key")
	}
	if msg.Jobs < 0 {
		return nil, fmt.Errorf("negative job count %d", msg.Jobs)
	}
	return &msg, nil
}
