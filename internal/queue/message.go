package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MessageVersion is the payload version written by this build. Workers accept
// it and anything older; version 0 is read as 1.
const MessageVersion = 1

// ErrUnsupportedVersion marks a payload written by a newer producer.
var ErrUnsupportedVersion = errors.New("unsupported message version")

// Message asks a worker to analyse one document.
type Message struct {
	DocumentID string `json:"documentId"`
	Force      bool   `json:"force,omitempty"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage stamps a job for documentID with the current payload version.
func NewMessage(documentID, requestID string, force bool, now time.Time) Message {
	return Message{
		DocumentID: documentID,
		Force:      force,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// QueueLatency is how long the message waited since EnqueuedAt. It is zero
// when the timestamp is absent or unparsable.
func (m Message) QueueLatency(now time.Time) time.Duration {
	at, err := time.Parse(time.RFC3339, m.EnqueuedAt)
	if err != nil || now.Before(at) {
		return 0
	}
	return now.Sub(at)
}

func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a payload, trimming ids and rejecting versions newer
// than MessageVersion.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > MessageVersion {
		return Message{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, msg.Version)
	}
	if msg.Version == 0 {
		msg.Version = 1
	}
	msg.DocumentID = strings.TrimSpace(msg.DocumentID)
	msg.RequestID = strings.TrimSpace(msg.RequestID)
	return msg, nil
}
