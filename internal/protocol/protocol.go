// Package protocol defines the wire contract between the simulation core and
// its external collaborators (placement clients and read-only observers).
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello    = "HELLO"
	TypeWelcome  = "WELCOME"
	TypePlace    = "PLACE"
	TypeCancel   = "CANCEL"
	TypeSetSpeed = "SET_SPEED"
	TypeResult   = "RESULT"
	TypeSnapshot = "SNAPSHOT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
