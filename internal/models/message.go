package models

import "time"

// Direction is the direction of a message relative to the tenant's profile.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Message is one entry in a room's timeline. Historically fetched messages
// carry a backend-assigned ID; live messages carry a locally synthesized
// ksuid until (if ever) history confirms them.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
	Read      bool      `json:"read"`
}
