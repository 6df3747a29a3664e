package domain

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// RoleSealed marks an encrypted envelope turn as stored at rest.
	// It never appears in a decrypted transcript.
	RoleSealed Role = "sealed"
)

// Turn is a single utterance in a session transcript.
type Turn struct {
	// Seq is the logical timestamp of the turn, starting at 1 and strictly increasing per session.
	Seq int `json:"seq"`

	Role Role   `json:"role"`
	Text string `json:"text"`

	// At is the wall-clock time the turn was appended. It is kept for auditing only.
	At time.Time `json:"at"`
}
