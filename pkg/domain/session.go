package domain

import "time"

// Session is the persisted form of a stepping run: the live snapshot plus
// the undo history, oldest first.
type Session struct {
	ID        string     `json:"id"`
	Config    Config     `json:"config"`
	Current   Snapshot   `json:"current"`
	History   []Snapshot `json:"history,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Sealed holds the encrypted session when an encryption middleware
	// wrote it. The other fields are then left empty.
	Sealed string `json:"sealed,omitempty"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Current = s.Current.Clone()
	if s.History != nil {
		out.History = make([]Snapshot, len(s.History))
		for i, h := range s.History {
			out.History[i] = h.Clone()
		}
	}
	return &out
}
