package runtime

import "github.com/aretw0/flowstep/pkg/domain"

// HistoryStack is a LIFO of snapshots. Entries are deep copies on the way in
// and on the way out, so live state and history never alias.
type HistoryStack struct {
	entries []domain.Snapshot
	limit   int
}

// NewHistoryStack rebuilds a stack from persisted entries, oldest first.
func NewHistoryStack(limit int, entries ...domain.Snapshot) *HistoryStack {
	h := &HistoryStack{limit: limit}
	for _, e := range entries {
		h.Push(e)
	}
	return h
}

// Push records a copy of snap. When a limit is set the oldest entry is
// dropped to make room.
func (h *HistoryStack) Push(snap domain.Snapshot) {
	h.entries = append(h.entries, snap.Clone())
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append(h.entries[:0:0], h.entries[drop:]...)
	}
}

// Pop removes and returns the most recent snapshot.
func (h *HistoryStack) Pop() (domain.Snapshot, bool) {
	if len(h.entries) == 0 {
		return domain.Snapshot{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = domain.Snapshot{}
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

// Peek returns a copy of the most recent snapshot without removing it.
func (h *HistoryStack) Peek() (domain.Snapshot, bool) {
	if len(h.entries) == 0 {
		return domain.Snapshot{}, false
	}
	return h.entries[len(h.entries)-1].Clone(), true
}

func (h *HistoryStack) IsEmpty() bool { return len(h.entries) == 0 }

func (h *HistoryStack) Len() int { return len(h.entries) }

// Entries returns copies of every snapshot, oldest first.
func (h *HistoryStack) Entries() []domain.Snapshot {
	out := make([]domain.Snapshot, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Clone()
	}
	return out
}
