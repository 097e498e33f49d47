package chatstate

import (
	"sync"

	"github.com/omniwire/chat-sync/internal/models"
)

// HistoryState tracks the per-room historical fetch. Failed is distinct from
// Unfetched so consumers can render a retriable error instead of an empty
// room.
type HistoryState string

const (
	HistoryUnfetched HistoryState = "unfetched"
	HistoryLoading   HistoryState = "loading"
	HistoryReady     HistoryState = "ready"
	HistoryFailed    HistoryState = "failed"
)

type roomLog struct {
	state   HistoryState
	history []models.Message
	live    []models.Message
}

// MessageStore holds, per room, the historical page and the live append log.
// Entries are created lazily: by the first historical fetch or the first live
// message, whichever comes first. The merged timeline is derived on read.
type MessageStore struct {
	mu   sync.RWMutex
	logs map[string]*roomLog
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		logs: make(map[string]*roomLog),
	}
}

func (s *MessageStore) log(roomID string) *roomLog {
	l, ok := s.logs[roomID]
	if !ok {
		l = &roomLog{state: HistoryUnfetched}
		s.logs[roomID] = l
	}
	return l
}

// BeginHistoryFetch transitions the room to Loading and reports whether the
// caller owns the fetch. It returns false while another fetch is in flight or
// after one already succeeded; a failed room may be retried.
func (s *MessageStore) BeginHistoryFetch(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.log(roomID)
	if l.state == HistoryLoading || l.state == HistoryReady {
		return false
	}
	l.state = HistoryLoading
	return true
}

// SetHistory records the resolved historical page for the room.
func (s *MessageStore) SetHistory(roomID string, messages []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.log(roomID)
	l.history = make([]models.Message, len(messages))
	copy(l.history, messages)
	l.state = HistoryReady
}

// SetHistoryFailed marks the fetch as failed. Live messages accumulated so
// far are kept.
func (s *MessageStore) SetHistoryFailed(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log(roomID).state = HistoryFailed
}

// AppendLive appends a live message to the room's log, whether or not the
// room is currently open.
func (s *MessageStore) AppendLive(roomID string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.log(roomID)
	l.live = append(l.live, msg)
}

// Timeline returns the merged, deduplicated timeline for the room together
// with its history state. The merge is recomputed on every read.
func (s *MessageStore) Timeline(roomID string) ([]models.Message, HistoryState) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.logs[roomID]
	if !ok {
		return nil, HistoryUnfetched
	}
	return MergeTimeline(l.history, l.live), l.state
}

// HistoryStatus returns the room's fetch state without computing the merge.
func (s *MessageStore) HistoryStatus(roomID string) HistoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.logs[roomID]
	if !ok {
		return HistoryUnfetched
	}
	return l.state
}
