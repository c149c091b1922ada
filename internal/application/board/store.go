package board

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/bizdata-console/internal/application"
)

// Store holds the single State. Dispatch is serialized, so messages are
// applied one at a time in the order they arrive.
type Store struct {
	mu    sync.Mutex
	state State
	clock application.Clock
}

func NewStore(clock application.Clock) *Store {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Store{clock: clock}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies m and returns the resulting state.
func (s *Store) Dispatch(m Msg) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(m)
	return s.state
}

// beginSubmit takes the form fields and marks a submit in flight. While
// another submit runs the state is left as is and ErrBusy is returned.
func (s *Store) beginSubmit(name, story string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Loading {
		return s.state, ErrBusy
	}
	s.apply(FormChanged{Name: name, Story: story})
	if strings.TrimSpace(name) == "" || strings.TrimSpace(story) == "" {
		return s.state, ErrInvalidDraft
	}
	s.apply(SubmitStarted{})
	return s.state, nil
}

// TakeNotices returns the pending notices and dismisses them.
func (s *Store) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.state.Notices
	if len(pending) == 0 {
		return nil
	}
	ids := make([]NoticeID, len(pending))
	for i, n := range pending {
		ids[i] = n.ID
	}
	s.apply(NoticesDismissed{IDs: ids})
	return pending
}

func (s *Store) apply(m Msg) {
	next := Reduce(s.state, m)
	if level, text, ok := noticeFor(m); ok {
		notices := make([]Notice, len(next.Notices), len(next.Notices)+1)
		copy(notices, next.Notices)
		next.Notices = append(notices, Notice{
			ID:      uuid.New(),
			Level:   level,
			Message: text,
			At:      s.clock.Now(),
		})
	}
	s.state = next
}
