package board

import (
	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
)

// State is the whole view model of the console.
type State struct {
	Name    string
	Story   string
	History []business.Business
	Loading bool
	// ActiveTag kosong berarti tidak ada filter
	ActiveTag string
	Notices   []Notice

	editingID business.ID
	editing   bool
}

// Editing returns the record being edited, if any.
func (s State) Editing() (business.ID, bool) {
	return s.editingID, s.editing
}

// Visible is the history after the active tag filter.
func (s State) Visible() []business.Business {
	return business.Filter(s.History, s.ActiveTag)
}

// Find looks a record up in the current history.
func (s State) Find(id business.ID) (business.Business, bool) {
	for _, b := range s.History {
		if b.ID == id {
			return b, true
		}
	}
	return business.Business{}, false
}

// Msg is an event applied to State by Reduce.
type Msg interface{ isMsg() }

type (
	// FormChanged sets the form fields.
	FormChanged struct{ Name, Story string }
	// EditStarted binds the form to an existing record.
	EditStarted struct{ Record business.Business }
	// EditCancelled returns to create mode with an empty form.
	EditCancelled struct{}
	// TagToggled selects tag, or clears the filter when tag is already active.
	TagToggled struct{ Tag string }
	// TagCleared removes the filter.
	TagCleared struct{}

	// LoadSucceeded carries the list in server order.
	LoadSucceeded struct{ Records []business.Business }
	LoadFailed    struct{ Err error }

	SubmitStarted   struct{}
	SubmitSucceeded struct{ Updated bool }
	SubmitFailed    struct{ Err error }

	DeleteSucceeded struct{ ID business.ID }
	DeleteFailed    struct {
		ID  business.ID
		Err error
	}

	// NoticesDismissed removes the notices with the given IDs.
	NoticesDismissed struct{ IDs []NoticeID }
)

func (FormChanged) isMsg()      {}
func (EditStarted) isMsg()      {}
func (EditCancelled) isMsg()    {}
func (TagToggled) isMsg()       {}
func (TagCleared) isMsg()       {}
func (LoadSucceeded) isMsg()    {}
func (LoadFailed) isMsg()       {}
func (SubmitStarted) isMsg()    {}
func (SubmitSucceeded) isMsg()  {}
func (SubmitFailed) isMsg()     {}
func (DeleteSucceeded) isMsg()  {}
func (DeleteFailed) isMsg()     {}
func (NoticesDismissed) isMsg() {}

// Reduce applies m to s and returns the new state. It never mutates s.
// Failure messages leave the state exactly as it was.
func Reduce(s State, m Msg) State {
	switch m := m.(type) {
	case FormChanged:
		s.Name, s.Story = m.Name, m.Story
	case EditStarted:
		s.editingID, s.editing = m.Record.ID, true
		s.Name, s.Story = m.Record.Name, m.Record.Story
	case EditCancelled:
		s = clearForm(s)
	case TagToggled:
		if s.ActiveTag == m.Tag {
			s.ActiveTag = ""
		} else {
			s.ActiveTag = m.Tag
		}
	case TagCleared:
		s.ActiveTag = ""
	case LoadSucceeded:
		s.History = reversed(m.Records)
	case SubmitStarted:
		s.Loading = true
	case SubmitSucceeded:
		s = clearForm(s)
		s.Loading = false
	case SubmitFailed:
		s.Loading = false
	case NoticesDismissed:
		s.Notices = withoutNotices(s.Notices, m.IDs)
	case LoadFailed, DeleteSucceeded, DeleteFailed:
		// list only changes through a refetch
	}
	return s
}

func clearForm(s State) State {
	s.editingID, s.editing = 0, false
	s.Name, s.Story = "", ""
	return s
}

// reversed turns the ascending-id server order into newest first.
func reversed(in []business.Business) []business.Business {
	out := make([]business.Business, len(in))
	for i, b := range in {
		out[len(in)-1-i] = b
	}
	return out
}

func withoutNotices(notices []Notice, ids []NoticeID) []Notice {
	if len(ids) == 0 {
		return notices
	}
	drop := make(map[NoticeID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if _, ok := drop[n.ID]; !ok {
			out = append(out, n)
		}
	}
	return out
}
