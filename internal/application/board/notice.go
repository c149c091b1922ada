package board

import (
	"time"

	"github.com/google/uuid"
)

// NoticeID identifies a notice until it is dismissed.
type NoticeID = uuid.UUID

// Level enum
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient user-visible notification.
type Notice struct {
	ID      NoticeID  `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const (
	MsgLoadFailed    = "Failed to load records"
	MsgCreated       = "Analysis complete!"
	MsgUpdated       = "Record updated"
	MsgSubmitFailed  = "Request failed."
	MsgDeleted       = "Deleted"
	MsgDeleteFailed  = "Delete failed"
	MsgSubmitRunning = "Running AI analysis..."
)

// noticeFor maps the messages that notify the user to level and text.
func noticeFor(m Msg) (Level, string, bool) {
	switch m := m.(type) {
	case LoadFailed:
		return LevelError, MsgLoadFailed, true
	case SubmitSucceeded:
		if m.Updated {
			return LevelSuccess, MsgUpdated, true
		}
		return LevelSuccess, MsgCreated, true
	case SubmitFailed:
		return LevelError, MsgSubmitFailed, true
	case DeleteSucceeded:
		return LevelSuccess, MsgDeleted, true
	case DeleteFailed:
		return LevelError, MsgDeleteFailed, true
	}
	return "", "", false
}
