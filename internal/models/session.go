package models

import "time"

// ChatMode discriminates how a session's assistant turns are grounded.
// The mode is fixed at session creation and determines which optional
// fields on Session are populated.
type ChatMode string

const (
	// ChatModeStandard is a plain model completion with no grounding tools
	ChatModeStandard ChatMode = "standard"
	// ChatModeWebSearch grounds completions with Google Search
	ChatModeWebSearch ChatMode = "web_search"
	// ChatModeFileSearch grounds completions against an uploaded document store
	ChatModeFileSearch ChatMode = "file_search"
)

// Valid reports whether the mode is one of the known chat modes.
func (m ChatMode) Valid() bool {
	switch m {
	case ChatModeStandard, ChatModeWebSearch, ChatModeFileSearch:
		return true
	}
	return false
}

// Role identifies the author of a message. Closed set: user, assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is a conversation container. FileSearchStoreName and FileName are
// populated only for file_search sessions.
type Session struct {
	ID                  uint64    `badgerhold:"key" json:"id"`
	Title               string    `json:"title"`
	Mode                ChatMode  `json:"mode"`
	FileSearchStoreName string    `json:"file_search_store_name,omitempty"`
	FileName            string    `json:"file_name,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Message is one turn-unit owned by exactly one session. For assistant
// messages Content is the concatenation of all streamed token fragments and
// Sources carries the serialized citation or card payload, if any.
type Message struct {
	ID        uint64    `badgerhold:"key" json:"id"`
	SessionID uint64    `badgerholdIndex:"SessionID" json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   string    `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TitleMaxLen is the display-title budget for derived session titles.
const TitleMaxLen = 30

// DeriveTitle truncates a user message into a session title, appending an
// ellipsis when the message exceeds TitleMaxLen characters.
func DeriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) > TitleMaxLen {
		return string(runes[:TitleMaxLen]) + "..."
	}
	return message
}
