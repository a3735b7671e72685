package models

// EventType discriminates the variants of a StreamEvent.
type EventType string

const (
	// EventToken carries one text fragment, in provider delivery order
	EventToken EventType = "token"
	// EventCitation carries web-search source attributions, at most once per stream
	EventCitation EventType = "citation"
	// EventFileCitation carries file-search citation spans as a JSON-encoded
	// array in Content, at most once per stream
	EventFileCitation EventType = "file_citation"
	// EventSessionCreated announces a freshly minted session id and derived
	// title; emitted only when a turn begins without a pre-existing session
	EventSessionCreated EventType = "session_created"
	// EventDone terminates a successful stream
	EventDone EventType = "done"
	// EventError terminates a failed stream with a human-safe message
	EventError EventType = "error"
)

// SourceCitation is one web-search source attribution.
type SourceCitation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FileCitation is one file-search citation span.
type FileCitation struct {
	SourceTitle string `json:"source_title"`
	TextSegment string `json:"text_segment"`
	StartIndex  int32  `json:"start_index"`
	EndIndex    int32  `json:"end_index"`
}

// StreamEvent is one transient protocol unit of a chat/file-search stream.
// Content and Sources serialize as explicit nulls when unset so the wire
// shape stays stable for every event type.
type StreamEvent struct {
	Type      EventType        `json:"type"`
	Content   *string          `json:"content"`
	Sources   []SourceCitation `json:"sources"`
	SessionID uint64           `json:"session_id,omitempty"`
	Title     string           `json:"title,omitempty"`
}

// TokenEvent wraps one non-empty text fragment.
func TokenEvent(text string) StreamEvent {
	return StreamEvent{Type: EventToken, Content: &text}
}

// CitationEvent wraps the full ordered citation list for a web-search turn.
func CitationEvent(sources []SourceCitation) StreamEvent {
	return StreamEvent{Type: EventCitation, Sources: sources}
}

// FileCitationEvent wraps the JSON-encoded file citation list for a
// file-search turn.
func FileCitationEvent(citationsJSON string) StreamEvent {
	return StreamEvent{Type: EventFileCitation, Content: &citationsJSON}
}

// SessionCreatedEvent announces a new session at the head of a stream.
func SessionCreatedEvent(id uint64, title string) StreamEvent {
	return StreamEvent{Type: EventSessionCreated, SessionID: id, Title: title}
}

// DoneEvent terminates a successful stream.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// ErrorEvent terminates a failed stream with a user-safe message.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Content: &message}
}
