package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

// memHistory is an in-memory HistoryStorage used across handler tests.
type memHistory struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]*models.Session
	messages map[uint64][]models.Message
}

func newMemHistory() *memHistory {
	return &memHistory{
		sessions: make(map[uint64]*models.Session),
		messages: make(map[uint64][]models.Message),
	}
}

func (m *memHistory) CreateSession(ctx context.Context, title string, mode models.ChatMode) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	session := &models.Session{ID: m.nextID, Title: title, Mode: mode, CreatedAt: now, UpdatedAt: now}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memHistory) GetSession(ctx context.Context, id uint64) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *memHistory) GetSessionWithMessages(ctx context.Context, id uint64) (*models.Session, []models.Message, error) {
	session, err := m.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append([]models.Message(nil), m.messages[id]...)
	return session, msgs, nil
}

func (m *memHistory) ListSessions(ctx context.Context, offset, limit int) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistory) AddMessage(ctx context.Context, sessionID uint64, role models.Role, content, sources string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}
	m.nextID++
	msg := models.Message{
		ID:        m.nextID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	}
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	session.UpdatedAt = msg.CreatedAt
	return &msg, nil
}

func (m *memHistory) RenameSession(ctx context.Context, id uint64, title string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}
	session.Title = title
	session.UpdatedAt = time.Now().UTC()
	copied := *session
	return &copied, nil
}

func (m *memHistory) SetFileSearchMetadata(ctx context.Context, id uint64, storeName, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return interfaces.ErrSessionNotFound
	}
	session.FileSearchStoreName = storeName
	session.FileName = fileName
	return nil
}

func (m *memHistory) DeleteSession(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return interfaces.ErrSessionNotFound
	}
	delete(m.sessions, id)
	delete(m.messages, id)
	return nil
}

func (m *memHistory) Close() error { return nil }

// fakeChat replays a scripted event sequence.
type fakeChat struct {
	events []models.StreamEvent
}

func (f *fakeChat) Stream(ctx context.Context, message string, mode models.ChatMode, model string) <-chan models.StreamEvent {
	out := make(chan models.StreamEvent)
	go func() {
		defer close(out)
		for _, ev := range f.events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// fakeFileSearch scripts the file search service surface.
type fakeFileSearch struct {
	storeName string
	indexErr  error
	events    []models.StreamEvent
	deleted   []string
}

func (f *fakeFileSearch) Index(ctx context.Context, filePath, displayName string) (string, string, error) {
	if f.indexErr != nil {
		return "", "", f.indexErr
	}
	return f.storeName, displayName, nil
}

func (f *fakeFileSearch) Query(ctx context.Context, storeName, question, model string) <-chan models.StreamEvent {
	out := make(chan models.StreamEvent)
	go func() {
		defer close(out)
		for _, ev := range f.events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *fakeFileSearch) DeleteStore(ctx context.Context, storeName string) {
	f.deleted = append(f.deleted, storeName)
}

// fakeSearch returns canned search results.
type fakeSearch struct {
	people    *interfaces.PeopleSearchResult
	companies *interfaces.CompanySearchResult
}

func (f *fakeSearch) SearchPeople(ctx context.Context, query string, numResults int) *interfaces.PeopleSearchResult {
	return f.people
}

func (f *fakeSearch) SearchCompanies(ctx context.Context, query string, numResults int) *interfaces.CompanySearchResult {
	return f.companies
}
