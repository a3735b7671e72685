package interfaces

import (
	"context"
	"errors"

	"github.com/warmstack/warm/internal/models"
)

// ErrSessionNotFound signals a missing session id. It is distinct from
// provider failures so handlers can answer with a not-found status.
var ErrSessionNotFound = errors.New("session not found")

// HistoryStorage is the persistence contract for sessions and messages.
// Replaying a session through GetSessionWithMessages reconstructs the same
// event sequence the client observed live.
//
// All mutations commit atomically per call: AddMessage's content write and
// the owning session's timestamp bump both succeed or both fail, and
// DeleteSession removes the session's messages and the session record in
// one transaction.
type HistoryStorage interface {
	// CreateSession mints a session with a fresh id and both timestamps set to now.
	CreateSession(ctx context.Context, title string, mode models.ChatMode) (*models.Session, error)

	// GetSession fetches a session by id.
	GetSession(ctx context.Context, id uint64) (*models.Session, error)

	// GetSessionWithMessages fetches a session and its messages ordered by
	// creation time.
	GetSessionWithMessages(ctx context.Context, id uint64) (*models.Session, []models.Message, error)

	// ListSessions returns sessions ordered by update timestamp descending.
	ListSessions(ctx context.Context, offset, limit int) ([]models.Session, error)

	// AddMessage appends a message and bumps the owning session's update
	// timestamp as one atomic commit.
	AddMessage(ctx context.Context, sessionID uint64, role models.Role, content, sources string) (*models.Message, error)

	// RenameSession updates the session title and bumps its update timestamp.
	RenameSession(ctx context.Context, id uint64, title string) (*models.Session, error)

	// SetFileSearchMetadata records the retrieval-store reference and source
	// file name on a file_search session.
	SetFileSearchMetadata(ctx context.Context, id uint64, storeName, fileName string) error

	// DeleteSession cascades message deletion, then removes the session.
	// Deleting an absent id returns ErrSessionNotFound.
	DeleteSession(ctx context.Context, id uint64) error

	// Close releases the underlying store.
	Close() error
}
