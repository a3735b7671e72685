package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

// HistoryStorage implements the HistoryStorage interface for Badger.
// Message appends and cascade deletes run inside a single badger
// transaction so the ledger never holds a half-written turn.
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HistoryStorage {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *HistoryStorage) CreateSession(ctx context.Context, title string, mode models.ChatMode) (*models.Session, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown chat mode: %s", mode)
	}

	now := time.Now().UTC()
	session := &models.Session{
		Title:     title,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Store().Insert(badgerhold.NextSequence(), session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Debug().Int64("session_id", int64(session.ID)).Str("mode", string(mode)).Msg("Session created")
	return session, nil
}

func (s *HistoryStorage) GetSession(ctx context.Context, id uint64) (*models.Session, error) {
	var session models.Session
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (s *HistoryStorage) GetSessionWithMessages(ctx context.Context, id uint64) (*models.Session, []models.Message, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var messages []models.Message
	err = s.db.Store().Find(&messages, badgerhold.Where("SessionID").Eq(id).Index("SessionID"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session messages: %w", err)
	}

	// Total order: creation time, message id as tiebreak
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return session, messages, nil
}

func (s *HistoryStorage) ListSessions(ctx context.Context, offset, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var sessions []models.Session
	query := badgerhold.Where(badgerhold.Key).Ge(uint64(0)).
		SortBy("UpdatedAt").Reverse().
		Skip(offset).Limit(limit)
	if err := s.db.Store().Find(&sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *HistoryStorage) AddMessage(ctx context.Context, sessionID uint64, role models.Role, content, sources string) (*models.Message, error) {
	message := &models.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		var session models.Session
		if err := s.db.Store().TxGet(tx, sessionID, &session); err != nil {
			if err == badgerhold.ErrNotFound {
				return interfaces.ErrSessionNotFound
			}
			return err
		}

		if err := s.db.Store().TxInsert(tx, badgerhold.NextSequence(), message); err != nil {
			return err
		}

		// The owning session reflects the newest message's timestamp
		session.UpdatedAt = message.CreatedAt
		return s.db.Store().TxUpdate(tx, sessionID, session)
	})
	if err != nil {
		if err == interfaces.ErrSessionNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return message, nil
}

func (s *HistoryStorage) RenameSession(ctx context.Context, id uint64, title string) (*models.Session, error) {
	var session models.Session
	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		if err := s.db.Store().TxGet(tx, id, &session); err != nil {
			if err == badgerhold.ErrNotFound {
				return interfaces.ErrSessionNotFound
			}
			return err
		}
		session.Title = title
		session.UpdatedAt = time.Now().UTC()
		return s.db.Store().TxUpdate(tx, id, session)
	})
	if err != nil {
		if err == interfaces.ErrSessionNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to rename session: %w", err)
	}
	return &session, nil
}

func (s *HistoryStorage) SetFileSearchMetadata(ctx context.Context, id uint64, storeName, fileName string) error {
	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		var session models.Session
		if err := s.db.Store().TxGet(tx, id, &session); err != nil {
			if err == badgerhold.ErrNotFound {
				return interfaces.ErrSessionNotFound
			}
			return err
		}
		session.FileSearchStoreName = storeName
		session.FileName = fileName
		session.UpdatedAt = time.Now().UTC()
		return s.db.Store().TxUpdate(tx, id, session)
	})
	if err != nil {
		if err == interfaces.ErrSessionNotFound {
			return err
		}
		return fmt.Errorf("failed to set file search metadata: %w", err)
	}
	return nil
}

func (s *HistoryStorage) DeleteSession(ctx context.Context, id uint64) error {
	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		var session models.Session
		if err := s.db.Store().TxGet(tx, id, &session); err != nil {
			if err == badgerhold.ErrNotFound {
				return interfaces.ErrSessionNotFound
			}
			return err
		}

		// Cascade: owned messages go first, then the session record
		if err := s.db.Store().TxDeleteMatching(tx, &models.Message{},
			badgerhold.Where("SessionID").Eq(id).Index("SessionID")); err != nil {
			return err
		}
		return s.db.Store().TxDelete(tx, id, models.Session{})
	})
	if err != nil {
		if err == interfaces.ErrSessionNotFound {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Debug().Int64("session_id", int64(id)).Msg("Session deleted")
	return nil
}

// Close closes the underlying database connection
func (s *HistoryStorage) Close() error {
	return s.db.Close()
}
