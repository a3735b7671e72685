package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/common"
	"github.com/warmstack/warm/internal/handlers"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/services/exa"
	"github.com/warmstack/warm/internal/services/filesearch"
	"github.com/warmstack/warm/internal/services/llm"
	badgerstore "github.com/warmstack/warm/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB      *badgerstore.BadgerDB
	History interfaces.HistoryStorage

	// Provider services
	ChatService       interfaces.ChatService
	FileSearchService interfaces.FileSearchService
	SearchService     interfaces.SearchService

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	ChatHandler       *handlers.ChatHandler
	FileSearchHandler *handlers.FileSearchHandler
	SearchHandler     *handlers.SearchHandler
	HistoryHandler    *handlers.HistoryHandler
}

// New constructs the full application graph from configuration. It is the
// single place services and handlers are wired together.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.DB = db
	a.History = badgerstore.NewHistoryStorage(db, logger)

	chatService, err := llm.NewGeminiService(config, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	a.ChatService = chatService

	fileSearchService, err := filesearch.NewService(config, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize file search service: %w", err)
	}
	a.FileSearchService = fileSearchService

	a.SearchService = exa.NewService(config, logger)

	a.APIHandler = handlers.NewAPIHandler()
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.History, logger)
	a.FileSearchHandler = handlers.NewFileSearchHandler(a.FileSearchService, a.History, logger)
	a.SearchHandler = handlers.NewSearchHandler(a.SearchService, a.History, logger)
	a.HistoryHandler = handlers.NewHistoryHandler(a.History, a.FileSearchService, logger)

	logger.Info().Msg("Application initialized")

	return a, nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close history storage")
		}
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
