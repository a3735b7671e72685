package interfaces

import (
	"context"
	"errors"

	"github.com/warmstack/warm/internal/models"
)

// ErrIndexingTimeout is returned by Index when the provider's asynchronous
// indexing operation does not complete within the configured bound. It is
// fatal for that upload and reported distinctly from generic provider
// failures so clients can advise uploading a smaller file.
var ErrIndexingTimeout = errors.New("file indexing timed out")

// FileSearchService manages per-upload retrieval stores and answers queries
// against them with the same streaming contract as ChatService, except that
// grounded turns emit a file_citation event instead of a citation event.
type FileSearchService interface {
	// Index creates a fresh retrieval store, uploads the file with the
	// configured chunking policy and waits for indexing to complete.
	Index(ctx context.Context, filePath, displayName string) (storeName, fileName string, err error)

	// Query streams a file-grounded answer against the given store.
	Query(ctx context.Context, storeName, question, model string) <-chan models.StreamEvent

	// DeleteStore removes a retrieval store. Cleanup is best-effort: failures
	// are logged and swallowed so they never block session deletion.
	DeleteStore(ctx context.Context, storeName string)
}
