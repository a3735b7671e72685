package filesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/warmstack/warm/internal/common"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
	"github.com/warmstack/warm/internal/services/llm"
	"google.golang.org/genai"
)

// errFileSearchUnavailable is the only error text a document query exposes
const errFileSearchUnavailable = "I encountered an error searching the document."

// fileQueryInstruction frames document-grounded answers
const fileQueryInstruction = `You are Warm AI, a professional intelligence assistant.
Answer strictly from the provided document. If the document does not contain
the answer, say so rather than guessing.`

// pollFunc reports whether an indexing operation has finished
type pollFunc func(ctx context.Context) (done bool, err error)

// storeAPI is the slice of the provider surface this service needs. A narrow
// seam here keeps the upload/poll lifecycle testable without network access.
type storeAPI interface {
	createStore(ctx context.Context, displayName string) (storeName string, err error)
	upload(ctx context.Context, storeName, filePath, displayName string) (pollFunc, error)
	deleteStore(ctx context.Context, storeName string) error
}

// Service indexes uploaded documents into provider-managed file search
// stores and answers questions grounded in them.
type Service struct {
	config   *common.FileSearchConfig
	logger   arbor.ILogger
	stores   storeAPI
	generate llm.GenerateFunc

	pollInterval time.Duration
	indexTimeout time.Duration
}

// NewService creates a file search service backed by Gemini file search stores
func NewService(config *common.Config, logger arbor.ILogger) (*Service, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for file search (set WARM_GEMINI_API_KEY or gemini.api_key in config)")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &Service{
		config: &config.FileSearch,
		logger: logger,
		stores: &genaiStores{
			client: client,
			config: &config.FileSearch,
		},
		generate: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			return client.Models.GenerateContentStream(ctx, model, contents, cfg)
		},
		pollInterval: common.ParseDuration(config.FileSearch.PollInterval, 2*time.Second),
		indexTimeout: common.ParseDuration(config.FileSearch.IndexTimeout, 10*time.Minute),
	}

	logger.Info().
		Str("model", config.FileSearch.Model).
		Dur("indexTimeout", service.indexTimeout).
		Msg("File search service initialized")

	return service, nil
}

// Index creates a fresh store, uploads the file into it and waits for
// indexing to finish. The store name it returns is what Query and
// DeleteStore operate on later. A run that outlives the configured deadline
// returns interfaces.ErrIndexingTimeout with the partially built store
// already torn down.
func (s *Service) Index(ctx context.Context, filePath string, displayName string) (string, string, error) {
	if displayName == "" {
		displayName = filepath.Base(filePath)
	}

	storeLabel := "warm-ai-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]

	storeName, err := s.stores.createStore(ctx, storeLabel)
	if err != nil {
		return "", "", fmt.Errorf("failed to create file search store: %w", err)
	}

	s.logger.Info().
		Str("store", storeName).
		Str("file", displayName).
		Msg("Indexing document")

	poll, err := s.stores.upload(ctx, storeName, filePath, displayName)
	if err != nil {
		s.cleanup(storeName)
		return "", "", fmt.Errorf("failed to upload document: %w", err)
	}

	deadline := time.Now().Add(s.indexTimeout)
	for {
		done, err := poll(ctx)
		if err != nil {
			s.cleanup(storeName)
			return "", "", fmt.Errorf("indexing failed: %w", err)
		}
		if done {
			break
		}
		if time.Now().After(deadline) {
			s.cleanup(storeName)
			return "", "", interfaces.ErrIndexingTimeout
		}
		select {
		case <-ctx.Done():
			s.cleanup(storeName)
			return "", "", ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}

	s.logger.Info().Str("store", storeName).Msg("Document indexed")
	return storeName, displayName, nil
}

// Query streams an answer grounded in a previously indexed store
func (s *Service) Query(ctx context.Context, storeName string, question string, model string) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		if model == "" {
			model = s.config.Model
		}

		config := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(fileQueryInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(s.config.Temperature),
			Tools: []*genai.Tool{{
				FileSearch: &genai.FileSearch{
					FileSearchStoreNames: []string{storeName},
				},
			}},
		}

		s.logger.Info().
			Str("store", storeName).
			Str("model", model).
			Msg("Starting file search query")

		contents := []*genai.Content{genai.NewContentFromText(question, genai.RoleUser)}
		seq := s.generate(ctx, model, contents, config)

		llm.EmitEvents(ctx, seq, events, s.logger, fileCitationEvent, errFileSearchUnavailable)
	}()

	return events
}

// DeleteStore tears a store down. Cleanup is best-effort: an orphaned store
// costs quota, not correctness, so failures are logged and swallowed.
func (s *Service) DeleteStore(ctx context.Context, storeName string) {
	if storeName == "" {
		return
	}
	if err := s.stores.deleteStore(ctx, storeName); err != nil {
		s.logger.Warn().Err(err).Str("store", storeName).Msg("Failed to delete file search store")
		return
	}
	s.logger.Info().Str("store", storeName).Msg("File search store deleted")
}

func (s *Service) cleanup(storeName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.DeleteStore(ctx, storeName)
}

// fileCitationEvent wraps the final chunk's document citations, if any. The
// grouped citations travel as the event payload so the client can highlight
// the exact supported spans.
func fileCitationEvent(candidate *genai.Candidate) *models.StreamEvent {
	citations := llm.ExtractFileCitations(candidate)
	if len(citations) == 0 {
		return nil
	}
	payload, err := json.Marshal(citations)
	if err != nil {
		return nil
	}
	ev := models.FileCitationEvent(string(payload))
	return &ev
}

// genaiStores is the production storeAPI bound to the Gemini SDK
type genaiStores struct {
	client *genai.Client
	config *common.FileSearchConfig
}

func (g *genaiStores) createStore(ctx context.Context, displayName string) (string, error) {
	store, err := g.client.FileSearchStores.Create(ctx, &genai.CreateFileSearchStoreConfig{
		DisplayName: displayName,
	})
	if err != nil {
		return "", err
	}
	return store.Name, nil
}

func (g *genaiStores) upload(ctx context.Context, storeName, filePath, displayName string) (pollFunc, error) {
	op, err := g.client.FileSearchStores.UploadToFileSearchStoreFromPath(ctx, filePath, storeName, &genai.UploadToFileSearchStoreConfig{
		DisplayName: displayName,
		ChunkingConfig: &genai.ChunkingConfig{
			WhiteSpaceConfig: &genai.WhiteSpaceConfig{
				MaxTokensPerChunk: genai.Ptr(int32(g.config.MaxTokensPerChunk)),
				MaxOverlapTokens:  genai.Ptr(int32(g.config.MaxOverlapTokens)),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) (bool, error) {
		refreshed, err := g.client.Operations.GetUploadToFileSearchStoreOperation(ctx, op, nil)
		if err != nil {
			return false, err
		}
		op = refreshed
		return op.Done, nil
	}, nil
}

func (g *genaiStores) deleteStore(ctx context.Context, storeName string) error {
	return g.client.FileSearchStores.Delete(ctx, storeName, &genai.DeleteFileSearchStoreConfig{Force: genai.Ptr(true)})
}
