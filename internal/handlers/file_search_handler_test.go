package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warmstack/warm/internal/common"
	"github.com/warmstack/warm/internal/interfaces"
	"github.com/warmstack/warm/internal/models"
)

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadCreatesFileSearchSession(t *testing.T) {
	history := newMemHistory()
	fileSearch := &fakeFileSearch{storeName: "fileSearchStores/abc"}
	handler := NewFileSearchHandler(fileSearch, history, common.GetLogger())

	body, contentType := multipartUpload(t, "report.pdf", "pdf bytes")
	req := httptest.NewRequest("POST", "/api/v1/file-search/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp struct {
		SessionID uint64 `json:"session_id"`
		StoreName string `json:"store_name"`
		FileName  string `json:"file_name"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fileSearchStores/abc", resp.StoreName)
	assert.Equal(t, "report.pdf", resp.FileName)
	assert.Equal(t, "indexed", resp.Status)

	session, err := history.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.ChatModeFileSearch, session.Mode)
	assert.Equal(t, "File: report.pdf", session.Title)
	assert.Equal(t, "fileSearchStores/abc", session.FileSearchStoreName)
	assert.Equal(t, "report.pdf", session.FileName)
}

func TestUploadIndexingTimeoutIs504(t *testing.T) {
	fileSearch := &fakeFileSearch{indexErr: interfaces.ErrIndexingTimeout}
	handler := NewFileSearchHandler(fileSearch, newMemHistory(), common.GetLogger())

	body, contentType := multipartUpload(t, "big.pdf", "bytes")
	req := httptest.NewRequest("POST", "/api/v1/file-search/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, 504, rec.Code)
	assert.Contains(t, rec.Body.String(), "indexing_timeout")
}

func TestUploadProviderErrorIs502(t *testing.T) {
	fileSearch := &fakeFileSearch{indexErr: assert.AnError}
	handler := NewFileSearchHandler(fileSearch, newMemHistory(), common.GetLogger())

	body, contentType := multipartUpload(t, "bad.pdf", "bytes")
	req := httptest.NewRequest("POST", "/api/v1/file-search/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, 502, rec.Code)
}

func TestUploadMissingFileIs400(t *testing.T) {
	handler := NewFileSearchHandler(&fakeFileSearch{}, newMemHistory(), common.GetLogger())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/file-search/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestFileSearchChatStreamsAndPersists(t *testing.T) {
	history := newMemHistory()
	session, _ := history.CreateSession(context.Background(), "File: report.pdf", models.ChatModeFileSearch)
	history.SetFileSearchMetadata(context.Background(), session.ID, "fileSearchStores/abc", "report.pdf")

	citations, _ := json.Marshal([]models.FileCitation{{SourceTitle: "report.pdf", TextSegment: "quoted"}})
	fileSearch := &fakeFileSearch{events: []models.StreamEvent{
		models.TokenEvent("answer"),
		models.FileCitationEvent(string(citations)),
		models.DoneEvent(),
	}}
	handler := NewFileSearchHandler(fileSearch, history, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/v1/file-search/chat",
		strings.NewReader(`{"session_id":1,"message":"what does it say?"}`))
	rec := httptest.NewRecorder()
	handler.Chat(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, models.EventFileCitation, events[1].Type)

	_, messages, err := history.GetSessionWithMessages(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "answer", messages[1].Content)
	assert.Equal(t, string(citations), messages[1].Sources)
}

func TestFileSearchChatWithoutStoreIs400(t *testing.T) {
	history := newMemHistory()
	history.CreateSession(context.Background(), "plain chat", models.ChatModeStandard)

	handler := NewFileSearchHandler(&fakeFileSearch{}, history, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/v1/file-search/chat",
		strings.NewReader(`{"session_id":1,"message":"anything"}`))
	rec := httptest.NewRecorder()
	handler.Chat(rec, req)

	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_file")
}

func TestFileSearchChatUnknownSessionIs404(t *testing.T) {
	handler := NewFileSearchHandler(&fakeFileSearch{}, newMemHistory(), common.GetLogger())

	req := httptest.NewRequest("POST", "/api/v1/file-search/chat",
		strings.NewReader(`{"session_id":5,"message":"anything"}`))
	rec := httptest.NewRecorder()
	handler.Chat(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestFileSearchDeleteSessionTearsDownStore(t *testing.T) {
	history := newMemHistory()
	session, _ := history.CreateSession(context.Background(), "File: report.pdf", models.ChatModeFileSearch)
	history.SetFileSearchMetadata(context.Background(), session.ID, "fileSearchStores/abc", "report.pdf")

	fileSearch := &fakeFileSearch{}
	handler := NewFileSearchHandler(fileSearch, history, common.GetLogger())

	req := httptest.NewRequest("DELETE", "/api/v1/file-search/sessions/1", nil)
	rec := httptest.NewRecorder()
	handler.DeleteSession(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, []string{"fileSearchStores/abc"}, fileSearch.deleted)

	_, err := history.GetSession(context.Background(), session.ID)
	assert.Error(t, err)
}
