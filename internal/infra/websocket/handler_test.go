package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scansvc "github.com/repoguard/api/internal/app/scan"
	"github.com/repoguard/api/internal/config"
	"github.com/repoguard/api/internal/infra/llm"
	"github.com/repoguard/api/pkg/domain/scan"
	"github.com/repoguard/api/pkg/logger"
	"github.com/repoguard/api/pkg/validator"
)

type stubCloner struct {
	files map[string]string
}

func (c *stubCloner) Clone(_ context.Context, _ string, dest string) error {
	for rel, content := range c.files {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type stubProvider struct {
	content string
}

func (p *stubProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: p.content}, nil
}
func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Model() string   { return "stub-model" }
func (p *stubProvider) Validate() error { return nil }

func dialTestHandler(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newTestHandler(files map[string]string, response string) *Handler {
	svc := scansvc.NewService(
		&stubCloner{files: files},
		&stubProvider{content: response},
		config.ScanConfig{FileExtensions: []string{".py"}, ExcludeVCSDirs: true},
		logger.NewNop(),
	)
	return NewHandler(svc, validator.New(), logger.NewNop())
}

func readEvents(t *testing.T, conn *websocket.Conn) []scan.Event {
	t.Helper()
	var events []scan.Event
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev scan.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return events
		}
		events = append(events, ev)
		if ev.Type == scan.EventTypeDone {
			return events
		}
	}
}

func TestServeStreamsScan(t *testing.T) {
	h := newTestHandler(map[string]string{"a.py": "print(1)"},
		"No vulnerabilities found in this file.")

	conn := dialTestHandler(t, h)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"repository_url": "https://github.com/o/r.git",
	}))

	events := readEvents(t, conn)
	require.NotEmpty(t, events)
	assert.Equal(t, scan.EventTypeDone, events[len(events)-1].Type)
	assert.Equal(t, "Process finished.", events[len(events)-1].Payload)
}

func TestServeRejectsInvalidRequest(t *testing.T) {
	h := newTestHandler(nil, "")

	conn := dialTestHandler(t, h)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"repository_url": "ftp://example.com/repo.git",
	}))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev scan.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, scan.EventTypeError, ev.Type)

	payload, ok := ev.Payload.(string)
	require.True(t, ok)
	assert.Contains(t, payload, "Validation failed")
}

func TestServeTokenNotEchoed(t *testing.T) {
	h := newTestHandler(map[string]string{"a.py": "print(1)"},
		"No vulnerabilities found in this file.")

	conn := dialTestHandler(t, h)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"repository_url": "https://github.com/o/r.git",
		"access_token":   "ws-sekret-9",
	}))

	events := readEvents(t, conn)
	for _, ev := range events {
		if s, ok := ev.Payload.(string); ok {
			assert.NotContains(t, s, "ws-sekret-9")
		}
	}
}
