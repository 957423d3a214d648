// Package websocket provides the WebSocket transport for scan sessions.
// The client sends one JSON request frame, then receives the session's
// events as JSON text messages until the terminal done event, after which
// the server closes the connection.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	scansvc "github.com/repoguard/api/internal/app/scan"
	"github.com/repoguard/api/pkg/domain/scan"
	"github.com/repoguard/api/pkg/logger"
	"github.com/repoguard/api/pkg/validator"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed for the client to send the request frame.
	requestWait = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, check origin against allowed domains
		return true
	},
}

// Handler handles WebSocket scan connections.
type Handler struct {
	service   *scansvc.Service
	validator *validator.Validator
	logger    *logger.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(service *scansvc.Service, v *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: v,
		logger:    log.With("handler", "websocket"),
	}
}

// request is the single frame the client sends after connecting.
type request struct {
	RepositoryURL string `json:"repository_url" validate:"required,repo_url"`
	AccessToken   string `json:"access_token" validate:"omitempty,max=512"`
}

// Serve upgrades the connection and runs one scan session over it.
// GET /api/v1/scans/ws
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	_ = conn.SetReadDeadline(time.Now().Add(requestWait))
	var req request
	if err := conn.ReadJSON(&req); err != nil {
		h.closeWithError(conn, "Invalid scan request")
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.closeWithError(conn, "Validation failed: "+err.Error())
		return
	}

	// Cancel the session as soon as the client goes away. The client is
	// not expected to send anything after the request frame; the read
	// loop exists only to observe the close.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		_ = conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	emit := func(ev scan.Event) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(ev)
	}

	summary := h.service.Run(ctx, scan.Request{
		RepositoryURL: req.RepositoryURL,
		AccessToken:   req.AccessToken,
	}, emit)

	h.logger.Info("websocket scan session finished",
		"files_scanned", summary.FilesScanned,
		"vulnerabilities_found", summary.VulnerabilitiesFound,
	)

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// closeWithError reports a pre-session failure as an error event and
// closes the connection.
func (h *Handler) closeWithError(conn *websocket.Conn, message string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	writeErr := conn.WriteJSON(scan.Event{Type: scan.EventTypeError, Payload: message})
	if writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) {
		h.logger.Warn("failed to write rejection event", "error", writeErr)
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid request"))
}
