package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	scansvc "github.com/repoguard/api/internal/app/scan"
	"github.com/repoguard/api/pkg/apierror"
	"github.com/repoguard/api/pkg/domain/scan"
	"github.com/repoguard/api/pkg/logger"
	"github.com/repoguard/api/pkg/validator"
)

// ScanHandler handles HTTP requests for repository scans. Responses are
// Server-Sent Event streams: one data frame per scan event, flushed as
// produced.
type ScanHandler struct {
	service   *scansvc.Service
	validator *validator.Validator
	logger    *logger.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(service *scansvc.Service, v *validator.Validator, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		service:   service,
		validator: v,
		logger:    log.With("handler", "scan"),
	}
}

// ScanRequest represents the request body for starting a scan.
type ScanRequest struct {
	RepositoryURL string `json:"repository_url" validate:"required,repo_url"`
	AccessToken   string `json:"access_token" validate:"omitempty,max=512"`
}

// Stream starts a scan and streams its events until the terminal done
// event.
// POST /api/v1/scans
// POST /scan_repository (legacy alias)
func (h *ScanHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest("Invalid request body").WriteJSON(w)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.handleValidationError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("response writer does not support flushing")
		apierror.ServiceUnavailable("Streaming not supported").WriteJSON(w)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable proxy buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(ev scan.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		flusher.Flush()
		return nil
	}

	// The request body carried the credential; everything logged from here
	// on uses only the bare repository URL.
	summary := h.service.Run(r.Context(), scan.Request{
		RepositoryURL: req.RepositoryURL,
		AccessToken:   req.AccessToken,
	}, emit)

	h.logger.Info("scan session finished",
		"files_scanned", summary.FilesScanned,
		"vulnerabilities_found", summary.VulnerabilitiesFound,
	)
}

func (h *ScanHandler) handleValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apierror.ValidationFailed("Validation failed", verrs).WriteJSON(w)
		return
	}
	apierror.BadRequest(err.Error()).WriteJSON(w)
}
