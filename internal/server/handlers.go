package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gompdf/claimpacket/internal/auth"
	"github.com/gompdf/claimpacket/pkg/claim"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	claimID := chi.URLParam(r, "id")
	owner := auth.OwnerFromContext(ctx)

	packet, err := s.generator.Generate(ctx, claimID, owner)
	if err != nil {
		s.writeGenerateError(w, r, claimID, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", packet.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", packet.Filename))
	h.Set("Content-Length", strconv.Itoa(len(packet.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(packet.Data); err != nil {
		s.logger.Warn("failed to write packet", "claim_id", claimID, "error", err)
	}
}

func (s *Server) writeGenerateError(w http.ResponseWriter, r *http.Request, claimID string, err error) {
	switch {
	case errors.Is(err, claim.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, claim.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("packet generation timed out", "claim_id", claimID, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusGatewayTimeout, "Timed out")
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
		s.logger.Info("packet generation cancelled", "claim_id", claimID, "request_id", RequestIDFromContext(r.Context()))
	default:
		s.logger.Error("packet generation failed", "claim_id", claimID, "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
