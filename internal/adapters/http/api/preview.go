package api

import (
	"encoding/json"
	"net/http"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
)

type pointsPreviewRequest struct {
	Placement int             `json:"placement"`
	RawScore  *float64        `json:"rawScore"`
	Rules     json.RawMessage `json:"rules"`
}

type eloPreviewRequest struct {
	Players []rating.Input `json:"players"`
	KFactor *float64       `json:"kFactor"`
	Clamp   *int           `json:"clamp"`
}

func (s *Server) handlePreviewPoints(w http.ResponseWriter, r *http.Request) {
	var req pointsPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	var raw any
	if len(req.Rules) > 0 {
		raw = req.Rules
	}
	writeJSON(w, http.StatusOK, s.deps.PreviewPoints(req.Placement, req.RawScore, raw))
}

func (s *Server) handlePreviewElo(w http.ResponseWriter, r *http.Request) {
	var req eloPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	changes, err := s.deps.PreviewElo(req.Players, req.KFactor, req.Clamp)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
