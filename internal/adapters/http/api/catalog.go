package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	service "github.com/Bruzzknock/Meeplelytics/internal/app"
)

type createTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type createPlayerRequest struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
	TeamID string `json:"teamId"`
}

type createGameRequest struct {
	Name  string          `json:"name"`
	Rules json.RawMessage `json:"rules"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	team, err := s.deps.CreateTeam(r.Context(), req.Name, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.ListTeams(r.Context()))
}

func (s *Server) handleTeamSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.TeamSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	player, err := s.deps.CreatePlayer(r.Context(), repository.NewPlayer{
		Name:   req.Name,
		Handle: req.Handle,
		TeamID: req.TeamID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.deps.ListPlayers(r.Context(), service.PlayerFilter{
		TeamID: q.Get("teamId"),
		Search: q.Get("search"),
	}))
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.deps.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// handleUpdatePlayer distinguishes an absent teamId from an explicit null,
// which removes the player from their team.
func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		writeServiceError(w, err)
		return
	}
	var patch repository.PlayerPatch
	if raw, ok := body["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			writeServiceError(w, fmt.Errorf("%w: name: %w", ErrBadRequest, err))
			return
		}
		patch.Name = &name
	}
	if raw, ok := body["teamId"]; ok {
		var teamID *string
		if err := json.Unmarshal(raw, &teamID); err != nil {
			writeServiceError(w, fmt.Errorf("%w: teamId: %w", ErrBadRequest, err))
			return
		}
		if teamID == nil {
			teamID = new(string)
		}
		patch.TeamID = teamID
	}
	player, err := s.deps.UpdatePlayer(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleRatingHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.deps.RatingHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handlePointsPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.deps.PointsPreview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	var raw any
	if len(req.Rules) > 0 {
		raw = req.Rules
	}
	game, err := s.deps.CreateGame(r.Context(), req.Name, raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.ListGames(r.Context()))
}

// handleUpdateGameRules takes the ruleset document itself as the body.
func (s *Server) handleUpdateGameRules(w http.ResponseWriter, r *http.Request) {
	var doc json.RawMessage
	if err := decodeJSON(r, &doc); err != nil {
		writeServiceError(w, err)
		return
	}
	game, err := s.deps.UpdateGameRules(r.Context(), r.PathValue("id"), doc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleGameSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.GameSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
