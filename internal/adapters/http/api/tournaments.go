package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	service "github.com/Bruzzknock/Meeplelytics/internal/app"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
)

type createTournamentRequest struct {
	Name      string   `json:"name"`
	GameID    string   `json:"gameId"`
	PlayerIDs []string `json:"playerIds"`
}

type updateSeatsRequest struct {
	Seats []model.Seat `json:"seats"`
}

type submitResultsRequest struct {
	Results []results.Submission `json:"results"`
}

type tournamentView struct {
	model.Tournament
	Rounds []model.Round `json:"rounds"`
}

func (s *Server) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	t, err := s.deps.CreateTournament(r.Context(), req.Name, req.GameID, req.PlayerIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.ListTournaments(r.Context()))
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.deps.GetTournament(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rounds, err := s.deps.TournamentRounds(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tournamentView{Tournament: t, Rounds: rounds})
}

func (s *Server) handleGenerateRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.deps.GenerateRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := s.deps.Standings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.deps.GetRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleLockRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.deps.LockRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.deps.GetTable(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleUpdateSeats(w http.ResponseWriter, r *http.Request) {
	var req updateSeatsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	table, err := s.deps.UpdateSeats(r.Context(), r.PathValue("id"), req.Seats)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// handleSubmitResults accepts either a bare array of submissions or an
// object wrapping them under "results".
func (s *Server) handleSubmitResults(w http.ResponseWriter, r *http.Request) {
	subs, err := decodeSubmissions(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := s.deps.SubmitResults(r.Context(), r.PathValue("id"), subs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusAccepted
	if res.Status == service.StatusDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func decodeSubmissions(r *http.Request) ([]results.Submission, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var subs []results.Submission
		if err := json.Unmarshal(body, &subs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return subs, nil
	}
	var req submitResultsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return req.Results, nil
}
