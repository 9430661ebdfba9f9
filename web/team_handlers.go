package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// registerTeamRequest 注册队伍请求体
type registerTeamRequest struct {
	Name       string          `json:"name"`
	Sport      string          `json:"sport"`
	Captain    string          `json:"captain"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	Players    []models.Player `json:"players"`
	Location   string          `json:"location"`
	Experience string          `json:"experience"`
}

// handleRegisterTeam 注册队伍
func (s *Server) handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	var req registerTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", common.ErrInvalidInput))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: team name is required", common.ErrInvalidInput))
		return
	}

	sport, err := models.ParseSport(req.Sport)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid sport, must be cricket, kabaddi, or volleyball", common.ErrInvalidInput))
		return
	}

	if len(req.Players) < sport.MinPlayers() {
		writeError(w, fmt.Errorf("%w: %s requires at least %d players", common.ErrInvalidInput, sport, sport.MinPlayers()))
		return
	}

	// 队名唯一
	if _, err := s.teams.LoadByName(r.Context(), req.Name); err == nil {
		writeError(w, fmt.Errorf("%w: team name already taken", common.ErrInvalidInput))
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		writeError(w, err)
		return
	}

	colorStart, colorEnd := sport.DefaultColors()
	team := &models.Team{
		Name:           req.Name,
		Sport:          sport,
		Captain:        req.Captain,
		Phone:          req.Phone,
		Email:          req.Email,
		Players:        req.Players,
		Location:       req.Location,
		Experience:     req.Experience,
		LogoColorStart: colorStart,
		LogoColorEnd:   colorEnd,
		Symbol:         sport.DefaultSymbol(),
	}

	if err := s.teams.Create(r.Context(), team); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Team registered successfully",
		"team":    team,
	})
}

// handleListTeams 队伍列表,可按运动类型过滤
func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport != "" {
		if _, err := models.ParseSport(sport); err != nil {
			writeError(w, fmt.Errorf("%w: invalid sport filter", common.ErrInvalidInput))
			return
		}
	}

	teams, err := s.teams.List(r.Context(), sport)
	if err != nil {
		writeError(w, err)
		return
	}
	if teams == nil {
		teams = []*models.Team{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
	})
}

// handleGetTeam 队伍详情
func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid team id", common.ErrInvalidInput))
		return
	}

	team, err := s.teams.Load(r.Context(), teamID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, team)
}
