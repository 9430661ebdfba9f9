package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// createMatchRequest 创建比赛请求体
type createMatchRequest struct {
	Sport   string `json:"sport"`
	Team1ID int64  `json:"team1_id"`
	Team2ID int64  `json:"team2_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Venue   string `json:"venue"`

	// 板球
	TotalOvers int `json:"total_overs"`
	// 卡巴迪
	HalfDuration int `json:"half_duration"`
	// 排球
	TTPPoints int `json:"ttp_points"`
	TotalSets int `json:"total_sets"`
}

// handleCreateMatch 创建比赛
func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", common.ErrInvalidInput))
		return
	}

	sport, err := models.ParseSport(req.Sport)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid sport", common.ErrInvalidInput))
		return
	}

	if req.Team1ID == req.Team2ID {
		writeError(w, fmt.Errorf("%w: teams must be different", common.ErrInvalidInput))
		return
	}

	team1, err := s.teams.Load(r.Context(), req.Team1ID)
	if err != nil {
		writeError(w, err)
		return
	}
	team2, err := s.teams.Load(r.Context(), req.Team2ID)
	if err != nil {
		writeError(w, err)
		return
	}

	if team1.Sport != sport || team2.Sport != sport {
		writeError(w, fmt.Errorf("%w: both teams must be %s teams", common.ErrInvalidInput, sport))
		return
	}

	// 规则参数缺省值
	if req.TotalOvers <= 0 {
		req.TotalOvers = 20
	}
	if req.HalfDuration <= 0 {
		req.HalfDuration = 20
	}
	if req.TotalSets <= 0 {
		req.TotalSets = 3
	}

	m := &models.Match{
		Sport:   sport,
		Team1ID: req.Team1ID,
		Team2ID: req.Team2ID,
		Date:    req.Date,
		Time:    req.Time,
		Venue:   req.Venue,
		Status:  models.StatusUpcoming,
	}
	models.NewScorePayload(m, req.TotalOvers, req.HalfDuration, req.TTPPoints, req.TotalSets)

	if err := s.matches.Create(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Match created successfully",
		"match":   s.matchSummary(r, m),
	})
}

// handleListMatches 比赛列表,可按运动类型/状态过滤
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sport := query.Get("sport")
	status := query.Get("status")

	if sport != "" {
		if _, err := models.ParseSport(sport); err != nil {
			writeError(w, fmt.Errorf("%w: invalid sport filter", common.ErrInvalidInput))
			return
		}
	}

	matches, err := s.matches.List(r.Context(), sport, status)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.matchSummary(r, m))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches": out,
	})
}

// handleGetMatch 比赛详情,带运动专项比分负载
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	m, err := s.matches.Load(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	body := s.matchSummary(r, m)
	switch m.Sport {
	case models.SportCricket:
		body["cricket"] = m.Cricket
	case models.SportKabaddi:
		body["kabaddi"] = m.Kabaddi
		if m.Kabaddi != nil {
			body["team1_total"] = m.Kabaddi.Team1.Total()
			body["team2_total"] = m.Kabaddi.Team2.Total()
		}
	case models.SportVolleyball:
		body["volleyball"] = m.Volleyball
	}

	writeJSON(w, http.StatusOK, body)
}

// matchSummary 列表/详情共用的比赛摘要,带双方队名
func (s *Server) matchSummary(r *http.Request, m *models.Match) map[string]interface{} {
	body := map[string]interface{}{
		"id":       m.ID,
		"sport":    m.Sport,
		"team1_id": m.Team1ID,
		"team2_id": m.Team2ID,
		"date":     m.Date,
		"time":     m.Time,
		"venue":    m.Venue,
		"status":   m.Status,
		"result":   m.Result,
	}

	if t1, err := s.teams.Load(r.Context(), m.Team1ID); err == nil {
		body["team1_name"] = t1.Name
		body["team1_symbol"] = t1.Symbol
	}
	if t2, err := s.teams.Load(r.Context(), m.Team2ID); err == nil {
		body["team2_name"] = t2.Name
		body["team2_symbol"] = t2.Symbol
	}

	if m.TossWinnerID != 0 {
		body["toss_winner_id"] = m.TossWinnerID
		body["toss_choice"] = m.TossChoice
	}

	// 给列表页一个轻量比分摘要
	switch m.Sport {
	case models.SportCricket:
		if m.Cricket != nil {
			inn := m.Cricket.CurrentScore()
			body["score_summary"] = fmt.Sprintf("%d/%d (%s)", inn.Runs, inn.Wickets, inn.OversDisplay())
		}
	case models.SportKabaddi:
		if m.Kabaddi != nil {
			body["score_summary"] = fmt.Sprintf("%d - %d", m.Kabaddi.Team1.Total(), m.Kabaddi.Team2.Total())
		}
	case models.SportVolleyball:
		if m.Volleyball != nil {
			body["score_summary"] = fmt.Sprintf("Sets %d-%d (%d-%d)",
				m.Volleyball.Team1.Sets, m.Volleyball.Team2.Sets,
				m.Volleyball.Team1.CurrentPoints, m.Volleyball.Team2.CurrentPoints)
		}
	}

	return body
}
