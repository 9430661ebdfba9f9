package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"arena-service/pkg/common"
	"arena-service/pkg/engine"
	"arena-service/pkg/models"
)

// handleStartMatch 开赛
func (s *Server) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	m, err := s.scoring.StartMatch(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Match started",
		"status":  m.Status,
	})
}

// tossRequest 掷币请求体
type tossRequest struct {
	WinnerTeamID int64  `json:"winner_team_id"`
	Choice       string `json:"choice"` // bat/bowl (板球), raid/defend (卡巴迪), serve (排球)
}

// handleToss 记录掷币结果
func (s *Server) handleToss(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	var req tossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", common.ErrInvalidInput))
		return
	}

	m, err := s.scoring.SaveToss(r.Context(), matchID, req.WinnerTeamID, req.Choice)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Toss recorded",
		"toss_winner_id": m.TossWinnerID,
		"toss_choice":    m.TossChoice,
	})
}

// cricketScoreRequest 板球逐球请求体
type cricketScoreRequest struct {
	Run        int    `json:"run"`
	IsWicket   bool   `json:"is_wicket"`
	ExtraType  string `json:"extra_type"` // "WD", "NB", "B", "LB"
	BatsmanOut string `json:"batsman_out"`
	NewBatsman string `json:"new_batsman"`
}

// handleCricketScore 记录一次投球
func (s *Server) handleCricketScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	var req cricketScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", common.ErrInvalidInput))
		return
	}

	m, res, err := s.scoring.ScoreCricket(r.Context(), matchID, engine.DeliveryInput{
		Runs:       req.Run,
		Wicket:     req.IsWicket,
		Extra:      models.ExtraKind(req.ExtraType),
		BatsmanOut: req.BatsmanOut,
		NewBatsman: req.NewBatsman,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	inn := m.Cricket.CurrentScore()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Ball recorded",
		"score":           inn.Runs,
		"wickets":         inn.Wickets,
		"overs":           inn.OversDisplay(),
		"current_innings": m.Cricket.CurrentInnings,
		"all_out":         res.AllOut,
		"overs_done":      res.OversDone,
	})
}

// handleEndInnings 结束第一局
func (s *Server) handleEndInnings(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	m, err := s.scoring.EndInnings(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Second innings started",
		"current_innings": m.Cricket.CurrentInnings,
		"target":          m.Cricket.Target,
	})
}

// kabaddiScoreRequest 卡巴迪计分请求体
type kabaddiScoreRequest struct {
	TeamID int64  `json:"team_id"`
	Action string `json:"action"` // "raid", "tackle", "super_tackle", "bonus", "self_out", "all_out"
	Points int    `json:"points"`
}

// handleKabaddiScore 记录卡巴迪计分动作
func (s *Server) handleKabaddiScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	var req kabaddiScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", common.ErrInvalidInput))
		return
	}

	action, err := engine.ParseKabaddiAction(req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := s.scoring.ScoreKabaddi(r.Context(), matchID, req.TeamID, action, req.Points)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Score recorded",
		"team1_total":  m.Kabaddi.Team1.Total(),
		"team2_total":  m.Kabaddi.Team2.Total(),
		"current_half": m.Kabaddi.CurrentHalf,
	})
}

// handleSwitchHalf 切换下半场
func (s *Server) handleSwitchHalf(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	m, err := s.scoring.SwitchHalf(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Second half started",
		"current_half": m.Kabaddi.CurrentHalf,
	})
}

// volleyballScoreRequest 排球计分请求体
type volleyballScoreRequest struct {
	TeamID int64  `json:"team_id"`
	Action string `json:"action"` // "point", "undo", "set_won", "toggle_serve"
}

// handleVolleyballScore 记录排球计分动作
func (s *Server) handleVolleyballScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	var req volleyballScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", common.ErrInvalidInput))
		return
	}

	action, err := engine.ParseVolleyballAction(req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := s.scoring.ScoreVolleyball(r.Context(), matchID, req.TeamID, action)
	if err != nil {
		writeError(w, err)
		return
	}

	vs := m.Volleyball
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Score recorded",
		"current_set":  vs.CurrentSet,
		"team1_sets":   vs.Team1.Sets,
		"team2_sets":   vs.Team2.Sets,
		"team1_points": vs.Team1.CurrentPoints,
		"team2_points": vs.Team2.CurrentPoints,
	})
}

// handleCompleteMatch 结束比赛并结算
func (s *Server) handleCompleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := pathID(r, "match_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid match id", common.ErrInvalidInput))
		return
	}

	m, err := s.scoring.CompleteMatch(r.Context(), matchID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Match completed",
		"status":  m.Status,
		"result":  m.Result,
	})
}
