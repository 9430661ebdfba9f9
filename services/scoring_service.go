package services

import (
	"context"
	"encoding/json"
	"strconv"

	"arena-service/logger"
	"arena-service/pkg/common"
	"arena-service/pkg/engine"
	"arena-service/pkg/models"
)

// ScoringService 计分变更路径: 校验 → 规则引擎转移 → 持久化 →
// 广播。每场比赛持锁串行,持久化成功之前绝不广播;广播失败只
// 记日志,从不回滚已提交的持久化。
type ScoringService struct {
	matches  MatchStore
	teams    TeamStore
	broker   EventBroker
	locks    *matchLocks
	notifier *WebhookNotifier
}

// NewScoringService 创建计分服务
func NewScoringService(matches MatchStore, teams TeamStore, broker EventBroker) *ScoringService {
	return &ScoringService{
		matches: matches,
		teams:   teams,
		broker:  broker,
		locks:   newMatchLocks(),
	}
}

// SetNotifier 设置运维通知器
func (s *ScoringService) SetNotifier(n *WebhookNotifier) {
	s.notifier = n
}

// StartMatch 开赛: UPCOMING → LIVE。状态单向推进,重复开赛报错。
func (s *ScoringService) StartMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.matches.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != models.StatusUpcoming {
		return nil, common.ErrInvalidState
	}

	m.Status = models.StatusLive
	if err := s.matches.Save(ctx, m); err != nil {
		return nil, err
	}

	logger.Printf("[Scoring] Match %d started", m.ID)
	return m, nil
}

// SaveToss 记录掷币结果并广播 toss 事件
func (s *ScoringService) SaveToss(ctx context.Context, matchID, winnerID int64, choice string) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.matches.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := engine.ApplyToss(m, winnerID, choice); err != nil {
		return nil, err
	}
	if err := s.matches.Save(ctx, m); err != nil {
		return nil, err
	}

	winnerName := s.teamName(ctx, winnerID)
	s.publish(models.EventToss, m, map[string]interface{}{
		"winner":  winnerName,
		"choice":  choice,
		"message": winnerName + " won the toss and chose to " + choice,
	})
	return m, nil
}

// ScoreCricket 记录一次投球
func (s *ScoringService) ScoreCricket(ctx context.Context, matchID int64, in engine.DeliveryInput) (*models.Match, engine.DeliveryResult, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.loadForMutation(ctx, matchID, models.SportCricket)
	if err != nil {
		return nil, engine.DeliveryResult{}, err
	}

	score, res, err := engine.ApplyDelivery(m.Cricket, in)
	if err != nil {
		return nil, engine.DeliveryResult{}, err
	}
	m.Cricket = score

	if err := s.matches.Save(ctx, m); err != nil {
		return nil, engine.DeliveryResult{}, err
	}

	inn := score.CurrentScore()
	s.publish(models.EventScoreUpdate, m, map[string]interface{}{
		"score":           inn.Runs,
		"wickets":         inn.Wickets,
		"overs":           inn.OversDisplay(),
		"current_innings": score.CurrentInnings,
		"target":          score.Target,
		"batting_team":    s.teamName(ctx, score.BattingTeamID),
		"bowling_team":    s.teamName(ctx, score.BowlingTeamID),
		"status":          m.Status,
		"last_ball":       res.Entry,
		"all_out":         res.AllOut,
		"overs_done":      res.OversDone,
	})
	return m, res, nil
}

// EndInnings 结束第一局,切换到第二局并广播 innings_change
func (s *ScoringService) EndInnings(ctx context.Context, matchID int64) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.loadForMutation(ctx, matchID, models.SportCricket)
	if err != nil {
		return nil, err
	}

	score, err := engine.EndInnings(m.Cricket)
	if err != nil {
		return nil, err
	}
	m.Cricket = score

	if err := s.matches.Save(ctx, m); err != nil {
		return nil, err
	}

	batting := s.teamName(ctx, score.BattingTeamID)
	s.publish(models.EventInningsChange, m, map[string]interface{}{
		"current_innings": 2,
		"target":          score.Target,
		"batting_team":    batting,
		"bowling_team":    s.teamName(ctx, score.BowlingTeamID),
		"message":         "Second innings started. Target: " + strconv.Itoa(score.Target),
	})
	return m, nil
}

// ScoreKabaddi 记录一次卡巴迪计分动作
func (s *ScoringService) ScoreKabaddi(ctx context.Context, matchID, teamID int64, action engine.KabaddiAction, points int) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.loadForMutation(ctx, matchID, models.SportKabaddi)
	if err != nil {
		return nil, err
	}
	if !m.HasTeam(teamID) {
		return nil, common.ErrInvalidTeam
	}

	isTeam1 := teamID == m.Team1ID
	score, err := engine.ApplyKabaddiAction(m.Kabaddi, isTeam1, action, points)
	if err != nil {
		return nil, err
	}
	m.Kabaddi = score

	if err := s.matches.Save(ctx, m); err != nil {
		return nil, err
	}

	team1Name := s.teamName(ctx, m.Team1ID)
	team2Name := s.teamName(ctx, m.Team2ID)
	scoringTeam := team1Name
	if !isTeam1 {
		scoringTeam = team2Name
	}
	s.publish(models.EventScoreUpdate, m, map[string]interface{}{
		"team1_score":  kabaddiSideBody(team1Name, score.Team1),
		"team2_score":  kabaddiSideBody(team2Name, score.Team2),
		"current_half": score.CurrentHalf,
		"action":       action,
		"scoring_team": scoringTeam,
	})
	return m, nil
}

// SwitchHalf 切换下半场并广播 half_change。重复切换按无操作成功,
// 但事件仍会重播一次。
func (s *ScoringService) SwitchHalf(ctx context.Context, matchID int64) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.loadForMutation(ctx, matchID, models.SportKabaddi)
	if err != nil {
		return nil, err
	}

	score, err := engine.SwitchHalf(m.Kabaddi)
	if err != nil {
		return nil, err
	}
	m.Kabaddi = score

	if err := s.matches.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publish(models.EventHalfChange, m, map[string]interface{}{
		"current_half": 2,
		"message":      "Second half started",
	})
	return m, nil
}

// ScoreVolleyball 记录一次排球计分动作
func (s *ScoringService) ScoreVolleyball(ctx context.Context, matchID, teamID int64, action engine.VolleyballAction) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.loadForMutation(ctx, matchID, models.SportVolleyball)
	if err != nil {
		return nil, err
	}
	if !m.HasTeam(teamID) {
		return nil, common.ErrInvalidTeam
	}

	score, err := engine.ApplyVolleyballAction(m.Volleyball, engine.VolleyballInput{
		Action:  action,
		Team1:   teamID == m.Team1ID,
		Team1ID: m.Team1ID,
		Team2ID: m.Team2ID,
	})
	if err != nil {
		return nil, err
	}
	m.Volleyball = score

	if err := s.matches.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publish(models.EventScoreUpdate, m, map[string]interface{}{
		"current_set": score.CurrentSet,
		"serve_team":  s.teamName(ctx, score.ServeTeamID),
		"team1_score": volleyballSideBody(s.teamName(ctx, m.Team1ID), score.Team1),
		"team2_score": volleyballSideBody(s.teamName(ctx, m.Team2ID), score.Team2),
		"action":      action,
	})
	return m, nil
}

// CompleteMatch 结束比赛: 结算结果,更新两队生涯统计,广播 match_end
func (s *ScoringService) CompleteMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	lock := s.locks.get(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.matches.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	t1, err := s.teams.Load(ctx, m.Team1ID)
	if err != nil {
		return nil, err
	}
	t2, err := s.teams.Load(ctx, m.Team2ID)
	if err != nil {
		return nil, err
	}

	if err := engine.SettleMatch(m, t1, t2); err != nil {
		return nil, err
	}

	if err := s.matches.SaveSettled(ctx, m, t1, t2); err != nil {
		return nil, err
	}

	s.publish(models.EventMatchEnd, m, map[string]interface{}{
		"status":  m.Status,
		"result":  m.Result,
		"message": "Match finished! " + m.Result,
	})

	if s.notifier != nil {
		s.notifier.NotifyMatchEnd(m.ID, m.Result)
	}

	logger.Printf("[Scoring] Match %d completed: %s", m.ID, m.Result)
	return m, nil
}

// loadForMutation 计分变更的公共前置: 存在性 / 运动类型 / LIVE 状态
func (s *ScoringService) loadForMutation(ctx context.Context, matchID int64, sport models.Sport) (*models.Match, error) {
	m, err := s.matches.Load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Sport != sport {
		return nil, common.ErrWrongSport
	}
	if m.Status != models.StatusLive {
		return nil, common.ErrNotLive
	}
	return m, nil
}

// publish 组装并发布广播事件。此时持久化已提交,任何发布侧的
// 失败都只记日志,调用方看不到。
func (s *ScoringService) publish(kind models.EventKind, m *models.Match, body map[string]interface{}) {
	body["event"] = string(kind)
	body["match_id"] = m.ID
	body["sport"] = string(m.Sport)

	payload, err := json.Marshal(body)
	if err != nil {
		logger.Errorf("[Scoring] Failed to marshal %s event for match %d: %v", kind, m.ID, err)
		return
	}

	if err := s.broker.Produce(models.Event{
		Kind:    kind,
		MatchID: m.ID,
		Sport:   m.Sport,
		Payload: payload,
	}); err != nil {
		logger.Errorf("[Scoring] Failed to publish %s event for match %d: %v", kind, m.ID, err)
	}
}

// teamName 广播专用的队名查询,查不到时退回占位符
func (s *ScoringService) teamName(ctx context.Context, teamID int64) string {
	if teamID == 0 {
		return "TBA"
	}
	t, err := s.teams.Load(ctx, teamID)
	if err != nil {
		logger.Errorf("[Scoring] Failed to load team %d for broadcast: %v", teamID, err)
		return "TBA"
	}
	return t.Name
}

func kabaddiSideBody(name string, side models.KabaddiSide) map[string]interface{} {
	return map[string]interface{}{
		"name":          name,
		"raid_points":   side.RaidPoints,
		"tackle_points": side.TacklePoints,
		"all_outs":      side.AllOuts,
		"bonus_points":  side.BonusPoints,
		"total":         side.Total(),
	}
}

func volleyballSideBody(name string, side models.VolleyballSide) map[string]interface{} {
	setPoints := side.SetPoints
	if setPoints == nil {
		setPoints = []int{}
	}
	return map[string]interface{}{
		"name":           name,
		"sets":           side.Sets,
		"current_points": side.CurrentPoints,
		"set_points":     setPoints,
	}
}
