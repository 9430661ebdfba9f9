package engine

import (
	"fmt"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// SettleMatch 结算比赛: 置为 COMPLETED,计算结果文案,并更新两队
// 生涯统计。生涯统计只在这里变更,比赛过程中从不触碰。
// COMPLETED 是终态,重复结算报 ErrInvalidState。
func SettleMatch(m *models.Match, t1, t2 *models.Team) error {
	if m == nil || t1 == nil || t2 == nil {
		return common.ErrNotFound
	}
	if m.Status != models.StatusLive {
		return common.ErrInvalidState
	}

	m.Status = models.StatusCompleted

	var winner, loser *models.Team

	switch m.Sport {
	case models.SportCricket:
		winner, loser = settleCricket(m, t1, t2)
	case models.SportKabaddi:
		winner, loser = settleKabaddi(m, t1, t2)
	case models.SportVolleyball:
		winner, loser = settleVolleyball(m, t1, t2)
	default:
		return common.ErrWrongSport
	}

	if winner != nil && loser != nil {
		winner.Wins++
		winner.MatchesPlayed++
		winner.Points += 2
		loser.Losses++
		loser.MatchesPlayed++
	}

	return nil
}

func settleCricket(m *models.Match, t1, t2 *models.Team) (winner, loser *models.Team) {
	sc := m.Cricket
	if sc == nil {
		return nil, nil
	}

	// 第二局开始后 BattingTeamID 已互换,指向追分方
	chaser, defender := teamByID(sc.BattingTeamID, m, t1, t2), teamByID(sc.BowlingTeamID, m, t1, t2)

	if sc.Target > 0 && sc.Innings2.Runs >= sc.Target {
		winner, loser = chaser, defender
		wicketsRemaining := 10 - sc.Innings2.Wickets
		m.Result = fmt.Sprintf("%s won by %d wickets", winner.Name, wicketsRemaining)
	} else {
		winner, loser = defender, chaser
		runsDifference := sc.Innings1.Runs - sc.Innings2.Runs
		m.Result = fmt.Sprintf("%s won by %d runs", winner.Name, runsDifference)
	}

	// 各队累加自己那一局的得分
	defender.TotalRunsScored += sc.Innings1.Runs
	chaser.TotalRunsScored += sc.Innings2.Runs
	defender.TotalWicketsTaken += sc.Innings2.Wickets
	chaser.TotalWicketsTaken += sc.Innings1.Wickets
	return winner, loser
}

func settleKabaddi(m *models.Match, t1, t2 *models.Team) (winner, loser *models.Team) {
	ks := m.Kabaddi
	if ks == nil {
		return nil, nil
	}

	team1Total := ks.Team1.Total()
	team2Total := ks.Team2.Total()

	switch {
	case team1Total > team2Total:
		winner, loser = t1, t2
		m.Result = fmt.Sprintf("%s won by %d points", t1.Name, team1Total-team2Total)
	case team2Total > team1Total:
		winner, loser = t2, t1
		m.Result = fmt.Sprintf("%s won by %d points", t2.Name, team2Total-team1Total)
	default:
		m.Result = "Match tied"
	}

	t1.TotalRaidPoints += ks.Team1.RaidPoints
	t1.TotalTacklePoints += ks.Team1.TacklePoints
	t2.TotalRaidPoints += ks.Team2.RaidPoints
	t2.TotalTacklePoints += ks.Team2.TacklePoints
	return winner, loser
}

func settleVolleyball(m *models.Match, t1, t2 *models.Team) (winner, loser *models.Team) {
	vs := m.Volleyball
	if vs == nil {
		return nil, nil
	}

	if vs.TTPPoints > 0 {
		// 总分制: 比当前累计分
		if vs.Team1.CurrentPoints > vs.Team2.CurrentPoints {
			winner, loser = t1, t2
			m.Result = fmt.Sprintf("%s won %d-%d", t1.Name, vs.Team1.CurrentPoints, vs.Team2.CurrentPoints)
		} else {
			winner, loser = t2, t1
			m.Result = fmt.Sprintf("%s won %d-%d", t2.Name, vs.Team2.CurrentPoints, vs.Team1.CurrentPoints)
		}
	} else {
		// 局制: 比赢得的局数
		if vs.Team1.Sets > vs.Team2.Sets {
			winner, loser = t1, t2
			m.Result = fmt.Sprintf("%s won %d-%d", t1.Name, vs.Team1.Sets, vs.Team2.Sets)
		} else {
			winner, loser = t2, t1
			m.Result = fmt.Sprintf("%s won %d-%d", t2.Name, vs.Team2.Sets, vs.Team1.Sets)
		}
	}

	t1.TotalSetsWon += vs.Team1.Sets
	t2.TotalSetsWon += vs.Team2.Sets
	return winner, loser
}

func teamByID(id int64, m *models.Match, t1, t2 *models.Team) *models.Team {
	if id == m.Team2ID {
		return t2
	}
	return t1
}
