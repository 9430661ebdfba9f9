package engine

import (
	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// ApplyToss 记录掷币结果并按选择分配击球/突袭/发球权。
// 板球: bat/bowl 决定击球方;卡巴迪: raid/defend 决定首攻方;
// 排球: 胜方直接获得发球权。
func ApplyToss(m *models.Match, winnerID int64, choice string) error {
	if m == nil {
		return common.ErrNotFound
	}
	if m.Status == models.StatusCompleted {
		return common.ErrInvalidState
	}
	if !m.HasTeam(winnerID) {
		return common.ErrInvalidTeam
	}

	m.TossWinnerID = winnerID
	m.TossChoice = choice
	other := m.OtherTeam(winnerID)

	switch m.Sport {
	case models.SportCricket:
		if m.Cricket == nil {
			return common.ErrInvalidState
		}
		if choice == "bat" {
			m.Cricket.BattingTeamID = winnerID
			m.Cricket.BowlingTeamID = other
		} else {
			m.Cricket.BattingTeamID = other
			m.Cricket.BowlingTeamID = winnerID
		}
	case models.SportKabaddi:
		if m.Kabaddi == nil {
			return common.ErrInvalidState
		}
		if choice == "raid" {
			m.Kabaddi.RaidingTeamID = winnerID
		} else {
			m.Kabaddi.RaidingTeamID = other
		}
	case models.SportVolleyball:
		if m.Volleyball == nil {
			return common.ErrInvalidState
		}
		m.Volleyball.ServeTeamID = winnerID
	}

	return nil
}
