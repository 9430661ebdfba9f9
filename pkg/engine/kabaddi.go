package engine

import (
	"fmt"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// KabaddiAction 卡巴迪计分动作
type KabaddiAction string

const (
	ActionRaid        KabaddiAction = "raid"
	ActionTackle      KabaddiAction = "tackle"
	ActionSuperTackle KabaddiAction = "super_tackle"
	ActionBonus       KabaddiAction = "bonus"
	ActionSelfOut     KabaddiAction = "self_out"
	ActionAllOut      KabaddiAction = "all_out"
)

// ParseKabaddiAction 解析卡巴迪动作
func ParseKabaddiAction(s string) (KabaddiAction, error) {
	switch KabaddiAction(s) {
	case ActionRaid, ActionTackle, ActionSuperTackle, ActionBonus, ActionSelfOut, ActionAllOut:
		return KabaddiAction(s), nil
	default:
		return "", fmt.Errorf("%w: unknown kabaddi action %q", common.ErrInvalidInput, s)
	}
}

// ApplyKabaddiAction 对指定队伍应用计分动作。team1 标识动作所属队伍。
// self_out 的得分记给对手 (突袭失误利好防守方)。总分不在这里算,
// 由 KabaddiSide.Total 从四个组件现场推导。
func ApplyKabaddiAction(ks *models.KabaddiScore, team1 bool, action KabaddiAction, points int) (*models.KabaddiScore, error) {
	if ks == nil {
		return nil, common.ErrInvalidState
	}
	if points <= 0 {
		points = 1
	}

	out := ks.Clone()
	side, other := &out.Team1, &out.Team2
	if !team1 {
		side, other = &out.Team2, &out.Team1
	}

	switch action {
	case ActionRaid:
		side.RaidPoints += points
	case ActionTackle:
		side.TacklePoints++
	case ActionSuperTackle:
		side.TacklePoints += 2
	case ActionBonus:
		side.BonusPoints++
	case ActionSelfOut:
		other.RaidPoints++
	case ActionAllOut:
		// 全杀在派生总分里按 2 分计
		side.AllOuts++
	default:
		return nil, fmt.Errorf("%w: unknown kabaddi action %q", common.ErrInvalidInput, action)
	}

	return out, nil
}

// SwitchHalf 切换到下半场。已经在下半场时原样返回,按无操作成功处理。
func SwitchHalf(ks *models.KabaddiScore) (*models.KabaddiScore, error) {
	if ks == nil {
		return nil, common.ErrInvalidState
	}

	out := ks.Clone()
	out.CurrentHalf = 2
	return out, nil
}
