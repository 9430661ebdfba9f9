package engine

import (
	"fmt"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// VolleyballAction 排球计分动作
type VolleyballAction string

const (
	ActionPoint       VolleyballAction = "point"
	ActionUndo        VolleyballAction = "undo"
	ActionToggleServe VolleyballAction = "toggle_serve"
	ActionSetWon      VolleyballAction = "set_won"
)

// ParseVolleyballAction 解析排球动作
func ParseVolleyballAction(s string) (VolleyballAction, error) {
	switch VolleyballAction(s) {
	case ActionPoint, ActionUndo, ActionToggleServe, ActionSetWon:
		return VolleyballAction(s), nil
	default:
		return "", fmt.Errorf("%w: unknown volleyball action %q", common.ErrInvalidInput, s)
	}
}

// VolleyballInput 排球动作输入。Team1 标识动作所属队伍,
// Team1ID/Team2ID 用于翻转发球权。
type VolleyballInput struct {
	Action  VolleyballAction
	Team1   bool
	Team1ID int64
	Team2ID int64
}

// ApplyVolleyballAction 应用排球计分动作。
//
// point 加 1 分并压入撤销栈;undo 弹栈并对记录的队伍减 1 分
// (下限 0),空栈时是无操作而不是错误;set_won 把两队当前分各自
// 追加到局分历史,得局队局数加 1,双方当前分清零,局序号推进,
// 撤销栈清空。几分算赢一局由调用方判断,引擎不做门槛校验。
func ApplyVolleyballAction(vs *models.VolleyballScore, in VolleyballInput) (*models.VolleyballScore, error) {
	if vs == nil {
		return nil, common.ErrInvalidState
	}

	out := vs.Clone()
	side := &out.Team1
	if !in.Team1 {
		side = &out.Team2
	}

	switch in.Action {
	case ActionPoint:
		side.CurrentPoints++
		team := 1
		if !in.Team1 {
			team = 2
		}
		out.PointHistory = append(out.PointHistory, models.PointEntry{Team: team})

	case ActionUndo:
		n := len(out.PointHistory)
		if n == 0 {
			return out, nil
		}
		last := out.PointHistory[n-1]
		out.PointHistory = out.PointHistory[:n-1]
		undoSide := &out.Team1
		if last.Team == 2 {
			undoSide = &out.Team2
		}
		if undoSide.CurrentPoints > 0 {
			undoSide.CurrentPoints--
		}

	case ActionToggleServe:
		if out.ServeTeamID == in.Team1ID {
			out.ServeTeamID = in.Team2ID
		} else {
			out.ServeTeamID = in.Team1ID
		}

	case ActionSetWon:
		out.Team1.SetPoints = append(out.Team1.SetPoints, out.Team1.CurrentPoints)
		out.Team2.SetPoints = append(out.Team2.SetPoints, out.Team2.CurrentPoints)
		side.Sets++
		out.Team1.CurrentPoints = 0
		out.Team2.CurrentPoints = 0
		out.CurrentSet++
		out.PointHistory = nil

	default:
		return nil, fmt.Errorf("%w: unknown volleyball action %q", common.ErrInvalidInput, in.Action)
	}

	return out, nil
}
