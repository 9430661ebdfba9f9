package engine

import (
	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// DeliveryInput 一次投球的输入
type DeliveryInput struct {
	Runs       int
	Wicket     bool
	Extra      models.ExtraKind
	BatsmanOut string
	NewBatsman string
}

// DeliveryResult 投球转移的派生结果。AllOut/OversDone 只做上报,
// 引擎本身不会因此拒绝后续投球,是否停止由调用方决定。
type DeliveryResult struct {
	Entry     models.Delivery
	AllOut    bool
	OversDone bool
}

// ApplyDelivery 对当前局应用一次投球。宽球/无效球记 1+申报跑分,
// 不消耗合法球;其余投球记申报跑分并推进合法球计数,满 6 球进位。
// 在副本上执行,失败不会留下半套状态。
func ApplyDelivery(sc *models.CricketScore, in DeliveryInput) (*models.CricketScore, DeliveryResult, error) {
	if sc == nil {
		return nil, DeliveryResult{}, common.ErrInvalidState
	}
	if sc.CurrentInnings != 1 && sc.CurrentInnings != 2 {
		return nil, DeliveryResult{}, common.ErrInvalidState
	}
	if in.Runs < 0 {
		return nil, DeliveryResult{}, common.ErrInvalidInput
	}
	switch in.Extra {
	case models.ExtraNone, models.ExtraWide, models.ExtraNoBall, models.ExtraBye, models.ExtraLegBye:
	default:
		return nil, DeliveryResult{}, common.ErrInvalidInput
	}

	out := sc.Clone()
	inn := out.CurrentScore()

	// 球序号来自合法球计数,不是日志长度,额外球再多也不会漂移
	entry := models.Delivery{
		Innings:   out.CurrentInnings,
		Ball:      inn.LegalBalls() + 1,
		Runs:      in.Runs,
		Wicket:    in.Wicket,
		ExtraType: in.Extra,
	}

	if !in.Extra.IsLegal() {
		// 宽球/无效球: 罚 1 分加申报跑分,合法球计数不动
		inn.Runs += 1 + in.Runs
		entry.TotalRuns = 1 + in.Runs
	} else {
		inn.Runs += in.Runs
		entry.TotalRuns = in.Runs
		inn.Balls++
		if inn.Balls == 6 {
			inn.Overs++
			inn.Balls = 0
		}
	}

	if in.Wicket {
		inn.Wickets++
		entry.BatsmanOut = in.BatsmanOut
		entry.NewBatsman = in.NewBatsman
	}

	out.Deliveries = append(out.Deliveries, entry)

	res := DeliveryResult{
		Entry:     entry,
		AllOut:    inn.Wickets >= 10,
		OversDone: out.TotalOvers > 0 && inn.Overs >= out.TotalOvers,
	}
	return out, res, nil
}

// EndInnings 结束第一局: 设置追分目标 = 第一局得分 + 1,切到第二局,
// 互换击球/投球方。只允许调用一次,第二局已开始时报 ErrInvalidState。
func EndInnings(sc *models.CricketScore) (*models.CricketScore, error) {
	if sc == nil || sc.CurrentInnings != 1 {
		return nil, common.ErrInvalidState
	}

	out := sc.Clone()
	out.Target = out.Innings1.Runs + 1
	out.CurrentInnings = 2
	out.BattingTeamID, out.BowlingTeamID = out.BowlingTeamID, out.BattingTeamID
	return out, nil
}
