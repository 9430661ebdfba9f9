package models

import "fmt"

// Match 比赛模型。Sport 在创建后不可变,比分负载按运动类型三选一,
// 其余两个指针恒为 nil。
type Match struct {
	ID      int64  `json:"id"`
	Sport   Sport  `json:"sport"`
	Team1ID int64  `json:"team1_id"`
	Team2ID int64  `json:"team2_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Venue   string `json:"venue"`

	Status MatchStatus `json:"status"`
	Result string      `json:"result,omitempty"`

	// 掷币/发球权
	TossWinnerID int64  `json:"toss_winner_id,omitempty"`
	TossChoice   string `json:"toss_choice,omitempty"`

	// 比分负载 (按 Sport 三选一)
	Cricket    *CricketScore    `json:"cricket,omitempty"`
	Kabaddi    *KabaddiScore    `json:"kabaddi,omitempty"`
	Volleyball *VolleyballScore `json:"volleyball,omitempty"`
}

// OtherTeam 返回对手队伍 ID
func (m *Match) OtherTeam(teamID int64) int64 {
	if teamID == m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}

// HasTeam 检查队伍是否参加该比赛
func (m *Match) HasTeam(teamID int64) bool {
	return teamID == m.Team1ID || teamID == m.Team2ID
}

// NewScorePayload 按运动类型初始化比分负载
func NewScorePayload(m *Match, totalOvers, halfDuration, ttpPoints, totalSets int) {
	switch m.Sport {
	case SportCricket:
		m.Cricket = &CricketScore{
			TotalOvers:     totalOvers,
			BattingTeamID:  m.Team1ID,
			BowlingTeamID:  m.Team2ID,
			CurrentInnings: 1,
		}
	case SportKabaddi:
		m.Kabaddi = &KabaddiScore{
			HalfDurationMinutes: halfDuration,
			CurrentHalf:         1,
			RaidingTeamID:       m.Team1ID,
		}
	case SportVolleyball:
		m.Volleyball = &VolleyballScore{
			TTPPoints:   ttpPoints,
			TotalSets:   totalSets,
			CurrentSet:  1,
			ServeTeamID: m.Team1ID,
		}
	}
}

// ExtraKind 板球额外球类型,空串表示正常球
type ExtraKind string

const (
	ExtraNone   ExtraKind = ""
	ExtraWide   ExtraKind = "WD"
	ExtraNoBall ExtraKind = "NB"
	ExtraBye    ExtraKind = "B"
	ExtraLegBye ExtraKind = "LB"
)

// IsLegal 该球是否计入每 over 六个合法球
func (e ExtraKind) IsLegal() bool {
	return e != ExtraWide && e != ExtraNoBall
}

// Delivery 逐球记录。Ball 序号由合法球计数推导而来,
// 所以额外球不会让序号漂移。
type Delivery struct {
	Innings    int       `json:"innings"`
	Ball       int       `json:"ball"`
	Runs       int       `json:"runs"`
	TotalRuns  int       `json:"total_runs"`
	Wicket     bool      `json:"wicket"`
	ExtraType  ExtraKind `json:"extra_type,omitempty"`
	BatsmanOut string    `json:"batsman_out,omitempty"`
	NewBatsman string    `json:"new_batsman,omitempty"`
}

// Innings 单局比分。Overs 是已完成的 over 数,Balls 是当前 over
// 内已投出的合法球数 (0-5),满 6 进位。不要用十进制小数运算。
type Innings struct {
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"`
	Overs   int `json:"overs"`
	Balls   int `json:"balls"`
}

// LegalBalls 累计合法球数
func (i Innings) LegalBalls() int {
	return i.Overs*6 + i.Balls
}

// OversDisplay 对外的 O.B 表示,如 "12.3"
func (i Innings) OversDisplay() string {
	return fmt.Sprintf("%d.%d", i.Overs, i.Balls)
}

// CricketScore 板球比分负载
type CricketScore struct {
	TotalOvers     int        `json:"total_overs"`
	BattingTeamID  int64      `json:"batting_team_id"`
	BowlingTeamID  int64      `json:"bowling_team_id"`
	Innings1       Innings    `json:"innings1"`
	Innings2       Innings    `json:"innings2"`
	CurrentInnings int        `json:"current_innings"` // 1 或 2,只升不降
	Target         int        `json:"target,omitempty"`
	Deliveries     []Delivery `json:"deliveries"`
}

// CurrentScore 返回当前局比分
func (c *CricketScore) CurrentScore() *Innings {
	if c.CurrentInnings == 2 {
		return &c.Innings2
	}
	return &c.Innings1
}

// Clone 深拷贝,规则引擎在副本上做变更
func (c *CricketScore) Clone() *CricketScore {
	out := *c
	out.Deliveries = append([]Delivery(nil), c.Deliveries...)
	return &out
}

// KabaddiSide 卡巴迪单队计分组件
type KabaddiSide struct {
	RaidPoints   int `json:"raid_points"`
	TacklePoints int `json:"tackle_points"`
	AllOuts      int `json:"all_outs"`
	BonusPoints  int `json:"bonus_points"`
}

// Total 派生总分 = 突袭 + 擒抱 + 2×全杀 + 额外分。
// 总分永远现算,不落库,避免与组件计数漂移。
func (s KabaddiSide) Total() int {
	return s.RaidPoints + s.TacklePoints + s.AllOuts*2 + s.BonusPoints
}

// KabaddiScore 卡巴迪比分负载
type KabaddiScore struct {
	HalfDurationMinutes int         `json:"half_duration_minutes"`
	CurrentHalf         int         `json:"current_half"` // 1 或 2
	RaidingTeamID       int64       `json:"raiding_team_id,omitempty"`
	Team1               KabaddiSide `json:"team1"`
	Team2               KabaddiSide `json:"team2"`
}

// Clone 深拷贝
func (k *KabaddiScore) Clone() *KabaddiScore {
	out := *k
	return &out
}

// PointEntry 排球逐分记录,Team 取 1 或 2,用于单步撤销
type PointEntry struct {
	Team int `json:"team"`
}

// VolleyballSide 排球单队比分
type VolleyballSide struct {
	Sets          int   `json:"sets"`
	CurrentPoints int   `json:"current_points"`
	SetPoints     []int `json:"set_points"`
}

// VolleyballScore 排球比分负载。TTPPoints 为 0 时按局制,
// 大于 0 时按总分制 (先到 TTPPoints 分者胜)。
type VolleyballScore struct {
	TTPPoints    int            `json:"ttp_points"`
	TotalSets    int            `json:"total_sets"`
	CurrentSet   int            `json:"current_set"`
	ServeTeamID  int64          `json:"serve_team_id"`
	Team1        VolleyballSide `json:"team1"`
	Team2        VolleyballSide `json:"team2"`
	PointHistory []PointEntry   `json:"point_history"`
}

// Clone 深拷贝
func (v *VolleyballScore) Clone() *VolleyballScore {
	out := *v
	out.Team1.SetPoints = append([]int(nil), v.Team1.SetPoints...)
	out.Team2.SetPoints = append([]int(nil), v.Team2.SetPoints...)
	out.PointHistory = append([]PointEntry(nil), v.PointHistory...)
	return &out
}
