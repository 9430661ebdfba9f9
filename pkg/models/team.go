package models

// Player 队员信息
type Player struct {
	Name      string `json:"name"`
	IsCaptain bool   `json:"is_captain"`
}

// Team 队伍模型,生涯统计只在比赛结束时更新
type Team struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Sport      Sport    `json:"sport"`
	Captain    string   `json:"captain"`
	Phone      string   `json:"phone"`
	Email      string   `json:"email"`
	Players    []Player `json:"players"`
	Location   string   `json:"location"`
	Experience string   `json:"experience"`

	// 生涯统计
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	MatchesPlayed int `json:"matches_played"`
	Points        int `json:"points"`

	// 运动专项统计
	TotalRunsScored   int `json:"total_runs_scored"`
	TotalWicketsTaken int `json:"total_wickets_taken"`
	TotalRaidPoints   int `json:"total_raid_points"`
	TotalTacklePoints int `json:"total_tackle_points"`
	TotalSetsWon      int `json:"total_sets_won"`

	// 前端展示字段
	LogoColorStart string `json:"logo_color_start"`
	LogoColorEnd   string `json:"logo_color_end"`
	Symbol         string `json:"symbol"`
}
