package models

import "fmt"

// Sport 运动类型
type Sport string

const (
	SportCricket    Sport = "cricket"
	SportKabaddi    Sport = "kabaddi"
	SportVolleyball Sport = "volleyball"
)

// ParseSport 解析运动类型
func ParseSport(s string) (Sport, error) {
	switch Sport(s) {
	case SportCricket, SportKabaddi, SportVolleyball:
		return Sport(s), nil
	default:
		return "", fmt.Errorf("unknown sport: %q", s)
	}
}

// MinPlayers 每种运动的最少报名人数
func (s Sport) MinPlayers() int {
	switch s {
	case SportCricket:
		return 11
	case SportKabaddi:
		return 7
	default:
		return 6
	}
}

// DefaultColors 每种运动的默认队标渐变色
func (s Sport) DefaultColors() (string, string) {
	switch s {
	case SportCricket:
		return "#16a34a", "#22c55e"
	case SportKabaddi:
		return "#ea580c", "#f97316"
	case SportVolleyball:
		return "#2563eb", "#3b82f6"
	default:
		return "#1e40af", "#2563eb"
	}
}

// DefaultSymbol 每种运动的默认队标符号
func (s Sport) DefaultSymbol() string {
	switch s {
	case SportCricket:
		return "🏏"
	case SportKabaddi:
		return "🤼"
	case SportVolleyball:
		return "🏐"
	default:
		return "🏆"
	}
}

// MatchStatus 比赛状态 (单向推进: UPCOMING → LIVE → COMPLETED)
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "UPCOMING"
	StatusLive      MatchStatus = "LIVE"
	StatusCompleted MatchStatus = "COMPLETED"
)
