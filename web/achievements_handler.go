package web

import (
	"context"
	"fmt"
	"net/http"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// handleAchievements 成就榜: 积分榜前几名 + 各运动纪录 + 最近完赛
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	sportFilter := r.URL.Query().Get("sport")

	sports := []models.Sport{models.SportCricket, models.SportKabaddi, models.SportVolleyball}
	if sportFilter != "" {
		sport, err := models.ParseSport(sportFilter)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid sport filter", common.ErrInvalidInput))
			return
		}
		sports = []models.Sport{sport}
	}

	ctx := r.Context()
	topTeams := []map[string]interface{}{}
	records := map[string]interface{}{}

	for _, sport := range sports {
		teams, err := s.teams.TopTeams(ctx, sport, 5)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, team := range teams {
			topTeams = append(topTeams, map[string]interface{}{
				"id":     team.ID,
				"name":   team.Name,
				"sport":  team.Sport,
				"wins":   team.Wins,
				"losses": team.Losses,
				"points": team.Points,
				"symbol": team.Symbol,
			})
		}

		switch sport {
		case models.SportCricket:
			records["cricket"] = map[string]interface{}{
				"highest_runs": s.record(ctx, sport, "runs", "runs", func(t *models.Team) int { return t.TotalRunsScored }),
				"most_wickets": s.record(ctx, sport, "wickets", "wickets", func(t *models.Team) int { return t.TotalWicketsTaken }),
			}
		case models.SportKabaddi:
			records["kabaddi"] = map[string]interface{}{
				"most_raid_points":   s.record(ctx, sport, "raid_points", "points", func(t *models.Team) int { return t.TotalRaidPoints }),
				"most_tackle_points": s.record(ctx, sport, "tackle_points", "points", func(t *models.Team) int { return t.TotalTacklePoints }),
			}
		case models.SportVolleyball:
			records["volleyball"] = map[string]interface{}{
				"most_sets_won": s.record(ctx, sport, "sets_won", "sets", func(t *models.Team) int { return t.TotalSetsWon }),
			}
		}
	}

	recent, err := s.matches.RecentCompleted(ctx, 10)
	if err != nil {
		writeError(w, err)
		return
	}
	recentMatches := make([]map[string]interface{}, 0, len(recent))
	for _, m := range recent {
		recentMatches = append(recentMatches, s.matchSummary(r, m))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"top_teams":      topTeams,
		"records":        records,
		"recent_matches": recentMatches,
	})
}

// record 单项纪录条目,没有纪录保持者时值为空
func (s *Server) record(ctx context.Context, sport models.Sport, stat, valueKey string, value func(*models.Team) int) map[string]interface{} {
	holder, err := s.teams.RecordHolder(ctx, sport, stat)
	if err != nil {
		// 查询失败或还没有纪录保持者,按空纪录展示
		return map[string]interface{}{"team": nil, valueKey: 0}
	}
	return map[string]interface{}{
		"team":   holder.Name,
		valueKey: value(holder),
	}
}
