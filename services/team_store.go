package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// PostgresTeamStore TeamStore 的 Postgres 实现
type PostgresTeamStore struct {
	db *sql.DB
}

// NewPostgresTeamStore 创建队伍存储
func NewPostgresTeamStore(db *sql.DB) *PostgresTeamStore {
	return &PostgresTeamStore{db: db}
}

const teamColumns = `id, name, sport, captain, phone, email, players, location, experience,
	wins, losses, matches_played, points,
	total_runs_scored, total_wickets_taken, total_raid_points, total_tackle_points, total_sets_won,
	logo_color_start, logo_color_end, symbol`

// Create 注册队伍
func (s *PostgresTeamStore) Create(ctx context.Context, t *models.Team) error {
	players, err := json.Marshal(t.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	query := `
		INSERT INTO teams (name, sport, captain, phone, email, players, location, experience,
			logo_color_start, logo_color_end, symbol)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = s.db.QueryRowContext(ctx, query,
		t.Name, t.Sport, t.Captain, t.Phone, t.Email, players, t.Location, t.Experience,
		t.LogoColorStart, t.LogoColorEnd, t.Symbol,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("%w: insert team: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// Load 加载队伍
func (s *PostgresTeamStore) Load(ctx context.Context, teamID int64) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return s.loadOne(s.db.QueryRowContext(ctx, query, teamID))
}

// LoadByName 按名称加载队伍
func (s *PostgresTeamStore) LoadByName(ctx context.Context, name string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE name = $1`
	return s.loadOne(s.db.QueryRowContext(ctx, query, name))
}

// List 按运动类型过滤队伍列表
func (s *PostgresTeamStore) List(ctx context.Context, sport string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE ($1 = '' OR sport = $1) ORDER BY id`
	return s.queryTeams(ctx, query, sport)
}

// TopTeams 按积分排序的前几名
func (s *PostgresTeamStore) TopTeams(ctx context.Context, sport models.Sport, limit int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE sport = $1 ORDER BY points DESC LIMIT $2`
	return s.queryTeams(ctx, query, string(sport), limit)
}

// RecordHolder 查询某项专项统计的纪录保持者。
// stat 走白名单映射,不拼接进 SQL。
func (s *PostgresTeamStore) RecordHolder(ctx context.Context, sport models.Sport, stat string) (*models.Team, error) {
	var column string
	switch stat {
	case "runs":
		column = "total_runs_scored"
	case "wickets":
		column = "total_wickets_taken"
	case "raid_points":
		column = "total_raid_points"
	case "tackle_points":
		column = "total_tackle_points"
	case "sets_won":
		column = "total_sets_won"
	default:
		return nil, fmt.Errorf("%w: unknown stat %q", common.ErrInvalidInput, stat)
	}

	query := `SELECT ` + teamColumns + ` FROM teams WHERE sport = $1 ORDER BY ` + column + ` DESC LIMIT 1`
	return s.loadOne(s.db.QueryRowContext(ctx, query, string(sport)))
}

func (s *PostgresTeamStore) loadOne(row *sql.Row) (*models.Team, error) {
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load team: %v", common.ErrStoreUnavailable, err)
	}
	return t, nil
}

func (s *PostgresTeamStore) queryTeams(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query teams: %v", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan team: %v", common.ErrStoreUnavailable, err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	var players []byte

	err := row.Scan(&t.ID, &t.Name, &t.Sport, &t.Captain, &t.Phone, &t.Email, &players,
		&t.Location, &t.Experience,
		&t.Wins, &t.Losses, &t.MatchesPlayed, &t.Points,
		&t.TotalRunsScored, &t.TotalWicketsTaken, &t.TotalRaidPoints, &t.TotalTacklePoints, &t.TotalSetsWon,
		&t.LogoColorStart, &t.LogoColorEnd, &t.Symbol)
	if err != nil {
		return nil, err
	}

	if len(players) > 0 {
		if err := json.Unmarshal(players, &t.Players); err != nil {
			return nil, err
		}
	}
	return &t, nil
}
