package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"arena-service/pkg/common"
	"arena-service/pkg/models"
)

// PostgresMatchStore MatchStore 的 Postgres 实现。
// 比分负载只在这里序列化成 JSONB,内存里始终是带类型的结构。
type PostgresMatchStore struct {
	db *sql.DB
}

// NewPostgresMatchStore 创建比赛存储
func NewPostgresMatchStore(db *sql.DB) *PostgresMatchStore {
	return &PostgresMatchStore{db: db}
}

const matchColumns = `id, sport, team1_id, team2_id, match_date, match_time, venue,
	status, result, toss_winner_id, toss_choice, score`

// Create 创建比赛
func (s *PostgresMatchStore) Create(ctx context.Context, m *models.Match) error {
	score, err := marshalScore(m)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches (sport, team1_id, team2_id, match_date, match_time, venue, status, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = s.db.QueryRowContext(ctx, query,
		m.Sport, m.Team1ID, m.Team2ID, m.Date, m.Time, m.Venue, m.Status, score,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("%w: insert match: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// Load 加载比赛
func (s *PostgresMatchStore) Load(ctx context.Context, matchID int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(s.db.QueryRowContext(ctx, query, matchID))
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load match %d: %v", common.ErrStoreUnavailable, matchID, err)
	}
	return m, nil
}

// Save 保存比赛的可变部分
func (s *PostgresMatchStore) Save(ctx context.Context, m *models.Match) error {
	score, err := marshalScore(m)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches
		SET status = $1, result = NULLIF($2, ''), toss_winner_id = NULLIF($3, 0),
		    toss_choice = NULLIF($4, ''), score = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := s.db.ExecContext(ctx, query,
		m.Status, m.Result, m.TossWinnerID, m.TossChoice, score, time.Now(), m.ID)
	if err != nil {
		return fmt.Errorf("%w: save match %d: %v", common.ErrStoreUnavailable, m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// SaveSettled 在一个事务里保存结算后的比赛和两队生涯统计,
// 避免结算只写进一半
func (s *PostgresMatchStore) SaveSettled(ctx context.Context, m *models.Match, t1, t2 *models.Team) error {
	score, err := marshalScore(m)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin settle tx: %v", common.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE matches
		SET status = $1, result = NULLIF($2, ''), score = $3, updated_at = $4
		WHERE id = $5
	`, m.Status, m.Result, score, time.Now(), m.ID)
	if err != nil {
		return fmt.Errorf("%w: settle match %d: %v", common.ErrStoreUnavailable, m.ID, err)
	}

	for _, t := range []*models.Team{t1, t2} {
		_, err = tx.ExecContext(ctx, `
			UPDATE teams
			SET wins = $1, losses = $2, matches_played = $3, points = $4,
			    total_runs_scored = $5, total_wickets_taken = $6,
			    total_raid_points = $7, total_tackle_points = $8, total_sets_won = $9
			WHERE id = $10
		`, t.Wins, t.Losses, t.MatchesPlayed, t.Points,
			t.TotalRunsScored, t.TotalWicketsTaken,
			t.TotalRaidPoints, t.TotalTacklePoints, t.TotalSetsWon, t.ID)
		if err != nil {
			return fmt.Errorf("%w: settle team %d: %v", common.ErrStoreUnavailable, t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit settle: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// List 按运动类型/状态过滤比赛列表
func (s *PostgresMatchStore) List(ctx context.Context, sport, status string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE ($1 = '' OR sport = $1) AND ($2 = '' OR status = $2)
		ORDER BY id`
	return s.queryMatches(ctx, query, sport, status)
}

// RecentCompleted 最近完赛的比赛
func (s *PostgresMatchStore) RecentCompleted(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = 'COMPLETED' ORDER BY id DESC LIMIT $1`
	return s.queryMatches(ctx, query, limit)
}

func (s *PostgresMatchStore) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query matches: %v", common.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", common.ErrStoreUnavailable, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var result, tossChoice sql.NullString
	var tossWinner sql.NullInt64
	var score []byte

	err := row.Scan(&m.ID, &m.Sport, &m.Team1ID, &m.Team2ID, &m.Date, &m.Time, &m.Venue,
		&m.Status, &result, &tossWinner, &tossChoice, &score)
	if err != nil {
		return nil, err
	}

	m.Result = result.String
	m.TossWinnerID = tossWinner.Int64
	m.TossChoice = tossChoice.String

	if err := unmarshalScore(&m, score); err != nil {
		return nil, err
	}
	return &m, nil
}

// marshalScore 比分负载按运动类型序列化
func marshalScore(m *models.Match) ([]byte, error) {
	var payload interface{}
	switch m.Sport {
	case models.SportCricket:
		payload = m.Cricket
	case models.SportKabaddi:
		payload = m.Kabaddi
	case models.SportVolleyball:
		payload = m.Volleyball
	default:
		return nil, common.ErrWrongSport
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal score payload: %w", err)
	}
	return data, nil
}

// unmarshalScore 按运动类型还原比分负载
func unmarshalScore(m *models.Match, data []byte) error {
	if len(data) == 0 {
		data = []byte("{}")
	}

	switch m.Sport {
	case models.SportCricket:
		m.Cricket = &models.CricketScore{}
		return json.Unmarshal(data, m.Cricket)
	case models.SportKabaddi:
		m.Kabaddi = &models.KabaddiScore{}
		return json.Unmarshal(data, m.Kabaddi)
	case models.SportVolleyball:
		m.Volleyball = &models.VolleyballScore{}
		return json.Unmarshal(data, m.Volleyball)
	default:
		return common.ErrWrongSport
	}
}
