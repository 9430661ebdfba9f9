package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect 连接到数据库
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate 运行数据库迁移
func Migrate(db *sql.DB) error {
	migrations := []string{
		// 队伍表,生涯统计只在比赛结束时更新
		`CREATE TABLE IF NOT EXISTS teams (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			sport VARCHAR(20) NOT NULL,
			captain VARCHAR(100),
			phone VARCHAR(30),
			email VARCHAR(100),
			players JSONB NOT NULL DEFAULT '[]',
			location VARCHAR(100),
			experience VARCHAR(50),
			wins INTEGER DEFAULT 0,
			losses INTEGER DEFAULT 0,
			matches_played INTEGER DEFAULT 0,
			points INTEGER DEFAULT 0,
			total_runs_scored INTEGER DEFAULT 0,
			total_wickets_taken INTEGER DEFAULT 0,
			total_raid_points INTEGER DEFAULT 0,
			total_tackle_points INTEGER DEFAULT 0,
			total_sets_won INTEGER DEFAULT 0,
			logo_color_start VARCHAR(10) DEFAULT '#1e40af',
			logo_color_end VARCHAR(10) DEFAULT '#2563eb',
			symbol VARCHAR(10) DEFAULT '🏆',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_sport ON teams(sport)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_points ON teams(points)`,

		// 比赛表。score 是按运动类型三选一的比分负载,
		// 逐球/逐分日志在负载内部,只在这个边界序列化
		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			sport VARCHAR(20) NOT NULL,
			team1_id BIGINT NOT NULL REFERENCES teams(id),
			team2_id BIGINT NOT NULL REFERENCES teams(id),
			match_date VARCHAR(50),
			match_time VARCHAR(20),
			venue VARCHAR(100),
			status VARCHAR(20) NOT NULL DEFAULT 'UPCOMING',
			result TEXT,
			toss_winner_id BIGINT,
			toss_choice VARCHAR(20),
			score JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_sport ON matches(sport)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
