package services

import (
	"context"

	"arena-service/pkg/models"
)

// MatchStore 比赛存储接口。同一比赛由持锁的单一写者串行读写,
// 同进程内 Save 之后的 Load 必须可见。
type MatchStore interface {
	// Create 创建比赛
	Create(ctx context.Context, m *models.Match) error

	// Load 加载比赛,不存在时返回 common.ErrNotFound
	Load(ctx context.Context, matchID int64) (*models.Match, error)

	// Save 保存比赛的可变部分 (状态/结果/掷币/比分负载)
	Save(ctx context.Context, m *models.Match) error

	// SaveSettled 在一个事务里保存结算后的比赛和两队生涯统计
	SaveSettled(ctx context.Context, m *models.Match, t1, t2 *models.Team) error

	// List 按运动类型/状态过滤比赛列表,空串表示不过滤
	List(ctx context.Context, sport, status string) ([]*models.Match, error)

	// RecentCompleted 最近完赛的比赛
	RecentCompleted(ctx context.Context, limit int) ([]*models.Match, error)
}

// TeamStore 队伍存储接口
type TeamStore interface {
	// Create 注册队伍
	Create(ctx context.Context, t *models.Team) error

	// Load 加载队伍,不存在时返回 common.ErrNotFound
	Load(ctx context.Context, teamID int64) (*models.Team, error)

	// LoadByName 按名称加载队伍
	LoadByName(ctx context.Context, name string) (*models.Team, error)

	// List 按运动类型过滤队伍列表,空串表示不过滤
	List(ctx context.Context, sport string) ([]*models.Team, error)

	// TopTeams 按积分排序的前几名
	TopTeams(ctx context.Context, sport models.Sport, limit int) ([]*models.Team, error)

	// RecordHolder 查询某项专项统计的纪录保持者,stat 见实现白名单
	RecordHolder(ctx context.Context, sport models.Sport, stat string) (*models.Team, error)
}

// EventBroker 变更路径与分发侧之间的事件总线。每个消费者拿到
// 独立通道,同一比赛的事件按提交顺序送达。
type EventBroker interface {
	// Produce 发布事件给所有消费者
	Produce(ev models.Event) error

	// Consume 注册一个消费者,返回其消息通道
	Consume() (<-chan models.Event, error)

	// Close 关闭所有消费者通道
	Close() error
}
