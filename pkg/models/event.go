package models

// EventKind 广播事件类型
type EventKind string

const (
	EventToss          EventKind = "toss"
	EventScoreUpdate   EventKind = "score_update"
	EventInningsChange EventKind = "innings_change"
	EventHalfChange    EventKind = "half_change"
	EventMatchEnd      EventKind = "match_end"
)

// Event 推送给订阅者的状态变更事件。Payload 是已序列化的
// JSON 消息体,在变更路径上组装一次,之后原样透传。
type Event struct {
	Kind    EventKind
	MatchID int64
	Sport   Sport
	Payload []byte
}
