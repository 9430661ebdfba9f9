package services

import (
	"fmt"
	"sync"

	"arena-service/logger"
	"arena-service/pkg/models"
)

// InMemoryBroker EventBroker 的进程内实现。每个消费者一条独立
// 缓冲通道,Produce 对所有消费者扇出;通道内部天然保序,所以
// 同一比赛的事件按提交顺序到达每个消费者。
type InMemoryBroker struct {
	consumers []chan models.Event
	buffer    int
	closed    bool
	mu        sync.RWMutex
}

// NewInMemoryBroker 创建 InMemoryBroker 实例
func NewInMemoryBroker(buffer int) *InMemoryBroker {
	if buffer <= 0 {
		buffer = 1000
	}
	return &InMemoryBroker{buffer: buffer}
}

// Produce 实现 EventBroker 接口。消费者通道满时丢弃并记日志,
// 不阻塞变更路径。
func (b *InMemoryBroker) Produce(ev models.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}
	if len(b.consumers) == 0 {
		logger.Printf("[InMemoryBroker] ⚠️ No active consumers. Event %s for match %d dropped.", ev.Kind, ev.MatchID)
		return nil
	}

	for _, ch := range b.consumers {
		select {
		case ch <- ev:
		default:
			logger.Printf("[InMemoryBroker] ⚠️ Consumer channel full. Event %s for match %d dropped.", ev.Kind, ev.MatchID)
		}
	}
	return nil
}

// Consume 实现 EventBroker 接口
func (b *InMemoryBroker) Consume() (<-chan models.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Event, b.buffer)
	b.consumers = append(b.consumers, ch)

	logger.Printf("[InMemoryBroker] Consumer subscribed. Total consumers: %d", len(b.consumers))
	return ch, nil
}

// Close 实现 EventBroker 接口
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, ch := range b.consumers {
		close(ch)
	}
	b.consumers = nil

	logger.Println("[InMemoryBroker] Closed all channels.")
	return nil
}
