package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"arena-service/config"
	"arena-service/logger"
	"arena-service/pkg/models"
)

// ReconnectConfig 重连配置
type ReconnectConfig struct {
	MaxRetries    int           // 最大重试次数 (0 = 无限重试)
	InitialDelay  time.Duration // 初始延迟
	MaxDelay      time.Duration // 最大延迟
	BackoffFactor float64       // 退避因子
}

// DefaultReconnectConfig 默认重连配置
func DefaultReconnectConfig() *ReconnectConfig {
	return &ReconnectConfig{
		MaxRetries:    0,                // 无限重试
		InitialDelay:  1 * time.Second,  // 1秒
		MaxDelay:      60 * time.Second, // 60秒
		BackoffFactor: 2.0,              // 指数退避
	}
}

// AMQPPublisher 将广播事件发布到外部 AMQP topic exchange,
// 供站外订阅方按 <sport>.<match_id>.<kind> 路由键选择性消费。
// 连接断开时指数退避重连,重连期间的事件丢弃并记日志,
// 发布失败绝不影响计分主路径。
type AMQPPublisher struct {
	config  *config.Config
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	done    chan bool
}

// NewAMQPPublisher 创建 AMQPPublisher 实例
func NewAMQPPublisher(cfg *config.Config) *AMQPPublisher {
	return &AMQPPublisher{
		config: cfg,
		done:   make(chan bool),
	}
}

// Start 建立连接并声明 exchange,支持自动重连
func (p *AMQPPublisher) Start() error {
	logger.Println("[AMQP] Starting publisher with auto-reconnect enabled")

	if err := p.connect(); err != nil {
		return fmt.Errorf("initial connection failed: %w", err)
	}

	// 监控连接状态并自动重连
	go p.monitorConnection(DefaultReconnectConfig())

	return nil
}

// connect 建立 AMQP 连接并声明 exchange
func (p *AMQPPublisher) connect() error {
	logger.Printf("[AMQP] Connecting to %s...", p.config.AMQPURL)

	conn, err := amqp.Dial(p.config.AMQPURL)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	// 声明 topic exchange
	if err := channel.ExchangeDeclare(
		p.config.AMQPExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = channel
	p.mu.Unlock()

	logger.Printf("[AMQP] ✅ Connected, exchange declared: %s", p.config.AMQPExchange)
	return nil
}

// Run 消费事件通道并逐条发布,通道关闭时返回
func (p *AMQPPublisher) Run(events <-chan models.Event) {
	for ev := range events {
		if err := p.publish(ev); err != nil {
			logger.Errorf("[AMQP] ⚠️  Failed to publish %s event for match %d: %v", ev.Kind, ev.MatchID, err)
		}
	}
	logger.Println("[AMQP] Event channel closed, publisher exiting")
}

// publish 发布单条事件
func (p *AMQPPublisher) publish(ev models.Event) error {
	p.mu.Lock()
	channel := p.channel
	p.mu.Unlock()

	if channel == nil {
		return fmt.Errorf("not connected")
	}

	return channel.Publish(
		p.config.AMQPExchange,
		RoutingKey(ev),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        ev.Payload,
		},
	)
}

// monitorConnection 监控连接状态并自动重连
func (p *AMQPPublisher) monitorConnection(cfg *ReconnectConfig) {
	retryCount := 0
	currentDelay := cfg.InitialDelay

	for {
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()

		closeErr := <-conn.NotifyClose(make(chan *amqp.Error))

		select {
		case <-p.done:
			return
		default:
		}

		if closeErr == nil {
			// 正常关闭
			logger.Println("[AMQP] Connection closed normally")
			return
		}

		logger.Errorf("[AMQP] ⚠️  Connection lost: %v", closeErr)

		for {
			if cfg.MaxRetries > 0 && retryCount >= cfg.MaxRetries {
				logger.Errorf("[AMQP] ❌ Max retries (%d) reached, giving up", cfg.MaxRetries)
				return
			}

			retryCount++
			logger.Printf("[AMQP] 🔄 Reconnecting in %v (attempt %d)...", currentDelay, retryCount)
			time.Sleep(currentDelay)

			if err := p.connect(); err != nil {
				logger.Errorf("[AMQP] ❌ Reconnect failed: %v", err)

				// 指数退避
				currentDelay = time.Duration(float64(currentDelay) * cfg.BackoffFactor)
				if currentDelay > cfg.MaxDelay {
					currentDelay = cfg.MaxDelay
				}
				continue
			}

			logger.Println("[AMQP] ✅ Reconnected successfully")
			retryCount = 0
			currentDelay = cfg.InitialDelay
			break
		}
	}
}

// Stop 关闭连接
func (p *AMQPPublisher) Stop() {
	logger.Println("[AMQP] Stopping publisher...")
	close(p.done)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
