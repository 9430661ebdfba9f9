package config

import (
	"fmt"
	"os"
)

type Config struct {
	// 数据库配置
	DatabaseURL string

	// 服务器配置
	Port string

	// 其他配置
	Environment string

	// 事件外发配置 (AMQP 为空时不启用)
	AMQPURL      string
	AMQPExchange string

	// 运维通知 webhook (为空时不启用)
	WebhookURL string

	// WebSocket 配置
	ClientSendBuffer int // 每个订阅者的发送缓冲区大小
}

func Load() *Config {
	return &Config{
		// 数据库配置
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/arena?sslmode=disable"),

		// 服务器配置
		Port: getEnv("PORT", "8080"),

		// 其他配置
		Environment: getEnv("ENVIRONMENT", "development"),

		// 事件外发配置
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "arena.events"),

		// 运维通知
		WebhookURL: getEnv("WEBHOOK_URL", ""),

		// WebSocket 配置
		ClientSendBuffer: getEnvInt("WS_SEND_BUFFER", 256),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int
	fmt.Sscanf(value, "%d", &result)
	if result == 0 {
		return defaultValue
	}
	return result
}
