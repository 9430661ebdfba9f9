package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"arena-service/logger"
)

// WebhookNotifier 运维 webhook 通知器
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	enabled    bool
}

// NewWebhookNotifier 创建 webhook 通知器
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	enabled := webhookURL != ""
	if enabled {
		logger.Println("[WebhookNotifier] Initialized with webhook")
	} else {
		logger.Println("[WebhookNotifier] Disabled (no webhook URL)")
	}

	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		enabled:    enabled,
	}
}

// WebhookMessage webhook 消息结构
type WebhookMessage struct {
	Event     string      `json:"event"`
	Text      string      `json:"text"`
	Detail    interface{} `json:"detail,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// send 发送消息
func (n *WebhookNotifier) send(message WebhookMessage) error {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// notify 发送并记录失败,通知失败从不影响调用方
func (n *WebhookNotifier) notify(message WebhookMessage) {
	if !n.enabled {
		return
	}
	message.Timestamp = time.Now().Format("2006-01-02 15:04:05")
	if err := n.send(message); err != nil {
		logger.Errorf("[WebhookNotifier] ⚠️  Failed to send %s notification: %v", message.Event, err)
	}
}

// NotifyServiceStart 通知服务启动
func (n *WebhookNotifier) NotifyServiceStart(port string, environment string) {
	n.notify(WebhookMessage{
		Event: "service_start",
		Text:  "🚀 Arena service started",
		Detail: map[string]interface{}{
			"port":        port,
			"environment": environment,
		},
	})
}

// NotifyMatchEnd 通知比赛结束
func (n *WebhookNotifier) NotifyMatchEnd(matchID int64, result string) {
	n.notify(WebhookMessage{
		Event: "match_end",
		Text:  fmt.Sprintf("🏁 Match %d finished: %s", matchID, result),
		Detail: map[string]interface{}{
			"match_id": matchID,
			"result":   result,
		},
	})
}

// NotifyError 通知错误
func (n *WebhookNotifier) NotifyError(component, message string) {
	n.notify(WebhookMessage{
		Event: "error",
		Text:  fmt.Sprintf("❌ [%s] %s", component, message),
	})
}
