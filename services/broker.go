package services

import (
	"fmt"

	"arena-service/pkg/models"
)

// RoutingKey 事件在 AMQP 交换机上的路由键: <sport>.<match_id>.<kind>
func RoutingKey(ev models.Event) string {
	return fmt.Sprintf("%s.%d.%s", ev.Sport, ev.MatchID, ev.Kind)
}
