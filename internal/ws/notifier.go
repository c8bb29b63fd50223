package ws

import "log"

// OrderNotifier pushes order status changes to the order's room. It satisfies
// the transaction processor's notifier contract; broadcast problems are
// logged and swallowed so callback processing is never affected.
type OrderNotifier struct{}

// NewOrderNotifier creates an order status notifier
func NewOrderNotifier() *OrderNotifier {
	return &OrderNotifier{}
}

// NotifyOrderStatus broadcasts the new status to clients watching the order
func (n *OrderNotifier) NotifyOrderStatus(orderID int, status, reason string) {
	if Server == nil {
		return
	}

	room := orderRoom(orderID)
	BroadcastToRoom(room, "order:status", map[string]interface{}{
		"orderId": orderID,
		"status":  status,
		"reason":  reason,
	})
	log.Printf("[WebSocket] Pushed status %s to %s", status, room)
}
