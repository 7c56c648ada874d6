package websocket

// Event types for WebSocket messages
const (
	// Order events
	EventOrderRedeemed = "order:redeemed"

	// Points events
	EventPointsAdjusted  = "points:adjusted"
	EventPointsAllocated = "points:allocated"

	// Product events
	EventProductUpdated = "product:updated"

	// General events
	EventStatsRefresh = "stats:refresh"
)

// OrderEvent represents a redemption-related event
type OrderEvent struct {
	OrderID     uint   `json:"order_id"`
	UserID      uint   `json:"user_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	PointsSpent int    `json:"points_spent"`
	Status      string `json:"status"`
}

// PointsEvent represents a balance change event
type PointsEvent struct {
	UserID       uint   `json:"user_id"`
	Amount       int    `json:"amount"`
	Type         string `json:"type"`
	BalanceAfter int    `json:"balance_after"`
}

// ProductEvent represents a product catalog change
type ProductEvent struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Action      string `json:"action"` // created, updated, deleted, activated, deactivated
}

// StatsRefreshEvent signals that admin dashboards should refetch statistics
type StatsRefreshEvent struct {
	Reason string `json:"reason"`
}
