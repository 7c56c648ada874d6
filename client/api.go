package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// UserProfile mirrors the user object returned by the login and profile
// endpoints.
type UserProfile struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	IsActive          bool   `json:"is_active"`
	MonthlyAllocation int    `json:"monthly_allocation"`
}

type Product struct {
	ID                uint       `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	ImageURL          string     `json:"image_url"`
	PointsPrice       int        `json:"points_price"`
	StockQuantity     int        `json:"stock_quantity"`
	Category          string     `json:"category"`
	Status            string     `json:"status"`
	UsageInstructions string     `json:"usage_instructions"`
	TermsConditions   string     `json:"terms_conditions"`
	ExpiryDate        *time.Time `json:"expiry_date"`
}

type Order struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	ProductID      uint      `json:"product_id"`
	Product        *Product  `json:"product,omitempty"`
	Quantity       int       `json:"quantity"`
	PointsSpent    int       `json:"points_spent"`
	Status         string    `json:"status"`
	RedemptionCode string    `json:"redemption_code"`
	CreatedAt      time.Time `json:"created_at"`
}

type HistoryEntry struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Amount        int       `json:"amount"`
	Type          string    `json:"type"`
	Reason        string    `json:"reason"`
	OperatorID    *uint     `json:"operator_id"`
	BalanceBefore int       `json:"balance_before"`
	BalanceAfter  int       `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at"`
}

type Balance struct {
	CurrentBalance   int    `json:"current_balance"`
	FormattedBalance string `json:"formatted_balance"`
}

type RedemptionResult struct {
	Success        bool   `json:"success"`
	OrderID        uint   `json:"order_id"`
	RedemptionCode string `json:"redemption_code"`
	PointsSpent    int    `json:"points_spent"`
	Status         string `json:"status"`
}

type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

type OrderPage struct {
	Items      []Order `json:"items"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

type HistoryPage struct {
	Items      []HistoryEntry `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// PageQuery holds common list parameters. Zero values are omitted and the
// server applies its defaults.
type PageQuery struct {
	Page     int
	PageSize int
}

func (q PageQuery) apply(values url.Values) {
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}
}

type ProductQuery struct {
	PageQuery
	Category      string
	Search        string
	AvailableOnly bool
}

// Me fetches the current user's profile from the server.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, "GET", "/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) Products(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	values := url.Values{}
	query.PageQuery.apply(values)
	if query.Category != "" {
		values.Set("category", query.Category)
	}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.AvailableOnly {
		values.Set("available_only", "true")
	}

	var page ProductPage
	if err := c.do(ctx, "GET", withQuery("/products", values), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ProductDetail is the product page payload: the product itself plus the
// server's availability verdict (stock, status and expiry combined).
type ProductDetail struct {
	Product     Product `json:"product"`
	IsAvailable bool    `json:"is_available"`
}

func (c *Client) Product(ctx context.Context, id uint) (*ProductDetail, error) {
	var detail ProductDetail
	if err := c.do(ctx, "GET", fmt.Sprintf("/products/%d", id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, "GET", "/products/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Redeem(ctx context.Context, productID uint, quantity int) (*RedemptionResult, error) {
	body := map[string]interface{}{"product_id": productID}
	if quantity > 0 {
		body["quantity"] = quantity
	}

	var result RedemptionResult
	if err := c.do(ctx, "POST", "/orders/redeem", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) OrderHistory(ctx context.Context, query PageQuery) (*OrderPage, error) {
	values := url.Values{}
	query.apply(values)

	var page OrderPage
	if err := c.do(ctx, "GET", withQuery("/orders/history", values), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Balance(ctx context.Context) (*Balance, error) {
	var balance Balance
	if err := c.do(ctx, "GET", "/points/balance", nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) PointsHistory(ctx context.Context, query PageQuery) (*HistoryPage, error) {
	values := url.Values{}
	query.apply(values)

	var page HistoryPage
	if err := c.do(ctx, "GET", withQuery("/points/history", values), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
