package services

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
	ws "github.com/awsomeshop/rewards-be/websocket"
)

var (
	ErrInsufficientBalance = errors.New("insufficient points")
	ErrZeroAmount          = errors.New("amount must be non-zero")
	ErrReasonRequired      = errors.New("reason is required")
	ErrUserNotFound        = errors.New("user not found")
)

type PointsService struct{}

func NewPointsService() *PointsService {
	return &PointsService{}
}

// lockForUpdate takes a row lock on databases that support it. SQLite (used
// by the test suite) has a single writer and no FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// apply posts one signed delta against a user's balance inside the caller's
// transaction: locks the points row, enforces the zero floor, updates the
// balance and appends the matching ledger entry. Every balance mutation in
// the system funnels through here.
func (s *PointsService) apply(tx *gorm.DB, userID uint, amount int, entryType models.EntryType, reason string, operatorID *uint) (*models.PointsHistory, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var points models.Points
	err := lockForUpdate(tx).Where("user_id = ?", userID).First(&points).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		points = models.Points{UserID: userID, CurrentBalance: 0}
		if err := tx.Create(&points).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	balanceBefore := points.CurrentBalance
	balanceAfter := balanceBefore + amount

	if balanceAfter < 0 {
		return nil, ErrInsufficientBalance
	}

	if err := tx.Model(&points).Update("current_balance", balanceAfter).Error; err != nil {
		return nil, err
	}

	entry := models.PointsHistory{
		UserID:        userID,
		Amount:        amount,
		Type:          entryType,
		Reason:        reason,
		OperatorID:    operatorID,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// AddPoints credits a positive amount to a user.
func (s *PointsService) AddPoints(userID uint, amount int, reason string, entryType models.EntryType, operatorID *uint) (*models.PointsHistory, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	var entry *models.PointsHistory
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.apply(tx, userID, amount, entryType, reason, operatorID)
		return txErr
	})
	return entry, err
}

// DeductPoints debits a positive amount from a user, rejecting overdrafts.
func (s *PointsService) DeductPoints(userID uint, amount int, reason string, entryType models.EntryType, operatorID *uint) (*models.PointsHistory, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	var entry *models.PointsHistory
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.apply(tx, userID, -amount, entryType, reason, operatorID)
		return txErr
	})
	return entry, err
}

// AdjustPoints applies an operator-supplied signed delta with a mandatory
// reason. Adjustments that would drive the balance negative are rejected.
func (s *PointsService) AdjustPoints(userID uint, amount int, reason string, operatorID uint) (*models.PointsHistory, error) {
	var entry *models.PointsHistory
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var txErr error
		entry, txErr = s.apply(tx, userID, amount, models.EntryAdjustment, reason, &operatorID)
		return txErr
	})
	if err == nil && config.WSHub != nil {
		config.WSHub.BroadcastEvent(ws.EventPointsAdjusted, ws.PointsEvent{
			UserID:       userID,
			Amount:       amount,
			Type:         string(models.EntryAdjustment),
			BalanceAfter: entry.BalanceAfter,
		})
	}
	return entry, err
}

// BulkAllocate credits points to the given users, or to every active
// employee when userIDs is empty. When amount is zero each user's own
// monthly allocation is used; users with no allocation are skipped.
// Failures on individual users do not roll back the others.
func (s *PointsService) BulkAllocate(amount int, reason string, userIDs []uint, operatorID uint) (int, int, error) {
	if amount < 0 {
		return 0, 0, errors.New("amount must not be negative")
	}
	if reason == "" {
		return 0, 0, ErrReasonRequired
	}

	var users []models.User
	query := config.DB.Where("is_active = ? AND role = ?", true, models.RoleEmployee)
	if len(userIDs) > 0 {
		query = query.Where("id IN ?", userIDs)
	}
	if err := query.Find(&users).Error; err != nil {
		return 0, 0, err
	}

	allocatedUsers := 0
	allocatedPoints := 0
	for _, user := range users {
		credit := amount
		if credit == 0 {
			credit = user.MonthlyAllocation
		}
		if credit <= 0 {
			continue
		}
		entry, err := s.AddPoints(user.ID, credit, reason, models.EntryAllocation, &operatorID)
		if err != nil {
			return allocatedUsers, allocatedPoints, err
		}
		allocatedUsers++
		allocatedPoints += credit

		if config.WSHub != nil {
			config.WSHub.BroadcastEvent(ws.EventPointsAllocated, ws.PointsEvent{
				UserID:       user.ID,
				Amount:       credit,
				Type:         string(models.EntryAllocation),
				BalanceAfter: entry.BalanceAfter,
			})
		}
	}

	if allocatedUsers > 0 && config.WSHub != nil {
		config.WSHub.BroadcastEvent(ws.EventStatsRefresh, ws.StatsRefreshEvent{Reason: "points_allocated"})
	}

	return allocatedUsers, allocatedPoints, nil
}

// GetBalance returns the user's current balance, zero for users with no
// points record yet.
func (s *PointsService) GetBalance(userID uint) (int, error) {
	var points models.Points
	err := config.DB.Where("user_id = ?", userID).First(&points).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return points.CurrentBalance, nil
}

type HistoryFilter struct {
	UserID   uint // zero means all users (admin view)
	Type     models.EntryType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// GetHistory returns ledger entries newest first.
func (s *PointsService) GetHistory(filter HistoryFilter) ([]models.PointsHistory, int64, error) {
	page, pageSize := NormalizePage(filter.Page, filter.PageSize)

	query := config.DB.Model(&models.PointsHistory{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.PointsHistory
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error

	return entries, total, err
}

type PointsOverview struct {
	TotalUsers           int64   `json:"total_users"`
	TotalPointsAllocated int64   `json:"total_points_allocated"`
	TotalPointsUsed      int64   `json:"total_points_used"`
	TotalPointsRemaining int64   `json:"total_points_remaining"`
	AverageBalance       float64 `json:"average_balance"`
}

// Overview aggregates the whole points system for the admin dashboard.
func (s *PointsService) Overview() (*PointsOverview, error) {
	var overview PointsOverview

	if err := config.DB.Model(&models.User{}).
		Where("is_active = ?", true).
		Count(&overview.TotalUsers).Error; err != nil {
		return nil, err
	}

	var remaining, average float64
	row := config.DB.Model(&models.Points{}).
		Select("COALESCE(SUM(current_balance), 0), COALESCE(AVG(current_balance), 0)").
		Row()
	if err := row.Scan(&remaining, &average); err != nil {
		return nil, err
	}
	overview.TotalPointsRemaining = int64(remaining)
	overview.AverageBalance = average

	if err := config.DB.Model(&models.PointsHistory{}).
		Where("amount > 0").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&overview.TotalPointsAllocated).Error; err != nil {
		return nil, err
	}

	var used int64
	if err := config.DB.Model(&models.PointsHistory{}).
		Where("amount < 0").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&used).Error; err != nil {
		return nil, err
	}
	overview.TotalPointsUsed = -used

	return &overview, nil
}

// FormatPoints renders a balance with thousands separators (1234567 ->
// "1,234,567") for display alongside the raw number.
func FormatPoints(points int) string {
	negative := points < 0
	if negative {
		points = -points
	}
	digits := strconv.Itoa(points)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	if negative {
		return "-" + string(out)
	}
	return string(out)
}
