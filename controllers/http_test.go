package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/awsomeshop/rewards-be/config"
	"github.com/awsomeshop/rewards-be/models"
	"github.com/awsomeshop/rewards-be/routes"
	"github.com/awsomeshop/rewards-be/services"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.AutoMigrate(db))
	config.DB = db
	t.Cleanup(func() {
		sqlDB.Close()
		config.DB = nil
	})

	return routes.SetupRoutes()
}

var httpUserSeq int

// seedUser inserts a user with a known password and returns a valid access
// token for it.
func seedUser(t *testing.T, role models.UserRole, balance int) (*models.User, string) {
	t.Helper()
	httpUserSeq++

	authSvc := services.NewAuthService()
	username := fmt.Sprintf("httpuser%d", httpUserSeq)
	user, err := authSvc.CreateUser(username, username+"@example.com", "s3cret-pass", role, 0)
	require.NoError(t, err)

	if balance > 0 {
		_, err = services.NewPointsService().AddPoints(user.ID, balance, "Allocation", models.EntryAllocation, nil)
		require.NoError(t, err)
	}

	tokens, err := authSvc.GenerateTokens(user)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func errorEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decodeBody(t, recorder)
	envelope, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "response has no error envelope: %s", recorder.Body.String())
	return envelope
}

func TestLoginEndpoint(t *testing.T) {
	router := setupRouter(t)
	user, _ := seedUser(t, models.RoleEmployee, 0)

	recorder := doRequest(t, router, "POST", "/api/v1/auth/login", "",
		map[string]string{"username": user.Username, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	envelope := errorEnvelope(t, recorder)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope["code"])
	assert.NotEmpty(t, envelope["message"])
	assert.NotEmpty(t, envelope["timestamp"])
	assert.NotEmpty(t, envelope["request_id"])

	recorder = doRequest(t, router, "POST", "/api/v1/auth/login", "",
		map[string]string{"username": user.Username, "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.Equal(t, "bearer", body["token_type"])
	loggedIn, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, user.Username, loggedIn["username"])
	assert.Nil(t, loggedIn["password"], "password hash must never be serialized")
}

func TestRefreshEndpoint(t *testing.T) {
	router := setupRouter(t)
	user, _ := seedUser(t, models.RoleEmployee, 0)

	tokens, err := services.NewAuthService().GenerateTokens(user)
	require.NoError(t, err)

	recorder := doRequest(t, router, "POST", "/api/v1/auth/refresh", "",
		map[string]string{"refresh_token": tokens.RefreshToken, "username": user.Username})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.NotEmpty(t, body["access_token"])
	assert.Nil(t, body["refresh_token"], "refresh tokens are not rotated")

	// An access token on the refresh endpoint is rejected.
	recorder = doRequest(t, router, "POST", "/api/v1/auth/refresh", "",
		map[string]string{"refresh_token": tokens.AccessToken, "username": user.Username})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errorEnvelope(t, recorder)["code"])
}

func TestAuthMiddlewareRejections(t *testing.T) {
	router := setupRouter(t)
	user, _ := seedUser(t, models.RoleEmployee, 0)

	recorder := doRequest(t, router, "GET", "/api/v1/points/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "MISSING_TOKEN", errorEnvelope(t, recorder)["code"])

	recorder = doRequest(t, router, "GET", "/api/v1/points/balance", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_TOKEN", errorEnvelope(t, recorder)["code"])

	// Refresh tokens are not valid for API access.
	tokens, err := services.NewAuthService().GenerateTokens(user)
	require.NoError(t, err)
	recorder = doRequest(t, router, "GET", "/api/v1/points/balance", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_TOKEN", errorEnvelope(t, recorder)["code"])
}

func TestAdminOnly(t *testing.T) {
	router := setupRouter(t)
	_, employeeToken := seedUser(t, models.RoleEmployee, 0)
	_, adminToken := seedUser(t, models.RoleAdmin, 0)

	recorder := doRequest(t, router, "GET", "/api/v1/admin/users", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "FORBIDDEN", errorEnvelope(t, recorder)["code"])

	recorder = doRequest(t, router, "GET", "/api/v1/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRedeemEndpoint(t *testing.T) {
	router := setupRouter(t)
	_, token := seedUser(t, models.RoleEmployee, 500)

	product := models.Product{
		Name: "Coffee Card", PointsPrice: 300, StockQuantity: 1,
		Category: "gift-cards", Status: models.ProductActive,
	}
	require.NoError(t, config.DB.Create(&product).Error)

	recorder := doRequest(t, router, "POST", "/api/v1/orders/redeem", token,
		map[string]interface{}{"product_id": product.ID})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "completed", body["status"])
	assert.EqualValues(t, 300, body["points_spent"])
	assert.Regexp(t, `^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`, body["redemption_code"])

	// The remaining 200 points cannot buy another unit, and stock is gone.
	recorder = doRequest(t, router, "POST", "/api/v1/orders/redeem", token,
		map[string]interface{}{"product_id": product.ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorEnvelope(t, recorder)["code"])

	recorder = doRequest(t, router, "GET", "/api/v1/points/balance", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body = decodeBody(t, recorder)
	assert.EqualValues(t, 200, body["current_balance"])
	assert.Equal(t, "200", body["formatted_balance"])
}

func TestBalanceFormatting(t *testing.T) {
	router := setupRouter(t)
	_, token := seedUser(t, models.RoleEmployee, 1234567)

	recorder := doRequest(t, router, "GET", "/api/v1/points/balance", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.EqualValues(t, 1234567, body["current_balance"])
	assert.Equal(t, "1,234,567", body["formatted_balance"])
}

func TestAdjustPointsEndpoint(t *testing.T) {
	router := setupRouter(t)
	admin, adminToken := seedUser(t, models.RoleAdmin, 0)
	user, _ := seedUser(t, models.RoleEmployee, 100)

	// Zero amount fails request validation before reaching the service.
	recorder := doRequest(t, router, "POST", "/api/v1/admin/points/adjust", adminToken,
		map[string]interface{}{"user_id": user.ID, "amount": 0, "reason": "noop"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorEnvelope(t, recorder)["code"])

	recorder = doRequest(t, router, "POST", "/api/v1/admin/points/adjust", adminToken,
		map[string]interface{}{"user_id": user.ID, "amount": -150, "reason": "clawback"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INSUFFICIENT_POINTS", errorEnvelope(t, recorder)["code"])

	recorder = doRequest(t, router, "POST", "/api/v1/admin/points/adjust", adminToken,
		map[string]interface{}{"user_id": user.ID, "amount": 50, "reason": "spot bonus"})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	body := decodeBody(t, recorder)
	entry, ok := body["entry"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 100, entry["balance_before"])
	assert.EqualValues(t, 150, entry["balance_after"])
	assert.EqualValues(t, admin.ID, entry["operator_id"])
}

func TestAdminGetUsersTotals(t *testing.T) {
	router := setupRouter(t)
	_, adminToken := seedUser(t, models.RoleAdmin, 0)
	user, _ := seedUser(t, models.RoleEmployee, 0)

	pointsSvc := services.NewPointsService()
	_, err := pointsSvc.AddPoints(user.ID, 300, "Allocation", models.EntryAllocation, nil)
	require.NoError(t, err)
	_, err = pointsSvc.DeductPoints(user.ID, 100, "Redeemed something", models.EntryRedemption, nil)
	require.NoError(t, err)

	recorder := doRequest(t, router, "GET", "/api/v1/admin/users?search="+user.Username, adminToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	body := decodeBody(t, recorder)
	assert.EqualValues(t, 1, body["total"])
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	row := items[0].(map[string]interface{})
	assert.Equal(t, user.Username, row["username"])
	assert.EqualValues(t, 200, row["current_balance"])
	assert.EqualValues(t, 300, row["total_earned"])
	assert.EqualValues(t, 100, row["total_spent"])
}

func TestPointsHistoryPaginationEndpoint(t *testing.T) {
	router := setupRouter(t)
	user, token := seedUser(t, models.RoleEmployee, 0)

	pointsSvc := services.NewPointsService()
	for i := 0; i < 25; i++ {
		_, err := pointsSvc.AddPoints(user.ID, 10, "Allocation", models.EntryAllocation, nil)
		require.NoError(t, err)
	}

	recorder := doRequest(t, router, "GET", "/api/v1/points/history?page=2&page_size=10", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.EqualValues(t, 25, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 10, body["page_size"])
	assert.EqualValues(t, 3, body["total_pages"])
	assert.Len(t, body["items"], 10)

	// Oversized page_size is clamped, out-of-range page comes back empty.
	recorder = doRequest(t, router, "GET", "/api/v1/points/history?page=1&page_size=9999", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body = decodeBody(t, recorder)
	assert.EqualValues(t, 100, body["page_size"])

	recorder = doRequest(t, router, "GET", "/api/v1/points/history?page=99", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body = decodeBody(t, recorder)
	assert.Empty(t, body["items"])
}

func TestPublicProductListingHidesInactive(t *testing.T) {
	router := setupRouter(t)
	_, token := seedUser(t, models.RoleEmployee, 0)

	active := models.Product{Name: "Visible", PointsPrice: 100, StockQuantity: 5, Status: models.ProductActive}
	inactive := models.Product{Name: "Hidden", PointsPrice: 100, StockQuantity: 5, Status: models.ProductInactive}
	require.NoError(t, config.DB.Create(&active).Error)
	require.NoError(t, config.DB.Create(&inactive).Error)

	recorder := doRequest(t, router, "GET", "/api/v1/products", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.EqualValues(t, 1, body["total"])
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Visible", first["name"])
}

func TestMeEndpoint(t *testing.T) {
	router := setupRouter(t)
	user, token := seedUser(t, models.RoleEmployee, 0)

	recorder := doRequest(t, router, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, user.Username, body["username"])

	// A token for a deactivated user stops working on /auth/me.
	require.NoError(t, config.DB.Model(user).Update("is_active", false).Error)
	recorder = doRequest(t, router, "GET", "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_TOKEN", errorEnvelope(t, recorder)["code"])
}
