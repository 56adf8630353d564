package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handler-test-secret"

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Token{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newAuthRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService(config.AuthConfig{
		JWTSecret:       testJWTSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BCryptCost:      4,
	})

	h := handlers.NewAuthHandler(db, authService, services.NewUserService())

	router := gin.New()
	auth := router.Group("/api/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)
	auth.GET("/user", middleware.AuthMiddleware(testJWTSecret), h.CurrentUser)
	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginFlow(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(db)

	w := postJSON(router, "/api/auth/register", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var registered handlers.TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &registered); err != nil {
		t.Fatalf("invalid register response: %v", err)
	}
	if registered.AccessToken == "" || registered.RefreshToken == "" {
		t.Fatal("expected a token pair on registration")
	}
	if registered.TokenType != "Bearer" {
		t.Errorf("expected Bearer token type, got %q", registered.TokenType)
	}

	w = postJSON(router, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var loggedIn handlers.TokenResponse
	json.Unmarshal(w.Body.Bytes(), &loggedIn)
	if loggedIn.User == nil || loggedIn.User.Email != "alice@example.com" {
		t.Errorf("unexpected user in login response: %+v", loggedIn.User)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(db)

	postJSON(router, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	})

	w := postJSON(router, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["msg"] != "Invalid Credentials" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRegisterRejectsBadPayload(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(db)

	tests := []map[string]string{
		{"email": "alice@example.com", "password": "password123"}, // missing name
		{"name": "Alice", "email": "not-an-email", "password": "password123"},
		{"name": "Alice", "email": "alice@example.com", "password": "short"},
	}
	for _, payload := range tests {
		w := postJSON(router, "/api/auth/register", payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %v: expected 400, got %d", payload, w.Code)
		}
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(db)

	payload := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "password123"}
	if w := postJSON(router, "/api/auth/register", payload); w.Code != http.StatusOK {
		t.Fatalf("first register failed: %d", w.Code)
	}

	w := postJSON(router, "/api/auth/register", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate, got %d", w.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(db)

	w := postJSON(router, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	})
	var registered handlers.TokenResponse
	json.Unmarshal(w.Body.Bytes(), &registered)

	w = postJSON(router, "/api/auth/refresh", map[string]string{"refreshToken": registered.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var refreshed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    int64  `json:"expiresIn"`
	}
	json.Unmarshal(w.Body.Bytes(), &refreshed)
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Error("expected refresh token rotation")
	}
	if refreshed.ExpiresIn != 3600 {
		t.Errorf("expected expiresIn 3600, got %d", refreshed.ExpiresIn)
	}

	// The rotated-out token no longer refreshes.
	w = postJSON(router, "/api/auth/refresh", map[string]string{"refreshToken": registered.RefreshToken})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for spent token, got %d", w.Code)
	}

	w = postJSON(router, "/api/auth/logout", map[string]string{"refreshToken": refreshed.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	w = postJSON(router, "/api/auth/refresh", map[string]string{"refreshToken": refreshed.RefreshToken})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

func TestCurrentUser(t *testing.T) {
	db := setupAuthDB(t)
	router := newAuthRouter(db)

	w := postJSON(router, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	})
	var registered handlers.TokenResponse
	json.Unmarshal(w.Body.Bytes(), &registered)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+registered.AccessToken)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var user map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &user)
	if user["email"] != "alice@example.com" {
		t.Errorf("unexpected user: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password must never serialize")
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/auth/user", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}
