package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todoapi/internal/apperror"
	"todoapi/internal/auth"
	"todoapi/internal/handler"
	"todoapi/internal/middleware"
	"todoapi/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func setupAuthTest() (*gin.Engine, *MockUserRepository, *auth.TokenIssuer) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserRepository)
	issuer := auth.NewTokenIssuer("test-secret", 24*time.Hour)
	authHandler := handler.NewAuthHandler(mockRepo, issuer, 24*time.Hour, false)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)
	r.GET("/auth/me", middleware.RequireAuth(issuer), authHandler.Me)

	return r, mockRepo, issuer
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 1
		}).
		Return(nil)

	body, _ := json.Marshal(handler.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret",
	})
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload["token"])
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.com", user["email"])
	mockRepo.AssertExpectations(t)
}

func TestRegister_Conflict(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(apperror.Conflict("username or email already exists"))

	body, _ := json.Marshal(handler.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret",
	})
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "already exists")
}

func TestRegister_InvalidPayload(t *testing.T) {
	// Arrange: password below the minimum length
	router, _, _ := setupAuthTest()

	body, _ := json.Marshal(handler.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "abc",
	})
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success_SetsCookie(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	hash, err := auth.HashPassword("secret")
	assert.NoError(t, err)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{
		ID:           1,
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: hash,
	}, nil)

	body, _ := json.Marshal(handler.LoginRequest{Email: "a@x.com", Password: "secret"})
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload["token"])

	cookies := resp.Result().Cookies()
	var authCookie *http.Cookie
	for _, cookie := range cookies {
		if cookie.Name == middleware.CookieName {
			authCookie = cookie
		}
	}
	assert.NotNil(t, authCookie)
	assert.True(t, authCookie.HttpOnly)
	assert.Equal(t, "/", authCookie.Path)
	assert.Equal(t, int((24 * time.Hour).Seconds()), authCookie.MaxAge)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	hash, err := auth.HashPassword("secret")
	assert.NoError(t, err)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{
		ID:           1,
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: hash,
	}, nil)

	body, _ := json.Marshal(handler.LoginRequest{Email: "a@x.com", Password: "wrong"})
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid email or password")
}

func TestLogin_UnknownEmail(t *testing.T) {
	// Arrange: same 401 as a wrong password, no user enumeration
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, nil)

	body, _ := json.Marshal(handler.LoginRequest{Email: "ghost@x.com", Password: "whatever"})
	req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid email or password")
}

func TestRegisterThenMe_RoundTrip(t *testing.T) {
	// Arrange
	router, mockRepo, _ := setupAuthTest()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 7
		}).
		Return(nil)

	body, _ := json.Marshal(handler.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret",
	})
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusCreated, resp.Code)

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	token := payload["token"].(string)

	// Act: the token from registration authenticates /auth/me
	meReq, _ := http.NewRequest("GET", "/auth/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+token)
	meResp := httptest.NewRecorder()
	router.ServeHTTP(meResp, meReq)

	// Assert: identity comes straight from the claims
	assert.Equal(t, http.StatusOK, meResp.Code)

	var mePayload map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(meResp.Body.Bytes(), &mePayload))
	assert.Equal(t, float64(7), mePayload["user"]["id"])
	assert.Equal(t, "a@x.com", mePayload["user"]["email"])
	assert.Equal(t, "alice", mePayload["user"]["username"])
}

func TestLogout_ClearsCookie(t *testing.T) {
	// Arrange
	router, _, _ := setupAuthTest()

	req, _ := http.NewRequest("POST", "/auth/logout", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	cookies := resp.Result().Cookies()
	var authCookie *http.Cookie
	for _, cookie := range cookies {
		if cookie.Name == middleware.CookieName {
			authCookie = cookie
		}
	}
	assert.NotNil(t, authCookie)
	assert.Less(t, authCookie.MaxAge, 0)
}
