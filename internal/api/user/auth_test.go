package user

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(name, email, password, phone string) (*model.User, string, error) {
	args := m.Called(name, email, password, phone)
	user, _ := args.Get(0).(*model.User)
	return user, args.String(1), args.Error(2)
}

func (m *MockUserService) Login(email, password string) (*model.User, string, error) {
	args := m.Called(email, password)
	user, _ := args.Get(0).(*model.User)
	return user, args.String(1), args.Error(2)
}

func (m *MockUserService) VerifyEmail(userID int, otp string) (*model.User, error) {
	args := m.Called(userID, otp)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) ResendOTP(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserService) ForgotPassword(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(token, newPassword string) (string, error) {
	args := m.Called(token, newPassword)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdateProfile(userID int, name, phone string) (*model.User, error) {
	args := m.Called(userID, name, phone)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdateAvatar(userID int, file *multipart.FileHeader) (string, error) {
	args := m.Called(userID, file)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) CreateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserService) UpdateAddress(address *model.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserService) DeleteAddress(id, userID int) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func (m *MockUserService) ListUserAddresses(userID int) ([]*model.Address, error) {
	args := m.Called(userID)
	addresses, _ := args.Get(0).([]*model.Address)
	return addresses, args.Error(1)
}

func (m *MockUserService) SetDefaultAddress(userID, addressID int) error {
	args := m.Called(userID, addressID)
	return args.Error(0)
}

var _ service.UserServiceInterface = (*MockUserService)(nil)

func init() {
	util.InitLogger("error")
}

func newAuthRouter(mockService *MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/verify-email/:userId", handler.VerifyEmail)
	router.POST("/auth/resend-otp/:userId", handler.ResendOTP)
	router.POST("/auth/forgot-password", handler.ForgotPassword)
	router.POST("/auth/reset-password/:token", handler.ResetPassword)
	return router
}

func doJSON(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestRegister 测试注册处理器
func TestRegister(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	mockService.On("Register", "Rahim", "rahim@example.com", "secret123", "").
		Return(&model.User{ID: 7, Name: "Rahim", Email: "rahim@example.com"}, "jwt-token", nil)

	body := []byte(`{"name": "Rahim", "email": "rahim@example.com", "password": "secret123"}`)
	w := doJSON(router, "POST", "/auth/register", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["success"])
	mockService.AssertExpectations(t)

	// 重复邮箱返回 409
	mockService.On("Register", "Karim", "taken@example.com", "secret123", "").
		Return(nil, "", apperrors.New(apperrors.ErrUserExists, "User already exists"))

	body = []byte(`{"name": "Karim", "email": "taken@example.com", "password": "secret123"}`)
	w = doJSON(router, "POST", "/auth/register", body)

	assert.Equal(t, http.StatusConflict, w.Code)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "User already exists", response["message"])
}

// TestRegisterValidation 缺字段与弱密码应返回 400
func TestRegisterValidation(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	w := doJSON(router, "POST", "/auth/register", []byte(`{"email": "rahim@example.com"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 密码不足6位
	w = doJSON(router, "POST", "/auth/register",
		[]byte(`{"name": "Rahim", "email": "rahim@example.com", "password": "123"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertNotCalled(t, "Register")
}

// TestLogin 测试登录处理器
func TestLogin(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	mockService.On("Login", "rahim@example.com", "secret123").
		Return(&model.User{ID: 7, Email: "rahim@example.com"}, "jwt-token", nil)

	w := doJSON(router, "POST", "/auth/login",
		[]byte(`{"email": "rahim@example.com", "password": "secret123"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, "jwt-token", response.Data.Token)

	// 凭证错误返回 401 且文案模糊
	mockService.On("Login", "rahim@example.com", "wrong").
		Return(nil, "", apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials"))

	w = doJSON(router, "POST", "/auth/login",
		[]byte(`{"email": "rahim@example.com", "password": "wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var errResponse map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &errResponse)
	assert.Equal(t, "Invalid credentials", errResponse["message"])
}

// TestVerifyEmail 测试邮箱验证处理器
func TestVerifyEmail(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	mockService.On("VerifyEmail", 7, "123456").
		Return(&model.User{ID: 7, IsEmailVerified: true}, nil)

	w := doJSON(router, "POST", "/auth/verify-email/7", []byte(`{"otp": "123456"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	// 错误验证码返回 400
	mockService.On("VerifyEmail", 7, "654321").
		Return(nil, apperrors.New(apperrors.ErrInvalidOTP, "Invalid or expired OTP"))

	w = doJSON(router, "POST", "/auth/verify-email/7", []byte(`{"otp": "654321"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非6位数字直接拒绝，不进服务层
	w = doJSON(router, "POST", "/auth/verify-email/7", []byte(`{"otp": "12ab56"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 非数字用户ID返回 400
	w = doJSON(router, "POST", "/auth/verify-email/abc", []byte(`{"otp": "123456"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestResendOTP 测试重发验证码处理器
func TestResendOTP(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	mockService.On("ResendOTP", 7).Return(nil)
	w := doJSON(router, "POST", "/auth/resend-otp/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.On("ResendOTP", 99).
		Return(apperrors.New(apperrors.ErrUserNotFound, "User not found"))
	w = doJSON(router, "POST", "/auth/resend-otp/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.On("ResendOTP", 8).
		Return(apperrors.New(apperrors.ErrAlreadyVerified, "Email already verified"))
	w = doJSON(router, "POST", "/auth/resend-otp/8", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestForgotPassword 测试找回密码处理器
func TestForgotPassword(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	mockService.On("ForgotPassword", "rahim@example.com").Return(nil)
	w := doJSON(router, "POST", "/auth/forgot-password", []byte(`{"email": "rahim@example.com"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	// 未注册邮箱返回 404
	mockService.On("ForgotPassword", "nobody@example.com").
		Return(apperrors.New(apperrors.ErrUserNotFound, "User not found"))
	w = doJSON(router, "POST", "/auth/forgot-password", []byte(`{"email": "nobody@example.com"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 投递失败返回 502
	mockService.On("ForgotPassword", "smtp-down@example.com").
		Return(apperrors.New(apperrors.ErrEmailDelivery, "Failed to send email"))
	w = doJSON(router, "POST", "/auth/forgot-password", []byte(`{"email": "smtp-down@example.com"}`))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// TestResetPassword 测试重置密码处理器
func TestResetPassword(t *testing.T) {
	mockService := new(MockUserService)
	router := newAuthRouter(mockService)

	mockService.On("ResetPassword", "good-token", "newsecret").Return("new-jwt", nil)
	w := doJSON(router, "POST", "/auth/reset-password/good-token", []byte(`{"password": "newsecret"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.On("ResetPassword", "bad-token", "newsecret").
		Return("", apperrors.New(apperrors.ErrInvalidResetToken, "Invalid or expired reset token"))
	w = doJSON(router, "POST", "/auth/reset-password/bad-token", []byte(`{"password": "newsecret"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Invalid or expired reset token", response["message"])
}
