package user

import (
	"net/http"
	"testing"

	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newProfileRouter(mockService *MockUserService, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewProfileHandler(mockService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	router.GET("/auth/me", handler.Me)
	router.PUT("/auth/update-profile", handler.UpdateProfile)
	return router
}

// TestMe 返回当前登录用户
func TestMe(t *testing.T) {
	mockService := new(MockUserService)
	router := newProfileRouter(mockService, 7)

	mockService.On("GetUserByID", 7).Return(&model.User{ID: 7, Name: "Rahim"}, nil)

	w := doJSON(router, "GET", "/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rahim")
}

// TestMeVanishedAccount 令牌通过校验但账号已被删除时应按未认证处理
func TestMeVanishedAccount(t *testing.T) {
	mockService := new(MockUserService)
	router := newProfileRouter(mockService, 7)

	mockService.On("GetUserByID", 7).
		Return(nil, apperrors.New(apperrors.ErrUserNotFound, "User not found"))

	w := doJSON(router, "GET", "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to access this route")
}

// TestUpdateProfileVanishedAccount 更新资料时账号消失同样按未认证处理
func TestUpdateProfileVanishedAccount(t *testing.T) {
	mockService := new(MockUserService)
	router := newProfileRouter(mockService, 7)

	mockService.On("UpdateProfile", 7, "Rahim", "01700000000").
		Return(nil, apperrors.New(apperrors.ErrUserNotFound, "User not found"))

	w := doJSON(router, "PUT", "/auth/update-profile", []byte(`{"name":"Rahim","phone":"01700000000"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to access this route")
}
