package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusOf(ErrUserExists))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(ErrInvalidCredentials))
	assert.Equal(t, http.StatusForbidden, StatusOf(ErrForbidden))
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrUserNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusOf(ErrInvalidOTP))
	assert.Equal(t, http.StatusBadGateway, StatusOf(ErrEmailDelivery))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(ErrTooManyRequests))

	// 未映射的错误码按内部错误处理
	assert.Equal(t, http.StatusInternalServerError, StatusOf(ErrorCode(9999)))
}

func TestAppErrorIs(t *testing.T) {
	err := New(ErrInvalidOTP, "Invalid or expired OTP")
	assert.True(t, Is(err, ErrInvalidOTP))
	assert.False(t, Is(err, ErrInvalidResetToken))
	assert.False(t, Is(fmt.Errorf("plain error"), ErrInvalidOTP))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrDatabase, "Failed to find user", cause)

	assert.True(t, Is(err, ErrDatabase))
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "Failed to find user")
	assert.Contains(t, err.Error(), "connection refused")
}
