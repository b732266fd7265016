package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerateOTP 验证码应为6位数字
func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp, err := GenerateOTP()
		assert.NoError(t, err)
		assert.Len(t, otp, OTPLength)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9', "OTP 应只包含数字: %s", otp)
		}
	}
}

// TestGenerateResetToken 重置令牌应为64位十六进制串
func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	assert.NoError(t, err)
	assert.Len(t, token, ResetTokenBytes*2)

	// 两次生成不应相同
	another, err := GenerateResetToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token, another)
}

// TestHashToken 摘要应确定且与明文不同
func TestHashToken(t *testing.T) {
	hash := HashToken("123456")
	assert.Equal(t, hash, HashToken("123456"))
	assert.NotEqual(t, "123456", hash)
	assert.Len(t, hash, 64)

	assert.NotEqual(t, hash, HashToken("123457"))
}
