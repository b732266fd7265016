package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// OTP 与重置令牌的有效期是固定常量，调用方不得按请求延长
const (
	OTPLength        = 6
	OTPExpire        = 10 * time.Minute
	ResetTokenBytes  = 32
	ResetTokenExpire = 30 * time.Minute
)

var otpMax = big.NewInt(1000000)

// GenerateOTP 生成固定长度的数字验证码，使用加密安全随机源
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("生成OTP失败: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// GenerateResetToken 生成密码重置用的高熵不透明令牌
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成重置令牌失败: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken 返回令牌的存储摘要
// OTP 与重置令牌共用同一摘要函数，仓库层的复合查询才能统一处理
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
