package util

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenManager 负责签发与校验会话令牌
// 密钥与有效期在进程启动时注入，运行期间不变，不支持按次调整
type TokenManager struct {
	secret []byte
	expire time.Duration
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(secret string, expire time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expire: expire}
}

// SessionClaims 会话令牌解码后的内容
type SessionClaims struct {
	UserID   int
	IssuedAt time.Time
}

// GenerateToken 为指定用户签发会话令牌
func (m *TokenManager) GenerateToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(m.expire).Unix(),
	})
	return token.SignedString(m.secret)
}

// ValidateToken 校验令牌签名与有效期，返回解码结果
// 任何失败都视为未认证，调用方不得回退到默认身份
func (m *TokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("意外的签名方法")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的令牌")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("无效的用户ID")
	}

	issuedAt := time.Time{}
	if iat, ok := claims["iat"].(float64); ok {
		issuedAt = time.Unix(int64(iat), 0)
	}

	return &SessionClaims{UserID: int(userID), IssuedAt: issuedAt}, nil
}
