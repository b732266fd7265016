package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// 用户角色
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleAdmin, RoleVendor:
		return true
	}
	return false
}

// User 结构体表示用户模型
// 令牌字段只保存摘要，明文只存在于外发邮件和入站验证请求中
type User struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"-"` // 仅在创建和重置时携带明文，入库前由仓库层哈希
	PasswordHash    string `json:"-"` // 密码哈希不应在JSON中暴露
	Phone           string `json:"phone,omitempty"`
	Role            string `json:"role"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified"`

	EmailVerificationToken  string     `json:"-"`
	EmailVerificationExpire *time.Time `json:"-"`
	ResetPasswordToken      string     `json:"-"`
	ResetPasswordExpire     *time.Time `json:"-"`
	PasswordChangedAt       *time.Time `json:"-"`

	Addresses []*Address `json:"addresses,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckPassword 比较明文密码与存储的哈希是否匹配
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}

// Address 用户收货地址
type Address struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
